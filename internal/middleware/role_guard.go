package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"restaurant/internal/domain/model"
)

// contextに入っているroleが許可されたものか確認する
func RoleGuard(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawRole := c.Get(CtxUserRoleKey)
			role, ok := rawRole.(string)
			if !ok || role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			if !allowed[model.Role(role)] {
				return c.JSON(http.StatusForbidden, errorJSON("forbidden"))
			}

			return next(c)
		}
	}
}

// 管理者のみ
func AdminOnly() echo.MiddlewareFunc {
	return RoleGuard(model.RoleAdmin)
}

// 店舗スタッフ（管理者含む）
func StaffOnly() echo.MiddlewareFunc {
	return RoleGuard(model.RoleAdmin, model.RoleStaff)
}
