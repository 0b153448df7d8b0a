package middleware

import (
	"net/http"

	"restaurant/internal/repository"

	"github.com/labstack/echo/v4"
)

// AuthJWTがcontextへ入れたsubとtvを読む
func sessionFromContext(c echo.Context) (userID int64, tv int, ok bool) {
	userID, ok = c.Get(CtxUserIDKey).(int64)
	if !ok || userID <= 0 {
		return 0, 0, false
	}
	tv, ok = c.Get(CtxTokenVersionKey).(int)
	if !ok || tv < 0 {
		return 0, 0, false
	}
	return userID, tv, true
}

// 停止中のアカウントは403、強制ログアウト済みのトークンは401で弾く。
func TokenVersionGuard(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, tv, ok := sessionFromContext(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			user, err := userRepo.FindByID(c.Request().Context(), userID)
			switch {
			case err != nil || user == nil:
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			case !user.IsActive:
				return c.JSON(http.StatusForbidden, errorJSON("forbidden"))
			case user.TokenVersion != tv:
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			return next(c)
		}
	}
}
