package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"restaurant/internal/config"
	"restaurant/internal/domain/model"
	"restaurant/internal/repository"
	"restaurant/internal/usecase"
)

type AdminUserHandler struct {
	cfg      config.Config
	userRepo repository.UserRepository
	uc       *usecase.AuthUsecase
}

func NewAdminUserHandler(cfg config.Config, userRepo repository.UserRepository, uc *usecase.AuthUsecase) *AdminUserHandler {
	return &AdminUserHandler{cfg: cfg, userRepo: userRepo, uc: uc}
}

func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo) {
	// /admin 配下は全部「JWT必須 + token_version一致 + admin限定」
	admin := protectedGroup(e, "/admin", h.cfg, h.userRepo, model.RoleAdmin)

	admin.POST("/users", h.CreateUser)
	admin.GET("/users", h.ListUsers)
	admin.POST("/users/:id/force-logout", h.ForceLogout)
}

func (h *AdminUserHandler) CreateUser(c echo.Context) error {
	var req usecase.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	res, err := h.uc.CreateUser(c.Request().Context(), req)
	if err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *AdminUserHandler) ListUsers(c echo.Context) error {
	var role *model.Role
	if v := c.QueryParam("role"); v != "" {
		r := model.Role(v)
		role = &r
	}
	res, err := h.uc.ListUsers(c.Request().Context(), role)
	if err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AdminUserHandler) ForceLogout(c echo.Context) error {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid user_id")
	}

	res, err := h.uc.ForceLogout(c.Request().Context(), userID)
	if err != nil {
		return writeAuthError(c, err)
	}

	return c.JSON(http.StatusOK, res)
}
