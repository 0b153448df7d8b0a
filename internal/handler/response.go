package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"restaurant/internal/config"
	"restaurant/internal/domain/model"
	"restaurant/internal/middleware"
	"restaurant/internal/repository"
	"restaurant/internal/usecase"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// JWT必須 + token_version一致 + ロール制限のグループ
func protectedGroup(e *echo.Echo, prefix string, cfg config.Config, userRepo repository.UserRepository, roles ...model.Role) *echo.Group {
	g := e.Group(prefix)
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))
	if len(roles) > 0 {
		g.Use(middleware.RoleGuard(roles...))
	}
	return g
}

func getUserIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	if v == nil {
		return 0, false
	}

	id, ok := v.(int64)
	if !ok {
		return 0, false
	}

	return id, true
}

func getViewer(c echo.Context) (usecase.Viewer, bool) {
	id, ok := getUserIDFromContext(c)
	if !ok {
		return usecase.Viewer{}, false
	}
	role, _ := c.Get(middleware.CtxUserRoleKey).(string)
	return usecase.Viewer{UserID: id, Role: model.Role(role)}, true
}

func parseIDParam(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func queryInt(c echo.Context, name string, def int) (int, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func queryInt64Ptr(c echo.Context, name string) (*int64, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, true
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, false
	}
	return &n, true
}

// RFC3339 か 2006-01-02
func queryTime(c echo.Context, name string) (*time.Time, bool) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return nil, true
	}
	tm, ok := parseTime(v)
	if !ok {
		return nil, false
	}
	return &tm, true
}

// bodyの日付文字列も同じ書式
func parseTime(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if tm, err := time.Parse(time.RFC3339, v); err == nil {
		return tm, true
	}
	tm, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, false
	}
	return tm, true
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
}

// usecaseの戻り値をそのまま返す
func respond(c echo.Context, status int, out interface{}, err error) error {
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(status, out)
}

func deleted(c echo.Context, err error) error {
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}
