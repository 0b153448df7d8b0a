package handler

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"restaurant/internal/config"
	"restaurant/internal/repository"
	"restaurant/internal/usecase"
	"restaurant/internal/validator"
)

const (
	refreshCookieName = "refresh"
	csrfCookieName    = "csrf_token"
	csrfHeaderName    = "X-CSRF-Token"
)

type AuthHandler struct {
	cfg          config.Config
	userRepo     repository.UserRepository
	uc           *usecase.AuthUsecase
	refreshTTL   time.Duration // refresh/csrf cookie の有効期限
	cookieSecure bool
}

// DIコンストラクタ
func NewAuthHandler(cfg config.Config, userRepo repository.UserRepository, uc *usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{
		cfg:          cfg,
		userRepo:     userRepo,
		uc:           uc,
		refreshTTL:   usecase.RefreshTokenTTL(),
		cookieSecure: envBool("COOKIE_SECURE", true),
	}
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True":
		return true
	case "0", "false", "FALSE", "False":
		return false
	default:
		return def
	}
}

// /auth/refresh, /auth/logout のbody（cookieが無いクライアント向け）
type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/auth")
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	g.POST("/logout", h.Logout)

	me := protectedGroup(e, "/auth/me", h.cfg, h.userRepo)
	me.GET("", h.Me)
}

// LoginはPOST /auth/login のハンドラ。
func (h *AuthHandler) Login(c echo.Context) error {
	var req usecase.AuthLoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	// User-Agentを取得（refreshtokenに紐付ける）
	res, err := h.uc.Login(c.Request().Context(), req, c.Request().UserAgent())
	if err != nil {
		return writeAuthError(c, err)
	}

	h.setCookies(c, res.RefreshTokenPlain, res.CsrfTokenPlain)
	return c.JSON(http.StatusOK, res.Body)
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	token, fromCookie, err := readRefreshToken(c)
	if err != nil {
		return badRequest(c, "invalid body")
	}
	if fromCookie && !csrfMatches(c) {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "csrf token mismatch"})
	}

	res, err := h.uc.Refresh(c.Request().Context(), token, c.Request().UserAgent())
	if err != nil {
		if errors.Is(err, usecase.ErrSecurityIncident) {
			h.clearCookies(c)
		}
		return writeAuthError(c, err)
	}

	h.setCookies(c, res.RefreshTokenPlain, res.CsrfTokenPlain)
	return c.JSON(http.StatusOK, res.Body)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	token, fromCookie, err := readRefreshToken(c)
	if err != nil {
		return badRequest(c, "invalid body")
	}
	if fromCookie && !csrfMatches(c) {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "csrf token mismatch"})
	}

	res, err := h.uc.Logout(c.Request().Context(), token)
	if err != nil {
		return writeAuthError(c, err)
	}

	h.clearCookies(c)
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	res, err := h.uc.Me(c.Request().Context(), userID)
	if err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// cookie優先。無ければbody。
func readRefreshToken(c echo.Context) (string, bool, error) {
	if ck, err := c.Cookie(refreshCookieName); err == nil && ck.Value != "" {
		return ck.Value, true, nil
	}
	var req refreshRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return "", false, err
		}
	}
	return req.RefreshToken, false, nil
}

// double submit: cookieとヘッダの一致
func csrfMatches(c echo.Context) bool {
	ck, err := c.Cookie(csrfCookieName)
	if err != nil || ck.Value == "" {
		return false
	}
	header := c.Request().Header.Get(csrfHeaderName)
	return subtle.ConstantTimeCompare([]byte(ck.Value), []byte(header)) == 1
}

// refresh token と csrf token をCookieにセット。
func (h *AuthHandler) setCookies(c echo.Context, refreshPlain, csrfPlain string) {
	exp := time.Now().Add(h.refreshTTL)

	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    refreshPlain,
		Path:     "/auth",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
	c.SetCookie(&http.Cookie{
		Name:     csrfCookieName,
		Value:    csrfPlain,
		Path:     "/",
		HttpOnly: false,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
}

func (h *AuthHandler) clearCookies(c echo.Context) {
	for _, ck := range []struct{ name, path string }{{refreshCookieName, "/auth"}, {csrfCookieName, "/"}} {
		c.SetCookie(&http.Cookie{
			Name:     ck.name,
			Value:    "",
			Path:     ck.path,
			MaxAge:   -1,
			Secure:   h.cookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// 認証系のエラーをステータスに変換
func writeAuthError(c echo.Context, err error) error {
	var fe *validator.FieldError
	if errors.As(err, &fe) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation error: " + fe.Error()})
	}
	switch {
	case errors.Is(err, validator.ErrInvalidInput),
		errors.Is(err, validator.ErrInvalidRefresh),
		errors.Is(err, usecase.ErrValidation):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation error"})
	case errors.Is(err, validator.ErrEmailAlreadyUsed),
		errors.Is(err, usecase.ErrConflict):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "conflict"})
	case errors.Is(err, usecase.ErrUnauthorized),
		errors.Is(err, usecase.ErrSecurityIncident):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	case errors.Is(err, usecase.ErrForbidden):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	}
	return writeError(c, err)
}
