package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"restaurant/internal/config"
	"restaurant/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey       = "user_id"       // int64
	CtxUserRoleKey     = "user_role"     // string
	CtxTokenVersionKey = "token_version" // int
	CtxRequestIDKey    = "request_id"    // string
)

var errInvalidClaims = errors.New("invalid claims")

// アクセストークンから取り出す値
type accessClaims struct {
	UserID       int64
	Role         model.Role
	TokenVersion int
}

// Bearerトークンを検証し、sub/role/tvをcontextへ入れる。
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	keyFunc := func(t *jwt.Token) (interface{}, error) {
		//HS256以外は拒否
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get("Authorization"))
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			token, err := jwt.Parse(raw, keyFunc)
			if err != nil || token == nil || !token.Valid {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			ac, err := claimsFromToken(token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxUserIDKey, ac.UserID)
			c.Set(CtxUserRoleKey, string(ac.Role))
			c.Set(CtxTokenVersionKey, ac.TokenVersion)

			return next(c)
		}
	}
}

// "Bearer <token>" からtokenを抜く
func bearerToken(header string) (string, bool) {
	scheme, rest, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	raw := strings.TrimSpace(rest)
	return raw, raw != ""
}

func claimsFromToken(token *jwt.Token) (accessClaims, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return accessClaims{}, errInvalidClaims
	}

	userID, err := claimInt64(claims["sub"])
	if err != nil || userID <= 0 {
		return accessClaims{}, errInvalidClaims
	}

	role, ok := claims["role"].(string)
	if !ok || !model.Role(role).Valid() {
		return accessClaims{}, errInvalidClaims
	}

	tv, err := claimInt64(claims["tv"])
	if err != nil || tv < 0 {
		return accessClaims{}, errInvalidClaims
	}

	return accessClaims{UserID: userID, Role: model.Role(role), TokenVersion: int(tv)}, nil
}

// JSON数値はfloat64で来る。文字列のsubも受け付ける。
func claimInt64(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, errInvalidClaims
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
