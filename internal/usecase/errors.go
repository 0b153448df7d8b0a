package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"restaurant/internal/domain/event"
)

// 業務エラーの分類。HTTPError.Errに入れて errors.Is で判定できる。
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrInvalidValue      = errors.New("invalid value")
	ErrInvalidCreditUser = errors.New("invalid credit user")
	ErrInactiveAccount   = errors.New("inactive account")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrSlotUnavailable   = errors.New("slot unavailable")
)

type HTTPError struct {
	Status  int
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

func domainError(status int, kind error, message string) error {
	return &HTTPError{Status: status, Message: message, Err: kind}
}

func notFound(what string) error {
	return domainError(http.StatusNotFound, ErrNotFound, what+" not found")
}

func invalidValue(message string) error {
	return domainError(http.StatusBadRequest, ErrInvalidValue, message)
}

func invalidTransition(message string) error {
	return domainError(http.StatusBadRequest, ErrInvalidTransition, message)
}

func dbError() error {
	return NewHTTPError(http.StatusInternalServerError, "db error")
}

// コミット後に通知を流す
type EventDispatcher interface {
	Dispatch(ctx context.Context, events ...event.Event)
}

// 監査ログ用
func auditJSON(v map[string]interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
