package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"restaurant/internal/config"
	"restaurant/internal/domain/model"
	"restaurant/internal/repository"
	"restaurant/internal/usecase"
)

type CreditHandler struct {
	uc *usecase.CreditUsecase
}

func NewCreditHandler(uc *usecase.CreditUsecase) *CreditHandler {
	return &CreditHandler{uc: uc}
}

type CreditUserRequest struct {
	Name         string          `json:"name"`
	MobileNumber string          `json:"mobile_number"`
	Address      string          `json:"address"`
	LimitAmount  decimal.Decimal `json:"limit_amount"`
	DueDate      *time.Time      `json:"due_date"`
	IsActive     *bool           `json:"is_active"`
}

func (r CreditUserRequest) input() usecase.CreditUserInput {
	return usecase.CreditUserInput{
		Name:         r.Name,
		MobileNumber: r.MobileNumber,
		Address:      r.Address,
		LimitAmount:  r.LimitAmount,
		DueDate:      r.DueDate,
		IsActive:     r.IsActive,
	}
}

type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *CreditHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	roles := []model.Role{model.RoleAdmin, model.RoleStaff}

	ug := protectedGroup(e, "/credit-users", cfg, userRepo, roles...)
	ug.GET("", h.list)
	ug.POST("", h.create)
	ug.GET("/active", h.active)
	ug.GET("/find", h.findByMobile)
	ug.GET("/:id", h.detail)
	ug.PUT("/:id", h.update)
	ug.DELETE("/:id", h.delete)
	ug.POST("/:id/payments", h.makePayment)

	tg := protectedGroup(e, "/credit-transactions", cfg, userRepo, roles...)
	tg.GET("", h.transactions)
	tg.GET("/latest", h.latestTransaction)

	og := protectedGroup(e, "/credit-orders", cfg, userRepo, roles...)
	og.GET("", h.creditOrders)
}

func (h *CreditHandler) list(c echo.Context) error {
	out, err := h.uc.ListCreditUsers(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CreditHandler) active(c echo.Context) error {
	out, err := h.uc.ActiveUsers(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CreditHandler) findByMobile(c echo.Context) error {
	out, err := h.uc.FindByMobile(c.Request().Context(), c.QueryParam("mobile_number"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CreditHandler) create(c echo.Context) error {
	var req CreditUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.CreateCreditUser(c.Request().Context(), req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *CreditHandler) detail(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	out, err := h.uc.GetCreditUser(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CreditHandler) update(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req CreditUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.UpdateCreditUser(c.Request().Context(), id, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CreditHandler) delete(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	if err := h.uc.DeleteCreditUser(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

func (h *CreditHandler) makePayment(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	var req PaymentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.MakePayment(c.Request().Context(), actorID, id, req.Amount)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CreditHandler) transactions(c echo.Context) error {
	creditUserID, ok := queryInt64Ptr(c, "credit_user")
	if !ok {
		return badRequest(c, "invalid credit_user")
	}
	out, err := h.uc.ListTransactions(c.Request().Context(), creditUserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CreditHandler) latestTransaction(c echo.Context) error {
	creditUserID, ok := queryInt64Ptr(c, "credit_user")
	if !ok {
		return badRequest(c, "invalid credit_user")
	}
	out, err := h.uc.LatestTransaction(c.Request().Context(), creditUserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CreditHandler) creditOrders(c echo.Context) error {
	creditUserID, ok := queryInt64Ptr(c, "credit_user")
	if !ok {
		return badRequest(c, "invalid credit_user")
	}
	out, err := h.uc.ListCreditOrders(c.Request().Context(), creditUserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
