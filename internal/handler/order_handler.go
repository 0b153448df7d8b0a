package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"restaurant/internal/config"
	"restaurant/internal/domain/model"
	"restaurant/internal/repository"
	"restaurant/internal/usecase"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type OrderCreateRequest struct {
	OrderType           string                   `json:"order_type"`
	PaymentMethod       string                   `json:"payment_method"`
	Items               []usecase.OrderLineInput `json:"items"`
	CashAmount          decimal.Decimal          `json:"cash_amount"`
	BankAmount          decimal.Decimal          `json:"bank_amount"`
	DeliveryCharge      decimal.Decimal          `json:"delivery_charge"`
	CouponCode          string                   `json:"coupon_code"`
	Address             string                   `json:"address"`
	CustomerName        string                   `json:"customer_name"`
	CustomerPhoneNumber string                   `json:"customer_phone_number"`
	DeliveryDriverID    *int64                   `json:"delivery_driver_id"`
	CreditUserID        *int64                   `json:"credit_user_id"`
}

type OrderStatusUpdateRequest struct {
	Status string `json:"status"`
}

type ChangeOrderTypeRequest struct {
	OrderType           string `json:"order_type"`
	DeliveryDriverID    *int64 `json:"delivery_driver_id"`
	DeliveryOrderStatus string `json:"delivery_order_status"`
}

// 送られた項目だけ更新する
type OrderPaymentRequest struct {
	Status        *string          `json:"status"`
	PaymentMethod *string          `json:"payment_method"`
	CashAmount    *decimal.Decimal `json:"cash_amount"`
	BankAmount    *decimal.Decimal `json:"bank_amount"`
	CreditUserID  *int64           `json:"credit_user_id"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := protectedGroup(e, "/orders", cfg, userRepo, model.RoleAdmin, model.RoleStaff)

	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/history", h.history)
	g.GET("/:id", h.detail)
	g.DELETE("/:id", h.delete)
	g.POST("/:id/cancel", h.cancel)
	g.POST("/:id/items", h.addItem)
	g.DELETE("/:id/items/:item_id", h.removeItem)
	g.PUT("/:id/change-type", h.changeType)
	g.PATCH("/:id/status", h.updateStatus)
	g.PATCH("/:id/payment", h.updatePayment)
}

func (h *OrderHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.CreateOrder(c.Request().Context(), userID, usecase.CreateOrderInput{
		OrderType:           req.OrderType,
		PaymentMethod:       req.PaymentMethod,
		Items:               req.Items,
		CashAmount:          req.CashAmount,
		BankAmount:          req.BankAmount,
		DeliveryCharge:      req.DeliveryCharge,
		CouponCode:          req.CouponCode,
		Address:             req.Address,
		CustomerName:        req.CustomerName,
		CustomerPhoneNumber: req.CustomerPhoneNumber,
		DeliveryDriverID:    req.DeliveryDriverID,
		CreditUserID:        req.CreditUserID,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return badRequest(c, "invalid page")
	}
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return badRequest(c, "invalid limit")
	}
	userID, ok := queryInt64Ptr(c, "user_id")
	if !ok {
		return badRequest(c, "invalid user_id")
	}
	from, ok := queryTime(c, "from")
	if !ok {
		return badRequest(c, "invalid from")
	}
	to, ok := queryTime(c, "to")
	if !ok {
		return badRequest(c, "invalid to")
	}

	out, err := h.uc.ListOrders(c.Request().Context(), repository.OrderListFilter{
		Page:          page,
		Limit:         limit,
		Status:        c.QueryParam("status"),
		OrderType:     c.QueryParam("order_type"),
		PaymentMethod: c.QueryParam("payment_method"),
		UserID:        userID,
		From:          from,
		To:            to,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 電話番号での注文履歴
func (h *OrderHandler) history(c echo.Context) error {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return badRequest(c, "invalid page")
	}
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return badRequest(c, "invalid limit")
	}
	out, err := h.uc.UserOrderHistory(c.Request().Context(), c.QueryParam("customer_phone_number"), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	out, err := h.uc.GetOrder(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) delete(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	if err := h.uc.DeleteOrder(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

func (h *OrderHandler) cancel(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	// 操作したスタッフID（監査ログ用）
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.uc.CancelOrder(c.Request().Context(), actorID, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "Order cancelled successfully"})
}

func (h *OrderHandler) addItem(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req usecase.OrderLineInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.AddItem(c.Request().Context(), id, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) removeItem(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	itemID, ok := parseIDParam(c, "item_id")
	if !ok {
		return badRequest(c, "invalid item_id")
	}
	out, err := h.uc.RemoveItem(c.Request().Context(), id, itemID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) changeType(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	var req ChangeOrderTypeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.ChangeOrderType(c.Request().Context(), actorID, id, usecase.ChangeOrderTypeInput{
		OrderType:        req.OrderType,
		DeliveryDriverID: req.DeliveryDriverID,
		DeliveryStatus:   req.DeliveryOrderStatus,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) updateStatus(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	var req OrderStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := h.uc.UpdateStatus(c.Request().Context(), actorID, id, req.Status); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}

func (h *OrderHandler) updatePayment(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	var req OrderPaymentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.UpdateOrderWithPayment(c.Request().Context(), actorID, id, usecase.OrderPaymentPatch{
		Status:        req.Status,
		PaymentMethod: req.PaymentMethod,
		CashAmount:    req.CashAmount,
		BankAmount:    req.BankAmount,
		CreditUserID:  req.CreditUserID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
