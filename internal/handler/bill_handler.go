package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"restaurant/internal/config"
	"restaurant/internal/domain/model"
	"restaurant/internal/repository"
	"restaurant/internal/usecase"
)

type BillHandler struct {
	bills  *usecase.BillUsecase
	orders *usecase.OrderUsecase
}

func NewBillHandler(bills *usecase.BillUsecase, orders *usecase.OrderUsecase) *BillHandler {
	return &BillHandler{bills: bills, orders: orders}
}

type BillCreateRequest struct {
	OrderID int64 `json:"order_id"`
}

func (h *BillHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := protectedGroup(e, "/bills", cfg, userRepo, model.RoleAdmin, model.RoleStaff)

	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.detail)
	g.DELETE("/:id", h.delete)
	g.POST("/:id/cancel-order", h.cancelOrder)
}

func (h *BillHandler) create(c echo.Context) error {
	var req BillCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.bills.CreateBill(c.Request().Context(), req.OrderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *BillHandler) list(c echo.Context) error {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return badRequest(c, "invalid page")
	}
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return badRequest(c, "invalid limit")
	}
	out, err := h.bills.ListBills(c.Request().Context(), repository.BillListFilter{
		Page:        page,
		Limit:       limit,
		OrderStatus: c.QueryParam("status"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *BillHandler) detail(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	out, err := h.bills.GetBill(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *BillHandler) delete(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	if err := h.bills.DeleteBill(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

// 請求に紐づく注文をキャンセル
func (h *BillHandler) cancelOrder(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.orders.CancelOrderByBill(c.Request().Context(), actorID, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "Order cancelled successfully"})
}
