package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"restaurant/internal/config"
	"restaurant/internal/middleware"
	"restaurant/internal/repository"
	"restaurant/internal/usecase"
)

// /delivery-drivers と /delivery-orders。driverロールは自分の分だけ。
type DeliveryHandler struct {
	uc *usecase.DeliveryUsecase
}

func NewDeliveryHandler(uc *usecase.DeliveryUsecase) *DeliveryHandler {
	return &DeliveryHandler{uc: uc}
}

type DriverCreateRequest struct {
	UserID int64 `json:"user_id"`
}

type DeliveryStatusRequest struct {
	Status string `json:"status"`
}

type AssignDriverRequest struct {
	DriverID *int64 `json:"driver_id"`
}

func (h *DeliveryHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	admin := middleware.AdminOnly()
	staff := middleware.StaffOnly()

	dg := protectedGroup(e, "/delivery-drivers", cfg, userRepo)
	dg.GET("", h.listDrivers)
	dg.GET("/:id", h.getDriver)
	dg.POST("", h.createDriver, admin)
	dg.DELETE("/:id", h.deleteDriver, admin)
	dg.PATCH("/:id/toggle-active", h.toggleActive)
	dg.PATCH("/:id/toggle-available", h.toggleAvailable)

	og := protectedGroup(e, "/delivery-orders", cfg, userRepo)
	og.GET("", h.listOrders)
	og.GET("/:id", h.getOrder)
	og.PATCH("/:id/status", h.updateStatus)
	og.PUT("/:id/driver", h.assignDriver, staff)
}

func (h *DeliveryHandler) listDrivers(c echo.Context) error {
	v, ok := getViewer(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.uc.ListDrivers(c.Request().Context(), v)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DeliveryHandler) getDriver(c echo.Context) error {
	v, ok := getViewer(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	out, err := h.uc.GetDriver(c.Request().Context(), v, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DeliveryHandler) createDriver(c echo.Context) error {
	var req DriverCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.CreateDriver(c.Request().Context(), req.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *DeliveryHandler) deleteDriver(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	if err := h.uc.DeleteDriver(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

func (h *DeliveryHandler) toggleActive(c echo.Context) error {
	v, ok := getViewer(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	out, err := h.uc.ToggleActive(c.Request().Context(), v, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DeliveryHandler) toggleAvailable(c echo.Context) error {
	v, ok := getViewer(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	out, err := h.uc.ToggleAvailable(c.Request().Context(), v, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DeliveryHandler) listOrders(c echo.Context) error {
	v, ok := getViewer(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.uc.ListDeliveryOrders(c.Request().Context(), v, c.QueryParam("status"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DeliveryHandler) getOrder(c echo.Context) error {
	v, ok := getViewer(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	out, err := h.uc.GetDeliveryOrder(c.Request().Context(), v, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DeliveryHandler) updateStatus(c echo.Context) error {
	v, ok := getViewer(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req DeliveryStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.UpdateDeliveryStatus(c.Request().Context(), v, id, req.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DeliveryHandler) assignDriver(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req AssignDriverRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.AssignDriver(c.Request().Context(), id, req.DriverID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
