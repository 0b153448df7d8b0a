package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"restaurant/internal/config"
	"restaurant/internal/domain/model"
	"restaurant/internal/repository"
	"restaurant/internal/usecase"
)

type SeatingHandler struct {
	uc *usecase.SeatingUsecase
}

func NewSeatingHandler(uc *usecase.SeatingUsecase) *SeatingHandler {
	return &SeatingHandler{uc: uc}
}

type FloorRequest struct {
	Name string `json:"name"`
}

type TableRequest struct {
	TableName  string `json:"table_name"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	SeatsCount int    `json:"seats_count"`
	Capacity   int    `json:"capacity"`
	FloorID    int64  `json:"floor_id"`
	IsReady    *bool  `json:"is_ready"`
}

func (r TableRequest) input() usecase.TableInput {
	return usecase.TableInput{
		TableName:  r.TableName,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		SeatsCount: r.SeatsCount,
		Capacity:   r.Capacity,
		FloorID:    r.FloorID,
		IsReady:    r.IsReady,
	}
}

type ChairRequest struct {
	ChairName string          `json:"chair_name"`
	Amount    decimal.Decimal `json:"amount"`
	IsActive  *bool           `json:"is_active"`
}

func (r ChairRequest) input() usecase.ChairInput {
	return usecase.ChairInput{ChairName: r.ChairName, Amount: r.Amount, IsActive: r.IsActive}
}

type BookingRequest struct {
	ChairID      int64            `json:"chair_id"`
	CustomerName string           `json:"customer_name"`
	CustomerMob  string           `json:"customer_mob"`
	StartTime    time.Time        `json:"start_time"`
	EndTime      time.Time        `json:"end_time"`
	Amount       *decimal.Decimal `json:"amount"`
	OrderID      *int64           `json:"order_id"`
}

func (r BookingRequest) input() usecase.BookingInput {
	return usecase.BookingInput{
		ChairID:      r.ChairID,
		CustomerName: r.CustomerName,
		CustomerMob:  r.CustomerMob,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		Amount:       r.Amount,
		OrderID:      r.OrderID,
	}
}

type AvailabilityRequest struct {
	ChairID   int64     `json:"chair_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

func (h *SeatingHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	floors := protectedGroup(e, "/floors", cfg, userRepo, model.RoleAdmin, model.RoleStaff)
	floors.GET("", h.listFloors)
	floors.GET("/names", h.floorNames)
	floors.POST("", h.createFloor)
	floors.GET("/:id", h.floorDetail)
	floors.PUT("/:id", h.updateFloor)
	floors.DELETE("/:id", h.deleteFloor)

	tables := protectedGroup(e, "/tables", cfg, userRepo, model.RoleAdmin, model.RoleStaff)
	tables.GET("", h.listTables)
	tables.POST("", h.createTable)
	tables.GET("/:id", h.tableDetail)
	tables.PUT("/:id", h.updateTable)
	tables.DELETE("/:id", h.deleteTable)

	chairs := protectedGroup(e, "/chairs", cfg, userRepo, model.RoleAdmin, model.RoleStaff)
	chairs.GET("", h.listChairs)
	chairs.POST("", h.createChair)
	chairs.GET("/:id", h.chairDetail)
	chairs.PUT("/:id", h.updateChair)
	chairs.DELETE("/:id", h.deleteChair)

	bookings := protectedGroup(e, "/chair-bookings", cfg, userRepo, model.RoleAdmin, model.RoleStaff)
	bookings.GET("", h.listBookings)
	bookings.POST("", h.createBooking)
	bookings.POST("/check-availability", h.checkAvailability)
	bookings.GET("/:id", h.bookingDetail)
	bookings.PUT("/:id", h.updateBooking)
	bookings.DELETE("/:id", h.deleteBooking)
	bookings.POST("/:id/confirm", h.confirmBooking)
	bookings.POST("/:id/cancel", h.cancelBooking)
	bookings.POST("/:id/complete", h.completeBooking)
}

// =====================
// floors
// =====================

func (h *SeatingHandler) listFloors(c echo.Context) error {
	out, err := h.uc.ListFloors(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SeatingHandler) floorNames(c echo.Context) error {
	out, err := h.uc.FloorNames(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SeatingHandler) createFloor(c echo.Context) error {
	var req FloorRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.CreateFloor(c.Request().Context(), req.Name)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *SeatingHandler) floorDetail(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	out, err := h.uc.GetFloor(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SeatingHandler) updateFloor(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req FloorRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.UpdateFloor(c.Request().Context(), id, req.Name)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SeatingHandler) deleteFloor(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	if err := h.uc.DeleteFloor(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

// =====================
// tables
// =====================

func (h *SeatingHandler) listTables(c echo.Context) error {
	out, err := h.uc.ListTables(c.Request().Context(), c.QueryParam("floor"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SeatingHandler) createTable(c echo.Context) error {
	var req TableRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.CreateTable(c.Request().Context(), req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *SeatingHandler) tableDetail(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	out, err := h.uc.GetTable(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SeatingHandler) updateTable(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req TableRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.UpdateTable(c.Request().Context(), id, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SeatingHandler) deleteTable(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	if err := h.uc.DeleteTable(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

// =====================
// chairs
// =====================

func (h *SeatingHandler) listChairs(c echo.Context) error {
	out, err := h.uc.ListChairs(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SeatingHandler) createChair(c echo.Context) error {
	var req ChairRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.CreateChair(c.Request().Context(), req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *SeatingHandler) chairDetail(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	out, err := h.uc.GetChair(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SeatingHandler) updateChair(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req ChairRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.UpdateChair(c.Request().Context(), id, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SeatingHandler) deleteChair(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	if err := h.uc.DeleteChair(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

// =====================
// bookings
// =====================

func (h *SeatingHandler) listBookings(c echo.Context) error {
	chairID, ok := queryInt64Ptr(c, "chair_id")
	if !ok {
		return badRequest(c, "invalid chair_id")
	}
	from, ok := queryTime(c, "from")
	if !ok {
		return badRequest(c, "invalid from")
	}
	to, ok := queryTime(c, "to")
	if !ok {
		return badRequest(c, "invalid to")
	}
	out, err := h.uc.ListBookings(c.Request().Context(), repository.ChairBookingFilter{
		ChairID: chairID,
		Status:  c.QueryParam("status"),
		From:    from,
		To:      to,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SeatingHandler) createBooking(c echo.Context) error {
	var req BookingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.CreateBooking(c.Request().Context(), req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *SeatingHandler) checkAvailability(c echo.Context) error {
	var req AvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.CheckAvailability(c.Request().Context(), req.ChairID, req.StartTime, req.EndTime)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SeatingHandler) bookingDetail(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	out, err := h.uc.GetBooking(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SeatingHandler) updateBooking(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req BookingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.UpdateBooking(c.Request().Context(), id, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SeatingHandler) deleteBooking(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	if err := h.uc.DeleteBooking(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

func (h *SeatingHandler) confirmBooking(c echo.Context) error {
	return h.moveBooking(c, h.uc.ConfirmBooking)
}

func (h *SeatingHandler) cancelBooking(c echo.Context) error {
	return h.moveBooking(c, h.uc.CancelBooking)
}

func (h *SeatingHandler) completeBooking(c echo.Context) error {
	return h.moveBooking(c, h.uc.CompleteBooking)
}

func (h *SeatingHandler) moveBooking(c echo.Context, move func(ctx context.Context, id int64) (model.ChairBooking, error)) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	out, err := move(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
