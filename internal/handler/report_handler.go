package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"restaurant/internal/config"
	"restaurant/internal/domain/model"
	"restaurant/internal/repository"
	"restaurant/internal/usecase"
)

// /reports は管理者のみ
type ReportHandler struct {
	uc *usecase.ReportUsecase
}

func NewReportHandler(uc *usecase.ReportUsecase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

func (h *ReportHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := protectedGroup(e, "/reports", cfg, userRepo, model.RoleAdmin)

	g.GET("/dashboard", h.dashboard)
	g.GET("/trends", h.trends)
	g.GET("/sales", h.sales)
	g.GET("/products", h.products)
	g.GET("/drivers", h.drivers)
	g.GET("/staff-orders", h.staffOrders)
}

func (h *ReportHandler) dashboard(c echo.Context) error {
	out, err := h.uc.Dashboard(c.Request().Context(), c.QueryParam("time_range"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ReportHandler) trends(c echo.Context) error {
	out, err := h.uc.SalesTrends(c.Request().Context(), c.QueryParam("time_range"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// from_date / to_date（2006-01-02）
func dateRange(c echo.Context) (usecase.ReportDateRange, bool) {
	from, ok := queryTime(c, "from_date")
	if !ok {
		return usecase.ReportDateRange{}, false
	}
	to, ok := queryTime(c, "to_date")
	if !ok {
		return usecase.ReportDateRange{}, false
	}
	return usecase.ReportDateRange{From: from, To: to}, true
}

func (h *ReportHandler) sales(c echo.Context) error {
	dr, ok := dateRange(c)
	if !ok {
		return badRequest(c, "invalid date")
	}
	out, err := h.uc.SalesReport(c.Request().Context(), usecase.SalesReportInput{
		ReportDateRange: dr,
		OrderType:       c.QueryParam("order_type"),
		PaymentMethod:   c.QueryParam("payment_method"),
		Status:          c.QueryParam("status"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ReportHandler) products(c echo.Context) error {
	dr, ok := dateRange(c)
	if !ok {
		return badRequest(c, "invalid date")
	}
	out, err := h.uc.ProductWiseReport(c.Request().Context(), dr)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ReportHandler) drivers(c echo.Context) error {
	dr, ok := dateRange(c)
	if !ok {
		return badRequest(c, "invalid date")
	}
	driverID, ok := queryInt64Ptr(c, "delivery_driver_id")
	if !ok {
		return badRequest(c, "invalid delivery_driver_id")
	}
	out, err := h.uc.DriverReport(c.Request().Context(), dr, driverID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ReportHandler) staffOrders(c echo.Context) error {
	dr, ok := dateRange(c)
	if !ok {
		return badRequest(c, "invalid date")
	}
	userID, ok := queryInt64Ptr(c, "user_id")
	if !ok {
		return badRequest(c, "invalid user_id")
	}
	out, err := h.uc.StaffOrderReport(c.Request().Context(), dr, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
