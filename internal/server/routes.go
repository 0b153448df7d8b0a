package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"restaurant/internal/config"
	"restaurant/internal/handler"
	"restaurant/internal/metrics"
	"restaurant/internal/repository"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	AdminUser    *handler.AdminUserHandler
	Dish         *handler.DishHandler
	Order        *handler.OrderHandler
	Bill         *handler.BillHandler
	Delivery     *handler.DeliveryHandler
	Credit       *handler.CreditHandler
	Coupon       *handler.CouponHandler
	Notification *handler.NotificationHandler
	Report       *handler.ReportHandler
	Seating      *handler.SeatingHandler
	Accounting   *handler.AccountingHandler
	Mess         *handler.MessHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository, m *metrics.Metrics, h Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	//認証
	h.Auth.RegisterRoutes(e)
	h.AdminUser.RegisterRoutes(e)

	//業務API
	h.Dish.RegisterRoutes(e, cfg, userRepo)
	h.Order.RegisterRoutes(e, cfg, userRepo)
	h.Bill.RegisterRoutes(e, cfg, userRepo)
	h.Delivery.RegisterRoutes(e, cfg, userRepo)
	h.Credit.RegisterRoutes(e, cfg, userRepo)
	h.Coupon.RegisterRoutes(e, cfg, userRepo)
	h.Notification.RegisterRoutes(e, cfg, userRepo)
	h.Report.RegisterRoutes(e, cfg, userRepo)

	//座席・会計・定期食
	h.Seating.RegisterRoutes(e, cfg, userRepo)
	h.Accounting.RegisterRoutes(e, cfg, userRepo)
	h.Mess.RegisterRoutes(e, cfg, userRepo)
}
