package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"restaurant/internal/config"
	"restaurant/internal/domain/model"
	"restaurant/internal/repository"
	"restaurant/internal/usecase"
)

// 定期食（メス）契約
type MessHandler struct {
	uc *usecase.MessUsecase
}

func NewMessHandler(uc *usecase.MessUsecase) *MessHandler {
	return &MessHandler{uc: uc}
}

type MessTypeRequest struct {
	Name string `json:"name"`
}

type MenuItemRequest struct {
	DishID   int64   `json:"dish_id"`
	MealType *string `json:"meal_type"`
}

func (r MenuItemRequest) input() usecase.MenuItemInput {
	return usecase.MenuItemInput{DishID: r.DishID, MealType: r.MealType}
}

type MenuRequest struct {
	Name       string            `json:"name"`
	DayOfWeek  *string           `json:"day_of_week"`
	IsCustom   bool              `json:"is_custom"`
	MessTypeID *int64            `json:"mess_type_id"`
	CreatedBy  string            `json:"created_by"`
	Items      []MenuItemRequest `json:"items"`
}

func (r MenuRequest) input() usecase.MenuInput {
	items := make([]usecase.MenuItemInput, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, it.input())
	}
	return usecase.MenuInput{
		Name:       r.Name,
		DayOfWeek:  r.DayOfWeek,
		IsCustom:   r.IsCustom,
		MessTypeID: r.MessTypeID,
		CreatedBy:  r.CreatedBy,
		Items:      items,
	}
}

type MessRequest struct {
	CustomerName  string          `json:"customer_name"`
	MobileNumber  string          `json:"mobile_number"`
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
	MessTypeID    int64           `json:"mess_type_id"`
	PaymentMethod string          `json:"payment_method"`
	MenuIDs       []int64         `json:"menus"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	CashAmount    decimal.Decimal `json:"cash_amount"`
	BankAmount    decimal.Decimal `json:"bank_amount"`
}

// 日付が読めなければfalse
func (r MessRequest) input() (usecase.MessInput, bool) {
	start, ok := optionalDate(r.StartDate)
	if !ok {
		return usecase.MessInput{}, false
	}
	end, ok := optionalDate(r.EndDate)
	if !ok {
		return usecase.MessInput{}, false
	}
	return usecase.MessInput{
		CustomerName:  r.CustomerName,
		MobileNumber:  r.MobileNumber,
		StartDate:     start,
		EndDate:       end,
		MessTypeID:    r.MessTypeID,
		PaymentMethod: r.PaymentMethod,
		MenuIDs:       r.MenuIDs,
		PaidAmount:    r.PaidAmount,
		CashAmount:    r.CashAmount,
		BankAmount:    r.BankAmount,
	}, true
}

func optionalDate(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, true
	}
	return parseTime(v)
}

type MessPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	CashAmount    decimal.Decimal `json:"cash_amount"`
	BankAmount    decimal.Decimal `json:"bank_amount"`
}

func (h *MessHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	types := protectedGroup(e, "/mess-types", cfg, userRepo, model.RoleAdmin, model.RoleStaff)
	types.GET("", h.listMessTypes)
	types.POST("", h.createMessType)
	types.DELETE("/:id", h.deleteMessType)

	menus := protectedGroup(e, "/menus", cfg, userRepo, model.RoleAdmin, model.RoleStaff)
	menus.GET("", h.listMenus)
	menus.POST("", h.createMenu)
	menus.GET("/:id", h.menuDetail)
	menus.PUT("/:id", h.updateMenu)
	menus.DELETE("/:id", h.deleteMenu)
	menus.POST("/:id/items", h.addMenuItem)
	menus.DELETE("/:id/items/:item_id", h.removeMenuItem)

	messes := protectedGroup(e, "/messes", cfg, userRepo, model.RoleAdmin, model.RoleStaff)
	messes.GET("", h.report)
	messes.GET("/report", h.report)
	messes.POST("", h.createMess)
	messes.GET("/:id", h.messDetail)
	messes.PUT("/:id", h.updateMess)
	messes.DELETE("/:id", h.deleteMess)
	messes.POST("/:id/payments", h.recordPayment)

	txs := protectedGroup(e, "/mess-transactions", cfg, userRepo, model.RoleAdmin, model.RoleStaff)
	txs.GET("", h.listTransactions)
	txs.POST("/:id/cancel", h.cancelTransaction)
}

// =====================
// mess types
// =====================

func (h *MessHandler) listMessTypes(c echo.Context) error {
	out, err := h.uc.ListMessTypes(c.Request().Context())
	return respond(c, http.StatusOK, out, err)
}

func (h *MessHandler) createMessType(c echo.Context) error {
	var req MessTypeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.CreateMessType(c.Request().Context(), req.Name)
	return respond(c, http.StatusCreated, out, err)
}

func (h *MessHandler) deleteMessType(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	return deleted(c, h.uc.DeleteMessType(c.Request().Context(), id))
}

// =====================
// menus
// =====================

func (h *MessHandler) listMenus(c echo.Context) error {
	typeID, ok := queryInt64Ptr(c, "mess_type_id")
	if !ok {
		return badRequest(c, "invalid mess_type_id")
	}
	f := repository.MenuListFilter{
		MessTypeID: typeID,
		CreatedBy:  c.QueryParam("created_by"),
		Search:     c.QueryParam("search"),
	}
	if v := c.QueryParam("is_custom"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return badRequest(c, "invalid is_custom")
		}
		f.IsCustom = &b
	}
	out, err := h.uc.ListMenus(c.Request().Context(), f)
	return respond(c, http.StatusOK, out, err)
}

func (h *MessHandler) createMenu(c echo.Context) error {
	var req MenuRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.CreateMenu(c.Request().Context(), req.input())
	return respond(c, http.StatusCreated, out, err)
}

func (h *MessHandler) menuDetail(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	out, err := h.uc.GetMenu(c.Request().Context(), id)
	return respond(c, http.StatusOK, out, err)
}

func (h *MessHandler) updateMenu(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req MenuRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.UpdateMenu(c.Request().Context(), id, req.input())
	return respond(c, http.StatusOK, out, err)
}

func (h *MessHandler) deleteMenu(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	return deleted(c, h.uc.DeleteMenu(c.Request().Context(), id))
}

func (h *MessHandler) addMenuItem(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req MenuItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.AddMenuItem(c.Request().Context(), id, req.input())
	return respond(c, http.StatusCreated, out, err)
}

func (h *MessHandler) removeMenuItem(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	itemID, ok := parseIDParam(c, "item_id")
	if !ok {
		return badRequest(c, "invalid item_id")
	}
	out, err := h.uc.RemoveMenuItem(c.Request().Context(), id, itemID)
	return respond(c, http.StatusOK, out, err)
}

// =====================
// messes
// =====================

// 不正なmess_typeは400
func (h *MessHandler) report(c echo.Context) error {
	from, ok := queryTime(c, "from")
	if !ok {
		return badRequest(c, "invalid from")
	}
	to, ok := queryTime(c, "to")
	if !ok {
		return badRequest(c, "invalid to")
	}
	out, err := h.uc.MessReport(c.Request().Context(), usecase.MessReportInput{
		From:          from,
		To:            to,
		PaymentMethod: c.QueryParam("payment_method"),
		MessType:      c.QueryParam("mess_type"),
	})
	return respond(c, http.StatusOK, out, err)
}

func (h *MessHandler) createMess(c echo.Context) error {
	var req MessRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	in, ok := req.input()
	if !ok {
		return badRequest(c, "invalid date")
	}
	out, err := h.uc.CreateMess(c.Request().Context(), in)
	return respond(c, http.StatusCreated, out, err)
}

func (h *MessHandler) messDetail(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	out, err := h.uc.GetMess(c.Request().Context(), id)
	return respond(c, http.StatusOK, out, err)
}

func (h *MessHandler) updateMess(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req MessRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	in, ok := req.input()
	if !ok {
		return badRequest(c, "invalid date")
	}
	out, err := h.uc.UpdateMess(c.Request().Context(), id, in)
	return respond(c, http.StatusOK, out, err)
}

func (h *MessHandler) deleteMess(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	return deleted(c, h.uc.DeleteMess(c.Request().Context(), id))
}

func (h *MessHandler) recordPayment(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req MessPaymentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.RecordPayment(c.Request().Context(), id, usecase.MessPaymentInput{
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		CashAmount:    req.CashAmount,
		BankAmount:    req.BankAmount,
	})
	return respond(c, http.StatusCreated, out, err)
}

// =====================
// transactions
// =====================

func (h *MessHandler) listTransactions(c echo.Context) error {
	messID, ok := queryInt64Ptr(c, "mess_id")
	if !ok {
		return badRequest(c, "invalid mess_id")
	}
	out, err := h.uc.ListTransactions(c.Request().Context(), messID)
	return respond(c, http.StatusOK, out, err)
}

func (h *MessHandler) cancelTransaction(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	out, err := h.uc.CancelTransaction(c.Request().Context(), id)
	return respond(c, http.StatusOK, out, err)
}
