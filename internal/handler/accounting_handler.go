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

// 会計（勘定科目・元帳・仕訳）は管理者のみ
type AccountingHandler struct {
	uc *usecase.AccountingUsecase
}

func NewAccountingHandler(uc *usecase.AccountingUsecase) *AccountingHandler {
	return &AccountingHandler{uc: uc}
}

type NatureGroupRequest struct {
	Name string `json:"name"`
}

type MainGroupRequest struct {
	Name          string `json:"name"`
	NatureGroupID int64  `json:"nature_group_id"`
}

func (r MainGroupRequest) input() usecase.MainGroupInput {
	return usecase.MainGroupInput{Name: r.Name, NatureGroupID: r.NatureGroupID}
}

type LedgerRequest struct {
	Name           string          `json:"name"`
	MobileNo       string          `json:"mobile_no"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	GroupID        int64           `json:"group_id"`
	DebitCredit    string          `json:"debit_credit"`
}

func (r LedgerRequest) input() usecase.LedgerInput {
	return usecase.LedgerInput{
		Name:           r.Name,
		MobileNo:       r.MobileNo,
		OpeningBalance: r.OpeningBalance,
		GroupID:        r.GroupID,
		DebitCredit:    model.DebitCredit(r.DebitCredit),
	}
}

type LedgerTransactionRequest struct {
	LedgerID        int64           `json:"ledger_id"`
	Date            string          `json:"date"`
	TransactionType string          `json:"transaction_type"`
	DebitAmount     decimal.Decimal `json:"debit_amount"`
	CreditAmount    decimal.Decimal `json:"credit_amount"`
	Remarks         string          `json:"remarks"`
}

// dateは 2006-01-02 か RFC3339
func (r LedgerTransactionRequest) input() (usecase.LedgerTransactionInput, bool) {
	var date time.Time
	if r.Date != "" {
		d, ok := parseTime(r.Date)
		if !ok {
			return usecase.LedgerTransactionInput{}, false
		}
		date = d
	}
	return usecase.LedgerTransactionInput{
		LedgerID:        r.LedgerID,
		Date:            date,
		TransactionType: model.LedgerTransactionType(r.TransactionType),
		DebitAmount:     r.DebitAmount,
		CreditAmount:    r.CreditAmount,
		Remarks:         r.Remarks,
	}, true
}

type IncomeStatementRequest struct {
	LedgerID   int64           `json:"ledger_id"`
	IncomeType string          `json:"income_type"`
	Amount     decimal.Decimal `json:"amount"`
}

type BalanceSheetRequest struct {
	LedgerID    int64           `json:"ledger_id"`
	BalanceType string          `json:"balance_type"`
	Amount      decimal.Decimal `json:"amount"`
}

func (h *AccountingHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	natures := protectedGroup(e, "/nature-groups", cfg, userRepo, model.RoleAdmin)
	natures.GET("", h.listNatureGroups)
	natures.POST("", h.createNatureGroup)
	natures.GET("/:id", h.natureGroupDetail)
	natures.PUT("/:id", h.updateNatureGroup)
	natures.DELETE("/:id", h.deleteNatureGroup)

	groups := protectedGroup(e, "/main-groups", cfg, userRepo, model.RoleAdmin)
	groups.GET("", h.listMainGroups)
	groups.POST("", h.createMainGroup)
	groups.GET("/:id", h.mainGroupDetail)
	groups.PUT("/:id", h.updateMainGroup)
	groups.DELETE("/:id", h.deleteMainGroup)

	ledgers := protectedGroup(e, "/ledgers", cfg, userRepo, model.RoleAdmin)
	ledgers.GET("", h.listLedgers)
	ledgers.POST("", h.createLedger)
	ledgers.GET("/:id", h.ledgerDetail)
	ledgers.PUT("/:id", h.updateLedger)
	ledgers.DELETE("/:id", h.deleteLedger)

	txs := protectedGroup(e, "/ledger-transactions", cfg, userRepo, model.RoleAdmin)
	txs.GET("", h.listTransactions)
	txs.GET("/report", h.ledgerReport)
	txs.POST("", h.createTransaction)
	txs.GET("/:id", h.transactionDetail)
	txs.PUT("/:id", h.updateTransaction)
	txs.DELETE("/:id", h.deleteTransaction)

	incomes := protectedGroup(e, "/income-statements", cfg, userRepo, model.RoleAdmin)
	incomes.GET("", h.listIncomeStatements)
	incomes.POST("", h.createIncomeStatement)
	incomes.GET("/:id", h.incomeStatementDetail)
	incomes.PUT("/:id", h.updateIncomeStatement)
	incomes.DELETE("/:id", h.deleteIncomeStatement)

	balances := protectedGroup(e, "/balance-sheets", cfg, userRepo, model.RoleAdmin)
	balances.GET("", h.listBalanceSheets)
	balances.POST("", h.createBalanceSheet)
	balances.GET("/:id", h.balanceSheetDetail)
	balances.PUT("/:id", h.updateBalanceSheet)
	balances.DELETE("/:id", h.deleteBalanceSheet)
}

// =====================
// nature groups
// =====================

func (h *AccountingHandler) listNatureGroups(c echo.Context) error {
	out, err := h.uc.ListNatureGroups(c.Request().Context())
	return respond(c, http.StatusOK, out, err)
}

func (h *AccountingHandler) createNatureGroup(c echo.Context) error {
	var req NatureGroupRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.CreateNatureGroup(c.Request().Context(), req.Name)
	return respond(c, http.StatusCreated, out, err)
}

func (h *AccountingHandler) natureGroupDetail(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	out, err := h.uc.GetNatureGroup(c.Request().Context(), id)
	return respond(c, http.StatusOK, out, err)
}

func (h *AccountingHandler) updateNatureGroup(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req NatureGroupRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.UpdateNatureGroup(c.Request().Context(), id, req.Name)
	return respond(c, http.StatusOK, out, err)
}

func (h *AccountingHandler) deleteNatureGroup(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	return deleted(c, h.uc.DeleteNatureGroup(c.Request().Context(), id))
}

// =====================
// main groups
// =====================

func (h *AccountingHandler) listMainGroups(c echo.Context) error {
	out, err := h.uc.ListMainGroups(c.Request().Context())
	return respond(c, http.StatusOK, out, err)
}

func (h *AccountingHandler) createMainGroup(c echo.Context) error {
	var req MainGroupRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.CreateMainGroup(c.Request().Context(), req.input())
	return respond(c, http.StatusCreated, out, err)
}

func (h *AccountingHandler) mainGroupDetail(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	out, err := h.uc.GetMainGroup(c.Request().Context(), id)
	return respond(c, http.StatusOK, out, err)
}

func (h *AccountingHandler) updateMainGroup(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req MainGroupRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.UpdateMainGroup(c.Request().Context(), id, req.input())
	return respond(c, http.StatusOK, out, err)
}

func (h *AccountingHandler) deleteMainGroup(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	return deleted(c, h.uc.DeleteMainGroup(c.Request().Context(), id))
}

// =====================
// ledgers
// =====================

func (h *AccountingHandler) listLedgers(c echo.Context) error {
	out, err := h.uc.ListLedgers(c.Request().Context())
	return respond(c, http.StatusOK, out, err)
}

func (h *AccountingHandler) createLedger(c echo.Context) error {
	var req LedgerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.CreateLedger(c.Request().Context(), req.input())
	return respond(c, http.StatusCreated, out, err)
}

func (h *AccountingHandler) ledgerDetail(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	out, err := h.uc.GetLedger(c.Request().Context(), id)
	return respond(c, http.StatusOK, out, err)
}

func (h *AccountingHandler) updateLedger(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req LedgerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.UpdateLedger(c.Request().Context(), id, req.input())
	return respond(c, http.StatusOK, out, err)
}

func (h *AccountingHandler) deleteLedger(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	return deleted(c, h.uc.DeleteLedger(c.Request().Context(), id))
}

// =====================
// transactions
// =====================

func (h *AccountingHandler) listTransactions(c echo.Context) error {
	ledgerID, ok := queryInt64Ptr(c, "ledger_id")
	if !ok {
		return badRequest(c, "invalid ledger_id")
	}
	from, ok := queryTime(c, "from")
	if !ok {
		return badRequest(c, "invalid from")
	}
	to, ok := queryTime(c, "to")
	if !ok {
		return badRequest(c, "invalid to")
	}
	out, err := h.uc.ListTransactions(c.Request().Context(), repository.LedgerTransactionFilter{LedgerID: ledgerID, From: from, To: to})
	return respond(c, http.StatusOK, out, err)
}

// ledger未指定なら空の一覧
func (h *AccountingHandler) ledgerReport(c echo.Context) error {
	ledgerID, ok := queryInt64Ptr(c, "ledger_id")
	if !ok {
		return badRequest(c, "invalid ledger_id")
	}
	from, ok := queryTime(c, "from")
	if !ok {
		return badRequest(c, "invalid from")
	}
	to, ok := queryTime(c, "to")
	if !ok {
		return badRequest(c, "invalid to")
	}
	out, err := h.uc.LedgerReport(c.Request().Context(), ledgerID, from, to)
	return respond(c, http.StatusOK, out, err)
}

func (h *AccountingHandler) createTransaction(c echo.Context) error {
	var req LedgerTransactionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	in, ok := req.input()
	if !ok {
		return badRequest(c, "invalid date")
	}
	out, err := h.uc.CreateTransaction(c.Request().Context(), in)
	return respond(c, http.StatusCreated, out, err)
}

func (h *AccountingHandler) transactionDetail(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	out, err := h.uc.GetTransaction(c.Request().Context(), id)
	return respond(c, http.StatusOK, out, err)
}

func (h *AccountingHandler) updateTransaction(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req LedgerTransactionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	in, ok := req.input()
	if !ok {
		return badRequest(c, "invalid date")
	}
	out, err := h.uc.UpdateTransaction(c.Request().Context(), id, in)
	return respond(c, http.StatusOK, out, err)
}

func (h *AccountingHandler) deleteTransaction(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	return deleted(c, h.uc.DeleteTransaction(c.Request().Context(), id))
}

// =====================
// income statements / balance sheets
// =====================

func (h *AccountingHandler) listIncomeStatements(c echo.Context) error {
	out, err := h.uc.ListIncomeStatements(c.Request().Context())
	return respond(c, http.StatusOK, out, err)
}

func (h *AccountingHandler) createIncomeStatement(c echo.Context) error {
	var req IncomeStatementRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.CreateIncomeStatement(c.Request().Context(), usecase.StatementInput{LedgerID: req.LedgerID, Type: req.IncomeType, Amount: req.Amount})
	return respond(c, http.StatusCreated, out, err)
}

func (h *AccountingHandler) incomeStatementDetail(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	out, err := h.uc.GetIncomeStatement(c.Request().Context(), id)
	return respond(c, http.StatusOK, out, err)
}

func (h *AccountingHandler) updateIncomeStatement(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req IncomeStatementRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.UpdateIncomeStatement(c.Request().Context(), id, usecase.StatementInput{LedgerID: req.LedgerID, Type: req.IncomeType, Amount: req.Amount})
	return respond(c, http.StatusOK, out, err)
}

func (h *AccountingHandler) deleteIncomeStatement(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	return deleted(c, h.uc.DeleteIncomeStatement(c.Request().Context(), id))
}

func (h *AccountingHandler) listBalanceSheets(c echo.Context) error {
	out, err := h.uc.ListBalanceSheets(c.Request().Context())
	return respond(c, http.StatusOK, out, err)
}

func (h *AccountingHandler) createBalanceSheet(c echo.Context) error {
	var req BalanceSheetRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.CreateBalanceSheet(c.Request().Context(), usecase.StatementInput{LedgerID: req.LedgerID, Type: req.BalanceType, Amount: req.Amount})
	return respond(c, http.StatusCreated, out, err)
}

func (h *AccountingHandler) balanceSheetDetail(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	out, err := h.uc.GetBalanceSheet(c.Request().Context(), id)
	return respond(c, http.StatusOK, out, err)
}

func (h *AccountingHandler) updateBalanceSheet(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req BalanceSheetRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.UpdateBalanceSheet(c.Request().Context(), id, usecase.StatementInput{LedgerID: req.LedgerID, Type: req.BalanceType, Amount: req.Amount})
	return respond(c, http.StatusOK, out, err)
}

func (h *AccountingHandler) deleteBalanceSheet(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	return deleted(c, h.uc.DeleteBalanceSheet(c.Request().Context(), id))
}
