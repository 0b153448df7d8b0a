package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"
)

type AccountingUsecase struct {
	natures      repo.NatureGroupRepository
	groups       repo.MainGroupRepository
	ledgers      repo.LedgerRepository
	transactions repo.LedgerTransactionRepository
	incomes      repo.IncomeStatementRepository
	balances     repo.BalanceSheetRepository
}

func NewAccountingUsecase(
	natures repo.NatureGroupRepository,
	groups repo.MainGroupRepository,
	ledgers repo.LedgerRepository,
	transactions repo.LedgerTransactionRepository,
	incomes repo.IncomeStatementRepository,
	balances repo.BalanceSheetRepository,
) *AccountingUsecase {
	return &AccountingUsecase{
		natures:      natures,
		groups:       groups,
		ledgers:      ledgers,
		transactions: transactions,
		incomes:      incomes,
		balances:     balances,
	}
}

func groupName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", NewHTTPError(http.StatusBadRequest, "name required")
	}
	if utf8.RuneCountInString(name) > 100 {
		return "", NewHTTPError(http.StatusBadRequest, "name too long")
	}
	return name, nil
}

func checkID(id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return nil
}

// 一意制約違反はDB側で弾く（名前検索を持たない表）
func saveError(err error, what string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return notFound(what)
	}
	if err != nil && isUniqueViolation(err) {
		return NewHTTPError(http.StatusConflict, what+" already exists")
	}
	return dbError()
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

// =====================
// nature groups
// =====================

func (u *AccountingUsecase) CreateNatureGroup(ctx context.Context, name string) (model.NatureGroup, error) {
	name, err := groupName(name)
	if err != nil {
		return model.NatureGroup{}, err
	}
	g := model.NatureGroup{Name: name}
	if err := u.natures.Create(ctx, &g); err != nil {
		return model.NatureGroup{}, saveError(err, "nature group")
	}
	return g, nil
}

func (u *AccountingUsecase) GetNatureGroup(ctx context.Context, id int64) (model.NatureGroup, error) {
	if err := checkID(id); err != nil {
		return model.NatureGroup{}, err
	}
	g, err := u.natures.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.NatureGroup{}, notFound("nature group")
	}
	if err != nil {
		return model.NatureGroup{}, dbError()
	}
	return g, nil
}

func (u *AccountingUsecase) ListNatureGroups(ctx context.Context) ([]model.NatureGroup, error) {
	gs, err := u.natures.List(ctx)
	if err != nil {
		return nil, dbError()
	}
	return gs, nil
}

func (u *AccountingUsecase) UpdateNatureGroup(ctx context.Context, id int64, name string) (model.NatureGroup, error) {
	g, err := u.GetNatureGroup(ctx, id)
	if err != nil {
		return model.NatureGroup{}, err
	}
	if g.Name, err = groupName(name); err != nil {
		return model.NatureGroup{}, err
	}
	if err := u.natures.Update(ctx, g); err != nil {
		return model.NatureGroup{}, saveError(err, "nature group")
	}
	return g, nil
}

func (u *AccountingUsecase) DeleteNatureGroup(ctx context.Context, id int64) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := u.natures.Delete(ctx, id); err != nil {
		return saveError(err, "nature group")
	}
	return nil
}

// =====================
// main groups
// =====================

type MainGroupInput struct {
	Name          string
	NatureGroupID int64
}

func (u *AccountingUsecase) buildMainGroup(ctx context.Context, g model.MainGroup, in MainGroupInput) (model.MainGroup, error) {
	name, err := groupName(in.Name)
	if err != nil {
		return g, err
	}
	nature, err := u.GetNatureGroup(ctx, in.NatureGroupID)
	if err != nil {
		return g, err
	}
	g.Name = name
	g.NatureGroupID = nature.ID
	g.NatureGroup = nature
	return g, nil
}

func (u *AccountingUsecase) CreateMainGroup(ctx context.Context, in MainGroupInput) (model.MainGroup, error) {
	g, err := u.buildMainGroup(ctx, model.MainGroup{}, in)
	if err != nil {
		return model.MainGroup{}, err
	}
	if err := u.groups.Create(ctx, &g); err != nil {
		return model.MainGroup{}, saveError(err, "main group")
	}
	return g, nil
}

func (u *AccountingUsecase) GetMainGroup(ctx context.Context, id int64) (model.MainGroup, error) {
	if err := checkID(id); err != nil {
		return model.MainGroup{}, err
	}
	g, err := u.groups.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.MainGroup{}, notFound("main group")
	}
	if err != nil {
		return model.MainGroup{}, dbError()
	}
	return g, nil
}

func (u *AccountingUsecase) ListMainGroups(ctx context.Context) ([]model.MainGroup, error) {
	gs, err := u.groups.List(ctx)
	if err != nil {
		return nil, dbError()
	}
	return gs, nil
}

func (u *AccountingUsecase) UpdateMainGroup(ctx context.Context, id int64, in MainGroupInput) (model.MainGroup, error) {
	g, err := u.GetMainGroup(ctx, id)
	if err != nil {
		return model.MainGroup{}, err
	}
	if g, err = u.buildMainGroup(ctx, g, in); err != nil {
		return model.MainGroup{}, err
	}
	if err := u.groups.Update(ctx, g); err != nil {
		return model.MainGroup{}, saveError(err, "main group")
	}
	return g, nil
}

func (u *AccountingUsecase) DeleteMainGroup(ctx context.Context, id int64) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := u.groups.Delete(ctx, id); err != nil {
		return saveError(err, "main group")
	}
	return nil
}

// =====================
// ledgers
// =====================

type LedgerInput struct {
	Name           string
	MobileNo       string
	OpeningBalance decimal.Decimal
	GroupID        int64
	//空ならDEBIT
	DebitCredit model.DebitCredit
}

func (u *AccountingUsecase) buildLedger(ctx context.Context, l model.Ledger, in LedgerInput) (model.Ledger, error) {
	name, err := groupName(in.Name)
	if err != nil {
		return l, err
	}
	other, err := u.ledgers.FindByName(ctx, name)
	if err == nil && other.ID != l.ID {
		return l, NewHTTPError(http.StatusConflict, "ledger already exists")
	}
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return l, dbError()
	}
	mobile := strings.TrimSpace(in.MobileNo)
	if mobile != "" && !isDigits(mobile) {
		return l, invalidValue("mobile_no must be digits")
	}
	side := in.DebitCredit
	if side == "" {
		side = model.LedgerDebit
	}
	if !side.Valid() {
		return l, invalidValue("debit_credit must be DEBIT or CREDIT")
	}
	group, err := u.GetMainGroup(ctx, in.GroupID)
	if err != nil {
		return l, err
	}

	l.Name = name
	l.MobileNo = mobile
	l.OpeningBalance = in.OpeningBalance.Round(2)
	l.GroupID = group.ID
	l.Group = group
	l.DebitCredit = side
	return l, nil
}

func isDigits(s string) bool {
	if len(s) > 15 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (u *AccountingUsecase) CreateLedger(ctx context.Context, in LedgerInput) (model.Ledger, error) {
	l, err := u.buildLedger(ctx, model.Ledger{}, in)
	if err != nil {
		return model.Ledger{}, err
	}
	if err := u.ledgers.Create(ctx, &l); err != nil {
		return model.Ledger{}, saveError(err, "ledger")
	}
	return l, nil
}

func (u *AccountingUsecase) GetLedger(ctx context.Context, id int64) (model.Ledger, error) {
	if err := checkID(id); err != nil {
		return model.Ledger{}, err
	}
	l, err := u.ledgers.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Ledger{}, notFound("ledger")
	}
	if err != nil {
		return model.Ledger{}, dbError()
	}
	return l, nil
}

func (u *AccountingUsecase) ListLedgers(ctx context.Context) ([]model.Ledger, error) {
	ls, err := u.ledgers.List(ctx)
	if err != nil {
		return nil, dbError()
	}
	return ls, nil
}

func (u *AccountingUsecase) UpdateLedger(ctx context.Context, id int64, in LedgerInput) (model.Ledger, error) {
	l, err := u.GetLedger(ctx, id)
	if err != nil {
		return model.Ledger{}, err
	}
	if l, err = u.buildLedger(ctx, l, in); err != nil {
		return model.Ledger{}, err
	}
	if err := u.ledgers.Update(ctx, l); err != nil {
		return model.Ledger{}, saveError(err, "ledger")
	}
	return l, nil
}

// 仕訳と損益・貸借の行も消える
func (u *AccountingUsecase) DeleteLedger(ctx context.Context, id int64) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := u.ledgers.Delete(ctx, id); err != nil {
		return saveError(err, "ledger")
	}
	return nil
}

// =====================
// transactions
// =====================

type LedgerTransactionInput struct {
	LedgerID        int64
	Date            time.Time
	TransactionType model.LedgerTransactionType
	DebitAmount     decimal.Decimal
	CreditAmount    decimal.Decimal
	Remarks         string
}

// 日付単位で持つ
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (u *AccountingUsecase) buildTransaction(ctx context.Context, t model.LedgerTransaction, in LedgerTransactionInput) (model.LedgerTransaction, error) {
	if in.Date.IsZero() {
		return t, NewHTTPError(http.StatusBadRequest, "date required")
	}
	if !in.TransactionType.Valid() {
		return t, invalidValue("transaction_type must be Pay In or Pay Out")
	}
	if in.DebitAmount.IsNegative() || in.CreditAmount.IsNegative() {
		return t, domainError(http.StatusBadRequest, ErrInvalidAmount, "amounts must be >= 0")
	}
	if in.DebitAmount.IsZero() && in.CreditAmount.IsZero() {
		return t, domainError(http.StatusBadRequest, ErrInvalidAmount, "debit_amount or credit_amount required")
	}
	l, err := u.GetLedger(ctx, in.LedgerID)
	if err != nil {
		return t, err
	}

	t.LedgerID = l.ID
	t.Ledger = l
	t.Date = dayOf(in.Date)
	t.TransactionType = in.TransactionType
	t.DebitAmount = in.DebitAmount.Round(2)
	t.CreditAmount = in.CreditAmount.Round(2)
	t.Remarks = strings.TrimSpace(in.Remarks)
	return t, nil
}

func (u *AccountingUsecase) CreateTransaction(ctx context.Context, in LedgerTransactionInput) (model.LedgerTransaction, error) {
	t, err := u.buildTransaction(ctx, model.LedgerTransaction{}, in)
	if err != nil {
		return model.LedgerTransaction{}, err
	}
	if err := u.transactions.Create(ctx, &t); err != nil {
		return model.LedgerTransaction{}, dbError()
	}
	return t, nil
}

func (u *AccountingUsecase) GetTransaction(ctx context.Context, id int64) (model.LedgerTransaction, error) {
	if err := checkID(id); err != nil {
		return model.LedgerTransaction{}, err
	}
	t, err := u.transactions.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.LedgerTransaction{}, notFound("transaction")
	}
	if err != nil {
		return model.LedgerTransaction{}, dbError()
	}
	return t, nil
}

func (u *AccountingUsecase) ListTransactions(ctx context.Context, f repo.LedgerTransactionFilter) ([]model.LedgerTransaction, error) {
	ts, err := u.transactions.List(ctx, f)
	if err != nil {
		return nil, dbError()
	}
	return ts, nil
}

func (u *AccountingUsecase) UpdateTransaction(ctx context.Context, id int64, in LedgerTransactionInput) (model.LedgerTransaction, error) {
	t, err := u.GetTransaction(ctx, id)
	if err != nil {
		return model.LedgerTransaction{}, err
	}
	if t, err = u.buildTransaction(ctx, t, in); err != nil {
		return model.LedgerTransaction{}, err
	}
	if err := u.transactions.Update(ctx, t); err != nil {
		return model.LedgerTransaction{}, saveError(err, "transaction")
	}
	return t, nil
}

func (u *AccountingUsecase) DeleteTransaction(ctx context.Context, id int64) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := u.transactions.Delete(ctx, id); err != nil {
		return saveError(err, "transaction")
	}
	return nil
}

// =====================
// ledger report
// =====================

type LedgerReportRow struct {
	model.LedgerTransaction
	Balance decimal.Decimal `json:"balance"`
}

type LedgerReport struct {
	Ledger         *model.Ledger     `json:"ledger"`
	From           *time.Time        `json:"from"`
	To             *time.Time        `json:"to"`
	OpeningBalance decimal.Decimal   `json:"opening_balance"`
	TotalDebit     decimal.Decimal   `json:"total_debit"`
	TotalCredit    decimal.Decimal   `json:"total_credit"`
	ClosingBalance decimal.Decimal   `json:"closing_balance"`
	Transactions   []LedgerReportRow `json:"transactions"`
}

// 残高は借方プラス。期首は開始残高とfromより前の仕訳から出す
func (u *AccountingUsecase) LedgerReport(ctx context.Context, ledgerID *int64, from, to *time.Time) (LedgerReport, error) {
	out := LedgerReport{Transactions: []LedgerReportRow{}}
	if from != nil && to != nil && to.Before(*from) {
		return out, invalidValue("to must not be before from")
	}
	if from != nil {
		d := dayOf(*from)
		from = &d
	}
	if to != nil {
		d := dayOf(*to)
		to = &d
	}
	out.From, out.To = from, to

	//元帳の指定がなければ空
	if ledgerID == nil || *ledgerID <= 0 {
		return out, nil
	}
	l, err := u.ledgers.FindByID(ctx, *ledgerID)
	if errors.Is(err, repo.ErrNotFound) {
		return out, nil
	}
	if err != nil {
		return out, dbError()
	}
	out.Ledger = &l

	opening := l.OpeningBalance
	if l.DebitCredit == model.LedgerCredit {
		opening = opening.Neg()
	}
	if from != nil {
		before := from.AddDate(0, 0, -1)
		prior, err := u.transactions.List(ctx, repo.LedgerTransactionFilter{LedgerID: &l.ID, To: &before})
		if err != nil {
			return out, dbError()
		}
		for _, t := range prior {
			opening = opening.Add(t.DebitAmount).Sub(t.CreditAmount)
		}
	}

	ts, err := u.transactions.List(ctx, repo.LedgerTransactionFilter{LedgerID: &l.ID, From: from, To: to})
	if err != nil {
		return out, dbError()
	}
	out.OpeningBalance = opening
	out.TotalDebit, out.TotalCredit = decimal.Zero, decimal.Zero
	balance := opening
	for _, t := range ts {
		balance = balance.Add(t.DebitAmount).Sub(t.CreditAmount)
		out.TotalDebit = out.TotalDebit.Add(t.DebitAmount)
		out.TotalCredit = out.TotalCredit.Add(t.CreditAmount)
		out.Transactions = append(out.Transactions, LedgerReportRow{LedgerTransaction: t, Balance: balance})
	}
	out.ClosingBalance = balance
	return out, nil
}

// =====================
// income statement / balance sheet
// =====================

type StatementInput struct {
	LedgerID int64
	Type     string
	Amount   decimal.Decimal
}

func (u *AccountingUsecase) checkStatement(ctx context.Context, in StatementInput, validType bool) error {
	if !validType {
		return invalidValue("invalid type")
	}
	if in.Amount.IsNegative() {
		return domainError(http.StatusBadRequest, ErrInvalidAmount, "amount must be >= 0")
	}
	_, err := u.GetLedger(ctx, in.LedgerID)
	return err
}

func (u *AccountingUsecase) CreateIncomeStatement(ctx context.Context, in StatementInput) (model.IncomeStatement, error) {
	kind := model.IncomeType(in.Type)
	if err := u.checkStatement(ctx, in, kind.Valid()); err != nil {
		return model.IncomeStatement{}, err
	}
	s := model.IncomeStatement{LedgerID: in.LedgerID, IncomeType: kind, Amount: in.Amount.Round(2)}
	if err := u.incomes.Create(ctx, &s); err != nil {
		return model.IncomeStatement{}, dbError()
	}
	return s, nil
}

func (u *AccountingUsecase) GetIncomeStatement(ctx context.Context, id int64) (model.IncomeStatement, error) {
	if err := checkID(id); err != nil {
		return model.IncomeStatement{}, err
	}
	s, err := u.incomes.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.IncomeStatement{}, notFound("income statement")
	}
	if err != nil {
		return model.IncomeStatement{}, dbError()
	}
	return s, nil
}

func (u *AccountingUsecase) ListIncomeStatements(ctx context.Context) ([]model.IncomeStatement, error) {
	ss, err := u.incomes.List(ctx)
	if err != nil {
		return nil, dbError()
	}
	return ss, nil
}

func (u *AccountingUsecase) UpdateIncomeStatement(ctx context.Context, id int64, in StatementInput) (model.IncomeStatement, error) {
	s, err := u.GetIncomeStatement(ctx, id)
	if err != nil {
		return model.IncomeStatement{}, err
	}
	kind := model.IncomeType(in.Type)
	if err := u.checkStatement(ctx, in, kind.Valid()); err != nil {
		return model.IncomeStatement{}, err
	}
	s.LedgerID, s.IncomeType, s.Amount = in.LedgerID, kind, in.Amount.Round(2)
	if err := u.incomes.Update(ctx, s); err != nil {
		return model.IncomeStatement{}, saveError(err, "income statement")
	}
	return s, nil
}

func (u *AccountingUsecase) DeleteIncomeStatement(ctx context.Context, id int64) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := u.incomes.Delete(ctx, id); err != nil {
		return saveError(err, "income statement")
	}
	return nil
}

func (u *AccountingUsecase) CreateBalanceSheet(ctx context.Context, in StatementInput) (model.BalanceSheet, error) {
	kind := model.BalanceType(in.Type)
	if err := u.checkStatement(ctx, in, kind.Valid()); err != nil {
		return model.BalanceSheet{}, err
	}
	s := model.BalanceSheet{LedgerID: in.LedgerID, BalanceType: kind, Amount: in.Amount.Round(2)}
	if err := u.balances.Create(ctx, &s); err != nil {
		return model.BalanceSheet{}, dbError()
	}
	return s, nil
}

func (u *AccountingUsecase) GetBalanceSheet(ctx context.Context, id int64) (model.BalanceSheet, error) {
	if err := checkID(id); err != nil {
		return model.BalanceSheet{}, err
	}
	s, err := u.balances.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.BalanceSheet{}, notFound("balance sheet")
	}
	if err != nil {
		return model.BalanceSheet{}, dbError()
	}
	return s, nil
}

func (u *AccountingUsecase) ListBalanceSheets(ctx context.Context) ([]model.BalanceSheet, error) {
	ss, err := u.balances.List(ctx)
	if err != nil {
		return nil, dbError()
	}
	return ss, nil
}

func (u *AccountingUsecase) UpdateBalanceSheet(ctx context.Context, id int64, in StatementInput) (model.BalanceSheet, error) {
	s, err := u.GetBalanceSheet(ctx, id)
	if err != nil {
		return model.BalanceSheet{}, err
	}
	kind := model.BalanceType(in.Type)
	if err := u.checkStatement(ctx, in, kind.Valid()); err != nil {
		return model.BalanceSheet{}, err
	}
	s.LedgerID, s.BalanceType, s.Amount = in.LedgerID, kind, in.Amount.Round(2)
	if err := u.balances.Update(ctx, s); err != nil {
		return model.BalanceSheet{}, saveError(err, "balance sheet")
	}
	return s, nil
}

func (u *AccountingUsecase) DeleteBalanceSheet(ctx context.Context, id int64) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := u.balances.Delete(ctx, id); err != nil {
		return saveError(err, "balance sheet")
	}
	return nil
}
