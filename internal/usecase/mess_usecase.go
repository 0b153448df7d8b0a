package usecase

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"restaurant/internal/domain/model"
	"restaurant/internal/domain/pricing"
	repo "restaurant/internal/repository"
)

type MessUsecase struct {
	tx           repo.TransactionManager
	types        repo.MessTypeRepository
	menus        repo.MenuRepository
	messes       repo.MessRepository
	transactions repo.MessTransactionRepository
	now          func() time.Time
}

func NewMessUsecase(tx repo.TransactionManager, types repo.MessTypeRepository, menus repo.MenuRepository, messes repo.MessRepository, transactions repo.MessTransactionRepository) *MessUsecase {
	return &MessUsecase{tx: tx, types: types, menus: menus, messes: messes, transactions: transactions, now: time.Now}
}

// =====================
// mess types
// =====================

func (u *MessUsecase) CreateMessType(ctx context.Context, name string) (model.MessType, error) {
	n := model.MessTypeName(strings.TrimSpace(name))
	if !n.Valid() {
		return model.MessType{}, invalidValue("invalid mess_type")
	}
	_, err := u.types.FindByName(ctx, n)
	if err == nil {
		return model.MessType{}, NewHTTPError(http.StatusConflict, "mess_type already exists")
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return model.MessType{}, dbError()
	}
	t := model.MessType{Name: n}
	if err := u.types.Create(ctx, &t); err != nil {
		return model.MessType{}, dbError()
	}
	return t, nil
}

func (u *MessUsecase) ListMessTypes(ctx context.Context) ([]model.MessType, error) {
	ts, err := u.types.List(ctx)
	if err != nil {
		return nil, dbError()
	}
	return ts, nil
}

func (u *MessUsecase) getMessType(ctx context.Context, id int64) (model.MessType, error) {
	if id <= 0 {
		return model.MessType{}, NewHTTPError(http.StatusBadRequest, "mess_type_id required")
	}
	t, err := u.types.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.MessType{}, notFound("mess_type")
	}
	if err != nil {
		return model.MessType{}, dbError()
	}
	return t, nil
}

// 契約で使われている種別は消せない
func (u *MessUsecase) DeleteMessType(ctx context.Context, id int64) error {
	t, err := u.getMessType(ctx, id)
	if err != nil {
		return err
	}
	used, err := u.messes.List(ctx, repo.MessReportFilter{MessTypeID: &t.ID})
	if err != nil {
		return dbError()
	}
	if len(used) > 0 {
		return NewHTTPError(http.StatusConflict, "mess_type is in use")
	}
	if err := u.types.Delete(ctx, t.ID); err != nil {
		return dbError()
	}
	return nil
}

// =====================
// menus
// =====================

type MenuItemInput struct {
	DishID   int64
	MealType *string
}

type MenuInput struct {
	Name       string
	DayOfWeek  *string
	IsCustom   bool
	MessTypeID *int64
	CreatedBy  string
	//作成時のみ使う
	Items []MenuItemInput
}

func (u *MessUsecase) buildMenu(ctx context.Context, m model.Menu, in MenuInput) (model.Menu, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return m, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if utf8.RuneCountInString(name) > 255 {
		return m, NewHTTPError(http.StatusBadRequest, "name too long")
	}
	m.Name = name
	m.DayOfWeek = nil
	if in.DayOfWeek != nil && strings.TrimSpace(*in.DayOfWeek) != "" {
		d := model.DayOfWeek(strings.ToLower(strings.TrimSpace(*in.DayOfWeek)))
		if !d.Valid() {
			return m, invalidValue("invalid day_of_week")
		}
		m.DayOfWeek = &d
	}
	m.IsCustom = in.IsCustom
	m.CreatedBy = strings.TrimSpace(in.CreatedBy)
	if m.CreatedBy == "" {
		m.CreatedBy = "admin"
	}
	m.MessTypeID = nil
	m.MessType = nil
	if in.MessTypeID != nil {
		t, err := u.getMessType(ctx, *in.MessTypeID)
		if err != nil {
			return m, err
		}
		m.MessTypeID = &t.ID
		m.MessType = &t
	}
	return m, nil
}

// 食事区分の検証。メニューに種別があればその種別に含まれる食事のみ
func mealTypeFor(m model.Menu, raw *string) (*model.MealType, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	meal := model.MealType(strings.ToLower(strings.TrimSpace(*raw)))
	if !meal.Valid() {
		return nil, invalidValue("invalid meal_type")
	}
	if m.MessType != nil && !m.MessType.Name.Includes(meal) {
		return nil, invalidValue("meal_type is not part of the mess_type")
	}
	return &meal, nil
}

func (u *MessUsecase) CreateMenu(ctx context.Context, in MenuInput) (model.Menu, error) {
	m, err := u.buildMenu(ctx, model.Menu{}, in)
	if err != nil {
		return model.Menu{}, err
	}
	var out model.Menu
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		items, err := menuItems(ctx, r, m, in.Items)
		if err != nil {
			return err
		}
		if err := r.Menus().Create(ctx, &m); err != nil {
			return dbError()
		}
		for i := range items {
			items[i].MenuID = m.ID
			if err := r.Menus().AddItem(ctx, &items[i]); err != nil {
				return dbError()
			}
		}
		out, err = refreshMenu(ctx, r, m.ID)
		return err
	})
	if err != nil {
		return model.Menu{}, err
	}
	return out, nil
}

func menuItems(ctx context.Context, r repo.TxRepos, m model.Menu, in []MenuItemInput) ([]model.MenuItem, error) {
	if len(in) == 0 {
		return []model.MenuItem{}, nil
	}
	ids := make([]int64, 0, len(in))
	for _, it := range in {
		if it.DishID <= 0 {
			return nil, NewHTTPError(http.StatusBadRequest, "dish_id required")
		}
		ids = append(ids, it.DishID)
	}
	dishes, err := r.Dishes().FindByIDs(ctx, ids)
	if err != nil {
		return nil, dbError()
	}
	items := make([]model.MenuItem, 0, len(in))
	for _, it := range in {
		if _, ok := dishes[it.DishID]; !ok {
			return nil, notFound("dish")
		}
		meal, err := mealTypeFor(m, it.MealType)
		if err != nil {
			return nil, err
		}
		items = append(items, model.MenuItem{DishID: it.DishID, MealType: meal})
	}
	return items, nil
}

func (u *MessUsecase) GetMenu(ctx context.Context, id int64) (model.Menu, error) {
	if id <= 0 {
		return model.Menu{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	m, err := u.menus.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Menu{}, notFound("menu")
	}
	if err != nil {
		return model.Menu{}, dbError()
	}
	return m, nil
}

func (u *MessUsecase) ListMenus(ctx context.Context, f repo.MenuListFilter) ([]model.Menu, error) {
	f.Search = strings.TrimSpace(f.Search)
	ms, err := u.menus.List(ctx, f)
	if err != nil {
		return nil, dbError()
	}
	return ms, nil
}

// 明細は別APIで増減する。種別を変えるときは既存明細の食事区分を見直す
func (u *MessUsecase) UpdateMenu(ctx context.Context, id int64, in MenuInput) (model.Menu, error) {
	m, err := u.GetMenu(ctx, id)
	if err != nil {
		return model.Menu{}, err
	}
	if m, err = u.buildMenu(ctx, m, in); err != nil {
		return model.Menu{}, err
	}
	for _, it := range m.MenuItems {
		if it.MealType == nil {
			continue
		}
		raw := string(*it.MealType)
		if _, err := mealTypeFor(m, &raw); err != nil {
			return model.Menu{}, err
		}
	}
	if err := u.menus.Update(ctx, m); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Menu{}, notFound("menu")
		}
		return model.Menu{}, dbError()
	}
	return u.GetMenu(ctx, id)
}

// 使っている契約の合計も減る
func (u *MessUsecase) DeleteMenu(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := lockMenu(ctx, r, id); err != nil {
			return err
		}
		messIDs, err := r.Menus().MessIDsUsing(ctx, id)
		if err != nil {
			return dbError()
		}
		if err := r.Menus().Delete(ctx, id); err != nil {
			return dbError()
		}
		for _, messID := range messIDs {
			if err := refreshMess(ctx, r, messID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (u *MessUsecase) AddMenuItem(ctx context.Context, menuID int64, in MenuItemInput) (model.Menu, error) {
	if menuID <= 0 {
		return model.Menu{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var out model.Menu
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := lockMenu(ctx, r, menuID); err != nil {
			return err
		}
		m, err := r.Menus().FindByID(ctx, menuID)
		if err != nil {
			return dbError()
		}
		items, err := menuItems(ctx, r, m, []MenuItemInput{in})
		if err != nil {
			return err
		}
		item := items[0]
		item.MenuID = menuID
		if err := r.Menus().AddItem(ctx, &item); err != nil {
			return dbError()
		}
		out, err = refreshMenu(ctx, r, menuID)
		return err
	})
	if err != nil {
		return model.Menu{}, err
	}
	return out, nil
}

func (u *MessUsecase) RemoveMenuItem(ctx context.Context, menuID, itemID int64) (model.Menu, error) {
	if menuID <= 0 || itemID <= 0 {
		return model.Menu{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var out model.Menu
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := lockMenu(ctx, r, menuID); err != nil {
			return err
		}
		item, err := r.Menus().FindItem(ctx, itemID)
		if errors.Is(err, repo.ErrNotFound) || (err == nil && item.MenuID != menuID) {
			return notFound("menu item")
		}
		if err != nil {
			return dbError()
		}
		if err := r.Menus().DeleteItem(ctx, itemID); err != nil {
			return dbError()
		}
		out, err = refreshMenu(ctx, r, menuID)
		return err
	})
	if err != nil {
		return model.Menu{}, err
	}
	return out, nil
}

func lockMenu(ctx context.Context, r repo.TxRepos, id int64) (model.Menu, error) {
	m, err := r.Menus().FindByIDForUpdate(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Menu{}, notFound("menu")
	}
	if err != nil {
		return model.Menu{}, dbError()
	}
	return m, nil
}

// sub_total = 明細の料理価格の合計。使っている契約の合計も合わせる
func refreshMenu(ctx context.Context, r repo.TxRepos, menuID int64) (model.Menu, error) {
	m, err := r.Menus().FindByID(ctx, menuID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Menu{}, notFound("menu")
	}
	if err != nil {
		return model.Menu{}, dbError()
	}
	sub := decimal.Zero
	for _, it := range m.MenuItems {
		sub = sub.Add(it.Dish.Price)
	}
	sub = sub.Round(2)
	if !sub.Equal(m.SubTotal) {
		if err := r.Menus().SetSubTotal(ctx, m.ID, sub); err != nil {
			return model.Menu{}, dbError()
		}
		m.SubTotal = sub
	}

	messIDs, err := r.Menus().MessIDsUsing(ctx, menuID)
	if err != nil {
		return model.Menu{}, dbError()
	}
	for _, id := range messIDs {
		if err := refreshMess(ctx, r, id); err != nil {
			return model.Menu{}, err
		}
	}
	return m, nil
}

// total = メニューのsub_total合計、pending = total - paid
func refreshMess(ctx context.Context, r repo.TxRepos, messID int64) error {
	if _, err := r.Messes().FindByIDForUpdate(ctx, messID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		return dbError()
	}
	m, err := r.Messes().FindByID(ctx, messID)
	if err != nil {
		return dbError()
	}
	total := menusTotal(m.Menus)
	if total.Equal(m.TotalAmount) {
		return nil
	}
	if total.LessThan(m.PaidAmount) {
		return domainError(http.StatusBadRequest, ErrInvalidAmount, "mess total would drop below the paid amount")
	}
	m.TotalAmount = total
	m.PendingAmount = total.Sub(m.PaidAmount)
	if err := r.Messes().Update(ctx, m); err != nil {
		return dbError()
	}
	return nil
}

func menusTotal(ms []model.Menu) decimal.Decimal {
	total := decimal.Zero
	for _, m := range ms {
		total = total.Add(m.SubTotal)
	}
	return total.Round(2)
}

// =====================
// messes
// =====================

type MessInput struct {
	CustomerName  string
	MobileNumber  string
	StartDate     time.Time
	EndDate       time.Time
	MessTypeID    int64
	PaymentMethod string
	MenuIDs       []int64
	//作成時の入金
	PaidAmount decimal.Decimal
	CashAmount decimal.Decimal
	BankAmount decimal.Decimal
}

func checkMessInput(in MessInput) (model.PaymentMethod, error) {
	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		return "", NewHTTPError(http.StatusBadRequest, "customer_name required")
	}
	if utf8.RuneCountInString(name) > 50 {
		return "", NewHTTPError(http.StatusBadRequest, "customer_name too long")
	}
	if mobile := strings.TrimSpace(in.MobileNumber); mobile != "" && !isDigits(mobile) {
		return "", invalidValue("mobile_number must be digits")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return "", NewHTTPError(http.StatusBadRequest, "start_date and end_date required")
	}
	if dayOf(in.EndDate).Before(dayOf(in.StartDate)) {
		return "", invalidValue("end_date must not be before start_date")
	}
	method := model.PaymentMethod(strings.TrimSpace(in.PaymentMethod))
	if method == "" {
		method = model.PaymentCash
	}
	if !model.MessPaymentMethodValid(method) {
		return "", invalidValue("invalid payment_method")
	}
	return method, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// 選んだメニューを取得し、種別違いを弾く
func messMenus(ctx context.Context, r repo.TxRepos, messTypeID int64, ids []int64) ([]model.Menu, error) {
	ids = uniqueIDs(ids)
	ms, err := r.Menus().FindByIDs(ctx, ids)
	if err != nil {
		return nil, dbError()
	}
	if len(ms) != len(ids) {
		return nil, notFound("menu")
	}
	for _, m := range ms {
		if m.MessTypeID != nil && *m.MessTypeID != messTypeID {
			return nil, invalidValue("menu belongs to another mess_type")
		}
	}
	return ms, nil
}

func checkDuplicateMess(ctx context.Context, r repo.TxRepos, name string, messTypeID, selfID int64) error {
	other, err := r.Messes().FindByCustomerAndType(ctx, name, messTypeID)
	if err == nil && other.ID != selfID {
		return NewHTTPError(http.StatusConflict, "mess already exists for this customer and mess_type")
	}
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return dbError()
	}
	return nil
}

func (u *MessUsecase) CreateMess(ctx context.Context, in MessInput) (model.Mess, error) {
	method, err := checkMessInput(in)
	if err != nil {
		return model.Mess{}, err
	}
	if in.PaidAmount.IsNegative() {
		return model.Mess{}, domainError(http.StatusBadRequest, ErrInvalidAmount, "paid_amount must be >= 0")
	}
	mt, err := u.getMessType(ctx, in.MessTypeID)
	if err != nil {
		return model.Mess{}, err
	}
	name := strings.TrimSpace(in.CustomerName)

	var out model.Mess
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := checkDuplicateMess(ctx, r, name, mt.ID, 0); err != nil {
			return err
		}
		menus, err := messMenus(ctx, r, mt.ID, in.MenuIDs)
		if err != nil {
			return err
		}
		total := menusTotal(menus)
		paid := in.PaidAmount.Round(2)
		if paid.GreaterThan(total) {
			return domainError(http.StatusBadRequest, ErrInvalidAmount, "paid_amount exceeds total")
		}
		split := pricing.Split{Cash: decimal.Zero, Bank: decimal.Zero}
		if paid.IsPositive() {
			if split, err = pricing.SettleSplit(method, paid, in.CashAmount, in.BankAmount); err != nil {
				return splitError(err)
			}
		}

		m := model.Mess{
			CustomerName:  name,
			MobileNumber:  strings.TrimSpace(in.MobileNumber),
			StartDate:     dayOf(in.StartDate),
			EndDate:       dayOf(in.EndDate),
			MessTypeID:    mt.ID,
			PaymentMethod: method,
			TotalAmount:   total,
			PaidAmount:    paid,
			PendingAmount: total.Sub(paid),
			CashAmount:    split.Cash,
			BankAmount:    split.Bank,
		}
		if err := r.Messes().Create(ctx, &m); err != nil {
			return dbError()
		}
		ids := make([]int64, 0, len(menus))
		for _, mn := range menus {
			ids = append(ids, mn.ID)
		}
		if err := r.Messes().ReplaceMenus(ctx, m.ID, ids); err != nil {
			return dbError()
		}
		if paid.IsPositive() {
			t := model.MessTransaction{
				MessID:         m.ID,
				ReceivedAmount: paid,
				CashAmount:     split.Cash,
				BankAmount:     split.Bank,
				PaymentMethod:  method,
				Status:         model.MessTransactionCompleted,
				Date:           u.now(),
			}
			if err := r.MessTransactions().Create(ctx, &t); err != nil {
				return dbError()
			}
		}
		out, err = r.Messes().FindByID(ctx, m.ID)
		if err != nil {
			return dbError()
		}
		return nil
	})
	if err != nil {
		return model.Mess{}, err
	}
	return out, nil
}

func (u *MessUsecase) GetMess(ctx context.Context, id int64) (model.Mess, error) {
	if id <= 0 {
		return model.Mess{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	m, err := u.messes.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Mess{}, notFound("mess")
	}
	if err != nil {
		return model.Mess{}, dbError()
	}
	return m, nil
}

// 入金額と内訳は入金APIでのみ動かす
func (u *MessUsecase) UpdateMess(ctx context.Context, id int64, in MessInput) (model.Mess, error) {
	if id <= 0 {
		return model.Mess{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	method, err := checkMessInput(in)
	if err != nil {
		return model.Mess{}, err
	}
	mt, err := u.getMessType(ctx, in.MessTypeID)
	if err != nil {
		return model.Mess{}, err
	}
	name := strings.TrimSpace(in.CustomerName)

	var out model.Mess
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		m, err := r.Messes().FindByIDForUpdate(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("mess")
		}
		if err != nil {
			return dbError()
		}
		if err := checkDuplicateMess(ctx, r, name, mt.ID, m.ID); err != nil {
			return err
		}
		menus, err := messMenus(ctx, r, mt.ID, in.MenuIDs)
		if err != nil {
			return err
		}
		total := menusTotal(menus)
		if total.LessThan(m.PaidAmount) {
			return domainError(http.StatusBadRequest, ErrInvalidAmount, "total would drop below the paid amount")
		}

		m.CustomerName = name
		m.MobileNumber = strings.TrimSpace(in.MobileNumber)
		m.StartDate = dayOf(in.StartDate)
		m.EndDate = dayOf(in.EndDate)
		m.MessTypeID = mt.ID
		m.PaymentMethod = method
		m.TotalAmount = total
		m.PendingAmount = total.Sub(m.PaidAmount)
		if err := r.Messes().Update(ctx, m); err != nil {
			return dbError()
		}
		ids := make([]int64, 0, len(menus))
		for _, mn := range menus {
			ids = append(ids, mn.ID)
		}
		if err := r.Messes().ReplaceMenus(ctx, m.ID, ids); err != nil {
			return dbError()
		}
		out, err = r.Messes().FindByID(ctx, m.ID)
		if err != nil {
			return dbError()
		}
		return nil
	})
	if err != nil {
		return model.Mess{}, err
	}
	return out, nil
}

// 入金履歴ごと消える
func (u *MessUsecase) DeleteMess(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	err := u.messes.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return notFound("mess")
	}
	if err != nil {
		return dbError()
	}
	return nil
}

// =====================
// payments
// =====================

type MessPaymentInput struct {
	Amount        decimal.Decimal
	PaymentMethod string
	CashAmount    decimal.Decimal
	BankAmount    decimal.Decimal
}

type MessPaymentOutput struct {
	Mess        model.Mess            `json:"mess"`
	Transaction model.MessTransaction `json:"transaction"`
}

// 未払い残高を超える入金は受けない
func (u *MessUsecase) RecordPayment(ctx context.Context, messID int64, in MessPaymentInput) (MessPaymentOutput, error) {
	if messID <= 0 {
		return MessPaymentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	amount := in.Amount.Round(2)
	if !amount.IsPositive() {
		return MessPaymentOutput{}, domainError(http.StatusBadRequest, ErrInvalidAmount, "amount must be > 0")
	}
	method := model.PaymentMethod(strings.TrimSpace(in.PaymentMethod))
	if method == "" {
		method = model.PaymentCash
	}
	if !model.MessPaymentMethodValid(method) {
		return MessPaymentOutput{}, invalidValue("invalid payment_method")
	}
	split, err := pricing.SettleSplit(method, amount, in.CashAmount, in.BankAmount)
	if err != nil {
		return MessPaymentOutput{}, splitError(err)
	}

	var out MessPaymentOutput
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		m, err := r.Messes().FindByIDForUpdate(ctx, messID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("mess")
		}
		if err != nil {
			return dbError()
		}
		if amount.GreaterThan(m.PendingAmount) {
			return domainError(http.StatusBadRequest, ErrInvalidAmount, "amount exceeds pending amount")
		}
		if err := r.Messes().AddPayment(ctx, m.ID, amount, split.Cash, split.Bank); err != nil {
			return dbError()
		}
		t := model.MessTransaction{
			MessID:         m.ID,
			ReceivedAmount: amount,
			CashAmount:     split.Cash,
			BankAmount:     split.Bank,
			PaymentMethod:  method,
			Status:         model.MessTransactionCompleted,
			Date:           u.now(),
		}
		if err := r.MessTransactions().Create(ctx, &t); err != nil {
			return dbError()
		}
		out.Transaction = t
		out.Mess, err = r.Messes().FindByID(ctx, m.ID)
		if err != nil {
			return dbError()
		}
		return nil
	})
	if err != nil {
		return MessPaymentOutput{}, err
	}
	return out, nil
}

// 入金を取り消して残高を戻す。取消済みはそのまま返す
func (u *MessUsecase) CancelTransaction(ctx context.Context, id int64) (MessPaymentOutput, error) {
	if id <= 0 {
		return MessPaymentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var out MessPaymentOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		t, err := r.MessTransactions().FindByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("mess transaction")
		}
		if err != nil {
			return dbError()
		}
		if _, err := r.Messes().FindByIDForUpdate(ctx, t.MessID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFound("mess")
			}
			return dbError()
		}
		if t.Status != model.MessTransactionCancelled {
			if err := r.Messes().AddPayment(ctx, t.MessID, t.ReceivedAmount.Neg(), t.CashAmount.Neg(), t.BankAmount.Neg()); err != nil {
				return dbError()
			}
			if err := r.MessTransactions().UpdateStatus(ctx, t.ID, model.MessTransactionCancelled); err != nil {
				return dbError()
			}
			t.Status = model.MessTransactionCancelled
		}
		out.Transaction = t
		out.Mess, err = r.Messes().FindByID(ctx, t.MessID)
		if err != nil {
			return dbError()
		}
		return nil
	})
	if err != nil {
		return MessPaymentOutput{}, err
	}
	return out, nil
}

func (u *MessUsecase) ListTransactions(ctx context.Context, messID *int64) ([]model.MessTransaction, error) {
	ts, err := u.transactions.List(ctx, messID)
	if err != nil {
		return nil, dbError()
	}
	return ts, nil
}

// =====================
// report
// =====================

type MessReportInput struct {
	From          *time.Time
	To            *time.Time
	PaymentMethod string
	MessType      string
}

type MessReportOutput struct {
	Messes        []model.Mess    `json:"messes"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
}

// 期間は両方そろったときだけ効く。payment_method=credit は未払いありの契約
func (u *MessUsecase) MessReport(ctx context.Context, in MessReportInput) (MessReportOutput, error) {
	var f repo.MessReportFilter
	if in.From != nil && in.To != nil {
		if in.To.Before(*in.From) {
			return MessReportOutput{}, invalidValue("to must not be before from")
		}
		from, to := dayOf(*in.From), dayOf(*in.To)
		f.From, f.To = &from, &to
	}

	switch method := model.PaymentMethod(strings.TrimSpace(in.PaymentMethod)); {
	case method == "":
	case method == model.PaymentCredit:
		f.PendingOnly = true
	case model.MessPaymentMethodValid(method):
		f.PaymentMethod = string(method)
	default:
		return MessReportOutput{}, invalidValue("invalid payment_method")
	}

	if name := strings.TrimSpace(in.MessType); name != "" {
		n := model.MessTypeName(name)
		if !n.Valid() {
			return MessReportOutput{}, invalidValue("invalid mess_type")
		}
		t, err := u.types.FindByName(ctx, n)
		if errors.Is(err, repo.ErrNotFound) {
			return MessReportOutput{}, invalidValue("invalid mess_type")
		}
		if err != nil {
			return MessReportOutput{}, dbError()
		}
		f.MessTypeID = &t.ID
	}

	ms, err := u.messes.List(ctx, f)
	if err != nil {
		return MessReportOutput{}, dbError()
	}
	out := MessReportOutput{Messes: ms, TotalAmount: decimal.Zero, PaidAmount: decimal.Zero, PendingAmount: decimal.Zero}
	for _, m := range ms {
		out.TotalAmount = out.TotalAmount.Add(m.TotalAmount)
		out.PaidAmount = out.PaidAmount.Add(m.PaidAmount)
		out.PendingAmount = out.PendingAmount.Add(m.PendingAmount)
	}
	return out, nil
}
