package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"restaurant/internal/domain/event"
	"restaurant/internal/domain/model"
	"restaurant/internal/domain/pricing"
	"restaurant/internal/metrics"
	repo "restaurant/internal/repository"
)

type OrderUsecase struct {
	tx      repo.TransactionManager
	events  EventDispatcher
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewOrderUsecase(tx repo.TransactionManager, events EventDispatcher, m *metrics.Metrics) *OrderUsecase {
	return &OrderUsecase{tx: tx, events: events, metrics: m, now: time.Now}
}

type OrderLineInput struct {
	DishID   int64 `json:"dish_id"`
	Quantity int64 `json:"quantity"`
}

type CreateOrderInput struct {
	OrderType           string
	PaymentMethod       string
	Items               []OrderLineInput
	CashAmount          decimal.Decimal
	BankAmount          decimal.Decimal
	DeliveryCharge      decimal.Decimal
	CouponCode          string
	Address             string
	CustomerName        string
	CustomerPhoneNumber string
	DeliveryDriverID    *int64
	CreditUserID        *int64
}

type ChangeOrderTypeInput struct {
	OrderType        string
	DeliveryDriverID *int64
	DeliveryStatus   string
}

// nilの項目は変更しない
type OrderPaymentPatch struct {
	Status        *string
	PaymentMethod *string
	CashAmount    *decimal.Decimal
	BankAmount    *decimal.Decimal
	CreditUserID  *int64
}

type OrderItemOutput struct {
	ID        int64           `json:"id"`
	DishID    int64           `json:"dish_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type OrderOutput struct {
	model.Order
	Items         []OrderItemOutput    `json:"items"`
	DeliveryOrder *model.DeliveryOrder `json:"delivery_order,omitempty"`
}

type RemoveItemOutput struct {
	OrderDeleted bool         `json:"order_deleted"`
	Order        *OrderOutput `json:"order,omitempty"`
}

// 注文作成
func (u *OrderUsecase) CreateOrder(ctx context.Context, userID int64, in CreateOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	orderType := model.OrderType(strings.TrimSpace(in.OrderType))
	if !orderType.Valid() {
		return OrderOutput{}, invalidValue("invalid order_type")
	}
	method := model.PaymentMethod(strings.TrimSpace(in.PaymentMethod))
	if method == "" {
		method = model.PaymentCash
	}
	if !method.Valid() {
		return OrderOutput{}, invalidValue("invalid payment_method")
	}
	if len(in.Items) == 0 {
		return OrderOutput{}, invalidValue("items required")
	}
	for _, it := range in.Items {
		if it.DishID <= 0 || it.Quantity <= 0 {
			return OrderOutput{}, invalidValue("invalid items")
		}
	}
	if in.DeliveryCharge.IsNegative() || in.CashAmount.IsNegative() || in.BankAmount.IsNegative() {
		return OrderOutput{}, domainError(http.StatusBadRequest, ErrInvalidAmount, "amounts must not be negative")
	}

	var out OrderOutput
	var events []event.Event

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		ids := make([]int64, 0, len(in.Items))
		for _, it := range in.Items {
			ids = append(ids, it.DishID)
		}
		dishes, err := r.Dishes().FindByIDs(ctx, ids)
		if err != nil {
			return dbError()
		}

		lines := make([]pricing.Line, 0, len(in.Items))
		items := make([]model.OrderItem, 0, len(in.Items))
		for _, it := range in.Items {
			d, ok := dishes[it.DishID]
			if !ok {
				return notFound("dish")
			}
			lines = append(lines, pricing.Line{Price: d.Price, Quantity: it.Quantity})
			items = append(items, model.OrderItem{DishID: d.ID, Quantity: it.Quantity})
		}

		//クーポン
		var coupon *model.Coupon
		if code := strings.TrimSpace(in.CouponCode); code != "" {
			c, err := u.redeemCoupon(ctx, r, code, pricing.RecalculateTotal(lines))
			if err != nil {
				return err
			}
			coupon = &c
		}

		total, discount := pricing.OrderTotal(lines, coupon, in.DeliveryCharge)
		split, err := pricing.SettleSplit(method, total, in.CashAmount, in.BankAmount)
		if err != nil {
			return splitError(err)
		}

		if in.DeliveryDriverID != nil {
			if _, err := r.DeliveryDrivers().FindByID(ctx, *in.DeliveryDriverID); err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return notFound("delivery driver")
				}
				return dbError()
			}
		}

		o := model.Order{
			UserID:              userID,
			OrderType:           orderType,
			Status:              model.OrderStatusPending,
			TotalAmount:         total,
			PaymentMethod:       method,
			CashAmount:          split.Cash,
			BankAmount:          split.Bank,
			CreditAmount:        split.Credit,
			DeliveryCharge:      in.DeliveryCharge,
			DiscountAmount:      discount,
			Address:             in.Address,
			CustomerName:        in.CustomerName,
			CustomerPhoneNumber: in.CustomerPhoneNumber,
			CreditUserID:        in.CreditUserID,
		}
		if coupon != nil {
			o.CouponID = &coupon.ID
		}
		if orderType == model.OrderTypeDelivery {
			o.DeliveryDriverID = in.DeliveryDriverID
		}

		if err := r.Orders().Create(ctx, &o); err != nil {
			return dbError()
		}
		//請求書番号は作成直後に一度だけ
		o.InvoiceNumber = model.InvoiceNumberFor(o.ID)
		if err := r.Orders().SetInvoiceNumber(ctx, o.ID, o.InvoiceNumber); err != nil {
			return dbError()
		}
		if err := r.OrderItems().CreateBulk(ctx, o.ID, items); err != nil {
			return dbError()
		}

		var do *model.DeliveryOrder
		if orderType == model.OrderTypeDelivery {
			do = &model.DeliveryOrder{OrderID: o.ID, DriverID: in.DeliveryDriverID, Status: model.DeliveryStatusPending}
			if err := r.DeliveryOrders().Create(ctx, do); err != nil {
				return dbError()
			}
		}

		evs, err := u.syncCredit(ctx, r, o)
		if err != nil {
			return err
		}
		events = append(events, evs...)

		saved, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return dbError()
		}
		out = toOrderOutput(o, saved, do)
		events = append([]event.Event{event.OrderCreated{OrderID: o.ID, UserID: userID, TotalAmount: total}}, events...)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	u.metrics.OrderCreated(string(orderType))
	u.events.Dispatch(ctx, events...)
	return out, nil
}

// 有効性・最低金額を確認して利用回数を進める
func (u *OrderUsecase) redeemCoupon(ctx context.Context, r repo.TxRepos, code string, subtotal decimal.Decimal) (model.Coupon, error) {
	c, err := r.Coupons().FindByCode(ctx, code)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Coupon{}, notFound("coupon")
	}
	if err != nil {
		return model.Coupon{}, dbError()
	}
	if !c.IsValid(u.now()) {
		return model.Coupon{}, invalidValue("coupon is not valid")
	}
	if !c.MeetsMinimum(subtotal) {
		return model.Coupon{}, invalidValue("order does not meet the coupon minimum")
	}
	ok, err := r.Coupons().IncrementUsage(ctx, c.ID)
	if err != nil {
		return model.Coupon{}, dbError()
	}
	if !ok {
		return model.Coupon{}, invalidValue("coupon usage limit reached")
	}
	c.UsageCount++
	return c, nil
}

func splitError(err error) error {
	if errors.Is(err, pricing.ErrUnknownMethod) {
		return invalidValue("invalid payment_method")
	}
	return domainError(http.StatusBadRequest, ErrInvalidAmount, err.Error())
}

// 注文取得
func (u *OrderUsecase) GetOrder(ctx context.Context, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := findOrder(ctx, r, orderID, false)
		if err != nil {
			return err
		}
		out, err = loadOrderOutput(ctx, r, o)
		return err
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// 注文一覧
func (u *OrderUsecase) ListOrders(ctx context.Context, f repo.OrderListFilter) (OrderListOutput, error) {
	if f.Page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Status != "" && !model.OrderStatus(f.Status).Valid() {
		return OrderListOutput{}, invalidValue("invalid status")
	}
	if f.OrderType != "" && !model.OrderType(f.OrderType).Valid() {
		return OrderListOutput{}, invalidValue("invalid order_type")
	}

	out := OrderListOutput{Items: []OrderOutput{}, Page: f.Page, Limit: f.Limit}
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().List(ctx, f)
		if err != nil {
			return dbError()
		}
		out.Total = total
		for _, o := range orders {
			oo, err := loadOrderOutput(ctx, r, o)
			if err != nil {
				return err
			}
			out.Items = append(out.Items, oo)
		}
		return nil
	})
	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

// 電話番号での注文履歴。番号が空なら何も返さない
func (u *OrderUsecase) UserOrderHistory(ctx context.Context, phone string, page, limit int) (OrderListOutput, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return OrderListOutput{Items: []OrderOutput{}, Page: page, Limit: limit}, nil
	}
	return u.ListOrders(ctx, repo.OrderListFilter{Page: page, Limit: limit, CustomerPhoneNumber: phone})
}

// 注文削除（明細・請求・配達・掛けの紐付けごと）
func (u *OrderUsecase) DeleteOrder(ctx context.Context, orderID int64) error {
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := findOrder(ctx, r, orderID, true); err != nil {
			return err
		}
		if err := releaseCredit(ctx, r, orderID); err != nil {
			return err
		}
		if err := r.Orders().Delete(ctx, orderID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFound("order")
			}
			return dbError()
		}
		return nil
	})
	if err != nil {
		return err
	}
	u.events.Dispatch(ctx, event.OrderDeleted{OrderID: orderID})
	return nil
}

// 明細追加（同じ料理なら数量加算）
func (u *OrderUsecase) AddItem(ctx context.Context, orderID int64, in OrderLineInput) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.DishID <= 0 || in.Quantity <= 0 {
		return OrderOutput{}, invalidValue("invalid items")
	}

	var out OrderOutput
	var events []event.Event
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := findOrder(ctx, r, orderID, true)
		if err != nil {
			return err
		}
		if o.Status == model.OrderStatusCancelled || o.Status == model.OrderStatusDelivered {
			return invalidTransition("order is closed")
		}
		if _, err := r.Dishes().FindByID(ctx, in.DishID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFound("dish")
			}
			return dbError()
		}
		if err := r.OrderItems().UpsertByOrderAndDish(ctx, orderID, in.DishID, in.Quantity); err != nil {
			return dbError()
		}
		o, items, evs, err := u.recalculate(ctx, r, o)
		if err != nil {
			return err
		}
		events = evs
		out = toOrderOutput(o, items, nil)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	u.events.Dispatch(ctx, events...)
	return out, nil
}

// 明細削除。最後の1件なら注文ごと削除する。
func (u *OrderUsecase) RemoveItem(ctx context.Context, orderID, itemID int64) (RemoveItemOutput, error) {
	if orderID <= 0 || itemID <= 0 {
		return RemoveItemOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out RemoveItemOutput
	var events []event.Event
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := findOrder(ctx, r, orderID, true)
		if err != nil {
			return err
		}

		item, err := r.OrderItems().FindByID(ctx, itemID)
		if errors.Is(err, repo.ErrNotFound) || (err == nil && item.OrderID != orderID) {
			return notFound("order item")
		}
		if err != nil {
			return dbError()
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return dbError()
		}
		if len(items) <= 1 {
			if err := releaseCredit(ctx, r, orderID); err != nil {
				return err
			}
			if err := r.Orders().Delete(ctx, orderID); err != nil {
				return dbError()
			}
			out = RemoveItemOutput{OrderDeleted: true}
			return nil
		}

		if err := r.OrderItems().DeleteByID(ctx, itemID); err != nil {
			return dbError()
		}
		o, rest, evs, err := u.recalculate(ctx, r, o)
		if err != nil {
			return err
		}
		events = evs
		oo := toOrderOutput(o, rest, nil)
		out = RemoveItemOutput{Order: &oo}
		return nil
	})
	if err != nil {
		return RemoveItemOutput{}, err
	}
	if out.OrderDeleted {
		events = append(events, event.OrderDeleted{OrderID: orderID})
	}
	u.events.Dispatch(ctx, events...)
	return out, nil
}

// 残りの明細から合計を出し直す。
// cash-bankの内訳が合わなくなったらbank側を残してcashで合わせる。掛けは差額を計上し直す。
func (u *OrderUsecase) recalculate(ctx context.Context, r repo.TxRepos, o model.Order) (model.Order, []model.OrderItem, []event.Event, error) {
	items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
	if err != nil {
		return o, nil, nil, dbError()
	}
	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, pricing.Line{Price: it.Dish.Price, Quantity: it.Quantity})
	}

	var coupon *model.Coupon
	if o.CouponID != nil {
		c, err := r.Coupons().FindByID(ctx, *o.CouponID)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return o, nil, nil, dbError()
		}
		if err == nil {
			coupon = &c
		}
	}

	o.TotalAmount, o.DiscountAmount = pricing.OrderTotal(lines, coupon, o.DeliveryCharge)
	if o.PaymentMethod == model.PaymentCashBank {
		split := pricing.RebalanceSplit(o.TotalAmount, o.CashAmount, o.BankAmount)
		o.CashAmount, o.BankAmount, o.CreditAmount = split.Cash, split.Bank, split.Credit
	} else {
		split, err := pricing.SettleSplit(o.PaymentMethod, o.TotalAmount, o.CashAmount, o.BankAmount)
		if err != nil {
			return o, nil, nil, splitError(err)
		}
		o.CashAmount, o.BankAmount, o.CreditAmount = split.Cash, split.Bank, split.Credit
	}
	if err := r.Orders().Update(ctx, o); err != nil {
		return o, nil, nil, dbError()
	}
	events, err := u.syncCredit(ctx, r, o)
	if err != nil {
		return o, nil, nil, err
	}
	return o, items, events, nil
}

// 注文キャンセル。配達済みは不可、キャンセル済みは何もしない。
func (u *OrderUsecase) CancelOrder(ctx context.Context, actorUserID, orderID int64) error {
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var events []event.Event
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := findOrder(ctx, r, orderID, true)
		if err != nil {
			return err
		}
		if o.Status == model.OrderStatusDelivered {
			return invalidTransition("cannot cancel a delivered order")
		}
		if o.Status == model.OrderStatusCancelled {
			return nil
		}
		ev, err := changeStatus(ctx, r, actorUserID, o, model.OrderStatusCancelled, model.AuditActionCancelOrder)
		if err != nil {
			return err
		}
		events = append(events, ev)
		return nil
	})
	if err != nil {
		return err
	}
	u.afterStatusChange(ctx, events)
	return nil
}

// 汎用のステータス更新
func (u *OrderUsecase) UpdateStatus(ctx context.Context, actorUserID, orderID int64, status string) error {
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	next := model.OrderStatus(strings.TrimSpace(status))
	if !next.Valid() {
		return invalidValue("invalid status")
	}

	var events []event.Event
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := findOrder(ctx, r, orderID, true)
		if err != nil {
			return err
		}
		if o.Status == next {
			return nil
		}
		if !o.Status.CanTransitionTo(next) {
			return invalidTransition(fmt.Sprintf("cannot change order from %s to %s", o.Status, next))
		}
		ev, err := changeStatus(ctx, r, actorUserID, o, next, model.AuditActionUpdateOrderStatus)
		if err != nil {
			return err
		}
		events = append(events, ev)
		return nil
	})
	if err != nil {
		return err
	}
	u.afterStatusChange(ctx, events)
	return nil
}

// キャンセルなら掛けの計上も取り消す
func changeStatus(ctx context.Context, r repo.TxRepos, actorUserID int64, o model.Order, next model.OrderStatus, action model.AuditAction) (event.Event, error) {
	if err := r.Orders().UpdateStatus(ctx, o.ID, next); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFound("order")
		}
		return nil, dbError()
	}
	if next == model.OrderStatusCancelled {
		if err := releaseCredit(ctx, r, o.ID); err != nil {
			return nil, err
		}
	}
	if err := writeAudit(ctx, r, actorUserID, action, model.AuditResourceOrder, o.ID,
		map[string]interface{}{"status": o.Status},
		map[string]interface{}{"status": next},
	); err != nil {
		return nil, err
	}
	return event.OrderStatusChanged{OrderID: o.ID, From: string(o.Status), To: string(next)}, nil
}

func (u *OrderUsecase) afterStatusChange(ctx context.Context, events []event.Event) {
	for _, ev := range events {
		if sc, ok := ev.(event.OrderStatusChanged); ok {
			u.metrics.OrderTransition(sc.From, sc.To)
		}
	}
	if len(events) > 0 {
		u.events.Dispatch(ctx, events...)
	}
}

// 注文種別の変更。deliveryなら配達注文を取得または作成する。
func (u *OrderUsecase) ChangeOrderType(ctx context.Context, actorUserID, orderID int64, in ChangeOrderTypeInput) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	orderType := model.OrderType(strings.TrimSpace(in.OrderType))
	if !orderType.Valid() {
		return OrderOutput{}, invalidValue("invalid order_type")
	}
	deliveryStatus := model.DeliveryStatus(strings.TrimSpace(in.DeliveryStatus))
	if deliveryStatus != "" && !deliveryStatus.Valid() {
		return OrderOutput{}, invalidValue("invalid delivery_order_status")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := findOrder(ctx, r, orderID, true)
		if err != nil {
			return err
		}
		if in.DeliveryDriverID != nil {
			if _, err := r.DeliveryDrivers().FindByID(ctx, *in.DeliveryDriverID); err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return notFound("delivery driver")
				}
				return dbError()
			}
		}

		before := o.OrderType
		o.OrderType = orderType
		if orderType == model.OrderTypeDelivery && in.DeliveryDriverID != nil {
			o.DeliveryDriverID = in.DeliveryDriverID
		}
		if err := r.Orders().Update(ctx, o); err != nil {
			return dbError()
		}

		var do *model.DeliveryOrder
		if orderType == model.OrderTypeDelivery {
			do, err = ensureDeliveryOrder(ctx, r, o.ID, in.DeliveryDriverID, deliveryStatus)
			if err != nil {
				return err
			}
		}

		if err := writeAudit(ctx, r, actorUserID, model.AuditActionChangeOrderType, model.AuditResourceOrder, o.ID,
			map[string]interface{}{"order_type": before},
			map[string]interface{}{"order_type": orderType, "delivery_driver_id": o.DeliveryDriverID},
		); err != nil {
			return err
		}

		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return dbError()
		}
		out = toOrderOutput(o, items, do)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 無ければ作成（状態は指定値かpending）。既存なら指定があるときだけ運転手・状態を更新する。
func ensureDeliveryOrder(ctx context.Context, r repo.TxRepos, orderID int64, driverID *int64, status model.DeliveryStatus) (*model.DeliveryOrder, error) {
	do, err := r.DeliveryOrders().FindByOrderID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		if status == "" {
			status = model.DeliveryStatusPending
		}
		created := &model.DeliveryOrder{OrderID: orderID, DriverID: driverID, Status: status}
		if err := r.DeliveryOrders().Create(ctx, created); err != nil {
			return nil, dbError()
		}
		return created, nil
	}
	if err != nil {
		return nil, dbError()
	}

	if driverID != nil {
		if err := r.DeliveryOrders().AssignDriver(ctx, do.ID, driverID); err != nil {
			return nil, dbError()
		}
		do.DriverID = driverID
	}
	if status != "" && status != do.Status {
		if !do.Status.CanTransitionTo(status) {
			return nil, invalidTransition(fmt.Sprintf("cannot change delivery from %s to %s", do.Status, status))
		}
		if err := r.DeliveryOrders().UpdateStatus(ctx, do.ID, status); err != nil {
			return nil, dbError()
		}
		do.Status = status
	}
	return &do, nil
}

// ステータス・支払情報の部分更新。掛けの計上は更新後の注文に合わせて付け替える。
func (u *OrderUsecase) UpdateOrderWithPayment(ctx context.Context, actorUserID, orderID int64, patch OrderPaymentPatch) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var next model.OrderStatus
	if patch.Status != nil {
		next = model.OrderStatus(strings.TrimSpace(*patch.Status))
		if !next.Valid() {
			return OrderOutput{}, invalidValue("invalid status")
		}
	}
	var method model.PaymentMethod
	if patch.PaymentMethod != nil {
		method = model.PaymentMethod(strings.TrimSpace(*patch.PaymentMethod))
		if !method.Valid() {
			return OrderOutput{}, invalidValue("invalid payment_method")
		}
	}
	if (patch.CashAmount != nil && patch.CashAmount.IsNegative()) || (patch.BankAmount != nil && patch.BankAmount.IsNegative()) {
		return OrderOutput{}, domainError(http.StatusBadRequest, ErrInvalidAmount, "amounts must not be negative")
	}

	var out OrderOutput
	var events []event.Event
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := findOrder(ctx, r, orderID, true)
		if err != nil {
			return err
		}
		before := o

		if next != "" && next != o.Status {
			if !o.Status.CanTransitionTo(next) {
				return invalidTransition(fmt.Sprintf("cannot change order from %s to %s", o.Status, next))
			}
			o.Status = next
		}
		if method != "" {
			o.PaymentMethod = method
		}
		if patch.CreditUserID != nil {
			o.CreditUserID = patch.CreditUserID
		}
		if o.PaymentMethod != model.PaymentCredit {
			o.CreditUserID = nil
		}

		cash, bank := o.CashAmount, o.BankAmount
		if patch.CashAmount != nil {
			cash = *patch.CashAmount
		}
		if patch.BankAmount != nil {
			bank = *patch.BankAmount
		}
		var split pricing.Split
		if o.PaymentMethod == model.PaymentCashBank && patch.CashAmount == nil && patch.BankAmount == nil {
			//内訳の指定が無ければ保存済みの内訳を合計に合わせる
			split = pricing.RebalanceSplit(o.TotalAmount, cash, bank)
		} else {
			split, err = pricing.SettleSplit(o.PaymentMethod, o.TotalAmount, cash, bank)
			if err != nil {
				return splitError(err)
			}
		}
		o.CashAmount, o.BankAmount, o.CreditAmount = split.Cash, split.Bank, split.Credit

		if err := r.Orders().Update(ctx, o); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFound("order")
			}
			return dbError()
		}

		if before.Status != o.Status {
			if err := writeAudit(ctx, r, actorUserID, model.AuditActionUpdateOrderStatus, model.AuditResourceOrder, o.ID,
				map[string]interface{}{"status": before.Status, "payment_method": before.PaymentMethod},
				map[string]interface{}{"status": o.Status, "payment_method": o.PaymentMethod},
			); err != nil {
				return err
			}
			events = append(events, event.OrderStatusChanged{OrderID: o.ID, From: string(before.Status), To: string(o.Status)})
		}

		evs, err := u.syncCredit(ctx, r, o)
		if err != nil {
			return err
		}
		events = append(events, evs...)

		out, err = loadOrderOutput(ctx, r, o)
		return err
	})
	if err != nil {
		return OrderOutput{}, err
	}
	u.afterStatusChange(ctx, events)
	return out, nil
}

// 請求から注文をキャンセルする。キャンセル済み・配達済みはエラー。
func (u *OrderUsecase) CancelOrderByBill(ctx context.Context, actorUserID, billID int64) error {
	if billID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var events []event.Event
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		b, err := r.Bills().FindByID(ctx, billID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("bill")
		}
		if err != nil {
			return dbError()
		}
		o, err := findOrder(ctx, r, b.OrderID, true)
		if err != nil {
			return err
		}
		switch o.Status {
		case model.OrderStatusCancelled:
			return invalidTransition("order is already cancelled")
		case model.OrderStatusDelivered:
			return invalidTransition("cannot cancel a delivered order")
		}
		ev, err := changeStatus(ctx, r, actorUserID, o, model.OrderStatusCancelled, model.AuditActionCancelOrder)
		if err != nil {
			return err
		}
		events = append(events, ev)
		return nil
	})
	if err != nil {
		return err
	}
	u.afterStatusChange(ctx, events)
	return nil
}

func findOrder(ctx context.Context, r repo.TxRepos, orderID int64, lock bool) (model.Order, error) {
	var o model.Order
	var err error
	if lock {
		o, err = r.Orders().FindByIDForUpdate(ctx, orderID)
	} else {
		o, err = r.Orders().FindByID(ctx, orderID)
	}
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, notFound("order")
	}
	if err != nil {
		return model.Order{}, dbError()
	}
	return o, nil
}

func loadOrderOutput(ctx context.Context, r repo.TxRepos, o model.Order) (OrderOutput, error) {
	items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
	if err != nil {
		return OrderOutput{}, dbError()
	}
	var do *model.DeliveryOrder
	if o.IsDelivery() {
		d, err := r.DeliveryOrders().FindByOrderID(ctx, o.ID)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return OrderOutput{}, dbError()
		}
		if err == nil {
			do = &d
		}
	}
	return toOrderOutput(o, items, do), nil
}

func toOrderOutput(o model.Order, items []model.OrderItem, do *model.DeliveryOrder) OrderOutput {
	out := OrderOutput{Order: o, Items: make([]OrderItemOutput, 0, len(items)), DeliveryOrder: do}
	for _, it := range items {
		out.Items = append(out.Items, OrderItemOutput{
			ID:        it.ID,
			DishID:    it.DishID,
			Name:      it.Dish.Name,
			Price:     it.Dish.Price,
			Quantity:  it.Quantity,
			LineTotal: pricing.LineTotal(it.Dish.Price, it.Quantity),
		})
	}
	return out
}

func writeAudit(ctx context.Context, r repo.TxRepos, actorUserID int64, action model.AuditAction, rt model.AuditResourceType, id int64, before, after map[string]interface{}) error {
	if err := r.AuditLogs().Create(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       action,
		ResourceType: rt,
		ResourceID:   id,
		BeforeJSON:   auditJSON(before),
		AfterJSON:    auditJSON(after),
		CreatedAt:    time.Now(),
	}); err != nil {
		return dbError()
	}
	return nil
}
