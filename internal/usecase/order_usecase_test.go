package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant/internal/domain/model"
	infrarepo "restaurant/internal/infra/repository"
	repo "restaurant/internal/repository"
	"restaurant/internal/usecase"
)

func (f *fixture) createDiningOrder(t *testing.T, lines ...usecase.OrderLineInput) usecase.OrderOutput {
	t.Helper()
	out, err := f.orders().CreateOrder(context.Background(), 1, usecase.CreateOrderInput{
		OrderType:     "dining",
		PaymentMethod: "cash",
		Items:         lines,
	})
	require.NoError(t, err)
	return out
}

// =====================
// CreateOrder
// =====================

func TestOrderUsecase_CreateOrder_TotalsAndInvoice(t *testing.T) {
	f := newFixture(t)

	out := f.createDiningOrder(t,
		usecase.OrderLineInput{DishID: f.biryani.ID, Quantity: 2},
		usecase.OrderLineInput{DishID: f.lassi.ID, Quantity: 1},
	)

	requireMoney(t, "120", out.TotalAmount)
	requireMoney(t, "120", out.CashAmount)
	assert.Equal(t, model.OrderStatusPending, out.Status)
	assert.Equal(t, model.InvoiceNumberFor(out.ID), out.InvoiceNumber)
	assert.Len(t, out.Items, 2)
	assert.Nil(t, out.DeliveryOrder)
	assert.Equal(t, []string{"OrderCreated"}, f.events.types())
}

func TestOrderUsecase_CreateOrder_FlatCoupon(t *testing.T) {
	f := newFixture(t)
	c := f.seedCoupon(t, model.Coupon{Code: "SAVE20", DiscountAmount: dec("20"), IsActive: true})

	out, err := f.orders().CreateOrder(context.Background(), 1, usecase.CreateOrderInput{
		OrderType:  "takeaway",
		Items:      []usecase.OrderLineInput{{DishID: f.biryani.ID, Quantity: 2}, {DishID: f.lassi.ID, Quantity: 1}},
		CouponCode: "SAVE20",
	})
	require.NoError(t, err)

	requireMoney(t, "100", out.TotalAmount)
	requireMoney(t, "20", out.DiscountAmount)
	require.NotNil(t, out.CouponID)
	assert.Equal(t, c.ID, *out.CouponID)

	saved, err := infrarepo.NewCouponGormRepository(f.db).FindByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.UsageCount)
}

func TestOrderUsecase_CreateOrder_CouponLimitReached(t *testing.T) {
	f := newFixture(t)
	limit := int64(1)
	f.seedCoupon(t, model.Coupon{Code: "ONCE", DiscountAmount: dec("5"), IsActive: true, UsageLimit: &limit, UsageCount: 1})

	_, err := f.orders().CreateOrder(context.Background(), 1, usecase.CreateOrderInput{
		OrderType:  "dining",
		Items:      []usecase.OrderLineInput{{DishID: f.lassi.ID, Quantity: 1}},
		CouponCode: "ONCE",
	})
	requireKind(t, err, usecase.ErrInvalidValue, http.StatusBadRequest)
}

func TestOrderUsecase_CreateOrder_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.orders().CreateOrder(ctx, 1, usecase.CreateOrderInput{OrderType: "drive-thru", Items: []usecase.OrderLineInput{{DishID: f.lassi.ID, Quantity: 1}}})
	requireKind(t, err, usecase.ErrInvalidValue, http.StatusBadRequest)

	_, err = f.orders().CreateOrder(ctx, 1, usecase.CreateOrderInput{OrderType: "dining"})
	requireKind(t, err, usecase.ErrInvalidValue, http.StatusBadRequest)

	_, err = f.orders().CreateOrder(ctx, 1, usecase.CreateOrderInput{OrderType: "dining", Items: []usecase.OrderLineInput{{DishID: 9999, Quantity: 1}}})
	requireKind(t, err, usecase.ErrNotFound, http.StatusNotFound)

	// cash-bankの内訳が合計と合わない
	_, err = f.orders().CreateOrder(ctx, 1, usecase.CreateOrderInput{
		OrderType:     "dining",
		PaymentMethod: "cash-bank",
		Items:         []usecase.OrderLineInput{{DishID: f.lassi.ID, Quantity: 1}},
		CashAmount:    dec("5"),
		BankAmount:    dec("5"),
	})
	requireKind(t, err, usecase.ErrInvalidAmount, http.StatusBadRequest)
}

func TestOrderUsecase_CreateOrder_DeliveryCreatesDeliveryOrder(t *testing.T) {
	f := newFixture(t)

	out, err := f.orders().CreateOrder(context.Background(), 1, usecase.CreateOrderInput{
		OrderType:      "delivery",
		Items:          []usecase.OrderLineInput{{DishID: f.biryani.ID, Quantity: 1}},
		DeliveryCharge: dec("10"),
		Address:        "12 MG Road",
	})
	require.NoError(t, err)

	requireMoney(t, "60", out.TotalAmount)
	require.NotNil(t, out.DeliveryOrder)
	assert.Equal(t, model.DeliveryStatusPending, out.DeliveryOrder.Status)
	assert.Nil(t, out.DeliveryOrder.DriverID)
}

// =====================
// 明細の追加・削除
// =====================

func TestOrderUsecase_AddItem_MergesSameDish(t *testing.T) {
	f := newFixture(t)
	o := f.createDiningOrder(t, usecase.OrderLineInput{DishID: f.biryani.ID, Quantity: 1})

	out, err := f.orders().AddItem(context.Background(), o.ID, usecase.OrderLineInput{DishID: f.biryani.ID, Quantity: 2})
	require.NoError(t, err)

	require.Len(t, out.Items, 1)
	assert.Equal(t, int64(3), out.Items[0].Quantity)
	requireMoney(t, "150", out.TotalAmount)
}

func TestOrderUsecase_AddItem_ClosedOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createDiningOrder(t, usecase.OrderLineInput{DishID: f.biryani.ID, Quantity: 1})
	require.NoError(t, f.orders().CancelOrder(ctx, 1, o.ID))

	_, err := f.orders().AddItem(ctx, o.ID, usecase.OrderLineInput{DishID: f.lassi.ID, Quantity: 1})
	requireKind(t, err, usecase.ErrInvalidTransition, http.StatusBadRequest)
}

func TestOrderUsecase_RemoveItem_Recalculates(t *testing.T) {
	f := newFixture(t)
	o := f.createDiningOrder(t,
		usecase.OrderLineInput{DishID: f.biryani.ID, Quantity: 2},
		usecase.OrderLineInput{DishID: f.lassi.ID, Quantity: 1},
	)
	var lassiItem int64
	for _, it := range o.Items {
		if it.DishID == f.lassi.ID {
			lassiItem = it.ID
		}
	}

	out, err := f.orders().RemoveItem(context.Background(), o.ID, lassiItem)
	require.NoError(t, err)

	assert.False(t, out.OrderDeleted)
	require.NotNil(t, out.Order)
	requireMoney(t, "100", out.Order.TotalAmount)
	requireMoney(t, "100", out.Order.CashAmount)
	assert.Len(t, out.Order.Items, 1)
}

func TestOrderUsecase_RemoveItem_LastItemDeletesOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createDiningOrder(t, usecase.OrderLineInput{DishID: f.biryani.ID, Quantity: 1})

	out, err := f.orders().RemoveItem(ctx, o.ID, o.Items[0].ID)
	require.NoError(t, err)
	assert.True(t, out.OrderDeleted)
	assert.Nil(t, out.Order)

	_, err = f.orders().GetOrder(ctx, o.ID)
	requireKind(t, err, usecase.ErrNotFound, http.StatusNotFound)
	assert.Contains(t, f.events.types(), "OrderDeleted")
}

func TestOrderUsecase_RemoveItem_OtherOrdersItem(t *testing.T) {
	f := newFixture(t)
	a := f.createDiningOrder(t, usecase.OrderLineInput{DishID: f.biryani.ID, Quantity: 1})
	b := f.createDiningOrder(t, usecase.OrderLineInput{DishID: f.lassi.ID, Quantity: 1})

	_, err := f.orders().RemoveItem(context.Background(), a.ID, b.Items[0].ID)
	requireKind(t, err, usecase.ErrNotFound, http.StatusNotFound)
}

// =====================
// ステータス
// =====================

func TestOrderUsecase_CancelDelivered_Fails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createDiningOrder(t, usecase.OrderLineInput{DishID: f.biryani.ID, Quantity: 1})

	require.NoError(t, f.orders().UpdateStatus(ctx, 1, o.ID, "delivered"))

	err := f.orders().CancelOrder(ctx, 1, o.ID)
	requireKind(t, err, usecase.ErrInvalidTransition, http.StatusBadRequest)

	got, err := f.orders().GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDelivered, got.Status)
}

func TestOrderUsecase_CancelTwice_IsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createDiningOrder(t, usecase.OrderLineInput{DishID: f.biryani.ID, Quantity: 1})

	require.NoError(t, f.orders().CancelOrder(ctx, 1, o.ID))
	require.NoError(t, f.orders().CancelOrder(ctx, 1, o.ID))

	logs, err := infrarepo.NewAuditLogGormRepository(f.db).List(ctx, repo.AuditLogFilter{ResourceType: model.AuditResourceOrder, ResourceID: o.ID})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestOrderUsecase_UpdateStatus_Transitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createDiningOrder(t, usecase.OrderLineInput{DishID: f.biryani.ID, Quantity: 1})

	require.NoError(t, f.orders().UpdateStatus(ctx, 1, o.ID, "approved"))
	// 同じステータスはno-op
	require.NoError(t, f.orders().UpdateStatus(ctx, 1, o.ID, "approved"))

	err := f.orders().UpdateStatus(ctx, 1, o.ID, "pending")
	requireKind(t, err, usecase.ErrInvalidTransition, http.StatusBadRequest)

	err = f.orders().UpdateStatus(ctx, 1, o.ID, "shipped")
	requireKind(t, err, usecase.ErrInvalidValue, http.StatusBadRequest)
}

func TestOrderUsecase_CancelOrderByBill(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createDiningOrder(t, usecase.OrderLineInput{DishID: f.biryani.ID, Quantity: 1})
	bill, err := usecase.NewBillUsecase(f.tx, f.events, nil).CreateBill(ctx, o.ID)
	require.NoError(t, err)

	require.NoError(t, f.orders().CancelOrderByBill(ctx, 1, bill.ID))

	// 2回目はキャンセル済みなのでエラー
	err = f.orders().CancelOrderByBill(ctx, 1, bill.ID)
	requireKind(t, err, usecase.ErrInvalidTransition, http.StatusBadRequest)

	err = f.orders().CancelOrderByBill(ctx, 1, 9999)
	requireKind(t, err, usecase.ErrNotFound, http.StatusNotFound)
}

// =====================
// 種別変更
// =====================

func TestOrderUsecase_ChangeOrderType_ToDelivery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createDiningOrder(t, usecase.OrderLineInput{DishID: f.biryani.ID, Quantity: 1})

	out, err := f.orders().ChangeOrderType(ctx, 1, o.ID, usecase.ChangeOrderTypeInput{OrderType: "delivery", DeliveryStatus: "accepted"})
	require.NoError(t, err)
	assert.Equal(t, model.OrderTypeDelivery, out.OrderType)
	require.NotNil(t, out.DeliveryOrder)
	assert.Equal(t, model.DeliveryStatusAccepted, out.DeliveryOrder.Status)

	// 2回目は既存の配達注文を使う
	again, err := f.orders().ChangeOrderType(ctx, 1, o.ID, usecase.ChangeOrderTypeInput{OrderType: "delivery"})
	require.NoError(t, err)
	require.NotNil(t, again.DeliveryOrder)
	assert.Equal(t, out.DeliveryOrder.ID, again.DeliveryOrder.ID)

	_, err = f.orders().ChangeOrderType(ctx, 1, o.ID, usecase.ChangeOrderTypeInput{OrderType: "delivery", DeliveryDriverID: int64Ptr(9999)})
	requireKind(t, err, usecase.ErrNotFound, http.StatusNotFound)
}

// =====================
// 掛け払い
// =====================

func TestOrderUsecase_CreditOrder_Accrues(t *testing.T) {
	f := newFixture(t)
	cu := f.seedCreditUser(t, "9000000001", true)

	out, err := f.orders().CreateOrder(context.Background(), 1, usecase.CreateOrderInput{
		OrderType:     "dining",
		PaymentMethod: "credit",
		Items:         []usecase.OrderLineInput{{DishID: f.biryani.ID, Quantity: 2}, {DishID: f.lassi.ID, Quantity: 1}},
		CreditUserID:  &cu.ID,
	})
	require.NoError(t, err)
	requireMoney(t, "120", out.CreditAmount)

	requireMoney(t, "120", f.creditUser(t, cu.ID).TotalDue)
	assert.Equal(t, []string{"OrderCreated", "CreditAccrued"}, f.events.types())
}

func TestOrderUsecase_CreditOrder_NoDoubleAccrual(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cu := f.seedCreditUser(t, "9000000002", true)

	o, err := f.orders().CreateOrder(ctx, 1, usecase.CreateOrderInput{
		OrderType:     "dining",
		PaymentMethod: "credit",
		Items:         []usecase.OrderLineInput{{DishID: f.biryani.ID, Quantity: 1}},
		CreditUserID:  &cu.ID,
	})
	require.NoError(t, err)

	status := "approved"
	_, err = f.orders().UpdateOrderWithPayment(ctx, 1, o.ID, usecase.OrderPaymentPatch{Status: &status})
	require.NoError(t, err)

	requireMoney(t, "50", f.creditUser(t, cu.ID).TotalDue)
}

func TestOrderUsecase_CreditOrder_InactiveAccount(t *testing.T) {
	f := newFixture(t)
	cu := f.seedCreditUser(t, "9000000003", false)

	_, err := f.orders().CreateOrder(context.Background(), 1, usecase.CreateOrderInput{
		OrderType:     "dining",
		PaymentMethod: "credit",
		Items:         []usecase.OrderLineInput{{DishID: f.biryani.ID, Quantity: 1}},
		CreditUserID:  &cu.ID,
	})
	requireKind(t, err, usecase.ErrInactiveAccount, http.StatusForbidden)

	// ロールバックされている
	requireMoney(t, "0", f.creditUser(t, cu.ID).TotalDue)
	assert.Empty(t, f.events.types())
}

func TestOrderUsecase_CreditOrder_MissingCreditUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.orders().CreateOrder(context.Background(), 1, usecase.CreateOrderInput{
		OrderType:     "dining",
		PaymentMethod: "credit",
		Items:         []usecase.OrderLineInput{{DishID: f.biryani.ID, Quantity: 1}},
	})
	requireKind(t, err, usecase.ErrInvalidCreditUser, http.StatusBadRequest)
}

func TestOrderUsecase_UpdateOrderWithPayment_SwitchToCredit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cu := f.seedCreditUser(t, "9000000004", true)
	o := f.createDiningOrder(t, usecase.OrderLineInput{DishID: f.lassi.ID, Quantity: 2})

	method := "credit"
	out, err := f.orders().UpdateOrderWithPayment(ctx, 1, o.ID, usecase.OrderPaymentPatch{PaymentMethod: &method, CreditUserID: &cu.ID})
	require.NoError(t, err)

	assert.Equal(t, model.PaymentCredit, out.PaymentMethod)
	requireMoney(t, "40", out.CreditAmount)
	requireMoney(t, "0", out.CashAmount)
	requireMoney(t, "40", f.creditUser(t, cu.ID).TotalDue)
}

// =====================
// List / Delete
// =====================

func TestOrderUsecase_ListOrders_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.createDiningOrder(t, usecase.OrderLineInput{DishID: f.biryani.ID, Quantity: 1})
	second := f.createDiningOrder(t, usecase.OrderLineInput{DishID: f.lassi.ID, Quantity: 1})
	require.NoError(t, f.orders().CancelOrder(ctx, 1, first.ID))

	all, err := f.orders().ListOrders(ctx, repo.OrderListFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)
	require.Len(t, all.Items, 2)
	assert.Equal(t, second.ID, all.Items[0].ID)
	assert.Len(t, all.Items[0].Items, 1)

	pending, err := f.orders().ListOrders(ctx, repo.OrderListFilter{Page: 1, Limit: 10, Status: "pending"})
	require.NoError(t, err)
	require.Len(t, pending.Items, 1)
	assert.Equal(t, second.ID, pending.Items[0].ID)

	paged, err := f.orders().ListOrders(ctx, repo.OrderListFilter{Page: 2, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), paged.Total)
	require.Len(t, paged.Items, 1)
	assert.Equal(t, first.ID, paged.Items[0].ID)
}

func TestOrderUsecase_ListOrders_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.orders().ListOrders(ctx, repo.OrderListFilter{Page: 0, Limit: 10})
	requireHTTPStatus(t, err, http.StatusBadRequest)

	_, err = f.orders().ListOrders(ctx, repo.OrderListFilter{Page: 1, Limit: 101})
	requireHTTPStatus(t, err, http.StatusBadRequest)

	_, err = f.orders().ListOrders(ctx, repo.OrderListFilter{Page: 1, Limit: 10, Status: "lost"})
	requireKind(t, err, usecase.ErrInvalidValue, http.StatusBadRequest)

	_, err = f.orders().ListOrders(ctx, repo.OrderListFilter{Page: 1, Limit: 10, OrderType: "drive-thru"})
	requireKind(t, err, usecase.ErrInvalidValue, http.StatusBadRequest)
}

func TestOrderUsecase_DeleteOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createDiningOrder(t, usecase.OrderLineInput{DishID: f.biryani.ID, Quantity: 1})

	require.NoError(t, f.orders().DeleteOrder(ctx, o.ID))

	_, err := f.orders().GetOrder(ctx, o.ID)
	requireKind(t, err, usecase.ErrNotFound, http.StatusNotFound)
	assert.Contains(t, f.events.types(), "OrderDeleted")

	err = f.orders().DeleteOrder(ctx, o.ID)
	requireKind(t, err, usecase.ErrNotFound, http.StatusNotFound)
}

// =====================
// 金額変更と内訳・掛け残高
// =====================

func itemIDFor(o usecase.OrderOutput, dishID int64) int64 {
	for _, it := range o.Items {
		if it.DishID == dishID {
			return it.ID
		}
	}
	return 0
}

func (f *fixture) createCreditOrder(t *testing.T, creditUserID int64, lines ...usecase.OrderLineInput) usecase.OrderOutput {
	t.Helper()
	out, err := f.orders().CreateOrder(context.Background(), 1, usecase.CreateOrderInput{
		OrderType:     "dining",
		PaymentMethod: "credit",
		Items:         lines,
		CreditUserID:  &creditUserID,
	})
	require.NoError(t, err)
	return out
}

func (f *fixture) creditKinds(t *testing.T, creditUserID int64) []model.CreditTransactionKind {
	t.Helper()
	txs, err := infrarepo.NewCreditTransactionGormRepository(f.db).List(context.Background(), &creditUserID)
	require.NoError(t, err)
	kinds := make([]model.CreditTransactionKind, 0, len(txs))
	for _, tx := range txs {
		kinds = append(kinds, tx.Kind)
	}
	return kinds
}

func TestOrderUsecase_RemoveItem_CashBankSplitFollowsTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o, err := f.orders().CreateOrder(ctx, 1, usecase.CreateOrderInput{
		OrderType:     "dining",
		PaymentMethod: "cash-bank",
		Items:         []usecase.OrderLineInput{{DishID: f.biryani.ID, Quantity: 2}, {DishID: f.lassi.ID, Quantity: 1}},
		CashAmount:    dec("60"),
		BankAmount:    dec("60"),
	})
	require.NoError(t, err)

	out, err := f.orders().RemoveItem(ctx, o.ID, itemIDFor(o, f.lassi.ID))
	require.NoError(t, err)
	require.NotNil(t, out.Order)
	requireMoney(t, "100", out.Order.TotalAmount)
	requireMoney(t, "40", out.Order.CashAmount)
	requireMoney(t, "60", out.Order.BankAmount)

	// 内訳を送らないステータス更新が通る
	status := "approved"
	approved, err := f.orders().UpdateOrderWithPayment(ctx, 1, o.ID, usecase.OrderPaymentPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusApproved, approved.Status)
	requireMoney(t, "100", approved.CashAmount.Add(approved.BankAmount))
}

func TestOrderUsecase_UpdateOrderWithPayment_CashBankMismatchStillRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createDiningOrder(t, usecase.OrderLineInput{DishID: f.biryani.ID, Quantity: 2})

	method := "cash-bank"
	_, err := f.orders().UpdateOrderWithPayment(ctx, 1, o.ID, usecase.OrderPaymentPatch{
		PaymentMethod: &method,
		CashAmount:    decPtr("30"),
		BankAmount:    decPtr("30"),
	})
	requireKind(t, err, usecase.ErrInvalidAmount, http.StatusBadRequest)
}

func TestOrderUsecase_CreditOrder_RemoveItemAdjustsDue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cu := f.seedCreditUser(t, "9000000011", true)
	o := f.createCreditOrder(t, cu.ID,
		usecase.OrderLineInput{DishID: f.biryani.ID, Quantity: 2},
		usecase.OrderLineInput{DishID: f.lassi.ID, Quantity: 1},
	)
	requireMoney(t, "120", f.creditUser(t, cu.ID).TotalDue)

	out, err := f.orders().RemoveItem(ctx, o.ID, itemIDFor(o, f.lassi.ID))
	require.NoError(t, err)
	requireMoney(t, "100", out.Order.CreditAmount)

	requireMoney(t, "100", f.creditUser(t, cu.ID).TotalDue)
	assert.Contains(t, f.creditKinds(t, cu.ID), model.CreditTransactionAdjustment)

	// 追加も同じく差額だけ
	_, err = f.orders().AddItem(ctx, o.ID, usecase.OrderLineInput{DishID: f.lassi.ID, Quantity: 2})
	require.NoError(t, err)
	requireMoney(t, "140", f.creditUser(t, cu.ID).TotalDue)
}

func TestOrderUsecase_CreditOrder_AddItemOverLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cu := f.seedCreditUser(t, "9000000012", true)
	cu.LimitAmount = dec("60")
	require.NoError(t, infrarepo.NewCreditUserGormRepository(f.db).Update(ctx, cu))
	o := f.createCreditOrder(t, cu.ID, usecase.OrderLineInput{DishID: f.biryani.ID, Quantity: 1})

	_, err := f.orders().AddItem(ctx, o.ID, usecase.OrderLineInput{DishID: f.lassi.ID, Quantity: 1})
	requireKind(t, err, usecase.ErrInvalidAmount, http.StatusBadRequest)

	requireMoney(t, "50", f.creditUser(t, cu.ID).TotalDue)
	got, err := f.orders().GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)
}

func TestOrderUsecase_CreditOrder_DeleteReversesDue(t *testing.T) {
	f := newFixture(t)
	cu := f.seedCreditUser(t, "9000000013", true)
	o := f.createCreditOrder(t, cu.ID, usecase.OrderLineInput{DishID: f.biryani.ID, Quantity: 2})
	requireMoney(t, "100", f.creditUser(t, cu.ID).TotalDue)

	require.NoError(t, f.orders().DeleteOrder(context.Background(), o.ID))

	requireMoney(t, "0", f.creditUser(t, cu.ID).TotalDue)
	assert.Contains(t, f.creditKinds(t, cu.ID), model.CreditTransactionReversal)
	_, err := infrarepo.NewCreditOrderGormRepository(f.db).FindByOrderID(context.Background(), o.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestOrderUsecase_CreditOrder_RemoveLastItemReversesDue(t *testing.T) {
	f := newFixture(t)
	cu := f.seedCreditUser(t, "9000000014", true)
	o := f.createCreditOrder(t, cu.ID, usecase.OrderLineInput{DishID: f.lassi.ID, Quantity: 1})

	out, err := f.orders().RemoveItem(context.Background(), o.ID, o.Items[0].ID)
	require.NoError(t, err)
	assert.True(t, out.OrderDeleted)

	requireMoney(t, "0", f.creditUser(t, cu.ID).TotalDue)
}

func TestOrderUsecase_CreditOrder_CancelReversesDue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cu := f.seedCreditUser(t, "9000000015", true)
	o := f.createCreditOrder(t, cu.ID, usecase.OrderLineInput{DishID: f.biryani.ID, Quantity: 1})

	require.NoError(t, f.orders().CancelOrder(ctx, 1, o.ID))
	requireMoney(t, "0", f.creditUser(t, cu.ID).TotalDue)

	// 再キャンセルで二重に戻さない
	require.NoError(t, f.orders().CancelOrder(ctx, 1, o.ID))
	requireMoney(t, "0", f.creditUser(t, cu.ID).TotalDue)
}

func TestOrderUsecase_UpdateOrderWithPayment_MovesCreditToAnotherUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seedCreditUser(t, "9000000016", true)
	b := f.seedCreditUser(t, "9000000017", true)
	o := f.createCreditOrder(t, a.ID, usecase.OrderLineInput{DishID: f.biryani.ID, Quantity: 1})

	_, err := f.orders().UpdateOrderWithPayment(ctx, 1, o.ID, usecase.OrderPaymentPatch{CreditUserID: &b.ID})
	require.NoError(t, err)

	requireMoney(t, "0", f.creditUser(t, a.ID).TotalDue)
	requireMoney(t, "50", f.creditUser(t, b.ID).TotalDue)
	link, err := infrarepo.NewCreditOrderGormRepository(f.db).FindByOrderID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, link.CreditUserID)
}

func TestOrderUsecase_UpdateOrderWithPayment_SwitchAwayFromCredit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cu := f.seedCreditUser(t, "9000000018", true)
	o := f.createCreditOrder(t, cu.ID, usecase.OrderLineInput{DishID: f.biryani.ID, Quantity: 1})

	method := "cash"
	out, err := f.orders().UpdateOrderWithPayment(ctx, 1, o.ID, usecase.OrderPaymentPatch{PaymentMethod: &method})
	require.NoError(t, err)

	assert.Nil(t, out.CreditUserID)
	requireMoney(t, "50", out.CashAmount)
	requireMoney(t, "0", out.CreditAmount)
	requireMoney(t, "0", f.creditUser(t, cu.ID).TotalDue)
	_, err = infrarepo.NewCreditOrderGormRepository(f.db).FindByOrderID(ctx, o.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

// =====================
// 注文履歴
// =====================

func TestOrderUsecase_UserOrderHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := f.orders()

	for _, phone := range []string{"9000000001", "9000000001", "9000000002", ""} {
		_, err := uc.CreateOrder(ctx, 1, usecase.CreateOrderInput{
			OrderType:           "dining",
			PaymentMethod:       "cash",
			CustomerPhoneNumber: phone,
			Items:               []usecase.OrderLineInput{{DishID: f.lassi.ID, Quantity: 1}},
		})
		require.NoError(t, err)
	}

	out, err := uc.UserOrderHistory(ctx, " 9000000001 ", 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 2, out.Total)
	require.Len(t, out.Items, 2)
	for _, o := range out.Items {
		require.Equal(t, "9000000001", o.CustomerPhoneNumber)
	}

	out, err = uc.UserOrderHistory(ctx, "9999999999", 1, 10)
	require.NoError(t, err)
	require.Empty(t, out.Items)

	// 番号なしは全件ではなく空
	out, err = uc.UserOrderHistory(ctx, "", 1, 10)
	require.NoError(t, err)
	require.NotNil(t, out.Items)
	require.Empty(t, out.Items)
	require.Zero(t, out.Total)

	_, err = uc.UserOrderHistory(ctx, "9000000001", 0, 10)
	requireHTTPStatus(t, err, http.StatusBadRequest)
}
