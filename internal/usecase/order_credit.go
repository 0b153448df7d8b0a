package usecase

import (
	"context"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"restaurant/internal/domain/event"
	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"
)

// 掛け客のtotal_dueを注文の現在の状態に合わせる。
// CreditOrder.Amountが「この注文分として載っている額」で、差分だけを動かす。
func (u *OrderUsecase) syncCredit(ctx context.Context, r repo.TxRepos, o model.Order) ([]event.Event, error) {
	link, err := r.CreditOrders().FindByOrderID(ctx, o.ID)
	linked := err == nil
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, dbError()
	}

	charged := o.PaymentMethod == model.PaymentCredit && o.Status != model.OrderStatusCancelled
	if charged && o.CreditUserID == nil {
		return nil, domainError(http.StatusBadRequest, ErrInvalidCreditUser, "invalid credit user")
	}

	switch {
	case !linked && !charged:
		return nil, nil
	case !linked:
		return u.accrueCredit(ctx, r, o)
	case !charged:
		return nil, reverseCredit(ctx, r, link, "Order #"+model.InvoiceNumberFor(o.ID)+" released")
	case link.CreditUserID != *o.CreditUserID:
		//付け替え: 旧掛け客から外して新しい掛け客に計上
		if err := reverseCredit(ctx, r, link, "Order #"+model.InvoiceNumberFor(o.ID)+" moved to another account"); err != nil {
			return nil, err
		}
		return u.accrueCredit(ctx, r, o)
	case !link.Amount.Equal(o.TotalAmount):
		return nil, adjustCredit(ctx, r, link, o)
	}
	return nil, nil
}

// 新規の紐付けと計上。無効・期限超過・上限超過の掛け客には付けられない。
func (u *OrderUsecase) accrueCredit(ctx context.Context, r repo.TxRepos, o model.Order) ([]event.Event, error) {
	cu, err := lockCreditUser(ctx, r, *o.CreditUserID)
	if err != nil {
		return nil, err
	}
	if !cu.IsActive {
		return nil, domainError(http.StatusForbidden, ErrInactiveAccount, "credit account is inactive")
	}
	if cu.DueDate != nil && u.now().After(*cu.DueDate) && cu.TotalDue.IsPositive() {
		return nil, domainError(http.StatusForbidden, ErrInactiveAccount, "credit account is overdue")
	}
	if err := checkCreditLimit(cu, o.TotalAmount); err != nil {
		return nil, err
	}

	if err := r.CreditOrders().Create(ctx, &model.CreditOrder{OrderID: o.ID, CreditUserID: cu.ID, Amount: o.TotalAmount}); err != nil {
		return nil, dbError()
	}
	if err := postCredit(ctx, r, cu, o.ID, model.CreditTransactionCharge, o.TotalAmount, "Order #"+model.InvoiceNumberFor(o.ID)); err != nil {
		return nil, err
	}
	return []event.Event{event.CreditAccrued{CreditUserID: cu.ID, OrderID: o.ID, Amount: o.TotalAmount}}, nil
}

// 注文金額の変更分だけ調整する。増額は上限を確認する。
func adjustCredit(ctx context.Context, r repo.TxRepos, link model.CreditOrder, o model.Order) error {
	cu, err := lockCreditUser(ctx, r, link.CreditUserID)
	if err != nil {
		return err
	}
	diff := o.TotalAmount.Sub(link.Amount)
	if diff.IsPositive() {
		if err := checkCreditLimit(cu, diff); err != nil {
			return err
		}
	}
	if err := r.CreditOrders().UpdateAmount(ctx, link.ID, o.TotalAmount); err != nil {
		return dbError()
	}
	return postCredit(ctx, r, cu, o.ID, model.CreditTransactionAdjustment, diff, "Order #"+model.InvoiceNumberFor(o.ID)+" amended")
}

// 計上済みの額を戻して紐付けを外す。無効化された掛け客でも戻せる。
func reverseCredit(ctx context.Context, r repo.TxRepos, link model.CreditOrder, description string) error {
	cu, err := lockCreditUser(ctx, r, link.CreditUserID)
	if errors.Is(err, ErrInvalidCreditUser) {
		//掛け客が削除済みなら紐付けだけ外す
		return deleteCreditLink(ctx, r, link.OrderID)
	}
	if err != nil {
		return err
	}
	if err := postCredit(ctx, r, cu, link.OrderID, model.CreditTransactionReversal, link.Amount.Neg(), description); err != nil {
		return err
	}
	return deleteCreditLink(ctx, r, link.OrderID)
}

// 注文削除の前に呼ぶ。紐付けが無ければ何もしない。
func releaseCredit(ctx context.Context, r repo.TxRepos, orderID int64) error {
	link, err := r.CreditOrders().FindByOrderID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return dbError()
	}
	return reverseCredit(ctx, r, link, "Order #"+model.InvoiceNumberFor(orderID)+" deleted")
}

func lockCreditUser(ctx context.Context, r repo.TxRepos, id int64) (model.CreditUser, error) {
	cu, err := r.CreditUsers().FindByIDForUpdate(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.CreditUser{}, domainError(http.StatusBadRequest, ErrInvalidCreditUser, "invalid credit user")
	}
	if err != nil {
		return model.CreditUser{}, dbError()
	}
	return cu, nil
}

// limit_amountが0なら上限なし
func checkCreditLimit(cu model.CreditUser, increase decimal.Decimal) error {
	if cu.LimitAmount.IsPositive() && cu.TotalDue.Add(increase).GreaterThan(cu.LimitAmount) {
		return domainError(http.StatusBadRequest, ErrInvalidAmount, "credit limit exceeded")
	}
	return nil
}

// total_dueを動かし、同じ額で履歴を1行残す
func postCredit(ctx context.Context, r repo.TxRepos, cu model.CreditUser, orderID int64, kind model.CreditTransactionKind, amount decimal.Decimal, description string) error {
	if err := r.CreditUsers().AddToTotalDue(ctx, cu.ID, amount); err != nil {
		return dbError()
	}
	if err := r.CreditTransactions().Create(ctx, &model.CreditTransaction{
		CreditUserID: cu.ID,
		OrderID:      &orderID,
		Kind:         kind,
		Amount:       amount,
		BalanceAfter: cu.TotalDue.Add(amount),
		Description:  description,
	}); err != nil {
		return dbError()
	}
	return nil
}

func deleteCreditLink(ctx context.Context, r repo.TxRepos, orderID int64) error {
	if err := r.CreditOrders().DeleteByOrderID(ctx, orderID); err != nil {
		return dbError()
	}
	return nil
}
