package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"restaurant/internal/domain/event"
	"restaurant/internal/domain/model"
	"restaurant/internal/metrics"
	repo "restaurant/internal/repository"
)

type BillUsecase struct {
	tx      repo.TransactionManager
	events  EventDispatcher
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewBillUsecase(tx repo.TransactionManager, events EventDispatcher, m *metrics.Metrics) *BillUsecase {
	return &BillUsecase{tx: tx, events: events, metrics: m, now: time.Now}
}

// 請求作成。請求の登録と注文の請求済み化を同じTxで行う。
func (u *BillUsecase) CreateBill(ctx context.Context, orderID int64) (model.Bill, error) {
	if orderID <= 0 {
		return model.Bill{}, NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var bill model.Bill
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := findOrder(ctx, r, orderID, true)
		if err != nil {
			return err
		}

		//注文の担当者と合計をそのまま写す
		bill = model.Bill{
			OrderID:     o.ID,
			UserID:      o.UserID,
			TotalAmount: o.TotalAmount,
			Paid:        true,
			BilledAt:    u.now(),
		}
		if err := r.Bills().Create(ctx, &bill); err != nil {
			return dbError()
		}
		if err := r.Orders().MarkBilled(ctx, o.ID); err != nil {
			return dbError()
		}
		return nil
	})
	if err != nil {
		return model.Bill{}, err
	}

	u.metrics.BillCreated()
	u.events.Dispatch(ctx, event.BillCreated{BillID: bill.ID, OrderID: bill.OrderID})
	return bill, nil
}

type BillListOutput struct {
	Items []model.Bill `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

func (u *BillUsecase) ListBills(ctx context.Context, f repo.BillListFilter) (BillListOutput, error) {
	if f.Page < 1 {
		return BillListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return BillListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.OrderStatus != "" && !model.OrderStatus(f.OrderStatus).Valid() {
		return BillListOutput{}, invalidValue("invalid status")
	}

	out := BillListOutput{Page: f.Page, Limit: f.Limit}
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		items, total, err := r.Bills().List(ctx, f)
		if err != nil {
			return dbError()
		}
		out.Items, out.Total = items, total
		return nil
	})
	if err != nil {
		return BillListOutput{}, err
	}
	if out.Items == nil {
		out.Items = []model.Bill{}
	}
	return out, nil
}

func (u *BillUsecase) GetBill(ctx context.Context, billID int64) (model.Bill, error) {
	if billID <= 0 {
		return model.Bill{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var b model.Bill
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		b, err = r.Bills().FindByID(ctx, billID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("bill")
		}
		if err != nil {
			return dbError()
		}
		return nil
	})
	return b, err
}

func (u *BillUsecase) DeleteBill(ctx context.Context, billID int64) error {
	if billID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		err := r.Bills().Delete(ctx, billID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("bill")
		}
		if err != nil {
			return dbError()
		}
		return nil
	})
}
