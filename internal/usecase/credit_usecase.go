package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"restaurant/internal/domain/model"
	"restaurant/internal/metrics"
	repo "restaurant/internal/repository"
)

// 掛け売り客と残高の管理
type CreditUsecase struct {
	tx      repo.TransactionManager
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewCreditUsecase(tx repo.TransactionManager, m *metrics.Metrics) *CreditUsecase {
	return &CreditUsecase{tx: tx, metrics: m, now: time.Now}
}

type CreditUserInput struct {
	Name         string
	MobileNumber string
	Address      string
	LimitAmount  decimal.Decimal
	DueDate      *time.Time
	//nilなら作成時はtrue、更新時は変更しない
	IsActive *bool
}

func validateCreditUser(in CreditUserInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if strings.TrimSpace(in.MobileNumber) == "" {
		return NewHTTPError(http.StatusBadRequest, "mobile_number required")
	}
	if len(strings.TrimSpace(in.MobileNumber)) > 15 {
		return NewHTTPError(http.StatusBadRequest, "mobile_number too long")
	}
	if in.LimitAmount.IsNegative() {
		return domainError(http.StatusBadRequest, ErrInvalidAmount, "limit_amount must be >= 0")
	}
	return nil
}

func (u *CreditUsecase) CreateCreditUser(ctx context.Context, in CreditUserInput) (model.CreditUser, error) {
	if err := validateCreditUser(in); err != nil {
		return model.CreditUser{}, err
	}

	cu := model.CreditUser{
		Name:         strings.TrimSpace(in.Name),
		MobileNumber: strings.TrimSpace(in.MobileNumber),
		Address:      in.Address,
		TotalDue:     decimal.Zero,
		LimitAmount:  in.LimitAmount.Round(2),
		DueDate:      in.DueDate,
		IsActive:     true,
	}
	if in.IsActive != nil {
		cu.IsActive = *in.IsActive
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		_, err := r.CreditUsers().FindByMobile(ctx, cu.MobileNumber)
		if err == nil {
			return NewHTTPError(http.StatusConflict, "mobile_number already registered")
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return dbError()
		}
		if err := r.CreditUsers().Create(ctx, &cu); err != nil {
			return dbError()
		}
		return nil
	})
	if err != nil {
		return model.CreditUser{}, err
	}
	return cu, nil
}

func (u *CreditUsecase) GetCreditUser(ctx context.Context, id int64) (model.CreditUser, error) {
	if id <= 0 {
		return model.CreditUser{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var cu model.CreditUser
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		cu, err = findCreditUser(ctx, r, id, false)
		return err
	})
	return cu, err
}

func (u *CreditUsecase) ListCreditUsers(ctx context.Context) ([]model.CreditUser, error) {
	return u.list(ctx, false)
}

// 有効な掛け客だけ
func (u *CreditUsecase) ActiveUsers(ctx context.Context) ([]model.CreditUser, error) {
	return u.list(ctx, true)
}

func (u *CreditUsecase) list(ctx context.Context, activeOnly bool) ([]model.CreditUser, error) {
	var out []model.CreditUser
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		out, err = r.CreditUsers().List(ctx, activeOnly)
		if err != nil {
			return dbError()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.CreditUser{}
	}
	return out, nil
}

// 電話番号で検索。無効な客は403。
func (u *CreditUsecase) FindByMobile(ctx context.Context, mobile string) (model.CreditUser, error) {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return model.CreditUser{}, NewHTTPError(http.StatusBadRequest, "mobile_number required")
	}
	var cu model.CreditUser
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		cu, err = r.CreditUsers().FindByMobile(ctx, mobile)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("credit user")
		}
		if err != nil {
			return dbError()
		}
		if !cu.IsActive {
			return domainError(http.StatusForbidden, ErrInactiveAccount, "credit account is inactive")
		}
		return nil
	})
	if err != nil {
		return model.CreditUser{}, err
	}
	return cu, nil
}

func (u *CreditUsecase) UpdateCreditUser(ctx context.Context, id int64, in CreditUserInput) (model.CreditUser, error) {
	if id <= 0 {
		return model.CreditUser{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := validateCreditUser(in); err != nil {
		return model.CreditUser{}, err
	}

	var cu model.CreditUser
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		cu, err = findCreditUser(ctx, r, id, true)
		if err != nil {
			return err
		}
		mobile := strings.TrimSpace(in.MobileNumber)
		if mobile != cu.MobileNumber {
			other, err := r.CreditUsers().FindByMobile(ctx, mobile)
			if err == nil && other.ID != id {
				return NewHTTPError(http.StatusConflict, "mobile_number already registered")
			}
			if err != nil && !errors.Is(err, repo.ErrNotFound) {
				return dbError()
			}
		}

		//total_dueは入金・掛け注文でしか動かさない
		cu.Name = strings.TrimSpace(in.Name)
		cu.MobileNumber = mobile
		cu.Address = in.Address
		cu.LimitAmount = in.LimitAmount.Round(2)
		cu.DueDate = in.DueDate
		if in.IsActive != nil {
			cu.IsActive = *in.IsActive
		}
		if err := r.CreditUsers().Update(ctx, cu); err != nil {
			return dbError()
		}
		return nil
	})
	if err != nil {
		return model.CreditUser{}, err
	}
	return cu, nil
}

func (u *CreditUsecase) DeleteCreditUser(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		err := r.CreditUsers().Delete(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("credit user")
		}
		if err != nil {
			return dbError()
		}
		return nil
	})
}

// 入金。無効な客でも受け付ける。残高は負になってもよい。
func (u *CreditUsecase) MakePayment(ctx context.Context, actorUserID, id int64, amount decimal.Decimal) (model.CreditUser, error) {
	if id <= 0 {
		return model.CreditUser{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if !amount.IsPositive() {
		return model.CreditUser{}, domainError(http.StatusBadRequest, ErrInvalidAmount, "amount must be greater than 0")
	}
	amount = amount.Round(2)

	var cu model.CreditUser
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		cu, err = findCreditUser(ctx, r, id, true)
		if err != nil {
			return err
		}
		before := cu.TotalDue
		paidAt := u.now()

		if err := r.CreditUsers().ApplyPayment(ctx, id, amount, paidAt); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFound("credit user")
			}
			return dbError()
		}
		cu.TotalDue = before.Sub(amount)
		cu.LastPaymentDate = &paidAt

		if err := r.CreditTransactions().Create(ctx, &model.CreditTransaction{
			CreditUserID: id,
			Kind:         model.CreditTransactionPayment,
			Amount:       amount,
			BalanceAfter: cu.TotalDue,
			Description:  "Payment",
		}); err != nil {
			return dbError()
		}

		return writeAudit(ctx, r, actorUserID, model.AuditActionCreditPayment, model.AuditResourceCreditUser, id,
			map[string]interface{}{"total_due": before.StringFixed(2)},
			map[string]interface{}{"total_due": cu.TotalDue.StringFixed(2), "amount": amount.StringFixed(2)},
		)
	})
	if err != nil {
		return model.CreditUser{}, err
	}

	u.metrics.CreditPayment(amount)
	return cu, nil
}

// creditUserIDがnilなら全件
func (u *CreditUsecase) ListTransactions(ctx context.Context, creditUserID *int64) ([]model.CreditTransaction, error) {
	var out []model.CreditTransaction
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		out, err = r.CreditTransactions().List(ctx, creditUserID)
		if err != nil {
			return dbError()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.CreditTransaction{}
	}
	return out, nil
}

func (u *CreditUsecase) LatestTransaction(ctx context.Context, creditUserID *int64) (model.CreditTransaction, error) {
	var t model.CreditTransaction
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		t, err = r.CreditTransactions().Latest(ctx, creditUserID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("credit transaction")
		}
		if err != nil {
			return dbError()
		}
		return nil
	})
	return t, err
}

func (u *CreditUsecase) ListCreditOrders(ctx context.Context, creditUserID *int64) ([]model.CreditOrder, error) {
	var out []model.CreditOrder
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		out, err = r.CreditOrders().List(ctx, creditUserID)
		if err != nil {
			return dbError()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.CreditOrder{}
	}
	return out, nil
}

func findCreditUser(ctx context.Context, r repo.TxRepos, id int64, lock bool) (model.CreditUser, error) {
	var cu model.CreditUser
	var err error
	if lock {
		cu, err = r.CreditUsers().FindByIDForUpdate(ctx, id)
	} else {
		cu, err = r.CreditUsers().FindByID(ctx, id)
	}
	if errors.Is(err, repo.ErrNotFound) {
		return model.CreditUser{}, notFound("credit user")
	}
	if err != nil {
		return model.CreditUser{}, dbError()
	}
	return cu, nil
}
