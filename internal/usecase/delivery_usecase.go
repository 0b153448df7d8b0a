package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"restaurant/internal/domain/event"
	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"
)

// 配達員と配達注文。配達注文の状態は親注文とは独立して動く。
type DeliveryUsecase struct {
	tx     repo.TransactionManager
	users  repo.UserRepository
	events EventDispatcher
}

func NewDeliveryUsecase(tx repo.TransactionManager, users repo.UserRepository, events EventDispatcher) *DeliveryUsecase {
	return &DeliveryUsecase{tx: tx, users: users, events: events}
}

// 呼び出し元のユーザー。driverロールは自分の分しか見えない。
type Viewer struct {
	UserID int64
	Role   model.Role
}

func (v Viewer) isDriver() bool {
	return v.Role == model.RoleDriver
}

// 既存のdriverユーザーを配達員として登録する
func (u *DeliveryUsecase) CreateDriver(ctx context.Context, userID int64) (model.DeliveryDriver, error) {
	if userID <= 0 {
		return model.DeliveryDriver{}, NewHTTPError(http.StatusBadRequest, "user_id required")
	}
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return model.DeliveryDriver{}, dbError()
	}
	if user == nil {
		return model.DeliveryDriver{}, notFound("user")
	}
	if user.Role != model.RoleDriver {
		return model.DeliveryDriver{}, invalidValue("user is not a driver")
	}

	d := model.DeliveryDriver{UserID: userID, IsActive: true, IsAvailable: true}
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		_, err := r.DeliveryDrivers().FindByUserID(ctx, userID)
		if err == nil {
			return NewHTTPError(http.StatusConflict, "driver already exists")
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return dbError()
		}
		if err := r.DeliveryDrivers().Create(ctx, &d); err != nil {
			return dbError()
		}
		return nil
	})
	if err != nil {
		return model.DeliveryDriver{}, err
	}
	d.User = *user
	return d, nil
}

func (u *DeliveryUsecase) GetDriver(ctx context.Context, v Viewer, driverID int64) (model.DeliveryDriver, error) {
	if driverID <= 0 {
		return model.DeliveryDriver{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var d model.DeliveryDriver
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		d, err = findDriver(ctx, r, driverID)
		if err != nil {
			return err
		}
		if v.isDriver() && d.UserID != v.UserID {
			return notFound("delivery driver")
		}
		return nil
	})
	return d, err
}

func (u *DeliveryUsecase) ListDrivers(ctx context.Context, v Viewer) ([]model.DeliveryDriver, error) {
	out := []model.DeliveryDriver{}
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if v.isDriver() {
			d, err := r.DeliveryDrivers().FindByUserID(ctx, v.UserID)
			if errors.Is(err, repo.ErrNotFound) {
				return nil
			}
			if err != nil {
				return dbError()
			}
			out = append(out, d)
			return nil
		}
		ds, err := r.DeliveryDrivers().List(ctx)
		if err != nil {
			return dbError()
		}
		out = append(out, ds...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// 在籍フラグの反転
func (u *DeliveryUsecase) ToggleActive(ctx context.Context, v Viewer, driverID int64) (model.DeliveryDriver, error) {
	return u.toggle(ctx, v, driverID, func(r repo.TxRepos, d *model.DeliveryDriver) error {
		d.IsActive = !d.IsActive
		return r.DeliveryDrivers().SetActive(ctx, d.ID, d.IsActive)
	})
}

// 空きフラグの反転
func (u *DeliveryUsecase) ToggleAvailable(ctx context.Context, v Viewer, driverID int64) (model.DeliveryDriver, error) {
	return u.toggle(ctx, v, driverID, func(r repo.TxRepos, d *model.DeliveryDriver) error {
		d.IsAvailable = !d.IsAvailable
		return r.DeliveryDrivers().SetAvailable(ctx, d.ID, d.IsAvailable)
	})
}

func (u *DeliveryUsecase) toggle(ctx context.Context, v Viewer, driverID int64, apply func(repo.TxRepos, *model.DeliveryDriver) error) (model.DeliveryDriver, error) {
	if driverID <= 0 {
		return model.DeliveryDriver{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var d model.DeliveryDriver
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		d, err = findDriver(ctx, r, driverID)
		if err != nil {
			return err
		}
		//配達員本人か管理側のみ
		if v.isDriver() && d.UserID != v.UserID {
			return NewHTTPError(http.StatusForbidden, "forbidden")
		}
		if err := apply(r, &d); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFound("delivery driver")
			}
			return dbError()
		}
		return nil
	})
	if err != nil {
		return model.DeliveryDriver{}, err
	}
	return d, nil
}

func (u *DeliveryUsecase) DeleteDriver(ctx context.Context, driverID int64) error {
	if driverID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		err := r.DeliveryDrivers().Delete(ctx, driverID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("delivery driver")
		}
		if err != nil {
			return dbError()
		}
		return nil
	})
}

func (u *DeliveryUsecase) ListDeliveryOrders(ctx context.Context, v Viewer, status string) ([]model.DeliveryOrder, error) {
	status = strings.TrimSpace(status)
	if status != "" && !model.DeliveryStatus(status).Valid() {
		return nil, invalidValue("invalid status")
	}

	out := []model.DeliveryOrder{}
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		f := repo.DeliveryOrderFilter{Status: status}
		if v.isDriver() {
			d, err := r.DeliveryDrivers().FindByUserID(ctx, v.UserID)
			if errors.Is(err, repo.ErrNotFound) {
				return nil
			}
			if err != nil {
				return dbError()
			}
			f.DriverID = &d.ID
		}
		list, err := r.DeliveryOrders().List(ctx, f)
		if err != nil {
			return dbError()
		}
		out = append(out, list...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *DeliveryUsecase) GetDeliveryOrder(ctx context.Context, v Viewer, id int64) (model.DeliveryOrder, error) {
	if id <= 0 {
		return model.DeliveryOrder{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var do model.DeliveryOrder
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		do, err = findDeliveryOrder(ctx, r, id)
		if err != nil {
			return err
		}
		return checkDeliveryOwner(ctx, r, v, do)
	})
	return do, err
}

// 配達状態の更新。終端からは動かせない。同じ状態ならno-op。
func (u *DeliveryUsecase) UpdateDeliveryStatus(ctx context.Context, v Viewer, id int64, status string) (model.DeliveryOrder, error) {
	if id <= 0 {
		return model.DeliveryOrder{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	next := model.DeliveryStatus(strings.TrimSpace(status))
	if !next.Valid() {
		return model.DeliveryOrder{}, invalidValue("invalid status")
	}

	var do model.DeliveryOrder
	var changed *event.DeliveryStatusChanged
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		do, err = findDeliveryOrder(ctx, r, id)
		if err != nil {
			return err
		}
		if err := checkDeliveryOwner(ctx, r, v, do); err != nil {
			return err
		}
		if do.Status == next {
			return nil
		}
		if !do.Status.CanTransitionTo(next) {
			return invalidTransition(fmt.Sprintf("cannot change delivery from %s to %s", do.Status, next))
		}
		if err := r.DeliveryOrders().UpdateStatus(ctx, do.ID, next); err != nil {
			return dbError()
		}
		changed = &event.DeliveryStatusChanged{DeliveryOrderID: do.ID, OrderID: do.OrderID, From: string(do.Status), To: string(next)}
		do.Status = next
		return nil
	})
	if err != nil {
		return model.DeliveryOrder{}, err
	}
	if changed != nil {
		u.events.Dispatch(ctx, *changed)
	}
	return do, nil
}

// 配達員の割り当て。nilなら未割り当てに戻す。
func (u *DeliveryUsecase) AssignDriver(ctx context.Context, id int64, driverID *int64) (model.DeliveryOrder, error) {
	if id <= 0 {
		return model.DeliveryOrder{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var do model.DeliveryOrder
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		do, err = findDeliveryOrder(ctx, r, id)
		if err != nil {
			return err
		}
		if driverID != nil {
			d, err := findDriver(ctx, r, *driverID)
			if err != nil {
				return err
			}
			if !d.IsActive {
				return invalidValue("driver is not active")
			}
		}
		if err := r.DeliveryOrders().AssignDriver(ctx, do.ID, driverID); err != nil {
			return dbError()
		}
		do.DriverID = driverID
		return nil
	})
	if err != nil {
		return model.DeliveryOrder{}, err
	}
	return do, nil
}

func findDriver(ctx context.Context, r repo.TxRepos, driverID int64) (model.DeliveryDriver, error) {
	d, err := r.DeliveryDrivers().FindByID(ctx, driverID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.DeliveryDriver{}, notFound("delivery driver")
	}
	if err != nil {
		return model.DeliveryDriver{}, dbError()
	}
	return d, nil
}

func findDeliveryOrder(ctx context.Context, r repo.TxRepos, id int64) (model.DeliveryOrder, error) {
	do, err := r.DeliveryOrders().FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.DeliveryOrder{}, notFound("delivery order")
	}
	if err != nil {
		return model.DeliveryOrder{}, dbError()
	}
	return do, nil
}

// driverロールは自分に割り当てられた配達注文のみ
func checkDeliveryOwner(ctx context.Context, r repo.TxRepos, v Viewer, do model.DeliveryOrder) error {
	if !v.isDriver() {
		return nil
	}
	d, err := r.DeliveryDrivers().FindByUserID(ctx, v.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return notFound("delivery order")
	}
	if err != nil {
		return dbError()
	}
	if do.DriverID == nil || *do.DriverID != d.ID {
		return notFound("delivery order")
	}
	return nil
}
