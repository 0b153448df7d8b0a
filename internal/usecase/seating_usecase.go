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

type SeatingUsecase struct {
	floors   repo.FloorRepository
	tables   repo.DiningTableRepository
	chairs   repo.ChairRepository
	bookings repo.ChairBookingRepository
	tx       repo.TransactionManager
}

func NewSeatingUsecase(floors repo.FloorRepository, tables repo.DiningTableRepository, chairs repo.ChairRepository, bookings repo.ChairBookingRepository, tx repo.TransactionManager) *SeatingUsecase {
	return &SeatingUsecase{floors: floors, tables: tables, chairs: chairs, bookings: bookings, tx: tx}
}

// =====================
// floors
// =====================

func (u *SeatingUsecase) CreateFloor(ctx context.Context, name string) (model.Floor, error) {
	name = strings.TrimSpace(name)
	if err := u.checkFloorName(ctx, name, 0); err != nil {
		return model.Floor{}, err
	}
	f := model.Floor{Name: name}
	if err := u.floors.Create(ctx, &f); err != nil {
		return model.Floor{}, dbError()
	}
	return f, nil
}

func (u *SeatingUsecase) checkFloorName(ctx context.Context, name string, selfID int64) error {
	if name == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if utf8.RuneCountInString(name) > 100 {
		return NewHTTPError(http.StatusBadRequest, "name too long")
	}
	other, err := u.floors.FindByName(ctx, name)
	if err == nil && other.ID != selfID {
		return NewHTTPError(http.StatusConflict, "floor already exists")
	}
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return dbError()
	}
	return nil
}

func (u *SeatingUsecase) GetFloor(ctx context.Context, id int64) (model.Floor, error) {
	if id <= 0 {
		return model.Floor{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	f, err := u.floors.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Floor{}, notFound("floor")
	}
	if err != nil {
		return model.Floor{}, dbError()
	}
	return f, nil
}

func (u *SeatingUsecase) ListFloors(ctx context.Context) ([]model.Floor, error) {
	fs, err := u.floors.List(ctx)
	if err != nil {
		return nil, dbError()
	}
	return fs, nil
}

// フロア選択用に名前だけ返す
func (u *SeatingUsecase) FloorNames(ctx context.Context) ([]string, error) {
	fs, err := u.ListFloors(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(fs))
	for _, f := range fs {
		names = append(names, f.Name)
	}
	return names, nil
}

func (u *SeatingUsecase) UpdateFloor(ctx context.Context, id int64, name string) (model.Floor, error) {
	f, err := u.GetFloor(ctx, id)
	if err != nil {
		return model.Floor{}, err
	}
	name = strings.TrimSpace(name)
	if err := u.checkFloorName(ctx, name, id); err != nil {
		return model.Floor{}, err
	}
	f.Name = name
	if err := u.floors.Update(ctx, f); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Floor{}, notFound("floor")
		}
		return model.Floor{}, dbError()
	}
	return f, nil
}

// フロアのテーブルも消える
func (u *SeatingUsecase) DeleteFloor(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	err := u.floors.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return notFound("floor")
	}
	if err != nil {
		return dbError()
	}
	return nil
}

// =====================
// tables
// =====================

type TableInput struct {
	TableName  string
	StartTime  string
	EndTime    string
	SeatsCount int
	Capacity   int
	FloorID    int64
	IsReady    *bool
}

// "HH:MM"。空なら00:00
func clockTime(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "00:00", true
	}
	t, err := time.Parse("15:04", v)
	if err != nil {
		return "", false
	}
	return t.Format("15:04"), true
}

func (u *SeatingUsecase) buildTable(ctx context.Context, t model.DiningTable, in TableInput) (model.DiningTable, error) {
	name := strings.TrimSpace(in.TableName)
	if name == "" {
		return t, NewHTTPError(http.StatusBadRequest, "table_name required")
	}
	if utf8.RuneCountInString(name) > 50 {
		return t, NewHTTPError(http.StatusBadRequest, "table_name too long")
	}
	start, ok := clockTime(in.StartTime)
	if !ok {
		return t, invalidValue("start_time must be HH:MM")
	}
	end, ok := clockTime(in.EndTime)
	if !ok {
		return t, invalidValue("end_time must be HH:MM")
	}
	if in.SeatsCount <= 0 || in.Capacity <= 0 {
		return t, invalidValue("seats_count and capacity must be positive")
	}
	f, err := u.GetFloor(ctx, in.FloorID)
	if err != nil {
		return t, err
	}

	t.TableName = name
	t.StartTime, t.EndTime = start, end
	t.SeatsCount, t.Capacity = in.SeatsCount, in.Capacity
	t.FloorID = f.ID
	t.Floor = f
	if in.IsReady != nil {
		t.IsReady = *in.IsReady
	}
	return t, nil
}

func (u *SeatingUsecase) CreateTable(ctx context.Context, in TableInput) (model.DiningTable, error) {
	t, err := u.buildTable(ctx, model.DiningTable{IsReady: true}, in)
	if err != nil {
		return model.DiningTable{}, err
	}
	if err := u.tables.Create(ctx, &t); err != nil {
		return model.DiningTable{}, dbError()
	}
	return t, nil
}

func (u *SeatingUsecase) GetTable(ctx context.Context, id int64) (model.DiningTable, error) {
	if id <= 0 {
		return model.DiningTable{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	t, err := u.tables.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.DiningTable{}, notFound("table")
	}
	if err != nil {
		return model.DiningTable{}, dbError()
	}
	return t, nil
}

// floorNameはフロア名での絞り込み
func (u *SeatingUsecase) ListTables(ctx context.Context, floorName string) ([]model.DiningTable, error) {
	ts, err := u.tables.List(ctx, strings.TrimSpace(floorName))
	if err != nil {
		return nil, dbError()
	}
	return ts, nil
}

func (u *SeatingUsecase) UpdateTable(ctx context.Context, id int64, in TableInput) (model.DiningTable, error) {
	t, err := u.GetTable(ctx, id)
	if err != nil {
		return model.DiningTable{}, err
	}
	t, err = u.buildTable(ctx, t, in)
	if err != nil {
		return model.DiningTable{}, err
	}
	if err := u.tables.Update(ctx, t); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.DiningTable{}, notFound("table")
		}
		return model.DiningTable{}, dbError()
	}
	return t, nil
}

func (u *SeatingUsecase) DeleteTable(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	err := u.tables.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return notFound("table")
	}
	if err != nil {
		return dbError()
	}
	return nil
}

// =====================
// chairs
// =====================

type ChairInput struct {
	ChairName string
	Amount    decimal.Decimal
	IsActive  *bool
}

func (u *SeatingUsecase) applyChair(ctx context.Context, c model.Chair, in ChairInput) (model.Chair, error) {
	name := strings.TrimSpace(in.ChairName)
	if name == "" {
		return c, NewHTTPError(http.StatusBadRequest, "chair_name required")
	}
	if utf8.RuneCountInString(name) > 50 {
		return c, NewHTTPError(http.StatusBadRequest, "chair_name too long")
	}
	other, err := u.chairs.FindByName(ctx, name)
	if err == nil && other.ID != c.ID {
		return c, NewHTTPError(http.StatusConflict, "chair already exists")
	}
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return c, dbError()
	}
	if in.Amount.IsNegative() {
		return c, domainError(http.StatusBadRequest, ErrInvalidAmount, "amount must be >= 0")
	}
	c.ChairName = name
	c.Amount = in.Amount.Round(2)
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	return c, nil
}

func (u *SeatingUsecase) CreateChair(ctx context.Context, in ChairInput) (model.Chair, error) {
	c, err := u.applyChair(ctx, model.Chair{IsActive: true}, in)
	if err != nil {
		return model.Chair{}, err
	}
	if err := u.chairs.Create(ctx, &c); err != nil {
		return model.Chair{}, dbError()
	}
	return c, nil
}

func (u *SeatingUsecase) GetChair(ctx context.Context, id int64) (model.Chair, error) {
	if id <= 0 {
		return model.Chair{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	c, err := u.chairs.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Chair{}, notFound("chair")
	}
	if err != nil {
		return model.Chair{}, dbError()
	}
	return c, nil
}

func (u *SeatingUsecase) ListChairs(ctx context.Context) ([]model.Chair, error) {
	cs, err := u.chairs.List(ctx)
	if err != nil {
		return nil, dbError()
	}
	return cs, nil
}

func (u *SeatingUsecase) UpdateChair(ctx context.Context, id int64, in ChairInput) (model.Chair, error) {
	c, err := u.GetChair(ctx, id)
	if err != nil {
		return model.Chair{}, err
	}
	c, err = u.applyChair(ctx, c, in)
	if err != nil {
		return model.Chair{}, err
	}
	if err := u.chairs.Update(ctx, c); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Chair{}, notFound("chair")
		}
		return model.Chair{}, dbError()
	}
	return c, nil
}

func (u *SeatingUsecase) DeleteChair(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	err := u.chairs.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return notFound("chair")
	}
	if err != nil {
		return dbError()
	}
	return nil
}

// =====================
// bookings
// =====================

type BookingInput struct {
	ChairID      int64
	CustomerName string
	CustomerMob  string
	StartTime    time.Time
	EndTime      time.Time
	//nilなら席の料金
	Amount  *decimal.Decimal
	OrderID *int64
}

func checkWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return NewHTTPError(http.StatusBadRequest, "start_time and end_time required")
	}
	if !end.After(start) {
		return invalidValue("end_time must be after start_time")
	}
	return nil
}

// chairsはTx内ならTx側のrepoを渡す
func applyBooking(ctx context.Context, chairs repo.ChairRepository, b model.ChairBooking, in BookingInput) (model.ChairBooking, error) {
	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		return b, NewHTTPError(http.StatusBadRequest, "customer_name required")
	}
	if err := checkWindow(in.StartTime, in.EndTime); err != nil {
		return b, err
	}
	if in.Amount != nil && in.Amount.IsNegative() {
		return b, domainError(http.StatusBadRequest, ErrInvalidAmount, "amount must be >= 0")
	}
	if in.ChairID <= 0 {
		return b, NewHTTPError(http.StatusBadRequest, "chair_id required")
	}
	c, err := chairs.FindByID(ctx, in.ChairID)
	if errors.Is(err, repo.ErrNotFound) {
		return b, notFound("chair")
	}
	if err != nil {
		return b, dbError()
	}
	if !c.IsActive {
		return b, invalidValue("chair is not active")
	}

	b.ChairID = c.ID
	b.Chair = c
	b.CustomerName = name
	b.CustomerMob = strings.TrimSpace(in.CustomerMob)
	b.StartTime = in.StartTime.UTC()
	b.EndTime = in.EndTime.UTC()
	b.Amount = c.Amount
	if in.Amount != nil {
		b.Amount = in.Amount.Round(2)
	}
	b.OrderID = in.OrderID
	return b, nil
}

// 作成時はpending。重なりは確定時に見る
func (u *SeatingUsecase) CreateBooking(ctx context.Context, in BookingInput) (model.ChairBooking, error) {
	b, err := applyBooking(ctx, u.chairs, model.ChairBooking{Status: model.BookingStatusPending}, in)
	if err != nil {
		return model.ChairBooking{}, err
	}
	if err := u.bookings.Create(ctx, &b); err != nil {
		return model.ChairBooking{}, dbError()
	}
	return b, nil
}

func (u *SeatingUsecase) GetBooking(ctx context.Context, id int64) (model.ChairBooking, error) {
	if id <= 0 {
		return model.ChairBooking{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := u.bookings.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.ChairBooking{}, notFound("booking")
	}
	if err != nil {
		return model.ChairBooking{}, dbError()
	}
	return b, nil
}

func (u *SeatingUsecase) ListBookings(ctx context.Context, f repo.ChairBookingFilter) ([]model.ChairBooking, error) {
	if f.Status != "" && !model.BookingStatus(f.Status).Valid() {
		return nil, invalidValue("invalid status")
	}
	bs, err := u.bookings.List(ctx, f)
	if err != nil {
		return nil, dbError()
	}
	return bs, nil
}

// 終了・キャンセル済みは変更不可。確定済みの時間変更は重なりを見直す
func (u *SeatingUsecase) UpdateBooking(ctx context.Context, id int64, in BookingInput) (model.ChairBooking, error) {
	var out model.ChairBooking
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		b, err := findBooking(ctx, r, id)
		if err != nil {
			return err
		}
		if b.Status == model.BookingStatusCancelled || b.Status == model.BookingStatusCompleted {
			return invalidTransition("booking is closed")
		}
		b, err = applyBooking(ctx, r.Chairs(), b, in)
		if err != nil {
			return err
		}
		if b.Status == model.BookingStatusConfirmed {
			if err := ensureSlotFree(ctx, r, b); err != nil {
				return err
			}
		}
		if err := r.ChairBookings().Update(ctx, b); err != nil {
			return dbError()
		}
		out = b
		return nil
	})
	if err != nil {
		return model.ChairBooking{}, err
	}
	return out, nil
}

func (u *SeatingUsecase) DeleteBooking(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	err := u.bookings.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return notFound("booking")
	}
	if err != nil {
		return dbError()
	}
	return nil
}

type Availability struct {
	IsAvailable         bool                 `json:"is_available"`
	ConflictingBookings []model.ChairBooking `json:"conflicting_bookings"`
}

// 確定済み予約と [start, end) が重なるか
func (u *SeatingUsecase) CheckAvailability(ctx context.Context, chairID int64, start, end time.Time) (Availability, error) {
	if chairID <= 0 {
		return Availability{}, NewHTTPError(http.StatusBadRequest, "chair_id required")
	}
	if err := checkWindow(start, end); err != nil {
		return Availability{}, err
	}
	if _, err := u.GetChair(ctx, chairID); err != nil {
		return Availability{}, err
	}
	conflicts, err := u.bookings.ConfirmedOverlapping(ctx, chairID, start.UTC(), end.UTC(), 0)
	if err != nil {
		return Availability{}, dbError()
	}
	return Availability{IsAvailable: len(conflicts) == 0, ConflictingBookings: conflicts}, nil
}

// pendingのみ確定できる。席をロックしてから重なりを確認する
func (u *SeatingUsecase) ConfirmBooking(ctx context.Context, id int64) (model.ChairBooking, error) {
	return u.moveBooking(ctx, id, func(ctx context.Context, r repo.TxRepos, b model.ChairBooking) (model.BookingStatus, error) {
		if b.Status != model.BookingStatusPending {
			return "", invalidTransition("only pending bookings can be confirmed")
		}
		if err := ensureSlotFree(ctx, r, b); err != nil {
			return "", err
		}
		return model.BookingStatusConfirmed, nil
	})
}

// 終了済みは取り消せない。取消済みはそのまま返す
func (u *SeatingUsecase) CancelBooking(ctx context.Context, id int64) (model.ChairBooking, error) {
	return u.moveBooking(ctx, id, func(_ context.Context, _ repo.TxRepos, b model.ChairBooking) (model.BookingStatus, error) {
		if b.Status == model.BookingStatusCompleted {
			return "", invalidTransition("completed bookings cannot be cancelled")
		}
		return model.BookingStatusCancelled, nil
	})
}

// 利用終了。確定済みのみ
func (u *SeatingUsecase) CompleteBooking(ctx context.Context, id int64) (model.ChairBooking, error) {
	return u.moveBooking(ctx, id, func(_ context.Context, _ repo.TxRepos, b model.ChairBooking) (model.BookingStatus, error) {
		if b.Status != model.BookingStatusConfirmed {
			return "", invalidTransition("only confirmed bookings can be completed")
		}
		return model.BookingStatusCompleted, nil
	})
}

func (u *SeatingUsecase) moveBooking(ctx context.Context, id int64, next func(context.Context, repo.TxRepos, model.ChairBooking) (model.BookingStatus, error)) (model.ChairBooking, error) {
	if id <= 0 {
		return model.ChairBooking{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var out model.ChairBooking
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		b, err := findBooking(ctx, r, id)
		if err != nil {
			return err
		}
		status, err := next(ctx, r, b)
		if err != nil {
			return err
		}
		if status != b.Status {
			if err := r.ChairBookings().UpdateStatus(ctx, b.ID, status); err != nil {
				return dbError()
			}
			b.Status = status
		}
		out = b
		return nil
	})
	if err != nil {
		return model.ChairBooking{}, err
	}
	return out, nil
}

func findBooking(ctx context.Context, r repo.TxRepos, id int64) (model.ChairBooking, error) {
	if id <= 0 {
		return model.ChairBooking{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := r.ChairBookings().FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.ChairBooking{}, notFound("booking")
	}
	if err != nil {
		return model.ChairBooking{}, dbError()
	}
	return b, nil
}

func ensureSlotFree(ctx context.Context, r repo.TxRepos, b model.ChairBooking) error {
	if _, err := r.Chairs().FindByIDForUpdate(ctx, b.ChairID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("chair")
		}
		return dbError()
	}
	conflicts, err := r.ChairBookings().ConfirmedOverlapping(ctx, b.ChairID, b.StartTime, b.EndTime, b.ID)
	if err != nil {
		return dbError()
	}
	if len(conflicts) > 0 {
		return domainError(http.StatusConflict, ErrSlotUnavailable, "chair is already booked for this period")
	}
	return nil
}
