package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"
)

type CouponUsecase struct {
	coupons repo.CouponRepository
	now     func() time.Time
}

func NewCouponUsecase(coupons repo.CouponRepository) *CouponUsecase {
	return &CouponUsecase{coupons: coupons, now: time.Now}
}

type CouponInput struct {
	Code               string
	Description        string
	DiscountAmount     decimal.Decimal
	DiscountPercentage *decimal.Decimal
	MinPurchaseAmount  *decimal.Decimal
	IsActive           *bool
	StartDate          time.Time
	EndDate            time.Time
	UsageLimit         *int64
}

func validateCoupon(in CouponInput) error {
	if strings.TrimSpace(in.Code) == "" {
		return NewHTTPError(http.StatusBadRequest, "code required")
	}
	if len(strings.TrimSpace(in.Code)) > 50 {
		return NewHTTPError(http.StatusBadRequest, "code too long")
	}
	if in.DiscountAmount.IsNegative() {
		return domainError(http.StatusBadRequest, ErrInvalidAmount, "discount_amount must be >= 0")
	}
	if p := in.DiscountPercentage; p != nil && (p.IsNegative() || p.GreaterThan(decimal.NewFromInt(100))) {
		return domainError(http.StatusBadRequest, ErrInvalidAmount, "discount_percentage must be between 0 and 100")
	}
	if m := in.MinPurchaseAmount; m != nil && m.IsNegative() {
		return domainError(http.StatusBadRequest, ErrInvalidAmount, "min_purchase_amount must be >= 0")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return NewHTTPError(http.StatusBadRequest, "start_date and end_date required")
	}
	if in.EndDate.Before(in.StartDate) {
		return NewHTTPError(http.StatusBadRequest, "end_date must be after start_date")
	}
	if in.UsageLimit != nil && *in.UsageLimit < 0 {
		return NewHTTPError(http.StatusBadRequest, "usage_limit must be >= 0")
	}
	return nil
}

func (u *CouponUsecase) CreateCoupon(ctx context.Context, in CouponInput) (model.Coupon, error) {
	if err := validateCoupon(in); err != nil {
		return model.Coupon{}, err
	}
	code := strings.TrimSpace(in.Code)
	_, err := u.coupons.FindByCode(ctx, code)
	if err == nil {
		return model.Coupon{}, NewHTTPError(http.StatusConflict, "code already exists")
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return model.Coupon{}, dbError()
	}

	c := model.Coupon{
		Code:               code,
		Description:        in.Description,
		DiscountAmount:     in.DiscountAmount.Round(2),
		DiscountPercentage: in.DiscountPercentage,
		MinPurchaseAmount:  in.MinPurchaseAmount,
		IsActive:           true,
		StartDate:          in.StartDate,
		EndDate:            in.EndDate,
		UsageLimit:         in.UsageLimit,
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if err := u.coupons.Create(ctx, &c); err != nil {
		return model.Coupon{}, dbError()
	}
	return c, nil
}

func (u *CouponUsecase) GetCoupon(ctx context.Context, id int64) (model.Coupon, error) {
	if id <= 0 {
		return model.Coupon{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	c, err := u.coupons.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Coupon{}, notFound("coupon")
	}
	if err != nil {
		return model.Coupon{}, dbError()
	}
	return c, nil
}

func (u *CouponUsecase) ListCoupons(ctx context.Context) ([]model.Coupon, error) {
	cs, err := u.coupons.List(ctx)
	if err != nil {
		return nil, dbError()
	}
	if cs == nil {
		cs = []model.Coupon{}
	}
	return cs, nil
}

// usage_countは注文作成時にしか動かさない
func (u *CouponUsecase) UpdateCoupon(ctx context.Context, id int64, in CouponInput) (model.Coupon, error) {
	c, err := u.GetCoupon(ctx, id)
	if err != nil {
		return model.Coupon{}, err
	}
	if err := validateCoupon(in); err != nil {
		return model.Coupon{}, err
	}
	code := strings.TrimSpace(in.Code)
	if code != c.Code {
		other, err := u.coupons.FindByCode(ctx, code)
		if err == nil && other.ID != id {
			return model.Coupon{}, NewHTTPError(http.StatusConflict, "code already exists")
		}
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return model.Coupon{}, dbError()
		}
	}

	c.Code = code
	c.Description = in.Description
	c.DiscountAmount = in.DiscountAmount.Round(2)
	c.DiscountPercentage = in.DiscountPercentage
	c.MinPurchaseAmount = in.MinPurchaseAmount
	c.StartDate = in.StartDate
	c.EndDate = in.EndDate
	c.UsageLimit = in.UsageLimit
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if err := u.coupons.Update(ctx, c); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Coupon{}, notFound("coupon")
		}
		return model.Coupon{}, dbError()
	}
	return c, nil
}

func (u *CouponUsecase) DeleteCoupon(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	err := u.coupons.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return notFound("coupon")
	}
	if err != nil {
		return dbError()
	}
	return nil
}

type CouponValidation struct {
	Code             string          `json:"code"`
	Valid            bool            `json:"valid"`
	Reason           string          `json:"reason,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	DiscountedAmount decimal.Decimal `json:"discounted_amount"`
	Discount         decimal.Decimal `json:"discount"`
}

// 使えるかどうかの確認だけ。利用回数は増やさない。
func (u *CouponUsecase) Validate(ctx context.Context, code string, amount decimal.Decimal) (CouponValidation, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return CouponValidation{}, NewHTTPError(http.StatusBadRequest, "code required")
	}
	if amount.IsNegative() {
		return CouponValidation{}, domainError(http.StatusBadRequest, ErrInvalidAmount, "amount must be >= 0")
	}
	c, err := u.coupons.FindByCode(ctx, code)
	if errors.Is(err, repo.ErrNotFound) {
		return CouponValidation{}, notFound("coupon")
	}
	if err != nil {
		return CouponValidation{}, dbError()
	}

	out := CouponValidation{Code: c.Code, Amount: amount, DiscountedAmount: amount, Discount: decimal.Zero}
	now := u.now()
	switch {
	case !c.IsActive:
		out.Reason = "coupon is inactive"
	case now.Before(c.StartDate):
		out.Reason = "coupon is not yet valid"
	case now.After(c.EndDate):
		out.Reason = "coupon has expired"
	case c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit:
		out.Reason = "coupon usage limit reached"
	case !c.MeetsMinimum(amount):
		out.Reason = "amount is below the coupon minimum"
	default:
		out.Valid = true
		out.DiscountedAmount = c.ApplyDiscount(amount)
		out.Discount = amount.Sub(out.DiscountedAmount)
	}
	return out, nil
}
