package usecase_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"
	"restaurant/internal/usecase"
)

func coupon(code string) model.Coupon {
	return model.Coupon{
		ID:             1,
		Code:           code,
		DiscountAmount: dec("20"),
		IsActive:       true,
		StartDate:      time.Now().Add(-time.Hour),
		EndDate:        time.Now().Add(time.Hour),
	}
}

func TestCouponUsecase_Validate(t *testing.T) {
	limit := int64(2)

	cases := []struct {
		name       string
		coupon     func() model.Coupon
		amount     string
		valid      bool
		reason     string
		discounted string
	}{
		{name: "flat", coupon: func() model.Coupon { return coupon("FLAT") }, amount: "120", valid: true, discounted: "100"},
		{name: "percentage wins", coupon: func() model.Coupon {
			c := coupon("PCT")
			c.DiscountPercentage = decPtr("10")
			return c
		}, amount: "120", valid: true, discounted: "108"},
		{name: "inactive", coupon: func() model.Coupon {
			c := coupon("OFF")
			c.IsActive = false
			return c
		}, amount: "120", reason: "coupon is inactive", discounted: "120"},
		{name: "not started", coupon: func() model.Coupon {
			c := coupon("SOON")
			c.StartDate = time.Now().Add(time.Hour)
			c.EndDate = time.Now().Add(2 * time.Hour)
			return c
		}, amount: "120", reason: "coupon is not yet valid", discounted: "120"},
		{name: "expired", coupon: func() model.Coupon {
			c := coupon("OLD")
			c.EndDate = time.Now().Add(-time.Minute)
			return c
		}, amount: "120", reason: "coupon has expired", discounted: "120"},
		{name: "usage limit", coupon: func() model.Coupon {
			c := coupon("USED")
			c.UsageLimit = &limit
			c.UsageCount = 2
			return c
		}, amount: "120", reason: "coupon usage limit reached", discounted: "120"},
		{name: "below minimum", coupon: func() model.Coupon {
			c := coupon("MIN")
			c.MinPurchaseAmount = decPtr("150")
			return c
		}, amount: "120", reason: "amount is below the coupon minimum", discounted: "120"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			coupons := new(CouponRepoMock)
			c := tc.coupon()
			coupons.On("FindByCode", mock.Anything, c.Code).Return(c, nil)

			out, err := usecase.NewCouponUsecase(coupons).Validate(context.Background(), c.Code, dec(tc.amount))
			require.NoError(t, err)
			assert.Equal(t, tc.valid, out.Valid)
			assert.Equal(t, tc.reason, out.Reason)
			requireMoney(t, tc.discounted, out.DiscountedAmount)

			// 検証だけなので利用回数は増えない
			coupons.AssertNotCalled(t, "IncrementUsage", mock.Anything, mock.Anything)
		})
	}
}

func TestCouponUsecase_Validate_UnknownCode(t *testing.T) {
	coupons := new(CouponRepoMock)
	coupons.On("FindByCode", mock.Anything, "NOPE").Return(model.Coupon{}, repo.ErrNotFound)

	_, err := usecase.NewCouponUsecase(coupons).Validate(context.Background(), "NOPE", dec("10"))
	requireKind(t, err, usecase.ErrNotFound, http.StatusNotFound)
}

func TestCouponUsecase_CreateCoupon_Validation(t *testing.T) {
	coupons := new(CouponRepoMock)
	uc := usecase.NewCouponUsecase(coupons)
	now := time.Now()

	_, err := uc.CreateCoupon(context.Background(), usecase.CouponInput{Code: "", StartDate: now, EndDate: now.Add(time.Hour)})
	requireHTTPStatus(t, err, http.StatusBadRequest)

	coupons.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCouponUsecase_CreateCoupon(t *testing.T) {
	coupons := new(CouponRepoMock)
	uc := usecase.NewCouponUsecase(coupons)
	now := time.Now()
	in := usecase.CouponInput{Code: " WELCOME ", DiscountAmount: dec("15"), StartDate: now, EndDate: now.Add(24 * time.Hour)}

	coupons.On("FindByCode", mock.Anything, "WELCOME").Return(model.Coupon{}, repo.ErrNotFound).Once()
	coupons.On("Create", mock.Anything, mock.MatchedBy(func(c *model.Coupon) bool {
		return c.Code == "WELCOME" && c.IsActive && c.UsageCount == 0
	})).Return(nil)

	c, err := uc.CreateCoupon(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "WELCOME", c.Code)

	// 同じコードは409
	coupons.On("FindByCode", mock.Anything, "WELCOME").Return(c, nil).Once()
	_, err = uc.CreateCoupon(context.Background(), in)
	requireHTTPStatus(t, err, http.StatusConflict)

	coupons.AssertExpectations(t)
}
