package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	repo "restaurant/internal/repository"
	"restaurant/internal/usecase"
)

func TestBillUsecase_CreateBill(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createDiningOrder(t, usecase.OrderLineInput{DishID: f.biryani.ID, Quantity: 2})
	bills := usecase.NewBillUsecase(f.tx, f.events, nil)

	b, err := bills.CreateBill(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, b.OrderID)
	assert.Equal(t, o.UserID, b.UserID)
	requireMoney(t, "100", b.TotalAmount)
	assert.True(t, b.Paid)
	assert.Contains(t, f.events.types(), "BillCreated")

	got, err := f.orders().GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, got.BillGenerated)
	assert.True(t, got.Paid)

	list, err := bills.ListBills(ctx, repo.BillListFilter{Page: 1, Limit: 10, OrderStatus: "pending"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)

	require.NoError(t, bills.DeleteBill(ctx, b.ID))
	_, err = bills.GetBill(ctx, b.ID)
	requireKind(t, err, usecase.ErrNotFound, http.StatusNotFound)
}

func TestBillUsecase_CreateBill_MissingOrder(t *testing.T) {
	f := newFixture(t)

	_, err := usecase.NewBillUsecase(f.tx, f.events, nil).CreateBill(context.Background(), 9999)
	requireKind(t, err, usecase.ErrNotFound, http.StatusNotFound)
	assert.Empty(t, f.events.types())
}
