package repository

import (
	"context"
	"errors"

	"restaurant/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一覧検索
type DishListQuery struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
}

// 料理の保存・取得
type DishRepository interface {
	List(ctx context.Context, q DishListQuery) ([]model.Dish, int64, error)
	FindByID(ctx context.Context, id int64) (model.Dish, error)
	//まとめて取得（見つからないIDはmapに入らない）
	FindByIDs(ctx context.Context, ids []int64) (map[int64]model.Dish, error)

	Create(ctx context.Context, d model.Dish) (model.Dish, error)
	Update(ctx context.Context, d model.Dish) error
	Delete(ctx context.Context, id int64) error
}

type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, id int64) (model.Category, error)
	Create(ctx context.Context, c model.Category) (model.Category, error)
	Update(ctx context.Context, c model.Category) error
	Delete(ctx context.Context, id int64) error
}
