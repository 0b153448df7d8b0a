package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"
)

type DishUsecase struct {
	dishRepo     repo.DishRepository
	categoryRepo repo.CategoryRepository
}

// DI
func NewDishUsecase(dishRepo repo.DishRepository, categoryRepo repo.CategoryRepository) *DishUsecase {
	return &DishUsecase{dishRepo: dishRepo, categoryRepo: categoryRepo}
}

// GET /dishesの入力DTO
type ListDishesInput struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
}

type DishListOutput struct {
	Items []model.Dish `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

func (u *DishUsecase) ListDishes(ctx context.Context, in ListDishesInput) (DishListOutput, error) {
	if in.Page < 1 {
		return DishListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return DishListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return DishListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}

	items, total, err := u.dishRepo.List(ctx, repo.DishListQuery{
		Page:       in.Page,
		Limit:      in.Limit,
		Q:          strings.TrimSpace(in.Q),
		CategoryID: in.CategoryID,
	})
	if err != nil {
		return DishListOutput{}, dbError()
	}

	return DishListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *DishUsecase) GetDish(ctx context.Context, dishID int64) (model.Dish, error) {
	if dishID <= 0 {
		return model.Dish{}, NewHTTPError(http.StatusBadRequest, "invalid dish id")
	}

	d, err := u.dishRepo.FindByID(ctx, dishID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Dish{}, notFound("dish")
	}
	if err != nil {
		return model.Dish{}, dbError()
	}
	return d, nil
}

type DishInput struct {
	Name        string
	Description string
	Image       string
	Price       decimal.Decimal
	CategoryID  int64
}

func (u *DishUsecase) validateDish(ctx context.Context, in DishInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Price.IsNegative() {
		return NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.CategoryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "category_id required")
	}
	if _, err := u.categoryRepo.FindByID(ctx, in.CategoryID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("category")
		}
		return dbError()
	}
	return nil
}

func (u *DishUsecase) CreateDish(ctx context.Context, in DishInput) (model.Dish, error) {
	if err := u.validateDish(ctx, in); err != nil {
		return model.Dish{}, err
	}

	d, err := u.dishRepo.Create(ctx, model.Dish{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Image:       in.Image,
		Price:       in.Price.Round(2),
		CategoryID:  in.CategoryID,
	})
	if err != nil {
		return model.Dish{}, dbError()
	}
	return d, nil
}

func (u *DishUsecase) UpdateDish(ctx context.Context, dishID int64, in DishInput) error {
	if dishID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid dish id")
	}
	if err := u.validateDish(ctx, in); err != nil {
		return err
	}

	err := u.dishRepo.Update(ctx, model.Dish{
		ID:          dishID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Image:       in.Image,
		Price:       in.Price.Round(2),
		CategoryID:  in.CategoryID,
	})
	if errors.Is(err, repo.ErrNotFound) {
		return notFound("dish")
	}
	if err != nil {
		return dbError()
	}
	return nil
}

func (u *DishUsecase) DeleteDish(ctx context.Context, dishID int64) error {
	if dishID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid dish id")
	}
	err := u.dishRepo.Delete(ctx, dishID)
	if errors.Is(err, repo.ErrNotFound) {
		return notFound("dish")
	}
	if err != nil {
		return dbError()
	}
	return nil
}

func (u *DishUsecase) ListCategories(ctx context.Context) ([]model.Category, error) {
	cs, err := u.categoryRepo.List(ctx)
	if err != nil {
		return nil, dbError()
	}
	return cs, nil
}

func (u *DishUsecase) GetCategory(ctx context.Context, id int64) (model.Category, error) {
	if id <= 0 {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "invalid category id")
	}
	c, err := u.categoryRepo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Category{}, notFound("category")
	}
	if err != nil {
		return model.Category{}, dbError()
	}
	return c, nil
}

func (u *DishUsecase) CreateCategory(ctx context.Context, name string) (model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	c, err := u.categoryRepo.Create(ctx, model.Category{Name: name})
	if err != nil {
		return model.Category{}, dbError()
	}
	return c, nil
}

func (u *DishUsecase) UpdateCategory(ctx context.Context, id int64, name string) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid category id")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	err := u.categoryRepo.Update(ctx, model.Category{ID: id, Name: name})
	if errors.Is(err, repo.ErrNotFound) {
		return notFound("category")
	}
	if err != nil {
		return dbError()
	}
	return nil
}

func (u *DishUsecase) DeleteCategory(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid category id")
	}
	err := u.categoryRepo.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return notFound("category")
	}
	if err != nil {
		return dbError()
	}
	return nil
}
