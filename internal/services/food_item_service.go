package services

import (
	"context"
	"errors"
	"strings"

	"ecanteen/internal/models"
	"ecanteen/internal/repositories"
)

type FoodItemService interface {
	List(ctx context.Context, f models.FoodItemFilter) ([]*models.FoodItem, error)
	Get(ctx context.Context, id int64) (*models.FoodItem, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, item *models.FoodItem) error
	Update(ctx context.Context, item *models.FoodItem) error
	Delete(ctx context.Context, id int64) error
}

type foodItemService struct {
	repo repositories.FoodItemRepository
}

func NewFoodItemService(repo repositories.FoodItemRepository) FoodItemService {
	return &foodItemService{repo: repo}
}

func validateFoodItem(it *models.FoodItem) error {
	it.Name = strings.TrimSpace(it.Name)
	it.Description = strings.TrimSpace(it.Description)
	it.Category = strings.TrimSpace(it.Category)
	switch {
	case len([]rune(it.Name)) < 2:
		return invalid("name", "name must be at least 2 characters")
	case len([]rune(it.Description)) < 10:
		return invalid("description", "description must be at least 10 characters")
	case it.Price < 0:
		return invalid("price", "price cannot be negative")
	case it.Category == "":
		return invalid("category", "category is required")
	}
	return nil
}

func notFoundItem(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrFoodItemNotFound
	}
	return persistence(err)
}

func (s *foodItemService) List(ctx context.Context, f models.FoodItemFilter) ([]*models.FoodItem, error) {
	items, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, persistence(err)
	}
	return items, nil
}

func (s *foodItemService) Get(ctx context.Context, id int64) (*models.FoodItem, error) {
	it, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundItem(err)
	}
	return it, nil
}

func (s *foodItemService) Categories(ctx context.Context) ([]string, error) {
	c, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, persistence(err)
	}
	return c, nil
}

func (s *foodItemService) Create(ctx context.Context, it *models.FoodItem) error {
	if err := validateFoodItem(it); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, it); err != nil {
		return persistence(err)
	}
	return nil
}

func (s *foodItemService) Update(ctx context.Context, it *models.FoodItem) error {
	if err := validateFoodItem(it); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, it); err != nil {
		return notFoundItem(err)
	}
	return nil
}

func (s *foodItemService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundItem(err)
	}
	return nil
}
