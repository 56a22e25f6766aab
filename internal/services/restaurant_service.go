package services

import (
	"context"
	"errors"
	"strings"

	"ecanteen/internal/models"
	"ecanteen/internal/repositories"
)

type RestaurantService interface {
	// Get returns the restaurant row, creating the default one on first use.
	Get(ctx context.Context) (*models.Restaurant, error)
	Update(ctx context.Context, r *models.Restaurant) (*models.Restaurant, error)
}

type restaurantService struct {
	repo repositories.RestaurantRepository
}

func NewRestaurantService(repo repositories.RestaurantRepository) RestaurantService {
	return &restaurantService{repo: repo}
}

func (s *restaurantService) Get(ctx context.Context) (*models.Restaurant, error) {
	r, err := s.repo.Get(ctx)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, persistence(err)
	}
	r = models.DefaultRestaurant()
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, persistence(err)
	}
	return r, nil
}

func (s *restaurantService) Update(ctx context.Context, in *models.Restaurant) (*models.Restaurant, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalid("name", "restaurant name is required")
	}
	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	in.ID = current.ID
	if err := s.repo.Update(ctx, in); err != nil {
		return nil, persistence(err)
	}
	return in, nil
}
