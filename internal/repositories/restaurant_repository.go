package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ecanteen/internal/models"
)

type RestaurantRepository interface {
	// Get returns ErrNotFound until the row has been created.
	Get(ctx context.Context) (*models.Restaurant, error)
	Create(ctx context.Context, r *models.Restaurant) error
	Update(ctx context.Context, r *models.Restaurant) error
}

type restaurantRepository struct {
	DB *sql.DB
}

func NewRestaurantRepository(db *sql.DB) RestaurantRepository {
	return &restaurantRepository{DB: db}
}

func (r *restaurantRepository) Get(ctx context.Context) (*models.Restaurant, error) {
	const q = `
		SELECT id, name, phone, email, address, opening_hours, description, logo,
		       facebook, instagram, twitter, updated_at
		FROM restaurant
		ORDER BY id
		LIMIT 1
	`
	var res models.Restaurant
	err := r.DB.QueryRowContext(ctx, q).Scan(
		&res.ID, &res.Name, &res.Phone, &res.Email, &res.Address, &res.OpeningHours,
		&res.Description, &res.Logo,
		&res.SocialMedia.Facebook, &res.SocialMedia.Instagram, &res.SocialMedia.Twitter,
		&res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("restaurant get: %w", err)
	}
	return &res, nil
}

func (r *restaurantRepository) Create(ctx context.Context, res *models.Restaurant) error {
	const q = `
		INSERT INTO restaurant (name, phone, email, address, opening_hours, description, logo, facebook, instagram, twitter)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, updated_at
	`
	err := r.DB.QueryRowContext(ctx, q,
		res.Name, res.Phone, res.Email, res.Address, res.OpeningHours, res.Description, res.Logo,
		res.SocialMedia.Facebook, res.SocialMedia.Instagram, res.SocialMedia.Twitter,
	).Scan(&res.ID, &res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("restaurant create: %w", err)
	}
	return nil
}

func (r *restaurantRepository) Update(ctx context.Context, res *models.Restaurant) error {
	const q = `
		UPDATE restaurant SET
			name=$1, phone=$2, email=$3, address=$4, opening_hours=$5, description=$6, logo=$7,
			facebook=$8, instagram=$9, twitter=$10, updated_at=NOW()
		WHERE id=$11
		RETURNING updated_at
	`
	err := r.DB.QueryRowContext(ctx, q,
		res.Name, res.Phone, res.Email, res.Address, res.OpeningHours, res.Description, res.Logo,
		res.SocialMedia.Facebook, res.SocialMedia.Instagram, res.SocialMedia.Twitter, res.ID,
	).Scan(&res.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("restaurant update: %w", err)
	}
	return nil
}
