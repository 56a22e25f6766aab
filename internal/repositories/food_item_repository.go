package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"ecanteen/internal/models"
)

type FoodItemRepository interface {
	List(ctx context.Context, f models.FoodItemFilter) ([]*models.FoodItem, error)
	GetByID(ctx context.Context, id int64) (*models.FoodItem, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, item *models.FoodItem) error
	Update(ctx context.Context, item *models.FoodItem) error
	Delete(ctx context.Context, id int64) error
}

type foodItemRepository struct {
	DB *sql.DB
}

func NewFoodItemRepository(db *sql.DB) FoodItemRepository {
	return &foodItemRepository{DB: db}
}

const foodItemColumns = `id, name, description, price, category, is_available, image, ingredients, popular, created_at, updated_at`

func scanFoodItem(row rowScanner) (*models.FoodItem, error) {
	it := &models.FoodItem{}
	err := row.Scan(
		&it.ID, &it.Name, &it.Description, &it.Price, &it.Category,
		&it.IsAvailable, &it.Image, pq.Array(&it.Ingredients), &it.Popular,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return it, nil
}

func (r *foodItemRepository) List(ctx context.Context, f models.FoodItemFilter) ([]*models.FoodItem, error) {
	var (
		where []string
		args  []any
	)
	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if f.Available != nil {
		args = append(args, *f.Available)
		where = append(where, fmt.Sprintf("is_available = $%d", len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	q := `SELECT ` + foodItemColumns + ` FROM food_items`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY category, name"

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("food item list: %w", err)
	}
	defer rows.Close()

	var res []*models.FoodItem
	for rows.Next() {
		it, err := scanFoodItem(rows)
		if err != nil {
			return nil, fmt.Errorf("food item list scan: %w", err)
		}
		res = append(res, it)
	}
	return res, rows.Err()
}

func (r *foodItemRepository) GetByID(ctx context.Context, id int64) (*models.FoodItem, error) {
	it, err := scanFoodItem(r.DB.QueryRowContext(ctx, `SELECT `+foodItemColumns+` FROM food_items WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("food item by id: %w", err)
	}
	return it, nil
}

func (r *foodItemRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT DISTINCT category FROM food_items ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("food item categories: %w", err)
	}
	defer rows.Close()

	var res []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (r *foodItemRepository) Create(ctx context.Context, it *models.FoodItem) error {
	const q = `
		INSERT INTO food_items (name, description, price, category, is_available, image, ingredients, popular)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at, updated_at
	`
	err := r.DB.QueryRowContext(ctx, q,
		it.Name, it.Description, it.Price, it.Category,
		it.IsAvailable, it.Image, pq.Array(it.Ingredients), it.Popular,
	).Scan(&it.ID, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("food item create: %w", err)
	}
	return nil
}

func (r *foodItemRepository) Update(ctx context.Context, it *models.FoodItem) error {
	const q = `
		UPDATE food_items SET
			name=$1, description=$2, price=$3, category=$4,
			is_available=$5, image=$6, ingredients=$7, popular=$8, updated_at=NOW()
		WHERE id=$9
		RETURNING updated_at
	`
	err := r.DB.QueryRowContext(ctx, q,
		it.Name, it.Description, it.Price, it.Category,
		it.IsAvailable, it.Image, pq.Array(it.Ingredients), it.Popular, it.ID,
	).Scan(&it.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("food item update: %w", ErrNotFound)
		}
		return fmt.Errorf("food item update: %w", err)
	}
	return nil
}

func (r *foodItemRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM food_items WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("food item delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("food item delete: %w", ErrNotFound)
	}
	return nil
}
