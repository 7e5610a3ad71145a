package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"trustgate/internal/models"
)

var ErrProductNotFound = errors.New("product not found")

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create inserts the product and its PENDING images in one transaction.
func (r *ProductRepository) Create(ctx context.Context, product models.Product, images []models.ProductImage) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO products (
				id, user_id, shop_id, category_id, name, description, price, status, is_active, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, FALSE, NOW(), NOW()
			)
		`,
			product.ID,
			product.UserID,
			product.ShopID,
			product.CategoryID,
			product.Name,
			product.Description,
			product.Price,
			models.StatusPending,
		)
		if err != nil {
			return fmt.Errorf("insert product: %w", err)
		}

		batch := &pgx.Batch{}
		for _, image := range images {
			batch.Queue(`
				INSERT INTO product_images (id, product_id, user_id, image_path, status, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
			`, image.ID, product.ID, product.UserID, image.ImagePath, models.StatusPending)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert images: %w", err)
		}
		return nil
	})
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (models.Product, error) {
	const query = `
		SELECT id, user_id, shop_id, category_id, name, description, price, status, is_active, created_at, updated_at
		FROM products WHERE id = $1
	`

	var product models.Product
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&product.ID,
		&product.UserID,
		&product.ShopID,
		&product.CategoryID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Status,
		&product.IsActive,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Product{}, ErrProductNotFound
		}
		return models.Product{}, err
	}
	return product, nil
}

// ReconcileProduct recomputes the product status from its images while
// holding the product row lock, so concurrent recomputations for the same
// product apply one after the other. An APPROVED product is activated.
func (r *ProductRepository) ReconcileProduct(ctx context.Context, productID string, fold func([]models.Status) models.Status) (models.Status, error) {
	var next models.Status
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var current models.Status
		err := tx.QueryRow(ctx, `SELECT status FROM products WHERE id = $1 FOR UPDATE`, productID).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrProductNotFound
			}
			return err
		}

		rows, err := tx.Query(ctx, `SELECT status FROM product_images WHERE product_id = $1`, productID)
		if err != nil {
			return err
		}
		statuses, err := pgx.CollectRows(rows, pgx.RowTo[models.Status])
		if err != nil {
			return err
		}

		next = fold(statuses)
		if next == current {
			return nil
		}

		_, err = tx.Exec(ctx, `
			UPDATE products
			SET status = $2, is_active = is_active OR $3, updated_at = NOW()
			WHERE id = $1
		`, productID, next, next == models.StatusApproved)
		return err
	})
	if err != nil {
		return "", err
	}
	return next, nil
}
