package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ecommerce-backend/internal/db"
	"ecommerce-backend/internal/domain"
	"ecommerce-backend/internal/logging"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const productColumns = `id::text, code, title, description, price_cents, stock, category, thumbnails, status, created_at, updated_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger).Named("product_repo")}
}

func (r *postgresRepo) List(ctx context.Context, category string) ([]domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products`
	var args []any
	if c := strings.TrimSpace(category); c != "" {
		q += ` WHERE lower(category) = lower($1)`
		args = append(args, c)
	}
	q += ` ORDER BY created_at DESC, code ASC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error("list products", zap.String("category", category), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	result := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("list products rows", zap.Error(err))
		return nil, err
	}
	r.logger.Debug("listed products", zap.String("category", category), zap.Int("count", len(result)))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		return nil, db.MapError(err)
	}
	return p, nil
}

func (r *postgresRepo) GetByCode(ctx context.Context, code string) (*domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE code = $1`, code))
	if err != nil {
		return nil, db.MapError(err)
	}
	return p, nil
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	thumbs, err := encodeThumbnails(p.Thumbnails)
	if err != nil {
		return nil, err
	}
	const q = `
INSERT INTO products (code, title, description, price_cents, stock, category, thumbnails, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + productColumns
	created, err := scanProduct(r.pool.QueryRow(ctx, q,
		p.Code, p.Title, p.Description, p.PriceCents, p.Stock, p.Category, thumbs, p.Active,
	))
	if err != nil {
		err = db.MapError(err)
		r.logger.Warn("create product", zap.String("code", p.Code), zap.Error(err))
		return nil, err
	}
	r.logger.Info("created product", zap.String("id", created.ID), zap.String("code", created.Code))
	return created, nil
}

func (r *postgresRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	thumbs, err := encodeThumbnails(p.Thumbnails)
	if err != nil {
		return nil, err
	}
	const q = `
UPDATE products
SET code = $2, title = $3, description = $4, price_cents = $5, stock = $6,
    category = $7, thumbnails = $8, status = $9, updated_at = now()
WHERE id = $1
RETURNING ` + productColumns
	updated, err := scanProduct(r.pool.QueryRow(ctx, q,
		p.ID, p.Code, p.Title, p.Description, p.PriceCents, p.Stock, p.Category, thumbs, p.Active,
	))
	if err != nil {
		return nil, db.MapError(err)
	}
	return updated, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return db.MapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Info("deleted product", zap.String("id", id))
	return nil
}

func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	thumbs, err := encodeThumbnails(p.Thumbnails)
	if err != nil {
		return nil, err
	}
	const q = `
INSERT INTO products (code, title, description, price_cents, stock, category, thumbnails, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (code) DO UPDATE SET
    title = EXCLUDED.title,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    stock = EXCLUDED.stock,
    category = EXCLUDED.category,
    thumbnails = EXCLUDED.thumbnails,
    status = EXCLUDED.status,
    updated_at = now()
RETURNING ` + productColumns
	res, err := scanProduct(r.pool.QueryRow(ctx, q,
		p.Code, p.Title, p.Description, p.PriceCents, p.Stock, p.Category, thumbs, p.Active,
	))
	if err != nil {
		r.logger.Error("upsert product", zap.String("code", p.Code), zap.Error(err))
		return nil, db.MapError(err)
	}
	r.logger.Debug("upserted product", zap.String("code", res.Code), zap.String("id", res.ID))
	return res, nil
}

func (r *postgresRepo) GetStock(ctx context.Context, id string) (int, error) {
	var stock int
	if err := r.pool.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, id).Scan(&stock); err != nil {
		return 0, db.MapError(err)
	}
	return stock, nil
}

func (r *postgresRepo) DecrementStock(ctx context.Context, id string, qty int) (int, error) {
	if qty <= 0 {
		return 0, fmt.Errorf("decrement quantity must be positive, got %d", qty)
	}
	const q = `
UPDATE products
SET stock = stock - $2, updated_at = now()
WHERE id = $1 AND stock >= $2
RETURNING stock
`
	var remaining int
	err := r.pool.QueryRow(ctx, q, id, qty).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}
	if db.IsCheckViolation(err) {
		return r.insufficient(ctx, id)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, db.MapError(err)
	}
	// No row matched: either the product is gone or the guard rejected the update.
	return r.insufficient(ctx, id)
}

func (r *postgresRepo) insufficient(ctx context.Context, id string) (int, error) {
	current, err := r.GetStock(ctx, id)
	if err != nil {
		return 0, err
	}
	return current, domain.ErrInsufficientStock
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var thumbs []byte
	if err := row.Scan(
		&p.ID,
		&p.Code,
		&p.Title,
		&p.Description,
		&p.PriceCents,
		&p.Stock,
		&p.Category,
		&thumbs,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(thumbs) > 0 {
		if err := json.Unmarshal(thumbs, &p.Thumbnails); err != nil {
			return nil, fmt.Errorf("decode thumbnails for %s: %w", p.ID, err)
		}
	}
	return &p, nil
}

func encodeThumbnails(thumbs []string) ([]byte, error) {
	if thumbs == nil {
		thumbs = []string{}
	}
	return json.Marshal(thumbs)
}
