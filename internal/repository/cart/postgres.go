package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ecommerce-backend/internal/db"
	"ecommerce-backend/internal/domain"
	"ecommerce-backend/internal/logging"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger).Named("cart_repo")}
}

func (r *postgresRepo) Create(ctx context.Context, ownerID *string) (*domain.Cart, error) {
	const q = `
INSERT INTO carts (owner_id, total_cents)
VALUES ($1, 0)
RETURNING id::text, owner_id::text, total_cents, created_at, updated_at
`
	var c domain.Cart
	if err := r.pool.QueryRow(ctx, q, ownerID).Scan(&c.ID, &c.OwnerID, &c.TotalCents, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, db.MapError(err)
	}
	c.Lines = []domain.CartLine{}
	return &c, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	return r.fetchCart(ctx, r.pool, id)
}

func (r *postgresRepo) AddLineItem(ctx context.Context, cartID, productID string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	return r.inTx(ctx, cartID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
INSERT INTO cart_lines (cart_id, product_id, quantity, position)
VALUES ($1, $2, $3, (SELECT COALESCE(MAX(position), 0) + 1 FROM cart_lines WHERE cart_id = $1))
ON CONFLICT (cart_id, product_id) DO UPDATE
SET quantity = cart_lines.quantity + EXCLUDED.quantity
`, cartID, productID, quantity)
		return err
	})
}

func (r *postgresRepo) RemoveLineItem(ctx context.Context, cartID, productID string) (*domain.Cart, error) {
	return r.inTx(ctx, cartID, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1 AND product_id = $2`, cartID, productID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *postgresRepo) ReplaceLines(ctx context.Context, cartID string, lines []domain.CartLine) (*domain.Cart, error) {
	return r.inTx(ctx, cartID, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cartID); err != nil {
			return err
		}
		for i, l := range lines {
			if l.Quantity <= 0 {
				return fmt.Errorf("line %s: quantity must be positive, got %d", l.ProductID, l.Quantity)
			}
			var addedAt *time.Time
			if !l.AddedAt.IsZero() {
				addedAt = &l.AddedAt
			}
			if _, err := tx.Exec(ctx, `
INSERT INTO cart_lines (cart_id, product_id, quantity, position, added_at)
VALUES ($1, $2, $3, $4, COALESCE($5, now()))
`, cartID, l.ProductID, l.Quantity, i+1, addedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *postgresRepo) AssignOwner(ctx context.Context, cartID, ownerID string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE carts SET owner_id = $2, updated_at = now() WHERE id = $1`, cartID, ownerID)
	if err != nil {
		return db.MapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE id = $1`, id)
	if err != nil {
		return db.MapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Info("deleted cart", zap.String("id", id))
	return nil
}

// inTx locks the cart row, applies fn, refreshes the cached total and returns
// the cart as committed.
func (r *postgresRepo) inTx(ctx context.Context, cartID string, fn func(tx pgx.Tx) error) (*domain.Cart, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var locked string
	if err := tx.QueryRow(ctx, `SELECT id::text FROM carts WHERE id = $1 FOR UPDATE`, cartID).Scan(&locked); err != nil {
		return nil, db.MapError(err)
	}
	if err := fn(tx); err != nil {
		return nil, db.MapError(err)
	}
	if err := updateCartTotal(ctx, tx, cartID); err != nil {
		return nil, err
	}
	cart, err := r.fetchCart(ctx, tx, cartID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return cart, nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *postgresRepo) fetchCart(ctx context.Context, q querier, id string) (*domain.Cart, error) {
	var cart domain.Cart
	err := q.QueryRow(ctx, `
SELECT id::text, owner_id::text, total_cents, created_at, updated_at
FROM carts
WHERE id = $1
`, id).Scan(&cart.ID, &cart.OwnerID, &cart.TotalCents, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		return nil, db.MapError(err)
	}

	rows, err := q.Query(ctx, `
SELECT cl.product_id::text, cl.quantity, cl.added_at,
       p.id::text, p.code, p.title, p.description, p.price_cents, p.stock, p.category, p.thumbnails, p.status,
       p.created_at, p.updated_at
FROM cart_lines cl
LEFT JOIN products p ON p.id = cl.product_id
WHERE cl.cart_id = $1
ORDER BY cl.position ASC
`, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cart.Lines = []domain.CartLine{}
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		cart.Lines = append(cart.Lines, line)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("read cart lines", zap.String("cart_id", id), zap.Error(err))
		return nil, err
	}
	cart.TotalCents = domain.CartTotalCents(cart.Lines)
	return &cart, nil
}

func scanLine(rows pgx.Rows) (domain.CartLine, error) {
	var (
		line                   domain.CartLine
		pid, code, title, desc *string
		category               *string
		price                  *int64
		stock                  *int
		thumbs                 []byte
		status                 *bool
		createdAt, updatedAt   *time.Time
	)
	if err := rows.Scan(
		&line.ProductID, &line.Quantity, &line.AddedAt,
		&pid, &code, &title, &desc, &price, &stock, &category, &thumbs, &status,
		&createdAt, &updatedAt,
	); err != nil {
		return line, err
	}
	if pid == nil {
		return line, nil
	}
	p := &domain.Product{
		ID:          *pid,
		Code:        deref(code),
		Title:       deref(title),
		Description: deref(desc),
		Category:    deref(category),
	}
	if price != nil {
		p.PriceCents = *price
	}
	if stock != nil {
		p.Stock = *stock
	}
	if status != nil {
		p.Active = *status
	}
	if createdAt != nil {
		p.CreatedAt = *createdAt
	}
	if updatedAt != nil {
		p.UpdatedAt = *updatedAt
	}
	if len(thumbs) > 0 {
		if err := json.Unmarshal(thumbs, &p.Thumbnails); err != nil {
			return line, fmt.Errorf("decode thumbnails for %s: %w", p.ID, err)
		}
	}
	line.Product = p
	return line, nil
}

func updateCartTotal(ctx context.Context, tx pgx.Tx, cartID string) error {
	_, err := tx.Exec(ctx, `
UPDATE carts
SET total_cents = COALESCE((
	SELECT SUM(cl.quantity * p.price_cents)
	FROM cart_lines cl
	JOIN products p ON p.id = cl.product_id
	WHERE cl.cart_id = $1
), 0),
    updated_at = now()
WHERE id = $1
`, cartID)
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
