package user

import (
	"context"
	"strings"

	"ecommerce-backend/internal/db"
	"ecommerce-backend/internal/domain"
	"ecommerce-backend/internal/logging"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const userColumns = `id::text, email, password_hash, first_name, last_name, age, role, cart_id::text, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger).Named("user_repo")}
}

func (r *postgresRepo) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	role := u.Role
	if role == "" {
		role = domain.RoleUser
	}
	var cartID *string
	if u.CartID != "" {
		cartID = &u.CartID
	}
	const q = `
INSERT INTO users (email, password_hash, first_name, last_name, age, role, cart_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + userColumns
	created, err := r.scanUser(r.pool.QueryRow(ctx, q,
		strings.ToLower(u.Email), u.PasswordHash, u.FirstName, u.LastName, u.Age, role, cartID,
	))
	if err != nil {
		return nil, err
	}
	r.logger.Info("created user", zap.String("id", created.ID), zap.String("role", created.Role))
	return created, nil
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = lower($1) LIMIT 1`, email))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 LIMIT 1`, id))
}

func (r *postgresRepo) SetCart(ctx context.Context, userID, cartID string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE users SET cart_id = $2 WHERE id = $1`, userID, cartID)
	if err != nil {
		return db.MapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, db.MapError(err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err)
	}
	return users, nil
}

func (r *postgresRepo) Update(ctx context.Context, u domain.User) (*domain.User, error) {
	const q = `
UPDATE users
SET first_name = $2, last_name = $3, age = $4, role = $5
WHERE id = $1
RETURNING ` + userColumns
	updated, err := r.scanUser(r.pool.QueryRow(ctx, q, u.ID, u.FirstName, u.LastName, u.Age, u.Role))
	if err != nil {
		return nil, err
	}
	r.logger.Info("updated user", zap.String("id", updated.ID), zap.String("role", updated.Role))
	return updated, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) (*domain.User, error) {
	deleted, err := r.scanUser(r.pool.QueryRow(ctx, `DELETE FROM users WHERE id = $1 RETURNING `+userColumns, id))
	if err != nil {
		return nil, err
	}
	r.logger.Info("deleted user", zap.String("id", id))
	return deleted, nil
}

func (r *postgresRepo) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var cartID *string
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.Age,
		&u.Role,
		&cartID,
		&u.CreatedAt,
	)
	if err != nil {
		mapped := db.MapError(err)
		if mapped == err {
			r.logger.Error("scan user", zap.Error(err))
		}
		return nil, mapped
	}
	if cartID != nil {
		u.CartID = *cartID
	}
	return &u, nil
}
