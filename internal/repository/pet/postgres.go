package pet

import (
	"context"

	"ecommerce-backend/internal/db"
	"ecommerce-backend/internal/domain"
	"ecommerce-backend/internal/logging"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const petColumns = `id::text, name, species, age, adopted, owner_id::text, adopted_at, created_at, updated_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres returns a Repository backed by the pets table.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger).Named("pet_repo")}
}

func (r *postgresRepo) List(ctx context.Context, adopted *bool) ([]domain.Pet, error) {
	q := `SELECT ` + petColumns + ` FROM pets`
	var args []any
	if adopted != nil {
		q += ` WHERE adopted = $1`
		args = append(args, *adopted)
	}
	q += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error("list pets", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	pets := []domain.Pet{}
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		pets = append(pets, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pets, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Pet, error) {
	return scanPet(r.pool.QueryRow(ctx, `SELECT `+petColumns+` FROM pets WHERE id = $1`, id))
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Pet) (*domain.Pet, error) {
	const q = `
INSERT INTO pets (name, species, age)
VALUES ($1, $2, $3)
RETURNING ` + petColumns
	created, err := scanPet(r.pool.QueryRow(ctx, q, p.Name, p.Species, p.Age))
	if err != nil {
		return nil, err
	}
	r.logger.Info("created pet", zap.String("id", created.ID), zap.String("species", created.Species))
	return created, nil
}

// Adopt locks the pet row so two concurrent adoptions of the same pet cannot
// both succeed.
func (r *postgresRepo) Adopt(ctx context.Context, petID, ownerID string) (*domain.Pet, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var adopted bool
	if err := tx.QueryRow(ctx, `SELECT adopted FROM pets WHERE id = $1 FOR UPDATE`, petID).Scan(&adopted); err != nil {
		return nil, db.MapError(err)
	}
	if adopted {
		return nil, domain.ErrAlreadyAdopted
	}
	const q = `
UPDATE pets
SET adopted = true, owner_id = $2, adopted_at = now(), updated_at = now()
WHERE id = $1
RETURNING ` + petColumns
	p, err := scanPet(tx.QueryRow(ctx, q, petID, ownerID))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Info("adopted pet", zap.String("id", p.ID), zap.String("owner_id", ownerID))
	return p, nil
}

func scanPet(row pgx.Row) (*domain.Pet, error) {
	var p domain.Pet
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Species,
		&p.Age,
		&p.Adopted,
		&p.OwnerID,
		&p.AdoptedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, db.MapError(err)
	}
	return &p, nil
}
