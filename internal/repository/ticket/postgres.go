package ticket

import (
	"context"

	"ecommerce-backend/internal/db"
	"ecommerce-backend/internal/domain"
	"ecommerce-backend/internal/logging"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const ticketColumns = `id::text, code, purchased_at, amount_cents, purchaser, status, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger).Named("ticket_repo")}
}

func (r *postgresRepo) Create(ctx context.Context, t domain.Ticket) (*domain.Ticket, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const q = `
INSERT INTO tickets (code, purchased_at, amount_cents, purchaser, status)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + ticketColumns
	created, err := scanTicket(tx.QueryRow(ctx, q, t.Code, t.PurchasedAt, t.AmountCents, t.Purchaser, string(t.Status)))
	if err != nil {
		return nil, db.MapError(err)
	}

	batch := &pgx.Batch{}
	for i, l := range t.Lines {
		batch.Queue(`
INSERT INTO ticket_lines (ticket_id, position, product_id, title, quantity, unit_price_cents)
VALUES ($1, $2, $3, $4, $5, $6)
`, created.ID, i+1, l.ProductID, l.Title, l.Quantity, l.UnitPriceCents)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			r.logger.Error("insert ticket lines", zap.String("code", t.Code), zap.Error(err))
			return nil, db.MapError(err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	created.Lines = append([]domain.TicketLine{}, t.Lines...)
	r.logger.Info("stored ticket",
		zap.String("code", created.Code),
		zap.Int64("amount_cents", created.AmountCents),
		zap.Int("lines", len(created.Lines)),
	)
	return created, nil
}

func (r *postgresRepo) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	t, err := scanTicket(r.pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE code = $1`, code))
	if err != nil {
		return nil, db.MapError(err)
	}
	if err := r.loadLines(ctx, []*domain.Ticket{t}); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *postgresRepo) ListByPurchaser(ctx context.Context, purchaser string) ([]domain.Ticket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE lower(purchaser) = lower($1) ORDER BY purchased_at DESC, code DESC`, purchaser)
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Ticket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+` FROM tickets ORDER BY purchased_at DESC, code DESC`)
}

func (r *postgresRepo) list(ctx context.Context, q string, args ...any) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ptrs []*domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		ptrs = append(ptrs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, ptrs); err != nil {
		return nil, err
	}
	out := make([]domain.Ticket, 0, len(ptrs))
	for _, t := range ptrs {
		out = append(out, *t)
	}
	return out, nil
}

func (r *postgresRepo) loadLines(ctx context.Context, tickets []*domain.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Ticket, len(tickets))
	ids := make([]string, 0, len(tickets))
	for _, t := range tickets {
		t.Lines = []domain.TicketLine{}
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}

	rows, err := r.pool.Query(ctx, `
SELECT ticket_id::text, product_id::text, title, quantity, unit_price_cents
FROM ticket_lines
WHERE ticket_id = ANY($1::uuid[])
ORDER BY ticket_id, position
`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var ticketID string
		var l domain.TicketLine
		if err := rows.Scan(&ticketID, &l.ProductID, &l.Title, &l.Quantity, &l.UnitPriceCents); err != nil {
			return err
		}
		if t, ok := byID[ticketID]; ok {
			t.Lines = append(t.Lines, l)
		}
	}
	return rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var t domain.Ticket
	var status string
	if err := row.Scan(&t.ID, &t.Code, &t.PurchasedAt, &t.AmountCents, &t.Purchaser, &status, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.Status = domain.TicketStatus(status)
	return &t, nil
}
