package purchase

import (
	"context"
)

// StockLedger reads and conditionally decrements product stock.
type StockLedger interface {
	Stock(ctx context.Context, productID string) (int, error)
	// CommitDecrement removes qty units atomically. It fails with
	// domain.ErrInsufficientStock, returning the stock it observed, when fewer
	// than qty units remain.
	CommitDecrement(ctx context.Context, productID string, qty int) (int, error)
}

type stockStore interface {
	GetStock(ctx context.Context, id string) (int, error)
	DecrementStock(ctx context.Context, id string, qty int) (int, error)
}

type productLedger struct {
	store stockStore
}

// NewLedger adapts a product repository to a StockLedger. The repository's
// DecrementStock must be a single conditional update.
func NewLedger(store stockStore) StockLedger {
	return &productLedger{store: store}
}

func (l *productLedger) Stock(ctx context.Context, productID string) (int, error) {
	return l.store.GetStock(ctx, productID)
}

func (l *productLedger) CommitDecrement(ctx context.Context, productID string, qty int) (int, error) {
	return l.store.DecrementStock(ctx, productID, qty)
}
