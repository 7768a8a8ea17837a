package purchase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ecommerce-backend/internal/domain"
	"ecommerce-backend/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	tracerName       = "ecommerce-backend/purchase"
	spanName         = "purchase.process"
	maxCodeAttempts  = 5
	reasonNoProduct  = "product not found"
	reasonNoStock    = "insufficient stock"
	msgCompleted     = "purchase completed successfully"
	msgPartial       = "purchase partially completed; some products could not be processed"
	msgNothingBought = "no product could be processed; check available stock"
)

type cartStore interface {
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	ReplaceLines(ctx context.Context, cartID string, lines []domain.CartLine) (*domain.Cart, error)
}

type ticketStore interface {
	Create(ctx context.Context, t domain.Ticket) (*domain.Ticket, error)
	GetByCode(ctx context.Context, code string) (*domain.Ticket, error)
	ListByPurchaser(ctx context.Context, purchaser string) ([]domain.Ticket, error)
	List(ctx context.Context) ([]domain.Ticket, error)
}

// Notifier receives issued tickets. Implementations must not block the caller.
type Notifier interface {
	TicketIssued(ctx context.Context, t domain.Ticket)
}

type recorder interface {
	PurchaseOutcome(outcome string, seconds float64)
	PurchaseLine(result, reason string)
}

// Deps are the collaborators of the purchase Service. Notifier and Metrics are optional.
type Deps struct {
	Carts    cartStore
	Ledger   StockLedger
	Tickets  ticketStore
	Notifier Notifier
	Metrics  recorder
	Logger   *zap.Logger
	Tracer   trace.Tracer
}

// Service runs purchases against carts and the stock ledger and records tickets.
type Service struct {
	carts    cartStore
	ledger   StockLedger
	tickets  ticketStore
	notifier Notifier
	metrics  recorder
	logger   *zap.Logger
	tracer   trace.Tracer
	now      func() time.Time
	newCode  func(time.Time) (string, error)
}

// New builds a Service. Notifier, Metrics and Tracer are optional.
func New(d Deps) *Service {
	s := &Service{
		carts:    d.Carts,
		ledger:   d.Ledger,
		tickets:  d.Tickets,
		notifier: d.Notifier,
		metrics:  d.Metrics,
		logger:   logging.OrNop(d.Logger).Named("purchase"),
		tracer:   d.Tracer,
		now:      time.Now,
		newCode:  NewTicketCode,
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	if s.metrics == nil {
		s.metrics = nopRecorder{}
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	return s
}

// ProcessPurchase commits every line of the cart it can, records a ticket for
// the committed lines and leaves only the failed lines in the cart. Lines are
// handled one at a time in cart order and a failing line never stops the rest.
//
// A missing or empty cart and a ticket that cannot be stored are returned as
// *PurchaseError. A purchase in which nothing commits is not an error: the
// result has Success false and lists every line as failed.
func (s *Service) ProcessPurchase(ctx context.Context, cartID, purchaser string) (_ *domain.PurchaseResult, err error) {
	ctx, span := s.tracer.Start(ctx, spanName, trace.WithAttributes(
		attribute.String("cart.id", cartID),
		attribute.String("purchaser", purchaser),
	))
	start := s.now()
	outcome := "error"
	logger := logging.FromContext(ctx, s.logger).With(zap.String("cart_id", cartID), zap.String("purchaser", purchaser))

	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, outcome)
		}
		span.SetAttributes(attribute.String("purchase.outcome", outcome))
		span.End()
		s.metrics.PurchaseOutcome(outcome, s.now().Sub(start).Seconds())
	}()

	cart, err := s.carts.GetByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			outcome = "rejected"
			return nil, errCartNotFound(err)
		}
		logger.Error("load cart", zap.Error(err))
		return nil, errProcessing(fmt.Errorf("load cart: %w", err))
	}
	if len(cart.Lines) == 0 {
		outcome = "rejected"
		return nil, errCartEmpty()
	}

	var (
		committed []domain.TicketLine
		failed    []domain.FailedLine
		residual  []domain.CartLine
		total     int64
	)
	for _, line := range cart.Lines {
		tl, fl := s.commitLine(ctx, span, line)
		if fl != nil {
			failed = append(failed, *fl)
			residual = append(residual, line)
			s.metrics.PurchaseLine("failed", metricReason(fl.Reason))
			continue
		}
		committed = append(committed, *tl)
		total += tl.SubtotalCents()
		s.metrics.PurchaseLine("committed", "")
	}

	if failed == nil {
		failed = []domain.FailedLine{}
	}
	if len(committed) == 0 {
		outcome = "failed"
		logger.Info("purchase committed nothing", zap.Int("failed_lines", len(failed)))
		return &domain.PurchaseResult{
			Success:        false,
			Message:        msgNothingBought,
			FailedProducts: failed,
		}, nil
	}

	status := domain.TicketCompleted
	if len(failed) > 0 {
		status = domain.TicketPending
	}
	ticket, err := s.storeTicket(ctx, domain.Ticket{
		PurchasedAt: s.now().UTC(),
		AmountCents: total,
		Purchaser:   purchaser,
		Status:      status,
		Lines:       committed,
	})
	if err != nil {
		logger.Error("store ticket after committing stock",
			zap.Int("committed_lines", len(committed)),
			zap.Int64("amount_cents", total),
			zap.Error(err),
		)
		return nil, errProcessing(err)
	}
	span.SetAttributes(attribute.String("ticket.code", ticket.Code))

	if _, err := RewriteCart(ctx, s.carts, cartID, residual); err != nil {
		logger.Error("rewrite cart after purchase",
			zap.String("ticket_code", ticket.Code),
			zap.Int("residual_lines", len(residual)),
			zap.Error(err),
		)
	}

	s.notifier.TicketIssued(ctx, *ticket)

	msg := msgCompleted
	outcome = "completed"
	if len(failed) > 0 {
		msg = msgPartial
		outcome = "partial"
	}
	logger.Info("purchase processed",
		zap.String("ticket_code", ticket.Code),
		zap.String("status", string(ticket.Status)),
		zap.Int("committed_lines", len(committed)),
		zap.Int("failed_lines", len(failed)),
		zap.Int64("amount_cents", total),
	)
	return &domain.PurchaseResult{
		Success:          true,
		Message:          msg,
		Ticket:           ticket,
		FailedProducts:   failed,
		TotalAmountCents: total,
	}, nil
}

// commitLine returns exactly one of a committed ticket line or a failed line.
func (s *Service) commitLine(ctx context.Context, span trace.Span, line domain.CartLine) (*domain.TicketLine, *domain.FailedLine) {
	fail := func(reason string, available *int) (*domain.TicketLine, *domain.FailedLine) {
		fl := &domain.FailedLine{
			ProductID:         line.ProductID,
			RequestedQuantity: line.Quantity,
			AvailableStock:    available,
			Reason:            reason,
		}
		if line.Product != nil {
			fl.Title = line.Product.Title
		}
		span.AddEvent("line.failed", trace.WithAttributes(
			attribute.String("product.id", line.ProductID),
			attribute.Int("quantity", line.Quantity),
			attribute.String("reason", reason),
		))
		return nil, fl
	}

	if line.Product == nil {
		return fail(reasonNoProduct, nil)
	}

	stock, err := s.ledger.Stock(ctx, line.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fail(reasonNoProduct, nil)
		}
		return fail(processingReason(err), nil)
	}
	if stock < line.Quantity {
		return fail(reasonNoStock, intPtr(stock))
	}

	if remaining, err := s.ledger.CommitDecrement(ctx, line.ProductID, line.Quantity); err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientStock):
			// Another purchase took the stock between the read and the decrement.
			return fail(reasonNoStock, intPtr(remaining))
		case errors.Is(err, domain.ErrNotFound):
			return fail(reasonNoProduct, nil)
		default:
			return fail(processingReason(err), nil)
		}
	}

	span.AddEvent("line.committed", trace.WithAttributes(
		attribute.String("product.id", line.ProductID),
		attribute.Int("quantity", line.Quantity),
	))
	return &domain.TicketLine{
		ProductID:      line.ProductID,
		Title:          line.Product.Title,
		Quantity:       line.Quantity,
		UnitPriceCents: line.Product.PriceCents,
	}, nil
}

func (s *Service) storeTicket(ctx context.Context, t domain.Ticket) (*domain.Ticket, error) {
	var lastErr error
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := s.newCode(t.PurchasedAt)
		if err != nil {
			return nil, err
		}
		t.Code = code
		created, err := s.tickets.Create(ctx, t)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("create ticket: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("create ticket: no free code after %d attempts: %w", maxCodeAttempts, lastErr)
}

// TicketByCode returns the ticket when the requester bought it or is an admin.
func (s *Service) TicketByCode(ctx context.Context, code string, requester domain.User) (*domain.Ticket, error) {
	t, err := s.tickets.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !requester.IsAdmin() && !sameEmail(t.Purchaser, requester.Email) {
		return nil, domain.ErrForbidden
	}
	return t, nil
}

// TicketsByPurchaser lists the tickets recorded for purchaser, newest first.
func (s *Service) TicketsByPurchaser(ctx context.Context, purchaser string) ([]domain.Ticket, error) {
	return s.tickets.ListByPurchaser(ctx, purchaser)
}

// AllTickets lists every ticket, newest first.
func (s *Service) AllTickets(ctx context.Context) ([]domain.Ticket, error) {
	return s.tickets.List(ctx)
}

func processingReason(err error) string {
	return "processing error: " + err.Error()
}

func metricReason(reason string) string {
	switch reason {
	case reasonNoStock:
		return "insufficient_stock"
	case reasonNoProduct:
		return "product_not_found"
	default:
		return "error"
	}
}

func intPtr(v int) *int { return &v }

func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

type nopNotifier struct{}

func (nopNotifier) TicketIssued(context.Context, domain.Ticket) {}

type nopRecorder struct{}

func (nopRecorder) PurchaseOutcome(string, float64) {}
func (nopRecorder) PurchaseLine(string, string)     {}
