package notify

import (
	"context"
	"sync"
	"time"

	"ecommerce-backend/internal/domain"
	"ecommerce-backend/internal/logging"
	"go.uber.org/zap"
)

type counter interface {
	Notification(outcome string)
}

type nopCounter struct{}

func (nopCounter) Notification(string) {}

// Dispatcher sends ticket confirmations on its own goroutine. TicketIssued
// never blocks: when the queue is full, or the dispatcher has already stopped,
// the notification is dropped and logged.
type Dispatcher struct {
	mu      sync.RWMutex
	stopped bool
	queue   chan domain.Ticket
	mailer  Mailer
	logger  *zap.Logger
	metrics counter
	timeout time.Duration
}

type Option func(*Dispatcher)

func WithMetrics(m counter) Option {
	return func(d *Dispatcher) {
		if m != nil {
			d.metrics = m
		}
	}
}

func WithSendTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

func NewDispatcher(mailer Mailer, queueSize int, logger *zap.Logger, opts ...Option) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	d := &Dispatcher{
		queue:   make(chan domain.Ticket, queueSize),
		mailer:  mailer,
		logger:  logging.OrNop(logger).Named("notify"),
		metrics: nopCounter{},
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) TicketIssued(ctx context.Context, t domain.Ticket) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		d.drop(ctx, t, "notification dispatcher stopped, dropping ticket email")
		return
	}
	select {
	case d.queue <- t:
		d.metrics.Notification("queued")
	default:
		d.drop(ctx, t, "notification queue full, dropping ticket email")
	}
}

func (d *Dispatcher) drop(ctx context.Context, t domain.Ticket, msg string) {
	d.metrics.Notification("dropped")
	logging.FromContext(ctx, d.logger).Warn(msg,
		zap.String("ticket_code", t.Code),
		zap.String("purchaser", t.Purchaser),
	)
}

// Run delivers queued notifications until ctx is cancelled. It then refuses
// new tickets and delivers what is already queued before returning, so ctx
// should outlive every caller of TicketIssued.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("notification dispatcher started", zap.Int("queue_size", cap(d.queue)))
	for {
		select {
		case t := <-d.queue:
			d.deliver(t)
		case <-ctx.Done():
			d.mu.Lock()
			d.stopped = true
			d.mu.Unlock()
			d.drain()
			d.logger.Info("notification dispatcher stopped")
			return nil
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case t := <-d.queue:
			d.deliver(t)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(t domain.Ticket) {
	logger := d.logger.With(zap.String("ticket_code", t.Code), zap.String("purchaser", t.Purchaser))
	msg, err := TicketMessage(t)
	if err != nil {
		d.metrics.Notification("failed")
		logger.Error("render ticket email", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if err := d.mailer.Send(ctx, msg); err != nil {
		d.metrics.Notification("failed")
		logger.Error("send ticket email", zap.Error(err))
		return
	}
	d.metrics.Notification("sent")
	logger.Debug("ticket email sent")
}
