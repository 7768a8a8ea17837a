package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"sync"
	"testing"
	"time"

	"ecommerce-backend/internal/config"
	"ecommerce-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTicket() domain.Ticket {
	return domain.Ticket{
		Code:        "TICKET-1700000000000-ABC123",
		PurchasedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		AmountCents: 4550,
		Purchaser:   "buyer@example.com",
		Status:      domain.TicketPending,
		Lines: []domain.TicketLine{
			{ProductID: "p1", Title: "Mug <large>", Quantity: 2, UnitPriceCents: 1250},
			{ProductID: "p2", Title: "Poster", Quantity: 1, UnitPriceCents: 2050},
		},
	}
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "$0.00", FormatCents(0))
	assert.Equal(t, "$0.05", FormatCents(5))
	assert.Equal(t, "$12.50", FormatCents(1250))
	assert.Equal(t, "-$1.99", FormatCents(-199))
}

func TestTicketMessage(t *testing.T) {
	msg, err := TicketMessage(sampleTicket())
	require.NoError(t, err)

	assert.Equal(t, "buyer@example.com", msg.To)
	assert.Contains(t, msg.Subject, "TICKET-1700000000000-ABC123")
	assert.Contains(t, msg.HTML, "$45.50")
	assert.Contains(t, msg.HTML, "$25.00")
	assert.Contains(t, msg.HTML, "Mug &lt;large&gt;")
	assert.Contains(t, msg.HTML, "still in your cart")
	assert.Contains(t, msg.Text, "Poster x1 @ $20.50 = $20.50")
}

func TestTicketMessageCompletedHasNoResidualNote(t *testing.T) {
	tk := sampleTicket()
	tk.Status = domain.TicketCompleted
	msg, err := TicketMessage(tk)
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "still in your cart")
}

func TestNewMailerSelectsImplementation(t *testing.T) {
	_, isLog := NewMailer(config.MailConfig{}, nil).(*LogMailer)
	assert.True(t, isLog)

	_, isSMTP := NewMailer(config.MailConfig{Host: "smtp.example.com", Port: 25}, nil).(*SMTPMailer)
	assert.True(t, isSMTP)
}

func TestSMTPMailerSend(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotBody []byte
	m := &SMTPMailer{
		cfg: config.MailConfig{Host: "smtp.example.com", Port: 2525, Username: "u", Password: "p", From: "shop@example.com"},
		send: func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotFrom, gotTo, gotBody = addr, from, to, msg
			return nil
		},
	}

	err := m.Send(context.Background(), Message{To: "a@example.com", Subject: "Hi", HTML: "<p>x</p>", Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:2525", gotAddr)
	assert.Equal(t, "shop@example.com", gotFrom)
	assert.Equal(t, []string{"a@example.com"}, gotTo)
	body := string(gotBody)
	assert.Contains(t, body, "Subject: Hi\r\n")
	assert.Contains(t, body, "multipart/alternative")
	assert.Contains(t, body, "text/html")
	assert.True(t, strings.HasSuffix(body, "--"+mimeBoundary+"--\r\n"))
}

func TestSMTPMailerSendError(t *testing.T) {
	m := &SMTPMailer{
		cfg: config.MailConfig{Host: "smtp.example.com", Port: 25},
		send: func(string, smtp.Auth, string, []string, []byte) error {
			return errors.New("connection refused")
		},
	}
	err := m.Send(context.Background(), Message{To: "a@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type countingMetrics struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (c *countingMetrics) Notification(outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outcomes == nil {
		c.outcomes = map[string]int{}
	}
	c.outcomes[outcome]++
}

func (c *countingMetrics) get(outcome string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcomes[outcome]
}

func TestDispatcherDeliversQueuedTickets(t *testing.T) {
	mailer := &recordingMailer{}
	counts := &countingMetrics{}
	d := NewDispatcher(mailer, 4, nil, WithMetrics(counts))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	d.TicketIssued(context.Background(), sampleTicket())
	d.TicketIssued(context.Background(), sampleTicket())

	require.Eventually(t, func() bool { return mailer.count() == 2 }, time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 2, counts.get("queued"))
	assert.Equal(t, 2, counts.get("sent"))
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	mailer := &recordingMailer{}
	counts := &countingMetrics{}
	d := NewDispatcher(mailer, 1, nil, WithMetrics(counts))

	// No worker is running, so the second enqueue finds the queue full.
	d.TicketIssued(context.Background(), sampleTicket())
	d.TicketIssued(context.Background(), sampleTicket())

	assert.Equal(t, 1, counts.get("queued"))
	assert.Equal(t, 1, counts.get("dropped"))
}

func TestDispatcherDrainsOnShutdown(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(mailer, 3, nil)
	for i := 0; i < 3; i++ {
		d.TicketIssued(context.Background(), sampleTicket())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, d.Run(ctx))
	assert.Equal(t, 3, mailer.count())
}

func TestDispatcherCountsFailures(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("smtp down")}
	counts := &countingMetrics{}
	d := NewDispatcher(mailer, 1, nil, WithMetrics(counts), WithSendTimeout(time.Second))
	d.TicketIssued(context.Background(), sampleTicket())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, d.Run(ctx))
	assert.Equal(t, 1, counts.get("failed"))
	assert.Equal(t, 0, counts.get("sent"))
}

func TestDispatcherDropsTicketsAfterStop(t *testing.T) {
	mailer := &recordingMailer{}
	counts := &countingMetrics{}
	d := NewDispatcher(mailer, 4, nil, WithMetrics(counts))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, d.Run(ctx))

	// A purchase finishing after the worker is gone must not sit in the queue unread.
	d.TicketIssued(context.Background(), sampleTicket())

	assert.Equal(t, 0, counts.get("queued"))
	assert.Equal(t, 1, counts.get("dropped"))
	assert.Equal(t, 0, mailer.count())
	assert.Empty(t, d.queue)
}
