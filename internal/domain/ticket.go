package domain

import "time"

type TicketStatus string

const (
	TicketCompleted TicketStatus = "completed"
	TicketPending   TicketStatus = "pending"
	// TicketFailed is reserved for all-or-nothing purchase modes; no ticket is
	// stored when nothing commits.
	TicketFailed TicketStatus = "failed"
)

// Ticket is the durable record of a purchase. Lines keep the price and title
// captured at purchase time.
type Ticket struct {
	ID          string       `json:"id"`
	Code        string       `json:"code"`
	PurchasedAt time.Time    `json:"purchasedAt"`
	AmountCents int64        `json:"amountCents"`
	Purchaser   string       `json:"purchaser"`
	Status      TicketStatus `json:"status"`
	Lines       []TicketLine `json:"lines"`
	CreatedAt   time.Time    `json:"createdAt"`
}

type TicketLine struct {
	ProductID      string `json:"productId"`
	Title          string `json:"title"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

func (l TicketLine) SubtotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}

// ItemCount is the total number of units across all lines.
func (t Ticket) ItemCount() int {
	n := 0
	for _, l := range t.Lines {
		n += l.Quantity
	}
	return n
}
