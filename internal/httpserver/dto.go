package httpserver

import (
	"time"

	"ecommerce-backend/internal/domain"
)

type ticketLineDTO struct {
	ProductID      string `json:"productId"`
	Title          string `json:"title"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	SubtotalCents  int64  `json:"subtotalCents"`
}

type ticketDTO struct {
	ID           string          `json:"id"`
	Code         string          `json:"code"`
	PurchasedAt  time.Time       `json:"purchasedAt"`
	AmountCents  int64           `json:"amountCents"`
	Purchaser    string          `json:"purchaser"`
	Status       string          `json:"status"`
	Lines        []ticketLineDTO `json:"lines"`
	ProductCount int             `json:"productCount"`
	ItemCount    int             `json:"itemCount"`
}

func toTicketDTO(t domain.Ticket) ticketDTO {
	lines := make([]ticketLineDTO, 0, len(t.Lines))
	for _, l := range t.Lines {
		lines = append(lines, ticketLineDTO{
			ProductID:      l.ProductID,
			Title:          l.Title,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
			SubtotalCents:  l.SubtotalCents(),
		})
	}
	return ticketDTO{
		ID:           t.ID,
		Code:         t.Code,
		PurchasedAt:  t.PurchasedAt,
		AmountCents:  t.AmountCents,
		Purchaser:    t.Purchaser,
		Status:       string(t.Status),
		Lines:        lines,
		ProductCount: len(t.Lines),
		ItemCount:    t.ItemCount(),
	}
}

func toTicketDTOs(tickets []domain.Ticket) []ticketDTO {
	out := make([]ticketDTO, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, toTicketDTO(t))
	}
	return out
}

type cartLineDTO struct {
	ProductID     string          `json:"productId"`
	Quantity      int             `json:"quantity"`
	Product       *domain.Product `json:"product"`
	SubtotalCents int64           `json:"subtotalCents"`
	AddedAt       time.Time       `json:"addedAt"`
}

type cartDTO struct {
	ID         string        `json:"id"`
	OwnerID    *string       `json:"ownerId,omitempty"`
	Lines      []cartLineDTO `json:"products"`
	TotalCents int64         `json:"totalCents"`
	ItemCount  int           `json:"itemCount"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

func toCartDTO(c domain.Cart) cartDTO {
	lines := make([]cartLineDTO, 0, len(c.Lines))
	items := 0
	for _, l := range c.Lines {
		items += l.Quantity
		lines = append(lines, cartLineDTO{
			ProductID:     l.ProductID,
			Quantity:      l.Quantity,
			Product:       l.Product,
			SubtotalCents: l.SubtotalCents(),
			AddedAt:       l.AddedAt,
		})
	}
	return cartDTO{
		ID:         c.ID,
		OwnerID:    c.OwnerID,
		Lines:      lines,
		TotalCents: c.TotalCents,
		ItemCount:  items,
		UpdatedAt:  c.UpdatedAt,
	}
}

type failedLineDTO struct {
	ProductID         string `json:"productId"`
	Title             string `json:"title"`
	RequestedQuantity int    `json:"requestedQuantity"`
	AvailableStock    *int   `json:"availableStock,omitempty"`
	Reason            string `json:"reason"`
}

type purchaseDataDTO struct {
	Ticket           *ticketDTO      `json:"ticket"`
	FailedProducts   []failedLineDTO `json:"failedProducts"`
	TotalAmountCents int64           `json:"totalAmountCents"`
}

func toPurchaseData(r domain.PurchaseResult) purchaseDataDTO {
	out := purchaseDataDTO{
		FailedProducts:   make([]failedLineDTO, 0, len(r.FailedProducts)),
		TotalAmountCents: r.TotalAmountCents,
	}
	if r.Ticket != nil {
		t := toTicketDTO(*r.Ticket)
		out.Ticket = &t
	}
	for _, f := range r.FailedProducts {
		out.FailedProducts = append(out.FailedProducts, failedLineDTO(f))
	}
	return out
}
