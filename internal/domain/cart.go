package domain

import "time"

type Cart struct {
	ID         string     `json:"id"`
	OwnerID    *string    `json:"ownerId,omitempty"`
	TotalCents int64      `json:"totalCents"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	Lines      []CartLine `json:"lines"`
}

// CartLine is one product/quantity pair. Product is populated on read and is
// nil when the referenced product no longer exists.
type CartLine struct {
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	Product   *Product  `json:"product,omitempty"`
	AddedAt   time.Time `json:"addedAt"`
}

// SubtotalCents prices the line with the populated product.
func (l CartLine) SubtotalCents() int64 {
	if l.Product == nil {
		return 0
	}
	return l.Product.PriceCents * int64(l.Quantity)
}

// CartTotalCents sums the subtotals of lines whose product is known.
func CartTotalCents(lines []CartLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.SubtotalCents()
	}
	return total
}
