package domain

// FailedLine describes a cart line that could not be committed.
type FailedLine struct {
	ProductID         string `json:"productId"`
	Title             string `json:"title"`
	RequestedQuantity int    `json:"requestedQuantity"`
	AvailableStock    *int   `json:"availableStock,omitempty"`
	Reason            string `json:"reason"`
}

// PurchaseResult is the outcome of one purchase attempt. It is never stored.
type PurchaseResult struct {
	Success          bool         `json:"success"`
	Message          string       `json:"message"`
	Ticket           *Ticket      `json:"ticket"`
	FailedProducts   []FailedLine `json:"failedProducts"`
	TotalAmountCents int64        `json:"totalAmountCents"`
}
