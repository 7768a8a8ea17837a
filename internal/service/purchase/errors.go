package purchase

import (
	"fmt"
	"net/http"
)

// PurchaseError is a purchase-level failure carrying the HTTP status the
// transport should answer with.
type PurchaseError struct {
	Status  int
	Message string
	Err     error
}

func (e *PurchaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *PurchaseError) Unwrap() error { return e.Err }

func errCartNotFound(err error) *PurchaseError {
	return &PurchaseError{Status: http.StatusNotFound, Message: "cart not found", Err: err}
}

func errCartEmpty() *PurchaseError {
	return &PurchaseError{Status: http.StatusBadRequest, Message: "cart is empty"}
}

func errProcessing(err error) *PurchaseError {
	return &PurchaseError{Status: http.StatusInternalServerError, Message: "purchase processing error", Err: err}
}
