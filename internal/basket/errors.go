package basket

import (
	"errors"
	"fmt"
)

var (
	ErrItemNotFound    = errors.New("item not found in basket")
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 2147483647")
	ErrNoSession       = errors.New("no session for anonymous basket")
)

// RejectionError is returned when a removal asks for more units than the basket holds.
type RejectionError struct {
	ProductID int64
	Requested int
	Held      int
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("requested removal exceeds held quantity: product %d, requested %d, held %d",
		e.ProductID, e.Requested, e.Held)
}
