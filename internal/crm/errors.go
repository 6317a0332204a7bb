package crm

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateEmail   = errors.New("email already exists")
	ErrInvalidPhone     = errors.New("invalid phone number")
	ErrNonPositivePrice = errors.New("price must be a positive number")
	ErrNegativeStock    = errors.New("stock cannot be a negative number")
	ErrPriceOutOfRange  = errors.New("price does not fit a two-decimal money column")
	ErrTotalOutOfRange  = errors.New("order total exceeds the largest storable amount")
	ErrEmptyOrder       = errors.New("an order must have at least one product")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidCustomer  = errors.New("invalid customer ID")
	ErrInvalidProduct   = errors.New("invalid product ID")
	ErrInvalidCategory  = errors.New("invalid category ID")
	// ErrStorage wraps every fault raised by the underlying store.
	ErrStorage = errors.New("storage failure")
)

// ReferenceError reports an ID that did not resolve to an existing row.
// Kind is one of ErrInvalidCustomer, ErrInvalidProduct or ErrInvalidCategory.
type ReferenceError struct {
	Kind error
	ID   uint
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%v: %d", e.Kind, e.ID)
}

func (e *ReferenceError) Unwrap() error {
	return e.Kind
}

var taxonomy = []error{
	ErrDuplicateEmail,
	ErrInvalidPhone,
	ErrNonPositivePrice,
	ErrNegativeStock,
	ErrPriceOutOfRange,
	ErrTotalOutOfRange,
	ErrEmptyOrder,
	ErrInvalidInput,
	ErrInvalidCustomer,
	ErrInvalidProduct,
	ErrInvalidCategory,
	ErrStorage,
}

// storageErr wraps err as ErrStorage unless it is already classified.
func storageErr(op string, err error) error {
	for _, known := range taxonomy {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
