package crm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"crm-api/internal/data"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

func (s *Service) validateInput(in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, strings.ToLower(fe.Field()))
		}
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}

func validateCustomerUnique(ctx context.Context, store data.Store, email string) error {
	exists, err := store.EmailExists(ctx, email)
	if err != nil {
		return storageErr("check email", err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrDuplicateEmail, email)
	}
	return nil
}

// validatePhone accepts an empty phone or one made only of digits.
func (s *Service) validatePhone(phone string) error {
	if phone == "" {
		return nil
	}
	if err := s.validate.Var(phone, "number"); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidPhone, phone)
	}
	return nil
}

// validateProductPricing also rejects prices the price column would round
// or overflow.
func validateProductPricing(price decimal.Decimal, stock *int) error {
	if !price.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrNonPositivePrice, price)
	}
	if !price.Equal(price.Truncate(data.MoneyScale)) {
		return fmt.Errorf("%w: %s has more than %d decimal places", ErrPriceOutOfRange, price, data.MoneyScale)
	}
	if price.GreaterThan(data.MaxPrice) {
		return fmt.Errorf("%w: %s is above %s", ErrPriceOutOfRange, price, data.MaxPrice)
	}
	if stock != nil && *stock < 0 {
		return fmt.Errorf("%w: got %d", ErrNegativeStock, *stock)
	}
	return nil
}

func validateOrderTotal(total decimal.Decimal) error {
	if total.GreaterThan(data.MaxTotalAmount) {
		return fmt.Errorf("%w: %s is above %s", ErrTotalOutOfRange, total, data.MaxTotalAmount)
	}
	return nil
}

func resolveCustomer(ctx context.Context, store data.Store, id uint) (*data.Customer, error) {
	c, err := store.CustomerByID(ctx, id)
	if errors.Is(err, data.ErrNotFound) {
		return nil, &ReferenceError{Kind: ErrInvalidCustomer, ID: id}
	}
	if err != nil {
		return nil, storageErr("resolve customer", err)
	}
	return c, nil
}

// resolveProducts looks ids up in order and stops at the first miss.
func resolveProducts(ctx context.Context, store data.Store, ids []uint) ([]data.Product, error) {
	products := make([]data.Product, 0, len(ids))
	for _, id := range ids {
		p, err := store.ProductByID(ctx, id)
		if errors.Is(err, data.ErrNotFound) {
			return nil, &ReferenceError{Kind: ErrInvalidProduct, ID: id}
		}
		if err != nil {
			return nil, storageErr("resolve product", err)
		}
		products = append(products, *p)
	}
	return products, nil
}

func resolveCategory(ctx context.Context, store data.Store, id uint) (*data.Category, error) {
	c, err := store.CategoryByID(ctx, id)
	if errors.Is(err, data.ErrNotFound) {
		return nil, &ReferenceError{Kind: ErrInvalidCategory, ID: id}
	}
	if err != nil {
		return nil, storageErr("resolve category", err)
	}
	return c, nil
}
