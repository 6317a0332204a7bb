package crm

import (
	"strings"
	"time"

	"crm-api/internal/data"

	"github.com/shopspring/decimal"
)

// CustomerFilter narrows a customer listing. Empty fields match everything.
type CustomerFilter struct {
	NameContains string
	EmailEquals  string
	PhoneEquals  string
}

// Apply returns the customers matching every set field.
func (f CustomerFilter) Apply(in []data.Customer) []data.Customer {
	return keep(in, func(c data.Customer) bool {
		return containsFold(c.Name, f.NameContains) &&
			(f.EmailEquals == "" || c.Email == f.EmailEquals) &&
			(f.PhoneEquals == "" || c.Phone == f.PhoneEquals)
	})
}

// ProductFilter narrows a product listing. Nil bounds are ignored and all
// comparisons are strict.
type ProductFilter struct {
	NameContains string
	PriceLT      *decimal.Decimal
	PriceGT      *decimal.Decimal
	StockLT      *int
	StockGT      *int
}

// Apply returns the products inside every set bound.
func (f ProductFilter) Apply(in []data.Product) []data.Product {
	return keep(in, func(p data.Product) bool {
		return containsFold(p.Name, f.NameContains) &&
			(f.PriceLT == nil || p.Price.LessThan(*f.PriceLT)) &&
			(f.PriceGT == nil || p.Price.GreaterThan(*f.PriceGT)) &&
			(f.StockLT == nil || p.Stock < *f.StockLT) &&
			(f.StockGT == nil || p.Stock > *f.StockGT)
	})
}

// OrderFilter narrows an order listing by date and total. Nil bounds are
// ignored.
type OrderFilter struct {
	OrderDateLT   *time.Time
	OrderDateGT   *time.Time
	TotalAmountLT *decimal.Decimal
	TotalAmountGT *decimal.Decimal
}

// Apply returns the orders inside every set bound.
func (f OrderFilter) Apply(in []data.Order) []data.Order {
	return keep(in, func(o data.Order) bool {
		return (f.OrderDateLT == nil || o.OrderDate.Before(*f.OrderDateLT)) &&
			(f.OrderDateGT == nil || o.OrderDate.After(*f.OrderDateGT)) &&
			(f.TotalAmountLT == nil || o.TotalAmount.LessThan(*f.TotalAmountLT)) &&
			(f.TotalAmountGT == nil || o.TotalAmount.GreaterThan(*f.TotalAmountGT))
	})
}

func keep[T any](in []T, match func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if match(v) {
			out = append(out, v)
		}
	}
	return out
}

func containsFold(s, substr string) bool {
	return substr == "" || strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
