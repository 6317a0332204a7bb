package crm

import (
	"context"

	"crm-api/internal/data"
)

// Customers returns every customer in insertion order.
func (s *Service) Customers(ctx context.Context) ([]data.Customer, error) {
	customers, err := s.store.Customers(ctx)
	if err != nil {
		return nil, storageErr("list customers", err)
	}
	return customers, nil
}

// Products returns every product with its category.
func (s *Service) Products(ctx context.Context) ([]data.Product, error) {
	products, err := s.store.Products(ctx)
	if err != nil {
		return nil, storageErr("list products", err)
	}
	return products, nil
}

// Orders returns every order with its customer and products loaded.
func (s *Service) Orders(ctx context.Context) ([]data.Order, error) {
	orders, err := s.store.Orders(ctx)
	if err != nil {
		return nil, storageErr("list orders", err)
	}
	return orders, nil
}

// OrderItems returns every order line with its product.
func (s *Service) OrderItems(ctx context.Context) ([]data.OrderItem, error) {
	items, err := s.store.OrderItems(ctx)
	if err != nil {
		return nil, storageErr("list order items", err)
	}
	return items, nil
}

// Categories returns every category with its products.
func (s *Service) Categories(ctx context.Context) ([]data.Category, error) {
	categories, err := s.store.Categories(ctx)
	if err != nil {
		return nil, storageErr("list categories", err)
	}
	return categories, nil
}
