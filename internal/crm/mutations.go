package crm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"crm-api/internal/data"

	"github.com/shopspring/decimal"
)

const customerCreatedMessage = "Customer created successfully."

// CustomerInput is one customer record to create.
type CustomerInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
	Phone string `json:"phone"`
}

// ProductInput describes a product. Stock defaults to 0 when omitted.
type ProductInput struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       *int            `json:"stock"`
	Image       *string         `json:"image"`
	CategoryID  *uint           `json:"category_id"`
}

// CategoryInput describes a product category.
type CategoryInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// OrderInput places an order for CustomerID. Each product id becomes one
// order line, and a missing OrderDate means now.
type OrderInput struct {
	CustomerID uint       `json:"customer_id"`
	ProductIDs []uint     `json:"product_ids"`
	OrderDate  *time.Time `json:"order_date"`
}

// CustomerResult is the payload of a successful CreateCustomer.
type CustomerResult struct {
	Customer data.Customer `json:"customer"`
	Message  string        `json:"message"`
}

// BulkResult lists the created customers and one message per rejected
// record, both in input order.
type BulkResult struct {
	Customers []data.Customer `json:"customers"`
	Errors    []string        `json:"errors"`
}

// CreateCustomer stores a customer after checking the email is unused.
// The phone number is stored as given.
func (s *Service) CreateCustomer(ctx context.Context, in CustomerInput) (*CustomerResult, error) {
	if err := s.validateInput(in); err != nil {
		return nil, err
	}
	if err := validateCustomerUnique(ctx, s.store, in.Email); err != nil {
		return nil, err
	}

	c := data.Customer{Name: in.Name, Email: in.Email, Phone: in.Phone}
	if err := s.store.CreateCustomer(ctx, &c); err != nil {
		// Lost a race with another insert of the same email.
		if errors.Is(err, data.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEmail, in.Email)
		}
		return nil, storageErr("create customer", err)
	}
	return &CustomerResult{Customer: c, Message: customerCreatedMessage}, nil
}

// errRowRejected rolls a bulk row back to its savepoint.
var errRowRejected = errors.New("row rejected")

// BulkCreateCustomers validates and inserts each record on its own inside
// one transaction. Rejected records become messages in Errors and never
// stop the batch; only a failure of the transaction itself is returned as
// an error, in which case nothing is kept.
func (s *Service) BulkCreateCustomers(ctx context.Context, inputs []CustomerInput) (*BulkResult, error) {
	var res *BulkResult
	err := s.store.Transaction(ctx, func(tx data.Store) error {
		res = &BulkResult{Customers: []data.Customer{}, Errors: []string{}}
		created := make(map[string]struct{}, len(inputs))

		for _, in := range inputs {
			var (
				customer data.Customer
				msg      string
			)
			err := tx.Transaction(ctx, func(row data.Store) error {
				customer, msg = s.bulkCreateOne(ctx, row, in, created)
				if msg != "" {
					return errRowRejected
				}
				return nil
			})
			if err != nil {
				if msg == "" {
					msg = fmt.Sprintf("Failed to create customer '%s': %v", in.Email, err)
				}
				res.Errors = append(res.Errors, msg)
				continue
			}
			created[emailKey(in.Email)] = struct{}{}
			res.Customers = append(res.Customers, customer)
		}
		return nil
	})
	if err != nil {
		return nil, storageErr("bulk create customers", err)
	}
	return res, nil
}

// bulkCreateOne returns the stored customer, or a message saying why the
// record was rejected.
func (s *Service) bulkCreateOne(ctx context.Context, store data.Store, in CustomerInput, created map[string]struct{}) (data.Customer, string) {
	if err := s.validateInput(in); err != nil {
		return data.Customer{}, fmt.Sprintf("Validation error for '%s': %v", in.Email, err)
	}
	if _, ok := created[emailKey(in.Email)]; ok {
		return data.Customer{}, fmt.Sprintf("Duplicate email '%s' in batch.", in.Email)
	}

	err := validateCustomerUnique(ctx, store, in.Email)
	switch {
	case errors.Is(err, ErrDuplicateEmail):
		return data.Customer{}, fmt.Sprintf("Customer with email '%s' already exists.", in.Email)
	case err != nil:
		return data.Customer{}, fmt.Sprintf("Failed to create customer '%s': %v", in.Email, err)
	}

	if err := s.validatePhone(in.Phone); err != nil {
		return data.Customer{}, fmt.Sprintf("Invalid phone number for '%s'.", in.Email)
	}

	c := data.Customer{Name: in.Name, Email: in.Email, Phone: in.Phone}
	if err := store.CreateCustomer(ctx, &c); err != nil {
		if errors.Is(err, data.ErrDuplicate) {
			return data.Customer{}, fmt.Sprintf("Customer with email '%s' already exists.", in.Email)
		}
		return data.Customer{}, fmt.Sprintf("Failed to create customer '%s': %v", in.Email, err)
	}
	return c, ""
}

// emailKey folds case so batch duplicates match the way MySQL's default
// collation compares emails.
func emailKey(email string) string {
	return strings.ToLower(email)
}

// CreateProduct rejects a non-positive price or negative stock before
// anything is written.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*data.Product, error) {
	if err := s.validateInput(in); err != nil {
		return nil, err
	}
	if err := validateProductPricing(in.Price, in.Stock); err != nil {
		return nil, err
	}

	p := data.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Image:       in.Image,
		CategoryID:  in.CategoryID,
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}

	err := s.store.Transaction(ctx, func(tx data.Store) error {
		if in.CategoryID != nil {
			category, err := resolveCategory(ctx, tx, *in.CategoryID)
			if err != nil {
				return err
			}
			p.Category = category
		}
		return tx.CreateProduct(ctx, &p)
	})
	if err != nil {
		return nil, storageErr("create product", err)
	}
	return &p, nil
}

// CreateCategory stores a named category.
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*data.Category, error) {
	if err := s.validateInput(in); err != nil {
		return nil, err
	}
	c := data.Category{Name: in.Name, Description: in.Description}
	if err := s.store.CreateCategory(ctx, &c); err != nil {
		return nil, storageErr("create category", err)
	}
	return &c, nil
}

// CreateOrder resolves the customer and every product, totals the product
// prices and writes the order with its items in one transaction. The first
// unknown ID aborts the order.
func (s *Service) CreateOrder(ctx context.Context, in OrderInput) (*data.Order, error) {
	var order data.Order
	err := s.store.Transaction(ctx, func(tx data.Store) error {
		customer, err := resolveCustomer(ctx, tx, in.CustomerID)
		if err != nil {
			return err
		}
		products, err := resolveProducts(ctx, tx, in.ProductIDs)
		if err != nil {
			return err
		}
		if len(products) == 0 {
			return ErrEmptyOrder
		}

		total := decimal.Zero
		items := make([]data.OrderItem, 0, len(products))
		for _, p := range products {
			total = total.Add(p.Price)
			items = append(items, data.OrderItem{ProductID: p.ID, UnitPrice: p.Price})
		}
		if err := validateOrderTotal(total); err != nil {
			return err
		}

		orderDate := s.now()
		if in.OrderDate != nil && !in.OrderDate.IsZero() {
			orderDate = *in.OrderDate
		}

		order = data.Order{
			CustomerID:  customer.ID,
			OrderDate:   orderDate,
			TotalAmount: total,
			Items:       items,
		}
		if err := tx.CreateOrder(ctx, &order); err != nil {
			return err
		}

		order.Customer = customer
		order.Products = products
		for i := range order.Items {
			order.Items[i].Product = &order.Products[i]
		}
		return nil
	})
	if err != nil {
		return nil, storageErr("create order", err)
	}
	return &order, nil
}
