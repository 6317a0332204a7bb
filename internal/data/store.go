package data

import (
	"context"
	"errors"
	"fmt"

	"crm-api/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Store is the data-access surface the CRM services depend on.
type Store interface {
	Customers(ctx context.Context) ([]Customer, error)
	Products(ctx context.Context) ([]Product, error)
	Orders(ctx context.Context) ([]Order, error)
	OrderItems(ctx context.Context) ([]OrderItem, error)
	Categories(ctx context.Context) ([]Category, error)

	CustomerByID(ctx context.Context, id uint) (*Customer, error)
	// EmailExists matches emails case-insensitively on every driver.
	EmailExists(ctx context.Context, email string) (bool, error)
	ProductByID(ctx context.Context, id uint) (*Product, error)
	CategoryByID(ctx context.Context, id uint) (*Category, error)

	CreateCustomer(ctx context.Context, c *Customer) error
	CreateProduct(ctx context.Context, p *Product) error
	CreateCategory(ctx context.Context, c *Category) error
	// CreateOrder inserts the order row and then all of its items as one
	// batch. Both writes commit or neither does.
	CreateOrder(ctx context.Context, o *Order) error

	// Transaction runs fn against a Store bound to a single transaction.
	// Calling Transaction on such a Store opens a savepoint, so a failing
	// nested fn only rolls back its own writes.
	Transaction(ctx context.Context, fn func(Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore returns a Store backed by gdb.
func NewStore(gdb *gorm.DB) Store {
	return &gormStore{db: gdb}
}

func (s *gormStore) Customers(ctx context.Context) ([]Customer, error) {
	var customers []Customer
	err := s.db.WithContext(ctx).
		Preload("Orders", func(tx *gorm.DB) *gorm.DB { return tx.Order("orders.id ASC") }).
		Preload("Orders.Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("order_items.id ASC") }).
		Preload("Orders.Items.Product").
		Order("id ASC").
		Find(&customers).Error
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	for i := range customers {
		for j := range customers[i].Orders {
			customers[i].Orders[j].fillProducts()
		}
	}
	return customers, nil
}

func (s *gormStore) Products(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := s.db.WithContext(ctx).Preload("Category").Order("id ASC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *gormStore) Orders(ctx context.Context) ([]Order, error) {
	var orders []Order
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("order_items.id ASC") }).
		Preload("Items.Product").
		Order("id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	for i := range orders {
		orders[i].fillProducts()
	}
	return orders, nil
}

func (s *gormStore) OrderItems(ctx context.Context) ([]OrderItem, error) {
	var items []OrderItem
	if err := s.db.WithContext(ctx).Preload("Product").Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	return items, nil
}

func (s *gormStore) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	err := s.db.WithContext(ctx).
		Preload("Products", func(tx *gorm.DB) *gorm.DB { return tx.Order("products.id ASC") }).
		Order("id ASC").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *gormStore) CustomerByID(ctx context.Context, id uint) (*Customer, error) {
	var c Customer
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(fmt.Sprintf("get customer %d", id), err)
	}
	return &c, nil
}

func (s *gormStore) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Customer{}).Where("LOWER(email) = LOWER(?)", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check email %q: %w", email, err)
	}
	return count > 0, nil
}

func (s *gormStore) ProductByID(ctx context.Context, id uint) (*Product, error) {
	var p Product
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(fmt.Sprintf("get product %d", id), err)
	}
	return &p, nil
}

func (s *gormStore) CategoryByID(ctx context.Context, id uint) (*Category, error) {
	var c Category
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(fmt.Sprintf("get category %d", id), err)
	}
	return &c, nil
}

func (s *gormStore) CreateCustomer(ctx context.Context, c *Customer) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error; err != nil {
		return translate("create customer", err)
	}
	return nil
}

func (s *gormStore) CreateProduct(ctx context.Context, p *Product) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error; err != nil {
		return translate("create product", err)
	}
	return nil
}

func (s *gormStore) CreateCategory(ctx context.Context, c *Category) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error; err != nil {
		return translate("create category", err)
	}
	return nil
}

func (s *gormStore) CreateOrder(ctx context.Context, o *Order) error {
	if len(o.Items) == 0 {
		return errors.New("create order: no items")
	}
	items := o.Items

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(o).Error; err != nil {
			return translate("create order", err)
		}
		for i := range items {
			items[i].OrderID = o.ID
		}
		if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
			return translate("create order items", err)
		}
		o.Items = items
		return nil
	})
}

func (s *gormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func translate(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case db.IsDuplicateKey(err):
		return fmt.Errorf("%s: %w: %v", op, ErrDuplicate, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
