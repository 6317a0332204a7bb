package data

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SeedConfig controls how much synthetic order history is inserted on top
// of the fixed catalogue.
type SeedConfig struct {
	Orders    int
	BatchSize int
}

// EnsureSchema applies the required database schema.
func EnsureSchema(db *gorm.DB) error {
	return db.AutoMigrate(&Category{}, &Product{}, &Customer{}, &Order{}, &OrderItem{})
}

// ClearDataset removes every row, children first.
func ClearDataset(ctx context.Context, db *gorm.DB) error {
	all := db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []any{&OrderItem{}, &Order{}, &Customer{}, &Product{}, &Category{}} {
		if err := all.Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

type seedProduct struct {
	name, description, price string
	stock                    int
	category                 string
}

var (
	seedCategories = []Category{
		{Name: "Electronics", Description: "Electronic gadgets and devices."},
		{Name: "Books", Description: "A collection of books."},
	}
	seedProducts = []seedProduct{
		{"Laptop", "A powerful laptop.", "1200.50", 10, "Electronics"},
		{"Smartphone", "A new smartphone.", "800.00", 25, "Electronics"},
		{"The Hitchhiker's Guide to the Galaxy", "A comic science fiction novel.", "10.99", 100, "Books"},
	}
	seedCustomers = []Customer{
		{Name: "Alice Smith", Email: "alice.smith@example.com", Phone: "1234567890"},
		{Name: "Bob Johnson", Email: "bob.johnson@example.com", Phone: "0987654321"},
	}
)

// SeedDataset populates the catalogue and customers, then tops the order
// history up to cfg.Orders. Running it twice does not duplicate rows.
func SeedDataset(ctx context.Context, db *gorm.DB, cfg SeedConfig) error {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories := make(map[string]uint, len(seedCategories))
		for _, c := range seedCategories {
			category := c
			if err := tx.Where(Category{Name: c.Name, Description: c.Description}).FirstOrCreate(&category).Error; err != nil {
				return fmt.Errorf("seed category %s: %w", c.Name, err)
			}
			categories[c.Name] = category.ID
		}

		products := make([]Product, 0, len(seedProducts))
		for _, sp := range seedProducts {
			categoryID := categories[sp.category]
			product := Product{
				Name:        sp.name,
				Description: sp.description,
				Price:       decimal.RequireFromString(sp.price),
				Stock:       sp.stock,
				CategoryID:  &categoryID,
			}
			if err := tx.Where(Product{Name: sp.name}).Attrs(product).FirstOrCreate(&product).Error; err != nil {
				return fmt.Errorf("seed product %s: %w", sp.name, err)
			}
			products = append(products, product)
		}

		customers := make([]Customer, 0, len(seedCustomers))
		for _, c := range seedCustomers {
			customer := c
			if err := tx.Where(Customer{Email: c.Email}).Attrs(c).FirstOrCreate(&customer).Error; err != nil {
				return fmt.Errorf("seed customer %s: %w", c.Email, err)
			}
			customers = append(customers, customer)
		}

		return seedOrders(tx, cfg, customers, products)
	})
}

func seedOrders(db *gorm.DB, cfg SeedConfig, customers []Customer, products []Product) error {
	var existing int64
	if err := db.Model(&Order{}).Count(&existing).Error; err != nil {
		return err
	}
	if int(existing) >= cfg.Orders {
		return nil
	}

	toCreate := cfg.Orders - int(existing)
	batch := make([]Order, 0, cfg.BatchSize)
	now := time.Now()
	rnd := rand.New(rand.NewSource(42))

	for i := 0; i < toCreate; i++ {
		batch = append(batch, buildSyntheticOrder(rnd, now, customers, products))

		if len(batch) == cfg.BatchSize || i == toCreate-1 {
			if err := db.Create(&batch).Error; err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	return nil
}

// buildSyntheticOrder picks one to three products; the total is the sum of
// their prices, the same rule live orders follow.
func buildSyntheticOrder(rnd *rand.Rand, now time.Time, customers []Customer, products []Product) Order {
	customer := customers[rnd.Intn(len(customers))]
	lines := rnd.Intn(3) + 1

	order := Order{
		CustomerID:  customer.ID,
		OrderDate:   now.Add(-time.Duration(rnd.Intn(365*24)) * time.Hour),
		TotalAmount: decimal.Zero,
		Items:       make([]OrderItem, 0, lines),
	}
	for j := 0; j < lines; j++ {
		p := products[rnd.Intn(len(products))]
		order.Items = append(order.Items, OrderItem{ProductID: p.ID, UnitPrice: p.Price})
		order.TotalAmount = order.TotalAmount.Add(p.Price)
	}
	return order
}
