package crm

import (
	"context"
	"strings"
	"testing"
	"time"

	"crm-api/internal/data"
	"crm-api/internal/db"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := db.Open(db.Config{
		Driver:     db.DriverSQLite,
		SQLitePath: "file:" + name + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	require.NoError(t, data.EnsureSchema(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func newTestService(t *testing.T) (*Service, data.Store) {
	t.Helper()
	store := data.NewStore(newTestDB(t))
	return NewService(store, WithClock(func() time.Time { return fixedNow })), store
}

type fixture struct {
	books   data.Category
	guide   data.Product
	smartph data.Product
	alice   data.Customer
	bob     data.Customer
}

func seedFixture(t *testing.T, store data.Store) fixture {
	t.Helper()
	ctx := context.Background()
	var f fixture

	f.books = data.Category{Name: "Books", Description: "A collection of books."}
	require.NoError(t, store.CreateCategory(ctx, &f.books))

	f.guide = data.Product{Name: "Guide", Price: decimal.RequireFromString("10.99"), Stock: 100, CategoryID: &f.books.ID}
	require.NoError(t, store.CreateProduct(ctx, &f.guide))
	f.smartph = data.Product{Name: "Smartphone", Price: decimal.RequireFromString("800.00"), Stock: 25}
	require.NoError(t, store.CreateProduct(ctx, &f.smartph))

	f.alice = data.Customer{Name: "Alice", Email: "alice@example.com"}
	require.NoError(t, store.CreateCustomer(ctx, &f.alice))
	f.bob = data.Customer{Name: "Bob", Email: "bob@example.com", Phone: "0987654321"}
	require.NoError(t, store.CreateCustomer(ctx, &f.bob))
	return f
}

func countCustomers(t *testing.T, store data.Store) int {
	t.Helper()
	customers, err := store.Customers(context.Background())
	require.NoError(t, err)
	return len(customers)
}

func countOrders(t *testing.T, store data.Store) int {
	t.Helper()
	orders, err := store.Orders(context.Background())
	require.NoError(t, err)
	return len(orders)
}

func ptr[T any](v T) *T {
	return &v
}
