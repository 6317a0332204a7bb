package crm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"crm-api/internal/data"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCustomer(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	res, err := svc.CreateCustomer(ctx, CustomerInput{Name: "Carol", Email: "carol@example.com", Phone: "555"})
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", res.Customer.Email)
	assert.NotZero(t, res.Customer.ID)
	assert.Equal(t, "Customer created successfully.", res.Message)

	_, err = svc.CreateCustomer(ctx, CustomerInput{Name: "Carol again", Email: "carol@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Equal(t, 1, countCustomers(t, store))
}

func TestCreateCustomerSkipsPhoneCheck(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.CreateCustomer(context.Background(), CustomerInput{Name: "Dan", Email: "dan@example.com", Phone: "+1-555-0100"})
	require.NoError(t, err)
	assert.Equal(t, "+1-555-0100", res.Customer.Phone)
}

func TestCreateCustomerRequiresNameAndEmail(t *testing.T) {
	svc, store := newTestService(t)

	_, err := svc.CreateCustomer(context.Background(), CustomerInput{Phone: "123"})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "name")
	assert.Contains(t, err.Error(), "email")
	assert.Zero(t, countCustomers(t, store))
}

func TestCreateCustomerConstraintRace(t *testing.T) {
	_, store := newTestService(t)
	require.NoError(t, store.CreateCustomer(context.Background(), &data.Customer{Name: "A", Email: "race@example.com"}))

	// The pre-check misses as it would when a concurrent insert commits
	// between check and write. The unique index still rejects the row.
	svc := NewService(&staleEmailStore{Store: store})
	_, err := svc.CreateCustomer(context.Background(), CustomerInput{Name: "B", Email: "race@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Equal(t, 1, countCustomers(t, store))
}

func TestBulkCreateCustomers(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	f := seedFixture(t, store)

	inputs := []CustomerInput{
		{Name: "Carol", Email: "carol@example.com", Phone: "5551234"},
		{Name: "Eve", Email: "eve@example.com", Phone: "abc123"},
		{Name: "Alice 2", Email: f.alice.Email},
		{Name: "Frank", Email: "frank@example.com"},
		{Name: "Carol twin", Email: "carol@example.com"},
		{Name: "", Email: "nameless@example.com"},
	}

	res, err := svc.BulkCreateCustomers(ctx, inputs)
	require.NoError(t, err)
	assert.Equal(t, len(inputs), len(res.Customers)+len(res.Errors))

	require.Len(t, res.Customers, 2)
	assert.Equal(t, "carol@example.com", res.Customers[0].Email)
	assert.Equal(t, "frank@example.com", res.Customers[1].Email)

	require.Len(t, res.Errors, 4)
	assert.Equal(t, "Invalid phone number for 'eve@example.com'.", res.Errors[0])
	assert.Equal(t, "Customer with email 'alice@example.com' already exists.", res.Errors[1])
	assert.Equal(t, "Duplicate email 'carol@example.com' in batch.", res.Errors[2])
	assert.Contains(t, res.Errors[3], "nameless@example.com")

	assert.Equal(t, 4, countCustomers(t, store))
}

func TestBulkCreateCustomersEmailCase(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	seedFixture(t, store)

	res, err := svc.BulkCreateCustomers(ctx, []CustomerInput{
		{Name: "Carol", Email: "Carol@Example.com"},
		{Name: "Carol lower", Email: "carol@example.com"},
		{Name: "Alice upper", Email: "ALICE@example.com"},
	})
	require.NoError(t, err)
	require.Len(t, res.Customers, 1)
	assert.Equal(t, "Carol@Example.com", res.Customers[0].Email)
	assert.Equal(t, []string{
		"Duplicate email 'carol@example.com' in batch.",
		"Customer with email 'ALICE@example.com' already exists.",
	}, res.Errors)

	_, err = svc.CreateCustomer(ctx, CustomerInput{Name: "Bob upper", Email: "BOB@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Equal(t, 3, countCustomers(t, store))
}

func TestBulkCreateCustomersEmptyBatch(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.BulkCreateCustomers(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, res.Customers)
	assert.NotNil(t, res.Errors)
	assert.Empty(t, res.Customers)
	assert.Empty(t, res.Errors)
}

func TestBulkCreateCustomersRowFaultDoesNotStopBatch(t *testing.T) {
	ctx := context.Background()
	_, store := newTestService(t)
	faulty := &faultyStore{Store: store, failEmail: "broken@example.com"}
	svc := NewService(faulty)

	res, err := svc.BulkCreateCustomers(ctx, []CustomerInput{
		{Name: "One", Email: "one@example.com"},
		{Name: "Broken", Email: "broken@example.com"},
		{Name: "Two", Email: "two@example.com"},
	})
	require.NoError(t, err)
	require.Len(t, res.Customers, 2)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "Failed to create customer 'broken@example.com'")
	assert.Equal(t, 2, countCustomers(t, store))
}

func TestBulkCreateCustomersSystemFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	_, store := newTestService(t)
	svc := NewService(&commitFailStore{Store: store})

	res, err := svc.BulkCreateCustomers(ctx, []CustomerInput{
		{Name: "One", Email: "one@example.com"},
		{Name: "Two", Email: "two@example.com"},
	})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrStorage)
	assert.Zero(t, countCustomers(t, store))
}

func TestCreateProductPricing(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	tests := []struct {
		name    string
		price   string
		stock   *int
		wantErr error
	}{
		{"zero price", "0", nil, ErrNonPositivePrice},
		{"negative price", "-5", nil, ErrNonPositivePrice},
		{"negative stock", "1.00", ptr(-1), ErrNegativeStock},
		{"below a cent", "0.004", nil, ErrPriceOutOfRange},
		{"three decimals", "12.345", nil, ErrPriceOutOfRange},
		{"above column max", "1e11", nil, ErrPriceOutOfRange},
		{"one cent over max", "100000000.00", nil, ErrPriceOutOfRange},
		{"smallest price", "0.01", nil, nil},
		{"zero stock", "3.50", ptr(0), nil},
		{"column max", "99999999.99", nil, nil},
		{"trailing zero", "10.990", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := svc.CreateProduct(ctx, ProductInput{
				Name:  "Widget " + tt.name,
				Price: decimal.RequireFromString(tt.price),
				Stock: tt.stock,
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, p.ID)
			assert.True(t, p.Price.Equal(decimal.RequireFromString(tt.price)))
		})
	}

	products, err := svc.Products(ctx)
	require.NoError(t, err)
	require.Len(t, products, 4)
	assert.Equal(t, "99999999.99", products[2].Price.StringFixed(2))
}

func TestCreateProductCategory(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	f := seedFixture(t, store)

	p, err := svc.CreateProduct(ctx, ProductInput{
		Name:       "Atlas",
		Price:      decimal.RequireFromString("25"),
		CategoryID: &f.books.ID,
		Image:      ptr("atlas.png"),
	})
	require.NoError(t, err)
	require.NotNil(t, p.Category)
	assert.Equal(t, "Books", p.Category.Name)
	assert.Zero(t, p.Stock)

	_, err = svc.CreateProduct(ctx, ProductInput{Name: "Lost", Price: decimal.RequireFromString("1"), CategoryID: ptr(uint(404))})
	var ref *ReferenceError
	require.ErrorAs(t, err, &ref)
	assert.ErrorIs(t, err, ErrInvalidCategory)
	assert.EqualValues(t, 404, ref.ID)
}

func TestCreateCategory(t *testing.T) {
	svc, _ := newTestService(t)

	c, err := svc.CreateCategory(context.Background(), CategoryInput{Name: "Garden"})
	require.NoError(t, err)
	assert.NotZero(t, c.ID)

	_, err = svc.CreateCategory(context.Background(), CategoryInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateOrderScenario(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	f := seedFixture(t, store)

	order, err := svc.CreateOrder(ctx, OrderInput{CustomerID: f.alice.ID, ProductIDs: []uint{f.guide.ID}})
	require.NoError(t, err)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("10.99")))
	require.NotNil(t, order.Customer)
	assert.Equal(t, f.alice.ID, order.Customer.ID)
	require.Len(t, order.Products, 1)
	assert.Equal(t, "Guide", order.Products[0].Name)
	assert.True(t, order.OrderDate.Equal(fixedNow))

	orders, err := svc.Orders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Alice", orders[0].Customer.Name)
	require.Len(t, orders[0].Products, 1)
	assert.Equal(t, f.guide.ID, orders[0].Products[0].ID)
}

func TestCreateOrderDecimalTotal(t *testing.T) {
	svc, store := newTestService(t)
	f := seedFixture(t, store)
	when := time.Date(2024, 12, 24, 18, 0, 0, 0, time.UTC)

	order, err := svc.CreateOrder(context.Background(), OrderInput{
		CustomerID: f.bob.ID,
		ProductIDs: []uint{f.guide.ID, f.smartph.ID},
		OrderDate:  &when,
	})
	require.NoError(t, err)
	assert.Equal(t, "810.99", order.TotalAmount.StringFixed(2))
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("810.99")))
	assert.True(t, order.OrderDate.Equal(when))
	require.Len(t, order.Items, 2)
	assert.True(t, order.Items[1].UnitPrice.Equal(f.smartph.Price))
}

func TestCreateOrderRepeatedProduct(t *testing.T) {
	svc, store := newTestService(t)
	f := seedFixture(t, store)

	order, err := svc.CreateOrder(context.Background(), OrderInput{
		CustomerID: f.alice.ID,
		ProductIDs: []uint{f.guide.ID, f.guide.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "21.98", order.TotalAmount.StringFixed(2))
	assert.Len(t, order.Items, 2)
}

func TestCreateOrderTotalOutOfRange(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	f := seedFixture(t, store)

	dear := data.Product{Name: "Yacht", Price: data.MaxPrice, Stock: 1}
	require.NoError(t, store.CreateProduct(ctx, &dear))

	ids := make([]uint, 100)
	for i := range ids {
		ids[i] = dear.ID
	}
	order, err := svc.CreateOrder(ctx, OrderInput{CustomerID: f.alice.ID, ProductIDs: ids})
	require.NoError(t, err)
	assert.Equal(t, "9999999999.00", order.TotalAmount.StringFixed(2))

	_, err = svc.CreateOrder(ctx, OrderInput{CustomerID: f.alice.ID, ProductIDs: append(ids, dear.ID)})
	assert.ErrorIs(t, err, ErrTotalOutOfRange)
	assert.Equal(t, 1, countOrders(t, store))
}

func TestCreateOrderRejections(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	f := seedFixture(t, store)

	t.Run("empty", func(t *testing.T) {
		_, err := svc.CreateOrder(ctx, OrderInput{CustomerID: f.alice.ID, ProductIDs: []uint{}})
		assert.ErrorIs(t, err, ErrEmptyOrder)
	})

	t.Run("unknown customer", func(t *testing.T) {
		_, err := svc.CreateOrder(ctx, OrderInput{CustomerID: 777, ProductIDs: []uint{f.guide.ID}})
		var ref *ReferenceError
		require.ErrorAs(t, err, &ref)
		assert.ErrorIs(t, err, ErrInvalidCustomer)
		assert.EqualValues(t, 777, ref.ID)
	})

	t.Run("first unknown product", func(t *testing.T) {
		_, err := svc.CreateOrder(ctx, OrderInput{CustomerID: f.alice.ID, ProductIDs: []uint{f.guide.ID, 901, 902}})
		var ref *ReferenceError
		require.ErrorAs(t, err, &ref)
		assert.ErrorIs(t, err, ErrInvalidProduct)
		assert.EqualValues(t, 901, ref.ID)
	})

	assert.Zero(t, countOrders(t, store))
}

func TestCreateOrderItemFailureLeavesNoOrder(t *testing.T) {
	_, store := newTestService(t)
	f := seedFixture(t, store)
	svc := NewService(&itemFailStore{Store: store})

	_, err := svc.CreateOrder(context.Background(), OrderInput{CustomerID: f.alice.ID, ProductIDs: []uint{f.guide.ID}})
	assert.ErrorIs(t, err, ErrStorage)
	assert.Zero(t, countOrders(t, store))
}

// staleEmailStore always reports emails as unused.
type staleEmailStore struct {
	data.Store
}

func (s *staleEmailStore) EmailExists(context.Context, string) (bool, error) {
	return false, nil
}

// faultyStore fails inserts of one email with a store-level error.
type faultyStore struct {
	data.Store
	failEmail string
}

func (s *faultyStore) CreateCustomer(ctx context.Context, c *data.Customer) error {
	if c.Email == s.failEmail {
		return errors.New("disk I/O error")
	}
	return s.Store.CreateCustomer(ctx, c)
}

func (s *faultyStore) Transaction(ctx context.Context, fn func(data.Store) error) error {
	return s.Store.Transaction(ctx, func(tx data.Store) error {
		return fn(&faultyStore{Store: tx, failEmail: s.failEmail})
	})
}

// commitFailStore runs the batch and then fails as a broken commit would.
type commitFailStore struct {
	data.Store
}

var errCommit = errors.New("commit failed")

func (s *commitFailStore) Transaction(ctx context.Context, fn func(data.Store) error) error {
	return s.Store.Transaction(ctx, func(tx data.Store) error {
		if err := fn(tx); err != nil {
			return err
		}
		return errCommit
	})
}

// itemFailStore writes the order row and then fails on the items, the
// failure mode a single transaction has to cover.
type itemFailStore struct {
	data.Store
}

func (s *itemFailStore) CreateOrder(ctx context.Context, o *data.Order) error {
	header := *o
	header.Items = []data.OrderItem{{ProductID: o.Items[0].ProductID, UnitPrice: o.Items[0].UnitPrice}}
	if err := s.Store.CreateOrder(ctx, &header); err != nil {
		return err
	}
	return fmt.Errorf("insert order items: %w", errors.New("connection reset"))
}

func (s *itemFailStore) Transaction(ctx context.Context, fn func(data.Store) error) error {
	return s.Store.Transaction(ctx, func(tx data.Store) error {
		return fn(&itemFailStore{Store: tx})
	})
}
