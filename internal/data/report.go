package data

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Check kinds.
const (
	KindInventory = "inventory"
	KindIntegrity = "integrity"
)

// Check is a named query over the CRM tables. Integrity checks list
// offending rows and pass only when they return nothing.
type Check struct {
	Kind        string
	Name        string
	Description string
	Query       string
	Args        []interface{}
}

// CheckResult captures timing and row count for a check.
type CheckResult struct {
	Kind        string
	Name        string
	Description string
	Duration    time.Duration
	RowCount    int64
	Err         error
}

// OK reports whether the check ran and, for integrity checks, found nothing.
func (r CheckResult) OK() bool {
	if r.Err != nil {
		return false
	}
	return r.Kind != KindIntegrity || r.RowCount == 0
}

// Checks is the built-in report.
var Checks = []Check{
	{
		Kind:        KindInventory,
		Name:        "customers",
		Description: "all customers",
		Query:       "SELECT id FROM customers",
	},
	{
		Kind:        KindInventory,
		Name:        "categories",
		Description: "all categories",
		Query:       "SELECT id FROM categories",
	},
	{
		Kind:        KindInventory,
		Name:        "products",
		Description: "all products",
		Query:       "SELECT id FROM products",
	},
	{
		Kind:        KindInventory,
		Name:        "orders",
		Description: "all orders",
		Query:       "SELECT id FROM orders",
	},
	{
		Kind:        KindInventory,
		Name:        "order_items",
		Description: "all order lines",
		Query:       "SELECT id FROM order_items",
	},
	{
		Kind:        KindIntegrity,
		Name:        "empty_orders",
		Description: "orders with no order items",
		Query: `SELECT o.id FROM orders o
			LEFT JOIN order_items oi ON oi.order_id = o.id
			WHERE oi.id IS NULL`,
	},
	{
		Kind:        KindIntegrity,
		Name:        "total_mismatch",
		Description: "orders whose total differs from the sum of their item prices",
		Query: `SELECT o.id FROM orders o
			JOIN order_items oi ON oi.order_id = o.id
			GROUP BY o.id, o.total_amount
			HAVING ABS(o.total_amount - SUM(oi.unit_price)) >= ?`,
		Args: []interface{}{0.005},
	},
	{
		Kind:        KindIntegrity,
		Name:        "dangling_items",
		Description: "order items pointing at a missing product or order",
		Query: `SELECT oi.id FROM order_items oi
			LEFT JOIN products p ON p.id = oi.product_id
			LEFT JOIN orders o ON o.id = oi.order_id
			WHERE p.id IS NULL OR o.id IS NULL`,
	},
	{
		Kind:        KindIntegrity,
		Name:        "bad_pricing",
		Description: "products with a non-positive price or negative stock",
		Query:       "SELECT id FROM products WHERE price <= 0 OR stock < 0",
	},
	{
		Kind:        KindIntegrity,
		Name:        "duplicate_emails",
		Description: "emails shared by more than one customer",
		Query:       "SELECT email FROM customers GROUP BY email HAVING COUNT(*) > 1",
	},
}

// RunReport executes checks in order. A failing check is recorded and the
// remaining checks still run.
func RunReport(ctx context.Context, db *gorm.DB, checks []Check) []CheckResult {
	results := make([]CheckResult, 0, len(checks))
	for _, ch := range checks {
		res := CheckResult{Kind: ch.Kind, Name: ch.Name, Description: ch.Description}

		start := time.Now()
		rows, err := db.WithContext(ctx).Raw(ch.Query, ch.Args...).Rows()
		if err != nil {
			res.Err = fmt.Errorf("%s: %w", ch.Name, err)
			results = append(results, res)
			continue
		}

		var count int64
		for rows.Next() {
			count++
		}
		if err := rows.Err(); err != nil {
			res.Err = fmt.Errorf("%s: %w", ch.Name, err)
		}
		rows.Close()

		res.Duration = time.Since(start)
		res.RowCount = count
		results = append(results, res)
	}
	return results
}
