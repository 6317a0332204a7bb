package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"crm-api/internal/crm"
	"crm-api/internal/data"

	"github.com/olekukonko/tablewriter"
)

func printReport(w io.Writer, results []data.CheckResult) error {
	table := tablewriter.NewWriter(w)
	table.Header("Kind", "Check", "Description", "Duration", "Rows", "Status")
	for _, res := range results {
		status := "OK"
		switch {
		case res.Err != nil:
			status = "ERR: " + res.Err.Error()
		case !res.OK():
			status = "VIOLATION"
		}
		row := []string{
			res.Kind,
			res.Name,
			truncateText(res.Description, 40),
			res.Duration.Round(time.Microsecond).String(),
			strconv.FormatInt(res.RowCount, 10),
			status,
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func printCollection(ctx context.Context, w io.Writer, svc *crm.Service, name string) error {
	var (
		header []string
		rows   [][]string
	)

	switch name {
	case "customers":
		customers, err := svc.Customers(ctx)
		if err != nil {
			return err
		}
		header = []string{"ID", "Name", "Email", "Phone"}
		for _, c := range customers {
			rows = append(rows, []string{id(c.ID), c.Name, c.Email, c.Phone})
		}
	case "products":
		products, err := svc.Products(ctx)
		if err != nil {
			return err
		}
		header = []string{"ID", "Name", "Price", "Stock", "Category"}
		for _, p := range products {
			category := ""
			if p.Category != nil {
				category = p.Category.Name
			}
			rows = append(rows, []string{id(p.ID), truncateText(p.Name, 40), p.Price.StringFixed(2), strconv.Itoa(p.Stock), category})
		}
	case "orders":
		orders, err := svc.Orders(ctx)
		if err != nil {
			return err
		}
		header = []string{"ID", "Customer", "Date", "Total", "Products"}
		for _, o := range orders {
			customer := id(o.CustomerID)
			if o.Customer != nil {
				customer = o.Customer.Name
			}
			names := make([]string, 0, len(o.Products))
			for _, p := range o.Products {
				names = append(names, p.Name)
			}
			rows = append(rows, []string{
				id(o.ID),
				customer,
				o.OrderDate.Format(time.DateTime),
				o.TotalAmount.StringFixed(2),
				truncateText(strings.Join(names, ", "), 50),
			})
		}
	case "orderItems":
		items, err := svc.OrderItems(ctx)
		if err != nil {
			return err
		}
		header = []string{"ID", "Order", "Product", "Unit price"}
		for _, it := range items {
			rows = append(rows, []string{id(it.ID), id(it.OrderID), id(it.ProductID), it.UnitPrice.StringFixed(2)})
		}
	case "categories":
		categories, err := svc.Categories(ctx)
		if err != nil {
			return err
		}
		header = []string{"ID", "Name", "Description", "Products"}
		for _, c := range categories {
			rows = append(rows, []string{id(c.ID), c.Name, truncateText(c.Description, 40), strconv.Itoa(len(c.Products))})
		}
	default:
		return fmt.Errorf("unknown collection %q", name)
	}

	table := tablewriter.NewWriter(w)
	table.Header(header)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func id(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func truncateText(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "…"
}
