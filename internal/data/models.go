package data

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits kept by every money column.
const MoneyScale = 2

// Largest values the decimal(10,2) price and decimal(12,2) total columns hold.
var (
	MaxPrice       = decimal.RequireFromString("99999999.99")
	MaxTotalAmount = decimal.RequireFromString("9999999999.99")
)

// Category groups products. Names are not required to be unique.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Products    []Product `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

// Product is a sellable item. Orphan products (no category) are allowed.
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	Image       *string         `gorm:"size:255" json:"image,omitempty"`
	CategoryID  *uint           `gorm:"index" json:"category_id,omitempty"`
	Category    *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// Customer owns orders. Email carries a unique index so racing inserts
// cannot both succeed.
type Customer struct {
	ID     uint    `gorm:"primaryKey" json:"id"`
	Name   string  `gorm:"size:100;not null" json:"name"`
	Email  string  `gorm:"size:254;not null;uniqueIndex" json:"email"`
	Phone  string  `gorm:"size:20" json:"phone,omitempty"`
	Orders []Order `gorm:"foreignKey:CustomerID" json:"orders,omitempty"`
}

// Order is a customer purchase. TotalAmount is fixed when the order is
// created and never recomputed.
type Order struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CustomerID  uint            `gorm:"not null;index" json:"customer_id"`
	Customer    *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	OrderDate   time.Time       `gorm:"not null;index" json:"order_date"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Items       []OrderItem     `gorm:"foreignKey:OrderID" json:"-"`
	// Products mirrors Items for readers; it is not a column.
	Products []Product `gorm:"-" json:"products"`
}

// OrderItem links one order to one product and keeps the price the product
// had when the order was placed.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
}

// fillProducts copies the preloaded item products onto Products.
func (o *Order) fillProducts() {
	o.Products = make([]Product, 0, len(o.Items))
	for _, item := range o.Items {
		if item.Product != nil {
			o.Products = append(o.Products, *item.Product)
		}
	}
}
