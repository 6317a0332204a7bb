package api

import (
	"net/http"

	"crm-api/internal/crm"

	"github.com/gin-gonic/gin"
)

// Handler serves the CRM queries and mutations over gin.
type Handler struct {
	svc *crm.Service
}

// NewHandler returns a Handler backed by svc.
func NewHandler(svc *crm.Service) *Handler {
	return &Handler{svc: svc}
}

// Customers serves GET /query/customers with name_contains, email_equals
// and phone_equals filters.
func (h *Handler) Customers(c *gin.Context) {
	filter := crm.CustomerFilter{
		NameContains: c.Query("name_contains"),
		EmailEquals:  c.Query("email_equals"),
		PhoneEquals:  c.Query("phone_equals"),
	}

	customers, err := h.svc.Customers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, filter.Apply(customers))
}

// Products serves GET /query/products with name and price/stock bound filters.
func (h *Handler) Products(c *gin.Context) {
	var (
		filter = crm.ProductFilter{NameContains: c.Query("name_contains")}
		err    error
	)
	if filter.PriceLT, err = queryDecimal(c, "price_lt"); err != nil {
		writeBadFilter(c, err)
		return
	}
	if filter.PriceGT, err = queryDecimal(c, "price_gt"); err != nil {
		writeBadFilter(c, err)
		return
	}
	if filter.StockLT, err = queryInt(c, "stock_lt"); err != nil {
		writeBadFilter(c, err)
		return
	}
	if filter.StockGT, err = queryInt(c, "stock_gt"); err != nil {
		writeBadFilter(c, err)
		return
	}

	products, err := h.svc.Products(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, filter.Apply(products))
}

// Orders serves GET /query/orders with RFC3339 date and total bound filters.
func (h *Handler) Orders(c *gin.Context) {
	var (
		filter crm.OrderFilter
		err    error
	)
	if filter.OrderDateLT, err = queryTime(c, "order_date_lt"); err != nil {
		writeBadFilter(c, err)
		return
	}
	if filter.OrderDateGT, err = queryTime(c, "order_date_gt"); err != nil {
		writeBadFilter(c, err)
		return
	}
	if filter.TotalAmountLT, err = queryDecimal(c, "total_amount_lt"); err != nil {
		writeBadFilter(c, err)
		return
	}
	if filter.TotalAmountGT, err = queryDecimal(c, "total_amount_gt"); err != nil {
		writeBadFilter(c, err)
		return
	}

	orders, err := h.svc.Orders(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, filter.Apply(orders))
}

// OrderItems serves GET /query/orderItems.
func (h *Handler) OrderItems(c *gin.Context) {
	items, err := h.svc.OrderItems(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Categories serves GET /query/categories.
func (h *Handler) Categories(c *gin.Context) {
	categories, err := h.svc.Categories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// CreateCustomer serves POST /mutation/createCustomer.
func (h *Handler) CreateCustomer(c *gin.Context) {
	var input crm.CustomerInput
	if !bindJSON(c, &input) {
		return
	}

	res, err := h.svc.CreateCustomer(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// BulkCreateCustomers serves POST /mutation/bulkCreateCustomers. Rejected
// records are reported in the body, so a partial batch is still a 200.
func (h *Handler) BulkCreateCustomers(c *gin.Context) {
	var input struct {
		Customers []crm.CustomerInput `json:"customers"`
	}
	if !bindJSON(c, &input) {
		return
	}

	res, err := h.svc.BulkCreateCustomers(c.Request.Context(), input.Customers)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// CreateProduct serves POST /mutation/createProduct.
func (h *Handler) CreateProduct(c *gin.Context) {
	var input crm.ProductInput
	if !bindJSON(c, &input) {
		return
	}

	product, err := h.svc.CreateProduct(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// CreateOrder serves POST /mutation/createOrder.
func (h *Handler) CreateOrder(c *gin.Context) {
	var input crm.OrderInput
	if !bindJSON(c, &input) {
		return
	}

	order, err := h.svc.CreateOrder(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// CreateCategory serves POST /mutation/createCategory.
func (h *Handler) CreateCategory(c *gin.Context) {
	var input crm.CategoryInput
	if !bindJSON(c, &input) {
		return
	}

	category, err := h.svc.CreateCategory(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}
