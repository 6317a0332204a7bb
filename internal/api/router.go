// Package api exposes the CRM service over HTTP. Each query field and
// mutation name is registered explicitly in a dispatch table.
package api

import (
	"net/http"

	"crm-api/internal/crm"

	"github.com/gin-gonic/gin"
)

// NewRouter builds a gin engine with recovery, request ids and request
// logging, and registers every CRM route.
func NewRouter(svc *crm.Service) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger())
	RegisterRoutes(router, svc)
	return router
}

// RegisterRoutes mounts queries under GET /query/<name>, mutations under
// POST /mutation/<name> and a health probe at /healthz.
func RegisterRoutes(router *gin.Engine, svc *crm.Service) {
	h := NewHandler(svc)

	queries := map[string]gin.HandlerFunc{
		"customers":  h.Customers,
		"products":   h.Products,
		"orders":     h.Orders,
		"orderItems": h.OrderItems,
		"categories": h.Categories,
	}
	mutations := map[string]gin.HandlerFunc{
		"createCustomer":      h.CreateCustomer,
		"bulkCreateCustomers": h.BulkCreateCustomers,
		"createProduct":       h.CreateProduct,
		"createOrder":         h.CreateOrder,
		"createCategory":      h.CreateCategory,
	}

	q := router.Group("/query")
	for name, fn := range queries {
		q.GET("/"+name, fn)
	}
	m := router.Group("/mutation")
	for name, fn := range mutations {
		m.POST("/"+name, fn)
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
