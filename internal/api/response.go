package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"crm-api/internal/crm"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{crm.ErrDuplicateEmail, http.StatusConflict, "duplicate_email"},
	{crm.ErrInvalidPhone, http.StatusBadRequest, "invalid_phone"},
	{crm.ErrNonPositivePrice, http.StatusBadRequest, "non_positive_price"},
	{crm.ErrNegativeStock, http.StatusBadRequest, "negative_stock"},
	{crm.ErrPriceOutOfRange, http.StatusBadRequest, "price_out_of_range"},
	{crm.ErrTotalOutOfRange, http.StatusBadRequest, "total_out_of_range"},
	{crm.ErrEmptyOrder, http.StatusBadRequest, "empty_order"},
	{crm.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{crm.ErrInvalidCustomer, http.StatusUnprocessableEntity, "invalid_customer"},
	{crm.ErrInvalidProduct, http.StatusUnprocessableEntity, "invalid_product"},
	{crm.ErrInvalidCategory, http.StatusUnprocessableEntity, "invalid_category"},
}

func writeError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.err) {
			continue
		}
		body := gin.H{"error": m.code, "message": err.Error()}
		var ref *crm.ReferenceError
		if errors.As(err, &ref) {
			body["id"] = ref.ID
		}
		c.JSON(m.status, body)
		return
	}

	log.Printf("[%s] %s %s failed: %v", c.GetString(requestIDKey), c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "storage_failure", "message": "storage failure"})
}

func writeBadFilter(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_filter", "message": err.Error()})
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "invalid json body: " + err.Error()})
		return false
	}
	return true
}

func queryDecimal(c *gin.Context, key string) (*decimal.Decimal, error) {
	raw, ok := c.GetQuery(key)
	if !ok {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not a number", key, raw)
	}
	return &d, nil
}

func queryInt(c *gin.Context, key string) (*int, error) {
	raw, ok := c.GetQuery(key)
	if !ok {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not an integer", key, raw)
	}
	return &n, nil
}

func queryTime(c *gin.Context, key string) (*time.Time, error) {
	raw, ok := c.GetQuery(key)
	if !ok {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not an RFC3339 timestamp", key, raw)
	}
	return &t, nil
}
