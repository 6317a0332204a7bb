// Package crm holds the CRM business rules. Reads go through the query
// facade and writes through the mutation orchestrator. Both sit on a
// data.Store supplied by the caller.
package crm

import (
	"reflect"
	"strings"
	"time"

	"crm-api/internal/data"

	"github.com/go-playground/validator/v10"
)

// Service exposes the CRM queries and mutations.
type Service struct {
	store    data.Store
	validate *validator.Validate
	now      func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the clock used to default order dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService returns a Service over store. Order dates default to time.Now.
func NewService(store data.Store, opts ...Option) *Service {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	s := &Service{store: store, validate: v, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
