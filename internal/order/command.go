package order

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// OrderLine is one (product, quantity, price) entry on the inbound
// command.
type OrderLine struct {
	ProductID string          `json:"productId" validate:"required"`
	Quantity  int             `json:"quantity" validate:"gt=0"`
	Price     decimal.Decimal `json:"price" validate:"gte=0"`
}

// CreateOrderCommand is the single inbound shape for order creation.
// The HTTP endpoint decodes it from the request body; the event
// consumer maps the checkout event into it. Both funnel into
// Service.CreateOrder.
type CreateOrderCommand struct {
	CustomerID string      `json:"customerId" validate:"required"`
	OrderName  string      `json:"orderName" validate:"required"`
	Shipping   Address     `json:"shippingAddress"`
	Billing    Address     `json:"billingAddress"`
	Payment    Payment     `json:"payment"`
	Items      []OrderLine `json:"items" validate:"required,min=1,dive"`
}

// FieldError names one failed field on a rejected command.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError reports every failed field, not just the first, so
// API callers and the consumer log get complete diagnostics in one
// pass.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Reason)
	}
	return "invalid order command: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(decimalAsFloat, decimal.Decimal{})
	return v
}

// decimalAsFloat lets numeric tags (gte, gt) apply to decimal fields.
// Range checks do not need exactness, only sign and magnitude.
func decimalAsFloat(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

// Validate checks the command and returns a *ValidationError carrying
// all failed fields, or nil.
func (cmd CreateOrderCommand) Validate() error {
	err := validate.Struct(cmd)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate command: %w", err)
	}

	ve := &ValidationError{}
	for _, fe := range verrs {
		ve.Fields = append(ve.Fields, FieldError{
			Field:  strings.TrimPrefix(fe.Namespace(), "CreateOrderCommand."),
			Reason: reasonFor(fe),
		})
	}
	return ve
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "min":
		return "must have at least " + fe.Param() + " entries"
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}
