package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status tracks an order through its lifecycle. Orders enter the system
// as pending; downstream flows move them forward.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// PaymentMethod enumerates the accepted payment instruments.
type PaymentMethod int

const (
	PaymentCreditCard PaymentMethod = 1
	PaymentDebitCard  PaymentMethod = 2
)

// Address is the shipping/billing value object.
type Address struct {
	FirstName    string `json:"firstName" validate:"required"`
	LastName     string `json:"lastName" validate:"required"`
	EmailAddress string `json:"emailAddress" validate:"required,email"`
	AddressLine  string `json:"addressLine" validate:"required"`
	Country      string `json:"country" validate:"required"`
	State        string `json:"state"`
	ZipCode      string `json:"zipCode" validate:"required"`
}

// Payment is the card value object. Only placeholder card data moves
// through this system; real PAN handling lives elsewhere.
type Payment struct {
	CardName   string        `json:"cardName" validate:"required"`
	CardNumber string        `json:"cardNumber" validate:"required"`
	Expiration string        `json:"expiration" validate:"required"`
	CVV        string        `json:"cvv" validate:"required"`
	Method     PaymentMethod `json:"paymentMethod" validate:"oneof=1 2"`
}

// Item is one order line. Items belong to exactly one order and are
// written and deleted with it.
type Item struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Order is the aggregate produced by the creation pipeline and nothing
// else; both the HTTP endpoint and the event consumer go through it.
type Order struct {
	ID         string          `json:"orderId"`
	CustomerID string          `json:"customerId"`
	OrderName  string          `json:"orderName"`
	Shipping   Address         `json:"shippingAddress"`
	Billing    Address         `json:"billingAddress"`
	Payment    Payment         `json:"payment"`
	Status     Status          `json:"status"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Items      []Item          `json:"items"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// NewOrder builds a pending aggregate from an already-validated
// command. The total is derived from the lines here, not copied in.
func NewOrder(cmd CreateOrderCommand) *Order {
	o := &Order{
		ID:         uuid.NewString(),
		CustomerID: cmd.CustomerID,
		OrderName:  cmd.OrderName,
		Shipping:   cmd.Shipping,
		Billing:    cmd.Billing,
		Payment:    cmd.Payment,
		Status:     StatusPending,
		CreatedAt:  time.Now().UTC(),
	}

	total := decimal.Zero
	for _, line := range cmd.Items {
		o.Items = append(o.Items, Item{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.Price,
		})
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	o.TotalPrice = total

	return o
}
