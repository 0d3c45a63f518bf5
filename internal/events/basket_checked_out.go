package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"checkout-service/internal/basket"
)

// BasketCheckedOutType identifies the checkout event on the wire.
const BasketCheckedOutType = "BasketCheckedOut"

// ErrBadEvent marks wire bytes that cannot be turned into a valid
// checkout event. The dispatcher drops such messages after logging.
var ErrBadEvent = errors.New("events: bad basket checkout event")

// CheckoutItem is one basket line carried on the event.
type CheckoutItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// BasketCheckedOut is the wire contract for a completed checkout. The
// identity fields (EventID, OccurredAt) are assigned once by
// NewBasketCheckedOut and never touched again; decoding validates them
// instead of regenerating them.
type BasketCheckedOut struct {
	EventID       string    `json:"eventId"`
	EventType     string    `json:"eventType"`
	OccurredAt    time.Time `json:"occurredAt"`
	CorrelationID string    `json:"correlationId,omitempty"`

	UserName   string          `json:"userName"`
	TotalPrice decimal.Decimal `json:"totalPrice"`

	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	EmailAddress string `json:"emailAddress"`
	AddressLine  string `json:"addressLine"`
	Country      string `json:"country"`
	State        string `json:"state"`
	ZipCode      string `json:"zipCode"`

	CardName      string `json:"cardName"`
	CardNumber    string `json:"cardNumber"`
	Expiration    string `json:"expiration"`
	CVV           string `json:"cvv"`
	PaymentMethod int    `json:"paymentMethod"`

	Items []CheckoutItem `json:"items"`
}

// CheckoutDetails is the caller-supplied half of the event: shipping
// address and payment instrument collected at checkout time.
type CheckoutDetails struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	EmailAddress string `json:"emailAddress"`
	AddressLine  string `json:"addressLine"`
	Country      string `json:"country"`
	State        string `json:"state"`
	ZipCode      string `json:"zipCode"`

	CardName      string `json:"cardName"`
	CardNumber    string `json:"cardNumber"`
	Expiration    string `json:"expiration"`
	CVV           string `json:"cvv"`
	PaymentMethod int    `json:"paymentMethod"`

	CorrelationID string `json:"-"`
}

// NewBasketCheckedOut builds the event for a cart that has just been
// deleted. The total is derived from the cart lines at this moment;
// there is no other source for it once the basket is gone.
func NewBasketCheckedOut(c *basket.ShoppingCart, d CheckoutDetails) BasketCheckedOut {
	ev := BasketCheckedOut{
		EventID:       uuid.NewString(),
		EventType:     BasketCheckedOutType,
		OccurredAt:    time.Now().UTC(),
		CorrelationID: d.CorrelationID,

		UserName:   c.UserName,
		TotalPrice: c.Total(),

		FirstName:    d.FirstName,
		LastName:     d.LastName,
		EmailAddress: d.EmailAddress,
		AddressLine:  d.AddressLine,
		Country:      d.Country,
		State:        d.State,
		ZipCode:      d.ZipCode,

		CardName:      d.CardName,
		CardNumber:    d.CardNumber,
		Expiration:    d.Expiration,
		CVV:           d.CVV,
		PaymentMethod: d.PaymentMethod,
	}

	for _, it := range c.Items {
		ev.Items = append(ev.Items, CheckoutItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.UnitPrice,
		})
	}

	return ev
}

// EncodeBasketCheckedOut serializes the event for the broker.
func EncodeBasketCheckedOut(ev BasketCheckedOut) ([]byte, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", BasketCheckedOutType, err)
	}
	return body, nil
}

// DecodeBasketCheckedOut parses wire bytes back into the event and
// checks its identity. All failures wrap ErrBadEvent.
func DecodeBasketCheckedOut(body []byte) (BasketCheckedOut, error) {
	var ev BasketCheckedOut
	if err := json.Unmarshal(body, &ev); err != nil {
		return BasketCheckedOut{}, fmt.Errorf("%w: %v", ErrBadEvent, err)
	}
	if err := ev.validateIdentity(); err != nil {
		return BasketCheckedOut{}, fmt.Errorf("%w: %v", ErrBadEvent, err)
	}
	return ev, nil
}

func (ev BasketCheckedOut) validateIdentity() error {
	switch {
	case ev.EventType != BasketCheckedOutType:
		return fmt.Errorf("unexpected eventType %q", ev.EventType)
	case ev.EventID == "":
		return errors.New("missing eventId")
	case ev.OccurredAt.IsZero():
		return errors.New("missing occurredAt")
	case ev.UserName == "":
		return errors.New("missing userName")
	}
	return nil
}
