package events

import "checkout-service/internal/order"

// CommandFromBasketCheckedOut maps the wire event onto the order
// pipeline's command, field for field. The event carries a single
// address, used for both shipping and billing.
func CommandFromBasketCheckedOut(ev BasketCheckedOut) order.CreateOrderCommand {
	addr := order.Address{
		FirstName:    ev.FirstName,
		LastName:     ev.LastName,
		EmailAddress: ev.EmailAddress,
		AddressLine:  ev.AddressLine,
		Country:      ev.Country,
		State:        ev.State,
		ZipCode:      ev.ZipCode,
	}

	cmd := order.CreateOrderCommand{
		CustomerID: ev.UserName,
		OrderName:  ev.UserName,
		Shipping:   addr,
		Billing:    addr,
		Payment: order.Payment{
			CardName:   ev.CardName,
			CardNumber: ev.CardNumber,
			Expiration: ev.Expiration,
			CVV:        ev.CVV,
			Method:     order.PaymentMethod(ev.PaymentMethod),
		},
	}

	for _, it := range ev.Items {
		cmd.Items = append(cmd.Items, order.OrderLine{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}

	return cmd
}
