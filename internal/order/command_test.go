package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func validCommand() CreateOrderCommand {
	addr := Address{
		FirstName:    "Sven",
		LastName:     "Nilsen",
		EmailAddress: "swn@example.com",
		AddressLine:  "Storgata 1",
		Country:      "Norway",
		State:        "Oslo",
		ZipCode:      "0155",
	}
	return CreateOrderCommand{
		CustomerID: "swn",
		OrderName:  "swn",
		Shipping:   addr,
		Billing:    addr,
		Payment: Payment{
			CardName:   "Sven Nilsen",
			CardNumber: "4111111111111111",
			Expiration: "12/28",
			CVV:        "123",
			Method:     PaymentCreditCard,
		},
		Items: []OrderLine{
			{ProductID: "prod-x", Quantity: 2, Price: decimal.RequireFromString("25.00")},
		},
	}
}

func TestCommandValidate_ValidCommandPasses(t *testing.T) {
	require.NoError(t, validCommand().Validate())
}

func TestCommandValidate_EmptyItemsRejected(t *testing.T) {
	cmd := validCommand()
	cmd.Items = nil

	err := cmd.Validate()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Fields, 1)
	require.Equal(t, "Items", ve.Fields[0].Field)
}

func TestCommandValidate_UnknownPaymentMethodRejected(t *testing.T) {
	cmd := validCommand()
	cmd.Payment.Method = 7

	err := cmd.Validate()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Fields, 1)
	require.Equal(t, "Payment.Method", ve.Fields[0].Field)
	require.Equal(t, "must be one of 1 2", ve.Fields[0].Reason)
}

func TestCommandValidate_NegativePriceRejected(t *testing.T) {
	cmd := validCommand()
	cmd.Items[0].Price = decimal.RequireFromString("-0.01")

	err := cmd.Validate()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Fields, 1)
	require.Equal(t, "Items[0].Price", ve.Fields[0].Field)
}

func TestCommandValidate_ErrorMessageNamesFields(t *testing.T) {
	cmd := validCommand()
	cmd.OrderName = ""

	err := cmd.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid order command")
	require.Contains(t, err.Error(), "OrderName is required")
}
