package order

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Statements mirrored from repository.go so the regexp matcher sees
// byte-identical SQL.
const (
	insertOrderSQL = `INSERT INTO orders (
            id, customer_id, order_name,
            ship_first_name, ship_last_name, ship_email_address, ship_address_line, ship_country, ship_state, ship_zip_code,
            bill_first_name, bill_last_name, bill_email_address, bill_address_line, bill_country, bill_state, bill_zip_code,
            card_name, card_number, expiration, cvv, payment_method,
            status, total_price, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`

	insertItemSQL = `INSERT INTO order_items (id, order_id, product_id, quantity, price)
             VALUES ($1, $2, $3, $4, $5)`

	selectOrderByIDSQL = `SELECT id, customer_id, order_name,
            ship_first_name, ship_last_name, ship_email_address, ship_address_line, ship_country, ship_state, ship_zip_code,
            bill_first_name, bill_last_name, bill_email_address, bill_address_line, bill_country, bill_state, bill_zip_code,
            card_name, card_number, expiration, cvv, payment_method,
            status, total_price, created_at
         FROM orders WHERE id = $1`

	selectItemsByOrderSQL = `SELECT product_id, quantity, price
         FROM order_items WHERE order_id = $1`

	selectOrdersByUserSQL = `SELECT id, customer_id, order_name,
            ship_first_name, ship_last_name, ship_email_address, ship_address_line, ship_country, ship_state, ship_zip_code,
            bill_first_name, bill_last_name, bill_email_address, bill_address_line, bill_country, bill_state, bill_zip_code,
            card_name, card_number, expiration, cvv, payment_method,
            status, total_price, created_at
         FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`

	selectItemsFlatSQL = `SELECT product_id, quantity, price FROM order_items WHERE order_id = $1`
)

var orderColumns = []string{
	"id", "customer_id", "order_name",
	"ship_first_name", "ship_last_name", "ship_email_address", "ship_address_line", "ship_country", "ship_state", "ship_zip_code",
	"bill_first_name", "bill_last_name", "bill_email_address", "bill_address_line", "bill_country", "bill_state", "bill_zip_code",
	"card_name", "card_number", "expiration", "cvv", "payment_method",
	"status", "total_price", "created_at",
}

func storedOrder(now time.Time) *Order {
	addr := Address{
		FirstName:    "Sven",
		LastName:     "Nilsen",
		EmailAddress: "swn@example.com",
		AddressLine:  "Storgata 1",
		Country:      "Norway",
		State:        "Oslo",
		ZipCode:      "0155",
	}
	return &Order{
		ID:         "order-123",
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
		Status:     StatusPending,
		TotalPrice: decimal.RequireFromString("50.00"),
		CreatedAt:  now,
		Items: []Item{
			{ProductID: "prod-x", Quantity: 2, Price: decimal.RequireFromString("25.00")},
		},
	}
}

func orderArgs(o *Order) []driver.Value {
	return []driver.Value{
		o.ID, o.CustomerID, o.OrderName,
		o.Shipping.FirstName, o.Shipping.LastName, o.Shipping.EmailAddress, o.Shipping.AddressLine, o.Shipping.Country, o.Shipping.State, o.Shipping.ZipCode,
		o.Billing.FirstName, o.Billing.LastName, o.Billing.EmailAddress, o.Billing.AddressLine, o.Billing.Country, o.Billing.State, o.Billing.ZipCode,
		o.Payment.CardName, o.Payment.CardNumber, o.Payment.Expiration, o.Payment.CVV, o.Payment.Method,
		o.Status, o.TotalPrice, o.CreatedAt,
	}
}

func TestRepositoryCreate_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	o := storedOrder(time.Now())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(insertOrderSQL)).
		WithArgs(orderArgs(o)...).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertItemSQL)).
		WithArgs(sqlmock.AnyArg(), o.ID, "prod-x", 2, decimal.RequireFromString("25.00")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), o))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreate_OrderInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	o := storedOrder(time.Now())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(insertOrderSQL)).
		WithArgs(orderArgs(o)...).
		WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	err = repo.Create(context.Background(), o)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreate_ItemInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	o := storedOrder(time.Now())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(insertOrderSQL)).
		WithArgs(orderArgs(o)...).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertItemSQL)).
		WithArgs(sqlmock.AnyArg(), o.ID, "prod-x", 2, decimal.RequireFromString("25.00")).
		WillReturnError(errors.New("item insert failed"))
	mock.ExpectRollback()

	err = repo.Create(context.Background(), o)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByID_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	now := time.Now().UTC().Truncate(time.Second)
	o := storedOrder(now)

	mock.ExpectQuery(regexp.QuoteMeta(selectOrderByIDSQL)).
		WithArgs(o.ID).
		WillReturnRows(sqlmock.NewRows(orderColumns).AddRow(
			o.ID, o.CustomerID, o.OrderName,
			o.Shipping.FirstName, o.Shipping.LastName, o.Shipping.EmailAddress, o.Shipping.AddressLine, o.Shipping.Country, o.Shipping.State, o.Shipping.ZipCode,
			o.Billing.FirstName, o.Billing.LastName, o.Billing.EmailAddress, o.Billing.AddressLine, o.Billing.Country, o.Billing.State, o.Billing.ZipCode,
			o.Payment.CardName, o.Payment.CardNumber, o.Payment.Expiration, o.Payment.CVV, int64(o.Payment.Method),
			string(o.Status), "50.00", now,
		))
	mock.ExpectQuery(regexp.QuoteMeta(selectItemsByOrderSQL)).
		WithArgs(o.ID).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "quantity", "price"}).
			AddRow("prod-x", 2, "25.00"))

	got, err := repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	require.Equal(t, o.ID, got.ID)
	require.Equal(t, "swn", got.CustomerID)
	require.Equal(t, StatusPending, got.Status)
	require.Equal(t, PaymentCreditCard, got.Payment.Method)
	require.Equal(t, "0155", got.Shipping.ZipCode)
	require.True(t, got.TotalPrice.Equal(decimal.RequireFromString("50.00")))
	require.Len(t, got.Items, 1)
	require.Equal(t, "prod-x", got.Items[0].ProductID)
	require.Equal(t, 2, got.Items[0].Quantity)
	require.True(t, got.Items[0].Price.Equal(decimal.RequireFromString("25.00")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(selectOrderByIDSQL)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	o, err := repo.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	require.Nil(t, o)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListByUser_EmptyResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(selectOrdersByUserSQL)).
		WithArgs("user-empty").
		WillReturnRows(sqlmock.NewRows(orderColumns))

	orders, err := repo.ListByUser(context.Background(), "user-empty")
	require.NoError(t, err)
	require.Empty(t, orders)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListByUser_ReturnsEachOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	now := time.Now().UTC().Truncate(time.Second)
	o := storedOrder(now)

	rows := sqlmock.NewRows(orderColumns)
	for _, id := range []string{"order-a", "order-b"} {
		rows.AddRow(
			id, o.CustomerID, o.OrderName,
			o.Shipping.FirstName, o.Shipping.LastName, o.Shipping.EmailAddress, o.Shipping.AddressLine, o.Shipping.Country, o.Shipping.State, o.Shipping.ZipCode,
			o.Billing.FirstName, o.Billing.LastName, o.Billing.EmailAddress, o.Billing.AddressLine, o.Billing.Country, o.Billing.State, o.Billing.ZipCode,
			o.Payment.CardName, o.Payment.CardNumber, o.Payment.Expiration, o.Payment.CVV, int64(o.Payment.Method),
			string(o.Status), "50.00", now,
		)
	}
	mock.ExpectQuery(regexp.QuoteMeta(selectOrdersByUserSQL)).
		WithArgs("swn").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta(selectItemsFlatSQL)).
		WithArgs("order-a").
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "quantity", "price"}).
			AddRow("prod-x", 2, "25.00"))
	mock.ExpectQuery(regexp.QuoteMeta(selectItemsFlatSQL)).
		WithArgs("order-b").
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "quantity", "price"}))

	orders, err := repo.ListByUser(context.Background(), "swn")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Equal(t, "order-a", orders[0].ID)
	require.Len(t, orders[0].Items, 1)
	require.Empty(t, orders[1].Items)
	require.NoError(t, mock.ExpectationsWereMet())
}
