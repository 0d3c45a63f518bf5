package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, orderID string) (*Order, error)
	ListByUser(ctx context.Context, customerID string) ([]Order, error)
}

type repo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

// Create writes the order and its items in one transaction. Either the
// whole aggregate lands or none of it does.
func (r *repo) Create(ctx context.Context, o *Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (
            id, customer_id, order_name,
            ship_first_name, ship_last_name, ship_email_address, ship_address_line, ship_country, ship_state, ship_zip_code,
            bill_first_name, bill_last_name, bill_email_address, bill_address_line, bill_country, bill_state, bill_zip_code,
            card_name, card_number, expiration, cvv, payment_method,
            status, total_price, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`,
		o.ID, o.CustomerID, o.OrderName,
		o.Shipping.FirstName, o.Shipping.LastName, o.Shipping.EmailAddress, o.Shipping.AddressLine, o.Shipping.Country, o.Shipping.State, o.Shipping.ZipCode,
		o.Billing.FirstName, o.Billing.LastName, o.Billing.EmailAddress, o.Billing.AddressLine, o.Billing.Country, o.Billing.State, o.Billing.ZipCode,
		o.Payment.CardName, o.Payment.CardNumber, o.Payment.Expiration, o.Payment.CVV, o.Payment.Method,
		o.Status, o.TotalPrice, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, it := range o.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (id, order_id, product_id, quantity, price)
             VALUES ($1, $2, $3, $4, $5)`,
			uuid.NewString(), o.ID, it.ProductID, it.Quantity, it.Price,
		)
		if err != nil {
			return fmt.Errorf("insert order_item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetByID returns the order with its items, or (nil, nil) when no such
// order exists.
func (r *repo) GetByID(ctx context.Context, orderID string) (*Order, error) {
	var o Order
	err := r.db.QueryRowContext(ctx,
		`SELECT id, customer_id, order_name,
            ship_first_name, ship_last_name, ship_email_address, ship_address_line, ship_country, ship_state, ship_zip_code,
            bill_first_name, bill_last_name, bill_email_address, bill_address_line, bill_country, bill_state, bill_zip_code,
            card_name, card_number, expiration, cvv, payment_method,
            status, total_price, created_at
         FROM orders WHERE id = $1`,
		orderID,
	).Scan(
		&o.ID, &o.CustomerID, &o.OrderName,
		&o.Shipping.FirstName, &o.Shipping.LastName, &o.Shipping.EmailAddress, &o.Shipping.AddressLine, &o.Shipping.Country, &o.Shipping.State, &o.Shipping.ZipCode,
		&o.Billing.FirstName, &o.Billing.LastName, &o.Billing.EmailAddress, &o.Billing.AddressLine, &o.Billing.Country, &o.Billing.State, &o.Billing.ZipCode,
		&o.Payment.CardName, &o.Payment.CardNumber, &o.Payment.Expiration, &o.Payment.CVV, &o.Payment.Method,
		&o.Status, &o.TotalPrice, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT product_id, quantity, price
         FROM order_items WHERE order_id = $1`,
		o.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("select order_items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.Price); err != nil {
			return nil, fmt.Errorf("scan order_item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return &o, nil
}

// ListByUser returns the user's orders newest first, items included.
func (r *repo) ListByUser(ctx context.Context, customerID string) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, customer_id, order_name,
            ship_first_name, ship_last_name, ship_email_address, ship_address_line, ship_country, ship_state, ship_zip_code,
            bill_first_name, bill_last_name, bill_email_address, bill_address_line, bill_country, bill_state, bill_zip_code,
            card_name, card_number, expiration, cvv, payment_method,
            status, total_price, created_at
         FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`,
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID, &o.CustomerID, &o.OrderName,
			&o.Shipping.FirstName, &o.Shipping.LastName, &o.Shipping.EmailAddress, &o.Shipping.AddressLine, &o.Shipping.Country, &o.Shipping.State, &o.Shipping.ZipCode,
			&o.Billing.FirstName, &o.Billing.LastName, &o.Billing.EmailAddress, &o.Billing.AddressLine, &o.Billing.Country, &o.Billing.State, &o.Billing.ZipCode,
			&o.Payment.CardName, &o.Payment.CardNumber, &o.Payment.Expiration, &o.Payment.CVV, &o.Payment.Method,
			&o.Status, &o.TotalPrice, &o.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	for i := range orders {
		itemRows, err := r.db.QueryContext(ctx,
			`SELECT product_id, quantity, price FROM order_items WHERE order_id = $1`,
			orders[i].ID,
		)
		if err != nil {
			return nil, fmt.Errorf("select order_items: %w", err)
		}
		for itemRows.Next() {
			var it Item
			if err := itemRows.Scan(&it.ProductID, &it.Quantity, &it.Price); err != nil {
				itemRows.Close()
				return nil, fmt.Errorf("scan order_item: %w", err)
			}
			orders[i].Items = append(orders[i].Items, it)
		}
		itemRows.Close()
	}

	return orders, nil
}
