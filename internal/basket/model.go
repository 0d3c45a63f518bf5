package basket

import "github.com/shopspring/decimal"

// Item is a single line in a shopping cart.
type Item struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Color       string          `json:"color,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// Subtotal is quantity times unit price in decimal arithmetic.
func (it Item) Subtotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// ShoppingCart holds one user's cart. There is at most one cart per
// user name; the user name is the store key.
type ShoppingCart struct {
	UserName string `json:"userName"`
	Items    []Item `json:"items"`
}

// Total derives the cart total from its items. The total is never
// stored alongside the cart, so it cannot drift from the lines.
func (c *ShoppingCart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}
