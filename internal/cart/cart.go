// Package cart holds the customer's cart: an insertion-ordered collection of
// line items, persisted after every mutation.
package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Item is one cart line. Quantity is always at least 1.
type Item struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	ImageRef  *string         `json:"imageRef,omitempty"`
	Quantity  int             `json:"quantity"`
}

func (i Item) clone() Item {
	if i.ImageRef != nil {
		ref := *i.ImageRef
		i.ImageRef = &ref
	}
	return i
}

// Totals are values derived from the cart contents.
type Totals struct {
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// Cart is not safe for concurrent use; Manager serialises access.
type Cart struct {
	order []string
	items map[string]*Item
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{items: make(map[string]*Item)}
}

// Add increments the quantity of an existing line or appends item with
// quantity 1. The incoming quantity is ignored.
func (c *Cart) Add(item Item) {
	if existing, ok := c.items[item.ID]; ok {
		existing.Quantity++
		return
	}
	line := item.clone()
	line.Quantity = 1
	c.items[line.ID] = &line
	c.order = append(c.order, line.ID)
}

// Remove deletes the line with id. Unknown ids are ignored.
func (c *Cart) Remove(id string) {
	if _, ok := c.items[id]; !ok {
		return
	}
	delete(c.items, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Increment adds one to the line's quantity.
func (c *Cart) Increment(id string) {
	if line, ok := c.items[id]; ok {
		line.Quantity++
	}
}

// Decrement subtracts one; a line at quantity 1 is removed.
func (c *Cart) Decrement(id string) {
	line, ok := c.items[id]
	if !ok {
		return
	}
	if line.Quantity <= 1 {
		c.Remove(id)
		return
	}
	line.Quantity--
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.order = nil
	c.items = make(map[string]*Item)
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.order)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.order) == 0
}

// Items returns deep copies of the lines in insertion order.
func (c *Cart) Items() []Item {
	items := make([]Item, 0, len(c.order))
	for _, id := range c.order {
		items = append(items, c.items[id].clone())
	}
	return items
}

// Totals computes Σ quantity and Σ unitPrice×quantity.
func (c *Cart) Totals() Totals {
	t := Totals{TotalPrice: decimal.Zero}
	for _, id := range c.order {
		line := c.items[id]
		t.TotalItems += line.Quantity
		t.TotalPrice = t.TotalPrice.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return t
}

// Clone returns an independent copy of the cart.
func (c *Cart) Clone() *Cart {
	clone := New()
	for _, item := range c.Items() {
		line := item
		clone.items[line.ID] = &line
		clone.order = append(clone.order, line.ID)
	}
	return clone
}

// MarshalJSON encodes the cart as an ordered list of lines.
func (c *Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Items())
}

// UnmarshalJSON decodes an ordered list of lines. Lines with a non-positive
// quantity or a duplicate id are dropped.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	c.Clear()
	for _, item := range items {
		if item.Quantity < 1 || item.ID == "" {
			continue
		}
		if _, dup := c.items[item.ID]; dup {
			continue
		}
		line := item.clone()
		c.items[line.ID] = &line
		c.order = append(c.order, line.ID)
	}
	return nil
}
