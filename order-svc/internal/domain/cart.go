package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartItem struct {
	ItemID    string          `json:"item_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Cart holds items from at most one restaurant. RestaurantID is empty exactly
// when Items is empty.
type Cart struct {
	RestaurantID   string     `json:"restaurant_id,omitempty"`
	RestaurantName string     `json:"restaurant_name,omitempty"`
	Items          []CartItem `json:"items"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func NewCart() *Cart {
	return &Cart{Items: []CartItem{}}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Add increments the line for item.ItemID or appends it with quantity 1.
// A cart bound to another restaurant is only discarded when replace is set.
func (c *Cart) Add(restaurantID, restaurantName string, item CartItem, replace bool) error {
	if !c.IsEmpty() && c.RestaurantID != restaurantID {
		if !replace {
			return ErrCartConflict
		}
		c.Clear()
	}

	if c.IsEmpty() {
		c.RestaurantID = restaurantID
		c.RestaurantName = restaurantName
	}

	if idx := c.indexOf(item.ItemID); idx >= 0 {
		c.Items[idx].Quantity++
		return nil
	}

	item.Quantity = 1
	c.Items = append(c.Items, item)
	return nil
}

func (c *Cart) Remove(itemID string) {
	idx := c.indexOf(itemID)
	if idx < 0 {
		return
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	if c.IsEmpty() {
		c.RestaurantID = ""
		c.RestaurantName = ""
	}
}

// UpdateQuantity sets the quantity of an existing line; quantity <= 0 removes it.
func (c *Cart) UpdateQuantity(itemID string, quantity int) {
	if quantity <= 0 {
		c.Remove(itemID)
		return
	}
	if idx := c.indexOf(itemID); idx >= 0 {
		c.Items[idx].Quantity = quantity
	}
}

func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.RestaurantID = ""
	c.RestaurantName = ""
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Snapshot copies the lines into order items so later cart edits cannot leak into an order.
func (c *Cart) Snapshot() []OrderItem {
	items := make([]OrderItem, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, OrderItem{
			ItemID:    item.ItemID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	return items
}

func (c *Cart) indexOf(itemID string) int {
	for i, item := range c.Items {
		if item.ItemID == itemID {
			return i
		}
	}
	return -1
}
