package cart

import (
	"errors"
	"fmt"
	"strconv"

	"hospitality_pos/internal/billing"
)

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrLineNotFound        = errors.New("cart line not found")
	ErrMeasurementRequired = errors.New("item requires a measurement")
)

// Item is the menu snapshot a line is created from.
type Item struct {
	ID              uint
	Name            string
	Price           billing.Money
	Measurement     string
	BaseMeasurement string
}

// Line is one entry of the cart. Price is captured when the line is first
// added and does not follow later menu price changes.
type Line struct {
	Key         string        `json:"key"`
	MenuItemID  uint          `json:"menu_item_id"`
	Name        string        `json:"name"`
	Price       billing.Money `json:"price"`
	Quantity    int           `json:"quantity"`
	Measurement string        `json:"measurement,omitempty"`
}

func (l Line) Amount() billing.Money {
	return l.Price.Mul(l.Quantity)
}

// Cart is an ordered set of lines keyed by menu item identity. It is not safe
// for concurrent use; Session serialises access.
type Cart struct {
	lines map[string]*Line
	order []string
}

func New() *Cart {
	return &Cart{lines: make(map[string]*Line)}
}

func ItemKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func VariantKey(id uint, measurement string) string {
	return ItemKey(id) + "#" + measurement
}

// LineKey is the key of a line for the item at measurement; an empty
// measurement gives the plain item key.
func LineKey(id uint, measurement string) string {
	if measurement == "" {
		return ItemKey(id)
	}
	return VariantKey(id, measurement)
}

// AddItem adds one of item, merging with an existing line. Measured items are
// refused with ErrMeasurementRequired; add them through AddVariant.
func (c *Cart) AddItem(item Item) (Line, error) {
	if item.Measurement != "" {
		return Line{}, fmt.Errorf("%w: %s", ErrMeasurementRequired, item.Name)
	}
	return c.add(ItemKey(item.ID), Line{
		MenuItemID: item.ID,
		Name:       item.Name,
		Price:      item.Price,
	}), nil
}

// AddVariant adds one of item at the chosen measurement. Each measurement is
// its own line, named after it and priced in proportion to BaseMeasurement.
func (c *Cart) AddVariant(item Item, measurement string) (Line, error) {
	if measurement == "" {
		measurement = item.Measurement
	}
	if measurement == "" {
		return Line{}, fmt.Errorf("%w: %s", ErrMeasurementRequired, item.Name)
	}
	price, err := VariantPrice(item.Price, item.BaseMeasurement, measurement)
	if err != nil {
		return Line{}, err
	}
	return c.add(VariantKey(item.ID, measurement), Line{
		MenuItemID:  item.ID,
		Name:        fmt.Sprintf("%s (%s)", item.Name, measurement),
		Price:       price,
		Measurement: measurement,
	}), nil
}

func (c *Cart) add(key string, line Line) Line {
	if existing, ok := c.lines[key]; ok {
		existing.Quantity++
		return *existing
	}
	line.Key = key
	line.Quantity = 1
	c.lines[key] = &line
	c.order = append(c.order, key)
	return line
}

func (c *Cart) Increment(key string) error {
	l, ok := c.lines[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrLineNotFound, key)
	}
	l.Quantity++
	return nil
}

// Decrement lowers the quantity by one; the line goes away at zero.
func (c *Cart) Decrement(key string) error {
	l, ok := c.lines[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrLineNotFound, key)
	}
	l.Quantity--
	if l.Quantity <= 0 {
		c.remove(key)
	}
	return nil
}

func (c *Cart) Remove(key string) error {
	if _, ok := c.lines[key]; !ok {
		return fmt.Errorf("%w: %s", ErrLineNotFound, key)
	}
	c.remove(key)
	return nil
}

func (c *Cart) remove(key string) {
	delete(c.lines, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Subtotal sums price x quantity over all lines. Never cached.
func (c *Cart) Subtotal() billing.Money {
	var total billing.Money
	for _, l := range c.lines {
		total += l.Amount()
	}
	return total
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, *c.lines[k])
	}
	return out
}

func (c *Cart) Len() int {
	return len(c.order)
}

func (c *Cart) IsEmpty() bool {
	return len(c.order) == 0
}

// Restore replaces the cart contents. Lines with a non-positive quantity are
// dropped; duplicate keys are merged.
func (c *Cart) Restore(lines []Line) {
	c.lines = make(map[string]*Line, len(lines))
	c.order = nil
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		if l.Key == "" {
			l.Key = LineKey(l.MenuItemID, l.Measurement)
		}
		if existing, ok := c.lines[l.Key]; ok {
			existing.Quantity += l.Quantity
			continue
		}
		line := l
		c.lines[l.Key] = &line
		c.order = append(c.order, l.Key)
	}
}
