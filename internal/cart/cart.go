// Package cart implements the line-item aggregation shared by the
// purchase and sale creation dialogs. One parametrised implementation
// serves both flows; only the counterparty role, the price used and the
// submission target differ, and those arrive as configuration.
package cart

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrDuplicateLine rejects adding a product already present; lines are
	// never merged.
	ErrDuplicateLine = errors.New("cart: product already in lines")
	// ErrNoStock rejects adding a product with no available stock.
	ErrNoStock = errors.New("cart: product out of stock")
	// ErrNoCounterparty fails submission without a selected counterparty.
	ErrNoCounterparty = errors.New("cart: no counterparty selected")
	// ErrNoLines fails submission of an empty cart.
	ErrNoLines = errors.New("cart: no lines")
	// ErrNoPaymentMethod fails submission without a payment method.
	ErrNoPaymentMethod = errors.New("cart: no payment method selected")
)

// Counterparty is the supplier or customer of the transaction.
type Counterparty struct {
	ID             string
	Name           string
	DocumentType   string
	DocumentNumber string
}

// Line is one provisional cart entry. Price and stock are snapshots taken
// when the product was found; the backend revalidates on submission.
type Line struct {
	ProductID      string
	Name           string
	Code           int
	UnitPrice      float64
	AvailableStock int
	Quantity       int
}

// SubmitItem is one line of the outbound request.
type SubmitItem struct {
	ProductID string
	Quantity  int
	UnitPrice float64
}

// Submission packages the cart for the flow's transaction-recording call.
type Submission struct {
	CounterpartyID  string
	PaymentMethodID string
	Items           []SubmitItem
}

// SubmitFunc sends the submission to the backend.
type SubmitFunc func(ctx context.Context, sub Submission) error

// Cart accumulates a validated, priced set of lines for one open dialog.
type Cart struct {
	mu              sync.Mutex
	submit          SubmitFunc
	counterparty    *Counterparty
	lines           []Line
	paymentMethodID string
}

// New returns an empty cart bound to a submission target.
func New(submit SubmitFunc) *Cart {
	return &Cart{submit: submit}
}

// SelectCounterparty sets the counterparty. Lines are always cleared:
// prices and stock are scoped to the counterparty, so a carried-over cart
// would be priced against the wrong party.
func (c *Cart) SelectCounterparty(cp Counterparty) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counterparty = &cp
	c.lines = nil
}

// ClearCounterparty unsets the counterparty and clears all lines.
func (c *Cart) ClearCounterparty() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counterparty = nil
	c.lines = nil
}

// Counterparty returns the current selection, nil when none.
func (c *Cart) Counterparty() *Counterparty {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counterparty == nil {
		return nil
	}
	cp := *c.counterparty
	return &cp
}

// AddLine appends a new line with quantity 1. A product already present or
// without stock is rejected and the cart is left unchanged.
func (c *Cart) AddLine(item Line) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range c.lines {
		if l.ProductID == item.ProductID {
			return ErrDuplicateLine
		}
	}
	if item.AvailableStock <= 0 {
		return ErrNoStock
	}
	item.Quantity = 1
	c.lines = append(c.lines, item)
	return nil
}

// RemoveLine removes the matching line, no-op when absent.
func (c *Cart) RemoveLine(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, l := range c.lines {
		if l.ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// SetLineQuantity clamps the requested quantity into [1, availableStock]
// and returns the resulting quantity, or false when the line is absent.
func (c *Cart) SetLineQuantity(productID string, requested int) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, l := range c.lines {
		if l.ProductID != productID {
			continue
		}
		qty := requested
		if qty < 1 {
			qty = 1
		}
		if qty > l.AvailableStock {
			qty = l.AvailableStock
		}
		c.lines[i].Quantity = qty
		return qty, true
	}
	return 0, false
}

// SelectPaymentMethod sets the payment method.
func (c *Cart) SelectPaymentMethod(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paymentMethodID = id
}

// PaymentMethodID returns the current selection.
func (c *Cart) PaymentMethodID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paymentMethodID
}

// Lines returns a copy of the current lines.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Total is the running sum of quantity times unit price.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total float64
	for _, l := range c.lines {
		total += float64(l.Quantity) * l.UnitPrice
	}
	return total
}

// Submit validates preconditions, sends the packaged request and resets
// the cart on acceptance. On rejection the cart is left intact for
// correction and retry. Precondition failures perform no network call.
func (c *Cart) Submit(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.counterparty == nil:
		c.mu.Unlock()
		return ErrNoCounterparty
	case len(c.lines) == 0:
		c.mu.Unlock()
		return ErrNoLines
	case c.paymentMethodID == "":
		c.mu.Unlock()
		return ErrNoPaymentMethod
	}
	sub := Submission{
		CounterpartyID:  c.counterparty.ID,
		PaymentMethodID: c.paymentMethodID,
		Items:           make([]SubmitItem, 0, len(c.lines)),
	}
	for _, l := range c.lines {
		sub.Items = append(sub.Items, SubmitItem{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	c.mu.Unlock()

	if err := c.submit(ctx, sub); err != nil {
		return err
	}
	c.Reset()
	return nil
}

// Reset returns every field to its initial empty state.
func (c *Cart) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counterparty = nil
	c.lines = nil
	c.paymentMethodID = ""
}

// IsEmpty reports whether the cart holds no selection at all.
func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counterparty == nil && len(c.lines) == 0 && c.paymentMethodID == ""
}
