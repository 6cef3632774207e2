package cart_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almacen-console/almacen-console/internal/cart"
	_ "github.com/almacen-console/almacen-console/testing"
)

func newCart(submit cart.SubmitFunc) *cart.Cart {
	if submit == nil {
		submit = func(context.Context, cart.Submission) error { return nil }
	}
	return cart.New(submit)
}

func productX1() cart.Line {
	return cart.Line{ProductID: "P1", Name: "Tornillo", Code: 101, UnitPrice: 10, AvailableStock: 5}
}

func TestAddLineStartsAtQuantityOne(t *testing.T) {
	c := newCart(nil)
	require.NoError(t, c.AddLine(productX1()))
	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)
	assert.Equal(t, 10.0, c.Total())
}

func TestDuplicateAddRejectedWithoutMerging(t *testing.T) {
	c := newCart(nil)
	require.NoError(t, c.AddLine(productX1()))
	err := c.AddLine(productX1())
	assert.ErrorIs(t, err, cart.ErrDuplicateLine)
	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)
}

func TestAddLineRejectsZeroStock(t *testing.T) {
	c := newCart(nil)
	err := c.AddLine(cart.Line{ProductID: "P9", UnitPrice: 3, AvailableStock: 0})
	assert.ErrorIs(t, err, cart.ErrNoStock)
	assert.Empty(t, c.Lines())
}

func TestQuantityClamping(t *testing.T) {
	c := newCart(nil)
	require.NoError(t, c.AddLine(productX1()))

	for requested, want := range map[int]int{-3: 1, 0: 1, 1: 1, 5: 5, 9: 5, 1000: 5} {
		got, ok := c.SetLineQuantity("P1", requested)
		require.True(t, ok)
		assert.Equalf(t, want, got, "requested %d", requested)
	}

	_, ok := c.SetLineQuantity("missing", 2)
	assert.False(t, ok)
}

func TestTotalTracksMutations(t *testing.T) {
	c := newCart(nil)
	require.NoError(t, c.AddLine(cart.Line{ProductID: "P1", UnitPrice: 10, AvailableStock: 5}))
	require.NoError(t, c.AddLine(cart.Line{ProductID: "P2", UnitPrice: 2.5, AvailableStock: 10}))
	assert.Equal(t, 12.5, c.Total())

	c.SetLineQuantity("P2", 4)
	assert.Equal(t, 20.0, c.Total())

	c.RemoveLine("P1")
	assert.Equal(t, 10.0, c.Total())

	c.RemoveLine("P1") // no-op
	assert.Equal(t, 10.0, c.Total())
}

func TestCounterpartyChangeClearsLines(t *testing.T) {
	c := newCart(nil)
	c.SelectCounterparty(cart.Counterparty{ID: "U1", Name: "Acme"})
	require.NoError(t, c.AddLine(productX1()))

	c.SelectCounterparty(cart.Counterparty{ID: "U2", Name: "Otro"})
	assert.Empty(t, c.Lines())
	require.NotNil(t, c.Counterparty())
	assert.Equal(t, "U2", c.Counterparty().ID)

	require.NoError(t, c.AddLine(productX1()))
	c.ClearCounterparty()
	assert.Nil(t, c.Counterparty())
	assert.Empty(t, c.Lines())
}

func TestSubmitPreconditionsPerformNoCall(t *testing.T) {
	calls := 0
	c := newCart(func(context.Context, cart.Submission) error {
		calls++
		return nil
	})
	ctx := context.Background()

	assert.ErrorIs(t, c.Submit(ctx), cart.ErrNoCounterparty)

	c.SelectCounterparty(cart.Counterparty{ID: "U1", Name: "Acme"})
	c.SelectPaymentMethod("M1")
	assert.ErrorIs(t, c.Submit(ctx), cart.ErrNoLines)

	c.SelectPaymentMethod("")
	require.NoError(t, c.AddLine(productX1()))
	assert.ErrorIs(t, c.Submit(ctx), cart.ErrNoPaymentMethod)

	assert.Equal(t, 0, calls)
}

func TestCreateFlowEndToEnd(t *testing.T) {
	var got cart.Submission
	calls := 0
	c := newCart(func(_ context.Context, sub cart.Submission) error {
		calls++
		got = sub
		return nil
	})

	c.SelectCounterparty(cart.Counterparty{ID: "U1", Name: "Acme"})
	require.NoError(t, c.AddLine(cart.Line{ProductID: "P1", UnitPrice: 10, AvailableStock: 5}))
	assert.Equal(t, 10.0, c.Total())

	qty, ok := c.SetLineQuantity("P1", 9)
	require.True(t, ok)
	assert.Equal(t, 5, qty)
	assert.Equal(t, 50.0, c.Total())

	c.SelectPaymentMethod("M1")
	require.NoError(t, c.Submit(context.Background()))

	assert.Equal(t, 1, calls)
	assert.Equal(t, "U1", got.CounterpartyID)
	assert.Equal(t, "M1", got.PaymentMethodID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, cart.SubmitItem{ProductID: "P1", Quantity: 5, UnitPrice: 10}, got.Items[0])

	// Accepted submission resets the cart completely.
	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0.0, c.Total())
}

func TestRejectedSubmissionKeepsCart(t *testing.T) {
	c := newCart(func(context.Context, cart.Submission) error {
		return errors.New("stock insuficiente")
	})
	c.SelectCounterparty(cart.Counterparty{ID: "U1"})
	require.NoError(t, c.AddLine(productX1()))
	c.SelectPaymentMethod("M1")

	err := c.Submit(context.Background())
	require.Error(t, err)
	assert.False(t, c.IsEmpty())
	assert.Len(t, c.Lines(), 1)
	assert.Equal(t, "M1", c.PaymentMethodID())
}

func TestStoreScopesDialogsPerSession(t *testing.T) {
	s := cart.NewStore(time.Millisecond, func(context.Context, cart.Submission) error { return nil })

	d1 := s.Open("sess-1")
	d2 := s.Open("sess-2")
	require.NoError(t, d1.Cart.AddLine(productX1()))
	assert.Empty(t, d2.Cart.Lines())

	got, ok := s.Get("sess-1")
	require.True(t, ok)
	assert.Same(t, d1, got)

	// Reopening resets the dialog; no draft survives.
	d1b := s.Open("sess-1")
	assert.NotSame(t, d1, d1b)
	assert.Empty(t, d1b.Cart.Lines())

	s.Close("sess-1")
	_, ok = s.Get("sess-1")
	assert.False(t, ok)
}

func TestDialogCandidateCache(t *testing.T) {
	s := cart.NewStore(time.Millisecond, func(context.Context, cart.Submission) error { return nil })
	d := s.Open("sess-1")

	d.SetCounterpartyCandidates([]cart.Counterparty{{ID: "U1", Name: "Acme"}})
	cp, ok := d.CounterpartyCandidate("U1")
	require.True(t, ok)
	assert.Equal(t, "Acme", cp.Name)
	_, ok = d.CounterpartyCandidate("U2")
	assert.False(t, ok)

	d.SetProductCandidates([]cart.Line{productX1()})
	p, ok := d.ProductCandidate("P1")
	require.True(t, ok)
	assert.Equal(t, 5, p.AvailableStock)

	d.ClearCounterpartyCandidates()
	_, ok = d.CounterpartyCandidate("U1")
	assert.False(t, ok)
}
