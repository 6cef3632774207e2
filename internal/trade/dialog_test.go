package trade

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almacen-console/almacen-console/internal/backend"
	"github.com/almacen-console/almacen-console/internal/cart"
	"github.com/almacen-console/almacen-console/internal/shared"
	_ "github.com/almacen-console/almacen-console/testing"
)

type fixture struct {
	server    *httptest.Server
	store     *cart.Store
	submitted []cart.Submission
	submitErr error
	calls     atomic.Int32
}

func newFixture(t *testing.T, scoped bool) *fixture {
	t.Helper()
	f := &fixture{}

	submit := func(ctx context.Context, sub cart.Submission) error {
		f.submitted = append(f.submitted, sub)
		return f.submitErr
	}
	f.store = cart.NewStore(time.Millisecond, submit)

	flow := Flow{
		Name:  "test",
		Store: f.store,
		SearchCounterparties: func(ctx context.Context, documento, nombre string) ([]cart.Counterparty, error) {
			f.calls.Add(1)
			return []cart.Counterparty{
				{ID: "U1", Name: "Ana Diaz", DocumentType: "DNI", DocumentNumber: "12345678"},
			}, nil
		},
		SearchProducts: func(ctx context.Context, counterpartyID, term string) ([]cart.Line, error) {
			return []cart.Line{
				{ProductID: "P1", Name: "Cafe", Code: 11, UnitPrice: 10, AvailableStock: 5},
				{ProductID: "P2", Name: "Azucar", Code: 12, UnitPrice: 4, AvailableStock: 0},
			}, nil
		},
		ScopeProductsToCounterparty: scoped,
		PaymentMethods: func(ctx context.Context) ([]backend.MetodoPago, error) {
			return []backend.MetodoPago{{IDMetodoPago: "MP1", Nombre: "Efectivo"}}, nil
		},
	}

	handler := NewDialogHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), flow)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess := &shared.Session{ID: "sess-1"}
			next.ServeHTTP(w, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
		})
	})
	r.Route("/dialog", handler.MountRoutes)

	f.server = httptest.NewServer(r)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return res
}

func decodeState(t *testing.T, res *http.Response) map[string]any {
	t.Helper()
	defer res.Body.Close()
	var state map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&state))
	return state
}

func TestOpenReturnsPaymentMethods(t *testing.T) {
	f := newFixture(t, false)

	res := f.do(t, http.MethodPost, "/dialog/open", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	state := decodeState(t, res)

	methods := state["metodosPago"].([]any)
	require.Len(t, methods, 1)
	assert.Equal(t, "Efectivo", methods[0].(map[string]any)["nombre"])
}

func TestEndpointsWithoutOpenDialogConflict(t *testing.T) {
	f := newFixture(t, false)

	res := f.do(t, http.MethodGet, "/dialog/products?q=cafe", nil)
	defer res.Body.Close()
	assert.Equal(t, http.StatusConflict, res.StatusCode)
}

func TestCounterpartySearchValidation(t *testing.T) {
	f := newFixture(t, false)
	f.do(t, http.MethodPost, "/dialog/open", nil).Body.Close()

	// Non-digit document never reaches the lookup.
	res := f.do(t, http.MethodGet, "/dialog/counterparties?documento=12a45", nil)
	res.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)

	// One-letter name is below the threshold: no lookup, no results.
	res = f.do(t, http.MethodGet, "/dialog/counterparties?nombre=a", nil)
	res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	assert.Equal(t, int32(0), f.calls.Load())
}

func TestCounterpartySearchAndSelect(t *testing.T) {
	f := newFixture(t, false)
	f.do(t, http.MethodPost, "/dialog/open", nil).Body.Close()

	res := f.do(t, http.MethodGet, "/dialog/counterparties?nombre=ana", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var list []map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&list))
	res.Body.Close()
	require.Len(t, list, 1)
	assert.Equal(t, "Ana Diaz", list[0]["nombre"])

	res = f.do(t, http.MethodPost, "/dialog/counterparty", map[string]string{"id": "U1"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	state := decodeState(t, res)
	assert.Equal(t, "Ana Diaz", state["contraparte"].(map[string]any)["nombre"])
}

func TestScopedProductSearchRequiresCounterparty(t *testing.T) {
	f := newFixture(t, true)
	f.do(t, http.MethodPost, "/dialog/open", nil).Body.Close()

	res := f.do(t, http.MethodGet, "/dialog/products?q=cafe", nil)
	res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
}

func selectCounterparty(t *testing.T, f *fixture) {
	t.Helper()
	f.do(t, http.MethodGet, "/dialog/counterparties?nombre=ana", nil).Body.Close()
	res := f.do(t, http.MethodPost, "/dialog/counterparty", map[string]string{"id": "U1"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()
}

func addProduct(t *testing.T, f *fixture, id string) *http.Response {
	t.Helper()
	f.do(t, http.MethodGet, "/dialog/products?q=cafe", nil).Body.Close()
	return f.do(t, http.MethodPost, "/dialog/lines", map[string]string{"id": id})
}

func TestAddLineRules(t *testing.T) {
	f := newFixture(t, false)
	f.do(t, http.MethodPost, "/dialog/open", nil).Body.Close()
	selectCounterparty(t, f)

	res := addProduct(t, f, "P1")
	require.Equal(t, http.StatusOK, res.StatusCode)
	state := decodeState(t, res)
	lines := state["lineas"].([]any)
	require.Len(t, lines, 1)
	assert.Equal(t, float64(1), lines[0].(map[string]any)["cantidad"])

	// Same product again is rejected, never merged.
	res = addProduct(t, f, "P1")
	res.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)

	// Zero stock is rejected.
	res = addProduct(t, f, "P2")
	res.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
}

func TestQuantityClampsToStock(t *testing.T) {
	f := newFixture(t, false)
	f.do(t, http.MethodPost, "/dialog/open", nil).Body.Close()
	selectCounterparty(t, f)
	addProduct(t, f, "P1").Body.Close()

	res := f.do(t, http.MethodPut, "/dialog/lines/P1/quantity", map[string]int{"cantidad": 9})
	require.Equal(t, http.StatusOK, res.StatusCode)
	state := decodeState(t, res)
	line := state["lineas"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(5), line["cantidad"])
	assert.Equal(t, float64(50), state["total"])
}

func TestSubmitFlow(t *testing.T) {
	f := newFixture(t, false)
	f.do(t, http.MethodPost, "/dialog/open", nil).Body.Close()
	selectCounterparty(t, f)
	addProduct(t, f, "P1").Body.Close()

	// Payment method still missing.
	res := f.do(t, http.MethodPost, "/dialog/submit", nil)
	res.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.Empty(t, f.submitted)

	res = f.do(t, http.MethodPut, "/dialog/payment-method", map[string]string{"id": "MP1"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	res = f.do(t, http.MethodPost, "/dialog/submit", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	require.Len(t, f.submitted, 1)
	sub := f.submitted[0]
	assert.Equal(t, "U1", sub.CounterpartyID)
	assert.Equal(t, "MP1", sub.PaymentMethodID)
	require.Len(t, sub.Items, 1)
	assert.Equal(t, "P1", sub.Items[0].ProductID)
	assert.Equal(t, 1, sub.Items[0].Quantity)
	assert.Equal(t, float64(10), sub.Items[0].UnitPrice)

	// The dialog is gone after acceptance.
	res = f.do(t, http.MethodGet, "/dialog/products?q=cafe", nil)
	res.Body.Close()
	assert.Equal(t, http.StatusConflict, res.StatusCode)
}
