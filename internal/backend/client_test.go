package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almacen-console/almacen-console/internal/backend"
	_ "github.com/almacen-console/almacen-console/testing"
)

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]backend.MetodoPago{{IDMetodoPago: "M1", Nombre: "Efectivo"}})
	}))
	defer srv.Close()

	c := backend.New(srv.URL, backend.WithTokenSource(func(context.Context) string { return "tok-1" }))
	methods, err := c.MetodosPago(context.Background())
	require.NoError(t, err)
	require.Len(t, methods, 1)
	assert.Equal(t, "Bearer tok-1", gotAuth)
}

func TestNoTokenNoHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(backend.Page[backend.Producto]{})
	}))
	defer srv.Close()

	c := backend.New(srv.URL)
	_, err := c.Productos(context.Background(), 0, 10, "", "")
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestUnauthorizedFiresHookFromAnyEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	var fired atomic.Int32
	c := backend.New(srv.URL, backend.WithAuthExpiredHook(func(context.Context) { fired.Add(1) }))

	_, err := c.Roles(context.Background())
	require.Error(t, err)
	assert.Equal(t, backend.KindAuthExpired, backend.KindOf(err))
	assert.True(t, backend.IsAuthExpired(err))

	err = c.AnularVenta(context.Background(), "V1", "duplicada")
	require.Error(t, err)
	assert.True(t, backend.IsAuthExpired(err))

	assert.Equal(t, int32(2), fired.Load())
}

func TestRemoteRejectionExtractsMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "stock insuficiente"})
	}))
	defer srv.Close()

	c := backend.New(srv.URL)
	err := c.RegistrarCompra(context.Background(), backend.CompraRequest{})
	require.Error(t, err)
	assert.Equal(t, backend.KindRemote, backend.KindOf(err))
	assert.Equal(t, "stock insuficiente", backend.UserMessage(err))
}

func TestRemoteRejectionFallsBackToStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := backend.New(srv.URL)
	_, err := c.AllCategorias(context.Background())
	require.Error(t, err)
	assert.Equal(t, backend.KindRemote, backend.KindOf(err))
	assert.Equal(t, http.StatusText(http.StatusBadGateway), backend.UserMessage(err))
}

func TestNetworkFailureClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	var fired atomic.Int32
	c := backend.New(srv.URL, backend.WithAuthExpiredHook(func(context.Context) { fired.Add(1) }))
	_, err := c.ProductosLowestStock(context.Background())
	require.Error(t, err)
	assert.Equal(t, backend.KindNetwork, backend.KindOf(err))
	// Network failures must not affect session state.
	assert.Equal(t, int32(0), fired.Load())
	assert.NotEmpty(t, backend.UserMessage(err))
}

func TestSubmitPayloadShape(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := backend.New(srv.URL)
	err := c.RegistrarVenta(context.Background(), backend.VentaRequest{
		IDCliente:    "U1",
		IDMetodoPago: "M1",
		Productos:    []backend.ProductoVentaRequest{{IDProducto: "P1", Cantidad: 5, PrecioUnitario: 10}},
	})
	require.NoError(t, err)

	assert.Equal(t, "U1", got["idCliente"])
	assert.Equal(t, "M1", got["idMetodoPago"])
	productos := got["productos"].([]any)
	require.Len(t, productos, 1)
	line := productos[0].(map[string]any)
	assert.Equal(t, "P1", line["idProducto"])
	assert.EqualValues(t, 5, line["cantidad"])
	assert.EqualValues(t, 10, line["precioUnitario"])
}

type tokenKey struct{}

func TestPaymentMethodsNotSharedAcrossSessions(t *testing.T) {
	arrived := make(chan struct{}, 2)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		arrived <- struct{}{}
		<-release
		if r.Header.Get("Authorization") == "Bearer stale" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode([]backend.MetodoPago{{IDMetodoPago: "M1", Nombre: "Efectivo"}})
	}))
	defer srv.Close()

	var fired atomic.Int32
	c := backend.New(srv.URL,
		backend.WithTokenSource(func(ctx context.Context) string { return ctx.Value(tokenKey{}).(string) }),
		backend.WithAuthExpiredHook(func(context.Context) { fired.Add(1) }),
	)

	var wg sync.WaitGroup
	var staleErr, liveErr error
	var liveMethods []backend.MetodoPago
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, staleErr = c.MetodosPago(context.WithValue(context.Background(), tokenKey{}, "stale"))
	}()
	go func() {
		defer wg.Done()
		liveMethods, liveErr = c.MetodosPago(context.WithValue(context.Background(), tokenKey{}, "live"))
	}()

	// Both operators must reach the wire under their own credentials before
	// either response is written.
	for i := 0; i < 2; i++ {
		select {
		case <-arrived:
		case <-time.After(2 * time.Second):
			t.Fatal("second request never reached the server; calls were shared across tokens")
		}
	}
	close(release)
	wg.Wait()

	// Only the stale session expires; the live one gets its methods.
	require.Error(t, staleErr)
	assert.True(t, backend.IsAuthExpired(staleErr))
	require.NoError(t, liveErr)
	require.Len(t, liveMethods, 1)
	assert.Equal(t, int32(1), fired.Load())
}

func TestPaymentMethodsCoalescedWithinSession(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		_ = json.NewEncoder(w).Encode([]backend.MetodoPago{{IDMetodoPago: "M1", Nombre: "Efectivo"}})
	}))
	defer srv.Close()

	c := backend.New(srv.URL, backend.WithTokenSource(func(context.Context) string { return "tok-1" }))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.MetodosPago(context.Background())
		}(i)
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestValidationHelpers(t *testing.T) {
	err := backend.Validation("debe seleccionar un método de pago")
	assert.True(t, backend.IsValidation(err))
	assert.Equal(t, backend.KindValidation, backend.KindOf(err))
	assert.Equal(t, "debe seleccionar un método de pago", backend.UserMessage(err))
}
