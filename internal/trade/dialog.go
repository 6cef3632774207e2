// Package trade exposes the HTTP surface of the purchase and sale
// creation dialogs. Both flows mount the same handler; only the lookup
// functions, the price used and the submission target differ, and those
// arrive through the Flow configuration.
package trade

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5"

	"github.com/almacen-console/almacen-console/internal/backend"
	"github.com/almacen-console/almacen-console/internal/cart"
	"github.com/almacen-console/almacen-console/internal/platform/httpx"
	"github.com/almacen-console/almacen-console/internal/search"
	"github.com/almacen-console/almacen-console/internal/shared"
)

// Flow configures one dialog flavour.
type Flow struct {
	// Name labels log lines: "compra" or "venta".
	Name string
	// Store keeps the per-session open dialogs of this flow.
	Store *cart.Store
	// SearchCounterparties looks up supplier or customer candidates.
	SearchCounterparties func(ctx context.Context, documento, nombre string) ([]cart.Counterparty, error)
	// SearchProducts looks up product candidates. counterpartyID is the
	// selected counterparty, empty when none is selected yet.
	SearchProducts func(ctx context.Context, counterpartyID, term string) ([]cart.Line, error)
	// ScopeProductsToCounterparty makes product search a no-op until a
	// counterparty is selected. Purchases set this: the catalog is
	// searched per supplier.
	ScopeProductsToCounterparty bool
	// PaymentMethods loads the selectable payment methods.
	PaymentMethods func(ctx context.Context) ([]backend.MetodoPago, error)
}

// DialogHandler serves the JSON endpoints driving one creation dialog.
type DialogHandler struct {
	logger *slog.Logger
	flow   Flow
}

// NewDialogHandler constructs a DialogHandler for a flow.
func NewDialogHandler(logger *slog.Logger, flow Flow) *DialogHandler {
	return &DialogHandler{logger: logger, flow: flow}
}

// MountRoutes registers the dialog endpoints on the provided router.
func (h *DialogHandler) MountRoutes(r chi.Router) {
	r.Post("/open", h.open)
	r.Post("/close", h.close)
	r.Get("/counterparties", h.searchCounterparties)
	r.Post("/counterparty", h.selectCounterparty)
	r.Delete("/counterparty", h.clearCounterparty)
	r.Get("/products", h.searchProducts)
	r.Post("/lines", h.addLine)
	r.Delete("/lines/{productID}", h.removeLine)
	r.Put("/lines/{productID}/quantity", h.setQuantity)
	r.Put("/payment-method", h.selectPaymentMethod)
	r.Post("/submit", h.submit)
}

type counterpartyView struct {
	ID              string `json:"id"`
	Nombre          string `json:"nombre"`
	TipoDocumento   string `json:"tipoDocumento"`
	NumeroDocumento string `json:"numeroDocumento"`
}

type lineView struct {
	ProductID      string  `json:"idProducto"`
	Codigo         int     `json:"codigo"`
	Nombre         string  `json:"nombre"`
	PrecioUnitario float64 `json:"precioUnitario"`
	Stock          int     `json:"stock"`
	Cantidad       int     `json:"cantidad"`
	Importe        float64 `json:"importe"`
}

type dialogState struct {
	Counterparty   *counterpartyView    `json:"contraparte"`
	Lines          []lineView           `json:"lineas"`
	Total          float64              `json:"total"`
	PaymentMethod  string               `json:"idMetodoPago"`
	PaymentMethods []backend.MetodoPago `json:"metodosPago,omitempty"`
}

func stateOf(d *cart.Dialog) dialogState {
	st := dialogState{PaymentMethod: d.Cart.PaymentMethodID(), Total: d.Cart.Total()}
	if cp := d.Cart.Counterparty(); cp != nil {
		st.Counterparty = &counterpartyView{
			ID:              cp.ID,
			Nombre:          cp.Name,
			TipoDocumento:   cp.DocumentType,
			NumeroDocumento: cp.DocumentNumber,
		}
	}
	lines := d.Cart.Lines()
	st.Lines = make([]lineView, 0, len(lines))
	for _, l := range lines {
		st.Lines = append(st.Lines, lineView{
			ProductID:      l.ProductID,
			Codigo:         l.Code,
			Nombre:         l.Name,
			PrecioUnitario: l.UnitPrice,
			Stock:          l.AvailableStock,
			Cantidad:       l.Quantity,
			Importe:        float64(l.Quantity) * l.UnitPrice,
		})
	}
	return st
}

func (h *DialogHandler) dialog(w http.ResponseWriter, r *http.Request) (*cart.Dialog, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Sesión", "Sesión no disponible")
		return nil, false
	}
	d, ok := h.flow.Store.Get(sess.ID)
	if !ok {
		httpx.Problem(w, http.StatusConflict, "Diálogo", "No hay un diálogo abierto")
		return nil, false
	}
	return d, true
}

func (h *DialogHandler) open(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Sesión", "Sesión no disponible")
		return
	}
	d := h.flow.Store.Open(sess.ID)
	st := stateOf(d)
	methods, err := h.flow.PaymentMethods(r.Context())
	if err != nil {
		h.logger.Warn("load payment methods", slog.String("flow", h.flow.Name), slog.Any("error", err))
		httpx.RespondBackendError(w, err)
		return
	}
	st.PaymentMethods = methods
	httpx.JSON(w, http.StatusOK, st)
}

func (h *DialogHandler) close(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Sesión", "Sesión no disponible")
		return
	}
	h.flow.Store.Close(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// searchCounterparties answers suggestions for the counterparty input.
// A lookup is dispatched only past the input threshold: a numeric document
// number, or a name of at least two characters. A document with non-digit
// characters is rejected locally and never reaches the backend.
func (h *DialogHandler) searchCounterparties(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dialog(w, r)
	if !ok {
		return
	}
	documento := strings.TrimSpace(r.URL.Query().Get("documento"))
	nombre := strings.TrimSpace(r.URL.Query().Get("nombre"))

	if documento != "" && !isDigits(documento) {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validación", "El número de documento solo admite dígitos")
		return
	}
	if documento == "" && len([]rune(nombre)) < 2 {
		d.ClearCounterpartyCandidates()
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var results []cart.Counterparty
	err := d.CounterpartySearch.Do(r.Context(), func(ctx context.Context) error {
		list, err := h.flow.SearchCounterparties(ctx, documento, nombre)
		if err != nil {
			return err
		}
		results = list
		return nil
	})
	if errors.Is(err, search.ErrSuperseded) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		httpx.RespondBackendError(w, err)
		return
	}
	d.SetCounterpartyCandidates(results)
	views := make([]counterpartyView, 0, len(results))
	for _, cp := range results {
		views = append(views, counterpartyView{ID: cp.ID, Nombre: cp.Name, TipoDocumento: cp.DocumentType, NumeroDocumento: cp.DocumentNumber})
	}
	httpx.JSON(w, http.StatusOK, views)
}

type selectRequest struct {
	ID string `json:"id"`
}

func (h *DialogHandler) selectCounterparty(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dialog(w, r)
	if !ok {
		return
	}
	var req selectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.ID == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validación", "Selección inválida")
		return
	}
	cp, ok := d.CounterpartyCandidate(req.ID)
	if !ok {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validación", "La selección ya no está disponible")
		return
	}
	d.Cart.SelectCounterparty(cp)
	d.ClearProductCandidates()
	httpx.JSON(w, http.StatusOK, stateOf(d))
}

func (h *DialogHandler) clearCounterparty(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dialog(w, r)
	if !ok {
		return
	}
	d.Cart.ClearCounterparty()
	d.ClearProductCandidates()
	httpx.JSON(w, http.StatusOK, stateOf(d))
}

// searchProducts answers suggestions for the product input. When the flow
// scopes products to the counterparty, input before a counterparty is
// selected is ignored.
func (h *DialogHandler) searchProducts(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dialog(w, r)
	if !ok {
		return
	}
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	var counterpartyID string
	if cp := d.Cart.Counterparty(); cp != nil {
		counterpartyID = cp.ID
	}
	if h.flow.ScopeProductsToCounterparty && counterpartyID == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if term == "" || (!isDigits(term) && len([]rune(term)) < 2) {
		d.ClearProductCandidates()
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var results []cart.Line
	err := d.ProductSearch.Do(r.Context(), func(ctx context.Context) error {
		list, err := h.flow.SearchProducts(ctx, counterpartyID, term)
		if err != nil {
			return err
		}
		results = list
		return nil
	})
	if errors.Is(err, search.ErrSuperseded) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		httpx.RespondBackendError(w, err)
		return
	}
	d.SetProductCandidates(results)
	views := make([]lineView, 0, len(results))
	for _, p := range results {
		views = append(views, lineView{ProductID: p.ProductID, Codigo: p.Code, Nombre: p.Name, PrecioUnitario: p.UnitPrice, Stock: p.AvailableStock})
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *DialogHandler) addLine(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dialog(w, r)
	if !ok {
		return
	}
	var req selectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.ID == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validación", "Selección inválida")
		return
	}
	line, ok := d.ProductCandidate(req.ID)
	if !ok {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validación", "La selección ya no está disponible")
		return
	}
	switch err := d.Cart.AddLine(line); {
	case errors.Is(err, cart.ErrDuplicateLine):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validación", "El producto ya está agregado")
		return
	case errors.Is(err, cart.ErrNoStock):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validación", "El producto no tiene stock disponible")
		return
	case err != nil:
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validación", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, stateOf(d))
}

func (h *DialogHandler) removeLine(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dialog(w, r)
	if !ok {
		return
	}
	d.Cart.RemoveLine(chi.URLParam(r, "productID"))
	httpx.JSON(w, http.StatusOK, stateOf(d))
}

type quantityRequest struct {
	Cantidad int `json:"cantidad"`
}

func (h *DialogHandler) setQuantity(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dialog(w, r)
	if !ok {
		return
	}
	var req quantityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validación", "Cantidad inválida")
		return
	}
	if _, ok := d.Cart.SetLineQuantity(chi.URLParam(r, "productID"), req.Cantidad); !ok {
		httpx.Problem(w, http.StatusNotFound, "Validación", "El producto no está en el detalle")
		return
	}
	httpx.JSON(w, http.StatusOK, stateOf(d))
}

func (h *DialogHandler) selectPaymentMethod(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dialog(w, r)
	if !ok {
		return
	}
	var req selectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.ID == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validación", "Selección inválida")
		return
	}
	d.Cart.SelectPaymentMethod(req.ID)
	httpx.JSON(w, http.StatusOK, stateOf(d))
}

func (h *DialogHandler) submit(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dialog(w, r)
	if !ok {
		return
	}
	sess := shared.SessionFromContext(r.Context())
	switch err := d.Cart.Submit(r.Context()); {
	case errors.Is(err, cart.ErrNoCounterparty):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validación", "Seleccione un proveedor o cliente")
		return
	case errors.Is(err, cart.ErrNoLines):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validación", "Agregue al menos un producto")
		return
	case errors.Is(err, cart.ErrNoPaymentMethod):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validación", "Seleccione un método de pago")
		return
	case err != nil:
		h.logger.Warn("submit rejected", slog.String("flow", h.flow.Name), slog.Any("error", err))
		httpx.RespondBackendError(w, err)
		return
	}
	h.flow.Store.Close(sess.ID)
	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Registro guardado"})
	httpx.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}
