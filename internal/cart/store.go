package cart

import (
	"sync"
	"time"

	"github.com/almacen-console/almacen-console/internal/search"
)

// Dialog is the state of one open creation dialog: the cart plus the two
// debounced search inputs and their latest candidate lists. Candidates are
// cached so a selection needs no second backend round trip.
type Dialog struct {
	Cart               *Cart
	CounterpartySearch *search.Debouncer
	ProductSearch      *search.Debouncer

	mu             sync.Mutex
	counterparties []Counterparty
	products       []Line
}

// SetCounterpartyCandidates replaces the cached counterparty suggestions.
func (d *Dialog) SetCounterpartyCandidates(list []Counterparty) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.counterparties = list
}

// CounterpartyCandidate finds a cached suggestion by id.
func (d *Dialog) CounterpartyCandidate(id string) (Counterparty, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, cp := range d.counterparties {
		if cp.ID == id {
			return cp, true
		}
	}
	return Counterparty{}, false
}

// ClearCounterpartyCandidates drops the cached suggestions.
func (d *Dialog) ClearCounterpartyCandidates() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.counterparties = nil
}

// SetProductCandidates replaces the cached product suggestions.
func (d *Dialog) SetProductCandidates(list []Line) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.products = list
}

// ProductCandidate finds a cached suggestion by product id.
func (d *Dialog) ProductCandidate(id string) (Line, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.products {
		if p.ProductID == id {
			return p, true
		}
	}
	return Line{}, false
}

// ClearProductCandidates drops the cached suggestions.
func (d *Dialog) ClearProductCandidates() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.products = nil
}

// Store scopes dialogs to browser sessions. One store per flow (purchase,
// sale); at most one open dialog per session and flow. Contents are held
// in process memory only, so no draft survives a dialog close or restart.
type Store struct {
	mu      sync.Mutex
	delay   time.Duration
	submit  SubmitFunc
	dialogs map[string]*Dialog
}

// NewStore builds a dialog store for one flow.
func NewStore(debounce time.Duration, submit SubmitFunc) *Store {
	return &Store{delay: debounce, submit: submit, dialogs: make(map[string]*Dialog)}
}

// Open creates a fresh dialog for the session, discarding any previous one.
func (s *Store) Open(sessionID string) *Dialog {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.dialogs[sessionID]; ok {
		prev.CounterpartySearch.Reset()
		prev.ProductSearch.Reset()
	}
	d := &Dialog{
		Cart:               New(s.submit),
		CounterpartySearch: search.NewDebouncer(s.delay),
		ProductSearch:      search.NewDebouncer(s.delay),
	}
	s.dialogs[sessionID] = d
	return d
}

// Get returns the session's open dialog, if any.
func (s *Store) Get(sessionID string) (*Dialog, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.dialogs[sessionID]
	return d, ok
}

// Close discards the session's dialog and cancels pending searches.
func (s *Store) Close(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.dialogs[sessionID]
	if !ok {
		return
	}
	d.CounterpartySearch.Reset()
	d.ProductSearch.Reset()
	d.Cart.Reset()
	delete(s.dialogs, sessionID)
}
