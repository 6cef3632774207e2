// Package session implements the authentication gate for the console.
//
// Each browser session owns one Gate. The gate is the single source of
// truth for "is there a valid-looking session" and the sole authority for
// terminating one: explicit login, explicit logout and 401 interception
// all funnel through SetSession.
package session

import (
	"context"
	"strings"
	"sync"
)

// State enumerates the gate lifecycle.
type State int

const (
	// Bootstrapping holds until the stored token has been read once.
	Bootstrapping State = iota
	Unauthenticated
	Authenticated
)

func (s State) String() string {
	switch s {
	case Bootstrapping:
		return "bootstrapping"
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	}
	return "unknown"
}

// Decision is the outcome of a route accessibility check.
type Decision int

const (
	// Hold means no redirect decision may be made yet (still bootstrapping).
	Hold Decision = iota
	Allow
	RedirectLogin
	RedirectHome
)

// TokenStore persists the bearer token across requests.
type TokenStore interface {
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Gate owns the current bearer token and derives logged-in state from it.
type Gate struct {
	mu           sync.Mutex
	store        TokenStore
	token        string
	bootstrapped bool
}

// NewGate constructs a Gate over the given token store. The gate starts in
// Bootstrapping and leaves it on the first Initialize call, never to return.
func NewGate(store TokenStore) *Gate {
	return &Gate{store: store}
}

// Initialize reads the persisted token. Only the first call performs the
// read; later calls are no-ops regardless of outcome, so the bootstrap
// transition happens exactly once per gate lifetime.
func (g *Gate) Initialize(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.bootstrapped {
		return nil
	}
	token, err := g.store.Read(ctx)
	if err != nil {
		return err
	}
	g.token = token
	g.bootstrapped = true
	return nil
}

// SetSession is the only mutator of the token. A non-empty token is
// persisted and adopted; an empty token erases the persisted copy and
// marks the gate unauthenticated.
func (g *Gate) SetSession(ctx context.Context, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if token != "" {
		if err := g.store.Write(ctx, token); err != nil {
			return err
		}
		g.token = token
		return nil
	}
	if err := g.store.Clear(ctx); err != nil {
		return err
	}
	g.token = ""
	return nil
}

// Token returns the current bearer token, empty when unauthenticated.
func (g *Gate) Token() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.token
}

// IsAuthenticated reports whether a token is held.
func (g *Gate) IsAuthenticated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.token != ""
}

// IsBootstrapping reports whether the stored token has not been read yet.
func (g *Gate) IsBootstrapping() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.bootstrapped
}

// State returns the current lifecycle state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch {
	case !g.bootstrapped:
		return Bootstrapping
	case g.token != "":
		return Authenticated
	default:
		return Unauthenticated
	}
}

// publicPrefixes lists routes reachable without authentication. They are
// reachable ONLY without authentication; a logged-in operator is sent home.
var publicPrefixes = []string{"/login"}

func isPublicPath(path string) bool {
	for _, p := range publicPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// RouteDecision applies the access policy for the given path. During
// bootstrap no redirect decision is made.
func (g *Gate) RouteDecision(path string) Decision {
	st := g.State()
	if st == Bootstrapping {
		return Hold
	}
	if isPublicPath(path) {
		if st == Authenticated {
			return RedirectHome
		}
		return Allow
	}
	if st != Authenticated {
		return RedirectLogin
	}
	return Allow
}
