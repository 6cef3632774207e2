package session

import (
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Registry hands out one Gate per browser session and keeps it for the
// process lifetime, so the bootstrap-once rule holds across requests.
type Registry struct {
	mu     sync.Mutex
	gates  map[string]*Gate
	client *redis.Client
	ttl    time.Duration
}

// NewRegistry constructs a Registry backed by Redis token stores.
func NewRegistry(client *redis.Client, ttl time.Duration) *Registry {
	return &Registry{gates: make(map[string]*Gate), client: client, ttl: ttl}
}

// Gate returns the gate for the given browser session, creating it on
// first sight.
func (r *Registry) Gate(sessionID string) *Gate {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.gates[sessionID]; ok {
		return g
	}
	g := NewGate(NewRedisTokenStore(r.client, sessionID, r.ttl))
	r.gates[sessionID] = g
	return g
}

// Forget drops the gate for a destroyed browser session.
func (r *Registry) Forget(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.gates, sessionID)
}
