package session

import "context"

type gateContextKey struct{}

// ContextWithGate stores the gate in context for the request lifetime.
func ContextWithGate(ctx context.Context, g *Gate) context.Context {
	return context.WithValue(ctx, gateContextKey{}, g)
}

// GateFromContext extracts the gate from context, nil when absent.
func GateFromContext(ctx context.Context) *Gate {
	g, _ := ctx.Value(gateContextKey{}).(*Gate)
	return g
}
