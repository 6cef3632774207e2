package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almacen-console/almacen-console/internal/session"
	_ "github.com/almacen-console/almacen-console/testing"
)

func TestSetSessionDerivesAuthenticated(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryTokenStore()
	g := session.NewGate(store)
	require.NoError(t, g.Initialize(ctx))

	sequences := [][]string{
		{"tok-a", "", "tok-b"},
		{"", ""},
		{"tok-a", "tok-b", ""},
	}
	for _, seq := range sequences {
		for _, token := range seq {
			require.NoError(t, g.SetSession(ctx, token))
			assert.Equal(t, token != "", g.IsAuthenticated())
			assert.Equal(t, token, g.Token())
		}
	}
}

func TestBootstrapHappensExactlyOnce(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryTokenStore()
	store.Seed("persisted")
	g := session.NewGate(store)

	assert.True(t, g.IsBootstrapping())
	assert.Equal(t, session.Bootstrapping, g.State())

	require.NoError(t, g.Initialize(ctx))
	assert.False(t, g.IsBootstrapping())
	assert.Equal(t, session.Authenticated, g.State())
	assert.Equal(t, 1, store.Reads)

	// Later initializations and logouts never re-enter bootstrap.
	require.NoError(t, g.Initialize(ctx))
	assert.Equal(t, 1, store.Reads)
	require.NoError(t, g.SetSession(ctx, ""))
	assert.False(t, g.IsBootstrapping())
	assert.Equal(t, session.Unauthenticated, g.State())
	require.NoError(t, g.Initialize(ctx))
	assert.Equal(t, 1, store.Reads)
}

func TestRouteDecisions(t *testing.T) {
	ctx := context.Background()
	g := session.NewGate(session.NewMemoryTokenStore())

	// No redirects while bootstrapping.
	assert.Equal(t, session.Hold, g.RouteDecision("/purchases"))
	assert.Equal(t, session.Hold, g.RouteDecision("/login"))

	require.NoError(t, g.Initialize(ctx))
	assert.Equal(t, session.Allow, g.RouteDecision("/login"))
	assert.Equal(t, session.RedirectLogin, g.RouteDecision("/purchases"))
	assert.Equal(t, session.RedirectLogin, g.RouteDecision("/"))

	require.NoError(t, g.SetSession(ctx, "tok"))
	assert.Equal(t, session.RedirectHome, g.RouteDecision("/login"))
	assert.Equal(t, session.Allow, g.RouteDecision("/purchases"))
}

func TestClearWhileUnauthenticatedIsHarmless(t *testing.T) {
	ctx := context.Background()
	g := session.NewGate(session.NewMemoryTokenStore())
	require.NoError(t, g.Initialize(ctx))
	require.NoError(t, g.SetSession(ctx, ""))
	require.NoError(t, g.SetSession(ctx, ""))
	assert.False(t, g.IsAuthenticated())
	assert.Equal(t, session.Unauthenticated, g.State())
}

func TestRedisTokenStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	store := session.NewRedisTokenStore(client, "sess-1", time.Hour)
	token, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Write(ctx, "tok-1"))
	token, err = store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	require.NoError(t, store.Clear(ctx))
	token, err = store.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestRegistryReturnsSameGate(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	reg := session.NewRegistry(client, time.Hour)

	g1 := reg.Gate("sess-1")
	g2 := reg.Gate("sess-1")
	assert.Same(t, g1, g2)

	require.NoError(t, g1.Initialize(context.Background()))
	assert.False(t, reg.Gate("sess-1").IsBootstrapping())

	reg.Forget("sess-1")
	assert.True(t, reg.Gate("sess-1").IsBootstrapping())
}
