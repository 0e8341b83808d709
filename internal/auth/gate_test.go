package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/five82/shelf/internal/fakestore"
	"github.com/five82/shelf/internal/kv"
	"github.com/five82/shelf/internal/state"
)

type stubGateway struct{ items []fakestore.Product }

func (s stubGateway) FetchProducts(context.Context) ([]fakestore.Product, error) {
	return s.items, nil
}

func (stubGateway) CreateProduct(context.Context, fakestore.ProductInput) (fakestore.Product, error) {
	return fakestore.Product{}, nil
}

func (stubGateway) UpdateProduct(context.Context, int64, fakestore.ProductInput) (fakestore.Product, error) {
	return fakestore.Product{}, nil
}

func (stubGateway) DeleteProduct(context.Context, int64) error { return nil }

type fixture struct {
	store    kv.Store
	users    *state.Users
	products *state.Products
	hasher   Hasher
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	store := kv.NewMemory()
	hasher := NewHasher(bcrypt.MinCost)
	users := state.NewUsers(store, state.WithPasswordHasher(hasher.Hash))
	require.NoError(t, users.Restore(ctx))
	require.NoError(t, users.AddPredefinedIfEmpty(ctx))
	products := state.NewProducts(store, stubGateway{items: []fakestore.Product{{ID: 1, Title: "Backpack"}}})
	return fixture{store: store, users: users, products: products, hasher: hasher}
}

func (f fixture) gate(t *testing.T) *Gate {
	t.Helper()
	g, err := NewGate(context.Background(), f.store, f.users, f.products, f.hasher, nil)
	require.NoError(t, err)
	return g
}

func TestHasher_RoundTrip(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	hash, err := h.Hash("Admin#123")
	require.NoError(t, err)
	assert.NotEqual(t, "Admin#123", hash)
	assert.NoError(t, h.Compare(hash, "Admin#123"))
	assert.Error(t, h.Compare(hash, "admin#123"))
}

func TestNewHasher_DefaultsLowCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).Cost)
	assert.Equal(t, bcrypt.MinCost, NewHasher(bcrypt.MinCost).Cost)
}

func TestGate_LoginRequiresExactMatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seed := state.PredefinedUsers[0]

	tests := []struct {
		name     string
		username string
		password string
		wantOK   bool
	}{
		{"exact", seed.Username, seed.Password, true},
		{"wrong password", seed.Username, seed.Password + "x", false},
		{"case differs", "ADMIN@shelf.dev", seed.Password, false},
		{"unknown user", "nobody@shelf.dev", seed.Password, false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := f.gate(t)
			err := g.Login(ctx, tt.username, tt.password)
			if tt.wantOK {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrInvalidCredentials)
			}
			assert.Equal(t, tt.wantOK, g.Authenticated())

			raw, ok, err := f.store.Get(ctx, kv.KeyAuthenticated)
			require.NoError(t, err)
			if tt.wantOK {
				assert.Equal(t, "true", raw)
			} else {
				assert.False(t, ok, "failed login must not persist the flag")
			}
			require.NoError(t, f.store.Delete(ctx, kv.KeyAuthenticated))
		})
	}
}

func TestGate_FlagSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seed := state.PredefinedUsers[1]

	require.NoError(t, f.gate(t).Login(ctx, seed.Username, seed.Password))
	assert.True(t, f.gate(t).Authenticated())
}

func TestGate_LogoutResetsFlagAndProducts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seed := state.PredefinedUsers[0]
	g := f.gate(t)
	require.NoError(t, g.Login(ctx, seed.Username, seed.Password))
	require.NoError(t, f.products.FetchAll(ctx))
	require.Equal(t, 1, f.products.Snapshot().Len())

	require.NoError(t, g.Logout(ctx))

	assert.False(t, g.Authenticated())
	_, ok, err := f.store.Get(ctx, kv.KeyAuthenticated)
	require.NoError(t, err)
	assert.False(t, ok)

	snap := f.products.Snapshot()
	assert.Empty(t, snap.Items)
	assert.Equal(t, state.StatusIdle, snap.Status)
	raw, _, err := f.store.Get(ctx, kv.KeyProducts)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}
