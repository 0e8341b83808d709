// Package auth implements the console's login gate: a persisted boolean flag
// checked against the local users collection.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/five82/shelf/internal/kv"
	"github.com/five82/shelf/internal/logging"
	"github.com/five82/shelf/internal/state"
)

// ErrInvalidCredentials is returned for an unknown username or a wrong
// password. The two cases are not distinguished.
var ErrInvalidCredentials = errors.New("invalid username or password")

const flagValue = "true"

// UserLookup finds an account by exact username.
type UserLookup interface {
	FindByUsername(username string) (state.User, bool)
}

// Clearer empties a collection. Logout clears products through it.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Gate tracks whether the console is logged in.
type Gate struct {
	store    kv.Store
	users    UserLookup
	products Clearer
	hasher   Hasher
	log      *slog.Logger

	mu            sync.RWMutex
	authenticated bool
}

// NewGate builds a Gate and restores the flag from store.
func NewGate(ctx context.Context, store kv.Store, users UserLookup, products Clearer, hasher Hasher, log *slog.Logger) (*Gate, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	raw, ok, err := store.Get(ctx, kv.KeyAuthenticated)
	if err != nil {
		return nil, fmt.Errorf("restore auth flag: %w", err)
	}
	return &Gate{
		store:         store,
		users:         users,
		products:      products,
		hasher:        hasher,
		log:           log,
		authenticated: ok && raw == flagValue,
	}, nil
}

// Authenticated reports the current flag.
func (g *Gate) Authenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.authenticated
}

// Login sets the flag if username exists and password matches its hash.
func (g *Gate) Login(ctx context.Context, username, password string) error {
	user, ok := g.users.FindByUsername(username)
	if !ok {
		g.log.Info("login rejected", slog.String("reason", "unknown user"))
		return ErrInvalidCredentials
	}
	if err := g.hasher.Compare(user.Password, password); err != nil {
		g.log.Info("login rejected", slog.String("reason", "password mismatch"), slog.Int64("user_id", user.ID))
		return ErrInvalidCredentials
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.store.Set(ctx, kv.KeyAuthenticated, flagValue); err != nil {
		return fmt.Errorf("persist auth flag: %w", err)
	}
	g.authenticated = true
	g.log.Info("login", slog.Int64("user_id", user.ID))
	return nil
}

// Logout clears the flag and the products collection.
func (g *Gate) Logout(ctx context.Context) error {
	g.mu.Lock()
	if err := g.store.Delete(ctx, kv.KeyAuthenticated); err != nil {
		g.mu.Unlock()
		return fmt.Errorf("clear auth flag: %w", err)
	}
	g.authenticated = false
	g.mu.Unlock()

	if err := g.products.Clear(ctx); err != nil {
		g.log.Error("clear products on logout", logging.Err(err))
		return fmt.Errorf("logout: %w", err)
	}
	g.log.Info("logout")
	return nil
}
