package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/five82/shelf/internal/auth"
	"github.com/five82/shelf/internal/fakestore"
	"github.com/five82/shelf/internal/kv"
	"github.com/five82/shelf/internal/logging"
	"github.com/five82/shelf/internal/state"
)

// Session is the set of containers one console run works against.
type Session struct {
	Products *state.Products
	Users    *state.Users
	Gate     *auth.Gate
	Alert    *state.Alert
}

// NewSession builds the containers over store, restores users (seeding the
// built-in accounts into an empty store) and, for a session that is still
// logged in, warms the product collection before the UI starts.
//
// Storage failures are fatal. A catalog failure during warm-up is only
// logged; the products screen shows it and can retry.
func NewSession(ctx context.Context, store kv.Store, gateway fakestore.Gateway, hasher auth.Hasher, log *slog.Logger) (*Session, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	products := state.NewProducts(store, gateway, state.WithLogger(log))
	users := state.NewUsers(store,
		state.WithPasswordHasher(hasher.Hash),
		state.WithLogger(log))

	if err := users.Restore(ctx); err != nil {
		return nil, fmt.Errorf("restore users: %w", err)
	}
	if err := users.AddPredefinedIfEmpty(ctx); err != nil {
		return nil, fmt.Errorf("seed users: %w", err)
	}

	gate, err := auth.NewGate(ctx, store, users, products, hasher, log.With(slog.String("component", "auth")))
	if err != nil {
		return nil, err
	}

	if gate.Authenticated() {
		err := products.Ensure(ctx)
		switch {
		case err == nil:
		case errors.Is(err, kv.ErrStorage):
			return nil, fmt.Errorf("load products: %w", err)
		default:
			log.Warn("initial product load failed", logging.Err(err))
		}
	}

	return &Session{Products: products, Users: users, Gate: gate, Alert: &state.Alert{}}, nil
}
