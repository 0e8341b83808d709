package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/five82/shelf/internal/fakestore"
	"github.com/five82/shelf/internal/kv"
	"github.com/five82/shelf/internal/logging"
)

// ProductSnapshot is the view-facing copy of the products collection.
type ProductSnapshot = Snapshot[fakestore.Product]

// Products mirrors the remote catalog into memory and the local store. Every
// write goes to the gateway first; only a successful round-trip is committed
// locally.
type Products struct {
	c       *collection[fakestore.Product]
	gateway fakestore.Gateway
	store   kv.Store
	clock   func() time.Time
	log     *slog.Logger
}

// Option customizes a container.
type Option func(*options)

type options struct {
	clock func() time.Time
	log   *slog.Logger
	hash  func(string) (string, error)
}

// WithClock overrides the id source. Ids are the clock's Unix milliseconds.
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

// WithPasswordHasher sets the hash applied to seed passwords.
func WithPasswordHasher(hash func(string) (string, error)) Option {
	return func(o *options) { o.hash = hash }
}

// WithLogger attaches a logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

func buildOptions(opts []Option) options {
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = slog.New(slog.DiscardHandler)
	}
	return o
}

func productID(p fakestore.Product) int64 { return p.ID }

// NewProducts builds an empty, idle products container.
func NewProducts(store kv.Store, gateway fakestore.Gateway, opts ...Option) *Products {
	o := buildOptions(opts)
	return &Products{
		c:       newCollection(kv.KeyProducts, store, productID),
		gateway: gateway,
		store:   store,
		clock:   o.clock,
		log:     o.log.With(slog.String("collection", kv.KeyProducts)),
	}
}

// Snapshot returns a copy of the current state.
func (p *Products) Snapshot() ProductSnapshot { return p.c.snapshot() }

// Subscribe registers fn for every state change. The returned func
// unregisters it.
func (p *Products) Subscribe(fn func(ProductSnapshot)) func() { return p.c.subscribe(fn) }

// SelectByID looks up a product without touching state.
func (p *Products) SelectByID(id int64) (fakestore.Product, bool) { return p.c.selectByID(id) }

// Ensure seeds the collection: stored products are loaded as-is, and an empty
// store triggers a remote fetch.
func (p *Products) Ensure(ctx context.Context) error {
	stored, err := p.c.loadStored(ctx)
	if err != nil {
		return err
	}
	if len(stored) > 0 {
		p.LoadFromLocalStore(stored)
		return nil
	}
	return p.FetchAll(ctx)
}

// LoadFromLocalStore replaces items unconditionally and marks the collection
// succeeded. Nothing is written back.
func (p *Products) LoadFromLocalStore(items []fakestore.Product) {
	p.c.replace(items, StatusSucceeded)
}

// FetchAll replaces the collection with the remote catalog and persists it.
// On failure the status becomes failed and items are left alone.
func (p *Products) FetchAll(ctx context.Context) error {
	if err := p.c.acquire(ctx); err != nil {
		return err
	}
	defer p.c.release()

	gen := p.c.begin()
	items, err := p.gateway.FetchProducts(ctx)
	if err != nil {
		p.log.Warn("fetch products failed", logging.Err(err))
		p.c.fail(gen, err)
		return fmt.Errorf("fetch products: %w", err)
	}
	if err := p.c.commit(ctx, gen, func([]fakestore.Product) []fakestore.Product { return items }); err != nil {
		return p.commitErr("fetch", err)
	}
	p.log.Info("products fetched", slog.Int("count", len(items)))
	return nil
}

// Create assigns a fresh id and a zero rating, submits the product, and on
// success appends it. The locally generated id is kept regardless of what the
// gateway echoes.
func (p *Products) Create(ctx context.Context, product fakestore.Product) (fakestore.Product, error) {
	if err := p.c.acquire(ctx); err != nil {
		return fakestore.Product{}, err
	}
	defer p.c.release()

	product.ID = nextID(p.clock, p.c.snapshot().Items, productID)
	product.Rating = fakestore.Rating{}

	gen := p.c.begin()
	if _, err := p.gateway.CreateProduct(ctx, product.Input()); err != nil {
		p.log.Warn("create product failed", slog.Int64("id", product.ID), logging.Err(err))
		p.c.fail(gen, err)
		return fakestore.Product{}, fmt.Errorf("create product: %w", err)
	}
	err := p.c.commit(ctx, gen, func(items []fakestore.Product) []fakestore.Product {
		return append(items, product)
	})
	if err != nil {
		return fakestore.Product{}, p.commitErr("create", err)
	}
	if err := p.store.Set(ctx, kv.KeyProductImageURL, product.Image); err != nil {
		return product, fmt.Errorf("persist %s: %w", kv.KeyProductImageURL, err)
	}
	p.log.Info("product created", slog.Int64("id", product.ID))
	return product, nil
}

// Update submits product and replaces the local item with the same id. The
// rating is carried over from the stored item.
func (p *Products) Update(ctx context.Context, product fakestore.Product) error {
	if err := p.c.acquire(ctx); err != nil {
		return err
	}
	defer p.c.release()

	current, ok := p.c.selectByID(product.ID)
	if !ok {
		return fmt.Errorf("update product %d: %w", product.ID, ErrNotFound)
	}
	product.Rating = current.Rating

	gen := p.c.begin()
	if _, err := p.gateway.UpdateProduct(ctx, product.ID, product.Input()); err != nil {
		p.log.Warn("update product failed", slog.Int64("id", product.ID), logging.Err(err))
		p.c.fail(gen, err)
		return fmt.Errorf("update product %d: %w", product.ID, err)
	}
	err := p.c.commit(ctx, gen, func(items []fakestore.Product) []fakestore.Product {
		if i := p.c.indexIn(items, product.ID); i >= 0 {
			items[i] = product
		}
		return items
	})
	if err != nil {
		return p.commitErr("update", err)
	}
	p.log.Info("product updated", slog.Int64("id", product.ID))
	return nil
}

// Delete removes the product remotely, then locally. An unknown id is a no-op.
func (p *Products) Delete(ctx context.Context, id int64) error {
	if err := p.c.acquire(ctx); err != nil {
		return err
	}
	defer p.c.release()

	if _, ok := p.c.selectByID(id); !ok {
		return nil
	}

	gen := p.c.begin()
	if err := p.gateway.DeleteProduct(ctx, id); err != nil {
		p.log.Warn("delete product failed", slog.Int64("id", id), logging.Err(err))
		p.c.fail(gen, err)
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	err := p.c.commit(ctx, gen, func(items []fakestore.Product) []fakestore.Product {
		if i := p.c.indexIn(items, id); i >= 0 {
			items = append(items[:i], items[i+1:]...)
		}
		return items
	})
	if err != nil {
		return p.commitErr("delete", err)
	}
	p.log.Info("product deleted", slog.Int64("id", id))
	return nil
}

// Clear empties the collection, resets it to idle, and persists the empty
// set. It does not wait for in-flight commands; their results are dropped.
func (p *Products) Clear(ctx context.Context) error {
	if err := p.c.reset(ctx); err != nil {
		return fmt.Errorf("clear products: %w", err)
	}
	return nil
}

func (p *Products) commitErr(op string, err error) error {
	if errors.Is(err, ErrStale) {
		p.log.Info("dropped stale result", slog.String("op", op))
	} else {
		p.log.Error("commit failed", slog.String("op", op), logging.Err(err))
	}
	return fmt.Errorf("%s products: %w", op, err)
}
