package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/shelf/internal/fakestore"
	"github.com/five82/shelf/internal/kv"
)

type fakeGateway struct {
	mu       sync.Mutex
	products []fakestore.Product
	err      error
	calls    []string
	block    chan struct{} // when set, FetchProducts waits on it
	started  chan struct{}
	inFlight int
	maxSeen  int
}

func (g *fakeGateway) enter(call string) error {
	g.mu.Lock()
	g.calls = append(g.calls, call)
	g.inFlight++
	g.maxSeen = max(g.maxSeen, g.inFlight)
	err := g.err
	g.mu.Unlock()
	return err
}

func (g *fakeGateway) leave() {
	g.mu.Lock()
	g.inFlight--
	g.mu.Unlock()
}

func (g *fakeGateway) FetchProducts(ctx context.Context) ([]fakestore.Product, error) {
	err := g.enter("GET")
	defer g.leave()
	if g.started != nil {
		close(g.started)
	}
	if g.block != nil {
		select {
		case <-g.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return append([]fakestore.Product(nil), g.products...), nil
}

func (g *fakeGateway) CreateProduct(_ context.Context, in fakestore.ProductInput) (fakestore.Product, error) {
	err := g.enter("POST")
	defer g.leave()
	if err != nil {
		return fakestore.Product{}, err
	}
	time.Sleep(time.Millisecond)
	return fakestore.Product{ID: 21, Title: in.Title}, nil
}

func (g *fakeGateway) UpdateProduct(_ context.Context, id int64, in fakestore.ProductInput) (fakestore.Product, error) {
	err := g.enter(fmt.Sprintf("PUT %d", id))
	defer g.leave()
	if err != nil {
		return fakestore.Product{}, err
	}
	return fakestore.Product{ID: id, Title: in.Title}, nil
}

func (g *fakeGateway) DeleteProduct(_ context.Context, id int64) error {
	err := g.enter(fmt.Sprintf("DELETE %d", id))
	defer g.leave()
	return err
}

func (g *fakeGateway) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

var errUpstream = fmt.Errorf("%w: api POST /products returned status 500", fakestore.ErrGateway)

func catalog() []fakestore.Product {
	return []fakestore.Product{
		{ID: 1, Title: "Backpack", Price: 109.95, Rating: fakestore.Rating{Rate: 3.9, Count: 120}},
		{ID: 2, Title: "T-Shirt", Price: 22.3},
		{ID: 3, Title: "Jacket", Price: 55.99},
	}
}

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func storedProducts(t *testing.T, store kv.Store) []fakestore.Product {
	t.Helper()
	raw, ok, err := store.Get(context.Background(), kv.KeyProducts)
	require.NoError(t, err)
	require.True(t, ok, "products key not written")
	var items []fakestore.Product
	require.NoError(t, json.Unmarshal([]byte(raw), &items))
	return items
}

func TestProducts_EnsureFetchesWhenStoreEmpty(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	gw := &fakeGateway{products: catalog()}
	p := NewProducts(store, gw)

	var statuses []Status
	cancel := p.Subscribe(func(s ProductSnapshot) { statuses = append(statuses, s.Status) })
	defer cancel()

	require.NoError(t, p.Ensure(ctx))

	snap := p.Snapshot()
	assert.Equal(t, StatusSucceeded, snap.Status)
	assert.Len(t, snap.Items, 3)
	assert.Equal(t, []Status{StatusLoading, StatusSucceeded}, statuses)
	assert.Equal(t, catalog(), storedProducts(t, store))
}

func TestProducts_EnsureUsesStoredItems(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, kv.KeyProducts, `[{"id":9,"title":"Stored"}]`))
	gw := &fakeGateway{products: catalog()}
	p := NewProducts(store, gw)

	require.NoError(t, p.Ensure(ctx))

	assert.Empty(t, gw.Calls(), "stored products must not trigger a fetch")
	snap := p.Snapshot()
	assert.Equal(t, StatusSucceeded, snap.Status)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "Stored", snap.Items[0].Title)
}

func TestProducts_EnsureCorruptStoreIsStorageError(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, kv.KeyProducts, `{broken`))
	p := NewProducts(store, &fakeGateway{})

	err := p.Ensure(ctx)
	assert.ErrorIs(t, err, kv.ErrStorage)
}

func TestProducts_FetchFailureKeepsItems(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	gw := &fakeGateway{products: catalog()}
	p := NewProducts(store, gw)
	require.NoError(t, p.FetchAll(ctx))

	gw.err = errUpstream
	err := p.FetchAll(ctx)
	require.ErrorIs(t, err, fakestore.ErrGateway)

	snap := p.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Contains(t, snap.Error, "status 500")
	assert.Len(t, snap.Items, 3)
}

func TestProducts_CreateAssignsIDAndZeroRating(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	p := NewProducts(store, &fakeGateway{products: catalog()}, WithClock(fixedClock(1_700_000_000_000)))
	require.NoError(t, p.FetchAll(ctx))

	created, err := p.Create(ctx, fakestore.Product{
		ID:     42,
		Title:  "Lamp",
		Price:  12.5,
		Image:  "https://img.example/lamp.png",
		Rating: fakestore.Rating{Rate: 5, Count: 9},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1_700_000_000_000), created.ID, "id comes from the clock, not the caller or gateway")
	assert.Equal(t, fakestore.Rating{}, created.Rating)

	got, ok := p.SelectByID(created.ID)
	require.True(t, ok)
	assert.Equal(t, created, got)

	items := storedProducts(t, store)
	require.Len(t, items, 4)
	assert.Equal(t, created, items[3])

	img, ok, err := store.Get(ctx, kv.KeyProductImageURL)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://img.example/lamp.png", img)
}

func TestProducts_CreateIDsAreUnique(t *testing.T) {
	ctx := context.Background()
	p := NewProducts(kv.NewMemory(), &fakeGateway{}, WithClock(fixedClock(500)))

	seen := map[int64]bool{}
	for i := range 5 {
		created, err := p.Create(ctx, fakestore.Product{Title: fmt.Sprintf("p%d", i)})
		require.NoError(t, err)
		assert.False(t, seen[created.ID], "duplicate id %d", created.ID)
		seen[created.ID] = true
	}
}

func TestProducts_CreateFailureLeavesStateAndStore(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	gw := &fakeGateway{products: catalog()}
	p := NewProducts(store, gw)
	require.NoError(t, p.FetchAll(ctx))
	before := storedProducts(t, store)

	gw.err = errUpstream
	_, err := p.Create(ctx, fakestore.Product{Title: "Lamp"})
	require.ErrorIs(t, err, fakestore.ErrGateway)

	snap := p.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Equal(t, before, snap.Items)
	assert.Equal(t, before, storedProducts(t, store))
	_, ok, err := store.Get(ctx, kv.KeyProductImageURL)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProducts_UpdateReplacesMatchingItem(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	gw := &fakeGateway{products: catalog()}
	p := NewProducts(store, gw)
	require.NoError(t, p.FetchAll(ctx))

	require.NoError(t, p.Update(ctx, fakestore.Product{ID: 1, Title: "Daypack", Price: 80}))

	got, ok := p.SelectByID(1)
	require.True(t, ok)
	assert.Equal(t, "Daypack", got.Title)
	assert.Equal(t, 120, got.Rating.Count, "rating is preserved across edits")
	assert.Equal(t, "Daypack", storedProducts(t, store)[0].Title)
	assert.Equal(t, int64(1), p.Snapshot().Items[0].ID, "order is preserved")
}

func TestProducts_UpdateUnknownIDSkipsGateway(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{products: catalog()}
	p := NewProducts(kv.NewMemory(), gw)
	require.NoError(t, p.FetchAll(ctx))

	err := p.Update(ctx, fakestore.Product{ID: 404, Title: "Ghost"})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []string{"GET"}, gw.Calls())
}

func TestProducts_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	gw := &fakeGateway{products: catalog()}
	p := NewProducts(store, gw)
	require.NoError(t, p.FetchAll(ctx))

	require.NoError(t, p.Delete(ctx, 2))
	afterFirst := p.Snapshot().Items
	require.NoError(t, p.Delete(ctx, 2))

	assert.Equal(t, afterFirst, p.Snapshot().Items)
	assert.Len(t, afterFirst, 2)
	_, ok := p.SelectByID(2)
	assert.False(t, ok)
	assert.Equal(t, []string{"GET", "DELETE 2"}, gw.Calls(), "second delete makes no remote call")
	assert.Len(t, storedProducts(t, store), 2)
}

func TestProducts_DeleteFailureKeepsItem(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{products: catalog()}
	p := NewProducts(kv.NewMemory(), gw)
	require.NoError(t, p.FetchAll(ctx))

	gw.err = errUpstream
	require.ErrorIs(t, p.Delete(ctx, 2), fakestore.ErrGateway)
	_, ok := p.SelectByID(2)
	assert.True(t, ok)
}

func TestProducts_ClearResetsAndPersistsEmpty(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	p := NewProducts(store, &fakeGateway{products: catalog()})
	require.NoError(t, p.FetchAll(ctx))
	before := p.Snapshot().Generation

	require.NoError(t, p.Clear(ctx))

	snap := p.Snapshot()
	assert.Equal(t, before+1, snap.Generation)
	assert.Equal(t, StatusIdle, snap.Status)
	assert.Empty(t, snap.Items)
	assert.Empty(t, snap.Error)
	assert.Empty(t, storedProducts(t, store))
}

func TestProducts_FetchAfterClearIsStale(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	gw := &fakeGateway{
		products: catalog(),
		block:    make(chan struct{}),
		started:  make(chan struct{}),
	}
	p := NewProducts(store, gw)

	done := make(chan error, 1)
	go func() { done <- p.FetchAll(ctx) }()

	<-gw.started
	require.NoError(t, p.Clear(ctx))
	close(gw.block)

	err := <-done
	require.ErrorIs(t, err, ErrStale)
	snap := p.Snapshot()
	assert.Empty(t, snap.Items)
	assert.Equal(t, StatusIdle, snap.Status)
	assert.Empty(t, storedProducts(t, store))
}

func TestProducts_WritesAreSerialized(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{}
	p := NewProducts(kv.NewMemory(), gw)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Create(ctx, fakestore.Product{Title: fmt.Sprintf("p%d", i)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, gw.maxSeen, "gateway calls overlapped")
	assert.Len(t, p.Snapshot().Items, 8)
}

func TestProducts_AcquireHonorsContext(t *testing.T) {
	gw := &fakeGateway{products: catalog(), block: make(chan struct{}), started: make(chan struct{})}
	p := NewProducts(kv.NewMemory(), gw)

	go func() { _ = p.FetchAll(context.Background()) }()
	<-gw.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := p.Delete(ctx, 1)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "err = %v", err)
	close(gw.block)
}

type failingStore struct {
	kv.Store
	fail bool
}

func (s *failingStore) Set(ctx context.Context, key, value string) error {
	if s.fail {
		return fmt.Errorf("%w: set %s: disk full", kv.ErrStorage, key)
	}
	return s.Store.Set(ctx, key, value)
}

func TestProducts_StorageFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: kv.NewMemory()}
	p := NewProducts(store, &fakeGateway{products: catalog()})
	require.NoError(t, p.FetchAll(ctx))

	store.fail = true
	err := p.Delete(ctx, 1)
	require.ErrorIs(t, err, kv.ErrStorage)
	_, ok := p.SelectByID(1)
	assert.True(t, ok, "memory must not run ahead of the store")
	assert.Equal(t, StatusFailed, p.Snapshot().Status)
}

func TestProducts_SnapshotIsCopy(t *testing.T) {
	p := NewProducts(kv.NewMemory(), &fakeGateway{products: catalog()})
	require.NoError(t, p.FetchAll(context.Background()))

	snap := p.Snapshot()
	snap.Items[0].Title = "mutated"
	got, _ := p.SelectByID(1)
	assert.Equal(t, "Backpack", got.Title)
	assert.Greater(t, p.Snapshot().Version, uint64(0))
}
