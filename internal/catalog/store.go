package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"marketplace/internal/cache"
	"marketplace/internal/catalog/types"
)

// LoadFailedMessage is shown in place of the list when the catalog could not be fetched.
const LoadFailedMessage = "Failed to load products. Please try again later."

const snapshotKey = "catalog/products.json"

// loadTimeout bounds a shared catalog load, which no longer follows any one caller's context.
const loadTimeout = time.Minute

type Fetcher interface {
	FetchAllProducts(ctx context.Context) (*types.ProductsResponse, error)
}

// Store holds the full collection. It is fetched at most once successfully; a failed
// fetch is reported to the caller and the next call fetches again.
type Store struct {
	fetcher Fetcher
	cache   cache.Cache
	ttl     time.Duration

	group   singleflight.Group
	mu      sync.RWMutex
	loaded  bool
	all     []types.Product
	options OptionIndex
}

// NewStore takes an optional cache (nil disables snapshots).
func NewStore(fetcher Fetcher, c cache.Cache, ttl time.Duration) *Store {
	return &Store{
		fetcher: fetcher,
		cache:   c,
		ttl:     ttl,
	}
}

func (s *Store) cached() ([]types.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.all, s.loaded
}

// Products returns the full collection, loading it on first use. Concurrent callers share
// one load; a caller that gives up gets its own context error and the load carries on for
// the others.
func (s *Store) Products(ctx context.Context) ([]types.Product, error) {
	if all, ok := s.cached(); ok {
		return all, nil
	}
	ch := s.group.DoChan("products", func() (any, error) {
		if all, ok := s.cached(); ok {
			return all, nil
		}
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		all, err := s.load(loadCtx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.all = all
		s.loaded = true
		s.mu.Unlock()
		return all, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]types.Product), nil
	}
}

func (s *Store) load(ctx context.Context) ([]types.Product, error) {
	if all, ok := s.readSnapshot(ctx); ok {
		slog.InfoContext(ctx, "loaded catalog from cache", "count", len(all))
		return all, nil
	}

	resp, err := s.fetcher.FetchAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch all products: %w", err)
	}
	all := resp.Products
	if all == nil {
		all = []types.Product{}
	}
	slog.InfoContext(ctx, "fetched catalog", "count", len(all), "total", resp.Total)
	s.writeSnapshot(ctx, all)
	return all, nil
}

func (s *Store) readSnapshot(ctx context.Context) ([]types.Product, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := cache.GetString(ctx, s.cache, snapshotKey)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			slog.WarnContext(ctx, "failed to read catalog snapshot", "error", err)
		}
		return nil, false
	}
	var all []types.Product
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		slog.WarnContext(ctx, "ignoring corrupt catalog snapshot", "error", err)
		return nil, false
	}
	return all, true
}

func (s *Store) writeSnapshot(ctx context.Context, all []types.Product) {
	if s.cache == nil {
		return
	}
	b, err := json.Marshal(all)
	if err != nil {
		slog.WarnContext(ctx, "failed to encode catalog snapshot", "error", err)
		return
	}
	if err := s.cache.Put(ctx, snapshotKey, string(b), cache.PutOptions{TTL: s.ttl}); err != nil {
		slog.WarnContext(ctx, "failed to write catalog snapshot", "error", err)
	}
}

// Options are derived from the full collection and memoized on it.
func (s *Store) Options(all []types.Product) Options {
	return s.options.Get(all)
}

// Lookup finds a product of the loaded collection by id. It never fetches.
func (s *Store) Lookup(id int) (types.Product, bool) {
	all, ok := s.cached()
	if !ok {
		return types.Product{}, false
	}
	for _, p := range all {
		if p.ID == id {
			return p, true
		}
	}
	return types.Product{}, false
}

// View is what the list surface renders.
type View struct {
	State   ViewState
	Slice   Slice
	Options Options
}

// Build loads the catalog and applies state. When loading fails the transform is not run.
func (s *Store) Build(ctx context.Context, state ViewState, pageSize int) (*View, error) {
	all, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}
	return &View{
		State:   state,
		Slice:   ComputeVisibleSlice(all, state, pageSize),
		Options: s.Options(all),
	}, nil
}

func (s *Store) Ready(ctx context.Context) error {
	_, err := s.Products(ctx)
	return err
}

// Summary is a short human readable line for logs and the CLI.
func (v *View) Summary() string {
	var b strings.Builder
	if v.Slice.TotalCount == 0 {
		b.WriteString("No products found.")
		return b.String()
	}
	fmt.Fprintf(&b, "Showing %d-%d of %d (page %d of %d)", v.Slice.First, v.Slice.Last, v.Slice.TotalCount, v.Slice.Page, v.Slice.TotalPages)
	return b.String()
}
