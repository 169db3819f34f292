package catalog

import (
	"slices"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"marketplace/internal/catalog/types"
)

// Options are the choices offered by the category and brand filters.
type Options struct {
	Categories []string
	Brands     []string
}

// DeriveOptions collects the distinct non-empty categories and brands of the full
// collection, sorted with English collation. It never looks at a filtered view.
func DeriveOptions(all []types.Product) Options {
	categories := lo.Uniq(lo.Compact(lo.Map(all, func(p types.Product, _ int) string { return p.Category })))
	brands := lo.Uniq(lo.Compact(lo.Map(all, func(p types.Product, _ int) string { return p.Brand })))

	// Collators keep scratch buffers and are not safe to share.
	collate.New(language.English).SortStrings(categories)
	collate.New(language.English).SortStrings(brands)
	return Options{Categories: categories, Brands: brands}
}

// OptionIndex memoizes DeriveOptions on the identity of the collection slice, so the
// options are recomputed only when a different collection is passed in.
type OptionIndex struct {
	mu    sync.Mutex
	key   collectionKey
	valid bool
	opts  Options
}

type collectionKey struct {
	first *types.Product
	n     int
}

func keyOf(all []types.Product) collectionKey {
	if len(all) == 0 {
		return collectionKey{}
	}
	return collectionKey{first: &all[0], n: len(all)}
}

// Get returns copies, so callers may sort or append without touching the memoized options.
func (o *OptionIndex) Get(all []types.Product) Options {
	k := keyOf(all)
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.valid || o.key != k {
		o.opts = DeriveOptions(all)
		o.key = k
		o.valid = true
	}
	return o.opts.clone()
}

func (o Options) clone() Options {
	return Options{Categories: slices.Clone(o.Categories), Brands: slices.Clone(o.Brands)}
}
