package detail

import (
	"context"
	"log/slog"

	"marketplace/internal/catalog/types"
	"marketplace/internal/dummyjson"
)

const (
	NotFoundMessage   = "Product not found"
	LoadFailedMessage = "Failed to load product details. Please try again later."
)

// Status is the content state of the detail surfaces, independent of Mode.
type Status int

const (
	Idle Status = iota
	Loading
	Ready
	Failed
	NotFound
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	case NotFound:
		return "not_found"
	default:
		return "idle"
	}
}

// Content is what both surfaces show for the current selection.
type Content struct {
	Status  Status
	Product *types.Product
	Message string
}

// ContentFor converts a fetch result into Content.
func ContentFor(p *types.Product, err error) Content {
	switch {
	case err == nil && p != nil:
		return Content{Status: Ready, Product: p}
	case err == nil, dummyjson.KindOf(err) == dummyjson.KindNotFound:
		return Content{Status: NotFound, Message: NotFoundMessage}
	default:
		return Content{Status: Failed, Message: LoadFailedMessage}
	}
}

type Fetcher interface {
	FetchProductByID(ctx context.Context, id int) (*types.Product, error)
}

// Ticket identifies one fetch. Only the ticket of the latest Begin can resolve.
type Ticket struct {
	ID  int
	Gen uint64
}

// Loader tracks the fetch for the current selection and drops responses for earlier
// ones. It is not safe for concurrent use; the owning event loop serializes calls.
type Loader struct {
	gen     uint64
	current Ticket
	content Content
}

// Begin starts a fetch for id and puts the content into Loading.
func (l *Loader) Begin(id int) Ticket {
	l.gen++
	l.current = Ticket{ID: id, Gen: l.gen}
	l.content = Content{Status: Loading}
	return l.current
}

// Resolve applies a fetch result and reports whether it was current.
func (l *Loader) Resolve(t Ticket, p *types.Product, err error) bool {
	if t != l.current || l.content.Status != Loading {
		return false
	}
	l.content = ContentFor(p, err)
	return true
}

// Reset forgets the selection. Responses still in flight will not apply.
func (l *Loader) Reset() {
	l.gen++
	l.current = Ticket{Gen: l.gen}
	l.content = Content{}
}

func (l *Loader) Content() Content {
	return l.content
}

func (l *Loader) Current() Ticket {
	return l.current
}

// Load fetches id synchronously and returns its Content.
func Load(ctx context.Context, f Fetcher, id int) Content {
	p, err := f.FetchProductByID(ctx, id)
	c := ContentFor(p, err)
	switch c.Status {
	case NotFound:
		slog.InfoContext(ctx, "product not found", "id", id)
	case Failed:
		slog.ErrorContext(ctx, "failed to load product", "id", id, "error", err)
	}
	return c
}
