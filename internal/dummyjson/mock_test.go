package dummyjson

import (
	"context"
	"errors"
	"testing"

	"marketplace/internal/catalog"
)

func TestMock_FixtureCatalog(t *testing.T) {
	t.Parallel()

	m := NewMock()
	resp, err := m.FetchAllProducts(context.Background())
	if err != nil {
		t.Fatalf("fetch all products: %v", err)
	}
	if len(resp.Products) != 24 {
		t.Fatalf("expected 24 fixture products, got %d", len(resp.Products))
	}
	if got := catalog.TotalPages(len(resp.Products), catalog.DefaultPageSize); got != 3 {
		t.Fatalf("expected 3 pages, got %d", got)
	}

	seen := map[int]bool{}
	for _, p := range resp.Products {
		if seen[p.ID] {
			t.Fatalf("duplicate id %d", p.ID)
		}
		seen[p.ID] = true
		if p.Title == "" || p.Category == "" || p.Price.IsZero() {
			t.Fatalf("incomplete fixture product: %+v", p)
		}
	}

	opts := catalog.DeriveOptions(resp.Products)
	if len(opts.Categories) != 5 {
		t.Fatalf("unexpected categories: %v", opts.Categories)
	}
}

func TestMock_FetchAllReturnsCopy(t *testing.T) {
	t.Parallel()

	m := NewMock()
	first, err := m.FetchAllProducts(context.Background())
	if err != nil {
		t.Fatalf("fetch all products: %v", err)
	}
	first.Products[0].Title = "changed"

	second, err := m.FetchAllProducts(context.Background())
	if err != nil {
		t.Fatalf("fetch all products: %v", err)
	}
	if second.Products[0].Title == "changed" {
		t.Fatal("mock leaked its backing slice")
	}
}

func TestMock_FetchProductByID(t *testing.T) {
	t.Parallel()

	m := NewMock()
	p, err := m.FetchProductByID(context.Background(), 5)
	if err != nil {
		t.Fatalf("fetch product: %v", err)
	}
	if p.Title != "Red Nail Polish" {
		t.Fatalf("unexpected product: %q", p.Title)
	}

	if _, err := m.FetchProductByID(context.Background(), 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
