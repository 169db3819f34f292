package dummyjson

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"marketplace/internal/catalog/types"
)

//go:embed testdata/products.json
var fixtureProducts []byte

// Mock serves the embedded fixture catalog without touching the network.
type Mock struct {
	once     sync.Once
	products []types.Product
	err      error
}

func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) load() ([]types.Product, error) {
	m.once.Do(func() {
		resp, err := ParseProductsResponse(fixtureProducts)
		if err != nil {
			m.err = &ParseError{Operation: "products", Err: err}
			return
		}
		m.products = resp.Products
	})
	return m.products, m.err
}

func (m *Mock) FetchAllProducts(_ context.Context) (*types.ProductsResponse, error) {
	all, err := m.load()
	if err != nil {
		return nil, err
	}
	out := make([]types.Product, len(all))
	copy(out, all)
	return &types.ProductsResponse{Products: out, Total: len(out), Limit: len(out)}, nil
}

func (m *Mock) FetchProductByID(_ context.Context, id int) (*types.Product, error) {
	all, err := m.load()
	if err != nil {
		return nil, err
	}
	for _, p := range all {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
}

func (m *Mock) Ready(context.Context) error {
	_, err := m.load()
	return err
}
