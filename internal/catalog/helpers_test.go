package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"

	"marketplace/internal/catalog/types"
)

func product(id int, title, category, brand string) types.Product {
	return types.Product{
		ID:       id,
		Title:    title,
		Category: category,
		Brand:    brand,
		Price:    decimal.NewFromInt(10),
		Stock:    5,
	}
}

func numbered(n int) []types.Product {
	all := make([]types.Product, 0, n)
	for i := 1; i <= n; i++ {
		all = append(all, product(i, fmt.Sprintf("Item %02d", i), "misc", "Acme"))
	}
	return all
}

func ids(ps []types.Product) []int {
	out := make([]int, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}
