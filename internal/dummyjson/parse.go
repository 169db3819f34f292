package dummyjson

import (
	"encoding/json"
	"errors"
	"fmt"

	"marketplace/internal/catalog/types"
)

// ParseProductsResponse accepts the wrapped {"products": [...]} payload or a bare array.
func ParseProductsResponse(data []byte) (*types.ProductsResponse, error) {
	var shape map[string]json.RawMessage
	if err := json.Unmarshal(data, &shape); err == nil {
		if _, ok := shape["products"]; !ok {
			return nil, errors.New("missing products field")
		}
		var resp types.ProductsResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, fmt.Errorf("unmarshal products payload: %w", err)
		}
		if resp.Total == 0 {
			resp.Total = len(resp.Products)
		}
		return &resp, nil
	}

	var products []types.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("unmarshal products payload: %w", err)
	}
	return &types.ProductsResponse{
		Products: products,
		Total:    len(products),
		Limit:    len(products),
	}, nil
}

func ParseProduct(data []byte) (*types.Product, error) {
	var p types.Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal product payload: %w", err)
	}
	return &p, nil
}
