package main

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/catalog"
	"marketplace/internal/detail"
	"marketplace/internal/dummyjson"
)

func runWithMock(t *testing.T, opts cliOptions) (string, error) {
	t.Helper()
	mock := dummyjson.NewMock()
	var out bytes.Buffer
	err := runCLI(context.Background(), &out, catalog.NewStore(mock, nil, 0), mock, opts, 10)
	return out.String(), err
}

func TestCLIList(t *testing.T) {
	t.Parallel()
	out, err := runWithMock(t, cliOptions{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 11, strings.Count(out, "\n"))
	assert.Contains(t, out, "Showing 1-10 of 24 (page 1 of 3)")
	assert.Contains(t, out, "$     8.94  10% OFF")
}

func TestCLISearch(t *testing.T) {
	t.Parallel()
	out, err := runWithMock(t, cliOptions{Search: "NAIL", Page: 1})
	require.NoError(t, err)
	assert.Contains(t, out, "Red Nail Polish")
	assert.Contains(t, out, "Showing 1-1 of 1 (page 1 of 1)")
}

func TestCLIPageOutOfRange(t *testing.T) {
	t.Parallel()
	out, err := runWithMock(t, cliOptions{Category: "groceries", Page: 2})
	require.NoError(t, err)
	assert.Contains(t, out, "page 2 is out of range, showing page 1")
	assert.Contains(t, out, "Cooking Oil")
}

func TestCLIPageWithLeadingZero(t *testing.T) {
	t.Parallel()
	mock := dummyjson.NewMock()
	store := catalog.NewStore(mock, nil, 0)
	for _, raw := range []string{"01", "02"} {
		var out bytes.Buffer
		err := printList(context.Background(), &out, store, url.Values{catalog.ParamPage: {raw}}, 10)
		require.NoError(t, err)
		assert.NotContains(t, out.String(), "out of range", raw)
	}

	var out bytes.Buffer
	require.NoError(t, printList(context.Background(), &out, store, url.Values{catalog.ParamPage: {"04"}}, 10))
	assert.Contains(t, out.String(), "page 04 is out of range, showing page 1")
}

func TestCLIDetail(t *testing.T) {
	t.Parallel()
	out, err := runWithMock(t, cliOptions{ID: 5, Page: 1})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Red Nail Polish\n"), "only the detail is printed")
	assert.Contains(t, out, "Brand: Nail Couture")
	assert.Contains(t, out, "Customer Reviews")
	assert.Contains(t, out, "Free shipping on orders over $50")
}

func TestCLIDetailNotFoundKeepsList(t *testing.T) {
	t.Parallel()
	out, err := runWithMock(t, cliOptions{ID: 999, Category: "beauty", Page: 1})
	require.Error(t, err)
	assert.Equal(t, detail.NotFoundMessage, err.Error())
	assert.Contains(t, out, "Showing 1-5 of 5 (page 1 of 1)")
}
