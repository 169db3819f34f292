package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/catalog"
	"marketplace/internal/catalog/types"
	"marketplace/internal/config"
	"marketplace/internal/detail"
	"marketplace/internal/dummyjson"
)

type brokenAPI struct{}

func (brokenAPI) FetchAllProducts(context.Context) (*types.ProductsResponse, error) {
	return nil, errors.New("connection refused")
}

func (brokenAPI) FetchProductByID(context.Context, int) (*types.Product, error) {
	return nil, errors.New("connection refused")
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newModel(t *testing.T, list catalog.Fetcher, products detail.Fetcher, width int) *Model {
	t.Helper()
	m := New(context.Background(), catalog.NewStore(list, nil, 0), products, config.UIConfig{PageSize: 10, NarrowColumns: 100})
	m.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	m.Update(m.Init()())
	m.Update(tea.WindowSizeMsg{Width: width, Height: 50})
	return m
}

// press sends msg and returns the command without running it.
func press(m *Model, msg tea.Msg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

func TestLoadsFirstPage(t *testing.T) {
	t.Parallel()
	mock := dummyjson.NewMock()
	m := newModel(t, mock, mock, 160)

	assert.False(t, m.loading)
	assert.Len(t, m.slice.Items, 10)
	assert.Equal(t, 24, m.slice.TotalCount)
	assert.Contains(t, m.View(), "Showing 1-10 of 24  Page 1 of 3")
	assert.Contains(t, m.View(), "No Product Selected")
}

func TestPaging(t *testing.T) {
	t.Parallel()
	mock := dummyjson.NewMock()
	m := newModel(t, mock, mock, 160)

	press(m, tea.KeyMsg{Type: tea.KeyDown})
	press(m, tea.KeyMsg{Type: tea.KeyRight})
	press(m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 3, m.slice.Page)
	assert.Len(t, m.slice.Items, 4)

	press(m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 3, m.slice.Page, "next past the last page is ignored")

	press(m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 2, m.slice.Page)
	assert.Equal(t, 11, m.slice.First)
}

func TestFilters(t *testing.T) {
	t.Parallel()
	mock := dummyjson.NewMock()
	m := newModel(t, mock, mock, 160)
	press(m, tea.KeyMsg{Type: tea.KeyRight})

	press(m, runes("c"))
	assert.Equal(t, "beauty", m.state.Category)
	assert.Equal(t, 1, m.slice.Page, "filter changes return to the first page")
	assert.Equal(t, 5, m.slice.TotalCount)

	press(m, runes("c"))
	assert.Equal(t, "fragrances", m.state.Category)

	press(m, runes("b"))
	assert.Equal(t, "Annibale Colombo", m.state.Brand)
	assert.True(t, m.slice.Empty())
	assert.Contains(t, m.View(), "No products found.")

	press(m, runes("x"))
	assert.False(t, m.state.Filtered())
	assert.Equal(t, 24, m.slice.TotalCount)
}

func TestSearch(t *testing.T) {
	t.Parallel()
	mock := dummyjson.NewMock()
	m := newModel(t, mock, mock, 160)

	press(m, runes("/"))
	require.True(t, m.search.Focused())
	for _, r := range "nail" {
		press(m, runes(string(r)))
	}
	assert.Equal(t, "nail", m.state.Search)
	require.Len(t, m.slice.Items, 1)
	assert.Equal(t, 5, m.slice.Items[0].ID)

	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.search.Focused())

	press(m, runes("x"))
	assert.Empty(t, m.search.Value())
	assert.Equal(t, 24, m.slice.TotalCount)
}

func TestSelectWide(t *testing.T) {
	t.Parallel()
	mock := dummyjson.NewMock()
	m := newModel(t, mock, mock, 160)

	press(m, tea.KeyMsg{Type: tea.KeyDown})
	cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, detail.Loading, m.loader.Content().Status)
	assert.False(t, m.selector.OverlayOpen())

	m.Update(cmd())
	assert.Equal(t, detail.Ready, m.loader.Content().Status)
	require.NotNil(t, m.view)
	assert.Equal(t, "Eyeshadow Palette with Mirror", m.view.Title)

	out := m.View()
	assert.Contains(t, out, "Eyeshadow Palette with Mirror")
	assert.Contains(t, out, "Customer Reviews")
	assert.Contains(t, out, "Showing 1-10 of 24", "list stays visible next to the detail")
}

func TestSelectNarrowOpensOverlay(t *testing.T) {
	t.Parallel()
	mock := dummyjson.NewMock()
	m := newModel(t, mock, mock, 80)

	m.Update(press(m, tea.KeyMsg{Type: tea.KeyEnter})())
	require.True(t, m.selector.OverlayOpen())
	assert.Contains(t, m.View(), "esc to close")

	press(m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 0, m.cursor, "list does not move under the overlay")

	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.selector.OverlayOpen())
	id, ok := m.selector.Selected()
	assert.True(t, ok)
	assert.Equal(t, 1, id)

	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	_, ok = m.selector.Selected()
	assert.False(t, ok)
	assert.Equal(t, detail.Idle, m.loader.Content().Status)
}

func TestResizeTogglesOverlay(t *testing.T) {
	t.Parallel()
	mock := dummyjson.NewMock()
	products := &countingFetcher{Fetcher: mock}
	m := newModel(t, mock, products, 80)

	m.Update(press(m, tea.KeyMsg{Type: tea.KeyEnter})())
	require.True(t, m.selector.OverlayOpen())

	m.Update(tea.WindowSizeMsg{Width: 160, Height: 50})
	assert.False(t, m.selector.OverlayOpen())
	assert.Contains(t, m.View(), "Essence Mascara Lash Princess")

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 50})
	assert.True(t, m.selector.OverlayOpen(), "100 columns is still narrow")
	assert.Equal(t, 1, products.calls, "resizing never refetches")
}

func TestStaleResponseDropped(t *testing.T) {
	t.Parallel()
	mock := dummyjson.NewMock()
	m := newModel(t, mock, mock, 160)

	first := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	press(m, tea.KeyMsg{Type: tea.KeyDown})
	second := press(m, tea.KeyMsg{Type: tea.KeyEnter})

	m.Update(second())
	m.Update(first())
	require.NotNil(t, m.view)
	assert.Equal(t, 2, m.view.ID)
}

func TestDetailFailure(t *testing.T) {
	t.Parallel()
	m := newModel(t, dummyjson.NewMock(), brokenAPI{}, 160)

	m.Update(press(m, tea.KeyMsg{Type: tea.KeyEnter})())
	assert.Equal(t, detail.Failed, m.loader.Content().Status)
	assert.Contains(t, m.View(), detail.LoadFailedMessage)
	assert.Len(t, m.slice.Items, 10)
}

func TestListFailureAndRetry(t *testing.T) {
	t.Parallel()
	m := newModel(t, brokenAPI{}, dummyjson.NewMock(), 160)

	assert.Equal(t, catalog.LoadFailedMessage, m.listErr)
	assert.Contains(t, m.View(), catalog.LoadFailedMessage)
	assert.Nil(t, press(m, tea.KeyMsg{Type: tea.KeyEnter}), "nothing to select")

	cmd := press(m, runes("r"))
	require.NotNil(t, cmd)
	assert.True(t, m.loading)
	m.Update(cmd())
	assert.Equal(t, catalog.LoadFailedMessage, m.listErr)
}

func TestGallery(t *testing.T) {
	t.Parallel()
	mock := dummyjson.NewMock()
	m := newModel(t, mock, mock, 160)

	press(m, tea.KeyMsg{Type: tea.KeyDown})
	m.Update(press(m, tea.KeyMsg{Type: tea.KeyEnter})())
	require.Equal(t, 3, m.gallery.Count)

	for range 4 {
		press(m, runes("]"))
	}
	assert.Equal(t, 2, m.gallery.Index)
	assert.Contains(t, m.detailBody(), "Image 3 of 3")

	press(m, runes("["))
	assert.Equal(t, 1, m.gallery.Index)
}

func TestQuit(t *testing.T) {
	t.Parallel()
	mock := dummyjson.NewMock()
	m := newModel(t, mock, mock, 160)

	cmd := press(m, runes("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestCycle(t *testing.T) {
	t.Parallel()
	opts := []string{"a", "b"}
	var got []string
	v := ""
	for range 4 {
		v = cycle(opts, v)
		got = append(got, v)
	}
	assert.Equal(t, []string{"a", "b", "", "a"}, got)
	assert.Equal(t, "", cycle(nil, "a"))
	assert.Equal(t, "", cycle(opts, "gone"), "an unknown value falls back to all")
}

type countingFetcher struct {
	detail.Fetcher
	calls int
}

func (c *countingFetcher) FetchProductByID(ctx context.Context, id int) (*types.Product, error) {
	c.calls++
	return c.Fetcher.FetchProductByID(ctx, id)
}

func TestStarsGlyphs(t *testing.T) {
	t.Parallel()
	out := stars(detail.Stars(3.5))
	assert.Equal(t, 3, strings.Count(out, "★"))
	assert.Equal(t, 1, strings.Count(out, "⯪"))
	assert.Equal(t, 1, strings.Count(out, "☆"))
}
