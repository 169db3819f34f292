// Package tui is the terminal browser: the catalog list next to a detail panel on wide
// terminals, and the detail as a full screen overlay on narrow ones.
package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"marketplace/internal/catalog"
	"marketplace/internal/catalog/types"
	"marketplace/internal/config"
	"marketplace/internal/detail"
)

// DefaultNarrowColumns is used when the config leaves the breakpoint unset.
const DefaultNarrowColumns = 100

type catalogLoadedMsg struct {
	all []types.Product
	err error
}

type productLoadedMsg struct {
	ticket  detail.Ticket
	product *types.Product
	err     error
}

// Model is the Bubble Tea model. All state changes happen in Update.
type Model struct {
	ctx      context.Context
	store    *catalog.Store
	products detail.Fetcher
	ui       config.UIConfig
	now      func() time.Time

	keys     keyMap
	help     help.Model
	search   textinput.Model
	scroller viewport.Model

	loading bool
	listErr string
	all     []types.Product
	options catalog.Options
	state   catalog.ViewState
	slice   catalog.Slice
	cursor  int

	selector *detail.Selector
	loader   detail.Loader
	view     *detail.View
	gallery  detail.Gallery

	width  int
	height int
}

// New builds a model that loads the catalog from store on Init. The viewport starts wide
// until the first WindowSizeMsg arrives.
func New(ctx context.Context, store *catalog.Store, products detail.Fetcher, ui config.UIConfig) *Model {
	if ui.PageSize <= 0 {
		ui.PageSize = catalog.DefaultPageSize
	}
	if ui.NarrowColumns <= 0 {
		ui.NarrowColumns = DefaultNarrowColumns
	}
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search products..."

	return &Model{
		ctx:      ctx,
		store:    store,
		products: products,
		ui:       ui,
		now:      time.Now,
		keys:     newKeyMap(),
		help:     help.New(),
		search:   search,
		scroller: viewport.New(0, 0),
		loading:  true,
		state:    catalog.NewViewState(),
		selector: detail.NewSelector(detail.Wide),
	}
}

func (m *Model) Init() tea.Cmd {
	return m.loadCatalog()
}

func (m *Model) loadCatalog() tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		all, err := store.Products(ctx)
		return catalogLoadedMsg{all: all, err: err}
	}
}

func (m *Model) fetchProduct(t detail.Ticket) tea.Cmd {
	ctx, products := m.ctx, m.products
	return func() tea.Msg {
		p, err := products.FetchProductByID(ctx, t.ID)
		return productLoadedMsg{ticket: t, product: p, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.selector.SetViewport(detail.Classify(msg.Width, m.ui.NarrowColumns))
		m.resizeDetail()
		return m, nil

	case catalogLoadedMsg:
		m.loading = false
		if msg.err != nil {
			slog.ErrorContext(m.ctx, "failed to load products", "error", msg.err)
			m.listErr = catalog.LoadFailedMessage
			return m, nil
		}
		m.listErr = ""
		m.all = msg.all
		m.options = m.store.Options(msg.all)
		m.refresh()
		return m, nil

	case productLoadedMsg:
		if !m.loader.Resolve(msg.ticket, msg.product, msg.err) {
			slog.DebugContext(m.ctx, "dropped stale product response", "id", msg.ticket.ID)
			return m, nil
		}
		if m.loader.Content().Status == detail.Failed {
			slog.ErrorContext(m.ctx, "failed to load product", "id", msg.ticket.ID, "error", msg.err)
		}
		m.showContent()
		return m, nil

	case tea.KeyMsg:
		switch {
		case m.search.Focused():
			return m.updateSearch(msg)
		case m.selector.OverlayOpen():
			return m.updateOverlay(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.search.Blur()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != m.state.Search {
		m.state.SetSearch(m.search.Value())
		m.refresh()
	}
	return m, cmd
}

// updateOverlay handles keys while the overlay covers the list. The list underneath does
// not move.
func (m *Model) updateOverlay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.back()
	case key.Matches(msg, m.keys.PrevImg):
		m.gallery.Prev()
		m.showContent()
	case key.Matches(msg, m.keys.NextImg):
		m.gallery.Next()
		m.showContent()
	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down),
		key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDn):
		var cmd tea.Cmd
		m.scroller, cmd = m.scroller.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Search):
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.Category):
		m.state.SetCategory(cycle(m.options.Categories, m.state.Category))
		m.refresh()

	case key.Matches(msg, m.keys.Brand):
		m.state.SetBrand(cycle(m.options.Brands, m.state.Brand))
		m.refresh()

	case key.Matches(msg, m.keys.Clear):
		m.state.ResetFilters()
		m.search.SetValue("")
		m.refresh()

	case key.Matches(msg, m.keys.Prev):
		if m.state.Prev(m.slice.TotalPages) {
			m.refresh()
		}

	case key.Matches(msg, m.keys.Next):
		if m.state.Next(m.slice.TotalPages) {
			m.refresh()
		}

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.slice.Items)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Select):
		if len(m.slice.Items) == 0 {
			return m, nil
		}
		return m, m.selectProduct(m.slice.Items[m.cursor].ID)

	case key.Matches(msg, m.keys.Back):
		m.back()

	case key.Matches(msg, m.keys.PrevImg):
		m.gallery.Prev()
		m.showContent()

	case key.Matches(msg, m.keys.NextImg):
		m.gallery.Next()
		m.showContent()

	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDn):
		var cmd tea.Cmd
		m.scroller, cmd = m.scroller.Update(msg)
		return m, cmd

	case key.Matches(msg, m.keys.Reload):
		if m.listErr != "" && !m.loading {
			m.loading = true
			return m, m.loadCatalog()
		}
	}
	return m, nil
}

func (m *Model) selectProduct(id int) tea.Cmd {
	m.selector.Select(id)
	m.view = nil
	m.gallery = detail.Gallery{}
	t := m.loader.Begin(id)
	m.showContent()
	return m.fetchProduct(t)
}

// back closes the overlay first; a second press, or one without an overlay, deselects.
func (m *Model) back() {
	if m.selector.OverlayOpen() {
		m.selector.Dismiss()
		return
	}
	if _, ok := m.selector.Selected(); ok {
		m.selector.Deselect()
		m.loader.Reset()
		m.view = nil
		m.gallery = detail.Gallery{}
		m.showContent()
	}
}

// refresh recomputes the visible slice after any view state change.
func (m *Model) refresh() {
	m.slice = catalog.ComputeVisibleSlice(m.all, m.state, m.ui.PageSize)
	if m.cursor >= len(m.slice.Items) {
		m.cursor = max(0, len(m.slice.Items)-1)
	}
}

func (m *Model) showContent() {
	c := m.loader.Content()
	if c.Status == detail.Ready && m.view == nil {
		v := detail.BuildView(*c.Product, m.now())
		m.view = &v
		m.gallery = detail.Gallery{Count: len(v.Images)}
		m.scroller.GotoTop()
	}
	m.scroller.SetContent(m.detailBody())
}

func (m *Model) resizeDetail() {
	w, h := m.detailSize()
	m.scroller.Width = w
	m.scroller.Height = h
	m.scroller.SetContent(m.detailBody())
}

// cycle steps through "" (all) and then each option in order.
func cycle(options []string, current string) string {
	if len(options) == 0 {
		return ""
	}
	if current == "" {
		return options[0]
	}
	for i, o := range options {
		if o == current {
			if i == len(options)-1 {
				return ""
			}
			return options[i+1]
		}
	}
	return ""
}

// State exposes the list state for callers that embed the model.
func (m *Model) State() catalog.ViewState {
	return m.state
}
