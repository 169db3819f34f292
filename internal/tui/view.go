package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"marketplace/internal/catalog"
	"marketplace/internal/catalog/types"
	"marketplace/internal/detail"
)

const (
	headerLines = 1
	footerLines = 3
	// panelChrome is the width taken by a panel's border and padding.
	panelChrome = 4
)

var starGlyphs = map[detail.Star]string{
	detail.StarFull:  "★",
	detail.StarHalf:  "⯪",
	detail.StarEmpty: "☆",
}

func (m *Model) listWidth() int {
	if m.selector.Viewport() == detail.Narrow {
		return m.width
	}
	return m.width * 2 / 5
}

func (m *Model) detailSize() (int, int) {
	h := max(1, m.height-headerLines-footerLines-2)
	if m.selector.Viewport() == detail.Narrow {
		return max(1, m.width-panelChrome), h
	}
	return max(1, m.width-m.listWidth()-panelChrome), h
}

func (m *Model) View() string {
	header := headerStyle.Width(max(0, m.width)).Render("Marketplace")
	footer := m.footer()

	var body string
	switch {
	case m.selector.OverlayOpen():
		w, _ := m.detailSize()
		sheet := overlayStyle.Width(w).Render(mutedStyle.Render("esc to close") + "\n" + m.scroller.View())
		body = lipgloss.Place(m.width, max(0, m.height-headerLines-footerLines), lipgloss.Center, lipgloss.Top, sheet)
	case m.selector.Viewport() == detail.Narrow:
		body = m.listView(m.listWidth())
	default:
		w, _ := m.detailSize()
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			m.listView(m.listWidth()),
			panelStyle.Width(w).Render(m.scroller.View()),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m *Model) footer() string {
	filters := fmt.Sprintf("Category: %s  Brand: %s", orAll(m.state.Category), orAll(m.state.Brand))
	return lipgloss.JoinVertical(lipgloss.Left,
		m.search.View(),
		mutedStyle.Render(filters),
		m.help.View(m.keys),
	)
}

func orAll(v string) string {
	if v == "" {
		return "all"
	}
	return v
}

func (m *Model) listView(width int) string {
	var b strings.Builder
	switch {
	case m.loading:
		for range m.ui.PageSize {
			b.WriteString(skeletonStyle.Render(strings.Repeat("░", max(8, width-panelChrome-2))) + "\n")
		}
	case m.listErr != "":
		b.WriteString(errorStyle.Render(m.listErr) + "\n")
		b.WriteString(mutedStyle.Render("press r to retry"))
	case m.slice.Empty():
		b.WriteString(mutedStyle.Render("No products found."))
	default:
		selectedID, selected := m.selector.Selected()
		for i, p := range m.slice.Items {
			b.WriteString(m.card(p, i == m.cursor, selected && p.ID == selectedID))
			b.WriteString("\n")
		}
		b.WriteString(mutedStyle.Render(pageLine(m.slice)))
	}
	return panelStyle.Width(max(1, width-panelChrome+2)).Render(b.String())
}

func (m *Model) card(p types.Product, cursor, selected bool) string {
	prefix := "  "
	if cursor {
		prefix = cursorStyle.Render("> ")
	}
	title := titleStyle.Render(p.Title)
	if selected {
		title = selectedStyle.Render("● ") + title
	}
	meta := []string{}
	if p.Brand != "" {
		meta = append(meta, p.Brand)
	}
	meta = append(meta, p.Category)
	line := fmt.Sprintf("%s  %s  %s %.1f  Stock: %d",
		priceStyle.Render("$"+p.DiscountedPrice().StringFixed(2)),
		badgeStyle.Render(p.DiscountLabel()),
		starStyle.Render("★"), p.Rating, p.Stock)
	return prefix + title + "\n  " + line + "\n  " + mutedStyle.Render(strings.Join(meta, " • "))
}

func pageLine(s catalog.Slice) string {
	return fmt.Sprintf("Showing %d-%d of %d  Page %d of %d", s.First, s.Last, s.TotalCount, s.Page, s.TotalPages)
}

func stars(s [5]detail.Star) string {
	var b strings.Builder
	for _, st := range s {
		b.WriteString(starGlyphs[st])
	}
	return starStyle.Render(b.String())
}

// detailBody is the content of the detail scroller for the current selection.
func (m *Model) detailBody() string {
	if _, ok := m.selector.Selected(); !ok {
		return titleStyle.Render("No Product Selected") + "\n" +
			mutedStyle.Render("Select a product from the list to view its details")
	}
	c := m.loader.Content()
	switch c.Status {
	case detail.Loading:
		w, _ := m.detailSize()
		var b strings.Builder
		for i := range 8 {
			b.WriteString(skeletonStyle.Render(strings.Repeat("░", max(4, w*(8-i)/8))) + "\n")
		}
		return b.String()
	case detail.Failed, detail.NotFound:
		return errorStyle.Render(c.Message)
	}
	if m.view == nil {
		return ""
	}
	return m.renderView(*m.view)
}

func (m *Model) renderView(v detail.View) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(v.Title) + "\n")
	fmt.Fprintf(&b, "%s %s (%d reviews)\n", stars(v.Stars), v.Rating, v.ReviewCount)
	fmt.Fprintf(&b, "%s  %s  %s\n\n",
		priceStyle.Render("$"+v.Price),
		mutedStyle.Strikethrough(true).Render("$"+v.OriginalPrice),
		badgeStyle.Render(v.Discount))

	if len(v.Images) > 0 {
		fmt.Fprintf(&b, "Image %d of %d: %s\n\n", m.gallery.Index+1, len(v.Images), v.Images[m.gallery.Index])
	} else {
		b.WriteString(mutedStyle.Render("No Images") + "\n\n")
	}

	fmt.Fprintf(&b, "Brand: %s\nCategory: %s\nAvailability: %s\nStock: %d\n", v.Brand, v.Category, v.Availability, v.Stock)
	if v.MinimumOrder != "" {
		fmt.Fprintf(&b, "Min. Order: %s\n", v.MinimumOrder)
	}
	b.WriteString("\n" + v.Description + "\n\n")
	for _, n := range v.Notes {
		b.WriteString("• " + n + "\n")
	}

	b.WriteString("\n" + titleStyle.Render("Customer Reviews") + "\n")
	if !v.HasReviews() {
		b.WriteString(mutedStyle.Render(detail.NoReviewsMessage) + "\n")
	}
	for _, r := range v.Reviews {
		fmt.Fprintf(&b, "%s  %s  %s\n%s\n\n", titleStyle.Render(r.Name), stars(r.Stars), mutedStyle.Render(r.Since), r.Comment)
	}
	return b.String()
}
