package detail

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"marketplace/internal/catalog/types"
)

// NoReviewsMessage replaces the review list when a product has none.
const NoReviewsMessage = "No reviews yet for this product."

// ServiceNotes are shown under every product description.
var ServiceNotes = []string{
	"Free shipping on orders over $50",
	"30-day return policy",
}

type Star int

const (
	StarEmpty Star = iota
	StarHalf
	StarFull
)

func (s Star) String() string {
	switch s {
	case StarFull:
		return "full"
	case StarHalf:
		return "half"
	default:
		return "empty"
	}
}

// Stars renders a 0-5 rating. Whole points are full stars and a remaining fraction is one
// half star.
func Stars(rating float64) [5]Star {
	var out [5]Star
	whole := math.Floor(rating)
	for i := range out {
		switch {
		case float64(i) < whole:
			out[i] = StarFull
		case float64(i) < rating:
			out[i] = StarHalf
		}
	}
	return out
}

// View is the presentation of one product. Overlay and inline panel render the same View.
type View struct {
	ID            int
	Title         string
	Stars         [5]Star
	Rating        string
	ReviewCount   int
	Price         string
	OriginalPrice string
	Discount      string
	Brand         string
	Category      string
	Availability  string
	InStock       bool
	Stock         int
	MinimumOrder  string
	Description   string
	Notes         []string
	Images        []string
	Reviews       []ReviewView
}

type ReviewView struct {
	Name    string
	Rating  int
	Stars   [5]Star
	Comment string
	Since   string
}

// BuildView formats p. Review ages are relative to now.
func BuildView(p types.Product, now time.Time) View {
	v := View{
		ID:            p.ID,
		Title:         p.Title,
		Stars:         Stars(p.Rating),
		Rating:        fmt.Sprintf("%.1f", p.Rating),
		ReviewCount:   len(p.Reviews),
		Price:         p.DiscountedPrice().StringFixed(2),
		OriginalPrice: p.Price.String(),
		Discount:      p.DiscountLabel(),
		Brand:         p.Brand,
		Category:      p.Category,
		Availability:  availability(p),
		InStock:       p.InStock(),
		Stock:         p.Stock,
		Description:   p.Description,
		Notes:         ServiceNotes,
		Images:        p.Images,
		Reviews:       make([]ReviewView, 0, len(p.Reviews)),
	}
	if p.MinimumOrderQuantity != nil {
		v.MinimumOrder = strconv.Itoa(*p.MinimumOrderQuantity)
	}
	for _, r := range p.Reviews {
		rv := ReviewView{
			Name:    r.ReviewerName,
			Rating:  r.Rating,
			Comment: r.Comment,
		}
		for i := range rv.Stars {
			if i < r.Rating {
				rv.Stars[i] = StarFull
			}
		}
		if !r.Date.IsZero() {
			rv.Since = humanize.RelTime(r.Date, now, "ago", "from now")
		}
		v.Reviews = append(v.Reviews, rv)
	}
	return v
}

func availability(p types.Product) string {
	if p.AvailabilityStatus != "" {
		return p.AvailabilityStatus
	}
	if p.InStock() {
		return "In Stock"
	}
	return "Out of Stock"
}

// HasReviews is false when the review list should be replaced by NoReviewsMessage.
func (v View) HasReviews() bool {
	return len(v.Reviews) > 0
}

// Gallery is the primary image index of a product's image strip.
type Gallery struct {
	Index int
	Count int
}

// Show moves to image i, clamped to the strip.
func (g *Gallery) Show(i int) {
	g.Index = max(0, min(i, g.Count-1))
}

func (g *Gallery) Next() {
	g.Show(g.Index + 1)
}

func (g *Gallery) Prev() {
	g.Show(g.Index - 1)
}
