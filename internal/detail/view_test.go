package detail

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"marketplace/internal/catalog/types"
)

func TestStars(t *testing.T) {
	t.Parallel()

	cases := []struct {
		rating float64
		want   [5]Star
	}{
		{rating: 0, want: [5]Star{StarEmpty, StarEmpty, StarEmpty, StarEmpty, StarEmpty}},
		{rating: 2.56, want: [5]Star{StarFull, StarFull, StarHalf, StarEmpty, StarEmpty}},
		{rating: 4, want: [5]Star{StarFull, StarFull, StarFull, StarFull, StarEmpty}},
		{rating: 4.9, want: [5]Star{StarFull, StarFull, StarFull, StarFull, StarHalf}},
		{rating: 5, want: [5]Star{StarFull, StarFull, StarFull, StarFull, StarFull}},
	}
	for _, tc := range cases {
		if got := Stars(tc.rating); got != tc.want {
			t.Fatalf("Stars(%v) = %v, want %v", tc.rating, got, tc.want)
		}
	}
}

func TestBuildView(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 26, 8, 56, 21, 0, time.UTC)
	minOrder := 24
	p := types.Product{
		ID:                   1,
		Title:                "Essence Mascara Lash Princess",
		Description:          "Volumizing and lengthening.",
		Price:                decimal.RequireFromString("9.99"),
		DiscountPercentage:   10.48,
		Rating:               2.56,
		Stock:                5,
		Brand:                "Essence",
		Category:             "beauty",
		Images:               []string{"a.png", "b.png"},
		MinimumOrderQuantity: &minOrder,
		AvailabilityStatus:   "Low Stock",
		Reviews: []types.Review{
			{ReviewerName: "John Doe", Rating: 2, Comment: "Very unhappy with my purchase!", Date: now.Add(-3 * 24 * time.Hour)},
			{ReviewerName: "Nolan Gonzalez", Rating: 5, Comment: "Highly impressed!", Date: now.Add(-2 * time.Hour)},
		},
	}

	v := BuildView(p, now)
	if v.Price != "8.94" || v.OriginalPrice != "9.99" || v.Discount != "10% OFF" {
		t.Fatalf("unexpected pricing: %s %s %s", v.Price, v.OriginalPrice, v.Discount)
	}
	if v.Rating != "2.6" || v.ReviewCount != 2 {
		t.Fatalf("unexpected rating line: %s (%d)", v.Rating, v.ReviewCount)
	}
	if v.Availability != "Low Stock" || !v.InStock || v.MinimumOrder != "24" {
		t.Fatalf("unexpected availability: %+v", v)
	}
	if len(v.Notes) != 2 || v.Notes[0] != "Free shipping on orders over $50" {
		t.Fatalf("unexpected notes: %v", v.Notes)
	}
	if !v.HasReviews() {
		t.Fatal("expected reviews")
	}
	if v.Reviews[0].Name != "John Doe" || v.Reviews[1].Name != "Nolan Gonzalez" {
		t.Fatal("reviews must keep submission order")
	}
	if v.Reviews[0].Since != "3 days ago" || v.Reviews[1].Since != "2 hours ago" {
		t.Fatalf("unexpected review ages: %q %q", v.Reviews[0].Since, v.Reviews[1].Since)
	}
	if v.Reviews[0].Stars != [5]Star{StarFull, StarFull, StarEmpty, StarEmpty, StarEmpty} {
		t.Fatalf("unexpected review stars: %v", v.Reviews[0].Stars)
	}
}

func TestBuildView_SparseProduct(t *testing.T) {
	t.Parallel()

	v := BuildView(types.Product{ID: 16, Title: "Apple", Price: decimal.RequireFromString("2"), Stock: 0}, time.Now())
	if v.HasReviews() {
		t.Fatal("expected no reviews")
	}
	if v.Availability != "Out of Stock" || v.InStock {
		t.Fatalf("unexpected availability: %q", v.Availability)
	}
	if v.MinimumOrder != "" {
		t.Fatalf("unexpected minimum order: %q", v.MinimumOrder)
	}
	if v.Price != "2.00" || v.OriginalPrice != "2" {
		t.Fatalf("unexpected pricing: %s %s", v.Price, v.OriginalPrice)
	}
}

func TestGallery(t *testing.T) {
	t.Parallel()

	g := Gallery{Count: 3}
	g.Prev()
	if g.Index != 0 {
		t.Fatalf("expected 0, got %d", g.Index)
	}
	g.Show(7)
	if g.Index != 2 {
		t.Fatalf("expected 2, got %d", g.Index)
	}
	g.Next()
	if g.Index != 2 {
		t.Fatalf("expected 2, got %d", g.Index)
	}

	empty := Gallery{}
	empty.Next()
	if empty.Index != 0 {
		t.Fatalf("expected 0, got %d", empty.Index)
	}
}
