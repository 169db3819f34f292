package types

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry as returned by the products API. Values are never mutated
// after they are fetched.
type Product struct {
	ID                   int             `json:"id"`
	Title                string          `json:"title"`
	Description          string          `json:"description"`
	Price                decimal.Decimal `json:"price"`
	DiscountPercentage   float64         `json:"discountPercentage"`
	Rating               float64         `json:"rating"`
	Stock                int             `json:"stock"`
	Brand                string          `json:"brand"`
	Category             string          `json:"category"`
	Thumbnail            string          `json:"thumbnail"`
	Images               []string        `json:"images"`
	MinimumOrderQuantity *int            `json:"minimumOrderQuantity,omitempty"`
	AvailabilityStatus   string          `json:"availabilityStatus,omitempty"`
	Reviews              []Review        `json:"reviews,omitempty"`
}

// Review is kept in submission order.
type Review struct {
	ID            int       `json:"id,omitempty"`
	ReviewerName  string    `json:"reviewerName"`
	ReviewerEmail string    `json:"reviewerEmail"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment"`
	Date          time.Time `json:"date"`
}

type ProductsResponse struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Skip     int       `json:"skip"`
	Limit    int       `json:"limit"`
}

func (p Product) InStock() bool {
	return p.Stock > 0
}

var hundred = decimal.NewFromInt(100)

// DiscountedPrice is price less discountPercentage percent, rounded to cents.
func (p Product) DiscountedPrice() decimal.Decimal {
	off := p.Price.Mul(decimal.NewFromFloat(p.DiscountPercentage)).Div(hundred)
	return p.Price.Sub(off).Round(2)
}

// DiscountLabel is the rounded discount, e.g. "11% OFF".
func (p Product) DiscountLabel() string {
	return fmt.Sprintf("%d%% OFF", int(math.Round(p.DiscountPercentage)))
}
