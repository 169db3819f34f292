package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"marketplace/internal/catalog"
	"marketplace/internal/detail"
)

type cliOptions struct {
	Search   string
	Category string
	Brand    string
	Page     int
	ID       int
}

func (o cliOptions) query() url.Values {
	q := url.Values{}
	q.Set(catalog.ParamSearch, o.Search)
	q.Set(catalog.ParamCategory, o.Category)
	q.Set(catalog.ParamBrand, o.Brand)
	if o.Page > 1 {
		q.Set(catalog.ParamPage, strconv.Itoa(o.Page))
	}
	return q
}

func (o cliOptions) listRequested() bool {
	return o.ID == 0 || o.Search != "" || o.Category != "" || o.Brand != "" || o.Page > 1
}

// runCLI prints the requested slice, the requested product, or both. Both are fetched at
// once and printed list first; a failure of one does not stop the other.
func runCLI(ctx context.Context, w io.Writer, store *catalog.Store, products detail.Fetcher, opts cliOptions, pageSize int) error {
	var list, item bytes.Buffer
	var listErr, itemErr error
	var g errgroup.Group
	if opts.listRequested() {
		g.Go(func() error {
			listErr = printList(ctx, &list, store, opts.query(), pageSize)
			return nil
		})
	}
	if opts.ID != 0 {
		g.Go(func() error {
			itemErr = printDetail(ctx, &item, products, opts.ID, time.Now())
			return nil
		})
	}
	_ = g.Wait()
	err := errors.Join(listErr, itemErr)
	if _, werr := list.WriteTo(w); werr != nil {
		return werr
	}
	if list.Len() > 0 && item.Len() > 0 {
		fmt.Fprintln(w)
	}
	if _, werr := item.WriteTo(w); werr != nil {
		return werr
	}
	return err
}

func printList(ctx context.Context, w io.Writer, store *catalog.Store, q url.Values, pageSize int) error {
	view, err := store.BuildFromQuery(ctx, q, pageSize)
	if err != nil {
		return fmt.Errorf("%s: %w", catalog.LoadFailedMessage, err)
	}
	if raw := q.Get(catalog.ParamPage); raw != "" {
		if p, err := strconv.Atoi(raw); err != nil || p != view.State.Page {
			fmt.Fprintf(w, "page %s is out of range, showing page %d\n", raw, view.State.Page)
		}
	}
	for _, p := range view.Slice.Items {
		fmt.Fprintf(w, "%4d  %-40s  $%9s  %-8s  %s\n",
			p.ID, p.Title, p.DiscountedPrice().StringFixed(2), p.DiscountLabel(),
			strings.Join(lo.Compact([]string{p.Brand, p.Category}), " / "))
	}
	fmt.Fprintln(w, view.Summary())
	return nil
}

func printDetail(ctx context.Context, w io.Writer, products detail.Fetcher, id int, now time.Time) error {
	c := detail.Load(ctx, products, id)
	if c.Status != detail.Ready {
		return errors.New(c.Message)
	}
	v := detail.BuildView(*c.Product, now)

	fmt.Fprintf(w, "%s\n", v.Title)
	fmt.Fprintf(w, "Rating: %s (%d reviews)\n", v.Rating, v.ReviewCount)
	fmt.Fprintf(w, "Price: $%s (was $%s, %s)\n", v.Price, v.OriginalPrice, v.Discount)
	if v.Brand != "" {
		fmt.Fprintf(w, "Brand: %s\n", v.Brand)
	}
	fmt.Fprintf(w, "Category: %s\n", v.Category)
	fmt.Fprintf(w, "Availability: %s (stock %d)\n", v.Availability, v.Stock)
	if v.MinimumOrder != "" {
		fmt.Fprintf(w, "Min. Order: %s\n", v.MinimumOrder)
	}
	fmt.Fprintf(w, "\n%s\n\n", v.Description)
	for _, n := range v.Notes {
		fmt.Fprintf(w, "- %s\n", n)
	}
	if len(v.Images) > 0 {
		fmt.Fprintf(w, "\nImages:\n%s\n", strings.Join(lo.Map(v.Images, func(img string, i int) string {
			return fmt.Sprintf("  %d. %s", i+1, img)
		}), "\n"))
	}

	fmt.Fprintf(w, "\nCustomer Reviews\n")
	if !v.HasReviews() {
		fmt.Fprintln(w, detail.NoReviewsMessage)
	}
	for _, r := range v.Reviews {
		fmt.Fprintf(w, "  %s (%d/5, %s): %s\n", r.Name, r.Rating, r.Since, r.Comment)
	}
	return nil
}
