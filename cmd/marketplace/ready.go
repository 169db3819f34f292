package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

const readyCheckTimeout = 5 * time.Second

type Readyable interface {
	Ready(context.Context) error
}

type readyCheck struct {
	name   string
	check  Readyable
	passed atomic.Bool
}

// readiness runs its checks concurrently until each has passed once. A check that passed
// is not run again, so a slow dependency does not keep re-probing the healthy ones.
type readiness struct {
	timeout time.Duration
	checks  []*readyCheck
}

func newReadiness() *readiness {
	return &readiness{timeout: readyCheckTimeout}
}

// Add must be called before serving.
func (r *readiness) Add(name string, check Readyable) {
	r.checks = append(r.checks, &readyCheck{name: name, check: check})
}

// Ready returns one error per failing check, each prefixed with the check's name.
func (r *readiness) Ready(ctx context.Context) error {
	errs := make([]error, len(r.checks))
	var g errgroup.Group
	for i, c := range r.checks {
		if c.passed.Load() {
			continue
		}
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()
			if err := c.check.Ready(cctx); err != nil {
				errs[i] = fmt.Errorf("%s: %w", c.name, err)
				return nil
			}
			c.passed.Store(true)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func (r *readiness) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if err := r.Ready(req.Context()); err != nil {
		slog.WarnContext(req.Context(), "not ready", "error", err)
		var b strings.Builder
		for _, c := range r.checks {
			if c.passed.Load() {
				fmt.Fprintf(&b, "%s: ok\n", c.name)
			}
		}
		b.WriteString(err.Error())
		http.Error(w, b.String(), http.StatusServiceUnavailable)
		return
	}
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.ErrorContext(req.Context(), "failed to write readiness response", "error", err)
	}
}
