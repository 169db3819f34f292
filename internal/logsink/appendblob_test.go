package logsink

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/appendblob"
)

type fakeAppender struct {
	mu     sync.Mutex
	blocks [][]byte
}

func (f *fakeAppender) AppendBlock(_ context.Context, body io.ReadSeekCloser, _ *appendblob.AppendBlockOptions) (appendblob.AppendBlockResponse, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return appendblob.AppendBlockResponse{}, err
	}
	f.mu.Lock()
	f.blocks = append(f.blocks, b)
	f.mu.Unlock()
	return appendblob.AppendBlockResponse{}, nil
}

func (f *fakeAppender) lines(t *testing.T) []map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []map[string]any
	for _, block := range f.blocks {
		sc := bufio.NewScanner(bytes.NewReader(block))
		for sc.Scan() {
			var ev map[string]any
			if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
				t.Fatalf("bad line %q: %v", sc.Text(), err)
			}
			out = append(out, ev)
		}
	}
	return out
}

func TestHandler_FlushesOnClose(t *testing.T) {
	t.Parallel()

	ab := &fakeAppender{}
	h := newHandler(ab, Config{FlushEvery: time.Hour})
	logger := slog.New(h).With("service", "marketplace")

	logger.Info("fetched catalog", "count", 24)
	logger.WithGroup("request").Warn("slow", "path", "/products/5", "error", errors.New("timeout"))
	logger.Debug("dropped by level")

	if err := h.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	lines := ab.lines(t)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", len(lines), lines)
	}
	if lines[0]["msg"] != "fetched catalog" || lines[0]["count"] != float64(24) || lines[0]["service"] != "marketplace" {
		t.Fatalf("unexpected first line: %v", lines[0])
	}
	if lines[1]["request.path"] != "/products/5" || lines[1]["request.error"] != "timeout" || lines[1]["level"] != "WARN" {
		t.Fatalf("unexpected second line: %v", lines[1])
	}
	if lines[1]["service"] != "marketplace" {
		t.Fatalf("attrs added before the group must keep their key: %v", lines[1])
	}
}

func TestHandler_AfterClose(t *testing.T) {
	t.Parallel()

	h := newHandler(&fakeAppender{}, Config{})
	if err := h.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	r := slog.NewRecord(time.Now(), slog.LevelInfo, "late", 0)
	if err := h.Handle(context.Background(), r); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestBlobName(t *testing.T) {
	t.Parallel()

	got := BlobName(time.Date(2024, 5, 3, 23, 0, 0, 0, time.UTC), "web-1")
	if got != "2024/05/03/web-1.jsonl" {
		t.Fatalf("unexpected blob name: %q", got)
	}
}
