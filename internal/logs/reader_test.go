package logs

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestDatePrefixes(t *testing.T) {
	since := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	until := time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC)
	prefixes := datePrefixes(since, until)
	if len(prefixes) != 1 || prefixes[0] != "2024/01/15/" {
		t.Fatalf("unexpected prefixes for one day: %v", prefixes)
	}

	until = time.Date(2024, 1, 17, 14, 0, 0, 0, time.UTC)
	prefixes = datePrefixes(since, until)
	expected := []string{"2024/01/15/", "2024/01/16/", "2024/01/17/"}
	if len(prefixes) != len(expected) {
		t.Fatalf("expected %d prefixes, got %v", len(expected), prefixes)
	}
	for i := range expected {
		if prefixes[i] != expected[i] {
			t.Errorf("expected prefix %s at index %d, got %s", expected[i], i, prefixes[i])
		}
	}
}

type fakeSource struct {
	blobs map[string][]blobInfo
	data  map[string]string
}

func (f *fakeSource) list(_ context.Context, prefix string) ([]blobInfo, error) {
	return f.blobs[prefix], nil
}

func (f *fakeSource) open(_ context.Context, name string) (io.ReadCloser, error) {
	body, ok := f.data[name]
	if !ok {
		return nil, errors.New("blob not found")
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func TestReaderSince(t *testing.T) {
	now := time.Date(2024, 5, 24, 1, 0, 0, 0, time.UTC)
	since := now.Add(-2 * time.Hour)

	src := &fakeSource{
		blobs: map[string][]blobInfo{
			"2024/05/23/": {
				{Name: "2024/05/23/web-1.jsonl", LastModified: now.Add(-90 * time.Minute)},
				{Name: "2024/05/23/old.jsonl", LastModified: now.Add(-5 * time.Hour)},
			},
			"2024/05/24/": {
				{Name: "2024/05/24/web-1.jsonl"},
				{Name: "2024/05/24/missing.jsonl"},
			},
		},
		data: map[string]string{
			"2024/05/23/web-1.jsonl": `{"ts":"2024-05-23T22:00:00Z","level":"INFO","msg":"too old"}
{"ts":"2024-05-23T23:30:00Z","level":"INFO","msg":"fetched catalog","count":24}
not json
`,
			"2024/05/23/old.jsonl": `{"ts":"2024-05-23T23:59:00Z","level":"INFO","msg":"skipped by last modified"}`,
			"2024/05/24/web-1.jsonl": `{"ts":"2024-05-24T00:10:00Z","level":"ERROR","msg":"failed to load product","id":7,"error":"timeout"}
`,
		},
	}

	entries, err := (&Reader{src: src}).Since(context.Background(), since, now)
	if err != nil {
		t.Fatalf("Since failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %v", len(entries), entries)
	}
	if entries[0].Msg != "fetched catalog" || entries[1].Level != "ERROR" {
		t.Fatalf("unexpected entries: %v", entries)
	}
	if got := entries[1].String(); got != "2024-05-24T00:10:00Z ERROR failed to load product error=timeout id=7" {
		t.Fatalf("unexpected rendering %q", got)
	}
}
