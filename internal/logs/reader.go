// Package logs reads back what the append blob log sink wrote.
package logs

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"marketplace/internal/config"
	"marketplace/internal/logsink"
)

// Entry is one line of a log blob.
type Entry struct {
	Time  time.Time
	Level string
	Msg   string
	// Attrs holds every other key, groups already flattened by the sink.
	Attrs map[string]any
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	if ts, ok := all["ts"].(string); ok {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return fmt.Errorf("bad ts %q: %w", ts, err)
		}
		e.Time = t
	}
	e.Level, _ = all["level"].(string)
	e.Msg, _ = all["msg"].(string)
	delete(all, "ts")
	delete(all, "level")
	delete(all, "msg")
	e.Attrs = all
	return nil
}

// String renders the entry on one line with attributes sorted by key.
func (e Entry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %-5s %s", e.Time.Format(time.RFC3339), e.Level, e.Msg)
	keys := make([]string, 0, len(e.Attrs))
	for k := range e.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Attrs[k])
	}
	return b.String()
}

type blobInfo struct {
	Name         string
	LastModified time.Time
}

// source is the slice of blob storage the reader needs.
type source interface {
	list(ctx context.Context, prefix string) ([]blobInfo, error)
	open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Reader reads logs from Azure Blob Storage
type Reader struct {
	src source
}

func NewReader(cfg config.AzureConfig) (*Reader, error) {
	if cfg.AccountName == "" || cfg.LogContainer == "" {
		return nil, errors.New("azure account name and log container are required")
	}
	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", cfg.AccountName)

	var client *azblob.Client
	if cfg.AccountKey != "" {
		cred, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		if client, err = azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil); err != nil {
			return nil, fmt.Errorf("failed to create blob client: %w", err)
		}
	} else {
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
		if client, err = azblob.NewClient(serviceURL, cred, nil); err != nil {
			return nil, fmt.Errorf("failed to create blob client: %w", err)
		}
	}
	return &Reader{src: &azureSource{client: client, container: cfg.LogContainer}}, nil
}

// Since returns the entries logged after since, oldest first.
func (r *Reader) Since(ctx context.Context, since, now time.Time) ([]Entry, error) {
	var all []Entry
	for _, prefix := range datePrefixes(since, now) {
		blobs, err := r.src.list(ctx, prefix)
		if err != nil {
			return nil, fmt.Errorf("failed to list blobs: %w", err)
		}
		for _, b := range blobs {
			// appended to last before the window opened
			if !b.LastModified.IsZero() && b.LastModified.Before(since) {
				continue
			}
			entries, err := r.readBlob(ctx, b.Name, since)
			if err != nil {
				slog.WarnContext(ctx, "skipping unreadable log blob", "blob", b.Name, "error", err)
				continue
			}
			all = append(all, entries...)
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Time.Before(all[j].Time) })
	return all, nil
}

// datePrefixes lists the day folders covering [since, until].
func datePrefixes(since, until time.Time) []string {
	var prefixes []string
	current := since.UTC().Truncate(24 * time.Hour)
	end := until.UTC().Truncate(24 * time.Hour)
	for !current.After(end) {
		prefixes = append(prefixes, logsink.FormatDateFolder(current.Year(), int(current.Month()), current.Day())+"/")
		current = current.Add(24 * time.Hour)
	}
	return prefixes
}

func (r *Reader) readBlob(ctx context.Context, name string, since time.Time) ([]Entry, error) {
	body, err := r.src.open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to download blob: %w", err)
	}
	defer func() { _ = body.Close() }()
	return parse(body, since)
}

// parse skips lines that are not JSON and entries older than since.
func parse(in io.Reader, since time.Time) ([]Entry, error) {
	var out []Entry
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		if !e.Time.IsZero() && e.Time.Before(since) {
			continue
		}
		out = append(out, e)
	}
	if err := scanner.Err(); err != nil {
		return out, fmt.Errorf("error scanning logs: %w", err)
	}
	return out, nil
}

type azureSource struct {
	client    *azblob.Client
	container string
}

func (a *azureSource) list(ctx context.Context, prefix string) ([]blobInfo, error) {
	var out []blobInfo
	pager := a.client.NewListBlobsFlatPager(a.container, &azblob.ListBlobsFlatOptions{Prefix: &prefix})
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range resp.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			info := blobInfo{Name: *item.Name}
			if item.Properties != nil && item.Properties.LastModified != nil {
				info.LastModified = *item.Properties.LastModified
			}
			out = append(out, info)
		}
	}
	return out, nil
}

func (a *azureSource) open(ctx context.Context, name string) (io.ReadCloser, error) {
	resp, err := a.client.DownloadStream(ctx, a.container, name, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
