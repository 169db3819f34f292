// Package logsink mirrors slog records as JSON lines into an Azure append blob.
package logsink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/appendblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// maxBlock stays under the append block size limit.
const maxBlock = 4 << 20

var ErrClosed = errors.New("log sink closed")

type Config struct {
	AccountName string
	AccountKey  string // empty uses the default Azure credential chain
	Container   string
	BlobName    string        // defaults to BlobName(now, hostname)
	FlushEvery  time.Duration // default 2s
	Level       slog.Leveler
}

type appender interface {
	AppendBlock(ctx context.Context, body io.ReadSeekCloser, o *appendblob.AppendBlockOptions) (appendblob.AppendBlockResponse, error)
}

// Handler is a slog.Handler. Records are buffered and appended in blocks from a
// background goroutine; Close flushes what is left.
type Handler struct {
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string
	sink   *sink
}

type sink struct {
	ab    appender
	every time.Duration
	ch    chan []byte
	done  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup
}

func New(ctx context.Context, cfg Config) (*Handler, error) {
	if cfg.AccountName == "" || cfg.Container == "" {
		return nil, errors.New("AccountName and Container are required")
	}
	if cfg.BlobName == "" {
		host, _ := os.Hostname()
		cfg.BlobName = BlobName(time.Now(), host)
	}

	// BlobName may include slashes; don't path-escape it.
	blobURL := "https://" + cfg.AccountName + ".blob.core.windows.net/" + url.PathEscape(cfg.Container) + "/" + cfg.BlobName

	var ab *appendblob.Client
	if cfg.AccountKey != "" {
		cred, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
		if err != nil {
			return nil, err
		}
		if ab, err = appendblob.NewClientWithSharedKeyCredential(blobURL, cred, nil); err != nil {
			return nil, err
		}
	} else {
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("default azure credential: %w", err)
		}
		if ab, err = appendblob.NewClient(blobURL, cred, nil); err != nil {
			return nil, err
		}
	}

	if _, err := ab.Create(ctx, nil); err != nil && !bloberror.HasCode(err, bloberror.BlobAlreadyExists) {
		return nil, fmt.Errorf("create log blob %s: %w", cfg.BlobName, err)
	}
	return newHandler(ab, cfg), nil
}

func newHandler(ab appender, cfg Config) *Handler {
	if cfg.FlushEvery <= 0 {
		cfg.FlushEvery = 2 * time.Second
	}
	if cfg.Level == nil {
		cfg.Level = slog.LevelInfo
	}
	s := &sink{
		ab:    ab,
		every: cfg.FlushEvery,
		ch:    make(chan []byte, 1024),
		done:  make(chan struct{}),
	}
	s.wg.Add(1)
	go s.loop()
	return &Handler{level: cfg.Level, sink: s}
}

// Close flushes buffered records. Records handled after Close are dropped.
func (h *Handler) Close() error {
	h.sink.once.Do(func() { close(h.sink.done) })
	h.sink.wg.Wait()
	return nil
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	line, err := h.encode(r)
	if err != nil {
		return err
	}
	select {
	case <-h.sink.done:
		return ErrClosed
	default:
	}
	select {
	case h.sink.ch <- line:
		return nil
	case <-h.sink.done:
		return ErrClosed
	}
}

func (h *Handler) encode(r slog.Record) ([]byte, error) {
	ev := make(map[string]any, r.NumAttrs()+len(h.attrs)+3)
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	ev["ts"] = ts.UTC().Format(time.RFC3339Nano)
	ev["level"] = r.Level.String()
	ev["msg"] = r.Message

	for _, a := range h.attrs {
		put(ev, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		put(ev, h.prefix, a)
		return true
	})

	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ev); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// put flattens groups into dotted keys.
func put(ev map[string]any, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			put(ev, p, ga)
		}
		return
	}
	if a.Key == "" {
		return
	}
	v := a.Value.Any()
	if err, ok := v.(error); ok {
		v = err.Error()
	}
	ev[prefix+a.Key] = v
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	h2.attrs = append(h2.attrs, h.attrs...)
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		h2.attrs = append(h2.attrs, a)
	}
	return &h2
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.prefix = h.prefix + name + "."
	return &h2
}

func (s *sink) loop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.every)
	defer ticker.Stop()

	var buf []byte
	for {
		select {
		case line := <-s.ch:
			if len(buf)+len(line) > maxBlock {
				buf = s.flush(buf)
			}
			buf = append(buf, line...)
		case <-ticker.C:
			buf = s.flush(buf)
		case <-s.done:
			for {
				select {
				case line := <-s.ch:
					if len(buf)+len(line) > maxBlock {
						buf = s.flush(buf)
					}
					buf = append(buf, line...)
				default:
					s.flush(buf)
					return
				}
			}
		}
	}
}

func (s *sink) flush(buf []byte) []byte {
	if len(buf) == 0 {
		return buf
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := s.ab.AppendBlock(ctx, readSeekNopCloser{bytes.NewReader(buf)}, nil); err != nil {
		// slog would loop back into this sink
		fmt.Fprintf(os.Stderr, "logsink: append block: %v\n", err)
	}
	return buf[:0]
}

type readSeekNopCloser struct{ io.ReadSeeker }

func (r readSeekNopCloser) Close() error { return nil }
