package cache

import (
	"testing"
	"time"
)

func TestBlobExpired(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute).Format(time.RFC3339)
	future := now.Add(time.Minute).Format(time.RFC3339)
	garbage := "tomorrow"

	cases := []struct {
		name     string
		metadata map[string]*string
		want     bool
	}{
		{"no metadata", nil, false},
		{"past", map[string]*string{"Expires": &past}, true},
		{"future", map[string]*string{"expires": &future}, false},
		{"unparseable", map[string]*string{"expires": &garbage}, false},
	}
	for _, tc := range cases {
		if got := blobExpired(tc.metadata, now); got != tc.want {
			t.Errorf("%s: blobExpired = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestNewBlobCacheRequiresAccount(t *testing.T) {
	t.Parallel()
	if _, err := NewBlobCache("", "", "marketplace"); err == nil {
		t.Fatal("expected error without account name")
	}
}
