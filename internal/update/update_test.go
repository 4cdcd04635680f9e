package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{name: "1.0.0 < 1.0.1", a: "1.0.0", b: "1.0.1", want: -1},
		{name: "1.0.1 > 1.0.0", a: "1.0.1", b: "1.0.0", want: 1},
		{name: "1.0.0 == 1.0.0", a: "1.0.0", b: "1.0.0", want: 0},
		{name: "v1.0.0 < 1.0.1", a: "v1.0.0", b: "1.0.1", want: -1},
		{name: "v1.0.0 == v1.0.0", a: "v1.0.0", b: "v1.0.0", want: 0},
		{name: "2.0.0 > 1.9.9", a: "2.0.0", b: "1.9.9", want: 1},
		{name: "dev > 1.0.0", a: "dev", b: "1.0.0", want: 1},
		{name: "1.0.0 < dev", a: "1.0.0", b: "dev", want: -1},
		{name: "1.0.0-beta == 1.0.0", a: "1.0.0-beta", b: "1.0.0", want: 0},
		{name: "0.10.0 > 0.9.0", a: "0.10.0", b: "0.9.0", want: 1},
		{name: "1.2 < 1.2.1", a: "1.2", b: "1.2.1", want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := compareVersions(tt.a, tt.b); got != tt.want {
				t.Errorf("compareVersions(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/cache")
	dir, err := cacheDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/cache", "typedsql"), dir)
}

func TestCheck(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "typedsql/0.1.0", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"tag_name": "v0.2.0", "html_url": "https://example.com/r/v0.2.0"}`))
	}))
	t.Cleanup(srv.Close)

	c := &Checker{URL: srv.URL, CacheDir: t.TempDir(), Client: srv.Client()}
	ctx := context.Background()

	info, err := c.Check(ctx, "0.1.0")
	require.NoError(t, err)
	assert.Equal(t, "0.2.0", info.LatestVersion)
	assert.Equal(t, "https://example.com/r/v0.2.0", info.ReleaseURL)
	assert.True(t, info.UpdateAvailable)

	info, err = c.Check(ctx, "0.2.0")
	require.NoError(t, err)
	assert.False(t, info.UpdateAvailable)
	assert.Equal(t, int32(1), hits.Load(), "second check is served from cache")

	c.now = func() time.Time { return time.Now().Add(2 * cacheTTL) }
	_, err = c.Check(ctx, "0.1.0")
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load(), "expired cache refetches")
}

func TestCheckBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	c := &Checker{URL: srv.URL, CacheDir: t.TempDir(), Client: srv.Client()}
	_, err := c.Check(context.Background(), "0.1.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}
