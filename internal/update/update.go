// Package update checks GitHub for newer typedsql releases.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pthm/typedsql/internal/version"
)

const (
	releasesURL = "https://api.github.com/repos/pthm/typedsql/releases/latest"
	cacheTTL    = 24 * time.Hour
	cacheFile   = "update-check.json"
)

// Info contains update check results
type Info struct {
	LatestVersion   string    `json:"latest_version"`
	CurrentVersion  string    `json:"current_version"`
	ReleaseURL      string    `json:"release_url,omitempty"`
	CheckedAt       time.Time `json:"checked_at"`
	UpdateAvailable bool      `json:"update_available"`
}

// githubRelease represents the GitHub API response
type githubRelease struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Checker fetches the latest release and caches the answer on disk.
type Checker struct {
	URL      string
	CacheDir string
	Client   *http.Client
	now      func() time.Time
}

// NewChecker returns a Checker for the typedsql repository using the user
// cache directory.
func NewChecker() (*Checker, error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, err
	}
	return &Checker{
		URL:      releasesURL,
		CacheDir: dir,
		Client:   &http.Client{Timeout: 5 * time.Second},
	}, nil
}

// CheckWithCache checks for updates using cache when available
func CheckWithCache(ctx context.Context) (*Info, error) {
	c, err := NewChecker()
	if err != nil {
		return nil, err
	}
	return c.Check(ctx, version.Version)
}

// Check compares current with the latest release. A cached answer younger
// than a day is reused.
func (c *Checker) Check(ctx context.Context, current string) (*Info, error) {
	if info, err := c.loadCache(); err == nil && c.since(info.CheckedAt) < cacheTTL {
		info.CurrentVersion = current
		info.UpdateAvailable = compareVersions(current, info.LatestVersion) < 0
		return info, nil
	}

	info, err := c.fetch(ctx, current)
	if err != nil {
		return nil, err
	}

	_ = c.saveCache(info)
	return info, nil
}

func (c *Checker) since(t time.Time) time.Duration {
	if c.now != nil {
		return c.now().Sub(t)
	}
	return time.Since(t)
}

// fetch gets the latest release from GitHub
func (c *Checker) fetch(ctx context.Context, current string) (*Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "typedsql/"+current)

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, err
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	return &Info{
		LatestVersion:   latest,
		CurrentVersion:  current,
		ReleaseURL:      release.HTMLURL,
		CheckedAt:       time.Now(),
		UpdateAvailable: compareVersions(current, latest) < 0,
	}, nil
}

// cacheDir returns the cache directory path
func cacheDir() (string, error) {
	// Use XDG_CACHE_HOME if set, otherwise ~/.cache
	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		cacheHome = filepath.Join(home, ".cache")
	}
	return filepath.Join(cacheHome, "typedsql"), nil
}

func (c *Checker) loadCache() (*Info, error) {
	data, err := os.ReadFile(filepath.Join(c.CacheDir, cacheFile))
	if err != nil {
		return nil, err
	}

	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Checker) saveCache(info *Info) error {
	if err := os.MkdirAll(c.CacheDir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.CacheDir, cacheFile), data, 0o644)
}

// compareVersions compares two semver strings
// Returns -1 if a < b, 0 if a == b, 1 if a > b
func compareVersions(a, b string) int {
	a = strings.TrimPrefix(a, "v")
	b = strings.TrimPrefix(b, "v")

	// dev builds are always the latest
	if a == "dev" {
		return 1
	}
	if b == "dev" {
		return -1
	}

	partsA := strings.Split(a, ".")
	partsB := strings.Split(b, ".")

	for i := range max(len(partsA), len(partsB)) {
		var numA, numB int
		if i < len(partsA) {
			// Pre-release suffixes like "1.0.0-beta" compare by base version
			numA, _ = strconv.Atoi(strings.Split(partsA[i], "-")[0])
		}
		if i < len(partsB) {
			numB, _ = strconv.Atoi(strings.Split(partsB[i], "-")[0])
		}

		if numA < numB {
			return -1
		}
		if numA > numB {
			return 1
		}
	}

	return 0
}
