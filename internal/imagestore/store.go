// Package imagestore persists screenshot bytes under the project image
// directory and builds the URL the local image server exposes them at.
package imagestore

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"jinaai/internal/config"
	"jinaai/internal/logging"
)

// subdir is the folder below <base>/image and below /images on the server.
const subdir = "jinaai"

// maxSegmentLen bounds the path-derived part of a slug.
const maxSegmentLen = 40

var (
	unsafeHostChars = regexp.MustCompile(`[^a-z0-9.-]+`)
	unsafePathChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
)

// Store writes images to <BasePath>/image/jinaai/.
type Store struct {
	cfg config.ImageStoreConfig
	now func() time.Time
}

// New creates a store from the four image-store coordinates.
func New(cfg config.ImageStoreConfig) *Store {
	return &Store{cfg: cfg, now: time.Now}
}

// Configured reports whether all coordinates are present.
func (s *Store) Configured() bool {
	return s != nil && s.cfg.Configured()
}

// Dir returns the directory images are written to.
func (s *Store) Dir() string {
	return filepath.Join(s.cfg.BasePath, "image", subdir)
}

// Save writes data as <slug>_<timestamp>.<ext> and returns its public URL.
// Two saves of the same source within one minute overwrite each other.
func (s *Store) Save(data []byte, sourceURL, ext string) (string, error) {
	if !s.Configured() {
		return "", fmt.Errorf("image store not configured")
	}

	name := FileName(sourceURL, ext, s.now())
	dir := s.Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		logging.ImageStoreWarn("Cannot create %s: %v", dir, err)
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		logging.ImageStoreWarn("Cannot write %s: %v", path, err)
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	logging.ImageStore("Screenshot saved to: %s (%d bytes)", path, len(data))
	return s.PublicURL(name), nil
}

// PublicURL builds <host>:<port>/pw=<key>/images/jinaai/<file>.
func (s *Store) PublicURL(fileName string) string {
	return fmt.Sprintf("%s:%s/pw=%s/images/%s/%s",
		strings.TrimRight(s.cfg.PublicHost, "/"), s.cfg.Port, s.cfg.AccessKey, subdir, fileName)
}

// FileName returns <slug>_<yyyymmdd-hhmm>.<ext>.
func FileName(sourceURL, ext string, at time.Time) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		ext = "png"
	}
	return fmt.Sprintf("%s_%s.%s", Slug(sourceURL), at.UTC().Format("20060102-1504"), ext)
}

// Slug derives a filesystem-safe name from a URL: the host without a leading
// "www." plus a sanitized, length-bounded first path segment.
func Slug(sourceURL string) string {
	u, err := url.Parse(strings.TrimSpace(sourceURL))
	if err != nil || u.Hostname() == "" {
		return "screenshot"
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.Trim(unsafeHostChars.ReplaceAllString(host, "-"), ".-")
	if host == "" {
		return "screenshot"
	}

	segment := ""
	for _, part := range strings.Split(u.Path, "/") {
		if part != "" {
			segment = sanitize(part)
			break
		}
	}
	if len(segment) > maxSegmentLen {
		segment = strings.TrimRight(segment[:maxSegmentLen], "-_")
	}

	if segment == "" {
		return host
	}
	return host + "_" + segment
}

func sanitize(s string) string {
	return strings.Trim(unsafePathChars.ReplaceAllString(s, "-"), "-_")
}
