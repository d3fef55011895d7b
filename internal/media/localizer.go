// Package media downloads poster images into local storage so the catalog
// never hotlinks provider CDNs.
package media

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Localizer fetches remote images into a directory under the media root and
// returns the local URL. Localization is best-effort: any failure falls back
// to the original remote URL so ingestion never stalls on an image.
type Localizer struct {
	root       string
	staticHost string
	force      bool
	client     *resty.Client
}

// NewLocalizer creates a localizer writing below root. staticHost is the
// URL prefix under which the media root is served.
func NewLocalizer(root, staticHost string, force bool) *Localizer {
	return &Localizer{
		root:       root,
		staticHost: strings.TrimRight(staticHost, "/"),
		force:      force,
		client:     resty.New().SetTimeout(30 * time.Second),
	}
}

// Process downloads url into the posters folder as basename plus the source
// extension. An already-present file is reused unless reprocessing is
// forced. Never returns an error: the input URL comes back on any failure.
func (l *Localizer) Process(ctx context.Context, url, basename string) string {
	if url == "" || basename == "" {
		return url
	}

	ext := filepath.Ext(url)
	if ext == "" || len(ext) > 5 {
		ext = ".jpg"
	}
	relative := filepath.Join("posters", basename+ext)
	target := filepath.Join(l.root, relative)

	if !l.force {
		if _, err := os.Stat(target); err == nil {
			return l.localURL(relative)
		}
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		log.Printf("Media: failed to create directory for %s: %v", target, err)
		return url
	}

	resp, err := l.client.R().SetContext(ctx).SetOutput(target).Get(url)
	if err != nil {
		log.Printf("Media: failed to download %s: %v", url, err)
		return url
	}
	if resp.IsError() {
		log.Printf("Media: download of %s returned status %d", url, resp.StatusCode())
		os.Remove(target)
		return url
	}

	return l.localURL(relative)
}

func (l *Localizer) localURL(relative string) string {
	return fmt.Sprintf("%s/%s", l.staticHost, filepath.ToSlash(relative))
}
