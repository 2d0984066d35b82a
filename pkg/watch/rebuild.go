package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gnana997/uitokens/pkg/tokens"
)

// Extractor is the part of *service.Service the rebuilder needs.
type Extractor interface {
	Extract(ctx context.Context, target string, refresh bool) (*tokens.TokenReport, error)
	Invalidate(target string) bool
}

// Result is one page re-extraction.
type Result struct {
	Page   string
	Report *tokens.TokenReport
	Err    error
}

// Rebuilder maps change batches to the pages they affect and re-extracts
// those pages. A changed stylesheet affects every tracked page; a changed
// page affects only itself. Pages that were removed are dropped from
// tracking.
type Rebuilder struct {
	svc      Extractor
	onResult func(Result)
	log      *slog.Logger

	mu    sync.Mutex
	pages map[string]struct{}
}

// NewRebuilder tracks pages, given as file paths.
func NewRebuilder(svc Extractor, pages []string, onResult func(Result), log *slog.Logger) *Rebuilder {
	if log == nil {
		log = slog.Default()
	}
	r := &Rebuilder{svc: svc, onResult: onResult, log: log, pages: make(map[string]struct{})}
	for _, p := range pages {
		if abs, err := filepath.Abs(p); err == nil {
			r.pages[abs] = struct{}{}
		}
	}
	return r
}

// Pages returns the tracked pages, sorted.
func (r *Rebuilder) Pages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.pages))
	for p := range r.pages {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Affected returns the tracked pages a change batch invalidates. Pages
// created since startup are tracked from here on.
func (r *Rebuilder) Affected(changed []string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range changed {
		if !isPage(c) {
			continue
		}
		if _, ok := r.pages[c]; ok {
			continue
		}
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			r.pages[c] = struct{}{}
			r.log.Info("new page tracked", "page", c)
		}
	}

	hit := make(map[string]struct{})
	for _, c := range changed {
		if isStylesheet(c) {
			for p := range r.pages {
				hit[p] = struct{}{}
			}
			break
		}
		if _, ok := r.pages[c]; ok {
			hit[c] = struct{}{}
		}
	}

	out := make([]string, 0, len(hit))
	for p := range hit {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Handle re-extracts every page affected by changed and reports each
// outcome to the result callback.
func (r *Rebuilder) Handle(ctx context.Context, changed []string) {
	for _, page := range r.Affected(changed) {
		r.svc.Invalidate(page)

		if _, err := os.Stat(page); os.IsNotExist(err) {
			r.mu.Lock()
			delete(r.pages, page)
			r.mu.Unlock()
			r.log.Info("page removed, no longer tracked", "page", page)
			continue
		}

		report, err := r.svc.Extract(ctx, page, true)
		if err != nil {
			r.log.Warn("re-extraction failed", "page", page, "error", err)
		} else {
			r.log.Info("page re-extracted", "page", page, "colors", len(report.Colors.All))
		}
		if r.onResult != nil {
			r.onResult(Result{Page: page, Report: report, Err: err})
		}
	}
}

// DiscoverPages lists HTML files below root, as absolute paths.
func DiscoverPages(root string) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", root, err)
	}
	matches, err := doublestar.Glob(os.DirFS(abs), "**/*.{html,htm}", doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("watch: discover pages: %w", err)
	}

	pages := make([]string, 0, len(matches))
	for _, m := range matches {
		if strings.Contains(m, "node_modules/") {
			continue
		}
		pages = append(pages, filepath.Join(abs, filepath.FromSlash(m)))
	}
	sort.Strings(pages)
	return pages, nil
}

func isPage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".html" || ext == ".htm"
}

func isStylesheet(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".css")
}
