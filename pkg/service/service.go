// Package service ties target loading, extraction and a report cache
// together. It is the single entry point used by the CLI, the MCP server
// and the HTTP API.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/gnana997/uitokens/pkg/document"
	"github.com/gnana997/uitokens/pkg/tokens"
	"github.com/gnana997/uitokens/pkg/util"
)

// Loader resolves a target string to a source. *document.Loader
// implements it.
type Loader interface {
	Load(ctx context.Context, target string) (tokens.Source, error)
	Close() error
}

// Config configures the service.
type Config struct {
	// CacheSize is the number of reports kept. Default: 64.
	CacheSize int

	// CacheTTL expires cached reports. Default: 5m.
	CacheTTL time.Duration

	Logger *slog.Logger
}

// DefaultConfig returns the default cache settings.
func DefaultConfig() Config {
	return Config{
		CacheSize: 64,
		CacheTTL:  5 * time.Minute,
	}
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Cached int   `json:"cached"`
}

// Service extracts token reports and caches them per target.
//
// **Usage:**
//
//	svc := service.New(document.NewLoader(document.Config{}), tokens.NewExtractor(tokens.ExtractorConfig{}), service.DefaultConfig())
//	defer svc.Close()
//
//	report, err := svc.Extract(ctx, "https://example.com", false)
//
// **Thread Safety:** Safe for concurrent calls. Concurrent requests for the
// same target share one load. Every caller receives its own copy of a
// report; cached reports are never handed out directly.
type Service struct {
	loader    Loader
	extractor *tokens.Extractor
	cache     *expirable.LRU[string, *tokens.TokenReport]
	flight    singleflight.Group
	log       *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a Service. Zero config fields take their defaults.
func New(loader Loader, extractor *tokens.Extractor, cfg Config) *Service {
	def := DefaultConfig()
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = def.CacheSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = def.CacheTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Service{
		loader:    loader,
		extractor: extractor,
		cache:     expirable.NewLRU[string, *tokens.TokenReport](cfg.CacheSize, nil, cfg.CacheTTL),
		log:       cfg.Logger,
	}
}

// Extract returns the token report for target. A cached report is reused
// unless refresh is set.
func (s *Service) Extract(ctx context.Context, target string, refresh bool) (*tokens.TokenReport, error) {
	key := CacheKey(target)

	if !refresh {
		if report, ok := s.cache.Get(key); ok {
			s.hits.Add(1)
			s.log.Debug("report cache hit", "target", key)
			return report.Clone(), nil
		}
	}

	v, err, shared := s.flight.Do(key, func() (any, error) {
		if !refresh {
			if report, ok := s.cache.Get(key); ok {
				return report, nil
			}
		}
		s.misses.Add(1)

		src, err := s.loader.Load(ctx, target)
		if err != nil {
			return nil, err
		}
		report, err := s.extractor.Extract(src)
		if err != nil {
			return nil, err
		}
		s.cache.Add(key, report)
		return report, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.log.Debug("joined in-flight extraction", "target", key)
	}
	return v.(*tokens.TokenReport).Clone(), nil
}

// Result is the outcome of one target of a batch.
type Result struct {
	Target string
	Report *tokens.TokenReport
	Err    error
}

// ExtractAll extracts several targets with at most workers running at
// once (util.Workers decides when workers <= 0). Results keep the order
// of targets. A failing target does not stop the others.
func (s *Service) ExtractAll(ctx context.Context, targets []string, workers int, refresh bool) []Result {
	results := make([]Result, len(targets))

	var g errgroup.Group
	g.SetLimit(util.Workers(workers))
	for i, target := range targets {
		g.Go(func() error {
			report, err := s.Extract(ctx, target, refresh)
			results[i] = Result{Target: target, Report: report, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Tokens returns one category of target's report, truncated to limit
// entries when limit > 0.
func (s *Service) Tokens(ctx context.Context, target string, c tokens.Category, limit int) ([]tokens.Token, error) {
	if _, err := tokens.ParseCategory(string(c)); err != nil {
		return nil, err
	}
	report, err := s.Extract(ctx, target, false)
	if err != nil {
		return nil, err
	}
	list, err := report.Tokens(c)
	if err != nil {
		return nil, fmt.Errorf("tokens %s: %w", c, err)
	}
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// Invalidate drops the cached report for target.
func (s *Service) Invalidate(target string) bool {
	return s.cache.Remove(CacheKey(target))
}

// Stats returns cache counters.
func (s *Service) Stats() Stats {
	return Stats{
		Hits:   s.hits.Load(),
		Misses: s.misses.Load(),
		Cached: s.cache.Len(),
	}
}

// Close releases the loader (and its browser).
func (s *Service) Close() error {
	s.cache.Purge()
	return s.loader.Close()
}

// CacheKey is the canonical cache key of a target: URLs as written, local
// files as absolute paths.
func CacheKey(target string) string {
	target = strings.TrimSpace(target)
	kind, loc, err := document.Classify(target)
	if err != nil || kind == document.KindBrowser {
		return target
	}
	if abs, err := filepath.Abs(loc); err == nil {
		return abs
	}
	return loc
}
