package tokens

import (
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"golang.org/x/sync/singleflight"
)

// ExtractorConfig configures an Extractor.
type ExtractorConfig struct {
	// Logger receives one line per pass. If nil, uses slog.Default().
	Logger *slog.Logger

	// Now stamps report metadata. If nil, uses time.Now.
	Now func() time.Time
}

// Extractor runs extraction passes. Each call to Extract is an independent
// pass with its own tables; nothing is retained between calls.
//
// Overlapping calls for the same document value are collapsed: one pass runs
// and every caller receives its own copy of the report. Distinct documents
// never share a pass, even when they report the same URL.
type Extractor struct {
	log    *slog.Logger
	now    func() time.Time
	flight singleflight.Group
}

// NewExtractor creates an Extractor.
func NewExtractor(cfg ExtractorConfig) *Extractor {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Extractor{log: cfg.Logger, now: cfg.Now}
}

// Extract walks src, aggregates every tracked property and returns the
// report. It fails only when the source cannot be walked at all.
func (e *Extractor) Extract(src Source) (*TokenReport, error) {
	key, ok := documentKey(src)
	if !ok {
		return e.extract(src)
	}
	v, err, shared := e.flight.Do(key, func() (interface{}, error) {
		return e.extract(src)
	})
	if err != nil {
		return nil, err
	}
	report := v.(*TokenReport)
	if shared {
		e.log.Debug("token extraction shared", "url", src.URL())
		return report.Clone(), nil
	}
	return report, nil
}

// documentKey identifies src by its address, so two documents with the
// same URL get different keys. Sources that are not pointers have no
// identity and are never merged.
func documentKey(src Source) (string, bool) {
	v := reflect.ValueOf(src)
	if v.Kind() != reflect.Pointer {
		return "", false
	}
	return fmt.Sprintf("%T@%x", src, v.Pointer()), true
}

func (e *Extractor) extract(src Source) (*TokenReport, error) {
	start := time.Now()
	agg := NewAggregator()

	stats, err := sample(src, agg)
	if err != nil {
		return nil, err
	}

	root, err := src.RootStyle()
	if err != nil {
		return nil, fmt.Errorf("%w: read root style: %v", ErrUnreachableTarget, err)
	}

	report := Shape(agg, customProperties(root), Meta{
		URL:       src.URL(),
		Title:     src.Title(),
		Timestamp: e.now().UTC().Truncate(time.Millisecond),
	})

	e.log.Info("token extraction complete",
		"url", report.Meta.URL,
		"elements", stats.Elements,
		"observations", agg.Observations(),
		"colors", len(report.Colors.All),
		"cssVariables", len(report.CustomProperties),
		"ms", time.Since(start).Milliseconds())

	return report, nil
}
