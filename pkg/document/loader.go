// Package document turns a target string (a URL, an HTML file or a JSON
// snapshot) into a tokens.Source.
package document

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gnana997/uitokens/pkg/document/browser"
	"github.com/gnana997/uitokens/pkg/document/static"
	"github.com/gnana997/uitokens/pkg/tokens"
	"github.com/gnana997/uitokens/pkg/util"
)

// Kind is how a target is loaded.
type Kind string

const (
	KindBrowser  Kind = "browser"
	KindStatic   Kind = "static"
	KindSnapshot Kind = "snapshot"
)

// Capturer captures live pages. *browser.Manager implements it.
type Capturer interface {
	Capture(ctx context.Context, pageURL string) (*tokens.Snapshot, error)
	Close() error
}

// Config configures a Loader.
type Config struct {
	// Browser configures the Chrome used for http(s) targets.
	Browser browser.Config

	// Capturer overrides the browser. If nil, a browser.Manager is created
	// on the first http(s) target.
	Capturer Capturer

	// Stylesheets are extra doublestar patterns applied to static pages.
	Stylesheets []string

	Logger *slog.Logger
}

// Loader resolves targets to sources. It is safe for concurrent use.
type Loader struct {
	cfg  Config
	log  *slog.Logger
	mu   sync.Mutex
	capt Capturer
}

// NewLoader creates a Loader.
func NewLoader(cfg Config) *Loader {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Browser.Logger == nil {
		cfg.Browser.Logger = cfg.Logger
	}
	return &Loader{cfg: cfg, log: cfg.Logger, capt: cfg.Capturer}
}

// Classify reports how target would be loaded and the URL or path to load.
// Browser-internal URLs fail with tokens.ErrUnreachableTarget.
func Classify(target string) (Kind, string, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", "", fmt.Errorf("%w: empty target", tokens.ErrUnreachableTarget)
	}

	u, err := url.Parse(target)
	// A one-letter scheme is a Windows drive, not a URL.
	if err == nil && len(u.Scheme) > 1 {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return KindBrowser, target, nil
		case "file":
			target = filepath.FromSlash(u.Path)
		default:
			return "", "", browser.CheckTarget(target)
		}
	}

	if strings.EqualFold(filepath.Ext(target), ".json") {
		return KindSnapshot, target, nil
	}
	return KindStatic, target, nil
}

// Load resolves target to a source ready for extraction.
func (l *Loader) Load(ctx context.Context, target string) (tokens.Source, error) {
	kind, loc, err := Classify(target)
	if err != nil {
		return nil, err
	}
	l.log.Debug("loading target", "target", target, "kind", kind)

	switch kind {
	case KindBrowser:
		snap, err := l.capturer().Capture(ctx, loc)
		if err != nil {
			return nil, err
		}
		return snap, nil

	case KindSnapshot:
		snap, err := LoadSnapshot(loc, l.log)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", tokens.ErrUnreachableTarget, err)
		}
		return snap, nil

	default:
		doc, err := static.Load(loc, static.Options{
			Stylesheets: l.cfg.Stylesheets,
			Logger:      l.log,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", tokens.ErrUnreachableTarget, err)
		}
		return doc, nil
	}
}

// Close releases the browser, if one was started.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.capt == nil {
		return nil
	}
	err := l.capt.Close()
	l.capt = nil
	return err
}

func (l *Loader) capturer() Capturer {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.capt == nil {
		l.capt = browser.NewManager(l.cfg.Browser)
	}
	return l.capt
}

// LoadSnapshot reads a JSON document snapshot.
func LoadSnapshot(path string, log *slog.Logger) (*tokens.Snapshot, error) {
	data, err := util.ReadFile(path, log)
	if err != nil {
		return nil, err
	}
	var snap tokens.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	if snap.PageURL == "" {
		if abs, err := filepath.Abs(path); err == nil {
			snap.PageURL = (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
		}
	}
	return &snap, nil
}
