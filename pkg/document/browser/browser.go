// Package browser captures token snapshots from live pages with a headless
// Chrome driven by Rod. One Chrome process is shared by every capture;
// each capture opens its own tab.
package browser

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/gnana997/uitokens/pkg/tokens"
)

//go:embed scripts/snapshot.js
var snapshotJS string

// DefaultNavigationTimeout bounds navigation plus load of one page.
const DefaultNavigationTimeout = 30 * time.Second

// Config configures the browser manager.
type Config struct {
	// RemoteURL is the DevTools WebSocket URL of an external Chrome.
	// Empty launches a local headless Chrome.
	RemoteURL string

	// Stealth applies go-rod/stealth evasions to every tab.
	Stealth bool

	// NavigationTimeout bounds navigation and load. Default: 30s.
	NavigationTimeout time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = DefaultNavigationTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Manager owns the Chrome process. Chrome is started on the first capture
// and reused until Close.
type Manager struct {
	cfg     Config
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

// NewManager creates a Manager. No browser is started until Capture.
func NewManager(cfg Config) *Manager {
	cfg.defaults()
	return &Manager{cfg: cfg}
}

// Capture loads pageURL in a new tab and returns the resolved style of
// every element plus the root custom properties. Pages that cannot be
// analyzed fail with tokens.ErrUnreachableTarget.
func (m *Manager) Capture(ctx context.Context, pageURL string) (*tokens.Snapshot, error) {
	if err := CheckTarget(pageURL); err != nil {
		return nil, err
	}

	b, err := m.ensure()
	if err != nil {
		return nil, err
	}

	var page *rod.Page
	if m.cfg.Stealth {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			m.cfg.Logger.Debug("browser: close tab", "error", cerr)
		}
	}()

	navCtx, cancel := context.WithTimeout(ctx, m.cfg.NavigationTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		return nil, fmt.Errorf("%w: navigate %s: %v", tokens.ErrUnreachableTarget, pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		m.cfg.Logger.Warn("browser: wait load timeout", "url", pageURL, "error", err)
	}

	res, err := page.Context(ctx).Eval(snapshotJS, tokens.TrackedProperties())
	if err != nil {
		return nil, fmt.Errorf("%w: evaluate %s: %v", tokens.ErrUnreachableTarget, pageURL, err)
	}

	var snap tokens.Snapshot
	if err := json.Unmarshal([]byte(res.Value.JSON("", "")), &snap); err != nil {
		return nil, fmt.Errorf("browser: decode snapshot: %w", err)
	}
	if snap.PageURL == "" {
		snap.PageURL = pageURL
	}

	m.cfg.Logger.Debug("browser: captured page",
		"url", snap.PageURL,
		"elements", len(snap.Nodes),
	)
	return &snap, nil
}

// Close shuts down Chrome. A closed Manager rejects further captures.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return m.cleanup()
}

func (m *Manager) ensure() (*rod.Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, fmt.Errorf("browser: manager is closed")
	}
	if m.browser != nil {
		return m.browser, nil
	}

	b, err := m.launch()
	if err != nil {
		return nil, err
	}
	m.browser = b
	return b, nil
}

func (m *Manager) launch() (*rod.Browser, error) {
	log := m.cfg.Logger

	var wsURL string
	if m.cfg.RemoteURL != "" {
		wsURL = m.cfg.RemoteURL
		log.Info("browser: connecting to remote", "url", wsURL)
	} else {
		l := launcher.New().Headless(true)
		if m.cfg.Stealth {
			l = l.Set("disable-blink-features", "AutomationControlled")
		}

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		m.lnch = l
		log.Info("browser: launched local chrome", "url", wsURL, "stealth", m.cfg.Stealth)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	return b, nil
}

func (m *Manager) cleanup() error {
	var err error
	if m.browser != nil {
		err = m.browser.Close()
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
		m.lnch = nil
	}
	return err
}
