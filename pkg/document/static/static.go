package static

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/gnana997/uitokens/pkg/tokens"
	"github.com/gnana997/uitokens/pkg/util"
)

// Options configures how a static page is loaded.
type Options struct {
	// BaseDir resolves relative <link> hrefs and stylesheet patterns.
	// Load defaults it to the directory of the HTML file.
	BaseDir string

	// URL overrides the document URL reported in the token report.
	URL string

	// Stylesheets are extra doublestar patterns (e.g. "dist/**/*.css"),
	// relative to BaseDir, applied after the page's own styles.
	Stylesheets []string

	// Logger receives skipped-stylesheet diagnostics. If nil, uses
	// slog.Default().
	Logger *slog.Logger
}

// Document is an HTML page with every element's style resolved offline.
// Styles are computed once at load time; the value is read-only afterwards
// and safe for concurrent use.
type Document struct {
	url    string
	title  string
	styles []tokens.StyleSnapshot
	root   tokens.StyleSnapshot
}

var _ tokens.Source = (*Document)(nil)

// Load reads and resolves the HTML file at p.
func Load(p string, opts Options) (*Document, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return nil, fmt.Errorf("static: resolve %s: %w", p, err)
	}
	data, err := util.ReadFile(abs, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("static: %w", err)
	}
	if opts.BaseDir == "" {
		opts.BaseDir = filepath.Dir(abs)
	}
	if opts.URL == "" {
		opts.URL = (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
	}
	return Parse(data, opts)
}

// Parse resolves an HTML document held in memory.
func Parse(data []byte, opts Options) (*Document, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("static: parse html: %w", err)
	}

	c := &compiler{log: opts.Logger}
	c.addSheet(userAgentCSS, "user-agent", originUserAgent)

	var elements []*html.Node
	var title string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			elements = append(elements, n)
			switch n.DataAtom {
			case atom.Title:
				if title == "" {
					title = strings.TrimSpace(textContent(n))
				}
			case atom.Style:
				if media := attr(n, "media"); media == "" || !strings.HasPrefix(strings.ToLower(media), "print") {
					c.addSheet(textContent(n), "<style>", originAuthor)
				}
			case atom.Link:
				if isStylesheetLink(n) {
					loadLinked(c, attr(n, "href"), opts)
				}
			}
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(root)

	if err := loadPatterns(c, opts); err != nil {
		return nil, err
	}

	doc := &Document{
		url:    opts.URL,
		title:  title,
		styles: make([]tokens.StyleSnapshot, len(elements)),
	}

	computed := make(map[*html.Node]*computedStyle, len(elements))
	base := initialStyle()
	var rootPx float64
	for i, n := range elements {
		parent := base
		if p := n.Parent; p != nil && computed[p] != nil {
			parent = computed[p]
		}
		var inline []declaration
		if style := attr(n, "style"); style != "" {
			inline = c.inline(style)
		}
		cs := computeElement(cascade(n, c.rules, inline), parent, rootPx)
		if rootPx == 0 {
			rootPx = cs.fontPx
		}
		computed[n] = cs
		doc.styles[i] = resolvedSnapshot(cs)

		if i == 0 {
			doc.root = resolvedSnapshot(cs)
			for k, v := range cs.custom {
				doc.root[k] = v
			}
		}
	}
	if doc.root == nil {
		doc.root = tokens.StyleSnapshot{}
	}

	opts.Logger.Debug("static document resolved",
		"url", doc.url,
		"elements", len(elements),
		"rules", len(c.rules),
	)
	return doc, nil
}

// URL implements tokens.Document.
func (d *Document) URL() string { return d.url }

// Title implements tokens.Document.
func (d *Document) Title() string { return d.title }

// Elements implements tokens.Document. IDs are element indexes in
// document order.
func (d *Document) Elements() ([]tokens.NodeID, error) {
	ids := make([]tokens.NodeID, len(d.styles))
	for i := range d.styles {
		ids[i] = tokens.NodeID(i)
	}
	return ids, nil
}

// ResolvedStyle implements tokens.StyleResolver.
func (d *Document) ResolvedStyle(id tokens.NodeID) tokens.StyleSnapshot {
	if int(id) < 0 || int(id) >= len(d.styles) {
		return tokens.StyleSnapshot{}
	}
	return d.styles[id]
}

// RootStyle implements tokens.StyleResolver. It includes every custom
// property visible on the html element.
func (d *Document) RootStyle() (tokens.StyleSnapshot, error) {
	return d.root, nil
}

// Snapshot copies the resolved document into its wire form.
func (d *Document) Snapshot() *tokens.Snapshot {
	return &tokens.Snapshot{
		PageURL:   d.url,
		PageTitle: d.title,
		Nodes:     d.styles,
		Root:      d.root,
	}
}

func loadLinked(c *compiler, href string, opts Options) {
	u, err := url.Parse(href)
	if err != nil || href == "" {
		return
	}
	if (u.Scheme != "" && u.Scheme != "file") || u.Host != "" {
		opts.Logger.Debug("skipping remote stylesheet", "href", href)
		return
	}

	p := u.Path
	if !path.IsAbs(p) || u.Scheme == "" {
		p = filepath.Join(opts.BaseDir, filepath.FromSlash(strings.TrimPrefix(p, "/")))
	}
	data, err := util.ReadFile(p, opts.Logger)
	if err != nil {
		opts.Logger.Warn("skipping unreadable stylesheet", "href", href, "error", err)
		return
	}
	c.addSheet(string(data), href, originAuthor)
}

func loadPatterns(c *compiler, opts Options) error {
	if len(opts.Stylesheets) == 0 {
		return nil
	}
	base := opts.BaseDir
	if base == "" {
		base = "."
	}
	fsys := os.DirFS(base)

	for _, pattern := range opts.Stylesheets {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("static: invalid stylesheet pattern %q", pattern)
		}
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return fmt.Errorf("static: glob %q: %w", pattern, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			data, err := util.ReadFile(filepath.Join(base, filepath.FromSlash(m)), opts.Logger)
			if err != nil {
				opts.Logger.Warn("skipping unreadable stylesheet", "path", m, "error", err)
				continue
			}
			c.addSheet(string(data), m, originAuthor)
		}
	}
	return nil
}

func isStylesheetLink(n *html.Node) bool {
	for _, rel := range strings.Fields(strings.ToLower(attr(n, "rel"))) {
		if rel == "stylesheet" {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type == html.TextNode {
			b.WriteString(ch.Data)
		}
	}
	return b.String()
}
