package tokens

import (
	"errors"
	"strings"
)

// ErrUnreachableTarget means the document cannot be queried at all, e.g. a
// privileged page or a page that failed to load. No partial report is
// produced when a source fails this way.
var ErrUnreachableTarget = errors.New("target cannot be analyzed")

// CustomPropertyPrefix marks author-defined custom properties.
const CustomPropertyPrefix = "--"

// NodeID identifies one element of a document. IDs are stable for the
// lifetime of the document value they came from.
type NodeID int

// StyleSnapshot is the resolved style of one element: property name to
// resolved value. A missing property reads as "".
type StyleSnapshot map[string]string

// Get returns the resolved value of property.
func (s StyleSnapshot) Get(property string) string {
	return s[property]
}

// Document is a page the sampler can walk.
type Document interface {
	// URL is the address of the page.
	URL() string
	// Title is the document title.
	Title() string
	// Elements enumerates every element of the document. An error means
	// the document cannot be walked.
	Elements() ([]NodeID, error)
}

// StyleResolver returns fully cascaded style values.
type StyleResolver interface {
	// ResolvedStyle returns the resolved style of one element. Unknown
	// elements resolve to an empty snapshot.
	ResolvedStyle(id NodeID) StyleSnapshot
	// RootStyle returns the resolved style of the root scope, including
	// every custom property defined there.
	RootStyle() (StyleSnapshot, error)
}

// Source is a document together with its style resolver.
type Source interface {
	Document
	StyleResolver
}

// Snapshot is a captured document: per-element resolved styles in document
// order plus the root scope. It is the wire form produced by the browser
// source and the format of JSON fixtures.
type Snapshot struct {
	PageURL   string          `json:"url"`
	PageTitle string          `json:"title"`
	Nodes     []StyleSnapshot `json:"elements"`
	Root      StyleSnapshot   `json:"root"`
}

var _ Source = (*Snapshot)(nil)

// URL implements Document.
func (s *Snapshot) URL() string { return s.PageURL }

// Title implements Document.
func (s *Snapshot) Title() string { return s.PageTitle }

// Elements implements Document. Node IDs are indexes into Nodes.
func (s *Snapshot) Elements() ([]NodeID, error) {
	ids := make([]NodeID, len(s.Nodes))
	for i := range s.Nodes {
		ids[i] = NodeID(i)
	}
	return ids, nil
}

// ResolvedStyle implements StyleResolver.
func (s *Snapshot) ResolvedStyle(id NodeID) StyleSnapshot {
	if int(id) < 0 || int(id) >= len(s.Nodes) {
		return StyleSnapshot{}
	}
	return s.Nodes[id]
}

// RootStyle implements StyleResolver.
func (s *Snapshot) RootStyle() (StyleSnapshot, error) {
	if s.Root == nil {
		return StyleSnapshot{}, nil
	}
	return s.Root, nil
}

// customProperties reads the custom properties of the root scope, trimming
// values and dropping empty ones.
func customProperties(root StyleSnapshot) map[string]string {
	out := make(map[string]string)
	for name, value := range root {
		if !strings.HasPrefix(name, CustomPropertyPrefix) {
			continue
		}
		if v := strings.TrimSpace(value); v != "" {
			out[name] = v
		}
	}
	return out
}
