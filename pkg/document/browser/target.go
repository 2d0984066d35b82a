package browser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gnana997/uitokens/pkg/tokens"
)

// privilegedSchemes are browser-internal pages that cannot be analyzed.
var privilegedSchemes = []string{
	"about",
	"chrome",
	"chrome-extension",
	"moz-extension",
	"view-source",
	"devtools",
	"edge",
}

// CheckTarget rejects URLs a browser capture cannot analyze.
func CheckTarget(target string) error {
	u, err := url.Parse(strings.TrimSpace(target))
	if err != nil {
		return fmt.Errorf("%w: %v", tokens.ErrUnreachableTarget, err)
	}
	scheme := strings.ToLower(u.Scheme)
	for _, s := range privilegedSchemes {
		if scheme == s {
			return fmt.Errorf("%w: %s pages are not accessible", tokens.ErrUnreachableTarget, s)
		}
	}
	switch scheme {
	case "http", "https", "file":
		return nil
	case "":
		return fmt.Errorf("%w: %q is not an absolute URL", tokens.ErrUnreachableTarget, target)
	}
	return fmt.Errorf("%w: unsupported scheme %q", tokens.ErrUnreachableTarget, scheme)
}
