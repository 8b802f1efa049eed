// Package directory models the external profile directories the pipeline
// resolves names against. Each directory contributes its search URL shape,
// candidate extraction, and profile display-name extraction; the rest of the
// pipeline is directory-agnostic and selects implementations by configuration.
package directory

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/sells-group/linker-cli/internal/model"
	"github.com/sells-group/linker-cli/internal/normalize"
)

// Directory is one external profile directory.
type Directory interface {
	// Name returns the unique identifier (e.g. "ijf", "judoinside").
	Name() string

	// SearchURL builds the search-results URL for a query and 1-based page.
	SearchURL(query string, page int) string

	// Candidates extracts (url, display name) pairs from a search-results
	// page, deduplicated by URL in first-seen order. A malformed page yields
	// zero candidates, never an error.
	Candidates(page []byte) []model.Candidate

	// Match reports whether url is one of this directory's profile URLs.
	Match(url string) bool

	// DisplayName extracts the primary human-readable name from a profile
	// page, or "" when it cannot be located.
	DisplayName(page []byte) string
}

// minNameLen guards against picking up stray one- or two-character headings.
const minNameLen = 3

func parsePage(page []byte) *html.Node {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil
	}
	return doc
}

// eachAnchor walks the tree and calls fn for every <a href=...>.
func eachAnchor(n *html.Node, fn func(href, text string)) {
	if n == nil {
		return
	}
	if n.Type == html.ElementNode && n.Data == "a" {
		for _, attr := range n.Attr {
			if attr.Key == "href" {
				fn(attr.Val, nodeText(n))
				break
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		eachAnchor(c, fn)
	}
}

// nodeText returns the collapsed text content of a node.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return normalize.Collapse(b.String())
}

// findElement returns the first element with the given tag, depth-first.
func findElement(n *html.Node, tag string) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// profileName extracts a profile page's display name: the first <h1>, then
// the <title> with the site suffix stripped.
func profileName(page []byte, titleSuffix *regexp.Regexp) string {
	doc := parsePage(page)
	if doc == nil {
		return ""
	}

	if h1 := findElement(doc, "h1"); h1 != nil {
		if name := nodeText(h1); len(name) >= minNameLen {
			return name
		}
	}

	if title := findElement(doc, "title"); title != nil {
		name := nodeText(title)
		if titleSuffix != nil {
			name = normalize.Collapse(titleSuffix.ReplaceAllString(name, ""))
		}
		if len(name) >= minNameLen {
			return name
		}
	}

	return ""
}

// collectCandidates deduplicates extracted candidates by URL, first-seen
// order. A duplicate with a name backfills an earlier nameless hit, which
// happens when an avatar link precedes the text link for the same profile.
type collectCandidates struct {
	order []string
	byURL map[string]*model.Candidate
}

func newCollector() *collectCandidates {
	return &collectCandidates{byURL: make(map[string]*model.Candidate)}
}

func (c *collectCandidates) add(url, name string) {
	if existing, ok := c.byURL[url]; ok {
		if existing.Name == "" && name != "" {
			existing.Name = name
		}
		return
	}
	c.order = append(c.order, url)
	c.byURL[url] = &model.Candidate{URL: url, Name: name}
}

func (c *collectCandidates) list() []model.Candidate {
	if len(c.order) == 0 {
		return nil
	}
	out := make([]model.Candidate, 0, len(c.order))
	for _, url := range c.order {
		out = append(out, *c.byURL[url])
	}
	return out
}
