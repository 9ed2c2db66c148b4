// Package domclean strips a page snapshot down to the markup that matters when
// diagnosing a failed locator: structure, text, ids, classes and test hooks.
package domclean

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

type Config struct {
	TagsToRemove  []string
	AttrsToRemove []string
	// DropPrefixes removes every attribute whose name starts with one of
	// these, except the names listed in KeepAttrs.
	DropPrefixes  []string
	KeepAttrs     []string
	MaxOutputSize int
}

func DefaultConfig() Config {
	return Config{
		TagsToRemove: []string{
			"script", "style", "noscript", "svg", "iframe", "link", "meta",
		},
		AttrsToRemove: []string{
			"style", "srcset", "sizes", "loading", "decoding", "fetchpriority", "tabindex",
		},
		DropPrefixes:  []string{"data-", "aria-", "on"},
		KeepAttrs:     []string{"data-test", "aria-label"},
		MaxOutputSize: 200_000,
	}
}

const truncatedMarker = "\n<!-- snapshot truncated -->"

// Clean parses rawHTML, removes noise and renders the document back. Pages
// without an <html> root are rendered from whatever the parser produced.
func Clean(rawHTML string, cfg Config) (string, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("parse snapshot: %w", err)
	}

	root := findElement(doc, "html")
	if root == nil {
		root = doc
	}
	cleanNode(root, cfg)

	var sb strings.Builder
	if err := html.Render(&sb, root); err != nil {
		return "", fmt.Errorf("render snapshot: %w", err)
	}
	return truncate(sb.String(), cfg.MaxOutputSize), nil
}

func findElement(n *html.Node, tag string) *html.Node {
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

func cleanNode(n *html.Node, cfg Config) {
	if n.Type == html.CommentNode {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		return
	}
	if n.Type == html.ElementNode {
		if isOneOf(n.Data, cfg.TagsToRemove...) {
			if n.Parent != nil {
				n.Parent.RemoveChild(n)
			}
			return
		}
		n.Attr = filterAttributes(n.Attr, cfg)
	}

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		cleanNode(c, cfg)
		c = next
	}
}

func filterAttributes(attrs []html.Attribute, cfg Config) []html.Attribute {
	kept := attrs[:0]
	for _, attr := range attrs {
		if !shouldRemoveAttr(attr.Key, cfg) {
			kept = append(kept, attr)
		}
	}
	return kept
}

func shouldRemoveAttr(key string, cfg Config) bool {
	if isOneOf(key, cfg.KeepAttrs...) {
		return false
	}
	if isOneOf(key, cfg.AttrsToRemove...) {
		return true
	}
	for _, prefix := range cfg.DropPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

func truncate(s string, maxSize int) string {
	if maxSize <= 0 || len(s) <= maxSize {
		return s
	}
	return s[:maxSize] + truncatedMarker
}

func isOneOf(s string, candidates ...string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}
