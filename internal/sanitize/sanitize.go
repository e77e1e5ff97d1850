// Package sanitize cleans user-submitted text before it is stored.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict = bluemonday.StrictPolicy()
	ugc    = bluemonday.UGCPolicy()
)

// Text strips every tag and returns plain text (titles, names, locations).
// Entities escaped by the policy are decoded again since the result is never rendered as HTML.
func Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// Content keeps the formatting a member may use in a post or event description
// and drops scripts, event handlers and javascript: links.
func Content(s string) string {
	return strings.TrimSpace(ugc.Sanitize(s))
}
