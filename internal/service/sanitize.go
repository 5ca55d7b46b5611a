package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var textPolicy = bluemonday.StrictPolicy()

// plainText strips markup from s. Entities escaped by the policy are turned back into
// characters so "a < b" survives unchanged.
func plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

// indexText flattens s into one line of plain text for the search index.
func indexText(s string) string {
	// Block tags become spaces so words on both sides are not merged.
	for _, tag := range []string{"</p>", "<br>", "<br/>", "</div>"} {
		s = strings.ReplaceAll(s, tag, " ")
	}
	return strings.Join(strings.Fields(plainText(s)), " ")
}
