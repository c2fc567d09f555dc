// internal/oracle/markdown.go
package oracle

import (
	"regexp"
	"strings"
)

var (
	// An unterminated fence runs to the end of the answer. The language tag
	// only counts when a line break follows it.
	codeBlockPattern  = regexp.MustCompile("(?s)```(?:[A-Za-z0-9_+-]*[ \\t]*\\r?\\n)?(.*?)(?:```|\\z)")
	inlineCodePattern = regexp.MustCompile("^`([^`]+)`$")
	imagePattern      = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkPattern       = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	headingPattern    = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t].*$`)
	quotePattern      = regexp.MustCompile(`(?m)^[ \t]*>[ \t]?`)
	newlinePattern    = regexp.MustCompile(`\s*\n\s*`)
)

// CleanSQL turns a markdown-formatted LLM answer into a single-line SQL
// statement. A fenced code block wins over everything around it and its body
// is kept verbatim apart from line breaks. Without a fence only markdown
// structure is removed: headings, quote markers, images, link targets and a
// wrapping inline code span.
func CleanSQL(markdown string) string {
	var s string
	if m := codeBlockPattern.FindStringSubmatch(markdown); m != nil {
		s = m[1]
	} else {
		s = strings.TrimSpace(markdown)
		s = inlineCodePattern.ReplaceAllString(s, "$1")
		s = imagePattern.ReplaceAllString(s, "")
		s = linkPattern.ReplaceAllString(s, "$1")
		s = headingPattern.ReplaceAllString(s, "")
		s = quotePattern.ReplaceAllString(s, "")
	}
	s = newlinePattern.ReplaceAllString(strings.TrimSpace(s), " ")
	return strings.TrimSpace(s)
}

var fencePattern = regexp.MustCompile("(?s)^\\s*```[a-zA-Z]*\\s*\\n?(.*?)\\n?\\s*```\\s*$")

// StripFences removes a surrounding markdown code fence, if any.
func StripFences(text string) string {
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}
