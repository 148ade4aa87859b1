package pagestore

import (
	"regexp"
	"strings"
)

var (
	nbspPattern  = regexp.MustCompile(`&nbsp;|&#160;|&#[xX][aA]0;|\x{00A0}`)
	breakPattern = regexp.MustCompile(`(?i)<br\s*/?>`)
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
)

// IsEmptyContent reports whether markup has no visible text once non-breaking
// spaces, line breaks and tags are removed
func IsEmptyContent(markup string) bool {
	s := nbspPattern.ReplaceAllString(markup, "")
	s = breakPattern.ReplaceAllString(s, "")
	s = tagPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s) == ""
}

// Trim drops trailing empty pages, keeping at least the first, and renumbers
// the result from 1. The input slice is not modified.
func Trim(pages []Page) []Page {
	if len(pages) == 0 {
		return []Page{emptyPage()}
	}

	last := len(pages) - 1
	for last > 0 && IsEmptyContent(pages[last].Content) {
		last--
	}

	out := make([]Page, last+1)
	copy(out, pages[:last+1])
	renumber(out)
	return out
}
