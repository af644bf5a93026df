package sync

import (
	"html"
	"regexp"
	"strings"
)

// Pre-compiled expressions for HTML stripping.
var (
	scriptTags  = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTags   = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	htmlComment = regexp.MustCompile(`(?s)<!--.*?-->`)
	anyTag      = regexp.MustCompile(`<[^>]+>`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// StripHTMLToText renders an HTML fragment as plain text: script and style
// blocks and comments are dropped, remaining tags are replaced with spaces,
// entities are decoded and runs of whitespace collapse to a single space.
// Empty input yields an empty string.
func StripHTMLToText(fragment string) string {
	if fragment == "" {
		return ""
	}
	text := scriptTags.ReplaceAllString(fragment, " ")
	text = styleTags.ReplaceAllString(text, " ")
	text = htmlComment.ReplaceAllString(text, " ")
	text = anyTag.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)
	text = whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
