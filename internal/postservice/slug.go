package postservice

import (
	"regexp"
	"strings"
)

var (
	slugInvalidRX  = regexp.MustCompile(`[^a-z0-9]+`)
	slugTrimRX     = regexp.MustCompile(`^-+|-+$`)
	wordSplitRX    = regexp.MustCompile(`\S+`)
	wordsPerMinute = 200
)

// Slugify lowercases the title and collapses every non-alphanumeric run into a
// single hyphen.
func Slugify(title string) string {
	slug := strings.ToLower(title)
	slug = slugInvalidRX.ReplaceAllString(slug, "-")
	slug = slugTrimRX.ReplaceAllString(slug, "")
	if slug == "" {
		slug = "post"
	}
	return slug
}

// ReadTime estimates reading minutes at 200 words per minute, never below one.
func ReadTime(content string) int {
	words := len(wordSplitRX.FindAllString(content, -1))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// Excerpt falls back to the leading content when no explicit excerpt is given.
func Excerpt(explicit, content string) string {
	if explicit != "" {
		return explicit
	}

	const max = 200
	if len(content) <= max {
		return content
	}

	cut := content[:max]
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}
