package postservice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	testCases := []struct {
		name  string
		title string
		want  string
	}{
		{"simple", "Hello World", "hello-world"},
		{"punctuation", "Go 1.22: What's New?", "go-1-22-what-s-new"},
		{"leading and trailing noise", "  --Hello--  ", "hello"},
		{"unicode stripped", "Café au lait", "caf-au-lait"},
		{"empty", "", "post"},
		{"only symbols", "!!!", "post"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Slugify(tc.title))
		})
	}
}

func TestReadTime(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		want    int
	}{
		{"empty", "", 1},
		{"short", "a few words only", 1},
		{"exactly two hundred", strings.Repeat("word ", 200), 1},
		{"two hundred and one", strings.Repeat("word ", 201), 2},
		{"long", strings.Repeat("word ", 1000), 5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ReadTime(tc.content))
		})
	}
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "hand written", Excerpt("hand written", "ignored content"))

	short := "A short post."
	assert.Equal(t, short, Excerpt("", short))

	long := strings.Repeat("lorem ipsum ", 50)
	got := Excerpt("", long)
	assert.LessOrEqual(t, len(got), 203)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.False(t, strings.HasSuffix(strings.TrimSuffix(got, "..."), " "))
}
