package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

var htmlTagPattern = regexp.MustCompile(`<[a-zA-Z][^>]*>`)

// NormalizeContent trims the input and converts it to Markdown when it
// contains HTML markup, so pasted web content reaches the model as text.
// Plain text is returned trimmed and otherwise unchanged.
func NormalizeContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if !htmlTagPattern.MatchString(trimmed) {
		return trimmed, nil
	}

	markdown, err := htmltomarkdown.ConvertString(trimmed)
	if err != nil {
		return "", fmt.Errorf("convert html content: %w", err)
	}
	return strings.TrimSpace(markdown), nil
}
