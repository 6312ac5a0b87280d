// Package normalize turns raw scraped fragments into clean, hashable documents.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/hyperjump/shirabe/internal/models"
)

// Pre-compiled expressions for markup stripping.
var (
	scriptTag     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag   = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag       = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	svgTag        = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	htmlComments  = regexp.MustCompile(`(?s)<!--.*?-->`)
	headingClose  = regexp.MustCompile(`(?i)</h[1-6]>`)
	blockClose    = regexp.MustCompile(`(?i)</(p|div|li|tr|blockquote|pre|table|section|article)>`)
	brTags        = regexp.MustCompile(`(?i)<(br|hr)\s*/?>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
	multiSpaces   = regexp.MustCompile(`[ \t]{2,}`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// Normalize strips markup and boilerplate from a raw fragment and returns an
// immutable Document with a content hash over the normalized text. Heading
// structure is preserved as plain text on its own lines. Returns
// models.ErrNoContent when no text survives; such fragments are dropped, not
// stored. Performs no I/O.
func Normalize(frag *models.Fragment) (*models.Document, error) {
	text := CleanText(frag.RawContent)
	if text == "" {
		return nil, fmt.Errorf("fragment %q: %w", frag.SourceID, models.ErrNoContent)
	}
	return &models.Document{
		SourceID:    frag.SourceID,
		Title:       strings.TrimSpace(frag.Title),
		URL:         frag.URL,
		Text:        text,
		ContentHash: HashText(text),
		CreatedAt:   time.Now(),
	}, nil
}

// CleanText strips HTML markup when present and normalizes whitespace.
// Plain-text input passes through the whitespace normalization only.
func CleanText(raw string) string {
	if strings.ContainsRune(raw, '<') {
		raw = StripHTML(raw)
	}
	return collapseWhitespace(raw)
}

// StripHTML converts HTML to plain text: scripts, styles, comments, and other
// non-content containers are removed, headings and block elements become line
// breaks, remaining tags are dropped, and entities are unescaped.
func StripHTML(s string) string {
	s = scriptTag.ReplaceAllString(s, "")
	s = styleTag.ReplaceAllString(s, "")
	s = noscriptTag.ReplaceAllString(s, "")
	s = headTag.ReplaceAllString(s, "")
	s = svgTag.ReplaceAllString(s, "")
	s = htmlComments.ReplaceAllString(s, "")
	// Headings get a blank line after them so they read as separators.
	s = headingClose.ReplaceAllString(s, "\n\n")
	s = blockClose.ReplaceAllString(s, "\n")
	s = brTags.ReplaceAllString(s, "\n")
	s = allTags.ReplaceAllString(s, "")
	return html.UnescapeString(s)
}

// collapseWhitespace normalizes line endings, collapses runs of spaces and
// tabs, and limits consecutive newlines to two (paragraph breaks survive).
func collapseWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = multiSpaces.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	s = strings.Join(lines, "\n")
	s = multiNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// HashText returns the hex SHA-256 of text, used as the document-level
// content hash for duplicate detection before chunking.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
