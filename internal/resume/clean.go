// Package resume prepares uploaded resume text for the interviewer prompts.
package resume

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrUnsupportedFormat is returned for uploads that are not plain text.
var ErrUnsupportedFormat = errors.New("unsupported resume format: upload plain text")

var (
	bulletGlyphs     = regexp.MustCompile(`[\x{2022}\x{25CF}\x{25A0}\x{2023}\x{2043}]+`)
	disallowedRunes  = regexp.MustCompile(`[^\p{L}\p{N}_\s.,;:\-()/]`)
	horizontalSpaces = regexp.MustCompile(`[ \t\f\v]{2,}`)
	blankLines       = regexp.MustCompile(`\n[ \t]*(\n[ \t]*)+`)
)

// Clean drops bullet glyphs and decorative characters and collapses repeated
// whitespace. Paragraph breaks are kept as a single blank line.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = bulletGlyphs.ReplaceAllString(text, "")
	text = disallowedRunes.ReplaceAllString(text, "")
	text = horizontalSpaces.ReplaceAllString(text, " ")
	text = blankLines.ReplaceAllString(text, "\n\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// FromUpload validates an uploaded resume file and returns its cleaned text.
func FromUpload(filename string, data []byte) (string, error) {
	if bytes.HasPrefix(data, []byte("%PDF")) || strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return "", ErrUnsupportedFormat
	}
	if !utf8.Valid(data) {
		return "", ErrUnsupportedFormat
	}

	return Clean(string(data)), nil
}
