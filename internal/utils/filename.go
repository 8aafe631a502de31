// Package utils holds small helpers shared by the exporters.
package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxFilenameBytes = 200

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	// Whitespace characters to normalize
	whitespaceChars = regexp.MustCompile(`[\r\n\t]`)
	// Multiple spaces to collapse
	multipleSpaces = regexp.MustCompile(`\s+`)
)

// SanitizeFilename makes a title safe to use as a markdown file name in a
// notes vault: path and wiki-link characters are removed or replaced.
func SanitizeFilename(filename string) string {
	filename = invalidFilenameChars.ReplaceAllString(filename, "")
	filename = whitespaceChars.ReplaceAllString(filename, " ")
	filename = multipleSpaces.ReplaceAllString(filename, " ")
	filename = strings.TrimSpace(filename)

	filename = strings.ReplaceAll(filename, "#", "")
	filename = strings.ReplaceAll(filename, "[", "(")
	filename = strings.ReplaceAll(filename, "]", ")")
	filename = strings.TrimLeft(filename, ".")

	filename = strings.TrimSpace(truncateUTF8(filename, maxFilenameBytes))

	if filename == "" {
		filename = "Untitled"
	}

	return filename
}

// BookFilename names a book's note "Title - First Author".
func BookFilename(title string, authors []string) string {
	name := strings.TrimSpace(title)
	if name == "" {
		name = "Untitled"
	}
	if len(authors) > 0 && strings.TrimSpace(authors[0]) != "" {
		name += " - " + strings.TrimSpace(authors[0])
	}
	return SanitizeFilename(name)
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
