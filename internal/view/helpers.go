package view

import (
	htmltemplate "html/template"
	"strings"

	"github.com/dustin/go-humanize"
)

const jpegDataURIPrefix = "data:image/jpeg;base64,"

// truncateFunc shortens text to at most length characters, counted in runes
func truncateFunc(length int, text string) string {
	if length < 0 {
		length = 0
	}
	runes := []rune(text)
	if len(runes) <= length {
		return text
	}

	if length <= 3 {
		return string(runes[:length])
	}

	return string(runes[:length-3]) + "..."
}

// indentFunc indents each line of text by the specified number of spaces
func indentFunc(spaces int, text string) string {
	if spaces <= 0 {
		return text
	}

	indent := strings.Repeat(" ", spaces)
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		if strings.TrimSpace(line) != "" { // Don't indent empty lines
			lines[i] = indent + line
		}
	}

	return strings.Join(lines, "\n")
}

// humanBytesFunc formats a byte count for display
func humanBytesFunc(n int) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// previewURLFunc marks a generated preview as a trusted image URL.
// Anything that is not a JPEG data URI renders as an empty URL.
func previewURLFunc(preview string) htmltemplate.URL {
	if !strings.HasPrefix(preview, jpegDataURIPrefix) {
		return ""
	}
	return htmltemplate.URL(preview)
}
