package commitment

import (
	"strings"
	"unicode/utf8"
)

const minSegmentLength = 10

// ExtractTitle picks the first sentence of at least ten characters and bounds
// it to TitleLimit runes.
func ExtractTitle(text string) string {
	segments := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		if utf8.RuneCountInString(segment) < minSegmentLength {
			continue
		}
		return Truncate(segment, TitleLimit)
	}
	return DefaultTitle
}

// Truncate bounds s to limit runes, ending with TruncationMarker when cut.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	keep := limit - utf8.RuneCountInString(TruncationMarker)
	if keep < 0 {
		keep = 0
	}
	return string(runes[:keep]) + TruncationMarker
}
