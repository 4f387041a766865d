package testutil

import (
	"regexp"
	"strings"
)

// durationPattern matches the elapsed-time suffix of human reports.
var durationPattern = regexp.MustCompile(`\[\d+(?:\.\d+)?s\]`)

// Normalize makes report text stable across machines: the fixture root
// becomes <fixture>, separators become forward slashes, elapsed times become
// [Xs] and the text ends with exactly one newline.
func Normalize(text, fixtureRoot string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if fixtureRoot != "" {
		text = strings.ReplaceAll(text, fixtureRoot, "<fixture>")
		text = strings.ReplaceAll(text, strings.ReplaceAll(fixtureRoot, "\\", "/"), "<fixture>")
	}
	text = strings.ReplaceAll(text, "\\", "/")
	text = durationPattern.ReplaceAllString(text, "[Xs]")
	return strings.TrimRight(text, "\n") + "\n"
}
