package util

// TruncateString shortens s to at most maxRunes runes, appending "..." when
// anything was cut. Counts runes, not bytes, so multibyte text is never split
// mid-character.
func TruncateString(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}
