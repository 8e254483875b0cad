package tgui

import "unicode/utf8"

// HeadRunes returns the first n runes of s without any marker.
func HeadRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	cut, ok := runeCut(s, n)
	if !ok {
		return s
	}
	return s[:cut]
}

// runeCut returns the byte index after the n-th rune and whether s has more
// than n runes.
func runeCut(s string, n int) (int, bool) {
	count := 0
	for i, r := range s {
		count++
		if count == n {
			end := i + utf8.RuneLen(r)
			return end, end < len(s)
		}
	}
	return len(s), false
}
