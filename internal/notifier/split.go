package notifier

import (
	"strings"
	"unicode"
)

const telegramTextLimit = 4000

// splitTelegramText cuts s into chunks of at most limit runes, in order.
//
// A cut prefers the last newline at or before the limit, then the last
// space, as long as the chunk keeps at least a third of the window. The
// separator at the cut is dropped. In HTML mode a cut never
// lands inside a tag.
func splitTelegramText(s string, limit int, parseMode string) []string {
	if limit <= 0 {
		limit = telegramTextLimit
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return []string{s}
	}
	html := strings.EqualFold(parseMode, "HTML")

	out := make([]string, 0, (len(rs)+limit-1)/limit)
	start := 0
	for start < len(rs) {
		end := start + limit
		if end >= len(rs) {
			end = len(rs)
		} else {
			end = preferredCut(rs, start, end, limit/3)
			if html {
				end = outsideTag(rs, start, end, limit)
			}
		}

		chunk := strings.TrimRightFunc(string(rs[start:end]), unicode.IsSpace)
		if chunk != "" {
			out = append(out, chunk)
		}

		start = end
		for start < len(rs) && (rs[start] == '\n' || rs[start] == ' ') {
			start++
		}
	}
	return out
}

func preferredCut(rs []rune, start, end, minLen int) int {
	for _, sep := range []rune{'\n', ' '} {
		for i := end; i > start; i-- {
			if rs[i] != sep {
				continue
			}
			if i-start >= minLen {
				return i
			}
			break
		}
	}
	return end
}

// outsideTag moves end back to the start of a tag or entity left open in the
// window.
func outsideTag(rs []rune, start, end, limit int) int {
	lastOpen, lastClose := -1, -1
	lastAmp, lastSemi := -1, -1
	for i := start; i < end; i++ {
		switch rs[i] {
		case '<':
			lastOpen = i
		case '>':
			lastClose = i
		case '&':
			lastAmp = i
		case ';':
			lastSemi = i
		}
	}
	if lastOpen > lastClose && lastOpen > start {
		return lastOpen
	}
	if lastAmp > lastSemi && lastAmp > start && end-lastAmp <= 8 {
		return lastAmp
	}
	if end <= start {
		end = start + limit
		if end > len(rs) {
			end = len(rs)
		}
	}
	return end
}
