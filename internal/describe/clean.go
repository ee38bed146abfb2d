package describe

import (
	"regexp"
	"strings"
)

var (
	headingRe  = regexp.MustCompile(`(?m)^\s*#{1,6}\s+`)
	bulletRe   = regexp.MustCompile(`(?m)^\s*(?:[-*+•]|\d+[.)])\s+`)
	emphasisRe = regexp.MustCompile("\\*\\*|__|\\*|`")
	spacesRe   = regexp.MustCompile(`[ \t]{2,}`)
)

// Clean strips markup and emoji from generated text, drops blank lines and
// keeps at most MaxLines lines.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = headingRe.ReplaceAllString(text, "")
	text = bulletRe.ReplaceAllString(text, "")
	text = emphasisRe.ReplaceAllString(text, "")
	text = stripEmoji(text)

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(spacesRe.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == MaxLines {
			break
		}
	}
	return strings.Join(lines, "\n")
}

func stripEmoji(s string) string {
	return strings.Map(func(r rune) rune {
		if isEmoji(r) {
			return -1
		}
		return r
	}, s)
}

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF: // pictographs, emoticons, transport, flags
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols, dingbats
		return true
	case r >= 0x2B00 && r <= 0x2BFF: // arrows and stars used as emoji
		return true
	case r == 0x200D, r == 0xFE0F, r == 0x20E3: // joiner, presentation selector, keycap
		return true
	}
	return false
}
