package master

import (
	"regexp"
	"strings"
)

var emoticonRE = regexp.MustCompile(`\s*(\[.*?\]|\s)\s*`)

// StripColors removes Daemon engine color codes from a string. A caret
// followed by any character is a short code; `^#` is followed by six hex
// digits.
func StripColors(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '^' && i+1 < len(runes) {
			if runes[i+1] == '#' {
				i += 7 // caret, hash, rrggbb
			} else {
				i++
			}
			continue
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}

// StripEmoticons removes emoticon tags like [grenade] and normalizes
// whitespace.
func StripEmoticons(s string) string {
	return strings.TrimSpace(emoticonRE.ReplaceAllString(s, " "))
}

// CleanName applies both strip passes.
func CleanName(s string) string {
	return StripEmoticons(StripColors(s))
}

// Truncate limits a string to n runes, marking cut-off with an ellipsis.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
