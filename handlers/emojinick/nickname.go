package emojinick

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxNickLength is the platform limit for nicknames, in runes.
const MaxNickLength = 32

var emojiPattern = regexp.MustCompile(`^[\x{1F600}-\x{1F64F}\x{1F300}-\x{1F5FF}\x{1F680}-\x{1F6FF}\x{1F1E0}-\x{1F1FF}\x{2702}-\x{27B0}\x{24C2}-\x{1F251}]$`)

var medals = map[string]bool{"🥇": true, "🥈": true, "🥉": true}

// IsEmoji reports whether s is exactly one supported emoji.
func IsEmoji(s string) bool {
	return emojiPattern.MatchString(s)
}

// Parts is a nickname split into its plain words, custom emoji and medal.
type Parts struct {
	Base  string
	Emoji string
	Medal string
}

// Split separates a nickname. The last emoji and medal found win.
func Split(name string) Parts {
	var p Parts
	var base []string
	for _, word := range strings.Fields(name) {
		switch {
		case medals[word]:
			p.Medal = word
		case IsEmoji(word):
			p.Emoji = word
		default:
			base = append(base, word)
		}
	}
	p.Base = strings.Join(base, " ")
	return p
}

// String rebuilds the nickname as "base emoji medal", cut to MaxNickLength.
func (p Parts) String() string {
	parts := []string{p.Base}
	if p.Emoji != "" {
		parts = append(parts, p.Emoji)
	}
	if p.Medal != "" {
		parts = append(parts, p.Medal)
	}
	return truncate(strings.TrimSpace(strings.Join(parts, " ")), MaxNickLength)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
