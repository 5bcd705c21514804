package corpus

import (
	"regexp"
	"strings"
)

var extraWhiteSpace = regexp.MustCompile("[[:space:]]+")

// SanitizeText normalizes whitespace in a document:
//   - `\r` is dropped and runs of newlines collapse to one
//   - a literal `\n` escape becomes a newline
//   - ` :` becomes `:`
//   - tabs and runs of spaces become one space, and lines are trimmed
func SanitizeText(text string) string {
	runes := make([]rune, 0, len(text))
	for _, r := range text {
		last := rune(0)
		if len(runes) > 0 {
			last = runes[len(runes)-1]
		}
		switch {
		case r == '\r':
		case r == '\n' && last == '\n':
		case r == 'n' && last == '\\':
			runes[len(runes)-1] = '\n'
		case r == ':' && last == ' ':
			runes[len(runes)-1] = ':'
		case r == '\t':
			runes = append(runes, ' ')
		default:
			runes = append(runes, r)
		}
	}
	lines := strings.Split(string(runes), "\n")
	for lineIdx := range lines {
		line := extraWhiteSpace.ReplaceAllString(lines[lineIdx], " ")
		lines[lineIdx] = strings.TrimSpace(line)
	}
	return strings.Join(lines, "\n")
}

// Sanitizer rewrites the text of a record before it is tokenized.
type Sanitizer func(text string) string

// CreateTextSanitizer returns the sanitizer for the given options,
// or nil when neither is set.
func CreateTextSanitizer(whitespace bool, mojibake bool) Sanitizer {
	switch {
	case whitespace && mojibake:
		return func(text string) string {
			return SanitizeText(RepairMojibake(text))
		}
	case whitespace:
		return SanitizeText
	case mojibake:
		return RepairMojibake
	}
	return nil
}
