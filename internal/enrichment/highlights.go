package enrichment

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	DefaultHighlights = 3
	maxSentences      = 60
)

var highlightPattern = regexp.MustCompile(`(?i)\b(invest|fund|raised|\$|AI|ML)\b`)

// RecentHighlights picks up to max sentences that look like investment news.
// Only the first sentences of text are considered.
func RecentHighlights(text string, max int) []string {
	if text == "" {
		return []string{}
	}
	if max <= 0 {
		max = DefaultHighlights
	}

	sentences := splitSentences(text)
	if len(sentences) > maxSentences {
		sentences = sentences[:maxSentences]
	}

	hits := make([]string, 0, max)
	for _, s := range sentences {
		if !highlightPattern.MatchString(s) {
			continue
		}
		hits = append(hits, strings.TrimSpace(s))
		if len(hits) == max {
			break
		}
	}
	return hits
}

// splitSentences cuts text at whitespace that directly follows '.', '!' or '?'.
func splitSentences(text string) []string {
	var (
		out   []string
		start int
	)
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if !unicode.IsSpace(runes[i]) || i == 0 || !isTerminator(runes[i-1]) {
			continue
		}
		end := i
		for i < len(runes) && unicode.IsSpace(runes[i]) {
			i++
		}
		out = append(out, string(runes[start:end]))
		start = i
		i--
	}
	return append(out, string(runes[start:]))
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
