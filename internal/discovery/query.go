package discovery

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	fundPattern    = regexp.MustCompile(`([A-Z][A-Za-z&'\s]+)\s+(Capital|Ventures|Partners|VC)`)
	snippetDivider = regexp.MustCompile(`[•\-–—|,;]`)
)

// QueryStrings builds the web search queries for the given signal. No
// sectors and no stage means no queries.
func QueryStrings(sectors []string, stage, geo string) []string {
	nonEmpty := make([]string, 0, len(sectors))
	for _, s := range sectors {
		if s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	stage = strings.TrimSpace(stage)

	sectorPhrase := strings.Join(nonEmpty, " ")
	stagePhrase := strings.ReplaceAll(stage, "-", " ")
	geoPart := ""
	if geo != "" {
		geoPart = " " + geo
	}

	switch {
	case sectorPhrase != "" && stagePhrase != "":
		return []string{
			sectorPhrase + " " + stagePhrase + " venture capital" + geoPart,
			"top " + sectorPhrase + " " + stagePhrase + " investors" + geoPart,
		}
	case sectorPhrase != "":
		return []string{
			"top " + sectorPhrase + " investors" + geoPart,
			sectorPhrase + " venture capital firms" + geoPart,
		}
	case stagePhrase != "":
		return []string{
			stagePhrase + " venture capital firms" + geoPart,
			"top " + stagePhrase + " investors" + geoPart,
		}
	default:
		return nil
	}
}

// ParseFunds extracts candidate fund names from one search result. The title
// yields at most one name, each snippet fragment at most one more. When
// nothing matches, the second-level domain of link is used as a guess.
func ParseFunds(title, snippet, link string) []string {
	var funds []string

	if fund := matchFund(strings.TrimSpace(title)); fund != "" {
		funds = append(funds, fund)
	}

	if snippet = strings.TrimSpace(snippet); snippet != "" {
		for _, token := range snippetDivider.Split(snippet, -1) {
			if fund := matchFund(strings.TrimSpace(token)); fund != "" {
				funds = append(funds, fund)
			}
		}
	}

	if len(funds) == 0 && link != "" {
		if guess := domainGuess(link); guess != "" {
			funds = append(funds, guess)
		}
	}

	return funds
}

func matchFund(text string) string {
	m := fundPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1]) + " " + m[2]
}

func domainGuess(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	parts := strings.Split(u.Host, ".")
	if len(parts) < 2 {
		return ""
	}
	guess := parts[len(parts)-2]
	if len(guess) <= 2 || !isAlpha(guess) {
		return ""
	}
	return strings.ToUpper(guess[:1]) + strings.ToLower(guess[1:])
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return s != ""
}
