package parser

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// accept lowercase too
	urlPattern   = regexp.MustCompile(`https?://\S+`)
	tokenPattern = regexp.MustCompile(`\b[a-zA-Z0-9]{5,30}\b`)
)

// platform words and common command words never qualify as codes
var stopWords = map[string]struct{}{
	"canva":    {},
	"adobe":    {},
	"linkedin": {},
	"amazon":   {},
	"netflix":  {},
	"spotify":  {},
	"start":    {},
	"save":     {},
	"claim":    {},
}

// Parsed is the structured result extracted from free text.
type Parsed struct {
	Code     string
	Platform string
	Details  string
}

// Parse extracts a coupon code, platform guess and details from arbitrary
// text. The second return value is false when nothing usable was found.
func Parse(text string) (Parsed, bool) {
	t := strings.TrimSpace(text)
	if t == "" {
		return Parsed{}, false
	}

	platform := guessPlatform(t)

	// a URL beats any token candidate
	if url := urlPattern.FindString(t); url != "" {
		return Parsed{Code: url, Platform: platform, Details: t}, true
	}

	var best string
	bestScore := -1
	for _, token := range tokenPattern.FindAllString(t, -1) {
		if _, stopped := stopWords[strings.ToLower(token)]; stopped {
			continue
		}
		if score := scoreToken(token); score > bestScore {
			bestScore = score
			best = token
		}
	}

	if best == "" {
		return Parsed{}, false
	}

	return Parsed{Code: strings.ToUpper(best), Platform: platform, Details: t}, true
}

// scoreToken prefers tokens that look like real coupons: digits present,
// mixed letters and digits, moderately long.
func scoreToken(token string) int {
	var hasDigit, hasLetter bool
	for _, r := range token {
		if unicode.IsDigit(r) {
			hasDigit = true
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}

	score := 0
	if hasDigit {
		score += 50
	}
	if hasDigit && hasLetter {
		score += 30
	}
	if hasLetter && !hasDigit {
		score -= 30
	}
	if hasDigit && !hasLetter {
		score -= 10
	}
	if n := len(token); n < 20 {
		score += n
	} else {
		score += 20
	}
	return score
}

func guessPlatform(t string) string {
	s := strings.ToLower(t)
	switch {
	case strings.Contains(s, "linkedin"):
		return "LinkedIn"
	case strings.Contains(s, "canva"):
		return "Canva"
	case strings.Contains(s, "adobe"):
		return "Adobe"
	case strings.Contains(s, "netflix"):
		return "Netflix"
	case strings.Contains(s, "spotify"):
		return "Spotify"
	case strings.Contains(s, "amazon"):
		return "Amazon"
	default:
		return "General"
	}
}
