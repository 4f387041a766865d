package rules

import (
	"fmt"
	"strings"

	"namecheck/internal/words"
)

// digitIdioms are names where digits are part of a well-known word. Keys are
// lower case: the word (or two words) before the digits plus the digits.
var digitIdioms = map[string]struct{}{
	"aes128":  {},
	"aes256":  {},
	"base32":  {},
	"base64":  {},
	"crc32":   {},
	"float32": {},
	"float64": {},
	"http2":   {},
	"http3":   {},
	"int16":   {},
	"int32":   {},
	"int64":   {},
	"int128":  {},
	"ipv4":    {},
	"ipv6":    {},
	"md5":     {},
	"pkcs7":   {},
	"pkcs12":  {},
	"sha1":    {},
	"sha256":  {},
	"sha384":  {},
	"sha512":  {},
	"uint16":  {},
	"uint32":  {},
	"uint64":  {},
	"utf7":    {},
	"utf8":    {},
	"utf16":   {},
	"utf32":   {},
	"vector2": {},
	"vector3": {},
	"vector4": {},
	"win32":   {},
	"win64":   {},
	"x509":    {},
}

// digitFollowers may directly follow digits without making them embedded:
// ordinals ("2nd", "4th") and dimensions ("3D").
var digitFollowers = map[string]struct{}{
	"st": {}, "nd": {}, "rd": {}, "th": {}, "d": {},
}

var slangDigits = map[string]string{
	"2": "To",
	"4": "For",
}

type digitSite int

const (
	siteTrailing digitSite = iota
	siteAllowed
	siteSlang
	siteEmbedded
)

// classifyDigits assigns a site to every number token, keyed by token index.
func classifyDigits(tokens []words.Token) map[int]digitSite {
	sites := make(map[int]digitSite)
	for i, t := range tokens {
		if !t.IsNumber() {
			continue
		}
		sites[i] = digitSiteAt(tokens, i)
	}
	return sites
}

func digitSiteAt(tokens []words.Token, i int) digitSite {
	next := -1
	for j := i + 1; j < len(tokens); j++ {
		if tokens[j].IsWord() || tokens[j].IsNumber() {
			next = j
			break
		}
	}
	if next < 0 {
		return siteTrailing
	}
	if isDigitIdiom(tokens, i) {
		return siteAllowed
	}
	if next == i+1 {
		if _, ok := digitFollowers[strings.ToLower(tokens[next].Text)]; ok {
			return siteAllowed
		}
		if _, ok := slangDigits[tokens[i].Text]; ok && i > 0 && tokens[i-1].IsWord() && words.StartsUpper(tokens[next].Text) {
			return siteSlang
		}
	}
	return siteEmbedded
}

// isDigitIdiom checks the previous word, and the previous two words joined,
// against digitIdioms so that "UInt32" (U, Int, 32) is recognized.
func isDigitIdiom(tokens []words.Token, i int) bool {
	digits := tokens[i].Text
	if i >= 1 && tokens[i-1].IsWord() {
		prev := tokens[i-1].Text
		if _, ok := digitIdioms[strings.ToLower(prev+digits)]; ok {
			return true
		}
		if i >= 2 && tokens[i-2].IsWord() {
			if _, ok := digitIdioms[strings.ToLower(tokens[i-2].Text+prev+digits)]; ok {
				return true
			}
		}
	}
	return false
}

func hasDigitSite(in Input, want digitSite) bool {
	for _, site := range classifyDigits(in.Tokens) {
		if site == want {
			return true
		}
	}
	return false
}

func digitRules() []*Rule {
	return []*Rule{
		{
			ID:          "NC1070",
			Name:        "NoEmbeddedDigits",
			Family:      FamilyNumberSuffix,
			Description: "Digits should only appear at the end of a name",
			Exempt:      memberExempt,
			IsViolation: func(in Input) bool {
				return hasDigitSite(in, siteEmbedded)
			},
			Message: func(in Input) string {
				return fmt.Sprintf("'%s' has digits in the middle of the name", in.Symbol.Name)
			},
		},
		{
			ID:          "NC1071",
			Name:        "NoSlangDigits",
			Family:      FamilyNumberSuffix,
			Description: "Use 'To' and 'For' instead of '2' and '4'",
			Exempt:      memberExempt,
			IsViolation: func(in Input) bool {
				return hasDigitSite(in, siteSlang)
			},
			Rewrite: func(in Input) string {
				sites := classifyDigits(in.Tokens)
				var sb strings.Builder
				for i, t := range in.Tokens {
					if sites[i] == siteSlang && t.IsNumber() {
						sb.WriteString(slangDigits[t.Text])
						continue
					}
					sb.WriteString(t.Text)
				}
				return sb.String()
			},
			Message: func(in Input) string {
				return fmt.Sprintf("'%s' uses a digit as a word", in.Symbol.Name)
			},
		},
	}
}
