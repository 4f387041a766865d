// Package words splits identifiers into word tokens and inflects English nouns.
//
// Both the tokenizer and the pluralizer are pure: they hold no mutable state
// after construction and are safe for concurrent use.
package words

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenKind classifies a token produced by Tokenize.
type TokenKind int

const (
	// TokenWord is a run of letters with uniform casing (or a capitalized word).
	TokenWord TokenKind = iota
	// TokenNumber is a run of decimal digits.
	TokenNumber
	// TokenPrefix is a leading field marker such as "m_", "s_" or "_".
	TokenPrefix
	// TokenSeparator is a run of underscores or other non-alphanumeric runes.
	TokenSeparator
)

// String returns the name of the token kind.
func (k TokenKind) String() string {
	switch k {
	case TokenWord:
		return "word"
	case TokenNumber:
		return "number"
	case TokenPrefix:
		return "prefix"
	case TokenSeparator:
		return "separator"
	default:
		return "unknown"
	}
}

// Token is a maximal fragment of an identifier.
type Token struct {
	Text string    `json:"text"`
	Kind TokenKind `json:"kind"`
}

// IsWord reports whether the token is a letter run.
func (t Token) IsWord() bool { return t.Kind == TokenWord }

// IsNumber reports whether the token is a digit run.
func (t Token) IsNumber() bool { return t.Kind == TokenNumber }

// prefixMarkers are checked in order; the two-character markers win over "_".
var prefixMarkers = []string{"m_", "s_", "_"}

type runeClass int

const (
	classUpper runeClass = iota
	classLower
	classDigit
	classSeparator
)

func classOf(r rune) runeClass {
	switch {
	case unicode.IsUpper(r):
		return classUpper
	case unicode.IsDigit(r):
		return classDigit
	case unicode.IsLetter(r):
		return classLower
	default:
		return classSeparator
	}
}

// Tokenize splits name into word, number, prefix and separator tokens.
// Concatenating the Text of the returned tokens always yields name.
func Tokenize(name string) []Token {
	if name == "" {
		return nil
	}

	var tokens []Token
	rest := name
	for _, marker := range prefixMarkers {
		if strings.HasPrefix(rest, marker) && len(rest) >= len(marker) {
			tokens = append(tokens, Token{Text: marker, Kind: TokenPrefix})
			rest = rest[len(marker):]
			break
		}
	}

	// Token text is sliced from rest by byte offset so invalid UTF-8 survives.
	var (
		runes   []rune
		offsets []int
	)
	for off := 0; off < len(rest); {
		r, size := utf8.DecodeRuneInString(rest[off:])
		runes = append(runes, r)
		offsets = append(offsets, off)
		off += size
	}
	offsets = append(offsets, len(rest))

	start := 0
	for i := 1; i <= len(runes); i++ {
		if i < len(runes) && !isBoundary(runes, i) {
			continue
		}
		text := rest[offsets[start]:offsets[i]]
		tokens = append(tokens, Token{Text: text, Kind: kindOf(runes[start])})
		start = i
	}

	return tokens
}

// isBoundary reports whether a new token starts at runes[i].
func isBoundary(runes []rune, i int) bool {
	prev := classOf(runes[i-1])
	cur := classOf(runes[i])

	switch {
	case prev == classSeparator || cur == classSeparator:
		return prev != cur
	case prev == classDigit || cur == classDigit:
		return prev != cur
	case prev == classLower && cur == classUpper:
		return true
	case prev == classUpper && cur == classUpper:
		// "XMLParser": the last capital of an acronym run starts the next word,
		// except for a plural "s" as in "IDs".
		if i+1 >= len(runes) || classOf(runes[i+1]) != classLower {
			return false
		}
		return !isPluralS(runes, i+1)
	}
	return false
}

// isPluralS reports whether runes[i] is a lone lowercase "s" closing an acronym.
func isPluralS(runes []rune, i int) bool {
	if runes[i] != 's' {
		return false
	}
	return i+1 >= len(runes) || classOf(runes[i+1]) != classLower
}

func kindOf(r rune) TokenKind {
	switch classOf(r) {
	case classDigit:
		return TokenNumber
	case classSeparator:
		return TokenSeparator
	default:
		return TokenWord
	}
}

// Join concatenates token texts.
func Join(tokens []Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(t.Text)
	}
	return sb.String()
}

// Words returns the texts of all word tokens in order.
func Words(tokens []Token) []string {
	var out []string
	for _, t := range tokens {
		if t.IsWord() {
			out = append(out, t.Text)
		}
	}
	return out
}

// LastWordIndex returns the index of the last word token, or -1.
func LastWordIndex(tokens []Token) int {
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].IsWord() {
			return i
		}
	}
	return -1
}

// FirstWordIndex returns the index of the first word token, or -1.
func FirstWordIndex(tokens []Token) int {
	for i, t := range tokens {
		if t.IsWord() {
			return i
		}
	}
	return -1
}

// SplitPrefix separates a leading field marker from the rest of name.
func SplitPrefix(name string) (prefix, rest string) {
	for _, marker := range prefixMarkers {
		if strings.HasPrefix(name, marker) {
			return marker, name[len(marker):]
		}
	}
	return "", name
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Decapitalize lower-cases the first rune of s.
func Decapitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// StartsUpper reports whether s begins with an upper-case rune.
func StartsUpper(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	return size > 0 && unicode.IsUpper(r)
}

// IsIdentifier reports whether s is a syntactically valid identifier:
// a letter or underscore followed by letters, digits or underscores.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
