package words

import (
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
)

// irregularPlurals maps singular nouns to their plural form. Keys are lower case.
// Invariant nouns map to themselves.
var irregularPlurals = map[string]string{
	"access":   "Accesses",
	"alias":    "Aliases",
	"analysis": "Analyses",
	"appendix": "Appendices",
	"axis":     "Axes",
	"bias":     "Biases",
	"bus":      "Buses",
	"cache":    "Caches",
	"canvas":   "Canvases",
	"child":    "Children",
	"crisis":   "Crises",
	"gas":      "Gases",
	"half":     "Halves",
	"human":    "Humans",
	"index":    "Indices",
	"key":      "Keys",
	"leaf":     "Leaves",
	"lens":     "Lenses",
	"man":      "Men",
	"matrix":   "Matrices",
	"mouse":    "Mice",
	"person":   "People",
	"security": "Securities",
	"status":   "Statuses",
	"vertex":   "Vertices",
	"virus":    "Viruses",
	"woman":    "Women",
}

// invariantNouns have identical singular and plural forms.
var invariantNouns = []string{
	"Data",
	"Equipment",
	"Feedback",
	"Hardware",
	"Information",
	"Metadata",
	"Nested",
	"News",
	"Series",
	"Software",
	"Species",
}

// falsePlurals end in "s" without being plural nouns. Acronyms whose stem has
// no vowel (Tls, Https, Sms) are caught by isPluralShape itself.
var falsePlurals = map[string]struct{}{
	"always":  {},
	"atlas":   {},
	"aws":     {},
	"chaos":   {},
	"cors":    {},
	"does":    {},
	"has":     {},
	"ios":     {},
	"its":     {},
	"macos":   {},
	"perhaps": {},
	"sas":     {},
	"this":    {},
	"tvos":    {},
	"was":     {},
	"watchos": {},
	"yes":     {},
}

// Pluralizer inflects nouns using its irregular and invariant tables, falling
// back to the regular English rules of jinzhu/inflection. The library's global
// rule set is only read, never extended, so a Pluralizer is immutable once built.
type Pluralizer struct {
	// singular (lower) -> plural
	plurals map[string]string
	// plural (lower) -> singular
	singulars map[string]string
	// lower-case invariant nouns
	invariant map[string]struct{}
}

var defaultPluralizer = NewPluralizer(Dictionary{})

// Default returns the pluralizer built from the built-in tables only.
func Default() *Pluralizer {
	return defaultPluralizer
}

// Pluralize pluralizes word with the built-in tables.
func Pluralize(word string) string {
	return defaultPluralizer.Pluralize(word)
}

// Singularize singularizes word with the built-in tables.
func Singularize(word string) string {
	return defaultPluralizer.Singularize(word)
}

// IsPlural reports whether word already has a plural shape.
func IsPlural(word string) bool {
	return defaultPluralizer.IsPlural(word)
}

// NewPluralizer builds a pluralizer from the built-in tables merged with dict.
// Dictionary entries override built-in entries for the same singular.
func NewPluralizer(dict Dictionary) *Pluralizer {
	p := &Pluralizer{
		plurals:   make(map[string]string, len(irregularPlurals)+len(dict.Plurals)),
		singulars: make(map[string]string, len(irregularPlurals)+len(dict.Plurals)),
		invariant: make(map[string]struct{}, len(invariantNouns)+len(dict.Invariant)),
	}

	for singular, plural := range irregularPlurals {
		p.addIrregular(Capitalize(singular), plural)
	}
	for singular, plural := range dict.Plurals {
		p.addIrregular(singular, plural)
	}
	for _, noun := range invariantNouns {
		p.addInvariant(noun)
	}
	for _, noun := range dict.Invariant {
		p.addInvariant(noun)
	}

	return p
}

func (p *Pluralizer) addIrregular(singular, plural string) {
	if singular == "" || plural == "" {
		return
	}
	p.plurals[strings.ToLower(singular)] = Capitalize(plural)
	p.singulars[strings.ToLower(plural)] = Capitalize(singular)
}

func (p *Pluralizer) addInvariant(noun string) {
	if noun == "" {
		return
	}
	lower := strings.ToLower(noun)
	p.invariant[lower] = struct{}{}
	p.plurals[lower] = Capitalize(noun)
	p.singulars[lower] = Capitalize(noun)
}

// Pluralize returns the plural form of word. Already-plural input is returned
// unchanged, so Pluralize(Pluralize(w)) == Pluralize(w).
func (p *Pluralizer) Pluralize(word string) string {
	if word == "" {
		return ""
	}
	lower := strings.ToLower(word)

	if plural, ok := p.plurals[lower]; ok {
		return matchCase(word, plural)
	}
	if p.isPluralShape(lower) {
		return word
	}
	if isAcronymPair(word) {
		return word + "s"
	}

	if !strings.HasSuffix(lower, "s") {
		// Irregular plurals the library knows: Salesmen, Oxen, Media.
		if s := inflection.Singular(word); s != word && inflection.Plural(s) == word {
			return word
		}
	}

	plural := inflection.Plural(word)
	if plural == word && strings.HasSuffix(lower, "s") {
		// inflection leaves -us and -ss endings it has no rule for alone.
		plural = word + "es"
	}
	return matchCase(word, plural)
}

// Singularize returns the singular form of word. Words that are not plural are
// returned unchanged.
func (p *Pluralizer) Singularize(word string) string {
	if word == "" {
		return ""
	}
	lower := strings.ToLower(word)

	if singular, ok := p.singulars[lower]; ok {
		return matchCase(word, singular)
	}
	if _, ok := p.plurals[lower]; ok {
		return word
	}
	if !p.isPluralShape(lower) {
		return word
	}
	return matchCase(word, inflection.Singular(word))
}

// IsPlural reports whether word is a known plural, an invariant noun or has a
// regular plural shape. Known irregular singulars such as "Status" are not plural.
func (p *Pluralizer) IsPlural(word string) bool {
	lower := strings.ToLower(word)
	if lower == "" {
		return false
	}
	if _, ok := p.invariant[lower]; ok {
		return true
	}
	if _, ok := p.plurals[lower]; ok {
		return false
	}
	return p.isPluralShape(lower)
}

// IsInvariant reports whether word has identical singular and plural forms.
func (p *Pluralizer) IsInvariant(word string) bool {
	_, ok := p.invariant[strings.ToLower(word)]
	return ok
}

func (p *Pluralizer) isPluralShape(lower string) bool {
	if _, ok := p.singulars[lower]; ok {
		return true
	}
	if len(lower) < 3 {
		return false
	}
	if _, ok := falsePlurals[lower]; ok {
		return false
	}
	if strings.HasSuffix(lower, "ies") {
		return true
	}
	if !strings.HasSuffix(lower, "s") {
		return false
	}
	if !strings.ContainsAny(lower[:len(lower)-1], "aeiouy") {
		return false
	}
	return !strings.HasSuffix(lower, "ss") &&
		!strings.HasSuffix(lower, "us") &&
		!strings.HasSuffix(lower, "is")
}

// isAcronymPair reports two-letter upper-case acronyms such as ID and IO, which
// take a lower-case "s".
func isAcronymPair(word string) bool {
	return len(word) == 2 && isUpperWord(word)
}

func isUpperWord(word string) bool {
	hasLetter := false
	for _, r := range word {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// matchCase returns out cased like in: fully upper case when in is an upper-case
// word, otherwise with the case of in's first letter.
func matchCase(in, out string) string {
	if isUpperWord(in) && !isAcronymPair(in) {
		return strings.ToUpper(out)
	}
	if StartsUpper(in) {
		return Capitalize(out)
	}
	return Decapitalize(out)
}
