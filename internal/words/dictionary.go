package words

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// DictionaryFile is the default filename for project word lists.
const DictionaryFile = "WORDS.toml"

// Dictionary extends the built-in inflection tables with project vocabulary.
//
//	invariant = ["Firmware"]
//
//	[plurals]
//	Criterion = "Criteria"
type Dictionary struct {
	// Plurals maps singular nouns to their irregular plural.
	Plurals map[string]string `toml:"plurals"`

	// Invariant lists nouns whose plural equals the singular.
	Invariant []string `toml:"invariant"`
}

// ParseDictionary decodes a WORDS.toml document.
func ParseDictionary(data []byte) (Dictionary, error) {
	var dict Dictionary
	if err := toml.Unmarshal(data, &dict); err != nil {
		return Dictionary{}, fmt.Errorf("failed to parse %s: %w", DictionaryFile, err)
	}
	for singular, plural := range dict.Plurals {
		if !IsIdentifier(singular) || !IsIdentifier(plural) {
			return Dictionary{}, fmt.Errorf("invalid plural entry %q = %q", singular, plural)
		}
	}
	return dict, nil
}

// LoadDictionary reads a dictionary file. An empty path yields an empty dictionary.
func LoadDictionary(path string) (Dictionary, error) {
	if path == "" {
		return Dictionary{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Dictionary{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseDictionary(data)
}
