package words

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPluralize(t *testing.T) {
	tests := []struct {
		word string
		want string
	}{
		// irregular table
		{"Child", "Children"},
		{"Index", "Indices"},
		{"Key", "Keys"},
		{"Security", "Securities"},
		{"Access", "Accesses"},
		{"Data", "Data"},
		{"Information", "Information"},
		{"Nested", "Nested"},
		{"Person", "People"},
		{"Status", "Statuses"},
		// already plural
		{"Children", "Children"},
		{"Users", "Users"},
		{"Categories", "Categories"},
		{"Boxes", "Boxes"},
		{"Accesses", "Accesses"},
		// regular rules
		{"User", "Users"},
		{"Category", "Categories"},
		{"Day", "Days"},
		{"Box", "Boxes"},
		{"Match", "Matches"},
		{"Hash", "Hashes"},
		{"Class", "Classes"},
		{"Address", "Addresses"},
		{"Process", "Processes"},
		{"Campus", "Campuses"},
		{"Item", "Items"},
		{"ID", "IDs"},
		{"Quiz", "Quizzes"},
		{"Wolf", "Wolves"},
		{"Virus", "Viruses"},
		{"Human", "Humans"},
		{"Salesman", "Salesmen"},
		// upper-case words stay upper case
		{"CATEGORY", "CATEGORIES"},
		{"BOX", "BOXES"},
		{"CHILD", "CHILDREN"},
		{"USER", "USERS"},
		// case of the first letter is preserved
		{"child", "children"},
		{"user", "users"},
		{"category", "categories"},
		{"data", "data"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			if got := Pluralize(tt.word); got != tt.want {
				t.Errorf("Pluralize(%q) = %q, want %q", tt.word, got, tt.want)
			}
		})
	}
}

func TestPluralizeIdempotent(t *testing.T) {
	words := []string{
		"Child", "Index", "Key", "Security", "Access", "Data", "Information", "Nested",
		"User", "Category", "Day", "Box", "Match", "Hash", "Class", "Address",
		"Process", "Status", "Item", "Person", "Matrix", "Leaf", "Alias", "Bus",
		"Order", "Entry", "Policy", "Message", "Quiz", "Wish", "Campus", "Wolf",
		"Octopus", "Datum", "Ox", "Salesman", "CATEGORY", "BOX", "ID",
	}
	for _, w := range words {
		once := Pluralize(w)
		if twice := Pluralize(once); twice != once {
			t.Errorf("Pluralize(Pluralize(%q)) = %q, want %q", w, twice, once)
		}
	}
}

func TestSingularize(t *testing.T) {
	tests := []struct {
		word string
		want string
	}{
		{"Children", "Child"},
		{"Indices", "Index"},
		{"Users", "User"},
		{"Categories", "Category"},
		{"Boxes", "Box"},
		{"Matches", "Match"},
		{"Classes", "Class"},
		{"Colors", "Color"},
		{"Accesses", "Access"},
		{"Caches", "Cache"},
		{"Data", "Data"},
		{"Status", "Status"},
		{"User", "User"},
		{"users", "user"},
		{"Wolves", "Wolf"},
		{"IDs", "ID"},
		{"CATEGORIES", "CATEGORY"},
		// acronyms ending in s are not plural
		{"Https", "Https"},
		{"Tls", "Tls"},
		{"Ios", "Ios"},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			if got := Singularize(tt.word); got != tt.want {
				t.Errorf("Singularize(%q) = %q, want %q", tt.word, got, tt.want)
			}
		})
	}
}

func TestSingularizeInvertsPluralize(t *testing.T) {
	for _, w := range []string{"User", "Category", "Box", "Match", "Child", "Index", "Access", "Status", "Class"} {
		if got := Singularize(Pluralize(w)); got != w {
			t.Errorf("Singularize(Pluralize(%q)) = %q", w, got)
		}
	}
}

func TestIsPlural(t *testing.T) {
	tests := []struct {
		word string
		want bool
	}{
		{"Users", true},
		{"Children", true},
		{"Categories", true},
		{"Data", true},
		{"User", false},
		{"Status", false},
		{"Access", false},
		{"Class", false},
		{"Analysis", false},
		{"Key", false},
		{"Keys", true},
		{"Gyms", true},
		{"Tls", false},
		{"Https", false},
		{"Sms", false},
		{"Kms", false},
		{"Ios", false},
		{"Aws", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsPlural(tt.word); got != tt.want {
			t.Errorf("IsPlural(%q) = %v, want %v", tt.word, got, tt.want)
		}
	}
}

func TestNewPluralizerWithDictionary(t *testing.T) {
	p := NewPluralizer(Dictionary{
		Plurals:   map[string]string{"Criterion": "Criteria"},
		Invariant: []string{"Firmware"},
	})

	if got := p.Pluralize("Criterion"); got != "Criteria" {
		t.Errorf("Pluralize(Criterion) = %q, want Criteria", got)
	}
	if got := p.Pluralize("Criteria"); got != "Criteria" {
		t.Errorf("Pluralize(Criteria) = %q, want Criteria", got)
	}
	if got := p.Singularize("criteria"); got != "criterion" {
		t.Errorf("Singularize(criteria) = %q, want criterion", got)
	}
	if got := p.Pluralize("Firmware"); got != "Firmware" {
		t.Errorf("Pluralize(Firmware) = %q, want Firmware", got)
	}
	if !p.IsInvariant("firmware") {
		t.Error("expected firmware to be invariant")
	}

	// The default pluralizer must not see dictionary entries.
	if got := Pluralize("Criterion"); got != "Criterions" {
		t.Errorf("default Pluralize(Criterion) = %q, want Criterions", got)
	}
}

func TestLoadDictionary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DictionaryFile)
	content := `invariant = ["Firmware"]

[plurals]
Criterion = "Criteria"
Cactus = "Cacti"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	dict, err := LoadDictionary(path)
	if err != nil {
		t.Fatalf("LoadDictionary: %v", err)
	}
	if dict.Plurals["Cactus"] != "Cacti" {
		t.Errorf("Plurals[Cactus] = %q, want Cacti", dict.Plurals["Cactus"])
	}
	if len(dict.Invariant) != 1 || dict.Invariant[0] != "Firmware" {
		t.Errorf("Invariant = %v, want [Firmware]", dict.Invariant)
	}

	if _, err := LoadDictionary(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}
	if dict, err := LoadDictionary(""); err != nil || len(dict.Plurals) != 0 {
		t.Errorf("LoadDictionary(\"\") = %v, %v", dict, err)
	}
}

func TestParseDictionaryRejectsInvalidEntries(t *testing.T) {
	if _, err := ParseDictionary([]byte("[plurals]\n\"bad word\" = \"bad words\"\n")); err == nil {
		t.Error("expected error for non-identifier entry")
	}
	if _, err := ParseDictionary([]byte("plurals = 3")); err == nil {
		t.Error("expected error for malformed document")
	}
}
