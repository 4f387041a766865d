package words

import (
	"reflect"
	"testing"
)

func texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"X", []string{"X"}},
		{"userName", []string{"user", "Name"}},
		{"UserRepository", []string{"User", "Repository"}},
		{"ID", []string{"ID"}},
		{"IDValue", []string{"ID", "Value"}},
		{"XMLParser", []string{"XML", "Parser"}},
		{"GetIDs", []string{"Get", "IDs"}},
		{"IDsByName", []string{"IDs", "By", "Name"}},
		{"Get2ndItem", []string{"Get", "2", "nd", "Item"}},
		{"Int32Value", []string{"Int", "32", "Value"}},
		{"Version2", []string{"Version", "2"}},
		{"m_fieldProperty", []string{"m_", "field", "Property"}},
		{"s_instance", []string{"s_", "instance"}},
		{"_count", []string{"_", "count"}},
		{"my_value", []string{"my", "_", "value"}},
		{"Foo__Bar", []string{"Foo", "__", "Bar"}},
		{"IFoo.Bar", []string{"I", "Foo", ".", "Bar"}},
		{"CanDock", []string{"Can", "Dock"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := texts(Tokenize(tt.name))
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestTokenizeRoundTrip(t *testing.T) {
	names := []string{
		"", "_", "m_", "a", "ABC", "abc", "HTTPServer2Config", "m_userList",
		"s_Cache", "__weird__", "Get2ndItem", "IFoo.Bar", "naïveÜber", "x1y2z3",
		"Convert2String", "ÄÖÜ", "CheckConnection", "UserRepository",
		"\xff", "Foo\xfeBar", "m_\xc3", "ab\xe2\x82", "\xef\xbf\xbdX",
	}
	for _, n := range names {
		if got := Join(Tokenize(n)); got != n {
			t.Errorf("Join(Tokenize(%q)) = %q", n, got)
		}
	}
}

func TestTokenKinds(t *testing.T) {
	tokens := Tokenize("m_item2_Name")
	want := []TokenKind{TokenPrefix, TokenWord, TokenNumber, TokenSeparator, TokenWord}
	if len(tokens) != len(want) {
		t.Fatalf("len(tokens) = %d, want %d (%q)", len(tokens), len(want), texts(tokens))
	}
	for i, k := range want {
		if tokens[i].Kind != k {
			t.Errorf("tokens[%d].Kind = %v, want %v", i, tokens[i].Kind, k)
		}
	}
}

func TestWordHelpers(t *testing.T) {
	tokens := Tokenize("m_userList2")
	if got := Words(tokens); !reflect.DeepEqual(got, []string{"user", "List"}) {
		t.Errorf("Words = %q", got)
	}
	if got := FirstWordIndex(tokens); got != 1 {
		t.Errorf("FirstWordIndex = %d, want 1", got)
	}
	if got := LastWordIndex(tokens); got != 2 {
		t.Errorf("LastWordIndex = %d, want 2", got)
	}
	if got := LastWordIndex(Tokenize("42")); got != -1 {
		t.Errorf("LastWordIndex(42) = %d, want -1", got)
	}
}

func TestSplitPrefix(t *testing.T) {
	tests := []struct {
		name, prefix, rest string
	}{
		{"m_field", "m_", "field"},
		{"s_field", "s_", "field"},
		{"_field", "_", "field"},
		{"field", "", "field"},
		{"my_field", "", "my_field"},
	}
	for _, tt := range tests {
		prefix, rest := SplitPrefix(tt.name)
		if prefix != tt.prefix || rest != tt.rest {
			t.Errorf("SplitPrefix(%q) = (%q, %q), want (%q, %q)", tt.name, prefix, rest, tt.prefix, tt.rest)
		}
	}
}

func TestIsIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"a", true},
		{"_a", true},
		{"m_field", true},
		{"a1", true},
		{"1a", false},
		{"a-b", false},
		{"a b", false},
		{"Über", true},
	}
	for _, tt := range tests {
		if got := IsIdentifier(tt.in); got != tt.want {
			t.Errorf("IsIdentifier(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCapitalize(t *testing.T) {
	if got := Capitalize("user"); got != "User" {
		t.Errorf("Capitalize = %q", got)
	}
	if got := Decapitalize("User"); got != "user" {
		t.Errorf("Decapitalize = %q", got)
	}
	if got := Capitalize(""); got != "" {
		t.Errorf("Capitalize(\"\") = %q", got)
	}
}
