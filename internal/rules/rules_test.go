package rules

import (
	"strings"
	"testing"

	"namecheck/internal/symbol"
)

func newTestRegistry(t *testing.T, opts Options) *Registry {
	t.Helper()
	reg, err := NewRegistry(opts)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return reg
}

func TestCheck(t *testing.T) {
	reg := newTestRegistry(t, Options{})

	tests := []struct {
		name     string
		sym      *symbol.Symbol
		wantRule string // "" means no diagnostic
		wantFix  string
	}{
		// base-derived and framework suffixes
		{
			name:     "event args type without suffix",
			sym:      &symbol.Symbol{Kind: symbol.KindType, Name: "TestMe", TypeKind: symbol.TypeClass, BaseTypes: []string{"EventArgs"}},
			wantRule: "NC1001",
			wantFix:  "TestMeEventArgs",
		},
		{
			name: "event args type with suffix",
			sym:  &symbol.Symbol{Kind: symbol.KindType, Name: "TestMeEventArgs", TypeKind: symbol.TypeClass, BaseTypes: []string{"EventArgs"}},
		},
		{
			name:     "exception type",
			sym:      &symbol.Symbol{Kind: symbol.KindType, Name: "Oops", TypeKind: symbol.TypeClass, BaseTypes: []string{"InvalidOperationException"}},
			wantRule: "NC1002",
			wantFix:  "OopsException",
		},
		{
			name:     "attribute type",
			sym:      &symbol.Symbol{Kind: symbol.KindType, Name: "Marker", TypeKind: symbol.TypeClass, BaseTypes: []string{"System.Attribute"}},
			wantRule: "NC1003",
			wantFix:  "MarkerAttribute",
		},
		{
			name: "dependency property field with suffix",
			sym:  &symbol.Symbol{Kind: symbol.KindField, Name: "m_fieldProperty", DeclaredType: "DependencyProperty"},
		},
		{
			name:     "dependency property field without suffix",
			sym:      &symbol.Symbol{Kind: symbol.KindField, Name: "m_field", DeclaredType: "DependencyProperty"},
			wantRule: "NC1010",
			wantFix:  "m_fieldProperty",
		},
		{
			name:     "routed event field without suffix",
			sym:      &symbol.Symbol{Kind: symbol.KindField, Name: "Click", DeclaredType: "RoutedEvent", IsStatic: true},
			wantRule: "NC1011",
			wantFix:  "ClickEvent",
		},

		// forbidden affixes
		{
			name:     "helper type",
			sym:      &symbol.Symbol{Kind: symbol.KindType, Name: "StringHelper", TypeKind: symbol.TypeClass},
			wantRule: "NC1020",
		},
		{
			name: "security is not a forbidden suffix",
			sym:  &symbol.Symbol{Kind: symbol.KindType, Name: "Security", TypeKind: symbol.TypeClass},
		},
		{
			name:     "impl type",
			sym:      &symbol.Symbol{Kind: symbol.KindType, Name: "ServiceImpl", TypeKind: symbol.TypeClass},
			wantRule: "NC1021",
			wantFix:  "Service",
		},
		{
			name:     "bare impl type has no fix",
			sym:      &symbol.Symbol{Kind: symbol.KindType, Name: "Impl", TypeKind: symbol.TypeClass},
			wantRule: "NC1021",
		},
		{
			name:     "model property",
			sym:      &symbol.Symbol{Kind: symbol.KindProperty, Name: "UserModel"},
			wantRule: "NC1022",
			wantFix:  "User",
		},
		{
			name: "view model property",
			sym:  &symbol.Symbol{Kind: symbol.KindProperty, Name: "ViewModel"},
		},
		{
			name: "bare model local",
			sym:  &symbol.Symbol{Kind: symbol.KindLocalVariable, Name: "model"},
		},
		{
			name: "model type",
			sym:  &symbol.Symbol{Kind: symbol.KindType, Name: "UserModel", TypeKind: symbol.TypeClass},
		},

		// required prefixes
		{
			name:     "handler without On",
			sym:      &symbol.Symbol{Kind: symbol.KindMethod, Name: "Clicked", HandlesEvents: true},
			wantRule: "NC1030",
			wantFix:  "OnClicked",
		},
		{
			name:     "Handle prefix becomes On",
			sym:      &symbol.Symbol{Kind: symbol.KindMethod, Name: "HandleClick", ParameterTypes: []string{"object", "EventArgs"}},
			wantRule: "NC1030",
			wantFix:  "OnClick",
		},
		{
			name: "handler with On",
			sym:  &symbol.Symbol{Kind: symbol.KindMethod, Name: "OnClick", HandlesEvents: true},
		},
		{
			name:     "bare Do",
			sym:      &symbol.Symbol{Kind: symbol.KindMethod, Name: "Do"},
			wantRule: "NC1031",
		},
		{
			name:     "Do prefix",
			sym:      &symbol.Symbol{Kind: symbol.KindMethod, Name: "DoWork"},
			wantRule: "NC1031",
			wantFix:  "Work",
		},
		{
			name:     "Can Do compound",
			sym:      &symbol.Symbol{Kind: symbol.KindMethod, Name: "CanDoWork"},
			wantRule: "NC1031",
			wantFix:  "CanWork",
		},
		{
			name: "CanDock is not a Do compound",
			sym:  &symbol.Symbol{Kind: symbol.KindMethod, Name: "CanDock"},
		},
		{
			name: "Dot",
			sym:  &symbol.Symbol{Kind: symbol.KindMethod, Name: "Dot"},
		},
		{
			name: "Down",
			sym:  &symbol.Symbol{Kind: symbol.KindMethod, Name: "Down"},
		},
		{
			name:     "interface without I",
			sym:      &symbol.Symbol{Kind: symbol.KindType, Name: "Repository", TypeKind: symbol.TypeInterface},
			wantRule: "NC1032",
			wantFix:  "IRepository",
		},
		{
			name:     "interface starting with I and lower case",
			sym:      &symbol.Symbol{Kind: symbol.KindType, Name: "Item", TypeKind: symbol.TypeInterface},
			wantRule: "NC1032",
			wantFix:  "IItem",
		},
		{
			name: "interface with I",
			sym:  &symbol.Symbol{Kind: symbol.KindType, Name: "IRepository", TypeKind: symbol.TypeInterface},
		},

		// check methods
		{
			name:     "check method",
			sym:      &symbol.Symbol{Kind: symbol.KindMethod, Name: "CheckConnection"},
			wantRule: "NC1040",
		},
		{
			name: "check in",
			sym:  &symbol.Symbol{Kind: symbol.KindMethod, Name: "CheckIn"},
		},
		{
			name: "check out",
			sym:  &symbol.Symbol{Kind: symbol.KindMethod, Name: "CheckOut"},
		},
		{
			name: "checkout is one word",
			sym:  &symbol.Symbol{Kind: symbol.KindMethod, Name: "Checkout"},
		},

		// pluralization
		{
			name:     "repository",
			sym:      &symbol.Symbol{Kind: symbol.KindType, Name: "UserRepository", TypeKind: symbol.TypeClass},
			wantRule: "NC1060",
			wantFix:  "Users",
		},
		{
			name:     "repository with irregular noun",
			sym:      &symbol.Symbol{Kind: symbol.KindType, Name: "PersonRepository", TypeKind: symbol.TypeClass},
			wantRule: "NC1060",
			wantFix:  "People",
		},
		{
			name: "repository interface",
			sym:  &symbol.Symbol{Kind: symbol.KindType, Name: "IUserRepository", TypeKind: symbol.TypeInterface},
		},
		{
			name:     "list field",
			sym:      &symbol.Symbol{Kind: symbol.KindField, Name: "m_orderList"},
			wantRule: "NC1061",
			wantFix:  "m_orders",
		},
		{
			name:     "array property with plural base",
			sym:      &symbol.Symbol{Kind: symbol.KindProperty, Name: "ItemsArray"},
			wantRule: "NC1061",
			wantFix:  "Items",
		},
		{
			name: "white list compound",
			sym:  &symbol.Symbol{Kind: symbol.KindField, Name: "m_whiteList"},
		},
		{
			name:     "flags enum with singular name",
			sym:      &symbol.Symbol{Kind: symbol.KindType, Name: "FileAccess", TypeKind: symbol.TypeEnum, Attributes: []string{"Flags"}},
			wantRule: "NC1062",
			wantFix:  "FileAccesses",
		},
		{
			name: "flags enum with plural name",
			sym:  &symbol.Symbol{Kind: symbol.KindType, Name: "Permissions", TypeKind: symbol.TypeEnum, Attributes: []string{"FlagsAttribute"}},
		},
		{
			name:     "plain enum with plural name",
			sym:      &symbol.Symbol{Kind: symbol.KindType, Name: "Colors", TypeKind: symbol.TypeEnum},
			wantRule: "NC1063",
			wantFix:  "Color",
		},
		{
			name: "plain enum named Status",
			sym:  &symbol.Symbol{Kind: symbol.KindType, Name: "Status", TypeKind: symbol.TypeEnum},
		},
		{
			name:     "plural enum member",
			sym:      &symbol.Symbol{Kind: symbol.KindEnumMember, Name: "Reds"},
			wantRule: "NC1064",
			wantFix:  "Red",
		},
		{
			name: "enum member acronym with version",
			sym:  &symbol.Symbol{Kind: symbol.KindEnumMember, Name: "Tls12"},
		},
		{
			name: "enum member Https",
			sym:  &symbol.Symbol{Kind: symbol.KindEnumMember, Name: "Https"},
		},
		{
			name: "enum member Sms",
			sym:  &symbol.Symbol{Kind: symbol.KindEnumMember, Name: "Sms"},
		},
		{
			name: "enum member Kms",
			sym:  &symbol.Symbol{Kind: symbol.KindEnumMember, Name: "Kms"},
		},
		{
			name: "enum member Ios",
			sym:  &symbol.Symbol{Kind: symbol.KindEnumMember, Name: "Ios"},
		},
		{
			name: "plain enum named after an acronym",
			sym:  &symbol.Symbol{Kind: symbol.KindType, Name: "Https", TypeKind: symbol.TypeEnum},
		},
		{
			name: "enum member Yes",
			sym:  &symbol.Symbol{Kind: symbol.KindEnumMember, Name: "Yes"},
		},

		// digits
		{
			name:     "slang digit",
			sym:      &symbol.Symbol{Kind: symbol.KindMethod, Name: "Convert2String"},
			wantRule: "NC1071",
			wantFix:  "ConvertToString",
		},
		{
			name:     "slang four",
			sym:      &symbol.Symbol{Kind: symbol.KindProperty, Name: "Ready4Use"},
			wantRule: "NC1071",
			wantFix:  "ReadyForUse",
		},
		{
			name:     "embedded digits",
			sym:      &symbol.Symbol{Kind: symbol.KindLocalVariable, Name: "value1Count"},
			wantRule: "NC1070",
		},
		{
			name: "trailing digits",
			sym:  &symbol.Symbol{Kind: symbol.KindProperty, Name: "Item2"},
		},
		{
			name: "ordinal",
			sym:  &symbol.Symbol{Kind: symbol.KindMethod, Name: "Get2ndItem"},
		},
		{
			name: "idiom Int32",
			sym:  &symbol.Symbol{Kind: symbol.KindMethod, Name: "ParseInt32Value"},
		},
		{
			name: "idiom across two words",
			sym:  &symbol.Symbol{Kind: symbol.KindProperty, Name: "IPv4Address"},
		},
		{
			name: "dimension",
			sym:  &symbol.Symbol{Kind: symbol.KindMethod, Name: "Draw3DShape"},
		},

		// field prefixes
		{
			name:     "instance field without prefix",
			sym:      &symbol.Symbol{Kind: symbol.KindField, Name: "count"},
			wantRule: "NC1080",
			wantFix:  "m_count",
		},
		{
			name:     "static field with underscore",
			sym:      &symbol.Symbol{Kind: symbol.KindField, Name: "_cache", IsStatic: true},
			wantRule: "NC1080",
			wantFix:  "s_cache",
		},
		{
			name:     "instance field with static prefix",
			sym:      &symbol.Symbol{Kind: symbol.KindField, Name: "s_Count"},
			wantRule: "NC1080",
			wantFix:  "m_count",
		},
		{
			name: "const field",
			sym:  &symbol.Symbol{Kind: symbol.KindField, Name: "MaxSize", IsConst: true, IsStatic: true},
		},

		// async
		{
			name:     "task method without Async",
			sym:      &symbol.Symbol{Kind: symbol.KindMethod, Name: "Load", DeclaredType: "Task<int>"},
			wantRule: "NC1090",
			wantFix:  "LoadAsync",
		},
		{
			name: "task method with Async",
			sym:  &symbol.Symbol{Kind: symbol.KindMethod, Name: "LoadAsync", DeclaredType: "ValueTask"},
		},
		{
			name: "async Main",
			sym:  &symbol.Symbol{Kind: symbol.KindMethod, Name: "Main", DeclaredType: "Task"},
		},
		{
			name: "async test",
			sym:  &symbol.Symbol{Kind: symbol.KindMethod, Name: "Loads", DeclaredType: "Task", Attributes: []string{"Fact"}},
		},

		// skipped symbols
		{
			name: "generated code",
			sym:  &symbol.Symbol{Kind: symbol.KindType, Name: "StringHelper", Attributes: []string{"GeneratedCode(\"tool\", \"1.0\")"}},
		},
		{
			name: "unclassifiable",
			sym:  &symbol.Symbol{Kind: "macro", Name: "DoWork"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := reg.Check(tt.sym)

			if tt.wantRule == "" {
				if len(diags) != 0 {
					t.Fatalf("Check(%q) = %+v, want no diagnostics", tt.sym.Name, diags)
				}
				return
			}
			if len(diags) != 1 {
				t.Fatalf("Check(%q) returned %d diagnostics (%+v), want 1", tt.sym.Name, len(diags), diags)
			}
			d := diags[0]
			if d.RuleID != tt.wantRule {
				t.Errorf("RuleID = %q, want %q", d.RuleID, tt.wantRule)
			}
			if d.ProposedName != tt.wantFix {
				t.Errorf("ProposedName = %q, want %q", d.ProposedName, tt.wantFix)
			}
			if d.SymbolName != tt.sym.Name {
				t.Errorf("SymbolName = %q, want %q", d.SymbolName, tt.sym.Name)
			}
			if d.Message == "" {
				t.Error("Message is empty")
			}
		})
	}
}

func TestLengthBoundary(t *testing.T) {
	reg := newTestRegistry(t, Options{})

	exact := &symbol.Symbol{Kind: symbol.KindMethod, Name: "ProcessIncomingMessageNow"}
	if n := len(exact.Name); n != 25 {
		t.Fatalf("test name has %d characters, want 25", n)
	}
	if diags := reg.Check(exact); len(diags) != 0 {
		t.Errorf("Check(%q) = %+v, want none", exact.Name, diags)
	}

	over := &symbol.Symbol{Kind: symbol.KindMethod, Name: "ProcessIncomingMessagesNow"}
	diags := reg.Check(over)
	if len(diags) != 1 || diags[0].RuleID != "NC1051" {
		t.Fatalf("Check(%q) = %+v, want exactly NC1051", over.Name, diags)
	}
	if diags[0].HasProposal() {
		t.Errorf("length diagnostic proposes %q", diags[0].ProposedName)
	}
}

func TestLengthConfigured(t *testing.T) {
	reg := newTestRegistry(t, Options{MaxLength: map[string]int{"method": 10, "local": 0}})

	if got := reg.MaxLength(symbol.KindMethod); got != 10 {
		t.Errorf("MaxLength(method) = %d, want 10", got)
	}
	if got := reg.MaxLength(symbol.KindType); got != 40 {
		t.Errorf("MaxLength(type) = %d, want default 40", got)
	}

	if diags := reg.Check(&symbol.Symbol{Kind: symbol.KindMethod, Name: "RunAllJobs"}); len(diags) != 0 {
		t.Errorf("10-character name: got %+v, want none", diags)
	}
	if diags := reg.Check(&symbol.Symbol{Kind: symbol.KindMethod, Name: "RunAllJobsX"}); len(diags) != 1 {
		t.Errorf("11-character name: got %+v, want one", diags)
	}

	long := &symbol.Symbol{Kind: symbol.KindLocalVariable, Name: strings.Repeat("value", 10)}
	if diags := reg.Check(long); len(diags) != 0 {
		t.Errorf("disabled limit: got %+v, want none", diags)
	}
}

func TestLengthUsesUnqualifiedName(t *testing.T) {
	reg := newTestRegistry(t, Options{MaxLength: map[string]int{"method": 7}})
	sym := &symbol.Symbol{Kind: symbol.KindMethod, Name: "IDisposable.Dispose"}
	if diags := reg.Check(sym); len(diags) != 0 {
		t.Errorf("Check(%q) = %+v, want none", sym.Name, diags)
	}
}

func TestOverriddenMembersAreExempt(t *testing.T) {
	reg := newTestRegistry(t, Options{})

	violating := []*symbol.Symbol{
		{Kind: symbol.KindMethod, Name: "DoWork"},
		{Kind: symbol.KindMethod, Name: "CheckConnection"},
		{Kind: symbol.KindMethod, Name: "Load", DeclaredType: "Task"},
		{Kind: symbol.KindMethod, Name: "ProcessIncomingMessagesNow"},
		{Kind: symbol.KindProperty, Name: "ItemsArray"},
		{Kind: symbol.KindProperty, Name: "UserModel"},
		{Kind: symbol.KindMethod, Name: "Convert2String"},
	}

	for _, sym := range violating {
		if diags := reg.Check(sym); len(diags) == 0 {
			t.Fatalf("Check(%q) found nothing; the symbol must violate a rule", sym.Name)
		}

		overridden := sym.WithName(sym.Name)
		overridden.IsOverride = true
		if diags := reg.Check(overridden); len(diags) != 0 {
			t.Errorf("override %q: got %+v, want none", sym.Name, diags)
		}

		implemented := sym.WithName(sym.Name)
		implemented.IsInterfaceImplementation = true
		if diags := reg.Check(implemented); len(diags) != 0 {
			t.Errorf("interface implementation %q: got %+v, want none", sym.Name, diags)
		}
	}
}

func TestEvaluateOrdersByRuleID(t *testing.T) {
	reg := newTestRegistry(t, Options{})
	sym := &symbol.Symbol{Kind: symbol.KindMethod, Name: "DoLoad", DeclaredType: "Task"}

	diags := reg.Check(sym)
	if len(diags) != 2 {
		t.Fatalf("Check(%q) = %+v, want 2 diagnostics", sym.Name, diags)
	}
	if diags[0].RuleID != "NC1031" || diags[1].RuleID != "NC1090" {
		t.Errorf("rule order = [%s %s], want [NC1031 NC1090]", diags[0].RuleID, diags[1].RuleID)
	}
	if diags[0].ProposedName != "Load" || diags[1].ProposedName != "DoLoadAsync" {
		t.Errorf("proposals = [%s %s]", diags[0].ProposedName, diags[1].ProposedName)
	}
}

func TestEvaluateSkipsUnclassifiable(t *testing.T) {
	reg := newTestRegistry(t, Options{})
	sym := &symbol.Symbol{Kind: symbol.KindMethod, Name: ""}
	if diags := reg.Evaluate(sym, symbol.Of(symbol.TagUnclassifiable), nil); diags != nil {
		t.Errorf("Evaluate() = %+v, want nil", diags)
	}
	if diags := reg.Evaluate(nil, 0, nil); diags != nil {
		t.Errorf("Evaluate(nil) = %+v, want nil", diags)
	}
}

func TestDiagnosticCarriesLocation(t *testing.T) {
	reg := newTestRegistry(t, Options{})
	sym := &symbol.Symbol{
		ID:             "T:Shop.UserRepository",
		Kind:           symbol.KindType,
		Name:           "UserRepository",
		ContainingType: "Shop",
		Location:       symbol.Location{Path: "src/Shop.cs", Line: 12, Column: 5},
	}
	diags := reg.Check(sym)
	if len(diags) != 1 {
		t.Fatalf("Check() = %+v, want one diagnostic", diags)
	}
	d := diags[0]
	if d.SymbolID != sym.ID || d.Container != "Shop" || d.Location != sym.Location {
		t.Errorf("diagnostic = %+v, want symbol identity and location copied", d)
	}
	if d.RuleName != "RepositoryNaming" {
		t.Errorf("RuleName = %q, want RepositoryNaming", d.RuleName)
	}
}
