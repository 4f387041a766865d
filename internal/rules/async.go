package rules

import (
	"fmt"
	"strings"

	"namecheck/internal/symbol"
)

const asyncSuffix = "Async"

func asyncRules() []*Rule {
	return []*Rule{
		{
			ID:          "NC1090",
			Name:        "AsyncSuffix",
			Family:      FamilyAsyncSuffix,
			Description: "Methods returning Task or ValueTask should end in 'Async'",
			Kinds:       callableKinds,
			Exempt: symbol.Of(
				symbol.TagOverriddenMember,
				symbol.TagTestMethod,
				symbol.TagEventHandlerMethod,
			),
			AppliesTo: func(in Input) bool {
				return in.Tags.Has(symbol.TagAsyncMethod) && unqualified(in.Symbol.Name) != "Main"
			},
			IsViolation: func(in Input) bool {
				return !strings.HasSuffix(in.Symbol.Name, asyncSuffix)
			},
			Rewrite: func(in Input) string {
				return in.Symbol.Name + asyncSuffix
			},
			Message: func(in Input) string {
				return fmt.Sprintf("'%s' returns a task and should end in '%s'", in.Symbol.Name, asyncSuffix)
			},
		},
	}
}
