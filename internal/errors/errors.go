package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ConfigInvalid indicates a malformed configuration file or value
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// UnknownRule indicates a configuration entry for a rule ID that does not exist
	UnknownRule ErrorCode = "UNKNOWN_RULE"
	// NegativeLimit indicates a negative maximum name length
	NegativeLimit ErrorCode = "NEGATIVE_LIMIT"
	// UnknownKind indicates a symbol kind the linter does not know
	UnknownKind ErrorCode = "UNKNOWN_KIND"
	// FactsMissing indicates the symbol fact source could not be found
	FactsMissing ErrorCode = "FACTS_MISSING"
	// FactsInvalid indicates the symbol fact source could not be decoded
	FactsInvalid ErrorCode = "FACTS_INVALID"
	// BaselineUnavailable indicates the baseline database could not be used
	BaselineUnavailable ErrorCode = "BASELINE_UNAVAILABLE"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// EditConfig suggests changing the configuration file
	EditConfig FixActionType = "edit-config"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
}

// LintError is an error with a stable code and suggested fixes
type LintError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// NewLintError creates a new LintError
func NewLintError(code ErrorCode, message string, cause error, suggestedFixes []FixAction) *LintError {
	return &LintError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: suggestedFixes,
	}
}

// New creates a LintError with the predefined fixes for its code
func New(code ErrorCode, message string, cause error) *LintError {
	return NewLintError(code, message, cause, GetSuggestedFixes(code))
}

// Error implements the error interface
func (e *LintError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *LintError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *LintError) WithDetails(details interface{}) *LintError {
	e.Details = details
	return e
}

// CodeOf returns the code of the first LintError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var le *LintError
	if stderrors.As(err, &le) {
		return le.Code
	}
	return ""
}

// IsConfigError reports whether err is a startup configuration failure.
func IsConfigError(err error) bool {
	switch CodeOf(err) {
	case ConfigInvalid, UnknownRule, NegativeLimit, UnknownKind:
		return true
	}
	return false
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	ConfigInvalid: {
		{
			Type:        RunCommand,
			Command:     "namecheck init --force",
			Safe:        false,
			Description: "Regenerate the default configuration",
		},
	},
	UnknownRule: {
		{
			Type:        RunCommand,
			Command:     "namecheck rules",
			Safe:        true,
			Description: "List the available rule IDs",
		},
	},
	NegativeLimit: {
		{
			Type:        EditConfig,
			Description: "Use a non-negative maxLength value (0 disables the limit)",
		},
	},
	UnknownKind: {
		{
			Type:        EditConfig,
			Description: "Use one of: type, method, property, event, field, parameter, local-variable, local-function",
		},
	},
	FactsMissing: {
		{
			Type:        RunCommand,
			Command:     "namecheck check --facts <path>",
			Safe:        true,
			Description: "Point the linter at a symbol file, SCIP index or C# source directory",
		},
	},
	BaselineUnavailable: {
		{
			Type:        RunCommand,
			Command:     "namecheck baseline clear",
			Safe:        false,
			Description: "Reset the baseline database",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
