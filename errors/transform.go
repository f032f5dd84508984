package errors

import (
	"fmt"
	"strings"
)

// TransformError reports a failure while rewriting a parsed program, such as
// a name generator that cannot produce a fresh identifier for a function.
type TransformError struct {
	Code        ErrorCode
	Pass        string // name of the transform that failed
	Message     string
	Filename    string
	Line        int
	Column      int
	SourceLine  string
	Suggestions []Suggestion
	Note        string
	Err         error
}

// TransformErrorf builds a TransformError with a formatted message.
func TransformErrorf(code ErrorCode, pass, format string, args ...any) *TransformError {
	return &TransformError{Code: code, Pass: pass, Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *TransformError) Error() string {
	var b strings.Builder
	b.WriteString("transform error")
	if e.Pass != "" {
		b.WriteString(" (")
		b.WriteString(e.Pass)
		b.WriteString(")")
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Line > 0 {
		loc := SourceLocation{Filename: e.Filename, Line: e.Line, Column: e.Column}
		b.WriteString(" at ")
		b.WriteString(loc.String())
	}
	return b.String()
}

// Unwrap returns the underlying cause, if any.
func (e *TransformError) Unwrap() error {
	return e.Err
}

// FriendlyErrorMessage returns a human-friendly error message.
func (e *TransformError) FriendlyErrorMessage() string {
	return NewFormatter(false).Format(e.ToFormatted())
}

// ToFormatted converts to the FormattedError type for display.
func (e *TransformError) ToFormatted() *FormattedError {
	fe := &FormattedError{
		Code:     e.Code,
		Kind:     "transform error",
		Message:  e.Message,
		Filename: e.Filename,
		Line:     e.Line,
		Column:   e.Column,
		Note:     e.Note,
	}
	if e.SourceLine != "" {
		fe.SourceLines = []SourceLineEntry{{Number: e.Line, Text: e.SourceLine, IsMain: true}}
	}
	if len(e.Suggestions) > 0 {
		fe.Hint = FormatSuggestions(e.Suggestions)
	}
	return fe
}

// ConfigError reports an invalid configuration value, with suggestions for
// misspelled choices.
type ConfigError struct {
	Code    ErrorCode
	Key     string
	Value   string
	Message string
	Choices []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Key, e.Value, e.Message)
}

// FriendlyErrorMessage returns a human-friendly error message.
func (e *ConfigError) FriendlyErrorMessage() string {
	return NewFormatter(false).Format(e.ToFormatted())
}

// ToFormatted converts to the FormattedError type for display.
func (e *ConfigError) ToFormatted() *FormattedError {
	fe := &FormattedError{
		Code:    e.Code,
		Kind:    "config error",
		Message: fmt.Sprintf("invalid %s %q: %s", e.Key, e.Value, e.Message),
	}
	if hint := FormatSuggestions(SuggestSimilar(e.Value, e.Choices)); hint != "" {
		fe.Hint = hint
	} else if len(e.Choices) > 0 {
		fe.Note = "valid values: " + strings.Join(e.Choices, ", ")
	}
	return fe
}

// UnknownChoice returns a ConfigError for a value outside the given choices.
func UnknownChoice(key, value string, choices []string) *ConfigError {
	return &ConfigError{
		Code:    E3002,
		Key:     key,
		Value:   value,
		Message: "unknown value",
		Choices: choices,
	}
}
