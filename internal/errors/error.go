package errors

import (
	"bufio"
	"fmt"
	"os"
)

// Category represents the type of error.
type Category string

const (
	CategoryDefinition  Category = "definition"
	CategoryRuntime     Category = "runtime"
	CategoryAction      Category = "action"
	CategoryPlugin      Category = "plugin"
	CategoryPersistence Category = "persistence"
	CategoryConfig      Category = "config"
	CategoryCLI         Category = "cli"
)

// Location represents a source location, such as a line in a definitions file.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// DepotError is a structured error with a stable code.
type DepotError struct {
	// Code is a unique error identifier (e.g., "D001").
	Code string

	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation, usually naming the store or key involved.
	Detail string

	Location *Location

	// Context contains surrounding source lines when Location is set.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *DepotError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	if e.Code != "" {
		return e.Code + ": " + msg
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *DepotError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a DepotError with the same code, so a fresh
// error matches the package-level sentinel for its code.
func (e *DepotError) Is(target error) bool {
	t, ok := target.(*DepotError)
	if !ok || t.Code == "" {
		return false
	}
	return t.Code == e.Code
}

// WithLocation adds a source location and the lines around it.
func (e *DepotError) WithLocation(file string, line, column int) *DepotError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, contextLines)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *DepotError) WithSuggestion(s string) *DepotError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *DepotError) WithDetail(d string) *DepotError {
	e.Detail = d
	return e
}

// WithDetailf is WithDetail with formatting.
func (e *DepotError) WithDetailf(format string, args ...any) *DepotError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps another error.
func (e *DepotError) Wrap(err error) *DepotError {
	e.Wrapped = err
	return e
}

// contextLines is the number of source lines captured around a location.
const contextLines = 5

func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	if startLine < 1 {
		startLine = 1
	}
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// New creates a DepotError from a registered error code.
func New(code string) *DepotError {
	template, ok := registry[code]
	if !ok {
		return &DepotError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &DepotError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Suggestion: template.Suggestion,
		DocURL:     template.DocURL,
	}
}

// Newf creates a DepotError with a formatted message and no code.
func Newf(category Category, format string, args ...any) *DepotError {
	return &DepotError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a DepotError.
func FromError(err error, code string) *DepotError {
	if err == nil {
		return nil
	}
	if de, ok := err.(*DepotError); ok {
		return de
	}
	return New(code).Wrap(err)
}
