package model

import (
	"fmt"
	"strings"
)

// SchemaError reports required input columns that are absent.
type SchemaError struct {
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s: missing required columns: %s", e.Source, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// FormatError reports a single field that could not be parsed.
type FormatError struct {
	Source string
	Line   int
	Field  string
	Value  string
	Err    error
}

func (e *FormatError) Error() string {
	loc := ""
	if e.Source != "" {
		loc = e.Source + ":"
	}
	if e.Line > 0 {
		loc += fmt.Sprintf("%d: ", e.Line)
	} else if loc != "" {
		loc += " "
	}
	if e.Err != nil {
		return fmt.Sprintf("%sbad %s %q: %v", loc, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("%sbad %s %q", loc, e.Field, e.Value)
}

func (e *FormatError) Unwrap() error { return e.Err }

// NotFoundError reports a profile key absent from a granularity's table.
type NotFoundError struct {
	Granularity Granularity
	Key         ProfileKey
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s profile for %s", e.Granularity, e.Key)
}

// InvalidQueryError reports a malformed similarity or lookup request.
type InvalidQueryError struct {
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return "invalid query: " + e.Reason
}
