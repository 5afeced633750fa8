// Package sqlerr defines the error types returned across the mosql
// package boundary: lexing, parsing, configuration, and formatting each
// fail in their own distinguishable way.
package sqlerr

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/freeeve/mosql/token"
)

// LexError reports a lexical failure: an illegal character or an
// unterminated quoted construct.
type LexError struct {
	Pos     token.Pos
	Message string
	cause   error
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Cause exposes the wrapped error for github.com/pkg/errors.Cause.
func (e *LexError) Cause() error { return e.cause }

// NewLexError builds a LexError, wrapping cause if one is given.
func NewLexError(pos token.Pos, message string, cause error) *LexError {
	if cause != nil {
		cause = errors.WithStack(cause)
	}
	return &LexError{Pos: pos, Message: message, cause: cause}
}

// ParseError reports a syntactic failure: an unexpected token, a missing
// clause, or input left over after a complete statement.
type ParseError struct {
	Pos     token.Pos
	Message string
	cause   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Cause exposes the wrapped error for github.com/pkg/errors.Cause.
func (e *ParseError) Cause() error { return e.cause }

// NewParseError builds a ParseError, wrapping cause if one is given.
func NewParseError(pos token.Pos, message string, cause error) *ParseError {
	if cause != nil {
		cause = errors.WithStack(cause)
	}
	return &ParseError{Pos: pos, Message: message, cause: cause}
}

// ConfigError reports a misuse of the Parse/Format option API: an
// unrecognized dialect name, or options that conflict with one another.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s", e.Message)
}

// NewConfigError builds a ConfigError.
func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

// FormatError reports a failure while rendering a canonical tree back to
// SQL text: a shape the formatter does not recognize, or a call whose
// argument count does not match its documented arity.
type FormatError struct {
	Message string
	cause   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error: %s", e.Message)
}

// Cause exposes the wrapped error for github.com/pkg/errors.Cause.
func (e *FormatError) Cause() error { return e.cause }

// NewFormatError builds a FormatError, wrapping cause if one is given.
func NewFormatError(cause error, format string, args ...any) *FormatError {
	if cause != nil {
		cause = errors.WithStack(cause)
	}
	return &FormatError{Message: fmt.Sprintf(format, args...), cause: cause}
}
