package sqlerr

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/freeeve/mosql/token"
)

func TestLexError(t *testing.T) {
	pos := token.Pos{Line: 3, Column: 7}
	err := NewLexError(pos, "unterminated string", nil)
	assert.Equal(t, "lex error at line 3, column 7: unterminated string", err.Error())
	assert.Nil(t, err.Cause())
}

func TestParseErrorWithCause(t *testing.T) {
	cause := errors.New("unexpected token")
	pos := token.Pos{Line: 1, Column: 1}
	err := NewParseError(pos, "expected FROM", cause)
	assert.Equal(t, "parse error at line 1, column 1: expected FROM", err.Error())
	assert.EqualError(t, errors.Cause(err.Cause()), "unexpected token")
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("all_columns: only %q is accepted, got %q", "*", "%")
	assert.Equal(t, `config error: all_columns: only "*" is accepted, got "%"`, err.Error())
}

func TestFormatError(t *testing.T) {
	err := NewFormatError(nil, "unrecognized call shape %q", "frobnicate")
	assert.Equal(t, `format error: unrecognized call shape "frobnicate"`, err.Error())
	assert.Nil(t, err.Cause())
}
