package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeeve/mosql/tree"
)

func TestFormatSimpleSelect(t *testing.T) {
	obj := tree.NewObject().
		Set("select", tree.Array{"id", "name"}).
		Set("from", "users")

	out, err := Format(obj, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, `SELECT id, name FROM users`, out)
}

func TestFormatBinaryPrecedence(t *testing.T) {
	// a + b * c must not be parenthesized; (a + b) * c must be.
	mul := tree.NewObject().Set("mul", tree.Array{"b", "c"})
	addThenMul := tree.NewObject().Set("add", tree.Array{"a", mul})

	out, err := Format(addThenMul, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "a + b * c", out)

	add := tree.NewObject().Set("add", tree.Array{"a", "b"})
	mulOfAdd := tree.NewObject().Set("mul", tree.Array{add, "c"})

	out, err = Format(mulOfAdd, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "(a + b) * c", out)
}

func TestFormatSubtractionRightAssociativity(t *testing.T) {
	// a - (b - c) must keep its parens; it is not the same value as a - b - c.
	inner := tree.NewObject().Set("sub", tree.Array{"b", "c"})
	outer := tree.NewObject().Set("sub", tree.Array{"a", inner})

	out, err := Format(outer, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "a - (b - c)", out)
}

func TestFormatLiteralSequence(t *testing.T) {
	lit := tree.Literal{Value: tree.Array{"abc", "def"}}
	out, err := Format(lit, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, `'abc' 'def'`, out)
}

func TestFormatParamShapes(t *testing.T) {
	named := tree.NewObject().Set("param", "name")
	out, err := Format(named, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, ":name", out)

	positional := tree.NewObject().Set("param", 1)
	out, err = Format(positional, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "$1", out)
}

func TestFormatBacktickIdentifiers(t *testing.T) {
	opts := DefaultOptions()
	opts.ANSIQuotes = false
	opts.ShouldQuote = func(string) bool { return true }

	out, err := Format("my col", opts)
	require.NoError(t, err)
	assert.Equal(t, "`my col`", out)
}
