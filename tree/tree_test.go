package tree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectPreservesInsertionOrder(t *testing.T) {
	o := NewObject()
	o.Set("select", Literal{Value: "a"})
	o.Set("from", "users")
	o.Set("where", Null{})

	assert.Equal(t, []string{"select", "from", "where"}, o.Keys())

	// Re-setting an existing key keeps its original position.
	o.Set("select", Literal{Value: "b"})
	assert.Equal(t, []string{"select", "from", "where"}, o.Keys())
	v, ok := o.Get("select")
	require.True(t, ok)
	assert.Equal(t, Literal{Value: "b"}, v)
}

func TestObjectDelete(t *testing.T) {
	o := NewObject().Set("a", 1).Set("b", 2).Set("c", 3)
	o.Delete("b")
	assert.Equal(t, []string{"a", "c"}, o.Keys())
	_, ok := o.Get("b")
	assert.False(t, ok)

	v, ok := o.Get("c")
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestObjectOnly(t *testing.T) {
	o := NewObject().Set("where", "x")
	key, val, ok := o.Only()
	assert.True(t, ok)
	assert.Equal(t, "where", key)
	assert.Equal(t, "x", val)

	o.Set("and", "y")
	_, _, ok = o.Only()
	assert.False(t, ok)
}

func TestMarshalJSONPreservesKeyOrder(t *testing.T) {
	o := NewObject().Set("select", "a").Set("from", "t")
	data, err := json.Marshal(o)
	require.NoError(t, err)
	assert.Equal(t, `{"select":"a","from":"t"}`, string(data))
}

func TestUnmarshalJSONRoundTrip(t *testing.T) {
	in := `{"select":"a","from":{"value":"t"},"limit":{"literal":10}}`
	var o Object
	require.NoError(t, json.Unmarshal([]byte(in), &o))

	assert.Equal(t, []string{"select", "from", "limit"}, o.Keys())

	from, ok := o.Get("from")
	require.True(t, ok)
	fromObj, ok := from.(*Object)
	require.True(t, ok)
	v, _ := fromObj.Get("value")
	assert.Equal(t, "t", v)

	limit, ok := o.Get("limit")
	require.True(t, ok)
	lit, ok := limit.(*Object)
	require.True(t, ok)
	litVal, _ := lit.Get("literal")
	assert.Equal(t, json.Number("10"), litVal)
}

func TestEqual(t *testing.T) {
	a := NewObject().Set("select", "a").Set("from", "t")
	b := NewObject().Set("select", "a").Set("from", "t")
	assert.True(t, Equal(a, b))

	c := NewObject().Set("select", "a").Set("from", "u")
	assert.False(t, Equal(a, c))

	assert.True(t, Equal(Array{1, "x", Null{}}, Array{1, "x", Null{}}))
	assert.False(t, Equal(Array{1, "x"}, Array{1, "y"}))
}

func TestEqualLiteralSequence(t *testing.T) {
	// Adjacent string literals scrub to a Literal wrapping a []any sequence;
	// comparing two of these must not panic on the non-comparable slice.
	a := Literal{Value: Array{"a", "b"}}
	b := Literal{Value: Array{"a", "b"}}
	c := Literal{Value: Array{"a", "c"}}

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
	assert.False(t, Equal(a, Literal{Value: "a"}))
}

func TestEqualNullAndScalars(t *testing.T) {
	assert.True(t, Equal(Null{}, Null{}))
	assert.False(t, Equal(Null{}, nil))
	assert.True(t, Equal(1, 1))
	assert.False(t, Equal(1, 2))
	assert.False(t, Equal(1, "1"))
}
