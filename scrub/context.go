// Package scrub normalizes the raw ast tree produced by package parser
// into the canonical tree shape defined in package tree.
package scrub

import "github.com/freeeve/mosql/tree"

// CallShape decides how an operator/function call serializes: the
// simple form {op: args} or the verbose {op, args, kwargs} form. It is
// the single point where that choice is made; every call node in the
// walk routes through the Context's configured shape.
type CallShape func(op string, args any, kwargs *tree.Object) any

// SimpleOp is the default CallShape: {"op": args}. It is the shape
// responsible for the degenerate-argument rules from step 3 of the
// scrub walk: a single argument is unwrapped from its one-element
// sequence, and zero arguments become an empty mapping.
func SimpleOp(op string, args any, kwargs *tree.Object) any {
	shaped := degenerateArgs(args)
	obj := tree.NewObject()
	if kwargs != nil && kwargs.Len() > 0 {
		merged := tree.NewObject()
		merged.Set(op, shaped)
		for _, k := range kwargs.Keys() {
			v, _ := kwargs.Get(k)
			merged.Set(k, v)
		}
		return merged
	}
	obj.Set(op, shaped)
	return obj
}

// degenerateArgs unwraps a zero- or one-element argument list per
// invariant 4: length zero becomes an empty mapping, length one
// becomes the bare value, anything longer is left as a sequence.
func degenerateArgs(args any) any {
	arr, ok := args.(tree.Array)
	if !ok {
		return args
	}
	switch len(arr) {
	case 0:
		return tree.NewObject()
	case 1:
		return arr[0]
	default:
		return arr
	}
}

// NormalOp is the verbose CallShape: {"op": name, "args": args, "kwargs":
// kwargs}. Unlike SimpleOp it never degenerates the argument list — args
// is always the full ordered sequence, per invariant 4's "unless the
// caller selected normal_op mode" carve-out.
func NormalOp(op string, args any, kwargs *tree.Object) any {
	obj := tree.NewObject()
	obj.Set("op", op)
	obj.Set("args", args)
	if kwargs == nil {
		kwargs = tree.NewObject()
	}
	obj.Set("kwargs", kwargs)
	return obj
}

// Context is the per-parse scratch state threaded through a scrub walk:
// the null sentinel to substitute for SQL NULL, the call shape to
// build operator/function nodes with, and the all_columns override for
// projection stars. Unlike the source this replaces, Context carries no
// mutable null-location list — the scrubber has the sentinel in hand
// from the moment it visits a NULL literal, so it substitutes directly
// instead of recording a location to patch later.
type Context struct {
	Null       any
	Calls      CallShape
	AllColumns string

	guarding bool // true while the top-level ScrubStatement call's size guard is active
}

// NewContext returns a Context configured with the default null
// sentinel ({"null": {}}) and the simple call shape.
func NewContext() *Context {
	return &Context{
		Null:  tree.NewObject().Set("null", tree.NewObject()),
		Calls: SimpleOp,
	}
}

// call builds a call node for op over args. The full ordered argument
// list is handed to the configured CallShape unchanged — degenerating
// it to a bare value or an empty mapping is each shape's own call to
// make (SimpleOp does; NormalOp doesn't), not a decision made here.
func (c *Context) call(op string, args []any) any {
	return c.callKw(op, args, nil)
}

func (c *Context) callKw(op string, args []any, kwargs *tree.Object) any {
	shape := c.Calls
	if shape == nil {
		shape = SimpleOp
	}
	return shape(op, tree.Array(args), kwargs)
}
