package scrub

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/freeeve/mosql/ast"
	"github.com/freeeve/mosql/token"
	"github.com/freeeve/mosql/tree"
)

// binaryOpNames maps a binary operator token to its canonical op name.
// XOR has no tier in the precedence ladder (spec.md §4.2 folds it into
// AND's tier as a documented MySQL extension) but still needs a call
// name when it appears in a tree.
var binaryOpNames = map[token.Token]string{
	token.EQ:       "eq",
	token.NEQ:      "neq",
	token.LT:       "lt",
	token.GT:       "gt",
	token.LTE:      "lte",
	token.GTE:      "gte",
	token.PLUS:     "add",
	token.MINUS:    "sub",
	token.ASTERISK: "mul",
	token.SLASH:    "div",
	token.PERCENT:  "mod",
	token.CONCAT:   "concat",
	token.BITAND:   "binary_and",
	token.BITOR:    "binary_or",
	token.BITXOR:   "binary_xor",
	token.LSHIFT:   "lshift",
	token.RSHIFT:   "rshift",
	token.AND:      "and",
	token.OR:       "or",
	token.XOR:      "binary_xor",
}

// chainableOps collapses a left-leaning chain of the same operator
// (e.g. (a AND b) AND c) into one n-ary node, per scrub rule step 3's
// "sequence for n-ary" clause.
var chainableOps = map[token.Token]bool{
	token.AND:      true,
	token.OR:       true,
	token.PLUS:     true,
	token.ASTERISK: true,
}

// ScrubExpr walks a raw ast.Expr and produces its canonical tree value.
func (c *Context) ScrubExpr(e ast.Expr) (any, error) {
	if e == nil {
		return nil, nil
	}
	switch n := e.(type) {
	case *ast.ColName:
		return strings.Join(n.Parts, "."), nil

	case *ast.Literal:
		return c.scrubLiteral(n)

	case *ast.LiteralSeq:
		return scrubAdjacentStrings(n.Values), nil

	case *ast.StarExpr:
		if n.HasQualifier {
			if c.AllColumns != "" {
				return n.TableName + "." + c.AllColumns, nil
			}
			return n.TableName + ".*", nil
		}
		if c.AllColumns != "" {
			return c.AllColumns, nil
		}
		return "*", nil

	case *ast.BinaryExpr:
		return c.scrubBinary(n)

	case *ast.UnaryExpr:
		operand, err := c.ScrubExpr(n.Operand)
		if err != nil {
			return nil, err
		}
		name := unaryOpName(n.Op)
		return c.call(name, []any{operand}), nil

	case *ast.ParenExpr:
		return c.ScrubExpr(n.Expr)

	case *ast.FuncExpr:
		return c.scrubFunc(n)

	case *ast.CastExpr:
		inner, err := c.ScrubExpr(n.Expr)
		if err != nil {
			return nil, err
		}
		return c.call("cast", []any{inner, scrubDataType(n.Type)}), nil

	case *ast.CaseExpr:
		return c.scrubCase(n)

	case *ast.InExpr:
		return c.scrubIn(n)

	case *ast.BetweenExpr:
		return c.scrubBetween(n)

	case *ast.LikeExpr:
		return c.scrubLike(n)

	case *ast.IsExpr:
		return c.scrubIs(n)

	case *ast.Subquery:
		return c.ScrubStatement(n.Select)

	case *ast.ExistsExpr:
		sub, err := c.ScrubExpr(n.Subquery)
		if err != nil {
			return nil, err
		}
		if n.Not {
			return c.call("nexists", []any{sub}), nil
		}
		return c.call("exists", []any{sub}), nil

	case *ast.Param:
		return c.scrubParam(n), nil

	case *ast.ArrayExpr:
		elems, err := c.scrubExprList(n.Elements)
		if err != nil {
			return nil, err
		}
		return c.call("create_array", elems), nil

	case *ast.SubscriptExpr:
		base, err := c.ScrubExpr(n.Expr)
		if err != nil {
			return nil, err
		}
		idx, err := c.ScrubExpr(n.Index)
		if err != nil {
			return nil, err
		}
		return c.call("get", []any{base, idx}), nil

	case *ast.IntervalExpr:
		val, err := c.ScrubExpr(n.Value)
		if err != nil {
			return nil, err
		}
		return c.call("interval", []any{val, strings.ToLower(n.Unit)}), nil

	case *ast.ExtractExpr:
		src, err := c.ScrubExpr(n.Source)
		if err != nil {
			return nil, err
		}
		return c.call("extract", []any{strings.ToLower(n.Field), src}), nil

	case *ast.TrimExpr:
		return c.scrubTrim(n)

	case *ast.SubstringExpr:
		return c.scrubSubstring(n)

	case *ast.PositionExpr:
		needle, err := c.ScrubExpr(n.Needle)
		if err != nil {
			return nil, err
		}
		haystack, err := c.ScrubExpr(n.Haystack)
		if err != nil {
			return nil, err
		}
		return c.call("find", []any{haystack, needle}), nil

	case *ast.CollateExpr:
		inner, err := c.ScrubExpr(n.Expr)
		if err != nil {
			return nil, err
		}
		return c.call("collate", []any{inner, n.Collation}), nil

	default:
		return nil, errUnknownNode(e)
	}
}

func (c *Context) scrubLiteral(l *ast.Literal) (any, error) {
	switch l.Type {
	case ast.LiteralNull:
		return c.Null, nil
	case ast.LiteralInt:
		if iv, err := strconv.ParseInt(l.Value, 10, 64); err == nil {
			return iv, nil
		}
		return l.Value, nil
	case ast.LiteralFloat:
		if fv, err := strconv.ParseFloat(l.Value, 64); err == nil {
			return fv, nil
		}
		return l.Value, nil
	case ast.LiteralBool:
		return strings.EqualFold(l.Value, "true"), nil
	case ast.LiteralString, ast.LiteralBlob:
		return tree.Literal{Value: l.Value}, nil
	default:
		return tree.Literal{Value: l.Value}, nil
	}
}

// scrubAdjacentStrings implements the "adjacent literals concatenate
// into a sequence, not a string" boundary behavior for 'a' 'b' by
// wrapping N literal values into a single {"literal": [...]} node.
// Called from ScrubExpr for an *ast.LiteralSeq, the node the parser
// builds for a run of consecutive string literals.
func scrubAdjacentStrings(values []string) any {
	if len(values) == 1 {
		return tree.Literal{Value: values[0]}
	}
	seq := make(tree.Array, len(values))
	for i, v := range values {
		seq[i] = v
	}
	return tree.Literal{Value: seq}
}

func (c *Context) scrubBinary(n *ast.BinaryExpr) (any, error) {
	name, ok := binaryOpNames[n.Op]
	if !ok {
		return nil, errUnknownOp(n.Op)
	}

	var args []any
	if chainableOps[n.Op] {
		flattenChain(c, n, n.Op, &args)
	} else {
		left, err := c.ScrubExpr(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := c.ScrubExpr(n.Right)
		if err != nil {
			return nil, err
		}
		args = []any{left, right}
	}

	return c.call(name, args), nil
}

// flattenChain collapses a left-leaning run of the same chainable
// operator into one ordered argument sequence, e.g. (a AND b) AND c
// becomes {"and": [a, b, c]} rather than nested binary nodes.
func flattenChain(c *Context, n *ast.BinaryExpr, op token.Token, out *[]any) {
	if left, ok := n.Left.(*ast.BinaryExpr); ok && left.Op == op {
		flattenChain(c, left, op, out)
	} else {
		v, err := c.ScrubExpr(n.Left)
		if err == nil {
			*out = append(*out, v)
		}
	}
	if right, ok := n.Right.(*ast.BinaryExpr); ok && right.Op == op {
		flattenChain(c, right, op, out)
	} else {
		v, err := c.ScrubExpr(n.Right)
		if err == nil {
			*out = append(*out, v)
		}
	}
}

func unaryOpName(t token.Token) string {
	switch t {
	case token.MINUS:
		return "neg"
	case token.BITNOT:
		return "binary_not"
	case token.NOT:
		return "not"
	case token.PLUS:
		return "pos"
	default:
		return strings.ToLower(t.String())
	}
}

func (c *Context) scrubFunc(n *ast.FuncExpr) (any, error) {
	name := strings.ToLower(n.Name)

	if n.Distinct {
		args, err := c.scrubExprList(n.Args)
		if err != nil {
			return nil, err
		}
		inner := c.call(name, args)
		return c.call("distinct", []any{inner}), nil
	}

	args, err := c.scrubExprList(n.Args)
	if err != nil {
		return nil, err
	}
	call := c.call(name, args)

	if len(n.OrderBy) > 0 || n.Filter != nil || n.Over != nil {
		kwargs := tree.NewObject()
		if len(n.OrderBy) > 0 {
			ob, err := c.scrubOrderByList(n.OrderBy)
			if err != nil {
				return nil, err
			}
			kwargs.Set("orderby", ob)
		}
		if n.Filter != nil {
			f, err := c.ScrubExpr(n.Filter)
			if err != nil {
				return nil, err
			}
			kwargs.Set("where", f)
		}
		if n.Over != nil {
			over, err := c.scrubWindowSpec(n.Over)
			if err != nil {
				return nil, err
			}
			kwargs.Set("over", over)
		}
		obj, ok := call.(*tree.Object)
		if ok {
			for _, k := range kwargs.Keys() {
				v, _ := kwargs.Get(k)
				obj.Set(k, v)
			}
			return obj, nil
		}
	}
	return call, nil
}

func (c *Context) scrubExprList(exprs []ast.Expr) ([]any, error) {
	out := make([]any, 0, len(exprs))
	for _, e := range exprs {
		v, err := c.ScrubExpr(e)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (c *Context) scrubCase(n *ast.CaseExpr) (any, error) {
	obj := tree.NewObject()
	cases := make(tree.Array, 0, len(n.Whens))
	for _, w := range n.Whens {
		cond := w.Cond
		if n.Operand != nil {
			cond = &ast.BinaryExpr{Op: token.EQ, Left: n.Operand, Right: w.Cond}
		}
		condVal, err := c.ScrubExpr(cond)
		if err != nil {
			return nil, err
		}
		resVal, err := c.ScrubExpr(w.Result)
		if err != nil {
			return nil, err
		}
		whenObj := tree.NewObject()
		whenObj.Set("when", condVal)
		whenObj.Set("then", resVal)
		cases = append(cases, whenObj)
	}
	if n.Else != nil {
		elseVal, err := c.ScrubExpr(n.Else)
		if err != nil {
			return nil, err
		}
		cases = append(cases, tree.NewObject().Set("else", elseVal))
	}
	obj.Set("case", cases)
	return obj, nil
}

func (c *Context) scrubIn(n *ast.InExpr) (any, error) {
	left, err := c.ScrubExpr(n.Expr)
	if err != nil {
		return nil, err
	}
	var rhs any
	if n.Select != nil {
		rhs, err = c.ScrubStatement(n.Select)
		if err != nil {
			return nil, err
		}
	} else {
		vals, err := c.scrubExprList(n.Values)
		if err != nil {
			return nil, err
		}
		rhs = tree.Array(vals)
	}
	name := "in"
	if n.Not {
		name = "nin"
	}
	return c.call(name, []any{left, rhs}), nil
}

func (c *Context) scrubBetween(n *ast.BetweenExpr) (any, error) {
	expr, err := c.ScrubExpr(n.Expr)
	if err != nil {
		return nil, err
	}
	low, err := c.ScrubExpr(n.Low)
	if err != nil {
		return nil, err
	}
	high, err := c.ScrubExpr(n.High)
	if err != nil {
		return nil, err
	}
	name := "between"
	if n.Not {
		name = "not_between"
	}
	return c.call(name, []any{expr, low, high}), nil
}

func (c *Context) scrubLike(n *ast.LikeExpr) (any, error) {
	expr, err := c.ScrubExpr(n.Expr)
	if err != nil {
		return nil, err
	}
	pattern, err := c.ScrubExpr(n.Pattern)
	if err != nil {
		return nil, err
	}
	name := "like"
	if n.ILike {
		name = "ilike"
	}
	if n.Not {
		name = "n" + name
	}
	args := []any{expr, pattern}
	if n.Escape != nil {
		escVal, err := c.ScrubExpr(n.Escape)
		if err != nil {
			return nil, err
		}
		args = append(args, escVal)
	}
	return c.call(name, args), nil
}

func (c *Context) scrubIs(n *ast.IsExpr) (any, error) {
	expr, err := c.ScrubExpr(n.Expr)
	if err != nil {
		return nil, err
	}
	switch n.What {
	case ast.IsNull:
		if n.Not {
			return c.call("exists", []any{expr}), nil
		}
		return c.call("missing", []any{expr}), nil
	case ast.IsTrue:
		name := "eq"
		if n.Not {
			name = "neq"
		}
		return c.call(name, []any{expr, true}), nil
	case ast.IsFalse:
		name := "eq"
		if n.Not {
			name = "neq"
		}
		return c.call(name, []any{expr, false}), nil
	default: // IsUnknown
		return c.call("missing", []any{expr}), nil
	}
}

func (c *Context) scrubParam(n *ast.Param) any {
	switch n.Type {
	case ast.ParamColon, ast.ParamAt:
		return tree.NewObject().Set("param", n.Name)
	default: // ParamQuestion, ParamDollar
		return tree.NewObject().Set("param", n.Index)
	}
}

func (c *Context) scrubTrim(n *ast.TrimExpr) (any, error) {
	expr, err := c.ScrubExpr(n.Expr)
	if err != nil {
		return nil, err
	}
	kwargs := tree.NewObject()
	switch n.TrimType {
	case ast.TrimLeading:
		kwargs.Set("direction", "leading")
	case ast.TrimTrailing:
		kwargs.Set("direction", "trailing")
	}
	if n.TrimChar != nil {
		chars, err := c.ScrubExpr(n.TrimChar)
		if err != nil {
			return nil, err
		}
		kwargs.Set("characters", chars)
	}
	return c.callKw("trim", []any{expr}, kwargs), nil
}

func (c *Context) scrubSubstring(n *ast.SubstringExpr) (any, error) {
	expr, err := c.ScrubExpr(n.Expr)
	if err != nil {
		return nil, err
	}
	args := []any{expr}
	if n.From != nil {
		from, err := c.ScrubExpr(n.From)
		if err != nil {
			return nil, err
		}
		args = append(args, from)
	}
	if n.For != nil {
		forLen, err := c.ScrubExpr(n.For)
		if err != nil {
			return nil, err
		}
		args = append(args, forLen)
	}
	return c.call("substring", args), nil
}

func scrubDataType(t *ast.DataType) any {
	if t == nil {
		return nil
	}
	return strings.ToLower(t.Name)
}

func errUnknownNode(n any) error {
	return fmt.Errorf("scrub: unrecognized node %T", n)
}

func errUnknownOp(t token.Token) error {
	return fmt.Errorf("scrub: unrecognized operator %v", t)
}
