// Package format renders a canonical tree value (as produced by package
// scrub) back into SQL text.
package format

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/freeeve/mosql/token"
	"github.com/freeeve/mosql/tree"
)

// Options controls formatting behavior.
type Options struct {
	Uppercase   bool              // Uppercase keywords
	Indent      string            // Indentation string (unused for single-line output)
	ANSIQuotes  bool              // double-quote identifiers when true, backtick when false
	ShouldQuote func(string) bool // overrides the default quoting predicate when set
}

// DefaultOptions are the default formatting options.
func DefaultOptions() Options {
	return Options{
		Uppercase:  true,
		Indent:     "  ",
		ANSIQuotes: true,
	}
}

// Format renders v, a canonical tree value, as SQL text.
func Format(v any, opts Options) (string, error) {
	f := &formatter{opts: opts}
	if err := f.formatStatement(v); err != nil {
		return "", err
	}
	return f.buf.String(), nil
}

type formatter struct {
	buf  bytes.Buffer
	opts Options
}

func (f *formatter) write(s string) { f.buf.WriteString(s) }

func (f *formatter) writeKeyword(kw string) {
	if f.opts.Uppercase {
		f.buf.WriteString(strings.ToUpper(kw))
	} else {
		f.buf.WriteString(strings.ToLower(kw))
	}
}

func (f *formatter) quoteChar() byte {
	if f.opts.ANSIQuotes {
		return '"'
	}
	return '`'
}

func (f *formatter) shouldQuote(id string) bool {
	if f.opts.ShouldQuote != nil {
		return f.opts.ShouldQuote(id)
	}
	return needsQuoting(id)
}

func (f *formatter) writeIdent(id string) {
	// Qualified identifiers (a.b.c) quote each part independently.
	parts := strings.Split(id, ".")
	for i, p := range parts {
		if i > 0 {
			f.write(".")
		}
		if p == "*" {
			f.write("*")
			continue
		}
		if f.shouldQuote(p) {
			q := f.quoteChar()
			f.buf.WriteByte(q)
			f.write(strings.ReplaceAll(p, string(q), string(q)+string(q)))
			f.buf.WriteByte(q)
		} else {
			f.write(p)
		}
	}
}

func needsQuoting(id string) bool {
	if needsQuotingNonKeyword(id) {
		return true
	}
	return token.IsKeyword(id)
}

func needsQuotingNonKeyword(id string) bool {
	if len(id) == 0 {
		return true
	}
	ch := id[0]
	if !((ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_') {
		return true
	}
	for i := 1; i < len(id); i++ {
		ch := id[i]
		if !((ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') ||
			(ch >= '0' && ch <= '9') || ch == '_' || ch == '$') {
			return true
		}
	}
	return false
}

// binarySymbols maps a canonical op name to its infix SQL operator text.
var binarySymbols = map[string]string{
	"eq": "=", "neq": "<>", "lt": "<", "gt": ">", "lte": "<=", "gte": ">=",
	"add": "+", "sub": "-", "mul": "*", "div": "/", "mod": "%",
	"concat": "||", "binary_and": "&", "binary_or": "|", "binary_xor": "^",
	"lshift": "<<", "rshift": ">>", "and": "AND", "or": "OR",
}

// binaryPrecedence mirrors the parser's precedence ladder (see
// parser/expression.go) so the formatter only parenthesizes a nested
// binary operator when its precedence is looser than its parent's.
var binaryPrecedence = map[string]int{
	"or": 1, "and": 2,
	"eq": 7, "neq": 7,
	"lt": 8, "gt": 8, "lte": 8, "gte": 8,
	"binary_and": 9, "binary_or": 9, "binary_xor": 9, "lshift": 9, "rshift": 9,
	"add": 10, "sub": 10,
	"mul": 12, "mod": 12, "div": 12,
	"concat": 13,
}

var unarySymbols = map[string]string{
	"neg": "-", "binary_not": "~", "pos": "+",
}

// kwargNames are call keys that attach as trailing modifiers rather than
// arguments of their own: ORDER BY / FILTER / OVER on a function call,
// and the direction/characters options of TRIM.
var kwargNames = map[string]bool{
	"orderby": true, "where": true, "over": true,
	"direction": true, "characters": true,
}

var statementKeys = []string{
	"select", "select_distinct", "union", "union_all", "intersect", "except",
	"insert", "replace", "update", "delete", "create_table", "create_view",
	"create_index", "alter_table", "drop_table", "drop_index", "truncate",
	"explain", "values",
}

func isStatementObject(o *tree.Object) bool {
	for _, k := range statementKeys {
		if _, ok := o.Get(k); ok {
			return true
		}
	}
	return false
}

// formatStatement dispatches a top-level (or sub-) statement value.
func (f *formatter) formatStatement(v any) error {
	o, ok := v.(*tree.Object)
	if !ok {
		return f.formatExpr(v)
	}

	if with, ok := o.Get("with"); ok && isStatementObject(o) {
		f.writeKeyword("WITH")
		f.write(" ")
		if err := f.formatWith(with); err != nil {
			return err
		}
		f.write(" ")
	}

	if _, ok := o.Get("select"); ok {
		return f.formatSelectBody(o, "select")
	}
	if _, ok := o.Get("select_distinct"); ok {
		return f.formatSelectBody(o, "select_distinct")
	}
	for _, op := range []string{"union", "union_all", "intersect", "except"} {
		if operands, ok := o.Get(op); ok {
			return f.formatSetOp(o, op, operands)
		}
	}
	if ins, ok := o.Get("insert"); ok {
		return f.formatInsert(ins, false)
	}
	if ins, ok := o.Get("replace"); ok {
		return f.formatInsert(ins, true)
	}
	if upd, ok := o.Get("update"); ok {
		return f.formatUpdate(upd)
	}
	if del, ok := o.Get("delete"); ok {
		return f.formatDelete(del)
	}
	if ct, ok := o.Get("create_table"); ok {
		return f.formatCreateTable(o, ct)
	}
	if cv, ok := o.Get("create_view"); ok {
		return f.formatCreateView(o, cv)
	}
	if ci, ok := o.Get("create_index"); ok {
		return f.formatCreateIndex(o, ci)
	}
	if at, ok := o.Get("alter_table"); ok {
		return f.formatAlterTable(at)
	}
	if dt, ok := o.Get("drop_table"); ok {
		return f.formatDropTable(o, dt)
	}
	if di, ok := o.Get("drop_index"); ok {
		return f.formatDropIndex(o, di)
	}
	if t, ok := o.Get("truncate"); ok {
		f.writeKeyword("TRUNCATE TABLE")
		f.write(" ")
		return f.formatTableList(t)
	}
	if ex, ok := o.Get("explain"); ok {
		f.writeKeyword("EXPLAIN")
		f.write(" ")
		return f.formatStatement(ex)
	}
	if rows, ok := o.Get("values"); ok {
		return f.formatValues(rows)
	}

	return f.formatExpr(o)
}

func (f *formatter) formatSelectBody(o *tree.Object, selectKey string) error {
	proj, _ := o.Get(selectKey)
	if selectKey == "select_distinct" {
		f.writeKeyword("SELECT DISTINCT")
	} else {
		f.writeKeyword("SELECT")
	}
	f.write(" ")
	if err := f.formatSelectList(proj); err != nil {
		return err
	}

	if from, ok := o.Get("from"); ok {
		f.write(" ")
		f.writeKeyword("FROM")
		f.write(" ")
		if err := f.formatFrom(from); err != nil {
			return err
		}
	}
	if where, ok := o.Get("where"); ok {
		f.write(" ")
		f.writeKeyword("WHERE")
		f.write(" ")
		if err := f.formatExpr(where); err != nil {
			return err
		}
	}
	if gb, ok := o.Get("groupby"); ok {
		f.write(" ")
		f.writeKeyword("GROUP BY")
		f.write(" ")
		if err := f.formatExprListValue(gb); err != nil {
			return err
		}
	}
	if having, ok := o.Get("having"); ok {
		f.write(" ")
		f.writeKeyword("HAVING")
		f.write(" ")
		if err := f.formatExpr(having); err != nil {
			return err
		}
	}
	if win, ok := o.Get("window"); ok {
		f.write(" ")
		f.writeKeyword("WINDOW")
		f.write(" ")
		if err := f.formatWindowDefs(win); err != nil {
			return err
		}
	}
	if ob, ok := o.Get("orderby"); ok {
		f.write(" ")
		f.writeKeyword("ORDER BY")
		f.write(" ")
		if err := f.formatOrderByList(ob); err != nil {
			return err
		}
	}
	if limit, ok := o.Get("limit"); ok {
		f.write(" ")
		f.writeKeyword("LIMIT")
		f.write(" ")
		if err := f.formatExpr(limit); err != nil {
			return err
		}
	}
	if offset, ok := o.Get("offset"); ok {
		f.write(" ")
		f.writeKeyword("OFFSET")
		f.write(" ")
		if err := f.formatExpr(offset); err != nil {
			return err
		}
	}
	return nil
}

var setOpKeywords = map[string]string{
	"union": "UNION", "union_all": "UNION ALL", "intersect": "INTERSECT", "except": "EXCEPT",
}

func (f *formatter) formatSetOp(o *tree.Object, op string, operands any) error {
	items, ok := operands.(tree.Array)
	if !ok {
		items = tree.Array{operands}
	}
	for i, item := range items {
		if i > 0 {
			f.write(" ")
			f.writeKeyword(setOpKeywords[op])
			f.write(" ")
		}
		if err := f.formatStatement(item); err != nil {
			return err
		}
	}
	if ob, ok := o.Get("orderby"); ok {
		f.write(" ")
		f.writeKeyword("ORDER BY")
		f.write(" ")
		if err := f.formatOrderByList(ob); err != nil {
			return err
		}
	}
	if limit, ok := o.Get("limit"); ok {
		f.write(" ")
		f.writeKeyword("LIMIT")
		f.write(" ")
		if err := f.formatExpr(limit); err != nil {
			return err
		}
	}
	return nil
}

func (f *formatter) formatWith(v any) error {
	obj, ok := v.(*tree.Object)
	if ok {
		if recursive, ok := obj.Get("recursive"); ok {
			f.writeKeyword("RECURSIVE")
			f.write(" ")
			return f.formatCTEList(recursive)
		}
	}
	return f.formatCTEList(v)
}

func (f *formatter) formatCTEList(v any) error {
	items, ok := v.(tree.Array)
	if !ok {
		items = tree.Array{v}
	}
	for i, item := range items {
		if i > 0 {
			f.write(", ")
		}
		cte, ok := item.(*tree.Object)
		if !ok {
			return fmt.Errorf("format: malformed CTE entry %T", item)
		}
		name, _ := cte.Get("name")
		f.writeIdent(toStr(name))
		if cols, ok := cte.Get("columns"); ok {
			f.write(" (")
			if err := f.formatIdentList(cols); err != nil {
				return err
			}
			f.write(")")
		}
		f.write(" ")
		f.writeKeyword("AS")
		f.write(" (")
		value, _ := cte.Get("value")
		if err := f.formatStatement(value); err != nil {
			return err
		}
		f.write(")")
	}
	return nil
}

func (f *formatter) formatIdentList(v any) error {
	items, ok := v.(tree.Array)
	if !ok {
		items = tree.Array{v}
	}
	for i, item := range items {
		if i > 0 {
			f.write(", ")
		}
		f.writeIdent(toStr(item))
	}
	return nil
}

func (f *formatter) formatSelectList(v any) error {
	items, ok := v.(tree.Array)
	if !ok {
		items = tree.Array{v}
	}
	for i, item := range items {
		if i > 0 {
			f.write(", ")
		}
		if err := f.formatSelectItem(item); err != nil {
			return err
		}
	}
	return nil
}

func (f *formatter) formatSelectItem(v any) error {
	if obj, ok := v.(*tree.Object); ok {
		if value, ok := obj.Get("value"); ok {
			if err := f.formatExpr(value); err != nil {
				return err
			}
			if name, ok := obj.Get("name"); ok {
				f.write(" ")
				f.writeKeyword("AS")
				f.write(" ")
				f.writeIdent(toStr(name))
			}
			return nil
		}
	}
	return f.formatExpr(v)
}

func (f *formatter) formatExprListValue(v any) error {
	items, ok := v.(tree.Array)
	if !ok {
		items = tree.Array{v}
	}
	for i, item := range items {
		if i > 0 {
			f.write(", ")
		}
		if err := f.formatExpr(item); err != nil {
			return err
		}
	}
	return nil
}

func (f *formatter) formatOrderByList(v any) error {
	items, ok := v.(tree.Array)
	if !ok {
		items = tree.Array{v}
	}
	for i, item := range items {
		if i > 0 {
			f.write(", ")
		}
		if obj, ok := item.(*tree.Object); ok {
			if value, ok := obj.Get("value"); ok {
				if err := f.formatExpr(value); err != nil {
					return err
				}
				if sortDir, ok := obj.Get("sort"); ok {
					f.write(" ")
					f.writeKeyword(toStr(sortDir))
				}
				if nulls, ok := obj.Get("nulls"); ok {
					f.write(" ")
					f.writeKeyword("NULLS")
					f.write(" ")
					f.writeKeyword(toStr(nulls))
				}
				continue
			}
		}
		if err := f.formatExpr(item); err != nil {
			return err
		}
	}
	return nil
}

func (f *formatter) formatWindowDefs(v any) error {
	items, ok := v.(tree.Array)
	if !ok {
		items = tree.Array{v}
	}
	for i, item := range items {
		if i > 0 {
			f.write(", ")
		}
		obj, ok := item.(*tree.Object)
		if !ok {
			return fmt.Errorf("format: malformed window def %T", item)
		}
		name, _ := obj.Get("name")
		f.writeIdent(toStr(name))
		f.write(" ")
		f.writeKeyword("AS")
		f.write(" (")
		value, _ := obj.Get("value")
		if err := f.formatWindowSpec(value); err != nil {
			return err
		}
		f.write(")")
	}
	return nil
}

func (f *formatter) formatWindowSpec(v any) error {
	obj, ok := v.(*tree.Object)
	if !ok {
		return fmt.Errorf("format: malformed window spec %T", v)
	}
	wrote := false
	if name, ok := obj.Get("window"); ok {
		f.writeIdent(toStr(name))
		wrote = true
	}
	if pb, ok := obj.Get("partitionby"); ok {
		if wrote {
			f.write(" ")
		}
		f.writeKeyword("PARTITION BY")
		f.write(" ")
		if err := f.formatExprListValue(pb); err != nil {
			return err
		}
		wrote = true
	}
	if ob, ok := obj.Get("orderby"); ok {
		if wrote {
			f.write(" ")
		}
		f.writeKeyword("ORDER BY")
		f.write(" ")
		if err := f.formatOrderByList(ob); err != nil {
			return err
		}
	}
	return nil
}

func (f *formatter) formatValues(v any) error {
	rows, ok := v.(tree.Array)
	if !ok {
		rows = tree.Array{v}
	}
	f.writeKeyword("VALUES")
	f.write(" ")
	for i, row := range rows {
		if i > 0 {
			f.write(", ")
		}
		f.write("(")
		if err := f.formatExprListValue(row); err != nil {
			return err
		}
		f.write(")")
	}
	return nil
}

var joinKeywordsRev = map[string]string{
	"join": "JOIN", "left join": "LEFT JOIN", "right join": "RIGHT JOIN",
	"full join": "FULL JOIN", "cross join": "CROSS JOIN",
	"natural join": "NATURAL JOIN", "natural left join": "NATURAL LEFT JOIN",
	"natural right join": "NATURAL RIGHT JOIN", "natural full join": "NATURAL FULL JOIN",
	"natural cross join": "NATURAL CROSS JOIN",
}

// findJoinKey returns the join keyword key present on obj, if any.
func findJoinKey(obj *tree.Object) (string, bool) {
	for key := range joinKeywordsRev {
		if _, ok := obj.Get(key); ok {
			return key, true
		}
	}
	return "", false
}

func (f *formatter) formatFrom(v any) error {
	items, ok := v.(tree.Array)
	if !ok {
		return f.formatFromItem(v)
	}

	isJoinChain := false
	for i, item := range items {
		if i == 0 {
			continue
		}
		if obj, ok := item.(*tree.Object); ok {
			if _, ok := findJoinKey(obj); ok {
				isJoinChain = true
				break
			}
		}
	}

	if !isJoinChain {
		for i, item := range items {
			if i > 0 {
				f.write(", ")
			}
			if err := f.formatFromItem(item); err != nil {
				return err
			}
		}
		return nil
	}

	if err := f.formatFromItem(items[0]); err != nil {
		return err
	}
	for _, item := range items[1:] {
		obj, ok := item.(*tree.Object)
		if !ok {
			return fmt.Errorf("format: malformed join entry %T", item)
		}
		joinKey, ok := findJoinKey(obj)
		if !ok {
			return fmt.Errorf("format: join entry missing join keyword: %v", obj.Keys())
		}
		f.write(" ")
		f.writeKeyword(joinKeywordsRev[joinKey])
		f.write(" ")
		right, _ := obj.Get(joinKey)
		if err := f.formatFromItem(right); err != nil {
			return err
		}
		if on, ok := obj.Get("on"); ok {
			f.write(" ")
			f.writeKeyword("ON")
			f.write(" ")
			if err := f.formatExpr(on); err != nil {
				return err
			}
		}
		if using, ok := obj.Get("using"); ok {
			f.write(" ")
			f.writeKeyword("USING")
			f.write(" (")
			if err := f.formatIdentList(using); err != nil {
				return err
			}
			f.write(")")
		}
	}
	return nil
}

func (f *formatter) formatTableList(v any) error {
	items, ok := v.(tree.Array)
	if !ok {
		items = tree.Array{v}
	}
	for i, item := range items {
		if i > 0 {
			f.write(", ")
		}
		if err := f.formatFromItem(item); err != nil {
			return err
		}
	}
	return nil
}

func (f *formatter) formatFromItem(v any) error {
	if s, ok := v.(string); ok {
		f.writeIdent(s)
		return nil
	}
	if obj, ok := v.(*tree.Object); ok {
		if _, ok := findJoinKey(obj); ok {
			// A nested join chain degenerated to a single entry (rare:
			// a FROM list with exactly one join).
			f.write("(")
			if err := f.formatFrom(tree.Array{obj}); err != nil {
				return err
			}
			f.write(")")
			return nil
		}
		if isStatementObject(obj) {
			f.write("(")
			if err := f.formatStatement(obj); err != nil {
				return err
			}
			f.write(")")
			return nil
		}
		if value, ok := obj.Get("value"); ok {
			if err := f.formatFromItem(value); err != nil {
				return err
			}
			if name, ok := obj.Get("name"); ok {
				f.write(" ")
				f.writeKeyword("AS")
				f.write(" ")
				f.writeIdent(toStr(name))
			}
			return nil
		}
	}
	return f.formatExpr(v)
}

// formatExpr renders a canonical expression value with no surrounding
// operator context.
func (f *formatter) formatExpr(v any) error {
	return f.formatExprPrec(v, 0)
}

// formatExprPrec renders v, parenthesizing a nested binary/unary form
// when its own precedence tier is looser than minPrec.
func (f *formatter) formatExprPrec(v any, minPrec int) error {
	switch n := v.(type) {
	case nil:
		f.writeKeyword("NULL")
		return nil
	case tree.Null:
		f.writeKeyword("NULL")
		return nil
	case string:
		f.writeIdent(n)
		return nil
	case bool:
		if n {
			f.writeKeyword("TRUE")
		} else {
			f.writeKeyword("FALSE")
		}
		return nil
	case int:
		f.write(strconv.Itoa(n))
		return nil
	case int64:
		f.write(strconv.FormatInt(n, 10))
		return nil
	case float64:
		f.write(strconv.FormatFloat(n, 'g', -1, 64))
		return nil
	case tree.Literal:
		return f.formatLiteral(n)
	case tree.Array:
		f.write("(")
		if err := f.formatExprListValue(n); err != nil {
			return err
		}
		f.write(")")
		return nil
	case *tree.Object:
		return f.formatCallObject(n, minPrec)
	default:
		return fmt.Errorf("format: unrecognized value %T", v)
	}
}

func (f *formatter) formatLiteral(l tree.Literal) error {
	if seq, ok := l.Value.([]any); ok {
		for i, v := range seq {
			if i > 0 {
				f.write(" ")
			}
			f.writeStringLiteral(toStr(v))
		}
		return nil
	}
	f.writeStringLiteral(fmt.Sprint(l.Value))
	return nil
}

func (f *formatter) writeStringLiteral(s string) {
	f.buf.WriteByte('\'')
	f.write(strings.ReplaceAll(s, "'", "''"))
	f.buf.WriteByte('\'')
}

func toStr(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func (f *formatter) formatCallObject(o *tree.Object, minPrec int) error {
	if isStatementObject(o) {
		return f.formatStatement(o)
	}

	keys := o.Keys()
	var primary string
	for _, k := range keys {
		if !kwargNames[k] {
			primary = k
			break
		}
	}
	if primary == "" {
		return fmt.Errorf("format: call object with no primary key: %v", keys)
	}
	args, _ := o.Get(primary)

	if sym, ok := binarySymbols[primary]; ok {
		return f.formatBinaryCall(primary, sym, args, minPrec)
	}
	if sym, ok := unarySymbols[primary]; ok {
		return f.formatUnaryCall(sym, args, minPrec)
	}

	switch primary {
	case "not":
		f.writeKeyword("NOT")
		f.write(" ")
		return f.formatExprPrec(args, 3)
	case "missing":
		return f.formatIsNull(args, true)
	case "exists":
		if isSubqueryShape(args) {
			f.writeKeyword("EXISTS")
			f.write(" (")
			if err := f.formatStatement(args); err != nil {
				return err
			}
			f.write(")")
			return nil
		}
		return f.formatIsNull(args, false)
	case "nexists":
		f.writeKeyword("NOT EXISTS")
		f.write(" (")
		if err := f.formatStatement(args); err != nil {
			return err
		}
		f.write(")")
		return nil
	case "in", "nin":
		return f.formatIn(args, primary == "nin")
	case "between", "not_between":
		return f.formatBetween(args, primary == "not_between")
	case "like", "ilike", "nlike", "nilike":
		return f.formatLike(primary, args)
	case "case":
		return f.formatCase(args)
	case "cast":
		return f.formatCast(args)
	case "distinct":
		f.writeKeyword("DISTINCT")
		f.write(" ")
		return f.formatExpr(args)
	case "substring":
		return f.formatSubstring(args)
	case "trim":
		return f.formatTrim(o, args)
	case "find":
		return f.formatFind(args)
	case "interval":
		return f.formatInterval(args)
	case "extract":
		return f.formatExtract(args)
	case "collate":
		return f.formatCollate(args)
	case "create_array":
		f.writeKeyword("ARRAY")
		f.write("[")
		if err := f.formatExprListValue(args); err != nil {
			return err
		}
		f.write("]")
		return nil
	case "get":
		return f.formatSubscript(args)
	case "param":
		return f.formatParam(args)
	default:
		return f.formatFuncCall(o, primary, args)
	}
}

func isSubqueryShape(v any) bool {
	o, ok := v.(*tree.Object)
	if !ok {
		return false
	}
	return isStatementObject(o)
}

func asArgs(v any) []any {
	if arr, ok := v.(tree.Array); ok {
		return arr
	}
	return []any{v}
}

func (f *formatter) formatBinaryCall(name, sym string, args any, minPrec int) error {
	items := asArgs(args)
	prec := binaryPrecedence[name]
	needParens := prec < minPrec
	if needParens {
		f.write("(")
	}
	for i, item := range items {
		if i > 0 {
			f.write(" ")
			f.writeKeyword(sym)
			f.write(" ")
		}
		childMin := prec
		if i == len(items)-1 && len(items) == 2 {
			childMin = prec + 1 // right operand of a non-chained binary op
		}
		if err := f.formatExprPrec(item, childMin); err != nil {
			return err
		}
	}
	if needParens {
		f.write(")")
	}
	return nil
}

func (f *formatter) formatUnaryCall(sym string, args any, minPrec int) error {
	const unaryPrec = 11
	needParens := unaryPrec < minPrec
	if needParens {
		f.write("(")
	}
	f.write(sym)
	if err := f.formatExprPrec(args, unaryPrec+1); err != nil {
		return err
	}
	if needParens {
		f.write(")")
	}
	return nil
}

func (f *formatter) formatIsNull(args any, isMissing bool) error {
	if err := f.formatExprPrec(args, 4); err != nil {
		return err
	}
	f.write(" ")
	if isMissing {
		f.writeKeyword("IS NULL")
	} else {
		f.writeKeyword("IS NOT NULL")
	}
	return nil
}

func (f *formatter) formatIn(args any, not bool) error {
	items := asArgs(args)
	if len(items) != 2 {
		return fmt.Errorf("format: in/nin expects 2 args, got %d", len(items))
	}
	if err := f.formatExprPrec(items[0], 5); err != nil {
		return err
	}
	f.write(" ")
	if not {
		f.writeKeyword("NOT IN")
	} else {
		f.writeKeyword("IN")
	}
	f.write(" ")
	if isSubqueryShape(items[1]) {
		f.write("(")
		if err := f.formatStatement(items[1]); err != nil {
			return err
		}
		f.write(")")
		return nil
	}
	f.write("(")
	if err := f.formatExprListValue(items[1]); err != nil {
		return err
	}
	f.write(")")
	return nil
}

func (f *formatter) formatBetween(args any, not bool) error {
	items := asArgs(args)
	if len(items) != 3 {
		return fmt.Errorf("format: between expects 3 args, got %d", len(items))
	}
	if err := f.formatExprPrec(items[0], 6); err != nil {
		return err
	}
	f.write(" ")
	if not {
		f.writeKeyword("NOT BETWEEN")
	} else {
		f.writeKeyword("BETWEEN")
	}
	f.write(" ")
	if err := f.formatExprPrec(items[1], 7); err != nil {
		return err
	}
	f.write(" ")
	f.writeKeyword("AND")
	f.write(" ")
	return f.formatExprPrec(items[2], 7)
}

func (f *formatter) formatLike(op string, args any) error {
	items := asArgs(args)
	if len(items) < 2 {
		return fmt.Errorf("format: %s expects at least 2 args, got %d", op, len(items))
	}
	if err := f.formatExprPrec(items[0], 4); err != nil {
		return err
	}
	f.write(" ")
	kw := map[string]string{"like": "LIKE", "ilike": "ILIKE", "nlike": "NOT LIKE", "nilike": "NOT ILIKE"}[op]
	f.writeKeyword(kw)
	f.write(" ")
	if err := f.formatExprPrec(items[1], 5); err != nil {
		return err
	}
	if len(items) > 2 {
		f.write(" ")
		f.writeKeyword("ESCAPE")
		f.write(" ")
		if err := f.formatExprPrec(items[2], 5); err != nil {
			return err
		}
	}
	return nil
}

func (f *formatter) formatCase(args any) error {
	items := asArgs(args)
	f.writeKeyword("CASE")
	for _, item := range items {
		obj, ok := item.(*tree.Object)
		if !ok {
			return fmt.Errorf("format: malformed case arm %T", item)
		}
		if els, ok := obj.Get("else"); ok {
			f.write(" ")
			f.writeKeyword("ELSE")
			f.write(" ")
			if err := f.formatExpr(els); err != nil {
				return err
			}
			continue
		}
		when, _ := obj.Get("when")
		then, _ := obj.Get("then")
		f.write(" ")
		f.writeKeyword("WHEN")
		f.write(" ")
		if err := f.formatExpr(when); err != nil {
			return err
		}
		f.write(" ")
		f.writeKeyword("THEN")
		f.write(" ")
		if err := f.formatExpr(then); err != nil {
			return err
		}
	}
	f.write(" ")
	f.writeKeyword("END")
	return nil
}

func (f *formatter) formatCast(args any) error {
	items := asArgs(args)
	if len(items) != 2 {
		return fmt.Errorf("format: cast expects 2 args, got %d", len(items))
	}
	f.writeKeyword("CAST")
	f.write("(")
	if err := f.formatExpr(items[0]); err != nil {
		return err
	}
	f.write(" ")
	f.writeKeyword("AS")
	f.write(" ")
	f.writeKeyword(toStr(items[1]))
	f.write(")")
	return nil
}

func (f *formatter) formatSubstring(args any) error {
	items := asArgs(args)
	f.writeKeyword("SUBSTRING")
	f.write("(")
	if err := f.formatExpr(items[0]); err != nil {
		return err
	}
	if len(items) > 1 {
		f.write(" ")
		f.writeKeyword("FROM")
		f.write(" ")
		if err := f.formatExpr(items[1]); err != nil {
			return err
		}
	}
	if len(items) > 2 {
		f.write(" ")
		f.writeKeyword("FOR")
		f.write(" ")
		if err := f.formatExpr(items[2]); err != nil {
			return err
		}
	}
	f.write(")")
	return nil
}

func (f *formatter) formatTrim(o *tree.Object, args any) error {
	f.writeKeyword("TRIM")
	f.write("(")
	if direction, ok := o.Get("direction"); ok {
		f.writeKeyword(toStr(direction))
		f.write(" ")
	}
	if chars, ok := o.Get("characters"); ok {
		if err := f.formatExpr(chars); err != nil {
			return err
		}
		f.write(" ")
		f.writeKeyword("FROM")
		f.write(" ")
	}
	if err := f.formatExpr(args); err != nil {
		return err
	}
	f.write(")")
	return nil
}

func (f *formatter) formatFind(args any) error {
	items := asArgs(args)
	if len(items) != 2 {
		return fmt.Errorf("format: find expects 2 args, got %d", len(items))
	}
	haystack, needle := items[0], items[1]
	f.writeKeyword("POSITION")
	f.write("(")
	if err := f.formatExpr(needle); err != nil {
		return err
	}
	f.write(" ")
	f.writeKeyword("IN")
	f.write(" ")
	if err := f.formatExpr(haystack); err != nil {
		return err
	}
	f.write(")")
	return nil
}

func (f *formatter) formatInterval(args any) error {
	items := asArgs(args)
	if len(items) != 2 {
		return fmt.Errorf("format: interval expects 2 args, got %d", len(items))
	}
	f.writeKeyword("INTERVAL")
	f.write(" ")
	if err := f.formatExpr(items[0]); err != nil {
		return err
	}
	f.write(" ")
	f.writeKeyword(toStr(items[1]))
	return nil
}

func (f *formatter) formatExtract(args any) error {
	items := asArgs(args)
	if len(items) != 2 {
		return fmt.Errorf("format: extract expects 2 args, got %d", len(items))
	}
	f.writeKeyword("EXTRACT")
	f.write("(")
	f.writeKeyword(toStr(items[0]))
	f.write(" ")
	f.writeKeyword("FROM")
	f.write(" ")
	if err := f.formatExpr(items[1]); err != nil {
		return err
	}
	f.write(")")
	return nil
}

func (f *formatter) formatCollate(args any) error {
	items := asArgs(args)
	if len(items) != 2 {
		return fmt.Errorf("format: collate expects 2 args, got %d", len(items))
	}
	if err := f.formatExprPrec(items[0], 14); err != nil {
		return err
	}
	f.write(" ")
	f.writeKeyword("COLLATE")
	f.write(" ")
	f.writeIdent(toStr(items[1]))
	return nil
}

func (f *formatter) formatSubscript(args any) error {
	items := asArgs(args)
	if len(items) != 2 {
		return fmt.Errorf("format: get expects 2 args, got %d", len(items))
	}
	if err := f.formatExprPrec(items[0], 14); err != nil {
		return err
	}
	f.write("[")
	if err := f.formatExpr(items[1]); err != nil {
		return err
	}
	f.write("]")
	return nil
}

func (f *formatter) formatParam(v any) error {
	switch p := v.(type) {
	case string:
		f.write(":" + p)
	case int:
		f.write("$" + strconv.Itoa(p))
	case int64:
		f.write("$" + strconv.FormatInt(p, 10))
	default:
		f.write(fmt.Sprintf("$%v", p))
	}
	return nil
}

func (f *formatter) formatFuncCall(o *tree.Object, name string, args any) error {
	f.write(name)
	f.write("(")
	switch a := args.(type) {
	case *tree.Object:
		if inner, ok := a.Get("distinct"); ok {
			f.writeKeyword("DISTINCT")
			f.write(" ")
			if err := f.formatExpr(inner); err != nil {
				return err
			}
		} else if err := f.formatExpr(a); err != nil {
			return err
		}
	default:
		if err := f.formatExprListValue(args); err != nil {
			return err
		}
	}
	f.write(")")

	if where, ok := o.Get("where"); ok {
		f.write(" ")
		f.writeKeyword("FILTER")
		f.write(" (")
		f.writeKeyword("WHERE")
		f.write(" ")
		if err := f.formatExpr(where); err != nil {
			return err
		}
		f.write(")")
	}
	if over, ok := o.Get("over"); ok {
		f.write(" ")
		f.writeKeyword("OVER")
		f.write(" (")
		if err := f.formatWindowSpec(over); err != nil {
			return err
		}
		f.write(")")
	}
	return nil
}

func (f *formatter) formatInsert(v any, replace bool) error {
	obj, ok := v.(*tree.Object)
	if !ok {
		return fmt.Errorf("format: malformed insert body %T", v)
	}
	if replace {
		f.writeKeyword("REPLACE INTO")
	} else {
		f.writeKeyword("INSERT INTO")
	}
	f.write(" ")
	table, _ := obj.Get("table")
	if err := f.formatFromItem(table); err != nil {
		return err
	}
	if cols, ok := obj.Get("columns"); ok {
		f.write(" (")
		if err := f.formatIdentList(cols); err != nil {
			return err
		}
		f.write(")")
	}
	f.write(" ")
	if query, ok := obj.Get("query"); ok {
		if err := f.formatStatement(query); err != nil {
			return err
		}
	} else if rows, ok := obj.Get("values"); ok {
		if err := f.formatValues(rows); err != nil {
			return err
		}
	}
	if ret, ok := obj.Get("returning"); ok {
		f.write(" ")
		f.writeKeyword("RETURNING")
		f.write(" ")
		if err := f.formatSelectList(ret); err != nil {
			return err
		}
	}
	return nil
}

func (f *formatter) formatUpdate(v any) error {
	obj, ok := v.(*tree.Object)
	if !ok {
		return fmt.Errorf("format: malformed update body %T", v)
	}
	f.writeKeyword("UPDATE")
	f.write(" ")
	table, _ := obj.Get("table")
	if err := f.formatFromItem(table); err != nil {
		return err
	}
	f.write(" ")
	f.writeKeyword("SET")
	f.write(" ")
	set, _ := obj.Get("set")
	setObj, ok := set.(*tree.Object)
	if !ok {
		return fmt.Errorf("format: malformed update set clause %T", set)
	}
	for i, col := range setObj.Keys() {
		if i > 0 {
			f.write(", ")
		}
		f.writeIdent(col)
		f.write(" = ")
		val, _ := setObj.Get(col)
		if err := f.formatExpr(val); err != nil {
			return err
		}
	}
	if where, ok := obj.Get("where"); ok {
		f.write(" ")
		f.writeKeyword("WHERE")
		f.write(" ")
		if err := f.formatExpr(where); err != nil {
			return err
		}
	}
	if ret, ok := obj.Get("returning"); ok {
		f.write(" ")
		f.writeKeyword("RETURNING")
		f.write(" ")
		if err := f.formatSelectList(ret); err != nil {
			return err
		}
	}
	return nil
}

func (f *formatter) formatDelete(v any) error {
	obj, ok := v.(*tree.Object)
	if !ok {
		return fmt.Errorf("format: malformed delete body %T", v)
	}
	f.writeKeyword("DELETE FROM")
	f.write(" ")
	table, _ := obj.Get("table")
	if err := f.formatFromItem(table); err != nil {
		return err
	}
	if where, ok := obj.Get("where"); ok {
		f.write(" ")
		f.writeKeyword("WHERE")
		f.write(" ")
		if err := f.formatExpr(where); err != nil {
			return err
		}
	}
	if ret, ok := obj.Get("returning"); ok {
		f.write(" ")
		f.writeKeyword("RETURNING")
		f.write(" ")
		if err := f.formatSelectList(ret); err != nil {
			return err
		}
	}
	return nil
}

func (f *formatter) formatCreateTable(outer *tree.Object, v any) error {
	obj, ok := v.(*tree.Object)
	if !ok {
		return fmt.Errorf("format: malformed create_table body %T", v)
	}
	f.writeKeyword("CREATE")
	f.write(" ")
	if temp, ok := obj.Get("temporary"); ok && toBool(temp) {
		f.writeKeyword("TEMPORARY")
		f.write(" ")
	}
	f.writeKeyword("TABLE")
	f.write(" ")
	if _, ok := outer.Get("if_not_exists"); ok {
		f.writeKeyword("IF NOT EXISTS")
		f.write(" ")
	}
	name, _ := obj.Get("name")
	if err := f.formatFromItem(name); err != nil {
		return err
	}
	if query, ok := obj.Get("query"); ok {
		f.write(" ")
		f.writeKeyword("AS")
		f.write(" ")
		return f.formatStatement(query)
	}
	cols, _ := obj.Get("columns")
	colItems, ok := cols.(tree.Array)
	if !ok {
		colItems = tree.Array{cols}
	}
	f.write(" (")
	for i, col := range colItems {
		if i > 0 {
			f.write(", ")
		}
		if err := f.formatColumnDef(col); err != nil {
			return err
		}
	}
	f.write(")")
	return nil
}

func (f *formatter) formatColumnDef(v any) error {
	obj, ok := v.(*tree.Object)
	if !ok {
		return fmt.Errorf("format: malformed column definition %T", v)
	}
	name, _ := obj.Get("name")
	f.writeIdent(toStr(name))
	f.write(" ")
	typ, _ := obj.Get("type")
	f.writeKeyword(toStr(typ))
	if pk, ok := obj.Get("primary_key"); ok && toBool(pk) {
		f.write(" ")
		f.writeKeyword("PRIMARY KEY")
	}
	if uniq, ok := obj.Get("unique"); ok && toBool(uniq) {
		f.write(" ")
		f.writeKeyword("UNIQUE")
	}
	if nullable, ok := obj.Get("nullable"); ok && !toBool(nullable) {
		f.write(" ")
		f.writeKeyword("NOT NULL")
	}
	if def, ok := obj.Get("default"); ok {
		f.write(" ")
		f.writeKeyword("DEFAULT")
		f.write(" ")
		if err := f.formatExpr(def); err != nil {
			return err
		}
	}
	if chk, ok := obj.Get("check"); ok {
		f.write(" ")
		f.writeKeyword("CHECK")
		f.write(" (")
		if err := f.formatExpr(chk); err != nil {
			return err
		}
		f.write(")")
	}
	return nil
}

func (f *formatter) formatCreateView(outer *tree.Object, v any) error {
	obj, ok := v.(*tree.Object)
	if !ok {
		return fmt.Errorf("format: malformed create_view body %T", v)
	}
	f.writeKeyword("CREATE")
	f.write(" ")
	if _, ok := outer.Get("replace"); ok {
		f.writeKeyword("OR REPLACE")
		f.write(" ")
	}
	f.writeKeyword("VIEW")
	f.write(" ")
	name, _ := obj.Get("name")
	if err := f.formatFromItem(name); err != nil {
		return err
	}
	if cols, ok := obj.Get("columns"); ok {
		f.write(" (")
		if err := f.formatIdentList(cols); err != nil {
			return err
		}
		f.write(")")
	}
	f.write(" ")
	f.writeKeyword("AS")
	f.write(" ")
	query, _ := obj.Get("query")
	return f.formatStatement(query)
}

func (f *formatter) formatCreateIndex(outer *tree.Object, v any) error {
	obj, ok := v.(*tree.Object)
	if !ok {
		return fmt.Errorf("format: malformed create_index body %T", v)
	}
	f.writeKeyword("CREATE")
	f.write(" ")
	if _, ok := outer.Get("unique"); ok {
		f.writeKeyword("UNIQUE")
		f.write(" ")
	}
	f.writeKeyword("INDEX")
	f.write(" ")
	if _, ok := outer.Get("if_not_exists"); ok {
		f.writeKeyword("IF NOT EXISTS")
		f.write(" ")
	}
	name, _ := obj.Get("name")
	f.writeIdent(toStr(name))
	f.write(" ")
	f.writeKeyword("ON")
	f.write(" ")
	table, _ := obj.Get("table")
	if err := f.formatFromItem(table); err != nil {
		return err
	}
	f.write(" (")
	cols, _ := obj.Get("columns")
	if err := f.formatExprListValue(cols); err != nil {
		return err
	}
	f.write(")")
	if where, ok := obj.Get("where"); ok {
		f.write(" ")
		f.writeKeyword("WHERE")
		f.write(" ")
		if err := f.formatExpr(where); err != nil {
			return err
		}
	}
	return nil
}

func (f *formatter) formatAlterTable(v any) error {
	obj, ok := v.(*tree.Object)
	if !ok {
		return fmt.Errorf("format: malformed alter_table body %T", v)
	}
	f.writeKeyword("ALTER TABLE")
	f.write(" ")
	table, _ := obj.Get("table")
	if err := f.formatFromItem(table); err != nil {
		return err
	}
	actions, ok := obj.Get("actions")
	if !ok {
		return nil
	}
	items, ok := actions.(tree.Array)
	if !ok {
		items = tree.Array{actions}
	}
	for i, item := range items {
		if i > 0 {
			f.write(",")
		}
		f.write(" ")
		if err := f.formatAlterAction(item); err != nil {
			return err
		}
	}
	return nil
}

func (f *formatter) formatAlterAction(v any) error {
	obj, ok := v.(*tree.Object)
	if !ok {
		return fmt.Errorf("format: malformed alter action %T", v)
	}
	key, action, ok := obj.Only()
	if !ok {
		return fmt.Errorf("format: alter action with %d keys", obj.Len())
	}
	switch key {
	case "add_column":
		f.writeKeyword("ADD COLUMN")
		f.write(" ")
		return f.formatColumnDef(action)
	case "drop_column":
		f.writeKeyword("DROP COLUMN")
		f.write(" ")
		f.writeIdent(toStr(action))
		return nil
	case "rename_column":
		ren, ok := action.(*tree.Object)
		if !ok {
			return fmt.Errorf("format: malformed rename_column %T", action)
		}
		oldName, _ := ren.Get("old")
		newName, _ := ren.Get("new")
		f.writeKeyword("RENAME COLUMN")
		f.write(" ")
		f.writeIdent(toStr(oldName))
		f.write(" ")
		f.writeKeyword("TO")
		f.write(" ")
		f.writeIdent(toStr(newName))
		return nil
	case "rename_to":
		f.writeKeyword("RENAME TO")
		f.write(" ")
		return f.formatFromItem(action)
	case "add_constraint":
		f.writeKeyword("ADD CONSTRAINT")
		f.write(" ")
		f.writeIdent(toStr(action))
		return nil
	case "drop_constraint":
		f.writeKeyword("DROP CONSTRAINT")
		f.write(" ")
		f.writeIdent(toStr(action))
		return nil
	case "modify_column":
		mod, ok := action.(*tree.Object)
		if !ok {
			return fmt.Errorf("format: malformed modify_column %T", action)
		}
		name, _ := mod.Get("name")
		f.writeKeyword("MODIFY COLUMN")
		f.write(" ")
		f.writeIdent(toStr(name))
		if typ, ok := mod.Get("type"); ok {
			f.write(" ")
			return f.formatColumnDef(typ)
		}
		return nil
	default:
		return fmt.Errorf("format: unrecognized alter action %q", key)
	}
}

func (f *formatter) formatDropTable(outer *tree.Object, v any) error {
	f.writeKeyword("DROP TABLE")
	f.write(" ")
	if _, ok := outer.Get("if_exists"); ok {
		f.writeKeyword("IF EXISTS")
		f.write(" ")
	}
	return f.formatTableList(v)
}

func (f *formatter) formatDropIndex(outer *tree.Object, v any) error {
	obj, ok := v.(*tree.Object)
	if !ok {
		return fmt.Errorf("format: malformed drop_index body %T", v)
	}
	f.writeKeyword("DROP INDEX")
	f.write(" ")
	if _, ok := outer.Get("if_exists"); ok {
		f.writeKeyword("IF EXISTS")
		f.write(" ")
	}
	name, _ := obj.Get("name")
	f.writeIdent(toStr(name))
	if table, ok := obj.Get("table"); ok {
		f.write(" ")
		f.writeKeyword("ON")
		f.write(" ")
		if err := f.formatFromItem(table); err != nil {
			return err
		}
	}
	return nil
}

func toBool(v any) bool {
	b, _ := v.(bool)
	return b
}
