package scrub

import (
	"strings"

	"github.com/freeeve/mosql/ast"
	"github.com/freeeve/mosql/tree"
)

// ScrubStatement walks a raw ast.Statement and produces its canonical
// tree value. Top-level SELECTs and set operations return a select-
// clause body mapping (spec.md §3's "Select clause body"); DML/DDL
// statements return a mapping keyed by their statement name.
func (c *Context) ScrubStatement(s ast.Statement) (any, error) {
	if s == nil {
		return nil, nil
	}
	if !c.guarding {
		c.guarding = true
		defer func() { c.guarding = false }()
		if n, over := sizeGuard(s); over {
			return nil, errTooLarge(s, n)
		}
	}
	switch n := s.(type) {
	case *ast.SelectStmt:
		return c.scrubSelect(n)
	case *ast.SetOp:
		return c.scrubSetOp(n)
	case *ast.InsertStmt:
		return c.scrubInsert(n)
	case *ast.UpdateStmt:
		return c.scrubUpdate(n)
	case *ast.DeleteStmt:
		return c.scrubDelete(n)
	case *ast.CreateTableStmt:
		return c.scrubCreateTable(n)
	case *ast.CreateViewStmt:
		return c.scrubCreateView(n)
	case *ast.CreateIndexStmt:
		return c.scrubCreateIndex(n)
	case *ast.AlterTableStmt:
		return c.scrubAlterTable(n)
	case *ast.DropTableStmt:
		return c.scrubDropTable(n)
	case *ast.DropIndexStmt:
		return c.scrubDropIndex(n)
	case *ast.TruncateStmt:
		return c.scrubTruncate(n)
	case *ast.ExplainStmt:
		return c.scrubExplain(n)
	case *ast.ValuesStmt:
		return c.scrubValues(n)
	default:
		return nil, errUnknownNode(s)
	}
}

func (c *Context) scrubSelect(n *ast.SelectStmt) (any, error) {
	obj := tree.NewObject()

	if n.With != nil {
		with, err := c.scrubWith(n.With)
		if err != nil {
			return nil, err
		}
		obj.Set("with", with)
	}

	proj, err := c.scrubSelectList(n.Columns)
	if err != nil {
		return nil, err
	}
	if n.Distinct {
		obj.Set("select_distinct", proj)
	} else {
		obj.Set("select", proj)
	}

	if n.From != nil {
		from, err := c.scrubTableExpr(n.From)
		if err != nil {
			return nil, err
		}
		obj.Set("from", from)
	}

	if n.Where != nil {
		where, err := c.ScrubExpr(n.Where)
		if err != nil {
			return nil, err
		}
		obj.Set("where", where)
	}

	if len(n.GroupBy) > 0 {
		groups, err := c.scrubExprList(n.GroupBy)
		if err != nil {
			return nil, err
		}
		obj.Set("groupby", degenerate(groups))
	}

	if n.Having != nil {
		having, err := c.ScrubExpr(n.Having)
		if err != nil {
			return nil, err
		}
		obj.Set("having", having)
	}

	if len(n.WindowDefs) > 0 {
		windows, err := c.scrubWindowDefs(n.WindowDefs)
		if err != nil {
			return nil, err
		}
		obj.Set("window", windows)
	}

	if len(n.OrderBy) > 0 {
		ob, err := c.scrubOrderByList(n.OrderBy)
		if err != nil {
			return nil, err
		}
		obj.Set("orderby", ob)
	}

	if n.Limit != nil {
		if n.Limit.Count != nil {
			count, err := c.ScrubExpr(n.Limit.Count)
			if err != nil {
				return nil, err
			}
			obj.Set("limit", count)
		}
		if n.Limit.Offset != nil {
			offset, err := c.ScrubExpr(n.Limit.Offset)
			if err != nil {
				return nil, err
			}
			obj.Set("offset", offset)
		}
	}

	return obj, nil
}

// setOpName maps ast.SetOpType to its canonical clause key, with the
// UNION-ALL split spec.md §4.3 documents separately from plain UNION.
func setOpName(op ast.SetOpType, all bool) string {
	switch op {
	case ast.Union:
		if all {
			return "union_all"
		}
		return "union"
	case ast.Intersect:
		return "intersect"
	case ast.Except:
		return "except"
	default:
		return "union"
	}
}

// scrubSetOp flattens a left-associative chain of same-kind set
// operations into one n-ary mapping, per spec.md §4.3's "nested
// same-kind operations flatten".
func (c *Context) scrubSetOp(n *ast.SetOp) (any, error) {
	name := setOpName(n.Type, n.All)
	var operands []any
	if err := c.flattenSetOp(n, name, &operands); err != nil {
		return nil, err
	}

	obj := tree.NewObject()
	obj.Set(name, tree.Array(operands))

	if n.With != nil {
		with, err := c.scrubWith(n.With)
		if err != nil {
			return nil, err
		}
		obj.Set("with", with)
	}
	if len(n.OrderBy) > 0 {
		ob, err := c.scrubOrderByList(n.OrderBy)
		if err != nil {
			return nil, err
		}
		obj.Set("orderby", ob)
	}
	if n.Limit != nil && n.Limit.Count != nil {
		count, err := c.ScrubExpr(n.Limit.Count)
		if err != nil {
			return nil, err
		}
		obj.Set("limit", count)
	}
	return obj, nil
}

func (c *Context) flattenSetOp(s ast.Statement, name string, out *[]any) error {
	if so, ok := s.(*ast.SetOp); ok && so.With == nil && setOpName(so.Type, so.All) == name {
		if err := c.flattenSetOp(so.Left, name, out); err != nil {
			return err
		}
		if err := c.flattenSetOp(so.Right, name, out); err != nil {
			return err
		}
		return nil
	}
	v, err := c.ScrubStatement(s)
	if err != nil {
		return err
	}
	*out = append(*out, v)
	return nil
}

func (c *Context) scrubWith(w *ast.WithClause) (any, error) {
	ctes := make(tree.Array, 0, len(w.CTEs))
	for _, cte := range w.CTEs {
		query, err := c.ScrubStatement(cte.Query)
		if err != nil {
			return nil, err
		}
		obj := tree.NewObject()
		obj.Set("name", cte.Name)
		obj.Set("value", query)
		if len(cte.Columns) > 0 {
			obj.Set("columns", stringsToAny(cte.Columns))
		}
		ctes = append(ctes, obj)
	}
	if w.Recursive {
		return tree.NewObject().Set("recursive", tree.Array(ctes)), nil
	}
	return degenerateArr(ctes), nil
}

func (c *Context) scrubSelectList(cols []ast.SelectExpr) (any, error) {
	items := make([]any, 0, len(cols))
	for _, col := range cols {
		switch e := col.(type) {
		case *ast.StarExpr:
			v, err := c.ScrubExpr(e)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		case *ast.AliasedExpr:
			v, err := c.ScrubExpr(e.Expr)
			if err != nil {
				return nil, err
			}
			if e.Alias == "" {
				items = append(items, tree.NewObject().Set("value", v))
				continue
			}
			obj := tree.NewObject()
			obj.Set("value", v)
			obj.Set("name", e.Alias)
			items = append(items, obj)
		default:
			return nil, errUnknownNode(col)
		}
	}
	return degenerate(items), nil
}

func (c *Context) scrubTableExpr(t ast.TableExpr) (any, error) {
	if t == nil {
		return nil, nil
	}
	switch n := t.(type) {
	case *ast.TableName:
		return strings.Join(n.Parts, "."), nil

	case *ast.AliasedTableExpr:
		inner, err := c.scrubTableExpr(n.Expr)
		if err != nil {
			return nil, err
		}
		if n.Alias == "" {
			return inner, nil
		}
		obj := tree.NewObject()
		obj.Set("value", inner)
		obj.Set("name", n.Alias)
		return obj, nil

	case *ast.Subquery:
		return c.ScrubStatement(n.Select)

	case *ast.JoinExpr:
		items, err := c.flattenJoinChain(n)
		if err != nil {
			return nil, err
		}
		return degenerate(items), nil

	case *ast.ParenTableExpr:
		return c.scrubTableExpr(n.Expr)

	case *ast.TableList:
		items := make([]any, 0, len(n.Tables))
		for _, tbl := range n.Tables {
			v, err := c.scrubTableExpr(tbl)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return degenerate(items), nil

	case *ast.ValuesStmt:
		return c.scrubValues(n)

	default:
		return nil, errUnknownNode(t)
	}
}

var joinClauseNames = map[ast.JoinType]string{
	ast.JoinInner: "join",
	ast.JoinLeft:  "left join",
	ast.JoinRight: "right join",
	ast.JoinFull:  "full join",
	ast.JoinCross: "cross join",
}

// flattenJoinChain unrolls a left-leaning JoinExpr tree into the FROM
// list shape spec.md §4.3 describes: the base table/subquery followed
// by one {"<join_kind>": from_item, "on"/"using": ...} entry per join,
// in source order.
func (c *Context) flattenJoinChain(n *ast.JoinExpr) ([]any, error) {
	var items []any
	if leftJoin, ok := n.Left.(*ast.JoinExpr); ok {
		flat, err := c.flattenJoinChain(leftJoin)
		if err != nil {
			return nil, err
		}
		items = append(items, flat...)
	} else {
		left, err := c.scrubTableExpr(n.Left)
		if err != nil {
			return nil, err
		}
		items = append(items, left)
	}

	right, err := c.scrubTableExpr(n.Right)
	if err != nil {
		return nil, err
	}

	name := joinClauseNames[n.Type]
	if n.Natural {
		name = "natural " + name
	}

	joinObj := tree.NewObject()
	joinObj.Set(name, right)
	if n.On != nil {
		on, err := c.ScrubExpr(n.On)
		if err != nil {
			return nil, err
		}
		joinObj.Set("on", on)
	}
	if len(n.Using) > 0 {
		joinObj.Set("using", stringsToAny(n.Using))
	}
	items = append(items, joinObj)
	return items, nil
}

func (c *Context) scrubOrderByList(obs []*ast.OrderByExpr) (any, error) {
	items := make([]any, 0, len(obs))
	for _, ob := range obs {
		v, err := c.ScrubExpr(ob.Expr)
		if err != nil {
			return nil, err
		}
		if !ob.Desc && ob.NullsFirst == nil {
			items = append(items, v)
			continue
		}
		obj := tree.NewObject()
		obj.Set("value", v)
		if ob.Desc {
			obj.Set("sort", "desc")
		}
		if ob.NullsFirst != nil {
			if *ob.NullsFirst {
				obj.Set("nulls", "first")
			} else {
				obj.Set("nulls", "last")
			}
		}
		items = append(items, obj)
	}
	return degenerate(items), nil
}

func (c *Context) scrubWindowDefs(defs []*ast.WindowDef) (any, error) {
	items := make([]any, 0, len(defs))
	for _, d := range defs {
		spec, err := c.scrubWindowSpec(d.Spec)
		if err != nil {
			return nil, err
		}
		obj := tree.NewObject()
		obj.Set("name", d.Name)
		obj.Set("value", spec)
		items = append(items, obj)
	}
	return degenerate(items), nil
}

func (c *Context) scrubWindowSpec(w *ast.WindowSpec) (any, error) {
	obj := tree.NewObject()
	if w.Name != "" {
		obj.Set("window", w.Name)
	}
	if len(w.PartitionBy) > 0 {
		parts, err := c.scrubExprList(w.PartitionBy)
		if err != nil {
			return nil, err
		}
		obj.Set("partitionby", degenerate(parts))
	}
	if len(w.OrderBy) > 0 {
		ob, err := c.scrubOrderByList(w.OrderBy)
		if err != nil {
			return nil, err
		}
		obj.Set("orderby", ob)
	}
	return obj, nil
}

func (c *Context) scrubValues(n *ast.ValuesStmt) (any, error) {
	rows := make(tree.Array, 0, len(n.Rows))
	for _, row := range n.Rows {
		vals, err := c.scrubExprList(row)
		if err != nil {
			return nil, err
		}
		rows = append(rows, tree.Array(vals))
	}
	return tree.NewObject().Set("values", rows), nil
}

func (c *Context) scrubInsert(n *ast.InsertStmt) (any, error) {
	obj := tree.NewObject()
	table, err := c.scrubTableExpr(n.Table)
	if err != nil {
		return nil, err
	}

	insertObj := tree.NewObject()
	insertObj.Set("table", table)
	if len(n.Columns) > 0 {
		cols := make([]any, len(n.Columns))
		for i, col := range n.Columns {
			cols[i] = strings.Join(col.Parts, ".")
		}
		insertObj.Set("columns", cols)
	}
	if n.Select != nil {
		sel, err := c.ScrubStatement(n.Select)
		if err != nil {
			return nil, err
		}
		insertObj.Set("query", sel)
	} else {
		rows := make(tree.Array, 0, len(n.Values))
		for _, row := range n.Values {
			vals, err := c.scrubExprList(row)
			if err != nil {
				return nil, err
			}
			rows = append(rows, tree.Array(vals))
		}
		insertObj.Set("values", rows)
	}
	if len(n.Returning) > 0 {
		ret, err := c.scrubSelectList(n.Returning)
		if err != nil {
			return nil, err
		}
		insertObj.Set("returning", ret)
	}

	key := "insert"
	if n.Replace {
		key = "replace"
	}
	obj.Set(key, insertObj)
	return obj, nil
}

func (c *Context) scrubUpdate(n *ast.UpdateStmt) (any, error) {
	table, err := c.scrubTableExpr(n.Table)
	if err != nil {
		return nil, err
	}
	sets, err := c.scrubUpdateExprs(n.Set)
	if err != nil {
		return nil, err
	}

	updateObj := tree.NewObject()
	updateObj.Set("table", table)
	updateObj.Set("set", sets)
	if n.Where != nil {
		where, err := c.ScrubExpr(n.Where)
		if err != nil {
			return nil, err
		}
		updateObj.Set("where", where)
	}
	if len(n.Returning) > 0 {
		ret, err := c.scrubSelectList(n.Returning)
		if err != nil {
			return nil, err
		}
		updateObj.Set("returning", ret)
	}
	return tree.NewObject().Set("update", updateObj), nil
}

func (c *Context) scrubUpdateExprs(ues []*ast.UpdateExpr) (any, error) {
	obj := tree.NewObject()
	for _, ue := range ues {
		v, err := c.ScrubExpr(ue.Expr)
		if err != nil {
			return nil, err
		}
		obj.Set(strings.Join(ue.Column.Parts, "."), v)
	}
	return obj, nil
}

func (c *Context) scrubDelete(n *ast.DeleteStmt) (any, error) {
	table, err := c.scrubTableExpr(n.Table)
	if err != nil {
		return nil, err
	}
	deleteObj := tree.NewObject()
	deleteObj.Set("table", table)
	if n.Where != nil {
		where, err := c.ScrubExpr(n.Where)
		if err != nil {
			return nil, err
		}
		deleteObj.Set("where", where)
	}
	if len(n.Returning) > 0 {
		ret, err := c.scrubSelectList(n.Returning)
		if err != nil {
			return nil, err
		}
		deleteObj.Set("returning", ret)
	}
	return tree.NewObject().Set("delete", deleteObj), nil
}

func (c *Context) scrubCreateTable(n *ast.CreateTableStmt) (any, error) {
	table, err := c.scrubTableExpr(n.Table)
	if err != nil {
		return nil, err
	}
	createObj := tree.NewObject()
	createObj.Set("name", table)
	if n.Temporary {
		createObj.Set("temporary", true)
	}

	if n.As != nil {
		query, err := c.ScrubStatement(n.As)
		if err != nil {
			return nil, err
		}
		createObj.Set("query", query)
	} else {
		cols := make(tree.Array, 0, len(n.Columns))
		for _, col := range n.Columns {
			colObj, err := c.scrubColumnDef(col)
			if err != nil {
				return nil, err
			}
			cols = append(cols, colObj)
		}
		createObj.Set("columns", cols)
	}

	obj := tree.NewObject()
	obj.Set("create_table", createObj)
	if n.IfNotExists {
		obj.Set("if_not_exists", true)
	}
	return obj, nil
}

func (c *Context) scrubColumnDef(col *ast.ColumnDef) (any, error) {
	obj := tree.NewObject()
	obj.Set("name", col.Name)
	obj.Set("type", scrubDataType(col.Type))
	for _, cons := range col.Constraints {
		switch cons.Type {
		case ast.ConstraintPrimaryKey:
			obj.Set("primary_key", true)
		case ast.ConstraintUnique:
			obj.Set("unique", true)
		case ast.ConstraintNotNull:
			obj.Set("nullable", false)
		case ast.ConstraintDefault:
			d, err := c.ScrubExpr(cons.Default)
			if err != nil {
				return nil, err
			}
			obj.Set("default", d)
		case ast.ConstraintCheck:
			ch, err := c.ScrubExpr(cons.Check)
			if err != nil {
				return nil, err
			}
			obj.Set("check", ch)
		}
	}
	return obj, nil
}

func (c *Context) scrubCreateView(n *ast.CreateViewStmt) (any, error) {
	name, err := c.scrubTableExpr(n.Name)
	if err != nil {
		return nil, err
	}
	query, err := c.ScrubStatement(n.Query)
	if err != nil {
		return nil, err
	}
	viewObj := tree.NewObject()
	viewObj.Set("name", name)
	if len(n.Columns) > 0 {
		viewObj.Set("columns", stringsToAny(n.Columns))
	}
	viewObj.Set("query", query)

	obj := tree.NewObject()
	obj.Set("create_view", viewObj)
	if n.Replace {
		obj.Set("replace", true)
	}
	return obj, nil
}

func (c *Context) scrubCreateIndex(n *ast.CreateIndexStmt) (any, error) {
	table, err := c.scrubTableExpr(n.Table)
	if err != nil {
		return nil, err
	}
	cols := make([]any, 0, len(n.Columns))
	for _, col := range n.Columns {
		if col.Expr != nil {
			v, err := c.ScrubExpr(col.Expr)
			if err != nil {
				return nil, err
			}
			cols = append(cols, v)
			continue
		}
		cols = append(cols, col.Column)
	}

	indexObj := tree.NewObject()
	indexObj.Set("name", n.Name)
	indexObj.Set("table", table)
	indexObj.Set("columns", degenerate(cols))
	if n.Where != nil {
		where, err := c.ScrubExpr(n.Where)
		if err != nil {
			return nil, err
		}
		indexObj.Set("where", where)
	}

	obj := tree.NewObject()
	obj.Set("create_index", indexObj)
	if n.Unique {
		obj.Set("unique", true)
	}
	if n.IfNotExists {
		obj.Set("if_not_exists", true)
	}
	return obj, nil
}

func (c *Context) scrubAlterTable(n *ast.AlterTableStmt) (any, error) {
	table, err := c.scrubTableExpr(n.Table)
	if err != nil {
		return nil, err
	}
	alterObj := tree.NewObject()
	alterObj.Set("table", table)

	actions := make(tree.Array, 0, len(n.Actions))
	for _, a := range n.Actions {
		v, err := c.scrubAlterAction(a)
		if err != nil {
			return nil, err
		}
		actions = append(actions, v)
	}
	if len(actions) > 0 {
		alterObj.Set("actions", actions)
	}
	return tree.NewObject().Set("alter_table", alterObj), nil
}

func (c *Context) scrubAlterAction(a ast.AlterTableAction) (any, error) {
	switch act := a.(type) {
	case *ast.AddColumn:
		col, err := c.scrubColumnDef(act.Column)
		if err != nil {
			return nil, err
		}
		return tree.NewObject().Set("add_column", col), nil
	case *ast.DropColumn:
		return tree.NewObject().Set("drop_column", act.Name), nil
	case *ast.RenameColumn:
		obj := tree.NewObject()
		obj.Set("old", act.OldName)
		obj.Set("new", act.NewName)
		return tree.NewObject().Set("rename_column", obj), nil
	case *ast.RenameTable:
		name, err := c.scrubTableExpr(act.NewName)
		if err != nil {
			return nil, err
		}
		return tree.NewObject().Set("rename_to", name), nil
	case *ast.AddConstraint:
		return tree.NewObject().Set("add_constraint", act.Constraint.Name), nil
	case *ast.DropConstraint:
		return tree.NewObject().Set("drop_constraint", act.Name), nil
	case *ast.ModifyColumn:
		obj := tree.NewObject()
		obj.Set("name", act.Name)
		if act.NewDef != nil {
			def, err := c.scrubColumnDef(act.NewDef)
			if err != nil {
				return nil, err
			}
			obj.Set("type", def)
		}
		return tree.NewObject().Set("modify_column", obj), nil
	default:
		return nil, errUnknownNode(a)
	}
}

func (c *Context) scrubDropTable(n *ast.DropTableStmt) (any, error) {
	names := make([]any, 0, len(n.Tables))
	for _, t := range n.Tables {
		v, err := c.scrubTableExpr(t)
		if err != nil {
			return nil, err
		}
		names = append(names, v)
	}
	obj := tree.NewObject()
	obj.Set("drop_table", degenerate(names))
	if n.IfExists {
		obj.Set("if_exists", true)
	}
	return obj, nil
}

func (c *Context) scrubDropIndex(n *ast.DropIndexStmt) (any, error) {
	dropObj := tree.NewObject()
	dropObj.Set("name", n.Name)
	if n.Table != nil {
		table, err := c.scrubTableExpr(n.Table)
		if err != nil {
			return nil, err
		}
		dropObj.Set("table", table)
	}
	obj := tree.NewObject()
	obj.Set("drop_index", dropObj)
	if n.IfExists {
		obj.Set("if_exists", true)
	}
	return obj, nil
}

func (c *Context) scrubTruncate(n *ast.TruncateStmt) (any, error) {
	names := make([]any, 0, len(n.Tables))
	for _, t := range n.Tables {
		v, err := c.scrubTableExpr(t)
		if err != nil {
			return nil, err
		}
		names = append(names, v)
	}
	return tree.NewObject().Set("truncate", degenerate(names)), nil
}

func (c *Context) scrubExplain(n *ast.ExplainStmt) (any, error) {
	inner, err := c.ScrubStatement(n.Stmt)
	if err != nil {
		return nil, err
	}
	return tree.NewObject().Set("explain", inner), nil
}

// degenerate applies the "single element collapses to a bare value"
// rule (spec.md §3 invariant 4) to a generic []any produced while
// scrubbing clause lists such as the projection or GROUP BY.
func degenerate(items []any) any {
	if len(items) == 1 {
		return items[0]
	}
	return tree.Array(items)
}

func degenerateArr(items tree.Array) any {
	return degenerate(items)
}

func stringsToAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
