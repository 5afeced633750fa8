package visitor

import (
	"testing"

	"github.com/freeeve/mosql/ast"
	"github.com/freeeve/mosql/parser"
)

func mustParse(t *testing.T, sql string) ast.Statement {
	t.Helper()
	stmt, err := parser.New(sql).Parse()
	if err != nil {
		t.Fatalf("Parse(%q): %v", sql, err)
	}
	return stmt
}

func TestWalk(t *testing.T) {
	stmt := mustParse(t, "SELECT a.id, b.name FROM users a JOIN orders b ON a.id = b.user_id WHERE a.status = 'active'")

	var columns []string
	WalkFunc(stmt, func(node ast.Node) bool {
		if col, ok := node.(*ast.ColName); ok {
			columns = append(columns, col.Name())
		}
		return true
	})

	expected := []string{"id", "name", "id", "user_id", "status"}
	if len(columns) != len(expected) {
		t.Errorf("Expected %d columns, got %d: %v", len(expected), len(columns), columns)
	}
}

func TestRewrite(t *testing.T) {
	stmt := mustParse(t, "SELECT id, name FROM users WHERE status = 'active'")

	// Qualify every bare column reference with table alias "u".
	rewritten := Rewrite(stmt, func(node ast.Node) ast.Node {
		if col, ok := node.(*ast.ColName); ok && len(col.Parts) == 1 {
			return &ast.ColName{Parts: []string{"u", col.Name()}}
		}
		return node
	})

	sel, ok := rewritten.(*ast.SelectStmt)
	if !ok {
		t.Fatalf("expected *ast.SelectStmt, got %T", rewritten)
	}
	ae, ok := sel.Columns[0].(*ast.AliasedExpr)
	if !ok {
		t.Fatalf("expected *ast.AliasedExpr, got %T", sel.Columns[0])
	}
	col, ok := ae.Expr.(*ast.ColName)
	if !ok {
		t.Fatalf("expected *ast.ColName, got %T", ae.Expr)
	}
	if col.Table() != "u" || col.Name() != "id" {
		t.Errorf("rewritten column = %v, want [u id]", col.Parts)
	}
}

func ExtractTables(stmt ast.Statement) []string {
	var tables []string
	seen := make(map[string]bool)
	WalkFunc(stmt, func(node ast.Node) bool {
		if _, ok := node.(*ast.ColName); ok {
			return false // qualifiers aren't table references
		}
		if tn, ok := node.(*ast.TableName); ok {
			name := tn.Name()
			if !seen[name] {
				tables = append(tables, name)
				seen[name] = true
			}
		}
		return true
	})
	return tables
}

func TestExtractTables(t *testing.T) {
	stmt := mustParse(t, "SELECT * FROM users u JOIN orders o ON u.id = o.user_id WHERE EXISTS (SELECT 1 FROM items)")

	tables := ExtractTables(stmt)
	if len(tables) != 3 {
		t.Errorf("Expected 3 tables, got %d: %v", len(tables), tables)
	}
}

func BenchmarkWalk(b *testing.B) {
	stmt, err := parser.New(`SELECT u.id, u.name, COUNT(o.id) as order_count
FROM users u
LEFT JOIN orders o ON u.id = o.user_id
WHERE u.status = 'active'
GROUP BY u.id, u.name
ORDER BY order_count DESC`).Parse()
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		WalkFunc(stmt, func(node ast.Node) bool {
			return true
		})
	}
}
