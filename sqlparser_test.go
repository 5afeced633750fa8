package mosql

import (
	"testing"

	"github.com/freeeve/mosql/tree"
)

func TestParseAndFormat(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "simple select", input: "SELECT * FROM users"},
		{name: "select with where", input: "SELECT id, name FROM users WHERE status = 'active'"},
		{name: "select with join", input: "SELECT a.id, b.name FROM a JOIN b ON a.id = b.a_id"},
		{name: "select with multiple joins", input: "SELECT * FROM a LEFT JOIN b ON a.id = b.a_id RIGHT JOIN c ON b.id = c.b_id"},
		{name: "select with subquery", input: "SELECT * FROM users WHERE id IN (SELECT user_id FROM orders)"},
		{name: "insert", input: "INSERT INTO users (id, name) VALUES (1, 'test')"},
		{name: "update", input: "UPDATE users SET name = 'new' WHERE id = 1"},
		{name: "delete", input: "DELETE FROM users WHERE id = 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}

			formatted, err := Format(tr)
			if err != nil {
				t.Fatalf("Format error: %v", err)
			}
			if formatted == "" {
				t.Fatal("formatted output is empty")
			}

			// Re-parse the formatted output; the resulting tree must be the
			// same canonical value, and formatting it again must be stable.
			tr2, err := Parse(formatted)
			if err != nil {
				t.Fatalf("re-parse error: %v\nformatted: %s", err, formatted)
			}
			if !tree.Equal(tr, tr2) {
				t.Errorf("round-trip tree mismatch for %q\nfirst:  %#v\nsecond: %#v", tt.input, tr, tr2)
			}

			formatted2, err := Format(tr2)
			if err != nil {
				t.Fatalf("second format error: %v", err)
			}
			if formatted != formatted2 {
				t.Errorf("round-trip format mismatch:\nfirst:  %s\nsecond: %s", formatted, formatted2)
			}
		})
	}
}

func TestComplexQueries(t *testing.T) {
	queries := []string{
		`WITH active AS (SELECT id FROM users WHERE status = 'active')
		 SELECT * FROM active`,
		`SELECT id, COUNT(*) as cnt FROM orders GROUP BY id HAVING COUNT(*) > 5`,
		`SELECT ROW_NUMBER() OVER (PARTITION BY type ORDER BY created_at DESC) FROM items`,
		`SELECT CASE WHEN status = 1 THEN 'active' ELSE 'inactive' END FROM users`,
		`SELECT * FROM users WHERE name LIKE '%test%' ESCAPE '\\'`,
		`SELECT * FROM users WHERE created_at BETWEEN '2024-01-01' AND '2024-12-31'`,
		`SELECT COALESCE(name, 'unknown') FROM users`,
		`SELECT CAST(price AS INT) FROM products`,
		`SELECT a || ' ' || b FROM names`,
		`SELECT * FROM users LIMIT 10 OFFSET 20`,
	}

	for _, q := range queries {
		t.Run(q[:30], func(t *testing.T) {
			tr, err := Parse(q)
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			formatted, err := Format(tr)
			if err != nil {
				t.Fatalf("Format error: %v", err)
			}
			if formatted == "" {
				t.Error("empty formatted output")
			}
		})
	}
}

func TestDDL(t *testing.T) {
	queries := []string{
		`CREATE TABLE users (id INT PRIMARY KEY, name VARCHAR(255) NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS items (id INT, price DECIMAL(10,2))`,
		`ALTER TABLE users ADD COLUMN email VARCHAR(255)`,
		`ALTER TABLE users DROP COLUMN IF EXISTS temp`,
		`DROP TABLE IF EXISTS old_users CASCADE`,
		`CREATE UNIQUE INDEX idx_email ON users (email)`,
		`DROP INDEX idx_old ON users`,
		`TRUNCATE TABLE logs`,
	}

	for _, q := range queries {
		name := q
		if len(name) > 20 {
			name = name[:20]
		}
		t.Run(name, func(t *testing.T) {
			tr, err := Parse(q)
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			formatted, err := Format(tr)
			if err != nil {
				t.Fatalf("Format error: %v", err)
			}
			if formatted == "" {
				t.Error("empty formatted output")
			}
		})
	}
}

func TestMultiDialect(t *testing.T) {
	queries := []struct {
		name  string
		query string
	}{
		{"mysql replace", "REPLACE INTO users (id, name) VALUES (1, 'test')"},
		{"mysql on duplicate", "INSERT INTO users (id, name) VALUES (1, 'test') ON DUPLICATE KEY UPDATE name = 'new'"},
		{"mysql limit offset", "SELECT * FROM users LIMIT 10, 20"},

		{"pg cast", "SELECT a::int FROM t"},
		{"pg returning", "INSERT INTO users (name) VALUES ('test') RETURNING id"},
		{"pg on conflict", "INSERT INTO users (id, name) VALUES (1, 'test') ON CONFLICT (id) DO NOTHING"},
		{"pg array", "SELECT ARRAY[1, 2, 3]"},

		{"cte", "WITH t AS (SELECT 1) SELECT * FROM t"},
		{"window", "SELECT SUM(x) OVER (PARTITION BY y) FROM t"},
		{"exists", "SELECT * FROM t WHERE EXISTS (SELECT 1 FROM u)"},
	}

	for _, tc := range queries {
		t.Run(tc.name, func(t *testing.T) {
			tr, err := Parse(tc.query)
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			formatted, err := Format(tr)
			if err != nil {
				t.Fatalf("Format error: %v", err)
			}
			if formatted == "" {
				t.Error("empty formatted output")
			}
		})
	}
}

func BenchmarkParseFormat(b *testing.B) {
	query := `SELECT u.id, u.name, COUNT(o.id) as order_count
FROM users u
LEFT JOIN orders o ON u.id = o.user_id
WHERE u.status = 'active'
  AND u.created_at BETWEEN '2024-01-01' AND '2024-12-31'
GROUP BY u.id, u.name
HAVING COUNT(o.id) > 5
ORDER BY order_count DESC
LIMIT 100`

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		tr, _ := Parse(query)
		_, _ = Format(tr)
	}
}
