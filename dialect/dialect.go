// Package dialect describes the lexical differences between the SQL
// dialects mosql understands. A Dialect is a small set of boolean flags
// consulted by the lexer; the parser and scrub packages are otherwise
// dialect-agnostic.
package dialect

// Dialect parameterizes the lexer's handling of quoting and identifiers.
type Dialect struct {
	// Name identifies the dialect and is half of the parser cache key.
	Name string

	// AnsiStrings, when true, means double-quoted text is an identifier
	// (ANSI SQL, Postgres, BigQuery). When false, double-quoted text is a
	// string literal (MySQL).
	AnsiStrings bool

	// BracketIdent, when true, means `[name]` is a quoted identifier
	// (SQL Server). When false, `[` always opens an array literal/subscript.
	BracketIdent bool

	// BracketArray records whether the dialect writes array constructors
	// as `[a, b, c]` (BigQuery). Neither the lexer nor the parser reads
	// it: a bare `[` is parsed only as a subscript after an expression,
	// and array literals are recognized only in the `ARRAY[...]` form.
	BracketArray bool

	// BacktickIdent, when true, means `` `name` `` is a quoted identifier
	// (common, MySQL, BigQuery).
	BacktickIdent bool
}

// Common is the default ANSI-leaning dialect: double-quoted identifiers,
// no bracket identifiers, backtick identifiers.
var Common = Dialect{
	Name:         "common",
	AnsiStrings:  true,
	BracketIdent: false,
	BracketArray: true,
	BacktickIdent: true,
}

// MySQL: backtick identifiers, double-quoted strings, no bracket idents.
var MySQL = Dialect{
	Name:          "mysql",
	AnsiStrings:   false,
	BracketIdent:  false,
	BracketArray:  false,
	BacktickIdent: true,
}

// SQLServer: bracket identifiers, ANSI double-quoted identifiers.
var SQLServer = Dialect{
	Name:          "sqlserver",
	AnsiStrings:   true,
	BracketIdent:  true,
	BracketArray:  false,
	BacktickIdent: false,
}

// BigQuery: backtick identifiers, ANSI double-quoted identifiers, array literals.
var BigQuery = Dialect{
	Name:          "bigquery",
	AnsiStrings:   true,
	BracketIdent:  false,
	BracketArray:  true,
	BacktickIdent: true,
}

// ByName resolves one of the four preconfigured dialects by name, the
// form under which it is used as half of the parser cache key.
func ByName(name string) (Dialect, bool) {
	switch name {
	case Common.Name:
		return Common, true
	case MySQL.Name:
		return MySQL, true
	case SQLServer.Name:
		return SQLServer, true
	case BigQuery.Name:
		return BigQuery, true
	default:
		return Dialect{}, false
	}
}
