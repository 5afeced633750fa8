// Package mosql parses SQL source text into a structured, serializable
// parse tree ("SQL-as-JSON") across multiple dialects, and renders such
// a tree back to SQL text.
//
// Basic usage:
//
//	t, err := mosql.Parse("SELECT a FROM b")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sql, err := mosql.Format(t)
package mosql

import (
	"github.com/freeeve/mosql/ast"
	"github.com/freeeve/mosql/cache"
	"github.com/freeeve/mosql/dialect"
	"github.com/freeeve/mosql/format"
	"github.com/freeeve/mosql/parser"
	"github.com/freeeve/mosql/scrub"
	"github.com/freeeve/mosql/sqlerr"
	"github.com/freeeve/mosql/tree"
)

// Option configures a Parse call.
type Option func(*scrub.Context, *dialectConfig) error

type dialectConfig struct {
	allColumns string
}

// WithNull overrides the sentinel substituted for SQL NULL. The
// default is {"null": {}}.
func WithNull(sentinel any) Option {
	return func(c *scrub.Context, _ *dialectConfig) error {
		c.Null = sentinel
		return nil
	}
}

// WithCalls selects the call shape used for every operator/function
// node: scrub.SimpleOp (default, {op: args}) or scrub.NormalOp
// (verbose {op, args, kwargs}).
func WithCalls(shape scrub.CallShape) Option {
	return func(c *scrub.Context, _ *dialectConfig) error {
		c.Calls = shape
		return nil
	}
}

// WithAllColumns controls how a bare `*` projection renders. The only
// legal value is "*"; anything else is a sqlerr.ConfigError.
func WithAllColumns(v string) Option {
	return func(c *scrub.Context, cfg *dialectConfig) error {
		if v != "*" {
			return sqlerr.NewConfigError("all_columns: only \"*\" is accepted, got %q", v)
		}
		cfg.allColumns = v
		c.AllColumns = v
		return nil
	}
}

// Parse parses sql under the common (ANSI-leaning) dialect.
func Parse(sql string, opts ...Option) (*tree.Object, error) {
	return parseWith(sql, dialect.Common, opts)
}

// ParseMySQL parses sql under the MySQL dialect.
func ParseMySQL(sql string, opts ...Option) (*tree.Object, error) {
	return parseWith(sql, dialect.MySQL, opts)
}

// ParseSQLServer parses sql under the SQL Server dialect.
func ParseSQLServer(sql string, opts ...Option) (*tree.Object, error) {
	return parseWith(sql, dialect.SQLServer, opts)
}

// ParseBigQuery parses sql under the BigQuery dialect.
func ParseBigQuery(sql string, opts ...Option) (*tree.Object, error) {
	return parseWith(sql, dialect.BigQuery, opts)
}

func parseWith(sql string, d dialect.Dialect, opts []Option) (*tree.Object, error) {
	ctx := scrub.NewContext()
	cfg := &dialectConfig{}
	for _, opt := range opts {
		if err := opt(ctx, cfg); err != nil {
			return nil, err
		}
	}

	cache.Lock()
	defer cache.Unlock()

	grammar, _ := cache.Get(d.Name, cfg.allColumns, func() *cache.Grammar {
		return &cache.Grammar{Dialect: d, AllColumns: cfg.allColumns}
	})

	p := parser.NewWithDialect(sql, grammar.Dialect)
	stmt, err := p.Parse()
	if err != nil {
		if perr, ok := err.(parser.ParseError); ok {
			return nil, sqlerr.NewParseError(perr.Pos, perr.Message, nil)
		}
		return nil, err
	}

	scrubbed, err := ctx.ScrubStatement(stmt)
	if err != nil {
		return nil, sqlerr.NewFormatError(err, "scrub: %v", err)
	}
	ast.ReleaseAST(stmt) // scrub copies every value it needs; the AST itself is now garbage
	obj, ok := scrubbed.(*tree.Object)
	if !ok {
		obj = tree.NewObject().Set("value", scrubbed)
	}
	return obj, nil
}

// FormatOption configures a Format call.
type FormatOption func(*format.Options)

// WithANSIQuotes selects the identifier quote character: double quote
// when true (the default), backtick when false.
func WithANSIQuotes(b bool) FormatOption {
	return func(o *format.Options) { o.ANSIQuotes = b }
}

// WithShouldQuote overrides the predicate that decides whether an
// identifier needs quoting.
func WithShouldQuote(fn func(string) bool) FormatOption {
	return func(o *format.Options) { o.ShouldQuote = fn }
}

// Format renders a canonical tree (as produced by Parse) back to SQL text.
func Format(t any, opts ...FormatOption) (string, error) {
	o := format.DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return format.Format(t, o)
}
