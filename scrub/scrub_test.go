package scrub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeeve/mosql/parser"
	"github.com/freeeve/mosql/tree"
)

func mustScrub(t *testing.T, sql string) any {
	t.Helper()
	stmt, err := parser.New(sql).Parse()
	require.NoError(t, err)
	v, err := NewContext().ScrubStatement(stmt)
	require.NoError(t, err)
	return v
}

func TestScrubSimpleSelect(t *testing.T) {
	got := mustScrub(t, "SELECT id, name FROM users WHERE id = 1")
	want := tree.NewObject().
		Set("select", tree.Array{
			tree.NewObject().Set("value", "id"),
			tree.NewObject().Set("value", "name"),
		}).
		Set("from", "users").
		Set("where", tree.NewObject().Set("eq", tree.Array{"id", int64(1)}))

	assert.True(t, tree.Equal(got, want), "got %#v, want %#v", got, want)
}

func TestScrubSelectDistinctAndAlias(t *testing.T) {
	got := mustScrub(t, "SELECT DISTINCT id AS user_id FROM users")
	want := tree.NewObject().
		Set("select_distinct", tree.NewObject().Set("value", "id").Set("name", "user_id")).
		Set("from", "users")

	assert.True(t, tree.Equal(got, want))
}

func TestScrubStarProjection(t *testing.T) {
	got := mustScrub(t, "SELECT * FROM users")
	want := tree.NewObject().Set("select", "*").Set("from", "users")
	assert.True(t, tree.Equal(got, want))
}

func TestScrubAndChainFlattensToSequence(t *testing.T) {
	got := mustScrub(t, "SELECT 1 FROM t WHERE a AND b AND c")
	where := tree.NewObject().Set("and", tree.Array{"a", "b", "c"})
	want := tree.NewObject().
		Set("select", tree.NewObject().Set("value", int64(1))).
		Set("from", "t").
		Set("where", where)
	assert.True(t, tree.Equal(got, want))
}

func TestScrubIsNullCollapsesToMissingExists(t *testing.T) {
	isNull := mustScrub(t, "SELECT 1 FROM t WHERE a IS NULL")
	isNotNull := mustScrub(t, "SELECT 1 FROM t WHERE a IS NOT NULL")

	wantNull := tree.NewObject().
		Set("select", tree.NewObject().Set("value", int64(1))).
		Set("from", "t").
		Set("where", tree.NewObject().Set("missing", "a"))
	wantNotNull := tree.NewObject().
		Set("select", tree.NewObject().Set("value", int64(1))).
		Set("from", "t").
		Set("where", tree.NewObject().Set("exists", "a"))

	assert.True(t, tree.Equal(isNull, wantNull))
	assert.True(t, tree.Equal(isNotNull, wantNotNull))
}

func TestScrubAdjacentStringLiteralsBecomeSequence(t *testing.T) {
	got := mustScrub(t, "SELECT 'abc' 'def' FROM t")
	want := tree.NewObject().
		Set("select", tree.NewObject().Set("value", tree.Literal{Value: tree.Array{"abc", "def"}})).
		Set("from", "t")
	assert.True(t, tree.Equal(got, want))
}

func TestScrubJoinChainFlattensInOrder(t *testing.T) {
	got := mustScrub(t, "SELECT 1 FROM a JOIN b ON a.id = b.id LEFT JOIN c ON b.id = c.id")
	from := tree.Array{
		"a",
		tree.NewObject().Set("join", "b").Set("on", tree.NewObject().Set("eq", tree.Array{"a.id", "b.id"})),
		tree.NewObject().Set("left join", "c").Set("on", tree.NewObject().Set("eq", tree.Array{"b.id", "c.id"})),
	}
	want := tree.NewObject().
		Set("select", tree.NewObject().Set("value", int64(1))).
		Set("from", from)
	assert.True(t, tree.Equal(got, want))
}

func TestScrubInsertValues(t *testing.T) {
	got := mustScrub(t, "INSERT INTO users (id, name) VALUES (1, 'alice')")
	insert := tree.NewObject().
		Set("table", "users").
		Set("columns", []any{"id", "name"}).
		Set("values", tree.Array{tree.Array{int64(1), tree.Literal{Value: "alice"}}})
	want := tree.NewObject().Set("insert", insert)
	assert.True(t, tree.Equal(got, want))
}

func TestScrubUpdateSet(t *testing.T) {
	got := mustScrub(t, "UPDATE users SET name = 'bob' WHERE id = 1")
	update := tree.NewObject().
		Set("table", "users").
		Set("set", tree.NewObject().Set("name", tree.Literal{Value: "bob"})).
		Set("where", tree.NewObject().Set("eq", tree.Array{"id", int64(1)}))
	want := tree.NewObject().Set("update", update)
	assert.True(t, tree.Equal(got, want))
}

func TestScrubDeleteWhere(t *testing.T) {
	got := mustScrub(t, "DELETE FROM users WHERE id = 1")
	del := tree.NewObject().
		Set("table", "users").
		Set("where", tree.NewObject().Set("eq", tree.Array{"id", int64(1)}))
	want := tree.NewObject().Set("delete", del)
	assert.True(t, tree.Equal(got, want))
}

func TestScrubParamShapes(t *testing.T) {
	named := mustScrub(t, "SELECT 1 FROM t WHERE id = :id")
	wantNamed := tree.NewObject().
		Set("select", tree.NewObject().Set("value", int64(1))).
		Set("from", "t").
		Set("where", tree.NewObject().Set("eq", tree.Array{"id", tree.NewObject().Set("param", "id")}))
	assert.True(t, tree.Equal(named, wantNamed))

	positional := mustScrub(t, "SELECT 1 FROM t WHERE id = ?")
	wantPositional := tree.NewObject().
		Set("select", tree.NewObject().Set("value", int64(1))).
		Set("from", "t").
		Set("where", tree.NewObject().Set("eq", tree.Array{"id", tree.NewObject().Set("param", 0)}))
	assert.True(t, tree.Equal(positional, wantPositional))
}

func TestScrubCustomNullSentinel(t *testing.T) {
	stmt, err := parser.New("SELECT NULL FROM t").Parse()
	require.NoError(t, err)

	ctx := NewContext()
	ctx.Null = "N/A"
	got, err := ctx.ScrubStatement(stmt)
	require.NoError(t, err)

	want := tree.NewObject().
		Set("select", tree.NewObject().Set("value", "N/A")).
		Set("from", "t")
	assert.True(t, tree.Equal(got, want))
}

func TestScrubNormalOpCallShape(t *testing.T) {
	stmt, err := parser.New("SELECT 1 FROM t WHERE a = 1").Parse()
	require.NoError(t, err)

	ctx := NewContext()
	ctx.Calls = NormalOp
	got, err := ctx.ScrubStatement(stmt)
	require.NoError(t, err)

	where := tree.NewObject().
		Set("op", "eq").
		Set("args", tree.Array{"a", int64(1)}).
		Set("kwargs", tree.NewObject())
	want := tree.NewObject().
		Set("select", tree.NewObject().Set("value", int64(1))).
		Set("from", "t").
		Set("where", where)
	assert.True(t, tree.Equal(got, want))
}

func TestScrubNormalOpNeverDegeneratesSingleArg(t *testing.T) {
	// A 1-arg call (unary minus) must keep its argument list under
	// normal_op mode, even though simple_op would unwrap it to a bare
	// value. Regression test for callKw having once degenerated before
	// the CallShape hook ran, regardless of which shape was selected.
	stmt, err := parser.New("SELECT -a FROM t").Parse()
	require.NoError(t, err)

	ctx := NewContext()
	ctx.Calls = NormalOp
	got, err := ctx.ScrubStatement(stmt)
	require.NoError(t, err)

	neg := tree.NewObject().
		Set("op", "neg").
		Set("args", tree.Array{"a"}).
		Set("kwargs", tree.NewObject())
	want := tree.NewObject().
		Set("select", tree.NewObject().Set("value", neg)).
		Set("from", "t")
	assert.True(t, tree.Equal(got, want))
}

func TestScrubRejectsOversizedStatement(t *testing.T) {
	orig := maxScrubNodes
	maxScrubNodes = 5
	defer func() { maxScrubNodes = orig }()

	stmt, err := parser.New("SELECT 1 FROM t WHERE a AND b AND c AND d AND e").Parse()
	require.NoError(t, err)

	_, err = NewContext().ScrubStatement(stmt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds the 5-node limit")
}

func TestScrubGuardOnlyAppliesOnceForNestedSubqueries(t *testing.T) {
	// visitor.Walk already descends into subqueries as part of the
	// outer statement's own walk, so the whole tree is sized in one
	// pass; the guard must not re-walk it again when ScrubExpr
	// recurses into ScrubStatement for the subquery itself (which
	// would redo the same work once per nesting level).
	orig := maxScrubNodes
	maxScrubNodes = 50
	defer func() { maxScrubNodes = orig }()

	stmt, err := parser.New("SELECT (SELECT 1) FROM t").Parse()
	require.NoError(t, err)

	_, err = NewContext().ScrubStatement(stmt)
	require.NoError(t, err)
}

func TestScrubNormalOpZeroArgsIsEmptySequence(t *testing.T) {
	stmt, err := parser.New("SELECT NOW() FROM t").Parse()
	require.NoError(t, err)

	ctx := NewContext()
	ctx.Calls = NormalOp
	got, err := ctx.ScrubStatement(stmt)
	require.NoError(t, err)

	now := tree.NewObject().
		Set("op", "now").
		Set("args", tree.Array{}).
		Set("kwargs", tree.NewObject())
	want := tree.NewObject().
		Set("select", tree.NewObject().Set("value", now)).
		Set("from", "t")
	assert.True(t, tree.Equal(got, want))
}
