package scrub

import (
	"fmt"

	"github.com/freeeve/mosql/ast"
	"github.com/freeeve/mosql/sqlerr"
	"github.com/freeeve/mosql/visitor"
)

// maxScrubNodes bounds the size of a statement ScrubStatement will
// walk. The scrub walk recurses once per ast node with no depth limit
// of its own; this guards the call stack against a pathologically
// large or deeply nested statement before recursion gets anywhere
// near it, rather than relying on a caller-supplied timeout (spec §5
// leaves those to the caller, but stack safety is this package's own
// concern). A var, not a const, so tests can shrink it instead of
// constructing a 100000-node statement to exercise the guard.
var maxScrubNodes = 100000

// sizeGuard counts the nodes in stmt via visitor.WalkFunc and reports
// whether it exceeds maxScrubNodes. Counting stops as soon as the
// limit is crossed rather than walking the whole tree.
func sizeGuard(stmt ast.Statement) (int, bool) {
	n := 0
	over := false
	visitor.WalkFunc(stmt, func(ast.Node) bool {
		n++
		if n > maxScrubNodes {
			over = true
			return false
		}
		return true
	})
	return n, over
}

func errTooLarge(stmt ast.Statement, n int) error {
	return sqlerr.NewParseError(stmt.Pos(), fmt.Sprintf(
		"statement has at least %d nodes, exceeds the %d-node limit", n, maxScrubNodes), nil)
}
