// Package cache memoizes fully-built grammars per (dialect, config) pair
// and serializes every parse under one process-wide lock, mirroring the
// single-threaded critical section spec.md §5 requires: grammar
// construction and parse invocation never interleave with each other or
// with themselves.
package cache

import (
	"sync"

	"github.com/freeeve/mosql/dialect"
)

// Grammar is the fully-wired recognizer set for one (dialect,
// all_columns) pair. The lexer/parser pair in this module has no
// expensive construction step of its own (no forward-referenced
// recognizer graph to wire), so Grammar is a thin value, but it is
// still cached and built under Lock so the concurrency contract holds
// even if a future dialect extension makes construction expensive.
type Grammar struct {
	Dialect    dialect.Dialect
	AllColumns string
}

type key struct {
	dialectName string
	allColumns  string
}

var (
	mu    sync.Mutex
	built = make(map[key]*Grammar)
)

// Get returns the cached Grammar for (dialectName, allColumns), building
// it with build on first use. The bool result reports whether the
// Grammar was already cached (true) or built fresh by this call
// (false). The caller must hold Lock for the duration of both the Get
// call and any subsequent parse that uses the returned Grammar, per
// spec.md §5.
func Get(dialectName string, allColumns string, build func() *Grammar) (*Grammar, bool) {
	k := key{dialectName: dialectName, allColumns: allColumns}
	if g, ok := built[k]; ok {
		return g, true
	}
	g := build()
	built[k] = g
	return g, false
}

// Lock acquires the process-wide exclusive lock guarding grammar
// construction and parsing. Unlock must be called on every exit path,
// including failure, per spec.md §5.
func Lock() {
	mu.Lock()
}

// Unlock releases the lock acquired by Lock.
func Unlock() {
	mu.Unlock()
}
