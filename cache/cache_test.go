package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/freeeve/mosql/dialect"
)

func TestGetBuildsOnce(t *testing.T) {
	Lock()
	defer Unlock()

	calls := 0
	build := func() *Grammar {
		calls++
		return &Grammar{Dialect: dialect.MySQL, AllColumns: "*"}
	}

	g1, hit := Get("test-dialect-once", "*", build)
	assert.False(t, hit, "first Get for a key must report a miss")
	assert.Equal(t, dialect.MySQL.Name, g1.Dialect.Name)

	g2, hit := Get("test-dialect-once", "*", build)
	assert.True(t, hit, "second Get for the same key must report a hit")
	assert.Same(t, g1, g2)
	assert.Equal(t, 1, calls)
}

func TestGetIsKeyedByAllColumns(t *testing.T) {
	Lock()
	defer Unlock()

	star, _ := Get("test-dialect-keyed", "*", func() *Grammar {
		return &Grammar{Dialect: dialect.Common, AllColumns: "*"}
	})
	empty, _ := Get("test-dialect-keyed", "", func() *Grammar {
		return &Grammar{Dialect: dialect.Common, AllColumns: ""}
	})

	assert.NotSame(t, star, empty)
	assert.Equal(t, "*", star.AllColumns)
	assert.Equal(t, "", empty.AllColumns)
}
