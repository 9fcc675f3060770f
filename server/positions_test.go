package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionsForIDs_Dense(t *testing.T) {
	ps := positionsForIDs([]string{"a", "b", "c"})
	require.Len(t, ps, 3)
	assert.Equal(t, idPosition{ID: "a", Position: 1000}, ps[0])
	assert.Equal(t, idPosition{ID: "b", Position: 2000}, ps[1])
	assert.Equal(t, idPosition{ID: "c", Position: 3000}, ps[2])
}

func TestPositionsForIDs_Empty(t *testing.T) {
	assert.Empty(t, positionsForIDs(nil))
}

func TestInsertAt(t *testing.T) {
	base := []string{"a", "b", "c"}

	assert.Equal(t, []string{"x", "a", "b", "c"}, insertAt(append([]string(nil), base...), 0, "x"))
	assert.Equal(t, []string{"a", "x", "b", "c"}, insertAt(append([]string(nil), base...), 1, "x"))
	assert.Equal(t, []string{"a", "b", "c", "x"}, insertAt(append([]string(nil), base...), 3, "x"))
}

func TestInsertAt_ClampsOutOfRange(t *testing.T) {
	base := []string{"a", "b"}

	assert.Equal(t, []string{"x", "a", "b"}, insertAt(append([]string(nil), base...), -5, "x"))
	assert.Equal(t, []string{"a", "b", "x"}, insertAt(append([]string(nil), base...), 99, "x"))
	assert.Equal(t, []string{"x"}, insertAt([]string{}, 3, "x"))
}

func TestRemoveOne(t *testing.T) {
	next, removed, idx := removeOne([]string{"a", "b", "c"}, func(s string) bool { return s == "b" })
	assert.Equal(t, []string{"a", "c"}, next)
	assert.Equal(t, "b", removed)
	assert.Equal(t, 1, idx)
}

func TestRemoveOne_Miss(t *testing.T) {
	next, _, idx := removeOne([]string{"a", "b"}, func(s string) bool { return s == "z" })
	assert.Equal(t, []string{"a", "b"}, next)
	assert.Equal(t, -1, idx)
}

func TestRemoveInsert_RoundTrip(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}
	next, removed, idx := removeOne(ids, func(s string) bool { return s == "c" })
	require.Equal(t, 2, idx)
	assert.Equal(t, ids, insertAt(next, idx, removed))
}

func TestIsPermutation(t *testing.T) {
	assert.True(t, isPermutation([]string{"a", "b", "c"}, []string{"c", "a", "b"}))
	assert.True(t, isPermutation(nil, nil))
	assert.False(t, isPermutation([]string{"a", "b"}, []string{"a", "b", "c"}))
	assert.False(t, isPermutation([]string{"a", "a"}, []string{"a", "b"}))
	assert.False(t, isPermutation([]string{"a", "b"}, []string{"a", "z"}))
}
