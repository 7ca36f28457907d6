package sys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectInset(t *testing.T) {
	r := NewRect(0, 0, 100, 80)
	assert.Equal(t, NewRect(8, 8, 84, 64), r.Inset(8))

	// Degenerate insets collapse instead of going negative.
	small := NewRect(0, 0, 10, 10)
	out := small.Inset(8)
	assert.Equal(t, 0, out.Width)
	assert.Equal(t, 0, out.Height)
}

func TestRectContains(t *testing.T) {
	r := NewRect(10, 10, 100, 100)
	assert.True(t, r.Contains(Point{X: 10, Y: 10}))
	assert.True(t, r.Contains(Point{X: 109, Y: 109}))
	assert.False(t, r.Contains(Point{X: 110, Y: 50}))
	assert.False(t, r.Contains(Point{X: 9, Y: 50}))
}

func TestRectIntersects(t *testing.T) {
	a := NewRect(0, 0, 100, 100)
	assert.True(t, a.Intersects(NewRect(50, 50, 100, 100)))
	assert.False(t, a.Intersects(NewRect(100, 0, 10, 10)))
}

func TestWindowIDOrdering(t *testing.T) {
	assert.True(t, NewWindowID(1, 2).Less(NewWindowID(1, 3)))
	assert.True(t, NewWindowID(1, 9).Less(NewWindowID(2, 1)))
	assert.False(t, NewWindowID(2, 1).Less(NewWindowID(1, 9)))
}

func TestTxnTable(t *testing.T) {
	table := NewTxnTable()
	w := NewWindowID(1, 1)

	assert.Equal(t, TransactionID(0), table.LastSeen(w))
	table.MarkSeen(w, 5)
	assert.Equal(t, TransactionID(5), table.LastSeen(w))

	assert.False(t, table.Suspended(w))
	table.SetSuspended(w, true)
	assert.True(t, table.Suspended(w))
	table.SetSuspended(w, false)
	assert.False(t, table.Suspended(w))

	table.Forget(w)
	assert.Equal(t, TransactionID(0), table.LastSeen(w))
}
