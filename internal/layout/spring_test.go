package layout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCriticallyDampedConverges(t *testing.T) {
	start := time.Unix(0, 0)
	spring := NewSpring(0, 100, 0, 0.5, 1.0, start)

	end := start.Add(2 * time.Second)
	assert.InDelta(t, 100.0, spring.ValueAt(end), 1.0)
	assert.True(t, spring.IsComplete(end))
}

func TestUnderdampedOvershoots(t *testing.T) {
	start := time.Unix(0, 0)
	spring := NewSpring(0, 100, 0, 0.5, 0.5, start)

	mid := start.Add(200 * time.Millisecond)
	assert.Greater(t, spring.ValueAt(mid), 50.0)
}

// Retargeting mid-flight must not jump: position is unchanged at the
// retarget instant and velocity carries over.
func TestRetargetPreservesContinuity(t *testing.T) {
	start := time.Unix(0, 0)
	spring := NewSpring(100, 500, 0, 0.5, 1.0, start)

	at := start.Add(50 * time.Millisecond)
	valueBefore := spring.ValueAt(at)
	velocityBefore := spring.VelocityAt(at)

	spring.Retarget(300, at)

	assert.InDelta(t, valueBefore, spring.ValueAt(at), 1e-9)
	eps := at.Add(time.Microsecond)
	assert.InDelta(t, velocityBefore, spring.VelocityAt(eps), 1e-3)
	require.Equal(t, 300.0, spring.Target())
}

func TestSpringNotCompleteImmediately(t *testing.T) {
	start := time.Unix(0, 0)
	spring := NewSpring(0, 10, 0, 0.5, 1.0, start)
	assert.False(t, spring.IsComplete(start))
}
