package capture

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMaxFrames = 64

// The helpers are noinline so each occupies exactly one stack frame.
//
//go:noinline
func captureLeaf(c *Runtime, frames []uintptr, lines []int) int {
	return c.Capture(0, frames, lines)
}

//go:noinline
func captureNested(c *Runtime, frames []uintptr, lines []int) int {
	return captureLeaf(c, frames, lines)
}

func TestCaptureReturnsCallerStack(t *testing.T) {
	c := NewRuntime()
	frames := make([]uintptr, testMaxFrames)
	lines := make([]int, testMaxFrames)

	n := captureLeaf(c, frames, lines)
	require.Greater(t, n, 2, "test harness stack should be deeper than the trim")

	// The innermost captured frame is the direct caller of Capture, not the
	// capture machinery itself.
	name, ok := c.Symbol(frames[0])
	require.True(t, ok)
	assert.Contains(t, name, "captureLeaf")

	for i := 0; i < n; i++ {
		_, ok := c.Symbol(frames[i])
		assert.True(t, ok, "frame %d should resolve", i)
	}
}

func TestCaptureDepthGrowsWithNesting(t *testing.T) {
	c := NewRuntime()
	frames := make([]uintptr, testMaxFrames)
	lines := make([]int, testMaxFrames)
	nested := make([]uintptr, testMaxFrames)
	nestedLines := make([]int, testMaxFrames)

	flat := captureLeaf(c, frames, lines)
	deep := captureNested(c, nested, nestedLines)

	// One extra call frame between the leaf and the test body. This
	// arithmetic is what the sampler's artifact trim relies on.
	assert.Equal(t, flat+1, deep)
}

func TestCaptureSkipHidesFrames(t *testing.T) {
	c := NewRuntime()
	frames := make([]uintptr, testMaxFrames)
	lines := make([]int, testMaxFrames)

	n := c.Capture(1, frames, lines)
	require.Greater(t, n, 0)

	// skip=1 drops the direct caller, so the innermost frame is the test
	// runner machinery above this function.
	name, ok := c.Symbol(frames[0])
	require.True(t, ok)
	assert.False(t, strings.Contains(name, "TestCaptureSkipHidesFrames"))
}

func TestCaptureTruncatesToBuffer(t *testing.T) {
	c := NewRuntime()
	frames := make([]uintptr, 2)
	lines := make([]int, 2)

	n := captureNested(c, frames, lines)
	assert.LessOrEqual(t, n, 2)
	assert.Greater(t, n, 0)
}

func TestCaptureFillsLines(t *testing.T) {
	c := NewRuntime()
	frames := make([]uintptr, testMaxFrames)
	lines := make([]int, testMaxFrames)

	n := captureLeaf(c, frames, lines)
	require.Greater(t, n, 0)
	assert.Greater(t, lines[0], 0, "captured frames carry source lines")
}

func TestSymbolUnresolvable(t *testing.T) {
	c := NewRuntime()

	_, ok := c.Symbol(1)
	assert.False(t, ok)
}
