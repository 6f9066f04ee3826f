package sampler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklight/stacklight/internal/sampler/capture"
)

// liveSafePoint is the worker's safe point for the live-capturer tests. It
// measures its own stack depth with the same capturer, then takes one sample,
// so the trace contents can be checked against the real depth. noinline keeps
// it as exactly one frame above Poll.
//
//go:noinline
func liveSafePoint(tc *ThreadContext, c *capture.Runtime) int {
	frames := make([]FrameRef, 64)
	lines := make([]int, 64)
	depth := c.Capture(0, frames, lines)

	tc.requestSample()
	tc.Poll()
	return depth
}

func TestLiveCaptureHidesSamplerFrames(t *testing.T) {
	c := capture.NewRuntime()
	tc := newThreadContext(8, 64, c, idleProbe{}, nopLogger())
	tc.StartSampling()

	liveSafePoint(tc, c)

	traces := tc.ProfileFrames()
	require.Len(t, traces, 1)
	trace := traces[0]
	require.NotEmpty(t, trace)

	// The innermost frame is the caller of Poll, never the sampler's own
	// capture path.
	name, ok := c.Symbol(trace[0].Frame)
	require.True(t, ok)
	assert.Contains(t, name, "liveSafePoint")

	for i, fl := range trace {
		sym, ok := c.Symbol(fl.Frame)
		require.True(t, ok, "frame %d should resolve", i)
		assert.NotContains(t, sym, "recordSample")
		assert.NotContains(t, sym, "handleSampleRequest")
		assert.False(t, strings.HasSuffix(sym, ".Poll"), "frame %d is sampler machinery: %s", i, sym)
	}
}

func TestLiveCaptureTrimsRuntimeScaffolding(t *testing.T) {
	c := capture.NewRuntime()
	tc := newThreadContext(8, 64, c, idleProbe{}, nopLogger())
	tc.StartSampling()

	depth := liveSafePoint(tc, c)

	traces := tc.ProfileFrames()
	require.Len(t, traces, 1)
	trace := traces[0]

	// The sample sees the same stack the direct capture measured, minus the
	// two outermost scaffolding frames.
	assert.Equal(t, depth-trimmedArtifactFrames, len(trace))

	for i, fl := range trace {
		sym, ok := c.Symbol(fl.Frame)
		require.True(t, ok)
		assert.NotContains(t, sym, "runtime.goexit", "frame %d should be trimmed scaffolding: %s", i, sym)
	}
}
