package dsp

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fillPairs returns a buffer of n interleaved (i, q) byte pairs.
func fillPairs(n int, i, q byte) []byte {
	buf := make([]byte, 2*n)
	for k := 0; k < len(buf); k += 2 {
		buf[k] = i
		buf[k+1] = q
	}
	return buf
}

func TestPowerMonitorReportsAfterWindow(t *testing.T) {
	var out bytes.Buffer
	// 1000 samples/sec, 1 second window: report after 1001 pairs.
	m := NewPowerMonitor(1000, 1, &out)

	m.Process(fillPairs(1000, 255, 255))
	assert.Empty(t, out.String(), "no report until the window has elapsed")

	m.Process(fillPairs(1, 255, 255))
	require.NotEmpty(t, out.String(), "report expected once pair count exceeds the window")

	line := out.String()
	assert.True(t, strings.HasPrefix(line, "PEAK "), "report line: %q", line)
	assert.Contains(t, line, "dBFS")
	assert.Contains(t, line, "PAR")
	assert.True(t, strings.HasSuffix(line, "dB\n"), "report line: %q", line)
}

func TestPowerMonitorFullScaleAndSilence(t *testing.T) {
	var out bytes.Buffer
	m := NewPowerMonitor(100, 1, &out)

	// Channel 0 pinned at full positive scale, channel 1 at the bias point
	// (true silence). The silent channel has zero peak and zero mean, so its
	// dBFS and ratio columns go non-finite; the line must still be emitted.
	m.Process(fillPairs(101, 255, 128))

	line := out.String()
	require.NotEmpty(t, line)

	// (127/128)^2 is -0.068 dBFS, printed as -0.1.
	assert.Contains(t, line, "PEAK  -0.1", "channel 0 peak should be near 0 dBFS: %q", line)
	assert.Contains(t, line, "-Inf", "silent channel peak should print as -Inf: %q", line)
	assert.Contains(t, line, "NaN", "silent channel ratio is 0/0: %q", line)
}

func TestPowerMonitorPARValues(t *testing.T) {
	var out bytes.Buffer
	m := NewPowerMonitor(10, 1, &out)

	// A constant signal has peak == mean, so PAR is exactly 0 dB.
	m.Process(fillPairs(11, 255, 0))

	line := out.String()
	require.NotEmpty(t, line)
	assert.Contains(t, line, "PAR  0.0 |  0.0 dB", "constant amplitude means unity PAR: %q", line)

	// Byte 0 normalizes to -1.0 exactly: 0 dBFS on channel 1.
	assert.Contains(t, line, "|   0.0 dBFS", "full negative scale is exactly 0 dBFS: %q", line)
}

func TestPowerMonitorResetsBetweenWindows(t *testing.T) {
	var out bytes.Buffer
	m := NewPowerMonitor(10, 1, &out)

	// First window carries a loud signal.
	m.Process(fillPairs(11, 255, 255))
	first := out.String()
	require.NotEmpty(t, first)
	out.Reset()

	// Second window is quieter; the peak must not leak from the first.
	m.Process(fillPairs(11, 160, 160))
	second := out.String()
	require.NotEmpty(t, second)
	assert.NotEqual(t, first, second, "accumulators should reset at the window boundary")

	wantPeak := 10 * math.Log10(math.Pow((160-128)/128.0, 2))
	assert.InDelta(t, -12.0, wantPeak, 0.1, "sanity check on the expected quieter level")
	assert.Contains(t, second, "PEAK -12.0", "second window should reflect only its own samples: %q", second)
}

func TestPowerMonitorIgnoresOddTrailingByte(t *testing.T) {
	var out bytes.Buffer
	m := NewPowerMonitor(10, 1, &out)

	// 10 pairs plus a dangling byte: still below the window, no report, and
	// the dangling byte must not count as a pair.
	buf := append(fillPairs(10, 200, 200), 255)
	m.Process(buf)
	assert.Empty(t, out.String())

	// One more pair tips the window.
	m.Process(fillPairs(1, 200, 200))
	assert.NotEmpty(t, out.String())
}

func TestPowerMonitorIntervalFallback(t *testing.T) {
	var out bytes.Buffer
	m := NewPowerMonitor(5, 0, &out)

	// Interval below 1 falls back to the default of 2 seconds: window is
	// 10 pairs, so 10 pairs stay silent and the 11th reports.
	m.Process(fillPairs(10, 255, 255))
	assert.Empty(t, out.String())
	m.Process(fillPairs(1, 255, 255))
	assert.NotEmpty(t, out.String())
}
