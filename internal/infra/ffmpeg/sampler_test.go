package ffmpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleInterval(t *testing.T) {
	tests := []struct {
		name     string
		fps      float64
		expected int
	}{
		{"25 fps keeps every 2nd frame", 25, 2},
		{"30 fps keeps every 3rd frame", 30, 3},
		{"exactly 10 fps keeps every frame", 10, 1},
		{"low fps never upsamples", 5, 1},
		{"high fps", 60, 6},
		{"fractional fps below threshold", 9.97, 1},
		{"29.97 ntsc", 29.97, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sampleInterval(tt.fps))
		})
	}
}

func TestParseRate(t *testing.T) {
	rate, err := parseRate("25/1")
	require.NoError(t, err)
	assert.Equal(t, 25.0, rate)

	rate, err = parseRate("30000/1001")
	require.NoError(t, err)
	assert.InDelta(t, 29.97, rate, 0.01)

	rate, err = parseRate("24")
	require.NoError(t, err)
	assert.Equal(t, 24.0, rate)

	rate, err = parseRate("0/0")
	require.NoError(t, err)
	assert.Equal(t, 0.0, rate)

	_, err = parseRate("garbage/1")
	assert.Error(t, err)
}
