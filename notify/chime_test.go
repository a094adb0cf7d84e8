package notify

import (
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChimeGeneratorRange(t *testing.T) {
	rate := beep.SampleRate(44100)
	gen := NewChimeGenerator(rate)

	samples := make([][2]float64, rate.N(chimeLength))
	n, ok := gen.Stream(samples)
	require.True(t, ok)
	require.Equal(t, len(samples), n)
	assert.NoError(t, gen.Err())

	for i := 0; i < n; i++ {
		assert.LessOrEqual(t, samples[i][0], 1.0)
		assert.GreaterOrEqual(t, samples[i][0], -1.0)
		assert.Equal(t, samples[i][0], samples[i][1], "sample %d", i)
	}
}

func TestChimeGeneratorDecays(t *testing.T) {
	rate := beep.SampleRate(44100)
	gen := NewChimeGenerator(rate)

	peak := func(samples [][2]float64) float64 {
		p := 0.0
		for _, s := range samples {
			p = max(p, s[0], -s[0])
		}
		return p
	}

	head := make([][2]float64, rate.N(20*time.Millisecond))
	gen.Stream(head)
	skip := make([][2]float64, rate.N(100*time.Millisecond))
	gen.Stream(skip)
	tail := make([][2]float64, rate.N(20*time.Millisecond))
	gen.Stream(tail)

	assert.Greater(t, peak(head), peak(tail))
}

func TestTakeBoundsChime(t *testing.T) {
	s := beep.Take(sampleRate.N(chimeLength), NewChimeGenerator(sampleRate))

	total := 0
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		total += n
		if !ok {
			break
		}
	}
	assert.Equal(t, sampleRate.N(chimeLength), total)
}

func TestNotifyBeforeInitIsNoop(t *testing.T) {
	c := NewChime()
	c.Notify()
	c.Close()
	assert.True(t, c.last.IsZero())

	Nop{}.Notify()
}
