package vorbis

import (
	"testing"

	"github.com/icza/mighty"
)

func TestRenderPoint(t *testing.T) {
	eq := mighty.Eq(t)

	golden := []struct {
		x0, y0, x1, y1, x, want uint32
	}{
		// Endpoints map to their own values.
		{x0: 0, y0: 10, x1: 256, y1: 20, x: 0, want: 10},
		// A rising line.
		{x0: 0, y0: 10, x1: 256, y1: 20, x: 100, want: 13},
		{x0: 0, y0: 10, x1: 256, y1: 20, x: 128, want: 15},
		// A falling line.
		{x0: 0, y0: 20, x1: 256, y1: 10, x: 128, want: 15},
		{x0: 10, y0: 100, x1: 20, y1: 0, x: 19, want: 10},
		// A flat line.
		{x0: 0, y0: 7, x1: 64, y1: 7, x: 33, want: 7},
		// Clipped to non-negative.
		{x0: 0, y0: 2, x1: 4, y1: 0, x: 100, want: 0},
	}
	for _, g := range golden {
		eq(g.want, renderPoint(g.x0, g.y0, g.x1, g.y1, g.x))
	}

	// On x in [x0, x1] the result stays within the endpoint values.
	for x := uint32(0); x <= 256; x++ {
		y := renderPoint(0, 30, 256, 90, x)
		if y < 30 || y > 90 {
			t.Fatalf("renderPoint at %d = %d, outside [30, 90]", x, y)
		}
	}
}

func TestNeighbours(t *testing.T) {
	eq := mighty.Eq(t)

	// The X list of a floor config; the first two entries are the range
	// bounds, the rest arrive in stream order.
	values := []uint32{0, 256, 128, 64, 192, 32}

	// Neighbours of values[4] = 192 among the indices before it.
	eq(2, lowNeighbour(values, 4))  // 128
	eq(1, highNeighbour(values, 4)) // 256

	eq(0, lowNeighbour(values, 5))  // 0
	eq(3, highNeighbour(values, 5)) // 64

	eq(0, lowNeighbour(values, 2))
	eq(1, highNeighbour(values, 2))
}

func TestSynthesizeAmplitude(t *testing.T) {
	eq := mighty.Eq(t)

	fl := &Floor1{
		Multiplier: 1, // range 256
		RangeBits:  8,
		Values:     []uint32{0, 256, 64},
	}

	golden := []struct {
		val   uint32
		want  uint32
		used  bool
	}{
		// A zero difference leaves the point unused at its prediction.
		{val: 0, want: 100, used: false},
		// Small differences alternate above and below the prediction.
		{val: 50, want: 125, used: true},
		{val: 51, want: 74, used: true},
		// At or above room, the remaining headroom side is used directly.
		{val: 201, want: 201, used: true},
		{val: 255, want: 255, used: true},
	}
	for _, g := range golden {
		curve := synthesizeAmplitude(fl, []uint32{100, 100, g.val}, fl.Range())
		eq(uint32(100), curve.FinalYs[0])
		eq(uint32(100), curve.FinalYs[1])
		eq(g.want, curve.FinalYs[2])
		eq(g.used, curve.Used[2])
	}

	// The low-room side saturates downward.
	curve := synthesizeAmplitude(fl, []uint32{200, 200, 150}, fl.Range())
	// predicted 200, highroom 56, lowroom 200, room 112; 150 >= 112.
	eq(uint32(200-(150-56)-1), curve.FinalYs[2])
	eq(true, curve.Used[2])

	// Results clamp to the range.
	curve = synthesizeAmplitude(fl, []uint32{255, 255, 10}, fl.Range())
	eq(uint32(255), curve.FinalYs[0])
	if curve.FinalYs[2] > 255 {
		t.Fatalf("final Y %d above range", curve.FinalYs[2])
	}
}
