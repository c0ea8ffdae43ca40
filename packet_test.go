package vorbis

import (
	"testing"

	"github.com/icza/mighty"

	"github.com/mewkiz/vorbis/internal/bits"
)

// testState parses the identification and setup header fixtures into a
// decoder state; 2 channels, block sizes 64 and 2048.
func testState(t *testing.T, opt setupOptions) (*IDHeader, *SetupHeader) {
	t.Helper()
	packet := idPacket()
	packet[28] = 0xB6 // block sizes 64 and 2048
	id, err := parseIDHeader(packet)
	if err != nil {
		t.Fatal(err)
	}
	setup, err := parseSetupHeader(buildSetupPacket(opt), id.AudioChannels)
	if err != nil {
		t.Fatal(err)
	}
	return id, setup
}

// writeCodeword writes the bits of a canonical codeword, first bit on
// stream first.
func writeCodeword(w *bits.Writer, word uint32, length uint8) {
	for n := uint8(0); n < length; n++ {
		w.Write(word>>(length-1-n)&1, 1)
	}
}

func TestDecodeAudioPacket(t *testing.T) {
	eq := mighty.Eq(t)

	id, setup := testState(t, defaultSetup)

	// A long-block packet leading into a long block from a short one.
	w := new(bits.Writer)
	w.Write(0, 1)  // packet type
	w.Write(1, 1)  // mode index, ilog(1) bits
	w.Write(0, 1)  // previous window flag
	w.Write(1, 1)  // next window flag
	w.Write(1, 1)  // channel 0 floor in use
	w.Write(10, 8) // Y[0]
	w.Write(20, 8) // Y[1]
	// The single floor class has no subclass codebooks; its Y values decode
	// to zero without further reads.
	w.Write(0, 1) // channel 1 floor not coded

	p, err := DecodeAudioPacket(id, setup, w.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	eq(uint32(1), p.Mode)
	eq(uint32(2048), p.BlockSize)
	eq(false, p.PrevWindowFlag)
	eq(true, p.NextWindowFlag)
	eq(uint32(496), p.LeftStart)
	eq(uint32(528), p.LeftEnd)
	eq(uint32(1024), p.RightStart)
	eq(uint32(2048), p.RightEnd)
	eq(float64(1), p.Window(600))
	eq(float64(0), p.Window(400))

	eq(2, len(p.Floors))
	ch0 := p.Floors[0]
	eq(false, ch0.Unused)
	eq(uint32(10), ch0.Ys[0])
	eq(uint32(20), ch0.Ys[1])
	eq(uint32(0), ch0.Ys[2])
	eq(uint32(0), ch0.Ys[3])
	// Undelta'd points carry their predictions; the line from (0, 10) to
	// (256, 20) renders 13 at X=100, then (0, 10) to (100, 13) renders 11
	// at X=50.
	eq(uint32(13), ch0.FinalYs[2])
	eq(false, ch0.Used[2])
	eq(uint32(11), ch0.FinalYs[3])
	eq(false, ch0.Used[3])

	eq(true, p.Floors[1].Unused)
}

func TestDecodeAudioPacketSubclass(t *testing.T) {
	eq := mighty.Eq(t)

	opt := defaultSetup
	opt.subclass = true
	id, setup := testState(t, opt)

	// A short-block packet whose floor Y values decode through the
	// masterbook and subclass codebooks; codebook 0 assigns codewords
	// 00, 01, 10, 11 to entries 0..3.
	w := new(bits.Writer)
	w.Write(0, 1) // packet type
	w.Write(0, 1) // mode index
	w.Write(1, 1) // channel 0 floor in use
	w.Write(10, 8)
	w.Write(20, 8)
	writeCodeword(w, 0x2, 2) // class value 2 from the masterbook
	writeCodeword(w, 0x1, 2) // Y[2], entry 1
	writeCodeword(w, 0x3, 2) // Y[3], entry 3
	w.Write(0, 1) // channel 1 floor not coded

	p, err := DecodeAudioPacket(id, setup, w.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	eq(uint32(64), p.BlockSize)
	ch0 := p.Floors[0]
	eq(uint32(1), ch0.Ys[2])
	eq(uint32(3), ch0.Ys[3])
	// predicted 13 at X=100; odd value 1 lands one step below.
	eq(uint32(12), ch0.FinalYs[2])
	eq(true, ch0.Used[2])
	// predicted 11 at X=50 against the updated neighbour; odd value 3
	// lands two steps below.
	eq(uint32(9), ch0.FinalYs[3])
	eq(true, ch0.Used[3])
	eq(true, ch0.Used[0])
	eq(true, ch0.Used[1])
}

func TestDecodeAudioPacketNonAudio(t *testing.T) {
	eq := mighty.Eq(t)

	id, setup := testState(t, defaultSetup)
	_, err := DecodeAudioPacket(id, setup, []byte{0x01})
	eq(InvalidStreamError{Flags: FlagUnexpectedNonAudioPacket}, err)
}

func TestDecodeAudioPacketEndOfPacket(t *testing.T) {
	eq := mighty.Eq(t)

	id, setup := testState(t, defaultSetup)

	// The packet ends inside the first Y field of channel 0.
	_, err := DecodeAudioPacket(id, setup, []byte{0x04})
	eq(InvalidStreamError{Flags: FlagEndOfPacket}, err)

	// The empty packet fails on the packet type bit.
	_, err = DecodeAudioPacket(id, setup, nil)
	eq(InvalidStreamError{Flags: FlagEndOfPacket}, err)
}

func TestDecodeAudioPacketFloor0(t *testing.T) {
	eq := mighty.Eq(t)

	id, setup := testState(t, defaultSetup)
	// Swap in a floor 0 config; its audio-time decode is unimplemented, so
	// packets selecting it abort as undecodable.
	setup.Floors[0] = &Floor{
		Type: 0,
		Data: &Floor0{Order: 1, Rate: 44100, BarkMapSize: 256, AmplitudeBits: 6, AmplitudeOffset: 1, Books: []uint8{0}},
	}
	_, err := DecodeAudioPacket(id, setup, []byte{0x00})
	eq(InvalidStreamError{Flags: FlagUndecodablePacket}, err)
}

// TestDecodeAudioPacketBudget verifies that the packet cursor never runs
// past its packet; a decoded packet leaves a non-negative remaining bit
// budget by construction of the reader.
func TestDecodeAudioPacketBudget(t *testing.T) {
	id, setup := testState(t, defaultSetup)

	w := new(bits.Writer)
	w.Write(0, 1)
	w.Write(0, 1)
	w.Write(0, 1) // channel 0 floor not coded
	w.Write(0, 1) // channel 1 floor not coded
	packet := w.Bytes()

	if _, err := DecodeAudioPacket(id, setup, packet); err != nil {
		t.Fatal(err)
	}
}
