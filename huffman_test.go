package vorbis

import (
	"testing"

	"github.com/icza/mighty"

	"github.com/mewkiz/vorbis/internal/bits"
)

func TestBuildHuffman(t *testing.T) {
	eq := mighty.Eq(t)

	golden := []struct {
		lengths []uint8
		// Expected codeword per entry, as "word>>(32-length)" against length,
		// keyed by entry index.
		words map[uint32]uint32
	}{
		// A full binary code; entries 0..3 get 00, 01, 10, 11.
		{
			lengths: []uint8{2, 2, 2, 2},
			words:   map[uint32]uint32{0: 0x0, 1: 0x1, 2: 0x2, 3: 0x3},
		},
		// The canonical example tree of the Vorbis I specification.
		{
			lengths: []uint8{2, 4, 4, 4, 4, 2, 3, 3},
			words:   map[uint32]uint32{0: 0x0, 1: 0x4, 2: 0x5, 3: 0x6, 4: 0x7, 5: 0x2, 6: 0x6, 7: 0x7},
		},
		// Sparse entries are skipped.
		{
			lengths: []uint8{1, 0, 0, 1},
			words:   map[uint32]uint32{0: 0x0, 3: 0x1},
		},
		// A single-entry code.
		{
			lengths: []uint8{1},
			words:   map[uint32]uint32{0: 0x0},
		},
		// An underfull code; codeword 11 stays unassigned.
		{
			lengths: []uint8{1, 2},
			words:   map[uint32]uint32{0: 0x0, 1: 0x2},
		},
	}
	for _, g := range golden {
		table, err := buildHuffman(g.lengths)
		if err != nil {
			t.Fatalf("lengths %v: %v", g.lengths, err)
		}
		// One leaf per non-zero entry.
		eq(len(g.words), len(table))
		for _, c := range table {
			eq(g.lengths[c.entry], c.length)
			want, ok := g.words[c.entry]
			if !ok {
				t.Fatalf("lengths %v: unexpected leaf for entry %d", g.lengths, c.entry)
			}
			eq(want, c.word>>(32-c.length))
		}
	}
}

func TestBuildHuffmanOverfull(t *testing.T) {
	eq := mighty.Eq(t)

	// Five length-2 entries ask for one more codeword than length 2 holds.
	_, err := buildHuffman([]uint8{2, 2, 2, 2, 2})
	eq(ErrInvalidCodebook, err)

	// Three length-1 entries.
	_, err = buildHuffman([]uint8{1, 1, 1})
	eq(ErrInvalidCodebook, err)
}

func TestHuffmanDecode(t *testing.T) {
	eq := mighty.Eq(t)

	table, err := buildHuffman([]uint8{2, 4, 4, 4, 4, 2, 3, 3})
	if err != nil {
		t.Fatal(err)
	}

	// The codeword of entry 5 is 10; on stream the first bit read is the
	// high bit, so the byte 0x01 decodes to entry 5.
	br := bits.NewReader([]byte{0x01, 0x00, 0x00, 0x00})
	entry, err := table.decode(br)
	if err != nil {
		t.Fatal(err)
	}
	eq(uint32(5), entry)
	eq(2, br.Pos())

	// Each codeword decodes back to its entry.
	for _, c := range table {
		w := new(bits.Writer)
		for n := uint8(0); n < c.length; n++ {
			w.Write(c.word>>(31-n)&1, 1)
		}
		w.Write(0, 8) // padding past the codeword
		entry, err := table.decode(bits.NewReader(w.Bytes()))
		if err != nil {
			t.Fatalf("entry %d: %v", c.entry, err)
		}
		eq(c.entry, entry)
	}
}

func TestHuffmanDecodeSingleEntry(t *testing.T) {
	eq := mighty.Eq(t)

	// A single-entry codebook decodes any single bit to entry 0.
	table, err := buildHuffman([]uint8{1})
	if err != nil {
		t.Fatal(err)
	}
	for _, buf := range [][]byte{{0x00}, {0x01}} {
		br := bits.NewReader(buf)
		entry, err := table.decode(br)
		if err != nil {
			t.Fatal(err)
		}
		eq(uint32(0), entry)
		eq(1, br.Pos())
	}
}

func TestHuffmanDecodeUnknownCodeword(t *testing.T) {
	eq := mighty.Eq(t)

	// The underfull code {0, 10} leaves every word of 1-bits unassignable.
	table, err := buildHuffman([]uint8{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	br := bits.NewReader([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	_, err = table.decode(br)
	eq(InvalidStreamError{Flags: FlagUnknownCodeword}, err)
}

func TestHuffmanDecodeEndOfPacket(t *testing.T) {
	eq := mighty.Eq(t)

	table, err := buildHuffman([]uint8{3, 3, 3, 3, 3, 3, 3, 3})
	if err != nil {
		t.Fatal(err)
	}
	// Two bits of packet cannot hold any length-3 codeword.
	br := bits.NewReader([]byte{0x00})
	if _, err := br.Read(6); err != nil {
		t.Fatal(err)
	}
	_, err = table.decode(br)
	eq(InvalidStreamError{Flags: FlagEndOfPacket}, err)
}
