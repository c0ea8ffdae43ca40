package vorbis

import (
	"sort"

	"github.com/mewkiz/vorbis/internal/bits"
)

// A huffmanCode is one assigned codeword of a canonical Huffman code.
type huffmanCode struct {
	// Codeword bits, left-aligned to 32 bits; the first bit on stream is the
	// most significant bit of word.
	word uint32
	// Codeword length in bits, 1..32.
	length uint8
	// Codebook entry the codeword decodes to.
	entry uint32
}

// A huffmanTable holds the codewords of a canonical Huffman code sorted by
// left-aligned codeword value, for binary search during decode.
type huffmanTable []huffmanCode

// buildHuffman assigns canonical Huffman codewords to the non-zero entries
// of the given length table and returns them sorted by codeword value.
//
// The canonical rule: entries are assigned in entry index order, a left
// branch is 0, a right branch is 1, and each entry takes the lowest
// available path of exactly its length. Entries of length 0 are unused and
// skipped. Underfull codes, which leave code points unassigned, are legal
// per the Vorbis I specification; overfull length tables fail with
// ErrInvalidCodebook.
func buildHuffman(lengths []uint8) (huffmanTable, error) {
	table := make(huffmanTable, 0, len(lengths))

	// available[n] is the lowest unassigned codeword of length n,
	// left-aligned, or 0 when the length is exhausted. The root of the code
	// space is a pseudo-codeword of length 0.
	var available [33]uint32
	first := true
	for i, length := range lengths {
		if length == 0 {
			continue
		}
		if length > 32 {
			return nil, ErrInvalidCodebook
		}
		if first {
			// The first entry takes the all-zero path; its siblings at each
			// depth become the lowest available codewords.
			table = append(table, huffmanCode{word: 0, length: length, entry: uint32(i)})
			for n := uint8(1); n <= length; n++ {
				available[n] = 1 << (32 - n)
			}
			first = false
			continue
		}

		// Take the longest available codeword no longer than the entry.
		n := length
		for n > 0 && available[n] == 0 {
			n--
		}
		if n == 0 {
			return nil, ErrInvalidCodebook
		}
		word := available[n]
		available[n] = 0
		table = append(table, huffmanCode{word: word, length: length, entry: uint32(i)})

		// Extending a shorter codeword to the entry's length frees the right
		// sibling at every depth in between.
		for m := length; m > n; m-- {
			available[m] = word + 1<<(32-m)
		}
	}

	sort.Slice(table, func(i, j int) bool { return table[i].word < table[j].word })
	return table, nil
}

// decode reads one codeword off the bit cursor and returns the codebook
// entry it maps to. Bits are accumulated left-aligned and matched against
// the table after every bit; a read exhausting the packet surfaces as an
// InvalidStreamError with FlagEndOfPacket, and consuming 32 bits without a
// match as one with FlagUnknownCodeword.
func (t huffmanTable) decode(br *bits.Reader) (uint32, error) {
	// A single-entry codebook assigns its sole codeword regardless of the
	// bit values read.
	if len(t) == 1 {
		if _, err := br.Read(uint(t[0].length)); err != nil {
			return 0, InvalidStreamError{Flags: FlagEndOfPacket}
		}
		return t[0].entry, nil
	}

	var word uint32
	for n := 1; n <= 32; n++ {
		b, err := br.Read(1)
		if err != nil {
			return 0, InvalidStreamError{Flags: FlagEndOfPacket}
		}
		word |= b << (32 - n)
		i := sort.Search(len(t), func(i int) bool { return t[i].word >= word })
		if i < len(t) && t[i].word == word && int(t[i].length) == n {
			return t[i].entry, nil
		}
	}
	return 0, InvalidStreamError{Flags: FlagUnknownCodeword}
}
