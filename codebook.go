package vorbis

import (
	"math"

	"github.com/pkg/errors"
)

// codebookSyncPattern is the 24-bit pattern opening every codebook in a
// setup header; the bytes 0x42, 0x43, 0x56 ("BCV") as read LSB-first.
const codebookSyncPattern = 0x564342

// A Codebook is a VQ dictionary plus the canonical Huffman code assigning a
// variable-length bit string to each of its entries.
//
// ref: https://xiph.org/vorbis/doc/Vorbis_I_spec.html#x1-520003.2.1
type Codebook struct {
	// Number of scalars per VQ vector.
	Dimensions uint16
	// Codeword length in bits per entry; 0 marks an unused entry.
	EntryLengths []uint8
	// Length table encoding used on stream.
	Ordered bool
	Sparse  bool
	// VQ lookup table type; 0 means the codebook carries no vector values.
	LookupType uint8
	// VQ parameters, present when LookupType > 0.
	MinValue      float32
	DeltaValue    float32
	ValueBits     uint8
	SequenceP     bool
	Multiplicands []uint16

	// Canonical Huffman lookup, built once at setup time.
	lut huffmanTable
}

// EntryCount returns the number of entries of the codebook.
func (cb *Codebook) EntryCount() uint32 {
	return uint32(len(cb.EntryLengths))
}

// decodeCodebook parses one codebook off a setup header cursor; the sync
// pattern, the dimension and entry counts, the codeword length table, and
// the optional VQ lookup values. The Huffman lookup of the codebook is built
// before returning.
func decodeCodebook(fr *fieldReader) (*Codebook, error) {
	if fr.read(24) != codebookSyncPattern {
		fr.fail(errors.Wrap(ErrInvalidSetup, "bad codebook sync pattern"))
	}
	if fr.err != nil {
		return nil, fr.err
	}

	cb := &Codebook{
		Dimensions: uint16(fr.read(16)),
	}
	entryCount := fr.read(24)
	if fr.err != nil {
		return nil, fr.err
	}
	cb.EntryLengths = make([]uint8, entryCount)

	cb.Ordered = fr.flag()
	if !cb.Ordered {
		cb.Sparse = fr.flag()
		if cb.Sparse {
			for i := range cb.EntryLengths {
				if fr.flag() {
					cb.EntryLengths[i] = uint8(fr.read(5)) + 1
				}
			}
		} else {
			for i := range cb.EntryLengths {
				cb.EntryLengths[i] = uint8(fr.read(5)) + 1
			}
		}
	} else {
		// The initial length of an ordered table is stored unbiased.
		length := uint8(fr.read(5))
		for i := uint32(0); i < entryCount; {
			run := fr.read(uint(ilog(entryCount - i)))
			if fr.err != nil {
				return nil, fr.err
			}
			if i+run > entryCount {
				return nil, errors.Wrap(ErrInvalidSetup, "ordered codebook length run past entry count")
			}
			for j := i; j < i+run; j++ {
				cb.EntryLengths[j] = length
			}
			i += run
			length++
		}
	}

	cb.LookupType = uint8(fr.read(4))
	if fr.err != nil {
		return nil, fr.err
	}
	if cb.LookupType > 2 {
		return nil, errors.Wrapf(ErrInvalidSetup, "codebook lookup type %d", cb.LookupType)
	}
	if cb.LookupType > 0 {
		cb.MinValue = float32Unpack(fr.read(32))
		cb.DeltaValue = float32Unpack(fr.read(32))
		cb.ValueBits = uint8(fr.read(4)) + 1
		cb.SequenceP = fr.flag()

		var valueCount uint32
		if cb.LookupType == 1 {
			valueCount = lookup1Values(entryCount, cb.Dimensions)
		} else {
			valueCount = entryCount * uint32(cb.Dimensions)
		}
		cb.Multiplicands = make([]uint16, valueCount)
		for i := range cb.Multiplicands {
			cb.Multiplicands[i] = uint16(fr.read(uint(cb.ValueBits)))
		}
	}
	if fr.err != nil {
		return nil, fr.err
	}

	lut, err := buildHuffman(cb.EntryLengths)
	if err != nil {
		return nil, err
	}
	cb.lut = lut
	return cb, nil
}

// ilog returns the position of the highest set bit of v, counting from one;
// ilog(0) is 0. It gives the number of bits required to store values in
// [0, v].
func ilog(v uint32) uint32 {
	var n uint32
	for ; v != 0; v >>= 1 {
		n++
	}
	return n
}

// float32Unpack translates the packed binary representation of a Vorbis
// codebook float into the host floating point format; a 21-bit mantissa, a
// 10-bit excess-788 exponent, and a sign bit.
func float32Unpack(v uint32) float32 {
	mantissa := float64(v & 0x1FFFFF)
	exponent := float64((v & 0x7FE00000) >> 21)
	if v&0x80000000 != 0 {
		mantissa = -mantissa
	}
	return float32(mantissa * math.Pow(2, exponent-788))
}

// lookup1Values returns the greatest integer value for which its to the
// power of the codebook dimension count is not greater than the codebook
// entry count; the row length of a type 1 VQ lookup table.
func lookup1Values(entryCount uint32, dimensions uint16) uint32 {
	if dimensions == 0 {
		return 0
	}
	r := uint32(math.Floor(math.Pow(float64(entryCount), 1/float64(dimensions))))
	if r == 0 {
		r = 1
	}
	// Compensate for the rounding of Pow.
	for ipow(r, dimensions) > entryCount {
		r--
	}
	for r < math.MaxUint32 && ipow(r+1, dimensions) != 0 && ipow(r+1, dimensions) <= entryCount {
		r++
	}
	return r
}

// ipow returns b to the power of e, or 0 on uint32 overflow.
func ipow(b uint32, e uint16) uint32 {
	r := uint64(1)
	for i := uint16(0); i < e; i++ {
		r *= uint64(b)
		if r > math.MaxUint32 {
			return 0
		}
	}
	return uint32(r)
}
