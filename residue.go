package vorbis

import (
	"math"

	"github.com/pkg/errors"
)

// unusedBook marks a codebook reference without a codebook; a residue
// cascade stage not in use, or a floor subclass decoding to zero.
const unusedBook int16 = -1

// residueStages is the number of cascade stages of a residue.
const residueStages = 8

// A Residue describes how the fine spectral structure of a submap is coded;
// partitioned vectors classified through a classbook, with up to eight
// cascaded passes of VQ codebooks per classification.
//
// ref: https://xiph.org/vorbis/doc/Vorbis_I_spec.html#x1-1190008.6
type Residue struct {
	// Residue type, 0..2.
	Type uint16
	// First and one past last spectral element coded.
	Begin uint32
	End   uint32
	// Spectral elements per partition.
	PartitionSize uint32
	// Number of classifications.
	Classifications uint8
	// Codebook the per-partition classifications are decoded with.
	Classbook uint8
	// Bitmap of in-use cascade stages per classification.
	Cascade []uint8
	// Codebook per classification and stage, Classifications*residueStages
	// entries; unusedBook where the cascade bit is clear.
	Books []int16
}

// decodeResidue parses one residue configuration off a setup header cursor.
// The classbook must be a defined codebook able to express the
// classification count, and every stage book a defined, non-empty codebook.
func decodeResidue(fr *fieldReader, books []*Codebook) (*Residue, error) {
	res := &Residue{
		Type: uint16(fr.read(16)),
	}
	if fr.err == nil && res.Type > 2 {
		return nil, errors.Wrapf(ErrInvalidSetup, "residue type %d", res.Type)
	}
	res.Begin = fr.read(24)
	res.End = fr.read(24)
	res.PartitionSize = fr.read(24) + 1
	res.Classifications = uint8(fr.read(6)) + 1
	res.Classbook = uint8(fr.read(8))
	if fr.err != nil {
		return nil, fr.err
	}
	if int(res.Classbook) >= len(books) {
		return nil, errors.Wrap(ErrInvalidSetup, "residue classbook out of range")
	}
	classbook := books[res.Classbook]
	if math.Pow(float64(res.Classifications), float64(classbook.Dimensions)) > float64(classbook.EntryCount()) {
		return nil, errors.Wrap(ErrInvalidSetup, "residue classbook cannot express classification count")
	}

	res.Cascade = make([]uint8, res.Classifications)
	for i := range res.Cascade {
		low := uint8(fr.read(3))
		var high uint8
		if fr.flag() {
			high = uint8(fr.read(5))
		}
		res.Cascade[i] = high<<3 | low
	}

	res.Books = make([]int16, int(res.Classifications)*residueStages)
	for i := range res.Cascade {
		for stage := 0; stage < residueStages; stage++ {
			if res.Cascade[i]&(1<<stage) == 0 {
				res.Books[i*residueStages+stage] = unusedBook
				continue
			}
			book := fr.read(8)
			if fr.err != nil {
				return nil, fr.err
			}
			if int(book) >= len(books) {
				return nil, errors.Wrap(ErrInvalidSetup, "residue stage book out of range")
			}
			if books[book].EntryCount() == 0 {
				return nil, errors.Wrap(ErrInvalidSetup, "residue stage book is empty")
			}
			res.Books[i*residueStages+stage] = int16(book)
		}
	}
	if fr.err != nil {
		return nil, fr.err
	}
	return res, nil
}
