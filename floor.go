package vorbis

import (
	"github.com/pkg/errors"
)

// A Floor is the configuration of one floor; a coarse spectral envelope
// encoded either as LSP coefficients (type 0) or as a piecewise-linear
// curve (type 1).
type Floor struct {
	// Floor type, 0 or 1.
	Type uint16
	// Floor config body: *Floor0 or *Floor1.
	Data interface{}
}

// A Floor0 holds the configuration of an LSP floor. The configuration is
// parsed and retained, but audio-time decode of floor 0 packets is not
// implemented.
//
// ref: https://xiph.org/vorbis/doc/Vorbis_I_spec.html#x1-1080006.2
type Floor0 struct {
	Order           uint8
	Rate            uint16
	BarkMapSize     uint16
	AmplitudeBits   uint8
	AmplitudeOffset uint8
	// Codebook indices the packet amplitude selects from.
	Books []uint8
}

// A Floor1 holds the configuration of a piecewise-linear floor; an ordered
// list of X coordinates partitioned into classes, each class decoding a run
// of Y values through its subclass codebooks.
//
// ref: https://xiph.org/vorbis/doc/Vorbis_I_spec.html#x1-1110007.2
type Floor1 struct {
	// Class index per partition.
	PartitionClasses []uint8
	Classes          []FloorClass
	// Y value quantization, 1..4; selects the range {256, 128, 86, 64}.
	Multiplier uint8
	// Bit width of the X coordinates.
	RangeBits uint8
	// X coordinates in stream order; Values[0] = 0, Values[1] = 1<<RangeBits.
	Values []uint32
}

// A FloorClass describes how one floor 1 class decodes its run of Y values.
type FloorClass struct {
	// Number of Y values the class contributes per partition.
	Dimensions uint8
	// Subclass count as a 2 exponent, 0..3.
	SubclassBits uint8
	// Codebook the packed subclass choice is decoded with; -1 when
	// SubclassBits is 0 and no choice is read.
	Masterbook int16
	// Codebook per subclass; unusedBook marks a subclass without one, whose
	// Y values decode to 0.
	Subbooks []int16
}

// Range returns the Y value range selected by the floor multiplier.
func (fl *Floor1) Range() uint32 {
	return [4]uint32{256, 128, 86, 64}[fl.Multiplier-1]
}

// maxFloor1Values bounds the X coordinate list of a floor 1 config.
const maxFloor1Values = 65

// decodeFloor parses one floor configuration off a setup header cursor.
// Codebook index fields are validated against the codebook count.
func decodeFloor(fr *fieldReader, bookCount int) (*Floor, error) {
	floor := &Floor{
		Type: uint16(fr.read(16)),
	}
	if fr.err != nil {
		return nil, fr.err
	}
	switch floor.Type {
	case 0:
		fl := &Floor0{
			Order:           uint8(fr.read(8)),
			Rate:            uint16(fr.read(16)),
			BarkMapSize:     uint16(fr.read(16)),
			AmplitudeBits:   uint8(fr.read(6)),
			AmplitudeOffset: uint8(fr.read(8)),
		}
		fl.Books = make([]uint8, fr.read(4)+1)
		for i := range fl.Books {
			fl.Books[i] = uint8(fr.read(8))
			if fr.err == nil && int(fl.Books[i]) >= bookCount {
				return nil, errors.Wrap(ErrInvalidSetup, "floor 0 codebook out of range")
			}
		}
		floor.Data = fl
	case 1:
		fl := &Floor1{
			PartitionClasses: make([]uint8, fr.read(5)),
		}
		maxClass := -1
		for i := range fl.PartitionClasses {
			class := uint8(fr.read(4))
			fl.PartitionClasses[i] = class
			if int(class) > maxClass {
				maxClass = int(class)
			}
		}
		fl.Classes = make([]FloorClass, maxClass+1)
		for i := range fl.Classes {
			class := &fl.Classes[i]
			class.Dimensions = uint8(fr.read(3)) + 1
			class.SubclassBits = uint8(fr.read(2))
			class.Masterbook = unusedBook
			if class.SubclassBits > 0 {
				class.Masterbook = int16(fr.read(8))
				if fr.err == nil && int(class.Masterbook) >= bookCount {
					return nil, errors.Wrap(ErrInvalidSetup, "floor class masterbook out of range")
				}
			}
			class.Subbooks = make([]int16, 1<<class.SubclassBits)
			for j := range class.Subbooks {
				// Stored biased by one; a zero byte on stream means the
				// subclass has no codebook.
				book := int16(fr.read(8)) - 1
				if fr.err == nil && int(book) >= bookCount {
					return nil, errors.Wrap(ErrInvalidSetup, "floor subclass codebook out of range")
				}
				class.Subbooks[j] = book
			}
		}
		fl.Multiplier = uint8(fr.read(2)) + 1
		fl.RangeBits = uint8(fr.read(4))

		valueCount := 2
		for _, class := range fl.PartitionClasses {
			valueCount += int(fl.Classes[class].Dimensions)
		}
		if valueCount > maxFloor1Values {
			return nil, errors.Wrap(ErrInvalidSetup, "floor X coordinate count out of range")
		}
		fl.Values = make([]uint32, valueCount)
		fl.Values[0] = 0
		fl.Values[1] = 1 << fl.RangeBits
		for i := 2; i < valueCount; i++ {
			fl.Values[i] = fr.read(uint(fl.RangeBits))
		}
		if fr.err != nil {
			return nil, fr.err
		}
		for i := 0; i < valueCount-1; i++ {
			for j := i + 1; j < valueCount; j++ {
				if fl.Values[i] == fl.Values[j] {
					return nil, errors.Wrap(ErrInvalidSetup, "duplicate floor X coordinate")
				}
			}
		}
		floor.Data = fl
	default:
		return nil, errors.Wrapf(ErrInvalidSetup, "floor type %d", floor.Type)
	}
	if fr.err != nil {
		return nil, fr.err
	}
	return floor, nil
}

// lowNeighbour returns the index j < i maximising values[j] subject to
// values[j] < values[i], or -1 when no such index exists.
func lowNeighbour(values []uint32, i int) int {
	n := -1
	for j := 0; j < i; j++ {
		if values[j] < values[i] && (n == -1 || values[j] > values[n]) {
			n = j
		}
	}
	return n
}

// highNeighbour returns the index j < i minimising values[j] subject to
// values[j] > values[i], or -1 when no such index exists.
func highNeighbour(values []uint32, i int) int {
	n := -1
	for j := 0; j < i; j++ {
		if values[j] > values[i] && (n == -1 || values[j] < values[n]) {
			n = j
		}
	}
	return n
}

// renderPoint returns the Y value at x of the integer DDA line from
// (x0, y0) to (x1, y1), clipped to non-negative.
func renderPoint(x0, y0, x1, y1, x uint32) uint32 {
	dy := int32(y1) - int32(y0)
	adx := int32(x1) - int32(x0)
	ady := dy
	if ady < 0 {
		ady = -ady
	}
	off := ady * (int32(x) - int32(x0)) / adx
	var y int32
	if dy < 0 {
		y = int32(y0) - off
	} else {
		y = int32(y0) + off
	}
	if y < 0 {
		return 0
	}
	return uint32(y)
}
