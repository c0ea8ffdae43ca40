package vorbis

import (
	"github.com/mewkiz/vorbis/internal/bits"
)

// An AudioPacket holds the decoded head of one audio packet; the selected
// mode, the derived window, and the reconstructed floor curve parameters of
// each channel. Residue decode, coupling inversion and the inverse MDCT
// operate on this data downstream.
type AudioPacket struct {
	// Index of the mode the packet selected.
	Mode uint32
	// Block size of the packet in samples.
	BlockSize uint32
	// Window overlap flags of a long-block packet; false marks a short
	// neighbouring block.
	PrevWindowFlag bool
	NextWindowFlag bool
	// Window slope boundaries.
	LeftStart  uint32
	LeftEnd    uint32
	RightStart uint32
	RightEnd   uint32
	// Floor curve per channel.
	Floors []*FloorCurve
}

// Window evaluates the window shape of the packet at sample position i.
func (p *AudioPacket) Window(i uint32) float64 {
	return windowShape(i, p.LeftStart, p.LeftEnd, p.RightStart, p.RightEnd)
}

// A FloorCurve holds the floor 1 curve of one channel of an audio packet,
// as quantized Y values ready for curve synthesis.
type FloorCurve struct {
	// Unused reports that the floor of the channel is not coded in this
	// packet; the channel decodes to silence.
	Unused bool
	// Raw Y values in stream order.
	Ys []uint32
	// Y values after amplitude synthesis, in stream order. The first two
	// are Y[0] and Y[1] as read; the rest are clamped to [0, range-1].
	FinalYs []uint32
	// Whether each point contributes to the final curve; points left false
	// carry only their predicted value and render as zero.
	Used []bool
}

// DecodeAudioPacket decodes the head of one audio packet against a decoder
// state; the packet type bit, the mode selection, the window boundaries,
// and the floor curve of every channel. The decoder state is only read, and
// remains usable after a failed packet.
func DecodeAudioPacket(id *IDHeader, setup *SetupHeader, packet []byte) (*AudioPacket, error) {
	fr := &fieldReader{
		br:  bits.NewReader(packet),
		eof: InvalidStreamError{Flags: FlagEndOfPacket},
	}

	if packetType := fr.read(1); fr.err == nil && packetType != 0 {
		return nil, InvalidStreamError{Flags: FlagUnexpectedNonAudioPacket}
	}
	modeIndex := fr.read(uint(ilog(uint32(len(setup.Modes)) - 1)))
	if fr.err != nil {
		return nil, fr.err
	}
	if modeIndex >= uint32(len(setup.Modes)) {
		return nil, InvalidStreamError{Flags: FlagUndecodablePacket}
	}
	mode := setup.Modes[modeIndex]
	mapping := setup.Mappings[mode.Mapping]

	p := &AudioPacket{
		Mode:      modeIndex,
		BlockSize: id.BlockSize(mode.BlockFlag),
	}
	if mode.BlockFlag {
		p.PrevWindowFlag = fr.flag()
		p.NextWindowFlag = fr.flag()
		if fr.err != nil {
			return nil, fr.err
		}
	}
	p.LeftStart, p.LeftEnd, p.RightStart, p.RightEnd =
		windowBounds(p.BlockSize, 1<<id.Blocksize0, mode.BlockFlag, p.PrevWindowFlag, p.NextWindowFlag)

	p.Floors = make([]*FloorCurve, id.AudioChannels)
	for ch := range p.Floors {
		submap := mapping.Muxes[ch]
		floor := setup.Floors[mapping.SubmapFloors[submap]]
		fl, ok := floor.Data.(*Floor1)
		if !ok {
			// Floor 0 configurations parse, but their audio-time decode is
			// not implemented.
			return nil, InvalidStreamError{Flags: FlagUndecodablePacket}
		}
		curve, err := decodeFloorCurve(fr, setup, fl)
		if err != nil {
			return nil, err
		}
		p.Floors[ch] = curve
	}
	return p, nil
}

// decodeFloorCurve decodes the floor 1 Y values of one channel and runs
// amplitude synthesis on them.
func decodeFloorCurve(fr *fieldReader, setup *SetupHeader, fl *Floor1) (*FloorCurve, error) {
	if nonzero := fr.flag(); fr.err != nil || !nonzero {
		if fr.err != nil {
			return nil, fr.err
		}
		return &FloorCurve{Unused: true}, nil
	}

	rng := fl.Range()
	yBits := uint(ilog(rng - 1))
	ys := make([]uint32, 2, len(fl.Values))
	ys[0] = fr.read(yBits)
	ys[1] = fr.read(yBits)
	if fr.err != nil {
		return nil, fr.err
	}

	for _, classIndex := range fl.PartitionClasses {
		class := &fl.Classes[classIndex]
		var cval uint32
		if class.SubclassBits > 0 {
			v, err := setup.Codebooks[class.Masterbook].lut.decode(fr.br)
			if err != nil {
				return nil, err
			}
			cval = v
		}
		mask := uint32(1)<<class.SubclassBits - 1
		for j := uint8(0); j < class.Dimensions; j++ {
			book := class.Subbooks[cval&mask]
			cval >>= class.SubclassBits
			var y uint32
			if book != unusedBook {
				v, err := setup.Codebooks[book].lut.decode(fr.br)
				if err != nil {
					return nil, err
				}
				y = v
			}
			ys = append(ys, y)
		}
	}

	return synthesizeAmplitude(fl, ys, rng), nil
}

// synthesizeAmplitude turns the decoded Y values into final curve
// amplitudes. Every point from the third onward codes a difference against
// the value predicted from its low and high neighbours on the DDA line; a
// zero difference leaves the point unused, carrying the prediction only.
func synthesizeAmplitude(fl *Floor1, ys []uint32, rng uint32) *FloorCurve {
	curve := &FloorCurve{
		Ys:      ys,
		FinalYs: make([]uint32, len(ys)),
		Used:    make([]bool, len(ys)),
	}
	curve.Used[0], curve.Used[1] = true, true
	curve.FinalYs[0], curve.FinalYs[1] = ys[0], ys[1]

	for i := 2; i < len(ys); i++ {
		ln := lowNeighbour(fl.Values, i)
		hn := highNeighbour(fl.Values, i)
		predicted := int32(renderPoint(fl.Values[ln], curve.FinalYs[ln],
			fl.Values[hn], curve.FinalYs[hn], fl.Values[i]))

		val := int32(ys[i])
		highroom := int32(rng) - predicted
		lowroom := predicted
		room := highroom * 2
		if lowroom < highroom {
			room = lowroom * 2
		}

		var final int32
		switch {
		case val == 0:
			final = predicted
		case val >= room:
			if highroom > lowroom {
				final = predicted + (val - lowroom)
			} else {
				final = predicted - (val - highroom) - 1
			}
		case val&1 == 1:
			final = predicted - (val+1)/2
		default:
			final = predicted + val/2
		}
		if val != 0 {
			curve.Used[ln] = true
			curve.Used[hn] = true
			curve.Used[i] = true
		}

		if final < 0 {
			final = 0
		}
		if final > int32(rng)-1 {
			final = int32(rng) - 1
		}
		curve.FinalYs[i] = uint32(final)
	}
	return curve
}
