package vorbis

import (
	"github.com/pkg/errors"
)

// A Mapping binds the audio channels of a packet to floors and residues,
// with optional channel coupling.
//
// ref: https://xiph.org/vorbis/doc/Vorbis_I_spec.html#x1-660004.2.4.3
type Mapping struct {
	// Coupled channel pairs; magnitude and angle channel per step.
	Magnitudes []uint8
	Angles     []uint8
	// Submap index per channel; all zero when there is a single submap.
	Muxes []uint8
	// Floor and residue index per submap.
	SubmapFloors   []uint8
	SubmapResidues []uint8
}

// decodeMapping parses one mapping configuration off a setup header cursor.
// Coupled channels must be distinct and in range, and the floor and residue
// indices must be defined.
func decodeMapping(fr *fieldReader, channels uint8, floorCount, residueCount int) (*Mapping, error) {
	if t := fr.read(16); fr.err == nil && t != 0 {
		return nil, errors.Wrapf(ErrInvalidSetup, "mapping type %d", t)
	}

	m := new(Mapping)
	submapCount := 1
	if fr.flag() {
		submapCount = int(fr.read(4)) + 1
	}
	if fr.flag() {
		steps := int(fr.read(8)) + 1
		m.Magnitudes = make([]uint8, steps)
		m.Angles = make([]uint8, steps)
		couplingBits := uint(ilog(uint32(channels) - 1))
		for i := 0; i < steps; i++ {
			m.Magnitudes[i] = uint8(fr.read(couplingBits))
			m.Angles[i] = uint8(fr.read(couplingBits))
			if fr.err != nil {
				return nil, fr.err
			}
			if m.Magnitudes[i] >= channels || m.Angles[i] >= channels {
				return nil, errors.Wrap(ErrInvalidSetup, "coupling channel out of range")
			}
			if m.Magnitudes[i] == m.Angles[i] {
				return nil, errors.Wrap(ErrInvalidSetup, "channel coupled with itself")
			}
		}
	}
	if reserved := fr.read(2); fr.err == nil && reserved != 0 {
		return nil, errors.Wrap(ErrInvalidSetup, "non-zero reserved field in mapping")
	}

	m.Muxes = make([]uint8, channels)
	if submapCount > 1 {
		for i := range m.Muxes {
			mux := uint8(fr.read(4))
			if fr.err == nil && int(mux) >= submapCount {
				return nil, errors.Wrap(ErrInvalidSetup, "channel mux out of range")
			}
			m.Muxes[i] = mux
		}
	}

	m.SubmapFloors = make([]uint8, submapCount)
	m.SubmapResidues = make([]uint8, submapCount)
	for i := 0; i < submapCount; i++ {
		fr.read(8) // discarded time configuration placeholder
		floor := uint8(fr.read(8))
		if fr.err == nil && int(floor) >= floorCount {
			return nil, errors.Wrap(ErrInvalidSetup, "submap floor out of range")
		}
		m.SubmapFloors[i] = floor
		residue := uint8(fr.read(8))
		if fr.err == nil && int(residue) >= residueCount {
			return nil, errors.Wrap(ErrInvalidSetup, "submap residue out of range")
		}
		m.SubmapResidues[i] = residue
	}
	if fr.err != nil {
		return nil, fr.err
	}
	return m, nil
}
