package vorbis

import (
	"github.com/pkg/errors"
)

// A Mode selects the block size, window and mapping of one audio packet.
type Mode struct {
	// Selects between the two block sizes of the stream; false for
	// 1<<Blocksize0, true for 1<<Blocksize1.
	BlockFlag bool
	// Mapping configuration the packet decodes through.
	Mapping uint8
}

// decodeMode parses one mode configuration off a setup header cursor. Only
// window type 0 and transform type 0 are defined by Vorbis I.
func decodeMode(fr *fieldReader, mappingCount int) (*Mode, error) {
	m := &Mode{
		BlockFlag: fr.flag(),
	}
	if windowType := fr.read(16); fr.err == nil && windowType != 0 {
		return nil, errors.Wrapf(ErrInvalidSetup, "mode window type %d", windowType)
	}
	if transformType := fr.read(16); fr.err == nil && transformType != 0 {
		return nil, errors.Wrapf(ErrInvalidSetup, "mode transform type %d", transformType)
	}
	m.Mapping = uint8(fr.read(8))
	if fr.err != nil {
		return nil, fr.err
	}
	if int(m.Mapping) >= mappingCount {
		return nil, errors.Wrap(ErrInvalidSetup, "mode mapping out of range")
	}
	return m, nil
}
