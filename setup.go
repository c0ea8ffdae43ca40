package vorbis

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/mewkiz/vorbis/internal/bits"
)

// setupHeaderMarker opens the setup header packet.
var setupHeaderMarker = []byte("\x05vorbis")

// A SetupHeader holds the codec configuration of a logical stream; the
// ordered tables every audio packet selects its decode path from. It is
// built once per stream and read-only afterwards.
//
// ref: https://xiph.org/vorbis/doc/Vorbis_I_spec.html#x1-650004.2.4
type SetupHeader struct {
	Codebooks []*Codebook
	Floors    []*Floor
	Residues  []*Residue
	Mappings  []*Mapping
	Modes     []*Mode
}

// parseSetupHeader parses the setup header from the given packet; the
// codebooks, the time-domain transform placeholders, and the floor, residue,
// mapping and mode configurations, terminated by a framing bit which must
// be set. The channel count of the identification header sizes the mapping
// fields.
func parseSetupHeader(packet []byte, channels uint8) (*SetupHeader, error) {
	if len(packet) < len(setupHeaderMarker) || !bytes.Equal(packet[:len(setupHeaderMarker)], setupHeaderMarker) {
		return nil, ErrMissingHeader
	}
	fr := &fieldReader{
		br:  bits.NewReader(packet[len(setupHeaderMarker):]),
		eof: ErrIncompleteHeader,
	}
	setup := new(SetupHeader)

	// Codebooks.
	codebookCount := int(fr.read(8)) + 1
	if fr.err != nil {
		return nil, fr.err
	}
	setup.Codebooks = make([]*Codebook, codebookCount)
	for i := range setup.Codebooks {
		cb, err := decodeCodebook(fr)
		if err != nil {
			return nil, errors.Wrapf(err, "codebook %d", i)
		}
		setup.Codebooks[i] = cb
	}

	// Time-domain transforms; placeholders in Vorbis I, each must be zero.
	timeCount := int(fr.read(6)) + 1
	for i := 0; i < timeCount; i++ {
		if v := fr.read(16); fr.err == nil && v != 0 {
			return nil, errors.Wrap(ErrInvalidSetup, "non-zero time-domain transform")
		}
	}

	// Floors.
	floorCount := int(fr.read(6)) + 1
	if fr.err != nil {
		return nil, fr.err
	}
	setup.Floors = make([]*Floor, floorCount)
	for i := range setup.Floors {
		floor, err := decodeFloor(fr, codebookCount)
		if err != nil {
			return nil, errors.Wrapf(err, "floor %d", i)
		}
		setup.Floors[i] = floor
	}

	// Residues.
	residueCount := int(fr.read(6)) + 1
	if fr.err != nil {
		return nil, fr.err
	}
	setup.Residues = make([]*Residue, residueCount)
	for i := range setup.Residues {
		res, err := decodeResidue(fr, setup.Codebooks)
		if err != nil {
			return nil, errors.Wrapf(err, "residue %d", i)
		}
		setup.Residues[i] = res
	}

	// Mappings.
	mappingCount := int(fr.read(6)) + 1
	if fr.err != nil {
		return nil, fr.err
	}
	setup.Mappings = make([]*Mapping, mappingCount)
	for i := range setup.Mappings {
		m, err := decodeMapping(fr, channels, floorCount, residueCount)
		if err != nil {
			return nil, errors.Wrapf(err, "mapping %d", i)
		}
		setup.Mappings[i] = m
	}

	// Modes.
	modeCount := int(fr.read(6)) + 1
	if fr.err != nil {
		return nil, fr.err
	}
	setup.Modes = make([]*Mode, modeCount)
	for i := range setup.Modes {
		m, err := decodeMode(fr, mappingCount)
		if err != nil {
			return nil, errors.Wrapf(err, "mode %d", i)
		}
		setup.Modes[i] = m
	}

	if framing := fr.flag(); fr.err == nil && !framing {
		return nil, errors.Wrap(ErrInvalidSetup, "setup framing bit unset")
	}
	if fr.err != nil {
		return nil, fr.err
	}
	return setup, nil
}
