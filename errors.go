package vorbis

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Errors returned while decoding the header packets of a Vorbis stream.
var (
	// ErrMissingHeader means the expected header marker bytes were absent at
	// the start of a header packet.
	ErrMissingHeader = errors.New("vorbis: missing header packet marker")
	// ErrIncompleteHeader means a required read would have exceeded the
	// remaining bits of a header packet.
	ErrIncompleteHeader = errors.New("vorbis: header packet ended before a required field")
	// ErrInvalidSetup means a semantic violation anywhere in the setup
	// header; a bad sync pattern, an out of range codebook index, a non-zero
	// reserved field, etc.
	ErrInvalidSetup = errors.New("vorbis: invalid setup header")
	// ErrInvalidCodebook means a codebook length table which cannot be
	// assigned as a canonical Huffman code.
	ErrInvalidCodebook = errors.New("vorbis: inconsistent codebook length table")
)

// Flags of InvalidIDHeaderError, reporting the semantic violations of an
// identification header. Any combination may be set.
const (
	FlagVorbisVersion uint16 = 1 << iota
	FlagAudioChannels
	FlagSampleRate
	FlagBlocksize
	FlagFramingBit
)

// An InvalidIDHeaderError reports the semantic violations of an
// identification header as a flag word; any combination of FlagVorbisVersion,
// FlagAudioChannels, FlagSampleRate, FlagBlocksize and FlagFramingBit.
type InvalidIDHeaderError struct {
	Flags uint16
}

func (e InvalidIDHeaderError) Error() string {
	var fields []string
	for _, f := range []struct {
		flag uint16
		name string
	}{
		{FlagVorbisVersion, "vorbis version"},
		{FlagAudioChannels, "audio channels"},
		{FlagSampleRate, "sample rate"},
		{FlagBlocksize, "blocksize"},
		{FlagFramingBit, "framing bit"},
	} {
		if e.Flags&f.flag != 0 {
			fields = append(fields, f.name)
		}
	}
	return fmt.Sprintf("vorbis: invalid identification header (%s)", strings.Join(fields, ", "))
}

// Flags of InvalidStreamError, reporting why an audio packet could not be
// decoded.
const (
	// FlagEndOfPacket means a required read exceeded the packet's remaining
	// bits.
	FlagEndOfPacket uint16 = 1 << iota
	// FlagUnexpectedNonAudioPacket means the packet type bit of an audio
	// packet was set.
	FlagUnexpectedNonAudioPacket
	// FlagUndecodablePacket means the packet references setup data this
	// decoder cannot use; an out of range mode index, a floor type without
	// audio decode support.
	FlagUndecodablePacket
	// FlagUnknownCodeword means 32 bits were consumed without matching any
	// codeword of the codebook in use.
	FlagUnknownCodeword
)

// An InvalidStreamError reports why an audio packet was aborted, as a flag
// word; any combination of FlagEndOfPacket, FlagUnexpectedNonAudioPacket,
// FlagUndecodablePacket and FlagUnknownCodeword. The decoder state remains
// usable for subsequent packets.
type InvalidStreamError struct {
	Flags uint16
}

func (e InvalidStreamError) Error() string {
	var fields []string
	for _, f := range []struct {
		flag uint16
		name string
	}{
		{FlagEndOfPacket, "end of packet"},
		{FlagUnexpectedNonAudioPacket, "unexpected non-audio packet"},
		{FlagUndecodablePacket, "undecodable packet"},
		{FlagUnknownCodeword, "unknown codeword"},
	} {
		if e.Flags&f.flag != 0 {
			fields = append(fields, f.name)
		}
	}
	return fmt.Sprintf("vorbis: invalid stream (%s)", strings.Join(fields, ", "))
}
