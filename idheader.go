package vorbis

import (
	"bytes"
	"encoding/binary"

	"github.com/go-audio/audio"
)

// idHeaderMarker opens the identification header packet.
var idHeaderMarker = []byte("\x01vorbis")

// idHeaderSize is the size in bytes of the identification header body,
// marker excluded.
const idHeaderSize = 23

// An IDHeader identifies a stream as Vorbis and holds the parameters needed
// to set up the decoder; channel count, sample rate, bitrate envelope and
// the two legal block sizes.
//
// Identification header format (pseudo code):
//
//	type ID_HEADER struct {
//	   vorbis_version    uint32   // must be 0
//	   audio_channels    uint8
//	   audio_sample_rate uint32
//	   bitrate_maximum   int32
//	   bitrate_nominal   int32
//	   bitrate_minimum   int32
//	   blocksize_0       uint4    // low nibble, 2 exponent
//	   blocksize_1       uint4    // high nibble, 2 exponent
//	   framing_flag      uint1    // must be 1
//	}
//
// ref: https://xiph.org/vorbis/doc/Vorbis_I_spec.html#x1-630004.2.2
type IDHeader struct {
	// Number of audio channels.
	AudioChannels uint8
	// Sample rate in Hz.
	SampleRate uint32
	// Bitrate envelope in bits per second; 0 when unset.
	BitrateMax     int32
	BitrateNominal int32
	BitrateMin     int32
	// Block size exponents; the legal block sizes of the stream are
	// 1<<Blocksize0 and 1<<Blocksize1, with Blocksize0 <= Blocksize1.
	Blocksize0 uint8
	Blocksize1 uint8
}

// parseIDHeader parses the identification header from the given packet. All
// multi-byte integers are little-endian. Semantic violations are collected
// and reported together as the flag word of an InvalidIDHeaderError.
func parseIDHeader(packet []byte) (*IDHeader, error) {
	if len(packet) < len(idHeaderMarker) || !bytes.Equal(packet[:len(idHeaderMarker)], idHeaderMarker) {
		return nil, ErrMissingHeader
	}
	body := packet[len(idHeaderMarker):]
	if len(body) < idHeaderSize {
		return nil, ErrIncompleteHeader
	}

	h := &IDHeader{
		AudioChannels:  body[4],
		SampleRate:     binary.LittleEndian.Uint32(body[5:]),
		BitrateMax:     int32(binary.LittleEndian.Uint32(body[9:])),
		BitrateNominal: int32(binary.LittleEndian.Uint32(body[13:])),
		BitrateMin:     int32(binary.LittleEndian.Uint32(body[17:])),
		Blocksize0:     body[21] & 0x0F,
		Blocksize1:     body[21] >> 4,
	}

	var flags uint16
	if binary.LittleEndian.Uint32(body[0:]) != 0 {
		flags |= FlagVorbisVersion
	}
	if h.AudioChannels == 0 {
		flags |= FlagAudioChannels
	}
	if h.SampleRate == 0 {
		flags |= FlagSampleRate
	}
	// Legal block sizes run from 64 to 8192.
	if h.Blocksize0 > h.Blocksize1 || h.Blocksize0 < 6 || h.Blocksize1 > 13 {
		flags |= FlagBlocksize
	}
	if body[22] != 1 {
		flags |= FlagFramingBit
	}
	if flags != 0 {
		return nil, InvalidIDHeaderError{Flags: flags}
	}
	return h, nil
}

// Format returns the stream parameters as an audio.Format, for use with the
// go-audio ecosystem.
func (h *IDHeader) Format() *audio.Format {
	return &audio.Format{
		NumChannels: int(h.AudioChannels),
		SampleRate:  int(h.SampleRate),
	}
}

// BlockSize returns the block size selected by the given mode block flag;
// 1<<Blocksize1 for long-block modes, 1<<Blocksize0 otherwise.
func (h *IDHeader) BlockSize(blockFlag bool) uint32 {
	if blockFlag {
		return 1 << h.Blocksize1
	}
	return 1 << h.Blocksize0
}
