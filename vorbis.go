// Package vorbis implements the front half of an Ogg/Vorbis audio decoder. [1]
//
// The basic structure of a Vorbis logical bitstream is:
//   - The identification header packet, marker "\x01vorbis".
//   - The comment header packet, marker "\x03vorbis".
//   - The setup header packet, marker "\x05vorbis".
//   - One or more audio packets.
//
// The decoder reconstructs packets from their Ogg pages, parses the
// identification and setup headers into a read-only decoder state, and
// decodes the head of every audio packet; mode selection, window shape
// derivation, and the per-channel floor curve. Residue decode, coupling
// inversion and the inverse MDCT are downstream of this package.
//
// [1]: https://xiph.org/vorbis/doc/Vorbis_I_spec.html
package vorbis

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/mewkiz/vorbis/ogg"
)

// commentHeaderMarker opens the comment header packet, which this decoder
// skips without parsing.
var commentHeaderMarker = []byte("\x03vorbis")

// A Stream is the decoder state of one Vorbis logical bitstream. It is
// built once from the three header packets and read-only during audio
// decode; audio packets borrow it together with their own packet cursor.
type Stream struct {
	// Identification header of the stream.
	ID *IDHeader
	// Setup header of the stream; codebooks, floors, residues, mappings and
	// modes.
	Setup *SetupHeader
	// Serial number of the logical bitstream within its Ogg container.
	Serial uint32
	// Decoded audio packet heads, populated by Parse.
	Packets []*AudioPacket

	// Packet reader over the pages of the stream, positioned after the
	// header packets.
	pr *ogg.PacketReader
}

// Parse reads the provided file and returns a parsed Vorbis stream. It
// parses the header packets and the head of every audio packet. Use Open
// instead for more granularity.
func Parse(path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseStream(f)
}

// Open reads the provided file and returns a handle to the Vorbis stream,
// with the header packets parsed. Call Stream.Next to decode audio packets
// one at a time, or Stream.Parse to decode them all.
func Open(path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return NewStream(f)
}

// ParseStream reads from the provided io.Reader and returns a parsed Vorbis
// stream. It parses the header packets and the head of every audio packet.
// Use NewStream instead for more granularity.
func ParseStream(r io.Reader) (*Stream, error) {
	stream, err := NewStream(r)
	if err != nil {
		return nil, err
	}
	if err := stream.Parse(); err != nil {
		return nil, err
	}
	return stream, nil
}

// NewStream reads the physical stream from the provided io.Reader, locates
// the Vorbis logical bitstream with the lowest serial number among its
// pages, and parses the three header packets. Call Stream.Next or Stream.Parse to decode audio packets.
func NewStream(r io.Reader) (*Stream, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	streams := ogg.DecodePages(buf)
	for _, serial := range ogg.Serials(streams) {
		pages := streams[serial]
		if isVorbisStream(pages) {
			return newStream(serial, pages)
		}
	}
	return nil, errors.Wrap(ErrMissingHeader, "no Vorbis logical bitstream found")
}

// isVorbisStream reports whether the first packet of the page sequence is a
// Vorbis identification header.
func isVorbisStream(pages []*ogg.Page) bool {
	if len(pages) == 0 || len(pages[0].Table) == 0 {
		return false
	}
	first := pages[0].Segment(0)
	return bytes.HasPrefix(first, idHeaderMarker)
}

// newStream parses the three header packets of the page sequence and
// returns the decoder state, positioned at the first audio packet.
func newStream(serial uint32, pages []*ogg.Page) (*Stream, error) {
	pr := ogg.NewPacketReader(pages)

	packet, err := pr.Next()
	if err != nil {
		return nil, errors.Wrap(err, "vorbis: identification header")
	}
	id, err := parseIDHeader(packet)
	if err != nil {
		return nil, err
	}

	// The comment header is skipped; only its marker is verified.
	packet, err = pr.Next()
	if err != nil {
		return nil, errors.Wrap(err, "vorbis: comment header")
	}
	if !bytes.HasPrefix(packet, commentHeaderMarker) {
		return nil, ErrMissingHeader
	}

	packet, err = pr.Next()
	if err != nil {
		return nil, errors.Wrap(err, "vorbis: setup header")
	}
	setup, err := parseSetupHeader(packet, id.AudioChannels)
	if err != nil {
		return nil, err
	}

	return &Stream{
		ID:     id,
		Setup:  setup,
		Serial: serial,
		pr:     pr,
	}, nil
}

// Next assembles the next audio packet of the stream and decodes its head.
// It returns io.EOF at the clean end of the page sequence. A packet that
// fails to decode is consumed; the stream remains usable for the packets
// after it.
func (s *Stream) Next() (*AudioPacket, error) {
	packet, err := s.pr.Next()
	if err != nil {
		if errors.Is(err, ogg.ErrEndOfStream) {
			return nil, io.EOF
		}
		return nil, err
	}
	return DecodeAudioPacket(s.ID, s.Setup, packet)
}

// Parse decodes the head of every remaining audio packet of the stream,
// appending to Packets. A packet that fails to decode aborts that packet
// only; it is skipped and decoding resumes with the packet after it. Only
// the end of the page sequence stops the walk.
func (s *Stream) Parse() error {
	for {
		p, err := s.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			// Next has already consumed the failed packet; drop it and
			// carry on with the rest of the stream.
			var ise InvalidStreamError
			if errors.As(err, &ise) {
				continue
			}
			return err
		}
		s.Packets = append(s.Packets, p)
	}
}
