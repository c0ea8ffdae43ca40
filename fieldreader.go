package vorbis

import (
	"github.com/mewkiz/vorbis/internal/bits"
)

// A fieldReader reads successive bit fields off a packet cursor, recording
// the first error instead of returning one per field. Reads after an error
// return zero and do not advance. The error recorded when a read runs past
// the end of the packet is eof; ErrIncompleteHeader for header packets, an
// end-of-packet stream error for audio packets.
type fieldReader struct {
	br  *bits.Reader
	eof error
	err error
}

func (fr *fieldReader) read(n uint) uint32 {
	if fr.err != nil {
		return 0
	}
	v, err := fr.br.Read(n)
	if err != nil {
		fr.err = fr.eof
		return 0
	}
	return v
}

func (fr *fieldReader) flag() bool {
	return fr.read(1) != 0
}

// fail records a semantic violation, unless a read failure already occurred.
func (fr *fieldReader) fail(err error) {
	if fr.err == nil {
		fr.err = err
	}
}
