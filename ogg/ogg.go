// Package ogg implements access to the Ogg container format. It splits a
// physical byte stream into pages, groups them per logical bitstream, and
// reassembles the packets their segments carry. [1]
//
// The basic structure of an Ogg page is:
//   - The four byte string capture pattern "OggS".
//   - A one byte stream structure version, always 0.
//   - A one byte header type bitfield.
//   - The 8 byte absolute granule position.
//   - The 4 byte logical bitstream serial number.
//   - The 4 byte page sequence number.
//   - The 4 byte page checksum.
//   - A one byte segment count and the segment table.
//   - The page body; the concatenation of the segments.
//
// [1]: https://www.rfc-editor.org/rfc/rfc3533
package ogg

import (
	"encoding/binary"
	"sort"
)

// capturePattern is present at the beginning of each Ogg page.
const capturePattern = "OggS"

// pageHeaderSize is the size in bytes of a page header, segment table
// excluded.
const pageHeaderSize = 27

// Header type flags.
const (
	// FlagContinuedPacket marks a page whose first segment continues a
	// packet of the previous page.
	FlagContinuedPacket uint8 = 1 << iota
	// FlagFirstPage marks the first page of a logical bitstream.
	FlagFirstPage
	// FlagLastPage marks the last page of a logical bitstream.
	FlagLastPage
)

// A Page is one Ogg page; the header fields, the segment table and the page
// body. The body is a subslice of the buffer the page was decoded from.
type Page struct {
	// Header type bitfield; FlagContinuedPacket, FlagFirstPage, FlagLastPage.
	HeaderType uint8
	// Absolute granule position; -1 when no packet finishes on the page.
	GranulePos int64
	// Serial number of the logical bitstream the page belongs to.
	Serial uint32
	// Page sequence number within the logical bitstream.
	Sequence uint32
	// Page checksum as stored; not validated.
	CRC uint32
	// Segment table; the lengths of the segments of the body, each 0..255.
	// A length of exactly 255 marks a segment whose packet continues.
	Table []uint8
	// Page body.
	Body []byte
}

// Segment returns the bytes of segment i of the page body.
func (page *Page) Segment(i int) []byte {
	off := 0
	for _, n := range page.Table[:i] {
		off += int(n)
	}
	return page.Body[off : off+int(page.Table[i])]
}

// DecodePages scans the provided buffer for Ogg pages and returns them
// grouped per logical bitstream serial number, in stream order. Bytes that
// do not parse as a page are skipped to the next capture pattern; a page
// truncated by the end of the buffer is dropped.
func DecodePages(buf []byte) map[uint32][]*Page {
	streams := make(map[uint32][]*Page)
	for i := 0; i+pageHeaderSize <= len(buf); {
		page, size := decodePage(buf[i:])
		if page == nil {
			i++
			continue
		}
		streams[page.Serial] = append(streams[page.Serial], page)
		i += size
	}
	return streams
}

// decodePage parses a single page at the start of buf, returning the page
// and its total encoded size. It returns nil when buf does not hold a
// complete, well-formed page.
func decodePage(buf []byte) (*Page, int) {
	if string(buf[:4]) != capturePattern {
		return nil, 0
	}
	// Stream structure version 0, and no undefined header type flags.
	if buf[4] != 0 || buf[5]&0xF0 != 0 {
		return nil, 0
	}
	segmentCount := int(buf[26])
	if len(buf) < pageHeaderSize+segmentCount {
		return nil, 0
	}
	page := &Page{
		HeaderType: buf[5],
		GranulePos: int64(binary.LittleEndian.Uint64(buf[6:])),
		Serial:     binary.LittleEndian.Uint32(buf[14:]),
		Sequence:   binary.LittleEndian.Uint32(buf[18:]),
		CRC:        binary.LittleEndian.Uint32(buf[22:]),
		Table:      buf[pageHeaderSize : pageHeaderSize+segmentCount],
	}
	bodySize := 0
	for _, n := range page.Table {
		bodySize += int(n)
	}
	size := pageHeaderSize + segmentCount + bodySize
	if len(buf) < size {
		return nil, 0
	}
	page.Body = buf[pageHeaderSize+segmentCount : size]
	return page, size
}

// Serials returns the logical bitstream serial numbers of the given page
// groups in ascending order.
func Serials(streams map[uint32][]*Page) []uint32 {
	serials := make([]uint32, 0, len(streams))
	for serial := range streams {
		serials = append(serials, serial)
	}
	sort.Slice(serials, func(i, j int) bool { return serials[i] < serials[j] })
	return serials
}
