package ogg

import (
	"github.com/pkg/errors"
)

// Errors returned by the packet assembler.
var (
	// ErrEndOfStream means the cursor reached the end of the page sequence
	// with no packet in progress.
	ErrEndOfStream = errors.New("ogg: end of stream")
	// ErrUnexpectedEndOfStream means the page sequence ended inside a
	// continued packet; a 255-length segment with nothing after it.
	ErrUnexpectedEndOfStream = errors.New("ogg: stream ended inside a continued packet")
)

// A Cursor addresses one segment within a page sequence; the position the
// packet assembler reads from next.
type Cursor struct {
	Page    int
	Segment int
}

// NextPacket assembles the packet starting at cur from the given page
// sequence. A packet is the concatenation of consecutive segments up to and
// including the first segment shorter than 255 bytes, crossing page
// boundaries as needed. It returns the packet bytes and the cursor of the
// following packet; the bytes are a view into the page body when the packet
// lies within one page, and a copy when it spans several. Packet contents
// are not interpreted.
func NextPacket(pages []*Page, cur Cursor) (packet []byte, next Cursor, err error) {
	// Measure the packet before touching bytes, so a dangling continuation
	// fails without partial reads.
	size := 0
	started := false
	end := cur
	for {
		for end.Page < len(pages) && end.Segment >= len(pages[end.Page].Table) {
			end.Page++
			end.Segment = 0
		}
		if end.Page >= len(pages) {
			if started {
				return nil, cur, errors.Wrapf(ErrUnexpectedEndOfStream, "packet at page %d segment %d", cur.Page, cur.Segment)
			}
			return nil, cur, ErrEndOfStream
		}
		if !started {
			// The packet begins at the first addressable segment.
			cur = end
			started = true
		}
		n := int(pages[end.Page].Table[end.Segment])
		size += n
		if n < 255 {
			break
		}
		end.Segment++
	}

	next = Cursor{Page: end.Page, Segment: end.Segment + 1}
	for next.Page < len(pages) && next.Segment >= len(pages[next.Page].Table) {
		next.Page++
		next.Segment = 0
	}

	if end.Page == cur.Page {
		// The packet lies within a single page; its segments are adjacent
		// in the page body, so serve it without copying.
		off := 0
		for _, n := range pages[cur.Page].Table[:cur.Segment] {
			off += int(n)
		}
		body := pages[cur.Page].Body
		return body[off : off+size : off+size], next, nil
	}
	packet = make([]byte, 0, size)
	for at := cur; ; {
		packet = append(packet, pages[at.Page].Segment(at.Segment)...)
		if at.Page == end.Page && at.Segment == end.Segment {
			break
		}
		at.Segment++
		for at.Segment >= len(pages[at.Page].Table) {
			at.Page++
			at.Segment = 0
		}
	}
	return packet, next, nil
}

// A PacketReader yields the packets of one logical bitstream in order,
// advancing a cursor across page boundaries.
type PacketReader struct {
	pages []*Page
	cur   Cursor
}

// NewPacketReader returns a packet reader over the given page sequence,
// positioned at the first segment of the first page.
func NewPacketReader(pages []*Page) *PacketReader {
	return &PacketReader{pages: pages}
}

// Next returns the next packet of the stream, or ErrEndOfStream when the
// page sequence is exhausted.
func (pr *PacketReader) Next() ([]byte, error) {
	packet, next, err := NextPacket(pr.pages, pr.cur)
	if err != nil {
		return nil, err
	}
	pr.cur = next
	return packet, nil
}

// Pos returns the current cursor of the reader.
func (pr *PacketReader) Pos() Cursor {
	return pr.cur
}
