// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: github.com/bassosimone/nop (Func[A,B] composition style,
// connectFunc/observeConn start/done logging pattern)

package aci

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize is the default ceiling on a single framed XML element.
//
// spec.md §4.B: "Oversized frames (>16 MiB default) are an error."
const MaxFrameSize = 16 * 1024 * 1024

// ErrFrameTooLarge is returned by [*FrameReader.ReadFrame] when a frame
// exceeds the configured MaxFrameSize before its closing tag is seen.
var ErrFrameTooLarge = errors.New("aci: frame exceeds maximum size")

// FrameReader reads framed XML requests/responses off a byte stream.
//
// A frame is a single top-level XML element: reading stops at the byte
// offset immediately following the closing tag that matches the frame's
// opening tag at depth zero. The reader tracks only element open/close
// depth via [xml.Decoder.Token] — it never interprets element bodies, so
// unrelated entities, comments, or CDATA sections nested inside the frame
// cannot confuse framing.
//
// Construct with [NewFrameReader]. Not safe for concurrent use.
type FrameReader struct {
	buf      bytes.Buffer
	dec      *xml.Decoder
	consumed int64
	max      int
}

// NewFrameReader returns a [*FrameReader] reading from r with the default
// [MaxFrameSize] ceiling.
func NewFrameReader(r io.Reader) *FrameReader {
	fr := &FrameReader{max: MaxFrameSize}
	tee := io.TeeReader(r, &fr.buf)
	fr.dec = xml.NewDecoder(tee)
	return fr
}

// ReadFrame reads and returns the next complete top-level XML element.
//
// The returned slice is a fresh copy; callers may retain it. Returns the
// underlying read error (including io.EOF) unchanged when the stream ends
// before a frame completes.
func (fr *FrameReader) ReadFrame() ([]byte, error) {
	var depth int
	start := fr.dec.InputOffset()
	for {
		offsetBefore := fr.dec.InputOffset()
		tok, err := fr.dec.Token()
		if err != nil {
			return nil, err
		}
		switch tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				start = offsetBefore
			}
			depth++
		case xml.EndElement:
			depth--
			if depth == 0 {
				end := fr.dec.InputOffset()
				frame := fr.extract(start, end)
				fr.discard(end)
				return frame, nil
			}
			if depth < 0 {
				return nil, fmt.Errorf("aci: unbalanced closing tag")
			}
		}
		if fr.dec.InputOffset()-start > int64(fr.max) {
			return nil, ErrFrameTooLarge
		}
	}
}

// extract returns the bytes of buf between absolute offsets [start, end).
func (fr *FrameReader) extract(start, end int64) []byte {
	lo := start - fr.consumed
	hi := end - fr.consumed
	b := fr.buf.Bytes()[lo:hi]
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// discard drops bytes already delivered in a frame from the internal buffer.
func (fr *FrameReader) discard(end int64) {
	n := int(end - fr.consumed)
	fr.buf.Next(n)
	fr.consumed = end
}

// WriteFrame writes b to w unmodified. Frames are pre-encoded by the
// caller (see [Client]); this function exists so the write side of the
// transport has the same explicit naming as [FrameReader.ReadFrame].
func WriteFrame(w io.Writer, b []byte) error {
	_, err := w.Write(b)
	return err
}
