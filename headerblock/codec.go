// Copyright (c) 2013, Daniel Morsing
// For more information, see the LICENSE file

package headerblock

import (
	"bytes"
	"errors"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Compressor deflates header blocks for a single direction of a single
// session. A SPDY session's header compression is one continuous deflate
// stream spanning every SYN_STREAM, SYN_REPLY and HEADERS frame sent on
// that connection; Compressor models that by keeping one *zlib.Writer
// alive for the lifetime of the session and calling Flush (SYNC_FLUSH)
// after each frame's header bytes, never Close.
//
// A Compressor is not safe for concurrent use; callers serialise access
// to it the same way they serialise stream-id allocation (see DESIGN.md).
type Compressor struct {
	buf *bytes.Buffer
	zw  *zlib.Writer
}

// NewCompressor creates a Compressor primed with dict.
func NewCompressor(dict []byte) (*Compressor, error) {
	buf := new(bytes.Buffer)
	zw, err := zlib.NewWriterLevelDict(buf, zlib.BestCompression, dict)
	if err != nil {
		return nil, err
	}
	return &Compressor{buf: buf, zw: zw}, nil
}

// Deflate compresses headerBytes (the wire-encoded name/value pairs of one
// header block) and returns the bytes that should be written to the wire
// for this frame: the continuation of the session's deflate stream up to
// and including a SYNC_FLUSH boundary.
func (c *Compressor) Deflate(headerBytes []byte) ([]byte, error) {
	if _, err := c.zw.Write(headerBytes); err != nil {
		return nil, err
	}
	if err := c.zw.Flush(); err != nil {
		return nil, err
	}
	out := make([]byte, c.buf.Len())
	copy(out, c.buf.Bytes())
	c.buf.Reset()
	return out, nil
}

// Close releases the resources held by the compressor. It must be called
// when the owning session closes.
func (c *Compressor) Close() error {
	return c.zw.Close()
}

// Decompressor inflates header blocks for a single direction of a single
// session, mirroring the continuous stream on the Compressor side.
//
// Go's zlib/flate Reader does not reliably signal where a SYNC_FLUSH
// boundary ends without also seeing the final block of the stream, so
// rather than keep one long-lived Reader paused across frames (which
// would require treating a transient end-of-input as "come back later"),
// Decompressor replays the entire accumulated compressed history through
// a fresh Reader each time a header block completes and keeps only the
// bytes beyond what it has already handed to the caller. This is the Go
// equivalent of the Java Inflater's ability to be fed incrementally
// without ever observing a hard end-of-stream (see DESIGN.md).
type Decompressor struct {
	dict     []byte
	raw      []byte
	consumed int
}

// NewDecompressor creates a Decompressor primed with dict.
func NewDecompressor(dict []byte) *Decompressor {
	return &Decompressor{dict: dict}
}

// Inflate appends compressed (the full compressed bytes of one header
// block, already accumulated by the caller per §4.1) to the session's
// compression history and returns the decompressed bytes produced for
// this header block alone.
func (d *Decompressor) Inflate(compressed []byte) ([]byte, error) {
	d.raw = append(d.raw, compressed...)

	zr, err := zlib.NewReaderDict(bytes.NewReader(d.raw), d.dict)
	if err != nil {
		return nil, err
	}
	out, err := io.ReadAll(zr)
	zr.Close()
	if err != nil && !isFlushBoundary(err) {
		return nil, err
	}
	if len(out) < d.consumed {
		return nil, errors.New("headerblock: decompressed output shrank across frames")
	}
	delta := out[d.consumed:]
	d.consumed = len(out)
	return delta, nil
}

// DecodeLatin1 converts ISO-8859-1 octets to a Go string by mapping each
// byte directly to the Unicode code point of the same value, which is
// exactly what ISO-8859-1 guarantees.
func DecodeLatin1(b []byte) string {
	r := make([]rune, len(b))
	for i, c := range b {
		r[i] = rune(c)
	}
	return string(r)
}

// EncodeLatin1 is the inverse of DecodeLatin1. Runes above 0xFF cannot be
// represented in ISO-8859-1 and are replaced with '?', matching the
// common failure mode of a lossy Latin-1 encoder; header names and
// values exchanged over SPDY are expected to already be Latin-1.
func EncodeLatin1(s string) []byte {
	r := []rune(s)
	b := make([]byte, len(r))
	for i, c := range r {
		if c > 0xFF {
			c = '?'
		}
		b[i] = byte(c)
	}
	return b
}

// isFlushBoundary reports whether err is the expected consequence of
// asking zlib to decode a deflate stream that has been flushed with
// SYNC_FLUSH but not yet closed: every byte up to the flush point decodes
// cleanly, but the absence of a final block makes the stream look
// truncated to the stdlib-compatible reader.
func isFlushBoundary(err error) bool {
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF)
}
