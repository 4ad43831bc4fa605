// Copyright (c) 2013, Daniel Morsing
// For more information, see the LICENSE file

package parser

import (
	"strings"

	"github.com/morsing-labs/spdycore/frame"
	"github.com/morsing-labs/spdycore/headerblock"
)

// decodeHeaderBlock inflates the compressed header block carried by a
// SYN_STREAM, SYN_REPLY or HEADERS frame and decodes the name/value
// pairs within it. version selects the width of the count and the
// per-pair length prefixes: 16 bits for v2, 32 bits for v3 (spec §4.1).
func (p *Parser) decodeHeaderBlock(version frame.Version, streamId frame.StreamId, compressed []byte) (frame.Headers, error) {
	decompressed, err := p.decomp.Inflate(compressed)
	if err != nil {
		return nil, &StreamException{StatusCode: frame.StreamStatusProtocolError, StreamId: streamId, Cause: err}
	}

	r := newReader(decompressed)
	count, err := readCount(version, r)
	if err != nil {
		return nil, &StreamException{StatusCode: frame.StreamStatusProtocolError, StreamId: streamId, Cause: err}
	}

	headers := frame.NewHeaders()
	for i := uint32(0); i < count; i++ {
		nameLen, err := readCount(version, r)
		if err != nil {
			return nil, &StreamException{StatusCode: frame.StreamStatusProtocolError, StreamId: streamId, Cause: err}
		}
		if nameLen == 0 {
			return nil, &StreamException{StatusCode: frame.StreamStatusProtocolError, StreamId: streamId, Cause: errEmptyHeaderName}
		}
		nameBytes, err := r.bytes(int(nameLen))
		if err != nil {
			return nil, &StreamException{StatusCode: frame.StreamStatusProtocolError, StreamId: streamId, Cause: err}
		}

		valueLen, err := readCount(version, r)
		if err != nil {
			return nil, &StreamException{StatusCode: frame.StreamStatusProtocolError, StreamId: streamId, Cause: err}
		}
		if valueLen == 0 {
			return nil, &StreamException{StatusCode: frame.StreamStatusProtocolError, StreamId: streamId, Cause: errEmptyHeaderValue}
		}
		valueBytes, err := r.bytes(int(valueLen))
		if err != nil {
			return nil, &StreamException{StatusCode: frame.StreamStatusProtocolError, StreamId: streamId, Cause: err}
		}

		name := headerblock.DecodeLatin1(nameBytes)
		values := strings.Split(headerblock.DecodeLatin1(valueBytes), "\x00")
		for _, v := range values {
			if v == "" {
				return nil, &StreamException{StatusCode: frame.StreamStatusProtocolError, StreamId: streamId, Cause: errEmptyHeaderValuePart}
			}
			headers.Add(name, v)
		}
	}
	return headers, nil
}

// readCount reads either a 16-bit (v2) or 32-bit (v3) count field. The
// two counters in a header block -- the pair count and each name/value
// length -- all share this width.
func readCount(version frame.Version, r *reader) (uint32, error) {
	switch version {
	case frame.Version2:
		v, err := r.u16()
		return uint32(v), err
	case frame.Version3:
		return r.u32()
	default:
		return 0, errUnsupportedVersion
	}
}

