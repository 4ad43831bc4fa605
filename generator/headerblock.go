// Copyright (c) 2013, Daniel Morsing
// For more information, see the LICENSE file

package generator

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/morsing-labs/spdycore/frame"
	"github.com/morsing-labs/spdycore/headerblock"
)

// encodeHeaderBlock serialises headers to the wire name/value format and
// deflates the result through the generator's session-long compression
// stream. Multi-valued headers are joined with a NUL byte, the inverse
// of the split done on the parser side (see parser/headerblock.go).
func (g *Generator) encodeHeaderBlock(version frame.Version, headers frame.Headers) ([]byte, error) {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	// Sorting gives deterministic wire output; SPDY imposes no ordering
	// requirement of its own.
	sort.Strings(names)

	buf := new(bytes.Buffer)
	if err := writeCount(version, buf, uint32(len(names))); err != nil {
		return nil, err
	}
	for _, name := range names {
		values := headers.Values(name)
		nameBytes := headerblock.EncodeLatin1(name)
		if err := writeCount(version, buf, uint32(len(nameBytes))); err != nil {
			return nil, err
		}
		buf.Write(nameBytes)

		valueBytes := headerblock.EncodeLatin1(strings.Join(values, "\x00"))
		if err := writeCount(version, buf, uint32(len(valueBytes))); err != nil {
			return nil, err
		}
		buf.Write(valueBytes)
	}

	return g.comp.Deflate(buf.Bytes())
}

// writeCount writes a count field in the width the header-block wire
// format uses for version: 16 bits for v2, 32 bits for v3.
func writeCount(version frame.Version, buf *bytes.Buffer, n uint32) error {
	switch version {
	case frame.Version2:
		if n > 0xFFFF {
			return fmt.Errorf("generator: count %d overflows a v2 16-bit field", n)
		}
		writeU16(buf, uint16(n))
	case frame.Version3:
		writeU32(buf, n)
	default:
		return fmt.Errorf("generator: unsupported version %d", version)
	}
	return nil
}
