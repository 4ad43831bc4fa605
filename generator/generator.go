// Copyright (c) 2013, Daniel Morsing
// For more information, see the LICENSE file

// Package generator serialises SPDY frames to wire bytes, the inverse of
// package parser. Header-block compression is stateful per session (see
// spec §4.2) so a Generator is not safe for concurrent use; callers
// serialise access to it the same way they serialise stream-id
// allocation.
package generator

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/morsing-labs/spdycore/frame"
	"github.com/morsing-labs/spdycore/headerblock"
)

// Generator produces wire-format bytes for outgoing frames.
type Generator struct {
	comp *headerblock.Compressor
}

// New creates a Generator whose header blocks are compressed with dict
// as the preset dictionary.
func New(dict []byte) (*Generator, error) {
	comp, err := headerblock.NewCompressor(dict)
	if err != nil {
		return nil, err
	}
	return &Generator{comp: comp}, nil
}

// Close releases the resources held by the generator's compressor.
func (g *Generator) Close() error {
	return g.comp.Close()
}

// Control serialises a control frame to a freshly allocated buffer.
func (g *Generator) Control(f frame.Frame) ([]byte, error) {
	switch fr := f.(type) {
	case *frame.SynStreamFrame:
		return g.synStream(fr)
	case *frame.SynReplyFrame:
		return g.synReply(fr)
	case *frame.RstStreamFrame:
		return g.rstStream(fr)
	case *frame.SettingsFrame:
		return g.settings(fr)
	case *frame.NoopFrame:
		return g.controlFrame(fr.Version, frame.TypeNoop, 0, nil)
	case *frame.PingFrame:
		return g.ping(fr)
	case *frame.GoAwayFrame:
		return g.goAway(fr)
	case *frame.HeadersFrame:
		return g.headers(fr)
	case *frame.WindowUpdateFrame:
		return g.windowUpdate(fr)
	default:
		return nil, fmt.Errorf("generator: unknown frame type %T", f)
	}
}

// Data serialises a single DATA frame carrying exactly payload (the
// caller has already sliced payload down to what the stream's
// flow-control window allows; see spec §4.3, §4.5).
func (g *Generator) Data(streamId frame.StreamId, fin bool, payload []byte) []byte {
	var flags frame.DataFlags
	if fin {
		flags = frame.DataFlagFin
	}
	buf := make([]byte, 8+len(payload))
	word0 := uint32(streamId) & frame.StreamIdMask
	word1 := uint32(flags)<<24 | uint32(len(payload))&0x00FFFFFF
	binary.BigEndian.PutUint32(buf[0:4], word0)
	binary.BigEndian.PutUint32(buf[4:8], word1)
	copy(buf[8:], payload)
	return buf
}

func (g *Generator) controlFrame(version frame.Version, ctype frame.ControlType, flags frame.ControlFlags, body []byte) ([]byte, error) {
	buf := make([]byte, 8+len(body))
	word0 := uint32(1)<<31 | uint32(version&0x7FFF)<<16 | uint32(ctype)
	word1 := uint32(flags)<<24 | uint32(len(body))&0x00FFFFFF
	binary.BigEndian.PutUint32(buf[0:4], word0)
	binary.BigEndian.PutUint32(buf[4:8], word1)
	copy(buf[8:], body)
	return buf, nil
}

func (g *Generator) synStream(f *frame.SynStreamFrame) ([]byte, error) {
	block, err := g.encodeHeaderBlock(f.Version, f.Headers)
	if err != nil {
		return nil, err
	}

	var pbits uint16
	switch f.Version {
	case frame.Version2:
		pbits = uint16(f.Priority&0x3) << 14
	case frame.Version3:
		pbits = uint16(f.Priority&0x7) << 13
	default:
		return nil, fmt.Errorf("generator: unsupported version %d", f.Version)
	}

	body := new(bytes.Buffer)
	writeU32(body, uint32(f.StreamId)&frame.StreamIdMask)
	writeU32(body, uint32(f.AssociatedStreamId)&frame.StreamIdMask)
	writeU16(body, pbits)
	body.Write(block)

	return g.controlFrame(f.Version, frame.TypeSynStream, f.Flags, body.Bytes())
}

func (g *Generator) synReply(f *frame.SynReplyFrame) ([]byte, error) {
	block, err := g.encodeHeaderBlock(f.Version, f.Headers)
	if err != nil {
		return nil, err
	}

	body := new(bytes.Buffer)
	writeU32(body, uint32(f.StreamId)&frame.StreamIdMask)
	if f.Version == frame.Version2 {
		writeU16(body, 0)
	}
	body.Write(block)

	return g.controlFrame(f.Version, frame.TypeSynReply, f.Flags, body.Bytes())
}

func (g *Generator) rstStream(f *frame.RstStreamFrame) ([]byte, error) {
	body := new(bytes.Buffer)
	writeU32(body, uint32(f.StreamId)&frame.StreamIdMask)
	writeU32(body, uint32(f.StatusCode))
	return g.controlFrame(f.Version, frame.TypeRstStream, 0, body.Bytes())
}

func (g *Generator) settings(f *frame.SettingsFrame) ([]byte, error) {
	body := new(bytes.Buffer)
	writeU32(body, uint32(len(f.Values)))
	for key, value := range f.Values {
		idWord := uint32(key.Flags)<<24 | uint32(key.ID)&0x00FFFFFF
		writeU32(body, idWord)
		writeU32(body, value)
	}
	var flags frame.ControlFlags
	if f.ClearPersisted {
		flags = frame.FlagSettingsClearPersisted
	}
	return g.controlFrame(f.Version, frame.TypeSettings, flags, body.Bytes())
}

func (g *Generator) ping(f *frame.PingFrame) ([]byte, error) {
	body := new(bytes.Buffer)
	writeU32(body, f.PingId)
	return g.controlFrame(f.Version, frame.TypePing, 0, body.Bytes())
}

func (g *Generator) goAway(f *frame.GoAwayFrame) ([]byte, error) {
	body := new(bytes.Buffer)
	writeU32(body, uint32(f.LastStreamId)&frame.StreamIdMask)
	if f.Version == frame.Version3 {
		writeU32(body, uint32(f.StatusCode))
	}
	return g.controlFrame(f.Version, frame.TypeGoAway, 0, body.Bytes())
}

func (g *Generator) headers(f *frame.HeadersFrame) ([]byte, error) {
	block, err := g.encodeHeaderBlock(f.Version, f.Headers)
	if err != nil {
		return nil, err
	}

	body := new(bytes.Buffer)
	writeU32(body, uint32(f.StreamId)&frame.StreamIdMask)
	body.Write(block)

	return g.controlFrame(f.Version, frame.TypeHeaders, f.Flags, body.Bytes())
}

func (g *Generator) windowUpdate(f *frame.WindowUpdateFrame) ([]byte, error) {
	body := new(bytes.Buffer)
	writeU32(body, uint32(f.StreamId)&frame.StreamIdMask)
	writeU32(body, uint32(f.DeltaWindowSize)&frame.StreamIdMask)
	return g.controlFrame(f.Version, frame.TypeWindowUpdate, 0, body.Bytes())
}

func writeU16(b *bytes.Buffer, v uint16) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	b.Write(tmp[:])
}

func writeU32(b *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	b.Write(tmp[:])
}
