// Copyright (c) 2013, Daniel Morsing
// For more information, see the LICENSE file

// Package parser implements the incremental, byte-driven SPDY frame
// parser described in spec §4.1: a resumable state machine that
// consumes arbitrary byte slices fed to it by the transport and emits
// fully-formed frame events through a Listener.
package parser

import (
	"encoding/binary"

	"github.com/morsing-labs/spdycore/frame"
	"github.com/morsing-labs/spdycore/headerblock"
)

type stage int

const (
	stageHeader stage = iota
	stageBody
)

// Parser is a resumable byte-driven SPDY frame decoder. It is not safe
// for concurrent use: only the goroutine feeding transport bytes should
// ever call Feed, matching the single-threaded parser assumption in
// spec §5.
type Parser struct {
	listener Listener
	decomp   *headerblock.Decompressor

	stage  stage
	hdrBuf [8]byte
	hdrLen int

	isControl bool
	version   frame.Version
	ctype     frame.ControlType
	cflags    frame.ControlFlags
	dflags    frame.DataFlags
	dataID    frame.StreamId
	length    uint32

	body    []byte
	bodyLen int
}

// New creates a Parser that reports events to listener and decompresses
// header blocks using dict as the preset dictionary.
func New(listener Listener, dict []byte) *Parser {
	return &Parser{
		listener: listener,
		decomp:   headerblock.NewDecompressor(dict),
	}
}

// Feed advances the parser with more transport bytes. It consumes only
// as many bytes as are needed to complete at most one frame and returns
// that count; any unconsumed suffix of b must be fed again (along with
// any newly arrived bytes) on the next call. Feeding one byte at a time
// and feeding the whole buffer at once produce the same sequence of
// Listener callbacks.
func (p *Parser) Feed(b []byte) (consumed int) {
	n := 0

	if p.stage == stageHeader {
		take := copy(p.hdrBuf[p.hdrLen:], b[n:])
		p.hdrLen += take
		n += take
		if p.hdrLen < len(p.hdrBuf) {
			return n
		}
		p.decodeCommonHeader()
		p.stage = stageBody
		p.body = make([]byte, p.length)
		p.bodyLen = 0
	}

	if p.length > 0 {
		need := int(p.length) - p.bodyLen
		avail := len(b) - n
		take := need
		if avail < take {
			take = avail
		}
		if take > 0 {
			copy(p.body[p.bodyLen:], b[n:n+take])
			p.bodyLen += take
			n += take
		}
		if p.bodyLen < int(p.length) {
			return n
		}
	}

	p.dispatchBody()
	p.resetFrame()
	return n
}

func (p *Parser) decodeCommonHeader() {
	word0 := binary.BigEndian.Uint32(p.hdrBuf[0:4])
	word1 := binary.BigEndian.Uint32(p.hdrBuf[4:8])
	p.length = word1 & 0x00FFFFFF

	if word0&0x80000000 != 0 {
		p.isControl = true
		p.version = frame.Version(word0 >> 16 & 0x7FFF)
		p.ctype = frame.ControlType(word0 & 0xFFFF)
		p.cflags = frame.ControlFlags(word1 >> 24)
	} else {
		p.isControl = false
		p.dataID = frame.StreamId(word0 & frame.StreamIdMask)
		p.dflags = frame.DataFlags(word1 >> 24)
	}
}

func (p *Parser) dispatchBody() {
	if !p.isControl {
		p.listener.OnDataFrame(&frame.DataFrame{
			StreamId: p.dataID,
			Flags:    p.dflags,
			Data:     p.body,
		}, p.body)
		return
	}

	var (
		f   frame.Frame
		err error
	)

	switch p.ctype {
	case frame.TypeSynStream:
		f, err = p.parseSynStream()
	case frame.TypeSynReply:
		f, err = p.parseSynReply()
	case frame.TypeRstStream:
		f, err = p.parseRstStream()
	case frame.TypeSettings:
		f, err = p.parseSettings()
	case frame.TypeNoop:
		f, err = p.parseNoop()
	case frame.TypePing:
		f, err = p.parsePing()
	case frame.TypeGoAway:
		f, err = p.parseGoAway()
	case frame.TypeHeaders:
		f, err = p.parseHeaders()
	case frame.TypeWindowUpdate:
		f, err = p.parseWindowUpdate()
	default:
		// Unknown control frame types are ignored per spec §4.1.
		return
	}

	if err != nil {
		p.reportError(err)
		return
	}
	p.listener.OnControlFrame(f)
}

func (p *Parser) reportError(err error) {
	switch e := err.(type) {
	case *StreamException:
		p.listener.OnStreamException(e)
	case *SessionException:
		p.listener.OnSessionException(e)
	default:
		p.listener.OnSessionException(&SessionException{StatusCode: frame.SessionStatusInternalError, Cause: err})
	}
}

func (p *Parser) resetFrame() {
	p.stage = stageHeader
	p.hdrLen = 0
	p.body = nil
	p.bodyLen = 0
}
