// Copyright (c) 2013, Daniel Morsing
// For more information, see the LICENSE file

package parser

import "github.com/morsing-labs/spdycore/frame"

func (p *Parser) parseSynStream() (frame.Frame, error) {
	r := newReader(p.body)
	streamWord, err := r.u32()
	if err != nil {
		return nil, &SessionException{StatusCode: frame.SessionStatusProtocolError, Cause: err}
	}
	streamId := frame.StreamId(streamWord & frame.StreamIdMask)

	if p.cflags&^(frame.ControlFlagFin|frame.ControlFlagUnidirectional) != 0 {
		return nil, &StreamException{StatusCode: frame.StreamStatusProtocolError, StreamId: streamId, Cause: errUnknownFlags}
	}

	assocWord, err := r.u32()
	if err != nil {
		return nil, &SessionException{StatusCode: frame.SessionStatusProtocolError, Cause: err}
	}
	assocId := frame.StreamId(assocWord & frame.StreamIdMask)

	pbits, err := r.u16()
	if err != nil {
		return nil, &SessionException{StatusCode: frame.SessionStatusProtocolError, Cause: err}
	}

	var priority uint8
	switch p.version {
	case frame.Version2:
		priority = uint8(pbits>>14) & 0x3
	case frame.Version3:
		priority = uint8(pbits>>13) & 0x7
	default:
		return nil, &StreamException{StatusCode: frame.StreamStatusUnsupportedVersion, StreamId: streamId, Cause: errUnsupportedVersion}
	}

	headers, err := p.decodeHeaderBlock(p.version, streamId, r.rest())
	if err != nil {
		return nil, err
	}

	return &frame.SynStreamFrame{
		Version:            p.version,
		Flags:              p.cflags,
		StreamId:           streamId,
		AssociatedStreamId: assocId,
		Priority:           priority,
		Headers:            headers,
	}, nil
}

func (p *Parser) parseSynReply() (frame.Frame, error) {
	r := newReader(p.body)
	streamWord, err := r.u32()
	if err != nil {
		return nil, &SessionException{StatusCode: frame.SessionStatusProtocolError, Cause: err}
	}
	streamId := frame.StreamId(streamWord & frame.StreamIdMask)

	if p.cflags&^frame.ControlFlagFin != 0 {
		return nil, &StreamException{StatusCode: frame.StreamStatusProtocolError, StreamId: streamId, Cause: errUnknownFlags}
	}

	if p.version == frame.Version2 {
		if _, err := r.u16(); err != nil { // 16 bits reserved, v2 only
			return nil, &SessionException{StatusCode: frame.SessionStatusProtocolError, Cause: err}
		}
	}

	headers, err := p.decodeHeaderBlock(p.version, streamId, r.rest())
	if err != nil {
		return nil, err
	}

	return &frame.SynReplyFrame{
		Version:  p.version,
		Flags:    p.cflags,
		StreamId: streamId,
		Headers:  headers,
	}, nil
}

func (p *Parser) parseRstStream() (frame.Frame, error) {
	r := newReader(p.body)
	streamWord, err := r.u32()
	if err != nil {
		return nil, &SessionException{StatusCode: frame.SessionStatusProtocolError, Cause: err}
	}
	streamId := frame.StreamId(streamWord & frame.StreamIdMask)

	code, err := r.u32()
	if err != nil {
		return nil, &SessionException{StatusCode: frame.SessionStatusProtocolError, Cause: err}
	}

	return &frame.RstStreamFrame{
		Version:    p.version,
		StreamId:   streamId,
		StatusCode: int32(code),
	}, nil
}

func (p *Parser) parseSettings() (frame.Frame, error) {
	if p.cflags&^frame.FlagSettingsClearPersisted != 0 {
		return nil, &SessionException{StatusCode: frame.SessionStatusProtocolError, Cause: errUnknownFlags}
	}

	r := newReader(p.body)
	count, err := r.u32()
	if err != nil {
		return nil, &SessionException{StatusCode: frame.SessionStatusProtocolError, Cause: err}
	}

	values := make(map[frame.SettingsKey]uint32, count)
	for i := uint32(0); i < count; i++ {
		idWord, err := r.u32()
		if err != nil {
			return nil, &SessionException{StatusCode: frame.SessionStatusProtocolError, Cause: err}
		}
		value, err := r.u32()
		if err != nil {
			return nil, &SessionException{StatusCode: frame.SessionStatusProtocolError, Cause: err}
		}
		key := frame.SettingsKey{
			Flags: frame.SettingsFlags(idWord >> 24),
			ID:    frame.SettingsId(idWord & 0x00FFFFFF),
		}
		values[key] = value
	}

	return &frame.SettingsFrame{
		Version:        p.version,
		ClearPersisted: p.cflags&frame.FlagSettingsClearPersisted != 0,
		Values:         values,
	}, nil
}

func (p *Parser) parseNoop() (frame.Frame, error) {
	return &frame.NoopFrame{Version: p.version}, nil
}

func (p *Parser) parsePing() (frame.Frame, error) {
	r := newReader(p.body)
	id, err := r.u32()
	if err != nil {
		return nil, &SessionException{StatusCode: frame.SessionStatusProtocolError, Cause: err}
	}
	return &frame.PingFrame{Version: p.version, PingId: id}, nil
}

func (p *Parser) parseGoAway() (frame.Frame, error) {
	r := newReader(p.body)
	lastWord, err := r.u32()
	if err != nil {
		return nil, &SessionException{StatusCode: frame.SessionStatusProtocolError, Cause: err}
	}

	var status frame.SessionStatus
	if p.version == frame.Version3 {
		code, err := r.u32()
		if err != nil {
			return nil, &SessionException{StatusCode: frame.SessionStatusProtocolError, Cause: err}
		}
		status = frame.SessionStatus(code)
	}

	return &frame.GoAwayFrame{
		Version:      p.version,
		LastStreamId: frame.StreamId(lastWord & frame.StreamIdMask),
		StatusCode:   status,
	}, nil
}

func (p *Parser) parseHeaders() (frame.Frame, error) {
	r := newReader(p.body)
	streamWord, err := r.u32()
	if err != nil {
		return nil, &SessionException{StatusCode: frame.SessionStatusProtocolError, Cause: err}
	}
	streamId := frame.StreamId(streamWord & frame.StreamIdMask)

	if p.cflags&^frame.ControlFlagFin != 0 {
		return nil, &StreamException{StatusCode: frame.StreamStatusProtocolError, StreamId: streamId, Cause: errUnknownFlags}
	}

	headers, err := p.decodeHeaderBlock(p.version, streamId, r.rest())
	if err != nil {
		return nil, err
	}

	return &frame.HeadersFrame{
		Version:  p.version,
		Flags:    p.cflags,
		StreamId: streamId,
		Headers:  headers,
	}, nil
}

func (p *Parser) parseWindowUpdate() (frame.Frame, error) {
	r := newReader(p.body)
	streamWord, err := r.u32()
	if err != nil {
		return nil, &SessionException{StatusCode: frame.SessionStatusProtocolError, Cause: err}
	}
	deltaWord, err := r.u32()
	if err != nil {
		return nil, &SessionException{StatusCode: frame.SessionStatusProtocolError, Cause: err}
	}

	return &frame.WindowUpdateFrame{
		Version:         p.version,
		StreamId:        frame.StreamId(streamWord & frame.StreamIdMask),
		DeltaWindowSize: int32(deltaWord & frame.StreamIdMask),
	}, nil
}
