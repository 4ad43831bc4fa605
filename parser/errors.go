// Copyright (c) 2013, Daniel Morsing
// For more information, see the LICENSE file

package parser

import (
	"errors"
	"fmt"

	"github.com/morsing-labs/spdycore/frame"
)

var (
	errEmptyHeaderName      = errors.New("spdy: empty header name")
	errEmptyHeaderValue     = errors.New("spdy: empty header value")
	errEmptyHeaderValuePart = errors.New("spdy: empty value in multi-valued header")
	errUnsupportedVersion   = errors.New("spdy: unsupported version")
	errUnknownFlags         = errors.New("spdy: unrecognized flag bits")
)

// StreamException aborts parsing of the current frame only; the parser
// recovers and continues with the next frame. The session layer resets
// the offending stream with StatusCode.
type StreamException struct {
	StatusCode frame.StreamStatus
	StreamId   frame.StreamId
	Cause      error
}

func (e *StreamException) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("spdy: stream %d: %v", e.StreamId, e.Cause)
	}
	return fmt.Sprintf("spdy: stream %d: status %v", e.StreamId, e.StatusCode)
}

func (e *StreamException) Unwrap() error { return e.Cause }

// SessionException means further parsing of the connection is not
// possible; the session layer emits GO_AWAY and closes the transport.
type SessionException struct {
	StatusCode frame.SessionStatus
	Cause      error
}

func (e *SessionException) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("spdy: session: %v", e.Cause)
	}
	return fmt.Sprintf("spdy: session: status %v", e.StatusCode)
}

func (e *SessionException) Unwrap() error { return e.Cause }
