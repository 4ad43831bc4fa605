// Copyright (c) 2013, Daniel Morsing
// For more information, see the LICENSE file

package frame

// StreamStatus is a stream-level error code carried by RST_STREAM. Its
// numeric wire value differs between SPDY v2 and v3, so it is looked up
// through Code/StreamStatusFromCode rather than cast directly.
type StreamStatus int

const (
	StreamStatusProtocolError StreamStatus = iota + 1
	StreamStatusInvalidStream
	StreamStatusRefusedStream
	StreamStatusUnsupportedVersion
	StreamStatusCancelStream
	StreamStatusInternalError
	StreamStatusFlowControlError
	StreamStatusStreamInUse
	StreamStatusStreamAlreadyClosed
)

// v2StreamCodes and v3StreamCodes map a StreamStatus to its per-version
// wire code. INTERNAL_ERROR has no v2 wire code here: it must never be
// sent to a v2 peer (Code returns ok=false for that combination). See
// DESIGN.md for the spec/original conflict this resolves.
var v2StreamCodes = map[StreamStatus]int32{
	StreamStatusProtocolError:      1,
	StreamStatusInvalidStream:      2,
	StreamStatusRefusedStream:      3,
	StreamStatusUnsupportedVersion: 4,
	StreamStatusCancelStream:       5,
	StreamStatusFlowControlError:   7,
}

var v3StreamCodes = map[StreamStatus]int32{
	StreamStatusProtocolError:       1,
	StreamStatusInvalidStream:       2,
	StreamStatusRefusedStream:       3,
	StreamStatusUnsupportedVersion:  4,
	StreamStatusCancelStream:        5,
	StreamStatusInternalError:       -1, // no v3 code either; kept for symmetry with Java enum
	StreamStatusFlowControlError:    6,
	StreamStatusStreamInUse:         7,
	StreamStatusStreamAlreadyClosed: 8,
}

var v2CodeToStatus = reverse(v2StreamCodes)
var v3CodeToStatus = reverse(v3StreamCodes)

func reverse(m map[StreamStatus]int32) map[int32]StreamStatus {
	out := make(map[int32]StreamStatus, len(m))
	for k, v := range m {
		if v < 0 {
			continue
		}
		out[v] = k
	}
	return out
}

// Code returns the wire code for s at the given version. ok is false if
// s cannot be represented at that version (e.g. INTERNAL_ERROR at v2).
func (s StreamStatus) Code(version Version) (code int32, ok bool) {
	var table map[StreamStatus]int32
	switch version {
	case Version2:
		table = v2StreamCodes
	case Version3:
		table = v3StreamCodes
	default:
		return 0, false
	}
	code, ok = table[s]
	if !ok || code < 0 {
		return 0, false
	}
	return code, true
}

// StreamStatusFromCode looks up the StreamStatus for a wire code at the
// given version. ok is false for an unrecognized code.
func StreamStatusFromCode(version Version, code int32) (status StreamStatus, ok bool) {
	switch version {
	case Version2:
		status, ok = v2CodeToStatus[code]
	case Version3:
		status, ok = v3CodeToStatus[code]
	}
	return
}

// SessionStatus is the session-level error code carried by GO_AWAY.
type SessionStatus int32

const (
	SessionStatusOK             SessionStatus = 0
	SessionStatusProtocolError  SessionStatus = 1
	SessionStatusInternalError  SessionStatus = 2
)
