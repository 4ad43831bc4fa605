// Copyright (c) 2013, Daniel Morsing
// For more information, see the LICENSE file

// Package frame defines the SPDY v2/v3 wire model: the tagged frame
// variants, their version-qualified fields, and the status code tables
// looked up when translating between a frame and the bytes on the wire.
package frame

// Version identifies a SPDY protocol version understood by this package.
type Version uint16

const (
	Version2 Version = 2
	Version3 Version = 3
)

// StreamId identifies a logical stream within a session. The top bit is
// reserved on the wire and is always masked off when a StreamId is read.
type StreamId uint32

// ControlType is the 16-bit type field of a control frame.
type ControlType uint16

const (
	TypeSynStream    ControlType = 1
	TypeSynReply     ControlType = 2
	TypeRstStream    ControlType = 3
	TypeSettings     ControlType = 4
	TypeNoop         ControlType = 5
	TypePing         ControlType = 6
	TypeGoAway       ControlType = 7
	TypeHeaders      ControlType = 8
	TypeWindowUpdate ControlType = 9
)

func (t ControlType) String() string {
	switch t {
	case TypeSynStream:
		return "SYN_STREAM"
	case TypeSynReply:
		return "SYN_REPLY"
	case TypeRstStream:
		return "RST_STREAM"
	case TypeSettings:
		return "SETTINGS"
	case TypeNoop:
		return "NOOP"
	case TypePing:
		return "PING"
	case TypeGoAway:
		return "GO_AWAY"
	case TypeHeaders:
		return "HEADERS"
	case TypeWindowUpdate:
		return "WINDOW_UPDATE"
	default:
		return "UNKNOWN"
	}
}

// ControlFlags are the 8 flag bits carried by a control frame. Their
// meaning is type-specific.
type ControlFlags uint8

const (
	ControlFlagFin             ControlFlags = 0x01
	ControlFlagUnidirectional  ControlFlags = 0x02
	FlagSettingsClearPersisted ControlFlags = 0x01
)

// DataFlags are the 8 flag bits carried by a data frame.
type DataFlags uint8

const DataFlagFin DataFlags = 0x01

// StreamIdMask strips the reserved top bit of a 32-bit stream id word.
const StreamIdMask uint32 = 0x7FFFFFFF

// Frame is implemented by every concrete frame type. It carries just
// enough shape for generic logging and dispatch; callers that need the
// type-specific fields switch on the concrete type, mirroring the way
// callers of the Java ControlFrame hierarchy switch on getType().
type Frame interface {
	// FrameVersion reports the SPDY protocol version this frame was
	// read at or will be written with.
	FrameVersion() Version
}
