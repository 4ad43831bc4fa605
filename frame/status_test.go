package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamStatusCodeRoundTrip(t *testing.T) {
	for _, status := range []StreamStatus{
		StreamStatusProtocolError,
		StreamStatusInvalidStream,
		StreamStatusRefusedStream,
		StreamStatusUnsupportedVersion,
		StreamStatusCancelStream,
		StreamStatusFlowControlError,
	} {
		code, ok := status.Code(Version2)
		assert.True(t, ok, "status %v should have a v2 code", status)
		got, ok := StreamStatusFromCode(Version2, code)
		assert.True(t, ok)
		assert.Equal(t, status, got)
	}
}

func TestInternalErrorHasNoV2Code(t *testing.T) {
	_, ok := StreamStatusInternalError.Code(Version2)
	assert.False(t, ok)
}

func TestV3OnlyStatusCodes(t *testing.T) {
	for _, status := range []StreamStatus{StreamStatusStreamInUse, StreamStatusStreamAlreadyClosed} {
		_, ok := status.Code(Version2)
		assert.False(t, ok)
		code, ok := status.Code(Version3)
		assert.True(t, ok)
		got, ok := StreamStatusFromCode(Version3, code)
		assert.True(t, ok)
		assert.Equal(t, status, got)
	}
}

// Pins the literal wire values against the fixed SPDY/2 numbering
// (see DESIGN.md for the FLOW_CONTROL_ERROR=7 transcription fix), so a
// round-trip-only regression can't silently renumber a wire code.
func TestV2StatusCodeLiteralValues(t *testing.T) {
	cases := map[StreamStatus]int32{
		StreamStatusProtocolError:     1,
		StreamStatusInvalidStream:     2,
		StreamStatusRefusedStream:     3,
		StreamStatusUnsupportedVersion: 4,
		StreamStatusCancelStream:      5,
		StreamStatusFlowControlError:  7,
	}
	for status, want := range cases {
		code, ok := status.Code(Version2)
		assert.True(t, ok, "status %v should have a v2 code", status)
		assert.Equal(t, want, code, "status %v", status)
	}
}
