package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morsing-labs/spdycore/frame"
	"github.com/morsing-labs/spdycore/generator"
	"github.com/morsing-labs/spdycore/headerblock"
)

type captureListener struct {
	control  []frame.Frame
	data     []*frame.DataFrame
	streamEx []*StreamException
	sessEx   []*SessionException
}

func (c *captureListener) OnControlFrame(f frame.Frame) { c.control = append(c.control, f) }
func (c *captureListener) OnDataFrame(f *frame.DataFrame, payload []byte) {
	c.data = append(c.data, f)
}
func (c *captureListener) OnStreamException(e *StreamException)   { c.streamEx = append(c.streamEx, e) }
func (c *captureListener) OnSessionException(e *SessionException) { c.sessEx = append(c.sessEx, e) }

func encodeSynStream(t *testing.T, f *frame.SynStreamFrame) []byte {
	gen, err := generator.New(headerblock.Dictionary)
	require.NoError(t, err)
	buf, err := gen.Control(f)
	require.NoError(t, err)
	return buf
}

func TestParserFeedWholeBuffer(t *testing.T) {
	headers := frame.NewHeaders()
	headers.Add(":method", "GET")
	headers.Add(":path", "/")

	wire := encodeSynStream(t, &frame.SynStreamFrame{
		Version:  frame.Version3,
		StreamId: 1,
		Headers:  headers,
	})

	l := &captureListener{}
	p := New(l, headerblock.Dictionary)

	for consumed := 0; consumed < len(wire); {
		consumed += p.Feed(wire[consumed:])
	}

	require.Len(t, l.control, 1)
	syn, ok := l.control[0].(*frame.SynStreamFrame)
	require.True(t, ok)
	assert.Equal(t, frame.StreamId(1), syn.StreamId)
	assert.True(t, syn.Headers.Equal(headers))
}

func TestParserFeedByteAtATime(t *testing.T) {
	headers := frame.NewHeaders()
	headers.Add(":method", "POST")
	headers.Add("content-type", "text/plain")

	wire := encodeSynStream(t, &frame.SynStreamFrame{
		Version:  frame.Version3,
		StreamId: 3,
		Headers:  headers,
	})

	whole := &captureListener{}
	pWhole := New(whole, headerblock.Dictionary)
	for consumed := 0; consumed < len(wire); {
		consumed += pWhole.Feed(wire[consumed:])
	}

	byByte := &captureListener{}
	pByte := New(byByte, headerblock.Dictionary)
	for _, b := range wire {
		pByte.Feed([]byte{b})
	}

	require.Len(t, byByte.control, 1)
	require.Len(t, whole.control, 1)

	wantSyn := whole.control[0].(*frame.SynStreamFrame)
	gotSyn := byByte.control[0].(*frame.SynStreamFrame)
	assert.Equal(t, wantSyn.StreamId, gotSyn.StreamId)
	assert.True(t, wantSyn.Headers.Equal(gotSyn.Headers))
}

func TestParserFeedFragmentedAtEveryBoundary(t *testing.T) {
	headers := frame.NewHeaders()
	headers.Add(":method", "GET")
	headers.Add(":path", "/very/long/path/to/exercise/the/compressed/header/region")

	wire := encodeSynStream(t, &frame.SynStreamFrame{
		Version:  frame.Version3,
		StreamId: 5,
		Headers:  headers,
	})

	for split := 1; split < len(wire); split++ {
		l := &captureListener{}
		p := New(l, headerblock.Dictionary)

		first := wire[:split]
		for consumed := 0; consumed < len(first); {
			consumed += p.Feed(first[consumed:])
		}
		assert.Empty(t, l.control, "split at %d emitted early", split)

		rest := wire[split:]
		for consumed := 0; consumed < len(rest); {
			consumed += p.Feed(rest[consumed:])
		}
		require.Len(t, l.control, 1, "split at %d did not yield exactly one frame", split)
	}
}

func TestParserUnknownControlTypeIgnored(t *testing.T) {
	// Word0: control bit + version 3 + type 99 (unknown); word1: flags 0, length 0.
	wire := []byte{
		0x80, 0x03, 0x00, 0x63,
		0x00, 0x00, 0x00, 0x00,
	}
	l := &captureListener{}
	p := New(l, headerblock.Dictionary)
	n := p.Feed(wire)
	assert.Equal(t, len(wire), n)
	assert.Empty(t, l.control)
	assert.Empty(t, l.sessEx)
}

func TestParserDataFrame(t *testing.T) {
	wire := []byte{
		0x00, 0x00, 0x00, 0x07, // streamId 7, control bit clear
		0x01, 0x00, 0x00, 0x03, // flags FIN, length 3
		'a', 'b', 'c',
	}
	l := &captureListener{}
	p := New(l, headerblock.Dictionary)
	n := p.Feed(wire)
	assert.Equal(t, len(wire), n)
	require.Len(t, l.data, 1)
	assert.Equal(t, frame.StreamId(7), l.data[0].StreamId)
	assert.True(t, l.data[0].Fin())
	assert.Equal(t, []byte("abc"), l.data[0].Data)
}
