package headerblock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	comp, err := NewCompressor(Dictionary)
	require.NoError(t, err)
	decomp := NewDecompressor(Dictionary)

	inputs := [][]byte{
		[]byte("\x00\x00\x00\x02\x00\x00\x00\x07:method\x00\x00\x00\x03GET"),
		[]byte("\x00\x00\x00\x01\x00\x00\x00\x05:path\x00\x00\x00\x01/"),
	}

	for _, in := range inputs {
		compressed, err := comp.Deflate(in)
		require.NoError(t, err)
		out, err := decomp.Inflate(compressed)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}
}

func TestLatin1RoundTrip(t *testing.T) {
	s := "hello-\xff-world"
	b := EncodeLatin1(s)
	assert.Equal(t, s, DecodeLatin1(b))
}

func TestEncodeLatin1ReplacesOutOfRange(t *testing.T) {
	b := EncodeLatin1("café☃")
	assert.Equal(t, byte('?'), b[len(b)-1])
}
