package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyKnownProtocols(t *testing.T) {
	cases := map[string]Negotiated{
		"spdy/3":   NegotiatedSpdy3,
		"spdy/2":   NegotiatedSpdy2,
		"http/1.1": NegotiatedFallback,
		"":         NegotiatedFallback,
		"h2":       NegotiatedUnknown,
	}
	for proto, want := range cases {
		assert.Equal(t, want, classify(proto), "proto %q", proto)
	}
}

func TestDefaultNextProtosOffersBothSpdyVersions(t *testing.T) {
	protos := DefaultNextProtos()
	assert.Equal(t, []string{"spdy/3", "spdy/2", "http/1.1"}, protos)
}
