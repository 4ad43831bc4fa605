// Copyright (c) 2013, Daniel Morsing
// For more information, see the LICENSE file

package frame

// Headers is a case-preserving multi-map of header name to an ordered
// list of values. Unlike net/http.Header, names are stored exactly as
// given: SPDY header names are conventionally lower-case special
// pseudo-headers (":method", ":path", ...) and canonicalizing them the
// way net/http does would corrupt the wire form.
type Headers map[string][]string

// NewHeaders returns an empty Headers multimap.
func NewHeaders() Headers {
	return make(Headers)
}

// Add appends value to the list of values for name, preserving insertion
// order within that name.
func (h Headers) Add(name, value string) {
	h[name] = append(h[name], value)
}

// Set replaces the values for name with a single value.
func (h Headers) Set(name, value string) {
	h[name] = []string{value}
}

// Get returns the first value for name, or "" if name is absent.
func (h Headers) Get(name string) string {
	v := h[name]
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

// Values returns every value for name, or nil if name is absent.
func (h Headers) Values(name string) []string {
	return h[name]
}

// Clone returns a deep copy of h.
func (h Headers) Clone() Headers {
	out := make(Headers, len(h))
	for k, v := range h {
		cp := make([]string, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

// Equal reports whether h and other have the same names mapped to the
// same ordered value lists.
func (h Headers) Equal(other Headers) bool {
	if len(h) != len(other) {
		return false
	}
	for k, v := range h {
		ov, ok := other[k]
		if !ok || len(v) != len(ov) {
			return false
		}
		for i := range v {
			if v[i] != ov[i] {
				return false
			}
		}
	}
	return true
}
