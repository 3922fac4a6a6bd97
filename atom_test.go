package graft

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAtom_Distinct(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		a := NewAtom()
		require.False(t, seen[a.String()], "duplicate atom %s", a)
		seen[a.String()] = true
	}
}

func TestParseAtom_RoundTrip(t *testing.T) {
	a := NewAtom()
	parsed, err := ParseAtom(a.String())
	require.NoError(t, err)
	assert.Equal(t, a, parsed)
}

func TestParseAtom_Canonicalizes(t *testing.T) {
	// Uppercase input parses, but renders back lowercase.
	parsed, err := ParseAtom("550E8400-E29B-41D4-A716-446655440000")
	require.NoError(t, err)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", parsed.String())
}

func TestParseAtom_Invalid(t *testing.T) {
	for _, in := range []string{"", "not-a-uuid", "550e8400"} {
		_, err := ParseAtom(in)
		require.Error(t, err, "input %q", in)
		assert.True(t, IsMalformed(err), "input %q: got %v", in, err)
	}
}

func TestHash_RoundTrip(t *testing.T) {
	h := HashBytes([]byte("bar"))
	assert.Len(t, h.String(), 64)
	assert.Equal(t, strings.ToLower(h.String()), h.String())

	parsed, err := ParseHash(h.String())
	require.NoError(t, err)
	assert.Equal(t, h, parsed)

	// Uppercase hex is accepted.
	parsed, err = ParseHash(strings.ToUpper(h.String()))
	require.NoError(t, err)
	assert.Equal(t, h, parsed)
}

func TestParseHash_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", strings.Repeat("g", 64)} {
		_, err := ParseHash(in)
		require.Error(t, err, "input %q", in)
		assert.True(t, IsMalformed(err), "input %q: got %v", in, err)
	}
}
