package pointer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintAndParseRoundTrip(t *testing.T) {
	p := Mint(DefaultScheme, Readable)
	assert.Equal(t, DefaultScheme, p.Scheme)
	assert.Equal(t, Readable, p.Kind)
	assert.NotEmpty(t, p.ID)

	got, ok := Parse(p.String())
	require.True(t, ok)
	assert.Equal(t, p, got)
}

func TestMintUniqueness(t *testing.T) {
	a := Mint(DefaultScheme, Writable)
	b := Mint(DefaultScheme, Writable)
	assert.NotEqual(t, a.String(), b.String())
}

func TestParseRejectsNonPointerMethods(t *testing.T) {
	_, ok := Parse("project.fileChanged")
	assert.False(t, ok)

	_, ok = Parse("notascheme")
	assert.False(t, ok)
}

func TestParseRejectsUnknownKind(t *testing.T) {
	_, ok := Parse("mascara://abc123.bogus")
	assert.False(t, ok)
}

func TestParseDefaultScheme(t *testing.T) {
	p, ok := Parse("mascara://deadbeef.writable")
	require.True(t, ok)
	assert.Equal(t, "mascara", p.Scheme)
	assert.Equal(t, "deadbeef", p.ID)
	assert.Equal(t, Writable, p.Kind)
}
