package hdr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func minimalHeader() []byte {
	b := make([]byte, Len)
	b[0] = Len
	copy(b[1:9], signature[:])
	copy(b[9:27], "My Feature Title")
	copy(b[69:79], "AcmeStudio")
	b[79], b[80] = 0x34, 0x12 // id 0x1234
	b[91] = 3                 // reel
	return b
}

func TestDecodeMinimalHeader(t *testing.T) {
	m, err := Decode(minimalHeader(), "reel.hdr")
	require.NoError(t, err)
	require.Equal(t, "My Feature Title", m.Title)
	require.Equal(t, "AcmeStudio", m.Studio)
	require.EqualValues(t, 0x1234, m.ID)
	require.EqualValues(t, 3, m.Reel)
	require.False(t, m.IsTrailer())
}

func TestDecodeTrailerReel(t *testing.T) {
	b := minimalHeader()
	b[91] = 14
	m, err := Decode(b, "r14.hdr")
	require.NoError(t, err)
	require.True(t, m.IsTrailer())
}

func TestDecodeRejectsWrongSize(t *testing.T) {
	_, err := Decode(make([]byte, Len-1), "short.hdr")
	require.Error(t, err)
}

func TestDecodeRejectsBadSignature(t *testing.T) {
	b := minimalHeader()
	b[5] = 'X'
	_, err := Decode(b, "bad.hdr")
	require.Error(t, err)
}

func TestHasMagicToleratesShortBuffers(t *testing.T) {
	require.False(t, HasMagic(nil))
	require.False(t, HasMagic([]byte{Len, 0, 1}))
	require.True(t, HasMagic(minimalHeader()[:9]))
}
