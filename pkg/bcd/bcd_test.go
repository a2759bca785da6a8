package bcd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, v := range []int{0, 1, 9, 10, 42, 59, 99} {
		b, err := Encode(v)
		require.NoError(t, err)
		got, err := Decode(b)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestEncodeRejectsOutOfRange(t *testing.T) {
	_, err := Encode(-1)
	require.Error(t, err)
	_, err = Encode(100)
	require.Error(t, err)
}

func TestDecodeRejectsInvalidNibble(t *testing.T) {
	_, err := Decode(0xA0)
	require.Error(t, err)
	_, err = Decode(0x0A)
	require.Error(t, err)
}

func TestStripBiasLeavesLowBytesUnchanged(t *testing.T) {
	require.Equal(t, byte(0x59), StripBias(0x59))
	require.Equal(t, byte(0x60), StripBias(0x60))
}

func TestStripBiasRemovesHighBias(t *testing.T) {
	// A biased seconds byte of 0x61 decodes to second 1 after StripBias.
	require.Equal(t, byte(0x01), StripBias(0x61))
}

func TestDecodeBiasedAppliesBiasThenDecodes(t *testing.T) {
	v, err := DecodeBiased(0x61)
	require.NoError(t, err)
	require.Equal(t, 1, v)

	v, err = DecodeBiased(0x45)
	require.NoError(t, err)
	require.Equal(t, 45, v)
}
