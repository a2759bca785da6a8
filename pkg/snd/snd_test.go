package snd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func h1Header() []byte {
	b := make([]byte, HeaderLenWithEncryption)
	copy(b[0:67], "Feature Title")
	copy(b[68:72], "ACME")
	b[75] = byte(DolbySR)
	b[78] = 3 // reel
	b[80], b[81] = 0x15, 0x04
	b[82] = 6 // tracks
	return b
}

func TestDecodeH1Revision(t *testing.T) {
	b := h1Header()
	m, err := Decode(b)
	require.NoError(t, err)
	require.Equal(t, RevisionH1, m.Revision)
	require.Equal(t, "Feature Title", m.Title)
	require.Equal(t, KindFeature, m.Kind)
	require.EqualValues(t, 0x0415, m.ID)
	require.Equal(t, DolbySR, m.OpticalBackup)
	require.Nil(t, m.StartOffset)
}

func TestDecodeTrailerReelIsKindTrailer(t *testing.T) {
	b := h1Header()
	b[78] = 14
	m, err := Decode(b)
	require.NoError(t, err)
	require.Equal(t, KindTrailer, m.Kind)
}

func TestDecodeRejectsShortBuffer(t *testing.T) {
	_, err := Decode(make([]byte, HeaderLenWithEncryption-1))
	require.Error(t, err)
}

func TestDecodeRejectsUnknownBackupFormat(t *testing.T) {
	b := h1Header()
	b[75] = 0x7F
	_, err := Decode(b)
	require.Error(t, err)
}

func TestDecodeXDRevisionParsesLanguage(t *testing.T) {
	b := h1Header()
	b[60] = '*'
	copy(b[61:65], "ENG\x00")
	m, err := Decode(b)
	require.NoError(t, err)
	require.Equal(t, RevisionXD, m.Revision)
	require.NotNil(t, m.Language)
	require.Equal(t, "ENG", *m.Language)
}

func TestGenericTrailersHeaderRoundTripsThroughEncode(t *testing.T) {
	m := GenericTrailersHeader()
	buf, err := Encode(m)
	require.NoError(t, err)
	require.Len(t, buf, HeaderLen)

	decoded, err := Decode(append(buf, 0, 0, 0))
	require.NoError(t, err)
	require.Equal(t, m.Reel, decoded.Reel)
	require.Equal(t, m.OpticalBackup, decoded.OpticalBackup)
	require.Equal(t, m.Tracks, decoded.Tracks)
}

func TestEncodeNeverEmitsEncryptionTail(t *testing.T) {
	key := uint16(0xBEEF)
	m := GenericTrailersHeader()
	m.EncryptionKey = &key
	buf, err := Encode(m)
	require.NoError(t, err)
	require.Len(t, buf, HeaderLen)
}

func TestBackupFormatString(t *testing.T) {
	require.Equal(t, "Dolby A", DolbyA.String())
	require.Equal(t, "unknown", BackupFormat(0x55).String())
}
