package trailers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeSkipsCommentsAndParsesEntries(t *testing.T) {
	text := ";NAME           SERIAL  START   END     OFFSET\r\n" +
		";----           ------  -----   ---     ------\r\n" +
		"TrailerOne\t1001\t0\t1200\t4096\r\n" +
		"TrailerTwo\t1002\t1200\t2400\t8192\r\n"

	m, err := Decode(strings.NewReader(text), "manifest.txt")
	require.NoError(t, err)
	require.Len(t, m.Entries, 2)
	require.Equal(t, "TrailerOne", m.Entries[0].Title)
	require.EqualValues(t, 1001, m.Entries[0].ID)
	require.EqualValues(t, 0, m.Entries[0].Start)
	require.Equal(t, 1200, m.Entries[0].End)
	require.Equal(t, 4096, m.Entries[0].Offset)
}

func TestDecodeToleratesStrayAlphanumericLine(t *testing.T) {
	text := "strayline\r\nReel\t5\t0\t10\t20\r\n"
	m, err := Decode(strings.NewReader(text), "manifest.txt")
	require.NoError(t, err)
	require.Len(t, m.Entries, 1)
}

func TestDecodeRejectsMalformedLine(t *testing.T) {
	text := "this is not , alphanumeric !!\r\n"
	_, err := Decode(strings.NewReader(text), "manifest.txt")
	require.Error(t, err)
}

func TestDecodeRejectsBadNumericField(t *testing.T) {
	text := "Reel\tNaN\t0\t10\t20\r\n"
	_, err := Decode(strings.NewReader(text), "manifest.txt")
	require.Error(t, err)
}

func TestEncodeWritesHeaderAndCRLFEntries(t *testing.T) {
	m := &Manifest{Entries: []Entry{
		{Title: "Reel14", ID: 14, Start: 0, End: 500, Offset: 1024},
	}}
	out := Encode(m)
	require.Contains(t, string(out), ";NAME")
	require.Contains(t, string(out), "Reel14\t14\t0\t500\t1024\r\n")
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := &Manifest{Entries: []Entry{
		{Title: "Reel01", ID: 1, Start: 0, End: 100, Offset: 200},
		{Title: "Reel02", ID: 2, Start: 100, End: 300, Offset: 400},
	}}
	encoded := Encode(m)
	decoded, err := Decode(strings.NewReader(string(encoded)), "roundtrip.txt")
	require.NoError(t, err)
	require.Equal(t, m.Entries, decoded.Entries)
}
