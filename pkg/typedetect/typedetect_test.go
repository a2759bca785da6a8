package typedetect

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/bgrewell/dts-kit/pkg/hdr"
	"github.com/bgrewell/dts-kit/pkg/vfs"
)

// memFile is a minimal vfs.File double over an in-memory buffer.
type memFile struct {
	data []byte
	pos  int64
}

func (m *memFile) Read(p []byte) (int, error) {
	n, err := m.ReadAt(p, m.pos)
	m.pos += int64(n)
	return n, err
}
func (m *memFile) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.ErrUnexpectedEOF
	}
	return n, nil
}
func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = m.pos + offset
	case io.SeekEnd:
		target = int64(len(m.data)) + offset
	}
	m.pos = target
	return target, nil
}
func (m *memFile) Size() int64 { return int64(len(m.data)) }
func (m *memFile) ReadBytesAt(n int, p int64) ([]byte, error) {
	return vfs.ReadBytesAt(m, n, p)
}
func (m *memFile) ReadU16LEAt(p int64) (uint16, error) {
	return vfs.ReadU16LEAt(m, p)
}

func TestDetectByExtension(t *testing.T) {
	k, err := Detect("reel.AUD", &memFile{})
	require.NoError(t, err)
	require.Equal(t, KindAud, k)
}

func TestDetectHdrByMagic(t *testing.T) {
	b := make([]byte, hdr.Len)
	b[0] = hdr.Len
	copy(b[1:9], []byte{0x00, 0x01, 0x00, 0x04, 0x00, 'D', 'T', 'S'})
	k, err := Detect("unnamed", &memFile{data: b})
	require.NoError(t, err)
	require.Equal(t, KindHdr, k)
}

func TestDetectISOByMagicAtVolumeDescriptor(t *testing.T) {
	b := make([]byte, 0x8001+5)
	copy(b[0x8001:], "CD001")
	k, err := Detect("image.bin", &memFile{data: b})
	require.NoError(t, err)
	require.Equal(t, KindISO, k)
}

func TestDetectSquashFSByMagic(t *testing.T) {
	b := []byte("hsqs" + string(bytes.Repeat([]byte{0}, 16)))
	k, err := Detect("image.bin", &memFile{data: b})
	require.NoError(t, err)
	require.Equal(t, KindSquashFS, k)
}

func TestDetectHDDImageBySignature(t *testing.T) {
	b := make([]byte, 512)
	b[510], b[511] = 0x55, 0xAA
	k, err := Detect("image.bin", &memFile{data: b})
	require.NoError(t, err)
	require.Equal(t, KindHDDImage, k)
}

func TestDetectPartitionImageBySignature(t *testing.T) {
	b := make([]byte, 1082)
	b[1080], b[1081] = 0x53, 0xEF
	k, err := Detect("image.bin", &memFile{data: b})
	require.NoError(t, err)
	require.Equal(t, KindPartitionImage, k)
}

func TestDetectReturnsErrorWhenUnrecognized(t *testing.T) {
	_, err := Detect("mystery.bin", &memFile{data: make([]byte, 2048)})
	require.Error(t, err)
}

func TestKindString(t *testing.T) {
	require.Equal(t, "SND", KindSnd.String())
	require.Equal(t, "unknown", KindUnknown.String())
}
