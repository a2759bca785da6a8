package squashfs

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeUncompressedMetadataBlock appends a metadata block whose header
// flags it uncompressed (bit 15 set, the opposite of the "compressed"
// reading) and whose payload is data.
func writeUncompressedMetadataBlock(buf *bytes.Buffer, data []byte) {
	var hdr [2]byte
	binary.LittleEndian.PutUint16(hdr[:], uint16(len(data))|0x8000)
	buf.Write(hdr[:])
	buf.Write(data)
}

func fill(n int, b byte) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

func newTestFS(backend *bytes.Reader) *FileSystem {
	dec, _ := newDecompressor(compressorGzip)
	return &FileSystem{
		backend:    backend,
		sb:         &Superblock{BlockSize: 131072},
		decompress: dec,
		cache:      newMetadataCache(defaultCacheSize),
	}
}

// TestMetadataReadSpansBlocks covers the core testable property:
// reading length = 8192 + 4096 bytes across a metadata-block boundary
// returns the same bytes as reading the two segments separately.
func TestMetadataReadSpansBlocks(t *testing.T) {
	blockA := fill(metadataBlockSize, 0xAA)
	blockB := fill(4096, 0xBB)

	var raw bytes.Buffer
	writeUncompressedMetadataBlock(&raw, blockA)
	writeUncompressedMetadataBlock(&raw, blockB)

	fs := newTestFS(bytes.NewReader(raw.Bytes()))

	spanned, nextBlock, nextOffset, err := fs.readMetadata(0, 0, metadataBlockSize+4096)
	require.NoError(t, err)
	require.Equal(t, append(append([]byte{}, blockA...), blockB...), spanned)
	require.Equal(t, int64(len(blockA)+len(blockB)+4), nextBlock)
	require.Equal(t, uint16(0), nextOffset)

	// Reading the two segments separately, continuing from the
	// returned cursor, must produce identical bytes.
	first, curBlock, curOffset, err := fs.readMetadata(0, 0, metadataBlockSize)
	require.NoError(t, err)
	require.Equal(t, blockA, first)

	second, _, _, err := fs.readMetadata(curBlock, curOffset, 4096)
	require.NoError(t, err)
	require.Equal(t, blockB, second)
}

func TestMetadataCacheReusesDecompressedBlock(t *testing.T) {
	block := fill(100, 0x42)
	var raw bytes.Buffer
	writeUncompressedMetadataBlock(&raw, block)

	fs := newTestFS(bytes.NewReader(raw.Bytes()))

	first, err := fs.readMetadataBlockAt(0)
	require.NoError(t, err)
	second, err := fs.readMetadataBlockAt(0)
	require.NoError(t, err)
	require.Same(t, first, second)
}

func TestSuperblockRejectsBadMagic(t *testing.T) {
	buf := make([]byte, superblockSize)
	copy(buf, "nope")
	_, err := readSuperblock(bytes.NewReader(buf), 0)
	require.Error(t, err)
}

func TestSuperblockParsesFields(t *testing.T) {
	buf := make([]byte, superblockSize)
	le := binary.LittleEndian
	copy(buf[0:4], magic)
	le.PutUint32(buf[4:8], 42)     // inodes
	le.PutUint32(buf[12:16], 131072) // block_size
	le.PutUint16(buf[20:22], compressorXZ)
	le.PutUint16(buf[26:28], 1) // id_count
	le.PutUint16(buf[28:30], majorVersion)
	le.PutUint16(buf[30:32], minorVersion)
	le.PutUint64(buf[32:40], 0x10000) // root inode
	le.PutUint64(buf[64:72], 96)      // inode table start
	le.PutUint64(buf[72:80], 200)     // directory table start

	sb, err := readSuperblock(bytes.NewReader(buf), 0)
	require.NoError(t, err)
	require.EqualValues(t, 42, sb.Inodes)
	require.EqualValues(t, 131072, sb.BlockSize)
	require.EqualValues(t, compressorXZ, sb.Compression)
	require.EqualValues(t, 0x10000, sb.RootInode)
	require.EqualValues(t, 96, sb.InodeTableStart)
	require.EqualValues(t, 200, sb.DirectoryTableStart)
}

func TestSuperblockRejectsZeroIDCount(t *testing.T) {
	buf := make([]byte, superblockSize)
	copy(buf[0:4], magic)
	binary.LittleEndian.PutUint16(buf[28:30], majorVersion)
	binary.LittleEndian.PutUint16(buf[30:32], minorVersion)
	_, err := readSuperblock(bytes.NewReader(buf), 0)
	require.Error(t, err)
}

func TestSuperblockRejectsUnsupportedVersion(t *testing.T) {
	buf := make([]byte, superblockSize)
	copy(buf[0:4], magic)
	binary.LittleEndian.PutUint16(buf[26:28], 1)
	binary.LittleEndian.PutUint16(buf[28:30], 3) // major 3, unsupported
	_, err := readSuperblock(bytes.NewReader(buf), 0)
	require.Error(t, err)
}

func TestNewDecompressorRejectsLZO(t *testing.T) {
	_, err := newDecompressor(compressorLZO)
	require.Error(t, err)
}

func TestNewDecompressorRejectsUnknownID(t *testing.T) {
	_, err := newDecompressor(99)
	require.Error(t, err)
}

func TestDirEntryReadsGroupFromOneMetadataBlock(t *testing.T) {
	// One directory header (count=1 on-disk, meaning 2 entries) plus
	// two fixed-size entries and their names, all uncompressed.
	var body bytes.Buffer
	var hdr [12]byte
	binary.LittleEndian.PutUint32(hdr[0:4], 1) // count-1 => 2 entries
	binary.LittleEndian.PutUint32(hdr[4:8], 7) // start block
	binary.LittleEndian.PutUint32(hdr[8:12], 100)
	body.Write(hdr[:])

	writeEntry := func(offset uint16, delta int16, typ InodeType, name string) {
		var fixed [8]byte
		binary.LittleEndian.PutUint16(fixed[0:2], offset)
		binary.LittleEndian.PutUint16(fixed[2:4], uint16(delta))
		binary.LittleEndian.PutUint16(fixed[4:6], uint16(typ))
		binary.LittleEndian.PutUint16(fixed[6:8], uint16(len(name)-1))
		body.Write(fixed[:])
		body.WriteString(name)
	}
	writeEntry(0x10, 1, InodeBasicFile, "r01t5.aud")
	writeEntry(0x20, 2, InodeBasicDirectory, "sub")

	var raw bytes.Buffer
	writeUncompressedMetadataBlock(&raw, body.Bytes())

	fs := newTestFS(bytes.NewReader(raw.Bytes()))
	fs.sb.DirectoryTableStart = 0

	node := &Inode{DirFileSize: uint64(body.Len() + 3), DirBlockIndex: 0, DirBlockOffset: 0}
	entries, err := fs.readDirEntries(node)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "r01t5.aud", entries[0].Name)
	require.True(t, entries[0].Type.IsFile())
	require.Equal(t, "sub", entries[1].Name)
	require.True(t, entries[1].Type.IsDir())
}
