// Package squashfs implements a read-only SquashFS 4.0 vfs.FileSystem
// backend: superblock parsing, a metadata-block LRU, inode and directory
// decoding, and file content reassembly across data blocks and the
// fragment table. Grounded on the diskfs squashfs-util superblock/inode
// reference and the keeword go-diskfs squashfs package's general shape
// for a read-only backend (see DESIGN.md).
package squashfs

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/bgrewell/dts-kit/pkg/dtserr"
)

const (
	magic = "hsqs"

	superblockSize = 96
	majorVersion   = 4
	minorVersion   = 0

	metadataBlockSize = 8192
	defaultCacheSize  = 100

	invalidFragment   = 0xFFFFFFFF
	invalidXattr      = 0xFFFFFFFF
	invalidTableStart = ^uint64(0)

	// blockSizeCompressedBit is SQUASHFS_COMPRESSED_BIT_BLOCK: set in a
	// data-block size entry means the block is stored uncompressed, the
	// same inverted polarity as the metadata-block header.
	blockSizeCompressedBit = 1 << 24
)

// Superblock is the parsed 96-byte SquashFS 4.0 header.
type Superblock struct {
	Inodes      uint32
	MkfsTime    int32
	BlockSize   uint32
	Fragments   uint32
	Compression uint16
	BlockLog    uint16
	Flags       uint16
	IDCount     uint16
	Major       uint16
	Minor       uint16

	RootInode uint64
	BytesUsed uint64

	IDTableStart        uint64
	XattrIDTableStart   uint64
	InodeTableStart     uint64
	DirectoryTableStart uint64
	FragmentTableStart  uint64
	ExportTableStart    uint64
}

func readSuperblock(r io.ReaderAt, size int64) (*Superblock, error) {
	buf := make([]byte, superblockSize)
	if _, err := r.ReadAt(buf, 0); err != nil {
		return nil, fmt.Errorf("squashfs: reading superblock: %w", err)
	}
	if string(buf[0:4]) != magic {
		return nil, dtserr.MagicMismatch("squashfs superblock", []byte(magic), buf[0:4])
	}

	le := binary.LittleEndian
	sb := &Superblock{
		Inodes:      le.Uint32(buf[4:8]),
		MkfsTime:    int32(le.Uint32(buf[8:12])),
		BlockSize:   le.Uint32(buf[12:16]),
		Fragments:   le.Uint32(buf[16:20]),
		Compression: le.Uint16(buf[20:22]),
		BlockLog:    le.Uint16(buf[22:24]),
		Flags:       le.Uint16(buf[24:26]),
		IDCount:     le.Uint16(buf[26:28]),
		Major:       le.Uint16(buf[28:30]),
		Minor:       le.Uint16(buf[30:32]),
		RootInode:   le.Uint64(buf[32:40]),
		BytesUsed:   le.Uint64(buf[40:48]),

		IDTableStart:        le.Uint64(buf[48:56]),
		XattrIDTableStart:   le.Uint64(buf[56:64]),
		InodeTableStart:     le.Uint64(buf[64:72]),
		DirectoryTableStart: le.Uint64(buf[72:80]),
		FragmentTableStart:  le.Uint64(buf[80:88]),
		ExportTableStart:    le.Uint64(buf[88:96]),
	}

	if sb.Major != majorVersion || sb.Minor != minorVersion {
		return nil, fmt.Errorf("squashfs: unsupported version %d.%d (want %d.%d)", sb.Major, sb.Minor, majorVersion, minorVersion)
	}
	if sb.IDCount == 0 {
		return nil, fmt.Errorf("squashfs: id_count is zero")
	}
	if size > 0 && int64(sb.BytesUsed) > size {
		return nil, fmt.Errorf("squashfs: bytes_used %d overflows image size %d", sb.BytesUsed, size)
	}

	return sb, nil
}
