package squashfs

import (
	"encoding/binary"
	"fmt"
)

// InodeType is the on-disk inode type tag (1..14). Only basic-dir,
// basic-file, extended-dir and extended-file (1, 2, 8, 9) are fully
// decoded in this backend; the rest are out of scope.
type InodeType uint16

const (
	InodeBasicDirectory      InodeType = 1
	InodeBasicFile           InodeType = 2
	InodeBasicSymlink        InodeType = 3
	InodeBasicBlockDevice    InodeType = 4
	InodeBasicCharDevice     InodeType = 5
	InodeBasicFifo           InodeType = 6
	InodeBasicSocket         InodeType = 7
	InodeExtendedDirectory   InodeType = 8
	InodeExtendedFile        InodeType = 9
	InodeExtendedSymlink     InodeType = 10
	InodeExtendedBlockDevice InodeType = 11
	InodeExtendedCharDevice  InodeType = 12
	InodeExtendedFifo        InodeType = 13
	InodeExtendedSocket      InodeType = 14
)

func (t InodeType) IsDir() bool  { return t == InodeBasicDirectory || t == InodeExtendedDirectory }
func (t InodeType) IsFile() bool { return t == InodeBasicFile || t == InodeExtendedFile }

type commonHeader struct {
	Type        InodeType
	Mode        uint16
	UID         uint16
	GID         uint16
	Mtime       int32
	InodeNumber uint32
}

const commonHeaderSize = 16

func parseCommonHeader(b []byte) (commonHeader, error) {
	if len(b) < commonHeaderSize {
		return commonHeader{}, fmt.Errorf("squashfs: short inode header (%d bytes)", len(b))
	}
	le := binary.LittleEndian
	return commonHeader{
		Type:        InodeType(le.Uint16(b[0:2])),
		Mode:        le.Uint16(b[2:4]),
		UID:         le.Uint16(b[4:6]),
		GID:         le.Uint16(b[6:8]),
		Mtime:       int32(le.Uint32(b[8:12])),
		InodeNumber: le.Uint32(b[12:16]),
	}, nil
}

// Inode is the decoded common header plus whichever type-specific
// trailer applies. Directory and file fields are populated only for
// the four supported types; other types carry only the common header.
type Inode struct {
	commonHeader

	// Directory trailer (basic-dir, extended-dir).
	DirBlockIndex  uint32
	DirBlockOffset uint16
	DirFileSize    uint64
	ParentInode    uint32

	// File trailer (basic-file, extended-file).
	BlocksStart    uint64
	FileSize       uint64
	Fragment       uint32
	FragmentOffset uint32
	Sparse         uint64
	// BlockSizes holds one on-disk size|compressed-flag entry per full
	// data block, plus one for a final partial block when the file has
	// no fragment, read immediately after the inode trailer.
	BlockSizes []uint32
}

func (i *Inode) HasFragment() bool { return i.Fragment != invalidFragment }

// readInode decodes the inode referenced by ref: high 48 bits are the
// byte offset of its metadata block relative to the inode table, low 16
// bits the offset inside that block.
func (fs *FileSystem) readInode(ref uint64) (*Inode, error) {
	blockRel := int64(ref >> 16)
	inOffset := uint16(ref & 0xFFFF)
	absBlock := int64(fs.sb.InodeTableStart) + blockRel

	hdrBytes, nextBlock, nextOffset, err := fs.readMetadata(absBlock, inOffset, commonHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("squashfs: reading inode header: %w", err)
	}
	common, err := parseCommonHeader(hdrBytes)
	if err != nil {
		return nil, err
	}

	inode := &Inode{commonHeader: common}
	le := binary.LittleEndian

	switch common.Type {
	case InodeBasicDirectory:
		b, _, _, err := fs.readMetadata(nextBlock, nextOffset, 16)
		if err != nil {
			return nil, fmt.Errorf("squashfs: reading basic-dir trailer: %w", err)
		}
		inode.DirBlockIndex = le.Uint32(b[0:4])
		inode.DirFileSize = uint64(le.Uint16(b[8:10]))
		inode.DirBlockOffset = le.Uint16(b[10:12])
		inode.ParentInode = le.Uint32(b[12:16])

	case InodeExtendedDirectory:
		b, _, _, err := fs.readMetadata(nextBlock, nextOffset, 24)
		if err != nil {
			return nil, fmt.Errorf("squashfs: reading extended-dir trailer: %w", err)
		}
		inode.DirFileSize = uint64(le.Uint32(b[4:8]))
		inode.DirBlockIndex = le.Uint32(b[8:12])
		inode.ParentInode = le.Uint32(b[12:16])
		inode.DirBlockOffset = le.Uint16(b[18:20])

	case InodeBasicFile:
		b, blkBlock, blkOffset, err := fs.readMetadata(nextBlock, nextOffset, 16)
		if err != nil {
			return nil, fmt.Errorf("squashfs: reading basic-file trailer: %w", err)
		}
		inode.BlocksStart = uint64(le.Uint32(b[0:4]))
		inode.Fragment = le.Uint32(b[4:8])
		inode.FragmentOffset = le.Uint32(b[8:12])
		inode.FileSize = uint64(le.Uint32(b[12:16]))
		if err := fs.readBlockSizes(inode, blkBlock, blkOffset); err != nil {
			return nil, err
		}

	case InodeExtendedFile:
		b, blkBlock, blkOffset, err := fs.readMetadata(nextBlock, nextOffset, 40)
		if err != nil {
			return nil, fmt.Errorf("squashfs: reading extended-file trailer: %w", err)
		}
		inode.BlocksStart = le.Uint64(b[0:8])
		inode.FileSize = le.Uint64(b[8:16])
		inode.Sparse = le.Uint64(b[16:24])
		inode.Fragment = le.Uint32(b[28:32])
		inode.FragmentOffset = le.Uint32(b[32:36])
		if err := fs.readBlockSizes(inode, blkBlock, blkOffset); err != nil {
			return nil, err
		}

	default:
		// Symlinks, devices, fifos, sockets: common header only, per
		// the Non-goals (only regular files and directories are
		// navigated).
	}

	return inode, nil
}

// readBlockSizes reads the per-data-block size|compressed-flag table
// that immediately follows a basic-file or extended-file trailer.
func (fs *FileSystem) readBlockSizes(inode *Inode, block int64, offset uint16) error {
	blockSize := uint64(fs.sb.BlockSize)
	if blockSize == 0 {
		return fmt.Errorf("squashfs: zero block_size")
	}

	n := int(inode.FileSize / blockSize)
	if inode.FileSize%blockSize != 0 && !inode.HasFragment() {
		n++
	}
	if n == 0 {
		return nil
	}

	raw, _, _, err := fs.readMetadata(block, offset, n*4)
	if err != nil {
		return fmt.Errorf("squashfs: reading block size table: %w", err)
	}
	le := binary.LittleEndian
	sizes := make([]uint32, n)
	for i := 0; i < n; i++ {
		sizes[i] = le.Uint32(raw[i*4:])
	}
	inode.BlockSizes = sizes
	return nil
}
