package squashfs

import (
	"fmt"
	"io"

	"github.com/bgrewell/dts-kit/pkg/vfs"
)

// readDataBlock returns the decompressed bytes of data block idx of
// node: one of the fixed-size blocks described by node.BlockSizes, or
// (for the final partial block of a file with a fragment) the tail
// stored in the fragment table.
func (fs *FileSystem) readDataBlock(node *Inode, idx int) ([]byte, error) {
	if idx < len(node.BlockSizes) {
		var blockOffset int64
		for i := 0; i < idx; i++ {
			blockOffset += int64(node.BlockSizes[i] &^ blockSizeCompressedBit)
		}
		entry := node.BlockSizes[idx]
		size := int64(entry &^ blockSizeCompressedBit)
		if size == 0 {
			// Sparse (hole) block.
			return make([]byte, fs.sb.BlockSize), nil
		}
		compressed := entry&blockSizeCompressedBit == 0

		raw := make([]byte, size)
		if _, err := fs.backend.ReadAt(raw, int64(node.BlocksStart)+blockOffset); err != nil {
			return nil, fmt.Errorf("squashfs: reading data block %d: %w", idx, err)
		}
		if !compressed {
			return raw, nil
		}
		return fs.decompress(raw, int(fs.sb.BlockSize))
	}

	if node.HasFragment() {
		return fs.readFragment(node)
	}
	return nil, fmt.Errorf("squashfs: data block index %d out of range", idx)
}

// fileReader presents the logical byte stream of a regular-file inode
// as a vfs.File: data blocks in sequence, with the tail fragment (if
// any) appended transparently by readDataBlock.
type fileReader struct {
	fs   *FileSystem
	node *Inode
	pos  int64
}

func (f *fileReader) Size() int64 { return int64(f.node.FileSize) }

func (f *fileReader) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = f.pos + offset
	case io.SeekEnd:
		target = int64(f.node.FileSize) + offset
	default:
		return 0, fmt.Errorf("squashfs: unsupported seek whence %d", whence)
	}
	if target < 0 || target > int64(f.node.FileSize) {
		return 0, io.ErrUnexpectedEOF
	}
	f.pos = target
	return f.pos, nil
}

func (f *fileReader) Read(p []byte) (int, error) {
	if f.pos >= int64(f.node.FileSize) {
		return 0, io.EOF
	}
	n, err := f.ReadAt(p, f.pos)
	f.pos += int64(n)
	return n, err
}

// ReadAt reads within [0, FileSize), translating each requested byte
// range into the data block (or fragment tail) that contains it and
// decompressing on demand.
func (f *fileReader) ReadAt(p []byte, off int64) (int, error) {
	total := int64(f.node.FileSize)
	if off < 0 || off > total {
		return 0, io.ErrUnexpectedEOF
	}
	if off == total {
		return 0, io.EOF
	}

	blockSize := int64(f.fs.sb.BlockSize)
	n := 0
	for n < len(p) && off+int64(n) < total {
		pos := off + int64(n)
		blockIdx := int(pos / blockSize)
		blockOff := pos % blockSize

		block, err := f.fs.readDataBlock(f.node, blockIdx)
		if err != nil {
			return n, err
		}
		if blockOff >= int64(len(block)) {
			break
		}
		n += copy(p[n:], block[blockOff:])
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (f *fileReader) ReadBytesAt(n int, p int64) ([]byte, error) {
	return vfs.ReadBytesAt(f, n, p)
}

func (f *fileReader) ReadU16LEAt(p int64) (uint16, error) {
	return vfs.ReadU16LEAt(f, p)
}
