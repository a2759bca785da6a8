// Package slicefs adapts an offset+length byte range of a parent
// io.ReaderAt into a standalone vfs.File / vfs.FileSystem. It is the seam
// that turns an MBR partition entry into a byte-stream the ext4 adapter
// can mount, and more generally lets any backend hand out a sub-window of
// its own backing file.
package slicefs

import (
	"io"

	"github.com/bgrewell/dts-kit/pkg/vfs"
)

// File is a bounds-checked window [start, start+length) over a parent
// io.ReaderAt. Byte 0 of the window corresponds to parent[start].
type File struct {
	parent io.ReaderAt
	start  int64
	length int64
	pos    int64
}

// New constructs a window over parent covering length bytes starting at
// start.
func New(parent io.ReaderAt, start, length int64) *File {
	return &File{parent: parent, start: start, length: length}
}

func (f *File) Size() int64 { return f.length }

func (f *File) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = f.pos + offset
	case io.SeekEnd:
		target = f.length + offset
	default:
		return 0, io.ErrUnexpectedEOF
	}
	if target < 0 || target > f.length {
		return 0, io.ErrUnexpectedEOF
	}
	f.pos = target
	return f.pos, nil
}

func (f *File) Read(p []byte) (int, error) {
	if f.pos >= f.length {
		return 0, io.EOF
	}
	n, err := f.ReadAt(p, f.pos)
	f.pos += int64(n)
	return n, err
}

// ReadAt reads within the window, translating to the parent's address
// space. Reads entirely at or past EOF return (0, io.EOF); reads that
// would cross the end are truncated to what remains.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > f.length {
		return 0, io.ErrUnexpectedEOF
	}
	if off == f.length {
		return 0, io.EOF
	}
	remaining := f.length - off
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}
	return f.parent.ReadAt(p, f.start+off)
}

func (f *File) ReadBytesAt(n int, p int64) ([]byte, error) {
	return vfs.ReadBytesAt(f, n, p)
}

func (f *File) ReadU16LEAt(p int64) (uint16, error) {
	return vfs.ReadU16LEAt(f, p)
}

// FileSystem is the degenerate filesystem view over a single window: any
// path opens the same window, read_dir is always empty, is_file is always
// true. This exists purely to adapt a byte range into a layer above it
// (e.g. the ext4 adapter) that expects a vfs.FileSystem.
type FileSystem struct {
	window *File
}

// NewFileSystem wraps a window as a degenerate single-file filesystem.
func NewFileSystem(parent io.ReaderAt, start, length int64) *FileSystem {
	return &FileSystem{window: New(parent, start, length)}
}

func (fs *FileSystem) IsFile(path string) bool { return true }
func (fs *FileSystem) IsDir(path string) bool  { return false }

func (fs *FileSystem) OpenFile(path string) (vfs.File, error) {
	return New(fs.window.parent, fs.window.start, fs.window.length), nil
}

func (fs *FileSystem) ReadDir(path string) ([]vfs.DirEntry, error) {
	return nil, nil
}

// Reader exposes the window as a plain io.ReaderAt for consumers (such as
// the ext4 adapter) that want the byte range without the vfs wrapping.
func (fs *FileSystem) Reader() io.ReaderAt { return fs.window }
