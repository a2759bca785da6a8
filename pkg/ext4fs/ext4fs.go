// Package ext4fs adapts github.com/diskfs/go-diskfs's ext4 filesystem
// reader into a vfs.FileSystem, treating go-diskfs as an external
// collaborator rather than reimplementing the ext2/3/4 on-disk format.
package ext4fs

import (
	"errors"
	"io"
	"os"
	"strings"

	diskfsext4 "github.com/diskfs/go-diskfs/filesystem/ext4"

	"github.com/bgrewell/dts-kit/pkg/dtserr"
	"github.com/bgrewell/dts-kit/pkg/vfs"
)

// FileSystem is a vfs.FileSystem backed by a go-diskfs ext4 reader.
type FileSystem struct {
	fs *diskfsext4.FileSystem
}

// Open reads the ext2/3/4 superblock and group descriptors from a
// byte range [start, start+size) of r, the same contract slicefs
// hands back for an MBR partition entry.
func Open(r io.ReaderAt, start, size int64) (*FileSystem, error) {
	const defaultBlockSize = 4096
	storage := &readerAtStorage{r: r}
	fs, err := diskfsext4.Read(storage, size, start, defaultBlockSize)
	if err != nil {
		return nil, err
	}
	return &FileSystem{fs: fs}, nil
}

func toBackendPath(path string) string {
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}

func (f *FileSystem) IsFile(path string) bool {
	info, err := f.stat(path)
	return err == nil && !info.IsDir()
}

func (f *FileSystem) IsDir(path string) bool {
	info, err := f.stat(path)
	return err == nil && info.IsDir()
}

func (f *FileSystem) stat(path string) (os.FileInfo, error) {
	dir, name := splitDirAndName(toBackendPath(path))
	entries, err := f.fs.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Name() == name {
			return e, nil
		}
	}
	return nil, os.ErrNotExist
}

func splitDirAndName(path string) (string, string) {
	i := strings.LastIndexByte(path, '/')
	if i <= 0 {
		return "/", path[i+1:]
	}
	return path[:i], path[i+1:]
}

// OpenFile opens path for reading. path is translated to the
// backend's leading-slash convention.
func (f *FileSystem) OpenFile(path string) (vfs.File, error) {
	info, err := f.stat(path)
	if err != nil {
		return nil, dtserr.PathLookup(path)
	}
	if info.IsDir() {
		return nil, dtserr.NotFile(path)
	}
	bf, err := f.fs.OpenFile(toBackendPath(path), os.O_RDONLY)
	if err != nil {
		return nil, err
	}
	return &file{f: bf, size: info.Size()}, nil
}

// ReadDir lists path's children, filtering "." and "..".
func (f *FileSystem) ReadDir(path string) ([]vfs.DirEntry, error) {
	entries, err := f.fs.ReadDir(toBackendPath(path))
	if err != nil {
		return nil, dtserr.PathLookup(path)
	}
	out := make([]vfs.DirEntry, 0, len(entries))
	for _, e := range entries {
		if e.Name() == "." || e.Name() == ".." {
			continue
		}
		kind := vfs.KindFile
		if e.IsDir() {
			kind = vfs.KindDirectory
		}
		out = append(out, vfs.DirEntry{Path: strings.TrimPrefix(path, "/") + "/" + e.Name(), Kind: kind})
	}
	return out, nil
}

// file wraps go-diskfs's filesystem.File, which exposes io.ReadWriteSeeker
// but not io.ReaderAt, behind the vfs.File contract.
type file struct {
	f    interface {
		io.Reader
		io.Seeker
		io.Closer
	}
	size int64
	pos  int64
}

func (w *file) Size() int64 { return w.size }
func (w *file) Close() error { return w.f.Close() }

func (w *file) Read(p []byte) (int, error) {
	n, err := w.f.Read(p)
	w.pos += int64(n)
	return n, err
}

func (w *file) Seek(offset int64, whence int) (int64, error) {
	n, err := w.f.Seek(offset, whence)
	if err == nil {
		w.pos = n
	}
	return n, err
}

// ReadAt reimplements random access over the underlying io.ReadSeeker
// by seeking, reading, then restoring the position, the same
// invariant vfs.ReadBytesAt documents for every backend.
func (w *file) ReadAt(p []byte, off int64) (int, error) {
	restore := w.pos
	if _, err := w.f.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}
	n, err := io.ReadFull(w.f, p)
	if _, serr := w.f.Seek(restore, io.SeekStart); serr != nil && err == nil {
		err = serr
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}
	return n, err
}

func (w *file) ReadBytesAt(n int, p int64) ([]byte, error) {
	return vfs.ReadBytesAt(w, n, p)
}

func (w *file) ReadU16LEAt(p int64) (uint16, error) {
	return vfs.ReadU16LEAt(w, p)
}

// readerAtStorage adapts a plain io.ReaderAt window to go-diskfs's
// backend.Storage contract. Writes are rejected: every operation in
// this repo is read-only.
type readerAtStorage struct {
	r   io.ReaderAt
	pos int64
}

func (s *readerAtStorage) ReadAt(p []byte, off int64) (int, error) { return s.r.ReadAt(p, off) }

func (s *readerAtStorage) WriteAt(p []byte, off int64) (int, error) {
	return 0, errors.New("ext4fs: backing storage is read-only")
}

func (s *readerAtStorage) Read(p []byte) (int, error) {
	n, err := s.r.ReadAt(p, s.pos)
	s.pos += int64(n)
	return n, err
}

func (s *readerAtStorage) Write(p []byte) (int, error) {
	return 0, errors.New("ext4fs: backing storage is read-only")
}

func (s *readerAtStorage) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		s.pos = offset
	case io.SeekCurrent:
		s.pos += offset
	default:
		return 0, errors.New("ext4fs: unsupported seek whence")
	}
	return s.pos, nil
}

func (s *readerAtStorage) Close() error { return nil }

func (s *readerAtStorage) Sync() error { return nil }
