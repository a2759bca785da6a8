// Package hostfs is the vfs.FileSystem backend that delegates directly to
// the host operating system.
package hostfs

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/bgrewell/dts-kit/pkg/dtserr"
	"github.com/bgrewell/dts-kit/pkg/vfs"
)

// FileSystem is a vfs.FileSystem rooted at Root on the host filesystem.
type FileSystem struct {
	Root string
}

// New returns a FileSystem rooted at root.
func New(root string) *FileSystem {
	return &FileSystem{Root: root}
}

func (fs *FileSystem) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(fs.Root, path)
}

func (fs *FileSystem) IsFile(path string) bool {
	info, err := os.Stat(fs.resolve(path))
	return err == nil && !info.IsDir()
}

func (fs *FileSystem) IsDir(path string) bool {
	info, err := os.Stat(fs.resolve(path))
	return err == nil && info.IsDir()
}

func (fs *FileSystem) OpenFile(path string) (vfs.File, error) {
	full := fs.resolve(path)
	info, err := os.Stat(full)
	if err != nil {
		return nil, dtserr.PathLookup(path)
	}
	if info.IsDir() {
		return nil, dtserr.NotFile(path)
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, err
	}
	return &File{f: f, size: info.Size()}, nil
}

func (fs *FileSystem) ReadDir(path string) ([]vfs.DirEntry, error) {
	full := fs.resolve(path)
	entries, err := os.ReadDir(full)
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
		out = append(out, vfs.DirEntry{Path: filepath.Join(path, e.Name()), Kind: kind})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LowerBase() < out[j].LowerBase() })
	return out, nil
}

// File wraps an *os.File to satisfy vfs.File.
type File struct {
	f    *os.File
	size int64
}

func (f *File) Read(p []byte) (int, error)                 { return f.f.Read(p) }
func (f *File) ReadAt(p []byte, off int64) (int, error)    { return f.f.ReadAt(p, off) }
func (f *File) Seek(offset int64, whence int) (int64, error) { return f.f.Seek(offset, whence) }
func (f *File) Size() int64                                 { return f.size }
func (f *File) Close() error                                { return f.f.Close() }

func (f *File) ReadBytesAt(n int, p int64) ([]byte, error) {
	return vfs.ReadBytesAt(f, n, p)
}

func (f *File) ReadU16LEAt(p int64) (uint16, error) {
	return vfs.ReadU16LEAt(f, p)
}

var _ io.Closer = (*File)(nil)
