package squashfs

import (
	"io"
	"strings"

	"github.com/bgrewell/dts-kit/pkg/dtserr"
	"github.com/bgrewell/dts-kit/pkg/vfs"
)

// FileSystem is a read-only vfs.FileSystem backed by a SquashFS 4.0
// image on backend, typically a whole host file or a slicefs window
// over an ext4 file's extent.
type FileSystem struct {
	backend    io.ReaderAt
	sb         *Superblock
	decompress decompressor
	cache      *metadataCache
	fragments  []fragmentEntry
	root       *Inode
}

// Open parses the superblock at the start of r and prepares a
// FileSystem ready to resolve paths against its root directory. size,
// if known, bounds-checks the superblock's declared bytes_used; pass 0
// to skip that check.
func Open(r io.ReaderAt, size int64) (*FileSystem, error) {
	sb, err := readSuperblock(r, size)
	if err != nil {
		return nil, err
	}
	dec, err := newDecompressor(sb.Compression)
	if err != nil {
		return nil, err
	}

	fs := &FileSystem{
		backend:    r,
		sb:         sb,
		decompress: dec,
		cache:      newMetadataCache(defaultCacheSize),
	}
	if err := fs.loadFragmentTable(); err != nil {
		return nil, err
	}
	return fs, nil
}

// Superblock exposes the parsed volume header.
func (fs *FileSystem) Superblock() *Superblock { return fs.sb }

func (fs *FileSystem) rootInode() (*Inode, error) {
	if fs.root != nil {
		return fs.root, nil
	}
	node, err := fs.readInode(fs.sb.RootInode)
	if err != nil {
		return nil, err
	}
	fs.root = node
	return node, nil
}

func splitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
}

// resolve walks path from the root directory entry by entry, exact
// (case-sensitive) match, the way a real on-disk filesystem does.
func (fs *FileSystem) resolve(path string) (*Inode, error) {
	node, err := fs.rootInode()
	if err != nil {
		return nil, err
	}

	for _, part := range splitPath(path) {
		if !node.Type.IsDir() {
			return nil, dtserr.NotDir(path)
		}
		entries, err := fs.readDirEntries(node)
		if err != nil {
			return nil, err
		}

		var next *dirRawEntry
		for i := range entries {
			if entries[i].Name == part {
				next = &entries[i]
				break
			}
		}
		if next == nil {
			return nil, dtserr.PathLookup(path)
		}

		child, err := fs.readInode(next.InodeRef)
		if err != nil {
			return nil, err
		}
		node = child
	}

	return node, nil
}

func (fs *FileSystem) IsFile(path string) bool {
	node, err := fs.resolve(path)
	return err == nil && node.Type.IsFile()
}

func (fs *FileSystem) IsDir(path string) bool {
	node, err := fs.resolve(path)
	return err == nil && node.Type.IsDir()
}

func (fs *FileSystem) OpenFile(path string) (vfs.File, error) {
	node, err := fs.resolve(path)
	if err != nil {
		return nil, dtserr.PathLookup(path)
	}
	if !node.Type.IsFile() {
		return nil, dtserr.NotFile(path)
	}
	return &fileReader{fs: fs, node: node}, nil
}

func (fs *FileSystem) ReadDir(path string) ([]vfs.DirEntry, error) {
	node, err := fs.resolve(path)
	if err != nil {
		return nil, dtserr.PathLookup(path)
	}
	if !node.Type.IsDir() {
		return nil, dtserr.NotDir(path)
	}

	raw, err := fs.readDirEntries(node)
	if err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(path, "/")
	out := make([]vfs.DirEntry, 0, len(raw))
	for _, e := range raw {
		if e.Name == "." || e.Name == ".." {
			continue
		}
		kind := vfs.KindFile
		if e.Type.IsDir() {
			kind = vfs.KindDirectory
		}
		p := e.Name
		if base != "" {
			p = base + "/" + e.Name
		}
		out = append(out, vfs.DirEntry{Path: p, Kind: kind})
	}
	return out, nil
}
