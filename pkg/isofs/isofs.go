// Package isofs implements a read-only vfs.FileSystem backend over an
// ECMA-119 (ISO9660) Primary Volume Descriptor and directory tree.
// Rock Ridge, Joliet, El Torito, and UDF extensions are out of scope:
// only plain directory records and regular files are navigated.
package isofs

import (
	"io"
	"strings"

	"github.com/bgrewell/dts-kit/pkg/dtserr"
	"github.com/bgrewell/dts-kit/pkg/vfs"
	"github.com/bgrewell/dts-kit/pkg/vfs/slicefs"
)

const (
	sectorSize        = 2048
	systemAreaSectors = 16
	pvdTypePrimary    = 0x01
)

// FileSystem is a read-only ECMA-119 volume opened over a backing
// io.ReaderAt (a whole disc image, or a slicefs window over one).
type FileSystem struct {
	r                io.ReaderAt
	volumeIdentifier string
	rootExtentLBA    uint32
	rootExtentLen    uint32
}

// Open parses the Primary Volume Descriptor at sector 16 and returns a
// FileSystem ready to resolve paths against its root directory.
func Open(r io.ReaderAt) (*FileSystem, error) {
	buf := make([]byte, sectorSize)
	if _, err := r.ReadAt(buf, systemAreaSectors*sectorSize); err != nil {
		return nil, err
	}

	if string(buf[1:6]) != "CD001" {
		return nil, dtserr.MagicMismatch("primary volume descriptor", []byte("CD001"), buf[1:6])
	}
	if buf[0] != pvdTypePrimary {
		return nil, dtserr.NotADiscISO("primary volume descriptor")
	}
	if buf[6] != 0x01 {
		return nil, dtserr.NotADiscISO("primary volume descriptor version")
	}

	volumeIdentifier := strings.TrimRight(string(buf[40:72]), " ")

	root, err := unmarshalDirectoryRecord(buf[156:190])
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, dtserr.NotADiscISO("primary volume descriptor root directory record")
	}

	return &FileSystem{
		r:                r,
		volumeIdentifier: volumeIdentifier,
		rootExtentLBA:    root.locationOfExtent,
		rootExtentLen:    root.dataLength,
	}, nil
}

// VolumeIdentifier returns the PVD's trimmed Volume Identifier field.
func (fs *FileSystem) VolumeIdentifier() string { return fs.volumeIdentifier }

// components splits path into non-empty, slash-separated parts.
func components(path string) []string {
	parts := strings.Split(path, "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// resolve walks path from the root directory, returning the directory
// record for the final component.
func (fs *FileSystem) resolve(path string) (*directoryRecord, error) {
	lba, length := fs.rootExtentLBA, fs.rootExtentLen
	parts := components(path)

	record := &directoryRecord{locationOfExtent: lba, dataLength: length, flags: fileFlagDirectory}
	for _, part := range parts {
		children, err := fs.readExtentRecords(record.locationOfExtent, record.dataLength)
		if err != nil {
			return nil, err
		}
		var next *directoryRecord
		for _, c := range children {
			if c.isSelf() || c.isParent() {
				continue
			}
			if cleanName(c.fileIdentifier) == part {
				next = c
				break
			}
		}
		if next == nil {
			return nil, dtserr.PathLookup(path)
		}
		record = next
	}
	return record, nil
}

// readExtentRecords reads lengthBytes bytes of a directory's extent
// starting at lba and decodes its directory records.
func (fs *FileSystem) readExtentRecords(lba, lengthBytes uint32) ([]*directoryRecord, error) {
	buf := make([]byte, lengthBytes)
	if _, err := fs.r.ReadAt(buf, int64(lba)*sectorSize); err != nil {
		return nil, err
	}

	var records []*directoryRecord
	offset := 0
	for offset < len(buf) {
		remaining := buf[offset:]
		if remaining[0] == 0 {
			// Padding to the next sector boundary within a multi-sector
			// extent; resume scanning there.
			next := (offset/sectorSize + 1) * sectorSize
			if next >= len(buf) {
				break
			}
			offset = next
			continue
		}
		rec, err := unmarshalDirectoryRecord(remaining)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			break
		}
		records = append(records, rec)
		offset += int(rec.length)
	}
	return records, nil
}

// IsFile reports whether path resolves to a non-directory record.
func (fs *FileSystem) IsFile(path string) bool {
	rec, err := fs.resolve(path)
	return err == nil && !rec.isDirectory()
}

// IsDir reports whether path resolves to a directory record.
func (fs *FileSystem) IsDir(path string) bool {
	rec, err := fs.resolve(path)
	return err == nil && rec.isDirectory()
}

// OpenFile resolves path and returns a window over its extent.
func (fs *FileSystem) OpenFile(path string) (vfs.File, error) {
	rec, err := fs.resolve(path)
	if err != nil {
		return nil, err
	}
	if rec.isDirectory() {
		return nil, dtserr.NotFile(path)
	}
	return slicefs.New(fs.r, int64(rec.locationOfExtent)*sectorSize, int64(rec.dataLength)), nil
}

// ReadDir resolves path and lists its immediate children, skipping the
// "." and ".." entries.
func (fs *FileSystem) ReadDir(path string) ([]vfs.DirEntry, error) {
	rec, err := fs.resolve(path)
	if err != nil {
		return nil, err
	}
	if !rec.isDirectory() {
		return nil, dtserr.NotDir(path)
	}

	children, err := fs.readExtentRecords(rec.locationOfExtent, rec.dataLength)
	if err != nil {
		return nil, err
	}

	out := make([]vfs.DirEntry, 0, len(children))
	for _, c := range children {
		if c.isSelf() || c.isParent() {
			continue
		}
		kind := vfs.KindFile
		if c.isDirectory() {
			kind = vfs.KindDirectory
		}
		name := cleanName(c.fileIdentifier)
		childPath := strings.TrimSuffix(path, "/") + "/" + name
		out = append(out, vfs.DirEntry{Path: strings.TrimPrefix(childPath, "/"), Kind: kind})
	}
	return out, nil
}
