package squashfs

import (
	"encoding/binary"
	"fmt"
)

// dirRawEntry is one raw entry from a SquashFS directory listing: the
// name, the inode reference needed to decode it, and its basic type
// (used to tell files from directories without a second round trip).
type dirRawEntry struct {
	Name        string
	InodeRef    uint64
	InodeNumber uint32
	Type        InodeType
}

// readDirEntries walks the consecutive (header, entries) groups inside
// the metadata-block stream rooted at a directory inode.
func (fs *FileSystem) readDirEntries(node *Inode) ([]dirRawEntry, error) {
	if node.DirFileSize < 3 {
		return nil, nil
	}
	// The on-disk size includes a 3-byte trailer accounting for "."
	// and ".." that the listing itself never stores.
	length := int(node.DirFileSize) - 3
	block := int64(fs.sb.DirectoryTableStart) + int64(node.DirBlockIndex)
	offset := node.DirBlockOffset

	var entries []dirRawEntry
	bytesRead := 0
	le := binary.LittleEndian

	for bytesRead < length {
		hdrBytes, nb, no, err := fs.readMetadata(block, offset, 12)
		if err != nil {
			return nil, fmt.Errorf("squashfs: reading directory header: %w", err)
		}
		bytesRead += 12
		block, offset = nb, no

		count := le.Uint32(hdrBytes[0:4]) + 1
		startBlock := le.Uint32(hdrBytes[4:8])
		inodeOffset := le.Uint32(hdrBytes[8:12])
		if count > 256 {
			return nil, fmt.Errorf("squashfs: directory header count %d exceeds maximum", count)
		}

		for i := uint32(0); i < count; i++ {
			fixedBytes, nb2, no2, err := fs.readMetadata(block, offset, 8)
			if err != nil {
				return nil, fmt.Errorf("squashfs: reading directory entry: %w", err)
			}
			bytesRead += 8
			block, offset = nb2, no2

			entOffset := le.Uint16(fixedBytes[0:2])
			delta := int16(le.Uint16(fixedBytes[2:4]))
			entType := InodeType(le.Uint16(fixedBytes[4:6]))
			nameSize := int(le.Uint16(fixedBytes[6:8])) + 1
			if nameSize > 256 {
				return nil, fmt.Errorf("squashfs: directory entry name size %d exceeds maximum", nameSize)
			}

			nameBytes, nb3, no3, err := fs.readMetadata(block, offset, nameSize)
			if err != nil {
				return nil, fmt.Errorf("squashfs: reading directory entry name: %w", err)
			}
			bytesRead += nameSize
			block, offset = nb3, no3

			entries = append(entries, dirRawEntry{
				Name:        string(nameBytes),
				InodeRef:    uint64(startBlock)<<16 | uint64(entOffset),
				InodeNumber: uint32(int64(inodeOffset) - int64(delta)),
				Type:        entType,
			})
		}
	}

	return entries, nil
}
