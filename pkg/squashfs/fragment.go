package squashfs

import (
	"encoding/binary"
	"fmt"
)

const fragmentEntrySize = 16

// fragmentEntry is one decoded row of the fragment table: the absolute
// byte offset and on-disk size of a shared tail-fragment block.
type fragmentEntry struct {
	Start      uint64
	Size       uint32
	Compressed bool
}

// loadFragmentTable reads the two-level fragment table: an index of
// metadata-block offsets (one per 512 entries) at FragmentTableStart,
// and the fragment entries themselves inside those metadata blocks.
func (fs *FileSystem) loadFragmentTable() error {
	if fs.sb.Fragments == 0 || fs.sb.FragmentTableStart == invalidTableStart {
		return nil
	}

	count := fs.sb.Fragments
	indexBlocks := (count + 511) / 512
	idxBytes := make([]byte, 8*indexBlocks)
	if _, err := fs.backend.ReadAt(idxBytes, int64(fs.sb.FragmentTableStart)); err != nil {
		return fmt.Errorf("squashfs: reading fragment table index: %w", err)
	}

	le := binary.LittleEndian
	entries := make([]fragmentEntry, 0, count)
	for i := uint32(0); i < indexBlocks; i++ {
		blockStart := int64(le.Uint64(idxBytes[i*8:]))
		remaining := count - i*512
		n := remaining
		if n > 512 {
			n = 512
		}

		raw, _, _, err := fs.readMetadata(blockStart, 0, int(n)*fragmentEntrySize)
		if err != nil {
			return fmt.Errorf("squashfs: reading fragment table block: %w", err)
		}
		for j := uint32(0); j < n; j++ {
			b := raw[j*fragmentEntrySize:]
			sizeField := le.Uint32(b[8:12])
			entries = append(entries, fragmentEntry{
				Start:      le.Uint64(b[0:8]),
				Size:       sizeField &^ blockSizeCompressedBit,
				Compressed: sizeField&blockSizeCompressedBit == 0,
			})
		}
	}

	fs.fragments = entries
	return nil
}

// readFragment decompresses node's fragment block and slices out the
// tail bytes belonging to node.
func (fs *FileSystem) readFragment(node *Inode) ([]byte, error) {
	if int(node.Fragment) >= len(fs.fragments) {
		return nil, fmt.Errorf("squashfs: fragment index %d out of range (have %d)", node.Fragment, len(fs.fragments))
	}
	entry := fs.fragments[node.Fragment]

	raw := make([]byte, entry.Size)
	if _, err := fs.backend.ReadAt(raw, int64(entry.Start)); err != nil {
		return nil, fmt.Errorf("squashfs: reading fragment block: %w", err)
	}

	data := raw
	if entry.Compressed {
		var err error
		data, err = fs.decompress(raw, int(fs.sb.BlockSize))
		if err != nil {
			return nil, fmt.Errorf("squashfs: decompressing fragment block: %w", err)
		}
	}

	tailLen := int(node.FileSize % uint64(fs.sb.BlockSize))
	if tailLen == 0 {
		tailLen = len(data) - int(node.FragmentOffset)
	}
	start := int(node.FragmentOffset)
	end := start + tailLen
	if end > len(data) {
		end = len(data)
	}
	if start > end {
		start = end
	}
	return data[start:end], nil
}
