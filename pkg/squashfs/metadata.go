package squashfs

import (
	"container/list"
	"encoding/binary"
	"fmt"
)

// metadataBlock is one decompressed metadata block, keyed in the cache
// by the on-disk byte offset of its 2-byte header. next is the on-disk
// offset immediately following this block's payload, handed back so
// callers can keep reading without re-deriving it.
type metadataBlock struct {
	offset int64
	data   []byte
	next   int64
}

// metadataCache is an at-most-capacity LRU over decompressed metadata
// blocks. It is the sole memory-management concern in this backend.
type metadataCache struct {
	capacity int
	ll       *list.List
	index    map[int64]*list.Element
}

func newMetadataCache(capacity int) *metadataCache {
	if capacity <= 0 {
		capacity = defaultCacheSize
	}
	return &metadataCache{
		capacity: capacity,
		ll:       list.New(),
		index:    make(map[int64]*list.Element),
	}
}

func (c *metadataCache) get(offset int64) (*metadataBlock, bool) {
	el, ok := c.index[offset]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*metadataBlock), true
}

func (c *metadataCache) put(mb *metadataBlock) {
	if el, ok := c.index[mb.offset]; ok {
		el.Value = mb
		c.ll.MoveToFront(el)
		return
	}
	el := c.ll.PushFront(mb)
	c.index[mb.offset] = el
	if c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			delete(c.index, oldest.Value.(*metadataBlock).offset)
		}
	}
}

// readMetadataBlockAt reads and, if necessary, decompresses the
// metadata block whose 2-byte header starts at the given absolute
// offset, consulting/populating the LRU first.
func (fs *FileSystem) readMetadataBlockAt(offset int64) (*metadataBlock, error) {
	if mb, ok := fs.cache.get(offset); ok {
		return mb, nil
	}

	hdr := make([]byte, 2)
	if _, err := fs.backend.ReadAt(hdr, offset); err != nil {
		return nil, fmt.Errorf("squashfs: reading metadata block header at %d: %w", offset, err)
	}
	h := binary.LittleEndian.Uint16(hdr)
	size := int64(h &^ 0x8000)
	// Bit 15 clear means compressed, the inverse of the natural
	// reading of the flag.
	compressed := h&0x8000 == 0

	raw := make([]byte, size)
	if size > 0 {
		if _, err := fs.backend.ReadAt(raw, offset+2); err != nil {
			return nil, fmt.Errorf("squashfs: reading metadata block payload at %d: %w", offset, err)
		}
	}

	data := raw
	if compressed {
		var err error
		data, err = fs.decompress(raw, metadataBlockSize)
		if err != nil {
			return nil, fmt.Errorf("squashfs: decompressing metadata block at %d: %w", offset, err)
		}
	}

	mb := &metadataBlock{offset: offset, data: data, next: offset + 2 + size}
	fs.cache.put(mb)
	return mb, nil
}

// readMetadata returns exactly length bytes of logical payload starting
// at (block, offset), transparently spanning as many underlying
// metadata blocks as needed. It also returns the (block, offset) cursor
// immediately following the read, so the caller can continue reading
// contiguously without re-deriving it.
func (fs *FileSystem) readMetadata(block int64, offset uint16, length int) ([]byte, int64, uint16, error) {
	out := make([]byte, 0, length)
	curBlock := block
	curOffset := int(offset)

	for len(out) < length {
		mb, err := fs.readMetadataBlockAt(curBlock)
		if err != nil {
			return nil, 0, 0, err
		}
		if curOffset > len(mb.data) {
			return nil, 0, 0, fmt.Errorf("squashfs: offset %d beyond %d-byte block at %d", curOffset, len(mb.data), curBlock)
		}

		avail := mb.data[curOffset:]
		need := length - len(out)
		if len(avail) >= need {
			out = append(out, avail[:need]...)
			curOffset += need
			if curOffset == len(mb.data) {
				curBlock, curOffset = mb.next, 0
			}
		} else {
			out = append(out, avail...)
			curBlock, curOffset = mb.next, 0
		}
	}

	return out, curBlock, uint16(curOffset), nil
}
