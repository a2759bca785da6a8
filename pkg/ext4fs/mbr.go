package ext4fs

import (
	"fmt"
	"io"
	"strings"

	diskfsmbr "github.com/diskfs/go-diskfs/partition/mbr"

	"github.com/bgrewell/dts-kit/pkg/vfs/slicefs"
)

// sectorSize is the classic 512-byte MBR sector size go-diskfs's
// partition/mbr package assumes.
const sectorSize = 512

// OpenPartitionByLabel reads the MBR partition table of r (a whole
// HDD image) and mounts the ext2/3/4 filesystem on the first
// partition whose superblock volume label equals want, compared
// case-insensitively.
func OpenPartitionByLabel(r io.ReaderAt, imageSize int64, want string) (*FileSystem, error) {
	storage := &readerAtStorage{r: r}
	table, err := diskfsmbr.Read(storage, sectorSize, sectorSize)
	if err != nil {
		return nil, fmt.Errorf("ext4fs: reading mbr partition table: %w", err)
	}

	for _, part := range table.Partitions {
		start := int64(part.Start) * sectorSize
		size := int64(part.Size) * sectorSize
		window := slicefs.New(r, start, size)

		fs, err := Open(window, 0, size)
		if err != nil {
			continue
		}
		if strings.EqualFold(fs.fs.Label(), want) {
			return fs, nil
		}
	}
	return nil, fmt.Errorf("ext4fs: no partition found with label %q", want)
}
