// Package typedetect runs the extension-then-magic detection cascade
// used to classify a single path's content.
package typedetect

import (
	"path/filepath"
	"strings"

	"github.com/bgrewell/dts-kit/pkg/dtserr"
	"github.com/bgrewell/dts-kit/pkg/hdr"
	"github.com/bgrewell/dts-kit/pkg/vfs"
)

// Kind identifies the recognized content type of a path.
type Kind int

const (
	KindUnknown Kind = iota
	KindAud
	KindAue
	KindHdr
	KindSnd
	KindISO
	KindSquashFS
	KindHDDImage
	KindPartitionImage
)

func (k Kind) String() string {
	switch k {
	case KindAud:
		return "AUD"
	case KindAue:
		return "AUE"
	case KindHdr:
		return "HDR"
	case KindSnd:
		return "SND"
	case KindISO:
		return "ISO"
	case KindSquashFS:
		return "SquashFS"
	case KindHDDImage:
		return "HDD image"
	case KindPartitionImage:
		return "ext2/3/4 partition image"
	default:
		return "unknown"
	}
}

// Detect classifies path, first by extension and then, if the
// extension is unrecognized, by reading f's header bytes and testing
// magics in a fixed order. f's position is restored by every probe it
// participates in.
func Detect(path string, f vfs.File) (Kind, error) {
	if k, ok := fromExtension(path); ok {
		return k, nil
	}
	k, err := fromContent(f)
	if err != nil {
		return KindUnknown, err
	}
	if k != KindUnknown {
		return k, nil
	}
	return KindUnknown, dtserr.UnknownFileType(path)
}

func fromExtension(path string) (Kind, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "aud":
		return KindAud, true
	case "aue":
		return KindAue, true
	case "hdr":
		return KindHdr, true
	case "snd":
		return KindSnd, true
	case "iso":
		return KindISO, true
	default:
		return KindUnknown, false
	}
}

func fromContent(f vfs.File) (Kind, error) {
	if isHdr(f) {
		return KindHdr, nil
	}
	if isISO(f) {
		return KindISO, nil
	}
	if isSquashFS(f) {
		return KindSquashFS, nil
	}
	if isHDDImage(f) {
		return KindHDDImage, nil
	}
	if isPartitionImage(f) {
		return KindPartitionImage, nil
	}
	return KindUnknown, nil
}

func isHdr(f vfs.File) bool {
	b, err := f.ReadBytesAt(9, 0)
	if err != nil {
		return false
	}
	return hdr.HasMagic(b)
}

func isISO(f vfs.File) bool {
	b, err := f.ReadBytesAt(5, 0x8001)
	if err != nil {
		return false
	}
	return string(b) == "CD001"
}

func isSquashFS(f vfs.File) bool {
	b, err := f.ReadBytesAt(4, 0)
	if err != nil {
		return false
	}
	return string(b) == "hsqs"
}

func isHDDImage(f vfs.File) bool {
	b, err := f.ReadBytesAt(2, 510)
	if err != nil {
		return false
	}
	return b[0] == 0x55 && b[1] == 0xAA
}

func isPartitionImage(f vfs.File) bool {
	b, err := f.ReadBytesAt(2, 1080)
	if err != nil {
		return false
	}
	return b[0] == 0x53 && b[1] == 0xEF
}
