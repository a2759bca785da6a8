package orchestrate

import (
	"fmt"
	"sort"

	"github.com/bgrewell/dts-kit/pkg/disctree"
	"github.com/bgrewell/dts-kit/pkg/dtserr"
	"github.com/bgrewell/dts-kit/pkg/ext4fs"
	"github.com/bgrewell/dts-kit/pkg/hdr"
	"github.com/bgrewell/dts-kit/pkg/isofs"
	"github.com/bgrewell/dts-kit/pkg/logging"
	"github.com/bgrewell/dts-kit/pkg/snd"
	"github.com/bgrewell/dts-kit/pkg/squashfs"
	"github.com/bgrewell/dts-kit/pkg/trailers"
	"github.com/bgrewell/dts-kit/pkg/typedetect"
	"github.com/bgrewell/dts-kit/pkg/vfs"
	"github.com/bgrewell/dts-kit/pkg/vfs/hostfs"
)

// contentsLabel is the ext2/3/4 volume label the HDD-image recursion
// looks for.
const contentsLabel = "/contents"

// Info walks each host path, recognizing disc trees and individual
// assets, and returns the accumulated JSON report. log receives a
// debug line per path visited; a nil logger discards them.
func Info(paths []string, log *logging.Logger) (*Report, error) {
	if log == nil {
		log = logging.DefaultLogger()
	}
	report := &Report{}
	host := hostfs.New(".")

	for _, p := range paths {
		log.Debug("visiting path", "path", p)
		if err := visitHostPath(host, p, report, log); err != nil {
			return nil, fmt.Errorf("orchestrate: %s: %w", p, err)
		}
	}
	return report, nil
}

func visitHostPath(fsys vfs.FileSystem, path string, report *Report, log *logging.Logger) error {
	switch {
	case fsys.IsDir(path):
		return visitDirectory(fsys, path, report, log)
	case fsys.IsFile(path):
		return visitFile(fsys, path, report, log)
	default:
		return dtserr.PathLookup(path)
	}
}

// visitDirectory lists path, recognizes a disc tree if one is present,
// and decodes it. A directory that isn't a disc tree is merely listed;
// it contributes no JSON entries.
func visitDirectory(fsys vfs.FileSystem, path string, report *Report, log *logging.Logger) error {
	tree, err := disctree.Recognize(fsys, path)
	if err != nil {
		return err
	}
	if tree == nil {
		entries, err := fsys.ReadDir(path)
		if err != nil {
			return err
		}
		log.Info("directory", "path", path, "entries", len(entries))
		return nil
	}
	return visitDiscTree(fsys, tree, report, log)
}

func visitDiscTree(fsys vfs.FileSystem, tree *disctree.Tree, report *Report, log *logging.Logger) error {
	if len(tree.Reels) > 0 {
		if err := decodeFeature(fsys, tree.Reels, report, log); err != nil {
			return err
		}
	}
	if tree.Trailers != nil {
		if err := decodeTrailers(fsys, tree.Trailers, report, log); err != nil {
			return err
		}
	}
	return nil
}

// decodeFeature reads each reel's SND header, trusting that they share
// a common feature ID and title, and emits one FeatureEntry listing
// every reel number found.
func decodeFeature(fsys vfs.FileSystem, reels []vfs.DirEntry, report *Report, log *logging.Logger) error {
	sort.Slice(reels, func(i, j int) bool { return reels[i].LowerBase() < reels[j].LowerBase() })

	var id uint16
	var title string
	var numbers []uint8
	for i, r := range reels {
		meta, err := readSNDHeader(fsys, r.Path)
		if err != nil {
			log.Error(err, "failed to decode reel header", "path", r.Path)
			continue
		}
		if i == 0 {
			id, title = meta.ID, meta.Title
		}
		numbers = append(numbers, meta.Reel)
	}
	if len(numbers) == 0 {
		return nil
	}
	report.addFeature(id, title, numbers)
	return nil
}

func decodeTrailers(fsys vfs.FileSystem, assets *disctree.TrailerAssets, report *Report, log *logging.Logger) error {
	f, err := fsys.OpenFile(assets.Metadata.Path)
	if err != nil {
		return err
	}
	manifest, err := trailers.Decode(f, assets.Metadata.Path)
	if err != nil {
		return err
	}
	for _, e := range manifest.Entries {
		report.addTrailer(e.ID, e.Title)
	}
	return nil
}

// visitFile classifies path and dispatches to the matching decoder or,
// for container formats (ISO, SquashFS, HDD image, ext partition
// image), recurses into the mounted filesystem's root.
func visitFile(fsys vfs.FileSystem, path string, report *Report, log *logging.Logger) error {
	f, err := fsys.OpenFile(path)
	if err != nil {
		return err
	}

	kind, err := typedetect.Detect(path, f)
	if err != nil {
		log.Error(err, "type detection failed", "path", path)
		return nil
	}

	switch kind {
	case typedetect.KindHdr:
		buf, err := f.ReadBytesAt(hdr.Len, 0)
		if err != nil {
			return err
		}
		m, err := hdr.Decode(buf, path)
		if err != nil {
			return err
		}
		if m.IsTrailer() {
			report.addTrailer(m.ID, m.Title)
		} else {
			report.addFeature(m.ID, m.Title, []uint8{m.Reel})
		}

	case typedetect.KindSnd, typedetect.KindAud, typedetect.KindAue:
		m, err := readSNDHeader(fsys, path)
		if err != nil {
			return err
		}
		if m.Kind == snd.KindTrailer {
			report.addTrailer(m.ID, m.Title)
		} else {
			report.addFeature(m.ID, m.Title, []uint8{m.Reel})
		}

	case typedetect.KindISO:
		iso, err := isofs.Open(f)
		if err != nil {
			return err
		}
		return visitDirectory(iso, "/", report, log)

	case typedetect.KindSquashFS:
		sq, err := squashfs.Open(f, f.Size())
		if err != nil {
			return err
		}
		return probeSquashFSRoot(sq, report, log)

	case typedetect.KindHDDImage:
		part, err := ext4fs.OpenPartitionByLabel(f, f.Size(), contentsLabel)
		if err != nil {
			return err
		}
		return visitDirectory(part, "/", report, log)

	case typedetect.KindPartitionImage:
		part, err := ext4fs.Open(f, 0, f.Size())
		if err != nil {
			return err
		}
		return visitDirectory(part, "/", report, log)

	default:
		return dtserr.UnknownFileType(path)
	}
	return nil
}

// probeSquashFSRoot enumerates only the root directory of a SquashFS
// image and type-detects each entry. It never recurses further, unlike
// the ISO and ext4 cases.
func probeSquashFSRoot(sq vfs.FileSystem, report *Report, log *logging.Logger) error {
	entries, err := sq.ReadDir("/")
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := visitFile(sq, e.Path, report, log); err != nil {
			log.Error(err, "failed to probe squashfs entry", "path", e.Path)
		}
	}
	return nil
}

func readSNDHeader(fsys vfs.FileSystem, path string) (*snd.Metadata, error) {
	f, err := fsys.OpenFile(path)
	if err != nil {
		return nil, err
	}
	buf, err := f.ReadBytesAt(snd.HeaderLenWithEncryption, 0)
	if err != nil {
		return nil, err
	}
	return snd.Decode(buf)
}
