// Package disctree recognizes the DTS theatrical disc directory layout
// (a sibling dts.exe file and dts directory) and enumerates the reel
// and trailer assets beneath it.
package disctree

import (
	"regexp"
	"sort"

	"github.com/bgrewell/dts-kit/pkg/vfs"
)

// reelPattern matches a per-reel audio filename, e.g. r1t5.aud. It is
// matched against the entry's lowercased basename.
var reelPattern = regexp.MustCompile(`^r[1-9][0-3]?t5\.(aud|aue)$`)

// TrailerAssets pairs the trailers manifest with its companion audio
// file. Reported only when both members are present.
type TrailerAssets struct {
	Metadata vfs.DirEntry
	Audio    vfs.DirEntry
}

// Tree is the recognized disc-tree content: the sorted reel audio
// files and, if both halves are present, the trailer pair.
type Tree struct {
	Reels    []vfs.DirEntry
	Trailers *TrailerAssets
}

// Recognize inspects dirPath's listing for the dts.exe/dts disc-tree
// marker. It returns (nil, nil) when the directory is not a disc tree.
func Recognize(fs vfs.FileSystem, dirPath string) (*Tree, error) {
	entries, err := fs.ReadDir(dirPath)
	if err != nil {
		return nil, err
	}

	exeFound := false
	dtsDirPath := ""
	for _, e := range entries {
		switch {
		case !e.IsDir() && e.Base() == "dts.exe":
			exeFound = true
		case e.IsDir() && e.Base() == "dts":
			dtsDirPath = e.Path
		}
	}
	if !exeFound || dtsDirPath == "" {
		return nil, nil
	}

	return scanDtsDir(fs, dtsDirPath)
}

// scanDtsDir walks the dts subdirectory, classifying its files into
// reel audio, trailer metadata, and trailer audio.
func scanDtsDir(fs vfs.FileSystem, dtsDirPath string) (*Tree, error) {
	entries, err := fs.ReadDir(dtsDirPath)
	if err != nil {
		return nil, err
	}

	var trailersMetadata, trailersAudio *vfs.DirEntry
	var reels []vfs.DirEntry

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		entry := e
		switch entry.LowerBase() {
		case "r14trlr.txt", "r14.txt":
			trailersMetadata = &entry
		case "r14t5.aud", "r14t5.aue":
			trailersAudio = &entry
		default:
			if reelPattern.MatchString(entry.LowerBase()) {
				reels = append(reels, entry)
			}
		}
	}

	sort.Slice(reels, func(i, j int) bool { return reels[i].LowerBase() < reels[j].LowerBase() })

	tree := &Tree{Reels: reels}
	if trailersMetadata != nil && trailersAudio != nil {
		tree.Trailers = &TrailerAssets{Metadata: *trailersMetadata, Audio: *trailersAudio}
	}
	return tree, nil
}
