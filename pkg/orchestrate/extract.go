package orchestrate

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bgrewell/dts-kit/pkg/logging"
	"github.com/bgrewell/dts-kit/pkg/snd"
	"github.com/bgrewell/dts-kit/pkg/trailers"
	"github.com/bgrewell/dts-kit/pkg/vfs/hostfs"
)

// trailerFrameRate is the number of payload bytes per frame, used to
// turn a byte count into an "end" frame count for the manifest.
const trailerFrameRate = 3675

// asset is one indexed SND file from the input directory: its on-disk
// path and decoded header.
type asset struct {
	Path string
	Meta *snd.Metadata
}

// FeatureSelector names a feature by title or by numeric id; exactly
// one field should be set.
type FeatureSelector struct {
	Name string
	ID   *uint16
}

// TrailerSelector names a set of trailers by title or by numeric id;
// exactly one field should be set. Output order follows the order
// given here.
type TrailerSelector struct {
	Names []string
	IDs   []uint16
}

// ExtractOptions configures Extract.
type ExtractOptions struct {
	InputDir  string
	OutputDir string
	Feature   *FeatureSelector
	Trailers  *TrailerSelector
}

// Extract indexes InputDir's SND assets by decoded header and copies
// the selected feature reels or synthesizes the selected trailer set
// into OutputDir.
func Extract(opts ExtractOptions, log *logging.Logger) error {
	if log == nil {
		log = logging.DefaultLogger()
	}
	host := hostfs.New(".")

	assets, err := buildAssetIndex(host, opts.InputDir)
	if err != nil {
		return fmt.Errorf("orchestrate: indexing %s: %w", opts.InputDir, err)
	}
	log.Debug("indexed assets", "count", len(assets))

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return fmt.Errorf("orchestrate: creating %s: %w", opts.OutputDir, err)
	}

	if opts.Feature != nil {
		if err := extractFeature(host, assets, opts.Feature, opts.OutputDir, log); err != nil {
			return err
		}
	}
	if opts.Trailers != nil {
		if err := extractTrailers(host, assets, opts.Trailers, opts.OutputDir, log); err != nil {
			return err
		}
	}
	return nil
}

// buildAssetIndex decodes the SND header of every .aud/.aue/.snd file
// directly under dir. The index is a flat list in directory order: it
// is not keyed by stem and sibling HDR files are not read or paired,
// since snd.Decode already carries title/id/reel.
func buildAssetIndex(host *hostfs.FileSystem, dir string) ([]asset, error) {
	entries, err := host.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var out []asset
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Base()))
		if ext != ".aud" && ext != ".aue" && ext != ".snd" {
			continue
		}
		f, err := host.OpenFile(e.Path)
		if err != nil {
			return nil, err
		}
		buf, err := f.ReadBytesAt(snd.HeaderLenWithEncryption, 0)
		if err != nil {
			return nil, fmt.Errorf("orchestrate: reading %s header: %w", e.Path, err)
		}
		meta, err := snd.Decode(buf)
		if err != nil {
			return nil, fmt.Errorf("orchestrate: decoding %s: %w", e.Path, err)
		}
		out = append(out, asset{Path: e.Path, Meta: meta})
	}
	return out, nil
}

// extractFeature selects every reel sharing sel's title or id, sorts
// them by reel number, and copies each to r{reel}t5.{aud|aue} in
// outputDir.
func extractFeature(host *hostfs.FileSystem, assets []asset, sel *FeatureSelector, outputDir string, log *logging.Logger) error {
	var matches []asset
	for _, a := range assets {
		if a.Meta.Kind != snd.KindFeature {
			continue
		}
		if sel.ID != nil {
			if a.Meta.ID == *sel.ID {
				matches = append(matches, a)
			}
			continue
		}
		if strings.EqualFold(a.Meta.Title, sel.Name) {
			matches = append(matches, a)
		}
	}
	if len(matches) == 0 {
		return fmt.Errorf("orchestrate: no feature reels matched selector")
	}

	sortByReel(matches)
	for _, m := range matches {
		ext := ".aud"
		if m.Meta.EncryptionKey != nil {
			ext = ".aue"
		}
		dest := filepath.Join(outputDir, fmt.Sprintf("r%dt5%s", m.Meta.Reel, ext))
		if err := copyHostFile(host, m.Path, dest); err != nil {
			return err
		}
		log.Debug("copied feature reel", "src", m.Path, "dest", dest)
	}
	return nil
}

func sortByReel(matches []asset) {
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j-1].Meta.Reel > matches[j].Meta.Reel; j-- {
			matches[j-1], matches[j] = matches[j], matches[j-1]
		}
	}
}

// extractTrailers builds the combined r14t5.aud asset and its
// r14trlr.txt manifest from the trailers named by sel, in selector
// order.
func extractTrailers(host *hostfs.FileSystem, assets []asset, sel *TrailerSelector, outputDir string, log *logging.Logger) error {
	ordered, err := selectTrailers(assets, sel)
	if err != nil {
		return err
	}

	header, err := snd.Encode(snd.GenericTrailersHeader())
	if err != nil {
		return err
	}

	var combined bytes.Buffer
	combined.Write(header)

	manifest := &trailers.Manifest{}
	cumulative := len(header)

	for _, a := range ordered {
		f, err := host.OpenFile(a.Path)
		if err != nil {
			return err
		}
		full, err := io.ReadAll(f)
		if err != nil {
			return fmt.Errorf("orchestrate: reading %s: %w", a.Path, err)
		}
		if len(full) < snd.HeaderLen {
			return fmt.Errorf("orchestrate: %s shorter than the SND header it should carry", a.Path)
		}
		payload := full[snd.HeaderLen:]

		manifest.Entries = append(manifest.Entries, trailers.Entry{
			Title:  a.Meta.Title,
			ID:     a.Meta.ID,
			Start:  0,
			End:    len(payload) / trailerFrameRate,
			Offset: cumulative,
		})
		combined.Write(payload)
		cumulative += len(payload)
	}

	if err := os.WriteFile(filepath.Join(outputDir, "r14t5.aud"), combined.Bytes(), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outputDir, "r14trlr.txt"), trailers.Encode(manifest), 0o644); err != nil {
		return err
	}
	log.Debug("synthesized trailer reel", "entries", len(manifest.Entries))
	return nil
}

// selectTrailers returns the eligible (reel 14, unencrypted) assets
// named by sel, in sel's order. A name or id with no eligible match is
// a hard error: a typo in a trailer selector should not silently
// produce a shorter reel than requested.
func selectTrailers(assets []asset, sel *TrailerSelector) ([]asset, error) {
	eligible := func(a asset) bool {
		return a.Meta.Kind == snd.KindTrailer && a.Meta.Reel == 14 && a.Meta.EncryptionKey == nil
	}

	var ordered []asset
	if len(sel.IDs) > 0 {
		for _, id := range sel.IDs {
			found := false
			for _, a := range assets {
				if eligible(a) && a.Meta.ID == id {
					ordered = append(ordered, a)
					found = true
					break
				}
			}
			if !found {
				return nil, fmt.Errorf("orchestrate: no eligible trailer with id %d", id)
			}
		}
		return ordered, nil
	}

	for _, name := range sel.Names {
		found := false
		for _, a := range assets {
			if eligible(a) && strings.EqualFold(a.Meta.Title, name) {
				ordered = append(ordered, a)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("orchestrate: no eligible trailer named %q", name)
		}
	}
	return ordered, nil
}

func copyHostFile(host *hostfs.FileSystem, src, dest string) error {
	f, err := host.OpenFile(src)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}
