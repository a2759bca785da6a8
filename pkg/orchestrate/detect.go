package orchestrate

import (
	"path/filepath"
	"strings"

	"github.com/bgrewell/dts-kit/pkg/hdr"
	"github.com/bgrewell/dts-kit/pkg/typedetect"
	"github.com/bgrewell/dts-kit/pkg/vfs/hostfs"
)

// MagicProbe is one magic-byte test the detection cascade evaluated,
// reported for diagnosing a misnamed or extensionless asset.
type MagicProbe struct {
	Name    string
	Offset  int64
	Length  int
	Matched bool
}

// DetectReport is the decision `detect` prints for a single path: which
// method resolved the type, the resolved kind, and, for a magic
// resolution, every probe examined along the way.
type DetectReport struct {
	Path   string
	Method string // "extension" or "magic"
	Kind   string
	Probes []MagicProbe
}

// DetectPath runs the same cascade typedetect.Detect uses, additionally
// recording which probes were examined so the decision can be
// explained rather than just returned.
func DetectPath(path string) (*DetectReport, error) {
	host := hostfs.New(".")
	f, err := host.OpenFile(path)
	if err != nil {
		return nil, err
	}

	if ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); isExtensionKind(ext) {
		kind, err := typedetect.Detect(path, f)
		if err != nil {
			return nil, err
		}
		return &DetectReport{Path: path, Method: "extension", Kind: kind.String()}, nil
	}

	report := &DetectReport{Path: path, Method: "magic"}

	hdrBytes, _ := f.ReadBytesAt(9, 0)
	hdrMatch := hdr.HasMagic(hdrBytes)
	report.Probes = append(report.Probes, MagicProbe{Name: "hdr", Offset: 0, Length: 9, Matched: hdrMatch})
	if hdrMatch {
		report.Kind = typedetect.KindHdr.String()
		return report, nil
	}

	isoBytes, _ := f.ReadBytesAt(5, 0x8001)
	isoMatch := string(isoBytes) == "CD001"
	report.Probes = append(report.Probes, MagicProbe{Name: "iso9660", Offset: 0x8001, Length: 5, Matched: isoMatch})
	if isoMatch {
		report.Kind = typedetect.KindISO.String()
		return report, nil
	}

	sqBytes, _ := f.ReadBytesAt(4, 0)
	sqMatch := string(sqBytes) == "hsqs"
	report.Probes = append(report.Probes, MagicProbe{Name: "squashfs", Offset: 0, Length: 4, Matched: sqMatch})
	if sqMatch {
		report.Kind = typedetect.KindSquashFS.String()
		return report, nil
	}

	hddBytes, _ := f.ReadBytesAt(2, 510)
	hddMatch := len(hddBytes) == 2 && hddBytes[0] == 0x55 && hddBytes[1] == 0xAA
	report.Probes = append(report.Probes, MagicProbe{Name: "mbr", Offset: 510, Length: 2, Matched: hddMatch})
	if hddMatch {
		report.Kind = typedetect.KindHDDImage.String()
		return report, nil
	}

	partBytes, _ := f.ReadBytesAt(2, 1080)
	partMatch := len(partBytes) == 2 && partBytes[0] == 0x53 && partBytes[1] == 0xEF
	report.Probes = append(report.Probes, MagicProbe{Name: "ext2/3/4", Offset: 1080, Length: 2, Matched: partMatch})
	if partMatch {
		report.Kind = typedetect.KindPartitionImage.String()
		return report, nil
	}

	report.Kind = typedetect.KindUnknown.String()
	return report, nil
}

func isExtensionKind(ext string) bool {
	switch ext {
	case "aud", "aue", "hdr", "snd", "iso":
		return true
	default:
		return false
	}
}
