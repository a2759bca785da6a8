package isofs

import (
	"fmt"
	"strings"
	"time"

	"github.com/bgrewell/dts-kit/pkg/encoding"
)

// directoryRecordFixedLen is the length of a directory record's
// fixed-width header, before the variable-length file identifier.
const directoryRecordFixedLen = 33

// fileFlagDirectory is bit 1 of the File Flags byte.
const fileFlagDirectory = 0x02

// directoryRecord is a single ECMA-119 directory record, trimmed to
// the fields a read-only backend needs.
type directoryRecord struct {
	length           uint8
	locationOfExtent uint32
	dataLength       uint32
	recordingTime    time.Time
	flags            byte
	fileIdentifier   string
}

func (dr *directoryRecord) isDirectory() bool { return dr.flags&fileFlagDirectory != 0 }

// isSelf reports the "." self-referencing entry.
func (dr *directoryRecord) isSelf() bool { return dr.fileIdentifier == "\x00" }

// isParent reports the ".." parent-referencing entry.
func (dr *directoryRecord) isParent() bool { return dr.fileIdentifier == "\x01" }

// cleanName strips the ";version" suffix ECMA-119 appends to file
// identifiers, e.g. "DTS.EXE;1" -> "DTS.EXE".
func cleanName(identifier string) string {
	if i := strings.IndexByte(identifier, ';'); i >= 0 {
		return identifier[:i]
	}
	return identifier
}

// unmarshalDirectoryRecord decodes one directory record from data,
// which must hold at least the record's own length byte.
func unmarshalDirectoryRecord(data []byte) (*directoryRecord, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("isofs: directory record: empty buffer")
	}
	length := data[0]
	if length == 0 {
		return nil, nil
	}
	if int(length) < directoryRecordFixedLen || len(data) < int(length) {
		return nil, fmt.Errorf("isofs: directory record: short buffer: have %d, want %d", len(data), length)
	}

	loc, err := encoding.UnmarshalUint32LSBMSB(data[2:10])
	if err != nil {
		return nil, fmt.Errorf("isofs: location of extent: %w", err)
	}
	dataLen, err := encoding.UnmarshalUint32LSBMSB(data[10:18])
	if err != nil {
		return nil, fmt.Errorf("isofs: data length: %w", err)
	}
	recTime, err := encoding.DecodeDirectoryTime(data[18:25])
	if err != nil {
		return nil, fmt.Errorf("isofs: recording time: %w", err)
	}
	flags := data[25]

	idLen := int(data[32])
	if 33+idLen > int(length) {
		return nil, fmt.Errorf("isofs: directory record: file identifier overruns record")
	}
	identifier := string(data[33 : 33+idLen])

	return &directoryRecord{
		length:           length,
		locationOfExtent: loc,
		dataLength:       dataLen,
		recordingTime:    recTime,
		flags:            flags,
		fileIdentifier:   identifier,
	}, nil
}
