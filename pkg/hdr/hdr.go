// Package hdr decodes the 202-byte HDR metadata sidecar that
// accompanies a feature or trailer reel.
package hdr

import (
	"strings"

	"github.com/bgrewell/dts-kit/pkg/dtserr"
)

// Len is the fixed on-disk size of an HDR file: 202 bytes, 0xCA.
const Len = 0xCA

// signature is the fixed byte sequence at offset 1..9:
// \x00\x01\x00\x04\x00DTS.
var signature = [8]byte{0x00, 0x01, 0x00, 0x04, 0x00, 'D', 'T', 'S'}

// Metadata is the decoded HDR header.
type Metadata struct {
	ID     uint16
	Reel   byte
	Title  string
	Studio string
}

// IsTrailer reports whether the HDR describes a trailer-reel assembly
// (reel 14) rather than a feature reel.
func (m *Metadata) IsTrailer() bool { return m.Reel == 14 }

// HasMagic reports whether bytes begins with the HDR self-length byte and
// signature, without requiring the full Len-byte buffer.
func HasMagic(b []byte) bool {
	if len(b) < 9 || b[0] != Len {
		return false
	}
	for i, want := range signature {
		if b[1+i] != want {
			return false
		}
	}
	return true
}

// Decode decodes an exactly-Len-byte buffer into Metadata. path is used
// only to annotate errors.
func Decode(b []byte, path string) (*Metadata, error) {
	if len(b) != Len {
		return nil, dtserr.UnexpectedSize(path, Len, len(b))
	}
	if !HasMagic(b) {
		return nil, dtserr.MagicMismatch(path, append([]byte{Len}, signature[:]...), b[:9])
	}

	title := strings.Trim(string(b[9:27]), "\x00")
	studio := strings.Trim(string(b[69:79]), "\x00")
	id := uint16(b[79]) | uint16(b[80])<<8
	reel := b[91]

	return &Metadata{ID: id, Reel: reel, Title: title, Studio: studio}, nil
}
