// Package dtserr collects the sentinel error kinds shared across every
// codec and filesystem backend in the repo. Callers wrap these with
// fmt.Errorf's %w rather than building a typed-error hierarchy.
package dtserr

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Callers compare with errors.Is; wrapped errors carry
// the offending path/bytes/line via fmt.Errorf("...: %w", ...).
var (
	// ErrStructuralMagicMismatch reports an unexpected magic/signature.
	ErrStructuralMagicMismatch = errors.New("structural magic mismatch")

	// ErrUnexpectedSize reports a file length outside the allowed set.
	ErrUnexpectedSize = errors.New("unexpected size")

	// ErrUnknownFileType reports that every detection branch declined.
	ErrUnknownFileType = errors.New("unknown file type")

	// ErrNotADiscISO reports an ISO9660 volume lacking the disc tree.
	ErrNotADiscISO = errors.New("not a disc iso")

	// ErrParse reports a malformed trailers manifest line.
	ErrParse = errors.New("parse error")

	// ErrPathLookup reports a path not found inside a filesystem.
	ErrPathLookup = errors.New("path not found")

	// ErrNotFile reports a type mismatch: directory opened as a file.
	ErrNotFile = errors.New("not a file")

	// ErrNotDir reports a type mismatch: file opened as a directory.
	ErrNotDir = errors.New("not a directory")

	// ErrUnknownOpticalBackupFormat reports an unrecognized SND byte-75
	// enum value.
	ErrUnknownOpticalBackupFormat = errors.New("unknown optical backup format")

	// ErrBCDOutOfRange reports an invalid BCD nibble.
	ErrBCDOutOfRange = errors.New("bcd value out of range")

	// ErrUnsupportedCompressor reports a SquashFS compressor id with no
	// decoder: lzo, or any id outside the known set.
	ErrUnsupportedCompressor = errors.New("unsupported compressor")
)

// MagicMismatch wraps ErrStructuralMagicMismatch with the offending file
// and the bytes actually observed.
func MagicMismatch(path string, want, got []byte) error {
	return fmt.Errorf("%s: expected magic % x, got % x: %w", path, want, got, ErrStructuralMagicMismatch)
}

// UnexpectedSize wraps ErrUnexpectedSize with the offending file and size.
func UnexpectedSize(path string, want, got int) error {
	return fmt.Errorf("%s: expected size %d, got %d: %w", path, want, got, ErrUnexpectedSize)
}

// UnknownFileType wraps ErrUnknownFileType with the offending path.
func UnknownFileType(path string) error {
	return fmt.Errorf("%s: %w", path, ErrUnknownFileType)
}

// NotADiscISO wraps ErrNotADiscISO with the offending path.
func NotADiscISO(path string) error {
	return fmt.Errorf("%s: %w", path, ErrNotADiscISO)
}

// ParseLine wraps ErrParse with the offending file, 1-based line number,
// and the raw line text.
func ParseLine(path string, lineNo int, line string) error {
	return fmt.Errorf("%s:%d: %q: %w", path, lineNo, line, ErrParse)
}

// PathLookup wraps ErrPathLookup with the full input path.
func PathLookup(path string) error {
	return fmt.Errorf("%s: %w", path, ErrPathLookup)
}

// NotFile wraps ErrNotFile with the offending path.
func NotFile(path string) error {
	return fmt.Errorf("%s: %w", path, ErrNotFile)
}

// NotDir wraps ErrNotDir with the offending path.
func NotDir(path string) error {
	return fmt.Errorf("%s: %w", path, ErrNotDir)
}

// UnknownOpticalBackupFormat wraps ErrUnknownOpticalBackupFormat with the
// offending byte value.
func UnknownOpticalBackupFormat(b byte) error {
	return fmt.Errorf("byte 0x%02X: %w", b, ErrUnknownOpticalBackupFormat)
}

// BCDOutOfRange wraps ErrBCDOutOfRange with the offending byte.
func BCDOutOfRange(b byte) error {
	return fmt.Errorf("0x%02X: %w", b, ErrBCDOutOfRange)
}

// UnsupportedCompressor wraps ErrUnsupportedCompressor with the
// compressor id.
func UnsupportedCompressor(id uint16) error {
	return fmt.Errorf("compressor id %d: %w", id, ErrUnsupportedCompressor)
}
