// encoding_test.go
package encoding

import (
	"encoding/binary"
	"io"
	"strings"
	"testing"
)

// --- UnmarshalInt32LSBMSB & UnmarshalUint32LSBMSB Tests ---

// TestUnmarshalInt32LSBMSB_Positive tests a valid 32-bit integer decoding.
func TestUnmarshalInt32LSBMSB_Positive(t *testing.T) {
	var buf [8]byte
	value := int32(12345678)
	// Create 8 bytes where both representations encode the same value.
	binary.LittleEndian.PutUint32(buf[0:4], uint32(value))
	binary.BigEndian.PutUint32(buf[4:8], uint32(value))

	result, err := UnmarshalInt32LSBMSB(buf[:])
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result != value {
		t.Errorf("Expected %d, got %d", value, result)
	}
}

// TestUnmarshalInt32LSBMSB_Negative tests error conditions for UnmarshalInt32LSBMSB.
func TestUnmarshalInt32LSBMSB_Negative(t *testing.T) {
	// Test with insufficient data.
	data := []byte{0, 1, 2, 3, 4, 5, 6} // Only 7 bytes.
	_, err := UnmarshalInt32LSBMSB(data)
	if err != io.ErrUnexpectedEOF {
		t.Errorf("Expected error %v for insufficient data, got %v", io.ErrUnexpectedEOF, err)
	}

	// Test with mismatched little- and big-endian representations.
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(100))
	binary.BigEndian.PutUint32(buf[4:8], uint32(101))
	_, err = UnmarshalInt32LSBMSB(buf[:])
	if err == nil {
		t.Errorf("Expected error for mismatched values, got nil")
	}
}

// TestUnmarshalUint32LSBMSB_Positive tests the unsigned version.
func TestUnmarshalUint32LSBMSB_Positive(t *testing.T) {
	var buf [8]byte
	value := uint32(98765432)
	binary.LittleEndian.PutUint32(buf[0:4], value)
	binary.BigEndian.PutUint32(buf[4:8], value)

	result, err := UnmarshalUint32LSBMSB(buf[:])
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result != value {
		t.Errorf("Expected %d, got %d", value, result)
	}
}

// TestUnmarshalUint32LSBMSB_Negative verifies error conditions.
func TestUnmarshalUint32LSBMSB_Negative(t *testing.T) {
	// Insufficient data.
	data := []byte{0, 1, 2, 3, 4, 5, 6}
	_, err := UnmarshalUint32LSBMSB(data)
	if err != io.ErrUnexpectedEOF {
		t.Errorf("Expected error %v for insufficient data, got %v", io.ErrUnexpectedEOF, err)
	}

	// Mismatched values.
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(200))
	binary.BigEndian.PutUint32(buf[4:8], uint32(201))
	_, err = UnmarshalUint32LSBMSB(buf[:])
	if err == nil {
		t.Errorf("Expected error for mismatched values, got nil")
	}
}

// --- DecodeDirectoryTime Tests ---

// TestDecodeDirectoryTime_Positive tests decoding of a valid directory time.
func TestDecodeDirectoryTime_Positive(t *testing.T) {
	// Create valid data:
	// Year: 2020 → 2020-1900 = 120; Month: 5; Day: 15; Hour: 12; Minute: 34; Second: 56; Offset: 0.
	data := []byte{120, 5, 15, 12, 34, 56, 0}
	result, err := DecodeDirectoryTime(data)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Validate components.
	if result.Year() != 2020 || result.Month() != 5 || result.Day() != 15 ||
		result.Hour() != 12 || result.Minute() != 34 || result.Second() != 56 {
		t.Errorf("Decoded time mismatch: got %v", result)
	}
	// Check the time zone offset is 0.
	_, offsetSeconds := result.Zone()
	if offsetSeconds != 0 {
		t.Errorf("Expected GMT offset 0 seconds, got %d seconds", offsetSeconds)
	}
}

// TestDecodeDirectoryTime_Negative tests various invalid inputs.
func TestDecodeDirectoryTime_Negative(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		errMsg string
	}{
		{"Insufficient length", []byte{120, 5, 15, 12, 34, 56}, "invalid data length"},
		{"Invalid month", []byte{120, 0, 15, 12, 34, 56, 0}, "invalid month"},
		{"Invalid day", []byte{120, 5, 0, 12, 34, 56, 0}, "invalid day"},
		{"Invalid hour", []byte{120, 5, 15, 24, 34, 56, 0}, "invalid hour"},
		{"Invalid minute", []byte{120, 5, 15, 12, 60, 56, 0}, "invalid minute"},
		{"Invalid second", []byte{120, 5, 15, 12, 34, 60, 0}, "invalid second"},
		// For offset: we want an int8 value out of the acceptable range (-48 to 52).
		// To produce -49, we can store 207 (since 207-256 = -49).
		{"Invalid GMT offset", []byte{120, 5, 15, 12, 34, 56, 207}, "invalid GMT offset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDirectoryTime(tt.data)
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("For %s, expected error containing %q; got %v", tt.name, tt.errMsg, err)
			}
		})
	}
}
