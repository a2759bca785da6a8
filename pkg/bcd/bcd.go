// Package bcd implements the 2-nibble binary-coded-decimal codec used
// by SND offset fields, including the +0x60 bias carried on seconds
// and minutes.
package bcd

import "github.com/bgrewell/dts-kit/pkg/dtserr"

// Encode packs v (0..99) into a single BCD byte: high nibble is the tens
// digit, low nibble the ones digit. Fails outside [0, 99].
func Encode(v int) (byte, error) {
	if v < 0 || v > 99 {
		return 0, dtserr.BCDOutOfRange(byte(v))
	}
	return byte((v/10)<<4) | byte(v%10), nil
}

// Decode unpacks a BCD byte into its decimal value. Both nibbles must be
// in [0, 9].
func Decode(b byte) (int, error) {
	hi, lo := b>>4, b&0x0F
	if hi > 9 || lo > 9 {
		return 0, dtserr.BCDOutOfRange(b)
	}
	return int(hi)*10 + int(lo), nil
}

// StripBias removes the +0x60 bias some on-disk seconds/minutes bytes
// carry before BCD decoding. Bytes at or below 0x60 pass through
// unchanged.
func StripBias(b byte) byte {
	if b > 0x60 {
		return b - 0x60
	}
	return b
}

// DecodeBiased applies StripBias then Decode, the pattern SND uses for
// its seconds/minutes BCD fields.
func DecodeBiased(b byte) (int, error) {
	return Decode(StripBias(b))
}
