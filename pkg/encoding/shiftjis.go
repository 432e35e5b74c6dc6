// Package encoding provides text encoding utilities for motion file formats.
// Bone, morph and model names in VMD files are Shift-JIS, NUL-padded to a
// fixed width.
package encoding

import (
	"bytes"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// ShiftJISToUTF8 converts Shift-JIS encoded bytes to a UTF-8 string.
// Returns the input unchanged if conversion fails.
func ShiftJISToUTF8(data []byte) string {
	result, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// UTF8ToShiftJIS converts a UTF-8 string to Shift-JIS encoded bytes.
// Returns the raw bytes if the string has no Shift-JIS representation.
func UTF8ToShiftJIS(s string) []byte {
	result, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), []byte(s))
	if err != nil {
		return []byte(s)
	}
	return result
}

// FixedStringToUTF8 decodes a fixed-size Shift-JIS field.
// Everything from the first NUL on is padding. Some exporters leave garbage
// after the terminator, so it is never decoded.
func FixedStringToUTF8(data []byte) string {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	return ShiftJISToUTF8(data)
}

// UTF8ToFixedString encodes s as Shift-JIS into a NUL-padded field of the
// given size. Names longer than the field are truncated on a character
// boundary so the result always decodes.
func UTF8ToFixedString(s string, size int) []byte {
	result := make([]byte, size)
	encoded := UTF8ToShiftJIS(s)
	if len(encoded) > size {
		encoded = encoded[:truncateShiftJIS(encoded, size)]
	}
	copy(result, encoded)
	return result
}

// truncateShiftJIS returns the longest prefix length <= limit that does not
// split a double-byte character.
func truncateShiftJIS(data []byte, limit int) int {
	n := 0
	for n < len(data) {
		width := 1
		if isLeadByte(data[n]) {
			width = 2
		}
		if n+width > limit {
			break
		}
		n += width
	}
	return n
}

func isLeadByte(b byte) bool {
	return (b >= 0x81 && b <= 0x9F) || (b >= 0xE0 && b <= 0xFC)
}
