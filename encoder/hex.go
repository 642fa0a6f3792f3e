// Copyright (c) 2024 The pbasm Authors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package encoder

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
)

const recordSize = 16 // bytes of data per Intel HEX data record

// checksum is the two's-complement of the sum of record bytes, the
// standard Intel HEX checksum (grounded on the asm4PIC HexGenerator).
func checksum(recordBytes []byte) byte {
	var sum byte
	for _, b := range recordBytes {
		sum += b
	}
	return -sum
}

func dataRecord(addr uint16, data []byte) string {
	rec := make([]byte, 0, 4+len(data))
	rec = append(rec, byte(len(data)), byte(addr>>8), byte(addr), 0x00)
	rec = append(rec, data...)
	var sb strings.Builder
	fmt.Fprintf(&sb, ":%02X%04X%02X", len(data), addr, 0x00)
	for _, b := range data {
		fmt.Fprintf(&sb, "%02X", b)
	}
	fmt.Fprintf(&sb, "%02X\n", checksum(rec))
	return sb.String()
}

func extendedLinearAddressRecord(ela uint16) string {
	rec := []byte{0x02, 0x00, 0x00, 0x04, byte(ela >> 8), byte(ela)}
	return fmt.Sprintf(":02000004%04X%02X\n", ela, checksum(rec))
}

// Encode renders data as Intel HEX text, loaded starting at origin. It
// emits an extended linear address record whenever a chunk crosses a 64KiB
// boundary, so images larger than 64KiB (unlikely for this VM's ROM, but
// not precluded by §6) are still valid.
func Encode(origin int, data []byte) string {
	var sb strings.Builder
	currentELA := 0 // records start in the first 64KiB segment

	for off := 0; off < len(data); off += recordSize {
		end := off + recordSize
		if end > len(data) {
			end = len(data)
		}
		addr := origin + off
		ela := addr >> 16
		if ela != currentELA {
			currentELA = ela
			sb.WriteString(extendedLinearAddressRecord(uint16(ela)))
		}
		sb.WriteString(dataRecord(uint16(addr&0xFFFF), data[off:end]))
	}

	sb.WriteString(":00000001FF\n")
	return sb.String()
}

// WriteHex encodes data as an Intel HEX file at path and returns path as
// the file's identity (§6 "Returns the HEX file's identity (path or
// handle) on success"). I/O failures are wrapped with pkg/errors so the
// caller sees both the underlying os error and where it happened.
func WriteHex(path string, origin int, data []byte) (string, error) {
	text := Encode(origin, data)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", errors.Wrapf(err, "encoder: write hex file %q", path)
	}
	return path, nil
}
