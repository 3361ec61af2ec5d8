// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bwnet

import "encoding/binary"

// checksum XORs successive little-endian u32 words of b into an
// accumulator starting at 0. A trailing partial word (len(b)%4 != 0) is
// silently ignored rather than zero-extended.
//
// This is a quirk of the reference implementation, not a bug: encoding
// only ever appends the checksum over a region that is expected to
// already be 4-byte aligned, and interoperability with the reference
// peer requires reproducing the truncation exactly rather than fixing
// it.
func checksum(b []byte) uint32 {
	var sum uint32
	for len(b) >= 4 {
		sum ^= binary.LittleEndian.Uint32(b)
		b = b[4:]
	}
	return sum
}
