// SPDX-License-Identifier: EPL-2.0

package ogg

// Ogg uses the non-reflected CRC-32 with polynomial 0x04c11db7, zero
// initial value and no final xor; hash/crc32 only offers the reflected
// variant.
var crcTable = func() (t [256]uint32) {
	for i := range t {
		r := uint32(i) << 24
		for range 8 {
			if r&0x80000000 != 0 {
				r = r<<1 ^ 0x04c11db7
			} else {
				r <<= 1
			}
		}
		t[i] = r
	}
	return t
}()

// checksum computes the page CRC with the checksum field taken as zero.
func checksum(page []byte) uint32 {
	var crc uint32
	for i, b := range page {
		if i >= 22 && i < 26 {
			b = 0
		}
		crc = crc<<8 ^ crcTable[byte(crc>>24)^b]
	}
	return crc
}
