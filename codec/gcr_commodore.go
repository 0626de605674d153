package codec

// gcrCommodoreEncode is the standard Commodore 1541 4-bit-nibble to 5-bit
// GCR code table (spec.md §4.3: "Fixed 16-entry lookup table"). Every
// code avoids more than two consecutive zero bits, which is what lets the
// 1541's read head stay synchronized without a separate clock track.
var gcrCommodoreEncode = [16]byte{
	0x0a, 0x0b, 0x12, 0x13, // 0-3
	0x0e, 0x0f, 0x16, 0x17, // 4-7
	0x09, 0x19, 0x1a, 0x1b, // 8-B
	0x0d, 0x1d, 0x1e, 0x15, // C-F
}

// gcrCommodoreDecode is the inverse of gcrCommodoreEncode: index by 5-bit
// code, -1 for codes that never appear in valid GCR data ("a decode that
// hits any invalid code counts as a GCR error", spec.md §4.3).
var gcrCommodoreDecode [32]int8

func init() {
	for i := range gcrCommodoreDecode {
		gcrCommodoreDecode[i] = -1
	}
	for nibble, code := range gcrCommodoreEncode {
		gcrCommodoreDecode[code] = int8(nibble)
	}
}

// Encode4to5 packs 4 data bytes (8 nibbles) into 5 GCR-encoded bytes (40
// bits), most-significant nibble of byte 0 first, exactly as spec.md
// §4.3 describes.
func Encode4to5(in [4]byte) [5]byte {
	nibbles := [8]byte{
		in[0] >> 4, in[0] & 0x0f,
		in[1] >> 4, in[1] & 0x0f,
		in[2] >> 4, in[2] & 0x0f,
		in[3] >> 4, in[3] & 0x0f,
	}

	var bits uint64
	for _, n := range nibbles {
		bits = (bits << 5) | uint64(gcrCommodoreEncode[n])
	}
	// bits now holds 40 significant bits, MSB-first.
	var out [5]byte
	for i := 0; i < 5; i++ {
		shift := uint(8 * (4 - i))
		out[i] = byte(bits >> shift)
	}
	return out
}

// Decode5to4 unpacks 5 GCR-encoded bytes back into 4 data bytes. ok is
// false if any of the 8 embedded 5-bit codes is not a valid GCR code; in
// that case the returned nibble for that position is 0 and decoding
// continues rather than aborting, so the caller can decide how partial
// the corruption is (spec.md: "a decode that hits any invalid code counts
// as a GCR error; the sector-level error accumulates").
func Decode5to4(in [5]byte) (out [4]byte, ok bool) {
	var bits uint64
	for _, b := range in {
		bits = (bits << 8) | uint64(b)
	}
	// bits holds 40 bits; extract eight 5-bit groups MSB-first.
	var nibbles [8]byte
	ok = true
	for i := 0; i < 8; i++ {
		shift := uint(5 * (7 - i))
		code := byte((bits >> shift) & 0x1f)
		n := gcrCommodoreDecode[code]
		if n < 0 {
			ok = false
			continue
		}
		nibbles[i] = byte(n)
	}
	out[0] = nibbles[0]<<4 | nibbles[1]
	out[1] = nibbles[2]<<4 | nibbles[3]
	out[2] = nibbles[4]<<4 | nibbles[5]
	out[3] = nibbles[6]<<4 | nibbles[7]
	return out, ok
}
