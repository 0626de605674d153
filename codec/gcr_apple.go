package codec

// gcrAppleEncode is the standard Apple II "6-and-2" GCR translate table:
// 64 six-bit values map onto 64 of the 256 possible disk bytes, chosen
// (as with the Commodore table) to avoid long runs of zero bits and to
// guarantee the top bit is always set, so the disk controller can use
// byte value alone to detect a valid disk byte. This is the same
//64-entry table documented throughout the Apple II disk-format
// literature (Beneath Apple DOS) and is not adapter-specific: both the
// adapters/nib (DSK<->NIB) adapter and G64-style cross-format tooling
// that touches Apple media share it.
var gcrAppleEncode = [64]byte{
	0x96, 0x97, 0x9a, 0x9b, 0x9d, 0x9e, 0x9f, 0xa6,
	0xa7, 0xab, 0xac, 0xad, 0xae, 0xaf, 0xb2, 0xb3,
	0xb4, 0xb5, 0xb6, 0xb7, 0xb9, 0xba, 0xbb, 0xbc,
	0xbd, 0xbe, 0xbf, 0xcb, 0xcd, 0xce, 0xcf, 0xd3,
	0xd6, 0xd7, 0xd9, 0xda, 0xdb, 0xdc, 0xdd, 0xde,
	0xdf, 0xe5, 0xe6, 0xe7, 0xe9, 0xea, 0xeb, 0xec,
	0xed, 0xee, 0xef, 0xf2, 0xf3, 0xf4, 0xf5, 0xf6,
	0xf7, 0xf9, 0xfa, 0xfb, 0xfc, 0xfd, 0xfe, 0xff,
}

// gcrAppleDecode is the inverse of gcrAppleEncode, indexed by disk byte;
// -1 for the 192 byte values that never appear in valid 6-and-2 data.
var gcrAppleDecode [256]int16

func init() {
	for i := range gcrAppleDecode {
		gcrAppleDecode[i] = -1
	}
	for six, disk := range gcrAppleEncode {
		gcrAppleDecode[disk] = int16(six)
	}
}

// EncodeApple6 translates a 6-bit value (0-63) into its on-disk GCR byte.
func EncodeApple6(v byte) byte {
	return gcrAppleEncode[v&0x3f]
}

// DecodeApple6 translates an on-disk GCR byte back to its 6-bit value.
// ok is false if diskByte is not one of the 64 valid Apple GCR codes.
func DecodeApple6(diskByte byte) (value byte, ok bool) {
	v := gcrAppleDecode[diskByte]
	if v < 0 {
		return 0, false
	}
	return byte(v), true
}
