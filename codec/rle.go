package codec

import (
	"encoding/binary"
	"fmt"
)

// MSA run-length compression operates per track-side: a run of 3 or more
// identical bytes is replaced by the marker byte 0xE5, the repeated
// byte, and a 16-bit big-endian repeat count. A literal 0xE5 byte in the
// source is escaped as a run of length 1.

const msaMarker = 0xE5

// RLEEncodeMSA compresses one track-side's worth of sector bytes using
// the Atari ST MSA scheme.
func RLEEncodeMSA(data []byte) []byte {
	var out []byte
	i := 0
	for i < len(data) {
		b := data[i]
		runLen := 1
		for i+runLen < len(data) && data[i+runLen] == b && runLen < 0xFFFF {
			runLen++
		}
		if b == msaMarker || runLen >= 3 {
			out = append(out, msaMarker, b)
			var countBuf [2]byte
			binary.BigEndian.PutUint16(countBuf[:], uint16(runLen))
			out = append(out, countBuf[:]...)
		} else {
			out = append(out, b)
			runLen = 1
		}
		i += runLen
	}
	return out
}

// RLEDecodeMSA expands MSA run-length-compressed track data back into
// its original sector bytes.
func RLEDecodeMSA(data []byte) ([]byte, error) {
	var out []byte
	i := 0
	for i < len(data) {
		b := data[i]
		if b != msaMarker {
			out = append(out, b)
			i++
			continue
		}
		if i+3 >= len(data) {
			return nil, fmt.Errorf("codec: truncated MSA RLE run at offset %d", i)
		}
		value := data[i+1]
		count := binary.BigEndian.Uint16(data[i+2 : i+4])
		for n := uint16(0); n < count; n++ {
			out = append(out, value)
		}
		i += 4
	}
	return out, nil
}
