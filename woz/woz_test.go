package woz_test

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/diskforge/diskforge/woz"
)

// buildWoz assembles a minimal, but structurally valid, WOZ1 image with
// one populated track so the decoder's chunk-parsing and CRC check can
// be exercised without a binary fixture.
func buildWoz(t *testing.T) []byte {
	t.Helper()

	var body bytes.Buffer // everything the CRC covers: all chunks concatenated

	writeChunk := func(id string, payload []byte) {
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))
		body.WriteString(id)
		body.Write(lenBuf[:])
		body.Write(payload)
	}

	info := make([]byte, 60)
	info[0] = 1 // version
	info[1] = 1 // DiskType525
	copy(info[5:37], []byte("diskforge test                     "))
	writeChunk("INFO", info)

	tmap := make([]byte, 160)
	for i := range tmap {
		tmap[i] = 0xFF
	}
	tmap[0] = 0 // cylinder 0 -> TRKS[0]
	writeChunk("TMAP", tmap)

	trk := make([]byte, woz.TrackLength)
	trk[0] = 0xFF // a lone sync byte; no real sector data needed for this test
	binary.LittleEndian.PutUint16(trk[6646:6648], 1)  // BytesUsed
	binary.LittleEndian.PutUint16(trk[6648:6650], 8)  // BitCount
	writeChunk("TRKS", trk)

	crc := crc32.ChecksumIEEE(body.Bytes())

	var out bytes.Buffer
	out.WriteString("WOZ1\xFF\n\r\n")
	var crcBuf [4]byte
	binary.LittleEndian.PutUint32(crcBuf[:], crc)
	out.Write(crcBuf[:])
	out.Write(body.Bytes())
	return out.Bytes()
}

func TestBasicLoad(t *testing.T) {
	data := buildWoz(t)
	wz, err := woz.Decode(bytes.NewReader(data), false)
	if err != nil {
		t.Fatal(err)
	}
	if len(wz.Unknowns) > 0 {
		t.Fatalf("want 0 unknowns; got %d", len(wz.Unknowns))
	}
	if wz.Info.DiskType != woz.DiskType525 {
		t.Errorf("DiskType = %v; want DiskType525", wz.Info.DiskType)
	}
	if wz.TMap[0] != 0 {
		t.Errorf("TMap[0] = %d; want 0", wz.TMap[0])
	}
	trk, ok := wz.TrackForCylinder(0)
	if !ok {
		t.Fatal("expected cylinder 0 to have track data")
	}
	if trk.BitCount != 8 {
		t.Errorf("BitCount = %d; want 8", trk.BitCount)
	}
}

func TestBasicLoadRejectsBadCRC(t *testing.T) {
	data := buildWoz(t)
	data[12] ^= 0xFF // corrupt one byte inside the CRC-covered region
	if _, err := woz.Decode(bytes.NewReader(data), false); err == nil {
		t.Error("expected a CRC error for corrupted data")
	}
}

func TestNibblizeRecoversSyncByte(t *testing.T) {
	trk := &woz.TRK{BitCount: 8}
	trk.BitStream[0] = 0xFF
	nibbles := trk.Nibblize()
	if len(nibbles) != 1 || nibbles[0] != 0xFF {
		t.Errorf("Nibblize() = %v; want [0xFF]", nibbles)
	}
}
