package adapters

import (
	"encoding/binary"
	"testing"
)

func TestADFOpenRejectsWrongSize(t *testing.T) {
	a := adfAdapter{}
	if _, err := a.Open(make([]byte, 12345), false); err == nil {
		t.Error("expected an error for a non-ADF-sized image")
	}
}

func TestADFOpenDetectsDDGeometry(t *testing.T) {
	a := adfAdapter{}
	d, err := a.Open(make([]byte, adfDDSize), false)
	if err != nil {
		t.Fatal(err)
	}
	if d.Geometry.Sectors != adfSectorsDD {
		t.Errorf("Sectors = %d; want %d", d.Geometry.Sectors, adfSectorsDD)
	}
	if d.Geometry.Cylinders != 80 || d.Geometry.Heads != adfHeads {
		t.Errorf("Cylinders/Heads = %d/%d; want 80/%d", d.Geometry.Cylinders, d.Geometry.Heads, adfHeads)
	}
}

func TestADFReadWriteTrackRoundtrip(t *testing.T) {
	a := adfAdapter{}
	d, err := a.Open(make([]byte, adfDDSize), false)
	if err != nil {
		t.Fatal(err)
	}

	tr, err := a.ReadTrack(d, 0, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(tr.Sectors) != adfSectorsDD {
		t.Fatalf("got %d sectors; want %d", len(tr.Sectors), adfSectorsDD)
	}
	for i := range tr.Sectors {
		tr.Sectors[i].Payload = make([]byte, adfSectorSize)
		tr.Sectors[i].Payload[0] = byte(i + 1)
	}
	if err := a.WriteTrack(d, tr); err != nil {
		t.Fatal(err)
	}

	back, err := a.ReadTrack(d, 0, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i, sec := range back.Sectors {
		if sec.Payload[0] != byte(i+1) {
			t.Errorf("sector %d: Payload[0] = %d; want %d", i, sec.Payload[0], i+1)
		}
	}
}

// TestBootBlockChecksumKnownAllZero covers the simplest case: an all-zero
// boot block (ignoring the checksum word itself) checksums to all-ones
// once inverted, since the running sum of all-zero words is zero.
func TestBootBlockChecksumKnownAllZero(t *testing.T) {
	block := make([]byte, 1024)
	got := BootBlockChecksum(block)
	if got != 0xFFFFFFFF {
		t.Errorf("BootBlockChecksum(all-zero) = %#x; want 0xffffffff", got)
	}
}

// TestBootBlockChecksumIgnoresItsOwnField confirms the word at offset 4
// (where a disk's own checksum lives) never affects the computed value.
func TestBootBlockChecksumIgnoresItsOwnField(t *testing.T) {
	block := make([]byte, 1024)
	binary.BigEndian.PutUint32(block[0:4], 0x444F5301) // "DOS\x01"
	want := BootBlockChecksum(block)

	block2 := make([]byte, 1024)
	copy(block2, block)
	binary.BigEndian.PutUint32(block2[4:8], 0xDEADBEEF)
	got := BootBlockChecksum(block2)

	if got != want {
		t.Errorf("checksum changed when only the checksum field itself changed: %#x != %#x", got, want)
	}
}
