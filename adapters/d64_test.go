package adapters

import (
	"testing"

	"github.com/diskforge/diskforge/model"
)

func TestD64TotalSizeMatchesClassic683SectorImage(t *testing.T) {
	a := d64Adapter{tracks: 35, formatID: "d64-35"}
	if got, want := a.totalSectors(), 683; got != want {
		t.Errorf("totalSectors() = %d; want %d", got, want)
	}
	if got, want := a.totalSize(), 683*d64SectorSize; got != want {
		t.Errorf("totalSize() = %d; want %d", got, want)
	}
}

func TestD64WithErrorsAddsOneByteTrailerPerSector(t *testing.T) {
	plain := d64Adapter{tracks: 35, formatID: "d64-35"}
	withErr := d64Adapter{tracks: 35, withErrors: true, formatID: "d64-35-err"}
	if got, want := withErr.totalSize(), plain.totalSize()+683; got != want {
		t.Errorf("totalSize() with errors = %d; want %d", got, want)
	}
}

func TestD64OpenRejectsWrongSize(t *testing.T) {
	a := d64Adapter{tracks: 35, formatID: "d64-35"}
	if _, err := a.Open(make([]byte, 100), false); err == nil {
		t.Error("expected an error for a short image")
	}
}

func TestD64ReadTrackAppliesErrorTable(t *testing.T) {
	a := d64Adapter{tracks: 35, withErrors: true, formatID: "d64-35-err"}
	data := make([]byte, a.totalSize())
	// Mark the second sector of track 1 (sectorTableOffset(1)==0, so
	// index 1) with error code 9 (data checksum error).
	errOff := a.dataSize() + 1
	data[errOff] = 9

	d, err := a.Open(data, false)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := a.ReadTrack(d, 0, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(tr.Sectors) != 21 {
		t.Fatalf("got %d sectors on track 1; want 21 (zone 1)", len(tr.Sectors))
	}
	if tr.Sectors[1].Status != model.StatusDataChecksum {
		t.Errorf("sector 1 status = %v; want StatusDataChecksum", tr.Sectors[1].Status)
	}
	if tr.Sectors[1].CRCOK {
		t.Error("sector 1 CRCOK should be false when an error code is present")
	}
	if tr.Sectors[0].Status != model.StatusOK {
		t.Errorf("sector 0 status = %v; want StatusOK", tr.Sectors[0].Status)
	}
}

func TestD64SectorsPerTrackVariesByZone(t *testing.T) {
	a := d64Adapter{tracks: 35, formatID: "d64-35"}
	data := make([]byte, a.totalSize())
	d, err := a.Open(data, false)
	if err != nil {
		t.Fatal(err)
	}

	// Track 18 (cylinder 17) is in zone 2: 19 sectors, not 21.
	tr, err := a.ReadTrack(d, 17, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(tr.Sectors) != 19 {
		t.Errorf("track 18 sector count = %d; want 19", len(tr.Sectors))
	}
}
