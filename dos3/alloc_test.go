package dos3

import (
	"testing"

	"github.com/diskforge/diskforge/types"
)

func TestAllocateFreeSectorRoundtrip(t *testing.T) {
	v := DefaultVTOC()
	if !v.FreeSectors[5].IsFree(3) {
		t.Fatal("expected sector 5/3 to start free")
	}
	if err := v.AllocateSector(5, 3); err != nil {
		t.Fatal(err)
	}
	if v.FreeSectors[5].IsFree(3) {
		t.Error("sector 5/3 should be allocated")
	}
	if err := v.AllocateSector(5, 3); err == nil {
		t.Error("expected error re-allocating an already-used sector")
	}
	if err := v.FreeSector(5, 3); err != nil {
		t.Fatal(err)
	}
	if !v.FreeSectors[5].IsFree(3) {
		t.Error("sector 5/3 should be free again")
	}
}

func TestAllocateSectorOutOfRange(t *testing.T) {
	v := DefaultVTOC()
	if err := v.AllocateSector(5, 16); err == nil {
		t.Error("expected error for sector 16")
	}
	if err := v.AllocateSector(99, 0); err == nil {
		t.Error("expected error for track 99")
	}
}

func TestCreateAndDeleteFileAllocation(t *testing.T) {
	diskbytes := NewBlankDisk()

	before := countFreeSectors(t, diskbytes)

	fi := fileInfoFixture("BIGFILE", make([]byte, 3000))
	if _, err := CreateFile(diskbytes, fi, false); err != nil {
		t.Fatal(err)
	}

	afterCreate := countFreeSectors(t, diskbytes)
	if afterCreate >= before {
		t.Errorf("expected fewer free sectors after create: before=%d after=%d", before, afterCreate)
	}

	if existed, err := DeleteFile(diskbytes, "BIGFILE"); err != nil || !existed {
		t.Fatalf("DeleteFile(BIGFILE) = %v, %v; want true, nil", existed, err)
	}

	afterDelete := countFreeSectors(t, diskbytes)
	if afterDelete != before {
		t.Errorf("expected all sectors freed again: before=%d after=%d", before, afterDelete)
	}

	if errs := CheckIntegrity(diskbytes); len(errs) != 0 {
		t.Errorf("unexpected integrity errors: %v", errs)
	}
}

func TestCreateFileRejectsDuplicateWithoutOverwrite(t *testing.T) {
	diskbytes := NewBlankDisk()
	fi := fileInfoFixture("DUP", []byte("one"))
	if _, err := CreateFile(diskbytes, fi, false); err != nil {
		t.Fatal(err)
	}
	if _, err := CreateFile(diskbytes, fi, false); err == nil {
		t.Error("expected error creating duplicate filename without overwrite")
	}
	if _, err := CreateFile(diskbytes, fi, true); err != nil {
		t.Errorf("overwrite=true should succeed: %v", err)
	}
}

func fileInfoFixture(name string, data []byte) types.FileInfo {
	return types.FileInfo{
		Descriptor: types.Descriptor{Name: name, Type: types.FiletypeBinary},
		Data:       data,
	}
}

func countFreeSectors(t *testing.T, diskbytes []byte) int {
	t.Helper()
	v, err := readVTOC(diskbytes)
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for track := 0; track < int(v.NumTracks); track++ {
		for sector := 0; sector < int(v.NumSectors); sector++ {
			if v.FreeSectors[track].IsFree(byte(sector)) {
				count++
			}
		}
	}
	return count
}
