package dos3

import (
	"crypto/rand"
	"reflect"
	"testing"

	"github.com/diskforge/diskforge/types"
)

// TestVTOCMarshalRoundtrip checks a simple roundtrip of VTOC data.
func TestVTOCMarshalRoundtrip(t *testing.T) {
	buf := make([]byte, 256)
	_, _ = rand.Read(buf)
	buf1 := make([]byte, 256)
	copy(buf1, buf)
	vtoc1 := &VTOC{}
	err := vtoc1.FromSector(buf1)
	if err != nil {
		t.Fatal(err)
	}
	buf2, err := vtoc1.ToSector()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(buf, buf2) {
		t.Errorf("Buffers differ: %v != %v", buf, buf2)
	}
	vtoc2 := &VTOC{}
	err = vtoc2.FromSector(buf2)
	if err != nil {
		t.Fatal(err)
	}
	if *vtoc1 != *vtoc2 {
		t.Errorf("Structs differ: %v != %v", vtoc1, vtoc2)
	}
}

// TestCatalogSectorMarshalRoundtrip checks a simple roundtrip of CatalogSector data.
func TestCatalogSectorMarshalRoundtrip(t *testing.T) {
	buf := make([]byte, 256)
	_, _ = rand.Read(buf)
	buf1 := make([]byte, 256)
	copy(buf1, buf)
	cs1 := &CatalogSector{}
	err := cs1.FromSector(buf1)
	if err != nil {
		t.Fatal(err)
	}
	buf2, err := cs1.ToSector()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(buf, buf2) {
		t.Errorf("Buffers differ: %v != %v", buf, buf2)
	}
	cs2 := &CatalogSector{}
	err = cs2.FromSector(buf2)
	if err != nil {
		t.Fatal(err)
	}
	if *cs1 != *cs2 {
		t.Errorf("Structs differ: %v != %v", cs1, cs2)
	}
}

// TestTrackSectorListMarshalRoundtrip checks a simple roundtrip of TrackSectorList data.
func TestTrackSectorListMarshalRoundtrip(t *testing.T) {
	buf := make([]byte, 256)
	_, _ = rand.Read(buf)
	buf1 := make([]byte, 256)
	copy(buf1, buf)
	cs1 := &TrackSectorList{}
	err := cs1.FromSector(buf1)
	if err != nil {
		t.Fatal(err)
	}
	buf2, err := cs1.ToSector()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(buf, buf2) {
		t.Errorf("Buffers differ: %v != %v", buf, buf2)
	}
	cs2 := &TrackSectorList{}
	err = cs2.FromSector(buf2)
	if err != nil {
		t.Fatal(err)
	}
	if *cs1 != *cs2 {
		t.Errorf("Structs differ: %v != %v", cs1, cs2)
	}
}

// TestReadCatalog builds a disk from scratch (no binary fixture
// available) and checks that the files and deleted entries it wrote
// come back out of ReadCatalog correctly.
func TestReadCatalog(t *testing.T) {
	diskbytes := NewBlankDisk()

	files := []types.FileInfo{
		{Descriptor: types.Descriptor{Name: "HELLO", Type: types.FiletypeApplesoftBASIC, Locked: true}, Data: []byte("PRINT 1")},
		{Descriptor: types.Descriptor{Name: "NOTES", Type: types.FiletypeASCIIText}, Data: []byte("hi there")},
	}
	for _, fi := range files {
		if _, err := CreateFile(diskbytes, fi, false); err != nil {
			t.Fatalf("CreateFile(%q): %v", fi.Descriptor.Name, err)
		}
	}
	if _, err := DeleteFile(diskbytes, "NOTES"); err != nil {
		t.Fatalf("DeleteFile(NOTES): %v", err)
	}

	fds, deleted, err := ReadCatalog(diskbytes, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(fds) != 1 || fds[0].FilenameString() != "HELLO" {
		t.Errorf("want 1 undeleted file named HELLO; got %v", fds)
	}
	if len(deleted) != 1 || deleted[0].FilenameString() != "NOTES" {
		t.Errorf("want 1 deleted file named NOTES; got %v", deleted)
	}

	if errs := CheckIntegrity(diskbytes); len(errs) != 0 {
		t.Errorf("CheckIntegrity found problems on a freshly built disk: %v", errs)
	}
}
