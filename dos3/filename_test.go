package dos3

import "testing"

func TestEncodeFilenameRoundtrip(t *testing.T) {
	name := "HELLO"
	encoded, err := EncodeFilename(name)
	if err != nil {
		t.Fatal(err)
	}
	fd := FileDesc{TrackSectorListTrack: 1, Filename: encoded}
	if got := fd.FilenameString(); got != name {
		t.Errorf("FilenameString() = %q; want %q", got, name)
	}
}

func TestEncodeFilenamePadsWithHighBitSpaces(t *testing.T) {
	encoded, err := EncodeFilename("AB")
	if err != nil {
		t.Fatal(err)
	}
	if encoded[2] != ' '+0x80 {
		t.Errorf("expected padding byte to be a high-bit space; got %#x", encoded[2])
	}
}

func TestEncodeFilenameTooLong(t *testing.T) {
	if _, err := EncodeFilename("THIS NAME IS DEFINITELY TOO LONG FOR DOS 3.3"); err == nil {
		t.Error("expected error for filename longer than 30 characters")
	}
}
