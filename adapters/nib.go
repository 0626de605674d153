package adapters

import (
	"github.com/diskforge/diskforge/model"
	"github.com/diskforge/diskforge/registry"
	"github.com/diskforge/diskforge/woz"
)

const (
	nibTrackBytes = 6656
	nibTracks     = 35
	nibDiskBytes  = nibTrackBytes * nibTracks
)

// nibAdapter reads Apple II NIB disk images: a fixed 6656-bytes-per-
// track array of raw 6-and-2 GCR nibbles with 0xFF self-sync gaps, no
// bit-count/splice metadata. Unlike WOZ's bit-packed TRK buffers, NIB
// tracks are already byte-aligned nibbles, so no unpacking step is
// needed before scanning for address/data fields; this adapter reuses
// woz.DecodeSectors directly. The fixed-size-array-per-track shape is
// grounded on woz/woz.go's TRK struct, with the bit-count/splice fields
// WOZ needs for self-sync bit timing dropped since NIB has no such
// timing information to carry.
type nibAdapter struct{}

func init() {
	registry.Default.Register(nibAdapter{})
}

func (nibAdapter) Capability() registry.Capability {
	return registry.Capability{
		Name:        "nib",
		Description: "Apple II NIB raw nibble disk image",
		Extensions:  []string{".nib"},
		FormatID:    "nib",
		CanRead:     true,
	}
}

func (nibAdapter) Probe(data []byte, filename string) registry.Score {
	var sc registry.Score
	sc.AddMatch("size", registry.HIGH, len(data) == nibDiskBytes, "exact NIB size (35 tracks x 6656 bytes)")
	sc.AddMatch("extension", registry.LOW, hasExt(filename, ".nib"), "filename extension")
	return sc
}

func (nibAdapter) Open(data []byte, debug bool) (*model.DiskImage, error) {
	if len(data) != nibDiskBytes {
		return nil, registry.Errorf(registry.Format, "nib: expected exactly %d bytes, got %d", nibDiskBytes, len(data))
	}
	d := &model.DiskImage{
		Geometry: model.Geometry{
			Cylinders:  nibTracks,
			Heads:      1,
			Sectors:    16,
			SectorSize: 256,
		},
		FormatID:       "nib",
		DisplayName:    "Apple II NIB raw nibble disk image",
		SourceFileSize: len(data),
		DetectedFormat: "nib",
	}
	d.SetAdapterState(data)
	return d, nil
}

func (nibAdapter) ReadTrack(d *model.DiskImage, cylinder, head int, progress registry.Progress) (*model.Track, error) {
	body, ok := d.AdapterState().([]byte)
	if !ok {
		return nil, registry.Errorf(registry.InvalidArg, "disk image was not opened by the nib adapter")
	}
	if head != 0 {
		return nil, registry.Errorf(registry.Range, "NIB images are single-sided")
	}
	if cylinder < 0 || cylinder >= nibTracks {
		return nil, registry.Errorf(registry.Range, "track %d out of range", cylinder)
	}
	off := cylinder * nibTrackBytes
	nibbles := body[off : off+nibTrackBytes]

	sectors := woz.DecodeSectors(cylinder, nibbles)
	t := &model.Track{Cylinder: cylinder, Head: 0, Encoding: model.EncodingGCRApple, RawBytes: append([]byte(nil), nibbles...)}
	for _, s := range sectors {
		t.Sectors = append(t.Sectors, *s)
	}
	return t, nil
}

func (nibAdapter) WriteTrack(d *model.DiskImage, t *model.Track) error {
	return registry.Errorf(registry.Unsupported, "nib adapter is read-only")
}

func (nibAdapter) Geometry(d *model.DiskImage) (model.Geometry, error) {
	return d.Geometry, nil
}

func (nibAdapter) Close(d *model.DiskImage) error {
	d.SetAdapterState(nil)
	return nil
}
