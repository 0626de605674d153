package adapters

import (
	"bytes"

	"github.com/diskforge/diskforge/model"
	"github.com/diskforge/diskforge/registry"
	"github.com/diskforge/diskforge/woz"
)

// wozAdapter reads Apple II WOZ disk images: a self-synchronizing
// bitstream-per-track container (TMAP quarter-track index + TRKS
// fixed-size bit buffers), nibblized and scanned for 16-sector address
// and data fields via package woz. Grounded directly on woz/woz.go,
// which this adapter wraps rather than reimplements.
type wozAdapter struct{}

func init() {
	registry.Default.Register(wozAdapter{})
}

func (wozAdapter) Capability() registry.Capability {
	return registry.Capability{
		Name:        "woz",
		Description: "Apple II WOZ disk image (self-sync bitstream)",
		Extensions:  []string{".woz"},
		FormatID:    "woz1",
		CanRead:     true,
	}
}

func (wozAdapter) Probe(data []byte, filename string) registry.Score {
	var sc registry.Score
	sc.AddMatch("magic", registry.MAGIC, len(data) >= 12 && string(data[0:8]) == "WOZ1\xff\n\r\n", "WOZ1 header")
	return sc
}

func (wozAdapter) Open(data []byte, debug bool) (*model.DiskImage, error) {
	w, err := woz.Decode(bytes.NewReader(data), debug)
	if err != nil {
		return nil, registry.Wrap(registry.Format, err, "decoding WOZ container")
	}

	cylinders := 0
	for c := 0; c*4 < len(w.TMap); c++ {
		if _, ok := w.TrackForCylinder(c); ok {
			cylinders = c + 1
		}
	}

	d := &model.DiskImage{
		Geometry: model.Geometry{
			Cylinders:  cylinders,
			Heads:      1,
			Sectors:    16,
			SectorSize: 256,
		},
		FormatID:       "woz1",
		DisplayName:    "Apple II WOZ disk image",
		SourceFileSize: len(data),
		DetectedFormat: "woz1",
	}
	d.SetAdapterState(w)
	return d, nil
}

func (wozAdapter) ReadTrack(d *model.DiskImage, cylinder, head int, progress registry.Progress) (*model.Track, error) {
	if head != 0 {
		return nil, registry.Errorf(registry.Range, "WOZ 5.25\" images have a single head")
	}
	w, ok := d.AdapterState().(*woz.Woz)
	if !ok {
		return nil, registry.Errorf(registry.InvalidArg, "disk image was not opened by the woz adapter")
	}
	trk, ok := w.TrackForCylinder(cylinder)
	if !ok {
		return nil, registry.Errorf(registry.NotFound, "no track data for cylinder %d", cylinder)
	}

	nibbles := trk.Nibblize()
	sectors := woz.DecodeSectors(cylinder, nibbles)
	sectorPtrs := make([]model.Sector, len(sectors))
	for i, s := range sectors {
		sectorPtrs[i] = *s
	}

	return &model.Track{
		Cylinder: cylinder,
		Head:     head,
		Encoding: model.EncodingGCRApple,
		Sectors:  sectorPtrs,
		RawBytes: nibbles,
	}, nil
}

func (wozAdapter) WriteTrack(d *model.DiskImage, t *model.Track) error {
	return registry.Errorf(registry.Unsupported, "woz adapter is read-only")
}

func (wozAdapter) Geometry(d *model.DiskImage) (model.Geometry, error) {
	return d.Geometry, nil
}

func (wozAdapter) Close(d *model.DiskImage) error {
	d.SetAdapterState(nil)
	return nil
}
