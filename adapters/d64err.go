package adapters

import (
	"github.com/diskforge/diskforge/gcrtrack"
	"github.com/diskforge/diskforge/model"
	"github.com/diskforge/diskforge/registry"
)

// d64 variants differ from the generic raw-sector adapter in one way
// rawGeometry can't express: a variable number of sectors per track
// (the four 1541 speed zones), plus an optional trailing one-byte-per-
// sector error table instead of per-sector interleaved error bytes.
// Grounded on spec.md §4.3's D64 error-table description; reuses
// gcrtrack.SectorsPerTrack for the same zone table the GCR codec uses.

const (
	d64Sectors35 = 683 // 35 tracks, zoned
	d64Sectors40 = 768 // 40 tracks, same zone table extended
	d64SectorSize = 256
)

type d64Adapter struct {
	tracks     int
	withErrors bool
	formatID   string
}

func init() {
	registry.Default.Register(d64Adapter{tracks: 35, withErrors: false, formatID: "d64-35"})
	registry.Default.Register(d64Adapter{tracks: 35, withErrors: true, formatID: "d64-35-err"})
	registry.Default.Register(d64Adapter{tracks: 40, withErrors: false, formatID: "d64-40"})
	registry.Default.Register(d64Adapter{tracks: 40, withErrors: true, formatID: "d64-40-err"})
}

func (a d64Adapter) totalSectors() int {
	n := 0
	for t := 1; t <= a.tracks; t++ {
		n += gcrtrack.SectorsPerTrack(minInt(t, 35))
	}
	return n
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func (a d64Adapter) dataSize() int {
	return a.totalSectors() * d64SectorSize
}

func (a d64Adapter) totalSize() int {
	n := a.dataSize()
	if a.withErrors {
		n += a.totalSectors()
	}
	return n
}

func (a d64Adapter) Capability() registry.Capability {
	return registry.Capability{
		Name:           a.formatID,
		Description:    "Commodore 1541-family D64 disk image",
		Extensions:     []string{".d64"},
		FormatID:       a.formatID,
		CanRead:        true,
		CanWrite:       true,
		SupportsErrors: a.withErrors,
	}
}

func (a d64Adapter) Probe(data []byte, filename string) registry.Score {
	var sc registry.Score
	sc.AddMatch("size", registry.HIGH, len(data) == a.totalSize(), "exact D64 size match for this track count/error-byte variant")
	sc.AddMatch("extension", registry.LOW, hasExt(filename, ".d64"), "filename extension")
	return sc
}

type d64State struct {
	a      d64Adapter
	data   []byte
	errors []byte // one byte per sector in track-major order, nil if withErrors is false
}

func (a d64Adapter) Open(data []byte, debug bool) (*model.DiskImage, error) {
	want := a.totalSize()
	if len(data) != want {
		return nil, registry.Errorf(registry.Format, "%s: expected exactly %d bytes, got %d", a.formatID, want, len(data))
	}
	st := &d64State{a: a, data: data[:a.dataSize()]}
	if a.withErrors {
		st.errors = data[a.dataSize():]
	}

	d := &model.DiskImage{
		Geometry: model.Geometry{
			Cylinders:  a.tracks,
			Heads:      1,
			Sectors:    21, // nominal; actual per-track count varies by zone
			SectorSize: d64SectorSize,
		},
		FormatID:       a.formatID,
		DisplayName:    "Commodore 1541-family D64 disk image",
		SourceFileSize: len(data),
		DetectedFormat: a.formatID,
	}
	d.SetAdapterState(st)
	return d, nil
}

// sectorTableOffset returns the index of the first sector on a 1-based
// track within the zoned, track-major sector numbering.
func sectorTableOffset(track int) int {
	off := 0
	for t := 1; t < track; t++ {
		off += gcrtrack.SectorsPerTrack(minInt(t, 35))
	}
	return off
}

func (a d64Adapter) ReadTrack(d *model.DiskImage, cylinder, head int, progress registry.Progress) (*model.Track, error) {
	st, ok := d.AdapterState().(*d64State)
	if !ok {
		return nil, registry.Errorf(registry.InvalidArg, "disk image was not opened by %s", a.formatID)
	}
	if head != 0 {
		return nil, registry.Errorf(registry.Range, "D64 images are single-sided")
	}
	track1Based := cylinder + 1
	if track1Based < 1 || track1Based > a.tracks {
		return nil, registry.Errorf(registry.Range, "track %d out of range", track1Based)
	}
	count := gcrtrack.SectorsPerTrack(minInt(track1Based, 35))
	base := sectorTableOffset(track1Based)

	t := &model.Track{Cylinder: cylinder, Head: 0, Encoding: model.EncodingGCRCommodore}
	for s := 0; s < count; s++ {
		off := (base + s) * d64SectorSize
		if off+d64SectorSize > len(st.data) {
			break
		}
		sec := model.Sector{
			Cylinder: cylinder,
			SectorID: s,
			Payload:  append([]byte(nil), st.data[off:off+d64SectorSize]...),
			Status:   model.StatusOK,
			CRCOK:    true,
		}
		if sc, ok := model.SizeCodeForLen(d64SectorSize); ok {
			sec.SizeCode = sc
		}
		if st.errors != nil && base+s < len(st.errors) {
			sec.Status = d64ErrorCodeToStatus(st.errors[base+s])
			sec.CRCOK = sec.Status == model.StatusOK
			sec.ControllerStatus = []byte{st.errors[base+s]}
		}
		t.Sectors = append(t.Sectors, sec)
	}
	return t, nil
}

// d64ErrorCodeToStatus maps the classic 1541 GCR error-byte codes (as
// used by cbmdisk/VICE-style D64-with-errors images) onto the shared
// SectorStatus taxonomy. 1 means "read OK"; 0 (unused) is also treated
// as OK since plain D64 files without an error table never set it.
func d64ErrorCodeToStatus(code byte) model.SectorStatus {
	switch code {
	case 0, 1:
		return model.StatusOK
	case 2:
		return model.StatusHeaderNotFound
	case 3:
		return model.StatusNoSync
	case 5:
		return model.StatusDataNotFound
	case 9:
		return model.StatusDataChecksum
	case 11:
		return model.StatusHeaderChecksum
	case 20:
		return model.StatusWriteProtected
	default:
		return model.StatusExtended
	}
}

func (a d64Adapter) WriteTrack(d *model.DiskImage, t *model.Track) error {
	st, ok := d.AdapterState().(*d64State)
	if !ok {
		return registry.Errorf(registry.InvalidArg, "disk image was not opened by %s", a.formatID)
	}
	track1Based := t.Cylinder + 1
	base := sectorTableOffset(track1Based)
	for s, sec := range t.Sectors {
		off := (base + s) * d64SectorSize
		if off+d64SectorSize > len(st.data) {
			return registry.Errorf(registry.Range, "sector write out of bounds")
		}
		copy(st.data[off:off+d64SectorSize], sec.Payload)
	}
	return nil
}

func (a d64Adapter) Geometry(d *model.DiskImage) (model.Geometry, error) {
	return d.Geometry, nil
}

func (a d64Adapter) Close(d *model.DiskImage) error {
	d.SetAdapterState(nil)
	return nil
}
