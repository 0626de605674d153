// Package adapters holds the concrete registry.Adapter implementations:
// one per supported container format, registered into registry.Default
// at process startup via blank-import side effects, mirroring the
// pattern zellyn/diskii's main.go used for lib/dos3 and lib/supermon.
package adapters

import (
	"github.com/diskforge/diskforge/disk"
	"github.com/diskforge/diskforge/model"
	"github.com/diskforge/diskforge/registry"
	"github.com/diskforge/diskforge/types"
)

// rawGeometry describes one flavor of raw, headerless (or fixed-header)
// sector image: plain track*sector*size data with no container framing
// at all. Grounded on damieng-magneato's dsk.go/edsk.go and
// aiSzzPL-retroio's amstrad/dsk geometry-table idiom: rather than one Go
// type per disk format, a single adapter type reads its shape from a
// table row.
type rawGeometry struct {
	Name        string
	Description string
	Extensions  []string
	FormatID    string

	// SizesBytes lists the exact total byte counts this geometry
	// produces; an exact match is strong (HIGH) probe evidence.
	SizesBytes []int

	Cylinders           int
	Heads               int
	SectorsPerTrack     int
	SectorSize          int
	HeaderLen           int
	ErrorBytesPerSector int

	// Interleave maps logical sector index to physical sector index for
	// one track, or nil for identity order.
	Interleave []int
}

func (g rawGeometry) totalSize() int {
	return g.HeaderLen + g.Cylinders*g.Heads*g.SectorsPerTrack*(g.SectorSize+g.ErrorBytesPerSector)
}

// rawAdapter is a registry.Adapter backed by a single rawGeometry. Many
// instances are registered, one per supported raw-sector family.
type rawAdapter struct {
	geometry rawGeometry
}

func (a rawAdapter) Capability() registry.Capability {
	return registry.Capability{
		Name:           a.geometry.Name,
		Description:    a.geometry.Description,
		Extensions:     a.geometry.Extensions,
		FormatID:       a.geometry.FormatID,
		CanRead:        true,
		CanWrite:       true,
		CanCreate:      true,
		SupportsErrors: a.geometry.ErrorBytesPerSector > 0,
	}
}

func (a rawAdapter) Probe(data []byte, filename string) registry.Score {
	var sc registry.Score
	n := len(data)
	exact := false
	for _, sz := range a.geometry.SizesBytes {
		if n == sz {
			exact = true
			break
		}
	}
	sc.AddMatch("size", registry.HIGH, exact, "exact size match against declared geometry")

	extMatch := false
	for _, ext := range a.geometry.Extensions {
		if hasExt(filename, ext) {
			extMatch = true
			break
		}
	}
	sc.AddMatch("extension", registry.LOW, extMatch, "filename extension")
	return sc
}

func hasExt(filename, ext string) bool {
	if len(filename) < len(ext) {
		return false
	}
	suffix := filename[len(filename)-len(ext):]
	return equalFold(suffix, ext)
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func (a rawAdapter) Open(data []byte, debug bool) (*model.DiskImage, error) {
	want := a.geometry.totalSize()
	if len(data) < want {
		return nil, registry.Errorf(registry.Format, "%s: need at least %d bytes, got %d", a.geometry.Name, want, len(data))
	}

	d := &model.DiskImage{
		Geometry: model.Geometry{
			Cylinders:  a.geometry.Cylinders,
			Heads:      a.geometry.Heads,
			Sectors:    a.geometry.SectorsPerTrack,
			SectorSize: a.geometry.SectorSize,
		},
		FormatID:       a.geometry.FormatID,
		DisplayName:    a.geometry.Description,
		SourceFileSize: len(data),
		DetectedFormat: a.geometry.FormatID,
	}
	body := data[a.geometry.HeaderLen:]
	d.SetAdapterState(body)
	return d, nil
}

func (a rawAdapter) ReadTrack(d *model.DiskImage, cylinder, head int, progress registry.Progress) (*model.Track, error) {
	body, ok := d.AdapterState().([]byte)
	if !ok {
		return nil, registry.Errorf(registry.InvalidArg, "disk image was not opened by %s", a.geometry.Name)
	}
	g := a.geometry
	if cylinder < 0 || cylinder >= g.Cylinders || head < 0 || head >= g.Heads {
		return nil, registry.Errorf(registry.Range, "cylinder/head out of range")
	}

	recordSize := g.SectorSize + g.ErrorBytesPerSector
	trackIndex := cylinder*g.Heads + head
	trackOffset := trackIndex * g.SectorsPerTrack * recordSize
	if trackOffset+g.SectorsPerTrack*recordSize > len(body) {
		return nil, registry.Errorf(registry.Range, "track %d/%d extends past end of image", cylinder, head)
	}

	t := &model.Track{Cylinder: cylinder, Head: head, Encoding: model.EncodingRaw}
	for logical := 0; logical < g.SectorsPerTrack; logical++ {
		physical := logical
		if g.Interleave != nil {
			physical = g.Interleave[logical]
		}
		off := trackOffset + physical*recordSize
		sec := model.Sector{
			Cylinder: cylinder,
			Head:     head,
			SectorID: logical,
			Payload:  append([]byte(nil), body[off:off+g.SectorSize]...),
			Status:   model.StatusOK,
			CRCOK:    true,
		}
		if sc, ok := model.SizeCodeForLen(g.SectorSize); ok {
			sec.SizeCode = sc
		}
		if g.ErrorBytesPerSector > 0 {
			sec.ControllerStatus = append([]byte(nil), body[off+g.SectorSize:off+recordSize]...)
		}
		t.Sectors = append(t.Sectors, sec)
	}
	return t, nil
}

func (a rawAdapter) WriteTrack(d *model.DiskImage, t *model.Track) error {
	body, ok := d.AdapterState().([]byte)
	if !ok {
		return registry.Errorf(registry.InvalidArg, "disk image was not opened by %s", a.geometry.Name)
	}
	g := a.geometry
	recordSize := g.SectorSize + g.ErrorBytesPerSector
	trackIndex := t.Cylinder*g.Heads + t.Head
	trackOffset := trackIndex * g.SectorsPerTrack * recordSize

	for logical, sec := range t.Sectors {
		if logical >= g.SectorsPerTrack {
			break
		}
		physical := logical
		if g.Interleave != nil {
			physical = g.Interleave[logical]
		}
		off := trackOffset + physical*recordSize
		if off+g.SectorSize > len(body) {
			return registry.Errorf(registry.Range, "sector write out of bounds")
		}
		n := copy(body[off:off+g.SectorSize], sec.Payload)
		for ; n < g.SectorSize; n++ {
			body[off+n] = 0
		}
	}
	return nil
}

func (a rawAdapter) Geometry(d *model.DiskImage) (model.Geometry, error) {
	return d.Geometry, nil
}

func (a rawAdapter) Close(d *model.DiskImage) error {
	d.SetAdapterState(nil)
	return nil
}

// NewBlank allocates a zeroed disk image of this adapter's fixed
// geometry, ready for WriteTrack. The requested geom is informational
// only: raw sector formats have no header describing their own shape,
// so the adapter's own table row is authoritative.
func (a rawAdapter) NewBlank(geom model.Geometry) (*model.DiskImage, error) {
	g := a.geometry
	body := make([]byte, g.Cylinders*g.Heads*g.SectorsPerTrack*(g.SectorSize+g.ErrorBytesPerSector))
	d := &model.DiskImage{
		Geometry: model.Geometry{
			Cylinders:  g.Cylinders,
			Heads:      g.Heads,
			Sectors:    g.SectorsPerTrack,
			SectorSize: g.SectorSize,
		},
		FormatID:    g.FormatID,
		DisplayName: g.Description,
	}
	d.SetAdapterState(body)
	return d, nil
}

// Encode serializes the disk image back to bytes, prepending HeaderLen
// zero bytes for geometries (none currently) that carry a fixed header.
func (a rawAdapter) Encode(d *model.DiskImage) ([]byte, error) {
	body, ok := d.AdapterState().([]byte)
	if !ok {
		return nil, registry.Errorf(registry.InvalidArg, "disk image was not opened/created by %s", a.geometry.Name)
	}
	if a.geometry.HeaderLen == 0 {
		return body, nil
	}
	out := make([]byte, a.geometry.HeaderLen+len(body))
	copy(out[a.geometry.HeaderLen:], body)
	return out, nil
}

// dos33Interleave and prodosInterleave reuse the teacher's DOS
// 3.3/ProDOS sector-skew tables unchanged: the raw-sector adapter
// variants for Apple DOS order and ProDOS order images read a track in
// logical order by consulting the same logical-to-physical maps
// disk.go already carries for the filesystem packages.
var dos33Interleave = disk.LogicalToPhysicalByName[types.DiskOrderDO]
var prodosInterleave = disk.LogicalToPhysicalByName[types.DiskOrderPO]
