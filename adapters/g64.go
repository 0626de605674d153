package adapters

import (
	"encoding/binary"

	"github.com/diskforge/diskforge/gcrtrack"
	"github.com/diskforge/diskforge/model"
	"github.com/diskforge/diskforge/registry"
)

const (
	g64Magic      = "GCR-1541"
	g64HeaderLen  = 12 // magic(8) + version(1) + track-count(1) + max-track-size(2)
	g64MaxTracks  = 84
)

// g64Adapter reads Commodore G64 disk images: an 8-byte "GCR-1541"
// magic plus version/track-count/max-track-size header, followed by a
// track-count-sized table of little-endian uint32 offsets into the file
// (0 meaning "no data for this half-track") and a matching table of
// per-track speed-zone bytes, each non-zero offset pointing at a
// 2-byte length prefix plus that many raw GCR bytes. Grounded on
// woz/woz.go's chunked-header-then-per-track-table parsing shape,
// adapted from WOZ's bitstream-per-track layout to G64's offset-table
// layout; track payloads are decoded with gcrtrack.DecodeTrack.
type g64Adapter struct{}

func init() {
	registry.Default.Register(g64Adapter{})
}

func (g64Adapter) Capability() registry.Capability {
	return registry.Capability{
		Name:        "g64",
		Description: "Commodore G64 raw GCR disk image",
		Extensions:  []string{".g64"},
		FormatID:    "g64",
		CanRead:     true,
		CanWrite:    true,
	}
}

func (g64Adapter) Probe(data []byte, filename string) registry.Score {
	var sc registry.Score
	magic := len(data) >= 8 && string(data[0:8]) == g64Magic
	sc.AddMatch("magic", registry.MAGIC, magic, "GCR-1541 magic")
	sc.AddMatch("extension", registry.LOW, hasExt(filename, ".g64"), "filename extension")
	return sc
}

type g64State struct {
	data       []byte
	trackCount int
	offsets    []uint32
	speedZones []byte
}

func (g64Adapter) Open(data []byte, debug bool) (*model.DiskImage, error) {
	if len(data) < g64HeaderLen || string(data[0:8]) != g64Magic {
		return nil, registry.Errorf(registry.Format, "g64: missing GCR-1541 magic")
	}
	trackCount := int(data[9])
	if trackCount <= 0 || trackCount > g64MaxTracks {
		return nil, registry.Errorf(registry.Format, "g64: implausible track count %d", trackCount)
	}

	pos := g64HeaderLen
	offsetTableLen := trackCount * 4
	if pos+offsetTableLen > len(data) {
		return nil, registry.Errorf(registry.Corrupt, "g64: truncated offset table")
	}
	offsets := make([]uint32, trackCount)
	for i := 0; i < trackCount; i++ {
		offsets[i] = binary.LittleEndian.Uint32(data[pos+i*4 : pos+i*4+4])
	}
	pos += offsetTableLen

	speedTableLen := trackCount * 4
	if pos+speedTableLen > len(data) {
		return nil, registry.Errorf(registry.Corrupt, "g64: truncated speed-zone table")
	}
	speedZones := make([]byte, trackCount)
	for i := 0; i < trackCount; i++ {
		speedZones[i] = data[pos+i*4]
	}

	d := &model.DiskImage{
		Geometry: model.Geometry{
			Cylinders:  (trackCount + 1) / 2, // G64 indexes half-tracks; whole tracks are even indices
			Heads:      1,
			Sectors:    21,
			SectorSize: 256,
		},
		FormatID:       "g64",
		DisplayName:    "Commodore G64 raw GCR disk image",
		SourceFileSize: len(data),
		DetectedFormat: "g64",
	}
	d.SetAdapterState(&g64State{data: data, trackCount: trackCount, offsets: offsets, speedZones: speedZones})
	return d, nil
}

func (g64Adapter) ReadTrack(d *model.DiskImage, cylinder, head int, progress registry.Progress) (*model.Track, error) {
	st, ok := d.AdapterState().(*g64State)
	if !ok {
		return nil, registry.Errorf(registry.InvalidArg, "disk image was not opened by the g64 adapter")
	}
	if head != 0 {
		return nil, registry.Errorf(registry.Range, "G64 images are single-sided")
	}
	halfTrack := cylinder * 2
	if halfTrack < 0 || halfTrack >= st.trackCount {
		return nil, registry.Errorf(registry.Range, "cylinder %d out of range", cylinder)
	}
	off := st.offsets[halfTrack]
	if off == 0 {
		return nil, registry.Errorf(registry.NotFound, "no data for cylinder %d", cylinder)
	}
	if int(off)+2 > len(st.data) {
		return nil, registry.Errorf(registry.Corrupt, "g64: track length prefix out of bounds")
	}
	length := int(binary.LittleEndian.Uint16(st.data[off : off+2]))
	start := int(off) + 2
	if start+length > len(st.data) {
		return nil, registry.Errorf(registry.Corrupt, "g64: track data runs past end of file")
	}
	raw := st.data[start : start+length]

	t := &model.Track{
		Cylinder: cylinder,
		Head:     0,
		Encoding: model.EncodingGCRCommodore,
		RawBytes: append([]byte(nil), raw...),
	}
	sectors, err := gcrtrack.DecodeTrack(cylinder, raw)
	if err != nil {
		t.Diagnostic = err.Error()
		return t, nil
	}
	for _, s := range sectors {
		t.Sectors = append(t.Sectors, *s)
	}
	return t, nil
}

func (g64Adapter) WriteTrack(d *model.DiskImage, t *model.Track) error {
	st, ok := d.AdapterState().(*g64State)
	if !ok {
		return registry.Errorf(registry.InvalidArg, "disk image was not opened by the g64 adapter")
	}
	sectors := make([]*model.Sector, len(t.Sectors))
	for i := range t.Sectors {
		sectors[i] = &t.Sectors[i]
	}
	raw, err := gcrtrack.BuildTrack(t.Cylinder, sectors, [2]byte{0x30, 0x30})
	if err != nil {
		return registry.Wrap(registry.Corrupt, err, "building GCR track")
	}
	halfTrack := t.Cylinder * 2
	off := st.offsets[halfTrack]
	if off == 0 {
		return registry.Errorf(registry.Unsupported, "g64 adapter cannot grow a track that was never allocated")
	}
	existingLen := int(binary.LittleEndian.Uint16(st.data[off : off+2]))
	if len(raw) > existingLen {
		return registry.Errorf(registry.Overflow, "rebuilt track (%d bytes) exceeds allocated space (%d bytes)", len(raw), existingLen)
	}
	start := int(off) + 2
	copy(st.data[start:start+len(raw)], raw)
	return nil
}

func (g64Adapter) Geometry(d *model.DiskImage) (model.Geometry, error) {
	return d.Geometry, nil
}

func (g64Adapter) Close(d *model.DiskImage) error {
	d.SetAdapterState(nil)
	return nil
}
