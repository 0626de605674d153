package adapters

import (
	"encoding/binary"

	"github.com/diskforge/diskforge/codec"
	"github.com/diskforge/diskforge/model"
	"github.com/diskforge/diskforge/registry"
)

const msaMagic = 0x0E0F

// msaAdapter reads Atari ST MSA disk images: an 8-byte header (magic,
// sector size, sectors/track, sides, starting/ending track) followed by
// one run-length-compressed (or stored) chunk per track-side, each
// chunk itself preceded by a 16-bit compressed-length prefix (0xFFFF
// marking an uncompressed track). Decompression is codec.RLEDecodeMSA.
type msaAdapter struct{}

func init() {
	registry.Default.Register(msaAdapter{})
}

func (msaAdapter) Capability() registry.Capability {
	return registry.Capability{
		Name:        "msa",
		Description: "Atari ST MSA disk image",
		Extensions:  []string{".msa"},
		FormatID:    "msa",
		CanRead:     true,
	}
}

func (msaAdapter) Probe(data []byte, filename string) registry.Score {
	var sc registry.Score
	magic := len(data) >= 2 && binary.BigEndian.Uint16(data[0:2]) == msaMagic
	sc.AddMatch("magic", registry.MAGIC, magic, "0x0E0F MSA magic")
	sc.AddMatch("extension", registry.LOW, hasExt(filename, ".msa"), "filename extension")
	return sc
}

type msaState struct {
	sectorSize   int
	sectorsTrack int
	sides        int
	tracks       [][]byte // decompressed bytes, one entry per track-side
}

func (msaAdapter) Open(data []byte, debug bool) (*model.DiskImage, error) {
	if len(data) < 10 {
		return nil, registry.Errorf(registry.Format, "msa: file too short for header")
	}
	if binary.BigEndian.Uint16(data[0:2]) != msaMagic {
		return nil, registry.Errorf(registry.Format, "msa: bad magic")
	}
	sectorSize := 512
	sectorsTrack := int(binary.BigEndian.Uint16(data[4:6]))
	sides := int(binary.BigEndian.Uint16(data[6:8])) + 1
	startTrack := int(binary.BigEndian.Uint16(data[8:10]))
	endTrack := int(binary.BigEndian.Uint16(data[10:12]))
	numTracks := endTrack - startTrack + 1
	if numTracks <= 0 {
		return nil, registry.Errorf(registry.Format, "msa: invalid track range %d-%d", startTrack, endTrack)
	}

	trackLen := sectorSize * sectorsTrack
	pos := 12
	var tracks [][]byte
	for i := 0; i < numTracks*sides; i++ {
		if pos+2 > len(data) {
			return nil, registry.Errorf(registry.Corrupt, "msa: truncated track-length prefix")
		}
		compLen := int(binary.BigEndian.Uint16(data[pos : pos+2]))
		pos += 2
		if pos+compLen > len(data) {
			return nil, registry.Errorf(registry.Corrupt, "msa: truncated track data")
		}
		chunk := data[pos : pos+compLen]
		pos += compLen

		var trackData []byte
		if compLen == trackLen {
			trackData = append([]byte(nil), chunk...)
		} else {
			decoded, err := codec.RLEDecodeMSA(chunk)
			if err != nil {
				return nil, registry.Wrap(registry.Corrupt, err, "msa: decompressing track %d", i)
			}
			trackData = decoded
		}
		tracks = append(tracks, trackData)
	}

	d := &model.DiskImage{
		Geometry: model.Geometry{
			Cylinders:  numTracks,
			Heads:      sides,
			Sectors:    sectorsTrack,
			SectorSize: sectorSize,
		},
		FormatID:       "msa",
		DisplayName:    "Atari ST MSA disk image",
		SourceFileSize: len(data),
		DetectedFormat: "msa",
	}
	d.SetAdapterState(&msaState{sectorSize: sectorSize, sectorsTrack: sectorsTrack, sides: sides, tracks: tracks})
	return d, nil
}

func (msaAdapter) ReadTrack(d *model.DiskImage, cylinder, head int, progress registry.Progress) (*model.Track, error) {
	st, ok := d.AdapterState().(*msaState)
	if !ok {
		return nil, registry.Errorf(registry.InvalidArg, "disk image was not opened by the msa adapter")
	}
	idx := cylinder*st.sides + head
	if idx < 0 || idx >= len(st.tracks) {
		return nil, registry.Errorf(registry.Range, "track %d/%d out of range", cylinder, head)
	}
	raw := st.tracks[idx]

	t := &model.Track{Cylinder: cylinder, Head: head, Encoding: model.EncodingRaw}
	for s := 0; s < st.sectorsTrack; s++ {
		off := s * st.sectorSize
		if off+st.sectorSize > len(raw) {
			break
		}
		sec := model.Sector{
			Cylinder: cylinder,
			Head:     head,
			SectorID: s + 1,
			Payload:  append([]byte(nil), raw[off:off+st.sectorSize]...),
			Status:   model.StatusOK,
			CRCOK:    true,
		}
		if sc, ok := model.SizeCodeForLen(st.sectorSize); ok {
			sec.SizeCode = sc
		}
		t.Sectors = append(t.Sectors, sec)
	}
	return t, nil
}

func (msaAdapter) WriteTrack(d *model.DiskImage, t *model.Track) error {
	return registry.Errorf(registry.Unsupported, "msa adapter is read-only")
}

func (msaAdapter) Geometry(d *model.DiskImage) (model.Geometry, error) {
	return d.Geometry, nil
}

func (msaAdapter) Close(d *model.DiskImage) error {
	d.SetAdapterState(nil)
	return nil
}
