package adapters

import (
	"encoding/binary"

	"github.com/diskforge/diskforge/model"
	"github.com/diskforge/diskforge/registry"
)

const (
	adfDDSize = 901120
	adfHDSize = 1802240
	adfHeads  = 2
	adfSectorsDD = 11
	adfSectorsHD = 22
	adfSectorSize = 512
)

// adfAdapter reads Amiga ADF disk images: a flat, headerless 512-
// byte-per-sector image whose only metadata lives in the first sector
// (the boot block), which carries a "DOS" magic plus a filesystem-
// variant byte and, for bootable disks, a checksum.
type adfAdapter struct{}

func init() {
	registry.Default.Register(adfAdapter{})
}

func (adfAdapter) Capability() registry.Capability {
	return registry.Capability{
		Name:        "adf",
		Description: "Amiga ADF disk image",
		Extensions:  []string{".adf"},
		FormatID:    "adf",
		CanRead:     true,
		CanWrite:    true,
	}
}

func (adfAdapter) Probe(data []byte, filename string) registry.Score {
	var sc registry.Score
	sizeOK := len(data) == adfDDSize || len(data) == adfHDSize
	sc.AddMatch("size", registry.HIGH, sizeOK, "exact ADF DD/HD size")
	magic := len(data) >= 3 && data[0] == 'D' && data[1] == 'O' && data[2] == 'S'
	sc.AddMatch("bootblock-magic", registry.MEDIUM, magic, "DOS boot block signature")
	sc.AddMatch("extension", registry.LOW, hasExt(filename, ".adf"), "filename extension")
	return sc
}

func (adfAdapter) Open(data []byte, debug bool) (*model.DiskImage, error) {
	var sectorsPerTrack int
	switch len(data) {
	case adfDDSize:
		sectorsPerTrack = adfSectorsDD
	case adfHDSize:
		sectorsPerTrack = adfSectorsHD
	default:
		return nil, registry.Errorf(registry.Format, "adf: unexpected size %d", len(data))
	}

	d := &model.DiskImage{
		Geometry: model.Geometry{
			Cylinders:  80,
			Heads:      adfHeads,
			Sectors:    sectorsPerTrack,
			SectorSize: adfSectorSize,
		},
		FormatID:       "adf",
		DisplayName:    "Amiga ADF disk image",
		SourceFileSize: len(data),
		DetectedFormat: "adf",
	}
	d.SetAdapterState(append([]byte(nil), data...))
	return d, nil
}

func (adfAdapter) ReadTrack(d *model.DiskImage, cylinder, head int, progress registry.Progress) (*model.Track, error) {
	body, ok := d.AdapterState().([]byte)
	if !ok {
		return nil, registry.Errorf(registry.InvalidArg, "disk image was not opened by the adf adapter")
	}
	g := d.Geometry
	if cylinder < 0 || cylinder >= g.Cylinders || head < 0 || head >= g.Heads {
		return nil, registry.Errorf(registry.Range, "cylinder/head out of range")
	}
	trackIndex := cylinder*g.Heads + head
	trackOffset := trackIndex * g.Sectors * g.SectorSize

	t := &model.Track{Cylinder: cylinder, Head: head, Encoding: model.EncodingRaw}
	for s := 0; s < g.Sectors; s++ {
		off := trackOffset + s*g.SectorSize
		if off+g.SectorSize > len(body) {
			break
		}
		sec := model.Sector{
			Cylinder: cylinder,
			Head:     head,
			SectorID: s,
			Payload:  append([]byte(nil), body[off:off+g.SectorSize]...),
			Status:   model.StatusOK,
			CRCOK:    true,
		}
		if sc, ok := model.SizeCodeForLen(g.SectorSize); ok {
			sec.SizeCode = sc
		}
		t.Sectors = append(t.Sectors, sec)
	}
	return t, nil
}

func (adfAdapter) WriteTrack(d *model.DiskImage, t *model.Track) error {
	body, ok := d.AdapterState().([]byte)
	if !ok {
		return registry.Errorf(registry.InvalidArg, "disk image was not opened by the adf adapter")
	}
	g := d.Geometry
	trackIndex := t.Cylinder*g.Heads + t.Head
	trackOffset := trackIndex * g.Sectors * g.SectorSize
	for s, sec := range t.Sectors {
		off := trackOffset + s*g.SectorSize
		if off+g.SectorSize > len(body) {
			return registry.Errorf(registry.Range, "sector write out of bounds")
		}
		copy(body[off:off+g.SectorSize], sec.Payload)
	}
	return nil
}

func (adfAdapter) Geometry(d *model.DiskImage) (model.Geometry, error) {
	return d.Geometry, nil
}

func (adfAdapter) Close(d *model.DiskImage) error {
	d.SetAdapterState(nil)
	return nil
}

// BootBlockChecksum computes the Amiga boot block checksum: a 32-bit
// running sum of every big-endian uint32 word in the first two sectors
// except the checksum word itself (at byte offset 4), with end-around
// carry folded back in and the final sum bit-inverted.
func BootBlockChecksum(bootBlock []byte) uint32 {
	var sum uint32
	for off := 0; off+4 <= len(bootBlock); off += 4 {
		if off == 4 {
			continue
		}
		word := binary.BigEndian.Uint32(bootBlock[off : off+4])
		newSum := uint64(sum) + uint64(word)
		if newSum > 0xFFFFFFFF {
			newSum -= 0xFFFFFFFF
		}
		sum = uint32(newSum)
	}
	return ^sum
}
