package adapters

import (
	"encoding/binary"

	"github.com/diskforge/diskforge/model"
	"github.com/diskforge/diskforge/registry"
)

// atrHeaderLen is the fixed 16-byte Atari ATR header.
const atrHeaderLen = 16
const atrMagic = 0x0296

// atrAdapter reads Atari 8-bit ATR images: a 16-byte header (magic,
// paragraph count, sector size, high paragraph byte) followed by raw
// sector data. The first three sectors are always 128 bytes even on
// otherwise double-density images, a quirk inherited from the original
// single-density boot sectors.
type atrAdapter struct{}

func init() {
	registry.Default.Register(atrAdapter{})
}

func (atrAdapter) Capability() registry.Capability {
	return registry.Capability{
		Name:        "atr",
		Description: "Atari 8-bit ATR disk image",
		Extensions:  []string{".atr"},
		FormatID:    "atr",
		CanRead:     true,
		CanWrite:    true,
	}
}

func (atrAdapter) Probe(data []byte, filename string) registry.Score {
	var sc registry.Score
	magic := len(data) >= 2 && binary.LittleEndian.Uint16(data[0:2]) == atrMagic
	sc.AddMatch("magic", registry.MAGIC, magic, "0x0296 ATR magic")
	sc.AddMatch("extension", registry.LOW, hasExt(filename, ".atr"), "filename extension")
	return sc
}

type atrState struct {
	sectorSize  int
	bootSectors int // number of leading 128-byte sectors (always 3)
	body        []byte
}

func (atrAdapter) Open(data []byte, debug bool) (*model.DiskImage, error) {
	if len(data) < atrHeaderLen {
		return nil, registry.Errorf(registry.Format, "atr: file too short for header")
	}
	magic := binary.LittleEndian.Uint16(data[0:2])
	if magic != atrMagic {
		return nil, registry.Errorf(registry.Format, "atr: bad magic %#04x", magic)
	}
	paragraphsLo := binary.LittleEndian.Uint16(data[2:4])
	sectorSize := int(binary.LittleEndian.Uint16(data[4:6]))
	paragraphsHi := data[6]
	totalBytes := (int(paragraphsHi)<<16 | int(paragraphsLo)) * 16

	body := data[atrHeaderLen:]
	if len(body) < totalBytes {
		return nil, registry.Errorf(registry.Format, "atr: declared size %d exceeds file contents %d", totalBytes, len(body))
	}
	body = body[:totalBytes]

	bootBytes := 3 * 128
	sectors := 3
	if sectorSize > 128 && len(body) > bootBytes {
		sectors += (len(body) - bootBytes) / sectorSize
	} else {
		sectors = totalBytes / 128
	}

	d := &model.DiskImage{
		Geometry: model.Geometry{
			Cylinders:  1,
			Heads:      1,
			Sectors:    sectors,
			SectorSize: sectorSize,
		},
		FormatID:       "atr",
		DisplayName:    "Atari 8-bit ATR disk image",
		SourceFileSize: len(data),
		DetectedFormat: "atr",
	}
	d.SetAdapterState(&atrState{sectorSize: sectorSize, bootSectors: 3, body: body})
	return d, nil
}

// sectorOffset returns the byte offset and length of 1-based sector n,
// honoring the fixed-128-byte first three sectors.
func (s *atrState) sectorOffset(n int) (offset, length int) {
	if n <= s.bootSectors {
		return (n - 1) * 128, 128
	}
	return s.bootSectors*128 + (n-1-s.bootSectors)*s.sectorSize, s.sectorSize
}

func (atrAdapter) ReadTrack(d *model.DiskImage, cylinder, head int, progress registry.Progress) (*model.Track, error) {
	st, ok := d.AdapterState().(*atrState)
	if !ok {
		return nil, registry.Errorf(registry.InvalidArg, "disk image was not opened by the atr adapter")
	}
	if cylinder != 0 || head != 0 {
		return nil, registry.Errorf(registry.Range, "ATR images are single-sided and flat-sectored; use cylinder=0,head=0")
	}

	t := &model.Track{Cylinder: 0, Head: 0, Encoding: model.EncodingRaw}
	for n := 1; n <= d.Geometry.Sectors; n++ {
		off, length := st.sectorOffset(n)
		if off+length > len(st.body) {
			break
		}
		sec := model.Sector{
			SectorID: n,
			Payload:  append([]byte(nil), st.body[off:off+length]...),
			Status:   model.StatusOK,
			CRCOK:    true,
		}
		if sc, ok := model.SizeCodeForLen(length); ok {
			sec.SizeCode = sc
		}
		t.Sectors = append(t.Sectors, sec)
	}
	return t, nil
}

func (atrAdapter) WriteTrack(d *model.DiskImage, t *model.Track) error {
	st, ok := d.AdapterState().(*atrState)
	if !ok {
		return registry.Errorf(registry.InvalidArg, "disk image was not opened by the atr adapter")
	}
	for _, sec := range t.Sectors {
		off, length := st.sectorOffset(sec.SectorID)
		if off+length > len(st.body) {
			return registry.Errorf(registry.Range, "sector %d write out of bounds", sec.SectorID)
		}
		copy(st.body[off:off+length], sec.Payload)
	}
	return nil
}

func (atrAdapter) Geometry(d *model.DiskImage) (model.Geometry, error) {
	return d.Geometry, nil
}

func (atrAdapter) Close(d *model.DiskImage) error {
	d.SetAdapterState(nil)
	return nil
}
