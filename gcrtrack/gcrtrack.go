// Package gcrtrack synthesises a Commodore 1541-family track's raw GCR
// bytes from logical sectors and decodes them back, per spec.md §4.3.
//
// Grounded on disk/marshal.go's sector-marshalling approach (explicit
// field-by-field packing with documented byte layout) and woz/woz.go's
// track-byte handling, generalized from Apple's bit-level WOZ tracks to
// Commodore's byte-aligned GCR tracks.
package gcrtrack

import (
	"github.com/pkg/errors"

	"github.com/diskforge/diskforge/codec"
	"github.com/diskforge/diskforge/model"
)

// Zone describes one 1541-family speed zone (spec.md §4.3).
type Zone struct {
	FirstTrack   int
	LastTrack    int
	SectorCount  int
	TrackBytes   int
}

// Zones is the fixed four-zone table for the 1541 family.
var Zones = [4]Zone{
	{FirstTrack: 1, LastTrack: 17, SectorCount: 21, TrackBytes: 6250},
	{FirstTrack: 18, LastTrack: 24, SectorCount: 19, TrackBytes: 6666},
	{FirstTrack: 25, LastTrack: 30, SectorCount: 18, TrackBytes: 7142},
	{FirstTrack: 31, LastTrack: 35, SectorCount: 17, TrackBytes: 7692},
}

// ZoneFor returns the speed zone a 1-based track number falls in.
func ZoneFor(track int) (Zone, error) {
	for _, z := range Zones {
		if track >= z.FirstTrack && track <= z.LastTrack {
			return z, nil
		}
	}
	return Zone{}, errors.Errorf("gcrtrack: track %d out of range 1..35", track)
}

// SectorsPerTrack returns the sector count for a 1-based track number.
func SectorsPerTrack(track int) int {
	z, err := ZoneFor(track)
	if err != nil {
		return 0
	}
	return z.SectorCount
}

const (
	syncByte       = 0xff
	syncLen        = 5
	headerGapByte  = 0x55
	headerGapLen   = 9
	headerMarker   = 0x08
	dataMarker     = 0x07
	plainDataLen   = 256
)

// headerPrologue and dataPrologue are the 3 fixed GCR bytes spec.md §4.3
// documents preceding the header and data blocks respectively. These are
// the GCR encodings of the marker nibble sequences used by 1541 ROM DOS.
var (
	headerPrologue = [3]byte{0x52, 0x54, 0xad}
	dataPrologue   = [3]byte{0x55, 0x54, 0xad}
	blockEpilogue  = [3]byte{0xff, 0xff, 0xff}
)

// BuildTrack synthesises one track's raw GCR byte stream from its
// logical sectors, per spec.md §4.3's sector-on-track layout. diskID is
// the two-byte disk ID (id0, id1) stamped into every sector header.
func BuildTrack(cylinder int, sectors []*model.Sector, diskID [2]byte) ([]byte, error) {
	track1Based := cylinder + 1
	zone, err := ZoneFor(track1Based)
	if err != nil {
		return nil, err
	}
	if len(sectors) != zone.SectorCount {
		return nil, errors.Errorf("gcrtrack: track %d expects %d sectors, got %d", track1Based, zone.SectorCount, len(sectors))
	}

	var out []byte
	for _, sec := range sectors {
		out = appendSector(out, track1Based, sec, diskID)
	}
	return out, nil
}

func appendSector(out []byte, track1Based int, sec *model.Sector, diskID [2]byte) []byte {
	appendSync := func(b []byte) []byte {
		for i := 0; i < syncLen; i++ {
			b = append(b, syncByte)
		}
		return b
	}

	out = appendSync(out)
	out = append(out, headerPrologue[:]...)

	checksum := byte(sec.SectorID) ^ byte(track1Based) ^ diskID[1] ^ diskID[0]
	header := [8]byte{headerMarker, checksum, byte(sec.SectorID), byte(track1Based), diskID[1], diskID[0], 0x0f, 0x0f}
	out = appendGCRGroups(out, header[:])
	out = append(out, blockEpilogue[:]...)

	for i := 0; i < headerGapLen; i++ {
		out = append(out, headerGapByte)
	}

	out = appendSync(out)
	out = append(out, dataPrologue[:]...)

	payload := make([]byte, plainDataLen)
	copy(payload, sec.Payload)
	var dataChecksum byte
	for _, b := range payload {
		dataChecksum ^= b
	}
	block := make([]byte, 0, plainDataLen+4)
	block = append(block, dataMarker)
	block = append(block, payload...)
	block = append(block, dataChecksum, 0x00, 0x00)
	out = appendGCRGroups(out, block)
	out = append(out, blockEpilogue[:]...)

	return out
}

// appendGCRGroups GCR-encodes plain in 4-byte groups (the last group
// zero-padded if plain's length isn't a multiple of 4) and appends the
// resulting 5-byte groups to out.
func appendGCRGroups(out []byte, plain []byte) []byte {
	for i := 0; i < len(plain); i += 4 {
		var group [4]byte
		copy(group[:], plain[i:])
		encoded := codec.Encode4to5(group)
		out = append(out, encoded[:]...)
	}
	return out
}

// DecodeTrack scans a track's raw GCR bytes for sector headers and data
// blocks and returns the decoded sectors, each carrying a SectorStatus
// reflecting sync/checksum/GCR problems encountered (spec.md §4.3: "a
// decode that hits any invalid code counts as a GCR error; the
// sector-level error accumulates").
func DecodeTrack(cylinder int, raw []byte) ([]*model.Sector, error) {
	track1Based := cylinder + 1
	zone, err := ZoneFor(track1Based)
	if err != nil {
		return nil, err
	}

	var sectors []*model.Sector
	pos := 0
	for len(sectors) < zone.SectorCount && pos < len(raw) {
		syncAt := findSync(raw, pos)
		if syncAt < 0 {
			break
		}
		pos = syncAt

		sec, next, status := decodeOneSector(raw, pos, track1Based)
		if sec != nil {
			sec.Status = status
			sectors = append(sectors, sec)
		}
		if next <= pos {
			break
		}
		pos = next
	}

	if len(sectors) == 0 {
		return nil, errors.New("gcrtrack: no sector sync found on track")
	}
	return sectors, nil
}

func findSync(raw []byte, from int) int {
	run := 0
	for i := from; i < len(raw); i++ {
		if raw[i] == syncByte {
			run++
			if run >= syncLen {
				return i + 1
			}
		} else {
			run = 0
		}
	}
	return -1
}

func decodeOneSector(raw []byte, pos int, track1Based int) (*model.Sector, int, model.SectorStatus) {
	// Skip any residual sync bytes and the 3-byte header prologue.
	for pos < len(raw) && raw[pos] == syncByte {
		pos++
	}
	if pos+3+10 > len(raw) {
		return nil, pos, model.StatusHeaderNotFound
	}
	pos += 3 // header prologue

	headerGCR := raw[pos : pos+10]
	pos += 10
	plain, gcrErr := decodeGCRGroups(headerGCR, 8)

	sec := &model.Sector{Cylinder: track1Based - 1}
	status := model.StatusOK
	if gcrErr || len(plain) < 8 || plain[0] != headerMarker {
		status = model.StatusHeaderChecksum
	} else {
		sec.SectorID = int(plain[2])
		checksum := plain[2] ^ plain[3] ^ plain[5] ^ plain[4]
		if checksum != plain[1] {
			status = model.StatusHeaderChecksum
		}
	}

	pos += len(blockEpilogue)
	pos += headerGapLen

	dataSyncAt := findSync(raw, pos)
	if dataSyncAt < 0 || dataSyncAt+3+325 > len(raw) {
		return sec, len(raw), combineStatus(status, model.StatusDataNotFound)
	}
	pos = dataSyncAt + 3 // data prologue

	dataGCR := raw[pos : pos+325]
	pos += 325
	dataPlain, dataGCRErr := decodeGCRGroups(dataGCR, 260)
	pos += len(blockEpilogue)

	if dataGCRErr || len(dataPlain) < 260 || dataPlain[0] != dataMarker {
		return sec, pos, combineStatus(status, model.StatusDataChecksum)
	}
	payload := dataPlain[1:257]
	var checksum byte
	for _, b := range payload {
		checksum ^= b
	}
	sec.Payload = append([]byte(nil), payload...)
	if sc, ok := model.SizeCodeForLen(len(payload)); ok {
		sec.SizeCode = sc
	}
	sec.CRCOK = checksum == dataPlain[257]
	if !sec.CRCOK {
		status = combineStatus(status, model.StatusDataChecksum)
	}

	return sec, pos, status
}

// combineStatus keeps the most specific non-OK status already recorded.
func combineStatus(existing, candidate model.SectorStatus) model.SectorStatus {
	if existing != model.StatusOK {
		return existing
	}
	return candidate
}

// decodeGCRGroups decodes len(gcr)/5 GCR groups back into wantPlain
// plain bytes (truncating any trailing pad byte produced by a non-4
// multiple plain length). gcrErr is true if any group had an invalid
// code.
func decodeGCRGroups(gcr []byte, wantPlain int) (plain []byte, gcrErr bool) {
	for i := 0; i+5 <= len(gcr); i += 5 {
		var group [5]byte
		copy(group[:], gcr[i:i+5])
		decoded, ok := codec.Decode5to4(group)
		if !ok {
			gcrErr = true
		}
		plain = append(plain, decoded[:]...)
	}
	if len(plain) > wantPlain {
		plain = plain[:wantPlain]
	}
	return plain, gcrErr
}
