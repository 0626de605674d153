package adapters

import (
	"encoding/binary"

	"github.com/diskforge/diskforge/codec"
	"github.com/diskforge/diskforge/flux"
	"github.com/diskforge/diskforge/model"
	"github.com/diskforge/diskforge/registry"
)

const scpMagic = "SCP"

// scpAdapter reads SuperCardPro flux images: a "SCP" signature plus
// version/disk-type/revolution-count/start-track/end-track/flags/bit-
// cell-encoding/heads/resolution header, then one 168-entry little-
// endian uint32 track-offset table, each pointing at a "TRK" + track
// number + per-revolution entry table + raw 16-bit flux cell values.
// Grounded on other_examples/sergev-fdx's supercardpro-read.go
// header-then-payload split; the flux cell values themselves are
// decoded with the shared flux package.
type scpAdapter struct{}

func init() {
	registry.Default.Register(scpAdapter{})
}

func (scpAdapter) Capability() registry.Capability {
	return registry.Capability{
		Name:           "scp",
		Description:    "SuperCardPro flux disk image",
		Extensions:     []string{".scp"},
		FormatID:       "scp",
		CanRead:        true,
		SupportsTiming: true,
	}
}

func (scpAdapter) Probe(data []byte, filename string) registry.Score {
	var sc registry.Score
	sc.AddMatch("magic", registry.MAGIC, len(data) >= 3 && string(data[0:3]) == scpMagic, "SCP signature")
	sc.AddMatch("extension", registry.LOW, hasExt(filename, ".scp"), "filename extension")
	return sc
}

type scpState struct {
	data        []byte
	startTrack  int
	endTrack    int
	heads       int
	resolutionNs float64
	trackOffsets []uint32
}

func (scpAdapter) Open(data []byte, debug bool) (*model.DiskImage, error) {
	if len(data) < 16 || string(data[0:3]) != scpMagic {
		return nil, registry.Errorf(registry.Format, "scp: missing SCP signature")
	}
	startTrack := int(data[5])
	endTrack := int(data[6])
	flags := data[7]
	heads := 1
	if flags&0x1 != 0 {
		heads = 2
	}
	resolution := data[9]
	resolutionNs := 25.0 * (float64(resolution) + 1.0)

	const headerLen = 16
	const maxTracks = 168
	if len(data) < headerLen+maxTracks*4 {
		return nil, registry.Errorf(registry.Corrupt, "scp: truncated track-offset table")
	}
	offsets := make([]uint32, maxTracks)
	for i := 0; i < maxTracks; i++ {
		offsets[i] = binary.LittleEndian.Uint32(data[headerLen+i*4 : headerLen+i*4+4])
	}

	d := &model.DiskImage{
		Geometry: model.Geometry{
			Cylinders: endTrack - startTrack + 1,
			Heads:     heads,
		},
		FormatID:       "scp",
		DisplayName:    "SuperCardPro flux disk image",
		SourceFileSize: len(data),
		DetectedFormat: "scp",
	}
	d.SetAdapterState(&scpState{
		data:         data,
		startTrack:   startTrack,
		endTrack:     endTrack,
		heads:        heads,
		resolutionNs: resolutionNs,
		trackOffsets: offsets,
	})
	return d, nil
}

func (scpAdapter) ReadTrack(d *model.DiskImage, cylinder, head int, progress registry.Progress) (*model.Track, error) {
	st, ok := d.AdapterState().(*scpState)
	if !ok {
		return nil, registry.Errorf(registry.InvalidArg, "disk image was not opened by the scp adapter")
	}
	physTrack := cylinder*st.heads + head
	if physTrack < 0 || physTrack >= len(st.trackOffsets) {
		return nil, registry.Errorf(registry.Range, "track %d/%d out of range", cylinder, head)
	}
	off := st.trackOffsets[physTrack]
	if off == 0 {
		return nil, registry.Errorf(registry.NotFound, "no capture for track %d/%d", cylinder, head)
	}
	if int(off)+4 > len(st.data) || string(st.data[off:off+3]) != "TRK" {
		return nil, registry.Errorf(registry.Corrupt, "scp: missing TRK marker at track data")
	}

	numRevs := int(st.data[off+3])
	entriesStart := int(off) + 4
	var revs [][]uint64
	for r := 0; r < numRevs; r++ {
		entryOff := entriesStart + r*12
		if entryOff+12 > len(st.data) {
			break
		}
		length := binary.LittleEndian.Uint32(st.data[entryOff+4 : entryOff+8])
		dataOff := binary.LittleEndian.Uint32(st.data[entryOff+8 : entryOff+12])
		start := int(off) + int(dataOff)
		end := start + int(length)*2
		if end > len(st.data) {
			break
		}
		var intervals []uint64
		for p := start; p+2 <= end; p += 2 {
			cell := binary.BigEndian.Uint16(st.data[p : p+2])
			intervals = append(intervals, uint64(cell)*uint64(st.resolutionNs))
		}
		revs = append(revs, intervals)
	}

	fused, confidence, weak := flux.Fuse(revs, flux.FusionMedian, flux.DefaultWeakBitThreshold)
	bitstream := codec.IntervalsToBitstream(fused, 2000) // nominal DD MFM bit-cell: 2us

	t := &model.Track{
		Cylinder: cylinder,
		Head:     head,
		Encoding: model.EncodingMFM,
		RawBytes: bitstream,
		WeakBits: weak,
	}
	for _, rev := range revs {
		t.Revolutions = append(t.Revolutions, model.Revolution{Flux: rev})
	}
	if len(confidence) > 0 {
		t.Confidence = confidence[len(confidence)/2]
	}
	return t, nil
}

func (scpAdapter) WriteTrack(d *model.DiskImage, t *model.Track) error {
	return registry.Errorf(registry.Unsupported, "scp adapter is read-only")
}

func (scpAdapter) Geometry(d *model.DiskImage) (model.Geometry, error) {
	return d.Geometry, nil
}

func (scpAdapter) Close(d *model.DiskImage) error {
	d.SetAdapterState(nil)
	return nil
}
