// Package model holds the universal in-memory disk representation every
// format adapter reads from and writes to: sectors, tracks, and the disk
// image that owns them. Nothing in this package performs I/O; adapters in
// package adapters populate and consume these structures.
package model

import "fmt"

// Confidence is a fixed-point permille*10 value in [0, ConfidenceMax]
// describing how certain a decoder is that some piece of data is correct.
type Confidence uint16

// Confidence constants used throughout the flux and bitstream engines.
const (
	ConfidenceMax              Confidence = 10000
	ConfidencePerfect          Confidence = 10000
	ConfidenceSingleRevolution Confidence = 5000
	ConfidenceUnknown          Confidence = 0
)

// Encoding tags the bit-level encoding used on a track.
type Encoding int

const (
	EncodingUnknown Encoding = iota
	EncodingFM
	EncodingMFM
	EncodingGCRCommodore
	EncodingGCRApple
	EncodingRaw
)

func (e Encoding) String() string {
	switch e {
	case EncodingFM:
		return "FM"
	case EncodingMFM:
		return "MFM"
	case EncodingGCRCommodore:
		return "GCR-Commodore"
	case EncodingGCRApple:
		return "GCR-Apple"
	case EncodingRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// SectorStatus is the closed set of per-sector status codes shared by every
// sector-producing adapter (raw-sector, GCR/MFM bitstream, flux).
type SectorStatus int

const (
	StatusOK SectorStatus = iota
	StatusHeaderNotFound
	StatusNoSync
	StatusDataNotFound
	StatusDataChecksum
	StatusHeaderChecksum
	StatusIDMismatch
	StatusWriteProtected
	StatusExtended
)

func (s SectorStatus) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusHeaderNotFound:
		return "HEADER-NOT-FOUND"
	case StatusNoSync:
		return "NO-SYNC"
	case StatusDataNotFound:
		return "DATA-NOT-FOUND"
	case StatusDataChecksum:
		return "DATA-CHECKSUM"
	case StatusHeaderChecksum:
		return "HEADER-CHECKSUM"
	case StatusIDMismatch:
		return "ID-MISMATCH"
	case StatusWriteProtected:
		return "WRITE-PROTECTED"
	case StatusExtended:
		return "EXTENDED"
	default:
		return fmt.Sprintf("SectorStatus(%d)", int(s))
	}
}

// SizeCodeBytes maps a sector size_code (0..3) to its byte length.
var SizeCodeBytes = [4]int{128, 256, 512, 1024}

// SizeCodeForLen returns the size code matching a sector length, and false
// if no standard code matches.
func SizeCodeForLen(n int) (byte, bool) {
	for code, sz := range SizeCodeBytes {
		if sz == n {
			return byte(code), true
		}
	}
	return 0, false
}

// Sector represents one logical sector read from media.
type Sector struct {
	Cylinder int
	Head     int
	SectorID int
	SizeCode byte

	// Payload is a private copy; adapters never alias caller-supplied
	// buffers (spec: decoders copy raw bytes).
	Payload []byte

	CRCOK       bool
	Deleted     bool
	DataMissing bool

	// Status is the sector-level outcome of the most recent decode.
	Status SectorStatus

	Confidence Confidence

	// ControllerStatus holds optional raw per-sector controller status
	// bytes for error-preserving containers (e.g. trailing D64 error
	// table bytes).
	ControllerStatus []byte
}

// Clone returns a deep copy of the sector, so callers can mutate the
// result without aliasing the track's storage.
func (s Sector) Clone() Sector {
	c := s
	c.Payload = append([]byte(nil), s.Payload...)
	c.ControllerStatus = append([]byte(nil), s.ControllerStatus...)
	return c
}

// Revolution holds one physical rotation's worth of raw flux timing.
type Revolution struct {
	// Flux is the list of transition intervals, in nanoseconds.
	Flux []uint64
	// IndexTimestamp is the sample-counter-derived timestamp (ns) of the
	// index pulse that opened this revolution.
	IndexTimestamp uint64
}

// Track holds all data read from one physical track (one cylinder/head
// pair).
type Track struct {
	Cylinder int
	Head     int

	Encoding Encoding

	// Sectors is the ordered sector list: physical order when known,
	// else ascending SectorID.
	Sectors []Sector

	// RawBytes is the encoded bitstream as the device produced it,
	// retained losslessly for flux/bitstream-class containers. Nil for
	// adapters that never see a bitstream (pure sector containers).
	RawBytes []byte

	// Revolutions holds 1..N captured rotations for flux-class sources.
	// Nil for sector-level and single-capture bitstream sources.
	Revolutions []Revolution

	// WeakBits holds indices into RawBytes where multi-revolution
	// variance exceeded the configured threshold.
	WeakBits []int

	Confidence Confidence
	Diagnostic string

	// AvgRPM is the measured average rotational speed, derived from
	// index-to-index timing, when available.
	AvgRPM float64
}

// Geometry describes a disk image's nominal shape. The truth for any
// given track may differ (recorded on the Track itself); Geometry is the
// adapter's declared nominal shape.
type Geometry struct {
	Cylinders  int
	Heads      int
	Sectors    int
	SectorSize int
}

// DiskImage is the container root: the common structure every adapter
// populates via Open/ReadTrack.
type DiskImage struct {
	Geometry Geometry

	FormatID    string
	DisplayName string

	// Tracks is indexed by cylinder*Heads+head; absent entries are nil.
	Tracks []*Track

	SourceFileSize int
	DetectedFormat string
	// Checksum is an optional computed checksum of the encoded
	// representation (adapter-specific meaning).
	Checksum uint32

	// adapterState is private state owned by the adapter that opened
	// this image; adapters type-assert it back in ReadTrack/Close. The
	// disk image holds a back-reference for callback purposes only,
	// never for ownership (spec: adapter holds back-reference to disk
	// purely for callbacks, never the reverse).
	adapterState interface{}
}

// AdapterState returns the adapter-private state attached at Open time.
func (d *DiskImage) AdapterState() interface{} {
	return d.adapterState
}

// SetAdapterState attaches adapter-private state. Called once by an
// adapter's Open implementation.
func (d *DiskImage) SetAdapterState(state interface{}) {
	d.adapterState = state
}

// TrackIndex computes the row-major index of a (cylinder, head) pair.
func (d *DiskImage) TrackIndex(cylinder, head int) int {
	return cylinder*d.Geometry.Heads + head
}

// Track returns the track at (cylinder, head), or nil if absent/out of
// range.
func (d *DiskImage) Track(cylinder, head int) *Track {
	idx := d.TrackIndex(cylinder, head)
	if idx < 0 || idx >= len(d.Tracks) {
		return nil
	}
	return d.Tracks[idx]
}

// SetTrack stores a track at (cylinder, head), growing the Tracks slice if
// necessary.
func (d *DiskImage) SetTrack(cylinder, head int, t *Track) {
	idx := d.TrackIndex(cylinder, head)
	if idx >= len(d.Tracks) {
		grown := make([]*Track, idx+1)
		copy(grown, d.Tracks)
		d.Tracks = grown
	}
	d.Tracks[idx] = t
}
