package registry

import "github.com/diskforge/diskforge/model"

// Capability describes one format adapter: its identity, the file
// extensions it claims, and which of the five operations it actually
// supports.
//
// This generalizes zellyn/diskii's types.OperatorFactory/Operator pair
// (a probe-then-operate contract for *filesystems*) one layer down, to
// *containers*: the same "ask first, then get an instance that does the
// work" shape, one stage earlier in the read pipeline.
type Capability struct {
	Name        string
	Description string
	Extensions  []string
	FormatID    string

	CanRead        bool
	CanWrite       bool
	CanCreate      bool
	SupportsErrors bool
	SupportsTiming bool
}

// Progress is an optional callback for long-running operations (flux
// decode, multi-revolution fusion). Callers may track cancellation
// through their own closure state and simply stop calling into the core;
// the core makes no promise beyond "work done so far remains valid."
type Progress func(percent float64, message string)

// Adapter is the contract every format plug-in implements: probe, open,
// read/write a track, report geometry, and close. Spec.md §9's "record of
// function pointers" maps onto this Go interface; each concrete adapter
// is backed by the codec/bitstream-engine packages for the actual work.
type Adapter interface {
	Capability() Capability

	// Probe inspects data (and, if known, filename) and returns a scored
	// opinion about whether this adapter can open it. Probe must not
	// retain data or filename past the call, and must never fail: at
	// worst it returns a Score with Total 0 (spec.md §4.1/§7 - "the
	// format-identification engine never fails").
	Probe(data []byte, filename string) Score

	// Open parses data into a *model.DiskImage. Returns a *registry.Error
	// tagged Format/Corrupt/IO/NoMemory as appropriate.
	Open(data []byte, debug bool) (*model.DiskImage, error)

	// ReadTrack lazily produces the track at (cylinder, head).
	ReadTrack(d *model.DiskImage, cylinder, head int, progress Progress) (*model.Track, error)

	// WriteTrack writes a track back, if this adapter supports it. Returns
	// an Unsupported *registry.Error when Capability().CanWrite is false
	// or write_track was never wired up (spec.md §9's declared-vs-
	// functional write-capability bug class).
	WriteTrack(d *model.DiskImage, t *model.Track) error

	// Geometry returns the disk's nominal geometry.
	Geometry(d *model.DiskImage) (model.Geometry, error)

	// Close releases any adapter-private state attached to d at Open
	// time. Idempotent.
	Close(d *model.DiskImage) error
}

// WritesFunctionally reports whether an adapter both declares write
// support and has a working WriteTrack, resolving the capability-vs-
// function disagreement spec.md §9 calls out as a bug class to detect
// rather than silently trust.
func WritesFunctionally(a Adapter, d *model.DiskImage, probe *model.Track) bool {
	if !a.Capability().CanWrite {
		return false
	}
	if probe == nil {
		return true
	}
	err := a.WriteTrack(d, probe)
	return err == nil || CodeOf(err) != Unsupported
}
