// Package registry implements the format-identification engine (probe +
// score across every registered adapter) and the small orchestration glue
// (open, read/write track, convert) spec.md §4.1 and §6 describe.
package registry

import (
	"path"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/diskforge/diskforge/model"
)

// DetectionThreshold is the minimum score (spec.md §4.1) a candidate must
// reach to be considered a match at all.
const DetectionThreshold = 30

// Registry holds the ordered set of known format adapters. Registration
// happens once at startup (via adapter init() functions calling
// Default.Register, mirroring the blank-import-for-side-effect pattern
// zellyn/diskii's main.go uses for lib/dos3 and lib/supermon); after that
// the registry is read-many, write-rarely and safe to read from any
// goroutine without synchronization, per spec.md §5.
type Registry struct {
	adapters []Adapter
}

// NewRegistry returns an empty registry. Most callers use Default instead.
func NewRegistry() *Registry {
	return &Registry{}
}

// Default is the process-wide registry populated by adapters'
// registration init() functions, matching spec.md §9's fallback note
// ("prefer an explicit registry object... falling back to a process-wide
// default only if ergonomics demand it" — the adapters package is the
// ergonomics case: dozens of format variants that would otherwise need
// explicit wiring at every call site).
var Default = NewRegistry()

// Register adds an adapter to the registry. Called once per adapter at
// startup; never removed.
func (r *Registry) Register(a Adapter) {
	r.adapters = append(r.adapters, a)
}

// Candidate is one scored adapter match.
type Candidate struct {
	Adapter Adapter
	Score   Score
}

// DetectAll probes every registered adapter against data and returns all
// candidates scoring >= DetectionThreshold, sorted descending by score,
// ties broken by extension match then registration order (spec.md §4.1).
func (r *Registry) DetectAll(data []byte, filename string) []Candidate {
	ext := strings.ToLower(path.Ext(filename))

	type scored struct {
		idx int
		c   Candidate
	}
	var all []scored
	for i, a := range r.adapters {
		sc := a.Probe(data, filename)
		all = append(all, scored{idx: i, c: Candidate{Adapter: a, Score: sc}})
	}

	var candidates []scored
	for _, s := range all {
		if s.c.Score.Total >= DetectionThreshold {
			candidates = append(candidates, s)
		}
	}

	extMatches := func(a Adapter) bool {
		if ext == "" {
			return false
		}
		for _, e := range a.Capability().Extensions {
			if strings.ToLower(strings.TrimPrefix(e, ".")) == strings.TrimPrefix(ext, ".") {
				return true
			}
		}
		return false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := candidates[i], candidates[j]
		if si.c.Score.Total != sj.c.Score.Total {
			return si.c.Score.Total > sj.c.Score.Total
		}
		mi, mj := extMatches(si.c.Adapter), extMatches(sj.c.Adapter)
		if mi != mj {
			return mi
		}
		return si.idx < sj.idx
	})

	result := make([]Candidate, len(candidates))
	for i, s := range candidates {
		result[i] = s.c
	}
	return result
}

// Detect returns the single best candidate, or false if none scored
// >= DetectionThreshold ("unknown format" is not a corruption error).
func (r *Registry) Detect(data []byte, filename string) (Candidate, bool) {
	all := r.DetectAll(data, filename)
	if len(all) == 0 {
		return Candidate{}, false
	}
	return all[0], true
}

// Open runs detection and opens the best-scoring adapter.
func (r *Registry) Open(data []byte, filename string, debug bool) (*model.DiskImage, Adapter, error) {
	cand, ok := r.Detect(data, filename)
	if !ok {
		return nil, nil, Errorf(Format, "unknown format: no adapter scored >= %d for %q", DetectionThreshold, filename)
	}
	d, err := cand.Adapter.Open(data, debug)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening as %s", cand.Adapter.Capability().Name)
	}
	return d, cand.Adapter, nil
}

// OpenWith bypasses probing and opens data with a specific, named adapter.
func (r *Registry) OpenWith(adapterName string, data []byte, debug bool) (*model.DiskImage, Adapter, error) {
	for _, a := range r.adapters {
		if a.Capability().Name == adapterName {
			d, err := a.Open(data, debug)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "opening as %s", adapterName)
			}
			return d, a, nil
		}
	}
	return nil, nil, Errorf(NotFound, "no adapter registered with name %q", adapterName)
}

// ByName returns the adapter registered under name, if any.
func (r *Registry) ByName(name string) (Adapter, bool) {
	for _, a := range r.adapters {
		if a.Capability().Name == name {
			return a, true
		}
	}
	return nil, false
}

// All returns every registered adapter, in registration order.
func (r *Registry) All() []Adapter {
	out := make([]Adapter, len(r.adapters))
	copy(out, r.adapters)
	return out
}

// ConvertResult carries the bytes produced by Convert, plus a record of
// any information the target adapter could not represent.
type ConvertResult struct {
	Bytes   []byte
	Lossy   bool
	Notices []string
}

// Convert decodes sourceBytes (probing to find the source adapter) and
// re-encodes every track into targetAdapterName, composing
// read-every-track on the source with write-every-track on the target
// exactly as spec.md §6 describes. Loss of flux timing, weak-bit data, or
// per-sector controller status when the target can't represent it is
// recorded in ConvertResult.Notices rather than failing the conversion.
func (r *Registry) Convert(sourceBytes []byte, filename string, targetAdapterName string, debug bool) (*ConvertResult, error) {
	srcDisk, srcAdapter, err := r.Open(sourceBytes, filename, debug)
	if err != nil {
		return nil, err
	}
	defer srcAdapter.Close(srcDisk)

	dstAdapter, ok := r.ByName(targetAdapterName)
	if !ok {
		return nil, Errorf(NotFound, "no adapter registered with name %q", targetAdapterName)
	}
	if !dstAdapter.Capability().CanCreate {
		return nil, Errorf(Unsupported, "adapter %q does not support creating images", targetAdapterName)
	}

	srcGeom, err := srcAdapter.Geometry(srcDisk)
	if err != nil {
		return nil, errors.Wrap(err, "reading source geometry")
	}

	dstDisk, err := newBlankDiskFor(dstAdapter, srcGeom)
	if err != nil {
		return nil, errors.Wrapf(err, "preparing blank %s image", targetAdapterName)
	}

	result := &ConvertResult{}
	srcCap := srcAdapter.Capability()
	dstCap := dstAdapter.Capability()
	if srcCap.SupportsTiming && !dstCap.SupportsTiming {
		result.Lossy = true
		result.Notices = append(result.Notices, "flux timing information dropped: target format is sector-level only")
	}
	if srcCap.SupportsErrors && !dstCap.SupportsErrors {
		result.Lossy = true
		result.Notices = append(result.Notices, "per-sector controller status dropped: target format has no error channel")
	}

	for cyl := 0; cyl < srcGeom.Cylinders; cyl++ {
		for head := 0; head < srcGeom.Heads; head++ {
			t, err := srcAdapter.ReadTrack(srcDisk, cyl, head, nil)
			if err != nil {
				return nil, errors.Wrapf(err, "reading track c%d/h%d", cyl, head)
			}
			if t == nil {
				continue
			}
			if err := dstAdapter.WriteTrack(dstDisk, t); err != nil {
				if CodeOf(err) == Unsupported {
					return nil, errors.Wrapf(err, "target %q cannot write tracks", targetAdapterName)
				}
				return nil, errors.Wrapf(err, "writing track c%d/h%d to %s", cyl, head, targetAdapterName)
			}
		}
	}

	encoded, err := encodeDisk(dstAdapter, dstDisk)
	if err != nil {
		return nil, errors.Wrapf(err, "encoding final %s bytes", targetAdapterName)
	}
	result.Bytes = encoded
	return result, nil
}

// blankDiskFactory is implemented by adapters that support CanCreate: it
// produces an empty disk image of the given nominal geometry, ready for
// WriteTrack calls, plus a way to serialize the finished image to bytes.
// This is kept as a separate, narrow interface (rather than folding
// "create blank" and "serialize" into the main Adapter contract) because
// most adapters are read/convert targets only and never need it.
type blankDiskFactory interface {
	NewBlank(geom model.Geometry) (*model.DiskImage, error)
	Encode(d *model.DiskImage) ([]byte, error)
}

func newBlankDiskFor(a Adapter, geom model.Geometry) (*model.DiskImage, error) {
	f, ok := a.(blankDiskFactory)
	if !ok {
		return nil, Errorf(Unsupported, "adapter %q cannot create new images", a.Capability().Name)
	}
	return f.NewBlank(geom)
}

func encodeDisk(a Adapter, d *model.DiskImage) ([]byte, error) {
	f, ok := a.(blankDiskFactory)
	if !ok {
		return nil, Errorf(Unsupported, "adapter %q cannot encode images", a.Capability().Name)
	}
	return f.Encode(d)
}
