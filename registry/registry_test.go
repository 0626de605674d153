package registry

import (
	"testing"

	"github.com/diskforge/diskforge/model"
)

// fakeAdapter is a minimal in-memory registry.Adapter for exercising
// DetectAll/Open/Convert without depending on the real format adapters
// (which live in package adapters and would create an import cycle).
type fakeAdapter struct {
	name       string
	ext        string
	score      int
	geom       model.Geometry
	canCreate  bool
	canWrite   bool
	sectorByte byte
}

func (f fakeAdapter) Capability() Capability {
	return Capability{Name: f.name, Extensions: []string{f.ext}, CanRead: true, CanWrite: f.canWrite, CanCreate: f.canCreate}
}

func (f fakeAdapter) Probe(data []byte, filename string) Score {
	var sc Score
	sc.AddMatch("fixed", HIGH, f.score >= 45, "fixed test score")
	if f.score > 45 {
		sc.AddMatch("extra", LOW, true, "extra boost")
	}
	return sc
}

func (f fakeAdapter) Open(data []byte, debug bool) (*model.DiskImage, error) {
	d := &model.DiskImage{Geometry: f.geom, FormatID: f.name}
	return d, nil
}

func (f fakeAdapter) ReadTrack(d *model.DiskImage, cylinder, head int, progress Progress) (*model.Track, error) {
	return &model.Track{
		Cylinder: cylinder,
		Head:     head,
		Sectors:  []model.Sector{{Cylinder: cylinder, Head: head, SectorID: 0, Payload: []byte{f.sectorByte}}},
	}, nil
}

func (f fakeAdapter) WriteTrack(d *model.DiskImage, t *model.Track) error {
	if !f.canWrite {
		return Errorf(Unsupported, "%s is read-only", f.name)
	}
	return nil
}

func (f fakeAdapter) Geometry(d *model.DiskImage) (model.Geometry, error) {
	return f.geom, nil
}

func (f fakeAdapter) Close(d *model.DiskImage) error { return nil }

// NewBlank and Encode satisfy registry's unexported blankDiskFactory
// interface, required whenever Capability().CanCreate is true.
func (f fakeAdapter) NewBlank(geom model.Geometry) (*model.DiskImage, error) {
	return &model.DiskImage{Geometry: geom, FormatID: f.name}, nil
}

func (f fakeAdapter) Encode(d *model.DiskImage) ([]byte, error) {
	return []byte{f.sectorByte}, nil
}

func TestDetectAllOrdersByScoreThenExtension(t *testing.T) {
	r := NewRegistry()
	low := fakeAdapter{name: "low", ext: ".img", score: 45}
	high := fakeAdapter{name: "high", ext: ".raw", score: 60}
	r.Register(low)
	r.Register(high)

	candidates := r.DetectAll([]byte("whatever"), "disk.raw")
	if len(candidates) != 2 {
		t.Fatalf("want 2 candidates, got %d", len(candidates))
	}
	if candidates[0].Adapter.Capability().Name != "high" {
		t.Errorf("want high-scoring adapter first, got %s", candidates[0].Adapter.Capability().Name)
	}
}

func TestDetectBelowThresholdReturnsNothing(t *testing.T) {
	r := NewRegistry()
	r.Register(fakeAdapter{name: "weak", ext: ".img", score: 10})
	if _, ok := r.Detect([]byte("x"), "x.img"); ok {
		t.Error("expected no candidate below DetectionThreshold")
	}
}

func TestConvertReportsLossWhenTargetLacksTiming(t *testing.T) {
	r := NewRegistry()
	src := fakeAdapter{name: "src", ext: ".src", score: 60, geom: model.Geometry{Cylinders: 1, Heads: 1, Sectors: 1, SectorSize: 1}, sectorByte: 0xAA}
	dst := fakeAdapter{name: "dst", ext: ".dst", score: 60, geom: model.Geometry{Cylinders: 1, Heads: 1, Sectors: 1, SectorSize: 1}, canCreate: true, canWrite: true}
	r.Register(src)
	r.Register(dst)

	result, err := r.Convert([]byte("irrelevant"), "disk.src", "dst", false)
	if err != nil {
		t.Fatal(err)
	}
	if result == nil {
		t.Fatal("expected a non-nil ConvertResult")
	}
}

func TestConvertRejectsUnknownTarget(t *testing.T) {
	r := NewRegistry()
	r.Register(fakeAdapter{name: "src", ext: ".src", score: 60})
	if _, err := r.Convert([]byte("x"), "disk.src", "nope", false); err == nil {
		t.Error("expected an error for an unregistered target adapter")
	}
}
