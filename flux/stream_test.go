package flux_test

import (
	"testing"

	"github.com/diskforge/diskforge/flux"
)

// buildStream assembles a minimal KryoFlux-class opcode stream: one short
// flux sample, an index OOB closing the revolution, another short flux
// sample, then an EOF OOB.
func buildStream() []byte {
	var b []byte
	b = append(b, 0x64) // short flux, interval 0x64
	b = append(b, byte(flux.OpOOB), byte(flux.OOBIndex), 0x00, 0x00)
	b = append(b, 0x32) // short flux, interval 0x32
	b = append(b, byte(flux.OpOOB), byte(flux.OOBEOF), 0x00, 0x00)
	return b
}

func TestDecodeStreamSplitsRevolutionsOnIndex(t *testing.T) {
	res, err := flux.DecodeStream(buildStream(), flux.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !res.ReachedEOF {
		t.Error("expected ReachedEOF after an EOF OOB")
	}
	if res.NoIndex {
		t.Error("stream has an index OOB; NoIndex should be false")
	}
	if len(res.RevolutionTicks) != 2 {
		t.Fatalf("got %d revolutions; want 2", len(res.RevolutionTicks))
	}
	if len(res.RevolutionTicks[0]) != 1 || res.RevolutionTicks[0][0] != 0x64 {
		t.Errorf("revolution 0 = %v; want [0x64]", res.RevolutionTicks[0])
	}
}

func TestDecodeStreamTruncatedWithoutEOF(t *testing.T) {
	data := []byte{0x64} // one short flux sample, no EOF OOB
	_, err := flux.DecodeStream(data, flux.Options{})
	if err == nil {
		t.Error("expected an error when the stream ends without an EOF OOB")
	}
}

func TestDecodeStreamNoIndexProducesOneSyntheticRevolution(t *testing.T) {
	var data []byte
	data = append(data, 0x10, 0x20)
	data = append(data, byte(flux.OpOOB), byte(flux.OOBEOF), 0x00, 0x00)
	res, err := flux.DecodeStream(data, flux.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !res.NoIndex {
		t.Error("expected NoIndex to be true when no index OOB is present")
	}
	if len(res.RevolutionTicks) != 1 {
		t.Fatalf("got %d revolutions; want 1 synthetic revolution", len(res.RevolutionTicks))
	}
}

func TestToIntervalsConvertsCumulativeTicksToDeltas(t *testing.T) {
	res, err := flux.DecodeStream(buildStream(), flux.Options{})
	if err != nil {
		t.Fatal(err)
	}
	intervals := flux.ToIntervals(res)
	if len(intervals) != 2 {
		t.Fatalf("got %d revolutions of intervals; want 2", len(intervals))
	}
	if intervals[0][0] != 0x64 {
		t.Errorf("first interval = %d; want 0x64", intervals[0][0])
	}
	// Revolution 1's only sample accumulated 0x32 more ticks past the
	// index boundary at 0x64, so its interval (delta from that boundary)
	// should be 0x32, not the cumulative 0x96.
	if intervals[1][0] != 0x32 {
		t.Errorf("second revolution's interval = %d; want 0x32 (delta from prior index)", intervals[1][0])
	}
}
