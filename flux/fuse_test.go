package flux_test

import (
	"testing"

	"github.com/diskforge/diskforge/flux"
	"github.com/diskforge/diskforge/model"
)

func TestFuseAgreeingRevolutionsYieldHighConfidenceNoWeakBits(t *testing.T) {
	revs := [][]uint64{
		{2000, 4000, 2000},
		{2001, 3999, 2000},
		{1999, 4001, 2001},
	}
	fused, confidence, weak := flux.Fuse(revs, flux.FusionMedian, flux.DefaultWeakBitThreshold)
	if len(fused) != 3 {
		t.Fatalf("got %d fused positions; want 3", len(fused))
	}
	if len(weak) != 0 {
		t.Errorf("expected no weak bits for tightly agreeing revolutions; got %v", weak)
	}
	for i, c := range confidence {
		if c < model.ConfidenceMax/2 {
			t.Errorf("position %d: confidence %d too low for agreeing samples", i, c)
		}
	}
}

func TestFuseFlagsDisagreeingRevolutionAsWeak(t *testing.T) {
	revs := [][]uint64{
		{2000, 2000},
		{2000, 2000},
		{2000, 6000}, // wildly different second sample
	}
	_, _, weak := flux.Fuse(revs, flux.FusionMedian, flux.DefaultWeakBitThreshold)
	found := false
	for _, p := range weak {
		if p == 1 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected position 1 to be flagged weak; got %v", weak)
	}
}

func TestFuseSingleRevolutionPositionGetsSingleRevolutionConfidence(t *testing.T) {
	revs := [][]uint64{
		{2000, 2000, 2000},
		{2000, 2000}, // shorter: position 2 only has one sample
	}
	_, confidence, weak := flux.Fuse(revs, flux.FusionMedian, flux.DefaultWeakBitThreshold)
	if confidence[2] != model.ConfidenceSingleRevolution {
		t.Errorf("confidence[2] = %d; want ConfidenceSingleRevolution (%d)", confidence[2], model.ConfidenceSingleRevolution)
	}
	for _, p := range weak {
		if p == 2 {
			t.Error("a position fused from a single revolution must never be flagged weak")
		}
	}
}

func TestMeasureTrackLengthDetectsProtectionRun(t *testing.T) {
	track := make([]byte, 100)
	for i := 40; i < 40+10; i++ {
		track[i] = 1
	}
	_, isProtection := flux.MeasureTrackLength(track, 8)
	if !isProtection {
		t.Error("expected a 10-long run to trip an 8-cell protection threshold")
	}

	clean := make([]byte, 100)
	_, isProtection = flux.MeasureTrackLength(clean, 8)
	if isProtection {
		t.Error("an all-zero track should never flag as protection")
	}
}
