package memory

import (
	"testing"

	"mri-enhancer/internal/logger"
	"mri-enhancer/internal/opencv/safe"

	"gocv.io/x/gocv"
)

func TestManagerTracksSafeMats(t *testing.T) {
	m := NewManager(logger.Nop())

	a, err := safe.NewMatWithTracker(10, 10, gocv.MatTypeCV8UC1, m, "a")
	if err != nil {
		t.Fatal(err)
	}
	b, err := safe.NewMatWithTracker(10, 10, gocv.MatTypeCV32FC1, m, "b")
	if err != nil {
		t.Fatal(err)
	}

	stats := m.GetStats()
	if stats.ActiveMats != 2 {
		t.Fatalf("active = %d, want 2", stats.ActiveMats)
	}
	if stats.TotalAllocated != 100+400 {
		t.Errorf("allocated = %d, want 500", stats.TotalAllocated)
	}

	a.Close()
	byTag := m.ActiveByTag()
	if byTag["b"] != 1 || byTag["a"] != 0 {
		t.Errorf("active by tag = %v", byTag)
	}

	b.Close()
	stats = m.GetStats()
	if stats.ActiveMats != 0 || stats.TotalReleased != 500 {
		t.Errorf("stats after close = %+v", stats)
	}
	if stats.PeakActiveMats != 2 {
		t.Errorf("peak = %d, want 2", stats.PeakActiveMats)
	}
}

func TestManagerIgnoresUntrackedRelease(t *testing.T) {
	m := NewManager(logger.Nop())
	m.TrackDeallocation(42, "ghost")

	if stats := m.GetStats(); stats.ActiveMats != 0 || stats.TotalReleased != 0 {
		t.Errorf("stats = %+v", stats)
	}
}
