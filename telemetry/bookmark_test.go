package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_Splash(t *testing.T) {
	bd := NewBookmarkDetector(10, 3)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{
			WindowEndTick: int32(i * 120),
			Particles:     100,
			KineticEnergy: 0.1, // 1e-3 per particle
		})
	}

	bookmarks := bd.Check(WindowStats{
		WindowEndTick: 600,
		Particles:     100,
		KineticEnergy: 0.5,
	})
	if !hasBookmark(bookmarks, BookmarkSplash) {
		t.Error("expected splash bookmark")
	}
}

func TestBookmarkDetector_SplashNeedsHistory(t *testing.T) {
	bd := NewBookmarkDetector(10, 3)

	bd.Check(WindowStats{Particles: 100, KineticEnergy: 0.1})
	bookmarks := bd.Check(WindowStats{Particles: 100, KineticEnergy: 10})
	if hasBookmark(bookmarks, BookmarkSplash) {
		t.Error("splash should wait for three windows of history")
	}
}

func TestBookmarkDetector_CompressionEdge(t *testing.T) {
	bd := NewBookmarkDetector(10, 2)

	tests := []struct {
		p90  float64
		want bool
	}{
		{2.5, false},
		{3.5, true},
		{3.6, false}, // still compressed
		{2.0, false},
		{3.1, true},
	}
	for i, tt := range tests {
		got := hasBookmark(bd.Check(WindowStats{Particles: 10, DensityP90: tt.p90}), BookmarkCompression)
		if got != tt.want {
			t.Errorf("window %d (p90 %.1f): compression = %v, want %v", i, tt.p90, got, tt.want)
		}
	}
}

func TestBookmarkDetector_Overflow(t *testing.T) {
	bd := NewBookmarkDetector(10, 3)

	if hasBookmark(bd.Check(WindowStats{Overflows: 0}), BookmarkOverflow) {
		t.Error("no overflow yet")
	}
	if !hasBookmark(bd.Check(WindowStats{Overflows: 4}), BookmarkOverflow) {
		t.Error("expected overflow bookmark")
	}
	if hasBookmark(bd.Check(WindowStats{Overflows: 4}), BookmarkOverflow) {
		t.Error("unchanged count should not fire again")
	}
}

func TestBookmarkDetector_SettledOnce(t *testing.T) {
	bd := NewBookmarkDetector(10, 3)
	quiet := WindowStats{Particles: 100, KineticEnergy: 1e-4}

	fired := 0
	for i := 0; i < 6; i++ {
		if hasBookmark(bd.Check(quiet), BookmarkSettled) {
			fired++
			if i != settledWindowCount-1 {
				t.Errorf("settled fired at window %d", i)
			}
		}
	}
	if fired != 1 {
		t.Errorf("settled fired %d times, want 1", fired)
	}

	// Motion re-arms the detector.
	bd.Check(WindowStats{Particles: 100, KineticEnergy: 1})
	fired = 0
	for i := 0; i < settledWindowCount; i++ {
		if hasBookmark(bd.Check(quiet), BookmarkSettled) {
			fired++
		}
	}
	if fired != 1 {
		t.Errorf("settled after motion fired %d times, want 1", fired)
	}
}
