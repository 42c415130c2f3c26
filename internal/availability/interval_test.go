package availability

import (
	"testing"
	"time"
)

func at(t *testing.T, hour, min int) time.Time {
	t.Helper()
	return time.Date(2026, 2, 16, hour, min, 0, 0, time.UTC)
}

func TestMerge_OverlappingAndTouching(t *testing.T) {
	got := Merge([]Interval{
		{Start: at(t, 13, 0), End: at(t, 15, 0)},
		{Start: at(t, 9, 0), End: at(t, 11, 0)},
		{Start: at(t, 10, 0), End: at(t, 12, 0)},
		{Start: at(t, 12, 0), End: at(t, 13, 0)},
	})
	if len(got) != 1 {
		t.Fatalf("expected 1 merged interval, got %d: %v", len(got), got)
	}
	if !got[0].Start.Equal(at(t, 9, 0)) || !got[0].End.Equal(at(t, 15, 0)) {
		t.Fatalf("expected 09:00-15:00, got %v", got[0])
	}
}

func TestMerge_DropsInvalid(t *testing.T) {
	got := Merge([]Interval{
		{Start: at(t, 10, 0), End: at(t, 10, 0)},
		{Start: at(t, 12, 0), End: at(t, 11, 0)},
	})
	if got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestSubtract_SplitsMiddle(t *testing.T) {
	base := []Interval{{Start: at(t, 9, 0), End: at(t, 17, 0)}}
	blocks := []Interval{{Start: at(t, 12, 0), End: at(t, 13, 0)}}

	got := Subtract(base, blocks)
	if len(got) != 2 {
		t.Fatalf("expected 2 intervals, got %d: %v", len(got), got)
	}
	if !got[0].End.Equal(at(t, 12, 0)) || !got[1].Start.Equal(at(t, 13, 0)) {
		t.Fatalf("expected split around 12:00-13:00, got %v", got)
	}
}

func TestSubtract_BlockCoversBase(t *testing.T) {
	base := []Interval{{Start: at(t, 9, 0), End: at(t, 11, 0)}}
	blocks := []Interval{{Start: at(t, 8, 0), End: at(t, 12, 0)}}

	if got := Subtract(base, blocks); len(got) != 0 {
		t.Fatalf("expected no intervals, got %v", got)
	}
}

func TestSubtract_EdgesOnly(t *testing.T) {
	base := []Interval{{Start: at(t, 9, 0), End: at(t, 17, 0)}}
	blocks := []Interval{
		{Start: at(t, 8, 0), End: at(t, 10, 0)},
		{Start: at(t, 16, 0), End: at(t, 18, 0)},
	}

	got := Subtract(base, blocks)
	if len(got) != 1 {
		t.Fatalf("expected 1 interval, got %v", got)
	}
	if !got[0].Start.Equal(at(t, 10, 0)) || !got[0].End.Equal(at(t, 16, 0)) {
		t.Fatalf("expected 10:00-16:00, got %v", got[0])
	}
}

func TestSubtract_NoBlocks(t *testing.T) {
	base := []Interval{{Start: at(t, 9, 0), End: at(t, 17, 0)}}
	got := Subtract(base, nil)
	if len(got) != 1 || !got[0].Start.Equal(at(t, 9, 0)) {
		t.Fatalf("expected base unchanged, got %v", got)
	}
}
