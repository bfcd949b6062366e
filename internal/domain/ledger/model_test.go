package ledger

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2026, 10, 16, 21, 0, 0, 0, time.UTC)

func TestLedger_AttendanceIsIdempotentPerMatchDate(t *testing.T) {
	l := New("p1")

	l, err := l.Apply(NewAttendanceEntry("2026-10-16", testNow), testNow)
	if err != nil {
		t.Fatalf("apply attendance: %v", err)
	}

	again, err := l.Apply(NewAttendanceEntry("2026-10-16", testNow.Add(time.Minute)), testNow)
	if !errors.Is(err, ErrAlreadyApplied) {
		t.Fatalf("expected ErrAlreadyApplied, got %v", err)
	}
	if len(again.History) != 1 || again.TotalPoints != AttendancePoints {
		t.Fatalf("expected single entry worth %d, got %d entries total=%d", AttendancePoints, len(again.History), again.TotalPoints)
	}

	l, err = l.Apply(NewAttendanceEntry("2026-10-23", testNow), testNow)
	if err != nil {
		t.Fatalf("apply next week attendance: %v", err)
	}
	if l.TotalPoints != 2*AttendancePoints {
		t.Fatalf("expected total %d, got %d", 2*AttendancePoints, l.TotalPoints)
	}
}

func TestLedger_AdjudicatedPointsAlwaysAppend(t *testing.T) {
	l := New("p1")
	for i := 0; i < 2; i++ {
		e, err := NewAdjudicatedEntry(3, "great save", "admin", testNow)
		if err != nil {
			t.Fatalf("new adjudicated entry: %v", err)
		}
		l, err = l.Apply(e, testNow)
		if err != nil {
			t.Fatalf("apply adjudicated: %v", err)
		}
	}

	if len(l.History) != 2 || l.TotalPoints != 6 {
		t.Fatalf("expected 2 entries totalling 6, got %d entries total=%d", len(l.History), l.TotalPoints)
	}
}

func TestNewAdjudicatedEntry_Range(t *testing.T) {
	for _, pts := range []int{0, 6, -1} {
		if _, err := NewAdjudicatedEntry(pts, "x", "admin", testNow); !errors.Is(err, ErrPointsOutOfRange) {
			t.Fatalf("points %d: expected ErrPointsOutOfRange, got %v", pts, err)
		}
	}
	if _, err := NewAdjudicatedEntry(2, "   ", "admin", testNow); !errors.Is(err, ErrReasonRequired) {
		t.Fatalf("expected ErrReasonRequired, got %v", err)
	}
}

func TestLedger_MOTMAndStatsCarryNoPoints(t *testing.T) {
	l := New("p1")
	l, _ = l.Apply(NewAttendanceEntry("2026-10-16", testNow), testNow)
	l, err := l.Apply(NewMOTMEntry("2026-10-16", 4, testNow), testNow)
	if err != nil {
		t.Fatalf("apply motm: %v", err)
	}
	stats, err := NewStatsEntry("sub-1", "2026-10-16", 2, 1, "admin", testNow)
	if err != nil {
		t.Fatalf("new stats entry: %v", err)
	}
	l, err = l.Apply(stats, testNow)
	if err != nil {
		t.Fatalf("apply stats: %v", err)
	}

	if l.TotalPoints != AttendancePoints || l.MOTMAwards != 1 || l.Goals != 2 || l.Assists != 1 {
		t.Fatalf("unexpected totals: %+v", l)
	}
	if err := l.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	if _, err := l.Apply(NewMOTMEntry("2026-10-16", 5, testNow), testNow); !errors.Is(err, ErrAlreadyApplied) {
		t.Fatalf("expected second motm for same date to be rejected, got %v", err)
	}
	if _, err := l.Apply(stats, testNow); !errors.Is(err, ErrAlreadyApplied) {
		t.Fatalf("expected duplicate submission to be rejected, got %v", err)
	}
}

func TestLedger_ValidateDetectsMismatch(t *testing.T) {
	l, _ := New("p1").Apply(NewAttendanceEntry("2026-10-16", testNow), testNow)
	l.TotalPoints = 10
	if err := l.Validate(); !errors.Is(err, ErrTotalMismatch) {
		t.Fatalf("expected ErrTotalMismatch, got %v", err)
	}
}

func TestLedger_ApplyDoesNotAliasHistory(t *testing.T) {
	base, _ := New("p1").Apply(NewAttendanceEntry("2026-10-16", testNow), testNow)
	a, _ := NewManualEntry(5, "bonus", "admin", testNow)
	b, _ := NewManualEntry(-1, "late", "admin", testNow)

	left, _ := base.Apply(a, testNow)
	right, _ := base.Apply(b, testNow)

	if left.History[1].Points != 5 || right.History[1].Points != -1 {
		t.Fatalf("branches share history backing array")
	}
}

func TestLedger_ManualAttendanceHasSeparateKey(t *testing.T) {
	l, _ := New("p1").Apply(NewAttendanceEntry("2026-10-16", testNow), testNow)

	l, err := l.Apply(NewManualAttendanceEntry("2026-10-16", "admin", testNow), testNow)
	if err != nil {
		t.Fatalf("apply manual attendance: %v", err)
	}
	if _, err := l.Apply(NewManualAttendanceEntry("2026-10-16", "admin", testNow), testNow); !errors.Is(err, ErrAlreadyApplied) {
		t.Fatalf("expected repeated manual attendance to be rejected, got %v", err)
	}
	if l.TotalPoints != 2*AttendancePoints {
		t.Fatalf("expected %d, got %d", 2*AttendancePoints, l.TotalPoints)
	}
}
