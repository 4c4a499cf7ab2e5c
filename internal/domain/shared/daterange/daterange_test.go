package daterange

import (
	"errors"
	"testing"
	"time"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func TestParseDate(t *testing.T) {
	d := date(t, "2026-03-15")
	if d.Hour() != 0 || d.Location() != time.UTC {
		t.Fatalf("expected midnight UTC, got %v", d)
	}
	if _, err := ParseDate("15/03/2026"); !errors.Is(err, ErrBadDate) {
		t.Fatalf("expected ErrBadDate, got %v", err)
	}
	if _, err := ParseDate(""); !errors.Is(err, ErrBadDate) {
		t.Fatalf("expected ErrBadDate for empty input, got %v", err)
	}
}

func TestNewRejectsNonPositiveRanges(t *testing.T) {
	day := date(t, "2026-03-15")
	if _, err := New(day, day); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("zero-length range: expected ErrInvalidRange, got %v", err)
	}
	if _, err := New(day, AddDays(day, -1)); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("reversed range: expected ErrInvalidRange, got %v", err)
	}
}

func TestDayTruncatesWallClock(t *testing.T) {
	noon := time.Date(2026, 3, 15, 12, 34, 56, 0, time.FixedZone("X", 3600))
	got := Day(noon)
	want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("Day(%v) = %v, want %v", noon, got, want)
	}
}

func TestDays(t *testing.T) {
	r, err := New(date(t, "2026-03-15"), date(t, "2026-03-18"))
	if err != nil {
		t.Fatal(err)
	}
	if r.Days() != 3 {
		t.Fatalf("Days() = %d, want 3", r.Days())
	}
}

func TestOverlapsIsSymmetric(t *testing.T) {
	a, _ := New(date(t, "2026-03-10"), date(t, "2026-03-15"))
	b, _ := New(date(t, "2026-03-14"), date(t, "2026-03-20"))
	if !a.Overlaps(b) || !b.Overlaps(a) {
		t.Fatalf("expected symmetric overlap between %v and %v", a, b)
	}
}

func TestBackToBackRangesDoNotOverlap(t *testing.T) {
	a, _ := New(date(t, "2026-03-10"), date(t, "2026-03-15"))
	b, _ := New(date(t, "2026-03-15"), date(t, "2026-03-20"))
	if a.Overlaps(b) || b.Overlaps(a) {
		t.Fatalf("check-out day equal to next check-in must not overlap")
	}
}

func TestContainsDayExcludesCheckOut(t *testing.T) {
	r, _ := New(date(t, "2026-03-10"), date(t, "2026-03-15"))
	if !r.ContainsDay(date(t, "2026-03-10")) {
		t.Fatalf("check-in day must be contained")
	}
	if !r.ContainsDay(date(t, "2026-03-14")) {
		t.Fatalf("last occupied day must be contained")
	}
	if r.ContainsDay(date(t, "2026-03-15")) {
		t.Fatalf("check-out day must not be contained")
	}
}
