package types

import (
	"math"
	"testing"
)

func TestParseWeekKey(t *testing.T) {
	year, week, ok := ParseWeekKey("2026-W7")
	if !ok || year != 2026 || week != 7 {
		t.Fatalf("expected 2026/7, got %d/%d ok=%v", year, week, ok)
	}
	for _, bad := range []string{"", "2026", "W7", "2026-W0", "2026-W54", "late"} {
		if _, _, ok := ParseWeekKey(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
	if WeekKey(2026, 7) != "2026-W7" {
		t.Fatalf("round trip mismatch: %s", WeekKey(2026, 7))
	}
}

func TestBucketSumRespectsWindow(t *testing.T) {
	b := WeeklyBucket{
		"2025-W50": 3,
		"2026-W1":  4,
		"2026-W2":  5,
		"2026-W9":  7,
	}
	w := TimeWindow{StartWeek: 1, EndWeek: 2, Year: 2026}
	if got := b.Sum(w); got != 9 {
		t.Fatalf("expected windowed sum 9, got %d", got)
	}
	if got := b.Sum(FullRange()); got != 19 {
		t.Fatalf("expected full sum 19, got %d", got)
	}
}

func TestSevereEstimateApportionment(t *testing.T) {
	d := DriverEntity{
		LateTotal:   61,
		SevereTotal: 25,
		LateWeekly:  WeeklyBucket{"2026-W3": 12},
	}
	if got := d.SevereEstimate("2026-W3"); got != 5 {
		t.Fatalf("expected apportioned severe 5, got %d", got)
	}
}

func TestSevereEstimateSumsWithinRoundingSlack(t *testing.T) {
	d := DriverEntity{
		LateTotal:   61,
		SevereTotal: 25,
		LateWeekly: WeeklyBucket{
			"2026-W1": 12,
			"2026-W2": 9,
			"2026-W3": 17,
			"2026-W4": 23,
		},
	}
	sum := 0
	for _, week := range d.LateWeekly.Weeks() {
		sum += d.SevereEstimate(week)
	}
	if math.Abs(float64(sum-d.SevereTotal)) > 1 {
		t.Fatalf("apportioned sum %d strays more than 1 from severe total %d", sum, d.SevereTotal)
	}
}

func TestSevereRatioZeroWhenNoLates(t *testing.T) {
	d := DriverEntity{SevereTotal: 0, LateTotal: 0}
	if d.SevereRatio() != 0 {
		t.Fatalf("expected ratio 0, got %f", d.SevereRatio())
	}
	if d.SevereEstimate("2026-W1") != 0 {
		t.Fatalf("expected estimate 0 for empty bucket")
	}
}

func TestOperatesFrom(t *testing.T) {
	d := DriverEntity{Stations: []string{"MXP5", "MXP6"}}
	if !d.OperatesFrom(nil) {
		t.Fatalf("empty filter should match every driver")
	}
	if !d.OperatesFrom([]string{"BGY1", "MXP6"}) {
		t.Fatalf("expected intersection with MXP6")
	}
	if d.OperatesFrom([]string{"BGY1"}) {
		t.Fatalf("expected no intersection with BGY1")
	}
}
