package types

import (
	"fmt"
	"math"
	"sort"
)

// WeeklyBucket maps a week key ("2026-W7") to a non-negative defect count.
type WeeklyBucket map[string]int

// ParseWeekKey splits a "2026-W7" style key into year and ordinal week.
func ParseWeekKey(key string) (year, week int, ok bool) {
	n, err := fmt.Sscanf(key, "%d-W%d", &year, &week)
	if err != nil || n != 2 || year <= 0 || week < 1 || week > 53 {
		return 0, 0, false
	}
	return year, week, true
}

// WeekKey formats a year + ordinal week pair as a bucket key.
func WeekKey(year, week int) string {
	return fmt.Sprintf("%d-W%d", year, week)
}

// Sum adds up the bucket values for weeks inside the window.
func (b WeeklyBucket) Sum(w TimeWindow) int {
	total := 0
	for key, n := range b {
		year, week, ok := ParseWeekKey(key)
		if !ok {
			continue
		}
		if w.Contains(year, week) {
			total += n
		}
	}
	return total
}

// Weeks returns the bucket's week keys in sorted order.
func (b WeeklyBucket) Weeks() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NameKeyedRecord is one row of the NCC scorecard feed. Keyed by display
// name, which is known to carry duplicates with spelling variations.
type NameKeyedRecord struct {
	Name      string       `json:"name"`
	HomeCity  string       `json:"home_city,omitempty"`
	Stations  []string     `json:"stations"`
	NCCTotal  int          `json:"ncc_total"`
	NCCWeekly WeeklyBucket `json:"ncc_weekly"`
}

// TokenKeyedRecord is one row of the lateness feed, keyed by the carrier's
// opaque tracking token.
type TokenKeyedRecord struct {
	Token       string       `json:"token"`
	Stations    []string     `json:"stations"`
	LateTotal   int          `json:"late_total"`
	SevereTotal int          `json:"severe_total"` // deliveries >15 min late
	LateWeekly  WeeklyBucket `json:"late_weekly"`
}

// DriverEntity is the merged unit of analysis: one entry per real-world
// driver, reconciled across both feeds. Built once per data load, immutable.
type DriverEntity struct {
	Key         string       `json:"key"` // token when known, else display name
	Name        string       `json:"name"`
	HomeCity    string       `json:"home_city,omitempty"`
	Stations    []string     `json:"stations"` // sorted union from both feeds
	NCCTotal    int          `json:"ncc_total"`
	LateTotal   int          `json:"late_total"`
	SevereTotal int          `json:"severe_total"`
	NCCWeekly   WeeklyBucket `json:"ncc_weekly"`
	LateWeekly  WeeklyBucket `json:"late_weekly"`
}

// SevereRatio is the share of the driver's late deliveries classified as
// severe (>15 min). Zero when the driver has no late deliveries.
func (d DriverEntity) SevereRatio() float64 {
	if d.LateTotal == 0 {
		return 0
	}
	return float64(d.SevereTotal) / float64(d.LateTotal)
}

// SevereEstimate apportions the driver's overall severe ratio onto one
// week's late count, rounded to nearest. The source feed only reports severe
// counts as an overall total, so per-week severe numbers are an estimate
// consistent with the aggregate ratio, not ground truth.
func (d DriverEntity) SevereEstimate(week string) int {
	return int(math.Round(float64(d.LateWeekly[week]) * d.SevereRatio()))
}

// OperatesFrom reports whether the driver's station set intersects the
// given filter. An empty filter matches every driver.
func (d DriverEntity) OperatesFrom(filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, want := range filter {
		for _, s := range d.Stations {
			if s == want {
				return true
			}
		}
	}
	return false
}

// DefectDetail is one row of the defect drill-down feed: a count for a
// (defect type, attribution, site, driver) combination.
type DefectDetail struct {
	Type        string `json:"type"`
	Attribution string `json:"attribution"`
	Site        string `json:"site"`
	Driver      string `json:"driver"`
	Count       int    `json:"count"`
}
