// Package severity derives a risk tier from one driver's windowed defect
// aggregates. Pure function, no state.
package severity

// Tier is the classification bucket shown against a driver.
type Tier string

const (
	Low      Tier = "LOW"
	Medium   Tier = "MEDIUM"
	High     Tier = "HIGH"
	Critical Tier = "CRITICAL"
)

// Thresholds are the tier cut-offs. Named here rather than scattered at call
// sites so operators can tune them from config.
type Thresholds struct {
	CriticalSevere int `yaml:"critical_severe" json:"critical_severe"`
	HighCombined   int `yaml:"high_combined" json:"high_combined"`
	MediumCombined int `yaml:"medium_combined" json:"medium_combined"`
}

// DefaultThresholds returns the operational defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CriticalSevere: 15,
		HighCombined:   40,
		MediumCombined: 20,
	}
}

// Classify maps windowed (ncc, late, severe) sums to a tier. Checks run in
// severity order and the first match wins, so a driver with severe=16 is
// CRITICAL regardless of how small ncc+late is.
func Classify(ncc, late, severe int, t Thresholds) Tier {
	switch {
	case severe >= t.CriticalSevere:
		return Critical
	case ncc+late >= t.HighCombined:
		return High
	case ncc+late >= t.MediumCombined:
		return Medium
	default:
		return Low
	}
}

// Rank orders tiers for comparisons (LOW=0 .. CRITICAL=3).
func Rank(t Tier) int {
	switch t {
	case Critical:
		return 3
	case High:
		return 2
	case Medium:
		return 1
	default:
		return 0
	}
}
