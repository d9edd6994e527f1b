package severity

import "testing"

func TestTierBoundaries(t *testing.T) {
	th := DefaultThresholds()
	cases := []struct {
		ncc, late, severe int
		want              Tier
	}{
		{0, 0, 0, Low},
		{7, 0, 0, Low},
		{10, 9, 0, Low},
		{10, 10, 0, Medium},
		{20, 19, 0, Medium},
		{20, 20, 0, High},
		{100, 100, 14, High},
		{0, 0, 15, Critical},
		{5, 0, 16, Critical},
	}
	for _, c := range cases {
		if got := Classify(c.ncc, c.late, c.severe, th); got != c.want {
			t.Fatalf("classify(%d,%d,%d) = %s, want %s", c.ncc, c.late, c.severe, got, c.want)
		}
	}
}

func TestSevereWinsOverLowCombined(t *testing.T) {
	th := DefaultThresholds()
	if got := Classify(5, 0, 16, th); got != Critical {
		t.Fatalf("severe check must be evaluated first, got %s", got)
	}
}

func TestMonotonicInEachInput(t *testing.T) {
	th := DefaultThresholds()
	base := [][3]int{{0, 0, 0}, {10, 5, 3}, {19, 20, 14}, {30, 30, 20}}
	for _, b := range base {
		before := Rank(Classify(b[0], b[1], b[2], th))
		for axis := 0; axis < 3; axis++ {
			bumped := b
			bumped[axis]++
			after := Rank(Classify(bumped[0], bumped[1], bumped[2], th))
			if after < before {
				t.Fatalf("raising input %d of %v lowered tier %d -> %d", axis, b, before, after)
			}
		}
	}
}

func TestOverriddenThresholds(t *testing.T) {
	th := Thresholds{CriticalSevere: 2, HighCombined: 6, MediumCombined: 3}
	if got := Classify(0, 0, 2, th); got != Critical {
		t.Fatalf("custom critical threshold ignored, got %s", got)
	}
	if got := Classify(2, 1, 0, th); got != Medium {
		t.Fatalf("custom medium threshold ignored, got %s", got)
	}
}
