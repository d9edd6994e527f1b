package types

// TimeWindow is an inclusive [StartWeek, EndWeek] range of ordinal weeks,
// optionally constrained to a single year. Year 0 means all years.
type TimeWindow struct {
	StartWeek int `json:"start_week"`
	EndWeek   int `json:"end_week"`
	Year      int `json:"year,omitempty"`
}

// FullRange covers every representable week in every year.
func FullRange() TimeWindow {
	return TimeWindow{StartWeek: 1, EndWeek: 53}
}

// Contains reports whether the given year + ordinal week falls inside the
// window.
func (w TimeWindow) Contains(year, week int) bool {
	if w.Year != 0 && year != w.Year {
		return false
	}
	return week >= w.StartWeek && week <= w.EndWeek
}

// WithStart moves the start bound. If the moved bound crosses the end,
// both bounds collapse onto it; the window never becomes inverted.
func (w TimeWindow) WithStart(week int) TimeWindow {
	w.StartWeek = week
	if w.EndWeek < week {
		w.EndWeek = week
	}
	return w
}

// WithEnd moves the end bound, collapsing the start onto it when crossed.
func (w TimeWindow) WithEnd(week int) TimeWindow {
	w.EndWeek = week
	if w.StartWeek > week {
		w.StartWeek = week
	}
	return w
}

// WithYear switches the year constraint (0 clears it). Bounds are kept; an
// inverted pair cannot arise from a year change alone but is normalized
// anyway by collapsing onto the start.
func (w TimeWindow) WithYear(year int) TimeWindow {
	w.Year = year
	if w.StartWeek > w.EndWeek {
		w.EndWeek = w.StartWeek
	}
	return w
}
