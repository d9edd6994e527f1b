// Package drilldown models the four-level defect exploration: defect type,
// attribution (root cause), site, driver. Selection is an immutable value
// with pure transitions; the serving layer threads it through instead of
// holding ambient state.
package drilldown

import (
	"sort"

	"github.com/ercilio-oss/lastmile-dsp-italy/internal/types"
)

// Selection holds the active choice per level, "" meaning unset. A level can
// only be set when every level above it is set.
type Selection struct {
	DefectType  string `json:"defect_type,omitempty"`
	Attribution string `json:"attribution,omitempty"`
	Site        string `json:"site,omitempty"`
	Driver      string `json:"driver,omitempty"`
}

// SelectDefectType sets the top level. Re-selecting the current value
// toggles everything off; a new value clears all lower levels.
func (s Selection) SelectDefectType(t string) Selection {
	if t == s.DefectType {
		return Selection{}
	}
	return Selection{DefectType: t}
}

// SelectAttribution sets level two. A no-op unless a defect type is set.
func (s Selection) SelectAttribution(a string) Selection {
	if s.DefectType == "" {
		return s
	}
	if a == s.Attribution {
		return Selection{DefectType: s.DefectType}
	}
	return Selection{DefectType: s.DefectType, Attribution: a}
}

// SelectSite sets level three. A no-op unless an attribution is set.
func (s Selection) SelectSite(site string) Selection {
	if s.Attribution == "" {
		return s
	}
	if site == s.Site {
		return Selection{DefectType: s.DefectType, Attribution: s.Attribution}
	}
	return Selection{DefectType: s.DefectType, Attribution: s.Attribution, Site: site}
}

// SelectDriver sets the leaf level. A no-op unless a site is set.
func (s Selection) SelectDriver(d string) Selection {
	if s.Site == "" {
		return s
	}
	if d == s.Driver {
		s.Driver = ""
		return s
	}
	s.Driver = d
	return s
}

// Reset clears every level.
func (s Selection) Reset() Selection {
	return Selection{}
}

// Valid reports whether every set level has all its ancestors set.
func (s Selection) Valid() bool {
	if s.Attribution != "" && s.DefectType == "" {
		return false
	}
	if s.Site != "" && s.Attribution == "" {
		return false
	}
	if s.Driver != "" && s.Site == "" {
		return false
	}
	return true
}

// Index answers availability queries over the defect detail rows. Options at
// each level are recomputed from the rows on demand, never cached, so a
// stale ancestor selection cannot surface dangling choices.
type Index struct {
	rows []types.DefectDetail
}

// NewIndex wraps the loaded defect detail rows. Rows with a non-positive
// count carry no information and are dropped.
func NewIndex(rows []types.DefectDetail) *Index {
	kept := make([]types.DefectDetail, 0, len(rows))
	for _, r := range rows {
		if r.Count > 0 {
			kept = append(kept, r)
		}
	}
	return &Index{rows: kept}
}

// Options lists, per level, the choices with a non-zero count under the
// ancestor selection.
type Options struct {
	DefectTypes  []string `json:"defect_types"`
	Attributions []string `json:"attributions"`
	Sites        []string `json:"sites"`
	Drivers      []string `json:"drivers"`
}

// OptionsFor computes the available choices at every level reachable from
// the given selection. Levels whose ancestors are unset come back empty.
func (ix *Index) OptionsFor(sel Selection) Options {
	out := Options{DefectTypes: ix.distinct(func(r types.DefectDetail) (string, bool) {
		return r.Type, true
	})}
	if sel.DefectType != "" {
		out.Attributions = ix.distinct(func(r types.DefectDetail) (string, bool) {
			return r.Attribution, r.Type == sel.DefectType
		})
	}
	if sel.Attribution != "" {
		out.Sites = ix.distinct(func(r types.DefectDetail) (string, bool) {
			return r.Site, r.Type == sel.DefectType && r.Attribution == sel.Attribution
		})
	}
	if sel.Site != "" {
		out.Drivers = ix.distinct(func(r types.DefectDetail) (string, bool) {
			return r.Driver, r.Type == sel.DefectType && r.Attribution == sel.Attribution && r.Site == sel.Site
		})
	}
	return out
}

// Count sums the defect counts matching the selection's set levels.
func (ix *Index) Count(sel Selection) int {
	total := 0
	for _, r := range ix.rows {
		if sel.DefectType != "" && r.Type != sel.DefectType {
			continue
		}
		if sel.Attribution != "" && r.Attribution != sel.Attribution {
			continue
		}
		if sel.Site != "" && r.Site != sel.Site {
			continue
		}
		if sel.Driver != "" && r.Driver != sel.Driver {
			continue
		}
		total += r.Count
	}
	return total
}

func (ix *Index) distinct(pick func(types.DefectDetail) (string, bool)) []string {
	seen := make(map[string]bool)
	for _, r := range ix.rows {
		if v, ok := pick(r); ok && v != "" {
			seen[v] = true
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
