// Package geo builds per-site defect sums for the map layer, with a
// max-based denominator for proportional marker scaling.
package geo

import (
	"sort"

	"github.com/ercilio-oss/lastmile-dsp-italy/internal/types"
)

// SiteAggregate is one site's counts, restricted to the active defect types.
type SiteAggregate struct {
	Site   string         `json:"site"`
	ByType map[string]int `json:"by_type"`
	Total  int            `json:"total"`
}

// Result is the full per-site aggregation.
type Result struct {
	Sites []SiteAggregate `json:"sites"`
	// MaxTotal is the largest per-site total under the active filter. Never
	// zero: consumers divide by it for radius/bar scaling, so an all-zero
	// dataset still yields a denominator of 1.
	MaxTotal int `json:"max_total"`
}

// Aggregate sums defect detail rows per site, counting only the active
// defect types. An empty activeTypes set counts every type.
func Aggregate(rows []types.DefectDetail, activeTypes []string) Result {
	active := make(map[string]bool, len(activeTypes))
	for _, t := range activeTypes {
		active[t] = true
	}

	bySite := make(map[string]*SiteAggregate)
	for _, r := range rows {
		if r.Site == "" {
			continue
		}
		if len(active) > 0 && !active[r.Type] {
			continue
		}
		agg, ok := bySite[r.Site]
		if !ok {
			agg = &SiteAggregate{Site: r.Site, ByType: make(map[string]int)}
			bySite[r.Site] = agg
		}
		agg.ByType[r.Type] += r.Count
		agg.Total += r.Count
	}

	sites := make([]SiteAggregate, 0, len(bySite))
	maxTotal := 0
	for _, agg := range bySite {
		if agg.Total > maxTotal {
			maxTotal = agg.Total
		}
		sites = append(sites, *agg)
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i].Site < sites[j].Site })

	if maxTotal == 0 {
		maxTotal = 1
	}
	return Result{Sites: sites, MaxTotal: maxTotal}
}
