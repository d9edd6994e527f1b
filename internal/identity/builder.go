// Package identity merges the name-keyed NCC feed and the token-keyed
// lateness feed into one canonical entity per real-world driver.
package identity

import (
	"sort"

	"github.com/ercilio-oss/lastmile-dsp-italy/internal/logger"
	"github.com/ercilio-oss/lastmile-dsp-italy/internal/roster"
	"github.com/ercilio-oss/lastmile-dsp-italy/internal/types"
)

// BuildResult carries the canonical entity set plus audit counters for
// data-quality conditions absorbed during the merge.
type BuildResult struct {
	Entities []types.DriverEntity `json:"entities"`
	// NameCollisions counts name-keyed records that landed on a canonical
	// key already holding NCC data. Resolution is last-write-wins, which is
	// deterministic but not guaranteed semantically correct, so the count is
	// surfaced for audit instead of being dropped silently.
	NameCollisions int `json:"name_collisions"`
}

// Build keys every record to its canonical identity (token when the roster
// knows one, else the display name) and merges both feeds per key. A record
// with no counterpart in the other feed yields an entity whose other metric
// bucket is simply empty.
func Build(names []types.NameKeyedRecord, tokens []types.TokenKeyedRecord, tab *roster.Table) BuildResult {
	log := logger.WithComponent("identity")
	byKey := make(map[string]*types.DriverEntity, len(names)+len(tokens))
	collisions := 0

	for _, rec := range names {
		key := rec.Name
		if token, ok := tab.ReverseResolve(rec.Name); ok {
			key = token
		}
		ent, exists := byKey[key]
		if !exists {
			ent = &types.DriverEntity{Key: key}
			byKey[key] = ent
		}
		if len(ent.NCCWeekly) > 0 || ent.NCCTotal > 0 {
			collisions++
			log.WithField("key", key).WithField("name", rec.Name).
				Warn("duplicate name-keyed record for canonical key, keeping last")
		}
		ent.Name = rec.Name
		ent.HomeCity = rec.HomeCity
		ent.NCCTotal = rec.NCCTotal
		ent.NCCWeekly = rec.NCCWeekly
		ent.Stations = unionStations(ent.Stations, rec.Stations)
	}

	for _, rec := range tokens {
		ent, exists := byKey[rec.Token]
		if !exists {
			ent = &types.DriverEntity{Key: rec.Token}
			byKey[rec.Token] = ent
		}
		ent.Name = betterName(ent.Name, tab.Resolve(rec.Token), rec.Token)
		ent.LateTotal = rec.LateTotal
		ent.SevereTotal = rec.SevereTotal
		ent.LateWeekly = rec.LateWeekly
		ent.Stations = unionStations(ent.Stations, rec.Stations)
	}

	out := make([]types.DriverEntity, 0, len(byKey))
	for _, ent := range byKey {
		if ent.Name == "" {
			ent.Name = ent.Key
		}
		if ent.NCCWeekly == nil {
			ent.NCCWeekly = types.WeeklyBucket{}
		}
		if ent.LateWeekly == nil {
			ent.LateWeekly = types.WeeklyBucket{}
		}
		if len(ent.Stations) == 0 {
			log.WithField("key", ent.Key).Warn("canonical entity has no stations")
		}
		out = append(out, *ent)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })

	log.WithField("entities", len(out)).WithField("name_collisions", collisions).
		Info("canonical entities built")
	return BuildResult{Entities: out, NameCollisions: collisions}
}

// betterName prefers a human-readable name over a bare token or an
// "ID:" placeholder when both sides supplied one.
func betterName(current, resolved, token string) string {
	if current != "" && current != token && !roster.IsPlaceholder(current) {
		return current
	}
	if resolved != "" {
		return resolved
	}
	return current
}

func unionStations(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	for _, s := range a {
		seen[s] = true
	}
	for _, s := range b {
		seen[s] = true
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		if s != "" {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
