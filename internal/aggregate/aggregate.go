// Package aggregate recomputes per-driver and per-station defect sums over
// the currently selected time window. Everything here is a pure function of
// its inputs so the serving layer can rerun it on every filter change.
package aggregate

import (
	"sort"

	"github.com/ercilio-oss/lastmile-dsp-italy/internal/severity"
	"github.com/ercilio-oss/lastmile-dsp-italy/internal/types"
)

// Options are the caller-supplied filters for one aggregation run.
type Options struct {
	Window      types.TimeWindow
	Stations    []string // empty = all stations
	MinCombined int      // drivers below this combined total are dropped
	Thresholds  severity.Thresholds
}

// DriverRow is one driver's windowed aggregate, severity-tagged.
type DriverRow struct {
	Key      string        `json:"key"`
	Name     string        `json:"name"`
	HomeCity string        `json:"home_city,omitempty"`
	Stations []string      `json:"stations"`
	NCC      int           `json:"ncc"`
	Late     int           `json:"late"`
	Severe   int           `json:"severe"`
	Combined int           `json:"combined"`
	Tier     severity.Tier `json:"tier"`
}

// StationRow sums the same metrics across every driver of one station.
type StationRow struct {
	Station  string `json:"station"`
	Drivers  int    `json:"drivers"`
	NCC      int    `json:"ncc"`
	Late     int    `json:"late"`
	Severe   int    `json:"severe"`
	Combined int    `json:"combined"`
}

// Result is one deterministic aggregation pass.
type Result struct {
	Drivers  []DriverRow  `json:"drivers"`
	Stations []StationRow `json:"stations"`
}

// Run filters and sums the canonical entity set. Per-week severe counts are
// the apportioned estimates from the entity, so windowed severe sums carry
// the same approximation. Output ordering is total-descending with canonical
// key as the tie break, making repeated runs bit-identical.
func Run(entities []types.DriverEntity, opts Options) Result {
	perStation := make(map[string]*StationRow)
	var drivers []DriverRow

	for _, ent := range entities {
		if !ent.OperatesFrom(opts.Stations) {
			continue
		}
		ncc := ent.NCCWeekly.Sum(opts.Window)
		late := ent.LateWeekly.Sum(opts.Window)
		severe := 0
		for week := range ent.LateWeekly {
			year, wk, ok := types.ParseWeekKey(week)
			if !ok || !opts.Window.Contains(year, wk) {
				continue
			}
			severe += ent.SevereEstimate(week)
		}
		combined := ncc + late + severe

		for _, station := range ent.Stations {
			if !stationActive(station, opts.Stations) {
				continue
			}
			row, ok := perStation[station]
			if !ok {
				row = &StationRow{Station: station}
				perStation[station] = row
			}
			row.Drivers++
			row.NCC += ncc
			row.Late += late
			row.Severe += severe
			row.Combined += combined
		}

		if combined < opts.MinCombined {
			continue
		}
		drivers = append(drivers, DriverRow{
			Key:      ent.Key,
			Name:     ent.Name,
			HomeCity: ent.HomeCity,
			Stations: ent.Stations,
			NCC:      ncc,
			Late:     late,
			Severe:   severe,
			Combined: combined,
			Tier:     severity.Classify(ncc, late, severe, opts.Thresholds),
		})
	}

	sort.Slice(drivers, func(i, j int) bool {
		if drivers[i].Combined != drivers[j].Combined {
			return drivers[i].Combined > drivers[j].Combined
		}
		return drivers[i].Key < drivers[j].Key
	})

	stations := make([]StationRow, 0, len(perStation))
	for _, row := range perStation {
		stations = append(stations, *row)
	}
	sort.Slice(stations, func(i, j int) bool {
		if stations[i].Combined != stations[j].Combined {
			return stations[i].Combined > stations[j].Combined
		}
		return stations[i].Station < stations[j].Station
	})

	return Result{Drivers: drivers, Stations: stations}
}

func stationActive(station string, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, s := range filter {
		if s == station {
			return true
		}
	}
	return false
}
