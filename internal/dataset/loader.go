package dataset

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ercilio-oss/lastmile-dsp-italy/internal/logger"
	"github.com/ercilio-oss/lastmile-dsp-italy/internal/types"
)

// Snapshot is one immutable load of the three raw feeds. Everything
// downstream recomputes from it; it is never mutated after load.
type Snapshot struct {
	Names   []types.NameKeyedRecord
	Tokens  []types.TokenKeyedRecord
	Defects []types.DefectDetail
	Weeks   []string // sorted distinct week keys seen in either feed
}

var weekHeader = regexp.MustCompile(`^\d{4}-W\d{1,2}$`)

// LoadWorkbook reads the master workbook: one sheet per feed, located by
// sheet-name heuristics with positional fallback. Malformed structure (a
// lateness sheet with no week columns, or a late count with no week keys at
// all) is reported here rather than surfacing at query time.
func LoadWorkbook(path string) (*Snapshot, error) {
	log := logger.WithComponent("dataset").WithField("path", path)
	log.Info("opening feed workbook")

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	nccSheet := pickSheet(sheets, 0, "ncc", "scorecard")
	lateSheet := pickSheet(sheets, 1, "late", "puntual")
	defectSheet := pickSheet(sheets, 2, "defect", "detail", "drill")

	snap := &Snapshot{}
	weeks := map[string]bool{}

	if nccSheet != "" {
		rows, err := f.GetRows(nccSheet)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", nccSheet, err)
		}
		snap.Names, err = parseNameRows(rows, weeks)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", nccSheet, err)
		}
	}
	if lateSheet != "" {
		rows, err := f.GetRows(lateSheet)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", lateSheet, err)
		}
		snap.Tokens, err = parseTokenRows(rows, weeks)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", lateSheet, err)
		}
	}
	if defectSheet != "" {
		rows, err := f.GetRows(defectSheet)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", defectSheet, err)
		}
		snap.Defects = parseDefectRows(rows)
	}

	for w := range weeks {
		snap.Weeks = append(snap.Weeks, w)
	}
	sort.Strings(snap.Weeks)

	log.WithFields(map[string]interface{}{
		"ncc_rows":    len(snap.Names),
		"late_rows":   len(snap.Tokens),
		"defect_rows": len(snap.Defects),
		"weeks":       len(snap.Weeks),
	}).Info("feed workbook loaded")
	return snap, nil
}

// pickSheet finds the first sheet whose lowercased name contains any hint,
// falling back to position when nothing matches.
func pickSheet(sheets []string, fallbackIdx int, hints ...string) string {
	for _, s := range sheets {
		l := strings.ToLower(s)
		for _, h := range hints {
			if strings.Contains(l, h) {
				return s
			}
		}
	}
	if fallbackIdx < len(sheets) {
		return sheets[fallbackIdx]
	}
	return ""
}

// weekColumns maps column index to canonical week key for headers matching
// the YYYY-Www pattern.
func weekColumns(header []string) map[int]string {
	out := map[int]string{}
	for i, h := range header {
		h = strings.TrimSpace(h)
		if !weekHeader.MatchString(h) {
			continue
		}
		year, week, ok := types.ParseWeekKey(h)
		if !ok {
			continue
		}
		out[i] = types.WeekKey(year, week)
	}
	return out
}

func parseNameRows(rows [][]string, weeks map[string]bool) ([]types.NameKeyedRecord, error) {
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}
	header := rows[0]
	nameIdx, cityIdx, stationIdx, totalIdx := -1, -1, -1, -1
	for i, h := range header {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case nameIdx == -1 && (strings.Contains(l, "driver") || strings.Contains(l, "name")):
			nameIdx = i
		case cityIdx == -1 && strings.Contains(l, "city"):
			cityIdx = i
		case stationIdx == -1 && strings.Contains(l, "station"):
			stationIdx = i
		case totalIdx == -1 && strings.Contains(l, "total"):
			totalIdx = i
		}
	}
	if nameIdx == -1 {
		return nil, fmt.Errorf("no driver name column")
	}
	weekCols := weekColumns(header)
	if len(weekCols) == 0 {
		return nil, fmt.Errorf("no week columns")
	}

	var out []types.NameKeyedRecord
	for i, r := range rows {
		if i == 0 {
			continue
		}
		rec := types.NameKeyedRecord{NCCWeekly: types.WeeklyBucket{}}
		rec.Name = cell(r, nameIdx)
		if rec.Name == "" {
			continue
		}
		rec.HomeCity = cell(r, cityIdx)
		rec.Stations = splitStations(cell(r, stationIdx))
		rec.NCCTotal = cellInt(r, totalIdx)
		for col, week := range weekCols {
			if n := cellInt(r, col); n > 0 {
				rec.NCCWeekly[week] = n
				weeks[week] = true
			}
		}
		if rec.NCCTotal == 0 {
			for _, n := range rec.NCCWeekly {
				rec.NCCTotal += n
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseTokenRows(rows [][]string, weeks map[string]bool) ([]types.TokenKeyedRecord, error) {
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}
	header := rows[0]
	tokenIdx, stationIdx, lateIdx, severeIdx := -1, -1, -1, -1
	for i, h := range header {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case tokenIdx == -1 && (strings.Contains(l, "token") || strings.Contains(l, "transporter") || strings.Contains(l, "id")):
			tokenIdx = i
		case stationIdx == -1 && strings.Contains(l, "station"):
			stationIdx = i
		case severeIdx == -1 && (strings.Contains(l, "15") || strings.Contains(l, "severe")):
			severeIdx = i
		case lateIdx == -1 && strings.Contains(l, "late"):
			lateIdx = i
		}
	}
	if tokenIdx == -1 {
		return nil, fmt.Errorf("no token column")
	}
	weekCols := weekColumns(header)
	if len(weekCols) == 0 {
		return nil, fmt.Errorf("no week columns")
	}

	var out []types.TokenKeyedRecord
	for i, r := range rows {
		if i == 0 {
			continue
		}
		rec := types.TokenKeyedRecord{LateWeekly: types.WeeklyBucket{}}
		rec.Token = cell(r, tokenIdx)
		if rec.Token == "" {
			continue
		}
		rec.Stations = splitStations(cell(r, stationIdx))
		rec.LateTotal = cellInt(r, lateIdx)
		rec.SevereTotal = cellInt(r, severeIdx)
		for col, week := range weekCols {
			if n := cellInt(r, col); n > 0 {
				rec.LateWeekly[week] = n
				weeks[week] = true
			}
		}
		if rec.LateTotal == 0 {
			for _, n := range rec.LateWeekly {
				rec.LateTotal += n
			}
		}
		if rec.LateTotal > 0 && len(rec.LateWeekly) == 0 {
			return nil, fmt.Errorf("token %s reports %d late deliveries but no week keys", rec.Token, rec.LateTotal)
		}
		if rec.SevereTotal > rec.LateTotal {
			return nil, fmt.Errorf("token %s has severe count %d above late total %d", rec.Token, rec.SevereTotal, rec.LateTotal)
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseDefectRows(rows [][]string) []types.DefectDetail {
	if len(rows) <= 1 {
		return nil
	}
	header := rows[0]
	typeIdx, attrIdx, siteIdx, driverIdx, countIdx := -1, -1, -1, -1, -1
	for i, h := range header {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case typeIdx == -1 && strings.Contains(l, "type"):
			typeIdx = i
		case attrIdx == -1 && (strings.Contains(l, "attribution") || strings.Contains(l, "cause")):
			attrIdx = i
		case siteIdx == -1 && (strings.Contains(l, "site") || strings.Contains(l, "station")):
			siteIdx = i
		case driverIdx == -1 && (strings.Contains(l, "driver") || strings.Contains(l, "name")):
			driverIdx = i
		case countIdx == -1 && strings.Contains(l, "count"):
			countIdx = i
		}
	}

	var out []types.DefectDetail
	for i, r := range rows {
		if i == 0 {
			continue
		}
		d := types.DefectDetail{
			Type:        cell(r, typeIdx),
			Attribution: cell(r, attrIdx),
			Site:        cell(r, siteIdx),
			Driver:      cell(r, driverIdx),
			Count:       cellInt(r, countIdx),
		}
		if d.Type == "" || d.Count <= 0 {
			continue
		}
		out = append(out, d)
	}
	return out
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func cellInt(row []string, idx int) int {
	n, _ := strconv.Atoi(cell(row, idx))
	return n
}

func splitStations(raw string) []string {
	if raw == "" {
		return nil
	}
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ';' || r == ',' || r == ' '
	})
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, strings.ToUpper(f))
		}
	}
	return out
}
