package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/ercilio-oss/lastmile-dsp-italy/internal/drilldown"
)

func writeFixtures(t *testing.T) (feedPath, rosterPath string) {
	t.Helper()
	dir := t.TempDir()

	rosterPath = filepath.Join(dir, "roster.yaml")
	roster := "drivers:\n  - name: \"Palma, Maicol\"\n    token: A2X9KQ41LMNOP\n"
	if err := os.WriteFile(rosterPath, []byte(roster), 0o644); err != nil {
		t.Fatalf("write roster: %v", err)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", "NCC"); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	rows := [][]interface{}{
		{"Driver", "City", "Stations", "NCC Total", "2026-W1"},
		{"Palma, Maicol", "Bergamo", "MXP5", 7, 7},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("NCC", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if _, err := f.NewSheet("Lateness"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	rows = [][]interface{}{
		{"Transporter ID", "Stations", "Late >15", "Late Total", "2026-W1"},
		{"A2X9KQ41LMNOP", "MXP6", 25, 61, 61},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Lateness", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if _, err := f.NewSheet("Defects"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	rows = [][]interface{}{
		{"Defect Type", "Root Cause", "Site", "Driver", "Count"},
		{"ftfdf", "upstream", "MXP5", "Palma, Maicol", 4},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Defects", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	feedPath = filepath.Join(dir, "feeds.xlsx")
	if err := f.SaveAs(feedPath); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return feedPath, rosterPath
}

func TestReloadBuildsMergedState(t *testing.T) {
	feedPath, rosterPath := writeFixtures(t)
	eng := New(feedPath, rosterPath)
	if eng.State() != nil {
		t.Fatalf("state must be nil before first load")
	}
	if err := eng.Reload(); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	st := eng.State()
	if len(st.Entities) != 1 {
		t.Fatalf("expected one merged entity, got %d", len(st.Entities))
	}
	ent := st.Entities[0]
	if ent.Key != "A2X9KQ41LMNOP" || ent.NCCTotal != 7 || ent.LateTotal != 61 {
		t.Fatalf("merge across feeds failed: %+v", ent)
	}
	if len(ent.Stations) != 2 {
		t.Fatalf("expected station union of both feeds, got %v", ent.Stations)
	}
	if st.Index == nil || len(st.Index.OptionsFor(drilldown.Selection{}).DefectTypes) != 1 {
		t.Fatalf("drill-down index not built")
	}
}

func TestFailedReloadKeepsPreviousState(t *testing.T) {
	feedPath, rosterPath := writeFixtures(t)
	eng := New(feedPath, rosterPath)
	if err := eng.Reload(); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	prev := eng.State()

	if err := os.WriteFile(feedPath, []byte("not a workbook"), 0o644); err != nil {
		t.Fatalf("corrupt feed: %v", err)
	}
	if err := eng.Reload(); err == nil {
		t.Fatalf("expected reload of corrupt workbook to fail")
	}
	if eng.State() != prev {
		t.Fatalf("failed reload must keep the previous snapshot")
	}
}
