package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"planfact/internal/pipeline"
	"planfact/internal/sales"

	"github.com/xuri/excelize/v2"
)

func sampleReport(t *testing.T) *pipeline.Report {
	t.Helper()
	facts := []sales.SalesRecord{
		{Outlet: "M1", SaleDate: "2025-01-10", Segment: "Premium", Price: 100, Qty: 1, LineTotal: 100},
		{Outlet: "M1", SaleDate: "2025-02-10", Segment: "Premium", Price: 110, Qty: 1, LineTotal: 110},
		{Outlet: "M1", SaleDate: "2025-03-10", Segment: "Premium", Price: 125, Qty: 1, LineTotal: 125},
	}
	plans := []sales.PlanTarget{
		{Outlet: "M1", Segment: "Premium", Month: "2025-01", PlannedRevenue: 200, PlannedUnits: 2},
		{Outlet: "M1", Segment: "Premium", Month: "2025-02", PlannedRevenue: 100, PlannedUnits: 1},
	}
	report, err := pipeline.Analyze(context.Background(), facts, plans, pipeline.Options{Horizon: 2}, sales.Issues{})
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	return report
}

func TestWriteCSV(t *testing.T) {
	table := Table{
		Name:   "demo",
		Header: []string{"Name", "Revenue", "Units"},
		Rows:   [][]any{{"M1, east", 1234.5678, 3}},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, table); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}
	want := "Name,Revenue,Units\n\"M1, east\",1234.57,3\n"
	if buf.String() != want {
		t.Errorf("WriteCSV wrote %q, want %q", buf.String(), want)
	}
}

func TestTables(t *testing.T) {
	tables := Tables(sampleReport(t))
	byName := make(map[string]Table)
	for _, tb := range tables {
		byName[tb.Name] = tb
	}

	for _, name := range []string{"reconciled", "kpi", "outlets", "segments", "rankings", "alerts", "abc", "forecast", "scenario", "backtest", "smart_plan", "timeline", "recommendations", "warnings"} {
		tb, ok := byName[name]
		if !ok {
			t.Errorf("Missing table %s", name)
			continue
		}
		for _, row := range tb.Rows {
			if len(row) != len(tb.Header) {
				t.Errorf("Table %s has a row of width %d for header width %d", name, len(row), len(tb.Header))
			}
		}
	}

	if len(byName["reconciled"].Rows) != 2 {
		t.Errorf("Expected 2 reconciled rows, got %d", len(byName["reconciled"].Rows))
	}
	// 4 models + ensemble, 2 months each
	if len(byName["forecast"].Rows) != 10 {
		t.Errorf("Expected 10 forecast rows, got %d", len(byName["forecast"].Rows))
	}
	if got := byName["scenario"].Rows[0][9]; got != "realistic" {
		t.Errorf("Expected realistic scenario column, got %v", got)
	}
}

func TestWrite_CSVFiles(t *testing.T) {
	dir := t.TempDir()
	tables := Tables(sampleReport(t))

	paths, err := Write(dir, FormatCSV, tables)
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if len(paths) != len(tables) {
		t.Fatalf("Expected %d files, got %d", len(tables), len(paths))
	}
	data, err := os.ReadFile(filepath.Join(dir, "smart_plan.csv"))
	if err != nil {
		t.Fatalf("Failed to read smart_plan.csv: %v", err)
	}
	if !strings.HasPrefix(string(data), "Magazin,Segment,Month,Revenue_Plan,Units_Plan\n") {
		t.Errorf("Unexpected smart plan header: %q", string(data))
	}
}

func TestWrite_XLSX(t *testing.T) {
	dir := t.TempDir()
	tables := Tables(sampleReport(t))

	paths, err := Write(dir, FormatXLSX, tables)
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != WorkbookName {
		t.Fatalf("Expected a single workbook, got %v", paths)
	}

	wb, err := excelize.OpenFile(paths[0])
	if err != nil {
		t.Fatalf("Failed to open workbook: %v", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) != len(tables) || sheets[0] != "reconciled" {
		t.Errorf("Expected one sheet per table starting with reconciled, got %v", sheets)
	}
	rows, err := wb.GetRows("reconciled")
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 3 || rows[0][0] != "Magazin" || rows[1][0] != "M1" {
		t.Errorf("Unexpected reconciled sheet content: %v", rows)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(""); err != nil || f != FormatCSV {
		t.Errorf("Expected csv default, got %s, %v", f, err)
	}
	if f, err := ParseFormat("XLSX"); err != nil || f != FormatXLSX {
		t.Errorf("Expected xlsx, got %s, %v", f, err)
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Error("Expected error for pdf")
	}
}
