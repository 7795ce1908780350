package reconcile

import (
	"fmt"
	"testing"
)

func rec(outlet, segment, month string, plan, fact float64) ReconciledRecord {
	r := ReconciledRecord{Outlet: outlet, Segment: segment, Month: month, RevenuePlan: plan, RevenueFact: fact, RevenueDiff: fact - plan}
	if plan != 0 {
		r.RevenueDiffPct = (fact - plan) * 100 / plan
	}
	return r
}

func TestTotals(t *testing.T) {
	records := []ReconciledRecord{
		{RevenuePlan: 100, RevenueFact: 90, UnitsPlan: 10, UnitsFact: 8},
		{RevenuePlan: 300, RevenueFact: 330, UnitsPlan: 30, UnitsFact: 32},
	}
	kpi := Totals(records)
	if kpi.RevenuePlan != 400 || kpi.RevenueFact != 420 || kpi.RevenueDiff != 20 {
		t.Errorf("Unexpected revenue totals: %+v", kpi)
	}
	if kpi.RevenueDiffPct != 5 {
		t.Errorf("Expected 5%% revenue variance, got %v", kpi.RevenueDiffPct)
	}
	if kpi.UnitsDiff != 0 || kpi.UnitsDiffPct != 0 {
		t.Errorf("Expected zero unit variance, got %+v", kpi)
	}

	if empty := Totals(nil); empty.RevenueDiffPct != 0 {
		t.Errorf("Expected 0%% on empty input, got %v", empty.RevenueDiffPct)
	}
}

func TestByOutletAndSegment(t *testing.T) {
	records := []ReconciledRecord{
		rec("B", "Food", "2025-01", 100, 50),
		rec("A", "Food", "2025-01", 100, 100),
		rec("A", "Drinks", "2025-01", 100, 150),
	}

	outlets := ByOutlet(records)
	if len(outlets) != 2 || outlets[0].Name != "A" {
		t.Fatalf("Expected outlets sorted by name, got %+v", outlets)
	}
	if outlets[0].RevenuePlan != 200 || outlets[0].RevenueFact != 250 || outlets[0].Achievement != 125 {
		t.Errorf("Unexpected outlet A summary: %+v", outlets[0])
	}

	segments := BySegment(records)
	if len(segments) != 2 || segments[0].Name != "Drinks" || segments[1].Achievement != 75 {
		t.Errorf("Unexpected segment summary: %+v", segments)
	}
}

func TestRankSegment(t *testing.T) {
	var records []ReconciledRecord
	for i := 1; i <= 7; i++ {
		records = append(records, rec(fmt.Sprintf("M%d", i), "Food", "2025-01", 100, float64(80+i*5)))
	}
	records = append(records, rec("X", "Drinks", "2025-01", 100, 500))

	r := RankSegment(records, "Food")
	if len(r.Top) != 5 || len(r.Bottom) != 5 {
		t.Fatalf("Expected 5 top and 5 bottom outlets, got %d/%d", len(r.Top), len(r.Bottom))
	}
	if r.Top[0].Name != "M7" || r.Bottom[0].Name != "M1" {
		t.Errorf("Expected M7 best and M1 worst, got %s / %s", r.Top[0].Name, r.Bottom[0].Name)
	}
	for _, s := range append(r.Top, r.Bottom...) {
		if s.Name == "X" {
			t.Error("Outlet from another segment leaked into ranking")
		}
	}

	small := RankSegment(records, "Drinks")
	if len(small.Top) != 1 || len(small.Bottom) != 1 {
		t.Errorf("Expected single-outlet ranking, got %+v", small)
	}

	if all := RankSegments(records); len(all) != 2 || all[0].Segment != "Drinks" {
		t.Errorf("Unexpected segment rankings: %+v", all)
	}
}

func TestAlerts(t *testing.T) {
	records := []ReconciledRecord{
		rec("A", "Food", "2025-01", 100, 115), // +15
		rec("B", "Food", "2025-01", 100, 95),  // -5
		rec("C", "Food", "2025-01", 100, 70),  // -30
		rec("D", "Food", "2025-01", 100, 110), // exactly +10, not flagged
		rec("E", "Food", "2025-01", 100, 88),  // -12
	}

	alerts := Alerts(records)
	if len(alerts) != 3 {
		t.Fatalf("Expected 3 alerts, got %d", len(alerts))
	}
	want := []string{"C", "E", "A"}
	for i, a := range alerts {
		if a.Outlet != want[i] {
			t.Errorf("Alert %d: expected %s, got %s", i, want[i], a.Outlet)
		}
	}
}

func TestFilter(t *testing.T) {
	records := []ReconciledRecord{
		rec("A", "Food", "2025-01", 1, 1),
		rec("A", "Food", "2025-02", 1, 1),
		rec("A", "Drinks", "2025-02", 1, 1),
	}

	if got := Filter(records, nil, nil); len(got) != 3 {
		t.Errorf("Empty selection should keep everything, got %d", len(got))
	}
	if got := Filter(records, []string{"2025-02"}, nil); len(got) != 2 {
		t.Errorf("Expected 2 February rows, got %d", len(got))
	}
	if got := Filter(records, []string{"2025-02"}, []string{"Food"}); len(got) != 1 {
		t.Errorf("Expected 1 February Food row, got %d", len(got))
	}

	if months := Months(records); len(months) != 2 || months[0] != "2025-01" {
		t.Errorf("Unexpected months: %v", months)
	}
}
