package storage

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLoadRows(t *testing.T) {
	store := New(t.TempDir())
	res := runTrial(t)
	runID, err := store.Save(res)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	rows, err := store.LoadRows(runID)
	if err != nil {
		t.Fatalf("load rows failed: %v", err)
	}
	// 6 samples of one photon.
	if len(rows) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(rows))
	}
	if rows[0].Species != "photon" || rows[0].Anchor != [3]int{10, 4, 4} {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if rows[5].Tick != 5 {
		t.Errorf("expected last row at tick 5, got %d", rows[5].Tick)
	}
}

func TestExportCSV(t *testing.T) {
	store := New(t.TempDir())
	res := runTrial(t)
	runID, err := store.Save(res)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var buf bytes.Buffer
	if err := store.ExportCSV(runID, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 7 {
		t.Fatalf("expected header plus 6 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "tick,id,species") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "photon") {
		t.Errorf("expected photon row, got: %s", lines[1])
	}
}

func TestExportJSON(t *testing.T) {
	store := New(t.TempDir())
	res := runTrial(t)
	runID, err := store.Save(res)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var buf bytes.Buffer
	if err := store.ExportJSON(runID, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if data.Meta.Name != "store_run" {
		t.Errorf("unexpected meta: %+v", data.Meta)
	}
	if len(data.Anchors) != 6 {
		t.Errorf("expected 6 anchor rows, got %d", len(data.Anchors))
	}
	if data.Events == nil {
		t.Error("events should decode to an empty slice, not null")
	}
}

func TestExport_MissingRun(t *testing.T) {
	store := New(t.TempDir())
	var buf bytes.Buffer
	if err := store.ExportCSV("absent", &buf); err == nil {
		t.Error("expected error for missing run")
	}
	if err := store.ExportJSON("absent", &buf); err == nil {
		t.Error("expected error for missing run")
	}
}
