package storage

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/san-kum/magsat/internal/adcs"
	"github.com/san-kum/magsat/internal/sim"
)

func sampleResult() *sim.Result {
	return &sim.Result{
		States: []adcs.State{
			{0.01, 0.02, -0.01, 0.001, 0.002, -0.001},
			{0.009, 0.019, -0.009, 0.0009, 0.0019, -0.0009},
		},
		Commands: []adcs.Dipole{
			{0.05, -0.03, 0.01},
		},
		Times: []float64{0, 4},
		Metrics: map[string]float64{
			"pointing_rms": 0.015,
		},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save("reference", 4, 8, "hold", sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Preset != "reference" {
		t.Errorf("expected preset reference, got %s", meta.Preset)
	}
	if meta.Fallback != "hold" {
		t.Errorf("expected fallback hold, got %s", meta.Fallback)
	}
	if meta.Metrics["pointing_rms"] != 0.015 {
		t.Errorf("expected pointing_rms 0.015, got %f", meta.Metrics["pointing_rms"])
	}

	times, states, commands, err := st.LoadTrajectory(runID)
	if err != nil {
		t.Fatalf("load trajectory failed: %v", err)
	}
	if len(times) != 2 || len(states) != 2 || len(commands) != 2 {
		t.Fatalf("expected 2 samples, got %d/%d/%d", len(times), len(states), len(commands))
	}
	if states[0][1] != 0.02 {
		t.Errorf("state did not round-trip: got %g", states[0][1])
	}
	if commands[0][0] != 0.05 {
		t.Errorf("command did not round-trip: got %g", commands[0][0])
	}
	// last sample has no command; padded with zeros
	if commands[1][0] != 0 {
		t.Errorf("expected zero-padded trailing command, got %g", commands[1][0])
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}

	if _, err := st.Save("reference", 4, 8, "hold", sampleResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, "reference", 4, 8, sampleResult()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if data.Steps != 2 {
		t.Errorf("expected 2 steps, got %d", data.Steps)
	}
	if len(data.Commands) != 1 || data.Commands[0][2] != 0.01 {
		t.Error("commands did not export correctly")
	}
}
