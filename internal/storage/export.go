package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/magsat/internal/sim"
)

type ExportData struct {
	Preset   string             `json:"preset"`
	Dt       float64            `json:"dt"`
	Duration float64            `json:"duration"`
	Steps    int                `json:"steps"`
	Times    []float64          `json:"times"`
	States   [][]float64        `json:"states"`
	Commands [][]float64        `json:"commands"`
	Metrics  map[string]float64 `json:"metrics"`
}

// WriteMetadata writes run metadata as indented JSON.
func WriteMetadata(w io.Writer, meta *RunMetadata) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// ExportJSON writes a full run as indented JSON.
func ExportJSON(w io.Writer, preset string, dt, duration float64, result *sim.Result) error {
	data := ExportData{
		Preset:   preset,
		Dt:       dt,
		Duration: duration,
		Steps:    len(result.Times),
		Times:    result.Times,
		States:   make([][]float64, len(result.States)),
		Commands: make([][]float64, len(result.Commands)),
		Metrics:  result.Metrics,
	}

	for i, s := range result.States {
		data.States[i] = s
	}
	for i, c := range result.Commands {
		data.Commands[i] = []float64{c[0], c[1], c[2]}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
