package config

// Presets are named starting points for common scenarios. "reference"
// matches the flight-tuning constants the controller was designed with.
var Presets = map[string]*Config{
	"reference": DefaultConfig(),
	"detumble": {
		Spacecraft: DefaultConfig().Spacecraft,
		Orbit:      DefaultConfig().Orbit,
		Controller: DefaultConfig().Controller,
		Sim: SimConfig{
			Duration: 40000,
			Angles:   [3]float64{0.1, -0.15, 0.08},
			Rates:    [3]float64{0.01, -0.008, 0.012},
		},
	},
	"fine-pointing": {
		Spacecraft: DefaultConfig().Spacecraft,
		Orbit:      DefaultConfig().Orbit,
		Controller: ControllerConfig{
			Dt:            DefaultDt,
			PosCost:       1.5e-6,
			VelCost:       1.5e-3,
			InputCost:     DefaultInputCost,
			NRTolerance:   DefaultNRTolerance,
			MaxIterations: DefaultMaxIterations,
			MinFieldNorm:  DefaultMinFieldNorm,
			Fallback:      "hold",
		},
		Sim: SimConfig{
			Duration: 20000,
			Angles:   [3]float64{0.005, 0.005, -0.005},
			Rates:    [3]float64{1e-4, 1e-4, -1e-4},
		},
	},
}

// GetPreset returns a copy-safe preset by name, or nil.
func GetPreset(name string) *Config {
	return Presets[name]
}

// ListPresets returns the available preset names.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
