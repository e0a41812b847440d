package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/magsat/internal/adcs"
	"github.com/san-kum/magsat/internal/plant"
)

const (
	DefaultDt            = 4.0
	DefaultNRTolerance   = 1e-3
	DefaultMaxIterations = 100
	DefaultMinFieldNorm  = 1e-9
	DefaultPosCost       = 1.5e-7
	DefaultVelCost       = 1.5e-3
	DefaultInputCost     = 1e7
)

type Config struct {
	Spacecraft SpacecraftConfig `yaml:"spacecraft"`
	Orbit      OrbitConfig      `yaml:"orbit"`
	Controller ControllerConfig `yaml:"controller"`
	Sim        SimConfig        `yaml:"sim"`
}

type SpacecraftConfig struct {
	// Principal moments of inertia [kg*m^2].
	J1 float64 `yaml:"j1"`
	J2 float64 `yaml:"j2"`
	J3 float64 `yaml:"j3"`
}

type OrbitConfig struct {
	MeanMotion  float64 `yaml:"mean_motion"`  // [rad/s]
	FieldB0     float64 `yaml:"field_b0"`     // field strength at altitude [T]
	Inclination float64 `yaml:"inclination"`  // [rad]
}

type ControllerConfig struct {
	Dt            float64 `yaml:"dt"`
	PosCost       float64 `yaml:"pos_cost"`
	VelCost       float64 `yaml:"vel_cost"`
	InputCost     float64 `yaml:"input_cost"`
	NRTolerance   float64 `yaml:"nr_tolerance"`
	MaxIterations int     `yaml:"max_iterations"`
	MinFieldNorm  float64 `yaml:"min_field_norm"`
	// Fallback is "hold" or "zero".
	Fallback string `yaml:"fallback"`
}

type SimConfig struct {
	Duration float64 `yaml:"duration"`
	// Initial deviation from the nominal attitude.
	Angles [3]float64 `yaml:"angles"` // [rad]
	Rates  [3]float64 `yaml:"rates"`  // [rad/s]
}

func DefaultConfig() *Config {
	return &Config{
		Spacecraft: SpacecraftConfig{
			J1: 3.196587857e-2,
			J2: 3.229090604e-2,
			J3: 7.02534780e-3,
		},
		Orbit: OrbitConfig{
			MeanMotion:  1.144035952968e-3,
			FieldB0:     3e-5,
			Inclination: 1.2,
		},
		Controller: ControllerConfig{
			Dt:            DefaultDt,
			PosCost:       DefaultPosCost,
			VelCost:       DefaultVelCost,
			InputCost:     DefaultInputCost,
			NRTolerance:   DefaultNRTolerance,
			MaxIterations: DefaultMaxIterations,
			MinFieldNorm:  DefaultMinFieldNorm,
			Fallback:      "hold",
		},
		Sim: SimConfig{
			Duration: 20000,
			Angles:   [3]float64{0.01, 0.02, -0.01},
			Rates:    [3]float64{0.001, 0.002, -0.001},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// PlantParams maps the configuration onto the controller parameter set.
func (c *Config) PlantParams() plant.Params {
	return plant.Params{
		J1:            c.Spacecraft.J1,
		J2:            c.Spacecraft.J2,
		J3:            c.Spacecraft.J3,
		MeanMotion:    c.Orbit.MeanMotion,
		Dt:            c.Controller.Dt,
		PosCost:       c.Controller.PosCost,
		VelCost:       c.Controller.VelCost,
		InputCost:     c.Controller.InputCost,
		NRTolerance:   c.Controller.NRTolerance,
		MaxIterations: c.Controller.MaxIterations,
		MinFieldNorm:  c.Controller.MinFieldNorm,
	}
}

// InitState builds the initial deviation state for a simulation run.
func (c *Config) InitState() adcs.State {
	return adcs.State{
		c.Sim.Angles[0], c.Sim.Angles[1], c.Sim.Angles[2],
		c.Sim.Rates[0], c.Sim.Rates[1], c.Sim.Rates[2],
	}
}
