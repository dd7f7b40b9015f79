// Package config provides configuration loading and access for the particle core.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all tunables for the particle system.
type Config struct {
	Buffer    BufferConfig    `yaml:"buffer"`
	Particle  ParticleConfig  `yaml:"particle"`
	Solver    SolverConfig    `yaml:"solver"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived holds values computed after loading; never read from YAML.
	Derived DerivedConfig `yaml:"-"`
}

// BufferConfig controls the buffer manager's growth policy (spec §4.A).
type BufferConfig struct {
	MinParticleBufferCapacity int `yaml:"min_particle_buffer_capacity"`
	MaxParticleCount          int `yaml:"max_particle_count"` // 0 = unbounded
}

// ParticleConfig describes the physical properties shared by every particle.
type ParticleConfig struct {
	Radius       float32 `yaml:"radius"`
	Density      float32 `yaml:"density"`
	GravityScale float32 `yaml:"gravity_scale"`
}

// SolverConfig holds the per-solver strength constants from spec §4.G.
type SolverConfig struct {
	PressureStrength     float32 `yaml:"pressure_strength"`
	DampingStrength      float32 `yaml:"damping_strength"`
	ViscousStrength      float32 `yaml:"viscous_strength"`
	PowderStrength       float32 `yaml:"powder_strength"`
	SurfaceTensionA      float32 `yaml:"surface_tension_a"`
	SurfaceTensionB      float32 `yaml:"surface_tension_b"`
	ElasticStrength      float32 `yaml:"elastic_strength"`
	SpringStrength       float32 `yaml:"spring_strength"`
	EjectionStrength     float32 `yaml:"ejection_strength"`
	ColorMixingStrength  float32 `yaml:"color_mixing_strength"`
	MaxParticleWeight    float32 `yaml:"max_particle_weight"`
	MinParticleWeight    float32 `yaml:"min_particle_weight"`
	ParticleStride       float32 `yaml:"particle_stride"`
	MaxTriadDistanceMult float32 `yaml:"max_triad_distance_mult"` // multiplied by diameter^2
}

// TelemetryConfig controls optional CSV/structured-log output (spec §6
// "supplemented features"). WindowSize and TickRate together size the
// stats/perf window in both ticks and simulated seconds, since
// system.Solve's dt is supplied per call rather than fixed in Config.
type TelemetryConfig struct {
	OutputDir  string  `yaml:"output_dir"` // empty disables CSV export
	WindowSize int     `yaml:"window_size"`
	TickRate   float32 `yaml:"tick_rate"` // expected seconds per tick, for SimTimeSec and window sizing
}

// DerivedConfig holds values computed from Config after loading;
// ParticleInvMass mirrors getParticleInvMass in the original. The critical
// velocity and pressure depend on the step's dt and are computed per call by
// solver.CriticalVelocity and solver.CriticalPressure instead.
type DerivedConfig struct {
	Diameter        float32
	InverseDiameter float32
	InverseDensity  float32
	ParticleInvMass float32 // 1.777777 * (1/density) * (1/diameter)^2, fixed disc-packing factor
}

var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	d := c.Particle.Radius * 2
	c.Derived.Diameter = d
	if d != 0 {
		c.Derived.InverseDiameter = 1 / d
	}
	if c.Particle.Density != 0 {
		c.Derived.InverseDensity = 1 / c.Particle.Density
	}
	if c.Particle.Density != 0 && d != 0 {
		c.Derived.ParticleInvMass = 1.777777 * c.Derived.InverseDensity * (c.Derived.InverseDiameter * c.Derived.InverseDiameter)
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
