// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/drops/fluid"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Kernel    KernelConfig    `yaml:"kernel"`
	Solver    SolverConfig    `yaml:"solver"`
	Mesh      MeshConfig      `yaml:"mesh"`
	Host      HostConfig      `yaml:"host"`
	Scene     SceneConfig     `yaml:"scene"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds window settings.
type ScreenConfig struct {
	Width     int32 `yaml:"width"`
	Height    int32 `yaml:"height"`
	TargetFPS int32 `yaml:"target_fps"`
}

// KernelConfig holds capacities of the kernel context.
type KernelConfig struct {
	MaxParticles int    `yaml:"max_particles"`
	MaxPairs     int    `yaml:"max_pairs"`
	HashShift    int    `yaml:"hash_shift"`    // bucket table holds 1<<hash_shift buckets
	CellCapacity int    `yaml:"cell_capacity"` // references per bucket
	MaxMarked    int    `yaml:"max_marked"`
	MaxVertices  int    `yaml:"max_vertices"`
	MaxTriangles int    `yaml:"max_triangles"`
	Lanes        int    `yaml:"lanes"`    // 4 = batched, 1 = scalar
	Overflow     string `yaml:"overflow"` // truncate | panic
}

// SolverConfig holds the per-substep force coefficients.
type SolverConfig struct {
	Substeps    int     `yaml:"substeps"`
	K           float64 `yaml:"k"`            // pressure stiffness
	K2          float64 `yaml:"k2"`           // near-pressure on w^3
	Gamma       float64 `yaml:"gamma"`        // normal-difference term
	C           float64 `yaml:"c"`            // viscosity
	RestDensity float64 `yaml:"rest_density"` // 0 = cubic lattice density
}

// MeshConfig controls surface rebuilds.
type MeshConfig struct {
	Threshold      float64 `yaml:"threshold"`
	EveryNTicks    int     `yaml:"every_n_ticks"`
	RefreshDensity bool    `yaml:"refresh_density"`
}

// HostConfig holds host-side integration parameters.
type HostConfig struct {
	Gravity     float64 `yaml:"gravity"`     // per tick
	MaxSpeed    float64 `yaml:"max_speed"`   // per tick
	Restitution float64 `yaml:"restitution"` // default collider restitution
	WindScale   float64 `yaml:"wind_scale"`  // noise amplitude per tick
	WindFreq    float64 `yaml:"wind_freq"`   // spatial frequency
	WindSpeed   float64 `yaml:"wind_speed"`  // noise time advance per tick
}

// Vec3 is a YAML-friendly vector.
type Vec3 [3]float64

// Vec converts to the float32 vector used by the kernel.
func (v Vec3) Vec() mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

// FillConfig spawns a lattice block once.
type FillConfig struct {
	Center      Vec3    `yaml:"center"`
	HalfExtents Vec3    `yaml:"half_extents"`
	Jitter      float64 `yaml:"jitter"`
}

// EmitterConfig spawns particles every tick.
type EmitterConfig struct {
	Position Vec3    `yaml:"position"`
	Dir      Vec3    `yaml:"dir"`
	Rate     int     `yaml:"rate"`   // particles per tick
	Speed    float64 `yaml:"speed"`  // per tick
	Spread   float64 `yaml:"spread"` // cone half-angle in radians
	Total    int     `yaml:"total"`  // 0 = until the kernel is full
}

// ObstacleConfig is a solid sphere or box, optionally orbiting.
type ObstacleConfig struct {
	Shape       string  `yaml:"shape"` // sphere | box
	Position    Vec3    `yaml:"position"`
	Radius      float64 `yaml:"radius"`
	HalfExtents Vec3    `yaml:"half_extents"`
	OrbitRadius float64 `yaml:"orbit_radius"`
	OrbitSpeed  float64 `yaml:"orbit_speed"` // radians per tick
}

// ContainerConfig is the box that keeps particles inside.
type ContainerConfig struct {
	Center      Vec3    `yaml:"center"`
	HalfExtents Vec3    `yaml:"half_extents"`
	Restitution float64 `yaml:"restitution"`
}

// SceneConfig describes the initial host entities.
type SceneConfig struct {
	Container ContainerConfig  `yaml:"container"`
	Fills     []FillConfig     `yaml:"fills"`
	Emitters  []EmitterConfig  `yaml:"emitters"`
	Obstacles []ObstacleConfig `yaml:"obstacles"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow int `yaml:"stats_window"` // ticks per stats window
	PerfWindow  int `yaml:"perf_window"`  // ticks in the perf rolling average
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	RestDensity32 float32
	K32           float32
	K232          float32
	Gamma32       float32
	C32           float32
	Threshold32   float32
	Overflow      fluid.OverflowPolicy
}

var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before accessing Cfg().
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
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config not initialized: call config.Init() first")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Overlay user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.ComputeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges that would break the kernel.
func (c *Config) Validate() error {
	k := c.Kernel
	switch {
	case k.MaxParticles <= 0:
		return fmt.Errorf("kernel.max_particles must be positive: %w", ErrInvalid)
	case k.HashShift < 1 || k.HashShift > 24:
		return fmt.Errorf("kernel.hash_shift %d out of range [1, 24]: %w", k.HashShift, ErrInvalid)
	case k.CellCapacity <= 0:
		return fmt.Errorf("kernel.cell_capacity must be positive: %w", ErrInvalid)
	case k.Lanes != 1 && k.Lanes != 4:
		return fmt.Errorf("kernel.lanes must be 1 or 4, got %d: %w", k.Lanes, ErrInvalid)
	}
	if c.Solver.Substeps <= 0 {
		return fmt.Errorf("solver.substeps must be positive: %w", ErrInvalid)
	}
	if c.Solver.RestDensity < 0 {
		return fmt.Errorf("solver.rest_density must not be negative: %w", ErrInvalid)
	}
	if c.Mesh.EveryNTicks < 0 {
		return fmt.Errorf("mesh.every_n_ticks must not be negative: %w", ErrInvalid)
	}
	for i, o := range c.Scene.Obstacles {
		if o.Shape != "sphere" && o.Shape != "box" {
			return fmt.Errorf("scene.obstacles[%d]: unknown shape %q: %w", i, o.Shape, ErrInvalid)
		}
	}
	return nil
}

// ComputeDerived fills Derived from the loaded values.
func (c *Config) ComputeDerived() error {
	policy, err := fluid.ParseOverflowPolicy(c.Kernel.Overflow)
	if err != nil {
		return fmt.Errorf("kernel.overflow: %w", err)
	}
	c.Derived.Overflow = policy

	rest := float32(c.Solver.RestDensity)
	if rest == 0 {
		rest = fluid.LatticeRestDensity()
	}
	c.Derived.RestDensity32 = rest
	c.Derived.K32 = float32(c.Solver.K)
	c.Derived.K232 = float32(c.Solver.K2)
	c.Derived.Gamma32 = float32(c.Solver.Gamma)
	c.Derived.C32 = float32(c.Solver.C)
	c.Derived.Threshold32 = float32(c.Mesh.Threshold)
	return nil
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
