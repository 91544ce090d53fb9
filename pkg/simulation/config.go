package simulation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lao-tseu-is-alive/go-boids/pkg/flock"
	"github.com/paulmach/orb"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed config.schema.json
var configSchema string

var schema = jsonschema.MustCompileString("config.schema.json", configSchema)

const (
	PolicyWrap = "wrap"
	PolicyRays = "rays"

	QueryBrute = "brute"
	QueryGrid  = "grid"
)

// RuleConfig holds the radius and weight of one flocking rule.
type RuleConfig struct {
	Radius float64 `json:"radius" toml:"radius"`
	Weight float64 `json:"weight" toml:"weight"`
}

func (r RuleConfig) params() flock.RuleParams {
	return flock.RuleParams{Radius: r.Radius, Weight: r.Weight}
}

type BoundaryConfig struct {
	Policy        string  `json:"policy" toml:"policy"`           // "wrap" or "rays"
	FieldOfView   float64 `json:"fieldOfView" toml:"fieldOfView"` // degrees
	RayCount      int     `json:"rayCount" toml:"rayCount"`
	CastDistance  float64 `json:"castDistance" toml:"castDistance"`
	BodySize      float64 `json:"bodySize" toml:"bodySize"`
	WallThickness float64 `json:"wallThickness" toml:"wallThickness"`
}

type DebugConfig struct {
	ShowVectors bool `json:"showVectors" toml:"showVectors"`
	ShowRadii   bool `json:"showRadii" toml:"showRadii"`
	DebugAgent  int  `json:"debugAgent" toml:"debugAgent"` // index into the population
}

type Config struct {
	// World Dimensions
	WorldWidth  float64 `json:"worldWidth" toml:"worldWidth"`
	WorldHeight float64 `json:"worldHeight" toml:"worldHeight"`

	// Population
	Population int    `json:"population" toml:"population"`
	Capacity   int    `json:"capacity" toml:"capacity"` // 0 = unbounded
	Seed       uint64 `json:"seed" toml:"seed"`

	// Scheduling
	TicksPerSecond int `json:"ticksPerSecond" toml:"ticksPerSecond"`
	Workers        int `json:"workers" toml:"workers"`

	// Flocking rules
	Separation RuleConfig `json:"separation" toml:"separation"`
	Alignment  RuleConfig `json:"alignment" toml:"alignment"`
	Cohesion   RuleConfig `json:"cohesion" toml:"cohesion"`

	// Motion
	Speed       float64 `json:"speed" toml:"speed"`             // units per second
	MaxTurnRate float64 `json:"maxTurnRate" toml:"maxTurnRate"` // radians per second

	NeighborQuery string         `json:"neighborQuery" toml:"neighborQuery"`
	Boundary      BoundaryConfig `json:"boundary" toml:"boundary"`
	Debug         DebugConfig    `json:"debug" toml:"debug"`
}

func DefaultConfig() *Config {
	return &Config{
		WorldWidth:     1000,
		WorldHeight:    800,
		Population:     60,
		Capacity:       0,
		Seed:           42,
		TicksPerSecond: 60,
		Workers:        1,
		Separation:     RuleConfig{Radius: 30, Weight: 1},
		Alignment:      RuleConfig{Radius: 60, Weight: 1},
		Cohesion:       RuleConfig{Radius: 80, Weight: 1},
		Speed:          150,
		MaxTurnRate:    math.Pi / 2,
		NeighborQuery:  QueryGrid,
		Boundary: BoundaryConfig{
			Policy:        PolicyRays,
			FieldOfView:   135,
			RayCount:      12,
			CastDistance:  150,
			BodySize:      10,
			WallThickness: 10,
		},
		Debug: DebugConfig{ShowVectors: true, ShowRadii: true},
	}
}

// LoadConfig reads a .json or .toml file on top of the defaults, validates the
// resulting document against the embedded schema and then checks the values.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()
		dec := json.NewDecoder(f)
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config json %s: %w", path, err)
		}
	case ".toml":
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to decode config toml %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown keys in %s: %v", path, undecoded)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	if err := cfg.checkSchema(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// checkSchema validates the effective configuration, whatever format it came
// from, against config.schema.json.
func (c *Config) checkSchema() error {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	var doc interface{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func invalid(field string, value any, reason string) error {
	return &flock.ConfigError{Field: field, Value: value, Reason: reason}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate rejects out-of-range values with a *flock.ConfigError.
// Nothing is clamped.
func (c *Config) Validate() error {
	if !(c.WorldWidth > 0) || !(c.WorldHeight > 0) || !finite(c.WorldWidth) || !finite(c.WorldHeight) {
		return invalid("world", fmt.Sprintf("%vx%v", c.WorldWidth, c.WorldHeight), "dimensions must be positive")
	}
	if c.Population < 0 {
		return invalid("population", c.Population, "must not be negative")
	}
	if c.Capacity < 0 {
		return invalid("capacity", c.Capacity, "must not be negative")
	}
	if c.Capacity > 0 && c.Population > c.Capacity {
		return invalid("population", c.Population, fmt.Sprintf("exceeds capacity %d", c.Capacity))
	}
	if c.TicksPerSecond < 1 {
		return invalid("ticksPerSecond", c.TicksPerSecond, "must be at least 1")
	}
	if c.Workers < 0 {
		return invalid("workers", c.Workers, "must not be negative")
	}
	if err := c.Settings().validate(c.Boundary.Policy == PolicyRays); err != nil {
		return err
	}
	if c.NeighborQuery != QueryBrute && c.NeighborQuery != QueryGrid {
		return invalid("neighborQuery", c.NeighborQuery, "must be brute or grid")
	}

	b := c.Boundary
	switch b.Policy {
	case PolicyWrap:
	case PolicyRays:
		if !(b.FieldOfView > 0) || b.FieldOfView > 360 {
			return invalid("boundary.fieldOfView", b.FieldOfView, "must be in (0, 360] degrees")
		}
		if b.RayCount < 1 {
			return invalid("boundary.rayCount", b.RayCount, "must be at least 1")
		}
		if !(b.CastDistance > 0) || !finite(b.CastDistance) {
			return invalid("boundary.castDistance", b.CastDistance, "must be positive")
		}
		if b.BodySize < 0 || b.WallThickness < 0 {
			return invalid("boundary.wallThickness", b.WallThickness, "sizes must not be negative")
		}
		if 2*b.WallThickness >= math.Min(c.WorldWidth, c.WorldHeight) {
			return invalid("boundary.wallThickness", b.WallThickness, "walls leave no room inside the world")
		}
	default:
		return invalid("boundary.policy", b.Policy, "must be wrap or rays")
	}
	return nil
}

// Bounds is the simulation area, origin at the top-left corner of the screen.
func (c *Config) Bounds() orb.Bound {
	return orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{c.WorldWidth, c.WorldHeight}}
}

// Settings returns the live-tunable part of the configuration.
func (c *Config) Settings() Settings {
	return Settings{
		Separation:  c.Separation,
		Alignment:   c.Alignment,
		Cohesion:    c.Cohesion,
		Speed:       c.Speed,
		MaxTurnRate: c.MaxTurnRate,
	}
}

// NewFlock builds an empty flock with the configured neighbor query and
// boundary policy.
func (c *Config) NewFlock() (*flock.Flock, error) {
	p := flock.Params{Capacity: c.Capacity, Workers: c.Workers}

	if c.NeighborQuery == QueryGrid {
		cell := math.Max(c.Separation.Radius, math.Max(c.Alignment.Radius, c.Cohesion.Radius))
		p.Neighbors = flock.NewGrid(cell)
	} else {
		p.Neighbors = flock.BruteForce{}
	}

	switch c.Boundary.Policy {
	case PolicyRays:
		ray, err := c.rayAvoidance()
		if err != nil {
			return nil, err
		}
		p.Boundary = ray
	default:
		p.Boundary = flock.Wrap{Bounds: c.Bounds()}
	}

	return flock.New(p)
}

func (c *Config) rayAvoidance() (*flock.RayAvoidance, error) {
	b := c.Boundary
	ray, err := flock.NewRayAvoidance(c.Bounds(), b.FieldOfView*math.Pi/180, b.RayCount, b.CastDistance, b.BodySize, b.WallThickness)
	if err != nil {
		return nil, fmt.Errorf("failed to create ray avoidance: %w", err)
	}
	return ray, nil
}
