// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/sandfall/systems"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen       ScreenConfig        `yaml:"screen"`
	Grid         GridConfig          `yaml:"grid"`
	Simulation   SimulationConfig    `yaml:"simulation"`
	Particles    []ParticleConfig    `yaml:"particles"`
	Interactions []InteractionConfig `yaml:"interactions"`
	Background   BackgroundConfig    `yaml:"background"`
	Shaders      ShadersConfig       `yaml:"shaders"`
	Input        InputConfig         `yaml:"input"`
	Emitters     []EmitterConfig     `yaml:"emitters"`
	Terrain      TerrainConfig       `yaml:"terrain"`
	Telemetry    TelemetryConfig     `yaml:"telemetry"`
	Audio        AudioConfig         `yaml:"audio"`
	Console      ConsoleConfig       `yaml:"console"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// GridConfig holds the on-screen size of one cell in pixels.
type GridConfig struct {
	CellWidth  float64 `yaml:"cell_width"`
	CellHeight float64 `yaml:"cell_height"`
}

// SimulationConfig holds tick loop parameters.
type SimulationConfig struct {
	Seed           int64 `yaml:"seed"`
	StepsPerUpdate int   `yaml:"steps_per_update"` // ticks per rendered frame
	MaxTicks       int   `yaml:"max_ticks"`        // 0 = run until closed
}

// ParticleConfig defines one particle type.
// A user file's particles list replaces the default list.
type ParticleConfig struct {
	Name    string       `yaml:"name"`
	Kind    systems.Kind `yaml:"kind"`
	Color   string       `yaml:"color"`   // hex, "#rrggbb"
	Density float64      `yaml:"density"` // 0..1, unused for static
	Shader  string       `yaml:"shader,omitempty"`
}

// InteractionConfig defines a reaction between two types.
type InteractionConfig struct {
	A      string `yaml:"a"`
	B      string `yaml:"b"`
	Result string `yaml:"result"`
}

// BackgroundConfig holds the layer drawn beneath all particles.
type BackgroundConfig struct {
	Color  string `yaml:"color"`
	Image  string `yaml:"image"`  // optional, drawn stretched over the screen
	Shader string `yaml:"shader"` // optional animated fragment shader, wins over image
}

// ShadersConfig names the uniforms the renderer feeds every particle shader.
type ShadersConfig struct {
	PixelScaleUniform string `yaml:"pixel_scale_uniform"`
	TimeUniform       string `yaml:"time_uniform"`
}

// InputConfig holds mouse brush settings.
type InputConfig struct {
	BrushRadius int             `yaml:"brush_radius"` // cells; 0 = single cell
	Bindings    []BindingConfig `yaml:"bindings"`
}

// EraseBinding is the binding type that empties cells instead of inserting.
// No particle type may use the name.
const EraseBinding = "ERASE"

// BindingConfig maps a mouse button (optionally with a modifier) to a type.
type BindingConfig struct {
	Button   string `yaml:"button"`   // left, right, middle
	Modifier string `yaml:"modifier"` // "", shift, ctrl
	Type     string `yaml:"type"`
}

// EmitterConfig places a particle source on the grid.
type EmitterConfig struct {
	X        int     `yaml:"x"`
	Y        int     `yaml:"y"`
	Type     string  `yaml:"type"`
	Interval int     `yaml:"interval"`
	Chance   float64 `yaml:"chance"`
}

// TerrainConfig holds noise ground generation parameters.
type TerrainConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Type      string  `yaml:"type"`
	Scale     float64 `yaml:"scale"`
	Base      float64 `yaml:"base"`
	Amplitude float64 `yaml:"amplitude"`
	Seed      int64   `yaml:"seed"`
}

// TelemetryConfig holds stats collection parameters.
type TelemetryConfig struct {
	StatsWindow int `yaml:"stats_window"` // ticks per stats window
	PerfWindow  int `yaml:"perf_window"`  // ticks in rolling perf average
}

// AudioConfig holds the reaction cue settings.
type AudioConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate int     `yaml:"sample_rate"`
	Frequency  float64 `yaml:"frequency"`   // Hz
	DurationMS int     `yaml:"duration_ms"` // tone length
	CooldownMS int     `yaml:"cooldown_ms"` // minimum gap between tones
}

// ConsoleConfig holds terminal mode settings.
type ConsoleConfig struct {
	Primary   string `yaml:"primary"`   // left mouse button type
	Secondary string `yaml:"secondary"` // right mouse button type
	TickMS    int    `yaml:"tick_ms"`
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	ScreenW32  float32
	ScreenH32  float32
	CellW32    float32
	CellH32    float32
	GridW      int
	GridH      int
	Background color.RGBA
	TypeDefs   []systems.TypeDef // in particles list order
}

var global *Config

// Init loads configuration and sets it as the global config.
// If path is empty, uses embedded defaults only.
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
		// Only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived validates the loaded config and calculates derived values.
func (c *Config) computeDerived() error {
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		return fmt.Errorf("screen size %dx%d must be positive", c.Screen.Width, c.Screen.Height)
	}
	if c.Grid.CellWidth <= 0 || c.Grid.CellHeight <= 0 {
		return fmt.Errorf("cell size %vx%v must be positive", c.Grid.CellWidth, c.Grid.CellHeight)
	}
	if c.Simulation.StepsPerUpdate < 1 {
		c.Simulation.StepsPerUpdate = 1
	}

	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.CellW32 = float32(c.Grid.CellWidth)
	c.Derived.CellH32 = float32(c.Grid.CellHeight)
	c.Derived.GridW, c.Derived.GridH = systems.GridSize(
		c.Derived.ScreenW32, c.Derived.ScreenH32, c.Derived.CellW32, c.Derived.CellH32)

	bg, err := ParseColor(c.Background.Color)
	if err != nil {
		return fmt.Errorf("background: %w", err)
	}
	c.Derived.Background = bg

	c.Derived.TypeDefs = make([]systems.TypeDef, 0, len(c.Particles))
	for i, p := range c.Particles {
		if p.Name == "" {
			return fmt.Errorf("particles[%d]: missing name", i)
		}
		if p.Name == EraseBinding {
			return fmt.Errorf("particles[%d]: %s is reserved for the eraser", i, EraseBinding)
		}
		if p.Kind == systems.KindEmpty {
			return fmt.Errorf("particle %s: missing kind", p.Name)
		}
		if p.Density < 0 || p.Density > 1 {
			return fmt.Errorf("particle %s: density %v outside [0, 1]", p.Name, p.Density)
		}
		rgba, err := ParseColor(p.Color)
		if err != nil {
			return fmt.Errorf("particle %s: %w", p.Name, err)
		}
		c.Derived.TypeDefs = append(c.Derived.TypeDefs, systems.TypeDef{
			Name:    p.Name,
			Kind:    p.Kind,
			Color:   rgba,
			Density: float32(p.Density),
		})
	}

	for i, b := range c.Input.Bindings {
		switch b.Button {
		case "left", "right", "middle":
		default:
			return fmt.Errorf("input.bindings[%d]: unknown button %q", i, b.Button)
		}
		switch b.Modifier {
		case "", "shift", "ctrl":
		default:
			return fmt.Errorf("input.bindings[%d]: unknown modifier %q", i, b.Modifier)
		}
	}
	if c.Input.BrushRadius < 0 {
		c.Input.BrushRadius = 0
	}

	if c.Telemetry.StatsWindow < 1 {
		c.Telemetry.StatsWindow = 1
	}
	if c.Telemetry.PerfWindow < 1 {
		c.Telemetry.PerfWindow = 1
	}
	return nil
}

// ParseColor converts "#rrggbb" or "#rrggbbaa" to an RGBA color.
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimSpace(s)
	alpha := uint8(255)
	if len(hex) == 9 {
		var a uint8
		if _, err := fmt.Sscanf(hex[7:], "%02x", &a); err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		alpha = a
		hex = hex[:7]
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: alpha}, nil
}

// Binding returns the type bound to a button/modifier pair.
func (c *Config) Binding(button, modifier string) (string, bool) {
	for _, b := range c.Input.Bindings {
		if b.Button == button && b.Modifier == modifier {
			return b.Type, true
		}
	}
	return "", false
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
