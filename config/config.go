// Package config loads scrollglow settings from defaults, an optional YAML file and SCROLLGLOW_ env vars
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/viper"

	"github.com/lixenwraith/scrollglow/choreo"
	"github.com/lixenwraith/scrollglow/particle"
	"github.com/lixenwraith/scrollglow/render"
	"github.com/lixenwraith/scrollglow/stage"
)

// EnvPrefix is prepended to upper-cased keys with '.' replaced by '_'
const EnvPrefix = "SCROLLGLOW"

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid configuration")

// Config is the root configuration object
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Engine   EngineConfig   `mapstructure:"engine" yaml:"engine"`
	Motion   MotionConfig   `mapstructure:"motion" yaml:"motion"`
	Links    LinksConfig    `mapstructure:"links" yaml:"links"`
	Stages   StagesConfig   `mapstructure:"stages" yaml:"stages"`
	Scroll   ScrollConfig   `mapstructure:"scroll" yaml:"scroll"`
	Audio    AudioConfig    `mapstructure:"audio" yaml:"audio"`
	Snapshot SnapshotConfig `mapstructure:"snapshot" yaml:"snapshot"`
}

// LoggerConfig holds zap and lumberjack settings
type LoggerConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"`
	LogFile    string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// EngineConfig sizes the particle pool and the frame loop
type EngineConfig struct {
	Particles   int     `mapstructure:"particles" yaml:"particles"`
	FPS         int     `mapstructure:"fps" yaml:"fps"`
	PixelRatio  float64 `mapstructure:"pixel_ratio" yaml:"pixel_ratio"`
	SignalEvery int     `mapstructure:"signal_every" yaml:"signal_every"`
	Clusters    int     `mapstructure:"clusters" yaml:"clusters"`
	Seed        uint64  `mapstructure:"seed" yaml:"seed"`

	// ReferenceExtent is the short side in pixels the motion and link constants are tuned for
	ReferenceExtent float64 `mapstructure:"reference_extent" yaml:"reference_extent"`
}

// MotionConfig holds smoothing and drift constants, all per nominal 16ms frame
type MotionConfig struct {
	PositionSmoothing float64 `mapstructure:"position_smoothing" yaml:"position_smoothing"`
	AttrSmoothing     float64 `mapstructure:"attr_smoothing" yaml:"attr_smoothing"`
	DriftAmplitude    float64 `mapstructure:"drift_amplitude" yaml:"drift_amplitude"`
	DriftFreqX        float64 `mapstructure:"drift_freq_x" yaml:"drift_freq_x"`
	DriftFreqY        float64 `mapstructure:"drift_freq_y" yaml:"drift_freq_y"`
	PhaseStep         float64 `mapstructure:"phase_step" yaml:"phase_step"`
}

// LinksConfig controls connective lines
type LinksConfig struct {
	Distance      float64 `mapstructure:"distance" yaml:"distance"`
	MinBrightness float64 `mapstructure:"min_brightness" yaml:"min_brightness"`
	Alpha         float64 `mapstructure:"alpha" yaml:"alpha"`
	Width         float64 `mapstructure:"width" yaml:"width"`
}

// StagesConfig is the scroll sequence with index-aligned accents and line weights
type StagesConfig struct {
	Sequence    []string  `mapstructure:"sequence" yaml:"sequence"`
	Colors      []string  `mapstructure:"colors" yaml:"colors"`
	LinkWeights []float64 `mapstructure:"link_weights" yaml:"link_weights"`
	Background  string    `mapstructure:"background" yaml:"background"`
}

// ScrollConfig shapes the terminal scroll track
type ScrollConfig struct {
	Pages    float64       `mapstructure:"pages" yaml:"pages"`
	Step     int           `mapstructure:"step" yaml:"step"`
	Autoplay bool          `mapstructure:"autoplay" yaml:"autoplay"`
	Period   time.Duration `mapstructure:"period" yaml:"period"`
}

// AudioConfig toggles the stage chime
type AudioConfig struct {
	Enabled bool    `mapstructure:"enabled" yaml:"enabled"`
	Volume  float64 `mapstructure:"volume" yaml:"volume"`
}

// SnapshotConfig drives the headless PNG renderer
type SnapshotConfig struct {
	Width  int    `mapstructure:"width" yaml:"width"`
	Height int    `mapstructure:"height" yaml:"height"`
	Out    string `mapstructure:"out" yaml:"out"`
	Frames int    `mapstructure:"frames" yaml:"frames"`
	Settle int    `mapstructure:"settle" yaml:"settle"`
}

// SetDefaults registers every key so env overrides resolve through AutomaticEnv
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.log_file", "scrollglow.log")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.compress", false)

	// -- Engine --
	v.SetDefault("engine.particles", 300)
	v.SetDefault("engine.fps", 60)
	v.SetDefault("engine.pixel_ratio", 1.0)
	v.SetDefault("engine.signal_every", 6)
	v.SetDefault("engine.clusters", 5)
	v.SetDefault("engine.seed", uint64(0x5eed))
	v.SetDefault("engine.reference_extent", 600.0)

	// -- Motion --
	v.SetDefault("motion.position_smoothing", 0.045)
	v.SetDefault("motion.attr_smoothing", 0.055)
	v.SetDefault("motion.drift_amplitude", 2.2)
	v.SetDefault("motion.drift_freq_x", 0.0011)
	v.SetDefault("motion.drift_freq_y", 0.0014)
	v.SetDefault("motion.phase_step", 0.012)

	// -- Links --
	v.SetDefault("links.distance", 60.0)
	v.SetDefault("links.min_brightness", 0.15)
	v.SetDefault("links.alpha", 0.35)
	v.SetDefault("links.width", 0.8)

	// -- Stages --
	v.SetDefault("stages.sequence", []string{"clusters", "grid", "signal", "radial"})
	v.SetDefault("stages.colors", []string{"#4f7cff", "#38d6c4", "#ffb347", "#c86bff"})
	v.SetDefault("stages.link_weights", []float64{1.0, 0.8, 0.0, 0.6})
	v.SetDefault("stages.background", "#080910")

	// -- Scroll --
	v.SetDefault("scroll.pages", 4.0)
	v.SetDefault("scroll.step", 3)
	v.SetDefault("scroll.autoplay", false)
	v.SetDefault("scroll.period", "20s")

	// -- Audio --
	v.SetDefault("audio.enabled", false)
	v.SetDefault("audio.volume", 0.2)

	// -- Snapshot --
	v.SetDefault("snapshot.width", 1000)
	v.SetDefault("snapshot.height", 600)
	v.SetDefault("snapshot.out", "frames")
	v.SetDefault("snapshot.frames", 60)
	v.SetDefault("snapshot.settle", 8)
}

// NewDefaultConfig returns the configuration with only defaults applied
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// BindEnv wires SCROLLGLOW_ prefixed environment overrides into v
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads defaults, then path if set, then the environment, and validates the result
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)
	BindEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}
	return NewConfigFromViper(v)
}

// NewConfigFromViper unmarshals and validates an already populated viper instance
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate rejects values the engine cannot run with, naming the offending key
func (c *Config) Validate() error {
	if c.Engine.Particles <= 0 {
		return invalid("engine.particles must be positive, got %d", c.Engine.Particles)
	}
	if c.Engine.FPS <= 0 {
		return invalid("engine.fps must be positive, got %d", c.Engine.FPS)
	}
	if c.Engine.PixelRatio <= 0 {
		return invalid("engine.pixel_ratio must be positive, got %v", c.Engine.PixelRatio)
	}
	if c.Engine.SignalEvery < 0 {
		return invalid("engine.signal_every must not be negative, got %d", c.Engine.SignalEvery)
	}
	if c.Engine.ReferenceExtent < 0 {
		return invalid("engine.reference_extent must not be negative, got %v", c.Engine.ReferenceExtent)
	}
	if c.Engine.Clusters <= 0 {
		return invalid("engine.clusters must be positive, got %d", c.Engine.Clusters)
	}
	if s := c.Motion.PositionSmoothing; s <= 0 || s > 1 {
		return invalid("motion.position_smoothing must be in (0,1], got %v", s)
	}
	if s := c.Motion.AttrSmoothing; s <= 0 || s > 1 {
		return invalid("motion.attr_smoothing must be in (0,1], got %v", s)
	}
	if c.Links.Distance <= 0 {
		return invalid("links.distance must be positive, got %v", c.Links.Distance)
	}

	if _, err := c.Sequence(); err != nil {
		return invalid("stages.sequence: %v", err)
	}
	n := len(c.Stages.Sequence)
	if len(c.Stages.Colors) != n {
		return invalid("stages.colors has %d entries for %d stages", len(c.Stages.Colors), n)
	}
	if len(c.Stages.LinkWeights) != n {
		return invalid("stages.link_weights has %d entries for %d stages", len(c.Stages.LinkWeights), n)
	}
	if _, err := c.Palette(); err != nil {
		return invalid("stages.colors: %v", err)
	}
	if _, err := parseHex(c.Stages.Background); err != nil {
		return invalid("stages.background: %v", err)
	}

	if c.Scroll.Pages < 1 {
		return invalid("scroll.pages must be at least 1, got %v", c.Scroll.Pages)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return invalid("audio.volume must be in [0,1], got %v", c.Audio.Volume)
	}
	return nil
}

// Sequence resolves stage names in scroll order
func (c *Config) Sequence() ([]stage.Kind, error) {
	if len(c.Stages.Sequence) == 0 {
		return nil, errors.New("at least one stage is required")
	}
	kinds := make([]stage.Kind, len(c.Stages.Sequence))
	for i, name := range c.Stages.Sequence {
		k, err := stage.ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds[i] = k
	}
	return kinds, nil
}

// Palette parses stage accents
func (c *Config) Palette() ([]render.RGB, error) {
	out := make([]render.RGB, len(c.Stages.Colors))
	for i, hex := range c.Stages.Colors {
		rgb, err := parseHex(hex)
		if err != nil {
			return nil, err
		}
		out[i] = rgb
	}
	return out, nil
}

func parseHex(hex string) (render.RGB, error) {
	col, err := colorful.Hex(strings.TrimSpace(hex))
	if err != nil {
		return render.RGB{}, fmt.Errorf("color %q: %w", hex, err)
	}
	r, g, b := col.RGB255()
	return render.RGB{R: r, G: g, B: b}, nil
}

// Tunables maps motion and link settings onto the engine constants
func (c *Config) Tunables() choreo.Tunables {
	t := choreo.DefaultTunables()
	t.PositionSmoothing = c.Motion.PositionSmoothing
	t.AttrSmoothing = c.Motion.AttrSmoothing
	t.DriftAmplitude = c.Motion.DriftAmplitude
	t.DriftFreqX = c.Motion.DriftFreqX
	t.DriftFreqY = c.Motion.DriftFreqY
	t.PhaseStep = c.Motion.PhaseStep
	t.LinkDistance = c.Links.Distance
	t.LinkMinBrightness = c.Links.MinBrightness
	t.LinkAlpha = c.Links.Alpha
	t.LinkWidth = c.Links.Width
	t.ReferenceExtent = c.Engine.ReferenceExtent
	if bg, err := parseHex(c.Stages.Background); err == nil {
		t.Background = bg
	}
	return t
}

// FrameInterval is the loop period for engine.fps
func (c *Config) FrameInterval() time.Duration {
	if c.Engine.FPS <= 0 {
		return choreo.NominalFrame
	}
	return time.Second / time.Duration(c.Engine.FPS)
}

// SessionOptions builds session options without ports; callers attach canvas, progress and logger
func (c *Config) SessionOptions() (choreo.Options, error) {
	kinds, err := c.Sequence()
	if err != nil {
		return choreo.Options{}, invalid("stages.sequence: %v", err)
	}
	palette, err := c.Palette()
	if err != nil {
		return choreo.Options{}, invalid("stages.colors: %v", err)
	}
	if len(palette) != len(kinds) || len(c.Stages.LinkWeights) != len(kinds) {
		return choreo.Options{}, invalid("stage tables do not match %d stages", len(kinds))
	}

	styles := make([]stage.Style, len(kinds))
	for i := range kinds {
		styles[i] = stage.Style{Accent: palette[i], LinkWeight: c.Stages.LinkWeights[i]}
	}

	opts := choreo.DefaultOptions()
	opts.Particles = particle.Options{
		Count:       c.Engine.Particles,
		SignalEvery: c.Engine.SignalEvery,
		Clusters:    c.Engine.Clusters,
		Seed:        c.Engine.Seed,
	}
	opts.Stages = kinds
	opts.Styles = styles
	opts.Tunables = c.Tunables()
	opts.FrameInterval = c.FrameInterval()
	return opts, nil
}
