// Package config loads the command line defaults from a YAML file and the
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	transform "github.com/gcslaoli/image-transform-go"
	"github.com/gcslaoli/image-transform-go/internal/logging"
)

// Config holds all application configuration.
type Config struct {
	Logging    logging.Config   `yaml:"logging"`
	Output     OutputConfig     `yaml:"output"`
	Blur       BlurConfig       `yaml:"blur"`
	LowRes     LowResConfig     `yaml:"lowres"`
	NonUniform NonUniformConfig `yaml:"nonuniform"`
	Watermark  WatermarkConfig  `yaml:"watermark"`
}

// OutputConfig holds encoder settings.
type OutputConfig struct {
	JPEGQuality  int  `yaml:"jpeg_quality"`
	WebPQuality  int  `yaml:"webp_quality"`
	WebPLossless bool `yaml:"webp_lossless"`
}

// BlurConfig holds Gaussian blur defaults.
type BlurConfig struct {
	Radius float64 `yaml:"radius"`
}

// LowResConfig holds downscaling defaults.
type LowResConfig struct {
	Scale    float64 `yaml:"scale"`
	Resample string  `yaml:"resample"`
}

// NonUniformConfig holds per-axis scaling defaults.
type NonUniformConfig struct {
	ScaleX   float64 `yaml:"scale_x"`
	ScaleY   float64 `yaml:"scale_y"`
	Resample string  `yaml:"resample"`
}

// WatermarkConfig holds watermark defaults.
type WatermarkConfig struct {
	Position string  `yaml:"position"`
	Scale    float64 `yaml:"scale"`
	Opacity  float64 `yaml:"opacity"`
	Margin   int     `yaml:"margin"`
	Resample string  `yaml:"resample"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	wm := transform.DefaultWatermarkOptions()
	return &Config{
		Logging: logging.DefaultConfig(),
		Output: OutputConfig{
			JPEGQuality: transform.DefaultJPEGQuality,
			WebPQuality: transform.DefaultWebPQuality,
		},
		Blur: BlurConfig{Radius: transform.DefaultBlurRadius},
		LowRes: LowResConfig{
			Scale:    transform.DefaultDownscale,
			Resample: transform.DefaultResample.String(),
		},
		NonUniform: NonUniformConfig{
			ScaleX:   1,
			ScaleY:   1,
			Resample: transform.DefaultResample.String(),
		},
		Watermark: WatermarkConfig{
			Position: wm.Position.String(),
			Scale:    wm.Scale,
			Opacity:  wm.Opacity,
			Margin:   wm.Margin,
			Resample: wm.Resample.String(),
		},
	}
}

// Load reads config from a YAML file (if it exists) and overrides with
// environment variables, including those from a .env file in the working
// directory. Environment variables take precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	// A missing .env file is not an error.
	_ = godotenv.Load()
	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() error {
	if v := os.Getenv("IMGT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("IMGT_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("IMGT_LOG_FILE"); v != "" {
		c.Logging.FilePath = v
	}
	if v := os.Getenv("IMGT_JPEG_QUALITY"); v != "" {
		q, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("IMGT_JPEG_QUALITY: %w", err)
		}
		c.Output.JPEGQuality = q
	}
	if v := os.Getenv("IMGT_WEBP_QUALITY"); v != "" {
		q, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("IMGT_WEBP_QUALITY: %w", err)
		}
		c.Output.WebPQuality = q
	}
	if v := os.Getenv("IMGT_WATERMARK_POSITION"); v != "" {
		c.Watermark.Position = v
	}
	return nil
}

func (c *Config) validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}
	if !logging.ValidFormat(c.Logging.Format) {
		return fmt.Errorf("invalid log format: %q", c.Logging.Format)
	}
	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		return fmt.Errorf("invalid jpeg quality: %d", c.Output.JPEGQuality)
	}
	if c.Output.WebPQuality < 1 || c.Output.WebPQuality > 100 {
		return fmt.Errorf("invalid webp quality: %d", c.Output.WebPQuality)
	}
	for _, name := range []string{c.LowRes.Resample, c.NonUniform.Resample} {
		if _, err := transform.ParseResample(name); err != nil {
			return err
		}
	}
	if _, err := c.WatermarkOptions(); err != nil {
		return err
	}
	return nil
}

// EncodeOptions converts the output section for the library.
func (c *Config) EncodeOptions() transform.EncodeOptions {
	return transform.EncodeOptions{
		JPEGQuality:  c.Output.JPEGQuality,
		WebPQuality:  c.Output.WebPQuality,
		WebPLossless: c.Output.WebPLossless,
	}
}

// WatermarkOptions converts the watermark section for the library.
func (c *Config) WatermarkOptions() (transform.WatermarkOptions, error) {
	pos, err := transform.ParseAnchor(c.Watermark.Position)
	if err != nil {
		return transform.WatermarkOptions{}, err
	}
	r, err := transform.ParseResample(c.Watermark.Resample)
	if err != nil {
		return transform.WatermarkOptions{}, err
	}

	opts := transform.WatermarkOptions{
		Position: pos,
		Scale:    c.Watermark.Scale,
		Opacity:  c.Watermark.Opacity,
		Margin:   c.Watermark.Margin,
		Resample: r,
	}
	return opts, opts.Validate()
}
