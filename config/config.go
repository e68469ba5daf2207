// Package config holds the engine tunables: geometry limits, viewport
// behavior, and cache budgets. Defaults are compiled in; a TOML file can
// override any subset of them.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	strata "github.com/strata-editor/strata"
)

// Config collects the engine configuration.
type Config struct {
	// MaxLayerDim is the maximum width or height of a layer in pixels.
	// Geometry mutations clamp to this value.
	MaxLayerDim int `toml:"max_layer_dim"`

	// MinZoom and MaxZoom bound the viewport zoom factor.
	MinZoom float64 `toml:"min_zoom"`
	MaxZoom float64 `toml:"max_zoom"`

	// FitMargin is the border in viewport pixels kept around the document
	// by FitToViewport.
	FitMargin int `toml:"fit_margin"`

	// HiResUpscaleRatio and HiResDownscaleRatio throttle regeneration of
	// scalable-content surfaces: a new rasterization is requested only when
	// the wanted scale exceeds the last-rendered scale by more than
	// HiResUpscaleRatio, or drops below it by more than HiResDownscaleRatio.
	HiResUpscaleRatio   float64 `toml:"hires_upscale_ratio"`
	HiResDownscaleRatio float64 `toml:"hires_downscale_ratio"`

	// Checkerboard controls the document background. When false,
	// BackgroundColor is used as a solid fill.
	Checkerboard    bool   `toml:"checkerboard"`
	CheckerSize     int    `toml:"checker_size"`
	BackgroundColor string `toml:"background_color"` // hex RRGGBB

	// ImageCacheEntries bounds the encoded-image LRU (entries per shard).
	ImageCacheEntries int `toml:"image_cache_entries"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		MaxLayerDim:         8192,
		MinZoom:             0.1,
		MaxZoom:             10,
		FitMargin:           16,
		HiResUpscaleRatio:   1.2,
		HiResDownscaleRatio: 0.5,
		Checkerboard:        true,
		CheckerSize:         8,
		BackgroundColor:     "ffffff",
		ImageCacheEntries:   64,
	}
}

// Load reads a TOML file and overlays it on the defaults.
// A missing file is not an error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// ParseBackgroundColor decodes the hex RRGGBB background color.
func (c Config) ParseBackgroundColor() (strata.RGBA, error) {
	s := strings.TrimPrefix(c.BackgroundColor, "#")
	if len(s) != 6 {
		return strata.White, fmt.Errorf("config: background_color %q: want RRGGBB", c.BackgroundColor)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return strata.White, fmt.Errorf("config: background_color %q: %w", c.BackgroundColor, err)
	}
	return strata.RGB(
		float64(v>>16&0xff)/255,
		float64(v>>8&0xff)/255,
		float64(v&0xff)/255,
	), nil
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if c.MaxLayerDim <= 0 {
		return fmt.Errorf("config: max_layer_dim must be positive, got %d", c.MaxLayerDim)
	}
	if c.MinZoom <= 0 || c.MaxZoom < c.MinZoom {
		return fmt.Errorf("config: invalid zoom range [%v, %v]", c.MinZoom, c.MaxZoom)
	}
	if c.HiResUpscaleRatio <= 1 {
		return fmt.Errorf("config: hires_upscale_ratio must exceed 1, got %v", c.HiResUpscaleRatio)
	}
	if c.HiResDownscaleRatio <= 0 || c.HiResDownscaleRatio >= 1 {
		return fmt.Errorf("config: hires_downscale_ratio must be in (0, 1), got %v", c.HiResDownscaleRatio)
	}
	if c.CheckerSize <= 0 {
		return fmt.Errorf("config: checker_size must be positive, got %d", c.CheckerSize)
	}
	return nil
}
