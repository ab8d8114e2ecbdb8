package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/gogpu/dotlayer"
)

// Config validation errors
var (
	ErrInvalidSize     = errors.New("width and height must be positive")
	ErrInvalidZoom     = errors.New("zoom must be between 0 and 20")
	ErrInvalidLatitude = errors.New("latitude must be between -85 and 85")
	ErrInvalidLogLevel = errors.New("log_level must be debug, info, warn, or error")
	ErrInvalidFPS      = errors.New("fps must be positive")
	ErrInvalidSurface  = errors.New("surface must be image or texture")
)

// Config holds the viewer settings read from DOTVIEW_* variables.
type Config struct {
	Width       int     `envconfig:"WIDTH" default:"1024"`
	Height      int     `envconfig:"HEIGHT" default:"768"`
	Lat         float64 `envconfig:"LAT" default:"47.61"`
	Lng         float64 `envconfig:"LNG" default:"-122.33"`
	Zoom        int     `envconfig:"ZOOM" default:"12"`
	Input       string  `envconfig:"INPUT"`
	DemoTracks  int     `envconfig:"DEMO_TRACKS" default:"40"`
	MetricsAddr string  `envconfig:"METRICS_ADDR"`
	LogLevel    string  `envconfig:"LOG_LEVEL" default:"info"`
	FPS         float64 `envconfig:"FPS" default:"30"`
	Continuous  bool    `envconfig:"CONTINUOUS"`
	Debug       bool    `envconfig:"DEBUG"`
	Surface     string  `envconfig:"SURFACE" default:"image"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Width:      1024,
		Height:     768,
		Lat:        47.61,
		Lng:        -122.33,
		Zoom:       12,
		DemoTracks: 40,
		LogLevel:   "info",
		FPS:        30,
		Surface:    surfaceImage,
	}
}

// ValidateConfig validates the configuration and returns an error if invalid
func ValidateConfig(cfg *Config) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return ErrInvalidSize
	}
	if cfg.Zoom < 0 || cfg.Zoom > 20 {
		return ErrInvalidZoom
	}
	if cfg.Lat < -85 || cfg.Lat > 85 {
		return ErrInvalidLatitude
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return err
	}
	if cfg.FPS <= 0 {
		return ErrInvalidFPS
	}
	if cfg.Surface != surfaceImage && cfg.Surface != surfaceTexture {
		return ErrInvalidSurface
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, ErrInvalidLogLevel
}

// loadConfig reads envFile, if it exists, into the environment without
// overriding variables already set, then processes DOTVIEW_* into a Config
// and DOTLAYER_* into layer parameters.
func loadConfig(envFile string) (Config, dotlayer.Params, error) {
	var (
		cfg    Config
		params dotlayer.Params
	)
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, params, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	if err := envconfig.Process("dotview", &cfg); err != nil {
		return cfg, params, fmt.Errorf("process config: %w", err)
	}
	if err := envconfig.Process("dotlayer", &params); err != nil {
		return cfg, params, fmt.Errorf("process layer params: %w", err)
	}
	if err := ValidateConfig(&cfg); err != nil {
		return cfg, params, err
	}
	if err := dotlayer.ValidateParams(params); err != nil {
		return cfg, params, err
	}
	return cfg, params, nil
}
