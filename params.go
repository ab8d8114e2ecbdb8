package dotlayer

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/gogpu/dotlayer/activity"
)

// Parameter validation errors.
var (
	ErrBadDotScale  = errors.New("dotlayer: dot scale must be positive")
	ErrBadPeriod    = errors.New("dotlayer: dot period must be positive")
	ErrBadTimeScale = errors.New("dotlayer: time scale must be positive")
	ErrBadAlpha     = errors.New("dotlayer: alpha must be in [0, 1]")
	ErrBadPathWidth = errors.New("dotlayer: path widths must be at least 1")
)

// Params are the user-facing animation settings. The envconfig tags let a
// command read them from the environment.
type Params struct {
	// DotScale scales dot size with zoom: size = max(1, round(DotScale·ln(zoom))).
	DotScale float64 `envconfig:"SZ" default:"1.5"`
	// Period is the track time in seconds between consecutive dots.
	Period float64 `envconfig:"T" default:"30"`
	// TimeScale is the track seconds that pass per wall-clock second.
	TimeScale float64 `envconfig:"TAU" default:"20"`
	// Alpha is the dot opacity in [0, 1].
	Alpha float64 `envconfig:"ALPHA" default:"0.8"`

	Paused    bool `envconfig:"PAUSED"`
	ShowPaths bool `envconfig:"SHOW_PATHS" default:"true"`

	PathWidth         int `envconfig:"PATH_WIDTH" default:"1"`
	SelectedPathWidth int `envconfig:"SELECTED_PATH_WIDTH" default:"3"`

	Shadow Shadow
}

// Shadow is an offset copy drawn beneath every dot.
type Shadow struct {
	Enabled bool   `envconfig:"ENABLED"`
	X       int    `envconfig:"X" default:"2"`
	Y       int    `envconfig:"Y" default:"2"`
	Color   string `envconfig:"COLOR" default:"#00000080"`
}

// DefaultParams returns the settings used when none are given.
func DefaultParams() Params {
	return Params{
		DotScale:          1.5,
		Period:            30,
		TimeScale:         20,
		Alpha:             0.8,
		ShowPaths:         true,
		PathWidth:         1,
		SelectedPathWidth: 3,
		Shadow:            Shadow{X: 2, Y: 2, Color: "#00000080"},
	}
}

// ValidateParams reports the first invalid setting in p.
func ValidateParams(p Params) error {
	switch {
	case !(p.DotScale > 0):
		return fmt.Errorf("%w: %v", ErrBadDotScale, p.DotScale)
	case !(p.Period > 0):
		return fmt.Errorf("%w: %v", ErrBadPeriod, p.Period)
	case !(p.TimeScale > 0):
		return fmt.Errorf("%w: %v", ErrBadTimeScale, p.TimeScale)
	case !(p.Alpha >= 0 && p.Alpha <= 1):
		return fmt.Errorf("%w: %v", ErrBadAlpha, p.Alpha)
	case p.PathWidth < 1 || p.SelectedPathWidth < 1:
		return fmt.Errorf("%w: %d, %d", ErrBadPathWidth, p.PathWidth, p.SelectedPathWidth)
	}
	if p.Shadow.Enabled {
		if _, err := activity.ParseColor(p.Shadow.Color); err != nil {
			return fmt.Errorf("dotlayer: shadow: %w", err)
		}
	}
	return nil
}

// DotSettings are the derived values the dot pass draws with.
type DotSettings struct {
	Size      float64
	Alpha     uint8
	Period    float64
	TimeScale float64
}

// dotSettings derives drawing values from p at the given zoom.
func dotSettings(p Params, zoom float64) DotSettings {
	size := 1.0
	if zoom > 1 {
		size = math.Max(1, math.Round(p.DotScale*math.Log(zoom)))
	}
	return DotSettings{
		Size:      size,
		Alpha:     uint8(min(255, int(p.Alpha*256))),
		Period:    p.Period,
		TimeScale: p.TimeScale,
	}
}

// shadowColor returns the parsed shadow color; p must have passed
// ValidateParams.
func shadowColor(s Shadow) color.RGBA {
	c, err := activity.ParseColor(s.Color)
	if err != nil {
		return color.RGBA{A: 0x80}
	}
	return c
}
