// Package effect models the decorative point-field backgrounds of the site:
// their configuration, the point buffer, its per-frame rotation and
// projection, and the mount/unmount lifecycle of a rendering surface.
//
// The browser draws the live animation from the JSON configuration written
// into the page. This package draws the same field server side for posters
// and keeps the surface bookkeeping.
package effect

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrInvalidConfig = errors.New("invalid effect config")
	ErrUnknownPreset = errors.New("unknown effect preset")
	ErrSurfaceClosed = errors.New("effect surface closed")
)

// Shape selects how the point buffer is populated.
type Shape string

const (
	// ShapeCube distributes points uniformly inside a cube of side Extent.
	ShapeCube Shape = "cube"
	// ShapeSpiral lays points along a flat spiral with a sine wave in depth.
	ShapeSpiral Shape = "spiral"
	// ShapeKnot scatters points around a (2,3) torus knot.
	ShapeKnot Shape = "knot"
)

// Config parameterizes one point field. Rotation is in radians per frame.
type Config struct {
	Points       int     `json:"points"`
	Color        string  `json:"color,omitempty"`
	RandomColors bool    `json:"randomColors,omitempty"`
	Extent       float64 `json:"extent"`
	RotateX      float64 `json:"rotateX"`
	RotateY      float64 `json:"rotateY"`
	PointSize    float64 `json:"pointSize"`
	CameraZ      float64 `json:"cameraZ"`
	FOV          float64 `json:"fov"`
	Far          float64 `json:"far"`
	Shape        Shape   `json:"shape"`
}

func (c Config) Validate() error {
	switch {
	case c.Points <= 0:
		return fmt.Errorf("%w: points must be positive, got %d", ErrInvalidConfig, c.Points)
	case c.Extent <= 0:
		return fmt.Errorf("%w: extent must be positive, got %g", ErrInvalidConfig, c.Extent)
	case c.PointSize <= 0:
		return fmt.Errorf("%w: point size must be positive, got %g", ErrInvalidConfig, c.PointSize)
	case c.CameraZ <= 0:
		return fmt.Errorf("%w: camera distance must be positive, got %g", ErrInvalidConfig, c.CameraZ)
	case c.FOV <= 0 || c.FOV >= 180:
		return fmt.Errorf("%w: fov must be in (0, 180), got %g", ErrInvalidConfig, c.FOV)
	case c.Far <= 0:
		return fmt.Errorf("%w: far plane must be positive, got %g", ErrInvalidConfig, c.Far)
	case c.Color == "" && !c.RandomColors:
		return fmt.Errorf("%w: color is required unless random colors are enabled", ErrInvalidConfig)
	}
	switch c.Shape {
	case ShapeCube, ShapeSpiral, ShapeKnot:
	default:
		return fmt.Errorf("%w: unknown shape %q", ErrInvalidConfig, c.Shape)
	}
	return nil
}

var presets = map[string]Config{
	// Hero star field.
	"hero-stars": {
		Points: 1000, Color: "#ffffff", Extent: 2000,
		RotateX: 0.0005, RotateY: 0.0005,
		PointSize: 1, CameraZ: 500, FOV: 75, Far: 1000, Shape: ShapeCube,
	},
	// Stars behind the initiatives, membership, resources and CTA sections.
	"section-stars": {
		Points: 2000, Color: "#ffffff", Extent: 2000,
		RotateX: 0.0005, RotateY: 0.0005,
		PointSize: 1, CameraZ: 500, FOV: 75, Far: 1000, Shape: ShapeCube,
	},
	// Dim grey particles behind "Why Join HWAI?".
	"backdrop": {
		Points: 2000, Color: "#666666", Extent: 3000,
		RotateX: 0.0003, RotateY: 0.0003,
		PointSize: 1.2, CameraZ: 800, FOV: 75, Far: 1000, Shape: ShapeCube,
	},
	"drift": {
		Points: 60, Color: "#9b5de5", Extent: 2000,
		RotateX: 0.0002, RotateY: 0.001,
		PointSize: 4, CameraZ: 500, FOV: 75, Far: 1000, Shape: ShapeCube,
	},
	"forums-knot": {
		Points: 1600, Color: "#a855f7", Extent: 5,
		RotateX: 0.0015, RotateY: 0.0083,
		PointSize: 0.04, CameraZ: 5, FOV: 75, Far: 1000, Shape: ShapeKnot,
	},
	"auth-spiral": {
		Points: 3000, RandomColors: true, Extent: 10,
		RotateX: 0.01, RotateY: 0.015,
		PointSize: 0.05, CameraZ: 5, FOV: 75, Far: 1000, Shape: ShapeSpiral,
	},
}

// Preset returns the named preset configuration.
func Preset(name string) (Config, error) {
	cfg, ok := presets[name]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return cfg, nil
}

// Presets lists the preset names in sorted order.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
