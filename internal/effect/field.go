package effect

import (
	"fmt"
	"math"
	"math/rand/v2"
)

const near = 0.1

// Viewport is the size of a rendering surface in CSS pixels.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DefaultViewport is used when a caller has no viewport to report.
var DefaultViewport = Viewport{Width: 1280, Height: 720}

func (v Viewport) Aspect() float64 {
	if v.Height <= 0 {
		return 1
	}
	return float64(v.Width) / float64(v.Height)
}

func (v Viewport) valid() bool { return v.Width > 0 && v.Height > 0 }

// Point is a position in field space.
type Point struct{ X, Y, Z float64 }

// Projected is a point mapped onto the viewport.
type Projected struct {
	X, Y  float64
	Size  float64
	Color string
}

// Field is the fixed-size point buffer of one effect. A Field is not safe
// for concurrent use; Surface serializes access to it.
type Field struct {
	cfg    Config
	pos    []float64
	colors []float64
	rotX   float64
	rotY   float64
}

// NewField allocates cfg.Points points and populates them according to
// cfg.Shape, drawing randomness from rng.
func NewField(cfg Config, rng *rand.Rand) (*Field, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f := &Field{cfg: cfg, pos: make([]float64, cfg.Points*3)}
	switch cfg.Shape {
	case ShapeCube:
		for i := range f.pos {
			f.pos[i] = (rng.Float64() - 0.5) * cfg.Extent
		}
	case ShapeSpiral:
		for i := 0; i < cfg.Points; i++ {
			angle := float64(i) * 0.15
			radius := 0.1 * float64(i) * 0.015
			f.pos[i*3] = radius * math.Cos(angle)
			f.pos[i*3+1] = radius * math.Sin(angle)
			f.pos[i*3+2] = math.Sin(float64(i)*0.1) * 2
		}
	case ShapeKnot:
		const p, q, radius, tube = 2.0, 3.0, 1.5, 0.5
		for i := 0; i < cfg.Points; i++ {
			u := float64(i) / float64(cfg.Points) * p * 2 * math.Pi
			qu := q / p * u
			cs := math.Cos(qu)
			off := (rng.Float64() - 0.5) * 2 * tube
			f.pos[i*3] = radius*(2+cs)*0.5*math.Cos(u) + off*math.Cos(u)
			f.pos[i*3+1] = radius*(2+cs)*0.5*math.Sin(u) + off*math.Sin(u)
			f.pos[i*3+2] = radius*math.Sin(qu)*0.5 + (rng.Float64()-0.5)*tube
		}
	}
	if cfg.RandomColors {
		f.colors = make([]float64, cfg.Points*3)
		for i := range f.colors {
			f.colors[i] = rng.Float64()
		}
	}
	return f, nil
}

func (f *Field) Config() Config { return f.cfg }

// Len reports the number of points, or zero once the buffer is released.
func (f *Field) Len() int { return len(f.pos) / 3 }

func (f *Field) Point(i int) Point {
	return Point{X: f.pos[i*3], Y: f.pos[i*3+1], Z: f.pos[i*3+2]}
}

// Rotate advances the field by one frame of its configured rotation.
func (f *Field) Rotate() {
	f.rotX += f.cfg.RotateX
	f.rotY += f.cfg.RotateY
}

func (f *Field) Rotation() (x, y float64) { return f.rotX, f.rotY }

func (f *Field) release() {
	f.pos = nil
	f.colors = nil
}

// Projection holds the perspective parameters derived from a viewport.
type Projection struct {
	Viewport Viewport
	aspect   float64
	focal    float64
	far      float64
	cameraZ  float64
	size     float64
}

// NewProjection computes the perspective for cfg on vp. It must be
// recomputed whenever the viewport changes.
func NewProjection(cfg Config, vp Viewport) Projection {
	if !vp.valid() {
		vp = DefaultViewport
	}
	fov := cfg.FOV * math.Pi / 180
	return Projection{
		Viewport: vp,
		aspect:   vp.Aspect(),
		focal:    float64(vp.Height) / 2 / math.Tan(fov/2),
		far:      cfg.Far,
		cameraZ:  cfg.CameraZ,
		size:     cfg.PointSize,
	}
}

func (p Projection) Aspect() float64 { return p.aspect }

// Project appends the visible points of f, seen through p, to dst.
func (f *Field) Project(p Projection, dst []Projected) []Projected {
	sx, cx := math.Sincos(f.rotX)
	sy, cy := math.Sincos(f.rotY)
	w, h := float64(p.Viewport.Width), float64(p.Viewport.Height)
	for i := 0; i < f.Len(); i++ {
		x, y, z := f.pos[i*3], f.pos[i*3+1], f.pos[i*3+2]
		// Y then X rotation.
		x, z = x*cy+z*sy, -x*sy+z*cy
		y, z = y*cx-z*sx, y*sx+z*cx
		depth := p.cameraZ - z
		if depth <= near || depth > p.far {
			continue
		}
		scale := p.focal / depth
		px := w/2 + x*scale
		py := h/2 - y*scale
		if px < 0 || px > w || py < 0 || py > h {
			continue
		}
		size := p.size * scale / 2
		if size < 0.5 {
			size = 0.5
		}
		dst = append(dst, Projected{X: px, Y: py, Size: size, Color: f.color(i)})
	}
	return dst
}

func (f *Field) color(i int) string {
	if f.colors == nil {
		return f.cfg.Color
	}
	return fmt.Sprintf("#%02x%02x%02x",
		uint8(f.colors[i*3]*255), uint8(f.colors[i*3+1]*255), uint8(f.colors[i*3+2]*255))
}
