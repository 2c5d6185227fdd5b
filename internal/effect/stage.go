package effect

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Frame is one redraw of a surface. Points is only valid until the next
// tick of the same surface.
type Frame struct {
	Name     string
	Seq      uint64
	Viewport Viewport
	Points   []Projected
}

// Renderer draws frames. Render is called from the animating goroutine.
type Renderer interface {
	Render(Frame) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(Frame) error

func (fn RendererFunc) Render(f Frame) error { return fn(f) }

// Stage is the document effects are mounted on. It owns the single shared
// viewport signal: Resize reprojects every attached surface.
type Stage struct {
	mu       sync.Mutex
	viewport Viewport
	surfaces map[*Surface]struct{}
	rng      *rand.Rand
	onChange func(attached int)
}

type StageOption func(*Stage)

// WithSeed makes point placement deterministic.
func WithSeed(seed uint64) StageOption {
	return func(s *Stage) { s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithAttachHook is called with the attached count after every mount and
// unmount.
func WithAttachHook(fn func(attached int)) StageOption {
	return func(s *Stage) { s.onChange = fn }
}

func NewStage(vp Viewport, opts ...StageOption) *Stage {
	if !vp.valid() {
		vp = DefaultViewport
	}
	s := &Stage{
		viewport: vp,
		surfaces: make(map[*Surface]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		now := uint64(time.Now().UnixNano())
		s.rng = rand.New(rand.NewPCG(now, now>>1))
	}
	return s
}

// Mount allocates a field for cfg and attaches a new surface sized to the
// stage viewport.
func (s *Stage) Mount(name string, cfg Config) (*Surface, error) {
	s.mu.Lock()
	field, err := NewField(cfg, s.rng)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	sf := &Surface{
		name:   name,
		stage:  s,
		field:  field,
		proj:   NewProjection(cfg, s.viewport),
		closed: make(chan struct{}),
	}
	s.surfaces[sf] = struct{}{}
	n := len(s.surfaces)
	s.mu.Unlock()
	s.notify(n)
	return sf, nil
}

// MountPreset mounts the named preset under the same name.
func (s *Stage) MountPreset(name, preset string) (*Surface, error) {
	cfg, err := Preset(preset)
	if err != nil {
		return nil, err
	}
	return s.Mount(name, cfg)
}

// Resize records the new viewport and reprojects every attached surface.
func (s *Stage) Resize(vp Viewport) {
	if !vp.valid() {
		return
	}
	s.mu.Lock()
	s.viewport = vp
	attached := make([]*Surface, 0, len(s.surfaces))
	for sf := range s.surfaces {
		attached = append(attached, sf)
	}
	s.mu.Unlock()
	for _, sf := range attached {
		sf.resize(vp)
	}
}

func (s *Stage) Viewport() Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

// Attached reports how many surfaces are currently mounted.
func (s *Stage) Attached() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.surfaces)
}

// Lookup returns an attached surface by name.
func (s *Stage) Lookup(name string) (*Surface, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sf := range s.surfaces {
		if sf.name == name {
			return sf, true
		}
	}
	return nil, false
}

// Close unmounts every attached surface.
func (s *Stage) Close() {
	s.mu.Lock()
	attached := make([]*Surface, 0, len(s.surfaces))
	for sf := range s.surfaces {
		attached = append(attached, sf)
	}
	s.mu.Unlock()
	for _, sf := range attached {
		sf.Close()
	}
}

func (s *Stage) detach(sf *Surface) {
	s.mu.Lock()
	delete(s.surfaces, sf)
	n := len(s.surfaces)
	s.mu.Unlock()
	s.notify(n)
}

func (s *Stage) notify(n int) {
	if s.onChange != nil {
		s.onChange(n)
	}
}

// Surface is a mounted effect. Close detaches it from its stage and
// releases the point buffer.
type Surface struct {
	name  string
	stage *Stage

	mu    sync.Mutex
	field *Field
	proj  Projection
	seq   uint64
	buf   []Projected

	closeOnce sync.Once
	closed    chan struct{}
}

func (sf *Surface) Name() string { return sf.name }

// Done is closed when the surface is unmounted.
func (sf *Surface) Done() <-chan struct{} { return sf.closed }

// Tick rotates the field by one frame and projects it.
func (sf *Surface) Tick() (Frame, error) {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	if sf.field == nil {
		return Frame{}, ErrSurfaceClosed
	}
	sf.field.Rotate()
	sf.seq++
	sf.buf = sf.field.Project(sf.proj, sf.buf[:0])
	return Frame{Name: sf.name, Seq: sf.seq, Viewport: sf.proj.Viewport, Points: sf.buf}, nil
}

// Advance rotates the field by n frames without projecting it.
func (sf *Surface) Advance(n int) error {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	if sf.field == nil {
		return ErrSurfaceClosed
	}
	for i := 0; i < n; i++ {
		sf.field.Rotate()
	}
	sf.seq += uint64(n)
	return nil
}

// Snapshot projects the current rotation onto vp without advancing the
// field. A zero viewport uses the surface's own. The returned points are
// owned by the caller.
func (sf *Surface) Snapshot(vp Viewport) (Frame, error) {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	if sf.field == nil {
		return Frame{}, ErrSurfaceClosed
	}
	proj := sf.proj
	if vp.valid() && vp != proj.Viewport {
		proj = NewProjection(sf.field.Config(), vp)
	}
	pts := sf.field.Project(proj, nil)
	return Frame{Name: sf.name, Seq: sf.seq, Viewport: proj.Viewport, Points: pts}, nil
}

// Projection returns the current perspective parameters.
func (sf *Surface) Projection() Projection {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	return sf.proj
}

func (sf *Surface) resize(vp Viewport) {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	if sf.field == nil {
		return
	}
	sf.proj = NewProjection(sf.field.Config(), vp)
}

// Close unmounts the surface. It is safe to call more than once.
func (sf *Surface) Close() {
	sf.closeOnce.Do(func() {
		sf.mu.Lock()
		sf.field.release()
		sf.field = nil
		sf.buf = nil
		sf.mu.Unlock()
		close(sf.closed)
		sf.stage.detach(sf)
	})
}

// Animate redraws the surface on every tick until the surface is closed or
// ctx ends. It returns nil on unmount, ctx.Err() on cancellation and the
// renderer's error if drawing fails.
func (sf *Surface) Animate(ctx context.Context, ticks <-chan time.Time, r Renderer) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sf.closed:
			return nil
		case <-ticks:
			frame, err := sf.Tick()
			if err == ErrSurfaceClosed {
				return nil
			}
			if err != nil {
				return err
			}
			if err := r.Render(frame); err != nil {
				return err
			}
		}
	}
}

// Loop animates sf at the given frame interval and closes the surface when
// it returns, so every mount run through Loop is paired with its unmount.
func Loop(ctx context.Context, sf *Surface, interval time.Duration, r Renderer) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	defer sf.Close()
	return sf.Animate(ctx, t.C, r)
}

// Drive keeps the rotation of an undrawn surface in step with wall time:
// every period it advances the field by the frames that period spans at
// the given frame interval. Like Loop it closes the surface on return.
func Drive(ctx context.Context, sf *Surface, frame, period time.Duration) error {
	defer sf.Close()
	n := max(int(period/frame), 1)
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sf.closed:
			return nil
		case <-t.C:
			err := sf.Advance(n)
			if err == ErrSurfaceClosed {
				return nil
			}
			if err != nil {
				return err
			}
		}
	}
}
