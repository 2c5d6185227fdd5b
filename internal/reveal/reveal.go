// Package reveal describes entrance animations: a group of elements moves
// from a hidden state to a visible one, either on load or once the group
// scrolls past a viewport threshold. The browser script plays them from the
// data-reveal attribute; this package owns their parameters and timing.
package reveal

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"sort"
	"strconv"
	"strings"
	"time"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

var ErrInvalidSequence = errors.New("invalid reveal sequence")

// State is the visual state of an element. Scale zero means unscaled.
type State struct {
	X         float64 `json:"x,omitempty"`
	Y         float64 `json:"y,omitempty"`
	Opacity   float64 `json:"opacity"`
	Scale     float64 `json:"scale,omitempty"`
	RotationY float64 `json:"rotationY,omitempty"`
}

type Ease string

const (
	Power2Out Ease = "power2.out"
	Power3Out Ease = "power3.out"
	BackOut   Ease = "back.out(1.7)"
	SineInOut Ease = "sine.inOut"
	Linear    Ease = "linear"
)

var eases = map[Ease]bool{Power2Out: true, Power3Out: true, BackOut: true, SineInOut: true, Linear: true}

// Trigger gates a sequence on scroll position.
type Trigger struct {
	// Start is "<element edge> <viewport position>", e.g. "top 80%".
	Start string `json:"start"`
	// ToggleActions are the onEnter, onLeave, onEnterBack and onLeaveBack
	// actions, e.g. "play none none reverse".
	ToggleActions string `json:"toggleActions,omitempty"`
	Once          bool   `json:"once,omitempty"`
}

type Sequence struct {
	From     State
	To       State
	Duration time.Duration
	Stagger  time.Duration
	Delay    time.Duration
	Ease     Ease
	Trigger  *Trigger
}

// Step is the timing of one element of a group, relative to the moment the
// sequence starts.
type Step struct {
	Index int
	Start time.Duration
	End   time.Duration
}

// Schedule returns the timing of n elements. A group with no elements has
// an empty schedule.
func (s Sequence) Schedule(n int) []Step {
	if n <= 0 {
		return nil
	}
	steps := make([]Step, n)
	for i := range steps {
		start := s.Delay + time.Duration(i)*s.Stagger
		steps[i] = Step{Index: i, Start: start, End: start + s.Duration}
	}
	return steps
}

// Total is the time from start until the last of n elements is visible.
func (s Sequence) Total(n int) time.Duration {
	steps := s.Schedule(n)
	if len(steps) == 0 {
		return 0
	}
	return steps[len(steps)-1].End
}

func (s Sequence) Validate() error {
	switch {
	case s.Duration <= 0:
		return fmt.Errorf("%w: duration must be positive, got %s", ErrInvalidSequence, s.Duration)
	case s.Stagger < 0:
		return fmt.Errorf("%w: stagger must not be negative, got %s", ErrInvalidSequence, s.Stagger)
	case s.Delay < 0:
		return fmt.Errorf("%w: delay must not be negative, got %s", ErrInvalidSequence, s.Delay)
	case !eases[s.Ease]:
		return fmt.Errorf("%w: unknown ease %q", ErrInvalidSequence, s.Ease)
	}
	if s.Trigger == nil {
		return nil
	}
	if _, err := ParseStart(s.Trigger.Start); err != nil {
		return err
	}
	return validateToggleActions(s.Trigger.ToggleActions)
}

// Edge is a reference line of the triggering element.
type Edge string

const (
	EdgeTop    Edge = "top"
	EdgeCenter Edge = "center"
	EdgeBottom Edge = "bottom"
)

// Start is a parsed trigger position: the sequence starts when Edge of the
// element crosses Fraction of the viewport height, measured from the top.
type Start struct {
	Edge     Edge
	Fraction float64
}

// ParseStart parses a trigger start such as "top 80%" or "center center".
func ParseStart(s string) (Start, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Start{}, fmt.Errorf("%w: start %q must be \"<edge> <position>\"", ErrInvalidSequence, s)
	}
	edge := Edge(fields[0])
	if _, ok := keywordFraction(fields[0]); !ok {
		return Start{}, fmt.Errorf("%w: unknown edge %q", ErrInvalidSequence, fields[0])
	}
	if f, ok := keywordFraction(fields[1]); ok {
		return Start{Edge: edge, Fraction: f}, nil
	}
	pct, ok := strings.CutSuffix(fields[1], "%")
	if !ok {
		return Start{}, fmt.Errorf("%w: position %q must be a percentage or edge keyword", ErrInvalidSequence, fields[1])
	}
	v, err := strconv.ParseFloat(pct, 64)
	if err != nil || v < 0 || v > 100 {
		return Start{}, fmt.Errorf("%w: position %q out of range", ErrInvalidSequence, fields[1])
	}
	return Start{Edge: edge, Fraction: v / 100}, nil
}

func keywordFraction(s string) (float64, bool) {
	switch Edge(s) {
	case EdgeTop:
		return 0, true
	case EdgeCenter:
		return 0.5, true
	case EdgeBottom:
		return 1, true
	}
	return 0, false
}

var toggleActions = map[string]bool{
	"play": true, "pause": true, "resume": true, "reverse": true,
	"restart": true, "reset": true, "complete": true, "none": true,
}

func validateToggleActions(s string) error {
	if s == "" {
		return nil
	}
	fields := strings.Fields(s)
	if len(fields) != 4 {
		return fmt.Errorf("%w: toggle actions %q must name four actions", ErrInvalidSequence, s)
	}
	for _, f := range fields {
		if !toggleActions[f] {
			return fmt.Errorf("%w: unknown toggle action %q", ErrInvalidSequence, f)
		}
	}
	return nil
}

// wire is the shape read by the browser script. Times are in seconds.
type wire struct {
	From     State    `json:"from"`
	To       State    `json:"to"`
	Duration float64  `json:"duration"`
	Stagger  float64  `json:"stagger,omitempty"`
	Delay    float64  `json:"delay,omitempty"`
	Ease     Ease     `json:"ease"`
	Trigger  *Trigger `json:"trigger,omitempty"`
}

// Attr encodes the sequence as the value of a data-reveal attribute.
func (s Sequence) Attr() string {
	data, err := json.Marshal(wire{
		From:     s.From,
		To:       s.To,
		Duration: s.Duration.Seconds(),
		Stagger:  s.Stagger.Seconds(),
		Delay:    s.Delay.Seconds(),
		Ease:     s.Ease,
		Trigger:  s.Trigger,
	})
	if err != nil {
		return ""
	}
	return string(data)
}

const (
	ms  = time.Millisecond
	sec = time.Second
)

var (
	visible  = State{Opacity: 1}
	onScroll = &Trigger{Start: "top 80%", ToggleActions: "play none none reverse"}
)

var presets = map[string]Sequence{
	"header": {From: State{Y: -100}, To: visible, Duration: sec, Ease: Power3Out},
	"hero":   {From: State{Y: 50}, To: visible, Duration: sec, Stagger: 200 * ms, Ease: Power3Out},
	"section": {
		From: State{Y: 50}, To: visible, Duration: sec, Stagger: 300 * ms, Ease: Power3Out,
		Trigger: &Trigger{Start: "top 80%"},
	},
	"slide-left": {
		From: State{X: -100}, To: visible, Duration: 800 * ms, Stagger: 100 * ms, Ease: Power2Out,
		Trigger: onScroll,
	},
	"slide-right": {
		From: State{X: 100}, To: visible, Duration: sec, Ease: Power3Out,
		Trigger: onScroll,
	},
	"pop": {
		From: State{Scale: 0.5}, To: State{Opacity: 1, Scale: 1}, Duration: 800 * ms, Stagger: 100 * ms,
		Delay: 1500 * ms, Ease: BackOut,
	},
	"flip": {
		From: State{RotationY: -90}, To: visible, Duration: 800 * ms, Stagger: 100 * ms, Ease: Power2Out,
		Trigger: onScroll,
	},
	"rise": {
		From: State{Scale: 0.8, Y: 30}, To: State{Opacity: 1, Scale: 1}, Duration: sec, Stagger: 200 * ms,
		Ease: Power3Out, Trigger: onScroll,
	},
	"cta": {From: State{Y: 30}, To: visible, Duration: 600 * ms, Stagger: 100 * ms, Delay: 2 * sec, Ease: Power2Out},
	"cta-form": {
		From: State{Scale: 0.9}, To: State{Opacity: 1, Scale: 1}, Duration: 800 * ms, Ease: Power2Out,
		Trigger: &Trigger{Start: "top 85%", ToggleActions: "play none none reverse"},
	},
	"fade": {To: visible, Duration: sec, Ease: Power2Out, Trigger: &Trigger{Start: "top 80%", Once: true}},
}

// Preset returns the named sequence.
func Preset(name string) (Sequence, bool) {
	s, ok := presets[name]
	return s, ok
}

func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HTMLAttr renders the data-reveal attribute for the named preset for use
// in html/template. An unknown preset renders nothing.
func HTMLAttr(name string) template.HTMLAttr {
	s, ok := presets[name]
	if !ok {
		return ""
	}
	return template.HTMLAttr(`data-reveal="` + template.HTMLEscapeString(s.Attr()) + `"`)
}

// Data is the gomponents form of HTMLAttr.
func Data(name string) g.Node {
	s, ok := presets[name]
	if !ok {
		return g.Group(nil)
	}
	return h.Data("reveal", s.Attr())
}
