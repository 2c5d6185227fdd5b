package reveal

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetsAreValid(t *testing.T) {
	for _, name := range Presets() {
		t.Run(name, func(t *testing.T) {
			s, ok := Preset(name)
			require.True(t, ok)
			assert.NoError(t, s.Validate())
		})
	}
}

func TestSchedule(t *testing.T) {
	hero, _ := Preset("hero")
	steps := hero.Schedule(3)
	assert.Equal(t, []Step{
		{Index: 0, Start: 0, End: time.Second},
		{Index: 1, Start: 200 * time.Millisecond, End: 1200 * time.Millisecond},
		{Index: 2, Start: 400 * time.Millisecond, End: 1400 * time.Millisecond},
	}, steps)
	assert.Equal(t, 1400*time.Millisecond, hero.Total(3))

	pop, _ := Preset("pop")
	steps = pop.Schedule(2)
	assert.Equal(t, 1500*time.Millisecond, steps[0].Start)
	assert.Equal(t, 1600*time.Millisecond, steps[1].Start)
}

func TestScheduleEmptyGroup(t *testing.T) {
	hero, _ := Preset("hero")
	assert.Empty(t, hero.Schedule(0))
	assert.Empty(t, hero.Schedule(-2))
	assert.Zero(t, hero.Total(0))
}

func TestParseStart(t *testing.T) {
	tests := []struct {
		in   string
		want Start
	}{
		{"top 80%", Start{Edge: EdgeTop, Fraction: 0.8}},
		{"top 85%", Start{Edge: EdgeTop, Fraction: 0.85}},
		{"center center", Start{Edge: EdgeCenter, Fraction: 0.5}},
		{"bottom top", Start{Edge: EdgeBottom, Fraction: 0}},
		{"  top   100% ", Start{Edge: EdgeTop, Fraction: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStart(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want.Edge, got.Edge)
			assert.InDelta(t, tt.want.Fraction, got.Fraction, 1e-9)
		})
	}
}

func TestParseStartRejects(t *testing.T) {
	for _, in := range []string{"", "top", "left 80%", "top 80", "top 120%", "top x%", "top 80% extra"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseStart(in)
			assert.ErrorIs(t, err, ErrInvalidSequence)
		})
	}
}

func TestValidate(t *testing.T) {
	base, _ := Preset("flip")
	tests := []struct {
		name   string
		mutate func(*Sequence)
	}{
		{"zero duration", func(s *Sequence) { s.Duration = 0 }},
		{"negative stagger", func(s *Sequence) { s.Stagger = -time.Millisecond }},
		{"negative delay", func(s *Sequence) { s.Delay = -time.Second }},
		{"unknown ease", func(s *Sequence) { s.Ease = "elastic" }},
		{"bad start", func(s *Sequence) { s.Trigger = &Trigger{Start: "middle 80%"} }},
		{"short toggle actions", func(s *Sequence) { s.Trigger = &Trigger{Start: "top 80%", ToggleActions: "play none"} }},
		{"unknown toggle action", func(s *Sequence) {
			s.Trigger = &Trigger{Start: "top 80%", ToggleActions: "play none none rewind"}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidSequence)
		})
	}
}

func TestAttr(t *testing.T) {
	hero, _ := Preset("hero")
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(hero.Attr()), &got))

	assert.Equal(t, map[string]any{"y": 50.0, "opacity": 0.0}, got["from"])
	assert.Equal(t, map[string]any{"opacity": 1.0}, got["to"])
	assert.Equal(t, 1.0, got["duration"])
	assert.Equal(t, 0.2, got["stagger"])
	assert.Equal(t, "power3.out", got["ease"])
	assert.NotContains(t, got, "trigger")

	flip, _ := Preset("flip")
	require.NoError(t, json.Unmarshal([]byte(flip.Attr()), &got))
	assert.Equal(t, map[string]any{"start": "top 80%", "toggleActions": "play none none reverse"}, got["trigger"])
}

func TestHTMLAttr(t *testing.T) {
	out := string(HTMLAttr("cta"))
	assert.Contains(t, out, `data-reveal="{&#34;from&#34;:`)
	assert.Contains(t, out, `&#34;delay&#34;:2`)
	assert.Empty(t, HTMLAttr("spin"))
}

func TestData(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Data("pop").Render(&buf))
	assert.Contains(t, buf.String(), `data-reveal="{&#34;from&#34;:{&#34;opacity&#34;:0,&#34;scale&#34;:0.5}`)

	buf.Reset()
	require.NoError(t, Data("spin").Render(&buf))
	assert.Empty(t, buf.String())
}
