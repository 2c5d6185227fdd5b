package effect

import (
	"bytes"
	"encoding/json"
	"html/template"
	"io"
	"strconv"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// SVG renders a frame as a standalone SVG document.
func SVG(f Frame, background string) g.Node {
	w, ht := strconv.Itoa(f.Viewport.Width), strconv.Itoa(f.Viewport.Height)
	return g.El("svg",
		g.Attr("xmlns", "http://www.w3.org/2000/svg"),
		g.Attr("viewBox", "0 0 "+w+" "+ht),
		g.Attr("width", w),
		g.Attr("height", ht),
		g.Attr("preserveAspectRatio", "xMidYMid slice"),
		g.El("rect", g.Attr("width", "100%"), g.Attr("height", "100%"), g.Attr("fill", background)),
		g.Map(f.Points, func(p Projected) g.Node {
			return g.El("circle",
				g.Attr("cx", ftoa(p.X)),
				g.Attr("cy", ftoa(p.Y)),
				g.Attr("r", ftoa(p.Size)),
				g.Attr("fill", p.Color),
			)
		}),
	)
}

// WriteSVG writes the frame as an SVG document to w.
func WriteSVG(w io.Writer, f Frame, background string) error {
	return SVG(f, background).Render(w)
}

// Mount renders the element the browser script turns into a live canvas.
// The poster is shown when scripts are disabled.
func Mount(name string, cfg Config, poster string) g.Node {
	data, err := json.Marshal(cfg)
	if err != nil {
		return g.Group(nil)
	}
	return h.Div(
		h.Class("effect-surface"),
		h.Data("effect", string(data)),
		h.Data("effect-name", name),
		g.Attr("aria-hidden", "true"),
		g.If(poster != "", g.El("noscript",
			h.Img(h.Class("effect-poster"), h.Src(poster), h.Alt(""), g.Attr("loading", "lazy")),
		)),
	)
}

// MountHTML renders Mount for use inside html/template. An unknown preset
// renders nothing.
func MountHTML(name, preset, poster string) template.HTML {
	cfg, err := Preset(preset)
	if err != nil {
		return ""
	}
	var buf bytes.Buffer
	if err := Mount(name, cfg, poster).Render(&buf); err != nil {
		return ""
	}
	return template.HTML(buf.String())
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }
