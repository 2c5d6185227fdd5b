package site

import (
	"bytes"
	"html/template"
	"strconv"
	"strings"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"github.com/Fatimaq07/Humans-WInning-AI/internal/model"
	"github.com/Fatimaq07/Humans-WInning-AI/internal/reveal"
)

// PublicationCard renders one publication, hidden when it is filtered out.
// The data attributes feed the keystroke filter in site.js.
func PublicationCard(p model.Publication, visible bool) g.Node {
	return h.Article(
		g.If(!visible, g.Attr("hidden")),
		h.Class("publication-card glass"),
		h.Data("category", p.Category),
		h.Data("title", strings.ToLower(p.Title)),
		reveal.Data("rise"),
		h.Div(h.Class("publication-meta"),
			h.Span(h.Class("badge"), g.Text(p.Category)),
			h.Span(h.Class("date"), g.Text(p.Date)),
		),
		h.H3(g.Text(p.Title)),
		h.P(h.Class("author"), g.Text("By "+p.Author)),
		h.P(g.Text(p.Description)),
		h.Div(h.Class("publication-footer"),
			h.Span(h.Class("downloads"), g.Text(p.Downloads+" downloads")),
			h.A(h.Class("button button-small"), h.Href("#"), g.Text("Download PDF")),
		),
	)
}

// Stars renders n filled rating stars.
func Stars(n int) g.Node {
	stars := make([]g.Node, 0, n)
	for i := 0; i < n; i++ {
		stars = append(stars, h.Span(h.Class("star"), g.Text("★")))
	}
	return h.Div(h.Class("stars"), g.Attr("aria-label", "rated "+strconv.Itoa(n)+" out of 5"), g.Group(stars))
}

// Notice renders a status message, or nothing for an empty one.
func Notice(msg string) g.Node {
	if msg == "" {
		return g.Group(nil)
	}
	return h.Div(h.Class("notice"), g.Attr("role", "status"), g.Text(msg))
}

// FieldError renders the validation message for a form field.
func FieldError(errs map[string]string, field string) g.Node {
	msg, ok := errs[field]
	if !ok {
		return g.Group(nil)
	}
	return h.P(h.Class("field-error"), h.ID(field+"-error"), g.Text(msg))
}

func toHTML(n g.Node) template.HTML {
	var buf bytes.Buffer
	if err := n.Render(&buf); err != nil {
		return ""
	}
	return template.HTML(buf.String())
}
