package site

import (
	"path"
	"strings"
)

// Effect places a preset in a named slot of a page template.
type Effect struct {
	Slot   string
	Preset string
}

// Page is one route of the site.
type Page struct {
	Path    string
	Layout  string // template under layouts/pages, without .html
	Title   string
	Effects []Effect
}

// Slug is the page's name in effect ids and output paths.
func (p Page) Slug() string {
	if p.Path == "/" {
		return "home"
	}
	return strings.Trim(p.Path, "/")
}

// EffectName is the site-wide id of one of the page's effects.
func (p Page) EffectName(slot string) string { return p.Slug() + "-" + slot }

// OutputPath is where build writes the page, relative to the output dir.
func (p Page) OutputPath() string {
	if p.Path == "/" {
		return "index.html"
	}
	return path.Join(strings.Trim(p.Path, "/"), "index.html")
}

// Pages lists every route in navigation order, followed by /auth.
var Pages = []Page{
	{
		Path: "/", Layout: "home", Title: "Home",
		Effects: []Effect{
			{"hero", "hero-stars"},
			{"why-join", "backdrop"},
			{"initiatives", "section-stars"},
			{"membership", "section-stars"},
			{"resources", "section-stars"},
			{"cta", "section-stars"},
		},
	},
	{Path: "/about", Layout: "about", Title: "About", Effects: []Effect{{"drift", "drift"}}},
	{Path: "/stories", Layout: "stories", Title: "Success Stories"},
	{Path: "/features", Layout: "features", Title: "Features"},
	{Path: "/publications", Layout: "publications", Title: "Publications"},
	{Path: "/forums", Layout: "forums", Title: "Forums", Effects: []Effect{{"knot", "forums-knot"}}},
	{Path: "/volunteer", Layout: "volunteer", Title: "Volunteer Corner"},
	{Path: "/auth", Layout: "auth", Title: "Join", Effects: []Effect{{"spiral", "auth-spiral"}}},
}

// NotFound renders unknown paths. Build writes it to 404.html.
var NotFound = Page{Path: "/404", Layout: "notfound", Title: "Page Not Found"}

// Lookup finds the page served at p. A trailing slash is ignored.
func Lookup(p string) (Page, bool) {
	if p != "/" {
		p = strings.TrimSuffix(p, "/")
	}
	for _, pg := range Pages {
		if pg.Path == p {
			return pg, true
		}
	}
	return Page{}, false
}

// MountedEffect is an effect with its site-wide name.
type MountedEffect struct {
	Name   string
	Preset string
}

// Effects lists every effect of every page.
func Effects() []MountedEffect {
	var out []MountedEffect
	for _, p := range Pages {
		for _, e := range p.Effects {
			out = append(out, MountedEffect{Name: p.EffectName(e.Slot), Preset: e.Preset})
		}
	}
	return out
}

// PosterPath is the URL of an effect's SVG poster.
func PosterPath(name string) string { return "/effects/" + name + ".svg" }
