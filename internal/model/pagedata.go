package model

import "html/template"

// PageData is the template context for every rendered route.
type PageData struct {
	SiteTitle string
	PageTitle string
	BaseURL   string
	Path      string
	Layout    string // page template executed inside base.html
	Static    bool   // rendered by build; forms are handled in the browser
	Root      string // path prefix of every site link in static builds

	Catalog *Catalog
	Links   map[string]string

	// Per-route payloads. Unused fields stay zero.
	Publications PublicationsView
	Volunteer    VolunteerView
	Auth         AuthView
	Notice       string
	Effects      map[string]template.HTML
}

// PublicationsView is the filtered state of the publications page.
type PublicationsView struct {
	Category   string
	Term       string
	Categories []string
	Results    []Publication
}

type VolunteerView struct {
	Open   bool
	Thanks bool
	Values map[string]string
	Skills map[string]bool
	Errors map[string]string
}

type AuthView struct {
	SignUp bool
	Values map[string]string
	Errors map[string]string
}

// URL prefixes the site-absolute path p with Root.
func (d *PageData) URL(p string) string {
	return d.Root + p
}
