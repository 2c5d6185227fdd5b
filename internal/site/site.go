// Package site renders the HWAI pages from a content catalog and the
// layouts tree, and builds the static output directory.
package site

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Fatimaq07/Humans-WInning-AI/internal/catalog"
	"github.com/Fatimaq07/Humans-WInning-AI/internal/config"
	"github.com/Fatimaq07/Humans-WInning-AI/internal/content"
	"github.com/Fatimaq07/Humans-WInning-AI/internal/effect"
	"github.com/Fatimaq07/Humans-WInning-AI/internal/model"
	"github.com/Fatimaq07/Humans-WInning-AI/internal/reveal"
)

const (
	baseLayout  = "base.html"
	partialsDir = "partials"
	pagesDir    = "pages"
)

// snapshot is one consistent load of content and templates. Requests read
// the current snapshot and never see a half-finished reload.
type snapshot struct {
	catalog *model.Catalog
	pages   map[string]*template.Template
}

// Site renders pages. It is safe for concurrent use.
type Site struct {
	cfg   config.Config
	src   content.Sources
	log   *zap.Logger

	links       map[string]string
	staticLinks map[string]string

	current atomic.Pointer[snapshot]
}

// New loads content and layouts from src.
func New(cfg config.Config, src content.Sources, log *zap.Logger) (*Site, error) {
	s := &Site{
		cfg: cfg,
		src: src,
		log: log,
		links: map[string]string{
			"discord":   cfg.Links.Discord,
			"whatsapp":  cfg.Links.WhatsApp,
			"meetups":   cfg.Links.Meetups,
			"resources": cfg.Links.Resources,
			"google":    "/auth/google",
		},
	}
	s.staticLinks = make(map[string]string, len(s.links))
	for k, v := range s.links {
		s.staticLinks[k] = v
	}
	s.staticLinks["google"] = cfg.Auth.GoogleSignInURL
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload reads content and layouts again. On error the previous snapshot
// stays in place.
func (s *Site) Reload() error {
	cat, err := content.NewLoader(s.src.Content, s.log).Load()
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	pages, err := parseLayouts(s.src.Layouts, s.log)
	if err != nil {
		return err
	}
	s.current.Store(&snapshot{catalog: cat, pages: pages})
	return nil
}

// Catalog returns the current content catalog.
func (s *Site) Catalog() *model.Catalog { return s.current.Load().catalog }

// Sources returns the trees the site was loaded from.
func (s *Site) Sources() content.Sources { return s.src }

// View is a page context bound to the snapshot it was built from, so a
// reload between building and rendering cannot mix two snapshots.
type View struct {
	*model.PageData
	snap *snapshot
}

// Data returns the serve-mode view of p with every per-route view in its
// default state.
func (s *Site) Data(p Page) *View {
	return s.view(p, false)
}

// StaticData returns the view of p written by Build: links are prefixed
// with the path of the base URL, Google sign-in points straight at the
// provider and forms are handled in the browser.
func (s *Site) StaticData(p Page) *View {
	return s.view(p, true)
}

func (s *Site) view(p Page, static bool) *View {
	snap := s.current.Load()
	cat := snap.catalog
	title := s.cfg.SiteTitle
	if p.Path != "/" {
		title = p.Title + " | " + s.cfg.SiteTitle
	}
	data := &model.PageData{
		SiteTitle: s.cfg.SiteTitle,
		PageTitle: title,
		BaseURL:   strings.TrimSuffix(s.cfg.BaseURL, "/"),
		Path:      p.Path,
		Layout:    p.Layout,
		Static:    static,
		Catalog:   cat,
		Links:     s.links,
		Publications: model.PublicationsView{
			Category:   catalog.AllCategories,
			Categories: catalog.Categories(cat.Publications),
			Results:    cat.Publications,
		},
		Volunteer: model.VolunteerView{Skills: map[string]bool{}},
		Auth:      model.AuthView{SignUp: true},
		Effects:   make(map[string]template.HTML, len(p.Effects)),
	}
	if static {
		data.Root = RootPath(s.cfg.BaseURL)
		data.Links = s.staticLinks
	}
	for _, e := range p.Effects {
		name := p.EffectName(e.Slot)
		data.Effects[e.Slot] = effect.MountHTML(name, e.Preset, data.URL(PosterPath(name)))
	}
	return &View{PageData: data, snap: snap}
}

// Render writes the page named by v.Layout using the templates of the
// snapshot v was built from.
func (s *Site) Render(w io.Writer, v *View) error {
	tmpl, ok := v.snap.pages[v.Layout]
	if !ok {
		return fmt.Errorf("layout %q not found", v.Layout)
	}
	if err := tmpl.ExecuteTemplate(w, baseLayout, v.PageData); err != nil {
		return fmt.Errorf("failed to execute template %q: %w", v.Layout, err)
	}
	return nil
}

// RootPath is the path component of baseURL without a trailing slash, or
// "" when the site lives at the domain root.
func RootPath(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(u.Path, "/")
}

// parseLayouts parses base.html and the partials into a root set, then
// parses each page template on its own clone of it. Every page defines
// "content", so pages cannot share one set.
func parseLayouts(fsys fs.FS, log *zap.Logger) (map[string]*template.Template, error) {
	if _, err := fs.Stat(fsys, baseLayout); err != nil {
		return nil, fmt.Errorf("%s not found in layouts: %w", baseLayout, err)
	}
	partials, err := fs.Glob(fsys, path.Join(partialsDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("failed to find partials: %w", err)
	}
	root, err := template.New(baseLayout).Funcs(funcs()).ParseFS(fsys, append([]string{baseLayout}, partials...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s and partials: %w", baseLayout, err)
	}

	files, err := fs.Glob(fsys, path.Join(pagesDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("failed to find page layouts: %w", err)
	}
	sort.Strings(files)
	pages := make(map[string]*template.Template, len(files))
	for _, f := range files {
		clone, err := root.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone base layout: %w", err)
		}
		tmpl, err := clone.ParseFS(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("failed to parse page layout %s: %w", f, err)
		}
		pages[strings.TrimSuffix(path.Base(f), ".html")] = tmpl
	}
	for _, p := range Pages {
		if _, ok := pages[p.Layout]; !ok {
			return nil, fmt.Errorf("page layout %s.html not found for %s", p.Layout, p.Path)
		}
	}
	if _, ok := pages[NotFound.Layout]; !ok {
		return nil, fmt.Errorf("page layout %s.html not found", NotFound.Layout)
	}
	log.Debug("layouts parsed", zap.Int("partials", len(partials)), zap.Int("pages", len(pages)))
	return pages, nil
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"reveal": reveal.HTMLAttr,
		"publicationCard": func(p model.Publication, visible bool) template.HTML {
			return toHTML(PublicationCard(p, visible))
		},
		"listed": func(list []model.Publication, p model.Publication) bool {
			for _, q := range list {
				if q == p {
					return true
				}
			}
			return false
		},
		"stars":  func(n int) template.HTML { return toHTML(Stars(n)) },
		"notice": func(msg string) template.HTML { return toHTML(Notice(msg)) },
		"fieldError": func(errs map[string]string, field string) template.HTML {
			return toHTML(FieldError(errs, field))
		},
		"linkOr": func(links map[string]string, key, fallback string) string {
			if v := links[key]; v != "" {
				return v
			}
			return fallback
		},
		"active": func(current, target string) bool { return current == target },
		"year":   func() int { return time.Now().Year() },
	}
}
