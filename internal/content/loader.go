// Package content loads the seed lists and prose sections of the site.
//
// A content tree has two parts:
//
//	data/*.yaml             seed lists, each keyed like model.Catalog
//	pages/<page>/<name>.md  prose sections with frontmatter
package content

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v2"

	"github.com/Fatimaq07/Humans-WInning-AI/internal/model"
)

const (
	dataDir  = "data"
	pagesDir = "pages"
)

// ErrInvalidSeed is returned when a seed list is malformed.
var ErrInvalidSeed = errors.New("invalid seed data")

type Loader struct {
	fsys fs.FS
	md   goldmark.Markdown
	log  *zap.Logger
}

func NewLoader(fsys fs.FS, log *zap.Logger) *Loader {
	return &Loader{
		fsys: fsys,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				gmhtml.WithHardWraps(),
				gmhtml.WithUnsafe(),
			),
		),
		log: log,
	}
}

// Load reads the whole content tree into a new Catalog.
func (l *Loader) Load() (*model.Catalog, error) {
	cat := &model.Catalog{Sections: make(map[string]map[string]*model.Section)}
	if err := l.loadData(cat); err != nil {
		return nil, err
	}
	if err := Validate(cat); err != nil {
		return nil, err
	}
	if err := l.loadSections(cat); err != nil {
		return nil, err
	}
	l.log.Debug("content loaded",
		zap.Int("publications", len(cat.Publications)),
		zap.Int("stories", len(cat.Stories)),
		zap.Int("sections", countSections(cat)),
	)
	return cat, nil
}

func (l *Loader) loadData(cat *model.Catalog) error {
	files, err := fs.Glob(l.fsys, dataDir+"/*.yaml")
	if err != nil {
		return fmt.Errorf("failed to list seed files: %w", err)
	}
	sort.Strings(files)
	for _, name := range files {
		raw, err := fs.ReadFile(l.fsys, name)
		if err != nil {
			return fmt.Errorf("failed to read seed file '%s': %w", name, err)
		}
		if err := yaml.UnmarshalStrict(raw, cat); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidSeed, name, err)
		}
		l.log.Debug("processing seed file", zap.String("path", name))
	}
	return nil
}

func (l *Loader) loadSections(cat *model.Catalog) error {
	err := fs.WalkDir(l.fsys, pagesDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrNotExist) && p == pagesDir {
				return fs.SkipDir
			}
			return fmt.Errorf("error accessing path '%s' during walk: %w", p, walkErr)
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		sec, err := l.parseSection(p)
		if err != nil {
			return err
		}
		if cat.Sections[sec.Page] == nil {
			cat.Sections[sec.Page] = make(map[string]*model.Section)
		}
		cat.Sections[sec.Page][sec.Name] = sec
		return nil
	})
	if err != nil {
		return fmt.Errorf("error during section walk: %w", err)
	}
	return nil
}

func (l *Loader) parseSection(p string) (*model.Section, error) {
	raw, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return nil, fmt.Errorf("failed to read file '%s': %w", p, err)
	}

	var fm map[string]interface{}
	body, err := frontmatter.Parse(bytes.NewReader(raw), &fm)
	if err != nil {
		l.log.Warn("could not parse frontmatter, treating as pure markdown", zap.String("path", p), zap.Error(err))
		body = raw
	}
	if fm == nil {
		fm = make(map[string]interface{})
	}

	var buf bytes.Buffer
	if err := l.md.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("failed to convert markdown to HTML for file '%s': %w", p, err)
	}

	rel := strings.TrimPrefix(p, pagesDir+"/")
	page := path.Dir(rel)
	if page == "." {
		page = ""
	}
	name := strings.TrimSuffix(path.Base(rel), path.Ext(rel))

	sec := &model.Section{
		Page:        page,
		Name:        name,
		Title:       stringField(fm, "title"),
		Lead:        stringField(fm, "lead"),
		Accent:      stringField(fm, "accent"),
		Tail:        stringField(fm, "tail"),
		Subtitle:    stringField(fm, "subtitle"),
		SourcePath:  p,
		ContentHTML: template.HTML(buf.String()),
		Frontmatter: fm,
	}
	if sec.Title == "" {
		sec.Title = strings.TrimSpace(strings.Join([]string{sec.Lead, sec.Accent, sec.Tail}, " "))
	}
	if strings.TrimSpace(sec.Title) == "" {
		words := strings.ReplaceAll(strings.ReplaceAll(name, "-", " "), "_", " ")
		sec.Title = cases.Title(language.English).String(words)
	}
	sec.Title = strings.Join(strings.Fields(sec.Title), " ")
	return sec, nil
}

func stringField(fm map[string]interface{}, key string) string {
	if v, ok := fm[key].(string); ok {
		return v
	}
	return ""
}

func countSections(cat *model.Catalog) int {
	n := 0
	for _, page := range cat.Sections {
		n += len(page)
	}
	return n
}

var directions = map[string]bool{"": true, "left": true, "right": true}

// Validate checks that every seed list is well-formed.
func Validate(cat *model.Catalog) error {
	for i, n := range cat.Navigation {
		if n.Name == "" || !strings.HasPrefix(n.Path, "/") {
			return fmt.Errorf("%w: navigation[%d] %q: path %q must start with /", ErrInvalidSeed, i, n.Name, n.Path)
		}
	}
	for i, p := range cat.Publications {
		if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Category) == "" {
			return fmt.Errorf("%w: publications[%d]: title and category are required", ErrInvalidSeed, i)
		}
	}
	for i, s := range cat.Stories {
		if strings.TrimSpace(s.Title) == "" || strings.TrimSpace(s.Author) == "" {
			return fmt.Errorf("%w: stories[%d]: title and author are required", ErrInvalidSeed, i)
		}
	}
	for i, f := range cat.ForumCategories {
		if strings.TrimSpace(f.Title) == "" || f.Posts < 0 || f.Members < 0 {
			return fmt.Errorf("%w: forumCategories[%d] %q: title is required and counts must not be negative", ErrInvalidSeed, i, f.Title)
		}
	}
	for i, c := range cat.Communities {
		if !directions[c.Direction] {
			return fmt.Errorf("%w: communities[%d] %q: direction must be left or right, got %q", ErrInvalidSeed, i, c.Title, c.Direction)
		}
	}
	seen := make(map[string]bool, len(cat.Skills))
	for _, s := range cat.Skills {
		if strings.TrimSpace(s) == "" || seen[s] {
			return fmt.Errorf("%w: skills: %q is empty or duplicated", ErrInvalidSeed, s)
		}
		seen[s] = true
	}
	return nil
}
