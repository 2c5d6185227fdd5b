package model

import "html/template"

// Publication is a research paper, white paper or report listed on /publications.
type Publication struct {
	Title       string `yaml:"title"`
	Author      string `yaml:"author"`
	Date        string `yaml:"date"`
	Category    string `yaml:"category"`
	Description string `yaml:"description"`
	Downloads   string `yaml:"downloads"`
}

// Story is a member testimonial shown on /stories.
type Story struct {
	Title   string `yaml:"title"`
	Author  string `yaml:"author"`
	Role    string `yaml:"role"`
	Content string `yaml:"content"`
	Image   string `yaml:"image"`
	Impact  string `yaml:"impact"`
}

// ForumCategory is one discussion area on /forums.
type ForumCategory struct {
	Title        string `yaml:"title"`
	Description  string `yaml:"description"`
	Posts        int    `yaml:"posts"`
	Members      int    `yaml:"members"`
	LastActivity string `yaml:"lastActivity"`
}

// Community is an external community channel (Discord, WhatsApp, meetups).
// LinkKey names the configured link that replaces Link when set.
type Community struct {
	Title       string `yaml:"title"`
	Emoji       string `yaml:"emoji"`
	Description string `yaml:"description"`
	Link        string `yaml:"link"`
	LinkKey     string `yaml:"linkKey"`
	Label       string `yaml:"label"`
	Direction   string `yaml:"direction"`
}

type NavItem struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

type Feature struct {
	Icon        string `yaml:"icon"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Color       string `yaml:"color"`
}

type Stat struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

type ResourceType struct {
	Icon        string `yaml:"icon"`
	Title       string `yaml:"title"`
	Count       string `yaml:"count"`
	Description string `yaml:"description"`
	Color       string `yaml:"color"`
}

type FeaturedResource struct {
	Title    string `yaml:"title"`
	Type     string `yaml:"type"`
	Author   string `yaml:"author"`
	ReadTime string `yaml:"readTime"`
	Image    string `yaml:"image"`
}

// Home groups the display records of the landing page sections.
type Home struct {
	Stats             []Stat             `yaml:"stats"`
	WhyJoin           []Feature          `yaml:"whyJoin"`
	Initiatives       []string           `yaml:"initiatives"`
	Benefits          []Feature          `yaml:"benefits"`
	MembershipPerks   []string           `yaml:"membershipPerks"`
	ResourceTypes     []ResourceType     `yaml:"resourceTypes"`
	FeaturedResources []FeaturedResource `yaml:"featuredResources"`
}

// FooterGroup is one titled column of footer links.
type FooterGroup struct {
	Title string   `yaml:"title"`
	Links []string `yaml:"links"`
}

// Section is a block of page prose loaded from a markdown file with
// frontmatter.
type Section struct {
	Page        string
	Name        string
	Title       string
	Lead        string
	Accent      string
	Tail        string
	Subtitle    string
	SourcePath  string
	ContentHTML template.HTML
	Frontmatter map[string]interface{}
}

// Param returns a string frontmatter value, or "" when absent.
func (s *Section) Param(key string) string {
	if v, ok := s.Frontmatter[key].(string); ok {
		return v
	}
	return ""
}

// Catalog holds every seed list and prose section of the site. A Catalog is
// never mutated after loading.
type Catalog struct {
	Navigation      []NavItem       `yaml:"navigation"`
	Footer          []FooterGroup   `yaml:"footer"`
	Publications    []Publication   `yaml:"publications"`
	Stories         []Story         `yaml:"stories"`
	ForumCategories []ForumCategory `yaml:"forumCategories"`
	Communities     []Community     `yaml:"communities"`
	Features        []Feature       `yaml:"features"`
	Skills          []string        `yaml:"skills"`
	Home            Home            `yaml:"home"`

	Sections map[string]map[string]*Section `yaml:"-"`
}

// Section returns the named prose section of page, or an empty section so
// templates can render without nil checks.
func (c *Catalog) Section(page, name string) *Section {
	if s, ok := c.Sections[page][name]; ok {
		return s
	}
	return &Section{Page: page, Name: name}
}
