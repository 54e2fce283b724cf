package terminal

import (
	"fmt"
	"strings"
)

// Section is one navigable area of the site.
type Section struct {
	Key     string
	Path    string
	Label   string
	Message string
}

// Canonical section keys.
const (
	SectionHome         = "home"
	SectionAbout        = "about"
	SectionSkills       = "skills"
	SectionProjects     = "projects"
	SectionEducation    = "education"
	SectionTestimonials = "testimonials"
	SectionContact      = "contact"
)

var defaultSections = []Section{
	{Key: SectionHome, Path: "/", Label: "Home", Message: "Navigating to home directory..."},
	{Key: SectionAbout, Path: "/about", Label: "About", Message: "Navigating to about section..."},
	{Key: SectionSkills, Path: "/skills", Label: "Skills", Message: "Navigating to skills directory..."},
	{Key: SectionProjects, Path: "/projects", Label: "Projects", Message: "Navigating to projects repository..."},
	{Key: SectionEducation, Path: "/education", Label: "Education", Message: "Navigating to education records..."},
	{Key: SectionTestimonials, Path: "/testimonials", Label: "Reviews", Message: "Navigating to testimonials vault..."},
	{Key: SectionContact, Path: "/contact", Label: "Contact", Message: "Establishing communication protocol..."},
}

// RouteTable maps normalized paths to sections. It is never modified after
// construction and is safe to share.
type RouteTable struct {
	byPath  map[string]Section
	ordered []Section
}

// DefaultRoutes builds the fixed seven-section table.
func DefaultRoutes() *RouteTable {
	return NewRouteTable(defaultSections)
}

// NewRouteTable builds a table from sections in display order.
func NewRouteTable(sections []Section) *RouteTable {
	rt := &RouteTable{
		byPath:  make(map[string]Section, len(sections)),
		ordered: make([]Section, len(sections)),
	}
	copy(rt.ordered, sections)
	for _, s := range sections {
		rt.byPath[s.Path] = s
	}
	return rt
}

// Lookup finds the section for an already-normalized path. Matching is case-sensitive.
func (rt *RouteTable) Lookup(path string) (Section, bool) {
	s, found := rt.byPath[path]
	return s, found
}

// ByKey finds a section by its canonical key.
func (rt *RouteTable) ByKey(key string) (Section, bool) {
	for _, s := range rt.ordered {
		if s.Key == key {
			return s, true
		}
	}
	return Section{}, false
}

// Sections returns the sections in display order.
func (rt *RouteTable) Sections() []Section {
	out := make([]Section, len(rt.ordered))
	copy(out, rt.ordered)
	return out
}

// Normalize applies the cd path spelling rules: empty means root, bare names
// gain a leading slash, and ~ or /home mean root.
func Normalize(arg string) string {
	path := arg
	if path == "" {
		path = "/"
	}
	if path != "/" && path != "~" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if path == "~" || path == "/home" {
		path = "/"
	}
	return path
}

// Dispatcher turns cd arguments into navigation requests.
type Dispatcher struct {
	routes *RouteTable
}

// NewDispatcher creates a dispatcher over routes.
func NewDispatcher(routes *RouteTable) *Dispatcher {
	return &Dispatcher{routes: routes}
}

// Resolve normalizes arg and looks it up without navigating.
func (d *Dispatcher) Resolve(arg string) (Section, string, bool) {
	path := Normalize(arg)
	s, found := d.routes.Lookup(path)
	return s, path, found
}

// Dispatch navigates env to the section named by arg. Unknown paths fail and
// leave env untouched.
func (d *Dispatcher) Dispatch(env Env, arg string) Result {
	s, path, found := d.Resolve(arg)
	if !found {
		return fail(fmt.Sprintf("bash: cd: %s: No such file or directory", path))
	}
	env.Navigate(s)
	return ok(s.Message)
}
