// Package content holds the portfolio copy shown behind each terminal section.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

var ErrUnknownSection = errors.New("unknown section")

type Interest struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

type Achievement struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Rarity      string `yaml:"rarity" json:"rarity"`
	XP          int    `yaml:"xp" json:"xp"`
}

type Profile struct {
	Name         string        `yaml:"name" json:"name"`
	Title        string        `yaml:"title" json:"title"`
	Tagline      string        `yaml:"tagline" json:"tagline"`
	Location     string        `yaml:"location" json:"location"`
	Experience   string        `yaml:"experience" json:"experience"`
	Email        string        `yaml:"email" json:"email"`
	Phone        string        `yaml:"phone" json:"phone"`
	Bio          string        `yaml:"bio" json:"bio"`
	Mission      string        `yaml:"mission" json:"mission"`
	Vision       string        `yaml:"vision" json:"vision"`
	Interests    []Interest    `yaml:"interests" json:"interests"`
	Achievements []Achievement `yaml:"achievements" json:"achievements"`
}

type Skill struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Category    string `yaml:"category" json:"category"`
	Level       int    `yaml:"level" json:"level"`
	Experience  string `yaml:"experience" json:"experience"`
	Description string `yaml:"description" json:"description"`
}

type Project struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Tags        []string `yaml:"tags" json:"tags"`
	RepoURL     string   `yaml:"repo_url" json:"repo_url,omitempty"`
	DemoURL     string   `yaml:"demo_url" json:"demo_url,omitempty"`
	Featured    bool     `yaml:"featured" json:"featured"`
	Encrypted   bool     `yaml:"encrypted" json:"encrypted"`
}

type Education struct {
	Degree      string   `yaml:"degree" json:"degree"`
	Institution string   `yaml:"institution" json:"institution"`
	Focus       string   `yaml:"focus" json:"focus,omitempty"`
	Courses     []string `yaml:"courses" json:"courses,omitempty"`
}

type Testimonial struct {
	ID        string `yaml:"id" json:"id"`
	Client    string `yaml:"client" json:"client"`
	Company   string `yaml:"company" json:"company"`
	Role      string `yaml:"role" json:"role"`
	Rating    int    `yaml:"rating" json:"rating"`
	Date      string `yaml:"date" json:"date"`
	Content   string `yaml:"content" json:"content"`
	Encrypted bool   `yaml:"encrypted" json:"encrypted"`
}

type Contact struct {
	Email        string `yaml:"email" json:"email"`
	Location     string `yaml:"location" json:"location"`
	Availability string `yaml:"availability" json:"availability"`
	Github       string `yaml:"github" json:"github,omitempty"`
}

// Portfolio is the whole site's copy.
type Portfolio struct {
	Profile        Profile       `yaml:"profile" json:"profile"`
	Skills         []Skill       `yaml:"skills" json:"skills"`
	Projects       []Project     `yaml:"projects" json:"projects"`
	Education      []Education   `yaml:"education" json:"education"`
	Certifications []string      `yaml:"certifications" json:"certifications"`
	Testimonials   []Testimonial `yaml:"testimonials" json:"testimonials"`
	Contact        Contact       `yaml:"contact" json:"contact"`
}

// Parse decodes YAML portfolio copy.
func Parse(data []byte) (*Portfolio, error) {
	var p Portfolio
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}
	if p.Profile.Name == "" {
		return nil, fmt.Errorf("parse content: profile name is required")
	}
	return &p, nil
}

// Default returns the embedded copy.
func Default() *Portfolio {
	p, err := Parse(defaultYAML)
	if err != nil {
		panic(err)
	}
	return p
}

// LoadFile reads copy from path.
func LoadFile(path string) (*Portfolio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content %s: %w", path, err)
	}
	return Parse(data)
}

// Identity is the whoami line for this portfolio.
func (p *Portfolio) Identity() string {
	first := strings.Fields(p.Profile.Name)
	if len(first) == 0 {
		return ""
	}
	return first[0] + " ~ $ User privileges detected"
}

// Mask redacts text the way encrypted items are shown: every visible rune
// becomes a block, whitespace is kept.
func Mask(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return r
		}
		return '█'
	}, text)
}

// View returns the project as a visitor sees it.
func (pr Project) View(revealed bool) Project {
	if pr.Encrypted && !revealed {
		pr.Description = Mask(pr.Description)
	}
	return pr
}

// Locked reports whether the item still needs a decrypt.
func (pr Project) Locked(revealed bool) bool {
	return pr.Encrypted && !revealed
}

// View returns the testimonial as a visitor sees it.
func (t Testimonial) View(revealed bool) Testimonial {
	if t.Encrypted && !revealed {
		t.Client = Mask(t.Client)
		t.Company = Mask(t.Company)
		t.Role = Mask(t.Role)
		t.Content = Mask(t.Content)
	}
	return t
}

// Locked reports whether the item still needs a decrypt.
func (t Testimonial) Locked(revealed bool) bool {
	return t.Encrypted && !revealed
}

// Stars renders a five-star rating.
func (t Testimonial) Stars() string {
	n := t.Rating
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}
