package content

import (
	"fmt"
	"strings"
)

// Markdown renders one section for terminal hosts. revealed reports which
// encrypted items the visitor has decrypted; nil means none.
func (p *Portfolio) Markdown(section string, revealed func(id string) bool) (string, error) {
	if revealed == nil {
		revealed = func(string) bool { return false }
	}

	var b strings.Builder
	switch section {
	case "home":
		fmt.Fprintf(&b, "# %s\n\n_%s_\n\n", p.Profile.Name, p.Profile.Tagline)
		fmt.Fprintf(&b, "- **Role:** %s\n- **Location:** %s\n- **Access level:** Standard\n\n", p.Profile.Title, p.Profile.Location)
		b.WriteString("Type `help` to see what this terminal can do.\n")
	case "about":
		fmt.Fprintf(&b, "# About\n\n%s\n\n", p.Profile.Bio)
		fmt.Fprintf(&b, "**Mission:** %s\n\n**Vision:** %s\n\n", p.Profile.Mission, p.Profile.Vision)
		if len(p.Profile.Achievements) > 0 {
			b.WriteString("## Achievements\n\n")
			for _, a := range p.Profile.Achievements {
				fmt.Fprintf(&b, "- **%s** (%s, %d XP): %s\n", a.Name, a.Rarity, a.XP, a.Description)
			}
			b.WriteString("\n")
		}
		if len(p.Profile.Interests) > 0 {
			b.WriteString("## Interests\n\n")
			for _, in := range p.Profile.Interests {
				fmt.Fprintf(&b, "- **%s**: %s\n", in.Name, in.Description)
			}
		}
	case "skills":
		b.WriteString("# Skills\n\n| Skill | Category | Level | Experience |\n|---|---|---|---|\n")
		for _, s := range p.Skills {
			fmt.Fprintf(&b, "| %s | %s | %d%% | %s |\n", s.Name, s.Category, s.Level, s.Experience)
		}
	case "projects":
		b.WriteString("# Projects\n\n")
		for _, pr := range p.Projects {
			open := revealed(pr.ID)
			v := pr.View(open)
			fmt.Fprintf(&b, "## %s `%s`\n\n%s\n\n", v.Name, v.ID, v.Description)
			if v.Locked(open) {
				fmt.Fprintf(&b, "> encrypted: run `decrypt %s`\n\n", v.ID)
				continue
			}
			if len(v.Tags) > 0 {
				fmt.Fprintf(&b, "Tags: %s\n\n", strings.Join(v.Tags, ", "))
			}
			if v.RepoURL != "" {
				fmt.Fprintf(&b, "Source: %s\n\n", v.RepoURL)
			}
		}
	case "education":
		b.WriteString("# Education\n\n")
		for _, e := range p.Education {
			fmt.Fprintf(&b, "## %s\n\n%s\n\n", e.Degree, e.Institution)
			if e.Focus != "" {
				fmt.Fprintf(&b, "Specialization: %s\n\n", e.Focus)
			}
			for _, c := range e.Courses {
				fmt.Fprintf(&b, "- %s\n", c)
			}
			if len(e.Courses) > 0 {
				b.WriteString("\n")
			}
		}
		if len(p.Certifications) > 0 {
			b.WriteString("## Certifications\n\n")
			for _, c := range p.Certifications {
				fmt.Fprintf(&b, "- %s\n", c)
			}
		}
	case "testimonials":
		b.WriteString("# Testimonials\n\n")
		for _, t := range p.Testimonials {
			open := revealed(t.ID)
			v := t.View(open)
			fmt.Fprintf(&b, "## %s `%s`\n\n%s at %s, %s\n\n> %s\n\n", v.Client, v.ID, v.Role, v.Company, v.Stars(), v.Content)
			if v.Locked(open) {
				fmt.Fprintf(&b, "encrypted: run `decrypt %s`\n\n", v.ID)
			}
		}
	case "contact":
		b.WriteString("# Contact\n\n")
		fmt.Fprintf(&b, "- **Email:** %s\n- **Location:** %s\n- **Availability:** %s\n", p.Contact.Email, p.Contact.Location, p.Contact.Availability)
		if p.Contact.Github != "" {
			fmt.Fprintf(&b, "- **GitHub:** %s\n", p.Contact.Github)
		}
		b.WriteString("\nSend a message from the web terminal's contact page.\n")
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	return b.String(), nil
}
