// Package interaction holds the page's interaction state machines: scroll
// tracking, section navigation, the presentation mode toggle, the mobile
// menu, project filtering and the contact submission flow.
//
// None of the types here touch a rendering surface directly. Side effects
// go through the Platform interface, so every machine can be driven from a
// live socket or from a test with an in-memory fake.
package interaction

// SectionID identifies one top-level block of the page.
type SectionID string

const (
	SectionHero       SectionID = "hero"
	SectionAbout      SectionID = "about"
	SectionExperience SectionID = "experience"
	SectionProjects   SectionID = "projects"
	SectionSkills     SectionID = "skills"
	SectionContact    SectionID = "contact"
)

// sectionOrder is both the render order and the active-section search order.
var sectionOrder = []SectionID{
	SectionHero,
	SectionAbout,
	SectionExperience,
	SectionProjects,
	SectionSkills,
	SectionContact,
}

var sectionLabels = map[SectionID]string{
	SectionHero:       "Home",
	SectionAbout:      "About",
	SectionExperience: "Experience",
	SectionProjects:   "Projects",
	SectionSkills:     "Skills",
	SectionContact:    "Contact",
}

// Sections returns the section identifiers in declared order.
func Sections() []SectionID {
	out := make([]SectionID, len(sectionOrder))
	copy(out, sectionOrder)
	return out
}

// ParseSectionID converts raw client input into a known section.
func ParseSectionID(s string) (SectionID, bool) {
	id := SectionID(s)
	_, ok := sectionLabels[id]
	return id, ok
}

// Label returns the navigation label for the section.
func (id SectionID) Label() string {
	return sectionLabels[id]
}

// String implements fmt.Stringer.
func (id SectionID) String() string {
	return string(id)
}

// NavLink is one entry of the navigation bar.
type NavLink struct {
	Section SectionID
	Label   string
}

// NavLinks returns one link per section, in declared order.
func NavLinks() []NavLink {
	links := make([]NavLink, 0, len(sectionOrder))
	for _, id := range sectionOrder {
		links = append(links, NavLink{Section: id, Label: sectionLabels[id]})
	}
	return links
}
