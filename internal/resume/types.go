package resume

import "github.com/pranayvarade/livefolio/internal/interaction"

// Resume is the static portfolio data every section renders from.
type Resume struct {
	Personal     Personal              `yaml:"personal"`
	Summary      Summary               `yaml:"summary"`
	Stats        []Stat                `yaml:"stats"`
	Experience   []Employer            `yaml:"experience"`
	Education    []Education           `yaml:"education"`
	Skills       Skills                `yaml:"skills"`
	Projects     []interaction.Project `yaml:"projects"`
	Publications []Publication         `yaml:"publications"`
	Availability Availability          `yaml:"availability"`
	Keywords     []string              `yaml:"keywords"`
}

// Personal holds contact details and taglines.
type Personal struct {
	Name      string   `yaml:"name"`
	Title     string   `yaml:"title"`
	Email     string   `yaml:"email"`
	Phone     string   `yaml:"phone"`
	Location  string   `yaml:"location"`
	LinkedIn  string   `yaml:"linkedin"`
	GitHub    string   `yaml:"github"`
	Portfolio string   `yaml:"portfolio"`
	Taglines  Taglines `yaml:"taglines"`
}

// Taglines are the hero section subtitles.
type Taglines struct {
	Formal   string `yaml:"formal"`
	Creative string `yaml:"creative"`
}

// Summary is the about text. Expanded is Markdown.
type Summary struct {
	Brief    string `yaml:"brief"`
	Expanded string `yaml:"expanded"`
}

// Stat is one headline number.
type Stat struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
}

// Employer groups the positions held at one company.
type Employer struct {
	Company   string     `yaml:"company"`
	Location  string     `yaml:"location"`
	Positions []Position `yaml:"positions"`
}

// Position is one role with its achievements.
type Position struct {
	Title        string   `yaml:"title"`
	Period       string   `yaml:"period"`
	Achievements []string `yaml:"achievements"`
}

// Education is one degree.
type Education struct {
	Degree      string   `yaml:"degree"`
	Institution string   `yaml:"institution"`
	Location    string   `yaml:"location"`
	Period      string   `yaml:"period"`
	Grade       string   `yaml:"grade"`
	Highlights  []string `yaml:"highlights"`
}

// Skill is a named proficiency from 0 to 100.
type Skill struct {
	Name       string `yaml:"name"`
	Level      int    `yaml:"level"`
	Experience string `yaml:"experience,omitempty"`
}

// Skills groups skills by area.
type Skills struct {
	Frontend        []Skill `yaml:"frontend"`
	Backend         []Skill `yaml:"backend"`
	Tools           []Skill `yaml:"tools"`
	Specializations []Skill `yaml:"specializations"`
}

// SkillGroup is a titled list of skills, in display order.
type SkillGroup struct {
	Title  string
	Skills []Skill
}

// Groups returns the technical skill groups in display order.
// Specializations are rendered separately.
func (s Skills) Groups() []SkillGroup {
	return []SkillGroup{
		{Title: "Frontend", Skills: s.Frontend},
		{Title: "Backend", Skills: s.Backend},
		{Title: "Tools & Platforms", Skills: s.Tools},
	}
}

// Publication is a published paper.
type Publication struct {
	Title       string `yaml:"title"`
	Journal     string `yaml:"journal"`
	Date        string `yaml:"date"`
	Description string `yaml:"description"`
	Type        string `yaml:"type"`
	Status      string `yaml:"status"`
}

// Availability describes what kind of work is sought.
type Availability struct {
	Status    string `yaml:"status"`
	Type      string `yaml:"type"`
	Location  string `yaml:"location"`
	StartDate string `yaml:"start_date"`
}
