package interaction

// ProjectCategory groups projects for filtering. CategoryAll is the wildcard
// and is never the category of a project.
type ProjectCategory string

const (
	CategoryAll       ProjectCategory = "all"
	CategoryFullStack ProjectCategory = "fullstack"
	CategoryFrontend  ProjectCategory = "frontend"
	CategoryMobile    ProjectCategory = "mobile"
)

var categoryOrder = []ProjectCategory{
	CategoryAll,
	CategoryFullStack,
	CategoryFrontend,
	CategoryMobile,
}

var categoryLabels = map[ProjectCategory]string{
	CategoryAll:       "All Projects",
	CategoryFullStack: "Full-Stack",
	CategoryFrontend:  "Frontend",
	CategoryMobile:    "Mobile",
}

// Categories returns the filter choices in display order, wildcard first.
func Categories() []ProjectCategory {
	out := make([]ProjectCategory, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// ParseCategory converts raw client input into a known category.
func ParseCategory(s string) (ProjectCategory, bool) {
	c := ProjectCategory(s)
	_, ok := categoryLabels[c]
	return c, ok
}

// Label returns the filter button label.
func (c ProjectCategory) Label() string {
	return categoryLabels[c]
}

// IsConcrete reports whether c is a real project category rather than the wildcard.
func (c ProjectCategory) IsConcrete() bool {
	_, ok := categoryLabels[c]
	return ok && c != CategoryAll
}

// ProjectStatus is the delivery status shown on a project card.
type ProjectStatus string

const (
	StatusProduction ProjectStatus = "Production"
	StatusCompleted  ProjectStatus = "Completed"
	StatusInProgress ProjectStatus = "In Progress"
)

// Valid reports whether s is one of the known statuses.
func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusProduction, StatusCompleted, StatusInProgress:
		return true
	}
	return false
}

// Project is a static portfolio record. Filtering never mutates it.
type Project struct {
	Title        string          `yaml:"title"`
	Category     ProjectCategory `yaml:"category"`
	Description  string          `yaml:"description"`
	Technologies []string        `yaml:"technologies"`
	Features     []string        `yaml:"features"`
	Impact       string          `yaml:"impact,omitempty"`
	Status       ProjectStatus   `yaml:"status"`
	Year         string          `yaml:"year"`
}

// FilterProjects returns the projects in category c, preserving order.
// For CategoryAll the input is returned unchanged.
func FilterProjects(projects []Project, c ProjectCategory) []Project {
	if c == CategoryAll {
		return projects
	}
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if p.Category == c {
			out = append(out, p)
		}
	}
	return out
}

// ProjectFilter holds the selected category for a project list.
type ProjectFilter struct {
	projects []Project
	selected ProjectCategory
}

// NewProjectFilter starts with every project visible.
func NewProjectFilter(projects []Project) *ProjectFilter {
	return &ProjectFilter{projects: projects, selected: CategoryAll}
}

// Select changes the selected category. Unknown categories are ignored and
// Select reports false.
func (f *ProjectFilter) Select(c ProjectCategory) bool {
	if _, ok := categoryLabels[c]; !ok {
		return false
	}
	f.selected = c
	return true
}

// Selected returns the selected category.
func (f *ProjectFilter) Selected() ProjectCategory {
	return f.selected
}

// Visible returns the projects matching the selected category.
func (f *ProjectFilter) Visible() []Project {
	return FilterProjects(f.projects, f.selected)
}

// Count returns how many projects category c would show.
func (f *ProjectFilter) Count(c ProjectCategory) int {
	return len(FilterProjects(f.projects, c))
}
