package components

import (
	"fmt"
	"html"
	"strings"

	"github.com/pranayvarade/livefolio/internal/interaction"
)

// ProjectsOptions configures the projects section.
type ProjectsOptions struct {
	Selected interaction.ProjectCategory
	Visible  []interaction.Project
	// Counts holds the number of projects per category, for the filter
	// buttons. Missing entries hide the count.
	Counts map[interaction.ProjectCategory]int
	// ResumeURL is linked from the closing call to action. Empty hides
	// the link.
	ResumeURL string
}

// RenderProjects generates the projects section with its category filter.
// The filter bar and the grid are separate slots so a filter change only
// resends those two regions.
func RenderProjects(opts ProjectsOptions) string {
	var sb strings.Builder

	sb.WriteString(sectionOpen(interaction.SectionProjects, "projects"))
	sb.WriteString(`<div class="container">`)
	sb.WriteString(sectionHeading(interaction.SectionProjects, "Featured Projects", "Showcasing end-to-end solutions that drive real business impact and innovation"))

	sb.WriteString(RenderProjectFilters(opts.Selected, opts.Counts))
	sb.WriteString(RenderProjectGrid(opts.Visible))
	sb.WriteString(renderCollaborate(opts.ResumeURL))

	sb.WriteString(`</div>`)
	sb.WriteString(`</section>`)
	sb.WriteString("\n")

	return sb.String()
}

func renderCollaborate(resumeURL string) string {
	var sb strings.Builder

	sb.WriteString(`<div class="card cta">`)
	sb.WriteString(`<h3>Ready to <span class="accent">Collaborate?</span></h3>`)
	sb.WriteString(`<p>I'm always excited to discuss new opportunities and challenging projects. Let's connect and explore how we can create something amazing together.</p>`)
	sb.WriteString(`<div class="cta-actions">`)
	sb.WriteString(RenderButton(ButtonOptions{
		Label:  "Start a Conversation",
		Event:  "navigate",
		Values: map[string]string{"section": string(interaction.SectionContact)},
		Class:  "btn-lg",
	}))
	if resumeURL != "" {
		sb.WriteString(fmt.Sprintf(`<a class="btn btn-outline btn-lg" href="%s" download>View Complete Resume</a>`, html.EscapeString(resumeURL)))
	}
	sb.WriteString(`</div>`)
	sb.WriteString(`</div>`)

	return sb.String()
}

// RenderProjectFilters generates the category buttons.
func RenderProjectFilters(selected interaction.ProjectCategory, counts map[interaction.ProjectCategory]int) string {
	var sb strings.Builder

	sb.WriteString(`<div class="filters" role="group" aria-label="Filter projects" data-slot="project-filters">`)
	for _, c := range interaction.Categories() {
		active := c == selected
		label := c.Label()
		if n, ok := counts[c]; ok {
			label = fmt.Sprintf("%s (%d)", label, n)
		}
		variant := ButtonOutline
		if active {
			variant = ButtonPrimary
		}
		sb.WriteString(RenderButton(ButtonOptions{
			Label:   label,
			Variant: variant,
			Event:   "filter",
			Values:  map[string]string{"category": string(c)},
			Pressed: &active,
		}))
	}
	sb.WriteString(`</div>`)

	return sb.String()
}

// RenderProjectGrid generates the cards for the visible projects.
func RenderProjectGrid(projects []interaction.Project) string {
	var sb strings.Builder

	sb.WriteString(`<div class="grid grid-2 gap-lg project-grid" data-slot="projects">`)
	if len(projects) == 0 {
		sb.WriteString(`<p class="empty">No projects in this category yet.</p>`)
	}
	for _, p := range projects {
		sb.WriteString(RenderProjectCard(p))
	}
	sb.WriteString(`</div>`)

	return sb.String()
}

// RenderProjectCard generates one project card.
func RenderProjectCard(p interaction.Project) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<article class="card project" data-category="%s">`, html.EscapeString(string(p.Category))))

	sb.WriteString(`<div class="project-head">`)
	sb.WriteString(fmt.Sprintf(`<h3 class="card-title">%s</h3>`, html.EscapeString(p.Title)))
	sb.WriteString(`<div class="project-meta">`)
	sb.WriteString(RenderBadge(p.Year, "muted"))
	sb.WriteString(RenderBadge(string(p.Status), statusVariant(p.Status)))
	sb.WriteString(`</div>`)
	sb.WriteString(`</div>`)

	sb.WriteString(fmt.Sprintf(`<p>%s</p>`, html.EscapeString(p.Description)))

	if len(p.Technologies) > 0 {
		sb.WriteString(`<div class="tags">`)
		for _, t := range p.Technologies {
			sb.WriteString(RenderBadge(t, "outline"))
		}
		sb.WriteString(`</div>`)
	}

	if len(p.Features) > 0 {
		sb.WriteString(`<h4>Key Features</h4>`)
		sb.WriteString(`<ul class="features">`)
		for _, f := range p.Features {
			sb.WriteString(fmt.Sprintf(`<li>%s</li>`, html.EscapeString(f)))
		}
		sb.WriteString(`</ul>`)
	}

	if p.Impact != "" {
		sb.WriteString(fmt.Sprintf(`<p class="impact"><strong>Impact:</strong> %s</p>`, html.EscapeString(p.Impact)))
	}

	sb.WriteString(`</article>`)

	return sb.String()
}

func statusVariant(s interaction.ProjectStatus) string {
	switch s {
	case interaction.StatusProduction:
		return "success"
	case interaction.StatusInProgress:
		return "warning"
	default:
		return "info"
	}
}
