package components

import (
	"fmt"
	"html"
	"strings"

	"github.com/pranayvarade/livefolio/internal/interaction"
	"github.com/pranayvarade/livefolio/internal/resume"
)

// HeroOptions configures the hero section.
type HeroOptions struct {
	Personal     resume.Personal
	Availability resume.Availability
	ResumeURL    string
}

// RenderHero generates the landing section with the call-to-action buttons.
func RenderHero(opts HeroOptions) string {
	var sb strings.Builder

	sb.WriteString(sectionOpen(interaction.SectionHero, "hero"))
	sb.WriteString(`<div class="container hero-inner">`)

	if opts.Availability.Status != "" {
		sb.WriteString(`<div class="pill"><span class="pill-dot" aria-hidden="true"></span>`)
		sb.WriteString(html.EscapeString(opts.Availability.Status))
		if opts.Availability.Type != "" {
			sb.WriteString(" &bull; ")
			sb.WriteString(html.EscapeString(opts.Availability.Type))
		}
		sb.WriteString(`</div>`)
	}

	sb.WriteString(`<h1 class="hero-title" id="hero-title"><span class="block">Hi, I'm</span>`)
	sb.WriteString(fmt.Sprintf(`<span class="block text-gradient">%s</span></h1>`, html.EscapeString(opts.Personal.Name)))
	sb.WriteString(fmt.Sprintf(`<p class="hero-subtitle">%s</p>`, html.EscapeString(opts.Personal.Title)))
	if opts.Personal.Taglines.Formal != "" {
		sb.WriteString(fmt.Sprintf(`<p class="hero-tagline">%s</p>`, html.EscapeString(opts.Personal.Taglines.Formal)))
	}

	sb.WriteString(`<ul class="hero-facts">`)
	for _, fact := range []string{opts.Personal.Location, opts.Availability.StartDate, "Open Source"} {
		if fact == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<li>%s</li>`, html.EscapeString(fact)))
	}
	sb.WriteString(`</ul>`)

	sb.WriteString(`<div class="hero-actions">`)
	sb.WriteString(RenderButton(ButtonOptions{
		Label:  "View My Work",
		Event:  "navigate",
		Values: map[string]string{"section": string(interaction.SectionProjects)},
		Class:  "btn-lg",
	}))
	sb.WriteString(RenderButton(ButtonOptions{
		Label:   "Get In Touch",
		Variant: ButtonOutline,
		Event:   "navigate",
		Values:  map[string]string{"section": string(interaction.SectionContact)},
		Class:   "btn-lg",
	}))
	if opts.ResumeURL != "" {
		sb.WriteString(fmt.Sprintf(`<a class="btn btn-outline btn-lg" href="%s" download>Download Resume</a>`, html.EscapeString(opts.ResumeURL)))
	}
	sb.WriteString(`</div>`)

	sb.WriteString(`</div>`)
	sb.WriteString(`</section>`)
	sb.WriteString("\n")

	return sb.String()
}

// RenderStats generates the headline numbers strip below the hero.
func RenderStats(stats []resume.Stat) string {
	if len(stats) == 0 {
		return ""
	}

	var sb strings.Builder

	sb.WriteString(`<section class="section stats" aria-label="Highlights">`)
	sb.WriteString(`<div class="container stats-grid" role="list">`)
	for _, s := range stats {
		sb.WriteString(`<article class="stat-card" role="listitem">`)
		sb.WriteString(fmt.Sprintf(`<div class="stat-value">%s</div>`, html.EscapeString(s.Value)))
		sb.WriteString(fmt.Sprintf(`<div class="stat-label">%s</div>`, html.EscapeString(s.Label)))
		sb.WriteString(`</article>`)
	}
	sb.WriteString(`</div>`)
	sb.WriteString(`</section>`)
	sb.WriteString("\n")

	return sb.String()
}

// sectionOpen starts a navigable section. The data-section attribute is
// what the browser runtime measures when it samples scroll positions.
func sectionOpen(id interaction.SectionID, class string) string {
	return fmt.Sprintf(`<section id="%s" data-section="%s" class="%s" aria-labelledby="%s-title">`,
		id, id, classes("section", class), id)
}

// sectionHeading generates the centered title and subtitle of a section.
func sectionHeading(id interaction.SectionID, title, subtitle string) string {
	var sb strings.Builder
	sb.WriteString(`<div class="section-heading">`)
	sb.WriteString(fmt.Sprintf(`<h2 id="%s-title">%s</h2>`, id, html.EscapeString(title)))
	if subtitle != "" {
		sb.WriteString(fmt.Sprintf(`<p>%s</p>`, html.EscapeString(subtitle)))
	}
	sb.WriteString(`</div>`)
	return sb.String()
}
