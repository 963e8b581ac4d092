package components

import (
	"fmt"
	"html"
	"strings"

	"github.com/pranayvarade/livefolio/internal/interaction"
	"github.com/pranayvarade/livefolio/internal/resume"
)

// AboutOptions configures the about section.
type AboutOptions struct {
	// SummaryHTML is the rendered Markdown summary. It is trusted markup.
	SummaryHTML  string
	Education    []resume.Education
	Publications []resume.Publication
}

// RenderAbout generates the about section: narrative, education and
// publications.
func RenderAbout(opts AboutOptions) string {
	var sb strings.Builder

	sb.WriteString(sectionOpen(interaction.SectionAbout, "about"))
	sb.WriteString(`<div class="container">`)
	sb.WriteString(sectionHeading(interaction.SectionAbout, "About Me", "Passionate about creating software that makes a difference"))

	sb.WriteString(`<div class="grid grid-2 gap-xl">`)

	sb.WriteString(RenderCard(CardOptions{
		Title: "My Journey",
		Body:  `<div class="prose">` + opts.SummaryHTML + `</div>`,
	}))

	sb.WriteString(`<div class="stack">`)
	if len(opts.Education) > 0 {
		sb.WriteString(RenderCard(CardOptions{Title: "Education", Body: renderEducation(opts.Education)}))
	}
	if len(opts.Publications) > 0 {
		sb.WriteString(RenderCard(CardOptions{Title: "Publications", Body: renderPublications(opts.Publications)}))
	}
	sb.WriteString(`</div>`)

	sb.WriteString(`</div>`)
	sb.WriteString(`</div>`)
	sb.WriteString(`</section>`)
	sb.WriteString("\n")

	return sb.String()
}

func renderEducation(items []resume.Education) string {
	var sb strings.Builder
	sb.WriteString(`<ul class="entries">`)
	for _, e := range items {
		sb.WriteString(`<li class="entry">`)
		sb.WriteString(fmt.Sprintf(`<h4>%s</h4>`, html.EscapeString(e.Degree)))
		sb.WriteString(fmt.Sprintf(`<p class="muted">%s</p>`, html.EscapeString(e.Institution)))
		sb.WriteString(`<p class="meta">`)
		sb.WriteString(html.EscapeString(e.Period))
		if e.Grade != "" {
			sb.WriteString(" &middot; ")
			sb.WriteString(html.EscapeString(e.Grade))
		}
		sb.WriteString(`</p>`)
		sb.WriteString(`</li>`)
	}
	sb.WriteString(`</ul>`)
	return sb.String()
}

func renderPublications(items []resume.Publication) string {
	var sb strings.Builder
	sb.WriteString(`<ul class="entries">`)
	for _, p := range items {
		sb.WriteString(`<li class="entry">`)
		sb.WriteString(fmt.Sprintf(`<h4>%s</h4>`, html.EscapeString(p.Title)))
		sb.WriteString(fmt.Sprintf(`<p class="meta">%s &middot; %s</p>`, html.EscapeString(p.Journal), html.EscapeString(p.Date)))
		if p.Description != "" {
			sb.WriteString(fmt.Sprintf(`<p class="muted">%s</p>`, html.EscapeString(p.Description)))
		}
		sb.WriteString(`</li>`)
	}
	sb.WriteString(`</ul>`)
	return sb.String()
}

// RenderExperience generates the employment timeline.
func RenderExperience(employers []resume.Employer) string {
	var sb strings.Builder

	sb.WriteString(sectionOpen(interaction.SectionExperience, "experience"))
	sb.WriteString(`<div class="container">`)
	sb.WriteString(sectionHeading(interaction.SectionExperience, "Professional Experience", "Building impactful EdTech solutions and leading development teams"))

	for _, emp := range employers {
		sb.WriteString(`<article class="card employer">`)
		sb.WriteString(fmt.Sprintf(`<h3 class="card-title">%s</h3>`, html.EscapeString(emp.Company)))
		if emp.Location != "" {
			sb.WriteString(fmt.Sprintf(`<p class="meta">%s</p>`, html.EscapeString(emp.Location)))
		}

		sb.WriteString(`<ol class="timeline">`)
		for _, pos := range emp.Positions {
			sb.WriteString(`<li class="timeline-item">`)
			sb.WriteString(`<div class="timeline-head">`)
			sb.WriteString(fmt.Sprintf(`<h4>%s</h4>`, html.EscapeString(pos.Title)))
			sb.WriteString(RenderBadge(pos.Period, "muted"))
			sb.WriteString(`</div>`)
			sb.WriteString(`<ul class="achievements">`)
			for _, a := range pos.Achievements {
				sb.WriteString(fmt.Sprintf(`<li>%s</li>`, html.EscapeString(a)))
			}
			sb.WriteString(`</ul>`)
			sb.WriteString(`</li>`)
		}
		sb.WriteString(`</ol>`)

		sb.WriteString(`</article>`)
	}

	sb.WriteString(`</div>`)
	sb.WriteString(`</section>`)
	sb.WriteString("\n")

	return sb.String()
}
