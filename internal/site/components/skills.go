package components

import (
	"fmt"
	"html"
	"strings"

	"github.com/pranayvarade/livefolio/internal/interaction"
	"github.com/pranayvarade/livefolio/internal/resume"
)

// RenderSkills generates the skills section: one card per skill group
// followed by the specializations.
func RenderSkills(skills resume.Skills) string {
	var sb strings.Builder

	sb.WriteString(sectionOpen(interaction.SectionSkills, "skills"))
	sb.WriteString(`<div class="container">`)
	sb.WriteString(sectionHeading(interaction.SectionSkills, "Technical Expertise", "A comprehensive toolkit for building modern, scalable applications that drive innovation"))

	sb.WriteString(`<div class="grid grid-3 gap-lg">`)
	for _, g := range skills.Groups() {
		if len(g.Skills) == 0 {
			continue
		}
		sb.WriteString(RenderCard(CardOptions{Title: g.Title, Body: renderSkillList(g.Skills)}))
	}
	sb.WriteString(`</div>`)

	if len(skills.Specializations) > 0 {
		sb.WriteString(`<h3 class="subheading">Specializations</h3>`)
		sb.WriteString(`<div class="grid grid-2 gap-lg">`)
		sb.WriteString(RenderCard(CardOptions{Body: renderSkillList(skills.Specializations)}))
		sb.WriteString(`</div>`)
	}

	sb.WriteString(`</div>`)
	sb.WriteString(`</section>`)
	sb.WriteString("\n")

	return sb.String()
}

func renderSkillList(skills []resume.Skill) string {
	var sb strings.Builder
	sb.WriteString(`<ul class="skills">`)
	for _, s := range skills {
		sb.WriteString(`<li class="skill">`)
		sb.WriteString(`<div class="skill-head">`)
		sb.WriteString(fmt.Sprintf(`<span class="skill-name">%s</span>`, html.EscapeString(s.Name)))
		sb.WriteString(fmt.Sprintf(`<span class="skill-level">%d%%</span>`, clampLevel(s.Level)))
		sb.WriteString(`</div>`)
		sb.WriteString(RenderProgress(s.Name, s.Level))
		if s.Experience != "" {
			sb.WriteString(fmt.Sprintf(`<span class="meta">%s</span>`, html.EscapeString(s.Experience)))
		}
		sb.WriteString(`</li>`)
	}
	sb.WriteString(`</ul>`)
	return sb.String()
}
