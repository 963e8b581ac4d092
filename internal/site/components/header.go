package components

import (
	"fmt"
	"html"
	"strings"

	"github.com/pranayvarade/livefolio/internal/interaction"
)

// HeaderOptions configures the sticky site header.
type HeaderOptions struct {
	// Name is the logo text.
	Name   string
	Links  []interaction.NavLink
	Active interaction.SectionID
	// Scrolled switches the header to its opaque treatment.
	Scrolled bool
	Dark     bool
	MenuOpen bool

	GitHubURL   string
	LinkedInURL string
	Email       string
	// ResumeURL is the downloadable resume. Empty hides the link.
	ResumeURL string
}

// RenderHeader generates the header slot: logo, desktop navigation, the
// theme toggle and the collapsible mobile menu.
func RenderHeader(opts HeaderOptions) string {
	var sb strings.Builder

	sb.WriteString(`<div data-slot="header">`)
	sb.WriteString(`<a href="#main-content" class="skip-link">Skip to main content</a>`)

	headerClass := "site-header"
	if opts.Scrolled {
		headerClass += " site-header-scrolled"
	}
	sb.WriteString(fmt.Sprintf(`<header class="%s" id="site-header">`, headerClass))
	sb.WriteString(`<div class="container header-inner">`)

	sb.WriteString(fmt.Sprintf(`<button type="button" class="logo" %s="navigate" %ssection="%s">%s</button>`,
		AttrClick, AttrValuePrefix, interaction.SectionHero, html.EscapeString(opts.Name)))

	// Desktop navigation
	sb.WriteString(`<nav class="nav-links" aria-label="Main navigation">`)
	for _, link := range opts.Links {
		sb.WriteString(renderNavLink(link, link.Section == opts.Active, "nav-link"))
	}
	sb.WriteString(`</nav>`)

	sb.WriteString(`<div class="header-actions">`)
	sb.WriteString(renderSocialIcons(opts.GitHubURL, opts.LinkedInURL, opts.Email))
	sb.WriteString(renderThemeToggle(opts.Dark))
	if opts.ResumeURL != "" {
		sb.WriteString(fmt.Sprintf(`<a class="btn btn-primary btn-sm hide-mobile" href="%s" download>Resume</a>`, html.EscapeString(opts.ResumeURL)))
	}

	menuLabel := "Open menu"
	menuIcon := "&#9776;"
	if opts.MenuOpen {
		menuLabel = "Close menu"
		menuIcon = "&#10005;"
	}
	sb.WriteString(fmt.Sprintf(`<button type="button" class="btn btn-ghost menu-toggle" %s="toggle-menu" aria-label="%s" aria-expanded="%t" aria-controls="mobile-menu">%s</button>`,
		AttrClick, menuLabel, opts.MenuOpen, menuIcon))
	sb.WriteString(`</div>`)

	sb.WriteString(`</div>`)

	if opts.MenuOpen {
		sb.WriteString(renderMobileMenu(opts))
	}

	sb.WriteString(`</header>`)
	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	return sb.String()
}

func renderMobileMenu(opts HeaderOptions) string {
	var sb strings.Builder

	sb.WriteString(`<nav class="mobile-menu" id="mobile-menu" aria-label="Mobile navigation">`)
	sb.WriteString(`<div class="container">`)
	for _, link := range opts.Links {
		sb.WriteString(renderNavLink(link, link.Section == opts.Active, "mobile-link"))
	}
	if opts.ResumeURL != "" {
		sb.WriteString(fmt.Sprintf(`<a class="btn btn-primary" href="%s" download>Download Resume</a>`, html.EscapeString(opts.ResumeURL)))
	}
	sb.WriteString(`</div>`)
	sb.WriteString(`</nav>`)

	return sb.String()
}

func renderNavLink(link interaction.NavLink, active bool, class string) string {
	current := ""
	if active {
		class += " active"
		current = ` aria-current="true"`
	}
	return fmt.Sprintf(`<button type="button" class="%s" %s="navigate" %ssection="%s"%s>%s</button>`,
		class, AttrClick, AttrValuePrefix, html.EscapeString(string(link.Section)), current, html.EscapeString(link.Label))
}

func renderThemeToggle(dark bool) string {
	label := "Switch to dark mode"
	icon := "&#9790;"
	if dark {
		label = "Switch to light mode"
		icon = "&#9728;"
	}
	return fmt.Sprintf(`<button type="button" class="btn btn-ghost theme-toggle" %s="toggle-theme" aria-label="%s" aria-pressed="%t">%s</button>`,
		AttrClick, label, dark, icon)
}

func renderSocialIcons(github, linkedin, email string) string {
	var sb strings.Builder
	sb.WriteString(`<div class="social hide-mobile">`)
	if github != "" {
		sb.WriteString(fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener noreferrer" aria-label="GitHub">GitHub</a>`, html.EscapeString(github)))
	}
	if linkedin != "" {
		sb.WriteString(fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener noreferrer" aria-label="LinkedIn">LinkedIn</a>`, html.EscapeString(linkedin)))
	}
	if email != "" {
		sb.WriteString(fmt.Sprintf(`<a href="mailto:%s" aria-label="Email">Email</a>`, html.EscapeString(email)))
	}
	sb.WriteString(`</div>`)
	return sb.String()
}
