package components

import (
	"fmt"
	"html"
	"strings"

	"github.com/pranayvarade/livefolio/internal/interaction"
	"github.com/pranayvarade/livefolio/internal/resume"
)

// FooterOptions configures the footer.
type FooterOptions struct {
	Personal resume.Personal
	Links    []interaction.NavLink
	Year     int
}

// RenderFooter generates the page footer with quick links back into the page.
func RenderFooter(opts FooterOptions) string {
	var sb strings.Builder

	sb.WriteString(`<footer class="footer" role="contentinfo">`)
	sb.WriteString(`<div class="container grid grid-3 gap-xl">`)

	sb.WriteString(`<div>`)
	sb.WriteString(fmt.Sprintf(`<h3>%s</h3>`, html.EscapeString(opts.Personal.Name)))
	if opts.Personal.Taglines.Creative != "" {
		sb.WriteString(fmt.Sprintf(`<p>%s</p>`, html.EscapeString(opts.Personal.Taglines.Creative)))
	}
	sb.WriteString(`</div>`)

	sb.WriteString(`<nav aria-label="Quick links">`)
	sb.WriteString(`<h4>Quick Links</h4>`)
	sb.WriteString(`<ul class="footer-links">`)
	for _, link := range opts.Links {
		sb.WriteString(fmt.Sprintf(`<li><button type="button" class="link" %s="navigate" %ssection="%s">%s</button></li>`,
			AttrClick, AttrValuePrefix, html.EscapeString(string(link.Section)), html.EscapeString(link.Label)))
	}
	sb.WriteString(`</ul>`)
	sb.WriteString(`</nav>`)

	sb.WriteString(`<div>`)
	sb.WriteString(`<h4>Contact</h4>`)
	if opts.Personal.Email != "" {
		sb.WriteString(fmt.Sprintf(`<p><a href="mailto:%s">%s</a></p>`, html.EscapeString(opts.Personal.Email), html.EscapeString(opts.Personal.Email)))
	}
	if opts.Personal.Location != "" {
		sb.WriteString(fmt.Sprintf(`<p>%s</p>`, html.EscapeString(opts.Personal.Location)))
	}
	sb.WriteString(`</div>`)

	sb.WriteString(`</div>`)

	sb.WriteString(`<div class="container footer-bottom">`)
	sb.WriteString(fmt.Sprintf(`<span>&copy; %d %s. All rights reserved.</span>`, opts.Year, html.EscapeString(opts.Personal.Name)))
	sb.WriteString(`<span>Built with Go</span>`)
	sb.WriteString(`</div>`)

	sb.WriteString(`</footer>`)
	sb.WriteString("\n")

	return sb.String()
}

// Toast is one visible notification.
type Toast struct {
	ID          int
	Kind        interaction.NotificationKind
	Title       string
	Description string
}

// RenderToasts generates the notification region. The region is always
// rendered, even when empty, so screen readers keep watching it.
func RenderToasts(toasts []Toast) string {
	var sb strings.Builder

	sb.WriteString(`<div class="toasts" aria-live="polite" data-slot="toasts">`)
	for _, t := range toasts {
		role := "status"
		if t.Kind == interaction.NotifyError {
			role = "alert"
		}
		sb.WriteString(fmt.Sprintf(`<div class="toast toast-%s" role="%s">`, html.EscapeString(string(t.Kind)), role))
		sb.WriteString(`<div class="toast-body">`)
		sb.WriteString(fmt.Sprintf(`<p class="toast-title">%s</p>`, html.EscapeString(t.Title)))
		if t.Description != "" {
			sb.WriteString(fmt.Sprintf(`<p class="toast-description">%s</p>`, html.EscapeString(t.Description)))
		}
		sb.WriteString(`</div>`)
		sb.WriteString(fmt.Sprintf(`<button type="button" class="toast-close" %s="dismiss-toast" %sid="%d" aria-label="Dismiss">&times;</button>`,
			AttrClick, AttrValuePrefix, t.ID))
		sb.WriteString(`</div>`)
	}
	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	return sb.String()
}
