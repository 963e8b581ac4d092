package components

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/pranayvarade/livefolio/internal/interaction"
	"github.com/pranayvarade/livefolio/internal/resume"
)

// ContactOptions configures the contact section.
type ContactOptions struct {
	Personal     resume.Personal
	Availability resume.Availability
	Form         ContactFormOptions
}

// ContactFormOptions is the state of the contact form.
type ContactFormOptions struct {
	Values     interaction.ContactForm
	Submitting bool
	// Errors maps field names to validation messages.
	Errors map[string]string
}

// RenderContact generates the contact section: details on one side and
// the message form on the other.
func RenderContact(opts ContactOptions) string {
	var sb strings.Builder

	sb.WriteString(sectionOpen(interaction.SectionContact, "contact"))
	sb.WriteString(`<div class="container">`)
	sb.WriteString(sectionHeading(interaction.SectionContact, "Let's Work Together", "Ready to bring your ideas to life? Let's discuss how I can help your team build exceptional software."))

	if opts.Availability.Status != "" {
		sb.WriteString(`<div class="pill pill-center"><span class="pill-dot" aria-hidden="true"></span>Currently available for new opportunities</div>`)
	}

	sb.WriteString(`<div class="grid grid-2 gap-xl">`)
	sb.WriteString(renderContactInfo(opts.Personal, opts.Availability))
	sb.WriteString(RenderCard(CardOptions{
		Title: "Send Me a Message",
		Body:  RenderContactForm(opts.Form),
	}))
	sb.WriteString(`</div>`)

	sb.WriteString(`</div>`)
	sb.WriteString(`</section>`)
	sb.WriteString("\n")

	return sb.String()
}

// RenderContactForm generates the form slot. While a submission is in
// flight every control is disabled and the button shows a busy label.
func RenderContactForm(opts ContactFormOptions) string {
	var sb strings.Builder

	v := opts.Values
	busy := opts.Submitting

	// The slot is the wrapper so the form's own attributes are resent too.
	sb.WriteString(`<div data-slot="contact-form">`)
	sb.WriteString(fmt.Sprintf(`<form class="contact-form" %s="submit" aria-busy="%t">`, AttrSubmit, busy))

	sb.WriteString(`<div class="grid grid-2 gap-md">`)
	sb.WriteString(RenderField(FieldOptions{
		Name: interaction.FieldName, Label: "Full Name *", Value: v.Name,
		Placeholder: "Your full name", Required: true, Disabled: busy,
		Error: opts.Errors[interaction.FieldName],
	}))
	sb.WriteString(RenderField(FieldOptions{
		Name: interaction.FieldEmail, Label: "Email Address *", Type: "email", Value: v.Email,
		Placeholder: "your.email@example.com", Required: true, Disabled: busy,
		Error: opts.Errors[interaction.FieldEmail],
	}))
	sb.WriteString(`</div>`)

	sb.WriteString(RenderField(FieldOptions{
		Name: interaction.FieldCompany, Label: "Company (Optional)", Value: v.Company,
		Placeholder: "Your company name", Disabled: busy,
	}))
	sb.WriteString(RenderField(FieldOptions{
		Name: interaction.FieldSubject, Label: "Subject *", Value: v.Subject,
		Placeholder: "What's this about?", Required: true, Disabled: busy,
		Error: opts.Errors[interaction.FieldSubject],
	}))
	sb.WriteString(RenderField(FieldOptions{
		Name: interaction.FieldMessage, Label: "Message *", Value: v.Message, Rows: 6,
		Placeholder: "Tell me about your project, timeline, and how I can help...", Required: true, Disabled: busy,
		Error: opts.Errors[interaction.FieldMessage],
	}))

	label := "Send Message"
	if busy {
		label = "Sending Message..."
	}
	sb.WriteString(RenderButton(ButtonOptions{
		Label:    label,
		Type:     "submit",
		Class:    "btn-block btn-lg",
		Disabled: busy,
	}))

	sb.WriteString(`<p class="consent">By submitting this form, you agree to be contacted regarding your inquiry. I respect your privacy and will never share your information.</p>`)
	sb.WriteString(`</form>`)
	sb.WriteString(`</div>`)

	return sb.String()
}

func renderContactInfo(p resume.Personal, a resume.Availability) string {
	var sb strings.Builder

	sb.WriteString(`<div class="stack">`)

	var items strings.Builder
	items.WriteString(`<ul class="contact-list">`)
	if p.Email != "" {
		items.WriteString(contactItem("Email", "mailto:"+p.Email, p.Email))
	}
	if p.Phone != "" {
		items.WriteString(contactItem("Phone", "tel:"+strings.ReplaceAll(p.Phone, " ", ""), p.Phone))
	}
	if p.Location != "" {
		items.WriteString(contactItem("Location", "https://maps.google.com/?q="+url.QueryEscape(p.Location), p.Location))
	}
	if a.StartDate != "" {
		items.WriteString(contactItem("Availability", "", a.StartDate))
	}
	items.WriteString(`</ul>`)
	sb.WriteString(RenderCard(CardOptions{Title: "Get In Touch", Body: items.String()}))

	var social strings.Builder
	social.WriteString(`<div class="social-links">`)
	if p.GitHub != "" {
		social.WriteString(fmt.Sprintf(`<a class="btn btn-outline" href="%s" target="_blank" rel="noopener noreferrer">GitHub</a>`, html.EscapeString(p.GitHub)))
	}
	if p.LinkedIn != "" {
		social.WriteString(fmt.Sprintf(`<a class="btn btn-outline" href="%s" target="_blank" rel="noopener noreferrer">LinkedIn</a>`, html.EscapeString(p.LinkedIn)))
	}
	social.WriteString(`</div>`)
	sb.WriteString(RenderCard(CardOptions{Title: "Connect With Me", Body: social.String()}))

	sb.WriteString(RenderCard(CardOptions{
		Title: "Quick Response Guarantee",
		Body:  `<p>I typically respond to all inquiries within 24 hours. For urgent matters, feel free to call directly.</p>`,
		Class: "card-accent",
	}))

	sb.WriteString(`</div>`)

	return sb.String()
}

func contactItem(label, href, value string) string {
	var sb strings.Builder
	sb.WriteString(`<li class="contact-item">`)
	sb.WriteString(fmt.Sprintf(`<span class="meta">%s</span>`, html.EscapeString(label)))
	if href == "" {
		sb.WriteString(fmt.Sprintf(`<span>%s</span>`, html.EscapeString(value)))
	} else {
		target := ""
		if strings.HasPrefix(href, "https://") {
			target = ` target="_blank" rel="noopener noreferrer"`
		}
		sb.WriteString(fmt.Sprintf(`<a href="%s"%s>%s</a>`, html.EscapeString(href), target, html.EscapeString(value)))
	}
	sb.WriteString(`</li>`)
	return sb.String()
}
