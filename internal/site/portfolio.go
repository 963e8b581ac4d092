package site

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pranayvarade/livefolio/internal/interaction"
	"github.com/pranayvarade/livefolio/internal/resume"
	"github.com/pranayvarade/livefolio/internal/site/components"
	"github.com/pranayvarade/livefolio/pkg/core"
	"github.com/pranayvarade/livefolio/pkg/js"
	"github.com/pranayvarade/livefolio/pkg/logging"
	"github.com/pranayvarade/livefolio/pkg/metrics"
)

// Client events handled by Portfolio.
const (
	EventScroll       = "scroll"
	EventNavigate     = "navigate"
	EventToggleTheme  = "toggle-theme"
	EventToggleMenu   = "toggle-menu"
	EventCloseMenu    = "close-menu"
	EventFilter       = "filter"
	EventChange       = "change"
	EventSubmit       = "submit"
	EventDismissToast = "dismiss-toast"
)

// ThemeCookieMaxAge keeps a persisted theme for a year.
const ThemeCookieMaxAge = 365 * 24 * 60 * 60

// ErrUnknownEvent is returned for events Portfolio does not handle.
var ErrUnknownEvent = errors.New("unknown event")

// Options configures the Portfolio component.
type Options struct {
	Resume  *resume.Resume
	Backend interaction.Backend
	Scroll  interaction.ScrollOptions

	// NoticeDuration is how long submission toasts stay up.
	NoticeDuration time.Duration

	// PersistTheme stores the theme in ThemeCookie and restores it on mount.
	PersistTheme bool
	ThemeCookie  string

	// ResumeURL is the downloadable resume. Empty hides the download links.
	ResumeURL string

	// Now is used for the footer year.
	Now func() time.Time
}

// New returns a component factory for router.Live.
func New(opts Options) func() core.Component {
	return func() core.Component {
		return NewPortfolio(opts)
	}
}

// Portfolio is the live view of the whole page. Every state machine it
// owns is touched only from the connection's message loop; background work
// reports back through Socket.SendInfo.
type Portfolio struct {
	core.BaseComponent

	opts Options

	platform *livePlatform
	scroll   *interaction.ScrollTracker
	menu     *interaction.MobileMenu
	nav      *interaction.SectionNavigator
	mode     *interaction.ModePreference
	projects *interaction.ProjectFilter
	contact  *interaction.ContactSubmission
	toasts   *toaster

	fieldErrors interaction.FieldErrors
	summary     string

	// lifetime bounds backend calls started by this view.
	lifetime context.Context
	cancel   context.CancelFunc
}

// NewPortfolio creates an unmounted Portfolio.
func NewPortfolio(opts Options) *Portfolio {
	if opts.Resume == nil {
		opts.Resume = resume.MustDefault()
	}
	if opts.Scroll == (interaction.ScrollOptions{}) {
		opts.Scroll = interaction.DefaultScrollOptions()
	}
	if opts.ThemeCookie == "" {
		opts.ThemeCookie = "livefolio_theme"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Portfolio{opts: opts}
}

// Name implements core.Component.
func (p *Portfolio) Name() string { return "portfolio" }

// RendersFromAssigns marks Portfolio as rendering only from its assigns.
func (p *Portfolio) RendersFromAssigns() {}

// DarkMode reports the current presentation mode, for the layout.
func (p *Portfolio) DarkMode() bool {
	return p.mode != nil && p.mode.IsDark()
}

// Mount builds the state machines. On a live socket it also starts scroll
// sampling.
func (p *Portfolio) Mount(ctx context.Context, params core.Params, session core.Session) error {
	r := p.opts.Resume

	summary, err := r.SummaryHTML()
	if err != nil {
		return fmt.Errorf("mount portfolio: %w", err)
	}
	p.summary = string(summary)

	p.lifetime, p.cancel = context.WithCancel(context.WithoutCancel(ctx))

	p.platform = newLivePlatform(interaction.Sections())
	p.scroll = interaction.NewScrollTracker(p.opts.Scroll)
	p.menu = &interaction.MobileMenu{}
	p.nav = interaction.NewSectionNavigator(p.platform, p.menu)
	p.mode = interaction.NewModePreference(p.platform)
	p.projects = interaction.NewProjectFilter(r.Projects)
	p.toasts = newToaster(p.post)
	p.contact = interaction.NewContactSubmission(p.opts.Backend, p.toasts, p.post, interaction.SubmissionOptions{
		NoticeDuration: p.opts.NoticeDuration,
	})

	dark := p.opts.PersistTheme && session.Cookie(p.opts.ThemeCookie) == "dark"

	if p.Socket() != nil {
		// The document may still carry the class from a previous
		// connection, so the mode is written either way.
		p.mode.Restore(dark)
		p.scroll.Attach()
		p.platform.setSampling(true)
	} else if dark {
		p.mode.Restore(true)
	}

	p.flush(ctx)
	p.sync()
	return nil
}

// HandleEvent applies one client event.
func (p *Portfolio) HandleEvent(ctx context.Context, event string, payload map[string]any) error {
	err := p.handleEvent(ctx, event, payload)
	p.flush(ctx)
	p.sync()
	return err
}

func (p *Portfolio) handleEvent(ctx context.Context, event string, payload map[string]any) error {
	switch event {
	case EventScroll:
		y, ok := number(payload["y"])
		if !ok {
			return fmt.Errorf("scroll: missing offset")
		}
		p.platform.updateBounds(sectionBounds(payload["sections"]))
		p.scroll.Observe(y, p.platform)

	case EventNavigate:
		// Unknown or absent targets are a no-op; the menu closes either way.
		p.nav.NavigateTo(interaction.SectionID(stringValue(payload["section"])))

	case EventToggleTheme:
		dark := p.mode.Toggle()
		if p.opts.PersistTheme {
			value := "light"
			if dark {
				value = "dark"
			}
			p.platform.queue(js.JS.SetCookie(p.opts.ThemeCookie, value, ThemeCookieMaxAge))
		}

	case EventToggleMenu:
		p.menu.Toggle()

	case EventCloseMenu:
		p.menu.Close()

	case EventFilter:
		c, ok := interaction.ParseCategory(stringValue(payload["category"]))
		if !ok {
			return fmt.Errorf("filter: unknown category %q", stringValue(payload["category"]))
		}
		p.projects.Select(c)

	case EventChange:
		field := stringValue(payload["field"])
		if !p.contact.SetField(field, stringValue(payload["value"])) {
			return fmt.Errorf("change: unknown field %q", field)
		}
		delete(p.fieldErrors, field)

	case EventSubmit:
		return p.submit(ctx, payload)

	case EventDismissToast:
		id, ok := intValue(payload["id"])
		if !ok {
			return fmt.Errorf("dismiss-toast: missing id")
		}
		p.toasts.Dismiss(id)

	default:
		return fmt.Errorf("%w: %s", ErrUnknownEvent, event)
	}
	return nil
}

func (p *Portfolio) submit(ctx context.Context, payload map[string]any) error {
	if form, ok := formFromPayload(payload); ok && !p.contact.Pending() {
		p.contact.SetForm(form)
	}

	err := p.contact.Submit(p.lifetime)
	switch {
	case err == nil:
		p.fieldErrors = nil
		logging.L(ctx).Debug("contact submission started")
		return nil
	case errors.Is(err, interaction.ErrSubmissionInFlight):
		return nil
	case errors.Is(err, interaction.ErrInvalidForm):
		var fe interaction.FieldErrors
		if errors.As(err, &fe) {
			p.fieldErrors = fe
		}
		metrics.SubmissionResolved(metrics.SubmissionInvalid)
		return nil
	default:
		return err
	}
}

// HandleInfo applies messages posted from background work.
func (p *Portfolio) HandleInfo(ctx context.Context, msg any) error {
	switch m := msg.(type) {
	case interaction.SubmissionResult:
		if !p.contact.Resolve(m) {
			return nil
		}
		log := logging.L(ctx)
		if m.Err != nil {
			metrics.SubmissionResolved(metrics.SubmissionFailed)
			log.Warn("contact submission failed", logging.Err(m.Err))
		} else {
			metrics.SubmissionResolved(metrics.SubmissionDelivered)
			log.Info("contact submission delivered")
		}
	case dismissToast:
		p.toasts.Dismiss(m.ID)
	}

	p.flush(ctx)
	p.sync()
	return nil
}

// Terminate stops scroll sampling and abandons any pending submission.
func (p *Portfolio) Terminate(ctx context.Context, reason core.TerminateReason) error {
	if p.scroll == nil {
		return nil
	}

	if p.scroll.Attached() {
		p.scroll.Detach()
		p.platform.setSampling(false)
		p.flush(ctx)
	}
	p.contact.Close()
	p.toasts.Close()
	if p.cancel != nil {
		p.cancel()
	}
	return nil
}

// post hands a message to the message loop. It may block and is only
// called from background goroutines and timers.
func (p *Portfolio) post(msg any) {
	if socket := p.Socket(); socket != nil {
		socket.SendInfo(msg)
	}
}

func (p *Portfolio) flush(ctx context.Context) {
	var pusher js.Pusher
	if socket := p.Socket(); socket != nil {
		pusher = socket
	}
	if err := p.platform.flush(pusher); err != nil {
		logging.L(ctx).Debug("client commands not sent", logging.Err(err))
	}
}

// sync mirrors every value Render reads into the assigns so the router can
// skip renders that would not change anything.
func (p *Portfolio) sync() {
	a := p.Assigns()
	state := p.scroll.State()
	a.Set("scrolled", state.PastThreshold)
	a.Set("active", string(state.ActiveSection))
	a.Set("dark", p.mode.IsDark())
	a.Set("menu", p.menu.IsOpen())
	a.Set("category", string(p.projects.Selected()))
	a.Set("form", p.contact.Form())
	a.Set("submitting", p.contact.Pending())
	a.Set("submission", p.contact.State().String())
	a.Set("errors", p.errorMessages())
	a.Set("toasts", p.toasts.Visible())
}

// Render implements core.Component.
func (p *Portfolio) Render(ctx context.Context) core.Renderer {
	return core.RendererFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, p.renderBody())
		return err
	})
}

func (p *Portfolio) renderBody() string {
	r := p.opts.Resume
	state := p.scroll.State()
	links := interaction.NavLinks()

	counts := make(map[interaction.ProjectCategory]int)
	for _, c := range interaction.Categories() {
		counts[c] = p.projects.Count(c)
	}

	var sb strings.Builder

	sb.WriteString(components.RenderHeader(components.HeaderOptions{
		Name:        r.Personal.Name,
		Links:       links,
		Active:      state.ActiveSection,
		Scrolled:    state.PastThreshold,
		Dark:        p.mode.IsDark(),
		MenuOpen:    p.menu.IsOpen(),
		GitHubURL:   r.Personal.GitHub,
		LinkedInURL: r.Personal.LinkedIn,
		Email:       r.Personal.Email,
		ResumeURL:   p.opts.ResumeURL,
	}))

	sb.WriteString(`<main id="main-content">`)
	sb.WriteString("\n")
	sb.WriteString(components.RenderHero(components.HeroOptions{
		Personal:     r.Personal,
		Availability: r.Availability,
		ResumeURL:    p.opts.ResumeURL,
	}))
	sb.WriteString(components.RenderStats(r.Stats))
	sb.WriteString(components.RenderAbout(components.AboutOptions{
		SummaryHTML:  p.summary,
		Education:    r.Education,
		Publications: r.Publications,
	}))
	sb.WriteString(components.RenderExperience(r.Experience))
	sb.WriteString(components.RenderProjects(components.ProjectsOptions{
		Selected:  p.projects.Selected(),
		Visible:   p.projects.Visible(),
		Counts:    counts,
		ResumeURL: p.opts.ResumeURL,
	}))
	sb.WriteString(components.RenderSkills(r.Skills))
	sb.WriteString(components.RenderContact(components.ContactOptions{
		Personal:     r.Personal,
		Availability: r.Availability,
		Form: components.ContactFormOptions{
			Values:     p.contact.Form(),
			Submitting: p.contact.Pending(),
			Errors:     p.errorMessages(),
		},
	}))
	sb.WriteString(`</main>`)
	sb.WriteString("\n")

	sb.WriteString(components.RenderFooter(components.FooterOptions{
		Personal: r.Personal,
		Links:    links,
		Year:     p.opts.Now().Year(),
	}))
	sb.WriteString(components.RenderToasts(p.toasts.Visible()))

	return sb.String()
}

var fieldLabels = map[string]string{
	interaction.FieldName:    "Name",
	interaction.FieldEmail:   "Email",
	interaction.FieldSubject: "Subject",
	interaction.FieldMessage: "Message",
}

func (p *Portfolio) errorMessages() map[string]string {
	if len(p.fieldErrors) == 0 {
		return nil
	}
	out := make(map[string]string, len(p.fieldErrors))
	for field, msg := range p.fieldErrors {
		out[field] = fieldLabels[field] + " " + msg
	}
	return out
}

func formFromPayload(payload map[string]any) (interaction.ContactForm, bool) {
	var form interaction.ContactForm
	found := false
	for _, field := range []string{
		interaction.FieldName,
		interaction.FieldEmail,
		interaction.FieldCompany,
		interaction.FieldSubject,
		interaction.FieldMessage,
	} {
		if v, ok := payload[field]; ok {
			form.Set(field, stringValue(v))
			found = true
		}
	}
	return form, found
}

// sectionBounds decodes {"hero": {"top": 0, "bottom": 800}, ...}.
// Entries that are not known sections or lack either edge are dropped.
func sectionBounds(v any) map[interaction.SectionID]interaction.Rect {
	out := make(map[interaction.SectionID]interaction.Rect)
	sections, ok := v.(map[string]any)
	if !ok {
		return out
	}
	for key, raw := range sections {
		id, ok := interaction.ParseSectionID(key)
		if !ok {
			continue
		}
		edges, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		top, okTop := number(edges["top"])
		bottom, okBottom := number(edges["bottom"])
		if !okTop || !okBottom {
			continue
		}
		out[id] = interaction.Rect{Top: top, Bottom: bottom}
	}
	return out
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}

// number accepts the numeric types the JSON and MessagePack codecs produce.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func intValue(v any) (int, bool) {
	f, ok := number(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}
