package site

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
)

// Palette is the light theme (WCAG 2.1 AA contrast on bg and surface).
var Palette = map[string]string{
	"bg":        "#FFFFFF",
	"surface":   "#F8FAFC",
	"border":    "#E2E8F0",
	"text":      "#0F172A",
	"textMuted": "#475569",

	"primary":   "#1E3A5F", // navy
	"accent":    "#0D9488", // teal
	"accentInk": "#FFFFFF",

	"success": "#047857",
	"warning": "#B45309",
	"danger":  "#B91C1C",
	"info":    "#1D4ED8",
}

// DarkPalette overrides Palette when the root element has the dark class.
var DarkPalette = map[string]string{
	"bg":        "#0B1220",
	"surface":   "#111B2E",
	"border":    "#1F2A44",
	"text":      "#F1F5F9",
	"textMuted": "#CBD5E1",

	"primary":   "#93C5FD",
	"accent":    "#2DD4BF",
	"accentInk": "#042F2E",

	"success": "#34D399",
	"warning": "#FBBF24",
	"danger":  "#F87171",
	"info":    "#60A5FA",
}

// Typography uses system font stack for instant loading
var FontFamily = `system-ui, -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif`

// Breakpoints for responsive design (mobile-first: min-width)
var Breakpoints = map[string]string{
	"md": "768px",
	"lg": "1024px",
}

// RenderStyles generates the complete stylesheet. The page uses classes
// only; the content security policy forbids inline styles.
func RenderStyles() string {
	var sb strings.Builder

	sb.WriteString(cssReset())
	sb.WriteString(cssVariables(":root", Palette))
	sb.WriteString(cssVariables(":root.dark", DarkPalette))
	sb.WriteString(cssBase())
	sb.WriteString(cssLayout())
	sb.WriteString(cssHeader())
	sb.WriteString(cssButtons())
	sb.WriteString(cssCards())
	sb.WriteString(cssSections())
	sb.WriteString(cssForms())
	sb.WriteString(cssProgress())
	sb.WriteString(cssToasts())
	sb.WriteString(cssAccessibility())
	sb.WriteString(cssResponsive())

	return sb.String()
}

var (
	stylesOnce sync.Once
	styles     []byte
)

// StylesHandler serves the stylesheet. It is generated once.
func StylesHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stylesOnce.Do(func() {
			styles = []byte(RenderStyles())
		})
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Write(styles)
	})
}

func cssReset() string {
	return `
*,*::before,*::after{box-sizing:border-box;margin:0;padding:0}
html{-webkit-text-size-adjust:100%;scroll-behavior:smooth}
body{line-height:1.6;-webkit-font-smoothing:antialiased}
img,svg{display:block;max-width:100%}
input,button,textarea{font:inherit;color:inherit}
a{color:inherit;text-decoration:none}
ul,ol{list-style:none}
`
}

func cssVariables(selector string, colors map[string]string) string {
	names := make([]string, 0, len(colors))
	for name := range colors {
		names = append(names, name)
	}
	sort.Strings(names)

	vars := make([]string, 0, len(names))
	for _, name := range names {
		vars = append(vars, fmt.Sprintf("--color-%s:%s", name, colors[name]))
	}
	return fmt.Sprintf("%s{%s;--font-sans:%s}\n", selector, strings.Join(vars, ";"), FontFamily)
}

func cssBase() string {
	return `
body{font-family:var(--font-sans);background:var(--color-bg);color:var(--color-text);min-height:100vh;transition:background .3s,color .3s}
h1{font-size:clamp(2.25rem,6vw,4.5rem);font-weight:800;line-height:1.1;letter-spacing:-0.02em}
h2{font-size:clamp(1.75rem,4vw,3rem);font-weight:700;line-height:1.2}
h3{font-size:1.25rem;font-weight:600}
h4{font-size:1rem;font-weight:600}
p,.muted{color:var(--color-textMuted)}
.meta{font-size:.875rem;color:var(--color-textMuted)}
.block{display:block}
.text-gradient{background:linear-gradient(135deg,var(--color-primary),var(--color-accent));-webkit-background-clip:text;-webkit-text-fill-color:transparent;background-clip:text}
.prose p{margin-bottom:1rem}
.prose strong{color:var(--color-text)}
`
}

func cssLayout() string {
	return `
.container{width:100%;max-width:1200px;margin:0 auto;padding:0 1rem}
.section{padding:4rem 0}
.section-heading{text-align:center;margin-bottom:3rem}
.section-heading p{max-width:48rem;margin:1rem auto 0;font-size:1.125rem}
.grid{display:grid}
.grid-2,.grid-3{grid-template-columns:1fr}
.gap-md{gap:1rem}.gap-lg{gap:1.5rem}.gap-xl{gap:2rem}
.stack{display:flex;flex-direction:column;gap:1.5rem}
.hide-mobile{display:none}
`
}

func cssHeader() string {
	return `
.site-header{position:fixed;top:0;left:0;right:0;z-index:50;padding:1rem 0;background:transparent;transition:background .3s,box-shadow .3s}
.site-header-scrolled{background:var(--color-bg);box-shadow:0 1px 0 var(--color-border);backdrop-filter:blur(12px)}
.header-inner{display:flex;align-items:center;justify-content:space-between;gap:1rem}
.logo{font-size:1.25rem;font-weight:800;background:none;border:none;cursor:pointer}
.nav-links{display:none;gap:.25rem}
.nav-link,.mobile-link{background:none;border:none;cursor:pointer;padding:.5rem .75rem;border-radius:.5rem;color:var(--color-textMuted)}
.nav-link:hover,.mobile-link:hover{color:var(--color-text)}
.nav-link.active,.mobile-link.active{color:var(--color-accent);font-weight:600}
.header-actions{display:flex;align-items:center;gap:.5rem}
.social{gap:.75rem;font-size:.875rem}
.mobile-menu{background:var(--color-bg);border-top:1px solid var(--color-border);padding:1rem 0}
.mobile-menu .container{display:flex;flex-direction:column;gap:.25rem}
.mobile-link{text-align:left;width:100%}
`
}

func cssButtons() string {
	// 44px minimum tap target
	return `
.btn{display:inline-flex;align-items:center;justify-content:center;gap:.5rem;padding:.625rem 1.25rem;min-height:2.75rem;font-weight:600;border-radius:.5rem;border:1px solid transparent;cursor:pointer;transition:all .2s ease}
.btn:disabled{opacity:.6;cursor:not-allowed}
.btn-primary{background:var(--color-accent);color:var(--color-accentInk)}
.btn-primary:hover:not(:disabled){transform:translateY(-2px)}
.btn-outline{background:transparent;border-color:var(--color-border)}
.btn-outline:hover{border-color:var(--color-accent)}
.btn-ghost{background:transparent;min-width:2.75rem}
.btn-sm{min-height:2.25rem;padding:.375rem .875rem;font-size:.875rem}
.btn-lg{padding:.875rem 2rem;font-size:1.125rem}
.btn-block{width:100%}
.link{background:none;border:none;cursor:pointer;color:var(--color-textMuted)}
.link:hover{color:var(--color-accent)}
.badge{display:inline-flex;align-items:center;padding:.125rem .625rem;border-radius:9999px;font-size:.75rem;font-weight:600;border:1px solid var(--color-border)}
.badge-success{color:var(--color-success);border-color:var(--color-success)}
.badge-warning{color:var(--color-warning);border-color:var(--color-warning)}
.badge-info{color:var(--color-info);border-color:var(--color-info)}
.badge-muted{color:var(--color-textMuted)}
.pill{display:inline-flex;align-items:center;gap:.5rem;padding:.5rem 1rem;border-radius:9999px;border:1px solid var(--color-accent);font-size:.875rem;margin-bottom:2rem}
.pill-center{display:flex;width:max-content;margin:0 auto 2rem}
.pill-dot{width:.5rem;height:.5rem;border-radius:9999px;background:var(--color-accent)}
`
}

func cssCards() string {
	return `
.card{background:var(--color-surface);border:1px solid var(--color-border);border-radius:1rem;padding:1.5rem}
.card-title{margin-bottom:.75rem}
.card-accent{border-color:var(--color-accent)}
.entries{display:flex;flex-direction:column;gap:1rem}
`
}

func cssSections() string {
	return `
.hero{min-height:100vh;display:flex;align-items:center;text-align:center;padding-top:6rem}
.hero-inner{display:flex;flex-direction:column;align-items:center}
.hero-subtitle{font-size:1.5rem;font-weight:500;margin:1.5rem 0 1rem;color:var(--color-text)}
.hero-tagline{max-width:48rem;font-size:1.125rem;margin-bottom:2rem}
.hero-facts{display:flex;flex-wrap:wrap;justify-content:center;gap:.75rem;margin-bottom:2.5rem}
.hero-facts li{padding:.5rem 1rem;border:1px solid var(--color-border);border-radius:.75rem;font-size:.875rem}
.hero-actions{display:flex;flex-direction:column;gap:1rem}
.cta{max-width:48rem;margin:4rem auto 0;text-align:center;padding:3rem}
.cta .accent{color:var(--color-accent)}
.cta-actions{display:flex;flex-direction:column;justify-content:center;gap:1rem;margin-top:2rem}
.stats-grid{display:grid;grid-template-columns:repeat(2,1fr);gap:1rem}
.stat-card{text-align:center;padding:1.5rem;border-radius:1rem;background:var(--color-surface)}
.stat-value{font-size:2rem;font-weight:800;color:var(--color-accent)}
.stat-label{font-size:.875rem;color:var(--color-textMuted)}
.employer{margin-bottom:2rem}
.timeline{border-left:2px solid var(--color-border);margin-top:1rem;padding-left:1.5rem;display:flex;flex-direction:column;gap:1.5rem}
.timeline-head{display:flex;flex-wrap:wrap;align-items:center;gap:.75rem;margin-bottom:.5rem}
.achievements{list-style:disc;padding-left:1.25rem;display:flex;flex-direction:column;gap:.5rem;color:var(--color-textMuted)}
.filters{display:flex;flex-wrap:wrap;justify-content:center;gap:.75rem;margin-bottom:2rem}
.project{display:flex;flex-direction:column;gap:1rem}
.project-head{display:flex;justify-content:space-between;gap:1rem}
.project-meta{display:flex;gap:.5rem;align-items:flex-start}
.tags{display:flex;flex-wrap:wrap;gap:.5rem}
.features{list-style:disc;padding-left:1.25rem;color:var(--color-textMuted)}
.impact{border-top:1px solid var(--color-border);padding-top:1rem}
.empty{text-align:center}
.subheading{text-align:center;margin:3rem 0 1.5rem}
.skills{display:flex;flex-direction:column;gap:1rem}
.skill-head{display:flex;justify-content:space-between;font-size:.875rem;margin-bottom:.25rem}
.skill-level{color:var(--color-accent);font-weight:600}
.contact-list{display:flex;flex-direction:column;gap:1rem}
.contact-item{display:flex;flex-direction:column}
.social-links{display:flex;gap:.75rem}
.footer{background:var(--color-primary);color:var(--color-bg);padding:3rem 0 1.5rem;margin-top:4rem}
.footer p{color:inherit;opacity:.85}
.footer-links{display:flex;flex-direction:column;gap:.5rem;margin-top:.75rem}
.footer .link{color:inherit}
.footer-bottom{display:flex;flex-wrap:wrap;justify-content:space-between;gap:1rem;margin-top:2rem;padding-top:1.5rem;border-top:1px solid currentColor;font-size:.875rem;opacity:.85}
`
}

func cssForms() string {
	return `
.contact-form{display:flex;flex-direction:column;gap:1.25rem}
.field{display:flex;flex-direction:column;gap:.375rem}
.label{font-size:.875rem;font-weight:600}
.input{width:100%;padding:.625rem .875rem;border:1px solid var(--color-border);border-radius:.5rem;background:var(--color-bg)}
.input:focus{outline:2px solid var(--color-accent);outline-offset:1px}
.input[aria-invalid="true"]{border-color:var(--color-danger)}
.textarea{resize:vertical}
.field-error{font-size:.8125rem;color:var(--color-danger)}
.consent{font-size:.75rem;text-align:center}
`
}

// cssProgress generates width classes in 5% steps for progress bars.
func cssProgress() string {
	var sb strings.Builder
	sb.WriteString("\n.progress{height:.5rem;border-radius:9999px;background:var(--color-border);overflow:hidden}\n")
	sb.WriteString(".progress-bar{height:100%;border-radius:9999px;background:linear-gradient(90deg,var(--color-primary),var(--color-accent))}\n")
	for w := 0; w <= 100; w += 5 {
		sb.WriteString(fmt.Sprintf(".w-%d{width:%d%%}", w, w))
	}
	sb.WriteString("\n")
	return sb.String()
}

func cssToasts() string {
	return `
.toasts{position:fixed;right:1rem;bottom:1rem;z-index:60;display:flex;flex-direction:column;gap:.75rem;max-width:24rem}
.toast{display:flex;gap:.75rem;align-items:flex-start;padding:1rem;border-radius:.75rem;background:var(--color-surface);border:1px solid var(--color-border);box-shadow:0 10px 30px rgba(0,0,0,.15)}
.toast-success{border-color:var(--color-success)}
.toast-error{border-color:var(--color-danger)}
.toast-title{font-weight:600;color:var(--color-text)}
.toast-description{font-size:.875rem}
.toast-close{background:none;border:none;cursor:pointer;font-size:1.25rem;line-height:1}
`
}

func cssAccessibility() string {
	return `
.skip-link{position:absolute;left:-9999px;top:0}
.skip-link:focus{left:1rem;top:1rem;z-index:100;padding:.5rem 1rem;background:var(--color-accent);color:var(--color-accentInk);border-radius:.5rem}
:focus-visible{outline:2px solid var(--color-accent);outline-offset:2px}
@media (prefers-reduced-motion:reduce){html{scroll-behavior:auto}*{transition:none!important}}
`
}

func cssResponsive() string {
	return fmt.Sprintf(`
@media (min-width:%s){
.grid-2{grid-template-columns:repeat(2,1fr)}
.grid-3{grid-template-columns:repeat(3,1fr)}
.stats-grid{grid-template-columns:repeat(4,1fr)}
.hero-actions{flex-direction:row}
.cta-actions{flex-direction:row}
}
@media (min-width:%s){
.nav-links{display:flex}
.hide-mobile{display:flex}
.menu-toggle{display:none}
.mobile-menu{display:none}
}
`, Breakpoints["md"], Breakpoints["lg"])
}
