// Package components renders the portfolio sections and the small UI
// primitives they are built from. Every renderer is a pure function of its
// options and escapes all text it is given.
package components

import (
	"fmt"
	"html"
	"sort"
	"strings"
)

// Event attributes understood by the browser runtime.
const (
	AttrClick  = "lv-click"
	AttrChange = "lv-change"
	AttrSubmit = "lv-submit"

	// AttrValuePrefix marks attributes copied into a click payload:
	// lv-value-section="about" sends {"section": "about"}.
	AttrValuePrefix = "lv-value-"
)

// ButtonVariant is the visual treatment of a button.
type ButtonVariant string

const (
	ButtonPrimary ButtonVariant = "primary"
	ButtonOutline ButtonVariant = "outline"
	ButtonGhost   ButtonVariant = "ghost"
)

// ButtonOptions configures a button.
type ButtonOptions struct {
	Label   string
	Variant ButtonVariant
	// Event is sent on click. Empty renders a plain button.
	Event string
	// Values are sent with the click event.
	Values map[string]string
	Type   string
	// Class adds extra classes.
	Class     string
	Disabled  bool
	Pressed   *bool
	AriaLabel string
	// Icon is raw, trusted markup placed before the label.
	Icon string
}

// RenderButton generates a <button>.
func RenderButton(opts ButtonOptions) string {
	var sb strings.Builder

	variant := opts.Variant
	if variant == "" {
		variant = ButtonPrimary
	}
	typ := opts.Type
	if typ == "" {
		typ = "button"
	}

	sb.WriteString(fmt.Sprintf(`<button type="%s" class="%s"`, typ, classes("btn", "btn-"+string(variant), opts.Class)))
	if opts.Event != "" {
		sb.WriteString(fmt.Sprintf(` %s="%s"`, AttrClick, html.EscapeString(opts.Event)))
		sb.WriteString(valueAttrs(opts.Values))
	}
	if opts.AriaLabel != "" {
		sb.WriteString(fmt.Sprintf(` aria-label="%s"`, html.EscapeString(opts.AriaLabel)))
	}
	if opts.Pressed != nil {
		sb.WriteString(fmt.Sprintf(` aria-pressed="%t"`, *opts.Pressed))
	}
	if opts.Disabled {
		sb.WriteString(` disabled aria-disabled="true"`)
	}
	sb.WriteString(">")
	if opts.Icon != "" {
		sb.WriteString(opts.Icon)
	}
	sb.WriteString(html.EscapeString(opts.Label))
	sb.WriteString("</button>")

	return sb.String()
}

// RenderBadge generates a small pill. variant selects the color class.
func RenderBadge(text, variant string) string {
	return fmt.Sprintf(`<span class="%s">%s</span>`, classes("badge", variantClass("badge", variant)), html.EscapeString(text))
}

// CardOptions configures a card.
type CardOptions struct {
	Title string
	// Body is trusted markup.
	Body  string
	Class string
	Tag   string
}

// RenderCard generates a card container.
func RenderCard(opts CardOptions) string {
	tag := opts.Tag
	if tag == "" {
		tag = "div"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<%s class="%s">`, tag, classes("card", opts.Class)))
	if opts.Title != "" {
		sb.WriteString(fmt.Sprintf(`<h3 class="card-title">%s</h3>`, html.EscapeString(opts.Title)))
	}
	sb.WriteString(opts.Body)
	sb.WriteString(fmt.Sprintf("</%s>", tag))
	return sb.String()
}

// FieldOptions configures a labelled form control.
type FieldOptions struct {
	Name        string
	Label       string
	Type        string
	Value       string
	Placeholder string
	Required    bool
	Disabled    bool
	// Rows > 0 renders a textarea.
	Rows int
	// Error is shown below the control and marks it invalid.
	Error string
}

// RenderLabel generates a <label> for the control with id.
func RenderLabel(id, text string) string {
	return fmt.Sprintf(`<label class="label" for="%s">%s</label>`, html.EscapeString(id), html.EscapeString(text))
}

// RenderInput generates a single-line input.
func RenderInput(opts FieldOptions) string {
	typ := opts.Type
	if typ == "" {
		typ = "text"
	}
	return fmt.Sprintf(`<input class="input" id="%s" name="%s" type="%s" value="%s"%s>`,
		fieldID(opts.Name), html.EscapeString(opts.Name), typ, html.EscapeString(opts.Value), controlAttrs(opts))
}

// RenderTextarea generates a multi-line input.
func RenderTextarea(opts FieldOptions) string {
	rows := opts.Rows
	if rows <= 0 {
		rows = 4
	}
	return fmt.Sprintf(`<textarea class="input textarea" id="%s" name="%s" rows="%d"%s>%s</textarea>`,
		fieldID(opts.Name), html.EscapeString(opts.Name), rows, controlAttrs(opts), html.EscapeString(opts.Value))
}

// RenderField generates a label, its control and an optional error line.
func RenderField(opts FieldOptions) string {
	var sb strings.Builder

	sb.WriteString(`<div class="field">`)
	sb.WriteString(RenderLabel(fieldID(opts.Name), opts.Label))
	if opts.Rows > 0 {
		sb.WriteString(RenderTextarea(opts))
	} else {
		sb.WriteString(RenderInput(opts))
	}
	if opts.Error != "" {
		sb.WriteString(fmt.Sprintf(`<p class="field-error" id="%s-error" role="alert">%s</p>`,
			fieldID(opts.Name), html.EscapeString(opts.Error)))
	}
	sb.WriteString(`</div>`)

	return sb.String()
}

// RenderProgress generates a labelled progress bar for a 0-100 level.
// The bar width comes from a level class so no style attribute is needed.
func RenderProgress(label string, level int) string {
	level = clampLevel(level)
	return fmt.Sprintf(`<div class="progress" role="progressbar" aria-label="%s" aria-valuemin="0" aria-valuemax="100" aria-valuenow="%d"><div class="progress-bar w-%d"></div></div>`,
		html.EscapeString(label), level, level/5*5)
}

func controlAttrs(opts FieldOptions) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(` %s="change"`, AttrChange))
	if opts.Placeholder != "" {
		sb.WriteString(fmt.Sprintf(` placeholder="%s"`, html.EscapeString(opts.Placeholder)))
	}
	if opts.Required {
		sb.WriteString(" required")
	}
	if opts.Disabled {
		sb.WriteString(" disabled")
	}
	if opts.Error != "" {
		sb.WriteString(fmt.Sprintf(` aria-invalid="true" aria-describedby="%s-error"`, fieldID(opts.Name)))
	}
	return sb.String()
}

func valueAttrs(values map[string]string) string {
	if len(values) == 0 {
		return ""
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf(` %s%s="%s"`, AttrValuePrefix, html.EscapeString(k), html.EscapeString(values[k])))
	}
	return sb.String()
}

func fieldID(name string) string {
	return "contact-" + html.EscapeString(name)
}

func variantClass(base, variant string) string {
	if variant == "" {
		return ""
	}
	return base + "-" + variant
}

// classes joins the non-empty class names.
func classes(names ...string) string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return strings.Join(out, " ")
}

func clampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > 100 {
		return 100
	}
	return level
}
