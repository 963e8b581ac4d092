package site

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// RenderHead generates the <head> section with SEO, Open Graph and JSON-LD.
// nonce is the CSP nonce for the inline JSON-LD block.
func RenderHead(cfg PageConfig, nonce string) string {
	var sb strings.Builder

	themeColor := cfg.ThemeColor
	if themeColor == "" {
		themeColor = Palette["accent"]
	}

	sb.WriteString("<head>\n")

	// Essential meta tags
	sb.WriteString(`<meta charset="UTF-8">` + "\n")
	sb.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1.0">` + "\n")

	sb.WriteString(fmt.Sprintf("<title>%s</title>\n", html.EscapeString(cfg.Title)))

	if cfg.Description != "" {
		sb.WriteString(fmt.Sprintf(`<meta name="description" content="%s">`+"\n", html.EscapeString(cfg.Description)))
	}
	if len(cfg.Keywords) > 0 {
		sb.WriteString(fmt.Sprintf(`<meta name="keywords" content="%s">`+"\n", html.EscapeString(strings.Join(cfg.Keywords, ", "))))
	}
	if cfg.Author != "" {
		sb.WriteString(fmt.Sprintf(`<meta name="author" content="%s">`+"\n", html.EscapeString(cfg.Author)))
	}
	if cfg.URL != "" {
		sb.WriteString(fmt.Sprintf(`<link rel="canonical" href="%s">`+"\n", html.EscapeString(cfg.URL)))
	}

	sb.WriteString(fmt.Sprintf(`<meta name="theme-color" content="%s">`+"\n", html.EscapeString(themeColor)))
	sb.WriteString(`<meta name="robots" content="index, follow">` + "\n")

	sb.WriteString(renderOpenGraph(cfg))
	sb.WriteString(renderJSONLD(cfg, nonce))

	sb.WriteString(`<link rel="icon" href="data:image/svg+xml,<svg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 100 100'><text y='.9em' font-size='90'>PV</text></svg>">` + "\n")
	sb.WriteString(fmt.Sprintf(`<link rel="stylesheet" href="%s">`+"\n", StylesheetPath))
	sb.WriteString(fmt.Sprintf(`<script src="%s" defer></script>`+"\n", ScriptPath))

	sb.WriteString("</head>\n")

	return sb.String()
}

func renderOpenGraph(cfg PageConfig) string {
	var sb strings.Builder

	sb.WriteString(`<meta property="og:type" content="profile">` + "\n")

	if cfg.Title != "" {
		sb.WriteString(fmt.Sprintf(`<meta property="og:title" content="%s">`+"\n", html.EscapeString(cfg.Title)))
	}
	if cfg.Description != "" {
		sb.WriteString(fmt.Sprintf(`<meta property="og:description" content="%s">`+"\n", html.EscapeString(cfg.Description)))
	}
	if cfg.URL != "" {
		sb.WriteString(fmt.Sprintf(`<meta property="og:url" content="%s">`+"\n", html.EscapeString(cfg.URL)))
	}

	return sb.String()
}

func renderJSONLD(cfg PageConfig, nonce string) string {
	p := cfg.Person
	if p.Name == "" {
		return ""
	}

	person := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Person",
		"name":     p.Name,
	}
	if p.Title != "" {
		person["jobTitle"] = p.Title
	}
	if p.Email != "" {
		person["email"] = "mailto:" + p.Email
	}
	if cfg.URL != "" {
		person["url"] = cfg.URL
	}
	var sameAs []string
	for _, link := range []string{p.GitHub, p.LinkedIn} {
		if link != "" {
			sameAs = append(sameAs, link)
		}
	}
	if len(sameAs) > 0 {
		person["sameAs"] = sameAs
	}

	// json.Marshal escapes <, > and & so the data cannot close the script.
	data, err := json.Marshal(person)
	if err != nil {
		return ""
	}

	nonceAttr := ""
	if nonce != "" {
		nonceAttr = fmt.Sprintf(` nonce="%s"`, html.EscapeString(nonce))
	}
	return fmt.Sprintf(`<script type="application/ld+json"%s>%s</script>`+"\n", nonceAttr, data)
}

// RenderDocument wraps body in a complete HTML document. dark sets the
// presentation class on the root element for the first paint.
func RenderDocument(cfg PageConfig, nonce string, dark bool, body string) string {
	lang := cfg.Language
	if lang == "" {
		lang = "en"
	}
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	class := ""
	if dark {
		class = ` class="dark"`
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="%s"%s>
%s<body data-lv-topic="%s">
<div id="lv-root">
%s
</div>
</body>
</html>`, html.EscapeString(lang), class, RenderHead(cfg, nonce), html.EscapeString(topic), body)
}
