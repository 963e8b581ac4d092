// Package site assembles the portfolio page: the document head and
// stylesheet, the layout used for the first HTTP render, and the Portfolio
// live component that owns every interaction state machine of a connected
// page.
package site

import (
	"strings"

	"github.com/pranayvarade/livefolio/internal/resume"
)

// Asset paths served next to the page.
const (
	StylesheetPath = "/assets/livefolio.css"
	ScriptPath     = "/assets/livefolio.js"
)

// PageConfig defines the document metadata.
type PageConfig struct {
	// Title is the page title (shown in browser tab and search results)
	Title string
	// Description is the meta description for SEO
	Description string
	// URL is the canonical URL of the page
	URL string
	// Keywords are SEO keywords for the page
	Keywords []string
	// Author is the author meta tag
	Author string
	// Language is the page language (default: "en")
	Language string
	// ThemeColor is the mobile browser theme color
	ThemeColor string

	// Person feeds the schema.org Person JSON-LD block.
	Person resume.Personal
	// Topic is the live channel the browser runtime joins.
	Topic string
}

// DefaultTopic is the channel name of the portfolio view.
const DefaultTopic = "lv:livefolio"

// PageConfigFromResume derives the page metadata from resume data.
func PageConfigFromResume(r *resume.Resume) PageConfig {
	p := r.Personal
	title := p.Name
	if p.Title != "" {
		title = p.Name + " | " + p.Title
	}
	return PageConfig{
		Title:       title,
		Description: strings.TrimSpace(r.Summary.Brief),
		URL:         p.Portfolio,
		Keywords:    r.Keywords,
		Author:      p.Name,
		Language:    "en",
		ThemeColor:  Palette["accent"],
		Person:      p,
		Topic:       DefaultTopic,
	}
}
