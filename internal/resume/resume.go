// Package resume loads the static portfolio data the site renders.
package resume

import (
	"bytes"
	_ "embed"
	"html/template"
	"os"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultData []byte

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Default returns the embedded resume.
func Default() (r *Resume, err error) {
	r, err = Parse(defaultData)
	if err != nil {
		err = errors.Wrap(err, "embedded resume")
	}
	return r, err
}

// MustDefault is Default that panics on error. The embedded data is
// validated by the package tests.
func MustDefault() *Resume {
	r, err := Default()
	if err != nil {
		panic(err)
	}
	return r
}

// Load reads a resume from a YAML file. An empty path returns the
// embedded resume.
func Load(path string) (r *Resume, err error) {
	if path == "" {
		return Default()
	}

	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read resume file: %s", path)
		return nil, err
	}

	r, err = Parse(data)
	if err != nil {
		err = errors.Wrapf(err, "resume file %s", path)
	}
	return r, err
}

// Parse decodes and validates resume YAML.
func Parse(data []byte) (r *Resume, err error) {
	r = &Resume{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	err = dec.Decode(r)
	if err != nil {
		err = errors.Wrap(err, "failed to parse resume YAML")
		return nil, err
	}

	err = r.Validate()
	if err != nil {
		err = errors.Wrap(err, "resume validation failed")
		return nil, err
	}
	return r, nil
}

// Validate checks that the resume is well-formed.
func (r *Resume) Validate() (err error) {
	if r.Personal.Name == "" {
		return errors.New("personal name is required")
	}
	if r.Personal.Email == "" {
		return errors.New("personal email is required")
	}

	groups := append(r.Skills.Groups(), SkillGroup{Title: "Specializations", Skills: r.Skills.Specializations})
	for _, g := range groups {
		for _, s := range g.Skills {
			if s.Name == "" {
				return errors.Errorf("%s skill missing name", g.Title)
			}
			if s.Level < 0 || s.Level > 100 {
				return errors.Errorf("skill %s level %d out of range 0-100", s.Name, s.Level)
			}
		}
	}

	for i, p := range r.Projects {
		if p.Title == "" {
			return errors.Errorf("project at index %d missing title", i)
		}
		if !p.Category.IsConcrete() {
			return errors.Errorf("project %s has invalid category %q", p.Title, p.Category)
		}
		if !p.Status.Valid() {
			return errors.Errorf("project %s has invalid status %q", p.Title, p.Status)
		}
	}

	for _, e := range r.Experience {
		if e.Company == "" {
			return errors.New("experience entry missing company")
		}
	}

	return nil
}

// SummaryHTML renders the expanded summary Markdown. Raw HTML in the source
// is not passed through.
func (r *Resume) SummaryHTML() (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(r.Summary.Expanded), &buf); err != nil {
		return "", errors.Wrap(err, "failed to render summary")
	}
	return template.HTML(buf.String()), nil
}
