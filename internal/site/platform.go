package site

import (
	"github.com/pranayvarade/livefolio/internal/interaction"
	"github.com/pranayvarade/livefolio/pkg/js"
)

// Scroll sampling switch read by the browser runtime.
const (
	scrollAttr = "data-lv-scroll"
	scrollOn   = "on"
	scrollOff  = "off"
)

// livePlatform is the interaction.Platform of a connected page. Bounds
// come from the latest scroll sample the browser sent; side effects are
// queued as client commands and pushed after the current event.
type livePlatform struct {
	sections map[interaction.SectionID]bool
	bounds   map[interaction.SectionID]interaction.Rect
	pending  js.Commands
}

func newLivePlatform(rendered []interaction.SectionID) *livePlatform {
	p := &livePlatform{
		sections: make(map[interaction.SectionID]bool, len(rendered)),
		bounds:   make(map[interaction.SectionID]interaction.Rect),
	}
	for _, id := range rendered {
		p.sections[id] = true
	}
	return p
}

// QueryElementBounds answers from the latest sample. Sections the sample
// did not measure are reported absent.
func (p *livePlatform) QueryElementBounds(id interaction.SectionID) (interaction.Rect, bool) {
	r, ok := p.bounds[id]
	return r, ok
}

func (p *livePlatform) SetPresentationMode(dark bool) {
	if dark {
		p.queue(js.JS.AddClass("html", "dark"))
	} else {
		p.queue(js.JS.RemoveClass("html", "dark"))
	}
}

func (p *livePlatform) ScrollElementIntoView(id interaction.SectionID) bool {
	if !p.sections[id] {
		return false
	}
	p.queue(js.JS.ScrollIntoView("#" + string(id)))
	return true
}

// updateBounds replaces the measured bounds with a new sample.
func (p *livePlatform) updateBounds(sample map[interaction.SectionID]interaction.Rect) {
	p.bounds = sample
}

// setSampling tells the browser to start or stop sending scroll samples.
func (p *livePlatform) setSampling(on bool) {
	value := scrollOff
	if on {
		value = scrollOn
	}
	p.queue(js.JS.SetAttr("body", scrollAttr, value))
}

func (p *livePlatform) queue(cmd js.Command) {
	p.pending = append(p.pending, cmd)
}

// flush pushes the queued commands as one batch. Without a pusher the
// queue is dropped, as on the first HTTP render.
func (p *livePlatform) flush(pusher js.Pusher) error {
	cmds := p.pending
	p.pending = nil
	if pusher == nil {
		return nil
	}
	return js.Exec(pusher, cmds...)
}
