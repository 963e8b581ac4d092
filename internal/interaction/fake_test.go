package interaction

// fakePlatform records side effects and answers bounds from a map.
type fakePlatform struct {
	bounds   map[SectionID]Rect
	modes    []bool
	scrolled []SectionID
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{bounds: make(map[SectionID]Rect)}
}

func (p *fakePlatform) QueryElementBounds(id SectionID) (Rect, bool) {
	r, ok := p.bounds[id]
	return r, ok
}

func (p *fakePlatform) SetPresentationMode(dark bool) {
	p.modes = append(p.modes, dark)
}

func (p *fakePlatform) ScrollElementIntoView(id SectionID) bool {
	if _, ok := p.bounds[id]; !ok {
		return false
	}
	p.scrolled = append(p.scrolled, id)
	return true
}

// stack lays the sections out back to back, each height px tall, with the
// page scrolled by offset.
func (p *fakePlatform) stack(height, offset float64) {
	for i, id := range sectionOrder {
		top := float64(i)*height - offset
		p.bounds[id] = Rect{Top: top, Bottom: top + height}
	}
}
