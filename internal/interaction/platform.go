package interaction

// Rect is the vertical extent of an element relative to the viewport top.
type Rect struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Contains reports whether the probe line y lies within the rect, edges included.
func (r Rect) Contains(y float64) bool {
	return r.Top <= y && r.Bottom >= y
}

// BoundsQuerier looks up the current bounds of a section element.
// The boolean is false when the element is not on the page.
type BoundsQuerier interface {
	QueryElementBounds(id SectionID) (Rect, bool)
}

// Platform is the rendering surface the state machines act on.
type Platform interface {
	BoundsQuerier

	// SetPresentationMode adds or removes the dark class on the document root.
	SetPresentationMode(dark bool)

	// ScrollElementIntoView requests a smooth scroll to the section and
	// returns immediately. It returns false when the element is absent.
	ScrollElementIntoView(id SectionID) bool
}
