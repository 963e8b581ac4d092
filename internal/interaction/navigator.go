package interaction

// SectionNavigator scrolls the page to a section. Every navigation closes
// the mobile menu, whether or not the target exists.
type SectionNavigator struct {
	platform Platform
	menu     *MobileMenu
}

// NewSectionNavigator binds a navigator to a platform and the menu it closes.
func NewSectionNavigator(p Platform, menu *MobileMenu) *SectionNavigator {
	return &SectionNavigator{platform: p, menu: menu}
}

// NavigateTo closes the menu and requests a smooth scroll to id. It does not
// wait for the scroll to finish. Unknown or absent sections are a no-op and
// NavigateTo reports false.
func (n *SectionNavigator) NavigateTo(id SectionID) bool {
	if n.menu != nil {
		n.menu.Close()
	}
	if _, ok := sectionLabels[id]; !ok {
		return false
	}
	if n.platform == nil {
		return false
	}
	return n.platform.ScrollElementIntoView(id)
}
