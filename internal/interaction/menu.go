package interaction

// MobileMenu is the open/closed state of the collapsible navigation panel.
// Only Toggle can open it.
type MobileMenu struct {
	open bool
}

// Toggle flips the menu and returns the new state.
func (m *MobileMenu) Toggle() bool {
	m.open = !m.open
	return m.open
}

// Close forces the menu closed. It is idempotent.
func (m *MobileMenu) Close() {
	m.open = false
}

// IsOpen reports whether the menu is open.
func (m *MobileMenu) IsOpen() bool {
	return m.open
}
