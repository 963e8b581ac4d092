package interaction

// ModePreference is the light/dark presentation flag. It is the only writer
// of the document root's presentation class.
type ModePreference struct {
	platform Platform
	dark     bool
}

// NewModePreference starts in light mode.
func NewModePreference(p Platform) *ModePreference {
	return &ModePreference{platform: p}
}

// Toggle flips the mode, reflects it on the platform and returns the new value.
func (m *ModePreference) Toggle() bool {
	m.set(!m.dark)
	return m.dark
}

// Restore applies a previously persisted preference.
func (m *ModePreference) Restore(dark bool) {
	m.set(dark)
}

// IsDark reports whether dark mode is on.
func (m *ModePreference) IsDark() bool {
	return m.dark
}

func (m *ModePreference) set(dark bool) {
	m.dark = dark
	if m.platform != nil {
		m.platform.SetPresentationMode(dark)
	}
}
