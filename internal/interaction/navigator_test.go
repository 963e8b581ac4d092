package interaction

import (
	"testing"
)

func TestSectionNavigator_ClosesMenuAndScrolls(t *testing.T) {
	p := newFakePlatform()
	p.stack(800, 0)

	menu := &MobileMenu{}
	menu.Toggle()
	if !menu.IsOpen() {
		t.Fatal("expected menu to be open")
	}

	nav := NewSectionNavigator(p, menu)
	if !nav.NavigateTo(SectionProjects) {
		t.Error("expected NavigateTo to report success")
	}

	if menu.IsOpen() {
		t.Error("expected menu to be closed after navigation")
	}
	if len(p.scrolled) != 1 || p.scrolled[0] != SectionProjects {
		t.Errorf("expected one scroll to projects, got %v", p.scrolled)
	}
}

func TestSectionNavigator_MissingTarget(t *testing.T) {
	p := newFakePlatform()
	p.bounds[SectionHero] = Rect{Top: 0, Bottom: 800}

	menu := &MobileMenu{}
	menu.Toggle()

	nav := NewSectionNavigator(p, menu)
	if nav.NavigateTo(SectionSkills) {
		t.Error("expected NavigateTo to report false for an absent section")
	}
	if menu.IsOpen() {
		t.Error("expected menu to close even when the target is absent")
	}
	if len(p.scrolled) != 0 {
		t.Errorf("expected no scroll, got %v", p.scrolled)
	}
}

func TestSectionNavigator_UnknownSection(t *testing.T) {
	p := newFakePlatform()
	p.stack(800, 0)

	nav := NewSectionNavigator(p, &MobileMenu{})
	if nav.NavigateTo(SectionID("blog")) {
		t.Error("expected unknown section to be a no-op")
	}
	if len(p.scrolled) != 0 {
		t.Errorf("expected no scroll, got %v", p.scrolled)
	}
}

func TestMobileMenu(t *testing.T) {
	m := &MobileMenu{}
	if m.IsOpen() {
		t.Fatal("expected menu closed initially")
	}

	if !m.Toggle() {
		t.Error("expected Toggle to open the menu")
	}
	if m.Toggle() {
		t.Error("expected second Toggle to close the menu")
	}

	m.Close()
	m.Close()
	if m.IsOpen() {
		t.Error("expected Close to be idempotent")
	}
}

func TestModePreference_Toggle(t *testing.T) {
	p := newFakePlatform()
	mode := NewModePreference(p)

	if mode.IsDark() {
		t.Fatal("expected light mode initially")
	}

	if !mode.Toggle() {
		t.Error("expected dark after first toggle")
	}
	if mode.Toggle() {
		t.Error("expected light after second toggle")
	}

	want := []bool{true, false}
	if len(p.modes) != len(want) {
		t.Fatalf("expected %d platform updates, got %d", len(want), len(p.modes))
	}
	for i := range want {
		if p.modes[i] != want[i] {
			t.Errorf("update %d: got %v, want %v", i, p.modes[i], want[i])
		}
	}
}

func TestModePreference_Restore(t *testing.T) {
	p := newFakePlatform()
	mode := NewModePreference(p)

	mode.Restore(true)
	if !mode.IsDark() {
		t.Error("expected dark after Restore(true)")
	}
	if len(p.modes) != 1 || !p.modes[0] {
		t.Errorf("expected one dark update, got %v", p.modes)
	}
}

func TestNavLinks(t *testing.T) {
	links := NavLinks()
	want := []string{"Home", "About", "Experience", "Projects", "Skills", "Contact"}

	if len(links) != len(want) {
		t.Fatalf("expected %d links, got %d", len(want), len(links))
	}
	for i, link := range links {
		if link.Label != want[i] {
			t.Errorf("link %d label = %q, want %q", i, link.Label, want[i])
		}
		if link.Section != sectionOrder[i] {
			t.Errorf("link %d section = %s, want %s", i, link.Section, sectionOrder[i])
		}
	}
}

func TestParseSectionID(t *testing.T) {
	if id, ok := ParseSectionID("skills"); !ok || id != SectionSkills {
		t.Errorf("ParseSectionID(skills) = %s, %v", id, ok)
	}
	if _, ok := ParseSectionID("blog"); ok {
		t.Error("expected unknown section to be rejected")
	}
}
