package site

import (
	"time"

	"github.com/pranayvarade/livefolio/internal/interaction"
	"github.com/pranayvarade/livefolio/internal/site/components"
)

// dismissToast is posted back to the view when a toast's display time is up.
type dismissToast struct {
	ID int
}

// toaster is the interaction.Notifier of a page. It keeps the visible
// notifications and schedules their removal by posting dismissToast to the
// owning loop; the timers never touch the list themselves.
type toaster struct {
	post   func(msg any)
	items  []components.Toast
	timers map[int]*time.Timer
	nextID int
	closed bool
}

func newToaster(post func(msg any)) *toaster {
	return &toaster{
		post:   post,
		timers: make(map[int]*time.Timer),
	}
}

// Notify shows n and, when it auto-dismisses, starts its timer.
func (t *toaster) Notify(n interaction.Notification) {
	if t.closed {
		return
	}
	t.nextID++
	id := t.nextID

	t.items = append(t.items, components.Toast{
		ID:          id,
		Kind:        n.Kind,
		Title:       n.Title,
		Description: n.Description,
	})

	if n.AutoDismissAfter > 0 && t.post != nil {
		post := t.post
		t.timers[id] = time.AfterFunc(n.AutoDismissAfter, func() {
			post(dismissToast{ID: id})
		})
	}
}

// Dismiss removes a toast and reports whether it was visible.
func (t *toaster) Dismiss(id int) bool {
	if timer, ok := t.timers[id]; ok {
		timer.Stop()
		delete(t.timers, id)
	}
	for i, item := range t.items {
		if item.ID == id {
			t.items = append(t.items[:i:i], t.items[i+1:]...)
			return true
		}
	}
	return false
}

// Visible returns the toasts in the order they were shown.
func (t *toaster) Visible() []components.Toast {
	return t.items
}

// Close stops every pending timer. Later notifications are dropped.
func (t *toaster) Close() {
	t.closed = true
	for id, timer := range t.timers {
		timer.Stop()
		delete(t.timers, id)
	}
}
