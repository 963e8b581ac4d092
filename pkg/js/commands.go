// Package js builds DOM commands that the browser runtime applies without
// evaluating code. Commands are plain JSON ops pushed on the "js" event.
package js

import (
	"net/url"
	"strings"
)

// Event is the push event that carries command batches.
const Event = "js"

// Command is one DOM operation.
type Command interface {
	// Op returns the JSON form of the command.
	Op() map[string]any
}

// Commands holds a sequence of commands applied in order.
type Commands []Command

// Payload returns the push payload for the batch.
func (cs Commands) Payload() map[string]any {
	ops := make([]map[string]any, 0, len(cs))
	for _, c := range cs {
		ops = append(ops, c.Op())
	}
	return map[string]any{"ops": ops}
}

// String lists the op names, for logs.
func (cs Commands) String() string {
	names := make([]string, 0, len(cs))
	for _, c := range cs {
		names = append(names, c.Op()["op"].(string))
	}
	return strings.Join(names, ";")
}

// Pusher sends an event to the browser.
type Pusher interface {
	Push(event string, payload map[string]any) error
}

// Exec pushes cmds as one batch. An empty batch is not sent.
func Exec(p Pusher, cmds ...Command) error {
	if len(cmds) == 0 {
		return nil
	}
	return p.Push(Event, Commands(cmds).Payload())
}

type op map[string]any

func (o op) Op() map[string]any { return o }

// JS is the namespace for commands.
var JS = jsNamespace{}

type jsNamespace struct{}

// AddClass adds space-separated classes to the elements matching selector.
func (jsNamespace) AddClass(selector, class string) Command {
	return op{"op": "add_class", "target": selector, "class": class}
}

// RemoveClass removes space-separated classes.
func (jsNamespace) RemoveClass(selector, class string) Command {
	return op{"op": "remove_class", "target": selector, "class": class}
}

// ToggleClass toggles classes.
func (jsNamespace) ToggleClass(selector, class string) Command {
	return op{"op": "toggle_class", "target": selector, "class": class}
}

// SetAttr sets an attribute.
func (jsNamespace) SetAttr(selector, attr, value string) Command {
	return op{"op": "set_attr", "target": selector, "attr": attr, "value": value}
}

// RemoveAttr removes an attribute.
func (jsNamespace) RemoveAttr(selector, attr string) Command {
	return op{"op": "remove_attr", "target": selector, "attr": attr}
}

// Focus focuses the first element matching selector.
func (jsNamespace) Focus(selector string) Command {
	return op{"op": "focus", "target": selector}
}

// ScrollIntoView scrolls the first element matching selector into view,
// smoothly and aligned to the top unless options say otherwise.
func (jsNamespace) ScrollIntoView(selector string, opts ...ScrollOption) Command {
	config := scrollConfig{behavior: "smooth", block: "start"}
	for _, opt := range opts {
		opt(&config)
	}
	return op{"op": "scroll_into_view", "target": selector, "behavior": config.behavior, "block": config.block}
}

// SetCookie writes a first-party cookie on path "/". maxAge is in seconds;
// zero makes it a session cookie and a negative value deletes it.
func (jsNamespace) SetCookie(name, value string, maxAge int) Command {
	o := op{
		"op":       "set_cookie",
		"name":     name,
		"value":    url.QueryEscape(value),
		"path":     "/",
		"samesite": "Lax",
	}
	if maxAge != 0 {
		o["max_age"] = maxAge
	}
	return o
}

// Dispatch dispatches a DOM CustomEvent on the target.
func (jsNamespace) Dispatch(selector, event string, detail map[string]any) Command {
	o := op{"op": "dispatch", "target": selector, "event": event}
	if detail != nil {
		o["detail"] = detail
	}
	return o
}

// ScrollOption configures ScrollIntoView.
type ScrollOption func(*scrollConfig)

type scrollConfig struct {
	behavior string
	block    string
}

// Instant disables smooth scrolling.
func Instant() ScrollOption {
	return func(c *scrollConfig) {
		c.behavior = "auto"
	}
}

// Block sets the vertical alignment: start, center, end or nearest.
func Block(block string) ScrollOption {
	return func(c *scrollConfig) {
		c.block = block
	}
}
