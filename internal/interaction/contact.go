package interaction

import (
	"context"
	"errors"
	"time"
)

// Contact submission errors.
var (
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
	ErrSubmissionClosed   = errors.New("contact submission is closed")
)

// DefaultNoticeDuration is how long a submission notification stays visible.
const DefaultNoticeDuration = 5 * time.Second

// Notification texts.
const (
	SuccessTitle       = "Message sent successfully!"
	SuccessDescription = "Thank you for reaching out. I'll get back to you within 24 hours."
	FailureTitle       = "Failed to send message"
	FailureDescription = "Please try again or contact me directly via email."
)

// SubmissionState is the state of a ContactSubmission.
type SubmissionState int

const (
	SubmissionIdle SubmissionState = iota
	SubmissionSubmitting
	SubmissionSucceeded
	SubmissionFailed
)

func (s SubmissionState) String() string {
	switch s {
	case SubmissionIdle:
		return "idle"
	case SubmissionSubmitting:
		return "submitting"
	case SubmissionSucceeded:
		return "succeeded"
	case SubmissionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Backend delivers a contact form. Submit may block; it runs off the owning
// view's event loop and should honor ctx cancellation.
type Backend interface {
	Submit(ctx context.Context, form ContactForm) error
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, form ContactForm) error

// Submit calls f.
func (f BackendFunc) Submit(ctx context.Context, form ContactForm) error {
	return f(ctx, form)
}

// NotificationKind is the visual treatment of a notification.
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
)

// Notification is a transient message shown to the user.
type Notification struct {
	Kind             NotificationKind
	Title            string
	Description      string
	AutoDismissAfter time.Duration
}

// Notifier shows notifications.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notification)

// Notify calls f.
func (f NotifierFunc) Notify(n Notification) {
	f(n)
}

// SubmissionResult is posted back to the owning loop when a backend call
// returns. Seq identifies the submission it belongs to.
type SubmissionResult struct {
	Seq uint64
	Err error
}

// SubmissionOptions configures a ContactSubmission.
type SubmissionOptions struct {
	NoticeDuration time.Duration
}

// ContactSubmission drives the contact form through
// Idle -> Submitting -> Succeeded | Failed.
//
// All methods must be called from the owning view's event loop. The backend
// runs in its own goroutine and reports back only through the post function,
// which must deliver the SubmissionResult to Resolve on that same loop.
type ContactSubmission struct {
	backend  Backend
	notifier Notifier
	post     func(msg any)
	opts     SubmissionOptions

	form    ContactForm
	state   SubmissionState
	seq     uint64
	lastErr error
	cancel  context.CancelFunc
	closed  bool
}

// NewContactSubmission creates a submission in the Idle state.
func NewContactSubmission(backend Backend, notifier Notifier, post func(msg any), opts SubmissionOptions) *ContactSubmission {
	if opts.NoticeDuration <= 0 {
		opts.NoticeDuration = DefaultNoticeDuration
	}
	return &ContactSubmission{
		backend:  backend,
		notifier: notifier,
		post:     post,
		opts:     opts,
	}
}

// State returns the current state.
func (c *ContactSubmission) State() SubmissionState {
	return c.state
}

// Form returns the current form values.
func (c *ContactSubmission) Form() ContactForm {
	return c.form
}

// SetField updates one form field and reports whether the field exists.
func (c *ContactSubmission) SetField(field, value string) bool {
	return c.form.Set(field, value)
}

// SetForm replaces all form values.
func (c *ContactSubmission) SetForm(form ContactForm) {
	c.form = form
}

// LastError returns the backend error of the most recent failed submission.
func (c *ContactSubmission) LastError() error {
	return c.lastErr
}

// Pending reports whether a backend call is outstanding.
func (c *ContactSubmission) Pending() bool {
	return c.state == SubmissionSubmitting
}

// Submit validates the form and starts a backend call. Validation failures
// return an error wrapping ErrInvalidForm and leave the state untouched.
// A second Submit while one is in flight returns ErrSubmissionInFlight.
func (c *ContactSubmission) Submit(ctx context.Context) error {
	if c.closed {
		return ErrSubmissionClosed
	}
	if c.state == SubmissionSubmitting {
		return ErrSubmissionInFlight
	}
	if err := c.form.Validate(); err != nil {
		return err
	}

	c.seq++
	seq := c.seq
	snapshot := c.form
	c.state = SubmissionSubmitting
	c.lastErr = nil

	callCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	backend := c.backend
	post := c.post
	go func() {
		var err error
		if backend == nil {
			err = errors.New("no submission backend configured")
		} else {
			err = backend.Submit(callCtx, snapshot)
		}
		post(SubmissionResult{Seq: seq, Err: err})
	}()

	return nil
}

// Resolve applies a backend result. Results for an earlier submission, results
// arriving after Close and results while nothing is in flight are dropped and
// Resolve reports false.
func (c *ContactSubmission) Resolve(res SubmissionResult) bool {
	if c.closed || c.state != SubmissionSubmitting || res.Seq != c.seq {
		return false
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	if res.Err != nil {
		c.state = SubmissionFailed
		c.lastErr = res.Err
		c.notify(NotifyError, FailureTitle, FailureDescription)
		return true
	}

	c.state = SubmissionSucceeded
	c.form = ContactForm{}
	c.notify(NotifySuccess, SuccessTitle, SuccessDescription)
	return true
}

// Close abandons any in-flight submission. A result arriving afterwards is
// ignored.
func (c *ContactSubmission) Close() {
	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *ContactSubmission) notify(kind NotificationKind, title, description string) {
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(Notification{
		Kind:             kind,
		Title:            title,
		Description:      description,
		AutoDismissAfter: c.opts.NoticeDuration,
	})
}
