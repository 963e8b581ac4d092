// Package delivery provides the contact submission backends: a simulated
// call, the SQLite inbox and SMTP mail.
package delivery

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/pranayvarade/livefolio/internal/config"
	"github.com/pranayvarade/livefolio/internal/inbox"
	"github.com/pranayvarade/livefolio/internal/interaction"
	"github.com/pranayvarade/livefolio/pkg/limits"
	"github.com/pranayvarade/livefolio/pkg/logging"
)

var (
	// ErrSimulatedFailure is returned by a Simulated backend set to fail.
	ErrSimulatedFailure = errors.New("simulated delivery failure")

	// ErrThrottled is returned when a sender has used up their submissions.
	ErrThrottled = errors.New("too many submissions from this sender")
)

// DefaultLatency is the simulated network delay.
const DefaultLatency = time.Second

// Simulated waits Latency and then succeeds, or fails when Fail is set.
type Simulated struct {
	Latency time.Duration
	Fail    bool
}

// Submit implements interaction.Backend.
func (s Simulated) Submit(ctx context.Context, form interaction.ContactForm) error {
	timer := time.NewTimer(s.Latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	if s.Fail {
		return ErrSimulatedFailure
	}
	return nil
}

// Inbox stores submissions in the SQLite inbox.
type Inbox struct {
	Store  *inbox.Store
	Logger logging.Logger
}

// Submit implements interaction.Backend.
func (b Inbox) Submit(ctx context.Context, form interaction.ContactForm) error {
	msg, err := b.Store.Save(ctx, form)
	if err != nil {
		return errors.Wrap(err, "inbox delivery")
	}
	if b.Logger != nil {
		b.Logger.Info("contact message stored", logging.String("id", msg.ID))
	}
	return nil
}

// Notifying records a submission through Record and then sends it through
// Notify. The submission succeeds once Record does. A failed notification
// is logged and not returned.
type Notifying struct {
	Record interaction.Backend
	Notify interaction.Backend
	Logger logging.Logger
}

// Submit implements interaction.Backend.
func (n Notifying) Submit(ctx context.Context, form interaction.ContactForm) error {
	if err := n.Record.Submit(ctx, form); err != nil {
		return err
	}
	if err := n.Notify.Submit(ctx, form); err != nil && n.Logger != nil {
		n.Logger.Warn("contact notification failed", logging.Err(err))
	}
	return nil
}

// Throttled limits how often one sender address may submit. Denied
// submissions fail without reaching Next.
type Throttled struct {
	Next    interaction.Backend
	Limiter *limits.Window
	Logger  logging.Logger
}

// NewThrottled allows count submissions per sender within window.
func NewThrottled(next interaction.Backend, count int, window time.Duration, logger logging.Logger) *Throttled {
	return &Throttled{
		Next:    next,
		Limiter: limits.NewWindow(count, window),
		Logger:  logger,
	}
}

// Submit implements interaction.Backend.
func (t *Throttled) Submit(ctx context.Context, form interaction.ContactForm) error {
	key := strings.ToLower(strings.TrimSpace(form.Email))
	if !t.Limiter.Allow(key) {
		if t.Logger != nil {
			t.Logger.Warn("contact submission throttled", logging.Int("limit", t.Limiter.Limit()))
		}
		return ErrThrottled
	}
	return t.Next.Submit(ctx, form)
}

// SMTPOf returns the mail backend inside b, looking through notifying and
// throttled wrappers, or nil.
func SMTPOf(b interaction.Backend) *SMTP {
	switch v := b.(type) {
	case *SMTP:
		return v
	case *Throttled:
		return SMTPOf(v.Next)
	case Notifying:
		if s := SMTPOf(v.Record); s != nil {
			return s
		}
		return SMTPOf(v.Notify)
	}
	return nil
}

// FromConfig builds the backend named by cfg.Backend, throttled per sender
// when cfg.RateLimit.Count is set. store is required for the inbox backends.
func FromConfig(cfg config.ContactConfig, store *inbox.Store, logger logging.Logger) (interaction.Backend, error) {
	if logger == nil {
		logger = logging.NopLogger{}
	}

	b, err := backendFromConfig(cfg, store, logger)
	if err != nil {
		return nil, err
	}
	if rl := cfg.RateLimit; rl.Count > 0 {
		return NewThrottled(b, rl.Count, rl.Window, logger), nil
	}
	return b, nil
}

func backendFromConfig(cfg config.ContactConfig, store *inbox.Store, logger logging.Logger) (interaction.Backend, error) {
	needStore := func() error {
		if store == nil {
			return errors.Errorf("contact backend %q needs an inbox store", cfg.Backend)
		}
		return nil
	}

	switch cfg.Backend {
	case config.BackendSimulated, "":
		return Simulated{Latency: cfg.Latency, Fail: cfg.SimulateFailure}, nil
	case config.BackendInbox:
		if err := needStore(); err != nil {
			return nil, err
		}
		return Inbox{Store: store, Logger: logger}, nil
	case config.BackendSMTP:
		return NewSMTP(cfg.SMTP, logger), nil
	case config.BackendInboxSMTP:
		if err := needStore(); err != nil {
			return nil, err
		}
		return Notifying{
			Record: Inbox{Store: store, Logger: logger},
			Notify: NewSMTP(cfg.SMTP, logger),
			Logger: logger,
		}, nil
	}
	return nil, errors.Errorf("unknown contact backend %q", cfg.Backend)
}
