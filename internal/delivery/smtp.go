package delivery

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/pranayvarade/livefolio/internal/config"
	"github.com/pranayvarade/livefolio/internal/interaction"
	"github.com/pranayvarade/livefolio/pkg/logging"
	"github.com/pranayvarade/livefolio/pkg/retry"
)

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTP mails each submission to a fixed address. Transient failures are
// retried with backoff, and a circuit breaker stops hammering a relay that
// keeps failing.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string

	Retry *retry.Config

	send    SendFunc
	breaker *retry.Breaker
	logger  logging.Logger
}

// NewSMTP creates an SMTP backend from configuration.
func NewSMTP(cfg config.SMTPConfig, logger logging.Logger) *SMTP {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	s := &SMTP{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
		To:       cfg.To,
		Retry:    retry.DefaultConfig(),
		send:     smtp.SendMail,
		logger:   logger,
	}
	s.breaker = retry.NewBreaker(&retry.BreakerConfig{
		MaxErrors:        5,
		ResetTimeout:     time.Minute,
		SuccessThreshold: 1,
		OnStateChange: func(from, to retry.CircuitState) {
			logger.Warn("smtp circuit changed",
				logging.String("from", from.String()),
				logging.String("to", to.String()))
		},
	})
	return s
}

// BreakerState reports the relay circuit state.
func (s *SMTP) BreakerState() retry.CircuitState {
	return s.breaker.State()
}

// Submit implements interaction.Backend.
func (s *SMTP) Submit(ctx context.Context, form interaction.ContactForm) error {
	addr := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	from := s.sender()
	msg := s.compose(form)

	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}

	cfg := *s.Retry
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		s.logger.Warn("smtp send failed, retrying",
			logging.Int("attempt", attempt),
			logging.Duration("delay", delay),
			logging.Err(err))
	}

	err := retry.Retry(ctx, &cfg, func(ctx context.Context) error {
		err := s.breaker.Do(func() error {
			return s.send(addr, auth, from, []string{s.To}, msg)
		})
		if errors.Is(err, retry.ErrCircuitOpen) {
			return retry.Permanent(err)
		}
		return err
	})
	if err != nil {
		return errors.Wrap(err, "smtp delivery")
	}
	return nil
}

func (s *SMTP) sender() string {
	if s.From != "" {
		return s.From
	}
	return s.Username
}

// compose builds the RFC 5322 message. Header values are stripped of line
// breaks so form input cannot add headers.
func (s *SMTP) compose(form interaction.ContactForm) []byte {
	subject := fmt.Sprintf("Portfolio Contact: %s", headerValue(form.Subject))

	var body strings.Builder
	body.WriteString("New contact form submission from your portfolio:\r\n\r\n")
	fmt.Fprintf(&body, "Name: %s\r\n", form.Name)
	fmt.Fprintf(&body, "Email: %s\r\n", form.Email)
	if form.Company != "" {
		fmt.Fprintf(&body, "Company: %s\r\n", form.Company)
	}
	fmt.Fprintf(&body, "Subject: %s\r\n", form.Subject)
	body.WriteString("Message:\r\n")
	body.WriteString(strings.ReplaceAll(strings.ReplaceAll(form.Message, "\r\n", "\n"), "\n", "\r\n"))
	body.WriteString("\r\n\r\n---\r\nSent from your portfolio contact form\r\n")

	msg := "To: " + s.To + "\r\n" +
		"From: " + s.sender() + "\r\n" +
		"Reply-To: " + headerValue(form.Email) + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" + body.String()
	return []byte(msg)
}

func headerValue(v string) string {
	return strings.Join(strings.Fields(v), " ")
}
