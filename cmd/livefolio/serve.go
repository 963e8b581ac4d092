package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pranayvarade/livefolio/client"
	"github.com/pranayvarade/livefolio/internal/config"
	"github.com/pranayvarade/livefolio/internal/delivery"
	"github.com/pranayvarade/livefolio/internal/inbox"
	"github.com/pranayvarade/livefolio/internal/interaction"
	"github.com/pranayvarade/livefolio/internal/resume"
	"github.com/pranayvarade/livefolio/internal/site"
	"github.com/pranayvarade/livefolio/pkg/core"
	"github.com/pranayvarade/livefolio/pkg/health"
	"github.com/pranayvarade/livefolio/pkg/limits"
	"github.com/pranayvarade/livefolio/pkg/logging"
	"github.com/pranayvarade/livefolio/pkg/metrics"
	"github.com/pranayvarade/livefolio/pkg/retry"
	"github.com/pranayvarade/livefolio/pkg/router"
	"github.com/pranayvarade/livefolio/pkg/shutdown"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the portfolio",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// app is the wired HTTP surface plus the resources it owns.
type app struct {
	router *router.Router
	store  *inbox.Store
}

// Close releases the inbox, if one was opened.
func (a *app) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

func newApp(cfg *config.Config, logger logging.Logger) (*app, error) {
	r, err := resume.Load(cfg.Resume.Path)
	if err != nil {
		return nil, err
	}

	a := &app{}
	if cfg.Contact.UsesInbox() {
		a.store, err = inbox.Open(cfg.Contact.Database)
		if err != nil {
			return nil, err
		}
	}

	backend, err := delivery.FromConfig(cfg.Contact, a.store, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	rcfg := core.DefaultConfig()
	rcfg.Codec = cfg.Server.Codec
	rcfg.MaxConnections = cfg.Server.MaxConnections
	rcfg.Security.AllowedOrigins = cfg.Server.AllowedOrigins
	rcfg.Security.InsecureDevMode = cfg.Server.InsecureDev

	rt := router.New(router.WithConfig(rcfg), router.WithLogger(logger))
	rt.Use(router.RequestID())
	rt.Use(router.Logger(logger))
	rt.Use(router.Recovery(logger))
	if cfg.Server.MaxPerIP > 0 {
		rt.Use(limits.NewConnectionLimiter(cfg.Server.MaxPerIP).Middleware())
	}
	rt.Use(router.SecureHeaders())

	rt.Handle(site.StylesheetPath, site.StylesHandler())
	rt.Handle(site.ScriptPath, client.ScriptHandler())

	checker := health.NewChecker(version)
	checker.AddCriticalCheck("connections", health.CapacityCheck(rt.SocketManager().Count, rcfg.MaxConnections), time.Second)
	if a.store != nil {
		checker.AddCriticalCheck("inbox", a.store.Ping, 2*time.Second)
	}
	if mail := delivery.SMTPOf(backend); mail != nil {
		checker.AddCheck("smtp", health.StateCheck(mail.BreakerState, retry.CircuitClosed), time.Second)
	}
	rt.Handle("/healthz", checker.LivenessHandler())
	rt.Handle("/readyz", checker.ReadinessHandler())
	if cfg.Server.Metrics {
		rt.Handle("/metrics", metrics.Default.Handler())
	}

	rt.Live("/{$}", site.New(site.Options{
		Resume:  r,
		Backend: backend,
		Scroll: interaction.ScrollOptions{
			Threshold:   cfg.Interaction.ScrollThreshold,
			ProbeOffset: cfg.Interaction.ProbeOffset,
		},
		NoticeDuration: cfg.Contact.NoticeDuration,
		PersistTheme:   cfg.Theme.Persist,
		ThemeCookie:    cfg.Theme.Cookie,
	}), router.WithLayout(site.Layout(site.PageConfigFromResume(r))))

	a.router = rt
	return a, nil
}

// registerShutdown orders teardown: stop taking requests, close live
// sockets, stop the idle sweep, then close the inbox.
func registerShutdown(sd *shutdown.Handler, srv *http.Server, a *app, stop chan struct{}) {
	sd.Register("http", shutdown.PriorityHTTP, srv.Shutdown)
	sd.Register("live", shutdown.PrioritySockets, a.router.Shutdown)
	sd.Register("cleanup", shutdown.PrioritySockets+1, func(ctx context.Context) error {
		close(stop)
		return nil
	})
	sd.RegisterCloser("inbox", shutdown.PriorityStorage, a)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan struct{})
	a.router.StartCleanup(stop)

	sd := shutdown.NewHandler(&shutdown.Config{
		Timeout: 30 * time.Second,
		Signals: shutdown.DefaultConfig().Signals,
		OnHookComplete: func(name string, err error, d time.Duration) {
			if err != nil {
				logger.Warn("shutdown step failed", logging.String("step", name), logging.Err(err))
				return
			}
			logger.Debug("shutdown step done", logging.String("step", name), logging.Duration("took", d))
		},
	})
	registerShutdown(sd, srv, a, stop)

	// A listener failure cancels ctx so Wait runs the hooks as on a signal.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening",
			logging.String("addr", cfg.Server.Address),
			logging.String("contact_backend", cfg.Contact.Backend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			cancel()
		}
	}()

	waitErr := sd.Wait(ctx)
	select {
	case err := <-serveErr:
		return err
	default:
	}
	logger.Info("stopped")
	return waitErr
}
