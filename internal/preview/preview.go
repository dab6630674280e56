// Package preview serves the generated site locally and rebuilds it when
// page records change.
package preview

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"git.home.luguber.info/inful/guidebuilder/internal/build"
	"git.home.luguber.info/inful/guidebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/guidebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/guidebuilder/internal/logfields"
)

const shutdownTimeout = 5 * time.Second

// Options configures a preview Server.
type Options struct {
	Config *config.Config
	// BuildOptions are passed to every build, e.g. recorder and ledger.
	BuildOptions []build.Option
	// Metrics is served at /metrics when set.
	Metrics http.Handler
}

// Server builds the site, serves the output directory and rebuilds on change.
type Server struct {
	cfg       *config.Config
	buildOpts []build.Option
	metrics   http.Handler
	status    *buildStatus
	listen    func(network, address string) (net.Listener, error)

	mu    sync.Mutex
	addr  string
	ready chan struct{}
}

// New validates the configuration and creates a Server.
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, ferrors.ConfigError("config required").Build()
	}
	return &Server{
		cfg:       opts.Config,
		buildOpts: opts.BuildOptions,
		metrics:   opts.Metrics,
		status:    &buildStatus{},
		listen:    net.Listen,
		ready:     make(chan struct{}),
	}, nil
}

// Ready is closed once the HTTP listener is bound.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Addr returns the bound listen address. Valid after Ready.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Run performs the initial build, then serves and watches until ctx is done.
// A failing build is reported on the site and at /healthz; it does not stop the server.
func (s *Server) Run(ctx context.Context) error {
	pagesDir, err := resolvePagesDir(s.cfg.Content.PagesDir)
	if err != nil {
		return err
	}

	watcher, err := setupFileWatcher(pagesDir)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to watch pages directory").
			WithContext("path", pagesDir).
			Build()
	}
	defer func() { _ = watcher.Close() }()

	s.rebuild(ctx, "initial")

	ln, err := s.listen("tcp", net.JoinHostPort(s.cfg.Serve.Host, strconv.Itoa(s.cfg.Serve.Port)))
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to listen").
			Fatal().
			WithContext("host", s.cfg.Serve.Host).
			WithContext("port", s.cfg.Serve.Port).
			Build()
	}
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.mu.Unlock()
	close(s.ready)
	slog.Info("Preview server listening", slog.String("url", "http://"+s.Addr()), logfields.Path(s.cfg.Output.Directory))

	deb := newDebouncer(s.cfg.Serve.DebounceDuration())
	defer deb.Stop()

	// The worker also stops when the loop exits on a serve or watcher failure.
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.rebuildWorker(workerCtx, deb.C)
	}()

	var sched *scheduler
	if interval := s.cfg.Serve.RebuildIntervalDuration(); interval > 0 {
		if sched, err = startScheduler(interval, deb.Trigger); err != nil {
			slog.Warn("Periodic rebuild disabled", logfields.Error(err))
		}
	}

	var runErr error
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case err := <-serveErr:
			runErr = ferrors.WrapError(err, ferrors.CategoryNetwork, "preview server failed").Build()
			break loop
		case ev, ok := <-watcher.Events:
			if !ok {
				break loop
			}
			handleFileEvent(watcher, ev, deb.Trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				break loop
			}
			slog.Warn("watcher error", logfields.Error(err))
		}
	}

	slog.Info("Shutting down preview server...")
	if err := sched.Stop(); err != nil {
		slog.Warn("Scheduler shutdown error", logfields.Error(err))
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP server shutdown error", logfields.Error(err))
	}
	deb.Stop()
	stopWorker()
	wg.Wait()
	return runErr
}

// rebuildWorker runs one build per signal. Builds never overlap.
func (s *Server) rebuildWorker(ctx context.Context, signals <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-signals:
			s.rebuild(ctx, "change")
		}
	}
}

func (s *Server) rebuild(ctx context.Context, reason string) {
	report, err := build.Run(ctx, s.cfg, s.buildOpts...)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Warn("Rebuild failed", slog.String("reason", reason), logfields.Error(err))
		s.status.setError(err)
		return
	}
	s.status.setSuccess(report)
	slog.Info("Site rebuilt",
		slog.String("reason", reason),
		logfields.BuildID(report.BuildID),
		logfields.Count(report.Pages))
}

func resolvePagesDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryConfig, "failed to resolve pages directory").
			WithContext("path", dir).
			Build()
	}
	if st, statErr := os.Stat(abs); statErr != nil || !st.IsDir() {
		return "", ferrors.ConfigError("pages directory not found or not a directory").
			WithContext("path", abs).
			Build()
	}
	return abs, nil
}
