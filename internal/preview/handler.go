package preview

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"sync"
	"time"

	"git.home.luguber.info/inful/guidebuilder/internal/build"
)

// buildStatus tracks the latest build for error display.
type buildStatus struct {
	mu           sync.RWMutex
	lastError    error
	lastReport   *build.Report
	hasGoodBuild bool
}

func (bs *buildStatus) setError(err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.lastError = err
}

func (bs *buildStatus) setSuccess(report *build.Report) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.lastError = nil
	bs.lastReport = report
	bs.hasGoodBuild = true
}

func (bs *buildStatus) get() (report *build.Report, hasGoodBuild bool, err error) {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.lastReport, bs.hasGoodBuild, bs.lastError
}

// healthResponse is the /healthz body.
type healthResponse struct {
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	BuildID   string    `json:"build_id,omitempty"`
	Pages     int       `json:"pages"`
	BuiltAt   time.Time `json:"built_at,omitzero"`
	HasOutput bool      `json:"has_output"`
}

// Handler serves the output directory with caching disabled, /healthz, and
// /metrics when a metrics handler is configured.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/", noCache(s.errorGate(http.FileServer(http.Dir(s.cfg.Output.Directory)))))
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	report, good, err := s.status.get()
	resp := healthResponse{Status: "ok", HasOutput: good}
	if report != nil {
		resp.BuildID = report.BuildID
		resp.Pages = report.Pages
		resp.BuiltAt = report.EndTime
	}
	code := http.StatusOK
	if err != nil {
		resp.Status = "error"
		resp.Error = err.Error()
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

// errorGate shows the build error instead of the site while the latest build is broken.
func (s *Server) errorGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, err := s.status.get()
		if err == nil {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = fmt.Fprintf(w, "<!doctype html><title>Build failed</title><h1>Build failed</h1><pre>%s</pre>\n",
			html.EscapeString(err.Error()))
	})
}

func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}
