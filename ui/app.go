// Package ui serves the browser front end: upload a draw history, read the
// analysis report and download the candidates.
package ui

import (
	"bytes"
	"context"
	"embed"
	stderrors "errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"drawlab/adapters/excel"
	"drawlab/adapters/report"
	"drawlab/app"
	"drawlab/domain/core"
	"drawlab/domain/draw"
	"drawlab/domain/result"
	"drawlab/internal/config"
	"drawlab/internal/errors"
	"drawlab/internal/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

//go:embed templates/*.html
var embeddedFiles embed.FS

// recentRuns is how many runs the index page lists.
const recentRuns = 10

// App represents the UI application
type App struct {
	router    *chi.Mux
	server    *http.Server
	analysis  *app.AnalysisService
	engine    config.EngineConfig
	templates *template.Template
	maxUpload int64
	limiter   *semaphore.Weighted // nil means unbounded
	log       zerolog.Logger
}

// Config holds UI application configuration
type Config struct {
	Port          string
	MaxUpload     int64
	MaxConcurrent int64 // simultaneous analyses; zero is unbounded
	Engine        config.EngineConfig
	Log           zerolog.Logger
}

// NewApp creates a new UI application
func NewApp(cfg Config, analysis *app.AnalysisService) (*App, error) {
	funcMap := template.FuncMap{
		"add":     func(a, b int) int { return a + b },
		"percent": func(p result.Pattern) int { return p.Percent() },
		"join": func(values []int) string {
			parts := make([]string, len(values))
			for i, v := range values {
				parts[i] = strconv.Itoa(v)
			}
			return strings.Join(parts, " ")
		},
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	a := &App{
		router:    chi.NewRouter(),
		analysis:  analysis,
		engine:    cfg.Engine,
		templates: templates,
		maxUpload: cfg.MaxUpload,
		log:       logging.Component(cfg.Log, "ui"),
	}
	if cfg.MaxConcurrent > 0 {
		a.limiter = semaphore.NewWeighted(cfg.MaxConcurrent)
	}

	a.setupMiddleware()
	a.setupRoutes()

	a.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return a, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.RealIP)
	a.router.Use(a.loggingMiddleware)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Post("/analyze", a.handleAnalyze)
	a.router.Route("/runs/{id}", func(r chi.Router) {
		r.Get("/", a.handleRun)
		r.Get("/candidates.txt", a.handleCandidates)
		r.Get("/report.md", a.handleMarkdown)
	})
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.router
}

// Start starts the HTTP server
func (a *App) Start() error {
	a.log.Info().Str("addr", a.server.Addr).Msg("starting UI server")
	return a.server.ListenAndServe()
}

// Shutdown stops the server, waiting for in-flight requests.
func (a *App) Shutdown(ctx context.Context) error {
	a.log.Info().Msg("shutting down UI server")
	return a.server.Shutdown(ctx)
}

type indexPage struct {
	Engine config.EngineConfig
	Runs   []result.RunSummary
	Error  string
}

type runPage struct {
	Bundle *result.Bundle
	Ingest *draw.Ingested
	Report template.HTML
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	runs, err := a.analysis.ListRecent(r.Context(), recentRuns)
	if err != nil {
		a.log.Warn().Err(err).Msg("failed to list runs")
		runs = nil
	}
	a.renderTemplate(w, http.StatusOK, "index.html", indexPage{Engine: a.engine, Runs: runs})
}

func (a *App) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if a.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, a.maxUpload+1<<20)
	}
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			a.renderError(w, r, errors.PayloadTooLarge(fmt.Sprintf("the upload exceeds %d bytes", a.maxUpload)))
			return
		}
		a.renderError(w, r, errors.InvalidInput(fmt.Sprintf("could not read the upload: %v", err)))
		return
	}

	engine, err := a.engine.Apply(formOverrides(r))
	if err != nil {
		a.renderError(w, r, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		a.renderError(w, r, errors.InvalidInput("choose a file to analyze"))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		a.renderError(w, r, errors.Wrap(err, "failed to read upload"))
		return
	}

	reader := excel.NewDrawReaderFromBytes(header.Filename, data, excel.DefaultReaderConfig(), a.log)
	ingested, err := reader.ReadSeries(r.Context(), engine.Rules())
	if err != nil {
		a.renderError(w, r, err)
		return
	}
	if a.limiter != nil {
		if !a.limiter.TryAcquire(1) {
			a.renderError(w, r, errors.Unavailable("the server is busy with other analyses, try again shortly"))
			return
		}
		defer a.limiter.Release(1)
	}
	bundle, err := a.analysis.Analyze(r.Context(), app.AnalysisRequest{
		Series: ingested.Series,
		Source: header.Filename,
		Engine: engine,
	})
	if err != nil {
		a.renderError(w, r, err)
		return
	}

	a.renderTemplate(w, http.StatusOK, "run.html", runPage{
		Bundle: bundle,
		Ingest: ingested,
		Report: template.HTML(report.HTML(bundle)),
	})
}

func (a *App) handleRun(w http.ResponseWriter, r *http.Request) {
	bundle, ok := a.loadRun(w, r)
	if !ok {
		return
	}
	a.renderTemplate(w, http.StatusOK, "run.html", runPage{
		Bundle: bundle,
		Report: template.HTML(report.HTML(bundle)),
	})
}

func (a *App) handleCandidates(w http.ResponseWriter, r *http.Request) {
	bundle, ok := a.loadRun(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", report.ContentType(report.FormatText))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="candidates-%s.txt"`, bundle.RunID))
	_, _ = io.WriteString(w, report.CandidatesText(bundle))
}

func (a *App) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	bundle, ok := a.loadRun(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", report.ContentType(report.FormatMarkdown))
	_, _ = io.WriteString(w, report.Markdown(bundle))
}

func (a *App) loadRun(w http.ResponseWriter, r *http.Request) (*result.Bundle, bool) {
	id, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		a.renderError(w, r, errors.InvalidInput("invalid run id"))
		return nil, false
	}
	bundle, err := a.analysis.Get(r.Context(), id)
	if err != nil {
		a.renderError(w, r, err)
		return nil, false
	}
	return bundle, true
}

// formOverrides reads optional engine fields from the form. Blank or
// unparsable fields are left unset; Apply validates the result.
func formOverrides(r *http.Request) config.Overrides {
	var o config.Overrides
	o.K = formInt(r, "k")
	o.N = formInt(r, "n")
	o.TargetCount = formInt(r, "target_count")
	o.BlockSize = formInt(r, "block_size")
	o.MaxAttempts = formInt(r, "max_attempts")
	o.SumTolerance = formFloat(r, "sum_tolerance")
	o.ParityTolerance = formFloat(r, "parity_tolerance")
	o.BiasStrength = formFloat(r, "bias_strength")
	o.ZThreshold = formFloat(r, "z_threshold")
	if v := strings.TrimSpace(r.FormValue("seed")); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			o.Seed = &seed
		}
	}
	return o
}

func formInt(r *http.Request, key string) *int {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

func formFloat(r *http.Request, key string) *float64 {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

// renderTemplate renders to a buffer first so template errors never leave a
// half-written page.
func (a *App) renderTemplate(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, name, data); err != nil {
		a.log.Error().Err(err).Str("template", name).Msg("template error")
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (a *App) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		a.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	a.renderTemplate(w, status, "error.html", map[string]interface{}{
		"Status":  status,
		"Code":    errors.GetCode(err),
		"Message": err.Error(),
	})
}

func (a *App) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		a.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
