// Package api serves the JSON API for analyses, run history and prediction
// verification.
package api

import (
	"bytes"
	stderrors "errors"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	feed "drawlab/adapters/api"
	"drawlab/adapters/excel"
	"drawlab/adapters/report"
	"drawlab/app"
	"drawlab/domain/core"
	"drawlab/domain/draw"
	"drawlab/domain/result"
	"drawlab/internal/config"
	"drawlab/internal/errors"
	"drawlab/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// defaultListLimit is used when a listing does not name a limit.
const defaultListLimit = 20

// formOverhead is the body allowance for multipart headers and override
// fields on top of the file size limit.
const formOverhead = 64 << 10

// AnalysisRequest is the body of POST /api/v1/analyses.
type AnalysisRequest struct {
	Draws  [][]int          `json:"draws"`
	Source string           `json:"source,omitempty"`
	Config config.Overrides `json:"config"`
}

// AnalysisResponse wraps a bundle with the ingestion report of uploads.
type AnalysisResponse struct {
	Bundle *result.Bundle `json:"bundle"`
	Ingest *draw.Ingested `json:"ingest,omitempty"`
}

// VerifyRequest is the body of POST /api/v1/verify. Predictions accept any
// shape ParsePredictions understands.
type VerifyRequest struct {
	Draws       [][]int          `json:"draws"`
	Config      config.Overrides `json:"config"`
	Predictions json.RawMessage  `json:"predictions"`
}

// Handler serves the API routes
type Handler struct {
	analysis  *app.AnalysisService
	engine    config.EngineConfig
	limiter   *semaphore.Weighted
	maxUpload int64
	logger    zerolog.Logger
}

// NewHandler creates a new API handler. At most maxConcurrent analyses run
// at once; further requests are answered 503.
func NewHandler(analysis *app.AnalysisService, engine config.EngineConfig, maxConcurrent, maxUpload int64, logger zerolog.Logger) *Handler {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Handler{
		analysis:  analysis,
		engine:    engine,
		limiter:   semaphore.NewWeighted(maxConcurrent),
		maxUpload: maxUpload,
		logger:    logging.Component(logger, "api"),
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/healthz", h.Health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/analyses", h.CreateAnalysis)
		v1.POST("/analyses/upload", h.UploadAnalysis)
		v1.GET("/analyses", h.ListAnalyses)
		v1.GET("/analyses/:id", h.GetAnalysis)
		v1.GET("/analyses/:id/candidates.txt", h.GetCandidates)
		v1.POST("/verify", h.Verify)
	}
}

// NewRouter builds a gin engine with recovery, request logging and the API
// routes.
func NewRouter(h *Handler, mode string) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(h.logger))
	h.RegisterRoutes(router)
	return router
}

// RequestLogger logs one line per request.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CreateAnalysis analyzes a series sent as JSON.
func (h *Handler) CreateAnalysis(c *gin.Context) {
	var req AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errors.InvalidInput(fmt.Sprintf("invalid request body: %v", err)))
		return
	}
	engine, err := h.engine.Apply(req.Config)
	if err != nil {
		h.fail(c, err)
		return
	}

	if !h.acquire(c) {
		return
	}
	defer h.limiter.Release(1)

	bundle, err := h.analysis.AnalyzeRows(c.Request.Context(), req.Draws, req.Source, engine)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, AnalysisResponse{Bundle: bundle})
}

// UploadAnalysis analyzes an uploaded xlsx, csv or txt file. Engine
// overrides come as form fields.
func (h *Handler) UploadAnalysis(c *gin.Context) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+formOverhead)
	}

	var overrides config.Overrides
	if err := c.ShouldBind(&overrides); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			h.fail(c, errors.PayloadTooLarge(fmt.Sprintf("upload exceeds %d bytes", h.maxUpload)))
			return
		}
		h.fail(c, errors.InvalidInput(fmt.Sprintf("invalid form: %v", err)))
		return
	}
	engine, err := h.engine.Apply(overrides)
	if err != nil {
		h.fail(c, err)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		h.fail(c, errors.InvalidInput("a file field is required"))
		return
	}
	if h.maxUpload > 0 && header.Size > h.maxUpload {
		h.fail(c, errors.PayloadTooLarge(fmt.Sprintf("file exceeds %d bytes", h.maxUpload)))
		return
	}
	file, err := header.Open()
	if err != nil {
		h.fail(c, errors.Wrap(err, "failed to open upload"))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		h.fail(c, errors.Wrap(err, "failed to read upload"))
		return
	}

	if !h.acquire(c) {
		return
	}
	defer h.limiter.Release(1)

	reader := excel.NewDrawReaderFromBytes(header.Filename, data, excel.DefaultReaderConfig(), h.logger)
	ingested, err := reader.ReadSeries(c.Request.Context(), engine.Rules())
	if err != nil {
		h.fail(c, err)
		return
	}
	bundle, err := h.analysis.Analyze(c.Request.Context(), app.AnalysisRequest{
		Series: ingested.Series,
		Source: header.Filename,
		Engine: engine,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, AnalysisResponse{Bundle: bundle, Ingest: ingested})
}

// ListAnalyses returns recent runs.
func (h *Handler) ListAnalyses(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.fail(c, errors.InvalidInput("limit must be an integer"))
			return
		}
		limit = parsed
	}
	runs, err := h.analysis.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// GetAnalysis returns a stored bundle.
func (h *Handler) GetAnalysis(c *gin.Context) {
	bundle, ok := h.loadRun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, bundle)
}

// GetCandidates downloads the candidates of a stored run as text.
func (h *Handler) GetCandidates(c *gin.Context) {
	bundle, ok := h.loadRun(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="candidates-%s.txt"`, bundle.RunID))
	c.Data(http.StatusOK, report.ContentType(report.FormatText), []byte(report.CandidatesText(bundle)))
}

// Verify checks externally produced predictions against a series.
func (h *Handler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errors.InvalidInput(fmt.Sprintf("invalid request body: %v", err)))
		return
	}
	engine, err := h.engine.Apply(req.Config)
	if err != nil {
		h.fail(c, err)
		return
	}
	if len(bytes.TrimSpace(req.Predictions)) == 0 {
		h.fail(c, errors.InvalidInput("predictions are required"))
		return
	}
	predictions, err := feed.ParsePredictions(req.Predictions)
	if err != nil {
		h.fail(c, err)
		return
	}
	series, err := draw.NewSeries(engine.Rules(), req.Draws)
	if err != nil {
		h.fail(c, errors.Wrap(err, "invalid series"))
		return
	}
	c.JSON(http.StatusOK, app.VerifyPredictions(series, predictions))
}

func (h *Handler) loadRun(c *gin.Context) (*result.Bundle, bool) {
	id, err := core.ParseRunID(c.Param("id"))
	if err != nil {
		h.fail(c, errors.InvalidInput("invalid run id"))
		return nil, false
	}
	bundle, err := h.analysis.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return bundle, true
}

func (h *Handler) acquire(c *gin.Context) bool {
	if !h.limiter.TryAcquire(1) {
		h.fail(c, errors.Unavailable("too many analyses in progress, retry shortly"))
		return false
	}
	return true
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}
