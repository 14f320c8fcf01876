package ui

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"drawlab/adapters/memory"
	"drawlab/adapters/rng"
	"drawlab/app"
	"drawlab/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	engine := config.DefaultEngineConfig()
	engine.K = 3
	engine.N = 5
	engine.TargetCount = 2
	engine.MaxAttempts = 500

	service := app.NewAnalysisService(rng.NewSeededAdapter(), memory.NewRunRepository(), zerolog.Nop())
	a, err := NewApp(Config{Port: "0", MaxUpload: 1 << 20, Engine: engine, Log: zerolog.Nop()}, service)
	require.NoError(t, err)
	return a
}

func upload(t *testing.T, a *App, name, content string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if name != "" {
		part, err := form.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, form.WriteField(k, v))
	}
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/analyze", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	return rec
}

func get(a *App, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

var runLink = regexp.MustCompile(`/runs/([0-9a-f-]{36})/candidates\.txt`)

func TestIndex(t *testing.T) {
	rec := get(newTestApp(t), "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="file"`)
	assert.Contains(t, rec.Body.String(), `name="k" value="3"`)
}

func TestAnalyzeAndRevisit(t *testing.T) {
	a := newTestApp(t)

	rec := upload(t, a, "history.txt", "1 2 3\n2 3 4\n1 1 1\n3 4 5\n", map[string]string{"seed": "11"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page := rec.Body.String()
	assert.Contains(t, page, "<h1")
	assert.Contains(t, page, "line 3: 1 1 1")
	assert.Contains(t, page, "Candidates")

	match := runLink.FindStringSubmatch(page)
	require.Len(t, match, 2)
	id := match[1]

	rec = get(a, "/runs/"+id)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "were not valid draws")

	rec = get(a, "/runs/"+id+"/candidates.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, strings.Split(strings.TrimSpace(rec.Body.String()), "\n"), 2)

	rec = get(a, "/runs/"+id+"/report.md")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "# Draw analysis"))

	rec = get(a, "/")
	assert.Contains(t, rec.Body.String(), "/runs/"+id)
}

func TestAnalyzeErrors(t *testing.T) {
	a := newTestApp(t)

	rec := upload(t, a, "", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "choose a file")

	rec = upload(t, a, "history.pdf", "%PDF", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = upload(t, a, "history.csv", "1,2,3\n", map[string]string{"k": "0"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = upload(t, a, "history.csv", "hello\n", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "EMPTY_INPUT")
}

func TestRunNotFound(t *testing.T) {
	a := newTestApp(t)
	assert.Equal(t, http.StatusBadRequest, get(a, "/runs/nope").Code)
	assert.Equal(t, http.StatusNotFound, get(a, "/runs/0190d9a4-0000-7000-8000-000000000000").Code)
}

func TestReportPageEscapesSourceName(t *testing.T) {
	a := newTestApp(t)

	rec := upload(t, a, "a`<svg onload=alert(2)>`.csv", "1,2,3\n2,3,4\n3,4,5\n", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "<svg onload")

	bundle, err := a.analysis.AnalyzeRows(context.Background(),
		[][]int{{1, 2, 3}, {2, 3, 4}, {3, 4, 5}}, "x`<img src=x onerror=alert(1)>`y", a.engine)
	require.NoError(t, err)

	rec = get(a, "/runs/"+bundle.RunID.String())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<img src=x")
	assert.Contains(t, rec.Body.String(), "&lt;img")
}

func TestAnalyzeBusy(t *testing.T) {
	engine := config.DefaultEngineConfig()
	engine.K, engine.N, engine.TargetCount, engine.MaxAttempts = 3, 5, 2, 500
	service := app.NewAnalysisService(rng.NewSeededAdapter(), memory.NewRunRepository(), zerolog.Nop())
	a, err := NewApp(Config{Port: "0", MaxUpload: 1 << 20, MaxConcurrent: 1, Engine: engine, Log: zerolog.Nop()}, service)
	require.NoError(t, err)

	require.True(t, a.limiter.TryAcquire(1))
	rec := upload(t, a, "history.csv", "1,2,3\n2,3,4\n3,4,5\n", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	a.limiter.Release(1)
	rec = upload(t, a, "history.csv", "1,2,3\n2,3,4\n3,4,5\n", nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}
