package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/inquiryos/inquiry-os/internal/clients/llm"
	"github.com/inquiryos/inquiry-os/internal/clients/search"
	"github.com/inquiryos/inquiry-os/internal/clients/webfetcher"
	"github.com/inquiryos/inquiry-os/internal/clock"
	httpH "github.com/inquiryos/inquiry-os/internal/http/handlers"
	httpMW "github.com/inquiryos/inquiry-os/internal/http/middleware"
	"github.com/inquiryos/inquiry-os/internal/orchestrator"
	"github.com/inquiryos/inquiry-os/internal/repos"
	"github.com/inquiryos/inquiry-os/internal/repos/testutil"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	log := testutil.NewLogger(t)
	store := repos.NewStore(db, log)
	c := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	orch := orchestrator.New(db, store, c, search.NewDuckDuckGoClient(), webfetcher.New(), llm.NewDummyClient("dummy-model"), log)

	r := gin.New()
	r.Use(httpMW.AttachRequestContext())
	runHandler := httpH.NewResearchRunHandler(orch)
	v1 := r.Group("/api/v1/research-runs")
	v1.POST("", runHandler.Create)
	v1.GET("", runHandler.List)
	v1.GET("/:id", runHandler.Get)
	v1.GET("/:id/detail", runHandler.Detail)
	v1.GET("/:id/state", runHandler.State)
	v1.POST("/:id/search-dummy", runHandler.SearchDummy)
	v1.POST("/:id/synthesize-dummy", runHandler.SynthesizeDummy)
	v1.POST("/:id/execute", runHandler.Execute)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreate_ReturnsCreatedWithRunBody(t *testing.T) {
	r := newTestRouter(t)
	rec := doJSON(t, r, http.MethodPost, "/api/v1/research-runs", map[string]string{"query": "benefits of hydration"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "benefits of hydration", body["query"])
	require.Equal(t, "pending", body["status"])
}

func TestCreate_MissingQueryReturnsValidationError(t *testing.T) {
	r := newTestRouter(t)
	rec := doJSON(t, r, http.MethodPost, "/api/v1/research-runs", map[string]string{"title": "no query here"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	errObj := body["error"].(map[string]any)
	require.Equal(t, "validation_error", errObj["code"])
}

func TestGet_UnknownRunReturnsNotFound(t *testing.T) {
	r := newTestRouter(t)
	rec := doJSON(t, r, http.MethodGet, "/api/v1/research-runs/"+uuid.New().String(), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGet_MalformedIDReturnsNotFound(t *testing.T) {
	r := newTestRouter(t)
	rec := doJSON(t, r, http.MethodGet, "/api/v1/research-runs/not-a-uuid", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExecute_DefaultsToDummyModeAndReturnsCompletedDetail(t *testing.T) {
	r := newTestRouter(t)
	createRec := doJSON(t, r, http.MethodPost, "/api/v1/research-runs", map[string]string{"query": "benefits of hydration"})
	require.Equal(t, http.StatusCreated, createRec.Code)
	var run map[string]any
	require.NoError(t, json.Unmarshal(createRec.Body.Bytes(), &run))
	id := run["id"].(string)

	execRec := doJSON(t, r, http.MethodPost, "/api/v1/research-runs/"+id+"/execute", map[string]string{})
	require.Equal(t, http.StatusOK, execRec.Code)

	var detail map[string]any
	require.NoError(t, json.Unmarshal(execRec.Body.Bytes(), &detail))
	runObj := detail["Run"].(map[string]any)
	require.Equal(t, "completed", runObj["status"])
}

func TestSearchDummy_CalledTwiceReturnsConflict(t *testing.T) {
	r := newTestRouter(t)
	createRec := doJSON(t, r, http.MethodPost, "/api/v1/research-runs", map[string]string{"query": "benefits of hydration"})
	var run map[string]any
	require.NoError(t, json.Unmarshal(createRec.Body.Bytes(), &run))
	id := run["id"].(string)

	first := doJSON(t, r, http.MethodPost, "/api/v1/research-runs/"+id+"/search-dummy", map[string]string{})
	require.Equal(t, http.StatusOK, first.Code)

	second := doJSON(t, r, http.MethodPost, "/api/v1/research-runs/"+id+"/search-dummy", map[string]string{})
	require.Equal(t, http.StatusConflict, second.Code)
}

func TestList_ReturnsCreatedRuns(t *testing.T) {
	r := newTestRouter(t)
	doJSON(t, r, http.MethodPost, "/api/v1/research-runs", map[string]string{"query": "q1"})
	doJSON(t, r, http.MethodPost, "/api/v1/research-runs", map[string]string{"query": "q2"})

	rec := doJSON(t, r, http.MethodGet, "/api/v1/research-runs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var runs []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 2)
}
