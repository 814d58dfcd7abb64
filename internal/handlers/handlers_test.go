package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noctiluca/rendermanager/internal/coordinator"
)

func newTestAPI(t *testing.T) (*API, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	state := coordinator.New(
		func(outputPath string) string { return outputPath },
		func(dir string) int { return 0 },
		nil,
	)
	listFrames := func(dir string) []string { return []string{} }

	api := NewAPI(state, listFrames, "http://127.0.0.1:8000/dashboard")
	r := gin.New()
	api.RegisterRoutes(r)
	api.RegisterHeartbeat(r)
	return api, r
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHeartbeatRoundTripSyncsManagerState(t *testing.T) {
	_, r := newTestAPI(t)

	w := doJSON(r, http.MethodPost, "/heartbeat", map[string]string{
		"name":   "W1",
		"status": "ready",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, "free", resp["manager_state"])
}

func TestHeartbeatRejectsInvalidStatus(t *testing.T) {
	_, r := newTestAPI(t)

	w := doJSON(r, http.MethodPost, "/heartbeat", map[string]string{
		"name":   "W1",
		"status": "napping",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetJobAlwaysEnqueues(t *testing.T) {
	_, r := newTestAPI(t)

	w := doJSON(r, http.MethodPost, "/set_job", map[string]interface{}{
		"blend_file": "/scenes/a.blend",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["queued"])
	assert.Equal(t, float64(1), resp["position"])

	w2 := doJSON(r, http.MethodGet, "/queue", nil)
	var queueResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &queueResp))
	assert.Equal(t, float64(1), queueResp["size"])
}

func TestJobReportsNoActiveJobWhenFree(t *testing.T) {
	_, r := newTestAPI(t)

	w := doJSON(r, http.MethodGet, "/job", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp["blend_file"])
}

func TestJobReportsActiveJobOnceWorking(t *testing.T) {
	api, r := newTestAPI(t)

	api.state.Heartbeat(coordinator.HeartbeatInput{Name: "W1", Status: coordinator.WorkerReady}, time.Now())
	api.state.SubmitJob(coordinator.JobDescriptor{BlendFile: "/a.blend", TotalFrames: 3})
	api.state.Tick(time.Now())

	w := doJSON(r, http.MethodGet, "/job", nil)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "/a.blend", resp["blend_file"])
}

func TestStatusJSONByDefault(t *testing.T) {
	_, r := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

func TestStatusHTMLWhenAccepted(t *testing.T) {
	_, r := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestHistoryLogsAlertsQueueEmptyOnFreshState(t *testing.T) {
	_, r := newTestAPI(t)

	for _, path := range []string{"/history", "/logs", "/alerts", "/queue"} {
		w := doJSON(r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestReportErrorRequiresWorkerAndError(t *testing.T) {
	_, r := newTestAPI(t)

	w := doJSON(r, http.MethodPost, "/report_error", map[string]string{"worker": "W1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w2 := doJSON(r, http.MethodPost, "/report_error", map[string]string{"worker": "W1", "error": "crashed"})
	assert.Equal(t, http.StatusOK, w2.Code)
}

func TestWorkerConfigServesBundledXML(t *testing.T) {
	_, r := newTestAPI(t)

	w := doJSON(r, http.MethodGet, "/worker_config", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["manager_ip"])
}
