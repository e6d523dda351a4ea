package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jetsetgo/shopfloor-kiosk/internal/cloud"
	"github.com/jetsetgo/shopfloor-kiosk/internal/config"
	"github.com/jetsetgo/shopfloor-kiosk/internal/endpoint"
	"github.com/jetsetgo/shopfloor-kiosk/internal/forms"
	"github.com/jetsetgo/shopfloor-kiosk/internal/jobs"
)

// fakeSheet stands in for the spreadsheet web app
type fakeSheet struct {
	mu       sync.Mutex
	payloads []map[string]interface{}
	openJobs string
	answer   string
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var p map[string]interface{}
	data, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(data, &p)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, p)
	if p["action"] == "GET_OPEN_JOBS" {
		w.Write([]byte(f.openJobs))
		return
	}
	if f.answer != "" {
		w.Write([]byte(f.answer))
		return
	}
	w.Write([]byte("OK"))
}

func (f *fakeSheet) actions() []interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]interface{}, 0, len(f.payloads))
	for _, p := range f.payloads {
		out = append(out, p["action"])
	}
	return out
}

type testKiosk struct {
	sheet   *fakeSheet
	session *forms.Session
	server  *httptest.Server
	logBuf  *LogBuffer
	hub     *Hub
}

func newTestKiosk(t *testing.T) *testKiosk {
	t.Helper()

	sheet := &fakeSheet{openJobs: `{"jobs":[{"processName":"Cut","processNo":"P0","stepNo":"1","machineNo":"M1","status":"OPEN"}]}`}
	sheetSrv := httptest.NewServer(sheet)
	t.Cleanup(sheetSrv.Close)

	cfg := config.Default()
	cfg.Endpoint.URL = sheetSrv.URL
	cfg.Refresh.Enabled = false

	hub := NewHub()
	store := jobs.NewStore(hub)
	client := endpoint.NewClient(cfg.Endpoint)
	session := forms.NewSession(store, client, cfg.Kiosk)
	history := NewSubmissionBuffer(10)
	session.OnSubmitted(func(sub forms.Submission) { history.Record(sub) })
	refresher := cloud.NewRefresher(&cfg.Refresh, client, session, store)

	logBuf := NewLogBuffer(20)
	srv := httptest.NewServer(NewServer(cfg, session, refresher, hub, logBuf, history).Handler())
	t.Cleanup(srv.Close)

	return &testKiosk{sheet: sheet, session: session, server: srv, logBuf: logBuf, hub: hub}
}

func (k *testKiosk) post(t *testing.T, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(k.server.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func (k *testKiosk) get(t *testing.T, path string) map[string]interface{} {
	t.Helper()
	resp, err := http.Get(k.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

var weldKey = map[string]interface{}{"processName": "Weld", "processNo": "P1", "stepNo": "1", "machineNo": "M3"}

func TestServer_JobLifecycle(t *testing.T) {
	k := newTestKiosk(t)

	code, out := k.post(t, "/api/scan", map[string]interface{}{"projectNo": "PR-1", "partName": "Frame"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "PR-1", out["scan"].(map[string]interface{})["projectNo"])

	code, out = k.post(t, "/api/jobs/start", map[string]interface{}{
		"processName": "Weld", "processNo": "P1", "stepNo": 1, "machineNo": "M3", "employeeCode": "E1",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "confirm-screen", out["screen"])

	list := k.get(t, "/api/open-jobs")["jobs"].([]interface{})
	require.Len(t, list, 1)
	job := list[0].(map[string]interface{})
	assert.Equal(t, "PR-1", job["projectNo"])
	assert.Equal(t, "1", job["stepNo"])

	_, out = k.post(t, "/api/jobs/pause", map[string]interface{}{"key": weldKey, "reason": "รอวัตถุดิบ"})
	assert.Equal(t, "confirm-screen", out["screen"])
	job = k.get(t, "/api/open-jobs")["jobs"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "PAUSE_MATERIAL", job["status"])

	_, out = k.post(t, "/api/jobs/continue", map[string]interface{}{"key": weldKey})
	assert.Equal(t, "info-screen", out["screen"])

	_, sel := k.post(t, "/api/jobs/stop/select", map[string]interface{}{"key": weldKey})
	assert.Equal(t, "stop-form", sel["screen"])
	assert.Equal(t, true, sel["quantitiesRequired"])

	_, out = k.post(t, "/api/jobs/stop", map[string]interface{}{"employeeCode": "E1", "fg": "5", "ng": "0", "rework": "0"})
	assert.Equal(t, "confirm-screen", out["screen"])
	assert.Empty(t, k.get(t, "/api/open-jobs")["jobs"])

	assert.Equal(t, []interface{}{nil, nil, "CONTINUE", nil}, k.sheet.actions())

	subs := k.get(t, "/api/submissions")["submissions"].([]interface{})
	require.Len(t, subs, 4)
	assert.Equal(t, "STOP", subs[0].(map[string]interface{})["action"])
	assert.Equal(t, "ok", subs[0].(map[string]interface{})["status"])
}

func TestServer_RemoteRejection(t *testing.T) {
	k := newTestKiosk(t)
	k.sheet.answer = "ERROR: ไม่พบโปรเจค"
	k.post(t, "/api/scan", map[string]interface{}{"projectNo": "PR-1"})

	code, out := k.post(t, "/api/reports/qc", map[string]interface{}{"employeeCode": "Q1", "fg": "1"})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "info-screen", out["screen"])
	assert.Equal(t, "ไม่พบโปรเจค", out["alert"])
	subs := k.get(t, "/api/submissions")["submissions"].([]interface{})
	require.Len(t, subs, 1)
	assert.Equal(t, "rejected", subs[0].(map[string]interface{})["status"])
}

func TestServer_Refresh(t *testing.T) {
	k := newTestKiosk(t)

	code, out := k.post(t, "/api/open-jobs/refresh", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, false, out["success"])

	k.post(t, "/api/scan", map[string]interface{}{"projectNo": "PR-1"})
	code, out = k.post(t, "/api/open-jobs/refresh", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, out["jobs"], 1)

	status := k.get(t, "/api/status")
	assert.Equal(t, true, status["scanned"])
	assert.Equal(t, float64(1), status["open_jobs"])
	assert.Equal(t, true, status["cloud"].(map[string]interface{})["connected"])

	k.post(t, "/api/session/reset", nil)
	assert.Empty(t, k.get(t, "/api/open-jobs")["jobs"])
	assert.Nil(t, k.session.ScanContext())
}

func TestServer_BadRequests(t *testing.T) {
	k := newTestKiosk(t)

	for _, path := range []string{"/api/jobs/start", "/api/jobs/pause", "/api/scan", "/api/views/open-jobs"} {
		resp, err := http.Post(k.server.URL+path, "application/json", strings.NewReader("{not json"))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
	}

	resp, err := http.Post(k.server.URL+"/api/scan", "application/json", strings.NewReader("null"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_PauseReasonsAndUI(t *testing.T) {
	k := newTestKiosk(t)

	out := k.get(t, "/api/pause-reasons")
	assert.Equal(t, "อื่นๆ โปรดระบุ", out["other"])
	assert.Len(t, out["reasons"], 5)

	resp, err := http.Get(k.server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "open-jobs-table")

	assert.Equal(t, "healthy", k.get(t, "/health")["status"])
}

func TestServer_Logs(t *testing.T) {
	k := newTestKiosk(t)
	k.logBuf.LogInfo("hello")
	k.logBuf.LogWarn("careful")

	all := k.get(t, "/api/logs")["logs"].([]interface{})
	assert.Len(t, all, 2)
	warn := k.get(t, "/api/logs?level=warn")["logs"].([]interface{})
	require.Len(t, warn, 1)
	assert.Equal(t, "careful", warn[0].(map[string]interface{})["message"])
}

func readRender(t *testing.T, conn *websocket.Conn) []interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg map[string]interface{}
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "open_jobs", msg["type"])
	return msg["jobs"].([]interface{})
}

func (k *testKiosk) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(k.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestServer_WebsocketRendersWhenVisible(t *testing.T) {
	k := newTestKiosk(t)
	k.post(t, "/api/scan", map[string]interface{}{"projectNo": "PR-1"})

	// Hidden view: the start is cached but not pushed
	k.post(t, "/api/jobs/start", map[string]interface{}{"processName": "Weld", "processNo": "P1", "stepNo": "1", "machineNo": "M3"})

	conn := k.dial(t)
	require.Eventually(t, func() bool { return k.hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	k.post(t, "/api/views/open-jobs", map[string]bool{"visible": true})
	list := readRender(t, conn)
	require.Len(t, list, 1, "first message is the deferred render, not a hidden snapshot")
	assert.Equal(t, "Weld", list[0].(map[string]interface{})["processName"])

	k.post(t, "/api/jobs/pause", map[string]interface{}{"key": weldKey, "reason": "พักเบรก"})
	list = readRender(t, conn)
	assert.Equal(t, "PAUSE_BREAK", list[0].(map[string]interface{})["status"])

	second := k.dial(t)
	list = readRender(t, second)
	require.Len(t, list, 1, "visible view gets the current list on connect")
}
