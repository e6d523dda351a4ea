package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/jetsetgo/shopfloor-kiosk/internal/cloud"
	"github.com/jetsetgo/shopfloor-kiosk/internal/config"
	"github.com/jetsetgo/shopfloor-kiosk/internal/forms"
	"github.com/jetsetgo/shopfloor-kiosk/internal/jobs"
)

// Server is the kiosk's local HTTP server
type Server struct {
	config    *config.Config
	session   *forms.Session
	refresher *cloud.Refresher
	hub       *Hub
	logBuf    *LogBuffer
	history   *SubmissionBuffer
	router    chi.Router
	upgrader  websocket.Upgrader
}

// NewServer creates a new HTTP server. refresher may be nil.
func NewServer(cfg *config.Config, session *forms.Session, refresher *cloud.Refresher, hub *Hub, logBuf *LogBuffer, history *SubmissionBuffer) *Server {
	s := &Server{
		config:    cfg,
		session:   session,
		refresher: refresher,
		hub:       hub,
		logBuf:    logBuf,
		history:   history,
		router:    chi.NewRouter(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The page is served from this process on localhost
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	r := s.router
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/api/status", s.handleStatus)

	// Work order scan and session lifecycle
	r.Post("/api/scan", s.handleScan)
	r.Post("/api/session/reset", s.handleReset)

	// Open-jobs list
	r.Get("/api/open-jobs", s.handleOpenJobs)
	r.Post("/api/open-jobs/refresh", s.handleRefresh)
	r.Post("/api/views/open-jobs", s.handleOpenJobsView)

	// Job actions
	r.Route("/api/jobs", func(r chi.Router) {
		r.Post("/start", s.handleStart)
		r.Post("/stop/select", s.handleSelectStop)
		r.Post("/stop", s.handleStop)
		r.Post("/pause", s.handlePause)
		r.Post("/continue", s.handleContinue)
		r.Post("/ot/start", s.handleStartOT)
		r.Post("/ot/stop", s.handleStopOT)
	})
	r.Get("/api/pause-reasons", s.handlePauseReasons)

	// Reports
	r.Post("/api/reports/daily", s.handleDailyReport)
	r.Post("/api/reports/qc", s.handleQCReport)

	// Activity
	r.Get("/api/logs", s.handleLogs)
	r.Get("/api/submissions", s.handleSubmissions)

	r.Get("/ws", s.handleWS)
	r.Get("/", s.handleUI)
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	return http.ListenAndServe(addr, s.router)
}

type keyRequest struct {
	Key jobs.JobKey `json:"key"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// writeOutcome answers an action. A dropped double submission is a conflict;
// everything else, alerts included, is for the page to show.
func writeOutcome(w http.ResponseWriter, out forms.Outcome) {
	status := http.StatusOK
	if out.Busy {
		status = http.StatusConflict
	}
	writeJSON(w, status, out)
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// handleStatus returns server status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":          "running",
		"kiosk":           s.config.Kiosk.Name,
		"scanned":         s.session.ScanContext() != nil,
		"open_jobs":       len(s.session.Store().Snapshot()),
		"open_jobs_shown": s.session.Store().Visible(),
		"pages":           s.hub.Clients(),
	}
	if s.refresher != nil {
		status["cloud"] = s.refresher.Status()
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var qr map[string]interface{}
	if !decodeBody(w, r, &qr) {
		return
	}
	if qr == nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.session.Scan(qr)
	s.logBuf.LogInfo("Scanned work order %v", qr["projectNo"])
	writeJSON(w, http.StatusOK, map[string]interface{}{"scan": qr})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.session.Reset()
	s.logBuf.LogInfo("Session reset")
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleOpenJobs(w http.ResponseWriter, r *http.Request) {
	list := s.session.Store().Snapshot()
	if list == nil {
		list = jobs.Cache{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": list})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.refresher == nil {
		http.Error(w, "refresh not configured", http.StatusServiceUnavailable)
		return
	}

	if err := s.refresher.Refresh(r.Context()); err != nil {
		code := http.StatusBadGateway
		if errors.Is(err, cloud.ErrNoScan) || errors.Is(err, cloud.ErrScanChanged) {
			code = http.StatusConflict
		}
		writeJSON(w, code, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"jobs":    s.session.Store().Snapshot(),
	})
}

func (s *Server) handleOpenJobsView(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Visible bool `json:"visible"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.session.Store().SetVisible(req.Visible)
	writeJSON(w, http.StatusOK, map[string]bool{"visible": req.Visible})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var form forms.StartForm
	if !decodeBody(w, r, &form) {
		return
	}
	writeOutcome(w, s.session.Start(r.Context(), form))
}

func (s *Server) handleSelectStop(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.session.SelectStop(req.Key))
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	var form forms.StopForm
	if !decodeBody(w, r, &form) {
		return
	}
	writeOutcome(w, s.session.Stop(r.Context(), form))
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	var form forms.PauseForm
	if !decodeBody(w, r, &form) {
		return
	}
	writeOutcome(w, s.session.Pause(r.Context(), form))
}

func (s *Server) handleContinue(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeOutcome(w, s.session.Continue(r.Context(), req.Key))
}

func (s *Server) handleStartOT(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeOutcome(w, s.session.StartOT(r.Context(), req.Key))
}

func (s *Server) handleStopOT(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeOutcome(w, s.session.StopOT(r.Context(), req.Key))
}

func (s *Server) handlePauseReasons(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reasons": s.session.PauseReasons(),
		"other":   s.config.Kiosk.OtherReasonLabel,
	})
}

func (s *Server) handleDailyReport(w http.ResponseWriter, r *http.Request) {
	var form forms.DailyReportForm
	if !decodeBody(w, r, &form) {
		return
	}
	writeOutcome(w, s.session.DailyReport(r.Context(), form))
}

func (s *Server) handleQCReport(w http.ResponseWriter, r *http.Request) {
	var form forms.QCReportForm
	if !decodeBody(w, r, &form) {
		return
	}
	writeOutcome(w, s.session.QCReport(r.Context(), form))
}

// handleLogs returns the activity log, e.g. /api/logs?level=warn,error
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	var levels []string
	if q := r.URL.Query().Get("level"); q != "" {
		levels = strings.Split(q, ",")
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"logs": s.logBuf.Entries(levels),
	})
}

func (s *Server) handleSubmissions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"submissions": s.history.Entries(),
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade kiosk page connection: %v", err)
		return
	}
	initial, visible := s.session.Store().Attach()
	s.hub.Serve(conn, initial, visible)
}

// handleUI serves the kiosk page
func (s *Server) handleUI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(webUI))
}
