// Package server exposes the provenance engine over HTTP. Runs are started
// asynchronously: POST /api/analyze returns a run id immediately and the
// analysis proceeds on a background goroutine, with progress queryable via
// GET /api/status. Finished runs are persisted through internal/store and
// recorded in the internal/history ledger when one is configured.
package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Nita121388/Merge-Annotator/internal/analysis"
	"github.com/Nita121388/Merge-Annotator/internal/history"
	"github.com/Nita121388/Merge-Annotator/internal/store"
)

// Run lifecycle states.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// runState tracks one analysis run. All fields behind Server.mu.
type runState struct {
	ID        string
	Status    string
	Error     string
	Roots     analysis.Roots
	StartedAt time.Time
	Progress  analysis.Progress
	Result    *analysis.Result
	summary   *SummaryResponse // rollup cache, invalidated on annotation
}

// Server holds the shared state of the HTTP service.
type Server struct {
	cfg    analysis.Config
	tools  analysis.Tools
	store  *store.Store
	ledger *history.Ledger // nil when history storage is unavailable
	log    *slog.Logger

	mu      sync.Mutex
	runs    map[string]*runState
	current string // most recently started run
}

// New wires a server. ledger may be nil; history endpoints then report
// unavailability instead of failing.
func New(cfg analysis.Config, tools analysis.Tools, st *store.Store, ledger *history.Ledger, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		cfg:    cfg,
		tools:  tools,
		store:  st,
		ledger: ledger,
		log:    log,
		runs:   make(map[string]*runState),
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	api := r.Group("/api")
	api.GET("/health", s.handleHealth)
	api.POST("/analyze", s.handleAnalyze)
	api.GET("/status", s.handleStatus)
	api.GET("/files", s.handleFiles)
	api.GET("/file", s.handleFile)
	api.GET("/summary", s.handleSummary)
	api.GET("/history", s.handleHistory)
	api.POST("/ai/annotate", s.handleAnnotate)
	api.POST("/ai/explain", s.handleExplain)
	return r
}

// startRun registers a new run and launches the analysis goroutine.
func (s *Server) startRun(cfg analysis.Config, roots analysis.Roots) string {
	id := uuid.NewString()
	state := &runState{
		ID:        id,
		Status:    StatusRunning,
		Roots:     roots,
		StartedAt: time.Now(),
	}
	s.mu.Lock()
	s.runs[id] = state
	s.current = id
	s.mu.Unlock()

	if s.ledger != nil {
		if err := s.ledger.Start(context.Background(), id, roots); err != nil {
			s.log.Warn("history_start_failed", "id", id, "error", err)
		}
	}

	go s.runAnalysis(id, cfg, roots)
	return id
}

func (s *Server) runAnalysis(id string, cfg analysis.Config, roots analysis.Roots) {
	log := s.log.With("analysis_id", id)
	onProgress := func(p analysis.Progress) {
		s.mu.Lock()
		if state, ok := s.runs[id]; ok {
			state.Progress = p
		}
		s.mu.Unlock()
	}

	result, err := analysis.AnalyzeProject(context.Background(), cfg, s.tools, roots, onProgress, log)

	// Persist and ledger first so a client that observes the terminal
	// status never races a half-recorded run.
	if err != nil {
		log.Error("analysis_failed", "error", err)
		if s.ledger != nil {
			if lerr := s.ledger.Fail(context.Background(), id, err.Error()); lerr != nil {
				log.Warn("history_fail_failed", "error", lerr)
			}
		}
		s.mu.Lock()
		state := s.runs[id]
		state.Status = StatusFailed
		state.Error = err.Error()
		s.mu.Unlock()
		return
	}

	s.persist(id, roots, result, log)
	if s.ledger != nil {
		if lerr := s.ledger.Finish(context.Background(), id, len(result.Files)); lerr != nil {
			log.Warn("history_finish_failed", "error", lerr)
		}
	}
	s.mu.Lock()
	state := s.runs[id]
	state.Status = StatusCompleted
	state.Result = result
	s.mu.Unlock()
	log.Info("analysis_persisted", "files", len(result.Files))
}

func (s *Server) persist(id string, roots analysis.Roots, result *analysis.Result, log *slog.Logger) {
	if s.store == nil {
		return
	}
	rec := &store.Record{
		ID:        id,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Status:    StatusCompleted,
		Roots:     roots,
		Result:    result,
	}
	if err := s.store.Save(rec); err != nil {
		log.Warn("store_save_failed", "error", err)
	}
}

// lookupRun resolves a run by id, defaulting to the most recent one. The
// second return is false when no run matches.
func (s *Server) lookupRun(id string) (*runState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		id = s.current
	}
	state, ok := s.runs[id]
	return state, ok
}

// runConfig merges per-request overrides into the server's base config.
func (s *Server) runConfig(req AnalyzeRequest) analysis.Config {
	cfg := s.cfg
	if len(req.Extensions) > 0 {
		cfg.Extensions = req.Extensions
	}
	if req.OnlyChanged != nil {
		cfg.OnlyChanged = *req.OnlyChanged
	}
	if req.FileScope != "" {
		cfg.FileScope = analysis.FileScope(req.FileScope)
	}
	if req.Workers > 0 {
		cfg.Workers = req.Workers
	}
	if req.DisableBlame != nil {
		cfg.DisableBlame = *req.DisableBlame
	}
	if req.DisableTools != nil {
		cfg.DisableTools = *req.DisableTools
	}
	return cfg
}
