package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Nita121388/Merge-Annotator/internal/analysis"
	"github.com/Nita121388/Merge-Annotator/internal/scan"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleAnalyze handles POST /api/analyze: validate the roots, register a
// run and return its id without waiting for completion.
func (s *Server) handleAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "INVALID_REQUEST"})
		return
	}
	roots := analysis.Roots{
		Branch: req.BranchDir,
		Trunk:  req.TrunkDir,
		Merge:  req.MergeDir,
		Base:   req.BaseDir,
	}
	for name, dir := range map[string]string{
		"branch_dir": roots.Branch,
		"trunk_dir":  roots.Trunk,
		"merge_dir":  roots.Merge,
	} {
		if !scan.IsDir(dir) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: name + " is not a readable directory: " + dir,
				Code:  "INVALID_ROOT",
			})
			return
		}
	}
	if roots.Base != "" && !scan.IsDir(roots.Base) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "base_dir is not a readable directory: " + roots.Base,
			Code:  "INVALID_ROOT",
		})
		return
	}

	id := s.startRun(s.runConfig(req), roots)
	s.log.Info("analysis_accepted", "analysis_id", id, "merge", roots.Merge)
	c.JSON(http.StatusOK, AnalyzeResponse{AnalysisID: id, Status: StatusRunning})
}

func (s *Server) handleStatus(c *gin.Context) {
	state, ok := s.lookupRun(c.Query("id"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no such analysis", Code: "NOT_FOUND"})
		return
	}
	s.mu.Lock()
	resp := StatusResponse{
		AnalysisID: state.ID,
		Status:     state.Status,
		Error:      state.Error,
		Roots:      state.Roots,
		Progress:   state.Progress,
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, resp)
}

// completedRun fetches a run that has a result, writing the appropriate
// error response otherwise.
func (s *Server) completedRun(c *gin.Context) (*runState, bool) {
	state, ok := s.lookupRun(c.Query("id"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no such analysis", Code: "NOT_FOUND"})
		return nil, false
	}
	s.mu.Lock()
	status := state.Status
	result := state.Result
	s.mu.Unlock()
	switch {
	case status == StatusRunning:
		c.JSON(http.StatusConflict, ErrorResponse{Error: "analysis still running", Code: "STILL_RUNNING"})
		return nil, false
	case status == StatusFailed || result == nil:
		c.JSON(http.StatusConflict, ErrorResponse{Error: "analysis failed", Code: "FAILED"})
		return nil, false
	}
	return state, true
}

func (s *Server) handleFiles(c *gin.Context) {
	state, ok := s.completedRun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, FilesResponse{AnalysisID: state.ID, Files: state.Result.Files})
}

func (s *Server) handleFile(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "path query parameter required", Code: "INVALID_REQUEST"})
		return
	}
	state, ok := s.completedRun(c)
	if !ok {
		return
	}
	// Encode under the run lock; /api/ai/annotate rewrites block
	// explanations on the same result.
	s.mu.Lock()
	fa, ok := state.Result.FileMap[path]
	var payload []byte
	var err error
	if ok {
		payload, err = json.Marshal(fa)
	}
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "file not analyzed: " + path, Code: "NOT_FOUND"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "encode failed: " + err.Error(), Code: "INTERNAL"})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

func (s *Server) handleSummary(c *gin.Context) {
	state, ok := s.completedRun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.summaryFor(state))
}

func (s *Server) handleHistory(c *gin.Context) {
	if s.ledger == nil {
		c.JSON(http.StatusOK, HistoryResponse{Available: false})
		return
	}
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	offset := 0
	if raw := c.Query("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			offset = n
		}
	}
	entries, err := s.ledger.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.log.Warn("history_list_failed", "error", err)
		c.JSON(http.StatusOK, HistoryResponse{Available: false})
		return
	}
	c.JSON(http.StatusOK, HistoryResponse{Available: true, Entries: entries})
}

// handleAnnotate attaches externally produced explanations to blocks of a
// completed run, invalidates its summary cache and re-persists it.
func (s *Server) handleAnnotate(c *gin.Context) {
	var req AnnotateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "INVALID_REQUEST"})
		return
	}
	state, ok := s.lookupRun(req.AnalysisID)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no such analysis", Code: "NOT_FOUND"})
		return
	}
	s.mu.Lock()
	result := state.Result
	s.mu.Unlock()
	if result == nil {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "analysis has no result", Code: "STILL_RUNNING"})
		return
	}

	// Attach, invalidate the cached summary and re-encode the persisted
	// record under the run lock so readers never see a half-updated block
	// and concurrent attachments never interleave.
	s.mu.Lock()
	outcome := result.AttachExplanations(req.Items)
	state.summary = nil
	s.persist(state.ID, state.Roots, result, s.log.With("analysis_id", state.ID))
	s.mu.Unlock()
	s.log.Info("annotations_attached", "analysis_id", state.ID,
		"updated", outcome.Updated, "missing", outcome.Missing)
	c.JSON(http.StatusOK, outcome)
}

// handleExplain exists so clients discover the contract: explanation text
// is produced by an external collaborator and attached via /api/ai/annotate.
func (s *Server) handleExplain(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, ErrorResponse{
		Error: "explanation generation is external; attach results via /api/ai/annotate",
		Code:  "NOT_IMPLEMENTED",
	})
}
