package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nita121388/Merge-Annotator/internal/analysis"
	"github.com/Nita121388/Merge-Annotator/internal/conflict"
	"github.com/Nita121388/Merge-Annotator/internal/history"
	"github.com/Nita121388/Merge-Annotator/internal/store"
	"github.com/Nita121388/Merge-Annotator/internal/svn"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// nilTools satisfies analysis.Tools with every signal unavailable, forcing
// pure-correspondence resolution.
type nilTools struct{}

func (nilTools) ChangedLines(context.Context, string, string, int) svn.LineSet { return nil }
func (nilTools) Changed(context.Context, string, string) (svn.LineSet, svn.LineSet, bool) {
	return nil, nil, false
}
func (nilTools) Conflicts(context.Context, string, string, string, []string) *conflict.Detail {
	return nil
}
func (nilTools) Blame(context.Context, string) []svn.BlameLine           { return nil }
func (nilTools) Info(context.Context, string) svn.Info                   { return svn.Unavailable("test") }
func (nilTools) DiffSummarize(context.Context, string, string) ([]string, bool) {
	return nil, false
}

func testServer(t *testing.T, ledger *history.Ledger) *Server {
	t.Helper()
	cfg := analysis.DefaultConfig()
	cfg.DisableTools = true
	cfg.DisableBlame = true
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, nilTools{}, store.New(t.TempDir()), ledger, log)
}

// seedRoots writes identical branch/trunk/merge trees plus one merge-only
// line so the analysis has real provenance to report.
func seedRoots(t *testing.T) analysis.Roots {
	t.Helper()
	dir := t.TempDir()
	roots := analysis.Roots{
		Branch: filepath.Join(dir, "branch"),
		Trunk:  filepath.Join(dir, "trunk"),
		Merge:  filepath.Join(dir, "merge"),
	}
	for _, root := range []string{roots.Branch, roots.Trunk, roots.Merge} {
		require.NoError(t, os.MkdirAll(root, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("one\ntwo\n"), 0o644))
	}
	require.NoError(t, os.WriteFile(
		filepath.Join(roots.Merge, "a.txt"), []byte("one\ntwo\nlocal fixup\n"), 0o644))
	return roots
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// startAndWait posts an analyze request and polls status until the run
// leaves the running state.
func startAndWait(t *testing.T, router *gin.Engine, roots analysis.Roots) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/analyze", AnalyzeRequest{
		BranchDir: roots.Branch, TrunkDir: roots.Trunk, MergeDir: roots.Merge, BaseDir: roots.Base,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	accepted := decode[AnalyzeResponse](t, w)
	require.NotEmpty(t, accepted.AnalysisID)
	require.Equal(t, StatusRunning, accepted.Status)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		sw := doJSON(t, router, http.MethodGet, "/api/status?id="+accepted.AnalysisID, nil)
		require.Equal(t, http.StatusOK, sw.Code)
		status := decode[StatusResponse](t, sw)
		if status.Status != StatusRunning {
			require.Equal(t, StatusCompleted, status.Status, status.Error)
			return accepted.AnalysisID
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("analysis did not finish in time")
	return ""
}

func TestHealth(t *testing.T) {
	router := testServer(t, nil).Router()
	w := doJSON(t, router, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAnalyzeRejectsBadInput(t *testing.T) {
	router := testServer(t, nil).Router()

	w := doJSON(t, router, http.MethodPost, "/api/analyze", map[string]string{"branch_dir": "/only"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decode[ErrorResponse](t, w).Code)

	roots := seedRoots(t)
	w = doJSON(t, router, http.MethodPost, "/api/analyze", AnalyzeRequest{
		BranchDir: roots.Branch, TrunkDir: roots.Trunk,
		MergeDir: filepath.Join(roots.Merge, "no-such-dir"),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ROOT", decode[ErrorResponse](t, w).Code)
}

func TestStatusUnknownRun(t *testing.T) {
	router := testServer(t, nil).Router()
	w := doJSON(t, router, http.MethodGet, "/api/status?id=nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalyzeLifecycle(t *testing.T) {
	srv := testServer(t, nil)
	router := srv.Router()
	roots := seedRoots(t)
	id := startAndWait(t, router, roots)

	w := doJSON(t, router, http.MethodGet, "/api/files?id="+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	files := decode[FilesResponse](t, w)
	require.Len(t, files.Files, 1)
	assert.Equal(t, "a.txt", files.Files[0].Path)
	assert.True(t, files.Files[0].HasChanges)

	w = doJSON(t, router, http.MethodGet, "/api/file?id="+id+"&path=a.txt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	fa := decode[analysis.FileAnalysis](t, w)
	assert.Equal(t, 3, fa.Summary.TotalLines)
	assert.NotEmpty(t, fa.Blocks)

	w = doJSON(t, router, http.MethodGet, "/api/file?id="+id+"&path=missing.txt", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/file?id="+id, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The finished run is persisted in the store.
	rec, err := srv.store.Load(id)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, StatusCompleted, rec.Status)
}

func TestStatusDefaultsToLatestRun(t *testing.T) {
	router := testServer(t, nil).Router()
	id := startAndWait(t, router, seedRoots(t))

	w := doJSON(t, router, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, decode[StatusResponse](t, w).AnalysisID)
}

func TestSummaryAndAnnotate(t *testing.T) {
	router := testServer(t, nil).Router()
	id := startAndWait(t, router, seedRoots(t))

	w := doJSON(t, router, http.MethodGet, "/api/summary?id="+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[SummaryResponse](t, w)
	require.Equal(t, 1, summary.TotalFiles)
	assert.Equal(t, 2, summary.TotalBlocks, "one common block plus one manual block")
	assert.Equal(t, 1, summary.ManualBlocks)
	assert.Zero(t, summary.Annotated)

	// Find the manual block range to annotate.
	fw := doJSON(t, router, http.MethodGet, "/api/file?id="+id+"&path=a.txt", nil)
	fa := decode[analysis.FileAnalysis](t, fw)
	var manual *analysis.Block
	for _, b := range fa.Blocks {
		if b.Origin == analysis.OriginManual {
			manual = b
		}
	}
	require.NotNil(t, manual)

	w = doJSON(t, router, http.MethodPost, "/api/ai/annotate", AnnotateRequest{
		AnalysisID: id,
		Items: []analysis.AnnotationItem{{
			Path: "a.txt", Start: manual.Start, End: manual.End,
			Explain: &analysis.Explanation{Reason: "local fixup kept", Risk: "low"},
		}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	outcome := decode[analysis.AttachOutcome](t, w)
	assert.Equal(t, 1, outcome.Updated)
	assert.Zero(t, outcome.Missing)

	// Summary cache was invalidated by the attachment.
	w = doJSON(t, router, http.MethodGet, "/api/summary?id="+id, nil)
	summary = decode[SummaryResponse](t, w)
	assert.Equal(t, 1, summary.Annotated)
	assert.Equal(t, 1, summary.RiskBlocks)
	require.Len(t, summary.Files, 1)
	assert.True(t, summary.Files[0].HasAIExplain)
	assert.True(t, summary.Files[0].HasRisk)
}

// Annotation attachment mutates blocks that /api/file and /api/summary read,
// so interleaved requests must stay coherent (run with -race).
func TestAnnotateConcurrentWithReads(t *testing.T) {
	router := testServer(t, nil).Router()
	id := startAndWait(t, router, seedRoots(t))

	fw := doJSON(t, router, http.MethodGet, "/api/file?id="+id+"&path=a.txt", nil)
	fa := decode[analysis.FileAnalysis](t, fw)
	var target *analysis.Block
	for _, b := range fa.Blocks {
		if b.Origin == analysis.OriginManual {
			target = b
		}
	}
	require.NotNil(t, target)

	body, err := json.Marshal(AnnotateRequest{
		AnalysisID: id,
		Items: []analysis.AnnotationItem{{
			Path: "a.txt", Start: target.Start, End: target.End,
			Explain: &analysis.Explanation{Reason: "local fixup kept", Risk: "low"},
		}},
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	codes := make(chan int, 30)
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/ai/annotate", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			codes <- w.Code
		}()
		go func() {
			defer wg.Done()
			for _, path := range []string{"/api/file?id=" + id + "&path=a.txt", "/api/summary?id=" + id} {
				req := httptest.NewRequest(http.MethodGet, path, nil)
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)
				codes <- w.Code
			}
		}()
	}
	wg.Wait()
	close(codes)
	for code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}

	w := doJSON(t, router, http.MethodGet, "/api/summary?id="+id, nil)
	assert.Equal(t, 1, decode[SummaryResponse](t, w).Annotated)
}

func TestExplainNotImplemented(t *testing.T) {
	router := testServer(t, nil).Router()
	w := doJSON(t, router, http.MethodPost, "/api/ai/explain", map[string]string{"path": "a.txt"})
	assert.Equal(t, http.StatusNotImplemented, w.Code)
	assert.Equal(t, "NOT_IMPLEMENTED", decode[ErrorResponse](t, w).Code)
}

func TestHistoryEndpoint(t *testing.T) {
	t.Run("no ledger", func(t *testing.T) {
		router := testServer(t, nil).Router()
		w := doJSON(t, router, http.MethodGet, "/api/history", nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[HistoryResponse](t, w)
		assert.False(t, resp.Available)
	})

	t.Run("with ledger", func(t *testing.T) {
		ledger, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
		require.NoError(t, err)
		defer ledger.Close()
		router := testServer(t, ledger).Router()
		id := startAndWait(t, router, seedRoots(t))

		w := doJSON(t, router, http.MethodGet, "/api/history?limit=5", nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[HistoryResponse](t, w)
		require.True(t, resp.Available)
		require.Len(t, resp.Entries, 1)
		assert.Equal(t, id, resp.Entries[0].ID)
		assert.Equal(t, "completed", resp.Entries[0].Status)
	})
}

func TestFilesWhileRunningConflicts(t *testing.T) {
	srv := testServer(t, nil)
	router := srv.Router()

	// Register a run directly without launching the goroutine.
	srv.mu.Lock()
	srv.runs["stuck"] = &runState{ID: "stuck", Status: StatusRunning}
	srv.current = "stuck"
	srv.mu.Unlock()

	w := doJSON(t, router, http.MethodGet, "/api/files?id=stuck", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "STILL_RUNNING", decode[ErrorResponse](t, w).Code)
}
