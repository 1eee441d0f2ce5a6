package server

import (
	"github.com/Nita121388/Merge-Annotator/internal/analysis"
	"github.com/Nita121388/Merge-Annotator/internal/history"
)

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// AnalyzeRequest starts a provenance run over the given roots. Optional
// fields override the server's base configuration for this run only.
type AnalyzeRequest struct {
	BranchDir string `json:"branch_dir" binding:"required"`
	TrunkDir  string `json:"trunk_dir" binding:"required"`
	MergeDir  string `json:"merge_dir" binding:"required"`
	BaseDir   string `json:"base_dir"`

	Extensions   []string `json:"extensions"`
	OnlyChanged  *bool    `json:"only_changed"`
	FileScope    string   `json:"file_scope"`
	Workers      int      `json:"workers"`
	DisableBlame *bool    `json:"disable_blame"`
	DisableTools *bool    `json:"disable_tools"`
}

// AnalyzeResponse acknowledges an accepted run.
type AnalyzeResponse struct {
	AnalysisID string `json:"analysis_id"`
	Status     string `json:"status"`
}

// StatusResponse reports the lifecycle and progress of a run.
type StatusResponse struct {
	AnalysisID string            `json:"analysis_id"`
	Status     string            `json:"status"`
	Error      string            `json:"error,omitempty"`
	Roots      analysis.Roots    `json:"roots"`
	Progress   analysis.Progress `json:"progress"`
}

// FilesResponse lists per-file summaries of a completed run.
type FilesResponse struct {
	AnalysisID string             `json:"analysis_id"`
	Files      []analysis.Summary `json:"files"`
}

// FileSummaryRollup is the per-file block rollup served by /api/summary.
type FileSummaryRollup struct {
	Path           string              `json:"path"`
	FileOrigin     analysis.FileOrigin `json:"file_origin"`
	TotalBlocks    int                 `json:"total_blocks"`
	Annotated      int                 `json:"annotated_blocks"`
	RiskBlocks     int                 `json:"risk_blocks"`
	ManualBlocks   int                 `json:"manual_blocks"`
	ConflictBlocks int                 `json:"conflict_blocks"`
	HasAIExplain   bool                `json:"has_ai_explain"`
	HasRisk        bool                `json:"has_risk"`
}

// SummaryResponse aggregates block-level rollups across a run.
type SummaryResponse struct {
	AnalysisID     string              `json:"analysis_id"`
	TotalFiles     int                 `json:"total_files"`
	TotalBlocks    int                 `json:"total_blocks"`
	Annotated      int                 `json:"annotated_blocks"`
	RiskBlocks     int                 `json:"risk_blocks"`
	ManualBlocks   int                 `json:"manual_blocks"`
	ConflictBlocks int                 `json:"conflict_blocks"`
	Files          []FileSummaryRollup `json:"files"`
}

// AnnotateRequest attaches externally produced explanations to blocks.
type AnnotateRequest struct {
	AnalysisID string                    `json:"analysis_id"`
	Items      []analysis.AnnotationItem `json:"items" binding:"required"`
}

// HistoryResponse wraps the run ledger with an availability flag so the UI
// can distinguish "no history" from "history storage unusable".
type HistoryResponse struct {
	Available bool            `json:"available"`
	Entries   []history.Entry `json:"entries"`
}
