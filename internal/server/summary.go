package server

import "github.com/Nita121388/Merge-Annotator/internal/analysis"

// summaryFor returns the block rollup for a completed run, computing and
// caching it on first use. Annotation attachment clears the cache.
func (s *Server) summaryFor(state *runState) *SummaryResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state.summary != nil {
		return state.summary
	}
	state.summary = buildSummary(state.ID, state.Result)
	return state.summary
}

func buildSummary(id string, result *analysis.Result) *SummaryResponse {
	resp := &SummaryResponse{
		AnalysisID: id,
		TotalFiles: len(result.Files),
		Files:      make([]FileSummaryRollup, 0, len(result.Files)),
	}
	for _, summary := range result.Files {
		fa := result.FileMap[summary.Path]
		roll := FileSummaryRollup{Path: summary.Path, FileOrigin: summary.FileOrigin}
		if fa != nil {
			for _, block := range fa.Blocks {
				roll.TotalBlocks++
				if block.Explain != nil {
					roll.Annotated++
					if block.Explain.Risk != "" {
						roll.RiskBlocks++
					}
				}
				switch block.Origin {
				case analysis.OriginManual:
					roll.ManualBlocks++
				case analysis.OriginConflict:
					roll.ConflictBlocks++
				}
			}
		}
		roll.HasAIExplain = roll.Annotated > 0
		roll.HasRisk = roll.RiskBlocks > 0
		resp.TotalBlocks += roll.TotalBlocks
		resp.Annotated += roll.Annotated
		resp.RiskBlocks += roll.RiskBlocks
		resp.ManualBlocks += roll.ManualBlocks
		resp.ConflictBlocks += roll.ConflictBlocks
		resp.Files = append(resp.Files, roll)
	}
	return resp
}
