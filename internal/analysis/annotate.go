package analysis

// AttachOutcome reports how many annotation items found their block.
type AttachOutcome struct {
	Status  string `json:"status"`
	Updated int    `json:"updated"`
	Missing int    `json:"missing"`
}

// AnnotationItem targets one block by exact merge-line range.
type AnnotationItem struct {
	Path    string       `json:"path"`
	Start   int          `json:"start"`
	End     int          `json:"end"`
	Explain *Explanation `json:"explain"`
}

// AttachExplanations hangs externally produced explanations onto blocks,
// matched by exact (path, start, end). Attachment is the only mutation a
// finished analysis permits; callers serialize concurrent attachment.
func (r *Result) AttachExplanations(items []AnnotationItem) AttachOutcome {
	out := AttachOutcome{Status: "ok"}
	for _, item := range items {
		if item.Path == "" || item.Start == 0 || item.End == 0 || item.Explain == nil {
			continue
		}
		fa, ok := r.FileMap[item.Path]
		if !ok {
			out.Missing++
			continue
		}
		applied := false
		for _, block := range fa.Blocks {
			if block.Start == item.Start && block.End == item.End {
				block.Explain = item.Explain
				out.Updated++
				applied = true
				break
			}
		}
		if !applied {
			out.Missing++
		}
	}
	return out
}
