package chunk

import (
	"fmt"

	"github.com/MrSatan/Code-Guardian/internal/domain"
)

// Plan runs the full chunking stage over the split file segments:
// classify each file, sub-chunk the ones that need it, then merge the
// resulting candidates into the final bounded chunk list.
func Plan(files []domain.FileDiff, t Thresholds, cfg MergeConfig) []domain.Chunk {
	var candidates []Candidate

	for _, fd := range files {
		label := fd.Path
		if label == "" {
			label = "unknown"
		}

		decision := Classify(fd, t)
		if !decision.NeedsSplit {
			candidates = append(candidates, Candidate{
				Path:    fd.Path,
				Content: fd.Content,
				Label:   label,
			})
			continue
		}

		parts := SplitIntoSubChunks(fd, decision.ChunkLines)
		for i, part := range parts {
			candidates = append(candidates, Candidate{
				Path:    fd.Path,
				Content: part,
				Label:   fmt.Sprintf("%s [part %d/%d]", label, i+1, len(parts)),
			})
		}
	}

	return Merge(candidates, cfg)
}
