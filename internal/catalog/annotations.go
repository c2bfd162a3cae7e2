package catalog

import (
	"context"
	"strings"

	"github.com/mikel-p-h/PFG/internal/domain/port"
)

// AnnotationEditor rewrites a frame's annotation text. Lines are stored
// verbatim after trimming; no bounding-box syntax validation happens here,
// malformed lines are only rejected by consumers that parse them.
type AnnotationEditor struct {
	frames port.FrameRepository
}

func NewAnnotationEditor(frames port.FrameRepository) *AnnotationEditor {
	return &AnnotationEditor{frames: frames}
}

// Update trims each line, drops empties, and stores the newline-joined
// result. An empty result clears the annotation entirely. The finished
// flag is always overwritten with the caller's value.
func (e *AnnotationEditor) Update(ctx context.Context, frameID int64, lines []string, finished bool) error {
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}

	var annotation *string
	if len(cleaned) > 0 {
		text := strings.Join(cleaned, "\n")
		annotation = &text
	}

	return e.frames.UpdateAnnotation(ctx, frameID, annotation, finished)
}
