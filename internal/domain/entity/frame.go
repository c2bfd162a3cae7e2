package entity

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Frame is one still image in a project's catalog: decoded from a source
// image, sampled from a video, or uploaded synthetically. Annotation is
// nil when the frame has no annotation at all, never an empty string.
type Frame struct {
	ID         int64
	ProjectID  uuid.UUID
	Name       string
	Payload    []byte
	Annotation *string
	Synthetic  bool
	Finished   bool
	Number     int
	CreatedAt  time.Time
}

// FrameName builds the canonical frame name for a catalog number and
// extension (with leading dot). Downstream tooling depends on this exact
// format.
func FrameName(number int, ext string) string {
	return fmt.Sprintf("frame_%06d%s", number, ext)
}

// BaseName returns the frame name without its extension, used for the
// matching label file.
func (f *Frame) BaseName() string {
	return strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
}

// AnnotationText returns the annotation or the empty string when absent.
func (f *Frame) AnnotationText() string {
	if f.Annotation == nil {
		return ""
	}
	return *f.Annotation
}

func (f *Frame) SetAnnotation(text string) {
	if text == "" {
		f.Annotation = nil
		return
	}
	f.Annotation = &text
}
