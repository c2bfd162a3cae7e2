package export

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/mikel-p-h/PFG/internal/domain/fault"
	"github.com/mikel-p-h/PFG/internal/domain/port"
)

// Packager produces the downloadable archive of a project's full catalog:
// every frame regardless of finished or synthetic state, flat, with one
// label file per frame and the download manifest appended.
type Packager struct {
	projects port.ProjectRepository
	frames   port.FrameRepository
}

func NewPackager(projects port.ProjectRepository, frames port.FrameRepository) *Packager {
	return &Packager{projects: projects, frames: frames}
}

// WriteArchive streams the archive into w. Label files are always
// written (empty when the frame has no annotation); image payloads only
// when includeImages is set.
func (p *Packager) WriteArchive(ctx context.Context, projectID uuid.UUID, includeImages bool, w io.Writer) error {
	project, err := p.projects.Get(ctx, projectID)
	if err != nil {
		return err
	}

	frames, err := p.frames.ListByProject(ctx, projectID, port.FrameFilter{})
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fault.Errorf(fault.NotFound, "no frames found for project %s", projectID)
	}

	zw := zip.NewWriter(w)

	for _, f := range frames {
		if err := ctx.Err(); err != nil {
			return err
		}

		label, err := zw.Create("labels/" + f.BaseName() + ".txt")
		if err != nil {
			return fmt.Errorf("create label entry: %w", err)
		}
		if _, err := label.Write([]byte(f.AnnotationText())); err != nil {
			return fmt.Errorf("write label entry: %w", err)
		}

		if includeImages {
			img, err := zw.Create("images/" + f.Name)
			if err != nil {
				return fmt.Errorf("create image entry: %w", err)
			}
			if _, err := img.Write(f.Payload); err != nil {
				return fmt.Errorf("write image entry: %w", err)
			}
		}
	}

	manifest, err := zw.Create("data.yaml")
	if err != nil {
		return fmt.Errorf("create manifest entry: %w", err)
	}
	if _, err := manifest.Write([]byte(DownloadManifest(project.Labels))); err != nil {
		return fmt.Errorf("write manifest entry: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish archive: %w", err)
	}
	return nil
}

// DownloadManifest renders the data.yaml shipped with downloads. The
// placeholder split paths are filled in by the user; the format is fixed
// for downstream tooling.
func DownloadManifest(labels []string) string {
	var sb strings.Builder
	sb.WriteString("#*Edit the paths with your own and delete this line*#\n")
	sb.WriteString("path: ./\n\n")
	sb.WriteString("train: images/?\n")
	sb.WriteString("test: images/?\n")
	sb.WriteString("val: images/?\n\n")
	fmt.Fprintf(&sb, "nc: %d\n\n", len(labels))
	sb.WriteString("names:\n")
	for _, label := range labels {
		fmt.Fprintf(&sb, "- %s\n", label)
	}
	return sb.String()
}
