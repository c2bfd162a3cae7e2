package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikel-p-h/PFG/internal/domain/fault"
)

func TestNewProject(t *testing.T) {
	project, err := NewProject("demo", "owner@example.com", []string{"cat", "dog"}, []string{"#ff0000", "#00ff00"})
	require.NoError(t, err)

	assert.NotEqual(t, "", project.ID.String())
	assert.Equal(t, ProjectNotStarted, project.Status)
	assert.Equal(t, project.CreatedAt, project.UpdatedAt)
}

func TestNewProjectLabelColorMismatch(t *testing.T) {
	_, err := NewProject("demo", "owner@example.com", []string{"cat", "dog"}, []string{"#ff0000"})
	require.Error(t, err)
	assert.Equal(t, fault.Validation, fault.KindOf(err))
	assert.Contains(t, err.Error(), "2 labels, 1 colors")
}

func TestValidateLabelColorsEmpty(t *testing.T) {
	assert.NoError(t, ValidateLabelColors(nil, nil))
	assert.NoError(t, ValidateLabelColors([]string{}, []string{}))
}

func TestFrameName(t *testing.T) {
	tests := []struct {
		number int
		ext    string
		want   string
	}{
		{1, ".jpg", "frame_000001.jpg"},
		{42, ".png", "frame_000042.png"},
		{999999, ".jpg", "frame_999999.jpg"},
		{1000000, ".jpg", "frame_1000000.jpg"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FrameName(tt.number, tt.ext))
	}
}

func TestFrameBaseName(t *testing.T) {
	f := &Frame{Name: "frame_000007.jpg"}
	assert.Equal(t, "frame_000007", f.BaseName())
}

func TestFrameAnnotationText(t *testing.T) {
	f := &Frame{}
	assert.Empty(t, f.AnnotationText())

	f.SetAnnotation("0 0.5 0.5 0.2 0.2")
	assert.Equal(t, "0 0.5 0.5 0.2 0.2", f.AnnotationText())

	f.SetAnnotation("")
	assert.Nil(t, f.Annotation, "clearing stores nil, not an empty string")
}

func TestHyperparamsWithDefaults(t *testing.T) {
	defaults := Hyperparams{Model: "yolo12m.pt", Epochs: 40, ImageSize: 640, Batch: 8, LearningRate: 0.001}

	assert.Equal(t, defaults, Hyperparams{}.WithDefaults(defaults))

	partial := Hyperparams{Epochs: 100, LearningRate: 0.01}
	got := partial.WithDefaults(defaults)
	assert.Equal(t, "yolo12m.pt", got.Model)
	assert.Equal(t, 100, got.Epochs)
	assert.Equal(t, 640, got.ImageSize)
	assert.Equal(t, 8, got.Batch)
	assert.Equal(t, 0.01, got.LearningRate)
}
