package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/mikel-p-h/PFG/internal/domain/fault"
)

type ProjectStatus string

const (
	ProjectNotStarted ProjectStatus = "Not Started"
	ProjectInProgress ProjectStatus = "In Progress"
	ProjectFinished   ProjectStatus = "Finished"
)

// Project groups a catalog of frames under one owner, with the ordered
// label list used for dataset manifests. Labels and colors are parallel
// lists and must always have the same length.
type Project struct {
	ID        uuid.UUID
	Name      string
	Owner     string
	Status    ProjectStatus
	Labels    []string
	Colors    []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewProject(name, owner string, labels, colors []string) (*Project, error) {
	if err := ValidateLabelColors(labels, colors); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Project{
		ID:        uuid.New(),
		Name:      name,
		Owner:     owner,
		Status:    ProjectNotStarted,
		Labels:    labels,
		Colors:    colors,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func ValidateLabelColors(labels, colors []string) error {
	if len(labels) != len(colors) {
		return fault.Errorf(fault.Validation,
			"labels and colors must have the same length (%d labels, %d colors)",
			len(labels), len(colors))
	}
	return nil
}
