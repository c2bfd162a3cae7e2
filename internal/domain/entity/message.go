package entity

import "github.com/google/uuid"

type JobKind string

const (
	JobIngest          JobKind = "ingest"
	JobSynthetic       JobKind = "synthetic"
	JobAnnotate        JobKind = "annotate"
	JobGenerateDataset JobKind = "generate_dataset"
	JobExport          JobKind = "export"
)

// CatalogJobMessage is the inbound message on the catalog.jobs queue. The
// fields used depend on Kind; JobID and Kind are always required.
type CatalogJobMessage struct {
	JobID      uuid.UUID `json:"job_id"`
	Kind       JobKind   `json:"kind"`
	ProjectID  uuid.UUID `json:"project_id,omitempty"`
	OwnerEmail string    `json:"owner_email,omitempty"`

	// ingest
	ProjectName string   `json:"project_name,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	Colors      []string `json:"colors,omitempty"`
	ArchiveKey  string   `json:"archive_key,omitempty"`

	// synthetic
	ImageKey string `json:"image_key,omitempty"`

	// annotate
	FrameID     int64    `json:"frame_id,omitempty"`
	Annotations []string `json:"annotations,omitempty"`
	Finished    bool     `json:"finished,omitempty"`

	// generate_dataset
	Hyperparams Hyperparams `json:"hyperparams"`

	// export
	IncludeImages bool `json:"include_images,omitempty"`
}

type JobStatus string

const (
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusFailed    JobStatus = "FAILED"
)

// CatalogStatusMessage is the outbound message published to the
// catalog.status queue after every job, success or failure.
type CatalogStatusMessage struct {
	JobID       uuid.UUID `json:"job_id"`
	Kind        JobKind   `json:"kind"`
	ProjectID   uuid.UUID `json:"project_id,omitempty"`
	Status      JobStatus `json:"status"`
	FrameCount  int       `json:"frame_count,omitempty"`
	FrameName   string    `json:"frame_name,omitempty"`
	Merged      int       `json:"merged_predictions,omitempty"`
	ExportKey   string    `json:"export_key,omitempty"`
	ErrorKind   string    `json:"error_kind,omitempty"`
	ErrorDetail string    `json:"error_message,omitempty"`
}
