package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/mikel-p-h/PFG/internal/catalog"
	"github.com/mikel-p-h/PFG/internal/dataset"
	"github.com/mikel-p-h/PFG/internal/domain/entity"
	"github.com/mikel-p-h/PFG/internal/domain/fault"
	"github.com/mikel-p-h/PFG/internal/domain/port"
	"github.com/mikel-p-h/PFG/internal/export"
	"github.com/mikel-p-h/PFG/internal/infra/metrics"
	"github.com/mikel-p-h/PFG/internal/media"
	"github.com/mikel-p-h/PFG/internal/training"
)

// CatalogJobUseCase dispatches one catalog job per message: ingest,
// synthetic upload, annotation update, dataset generation with the FSOD
// round trip, or catalog export. Every job publishes a status message;
// failed jobs additionally go to the DLQ and, when the message carries an
// owner email, trigger a notification. Partial work inside a job is never
// reported as success.
type CatalogJobUseCase struct {
	projects    port.ProjectRepository
	frames      port.FrameRepository
	storage     port.MediaStorage
	decoder     *media.Decoder
	builder     *catalog.Builder
	editor      *catalog.AnnotationEditor
	synthetic   *catalog.SyntheticUploader
	assembler   *dataset.Assembler
	coordinator *training.Coordinator
	packager    *export.Packager
	publisher   port.StatusPublisher
	dlq         port.DLQPublisher
	notifier    port.FailureNotifier
	logger      *zap.Logger
	tempDir     string
	defaults    entity.Hyperparams
}

type CatalogJobConfig struct {
	TempDir       string
	DefaultParams entity.Hyperparams
}

func NewCatalogJobUseCase(
	projects port.ProjectRepository,
	frames port.FrameRepository,
	storage port.MediaStorage,
	decoder *media.Decoder,
	coordinator *training.Coordinator,
	publisher port.StatusPublisher,
	dlq port.DLQPublisher,
	notifier port.FailureNotifier,
	logger *zap.Logger,
	cfg CatalogJobConfig,
) *CatalogJobUseCase {
	return &CatalogJobUseCase{
		projects:    projects,
		frames:      frames,
		storage:     storage,
		decoder:     decoder,
		builder:     catalog.NewBuilder(frames, logger),
		editor:      catalog.NewAnnotationEditor(frames),
		synthetic:   catalog.NewSyntheticUploader(frames),
		assembler:   dataset.NewAssembler(projects, frames, logger),
		coordinator: coordinator,
		packager:    export.NewPackager(projects, frames),
		publisher:   publisher,
		dlq:         dlq,
		notifier:    notifier,
		logger:      logger,
		tempDir:     cfg.TempDir,
		defaults:    cfg.DefaultParams,
	}
}

func (uc *CatalogJobUseCase) Execute(ctx context.Context, rawMsg []byte) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "CatalogJobUseCase.Execute")
	defer span.End()

	totalTimer := time.Now()

	var msg entity.CatalogJobMessage
	if err := json.Unmarshal(rawMsg, &msg); err != nil {
		uc.logger.Error("failed to unmarshal message", zap.Error(err), zap.ByteString("body", rawMsg))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "unmarshal_error: "+err.Error())
		return nil
	}

	span.SetAttributes(
		attribute.String("job.id", msg.JobID.String()),
		attribute.String("job.kind", string(msg.Kind)),
	)

	log := uc.logger.With(
		zap.String("job_id", msg.JobID.String()),
		zap.String("kind", string(msg.Kind)),
		zap.String("project_id", msg.ProjectID.String()),
	)

	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()

	status, err := uc.dispatch(ctx, &msg, log)
	if err != nil {
		uc.handleFailure(ctx, &msg, rawMsg, err, log)
		return nil
	}

	uc.publishStatus(ctx, status, log)
	metrics.JobsProcessedTotal.WithLabelValues(string(msg.Kind), "completed").Inc()
	metrics.JobStageDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())

	log.Info("job completed successfully")
	return nil
}

func (uc *CatalogJobUseCase) dispatch(ctx context.Context, msg *entity.CatalogJobMessage, log *zap.Logger) (*entity.CatalogStatusMessage, error) {
	switch msg.Kind {
	case entity.JobIngest:
		return uc.handleIngest(ctx, msg, log)
	case entity.JobSynthetic:
		return uc.handleSynthetic(ctx, msg)
	case entity.JobAnnotate:
		return uc.handleAnnotate(ctx, msg)
	case entity.JobGenerateDataset:
		return uc.handleGenerateDataset(ctx, msg, log)
	case entity.JobExport:
		return uc.handleExport(ctx, msg)
	default:
		return nil, fault.Errorf(fault.Validation, "unknown job kind %q", msg.Kind)
	}
}

// handleIngest creates the project and catalogs every frame decoded from
// the uploaded archive. Frame writes are one transaction: a failure
// leaves the catalog without any frame from this request.
func (uc *CatalogJobUseCase) handleIngest(ctx context.Context, msg *entity.CatalogJobMessage, log *zap.Logger) (*entity.CatalogStatusMessage, error) {
	tracer := otel.Tracer("usecase")

	project, err := entity.NewProject(msg.ProjectName, msg.OwnerEmail, msg.Labels, msg.Colors)
	if err != nil {
		return nil, err
	}
	if msg.ProjectID != (uuid.UUID{}) {
		project.ID = msg.ProjectID
	}
	if err := uc.projects.Create(ctx, project); err != nil {
		return nil, err
	}

	workDir, cleanup, err := uc.workDir(msg.JobID.String())
	if err != nil {
		return nil, err
	}
	defer cleanup()

	dlStart := time.Now()
	ctxDl, spanDl := tracer.Start(ctx, "download_archive")
	archivePath := filepath.Join(workDir, "upload.zip")
	if err := uc.storage.DownloadUpload(ctxDl, msg.ArchiveKey, archivePath); err != nil {
		spanDl.End()
		return nil, fault.Wrap(fault.Storage, err, "download uploaded archive")
	}
	spanDl.End()
	metrics.JobStageDuration.WithLabelValues("download").Observe(time.Since(dlStart).Seconds())

	decStart := time.Now()
	ctxIn, spanIn := tracer.Start(ctx, "ingest_frames")
	count, err := uc.builder.Ingest(ctxIn, project.ID, uc.decoder.ArchiveSource(archivePath, workDir))
	spanIn.End()
	if err != nil {
		return nil, err
	}
	metrics.JobStageDuration.WithLabelValues("ingest").Observe(time.Since(decStart).Seconds())
	metrics.FramesIngestedTotal.Add(float64(count))

	log.Info("project ingested", zap.Int("frame_count", count))

	return &entity.CatalogStatusMessage{
		JobID:      msg.JobID,
		Kind:       msg.Kind,
		ProjectID:  project.ID,
		Status:     entity.JobStatusCompleted,
		FrameCount: count,
	}, nil
}

func (uc *CatalogJobUseCase) handleSynthetic(ctx context.Context, msg *entity.CatalogJobMessage) (*entity.CatalogStatusMessage, error) {
	workDir, cleanup, err := uc.workDir(msg.JobID.String())
	if err != nil {
		return nil, err
	}
	defer cleanup()

	imagePath := filepath.Join(workDir, "synthetic")
	if err := uc.storage.DownloadUpload(ctx, msg.ImageKey, imagePath); err != nil {
		return nil, fault.Wrap(fault.Storage, err, "download synthetic image")
	}
	payload, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("read synthetic image: %w", err)
	}

	frame, err := uc.synthetic.Add(ctx, msg.ProjectID, payload)
	if err != nil {
		return nil, err
	}

	return &entity.CatalogStatusMessage{
		JobID:     msg.JobID,
		Kind:      msg.Kind,
		ProjectID: msg.ProjectID,
		Status:    entity.JobStatusCompleted,
		FrameName: frame.Name,
	}, nil
}

func (uc *CatalogJobUseCase) handleAnnotate(ctx context.Context, msg *entity.CatalogJobMessage) (*entity.CatalogStatusMessage, error) {
	if err := uc.editor.Update(ctx, msg.FrameID, msg.Annotations, msg.Finished); err != nil {
		return nil, err
	}
	return &entity.CatalogStatusMessage{
		JobID:     msg.JobID,
		Kind:      msg.Kind,
		ProjectID: msg.ProjectID,
		Status:    entity.JobStatusCompleted,
	}, nil
}

// handleGenerateDataset assembles the bundle, runs the FSOD round trip,
// and merges predictions back as drafts. The bundle and archive are
// removed on every exit path.
func (uc *CatalogJobUseCase) handleGenerateDataset(ctx context.Context, msg *entity.CatalogJobMessage, log *zap.Logger) (*entity.CatalogStatusMessage, error) {
	tracer := otel.Tracer("usecase")

	workDir, cleanup, err := uc.workDir(msg.JobID.String())
	if err != nil {
		return nil, err
	}
	defer cleanup()

	asmStart := time.Now()
	ctxAsm, spanAsm := tracer.Start(ctx, "assemble_dataset")
	bundle, err := uc.assembler.Assemble(ctxAsm, msg.ProjectID, filepath.Join(workDir, "bundle"))
	spanAsm.End()
	if err != nil {
		return nil, err
	}
	metrics.JobStageDuration.WithLabelValues("assemble").Observe(time.Since(asmStart).Seconds())

	trainStart := time.Now()
	ctxTr, spanTr := tracer.Start(ctx, "train_round_trip")
	merged, err := uc.coordinator.Run(ctxTr, msg.ProjectID, bundle.Root, workDir, msg.Hyperparams.WithDefaults(uc.defaults))
	spanTr.End()
	if err != nil {
		return nil, err
	}
	metrics.JobStageDuration.WithLabelValues("train").Observe(time.Since(trainStart).Seconds())
	metrics.PredictionsMergedTotal.Add(float64(merged))

	log.Info("dataset labeled",
		zap.Int("train", bundle.TrainCount),
		zap.Int("val", bundle.ValCount),
		zap.Int("predict", bundle.PredictCount),
		zap.Int("merged", merged),
	)

	return &entity.CatalogStatusMessage{
		JobID:      msg.JobID,
		Kind:       msg.Kind,
		ProjectID:  msg.ProjectID,
		Status:     entity.JobStatusCompleted,
		FrameCount: bundle.TrainCount + bundle.ValCount + bundle.PredictCount,
		Merged:     merged,
	}, nil
}

func (uc *CatalogJobUseCase) handleExport(ctx context.Context, msg *entity.CatalogJobMessage) (*entity.CatalogStatusMessage, error) {
	workDir, cleanup, err := uc.workDir(msg.JobID.String())
	if err != nil {
		return nil, err
	}
	defer cleanup()

	archivePath := filepath.Join(workDir, "export.zip")
	archive, err := os.Create(archivePath)
	if err != nil {
		return nil, fmt.Errorf("create export archive: %w", err)
	}
	if err := uc.packager.WriteArchive(ctx, msg.ProjectID, msg.IncludeImages, archive); err != nil {
		archive.Close()
		return nil, err
	}
	if err := archive.Close(); err != nil {
		return nil, fmt.Errorf("close export archive: %w", err)
	}

	file, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open export archive: %w", err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat export archive: %w", err)
	}

	exportKey := fmt.Sprintf("%s/export_%s.zip", msg.ProjectID, msg.JobID)
	if err := uc.storage.UploadExport(ctx, exportKey, file, info.Size()); err != nil {
		return nil, fault.Wrap(fault.Storage, err, "upload export archive")
	}

	return &entity.CatalogStatusMessage{
		JobID:     msg.JobID,
		Kind:      msg.Kind,
		ProjectID: msg.ProjectID,
		Status:    entity.JobStatusCompleted,
		ExportKey: exportKey,
	}, nil
}

func (uc *CatalogJobUseCase) workDir(jobID string) (string, func(), error) {
	dir := filepath.Join(uc.tempDir, jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create workdir: %w", err)
	}
	return dir, func() { os.RemoveAll(dir) }, nil
}

func (uc *CatalogJobUseCase) handleFailure(ctx context.Context, msg *entity.CatalogJobMessage, rawMsg []byte, jobErr error, log *zap.Logger) {
	kind := fault.KindOf(jobErr)
	log.Error("job failed",
		zap.String("error_kind", kind.String()),
		zap.Error(jobErr),
	)

	uc.publishStatus(ctx, &entity.CatalogStatusMessage{
		JobID:       msg.JobID,
		Kind:        msg.Kind,
		ProjectID:   msg.ProjectID,
		Status:      entity.JobStatusFailed,
		ErrorKind:   kind.String(),
		ErrorDetail: jobErr.Error(),
	}, log)

	_ = uc.dlq.PublishToDLQ(ctx, rawMsg, jobErr.Error())
	metrics.JobsProcessedTotal.WithLabelValues(string(msg.Kind), "failed").Inc()

	if msg.OwnerEmail != "" {
		_ = uc.notifier.NotifyFailure(ctx, msg.OwnerEmail, msg.JobID.String(), string(msg.Kind), jobErr.Error())
	}
}

func (uc *CatalogJobUseCase) publishStatus(ctx context.Context, status *entity.CatalogStatusMessage, log *zap.Logger) {
	data, _ := json.Marshal(status)
	if err := uc.publisher.PublishStatus(ctx, data); err != nil {
		log.Error("failed to publish status", zap.Error(err))
	}
}
