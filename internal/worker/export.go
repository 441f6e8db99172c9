package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"klaso-client/internal/config"
	"klaso-client/internal/db"
	"klaso-client/internal/excel"
	"klaso-client/internal/logger"
	"klaso-client/internal/model"
	"klaso-client/internal/queue"
	"klaso-client/internal/storage"

	"github.com/rs/zerolog"
)

// ExportQueue is the consuming side of the export queue.
type ExportQueue interface {
	ConsumeExportQueue(ctx context.Context, handler queue.MessageHandler) error
	DeadLetter(ctx context.Context, data []byte) error
}

// Archive stores rendered workbooks.
type Archive interface {
	ExportKey(exportID string) string
	Upload(ctx context.Context, key string, data io.ReadSeeker, contentType string) error
}

// ExportWorker renders queued reports to xlsx, archives them and records the
// outcome in the export ledger.
type ExportWorker struct {
	repo       db.Repository
	archive    Archive
	queue      ExportQueue
	render     func(model.SavedReport) ([]byte, error)
	workerPool *WorkerPool
	log        zerolog.Logger

	// Jobs run on their own context so the backlog can still be processed
	// after consumption stops.
	jobCtx     context.Context
	cancelJobs context.CancelFunc
	consuming  sync.WaitGroup
}

func NewExportWorker(cfg *config.Config, repo db.Repository, archive Archive, q ExportQueue) *ExportWorker {
	w := &ExportWorker{
		repo:       repo,
		archive:    archive,
		queue:      q,
		render:     excel.Render,
		workerPool: NewWorkerPool(cfg.Workers.Export.Count),
		log:        logger.Get(),
	}
	w.jobCtx, w.cancelJobs = context.WithCancel(context.Background())
	return w
}

// Start consumes export jobs until ctx is cancelled.
func (w *ExportWorker) Start(ctx context.Context) error {
	w.consuming.Add(1)
	defer w.consuming.Done()

	w.log.Info().Msg("Starting export worker")

	w.workerPool.Start(w.jobCtx)

	return w.queue.ConsumeExportQueue(ctx, w.handleMessage)
}

// Stop waits for consumption to end, then finishes every job already taken
// off the queue. Cancel the context given to Start first.
func (w *ExportWorker) Stop() {
	w.log.Info().Msg("Stopping export worker")
	w.consuming.Wait()
	w.workerPool.Stop()
	w.cancelJobs()
}

func (w *ExportWorker) handleMessage(ctx context.Context, data []byte) error {
	var job model.ExportJob
	if err := json.Unmarshal(data, &job); err != nil {
		w.log.Error().Err(err).Msg("Failed to unmarshal export job")
		return err
	}

	w.log.Info().Str("export_id", job.ExportID).Str("type", string(job.Report.Type)).Msg("Processing export job")

	accepted := w.workerPool.Submit(func(ctx context.Context) error {
		return w.processExport(ctx, job, data)
	})
	if !accepted {
		err := fmt.Errorf("export %s dropped: worker pool full", job.ExportID)
		msg := err.Error()
		if updErr := w.repo.UpdateExportStatus(context.WithoutCancel(ctx), job.ExportID, model.ExportStatusFailed, nil, &msg); updErr != nil {
			w.log.Error().Err(updErr).Str("export_id", job.ExportID).Msg("Failed to mark export as failed")
		}
		// The consumer moves the message to the DLQ.
		return err
	}
	return nil
}

func (w *ExportWorker) processExport(ctx context.Context, job model.ExportJob, raw []byte) error {
	log := w.log.With().Str("export_id", job.ExportID).Logger()

	fail := func(err error) error {
		errorMsg := err.Error()
		if updErr := w.repo.UpdateExportStatus(ctx, job.ExportID, model.ExportStatusFailed, nil, &errorMsg); updErr != nil {
			log.Error().Err(updErr).Msg("Failed to mark export as failed")
		}
		if dlqErr := w.queue.DeadLetter(ctx, raw); dlqErr != nil {
			log.Error().Err(dlqErr).Msg("Failed to move export to DLQ")
		}
		return err
	}

	log.Debug().Msg("Rendering workbook")
	data, err := w.render(job.Report)
	if err != nil {
		log.Error().Err(err).Msg("Failed to render workbook")
		return fail(err)
	}

	key := w.archive.ExportKey(job.ExportID)
	log.Debug().Str("s3_path", key).Int("bytes", len(data)).Msg("Uploading workbook")
	if err := w.archive.Upload(ctx, key, bytes.NewReader(data), storage.XLSXContentType); err != nil {
		log.Error().Err(err).Msg("Failed to upload workbook")
		return fail(err)
	}

	if err := w.repo.UpdateExportStatus(ctx, job.ExportID, model.ExportStatusDone, &key, nil); err != nil {
		log.Error().Err(err).Msg("Failed to update export status")
		return err
	}

	log.Info().Str("s3_path", key).Msg("Export completed")
	return nil
}
