package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/document"
	"financas/internal/log"
	"financas/internal/services"
)

// Exporter runs the report pipeline for one request.
type Exporter interface {
	Export(ctx context.Context, req services.ReportRequest, opts document.Options) (*services.Export, error)
}

// ExportWorker turns queued export requests into PDF files under dir.
type ExportWorker struct {
	exporter Exporter
	dir      string
	logger   *log.Logger
}

func NewExportWorker(exporter Exporter, dir string, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ExportWorker{
		exporter: exporter,
		dir:      dir,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// ErrUnsafePath is returned when a job would be written outside the
// export directory.
var ErrUnsafePath = errors.New("export path escapes export directory")

// Path is where the report of a job is written:
// <dir>/<user>/<job id>-<file name>.
func (w *ExportWorker) Path(msg *amqp.ExportRequestedMessage, fileName string) (string, error) {
	if !core.ValidUserID(msg.UserID) {
		return "", fmt.Errorf("user %q: %w", msg.UserID, ErrUnsafePath)
	}
	name := msg.JobID + "-" + fileName
	path := filepath.Join(w.dir, msg.UserID, name)
	rel, err := filepath.Rel(w.dir, path)
	if err != nil || filepath.Base(name) != name || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("job %s file %q: %w", msg.JobID, fileName, ErrUnsafePath)
	}
	return path, nil
}

// HandleExportRequested builds the report and writes it atomically. Store
// outages are retryable; anything else would fail the same way again.
func (w *ExportWorker) HandleExportRequested(ctx context.Context, msg *amqp.ExportRequestedMessage) error {
	w.logger.InfoContext(ctx, "Processing export request",
		log.FieldJobID, msg.JobID,
		log.FieldUserID, msg.UserID,
		log.FieldKindFilter, string(msg.Options.KindFilter))

	if !core.ValidUserID(msg.UserID) {
		return fmt.Errorf("export %s for user %q: %w", msg.JobID, msg.UserID, ErrUnsafePath)
	}

	exp, err := w.exporter.Export(ctx, services.RequestFromMessage(msg), msg.Options)
	if err != nil {
		if errors.Is(err, services.ErrStoreUnavailable) {
			return amqp.Retryable(fmt.Errorf("export %s: %w", msg.JobID, err))
		}
		return fmt.Errorf("export %s: %w", msg.JobID, err)
	}

	path, err := w.Path(msg, exp.FileName())
	if err != nil {
		return err
	}
	if err := writeFile(path, exp.PDF); err != nil {
		return amqp.Retryable(fmt.Errorf("write export %s: %w", msg.JobID, err))
	}

	w.logger.InfoContext(ctx, "Export written",
		log.FieldJobID, msg.JobID,
		log.FieldFileName, path,
		log.FieldPages, exp.Document.PageCount(),
		log.FieldBytes, len(exp.PDF))
	return nil
}

// writeFile writes through a temp file so readers never see a partial PDF.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
