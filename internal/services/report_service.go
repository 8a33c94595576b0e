package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/document"
	"financas/internal/document/pdf"
	"financas/internal/log"
	"financas/internal/report"
	"financas/internal/store"
)

var (
	// ErrStoreUnavailable wraps any failure to read the snapshot. Nothing
	// downstream runs when it is returned.
	ErrStoreUnavailable = errors.New("transaction store unavailable")
	ErrExportsDisabled  = errors.New("asynchronous exports are not configured")
	ErrInvalidRequest   = errors.New("invalid report request")
)

// ExportPublisher hands export jobs to a worker queue.
type ExportPublisher interface {
	PublishExportRequested(ctx context.Context, msg *amqp.ExportRequestedMessage) error
}

// ReportRequest is the raw selection a caller makes. Dates are optional
// and only honoured for the custom period.
type ReportRequest struct {
	UserID     string
	UserLabel  string
	Period     string
	StartDate  string
	EndDate    string
	Kind       string
	CategoryID string
	Search     string
}

// Criteria derives the immutable criteria for the request at now.
func (r ReportRequest) Criteria(now time.Time) (report.Criteria, error) {
	if r.UserID == "" {
		return report.Criteria{}, fmt.Errorf("%w: missing user", ErrInvalidRequest)
	}
	period, err := report.ParsePeriod(r.Period)
	if err != nil {
		return report.Criteria{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	c, err := report.NewCriteria(period, now)
	if err != nil {
		return report.Criteria{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if r.StartDate != "" || r.EndDate != "" {
		start, err := core.ParseOptionalDate(r.StartDate)
		if err != nil {
			return report.Criteria{}, fmt.Errorf("%w: start date: %w", ErrInvalidRequest, err)
		}
		end, err := core.ParseOptionalDate(r.EndDate)
		if err != nil {
			return report.Criteria{}, fmt.Errorf("%w: end date: %w", ErrInvalidRequest, err)
		}
		if c, err = c.WithRange(start, end); err != nil {
			return report.Criteria{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
	}
	if r.Kind != "" {
		kind, err := core.ParseKind(r.Kind)
		if err != nil {
			return report.Criteria{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		if c, err = c.WithKind(kind); err != nil {
			return report.Criteria{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
	}
	return c.WithCategory(r.CategoryID).WithSearch(r.Search), nil
}

// Snapshot is the filtered working set and its aggregate.
type Snapshot struct {
	Criteria     report.Criteria
	Transactions []core.Transaction
	Summary      core.Summary
}

// Export is a rendered report.
type Export struct {
	Document *document.Document
	PDF      []byte
}

func (e *Export) FileName() string {
	return e.Document.FileName
}

// ReportService runs the reporting pipeline against a store.
type ReportService struct {
	reader    store.Reader
	publisher ExportPublisher
	logger    *log.Logger
	now       func() time.Time
}

// NewReportService builds a service. publisher may be nil, which disables
// RequestExport.
func NewReportService(reader store.Reader, publisher ExportPublisher, logger *log.Logger) *ReportService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ReportService{
		reader:    reader,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentReport),
		now:       time.Now,
	}
}

// WithClock replaces the time source used to resolve periods and stamp
// documents.
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

// Snapshot reads transactions and categories concurrently, then filters
// and aggregates them. Both reads must succeed.
func (s *ReportService) Snapshot(ctx context.Context, req ReportRequest) (*Snapshot, error) {
	c, err := req.Criteria(s.now())
	if err != nil {
		return nil, err
	}
	return s.snapshot(ctx, req.UserID, c)
}

func (s *ReportService) snapshot(ctx context.Context, userID string, c report.Criteria) (*Snapshot, error) {
	var (
		txs  []core.Transaction
		cats []core.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.reader.ListTransactions(gctx, userID, store.QueryFor(c))
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		cats, err = s.reader.ListCategories(gctx, userID)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "Store read failed",
			log.FieldUserID, userID,
			log.FieldOperation, log.OpFetch,
			log.FieldError, err)
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	resolved := core.NewCategoryIndex(cats).Resolve(txs)
	filtered := report.Filter(resolved, c)
	return &Snapshot{
		Criteria:     c,
		Transactions: filtered,
		Summary:      report.Aggregate(filtered),
	}, nil
}

// Export runs the whole pipeline and renders the PDF. The establishment
// search never narrows an export.
func (s *ReportService) Export(ctx context.Context, req ReportRequest, opts document.Options) (*Export, error) {
	if opts.KindFilter == "" {
		opts.KindFilter = document.KindAll
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	req.Search = ""

	now := s.now()
	c, err := req.Criteria(now)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshot(ctx, req.UserID, c)
	if err != nil {
		return nil, err
	}

	label := req.UserLabel
	if label == "" {
		label = req.UserID
	}
	doc, err := document.Build(document.Input{
		Transactions: snap.Transactions,
		Summary:      snap.Summary,
		Criteria:     c,
		Options:      opts,
		UserLabel:    label,
		GeneratedAt:  now,
	})
	if err != nil {
		return nil, fmt.Errorf("build document: %w", err)
	}
	body, err := pdf.Render(doc)
	if err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}

	fields := log.NewFields().
		WithCriteria(req.UserID, string(c.Period()), dateString(c.Start()), dateString(c.End()), string(c.Kind()), c.CategoryID()).
		WithDocument(doc.FileName, doc.PageCount(), doc.Sections)
	fields[log.FieldKindFilter] = string(opts.KindFilter)
	fields[log.FieldTransactions] = len(snap.Transactions)
	fields[log.FieldBytes] = len(body)
	s.logger.InfoContext(ctx, "Report exported", fields.ToSlice()...)

	return &Export{Document: doc, PDF: body}, nil
}

// RequestExport validates the request and queues it for a worker,
// returning the job ID.
func (s *ReportService) RequestExport(ctx context.Context, req ReportRequest, opts document.Options) (string, error) {
	if s.publisher == nil {
		return "", ErrExportsDisabled
	}
	if opts.KindFilter == "" {
		opts.KindFilter = document.KindAll
	}
	if err := opts.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if _, err := req.Criteria(s.now()); err != nil {
		return "", err
	}

	msg := amqp.NewExportRequestedMessage(req.UserID, opts)
	msg.UserLabel = req.UserLabel
	msg.Period = req.Period
	msg.StartDate = req.StartDate
	msg.EndDate = req.EndDate
	msg.Kind = req.Kind
	msg.CategoryID = req.CategoryID

	if err := s.publisher.PublishExportRequested(ctx, msg); err != nil {
		return "", fmt.Errorf("queue export: %w", err)
	}
	s.logger.InfoContext(ctx, "Export queued",
		log.FieldJobID, msg.JobID,
		log.FieldUserID, req.UserID,
		log.FieldKindFilter, string(opts.KindFilter))
	return msg.JobID, nil
}

// RequestFromMessage rebuilds the request carried by a queued export.
func RequestFromMessage(msg *amqp.ExportRequestedMessage) ReportRequest {
	return ReportRequest{
		UserID:     msg.UserID,
		UserLabel:  msg.UserLabel,
		Period:     msg.Period,
		StartDate:  msg.StartDate,
		EndDate:    msg.EndDate,
		Kind:       msg.Kind,
		CategoryID: msg.CategoryID,
	}
}

// Categories lists the user's categories, wrapping store failures like
// Snapshot does.
func (s *ReportService) Categories(ctx context.Context, userID string) ([]core.Category, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: missing user", ErrInvalidRequest)
	}
	cats, err := s.reader.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	report.SortCategories(cats)
	return cats, nil
}

func dateString(d *core.Date) string {
	if d == nil {
		return ""
	}
	return d.ISO()
}
