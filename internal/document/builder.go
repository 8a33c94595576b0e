package document

import (
	"time"

	"financas/internal/core"
	"financas/internal/report"
)

// Input is everything one export needs. Transactions is the working set
// already filtered by Criteria; Summary is its aggregate.
type Input struct {
	Transactions []core.Transaction
	Summary      core.Summary
	Criteria     report.Criteria
	Options      Options
	UserLabel    string
	GeneratedAt  time.Time
}

// Build lays out a complete report. Any section failure fails the whole
// export; a partial document is never returned.
func Build(in Input) (*Document, error) {
	return BuildWithGeometry(in, A4)
}

func BuildWithGeometry(in Input, geo Geometry) (*Document, error) {
	opts := in.Options
	if opts.KindFilter == "" {
		opts.KindFilter = KindAll
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	// private copy narrowed to the export kind
	txs := report.ByKind(in.Transactions, opts.KindFilter.Kind())
	narrowed := report.Aggregate(txs)

	stamp := Timestamp(in.GeneratedAt)
	layout := NewLayout(geo, FooterHook(geo, stamp))
	header := HeaderChunk(in.UserLabel, stamp, PeriodLabel(in.Criteria), opts.KindFilter.Label())
	if err := layout.Begin(header); err != nil {
		return nil, err
	}

	var sections []Section
	if opts.IncludeSummary {
		sections = append(sections, SummarySection(narrowed, opts.KindFilter))
		if s, ok := CategorySection(narrowed, opts.KindFilter); ok {
			sections = append(sections, s)
		}
	}
	if opts.IncludeCharts {
		sections = append(sections, DistributionSection(in.Summary.Chart(), opts.KindFilter))
	}
	if opts.IncludeDetails {
		if len(txs) > 0 {
			s, err := DetailSection(txs)
			if err != nil {
				return nil, err
			}
			sections = append(sections, s)
		} else {
			sections = append(sections, EmptySection())
		}
	}

	names := make([]string, 0, len(sections))
	for _, s := range sections {
		if err := layout.Place(s); err != nil {
			return nil, err
		}
		names = append(names, s.Name)
	}

	pages, err := layout.Finish()
	if err != nil {
		return nil, err
	}
	return &Document{
		FileName:    FileName(opts.KindFilter, in.GeneratedAt),
		Title:       Title,
		GeneratedAt: in.GeneratedAt,
		Geometry:    geo,
		Sections:    names,
		Pages:       pages,
	}, nil
}
