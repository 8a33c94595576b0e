package http

import (
	"time"

	"financas/internal/core"
	"financas/internal/report"
	"financas/internal/services"
)

// CriteriaDTO echoes the resolved selection back to the caller.
type CriteriaDTO struct {
	Period     string `json:"period"`
	StartDate  string `json:"startDate,omitempty"`
	EndDate    string `json:"endDate,omitempty"`
	Kind       string `json:"kind,omitempty"`
	CategoryID string `json:"categoryId,omitempty"`
	Search     string `json:"search,omitempty"`
}

type TransactionDTO struct {
	ID            int64      `json:"id"`
	Date          string     `json:"date,omitempty"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	Establishment string     `json:"establishment"`
	Amount        core.Money `json:"amount"`
	Details       string     `json:"details,omitempty"`
	Kind          core.Kind  `json:"kind"`
	CategoryID    string     `json:"categoryId,omitempty"`
	Category      string     `json:"category"`
}

type CategoryTotalsDTO struct {
	Name    string     `json:"name"`
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
	Net     core.Money `json:"net"`
}

type ChartPointDTO struct {
	Name  string     `json:"name"`
	Kind  core.Kind  `json:"kind"`
	Value core.Money `json:"value"`
}

type SummaryDTO struct {
	TotalIncome  core.Money          `json:"totalIncome"`
	TotalExpense core.Money          `json:"totalExpense"`
	NetBalance   core.Money          `json:"netBalance"`
	Count        int                 `json:"count"`
	Categories   []CategoryTotalsDTO `json:"categories"`
	Chart        []ChartPointDTO     `json:"chart"`
}

type TransactionsResponse struct {
	Criteria     CriteriaDTO      `json:"criteria"`
	Transactions []TransactionDTO `json:"transactions"`
	Totals       SummaryDTO       `json:"totals"`
}

type SummaryResponse struct {
	Criteria CriteriaDTO `json:"criteria"`
	Summary  SummaryDTO  `json:"summary"`
}

type CategoryDTO struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

type ExportQueuedResponse struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

func criteriaDTO(c report.Criteria) CriteriaDTO {
	return CriteriaDTO{
		Period:     string(c.Period()),
		StartDate:  isoDate(c.Start()),
		EndDate:    isoDate(c.End()),
		Kind:       string(c.Kind()),
		CategoryID: c.CategoryID(),
		Search:     c.Search(),
	}
}

func transactionDTOs(txs []core.Transaction) []TransactionDTO {
	out := make([]TransactionDTO, len(txs))
	for i, t := range txs {
		dto := TransactionDTO{
			ID:            t.ID,
			Date:          isoDate(t.Date),
			Establishment: t.Establishment,
			Amount:        t.Amount,
			Details:       t.Details,
			Kind:          t.Kind,
			CategoryID:    t.CategoryID,
			Category:      t.DisplayCategory(),
		}
		if !t.CreatedAt.IsZero() {
			created := t.CreatedAt.UTC()
			dto.CreatedAt = &created
		}
		out[i] = dto
	}
	return out
}

func summaryDTO(s core.Summary) SummaryDTO {
	rows := report.CategoryRows(s, "")
	cats := make([]CategoryTotalsDTO, len(rows))
	for i, r := range rows {
		cats[i] = CategoryTotalsDTO{Name: r.Name, Income: r.Income, Expense: r.Expense, Net: r.Net}
	}
	points := s.Chart()
	chart := make([]ChartPointDTO, len(points))
	for i, p := range points {
		chart[i] = ChartPointDTO{Name: p.Name, Kind: p.Kind, Value: p.Value}
	}
	return SummaryDTO{
		TotalIncome:  s.TotalIncome,
		TotalExpense: s.TotalExpense,
		NetBalance:   s.NetBalance(),
		Count:        s.Count,
		Categories:   cats,
		Chart:        chart,
	}
}

func categoryDTOs(cats []core.Category) []CategoryDTO {
	out := make([]CategoryDTO, len(cats))
	for i, c := range cats {
		tags := c.Tags
		if tags == nil {
			tags = []string{}
		}
		out[i] = CategoryDTO{ID: c.ID, Name: c.Name, Tags: tags}
	}
	return out
}

func snapshotTransactions(s *services.Snapshot) TransactionsResponse {
	return TransactionsResponse{
		Criteria:     criteriaDTO(s.Criteria),
		Transactions: transactionDTOs(s.Transactions),
		Totals:       summaryDTO(s.Summary),
	}
}
