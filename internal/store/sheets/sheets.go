// Package sheets reads transactions and categories from a Google
// spreadsheet laid out with one record per row.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"financas/internal/core"
	"financas/internal/store"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

var (
	_ store.TransactionReader = (*Client)(nil)
	_ store.CategoryReader    = (*Client)(nil)
)

const (
	DefaultTransactionsRange = "Transacoes!A2:I"
	DefaultCategoriesRange   = "Categorias!A2:D"
)

// Config selects the spreadsheet and where its records live.
type Config struct {
	SpreadsheetID     string
	TransactionsRange string
	CategoriesRange   string
	// CredentialsJSON takes precedence over CredentialsFile.
	CredentialsJSON string
	CredentialsFile string
}

// valueReader fetches a rectangular range of cell values.
type valueReader interface {
	Values(ctx context.Context, rng string) ([][]interface{}, error)
}

type Client struct {
	values            valueReader
	transactionsRange string
	categoriesRange   string
}

// New creates a read-only Sheets client using service account credentials.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(&serviceReader{svc: svc, spreadsheetID: cfg.SpreadsheetID}, cfg), nil
}

func newClient(values valueReader, cfg Config) *Client {
	c := &Client{
		values:            values,
		transactionsRange: strings.TrimSpace(cfg.TransactionsRange),
		categoriesRange:   strings.TrimSpace(cfg.CategoriesRange),
	}
	if c.transactionsRange == "" {
		c.transactionsRange = DefaultTransactionsRange
	}
	if c.categoriesRange == "" {
		c.categoriesRange = DefaultCategoriesRange
	}
	return c
}

func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", cfg.CredentialsFile)
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

type serviceReader struct {
	svc           *gsheet.Service
	spreadsheetID string
}

func (r *serviceReader) Values(ctx context.Context, rng string) ([][]interface{}, error) {
	resp, err := r.svc.Spreadsheets.Values.Get(r.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

func (c *Client) ListTransactions(ctx context.Context, userID string, q store.Query) ([]core.Transaction, error) {
	values, err := c.values.Values(ctx, c.transactionsRange)
	if err != nil {
		return nil, err
	}
	all, skipped := parseTransactions(values)
	if skipped > 0 {
		slog.WarnContext(ctx, "Skipped unparsable transaction rows", "range", c.transactionsRange, "skipped", skipped)
	}
	out := make([]core.Transaction, 0, len(all))
	for _, t := range all {
		if t.UserID == userID && q.Matches(t) {
			out = append(out, t)
		}
	}
	store.SortNewestFirst(out)
	return out, nil
}

func (c *Client) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	values, err := c.values.Values(ctx, c.categoriesRange)
	if err != nil {
		return nil, err
	}
	var out []core.Category
	for _, row := range values {
		cat, err := store.CategoryFromRow(padded(toStrings(row), 4))
		if err != nil || cat.UserID != userID {
			continue
		}
		out = append(out, cat)
	}
	return out, nil
}
