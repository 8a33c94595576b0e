package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/document"
	"financas/internal/log"
	"financas/internal/services"
	"financas/internal/store/memory"
)

var fixedNow = time.Date(2024, 3, 20, 14, 5, 9, 0, time.UTC)

func date(y, m, d int) *core.Date {
	v := core.NewDate(y, m, d)
	return &v
}

func seedStore() *memory.Store {
	return memory.New(
		[]core.Category{
			{ID: "1", Name: "Salário", UserID: "u1"},
			{ID: "2", Name: "Mercado", Tags: []string{"casa"}, UserID: "u1"},
		},
		[]core.Transaction{
			{ID: 1, Kind: core.Income, Amount: core.MoneyFromCents(100000), Date: date(2024, 3, 5), Establishment: "Empresa X", CategoryID: "1", UserID: "u1"},
			{ID: 2, Kind: core.Expense, Amount: core.MoneyFromCents(25050), Date: date(2024, 3, 10), Establishment: "Padaria Pão", CategoryID: "2", UserID: "u1"},
			{ID: 3, Kind: core.Expense, Amount: core.MoneyFromCents(8000), Date: date(2024, 2, 10), Establishment: "Farmácia", CategoryID: "2", UserID: "u1"},
			{ID: 4, Kind: core.Expense, Amount: core.MoneyFromCents(999), Date: date(2024, 3, 11), Establishment: "Outro", UserID: "u2"},
		},
	)
}

type recordingPublisher struct {
	msgs []*amqp.ExportRequestedMessage
	err  error
}

func (p *recordingPublisher) PublishExportRequested(_ context.Context, msg *amqp.ExportRequestedMessage) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func quietLogger() *log.Logger {
	return log.New(log.Config{Output: &bytes.Buffer{}})
}

func newTestServer(t *testing.T, api ReportAPI, opts Options) *Server {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	s := NewServer(":0", api, opts)
	t.Cleanup(func() { s.limiter.Stop() })
	return s
}

func newReportAPI(p services.ExportPublisher) *services.ReportService {
	svc := services.NewReportService(seedStore(), p, quietLogger())
	return svc.WithClock(func() time.Time { return fixedNow })
}

func do(t *testing.T, s *Server, method, target, user string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if user != "" {
		req.Header.Set(UserIDHeader, user)
		req.Header.Set(UserLabelHeader, "Ana")
	}
	rr := httptest.NewRecorder()
	s.Handler.ServeHTTP(rr, req)
	return rr
}

type txResponse struct {
	Criteria struct {
		Period    string `json:"period"`
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
		Search    string `json:"search"`
	} `json:"criteria"`
	Transactions []struct {
		ID       int64  `json:"id"`
		Date     string `json:"date"`
		Amount   string `json:"amount"`
		Kind     string `json:"kind"`
		Category string `json:"category"`
	} `json:"transactions"`
	Totals struct {
		TotalIncome  string `json:"totalIncome"`
		TotalExpense string `json:"totalExpense"`
		NetBalance   string `json:"netBalance"`
		Count        int    `json:"count"`
	} `json:"totals"`
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
}

func TestTransactions(t *testing.T) {
	s := newTestServer(t, newReportAPI(nil), Options{})

	rr := do(t, s, http.MethodGet, "/api/transactions", "u1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var got txResponse
	decode(t, rr, &got)
	if got.Criteria.Period != "month" || got.Criteria.StartDate != "2024-03-01" || got.Criteria.EndDate != "2024-03-31" {
		t.Fatalf("unexpected criteria %+v", got.Criteria)
	}
	if len(got.Transactions) != 2 {
		t.Fatalf("expected 2 transactions in March, got %d", len(got.Transactions))
	}
	if got.Totals.TotalIncome != "1000.00" || got.Totals.TotalExpense != "250.50" || got.Totals.NetBalance != "749.50" || got.Totals.Count != 2 {
		t.Fatalf("unexpected totals %+v", got.Totals)
	}
	for _, tx := range got.Transactions {
		if tx.ID == 2 && tx.Category != "Mercado" {
			t.Fatalf("expected resolved category, got %q", tx.Category)
		}
	}
}

func TestTransactions_SearchAndKind(t *testing.T) {
	s := newTestServer(t, newReportAPI(nil), Options{})

	tests := []struct {
		name  string
		query string
		ids   []int64
	}{
		{"case-insensitive search", "?search=PADARIA", []int64{2}},
		{"kind filter", "?kind=income", []int64{1}},
		{"custom range", "?period=custom&startDate=2024-02-01&endDate=2024-02-29", []int64{3}},
		{"year", "?period=year", []int64{2, 3, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, s, http.MethodGet, "/api/transactions"+tt.query, "u1", "")
			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
			}
			var got txResponse
			decode(t, rr, &got)
			if len(got.Transactions) != len(tt.ids) {
				t.Fatalf("expected ids %v, got %+v", tt.ids, got.Transactions)
			}
			seen := map[int64]bool{}
			for _, tx := range got.Transactions {
				seen[tx.ID] = true
			}
			for _, id := range tt.ids {
				if !seen[id] {
					t.Fatalf("missing id %d in %+v", id, got.Transactions)
				}
			}
		})
	}
}

func TestTransactions_BadRequest(t *testing.T) {
	s := newTestServer(t, newReportAPI(nil), Options{})
	for _, q := range []string{
		"?period=week",
		"?period=month&startDate=2024-01-01",
		"?period=custom&startDate=2024-03-10&endDate=2024-03-01",
		"?period=custom&startDate=10/03/2024",
		"?kind=transfer",
	} {
		rr := do(t, s, http.MethodGet, "/api/transactions"+q, "u1", "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, rr.Code)
		}
		var body ErrorBody
		decode(t, rr, &body)
		if body.Error == "" {
			t.Errorf("%s: expected error message", q)
		}
	}
}

func TestRequiresUserIdentity(t *testing.T) {
	s := newTestServer(t, newReportAPI(nil), Options{})
	for _, user := range []string{"", "../etc", "..", ".", `a\b`, strings.Repeat("x", 129)} {
		rr := do(t, s, http.MethodGet, "/api/categories", user, "")
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("user %q: expected 401, got %d", user, rr.Code)
		}
	}
	// health endpoints stay open
	if rr := do(t, s, http.MethodGet, "/healthz", "", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected healthz 200, got %d", rr.Code)
	}
}

func TestSummary(t *testing.T) {
	s := newTestServer(t, newReportAPI(nil), Options{})
	rr := do(t, s, http.MethodGet, "/api/reports/summary?period=year", "u1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var got struct {
		Summary struct {
			TotalExpense string `json:"totalExpense"`
			Categories   []struct {
				Name    string `json:"name"`
				Expense string `json:"expense"`
			} `json:"categories"`
			Chart []struct {
				Name  string `json:"name"`
				Value string `json:"value"`
			} `json:"chart"`
		} `json:"summary"`
	}
	decode(t, rr, &got)
	if got.Summary.TotalExpense != "330.50" {
		t.Fatalf("unexpected expense total %s", got.Summary.TotalExpense)
	}
	if len(got.Summary.Categories) != 2 || got.Summary.Categories[0].Name != "Mercado" || got.Summary.Categories[0].Expense != "330.50" {
		t.Fatalf("unexpected categories %+v", got.Summary.Categories)
	}
	if len(got.Summary.Chart) != 2 || got.Summary.Chart[0].Name != core.ChartIncome || got.Summary.Chart[1].Value != "330.50" {
		t.Fatalf("unexpected chart %+v", got.Summary.Chart)
	}
}

func TestCategories(t *testing.T) {
	s := newTestServer(t, newReportAPI(nil), Options{})
	rr := do(t, s, http.MethodGet, "/api/categories", "u1", "")
	var got []CategoryDTO
	decode(t, rr, &got)
	if len(got) != 2 || got[0].Name != "Mercado" || got[1].Name != "Salário" {
		t.Fatalf("unexpected categories %+v", got)
	}
	if got[1].Tags == nil {
		t.Fatal("tags should encode as an empty list")
	}
}

func TestExport_PDF(t *testing.T) {
	s := newTestServer(t, newReportAPI(nil), Options{})
	rr := do(t, s, http.MethodPost, "/api/reports/export", "u1", `{"kindFilter":"expense","includeCharts":false}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type %q", ct)
	}
	want := `attachment; filename=relatorio-financeiro-despesa-2024-03-20.pdf`
	if got := rr.Header().Get("Content-Disposition"); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")) {
		t.Fatal("expected a PDF body")
	}
}

func TestExport_InvalidOptions(t *testing.T) {
	s := newTestServer(t, newReportAPI(nil), Options{})
	for _, body := range []string{`{"kindFilter":"transfer"}`, `{"includeDetails":"maybe"}`, `{"period":"week"}`, `{broken`} {
		rr := do(t, s, http.MethodPost, "/api/reports/export", "u1", body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, rr.Code)
		}
	}
}

func TestExport_RateLimitedPerUser(t *testing.T) {
	s := newTestServer(t, newReportAPI(nil), Options{ExportsPerMinute: 1})
	if rr := do(t, s, http.MethodPost, "/api/reports/export", "u1", `{}`); rr.Code != http.StatusOK {
		t.Fatalf("first export: expected 200, got %d", rr.Code)
	}
	if rr := do(t, s, http.MethodPost, "/api/reports/export", "u1", `{}`); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second export: expected 429, got %d", rr.Code)
	}
	if rr := do(t, s, http.MethodPost, "/api/reports/export", "u2", `{}`); rr.Code != http.StatusOK {
		t.Fatalf("other user: expected 200, got %d", rr.Code)
	}
}

func TestRequestExport(t *testing.T) {
	pub := &recordingPublisher{}
	s := newTestServer(t, newReportAPI(pub), Options{})

	rr := do(t, s, http.MethodPost, "/api/reports/exports", "u1", `{"period":"custom","startDate":"2024-01-01","kindFilter":"income"}`)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rr.Code, rr.Body.String())
	}
	var got ExportQueuedResponse
	decode(t, rr, &got)
	if len(pub.msgs) != 1 || got.JobID != pub.msgs[0].JobID || got.Status != "queued" {
		t.Fatalf("unexpected response %+v for %d messages", got, len(pub.msgs))
	}
	msg := pub.msgs[0]
	if msg.UserID != "u1" || msg.UserLabel != "Ana" || msg.StartDate != "2024-01-01" || msg.Options.KindFilter != document.KindIncome {
		t.Fatalf("unexpected message %+v", msg)
	}

	pub.err = amqp.ErrCircuitOpen
	if rr := do(t, s, http.MethodPost, "/api/reports/exports", "u1", `{}`); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when the queue is down, got %d", rr.Code)
	}
}

func TestRequestExport_Disabled(t *testing.T) {
	s := newTestServer(t, newReportAPI(nil), Options{})
	rr := do(t, s, http.MethodPost, "/api/reports/exports", "u1", `{}`)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}

type failingAPI struct{ err error }

func (f failingAPI) Snapshot(context.Context, services.ReportRequest) (*services.Snapshot, error) {
	return nil, f.err
}

func (f failingAPI) Export(context.Context, services.ReportRequest, document.Options) (*services.Export, error) {
	return nil, f.err
}

func (f failingAPI) RequestExport(context.Context, services.ReportRequest, document.Options) (string, error) {
	return "", f.err
}

func (f failingAPI) Categories(context.Context, string) ([]core.Category, error) {
	return nil, f.err
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"store down", errors.Join(services.ErrStoreUnavailable, errors.New("dial tcp: refused")), http.StatusServiceUnavailable},
		{"malformed record", document.ErrMalformedSection, http.StatusUnprocessableEntity},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, failingAPI{err: tt.err}, Options{})
			rr := do(t, s, http.MethodPost, "/api/reports/export", "u1", `{}`)
			if rr.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rr.Code)
			}
			if strings.Contains(rr.Body.String(), "dial tcp") || strings.Contains(rr.Body.String(), "boom") {
				t.Fatalf("internal error leaked: %s", rr.Body.String())
			}
		})
	}
}

func TestReadiness(t *testing.T) {
	healthy := newTestServer(t, newReportAPI(nil), Options{Ready: map[string]ReadinessCheck{
		"store": func(context.Context) error { return nil },
	}})
	if rr := do(t, healthy, http.MethodGet, "/readyz", "", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected ready, got %d", rr.Code)
	}

	broken := newTestServer(t, newReportAPI(nil), Options{Ready: map[string]ReadinessCheck{
		"store": func(context.Context) error { return errors.New("unreachable") },
	}})
	rr := do(t, broken, http.MethodGet, "/readyz", "", "")
	if rr.Code != http.StatusServiceUnavailable || !strings.Contains(rr.Body.String(), `"store":"failed"`) {
		t.Fatalf("expected not ready, got %d %s", rr.Code, rr.Body.String())
	}
}

func TestRoutingErrors(t *testing.T) {
	s := newTestServer(t, newReportAPI(nil), Options{})
	tests := []struct {
		method, target string
		want           int
	}{
		{http.MethodGet, "/api/reports/export", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/reports/exports", http.StatusMethodNotAllowed},
		{http.MethodDelete, "/api/transactions", http.StatusMethodNotAllowed},
		{http.MethodPost, "/healthz", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/nope", http.StatusNotFound},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		rr := do(t, s, tt.method, tt.target, "u1", "")
		if rr.Code != tt.want {
			t.Errorf("%s %s: expected %d, got %d", tt.method, tt.target, tt.want, rr.Code)
			continue
		}
		var body ErrorBody
		decode(t, rr, &body)
		if body.Error == "" {
			t.Errorf("%s %s: expected JSON error body", tt.method, tt.target)
		}
	}
}
