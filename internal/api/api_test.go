package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/jpfamus/famus-report-analysis/backend-go/internal/domain"
	"github.com/jpfamus/famus-report-analysis/backend-go/internal/service"
)

type stubRepo struct {
	summaries []domain.LotSummary
}

func (s *stubRepo) SaveLotSummaries(ctx context.Context, season string, summaries []domain.LotSummary) error {
	return nil
}

func (s *stubRepo) SaveLedger(ctx context.Context, season string, entries []domain.LedgerEntry) error {
	return nil
}

func (s *stubRepo) SaveDiscrepancies(ctx context.Context, season string, discrepancies []domain.Discrepancy) error {
	return nil
}

func (s *stubRepo) GetSeasons(ctx context.Context) ([]string, error) {
	return []string{"2024-2025"}, nil
}

func (s *stubRepo) GetLotSummaries(ctx context.Context, season, exporter string) ([]domain.LotSummary, error) {
	if exporter == "" {
		return s.summaries, nil
	}
	var filtered []domain.LotSummary
	for _, sum := range s.summaries {
		if sum.Exporter == exporter {
			filtered = append(filtered, sum)
		}
	}
	return filtered, nil
}

func (s *stubRepo) GetLedger(ctx context.Context, season, exporter, lotID string) ([]domain.LedgerEntry, error) {
	return nil, nil
}

func (s *stubRepo) GetCurrentInventory(ctx context.Context, season string) ([]domain.LedgerState, error) {
	return nil, nil
}

func (s *stubRepo) GetDiscrepancies(ctx context.Context, season string) ([]domain.Discrepancy, error) {
	return []domain.Discrepancy{
		{Metric: "sales_quantity", Tolerance: 0, Consistent: true},
		{Metric: "sales_amount", Tolerance: 0.01, Consistent: false},
	}, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := &stubRepo{
		summaries: []domain.LotSummary{
			{Exporter: "Quintay", LotID: "L1", SalesAmount: 600, FOBLiquidation: 550},
			{Exporter: "Agrolatina", LotID: "L2", SalesAmount: 300, FOBLiquidation: 280},
		},
	}
	return NewRouter(&Services{
		ReportService: service.NewReportService(repo, nil),
	}, nil)
}

func TestGetSeasons(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/seasons", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body struct {
		Seasons []string `json:"seasons"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Seasons) != 1 || body.Seasons[0] != "2024-2025" {
		t.Errorf("seasons = %v, want [2024-2025]", body.Seasons)
	}
}

func TestGetLotSummariesFiltersByExporter(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/2024-2025/summaries?exporter=Quintay", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body struct {
		Count     int                 `json:"count"`
		Summaries []domain.LotSummary `json:"summaries"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 1 {
		t.Fatalf("count = %d, want 1", body.Count)
	}
	if body.Summaries[0].LotID != "L1" {
		t.Errorf("lot = %q, want L1", body.Summaries[0].LotID)
	}
}

func TestGetDiscrepanciesReportsOverallConsistency(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/2024-2025/discrepancies", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body struct {
		Consistent    bool                 `json:"consistent"`
		Discrepancies []domain.Discrepancy `json:"discrepancies"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Consistent {
		t.Error("consistent = true, want false with one inconsistent metric")
	}
	if len(body.Discrepancies) != 2 {
		t.Errorf("got %d discrepancies, want 2", len(body.Discrepancies))
	}
}
