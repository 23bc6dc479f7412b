package store

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mhazlan/ordready/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s := New(db)
	if err := s.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func sampleResult(id string, generatedAt time.Time) models.ForecastResult {
	return models.ForecastResult{
		ForecastID:  id,
		GeneratedAt: generatedAt,
		Timeframe: models.Timeframe{
			CurrentReadiness: 72.5,
			Projections: []models.ReadinessProjection{
				{Days: 30, Readiness: 72.0, ConfidenceInterval: [2]float64{67, 77}, RiskLevel: models.RiskMedium},
				{Days: 90, Readiness: 71.0, ConfidenceInterval: [2]float64{66, 76}, RiskLevel: models.RiskMedium},
			},
		},
		CriticalAlerts: []models.CriticalAlert{
			{
				Category:             "General Ordnance",
				ExpectedShortageDate: "2026-03-01",
				Severity:             models.SeverityMedium,
				CurrentStockLevel:    72,
				ProjectedNeed:        80,
			},
		},
		ProcurementRecommendations: []models.ProcurementRecommendation{},
		MitigationStrategies:       []models.MitigationStrategy{},
		Metadata:                   models.ForecastMetadata{GeneratedAs: models.GeneratedAsFallback},
	}
}

func TestMigrateIdempotent(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	if err := s.Migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestSaveAndGetForecast(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)

	generatedAt := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	result := sampleResult("fcst_20260115_120000", generatedAt)
	input := models.ForecastingInput{
		CurrentReadiness: 72.5,
		LeadTimes: []models.SupplyChainProfile{
			{Category: "Missile", AverageLeadTimeDays: 45, SupplierReliability: 85},
		},
	}

	if err := s.SaveForecast(input, result); err != nil {
		t.Fatalf("save: %v", err)
	}

	gotResult, gotInput, err := s.GetForecast(result.ForecastID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if gotResult == nil || gotInput == nil {
		t.Fatal("expected stored forecast, got nil")
	}
	if gotResult.ForecastID != result.ForecastID {
		t.Errorf("forecast id = %q, want %q", gotResult.ForecastID, result.ForecastID)
	}
	if gotResult.Timeframe.CurrentReadiness != 72.5 {
		t.Errorf("current readiness = %v, want 72.5", gotResult.Timeframe.CurrentReadiness)
	}
	if len(gotResult.Timeframe.Projections) != 2 {
		t.Errorf("projections = %d, want 2", len(gotResult.Timeframe.Projections))
	}
	if len(gotResult.CriticalAlerts) != 1 {
		t.Errorf("alerts = %d, want 1", len(gotResult.CriticalAlerts))
	}
	if gotInput.LeadTimes[0].Category != "Missile" {
		t.Errorf("input lead time category = %q, want Missile", gotInput.LeadTimes[0].Category)
	}
}

func TestGetForecastUnknown(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)

	result, input, err := s.GetForecast("fcst_missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if result != nil || input != nil {
		t.Error("unknown forecast should return nil without error")
	}
}

func TestSaveForecastUpsert(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)

	generatedAt := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	result := sampleResult("fcst_dup", generatedAt)
	if err := s.SaveForecast(models.ForecastingInput{}, result); err != nil {
		t.Fatalf("save: %v", err)
	}

	result.Timeframe.CurrentReadiness = 90
	if err := s.SaveForecast(models.ForecastingInput{}, result); err != nil {
		t.Fatalf("resave: %v", err)
	}

	got, _, err := s.GetForecast("fcst_dup")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Timeframe.CurrentReadiness != 90 {
		t.Errorf("current readiness = %v, want updated value 90", got.Timeframe.CurrentReadiness)
	}
}

func TestListForecasts(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)

	base := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	ids := []string{"fcst_a", "fcst_b", "fcst_c"}
	for i, id := range ids {
		result := sampleResult(id, base.AddDate(0, 0, i))
		if err := s.SaveForecast(models.ForecastingInput{}, result); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	summaries, err := s.ListForecasts(10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("summaries = %d, want 3", len(summaries))
	}
	// Newest first.
	if summaries[0].ForecastID != "fcst_c" || summaries[2].ForecastID != "fcst_a" {
		t.Errorf("unexpected order: %s, %s, %s",
			summaries[0].ForecastID, summaries[1].ForecastID, summaries[2].ForecastID)
	}
	if summaries[0].CriticalAlertsCount != 1 {
		t.Errorf("alerts count = %d, want 1", summaries[0].CriticalAlertsCount)
	}
	if summaries[0].ProjectedReadiness == nil || *summaries[0].ProjectedReadiness != 71.0 {
		t.Errorf("projected readiness = %v, want 71", summaries[0].ProjectedReadiness)
	}
	if summaries[0].AccuracyScore != nil {
		t.Errorf("accuracy score should be nil before validation, got %v", *summaries[0].AccuracyScore)
	}

	page, err := s.ListForecasts(1, 1)
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(page) != 1 || page[0].ForecastID != "fcst_b" {
		t.Errorf("unexpected page: %+v", page)
	}
}

func TestUpdateAccuracyAndHistory(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)

	base := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	scores := map[string]float64{"fcst_old": 0.8, "fcst_new": 0.9}
	for i, id := range []string{"fcst_old", "fcst_new"} {
		result := sampleResult(id, base.AddDate(0, 0, i))
		if err := s.SaveForecast(models.ForecastingInput{}, result); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
		if err := s.UpdateAccuracy(id, scores[id], base.AddDate(0, 1, 0)); err != nil {
			t.Fatalf("update accuracy %s: %v", id, err)
		}
	}

	history, err := s.AccuracyHistory()
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	// Ordered by forecast generation time, oldest first.
	if len(history) != 2 || history[0] != 0.8 || history[1] != 0.9 {
		t.Errorf("history = %v, want [0.8 0.9]", history)
	}

	summaries, err := s.ListForecasts(10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if summaries[0].AccuracyScore == nil || *summaries[0].AccuracyScore != 0.9 {
		t.Errorf("accuracy score = %v, want 0.9", summaries[0].AccuracyScore)
	}
}

func TestActiveAlerts(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)

	generatedAt := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	result := sampleResult("fcst_alerts", generatedAt)
	result.CriticalAlerts = append(result.CriticalAlerts, models.CriticalAlert{
		Category:             "Torpedo",
		ExpectedShortageDate: "2026-04-01",
		Severity:             models.SeverityCritical,
	})
	if err := s.SaveForecast(models.ForecastingInput{}, result); err != nil {
		t.Fatalf("save: %v", err)
	}

	all, err := s.ActiveAlerts("", "")
	if err != nil {
		t.Fatalf("active alerts: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("alerts = %d, want 2", len(all))
	}
	for _, a := range all {
		if a.Status != "active" {
			t.Errorf("alert %d status = %q, want active", a.ID, a.Status)
		}
	}

	critical, err := s.ActiveAlerts("critical", "")
	if err != nil {
		t.Fatalf("filter severity: %v", err)
	}
	if len(critical) != 1 || critical[0].Category != "Torpedo" {
		t.Errorf("unexpected severity filter result: %+v", critical)
	}

	general, err := s.ActiveAlerts("", "General Ordnance")
	if err != nil {
		t.Fatalf("filter category: %v", err)
	}
	if len(general) != 1 || general[0].Severity != "medium" {
		t.Errorf("unexpected category filter result: %+v", general)
	}

	if err := s.ResolveAlert(critical[0].ID, "resolved", generatedAt.AddDate(0, 0, 1)); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	remaining, err := s.ActiveAlerts("", "")
	if err != nil {
		t.Fatalf("active alerts after resolve: %v", err)
	}
	if len(remaining) != 1 {
		t.Errorf("alerts after resolve = %d, want 1", len(remaining))
	}
}

func TestAccuracyRecordsRoundtrip(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)

	records := []models.AccuracyRecord{
		{ForecastID: "fcst_r", HorizonDays: 60, Predicted: 84.0, Actual: 90.0, ErrorPct: 6.0 / 90.0},
		{ForecastID: "fcst_r", HorizonDays: 30, Predicted: 84.5, Actual: 80.0, ErrorPct: 0.05625, WithinConfidenceInterval: true},
	}
	if err := s.SaveAccuracyRecords(records); err != nil {
		t.Fatalf("save records: %v", err)
	}

	got, err := s.AccuracyRecords("fcst_r")
	if err != nil {
		t.Fatalf("get records: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("records = %d, want 2", len(got))
	}
	// Ordered by horizon.
	if got[0].HorizonDays != 30 || got[1].HorizonDays != 60 {
		t.Errorf("unexpected order: %d, %d", got[0].HorizonDays, got[1].HorizonDays)
	}
	if !got[0].WithinConfidenceInterval || got[1].WithinConfidenceInterval {
		t.Errorf("interval flags lost: %+v", got)
	}

	// Re-validation overwrites the same horizon.
	records[0].Actual = 85.0
	if err := s.SaveAccuracyRecords(records[:1]); err != nil {
		t.Fatalf("upsert record: %v", err)
	}
	got, err = s.AccuracyRecords("fcst_r")
	if err != nil {
		t.Fatalf("get records: %v", err)
	}
	if got[1].Actual != 85.0 {
		t.Errorf("60d actual = %v, want updated 85", got[1].Actual)
	}
}
