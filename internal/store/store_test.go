package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/cinelens/cinelens/internal/report"
)

// TestStoreIntegration runs against a real Postgres instance. Set
// CINELENS_TEST_DB to a connection string to enable it, e.g.
// postgres://localhost:5432/cinelens_test
func TestStoreIntegration(t *testing.T) {
	connStr := os.Getenv("CINELENS_TEST_DB")
	if connStr == "" {
		t.Skip("CINELENS_TEST_DB not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to connect to store: %v", err)
	}
	defer s.Close(ctx)
	defer s.Reset(ctx)

	r := &report.AnalysisReport{
		ID:         uuid.NewString(),
		Title:      "Night Run",
		Duration:   95.5,
		FrameCount: 2400,
		Actors:     []report.Actor{{Name: "Ana Reyes", Detections: 311}},
		ShotTypes:  report.Summary{"wide": 40, "close-up": 60},
	}

	if err := s.SaveAnalysis(ctx, r); err != nil {
		t.Fatalf("SaveAnalysis failed: %v", err)
	}
	// Saving the same ID again must not create a second row.
	if err := s.SaveAnalysis(ctx, r); err != nil {
		t.Fatalf("SaveAnalysis (re-run) failed: %v", err)
	}

	rows, err := s.ListAnalyses(ctx)
	if err != nil {
		t.Fatalf("ListAnalyses failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if rows[0].Title != "Night Run" || rows[0].ActorCount != 1 {
		t.Errorf("Unexpected row: %+v", rows[0])
	}

	got, err := s.GetReport(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if got == nil || got.ShotTypes["wide"] != 40 {
		t.Errorf("Stored report did not round-trip: %+v", got)
	}

	missing, err := s.GetReport(ctx, uuid.NewString())
	if err != nil {
		t.Fatalf("GetReport (missing) failed: %v", err)
	}
	if missing != nil {
		t.Error("Expected nil for unknown report ID")
	}
}
