package runlog

import (
	"context"
	"testing"
	"time"
)

func TestRecordAndList(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := s.Record(ctx, Run{
			ProjectID:   "proj",
			StartedAt:   start.Add(time.Duration(i) * time.Hour),
			FinishedAt:  start.Add(time.Duration(i)*time.Hour + time.Minute),
			Status:      StatusCompleted,
			Total:       5,
			Indexed:     5,
			VectorCount: 12,
		})
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if _, err := s.Record(ctx, Run{
		ProjectID:  "other",
		StartedAt:  start,
		FinishedAt: start,
		Status:     StatusError,
		Error:      "boom",
	}); err != nil {
		t.Fatalf("Record other: %v", err)
	}

	runs, err := s.ListRuns(ctx, "proj", 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2 (limit)", len(runs))
	}
	if !runs[0].StartedAt.After(runs[1].StartedAt) {
		t.Errorf("runs not newest-first: %v, %v", runs[0].StartedAt, runs[1].StartedAt)
	}
	if runs[0].ID == "" {
		t.Error("run ID not generated")
	}
	if runs[0].VectorCount != 12 || runs[0].Status != StatusCompleted {
		t.Errorf("unexpected run: %+v", runs[0])
	}

	others, err := s.ListRuns(ctx, "other", 0)
	if err != nil {
		t.Fatalf("ListRuns other: %v", err)
	}
	if len(others) != 1 || others[0].Error != "boom" {
		t.Errorf("unexpected other runs: %+v", others)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer s.Close()

	if err := s.migrate(); err != nil {
		t.Errorf("second migrate failed: %v", err)
	}
}
