package services_test

import (
	"context"
	"testing"

	"unmix/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithJobID(ctx, "job-123")
	ctx = services.WithStage(ctx, "separate")

	if id, ok := services.JobIDFromContext(ctx); !ok || id != "job-123" {
		t.Fatalf("unexpected job id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "separate" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
}
