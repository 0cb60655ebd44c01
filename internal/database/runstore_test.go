package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/nao1215/a11yscan/internal/model"
)

// setupTestStore opens a RunStore closed at the end of the test.
func setupTestStore(t *testing.T) *RunStore {
	t.Helper()

	rs, err := OpenRunStore(context.Background())
	if err != nil {
		t.Fatalf("failed to open run store: %v", err)
	}
	t.Cleanup(func() { _ = rs.Close() })
	return rs
}

func sampleFindings() []model.Finding {
	return []model.Finding{
		{SourceURL: "https://b.test/", Category: model.CategoryImageMissingAlt, TargetURL: "/x.jpg", ImageFilename: "x.jpg"},
		{SourceURL: "https://b.test/", Category: model.CategoryImageWithAlt, Details: `alt="logo"`, TargetURL: "/logo.png", ImageFilename: "logo.png"},
		{SourceURL: "https://a.test/", Category: model.CategoryInaccessibleLink, Details: `Non-descriptive link text: "click here"`, LinkText: "click here", TargetURL: "https://a.test/more"},
		{SourceURL: "https://a.test/", Category: model.CategoryTableInfo, Details: "Caption: No | Column headers: Yes | Row headers: No"},
		{SourceURL: "https://c.test/", Category: model.CategoryHeadingHierarchyIssue, Details: "Heading levels skip: 1, 3"},
		{SourceURL: "https://b.test/", Category: model.CategoryImageMissingAlt, TargetURL: "/y.jpg", ImageFilename: "y.jpg"},
	}
}

// TestOpenRunStore tests store creation.
func TestOpenRunStore(t *testing.T) {
	t.Parallel()

	t.Run("starts empty", func(t *testing.T) {
		t.Parallel()

		rs := setupTestStore(t)
		ctx := context.Background()

		findings, err := rs.Findings(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(findings) != 0 {
			t.Errorf("expected no findings, got %d", len(findings))
		}
		counts, err := rs.CategoryCounts(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(counts) != 0 {
			t.Errorf("expected no category counts, got %+v", counts)
		}
	})

	t.Run("stores are independent", func(t *testing.T) {
		t.Parallel()

		first := setupTestStore(t)
		second := setupTestStore(t)
		ctx := context.Background()

		if err := first.AddFindings(ctx, sampleFindings()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		findings, err := second.Findings(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(findings) != 0 {
			t.Errorf("expected second store to be empty, got %d findings", len(findings))
		}
	})
}

// TestRunStoreFindings tests storing and reading findings.
func TestRunStoreFindings(t *testing.T) {
	t.Parallel()

	t.Run("round trips in insertion order", func(t *testing.T) {
		t.Parallel()

		rs := setupTestStore(t)
		ctx := context.Background()
		want := sampleFindings()

		if err := rs.AddFindings(ctx, want[:3]); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := rs.AddFindings(ctx, want[3:]); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := rs.Findings(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("findings mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		t.Parallel()

		rs := setupTestStore(t)
		if err := rs.AddFindings(context.Background(), nil); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("concurrent writers", func(t *testing.T) {
		t.Parallel()

		rs := setupTestStore(t)
		ctx := context.Background()

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := rs.AddFindings(ctx, sampleFindings()); err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		got, err := rs.Findings(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 8*len(sampleFindings()) {
			t.Errorf("expected %d findings, got %d", 8*len(sampleFindings()), len(got))
		}
	})
}

// TestRunStoreErrors tests storing and reading run errors.
func TestRunStoreErrors(t *testing.T) {
	t.Parallel()

	rs := setupTestStore(t)
	ctx := context.Background()
	ts := time.Date(2026, 3, 1, 12, 30, 0, 123456789, time.UTC)

	want := []model.RunError{
		{URL: "https://a.test/", Message: "fetch https://a.test/: HTTP 404: Not Found", Kind: model.ErrorKindFetchFailed, Timestamp: ts},
		{URL: model.SystemURL, Message: "scheduler panic", Kind: model.ErrorKindSystemFailure, Timestamp: ts.Add(time.Second)},
	}
	for _, e := range want {
		if err := rs.AddError(ctx, e); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	got, err := rs.Errors(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
}

// TestRunStoreAggregates tests the SQL aggregates against in-memory counting.
func TestRunStoreAggregates(t *testing.T) {
	t.Parallel()

	rs := setupTestStore(t)
	ctx := context.Background()
	if err := rs.AddFindings(ctx, sampleFindings()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("category counts", func(t *testing.T) {
		t.Parallel()

		got, err := rs.CategoryCounts(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []model.CategoryCount{
			{Category: model.CategoryImageMissingAlt, Count: 2},
			{Category: model.CategoryImageWithAlt, Count: 1},
			{Category: model.CategoryInaccessibleLink, Count: 1},
			{Category: model.CategoryTableInfo, Count: 1},
			{Category: model.CategoryHeadingHierarchyIssue, Count: 1},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("category counts mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("url counts", func(t *testing.T) {
		t.Parallel()

		got, err := rs.URLCounts(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []model.URLCount{
			{URL: "https://b.test/", Issues: 2, Findings: 3},
			{URL: "https://a.test/", Issues: 1, Findings: 2},
			{URL: "https://c.test/", Issues: 1, Findings: 1},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("URL counts mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("summary matches in-memory summary", func(t *testing.T) {
		t.Parallel()

		state := model.RunState{RunID: "run-1", Status: model.RunStatusCompleted, CompletedCount: 3, TotalCount: 3}
		got, err := rs.Summary(ctx, state)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := model.NewSummary(state, sampleFindings())
		if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("summary mismatch (-want +got):\n%s", diff)
		}
	})
}
