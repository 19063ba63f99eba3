package store

import (
	"context"
	"fmt"
	"testing"
)

// openTestLog opens an in-memory SQLiteLog for use in tests.
func openTestLog(t *testing.T) *SQLiteLog {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory log: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func Test_Log_RecordAndRecent(t *testing.T) {
	t.Parallel()
	s := openTestLog(t)
	ctx := context.Background()

	if err := s.Record(ctx, "conv-a", "What are your hours?", "We are open 9-5.", 0.877); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.Record(ctx, "conv-a", "Where do I park?", "Behind the building.", 0.65); err != nil {
		t.Fatalf("record: %v", err)
	}

	entries, err := s.Recent(ctx, "conv-a", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("want 2 entries, got %d", len(entries))
	}
	if entries[0].Question != "What are your hours?" || entries[0].Answer != "We are open 9-5." {
		t.Errorf("entry[0]: got %+v", entries[0])
	}
	if entries[0].Confidence != 0.877 {
		t.Errorf("confidence: want 0.877, got %v", entries[0].Confidence)
	}
	if entries[1].Question != "Where do I park?" {
		t.Errorf("entry[1]: got %+v", entries[1])
	}
}

func Test_Log_RecentLimitRespected(t *testing.T) {
	t.Parallel()
	s := openTestLog(t)
	ctx := context.Background()

	for i := range 6 {
		if err := s.Record(ctx, "conv-b", fmt.Sprintf("q%d", i), "a", 0.5); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	entries, err := s.Recent(ctx, "conv-b", 4)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 4 {
		t.Errorf("want 4 entries, got %d", len(entries))
	}
}

func Test_Log_ConversationIsolation(t *testing.T) {
	t.Parallel()
	s := openTestLog(t)
	ctx := context.Background()

	if err := s.Record(ctx, "conv-x", "from x", "a", 0.5); err != nil {
		t.Fatalf("record x: %v", err)
	}
	if err := s.Record(ctx, "conv-y", "from y", "a", 0.5); err != nil {
		t.Fatalf("record y: %v", err)
	}

	entriesX, err := s.Recent(ctx, "conv-x", 10)
	if err != nil {
		t.Fatalf("recent x: %v", err)
	}
	entriesY, err := s.Recent(ctx, "conv-y", 10)
	if err != nil {
		t.Fatalf("recent y: %v", err)
	}

	if len(entriesX) != 1 || entriesX[0].Question != "from x" {
		t.Errorf("conversation x isolation failed: got %v", entriesX)
	}
	if len(entriesY) != 1 || entriesY[0].Question != "from y" {
		t.Errorf("conversation y isolation failed: got %v", entriesY)
	}
}

func Test_Log_EmptyConversationReturnsNil(t *testing.T) {
	t.Parallel()
	s := openTestLog(t)

	entries, err := s.Recent(context.Background(), "conv-empty", 10)
	if err != nil {
		t.Fatalf("recent empty: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("want 0 entries, got %d", len(entries))
	}
}

func Test_Log_OldestFirstOrdering(t *testing.T) {
	t.Parallel()
	s := openTestLog(t)
	ctx := context.Background()

	questions := []string{"first", "second", "third"}
	for _, q := range questions {
		if err := s.Record(ctx, "conv-order", q, "a", 0.5); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	entries, err := s.Recent(ctx, "conv-order", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	for i, want := range questions {
		if entries[i].Question != want {
			t.Errorf("entry[%d]: want %q, got %q", i, want, entries[i].Question)
		}
	}
}
