package store

import (
	"context"
	"strings"
	"testing"
)

func seedEvents(t *testing.T, repo *EventStore) {
	t.Helper()
	ctx := context.Background()
	events := []LLMRequestEventData{
		{Provider: "groq", Model: "llama3-70b-8192", Purpose: "chat", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true, Streamed: true},
		{Provider: "groq", Model: "llama3-70b-8192", Purpose: "study", InputTokens: 300, OutputTokens: 150, LatencyMs: 400, Success: true, Streamed: true},
		{Provider: "groq", Model: "llama3-8b-8192", Purpose: "quiz", InputTokens: 40, OutputTokens: 20, LatencyMs: 100, Success: false, ErrorMessage: "boom",
			RequestBody: "[user]\nGenerate a quiz question about Science.", ResponseBody: ""},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("AppendLLMRequest: %v", err)
		}
	}
}

func TestQueryLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	seedEvents(t, repo)
	ctx := context.Background()

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("QueryLLMEvents: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 events, got %d", len(all))
	}
	if all[0].Purpose != "quiz" {
		t.Errorf("expected newest first, got %q", all[0].Purpose)
	}
	if all[0].Success {
		t.Error("quiz call should be recorded as failed")
	}
	if !all[2].Streamed {
		t.Error("chat call should be recorded as streamed")
	}
	if all[0].Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}

	limited, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 1})
	if err != nil {
		t.Fatalf("QueryLLMEvents: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("Limit 1 returned %d events", len(limited))
	}

	study, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "study"})
	if err != nil {
		t.Fatalf("QueryLLMEvents: %v", err)
	}
	if len(study) != 1 || study[0].InputTokens != 300 {
		t.Errorf("unexpected study events: %+v", study)
	}
}

func TestGetLLMEvent(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	seedEvents(t, repo)
	ctx := context.Background()

	e, err := repo.GetLLMEvent(ctx, 3)
	if err != nil {
		t.Fatalf("GetLLMEvent: %v", err)
	}
	if e == nil {
		t.Fatal("expected event 3")
	}
	if e.ErrorMessage != "boom" {
		t.Errorf("ErrorMessage = %q", e.ErrorMessage)
	}
	if !strings.Contains(e.RequestBody, "Science") {
		t.Errorf("RequestBody = %q", e.RequestBody)
	}

	missing, err := repo.GetLLMEvent(ctx, 99)
	if err != nil {
		t.Fatalf("GetLLMEvent: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for a missing id, got %+v", missing)
	}
}

func TestLLMUsage(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	seedEvents(t, repo)
	ctx := context.Background()

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("LLMUsageByPurpose: %v", err)
	}
	if len(byPurpose) != 3 {
		t.Fatalf("expected 3 purposes, got %d", len(byPurpose))
	}
	if p := byPurpose[0]; p.Purpose != "chat" || p.Calls != 1 || p.AvgLatencyMs != 200 {
		t.Errorf("unexpected chat usage: %+v", p)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("LLMUsageByModel: %v", err)
	}
	if len(byModel) != 2 {
		t.Fatalf("expected 2 models, got %d", len(byModel))
	}
	if m := byModel[0]; m.Model != "llama3-70b-8192" || m.Calls != 2 || m.InputTokens != 400 {
		t.Errorf("unexpected model usage: %+v", m)
	}
}
