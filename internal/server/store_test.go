package server

import (
	"path/filepath"
	"testing"
)

func samplePromptRecord(fingerprint, family string) PromptRecord {
	return PromptRecord{
		Fingerprint:      fingerprint,
		RequestID:        "req00001",
		Vibe:             "build a REST API",
		Prompt:           "## ROLE\nYou are a Senior Engineer.",
		Family:           family,
		Source:           "vibe",
		ModelUsed:        "gemma2:2b",
		QualityScore:     72.5,
		QualityGrade:     "B",
		SecurityVerdict:  "PASS",
		GenerationTimeMS: 120,
		CreatedAt:        nowRFC3339(),
	}
}

func TestMemoryStorePromptLifecycle(t *testing.T) {
	store, err := NewMemoryFileStore("")
	if err != nil {
		t.Fatalf("NewMemoryFileStore error: %v", err)
	}
	record := samplePromptRecord("abc123def456", "claude")
	if err := store.SavePrompt(record); err != nil {
		t.Fatalf("SavePrompt error: %v", err)
	}
	got, ok := store.GetPrompt(record.Fingerprint)
	if !ok {
		t.Fatal("expected prompt to be found")
	}
	if got.Family != "claude" || got.QualityScore != 72.5 {
		t.Fatalf("unexpected record: %+v", got)
	}
	if _, ok := store.GetPrompt("missing000000"); ok {
		t.Fatal("expected missing fingerprint to not be found")
	}
}

func TestMemoryStoreSavePromptRequiresFingerprint(t *testing.T) {
	store, err := NewMemoryFileStore("")
	if err != nil {
		t.Fatalf("NewMemoryFileStore error: %v", err)
	}
	record := samplePromptRecord("", "claude")
	if err := store.SavePrompt(record); err == nil {
		t.Fatal("expected error for empty fingerprint")
	}
}

func TestMemoryStoreRecentPromptsOrder(t *testing.T) {
	store, err := NewMemoryFileStore("")
	if err != nil {
		t.Fatalf("NewMemoryFileStore error: %v", err)
	}
	for _, fingerprint := range []string{"fp0000000001", "fp0000000002", "fp0000000003"} {
		if err := store.SavePrompt(samplePromptRecord(fingerprint, "auto")); err != nil {
			t.Fatalf("SavePrompt error: %v", err)
		}
	}
	recent := store.ListRecentPrompts(2)
	if len(recent) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recent))
	}
	if recent[0].Fingerprint != "fp0000000003" {
		t.Fatalf("expected newest first, got %q", recent[0].Fingerprint)
	}
	if recent[1].Fingerprint != "fp0000000002" {
		t.Fatalf("expected second newest, got %q", recent[1].Fingerprint)
	}
}

func TestMemoryStoreUpsertKeepsSingleEntry(t *testing.T) {
	store, err := NewMemoryFileStore("")
	if err != nil {
		t.Fatalf("NewMemoryFileStore error: %v", err)
	}
	record := samplePromptRecord("fp0000000001", "auto")
	if err := store.SavePrompt(record); err != nil {
		t.Fatalf("SavePrompt error: %v", err)
	}
	record.QualityScore = 90
	if err := store.SavePrompt(record); err != nil {
		t.Fatalf("SavePrompt upsert error: %v", err)
	}
	recent := store.ListRecentPrompts(10)
	if len(recent) != 1 {
		t.Fatalf("expected 1 record after upsert, got %d", len(recent))
	}
	if recent[0].QualityScore != 90 {
		t.Fatalf("expected updated score, got %f", recent[0].QualityScore)
	}
}

func TestMemoryStoreStatsOverview(t *testing.T) {
	store, err := NewMemoryFileStore("")
	if err != nil {
		t.Fatalf("NewMemoryFileStore error: %v", err)
	}
	first := samplePromptRecord("fp0000000001", "claude")
	first.QualityScore = 80
	second := samplePromptRecord("fp0000000002", "claude")
	second.QualityScore = 60
	second.UsedFallback = true
	second.SecurityVerdict = "WARN"
	third := samplePromptRecord("fp0000000003", "gpt")
	third.QualityScore = 70
	for _, record := range []PromptRecord{first, second, third} {
		if err := store.SavePrompt(record); err != nil {
			t.Fatalf("SavePrompt error: %v", err)
		}
	}
	overview := store.GetStatsOverview()
	if overview.TotalPrompts != 3 {
		t.Fatalf("expected 3 prompts, got %d", overview.TotalPrompts)
	}
	if overview.FallbackPrompts != 1 {
		t.Fatalf("expected 1 fallback, got %d", overview.FallbackPrompts)
	}
	if overview.WarnPrompts != 1 {
		t.Fatalf("expected 1 warn, got %d", overview.WarnPrompts)
	}
	if overview.AverageQuality != 70 {
		t.Fatalf("expected average quality 70, got %f", overview.AverageQuality)
	}
	if overview.TopFamily != "claude" {
		t.Fatalf("expected top family claude, got %q", overview.TopFamily)
	}
}

func TestMemoryStoreSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.json")
	store, err := NewMemoryFileStore(path)
	if err != nil {
		t.Fatalf("NewMemoryFileStore error: %v", err)
	}
	if err := store.SavePrompt(samplePromptRecord("fp0000000001", "gemini")); err != nil {
		t.Fatalf("SavePrompt error: %v", err)
	}

	reloaded, err := NewMemoryFileStore(path)
	if err != nil {
		t.Fatalf("reload store error: %v", err)
	}
	got, ok := reloaded.GetPrompt("fp0000000001")
	if !ok {
		t.Fatal("expected record to survive reload")
	}
	if got.Family != "gemini" {
		t.Fatalf("unexpected family after reload: %q", got.Family)
	}
}
