package server

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

type Store interface {
	SavePrompt(record PromptRecord) error
	GetPrompt(fingerprint string) (PromptRecord, bool)
	ListRecentPrompts(limit int) []PromptRecord
	GetStatsOverview() StatsOverview
}

// MemoryFileStore keeps prompt records in memory, optionally persisted to a
// JSON snapshot on every write. It is the default when no database is
// configured.
type MemoryFileStore struct {
	mu      sync.RWMutex
	path    string
	prompts map[string]PromptRecord
	order   []string
}

func NewMemoryFileStore(path string) (*MemoryFileStore, error) {
	store := &MemoryFileStore{
		path:    path,
		prompts: map[string]PromptRecord{},
	}
	if strings.TrimSpace(path) == "" {
		return store, nil
	}
	if err := store.load(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *MemoryFileStore) SavePrompt(record PromptRecord) error {
	if strings.TrimSpace(record.Fingerprint) == "" {
		return fmt.Errorf("prompt record missing fingerprint")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(record.CreatedAt) == "" {
		record.CreatedAt = nowRFC3339()
	}
	if _, exists := s.prompts[record.Fingerprint]; !exists {
		s.order = append(s.order, record.Fingerprint)
	}
	s.prompts[record.Fingerprint] = record
	return s.persistLocked()
}

func (s *MemoryFileStore) GetPrompt(fingerprint string) (PromptRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.prompts[fingerprint]
	return record, ok
}

func (s *MemoryFileStore) ListRecentPrompts(limit int) []PromptRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PromptRecord, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		record, ok := s.prompts[s.order[i]]
		if !ok {
			continue
		}
		out = append(out, record)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

func (s *MemoryFileStore) GetStatsOverview() StatsOverview {
	s.mu.RLock()
	defer s.mu.RUnlock()
	overview := StatsOverview{
		GeneratedAt: nowRFC3339(),
	}
	var qualityTotal float64
	var durationTotal int64
	familyCounts := map[string]int{}
	for _, record := range s.prompts {
		overview.TotalPrompts++
		if record.UsedFallback {
			overview.FallbackPrompts++
		}
		if strings.EqualFold(record.SecurityVerdict, "WARN") {
			overview.WarnPrompts++
		}
		qualityTotal += record.QualityScore
		durationTotal += record.GenerationTimeMS
		familyCounts[record.Family]++
	}
	if overview.TotalPrompts > 0 {
		overview.AverageQuality = qualityTotal / float64(overview.TotalPrompts)
		overview.AverageDurationMS = durationTotal / int64(overview.TotalPrompts)
	}
	overview.TopFamily = topKey(familyCounts)
	return overview
}

func (s *MemoryFileStore) load() error {
	data, err := os.ReadFile(filepath.Clean(s.path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read store snapshot: %w", err)
	}
	var snapshot struct {
		Prompts []PromptRecord `json:"prompts"`
	}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("decode store snapshot: %w", err)
	}
	sort.Slice(snapshot.Prompts, func(i, j int) bool {
		return snapshot.Prompts[i].CreatedAt < snapshot.Prompts[j].CreatedAt
	})
	for _, record := range snapshot.Prompts {
		if _, exists := s.prompts[record.Fingerprint]; !exists {
			s.order = append(s.order, record.Fingerprint)
		}
		s.prompts[record.Fingerprint] = record
	}
	return nil
}

func (s *MemoryFileStore) persistLocked() error {
	if strings.TrimSpace(s.path) == "" {
		return nil
	}
	prompts := make([]PromptRecord, 0, len(s.order))
	for _, fingerprint := range s.order {
		if record, ok := s.prompts[fingerprint]; ok {
			prompts = append(prompts, record)
		}
	}
	snapshot := struct {
		Prompts []PromptRecord `json:"prompts"`
	}{
		Prompts: prompts,
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store snapshot: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write store temp snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace store snapshot: %w", err)
	}
	return nil
}

func topKey(counts map[string]int) string {
	best := ""
	bestCount := 0
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if counts[key] > bestCount {
			best = key
			bestCount = counts[key]
		}
	}
	return best
}
