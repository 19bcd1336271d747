package server

import (
	"time"
)

type VibeRequest struct {
	Vibe          string `json:"vibe"`
	WorkspacePath string `json:"workspace_path,omitempty"`
	Agent         string `json:"agent,omitempty"`
}

type PromptResponse struct {
	Prompt            string  `json:"prompt"`
	ContextSummary    string  `json:"context_summary"`
	ModelUsed         string  `json:"model_used"`
	GenerationTimeMS  int64   `json:"generation_time_ms"`
	AgentUsed         string  `json:"agent_used"`
	QualityScore      float64 `json:"quality_score"`
	QualityGrade      string  `json:"quality_grade"`
	SecurityVerdict   string  `json:"security_verdict"`
	PromptFingerprint string  `json:"prompt_fingerprint"`
}

type OptimizeRequest struct {
	Vibe      string `json:"vibe"`
	Family    string `json:"family,omitempty"`
	TechStack string `json:"tech_stack,omitempty"`
	Language  string `json:"language,omitempty"`
}

type OptimizeResponse struct {
	Prompt          string   `json:"prompt"`
	Family          string   `json:"family"`
	QualityScore    float64  `json:"quality_score"`
	QualityGrade    string   `json:"quality_grade"`
	Fingerprint     string   `json:"fingerprint"`
	SanitizedIssues []string `json:"sanitized_issues"`
}

type ScoreRequest struct {
	Prompt string `json:"prompt"`
}

type ScoreResponse struct {
	TotalScore  float64            `json:"total_score"`
	Grade       string             `json:"grade"`
	Dimensions  map[string]float64 `json:"dimensions"`
	Fingerprint string             `json:"fingerprint"`
}

type SetModelRequest struct {
	Model string `json:"model"`
}

type PullModelRequest struct {
	Model string `json:"model"`
}

type InstalledModel struct {
	Name   string `json:"name"`
	SizeMB int64  `json:"size_mb"`
}

type CatalogEntry struct {
	Name      string `json:"name"`
	Desc      string `json:"desc"`
	Size      string `json:"size"`
	Installed bool   `json:"installed"`
}

// PromptRecord is one persisted generation, keyed by fingerprint.
type PromptRecord struct {
	Fingerprint      string  `json:"fingerprint"`
	RequestID        string  `json:"request_id"`
	Vibe             string  `json:"vibe"`
	Prompt           string  `json:"prompt"`
	Family           string  `json:"family"`
	Source           string  `json:"source"`
	ModelUsed        string  `json:"model_used,omitempty"`
	ContextSummary   string  `json:"context_summary,omitempty"`
	QualityScore     float64 `json:"quality_score"`
	QualityGrade     string  `json:"quality_grade"`
	SecurityVerdict  string  `json:"security_verdict"`
	SanitizedIssues  int     `json:"sanitized_issues"`
	UsedFallback     bool    `json:"used_fallback"`
	GenerationTimeMS int64   `json:"generation_time_ms"`
	CreatedAt        string  `json:"created_at"`
}

type StatsOverview struct {
	GeneratedAt       string  `json:"generated_at"`
	TotalPrompts      int     `json:"total_prompts"`
	FallbackPrompts   int     `json:"fallback_prompts"`
	WarnPrompts       int     `json:"warn_prompts"`
	AverageQuality    float64 `json:"average_quality"`
	AverageDurationMS int64   `json:"average_duration_ms"`
	TopFamily         string  `json:"top_family,omitempty"`
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
