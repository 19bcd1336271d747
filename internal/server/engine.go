package server

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"vibebrain/internal/audit"
	"vibebrain/internal/ollama"
	"vibebrain/internal/prompt"
	"vibebrain/internal/workspace"
)

// Generator is the model backend used for prompt generation. Satisfied by
// *ollama.Client; tests substitute a fake.
type Generator interface {
	Chat(ctx context.Context, req ollama.ChatRequest) (*ollama.ChatResponse, error)
}

// SecurityError is returned when an input fails the security audit.
type SecurityError struct {
	Summary string
}

func (e *SecurityError) Error() string {
	return "security issue: " + e.Summary
}

// Engine runs the vibe-to-prompt pipeline: audit, workspace scan, model
// generation, sanitize, quality gate, fingerprint, persist.
type Engine struct {
	cfg   ServerConfig
	store Store
	gen   Generator
	obs   *Observability
	sem   chan struct{}

	mu    sync.RWMutex
	model string
}

func NewEngine(cfg ServerConfig, store Store, gen Generator, obs *Observability) *Engine {
	maxParallel := cfg.Ollama.MaxParallel
	if maxParallel <= 0 {
		maxParallel = 2
	}
	return &Engine{
		cfg:   cfg,
		store: store,
		gen:   gen,
		obs:   obs,
		sem:   make(chan struct{}, maxParallel),
		model: cfg.Ollama.Model,
	}
}

func (e *Engine) Model() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model
}

func (e *Engine) SetModel(name string) {
	e.mu.Lock()
	e.model = name
	e.mu.Unlock()
	slog.Info("model changed", "model", name)
}

// Vibe runs the full pipeline. It always returns a response; security
// rejections are reported in the response body rather than as errors so
// callers can relay the verdict verbatim.
func (e *Engine) Vibe(ctx context.Context, req VibeRequest) PromptResponse {
	requestID := newRequestID()
	family := normalizeFamily(req.Agent)
	start := time.Now()

	slog.Info("vibe request", "request_id", requestID, "family", family, "vibe", truncateForLog(req.Vibe, 100))

	report := audit.Vibe(req.Vibe, "")
	if report.Verdict == audit.VerdictFail {
		slog.Warn("security audit failed", "request_id", requestID, "summary", report.Summary())
		e.obs.MarkSecurityReject(ctx, firstRule(report))
		e.obs.MarkVibe(ctx, "security_fail")
		return PromptResponse{
			Prompt:          fmt.Sprintf("⚠️ Security issue detected:\n%s\n\nPlease rephrase your request.", report.Summary()),
			SecurityVerdict: string(audit.VerdictFail),
			ModelUsed:       e.Model(),
			AgentUsed:       string(family),
		}
	}

	ctxHint := ""
	if strings.TrimSpace(req.WorkspacePath) != "" {
		scanned, err := workspace.Scan(req.WorkspacePath, workspace.Options{
			MaxContextFiles: e.cfg.Scanner.MaxContextFiles,
			MaxFileSizeKB:   e.cfg.Scanner.MaxFileSizeKB,
		})
		if err != nil {
			slog.Warn("invalid workspace path", "request_id", requestID, "path", truncateForLog(req.WorkspacePath, 100), "error", err)
		} else {
			ctxHint = scanned.Hint()
			// Sampled file contents go through the same audit as the vibe
			// so a hostile workspace cannot smuggle instructions in.
			report = audit.Vibe(req.Vibe, scanned.SampledText())
			if report.Verdict == audit.VerdictFail {
				slog.Warn("workspace content failed audit", "request_id", requestID, "summary", report.Summary())
				e.obs.MarkSecurityReject(ctx, firstRule(report))
				e.obs.MarkVibe(ctx, "security_fail")
				return PromptResponse{
					Prompt:          fmt.Sprintf("⚠️ Security issue detected:\n%s\n\nPlease rephrase your request.", report.Summary()),
					SecurityVerdict: string(audit.VerdictFail),
					ModelUsed:       e.Model(),
					AgentUsed:       string(family),
				}
			}
		}
	}

	text, usedFallback := e.generate(ctx, req.Vibe, ctxHint, family)

	text, issues := audit.Sanitize(text)
	if len(issues) > 0 {
		slog.Warn("sanitized generated prompt", "request_id", requestID, "issues", len(issues))
		e.obs.MarkRedactions(ctx, len(issues))
	}

	quality := prompt.Score(text)
	if quality.Total < e.cfg.Quality.FallbackThreshold && len(text) > 20 && !usedFallback {
		slog.Warn("quality below threshold, rebuilding with optimizer", "request_id", requestID, "score", quality.Total)
		text = e.fallbackPrompt(req.Vibe, ctxHint, family)
		quality = prompt.Score(text)
		usedFallback = true
	}
	if usedFallback {
		e.obs.MarkFallback(ctx, "low_quality_or_bad_output")
	}

	fp := prompt.Fingerprint(text)
	elapsed := time.Since(start).Milliseconds()
	model := e.Model()
	e.obs.MarkGeneration(ctx, model, elapsed)
	e.obs.MarkVibe(ctx, "ok")

	slog.Info("vibe done",
		"request_id", requestID, "chars", len(text), "duration_ms", elapsed,
		"family", family, "grade", quality.Grade(), "score", quality.Total, "fingerprint", fp)

	record := PromptRecord{
		Fingerprint:      fp,
		RequestID:        requestID,
		Vibe:             req.Vibe,
		Prompt:           text,
		Family:           string(family),
		Source:           "vibe",
		ModelUsed:        model,
		ContextSummary:   ctxHint,
		QualityScore:     quality.Total,
		QualityGrade:     quality.Grade(),
		SecurityVerdict:  string(report.Verdict),
		SanitizedIssues:  len(issues),
		UsedFallback:     usedFallback,
		GenerationTimeMS: elapsed,
		CreatedAt:        nowRFC3339(),
	}
	if err := e.store.SavePrompt(record); err != nil {
		slog.Error("save prompt record", "request_id", requestID, "error", err)
	}

	return PromptResponse{
		Prompt:            text,
		ContextSummary:    ctxHint,
		ModelUsed:         model,
		GenerationTimeMS:  elapsed,
		AgentUsed:         string(family),
		QualityScore:      quality.Total,
		QualityGrade:      quality.Grade(),
		SecurityVerdict:   string(report.Verdict),
		PromptFingerprint: fp,
	}
}

// Optimize builds a family-optimized prompt deterministically, without the
// model. Returns a SecurityError when the vibe fails the audit.
func (e *Engine) Optimize(ctx context.Context, req OptimizeRequest) (OptimizeResponse, error) {
	report := audit.Vibe(req.Vibe, "")
	if report.Verdict == audit.VerdictFail {
		e.obs.MarkSecurityReject(ctx, firstRule(report))
		return OptimizeResponse{}, &SecurityError{Summary: report.Summary()}
	}
	family := normalizeFamily(req.Family)
	text := prompt.BuildOptimized(prompt.BuildInput{
		Vibe:         req.Vibe,
		Family:       family,
		TechStack:    req.TechStack,
		LanguageHint: req.Language,
	})
	text, issues := audit.Sanitize(text)
	e.obs.MarkRedactions(ctx, len(issues))
	quality := prompt.Score(text)
	fp := prompt.Fingerprint(text)

	record := PromptRecord{
		Fingerprint:     fp,
		RequestID:       newRequestID(),
		Vibe:            req.Vibe,
		Prompt:          text,
		Family:          string(family),
		Source:          "optimize",
		QualityScore:    quality.Total,
		QualityGrade:    quality.Grade(),
		SecurityVerdict: string(report.Verdict),
		SanitizedIssues: len(issues),
		CreatedAt:       nowRFC3339(),
	}
	if err := e.store.SavePrompt(record); err != nil {
		slog.Error("save prompt record", "error", err)
	}

	if issues == nil {
		issues = []string{}
	}
	return OptimizeResponse{
		Prompt:          text,
		Family:          string(family),
		QualityScore:    quality.Total,
		QualityGrade:    quality.Grade(),
		Fingerprint:     fp,
		SanitizedIssues: issues,
	}, nil
}

// ScorePrompt grades an arbitrary prompt across the five quality
// dimensions.
func (e *Engine) ScorePrompt(text string) ScoreResponse {
	quality := prompt.Score(text)
	return ScoreResponse{
		TotalScore: quality.Total,
		Grade:      quality.Grade(),
		Dimensions: map[string]float64{
			"role_clarity":  quality.Role,
			"task_clarity":  quality.TaskClarity,
			"structure":     quality.Structure,
			"security":      quality.Security,
			"actionability": quality.Actionability,
		},
		Fingerprint: prompt.Fingerprint(text),
	}
}

// generate asks the model for a prompt and falls back to the deterministic
// builder when the output is conversational, looks like code, is too
// short, or the call fails. The bool reports whether the fallback ran.
func (e *Engine) generate(ctx context.Context, vibe, ctxHint string, family prompt.Family) (string, bool) {
	userMsg := strings.TrimSpace(vibe)
	if ctxHint != "" {
		userMsg += fmt.Sprintf("\n[Tech: %s]", ctxHint)
	}
	patterns := prompt.RelevantPatterns(vibe)
	if patternCtx := prompt.PatternContext(patterns); patternCtx != "" {
		userMsg += "\n" + patternCtx
	}

	system := prompt.EnhancedSystemPrompt(vibe, family) + "\n" + prompt.GuideFor(family)

	numPredict := e.cfg.Ollama.MaxTokens
	if numPredict > 768 {
		numPredict = 768
	}
	chatReq := ollama.ChatRequest{
		Model: e.Model(),
		Messages: []ollama.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: userMsg},
		},
		Options: &ollama.GenerateOptions{
			NumPredict:  numPredict,
			Temperature: e.cfg.Ollama.Temperature,
			NumCtx:      e.cfg.Ollama.NumCtx,
		},
	}

	select {
	case e.sem <- struct{}{}:
		defer func() { <-e.sem }()
	case <-ctx.Done():
		return e.fallbackPrompt(vibe, ctxHint, family), true
	}

	chatCtx, cancel := withTimeout(ctx, time.Duration(e.cfg.Ollama.TimeoutSec)*time.Second)
	defer cancel()
	resp, err := e.gen.Chat(chatCtx, chatReq)
	if err != nil {
		slog.Error("chat generation failed", "error", err)
		return e.fallbackPrompt(vibe, ctxHint, family), true
	}

	cleaned := cleanGenerated(resp.Message.Content)
	if isBadOutput(cleaned) {
		slog.Warn("bad model output, using fallback")
		return e.fallbackPrompt(vibe, ctxHint, family), true
	}
	if len(cleaned) < 40 {
		slog.Warn("model output too short, using fallback", "chars", len(cleaned))
		return e.fallbackPrompt(vibe, ctxHint, family), true
	}
	return cleaned, false
}

func (e *Engine) fallbackPrompt(vibe, ctxHint string, family prompt.Family) string {
	langHint := ""
	if ctxHint != "" {
		langHint = strings.TrimSpace(strings.SplitN(ctxHint, "/", 2)[0])
	}
	return prompt.BuildOptimized(prompt.BuildInput{
		Vibe:         vibe,
		Family:       family,
		TechStack:    ctxHint,
		LanguageHint: langHint,
	})
}

var (
	fenceRe    = regexp.MustCompile("```[\\w]*\\n?")
	preambleRe = regexp.MustCompile(`(?i)^(Here is|Here's|Below is|The following|Sure|Okay|Of course|Certainly|I'll)[^\n]*\n+`)
	trailerRe  = regexp.MustCompile(`\n*(END EXAMPLE|END|---)\s*$`)
)

// cleanGenerated strips fences, preambles, and trailing artifacts from
// model output.
func cleanGenerated(text string) string {
	text = strings.TrimSpace(fenceRe.ReplaceAllString(text, ""))
	text = strings.TrimSpace(preambleRe.ReplaceAllString(text, ""))
	return strings.TrimSpace(trailerRe.ReplaceAllString(text, ""))
}

var badPhrases = []string{
	"how can i help", "please provide", "what programming language",
	"what would you like", "i'd be happy", "i can help", "let me know",
	"could you please", "tell me more", "what specific", "please share",
	"i need more", "can you provide", "what is the purpose",
	"are there any specific", "i'll help you",
}

var codeMarkers = []string{
	"import ", "from ", "def ", "class ", "function ", "const ", "let ",
	"return ", "export ", "<!doctype", "<html", "console.log(",
}

// isBadOutput detects the model answering conversationally or writing code
// instead of a prompt.
func isBadOutput(text string) bool {
	low := strings.ToLower(text)
	for _, phrase := range badPhrases {
		if strings.Contains(low, phrase) {
			return true
		}
	}
	head := low
	if len(head) > 200 {
		head = head[:200]
	}
	hits := 0
	for _, marker := range codeMarkers {
		if strings.Contains(head, marker) {
			hits++
		}
	}
	return hits >= 2
}

func normalizeFamily(raw string) prompt.Family {
	candidate := prompt.Family(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range prompt.Families() {
		if candidate == known {
			return candidate
		}
	}
	return prompt.FamilyAuto
}

func newRequestID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])[:8]
}

func firstRule(report audit.Report) string {
	if len(report.Findings) == 0 {
		return "unknown"
	}
	return report.Findings[0].Rule
}

func truncateForLog(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
