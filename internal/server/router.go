package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"

	"vibebrain/internal/ollama"
	"vibebrain/internal/prompt"
)

// ModelManager covers the model lifecycle operations the API exposes.
// Satisfied by *ollama.Client.
type ModelManager interface {
	ListModels(ctx context.Context) (*ollama.TagsResponse, error)
	Pull(ctx context.Context, model string, onProgress func(ollama.PullProgress) error) error
}

type API struct {
	cfg     ServerConfig
	engine  *Engine
	store   Store
	models  ModelManager
	limiter *RateLimiter
	obs     *Observability
}

func NewAPI(cfg ServerConfig, engine *Engine, store Store, models ModelManager, limiter *RateLimiter, obs *Observability) *API {
	return &API{
		cfg:     cfg,
		engine:  engine,
		store:   store,
		models:  models,
		limiter: limiter,
		obs:     obs,
	}
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", a.handleHealth)
	mux.HandleFunc("GET /agents", a.handleAgents)

	mux.HandleFunc("GET /knowledge-base", a.handleKnowledgeBase)
	mux.HandleFunc("GET /knowledge-base/{category}", a.handleKnowledgeBaseCategory)

	mux.HandleFunc("POST /prompt/score", a.handleScore)
	mux.HandleFunc("POST /prompt/optimize", a.handleOptimize)
	mux.HandleFunc("POST /vibe", a.handleVibe)

	mux.HandleFunc("GET /models", a.handleListModels)
	mux.HandleFunc("GET /models/available", a.handleAvailableModels)
	mux.HandleFunc("POST /models/pull", a.handlePullModel)
	mux.HandleFunc("POST /model", a.handleSetModel)

	mux.HandleFunc("GET /prompts/recent", a.handleRecentPrompts)
	mux.HandleFunc("GET /prompts/{fingerprint}", a.handleGetPrompt)
	mux.HandleFunc("GET /stats/overview", a.handleStatsOverview)

	wrapped := otelhttp.NewHandler(mux, "brain-api-http")
	return withCORS(wrapped)
}

// Request size caps, in characters. These bound regex work in the audit
// pass and keep a single caller from stuffing the model context.
const (
	maxVibeChars      = 8192
	maxScoredChars    = 32768
	maxModelNameChars = 256
)

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"model":  a.engine.Model(),
	})
}

func (a *API) handleAgents(w http.ResponseWriter, r *http.Request) {
	families := make([]map[string]string, 0, len(prompt.Profiles()))
	for _, p := range prompt.Profiles() {
		families = append(families, map[string]string{
			"id":   string(p.ID),
			"name": p.Name,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"families": families})
}

func (a *API) handleKnowledgeBase(w http.ResponseWriter, r *http.Request) {
	patterns := make([]map[string]any, 0, len(prompt.Patterns))
	for _, p := range prompt.Patterns {
		patterns = append(patterns, map[string]any{
			"name":               p.Name,
			"category":           p.Category,
			"role":               p.Role,
			"capabilities_count": len(p.Capabilities),
			"tags":               p.Tags,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_patterns": len(prompt.Patterns),
		"categories":     prompt.Categories(),
		"patterns":       patterns,
		"techniques":     prompt.Techniques,
	})
}

func (a *API) handleKnowledgeBaseCategory(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.PathValue("category"))
	matched := prompt.PatternsFor(category)
	patterns := make([]map[string]any, 0, len(matched))
	for _, p := range matched {
		patterns = append(patterns, map[string]any{
			"name":          p.Name,
			"role":          p.Role,
			"task_template": p.TaskTemplate,
			"capabilities":  p.Capabilities,
			"rules":         p.Rules,
			"output_format": p.OutputFormat,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"category":     category,
		"patterns":     patterns,
		"enhancements": prompt.Enhancements[category],
	})
}

func (a *API) handleScore(w http.ResponseWriter, r *http.Request) {
	if !a.allow(r.Context(), w, "general", a.cfg.Limits.GeneralPerWindow) {
		return
	}
	var req ScoreRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}
	if len(req.Prompt) > maxScoredChars {
		writeError(w, http.StatusBadRequest, "prompt too long")
		return
	}
	writeJSON(w, http.StatusOK, a.engine.ScorePrompt(req.Prompt))
}

func (a *API) handleOptimize(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("brain-api").Start(r.Context(), "prompt.optimize")
	defer span.End()
	if !a.allow(ctx, w, "optimize", a.cfg.Limits.GeneralPerWindow) {
		return
	}
	var req OptimizeRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Vibe) == "" {
		writeError(w, http.StatusBadRequest, "vibe is required")
		return
	}
	if len(req.Vibe) > maxVibeChars {
		writeError(w, http.StatusBadRequest, "vibe too long")
		return
	}
	resp, err := a.engine.Optimize(ctx, req)
	if err != nil {
		var secErr *SecurityError
		if errors.As(err, &secErr) {
			span.RecordError(err)
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"detail": "Security issue: " + secErr.Summary,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleVibe(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("brain-api").Start(r.Context(), "vibe")
	defer span.End()
	var req VibeRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Vibe) == "" {
		writeError(w, http.StatusBadRequest, "vibe is required")
		return
	}
	if len(req.Vibe) > maxVibeChars {
		writeError(w, http.StatusBadRequest, "vibe too long")
		return
	}
	if !a.limiter.Allow("vibe", a.cfg.Limits.VibePerWindow) {
		a.obs.MarkRateLimited(ctx, "vibe")
		writeJSON(w, http.StatusOK, PromptResponse{
			Prompt:          "⚠️ Rate limit exceeded. Please wait a moment before trying again.",
			SecurityVerdict: "WARN",
			ModelUsed:       a.engine.Model(),
		})
		return
	}
	writeJSON(w, http.StatusOK, a.engine.Vibe(ctx, req))
}

func (a *API) handleListModels(w http.ResponseWriter, r *http.Request) {
	tags, err := a.models.ListModels(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"models":  []InstalledModel{},
			"current": a.engine.Model(),
			"error":   err.Error(),
		})
		return
	}
	models := make([]InstalledModel, 0, len(tags.Models))
	for _, m := range tags.Models {
		models = append(models, InstalledModel{
			Name:   strings.TrimSuffix(m.Name, ":latest"),
			SizeMB: int64(math.Round(float64(m.Size) / 1048576)),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"models":  models,
		"current": a.engine.Model(),
	})
}

func (a *API) handleAvailableModels(w http.ResponseWriter, r *http.Request) {
	catalog := availableCatalog()
	installed := map[string]bool{}
	if tags, err := a.models.ListModels(r.Context()); err == nil {
		for _, m := range tags.Models {
			installed[m.Name] = true
			installed[strings.TrimSuffix(m.Name, ":latest")] = true
		}
	}
	for i := range catalog {
		// Exact match only: gemma3:1b is not gemma3:4b.
		catalog[i].Installed = installed[catalog[i].Name]
	}
	writeJSON(w, http.StatusOK, map[string]any{"catalog": catalog})
}

func (a *API) handlePullModel(w http.ResponseWriter, r *http.Request) {
	var req PullModelRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		writeError(w, http.StatusBadRequest, "model is required")
		return
	}
	if len(model) > maxModelNameChars {
		writeError(w, http.StatusBadRequest, "model name too long")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	send := func(payload map[string]any) {
		data, marshalErr := json.Marshal(payload)
		if marshalErr != nil {
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
	err := a.models.Pull(r.Context(), model, func(progress ollama.PullProgress) error {
		send(map[string]any{
			"status": progress.Status,
			"pct":    progress.Percent(),
		})
		return nil
	})
	if err != nil {
		send(map[string]any{"status": "error", "message": err.Error()})
		return
	}
	send(map[string]any{"status": "done", "pct": 100})
}

func (a *API) handleSetModel(w http.ResponseWriter, r *http.Request) {
	var req SetModelRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		writeError(w, http.StatusBadRequest, "model is required")
		return
	}
	if len(model) > maxModelNameChars {
		writeError(w, http.StatusBadRequest, "model name too long")
		return
	}
	a.engine.SetModel(model)
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"model":  model,
	})
}

func (a *API) handleRecentPrompts(w http.ResponseWriter, r *http.Request) {
	if !a.allow(r.Context(), w, "general", a.cfg.Limits.GeneralPerWindow) {
		return
	}
	limit := parseLimit(r, 20, 100)
	writeJSON(w, http.StatusOK, map[string]any{
		"prompts": a.store.ListRecentPrompts(limit),
	})
}

func (a *API) handleGetPrompt(w http.ResponseWriter, r *http.Request) {
	fingerprint := strings.TrimSpace(r.PathValue("fingerprint"))
	if fingerprint == "" {
		writeError(w, http.StatusBadRequest, "missing fingerprint")
		return
	}
	record, ok := a.store.GetPrompt(fingerprint)
	if !ok {
		writeError(w, http.StatusNotFound, "prompt not found")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (a *API) handleStatsOverview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.store.GetStatsOverview())
}

func (a *API) allow(ctx context.Context, w http.ResponseWriter, bucket string, limit int) bool {
	if a.limiter.Allow(bucket, limit) {
		return true
	}
	a.obs.MarkRateLimited(ctx, bucket)
	writeJSON(w, http.StatusTooManyRequests, map[string]string{
		"detail": "Rate limit exceeded",
	})
	return false
}

func availableCatalog() []CatalogEntry {
	return []CatalogEntry{
		{Name: "gemma3:4b", Desc: "⭐ Best Pick — Great quality/speed balance.", Size: "3.3 GB"},
		{Name: "gemma2:2b", Desc: "⚡ Fast — Quick prompt generation, low RAM.", Size: "1.6 GB"},
		{Name: "gemma3:1b", Desc: "⚡ Ultra fast — Minimal RAM. Quick iterations.", Size: "815 MB"},
		{Name: "qwen2.5:1.5b", Desc: "Efficient multilingual. Turkish/English.", Size: "986 MB"},
		{Name: "llama3.2:3b", Desc: "Good speed/quality balance.", Size: "2.0 GB"},
		{Name: "llama3.2:1b", Desc: "Tiny, instant responses. Simple prompts.", Size: "1.3 GB"},
		{Name: "codegemma:2b", Desc: "Code specialist. Tech-aware prompts.", Size: "1.6 GB"},
		{Name: "deepseek-r1:1.5b", Desc: "Reasoning-focused. Logic-heavy prompts.", Size: "1.1 GB"},
		{Name: "gemma2", Desc: "Strong 7B. High quality, moderate speed.", Size: "5.4 GB"},
		{Name: "phi4", Desc: "Best reasoning. Top quality, needs 12GB+ RAM.", Size: "9.1 GB"},
		{Name: "llama3.1:8b", Desc: "Powerful 8B. Excellent quality, needs 8GB+ RAM.", Size: "4.7 GB"},
		{Name: "mistral", Desc: "Versatile 7B. Reliable quality.", Size: "4.1 GB"},
		{Name: "qwen2.5:7b", Desc: "Strong multilingual 7B. Non-English prompts.", Size: "4.7 GB"},
		{Name: "deepseek-r1:7b", Desc: "Advanced reasoning. Complex architectures.", Size: "4.7 GB"},
		{Name: "codellama:7b", Desc: "Code specialist 7B. Deep understanding.", Size: "3.8 GB"},
	}
}

// Loopback pages and VS Code webviews are the only expected callers.
var allowedOriginRe = regexp.MustCompile(`^(https?://(127\.0\.0\.1|localhost)(:\d+)?|vscode-webview://.*)$`)

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && allowedOriginRe.MatchString(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
