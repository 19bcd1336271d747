package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"vibebrain/internal/audit"
	"vibebrain/internal/prompt"
)

// brainctl generates, audits, and scores prompts offline, without the API
// server or a local model.

func main() {
	vibe := flag.String("vibe", "", "Rough task description to optimize into a prompt")
	family := flag.String("family", envOr("BRAIN_FAMILY", "auto"), "Target AI family: claude|gpt|gpt-codex|gemini|grok|auto")
	techStack := flag.String("tech-stack", "", "Tech stack hint, e.g. 'python / FastAPI'")
	language := flag.String("language", "", "Primary language for security rules")
	scorePath := flag.String("score", "", "Score the prompt in this file instead of generating ('-' for stdin)")
	auditOnly := flag.Bool("audit", false, "Only run the security audit on the vibe")
	format := flag.String("format", "text", "Output format: text|json")
	outputPath := flag.String("out", "", "Write full result JSON to this file")
	flag.Parse()

	if strings.TrimSpace(*scorePath) != "" {
		text, err := readInput(*scorePath)
		if err != nil {
			exitWith("failed to read prompt: " + err.Error())
		}
		quality := prompt.Score(text)
		result := map[string]any{
			"total_score": quality.Total,
			"grade":       quality.Grade(),
			"breakdown":   quality.Breakdown,
			"fingerprint": prompt.Fingerprint(text),
		}
		emit(*format, *outputPath, result, func() {
			fmt.Printf("Quality: %.1f/100 (%s)\n", quality.Total, quality.Grade())
			for _, key := range []string{"role", "task_clarity", "structure", "security", "actionability"} {
				fmt.Printf("  %-14s %s\n", key, quality.Breakdown[key])
			}
			fmt.Printf("Fingerprint: %s\n", prompt.Fingerprint(text))
		})
		return
	}

	if strings.TrimSpace(*vibe) == "" {
		exitWith("-vibe or -score is required")
	}

	report := audit.Vibe(*vibe, "")
	if *auditOnly {
		emit(*format, *outputPath, report, func() {
			fmt.Println(report.Summary())
		})
		if report.Verdict == audit.VerdictFail {
			os.Exit(1)
		}
		return
	}
	if report.Verdict == audit.VerdictFail {
		exitWith("security audit failed:\n" + report.Summary())
	}

	text := prompt.BuildOptimized(prompt.BuildInput{
		Vibe:         *vibe,
		Family:       resolveFamily(*family),
		TechStack:    *techStack,
		LanguageHint: *language,
	})
	text, issues := audit.Sanitize(text)
	quality := prompt.Score(text)
	fingerprint := prompt.Fingerprint(text)

	result := map[string]any{
		"prompt":           text,
		"family":           string(resolveFamily(*family)),
		"quality_score":    quality.Total,
		"quality_grade":    quality.Grade(),
		"fingerprint":      fingerprint,
		"sanitized_issues": issues,
		"security_verdict": string(report.Verdict),
	}
	emit(*format, *outputPath, result, func() {
		fmt.Println(text)
		fmt.Println()
		fmt.Printf("Quality: %.1f/100 (%s) / verdict=%s / fingerprint=%s\n",
			quality.Total, quality.Grade(), report.Verdict, fingerprint)
		for _, issue := range issues {
			fmt.Printf("  sanitized: %s\n", issue)
		}
	})
}

func resolveFamily(raw string) prompt.Family {
	candidate := prompt.Family(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range prompt.Families() {
		if candidate == known {
			return candidate
		}
	}
	return prompt.FamilyAuto
}

func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(filepath.Clean(path))
	return string(data), err
}

func emit(format, outputPath string, value any, printText func()) {
	if strings.TrimSpace(outputPath) != "" {
		if err := writeJSONFile(outputPath, value); err != nil {
			exitWith("failed to write output: " + err.Error())
		}
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		data, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			exitWith("failed to encode JSON: " + err.Error())
		}
		fmt.Println(string(data))
	default:
		printText()
	}
}

func writeJSONFile(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Clean(path), data, 0o644)
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func exitWith(message string) {
	fmt.Fprintln(os.Stderr, "error:", message)
	os.Exit(2)
}
