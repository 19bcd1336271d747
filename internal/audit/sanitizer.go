package audit

import (
	"fmt"
	"regexp"
)

// RedactionMarker replaces matched spans in sanitized output. It must
// not re-match any sanitizer rule so that sanitization is idempotent.
const RedactionMarker = "[REDACTED]"

type outputRule struct {
	name string
	re   *regexp.Regexp
}

// Rules applied to generated text before it reaches the caller. A
// superset of the input registry: generated prompts additionally must
// not smuggle eval-with-user-input or upload-flagged exfil commands.
var outputRules = []outputRule{
	{"prompt_injection", regexp.MustCompile(`(?i)ignore\s+(all\s+)?previous\s+instructions`)},
	{"prompt_injection", regexp.MustCompile(`(?i)disregard\s+(all\s+)?(prior|above)`)},
	{"role_hijack", regexp.MustCompile(`(?i)you\s+are\s+now\s+(a|an)\s+`)},
	{"credential_leak", regexp.MustCompile(`sk-[a-zA-Z0-9]{20,}`)},
	{"credential_leak", regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{"credential_leak", regexp.MustCompile(`(?i)-----BEGIN\s+(RSA|EC|DSA|OPENSSH)\s+PRIVATE\s+KEY`)},
	{"destructive_cmd", regexp.MustCompile(`(?i)rm\s+-rf\s+/`)},
	{"destructive_cmd", regexp.MustCompile(`(?i)DROP\s+(TABLE|DATABASE|SCHEMA)`)},
	{"data_exfil", regexp.MustCompile(`(?i)(curl|wget|fetch)\s+https?://[^\s]+\s+.*(-d|--data)`)},
	{"eval_injection", regexp.MustCompile(`(?i)\beval\s*\(\s*['"].*user`)},
}

// Sanitize scans generated text for dangerous patterns and redacts every
// match in place. It never blocks: by the time output exists a response
// must be returned, so degraded text plus an issue list is the contract.
// Each issue has the form "[category] Removed: '<first 60 chars>'".
func Sanitize(text string) (string, []string) {
	var issues []string
	for _, rule := range outputRules {
		match := rule.re.FindString(text)
		if match == "" {
			continue
		}
		issues = append(issues, fmt.Sprintf("[%s] Removed: '%s'", rule.name, truncate(match, 60)))
		text = rule.re.ReplaceAllString(text, RedactionMarker)
	}
	return text, issues
}
