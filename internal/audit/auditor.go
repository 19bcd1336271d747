package audit

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxVibeChars is the length-sanity threshold applied to the raw vibe
// only, never to sampled workspace content.
const MaxVibeChars = 12000

// Finding is a single issue discovered during an audit. Immutable once
// created; owned by the Report that produced it.
type Finding struct {
	Rule     string  `json:"rule"`
	Severity Verdict `json:"severity"`
	Detail   string  `json:"detail"`
}

// Report is the aggregated result of one audit pass. The verdict is
// always the maximum severity across findings, PASS when empty.
type Report struct {
	Verdict  Verdict   `json:"verdict"`
	Findings []Finding `json:"findings"`
}

// Summary renders the report in a single human-readable block.
func (r Report) Summary() string {
	if len(r.Findings) == 0 {
		return fmt.Sprintf("[%s] No issues detected.", r.Verdict)
	}
	lines := make([]string, 0, len(r.Findings)+1)
	lines = append(lines, fmt.Sprintf("[%s] %d finding(s):", r.Verdict, len(r.Findings)))
	for _, f := range r.Findings {
		lines = append(lines, fmt.Sprintf("  [%s] %s: %s", f.Severity, f.Rule, f.Detail))
	}
	return strings.Join(lines, "\n")
}

// Vibe runs every registered rule against the raw user vibe plus any
// sampled workspace file contents. The assembled prompt is never scanned
// here: its structural markup is produced by us and safe by construction.
func Vibe(vibe, sampled string) Report {
	scanText := vibe
	if sampled != "" {
		scanText = vibe + "\n" + sampled
	}

	var report Report
	for _, category := range CategoryOrder {
		for _, rule := range rulesByCategory[category] {
			match, ok := rule.Match(scanText)
			if !ok {
				continue
			}
			report.Findings = append(report.Findings, Finding{
				Rule:     rule.Name,
				Severity: rule.Severity,
				Detail:   findingDetail(category, match),
			})
		}
	}

	// Length sanity applies to the vibe alone, not the sampled content.
	if len(vibe) > MaxVibeChars {
		report.Findings = append(report.Findings, Finding{
			Rule:     "vibe_too_long",
			Severity: VerdictWarn,
			Detail:   fmt.Sprintf("Vibe is %d chars; consider being more concise.", len(vibe)),
		})
	}

	report.Verdict = deriveVerdict(report.Findings)
	return report
}

func findingDetail(category Category, match string) string {
	switch category {
	case CategoryCredential:
		return "Potential credential detected; redact before sending."
	case CategoryTraversal:
		return fmt.Sprintf("Potential path traversal: '%s'", truncate(match, 60))
	default:
		return fmt.Sprintf("Matched: '%s'", truncate(match, 80))
	}
}

func deriveVerdict(findings []Finding) Verdict {
	verdict := VerdictPass
	for _, f := range findings {
		verdict = verdict.Max(f.Severity)
	}
	return verdict
}

var (
	vibeSectionRe = regexp.MustCompile(`(?s)<vibe>\s*<!\[CDATA\[(.*?)\]\]>\s*</vibe>`)
	markupTagRe   = regexp.MustCompile(`<[^>]+>`)
	cdataMarkerRe = regexp.MustCompile(`<!\[CDATA\[|\]\]>`)
)

// Prompt audits a fully assembled structured prompt. It extracts the
// embedded raw vibe section and audits only that; when extraction fails
// it strips all structural markup and audits the remaining free text.
// Kept for callers that only hold the assembled artifact.
func Prompt(masterPrompt string) Report {
	if m := vibeSectionRe.FindStringSubmatch(masterPrompt); m != nil {
		return Vibe(m[1], "")
	}
	stripped := markupTagRe.ReplaceAllString(masterPrompt, " ")
	stripped = cdataMarkerRe.ReplaceAllString(stripped, " ")
	return Vibe(stripped, "")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
