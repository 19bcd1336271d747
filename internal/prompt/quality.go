package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

// QualityScore is a quantified assessment of a prompt across five
// dimensions, each worth up to 20 points.
type QualityScore struct {
	Total         float64           `json:"total_score"`
	Role          float64           `json:"role_score"`
	TaskClarity   float64           `json:"task_clarity_score"`
	Structure     float64           `json:"structure_score"`
	Security      float64           `json:"security_score"`
	Actionability float64           `json:"actionability_score"`
	Breakdown     map[string]string `json:"breakdown"`
}

// Grade maps the total score to a letter grade.
func (q QualityScore) Grade() string {
	switch {
	case q.Total >= 90:
		return "A+"
	case q.Total >= 80:
		return "A"
	case q.Total >= 70:
		return "B"
	case q.Total >= 60:
		return "C"
	default:
		return "D"
	}
}

var (
	headerRe   = regexp.MustCompile(`(?m)^#{1,3}\s`)
	listItemRe = regexp.MustCompile(`(?m)^\s*[-*\d]+[.)]\s`)
	numberedRe = regexp.MustCompile(`(?m)^\s*\d+\.\s`)
)

var roleIndicators = []struct {
	phrase string
	points float64
}{
	{"act as", 5}, {"you are", 5}, {"expert", 4}, {"specialist", 4},
	{"senior", 3}, {"experience", 3}, {"years", 2},
}

var taskIndicators = []struct {
	phrase string
	points float64
}{
	{"your task", 6}, {"objective", 5}, {"goal", 4}, {"you will", 5},
	{"requirements", 4}, {"deliverables", 4},
}

var securityKeywords = []string{
	"security", "sanitize", "validate", "injection", "xss",
	"authentication", "authorization", "owasp", "parameterized",
	"credentials", "secrets", "encrypt", "csrf",
}

var actionVerbs = []string{
	"implement", "create", "build", "design", "analyze", "review",
	"test", "optimize", "refactor", "deploy", "configure", "integrate",
}

// Score evaluates a prompt on role definition, task clarity, structure,
// security coverage, and actionability. Indicator matching is
// case-insensitive and each dimension is capped at 20.
func Score(text string) QualityScore {
	low := strings.ToLower(text)

	var role float64
	for _, ind := range roleIndicators {
		if strings.Contains(low, ind.phrase) {
			role = min20(role + ind.points)
		}
	}

	var task float64
	for _, ind := range taskIndicators {
		if strings.Contains(low, ind.phrase) {
			task = min20(task + ind.points)
		}
	}

	headers := float64(len(headerRe.FindAllString(text, -1)))
	lists := float64(len(listItemRe.FindAllString(text, -1)))
	structure := minf(10, headers*2.5) + minf(10, lists*1.0)
	structure = min20(structure)

	var securityHits float64
	for _, kw := range securityKeywords {
		if strings.Contains(low, kw) {
			securityHits++
		}
	}
	security := min20(securityHits * 4.0)

	var verbHits float64
	for _, v := range actionVerbs {
		if strings.Contains(low, v) {
			verbHits++
		}
	}
	numbered := float64(len(numberedRe.FindAllString(text, -1)))
	action := minf(10, verbHits*2.0) + minf(10, numbered*2.0)
	action = min20(action)

	total := role + task + structure + security + action

	return QualityScore{
		Total:         total,
		Role:          role,
		TaskClarity:   task,
		Structure:     structure,
		Security:      security,
		Actionability: action,
		Breakdown: map[string]string{
			"role":          fmt.Sprintf("%.1f/20", role),
			"task_clarity":  fmt.Sprintf("%.1f/20", task),
			"structure":     fmt.Sprintf("%.1f/20", structure),
			"security":      fmt.Sprintf("%.1f/20", security),
			"actionability": fmt.Sprintf("%.1f/20", action),
		},
	}
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func min20(v float64) float64 { return minf(20, v) }
