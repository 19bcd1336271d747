package prompt

import (
	"strings"
	"testing"
)

const samplePrompt = `## ROLE
Act as a Senior Backend Engineer with 10+ years of experience. You are an expert specialist.

## OBJECTIVE
Your task is to build a REST API. You will:
1. Design the schema
2. Implement the endpoints
3. Test everything

## REQUIREMENTS
- Validate and sanitize all inputs
- Use parameterized queries
- Implement authentication and authorization

## SECURITY
- OWASP Top 10 compliance
- Never expose credentials or secrets
- Encrypt sensitive data, enable CSRF protection

## DELIVERABLES
- Complete source code
- Review and optimize performance`

func TestScoreHighQualityPrompt(t *testing.T) {
	q := Score(samplePrompt)
	if q.Total < 60 {
		t.Fatalf("expected total >= 60, got %.1f (%v)", q.Total, q.Breakdown)
	}
	grade := q.Grade()
	if grade != "A+" && grade != "A" && grade != "B" {
		t.Fatalf("expected high grade, got %s for %.1f", grade, q.Total)
	}
}

func TestScoreEmptyPrompt(t *testing.T) {
	q := Score("")
	if q.Total != 0 {
		t.Fatalf("expected 0, got %.1f", q.Total)
	}
	if q.Grade() != "D" {
		t.Fatalf("expected D, got %s", q.Grade())
	}
}

func TestScoreDimensionsCapped(t *testing.T) {
	// Pile on indicators for every dimension; each must cap at 20.
	text := strings.Repeat("act as you are expert specialist senior experience years\n", 3) +
		strings.Repeat("your task objective goal you will requirements deliverables\n", 3) +
		strings.Repeat("# h\n## h\n### h\n- a\n- b\n1. c\n2. d\n", 10) +
		strings.Join(securityKeywords, " ") + "\n" +
		strings.Join(actionVerbs, " ")
	q := Score(text)
	for name, v := range map[string]float64{
		"role": q.Role, "task": q.TaskClarity, "structure": q.Structure,
		"security": q.Security, "actionability": q.Actionability,
	} {
		if v > 20 {
			t.Errorf("%s exceeds cap: %.1f", name, v)
		}
	}
	if q.Total > 100 {
		t.Errorf("total exceeds 100: %.1f", q.Total)
	}
}

func TestScoreStructureCountsHeadersAndLists(t *testing.T) {
	plain := Score("build a thing with no structure at all")
	structured := Score("# Title\n## Section\n- item one\n- item two\n1. step")
	if structured.Structure <= plain.Structure {
		t.Fatalf("structured prompt should outscore plain: %.1f vs %.1f",
			structured.Structure, plain.Structure)
	}
}

func TestGradeThresholds(t *testing.T) {
	cases := []struct {
		total float64
		want  string
	}{
		{95, "A+"}, {90, "A+"}, {85, "A"}, {80, "A"},
		{75, "B"}, {70, "B"}, {65, "C"}, {60, "C"}, {59.9, "D"}, {0, "D"},
	}
	for _, tc := range cases {
		q := QualityScore{Total: tc.total}
		if got := q.Grade(); got != tc.want {
			t.Errorf("total %.1f: expected %s, got %s", tc.total, tc.want, got)
		}
	}
}

func TestScoreBreakdownFormat(t *testing.T) {
	q := Score(samplePrompt)
	for _, key := range []string{"role", "task_clarity", "structure", "security", "actionability"} {
		v, ok := q.Breakdown[key]
		if !ok {
			t.Fatalf("missing breakdown key %q", key)
		}
		if !strings.HasSuffix(v, "/20") {
			t.Fatalf("breakdown %q = %q, expected /20 suffix", key, v)
		}
	}
}
