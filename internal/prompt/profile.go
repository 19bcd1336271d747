package prompt

// Family identifies a target AI model family. Prompt structure, formatting,
// and technique selection all key off the family.
type Family string

const (
	FamilyClaude   Family = "claude"
	FamilyGPT      Family = "gpt"
	FamilyGPTCodex Family = "gpt-codex"
	FamilyGemini   Family = "gemini"
	FamilyGrok     Family = "grok"
	FamilyAuto     Family = "auto"
)

// Profile describes how to shape prompts for one AI family: preferred
// markup, the structure template, and the guardrails to always inject.
type Profile struct {
	ID       Family `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`

	UsesXMLTags         bool `json:"uses_xml_tags"`
	UsesMarkdown        bool `json:"uses_markdown"`
	UsesJSONSchema      bool `json:"uses_json_schema"`
	SupportsSystemRole  bool `json:"supports_system_prompt"`
	PrefersConcise      bool `json:"prefers_concise"`
	MaxRecommendedToken int  `json:"max_recommended_tokens"`

	BestTechniques      []string `json:"best_techniques"`
	SecurityConstraints []string `json:"security_constraints"`
	AntiPatterns        []string `json:"anti_patterns"`

	structureTemplate string
}

// ProfileFor resolves a family name to its profile. Unknown or empty
// names fall back to the universal profile.
func ProfileFor(family Family) Profile {
	if p, ok := profiles[family]; ok {
		return p
	}
	return profiles[FamilyAuto]
}

// Families lists the supported family identifiers in a stable order.
func Families() []Family {
	return []Family{FamilyClaude, FamilyGPT, FamilyGPTCodex, FamilyGemini, FamilyGrok, FamilyAuto}
}

// Profiles returns all registered profiles in the Families order.
func Profiles() []Profile {
	out := make([]Profile, 0, len(profiles))
	for _, f := range Families() {
		out = append(out, profiles[f])
	}
	return out
}

var profiles = map[Family]Profile{

	FamilyClaude: {
		ID:                  FamilyClaude,
		Name:                "Claude (Anthropic)",
		Provider:            "Anthropic",
		UsesXMLTags:         true,
		UsesMarkdown:        true,
		SupportsSystemRole:  true,
		MaxRecommendedToken: 8192,
		BestTechniques: []string{
			"xml_structured_prompting",
			"explicit_constraints",
			"chain_of_thought",
			"constitutional_ai_alignment",
			"artifact_generation",
			"prefill_technique",
		},
		SecurityConstraints: []string{
			"Never output credentials, API keys, or secrets in generated code",
			"Always sanitize user inputs before processing",
			"Use parameterized queries for all database operations",
			"Implement CSRF protection for all state-changing operations",
			"Follow OWASP Top 10 security guidelines",
		},
		AntiPatterns: []string{
			"Avoid 'Please' or overly polite language; Claude responds to clear directives",
			"Don't use JSON for structuring; XML tags work better with Claude",
			"Avoid vague 'be helpful' instructions; be specific about behavior",
		},
		structureTemplate: `<system>
<role>{role}</role>
<expertise>{expertise}</expertise>
</system>

<context>
<project_type>{project_type}</project_type>
<tech_stack>{tech_stack}</tech_stack>
<constraints>
{constraints}
</constraints>
</context>

<task>
<objective>{objective}</objective>
<requirements>
{requirements}
</requirements>
<deliverables>
{deliverables}
</deliverables>
</task>

<quality_gates>
{quality_gates}
</quality_gates>

<output_format>
{output_format}
</output_format>

<security_requirements>
- Never output credentials, API keys, or secrets in generated code
- Always sanitize user inputs before processing
- Use parameterized queries for all database operations
- Implement proper authentication and authorization checks
- Follow the principle of least privilege
- Never use eval(), exec(), or dynamic code execution with user input
</security_requirements>`,
	},

	FamilyGPT: {
		ID:                  FamilyGPT,
		Name:                "GPT (OpenAI)",
		Provider:            "OpenAI",
		UsesMarkdown:        true,
		UsesJSONSchema:      true,
		SupportsSystemRole:  true,
		MaxRecommendedToken: 4096,
		BestTechniques: []string{
			"persona_based_prompting",
			"markdown_structured",
			"few_shot_examples",
			"chain_of_thought",
			"step_by_step_reasoning",
			"json_mode_output",
		},
		SecurityConstraints: []string{
			"Never expose sensitive data in code output",
			"Always validate and sanitize all user inputs",
			"Use parameterized queries for database operations",
			"Implement proper error handling without exposing internals",
			"Apply Content Security Policy headers",
		},
		AntiPatterns: []string{
			"Don't use XML tags; GPT responds best to markdown",
			"Avoid extremely long system prompts; GPT can lose focus",
			"Don't ask GPT to 'not do' things; tell it what TO do",
		},
		structureTemplate: `# System Instructions

You are {role}. {expertise}

## Context
- **Project Type**: {project_type}
- **Tech Stack**: {tech_stack}
- **Constraints**: {constraints}

## Your Task
{objective}

### Requirements
{requirements}

### Deliverables
{deliverables}

## Quality Standards
{quality_gates}

## Output Format
{output_format}

## Security Requirements
- Never expose sensitive data (API keys, passwords, tokens) in code output
- Always validate and sanitize all user inputs
- Use parameterized queries, never string concatenation for SQL
- Implement proper error handling without exposing stack traces to users
- Apply Content Security Policy headers for web applications
- Use HTTPS for all external communications`,
	},

	FamilyGPTCodex: {
		ID:                  FamilyGPTCodex,
		Name:                "GPT Codex (OpenAI)",
		Provider:            "OpenAI",
		UsesMarkdown:        true,
		UsesJSONSchema:      true,
		SupportsSystemRole:  true,
		PrefersConcise:      true,
		MaxRecommendedToken: 4096,
		BestTechniques: []string{
			"code_first_prompting",
			"type_signature_hints",
			"test_driven_prompting",
			"file_path_context",
			"docstring_style_instructions",
			"function_signature_prefill",
		},
		SecurityConstraints: []string{
			"All user inputs validated and sanitized",
			"No hardcoded secrets, use environment variables",
			"SQL injection prevention via parameterized queries",
			"XSS prevention via output encoding",
			"Rate limiting on authentication endpoints",
		},
		AntiPatterns: []string{
			"Don't write prose; Codex wants specifications, not explanations",
			"Always include file paths and function signatures",
			"Include test cases as part of the specification",
		},
		structureTemplate: `# Codex Task

**Role**: {role}
**Expertise**: {expertise}

## Project Context
` + "```" + `
Type: {project_type}
Stack: {tech_stack}
` + "```" + `

## Objective
{objective}

## Technical Requirements
{requirements}

## Expected Files & Signatures
{deliverables}

## Quality Checklist
{quality_gates}

## Security Checklist
- [ ] All user inputs validated and sanitized
- [ ] No hardcoded secrets or credentials
- [ ] SQL injection prevention (parameterized queries)
- [ ] XSS prevention (output encoding)
- [ ] CSRF tokens for state-changing endpoints
- [ ] Rate limiting on sensitive endpoints
- [ ] Proper authentication/authorization guards

## Output
{output_format}`,
	},

	FamilyGemini: {
		ID:                  FamilyGemini,
		Name:                "Gemini (Google)",
		Provider:            "Google",
		UsesMarkdown:        true,
		UsesJSONSchema:      true,
		SupportsSystemRole:  true,
		MaxRecommendedToken: 8192,
		BestTechniques: []string{
			"structured_chain_of_thought",
			"step_by_step_planning",
			"multi_turn_refinement",
			"grounded_generation",
			"explicit_reasoning_steps",
			"safety_settings_aware",
		},
		SecurityConstraints: []string{
			"Validate type, length, format, and range of all inputs",
			"Implement secure session management",
			"Encrypt sensitive data at rest and in transit",
			"Implement role-based access control",
			"Use only trusted, up-to-date dependencies",
		},
		AntiPatterns: []string{
			"Don't use XML; Gemini prefers markdown and tables",
			"Include explicit 'think step by step' for complex tasks",
			"Avoid overly nested structures; keep flat and scannable",
		},
		structureTemplate: `# Task Definition

## Role & Expertise
{role} — {expertise}

## Project Context
| Attribute | Value |
|-----------|-------|
| Project Type | {project_type} |
| Tech Stack | {tech_stack} |
| Constraints | {constraints} |

## Objective
{objective}

## Step-by-Step Plan
Think through this step by step:

### Requirements
{requirements}

### Expected Deliverables
{deliverables}

## Quality Standards
{quality_gates}

## Security Standards
1. Input Validation: Validate type, length, format, and range of all inputs
2. Authentication: Implement secure session management with proper token handling
3. Data Protection: Encrypt sensitive data at rest and in transit
4. Access Control: Implement role-based access control (RBAC)
5. Error Handling: Use generic error messages for users, detailed logs for developers
6. Dependencies: Use only trusted, up-to-date packages with known CVE patches

## Output Format
{output_format}`,
	},

	FamilyGrok: {
		ID:                  FamilyGrok,
		Name:                "Grok (xAI)",
		Provider:            "xAI",
		UsesMarkdown:        true,
		SupportsSystemRole:  true,
		PrefersConcise:      true,
		MaxRecommendedToken: 4096,
		BestTechniques: []string{
			"direct_instruction",
			"code_focused_prompting",
			"concise_specification",
			"example_driven",
			"real_world_context",
		},
		SecurityConstraints: []string{
			"Sanitize all inputs, no eval/exec with user data",
			"Parameterized queries only",
			"No hardcoded secrets, use env vars",
			"Validate auth on every protected endpoint",
		},
		AntiPatterns: []string{
			"Don't be verbose; Grok likes direct, concise instructions",
			"Skip preambles and philosophical context",
			"Get to the point quickly",
		},
		structureTemplate: `**Role**: {role} | {expertise}

**Context**: {project_type} / {tech_stack}
{constraints}

**Task**: {objective}

**Requirements**:
{requirements}

**Deliver**:
{deliverables}

**Quality**:
{quality_gates}

**Security**:
- Sanitize all inputs. No eval/exec with user data.
- Parameterized queries only. No string concat for SQL.
- No hardcoded secrets. Use env vars.
- Validate auth on every protected endpoint.
- Rate limit sensitive operations.

**Format**:
{output_format}`,
	},

	FamilyAuto: {
		ID:                  FamilyAuto,
		Name:                "Universal (Any Agent)",
		Provider:            "Any",
		UsesMarkdown:        true,
		SupportsSystemRole:  true,
		MaxRecommendedToken: 4096,
		BestTechniques: []string{
			"clear_structure",
			"explicit_constraints",
			"numbered_steps",
			"chain_of_thought",
		},
		SecurityConstraints: []string{
			"Sanitize and validate all user inputs",
			"Use parameterized queries for database operations",
			"Never hardcode credentials or secrets",
			"Implement proper authentication and authorization",
			"Follow OWASP Top 10 guidelines",
		},
		structureTemplate: `## ROLE
{role}
{expertise}

## CONTEXT
- Project: {project_type}
- Stack: {tech_stack}
- Constraints: {constraints}

## OBJECTIVE
{objective}

## REQUIREMENTS
{requirements}

## DELIVERABLES
{deliverables}

## QUALITY STANDARDS
{quality_gates}

## SECURITY REQUIREMENTS
- Sanitize and validate all user inputs
- Use parameterized queries for database operations
- Never hardcode credentials or secrets
- Implement proper authentication and authorization
- Follow OWASP Top 10 security guidelines
- Handle errors gracefully without exposing internals

## OUTPUT FORMAT
{output_format}`,
	},
}
