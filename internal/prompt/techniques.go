package prompt

// Technique is a named prompt engineering technique with applicability
// guidance. The profile BestTechniques lists reference these by key.
type Technique struct {
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	WhenToUse         string  `json:"when_to_use"`
	InjectionTemplate string  `json:"injection_template"`
	Effectiveness     float64 `json:"effectiveness_score"`
}

var Techniques = map[string]Technique{
	"chain_of_thought": {
		Name:              "Chain of Thought",
		Description:       "Break complex problems into sequential reasoning steps",
		WhenToUse:         "Complex logic, architecture decisions, multi-step implementations",
		InjectionTemplate: "Think through this step by step before implementing:\n1. Analyze the requirements\n2. Design the approach\n3. Consider edge cases\n4. Implement the solution\n5. Verify correctness",
		Effectiveness:     0.9,
	},
	"few_shot_examples": {
		Name:              "Few-Shot Examples",
		Description:       "Provide input/output examples to demonstrate expected behavior",
		WhenToUse:         "Pattern-based tasks, formatting requirements, API design",
		InjectionTemplate: "Example:\nInput: {example_input}\nExpected Output: {example_output}",
		Effectiveness:     0.85,
	},
	"constraint_anchoring": {
		Name:              "Constraint Anchoring",
		Description:       "Place critical constraints at both beginning and end of prompt",
		WhenToUse:         "All prompts, especially when constraints are critical",
		InjectionTemplate: "CRITICAL: {constraint}\n...\nREMINDER: {constraint}",
		Effectiveness:     0.8,
	},
	"role_depth": {
		Name:              "Deep Role Definition",
		Description:       "Give the AI a specific background, years of experience, and personality",
		WhenToUse:         "All expert-level tasks",
		InjectionTemplate: "Act as a {role} with {years}+ years of experience specializing in {specialty}. Your approach is {tone} and you prioritize {priorities}.",
		Effectiveness:     0.85,
	},
	"negative_constraints": {
		Name:              "Negative Constraints",
		Description:       "Explicitly state what NOT to do, preventing common AI failure modes",
		WhenToUse:         "Code generation, where AIs tend to add boilerplate or hallucinate",
		InjectionTemplate: "DO NOT:\n- Generate placeholder or TODO comments\n- Use deprecated APIs or patterns\n- Include unnecessary dependencies\n- Hardcode configuration values\n- Skip error handling",
		Effectiveness:     0.75,
	},
	"output_scaffolding": {
		Name:              "Output Scaffolding",
		Description:       "Provide the exact structure of the expected output",
		WhenToUse:         "When output format is critical: APIs, reports, code files",
		InjectionTemplate: "Your response must follow this exact structure:\n{scaffold}",
		Effectiveness:     0.9,
	},
	"security_by_default": {
		Name:              "Security by Default",
		Description:       "Embed security requirements as non-negotiable constraints",
		WhenToUse:         "ALL code generation tasks",
		InjectionTemplate: "SECURITY (non-negotiable):\n- All inputs MUST be validated before use\n- All outputs MUST be sanitized/escaped\n- All secrets MUST come from environment variables\n- All DB queries MUST use parameterized statements\n- All auth MUST be checked on every request",
		Effectiveness:     0.95,
	},
}
