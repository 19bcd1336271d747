package prompt

import (
	"log/slog"
	"strings"

	"vibebrain/internal/audit"
)

// BuildInput carries everything the deterministic builder needs to produce
// a family-optimized prompt without calling a model.
type BuildInput struct {
	Vibe           string
	Family         Family
	TechStack      string
	LanguageHint   string
	ProjectContext string
	PatternContext string
	ExtraRules     string
}

// BuildOptimized fills the family structure template with components
// derived from the vibe, appends language security rules and project
// context, and sanitizes the result before returning it.
func BuildOptimized(in BuildInput) string {
	profile := ProfileFor(in.Family)

	stack := in.TechStack
	if stack == "" {
		stack = "Not specified"
	}

	r := strings.NewReplacer(
		"{role}", buildRole(in.Vibe),
		"{expertise}", buildExpertise(in.TechStack, in.LanguageHint),
		"{project_type}", DetectProjectType(in.Vibe),
		"{tech_stack}", stack,
		"{constraints}", buildConstraints(),
		"{objective}", strings.TrimSpace(in.Vibe),
		"{requirements}", buildRequirements(in.PatternContext),
		"{deliverables}", buildDeliverables(in.Vibe),
		"{quality_gates}", buildQualityGates(),
		"{output_format}", buildOutputFormat(),
	)
	out := r.Replace(profile.structureTemplate)

	if rules := LanguageSecurityRules(in.LanguageHint); len(rules) > 0 {
		var b strings.Builder
		for _, rule := range rules {
			b.WriteString("- ")
			b.WriteString(rule)
			b.WriteString("\n")
		}
		out += "\n\n## Language-Specific Security\n" + strings.TrimRight(b.String(), "\n")
	}

	if in.ExtraRules != "" {
		out += "\n\n## Additional Security Rules\n" + in.ExtraRules
	}

	if in.ProjectContext != "" {
		if profile.UsesXMLTags {
			out += "\n\n<project_context>\n" + in.ProjectContext + "\n</project_context>"
		} else {
			out += "\n\n## Project Context\n" + in.ProjectContext
		}
	}

	out, issues := audit.Sanitize(out)
	for _, issue := range issues {
		slog.Warn("sanitized generated prompt", "issue", issue)
	}
	return out
}

func buildRole(vibe string) string {
	low := strings.ToLower(vibe)
	containsAny := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(low, w) {
				return true
			}
		}
		return false
	}

	switch {
	case containsAny("review", "audit", "analyze"):
		return "Senior Software Architect and Code Auditor"
	case containsAny("test", "testing", "coverage"):
		return "Senior Test Engineer and Quality Specialist"
	case containsAny("security", "pentest", "vulnerability"):
		return "Application Security Engineer and Penetration Tester"
	case containsAny("api", "backend", "server", "endpoint"):
		return "Senior Backend Engineer specializing in API design"
	case containsAny("frontend", "ui", "ux", "component", "react", "vue"):
		return "Senior Frontend Engineer and UI Architect"
	case containsAny("mobile", "ios", "android", "flutter", "react native"):
		return "Senior Mobile Application Developer"
	case containsAny("devops", "deploy", "ci/cd", "docker", "kubernetes"):
		return "Senior DevOps Engineer and Infrastructure Specialist"
	case containsAny("data", "ml", "machine learning", "ai"):
		return "Senior Data Engineer and ML Specialist"
	case containsAny("architect", "design", "system"):
		return "Principal Software Architect"
	default:
		return "Senior Full-Stack Software Engineer"
	}
}

func buildExpertise(techStack, languageHint string) string {
	parts := []string{"10+ years of production experience"}
	if techStack != "" {
		parts = append(parts, "deep expertise in "+techStack)
	}
	if languageHint != "" {
		parts = append(parts, "specializing in "+languageHint)
	}
	parts = append(parts, "strong focus on security, performance, and maintainability")
	return strings.Join(parts, ". ") + "."
}

func buildRequirements(patternContext string) string {
	reqs := []string{
		"- Follow clean code principles and industry best practices",
		"- Include comprehensive error handling and input validation",
		"- Write self-documenting code with clear naming conventions",
		"- Implement proper logging for debugging and monitoring",
	}
	if patternContext != "" {
		reqs = append(reqs, "- "+patternContext)
	}
	return strings.Join(reqs, "\n")
}

func buildConstraints() string {
	constraints := []string{
		"No placeholder or TODO code, everything must be fully functional",
		"No hardcoded credentials or configuration values",
		"No unnecessary dependencies, minimize attack surface",
		"No deprecated APIs or patterns",
	}
	var b strings.Builder
	for i, c := range constraints {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(c)
	}
	return b.String()
}

func buildDeliverables(vibe string) string {
	deliverables := []string{
		"Complete, production-ready source code",
		"All necessary configuration files",
		"Clear inline documentation and comments",
	}
	low := strings.ToLower(vibe)
	if strings.Contains(low, "test") {
		deliverables = append(deliverables, "Comprehensive test suite")
	}
	if strings.Contains(low, "api") || strings.Contains(low, "endpoint") {
		deliverables = append(deliverables, "API documentation with request/response examples")
	}
	if strings.Contains(low, "deploy") || strings.Contains(low, "docker") {
		deliverables = append(deliverables, "Deployment configuration (Dockerfile / docker-compose)")
	}
	var b strings.Builder
	for i, d := range deliverables {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(d)
	}
	return b.String()
}

func buildQualityGates() string {
	return strings.Join([]string{
		"- Code passes linting with zero warnings",
		"- All edge cases handled with appropriate error responses",
		"- No known security vulnerabilities (OWASP Top 10 compliance)",
		"- Performance-optimized with no unnecessary computations",
		"- Follows single responsibility and separation of concerns",
	}, "\n")
}

func buildOutputFormat() string {
	return "Provide complete file contents with file paths.\n" +
		"Each file in its own clearly labeled code block.\n" +
		"Start with a brief architectural summary (2-3 sentences).\n" +
		"End with usage instructions."
}

// DetectProjectType classifies the vibe into a coarse project category.
func DetectProjectType(vibe string) string {
	low := strings.ToLower(vibe)
	mappings := []struct {
		keywords []string
		kind     string
	}{
		{[]string{"web app", "website", "frontend"}, "Web Application"},
		{[]string{"api", "rest", "graphql", "backend"}, "API / Backend Service"},
		{[]string{"mobile", "ios", "android", "flutter"}, "Mobile Application"},
		{[]string{"cli", "command line", "terminal"}, "CLI Tool"},
		{[]string{"library", "package", "module", "npm"}, "Library / Package"},
		{[]string{"microservice", "service"}, "Microservice"},
		{[]string{"bot", "discord", "telegram", "slack"}, "Chat Bot"},
		{[]string{"game", "engine"}, "Game / Interactive"},
		{[]string{"extension", "plugin", "addon"}, "Extension / Plugin"},
		{[]string{"data", "etl", "pipeline"}, "Data Pipeline"},
	}
	for _, m := range mappings {
		for _, kw := range m.keywords {
			if strings.Contains(low, kw) {
				return m.kind
			}
		}
	}
	return "Software Project"
}

// LanguageSecurityRules returns the security rules for a detected
// language. Framework names map through to their host language, so a
// hint like "Next.js" resolves to the typescript rules.
func LanguageSecurityRules(languageHint string) []string {
	if languageHint == "" {
		return nil
	}
	low := strings.ToLower(languageHint)
	// Ordered so "javascript" wins over its "java" substring.
	for _, lang := range langOrder {
		if strings.Contains(low, lang) {
			return langSecurity[lang]
		}
	}
	for _, fw := range frameworkOrder {
		if strings.Contains(low, fw) {
			return langSecurity[frameworkLangs[fw]]
		}
	}
	return nil
}

var langOrder = []string{"javascript", "typescript", "python", "java", "go", "rust", "dart", "php"}

var frameworkOrder = []string{
	"next.js", "react", "vue", "angular", "svelte", "nuxt",
	"django", "flask", "fastapi", "spring", "gin", "echo", "fiber",
	"actix", "axum", "flutter", "laravel", "symfony",
}

var langSecurity = map[string][]string{
	"javascript": {
		"Use Content-Security-Policy headers",
		"Sanitize HTML output with DOMPurify or equivalent",
		"Use 'strict' mode in all modules",
		"Never use innerHTML with user data, use textContent",
		"Validate all URL parameters and query strings",
	},
	"typescript": {
		"Enable strict TypeScript compiler options",
		"Use Content-Security-Policy headers",
		"Sanitize HTML output, never trust user input in templates",
		"Use Zod or similar for runtime input validation",
		"Type-check all API boundaries",
	},
	"python": {
		"Never use eval(), exec(), or __import__() with user input",
		"Use parameterized queries with SQLAlchemy or psycopg2",
		"Validate inputs with Pydantic models",
		"Use secrets module for token generation, not random",
		"Set secure cookie flags (HttpOnly, Secure, SameSite)",
	},
	"java": {
		"Use PreparedStatement for all database queries",
		"Enable CSRF protection in Spring Security",
		"Use BCrypt for password hashing",
		"Validate inputs with Bean Validation (JSR 380)",
		"Never deserialize untrusted data",
	},
	"go": {
		"Use database/sql with parameterized queries",
		"Validate all inputs at API boundaries",
		"Use crypto/rand for secure random generation",
		"Set proper CORS headers",
		"Never use fmt.Sprintf for SQL queries",
	},
	"rust": {
		"Use sqlx or diesel with parameterized queries",
		"Validate inputs at deserialization boundaries",
		"Use ring or rustls for cryptographic operations",
		"Never use unsafe blocks for user data handling",
		"Enable all clippy security lints",
	},
	"dart": {
		"Validate all inputs from user forms",
		"Use secure storage for sensitive data on device",
		"Implement certificate pinning for API calls",
		"Never store tokens in SharedPreferences without encryption",
		"Use Flutter's built-in XSS protections",
	},
	"php": {
		"Use PDO with prepared statements for all queries",
		"Enable CSRF token validation on all forms",
		"Use password_hash() with PASSWORD_ARGON2ID",
		"Set Content-Security-Policy headers",
		"Never use extract() on user input arrays",
	},
}

var frameworkLangs = map[string]string{
	"next.js": "typescript", "react": "javascript", "vue": "javascript",
	"angular": "typescript", "svelte": "javascript", "nuxt": "typescript",
	"django": "python", "flask": "python", "fastapi": "python",
	"spring": "java", "gin": "go", "echo": "go", "fiber": "go",
	"actix": "rust", "axum": "rust", "flutter": "dart",
	"laravel": "php", "symfony": "php",
}
