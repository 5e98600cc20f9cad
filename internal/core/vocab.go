package core

import "regexp"

// Keyword vocabularies driving the heuristic classifiers. The exact word
// lists are part of the engine's observable behavior; changing them changes
// every derived status, so they live here as package-level data rather than
// configuration.

// blockedKeywords signal that the developer is stuck on something.
var blockedKeywords = []string{"error", "stuck", "help", "issue", "bug", "fail"}

// problemKeywords signal active troubleshooting work.
var problemKeywords = []string{"debug", "fix", "troubleshoot", "optimize", "refactor", "test"}

// flowKeywords signal forward, generative work.
var flowKeywords = []string{"implement", "create", "add", "build", "develop", "design"}

// urgencyTerms push an extracted task to high priority.
var urgencyTerms = []string{"urgent", "critical", "asap", "error", "broken", "blocked", "stuck", "fail"}

// featureTerms push an extracted task to medium priority.
var featureTerms = []string{"feature", "implement", "add", "build", "debug", "fix", "refactor", "update"}

// successIndicators mark interactions where something got resolved.
var successIndicators = []string{
	"works", "perfect", "done", "completed", "success", "fixed",
	"great", "exactly", "solved", "working now", "excellent", "brilliant",
}

// stuckIndicators mark interactions where the developer reports no progress.
var stuckIndicators = []string{
	"still not working", "same error", "tried everything",
	"doesn't work", "keep getting", "still failing", "won't work",
	"same issue", "no luck", "still broken",
}

// technologyVocabulary is the fixed list of technology mentions the timeline
// analyzer recognizes.
var technologyVocabulary = []string{
	"react", "typescript", "javascript", "node", "go", "python", "rust",
	"sql", "postgres", "sqlite", "mongodb", "redis", "graphql", "rest",
	"docker", "kubernetes", "terraform", "aws", "gcp", "git",
	"css", "html", "tailwind", "vue", "svelte", "websocket", "grpc", "kafka",
}

// featureVocabulary is the fixed list of product-feature areas recognized in
// session analysis and collision detection.
var featureVocabulary = []string{
	"auth", "authentication", "login", "signup", "logout",
	"payment", "billing", "checkout",
	"profile", "account", "registration",
	"api", "endpoint", "route", "controller",
	"database", "migration", "query",
	"dashboard", "admin", "panel",
	"email", "notification", "alert",
	"search", "filter", "sort",
}

// filePathPattern matches repo-relative paths with a common source extension,
// e.g. src/components/Button.tsx or internal/core/engine.go.
var filePathPattern = regexp.MustCompile(
	`\b[\w.-]+(?:/[\w.-]+)+\.(?:go|ts|tsx|js|jsx|py|rb|java|css|scss|html|sql|json|yaml|yml|md|sh)\b`)

// fileNamePattern matches a bare filename with extension, e.g. auth.js.
var fileNamePattern = regexp.MustCompile(
	`\b[\w-]+\.(?:go|ts|tsx|js|jsx|py|rb|java|css|scss|html|sql|json|yaml|yml|md|sh)\b`)
