// File path: internal/redact/redact.go
package redact

import "regexp"

// Placeholder replaces any credential-shaped substring found in file text.
const Placeholder = "[REDACTED]"

var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:api[_-]?key|apikey)\s*[:=]\s*['"]?[A-Za-z0-9_\-]{16,}['"]?`),
	regexp.MustCompile(`(?i)(?:secret|token|password|passwd|pwd)\s*[:=]\s*['"]?[A-Za-z0-9_\-]{8,}['"]?`),
	regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9\-._~+/]+=*`),
	regexp.MustCompile(`sk-[A-Za-z0-9]{32,}`),
	regexp.MustCompile(`ghp_[A-Za-z0-9]{36}`),
}

// Sanitize replaces credential-shaped substrings with Placeholder. It is
// applied to every file before chunking so embeddings and the chunk store
// never retain live secrets.
func Sanitize(text string) string {
	for _, pattern := range secretPatterns {
		text = pattern.ReplaceAllString(text, Placeholder)
	}
	return text
}
