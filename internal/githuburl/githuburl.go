// File path: internal/githuburl/githuburl.go
package githuburl

import (
	"fmt"
	"regexp"
	"strings"
)

var repoPattern = regexp.MustCompile(`github\.com[:/]([^/]+)/([^/?#]+)`)

// Parse extracts the owner and repository name from a GitHub URL. Trailing
// ".git" suffixes and query fragments are ignored.
func Parse(rawURL string) (owner, name string, err error) {
	cleaned := strings.TrimSuffix(strings.TrimSpace(rawURL), ".git")
	match := repoPattern.FindStringSubmatch(cleaned)
	if match == nil {
		return "", "", fmt.Errorf("invalid GitHub URL: %s", rawURL)
	}
	return match[1], match[2], nil
}

// Canonical returns the normalized https form of a GitHub repository URL,
// used as the repository identifier throughout the system.
func Canonical(rawURL string) (string, error) {
	owner, name, err := Parse(rawURL)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("https://github.com/%s/%s", owner, name), nil
}
