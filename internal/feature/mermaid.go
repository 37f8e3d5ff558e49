// File path: internal/feature/mermaid.go
package feature

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/repolens/repolens/internal/rag"
)

var mermaidFence = regexp.MustCompile("(?is)```mermaid(.*?)```")

// ExtractMermaidDiagram pulls the first mermaid code block out of raw model
// output and re-fences it. Output with no valid block is a malformed answer.
func ExtractMermaidDiagram(output string) (string, error) {
	if strings.TrimSpace(output) == "" {
		return "", rag.Malformed("model returned empty output", nil)
	}
	match := mermaidFence.FindStringSubmatch(output)
	if match == nil || strings.TrimSpace(match[1]) == "" {
		return "", rag.Malformed("no valid mermaid diagram in model output", nil)
	}
	return fmt.Sprintf("```mermaid\n%s\n```", strings.TrimSpace(match[1])), nil
}
