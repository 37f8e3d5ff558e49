// File path: internal/chunker/chunker.go
package chunker

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	charsPerToken = 4
	chunkTokens   = 400
	overlapTokens = 50

	chunkSize   = chunkTokens * charsPerToken
	overlapSize = overlapTokens * charsPerToken
	stepSize    = chunkSize - overlapSize

	// When a window boundary falls mid-line, it is extended to the next
	// newline if one occurs within this distance.
	newlineLookahead = 200
)

// Chunk is a contiguous slice of one file's text, the unit of embedding and
// retrieval. StartChar/EndChar are byte offsets into the pre-trim file text;
// Text is trimmed of surrounding whitespace.
type Chunk struct {
	ID         string
	RepoURL    string
	FilePath   string
	Index      int
	StartChar  int
	EndChar    int
	TokenCount int
	Text       string
}

// EstimateTokens approximates the token count of text at four characters per
// token, rounding up.
func EstimateTokens(text string) int {
	return (len(text) + charsPerToken - 1) / charsPerToken
}

// ChunkFile splits content into overlapping windows with line-aware
// boundaries. The output is deterministic: the same input always yields the
// same sequence. Empty and whitespace-only input yields no chunks; windows
// that trim to empty are dropped and ordinals are compacted so that a chunk's
// index is its emitted position. Identifiers are assigned by the caller via ID.
func ChunkFile(content, filePath, repoURL string) []Chunk {
	var chunks []Chunk
	if strings.TrimSpace(content) == "" {
		return chunks
	}

	start := 0
	for start < len(content) {
		end := start + chunkSize
		if end < len(content) {
			if idx := strings.IndexByte(content[end:], '\n'); idx >= 0 && idx < newlineLookahead {
				end += idx + 1
			}
		} else {
			end = len(content)
		}

		text := strings.TrimSpace(content[start:end])
		if text != "" {
			chunks = append(chunks, Chunk{
				RepoURL:    repoURL,
				FilePath:   filePath,
				Index:      len(chunks),
				StartChar:  start,
				EndChar:    end,
				TokenCount: EstimateTokens(text),
				Text:       text,
			})
		}

		if end >= len(content) {
			break
		}
		start += stepSize
	}
	return chunks
}

var idSanitizer = regexp.MustCompile(`[^a-zA-Z0-9\-_]`)

// ID derives the globally unique chunk identifier from the owning repository,
// file path, and ordinal index. The derivation is a pure function of its
// inputs, which makes re-upserts under the same identifier idempotent, and the
// result is sanitized to the character set the vector index accepts.
func ID(owner, repo, filePath string, index int) string {
	raw := fmt.Sprintf("%s-%s-%s-%d", owner, repo, filePath, index)
	return idSanitizer.ReplaceAllString(raw, "_")
}
