// File path: internal/chunker/chunker_test.go
package chunker

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func syntheticFile(lines int) string {
	var b strings.Builder
	for i := 0; i < lines; i++ {
		fmt.Fprintf(&b, "line %04d: some representative source text for chunking\n", i)
	}
	return b.String()
}

func TestChunkFileCoversWholeInput(t *testing.T) {
	content := syntheticFile(400)
	chunks := ChunkFile(content, "src/app.ts", "https://github.com/octocat/hello-world")
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if chunks[0].StartChar != 0 {
		t.Fatalf("first chunk starts at %d, want 0", chunks[0].StartChar)
	}
	if last := chunks[len(chunks)-1]; last.EndChar != len(content) {
		t.Fatalf("last chunk ends at %d, want %d", last.EndChar, len(content))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Fatalf("chunk %d has ordinal %d", i, c.Index)
		}
		if c.StartChar >= c.EndChar {
			t.Fatalf("chunk %d has empty span [%d, %d)", i, c.StartChar, c.EndChar)
		}
		if i == 0 {
			continue
		}
		prev := chunks[i-1]
		if c.StartChar >= prev.EndChar {
			t.Fatalf("gap between chunk %d (end %d) and chunk %d (start %d)", i-1, prev.EndChar, i, c.StartChar)
		}
		overlap := prev.EndChar - c.StartChar
		if overlap < overlapSize || overlap > overlapSize+2*newlineLookahead {
			t.Fatalf("chunk %d overlap %d outside expected range", i, overlap)
		}
	}
}

func TestChunkFileLineAwareBoundaries(t *testing.T) {
	content := syntheticFile(400)
	chunks := ChunkFile(content, "src/app.ts", "repo")
	for i, c := range chunks[:len(chunks)-1] {
		if content[c.EndChar-1] != '\n' {
			t.Fatalf("chunk %d boundary at %d did not snap to a newline", i, c.EndChar)
		}
	}
}

func TestChunkFileRoundTrip(t *testing.T) {
	content := syntheticFile(300)
	for _, c := range ChunkFile(content, "a.go", "repo") {
		if strings.TrimSpace(content[c.StartChar:c.EndChar]) != c.Text {
			t.Fatalf("chunk %d text does not reconstruct from [%d, %d)", c.Index, c.StartChar, c.EndChar)
		}
	}
}

func TestChunkFileEmptyInput(t *testing.T) {
	if got := ChunkFile("", "a.go", "repo"); len(got) != 0 {
		t.Fatalf("empty input produced %d chunks", len(got))
	}
	if got := ChunkFile("   \n\t  ", "a.go", "repo"); len(got) != 0 {
		t.Fatalf("whitespace input produced %d chunks", len(got))
	}
}

func TestChunkFileShortInputSingleChunk(t *testing.T) {
	content := "package main\n\nfunc main() {}\n"
	chunks := ChunkFile(content, "main.go", "repo")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	c := chunks[0]
	if c.StartChar != 0 || c.EndChar != len(content) {
		t.Fatalf("single chunk spans [%d, %d), want [0, %d)", c.StartChar, c.EndChar, len(content))
	}
	if c.Text != strings.TrimSpace(content) {
		t.Fatalf("unexpected chunk text: %q", c.Text)
	}
	if c.TokenCount != EstimateTokens(c.Text) {
		t.Fatalf("token count %d does not match estimate", c.TokenCount)
	}
}

func TestChunkFileDeterministic(t *testing.T) {
	content := syntheticFile(250)
	first := ChunkFile(content, "src/app.ts", "repo")
	second := ChunkFile(content, "src/app.ts", "repo")
	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical inputs produced different chunk sequences")
	}
}

func TestEstimateTokens(t *testing.T) {
	cases := map[string]int{
		"":      0,
		"ab":    1,
		"abcd":  1,
		"abcde": 2,
	}
	for in, want := range cases {
		if got := EstimateTokens(in); got != want {
			t.Fatalf("EstimateTokens(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestIDDeterministicAndSanitized(t *testing.T) {
	a := ID("octocat", "hello-world", "src/utils/math.ts", 3)
	b := ID("octocat", "hello-world", "src/utils/math.ts", 3)
	if a != b {
		t.Fatalf("identical inputs produced different ids: %s vs %s", a, b)
	}
	if a != "octocat-hello-world-src_utils_math_ts-3" {
		t.Fatalf("unexpected id: %s", a)
	}
	if other := ID("octocat", "hello-world", "src/utils/math.ts", 4); other == a {
		t.Fatal("distinct ordinals produced the same id")
	}
}
