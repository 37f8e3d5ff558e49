// File path: internal/feature/prompts.go
package feature

import (
	"fmt"
	"strings"
)

func explainFilePrompt(filePath string, chunks []string) string {
	return fmt.Sprintf(`You are a senior software engineer performing a code review.

Here are the relevant chunks from the file %q:

%s

Provide a detailed explanation covering:
1. Purpose of this file
2. Key functions and types and what they do
3. External dependencies used
4. How this file fits in the overall architecture
5. Any notable patterns or concerns

Respond in clean markdown.`, filePath, strings.Join(chunks, "\n\n"))
}

func architecturePrompt(chunks []string) string {
	return fmt.Sprintf(`You are a software architect analyzing a codebase.

Here are relevant code chunks from across the repository:

%s

Generate a Mermaid.js diagram showing the architecture of this repository.
Include: modules, their relationships, data flow, and entry points.

Return ONLY a valid mermaid diagram inside a `+"```mermaid"+` code block. Nothing else.`, strings.Join(chunks, "\n\n"))
}

func workflowPrompt(chunks []string) string {
	return fmt.Sprintf(`You are a senior engineer explaining how a codebase works.

Here are relevant code chunks:

%s

Explain the execution workflow of this repository step by step. Cover:
1. Entry point
2. Initialization sequence
3. Request or event flow
4. Key service interactions
5. How data moves through the system

Format as a numbered step-by-step explanation in clean markdown.`, strings.Join(chunks, "\n\n"))
}

func unitTestPrompt(filePath string, chunks []string) string {
	return fmt.Sprintf(`You are a senior test engineer.

Here are the code chunks from %q:

%s

Generate comprehensive unit tests for all exported functions. Requirements:
- Group related cases together
- Cover happy path, edge cases, and error cases
- Mock all external dependencies
- Match the language of the source file

Return only valid test code. No explanations outside the code.`, filePath, strings.Join(chunks, "\n\n"))
}

func improvementsPrompt(chunks []string) string {
	return fmt.Sprintf(`You are a senior code reviewer.

Here are code chunks from the repository:

%s

Provide specific, actionable improvements in these categories:
1. Performance optimizations
2. Security issues
3. Code quality and readability
4. Idiomatic patterns that should be used
5. Architecture suggestions

For each suggestion include: the file, the problem, and a concrete code example of the fix.

Respond in clean markdown.`, strings.Join(chunks, "\n\n"))
}

func askRepoPrompt(question string, chunks []string) string {
	return fmt.Sprintf(`You are an expert software engineer assistant. Use the repository excerpts below to answer the user's question exactly.

User question: %q

Context excerpts (each is labeled with file path):
%s

Answer concisely and directly. If the repository does not contain enough information to answer, say you couldn't find the details and suggest next steps (files to inspect or commands to run). Do not include any unrelated analysis.`, question, strings.Join(chunks, "\n\n"))
}
