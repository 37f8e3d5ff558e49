// File path: internal/feature/feature.go

// Package feature defines the repository-analysis features as retrieval
// requests: what to search for, how wide, and how to prompt the model with
// what comes back.
package feature

import (
	"fmt"

	"github.com/repolens/repolens/internal/rag"
)

// Feature names, used in cache keys and logs.
const (
	NameExplainFile  = "explain_file"
	NameArchitecture = "architecture"
	NameWorkflow     = "workflow"
	NameUnitTests    = "unit_tests"
	NameImprovements = "improvements"
	NameAskRepo      = "ask_repo"
)

// ExplainFile builds the request for explaining a single file. Retrieval is
// scoped to that file.
func ExplainFile(repoURL, filePath string) rag.Request {
	return rag.Request{
		RepoURL:   repoURL,
		Feature:   NameExplainFile,
		Query:     fmt.Sprintf("Explain the purpose and logic of %s", filePath),
		Target:    filePath,
		FilePath:  filePath,
		TopK:      10,
		Cacheable: true,
		PromptBuilder: func(chunks []string) string {
			return explainFilePrompt(filePath, chunks)
		},
	}
}

// Architecture builds the request for the repository architecture diagram.
// The raw answer must pass ExtractMermaidDiagram before being served.
func Architecture(repoURL string) rag.Request {
	return rag.Request{
		RepoURL:       repoURL,
		Feature:       NameArchitecture,
		Query:         "entry points imports exports module dependencies main components architecture",
		Target:        "architecture",
		TopK:          15,
		Cacheable:     true,
		PromptBuilder: architecturePrompt,
	}
}

// Workflow builds the request for the step-by-step execution walkthrough.
func Workflow(repoURL string) rag.Request {
	return rag.Request{
		RepoURL:       repoURL,
		Feature:       NameWorkflow,
		Query:         "entry point main function startup initialization request flow execution",
		Target:        "workflow",
		TopK:          10,
		Cacheable:     true,
		PromptBuilder: workflowPrompt,
	}
}

// UnitTests builds the request for generating tests for a single file.
func UnitTests(repoURL, filePath string) rag.Request {
	return rag.Request{
		RepoURL:   repoURL,
		Feature:   NameUnitTests,
		Query:     fmt.Sprintf("exported functions and classes in %s", filePath),
		Target:    filePath,
		FilePath:  filePath,
		TopK:      10,
		Cacheable: true,
		PromptBuilder: func(chunks []string) string {
			return unitTestPrompt(filePath, chunks)
		},
	}
}

// Improvements builds the request for improvement suggestions, optionally
// scoped to one file.
func Improvements(repoURL, filePath string) rag.Request {
	target := filePath
	if target == "" {
		target = "repo-wide"
	}
	return rag.Request{
		RepoURL:       repoURL,
		Feature:       NameImprovements,
		Query:         "code quality patterns anti-patterns performance security improvements",
		Target:        target,
		FilePath:      filePath,
		TopK:          12,
		Cacheable:     true,
		PromptBuilder: improvementsPrompt,
	}
}

// AskRepo builds the request for a free-form question. Answers are never
// cached: the question itself varies, so memoizing by feature and repository
// would serve one question's answer to another.
func AskRepo(repoURL, question string) rag.Request {
	return rag.Request{
		RepoURL:   repoURL,
		Feature:   NameAskRepo,
		Query:     question,
		Target:    "ask_repo",
		TopK:      8,
		Cacheable: false,
		PromptBuilder: func(chunks []string) string {
			return askRepoPrompt(question, chunks)
		},
	}
}
