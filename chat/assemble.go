package chat

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/solverpad/solverpad/llm"
	"github.com/solverpad/solverpad/session"
)

const basePrompt = `You are a competitive programming assistant embedded in the user's editor.
Help with algorithm choice, complexity analysis and debugging. Prefer hints
over full solutions unless the user explicitly asks for complete code.`

// assemble builds the outbound conversation: system context (base prompt,
// problem statement, current code), then the most recent history turns
// oldest first, then the new user message.
func (s *Service) assemble(env environment, history []session.Message, userMessage string) []llm.Message {
	messages := []llm.Message{{Role: "system", Content: systemContent(env)}}

	start := 0
	if len(history) > maxHistoryTurns {
		start = len(history) - maxHistoryTurns
	}
	for _, msg := range history[start:] {
		messages = append(messages, llm.Message{Role: msg.Role, Content: msg.Content})
	}

	return append(messages, llm.Message{Role: "user", Content: userMessage})
}

func systemContent(env environment) string {
	var sb strings.Builder
	sb.WriteString(basePrompt)

	if env.record != nil {
		sb.WriteString("\n\n## Problem: ")
		sb.WriteString(env.record.Title)
		if env.record.TimeLimit != "" || env.record.MemoryLimit != "" {
			fmt.Fprintf(&sb, "\nLimits: %s, %s", env.record.TimeLimit, env.record.MemoryLimit)
		}
		sb.WriteString("\n\n")
		sb.WriteString(env.record.StatementBody)
		for i, sm := range env.record.Samples {
			fmt.Fprintf(&sb, "\n\n### Sample %d\nInput:\n```\n%s\n```\nOutput:\n```\n%s\n```",
				i+1, strings.TrimRight(sm.Input, "\n"), strings.TrimRight(sm.Output, "\n"))
		}
	}

	if env.code != "" {
		fmt.Fprintf(&sb, "\n\n## Current solution (%s)\n```%s\n%s\n```",
			filepath.Base(env.filePath), languageTag(env.filePath), strings.TrimRight(env.code, "\n"))
	}

	return sb.String()
}

func languageTag(path string) string {
	switch filepath.Ext(path) {
	case ".cpp", ".cc", ".cxx":
		return "cpp"
	case ".c":
		return "c"
	case ".py":
		return "python"
	case ".go":
		return "go"
	case ".java":
		return "java"
	case ".rs":
		return "rust"
	case ".kt":
		return "kotlin"
	default:
		return ""
	}
}
