package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/usestring/mcp-server-template/internal/registry"
)

func codeReview(_ context.Context, args registry.Args) (registry.Reply, error) {
	lang := args.String("language")

	var sb strings.Builder
	fmt.Fprintf(&sb, "Please review the following %s code and provide feedback:\n\n", lang)
	fmt.Fprintf(&sb, "```%s\n%s\n```\n\n", lang, args.String("code"))

	sb.WriteString("Review criteria:\n")
	bullets(&sb, []string{
		"Code quality and readability",
		"Idiomatic use of the language and its standard library",
		"Potential bugs or issues",
		"Performance considerations",
		"Security concerns",
		"Documentation quality",
	})
	if focus := splitList(args.String("focus_areas")); len(focus) > 0 {
		fmt.Fprintf(&sb, "\nPlease pay special attention to: %s\n", strings.Join(focus, ", "))
	}

	sb.WriteString("\nPlease provide:\n")
	numbered(&sb, []string{
		"Overall assessment",
		"Specific issues found",
		"Suggestions for improvement",
		"Positive aspects of the code",
	})
	return reply(sb.String(), fmt.Sprintf("Code review of %s code", lang)), nil
}

func refactoringGuide(_ context.Context, args registry.Args) (registry.Reply, error) {
	lang := args.String("language")

	var sb strings.Builder
	fmt.Fprintf(&sb, "Please help me refactor the following %s code:\n\n", lang)
	fmt.Fprintf(&sb, "```%s\n%s\n```\n\n", lang, args.String("code_snippet"))

	sb.WriteString("**Current Issues:**\n")
	bullets(&sb, splitList(args.String("current_issues")))
	sb.WriteString("\n**Refactoring Goals:**\n")
	bullets(&sb, splitList(args.String("refactoring_goals")))

	sb.WriteString("\nPlease provide:\n")
	numbered(&sb, []string{
		"Step-by-step refactoring plan",
		"Refactored code with explanations",
		"Design patterns that could be applied",
		"Testing strategy for the refactored code",
		"Performance implications",
		"Backward compatibility considerations",
	})
	sb.WriteString("\nFocus on clean, maintainable code that follows the conventions of the language.\n")
	return reply(sb.String(), fmt.Sprintf("Refactoring guide for %s code", lang)), nil
}

func apiDocumentation(_ context.Context, args registry.Args) (registry.Reply, error) {
	method := strings.ToUpper(strings.TrimSpace(args.String("method")))
	endpoint := args.String("endpoint_name")

	var sb strings.Builder
	sb.WriteString("Please create comprehensive API documentation for the following endpoint:\n\n")
	fmt.Fprintf(&sb, "**Endpoint:** %s %s\n", method, endpoint)
	fmt.Fprintf(&sb, "**Description:** %s\n\n", args.String("description"))

	sb.WriteString("**Parameters:**\n")
	params := splitPairs(args.String("parameters"))
	if len(params) == 0 {
		sb.WriteString("- none\n")
	}
	for _, p := range params {
		if p.value == "" {
			fmt.Fprintf(&sb, "- %s\n", p.key)
			continue
		}
		fmt.Fprintf(&sb, "- %s: %s\n", p.key, p.value)
	}

	sb.WriteString("\nPlease include:\n")
	numbered(&sb, []string{
		"Complete endpoint description",
		"Request/response examples",
		"Parameter validation rules",
		"Error response formats",
		"Usage examples in curl and Go",
		"Rate limiting information (if applicable)",
		"Authentication requirements (if any)",
	})
	sb.WriteString("\nFormat the documentation in a clear, developer-friendly manner with proper code examples.\n")
	return reply(sb.String(), fmt.Sprintf("API documentation for %s %s", method, endpoint)), nil
}
