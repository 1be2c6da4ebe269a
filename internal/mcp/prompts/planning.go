package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/usestring/mcp-server-template/internal/registry"
)

func dataAnalysis(_ context.Context, args registry.Args) (registry.Reply, error) {
	format := args.String("data_format")

	var sb strings.Builder
	fmt.Fprintf(&sb, "I have a %s dataset with the following characteristics:\n\n", format)
	sb.WriteString(args.String("data_description") + "\n\n")

	sb.WriteString("I want to perform the following analysis:\n")
	bullets(&sb, splitList(args.String("analysis_goals")))

	sb.WriteString("\nPlease provide:\n")
	numbered(&sb, []string{
		"A step-by-step analysis plan",
		"Appropriate statistical methods to use",
		"Code examples for the analysis",
		"Visualization suggestions",
		"Potential insights to look for",
		"Common pitfalls to avoid",
	})
	sb.WriteString("\nFocus on actionable insights and clear, interpretable results.\n")
	return reply(sb.String(), fmt.Sprintf("Analysis plan for a %s dataset", format)), nil
}

func bugReport(_ context.Context, args registry.Args) (registry.Reply, error) {
	var sb strings.Builder
	sb.WriteString("Please help me create a comprehensive bug report for the following issue:\n\n")
	sb.WriteString("**Issue Description:**\n" + args.String("issue_description") + "\n\n")

	sb.WriteString("**Steps to Reproduce:**\n")
	numbered(&sb, splitList(args.String("steps_to_reproduce")))

	sb.WriteString("\n**Expected Behavior:**\n" + args.String("expected_behavior") + "\n\n")
	sb.WriteString("**Actual Behavior:**\n" + args.String("actual_behavior") + "\n")

	if env := splitPairs(args.String("environment_info")); len(env) > 0 {
		sb.WriteString("\n**Environment:**\n")
		for _, p := range env {
			fmt.Fprintf(&sb, "- %s: %s\n", p.key, p.value)
		}
	}

	sb.WriteString("\nPlease provide:\n")
	numbered(&sb, []string{
		"A well-structured bug report",
		"Additional information that might be helpful",
		"Potential root causes",
		"Suggested debugging steps",
		"Workarounds (if any)",
		"Priority level assessment",
	})
	sb.WriteString("\nFormat this as a professional bug report suitable for a development team.\n")
	return reply(sb.String(), "Bug report"), nil
}

func featurePlanning(_ context.Context, args registry.Args) (registry.Reply, error) {
	name := args.String("feature_name")

	var sb strings.Builder
	sb.WriteString("Please help me plan the following feature:\n\n")
	fmt.Fprintf(&sb, "**Feature Name:** %s\n\n", name)
	sb.WriteString("**Description:**\n" + args.String("feature_description") + "\n\n")

	sb.WriteString("**User Stories:**\n")
	bullets(&sb, splitList(args.String("user_stories")))

	if constraints := splitList(args.String("constraints")); len(constraints) > 0 {
		sb.WriteString("\n**Constraints:**\n")
		bullets(&sb, constraints)
	}

	sb.WriteString("\nPlease provide:\n")
	numbered(&sb, []string{
		"Detailed requirements analysis",
		"Technical architecture suggestions",
		"Implementation phases/milestones",
		"Potential risks and mitigation strategies",
		"Testing strategy",
		"Success metrics",
		"Timeline estimation approach",
	})
	sb.WriteString("\nFocus on creating a comprehensive plan that addresses both technical and business aspects.\n")
	return reply(sb.String(), fmt.Sprintf("Feature plan for %s", name)), nil
}
