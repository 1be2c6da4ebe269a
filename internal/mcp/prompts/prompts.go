// Package prompts contains the prompt providers of the server.
//
// Prompt arguments are strings on the wire. List arguments accept one item
// per line or comma-separated items; mapping arguments accept "key: value"
// lines or a JSON object.
package prompts

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/usestring/mcp-server-template/internal/registry"
)

// Examples provides the example prompt templates.
func Examples() registry.Provider {
	return registry.NewProvider("prompts.examples", func(r *registry.Registrar) error {
		return r.Add(
			registry.Prompt("code-review", "Review code for quality, bugs and best practices", codeReview,
				registry.StringParam("code", "The code to review").Require(),
				registry.StringParam("language", "Programming language").WithDefault("go"),
				registry.StringParam("focus_areas", "Areas to focus on, e.g. performance, security"),
			).WithTitle("Code Review"),

			registry.Prompt("data-analysis", "Plan an analysis of a dataset", dataAnalysis,
				registry.StringParam("data_description", "Description of the dataset").Require(),
				registry.StringParam("analysis_goals", "Analysis objectives").Require(),
				registry.StringParam("data_format", "Format of the data, e.g. CSV, JSON").WithDefault("CSV"),
			).WithTitle("Data Analysis"),

			registry.Prompt("api-documentation", "Write documentation for an API endpoint", apiDocumentation,
				registry.StringParam("endpoint_name", "Path of the endpoint").Require(),
				registry.StringParam("method", "HTTP method").Require(),
				registry.StringParam("description", "What the endpoint does").Require(),
				registry.StringParam("parameters", "Parameters and their descriptions"),
			).WithTitle("API Documentation"),

			registry.Prompt("bug-report", "Turn an issue into a structured bug report", bugReport,
				registry.StringParam("issue_description", "Brief description of the issue").Require(),
				registry.StringParam("steps_to_reproduce", "Steps to reproduce the bug").Require(),
				registry.StringParam("expected_behavior", "What should happen").Require(),
				registry.StringParam("actual_behavior", "What actually happens").Require(),
				registry.StringParam("environment_info", "Environment details such as OS and versions"),
			).WithTitle("Bug Report"),

			registry.Prompt("feature-planning", "Plan requirements and delivery of a feature", featurePlanning,
				registry.StringParam("feature_name", "Name of the feature").Require(),
				registry.StringParam("feature_description", "Detailed description").Require(),
				registry.StringParam("user_stories", "User stories").Require(),
				registry.StringParam("constraints", "Technical or business constraints"),
			).WithTitle("Feature Planning"),

			registry.Prompt("refactoring-guide", "Guide the refactoring of a code snippet", refactoringGuide,
				registry.StringParam("code_snippet", "Code that needs refactoring").Require(),
				registry.StringParam("current_issues", "Current problems with the code").Require(),
				registry.StringParam("refactoring_goals", "Goals for the refactoring").Require(),
				registry.StringParam("language", "Programming language").WithDefault("go"),
			).WithTitle("Refactoring Guide"),
		)
	})
}

// splitList splits a list argument into trimmed, non-empty items. Newlines
// take precedence over commas.
func splitList(s string) []string {
	sep := ","
	if strings.Contains(s, "\n") {
		sep = "\n"
	}
	var items []string
	for _, item := range strings.Split(s, sep) {
		item = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(item), "-*"))
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

type pair struct {
	key, value string
}

// splitPairs parses a mapping argument. JSON objects are sorted by key;
// "key: value" lines keep their order. Lines without a separator are kept
// with an empty value.
func splitPairs(s string) []pair {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err == nil {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]pair, 0, len(keys))
		for _, k := range keys {
			v, ok := obj[k].(string)
			if !ok {
				v = fmt.Sprint(obj[k])
			}
			pairs = append(pairs, pair{k, v})
		}
		return pairs
	}

	var pairs []pair
	for _, item := range splitList(s) {
		k, v, _ := strings.Cut(item, ":")
		pairs = append(pairs, pair{strings.TrimSpace(k), strings.TrimSpace(v)})
	}
	return pairs
}

func bullets(sb *strings.Builder, items []string) {
	for _, item := range items {
		sb.WriteString("- " + item + "\n")
	}
}

func numbered(sb *strings.Builder, items []string) {
	for i, item := range items {
		fmt.Fprintf(sb, "%d. %s\n", i+1, item)
	}
}

func reply(text, description string) registry.Reply {
	return registry.OK(text, description)
}
