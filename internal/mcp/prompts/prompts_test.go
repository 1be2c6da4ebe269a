package prompts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/mcp-server-template/internal/registry"
)

func loaded(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	report := reg.LoadProviders(context.Background(), Examples())
	require.True(t, report.OK())
	require.Equal(t, 6, report.Counts[registry.KindPrompt])
	return reg
}

func render(t *testing.T, reg *registry.Registry, name string, args map[string]any) string {
	t.Helper()
	res := reg.Invoke(context.Background(), registry.KindPrompt, name, args)
	require.True(t, res.Success, "%s: %s", res.ErrorCode, res.Error)
	text, ok := res.Text()
	require.True(t, ok)
	return text
}

func TestCodeReview(t *testing.T) {
	reg := loaded(t)

	text := render(t, reg, "code-review", map[string]any{"code": "func f() {}"})
	assert.Contains(t, text, "```go\nfunc f() {}\n```")
	assert.NotContains(t, text, "special attention")

	text = render(t, reg, "code-review", map[string]any{
		"code": "x = 1", "language": "python", "focus_areas": "performance, security",
	})
	assert.Contains(t, text, "following python code")
	assert.Contains(t, text, "Please pay special attention to: performance, security")
}

func TestCodeReview_MissingCode(t *testing.T) {
	reg := loaded(t)
	res := reg.Invoke(context.Background(), registry.KindPrompt, "code-review", nil)
	assert.Equal(t, registry.CodeInvalidParameter, res.ErrorCode)
	assert.Equal(t, "code", res.Field)
}

func TestBugReport(t *testing.T) {
	reg := loaded(t)
	text := render(t, reg, "bug-report", map[string]any{
		"issue_description":  "Crash on save",
		"steps_to_reproduce": "Open file\nClick save",
		"expected_behavior":  "File saved",
		"actual_behavior":    "Panic",
		"environment_info":   `{"os":"linux","go":"1.24"}`,
	})
	assert.Contains(t, text, "1. Open file\n2. Click save\n")
	assert.Contains(t, text, "**Environment:**\n- go: 1.24\n- os: linux\n")
}

func TestAPIDocumentation(t *testing.T) {
	reg := loaded(t)
	text := render(t, reg, "api-documentation", map[string]any{
		"endpoint_name": "/users",
		"method":        "get",
		"description":   "List users",
		"parameters":    "limit: max results\npage: page number",
	})
	assert.Contains(t, text, "**Endpoint:** GET /users")
	assert.Contains(t, text, "- limit: max results\n- page: page number\n")
}

func TestFeaturePlanningAndDataAnalysis(t *testing.T) {
	reg := loaded(t)

	text := render(t, reg, "feature-planning", map[string]any{
		"feature_name":        "Export",
		"feature_description": "Export reports",
		"user_stories":        "As a user I can export CSV",
	})
	assert.Contains(t, text, "**Feature Name:** Export")
	assert.NotContains(t, text, "**Constraints:**")

	text = render(t, reg, "data-analysis", map[string]any{
		"data_description": "Sales by region",
		"analysis_goals":   "trends, outliers",
	})
	assert.Contains(t, text, "I have a CSV dataset")
	assert.Contains(t, text, "- trends\n- outliers\n")
}

func TestRefactoringGuide(t *testing.T) {
	reg := loaded(t)
	text := render(t, reg, "refactoring-guide", map[string]any{
		"code_snippet":      "func big() {}",
		"current_issues":    "- too long\n- no tests",
		"refactoring_goals": "smaller functions",
	})
	assert.Contains(t, text, "**Current Issues:**\n- too long\n- no tests\n")
	assert.Contains(t, text, "**Refactoring Goals:**\n- smaller functions\n")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a , b ,"))
	assert.Equal(t, []string{"a, b", "c"}, splitList("a, b\n* c"))
	assert.Nil(t, splitList(""))
}
