package tools

import (
	"context"
	"testing"
	"time"

	invjsonschema "github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/mcp-server-template/internal/config"
	"github.com/usestring/mcp-server-template/internal/kv"
	"github.com/usestring/mcp-server-template/internal/query"
	"github.com/usestring/mcp-server-template/internal/registry"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		ServerName:    "test-server",
		ServerVersion: "0.0.1",
		Environment:   "test",
	}
}

func setup(t *testing.T) (*registry.Registry, *Deps) {
	t.Helper()
	reg := registry.New(registry.WithClock(func() time.Time { return fixedNow }))
	d, err := NewDeps(testConfig(), reg)
	require.NoError(t, err)
	d.Started = fixedNow.Add(-time.Minute)
	d.Now = func() time.Time { return fixedNow }
	d.Sleep = func(context.Context, time.Duration) error { return nil }
	d.Random = func() float64 { return 0 }
	t.Cleanup(func() { _ = d.Close() })

	report := reg.LoadProviders(context.Background(),
		Examples(d), Math(), Text(), Extract(d), Health(d), KVWithStore(d, kv.NewMemory()))
	require.True(t, report.OK(), "load failures: %v", report.Failed)
	return reg, d
}

func call(t *testing.T, reg *registry.Registry, name string, params map[string]any) registry.Result {
	t.Helper()
	return reg.Invoke(context.Background(), registry.KindTool, name, params)
}

func data(t *testing.T, res registry.Result) map[string]any {
	t.Helper()
	require.True(t, res.Success, "unexpected failure: %s %s", res.ErrorCode, res.Error)
	m, ok := res.Data.(map[string]any)
	require.True(t, ok, "data is %T", res.Data)
	return m
}

func TestLoad_RegistersAllTools(t *testing.T) {
	reg, _ := setup(t)
	for _, name := range []string{
		"echo", "get_current_time", "calculate_statistics", "simulate_async_work",
		"unreliable_operation", "process_json_data", "generate_report", "system_health_check",
		"add", "subtract", "multiply", "divide",
		"transform_text", "count_words", "lorem_ipsum", "extract_text",
		"health_check", "kv_set", "kv_get", "kv_delete",
	} {
		_, ok := reg.Lookup(registry.KindTool, name)
		assert.True(t, ok, name)
	}
}

func TestEcho(t *testing.T) {
	reg, _ := setup(t)
	got := data(t, call(t, reg, "echo", map[string]any{"message": "hello"}))
	assert.Equal(t, "hello", got["echoed"])

	res := call(t, reg, "echo", nil)
	assert.Equal(t, registry.CodeInvalidParameter, res.ErrorCode)
	assert.Equal(t, "message", res.Field)
}

func TestMath(t *testing.T) {
	reg, _ := setup(t)

	tests := []struct {
		name string
		a, b float64
		want float64
		expr string
	}{
		{"add", 2, 3, 5, "2 + 3 = 5"},
		{"subtract", 2, 3, -1, "2 - 3 = -1"},
		{"multiply", 1.5, 4, 6, "1.5 * 4 = 6"},
		{"divide", 10, 4, 2.5, "10 / 4 = 2.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := data(t, call(t, reg, tt.name, map[string]any{"a": tt.a, "b": tt.b}))
			assert.Equal(t, tt.want, got["result"])
			assert.Equal(t, tt.expr, got["expression"])
		})
	}

	res := call(t, reg, "divide", map[string]any{"a": 1, "b": 0})
	assert.False(t, res.Success)
	assert.Equal(t, ErrCodeDivisionByZero, res.ErrorCode)
}

func TestGetCurrentTime(t *testing.T) {
	reg, _ := setup(t)

	got := data(t, call(t, reg, "get_current_time", nil))
	assert.Equal(t, "UTC", got["timezone"])
	assert.Equal(t, "2024-03-01T12:00:00Z", got["current_time"])

	got = data(t, call(t, reg, "get_current_time", map[string]any{"timezone_name": "Asia/Tokyo"}))
	assert.Equal(t, "2024-03-01T21:00:00+09:00", got["current_time"])

	res := call(t, reg, "get_current_time", map[string]any{"timezone_name": "Mars/Olympus"})
	assert.Equal(t, ErrCodeInvalidTimezone, res.ErrorCode)
	assert.Contains(t, res.Details, "hint")
}

func TestCalculateStatistics(t *testing.T) {
	reg, _ := setup(t)

	got := data(t, call(t, reg, "calculate_statistics", map[string]any{
		"numbers": []any{4, 1, 3, 2},
	}))
	assert.Equal(t, 4, got["count"])
	assert.Equal(t, 10.0, got["sum"])
	assert.Equal(t, 2.5, got["mean"])
	assert.Equal(t, 2.5, got["median"])
	assert.Equal(t, 1.0, got["min"])
	assert.Equal(t, 4.0, got["max"])
	assert.Equal(t, 1.25, got["variance"])
	assert.Equal(t, 1.12, got["std_dev"])

	res := call(t, reg, "calculate_statistics", map[string]any{"numbers": []any{}})
	assert.Equal(t, ErrCodeEmptyList, res.ErrorCode)

	res = call(t, reg, "calculate_statistics", map[string]any{"numbers": []any{1}, "precision": 11})
	assert.Equal(t, ErrCodeInvalidPrecision, res.ErrorCode)

	res = call(t, reg, "calculate_statistics", map[string]any{"numbers": []any{1, "two"}})
	assert.Equal(t, registry.CodeInvalidParameter, res.ErrorCode)
	assert.Equal(t, "numbers[1]", res.Field)
}

func TestSimulateAsyncWork(t *testing.T) {
	reg, d := setup(t)

	var slept time.Duration
	d.Sleep = func(_ context.Context, dur time.Duration) error {
		slept = dur
		return nil
	}
	got := data(t, call(t, reg, "simulate_async_work", map[string]any{"duration": 0.5, "return_data": "done"}))
	assert.Equal(t, "done", got["result"])
	assert.Equal(t, 500*time.Millisecond, slept)

	res := call(t, reg, "simulate_async_work", map[string]any{"should_fail": true})
	assert.Equal(t, ErrCodeSimulatedFailure, res.ErrorCode)

	res = call(t, reg, "simulate_async_work", map[string]any{"duration": 31})
	assert.Equal(t, ErrCodeDurationTooLong, res.ErrorCode)

	res = call(t, reg, "simulate_async_work", map[string]any{"duration": -1})
	assert.Equal(t, ErrCodeInvalidDuration, res.ErrorCode)
}

func TestSimulateAsyncWork_Timeout(t *testing.T) {
	reg, d := setup(t)
	d.Sleep = sleep

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	res := reg.Invoke(ctx, registry.KindTool, "simulate_async_work", map[string]any{"duration": 5})
	assert.False(t, res.Success)
	assert.Equal(t, registry.CodeTimeout, res.ErrorCode)
}

func TestUnreliableOperation(t *testing.T) {
	reg, d := setup(t)

	got := data(t, call(t, reg, "unreliable_operation", map[string]any{"data": "payload"}))
	assert.Equal(t, "payload", got["result"])

	res := call(t, reg, "unreliable_operation", map[string]any{"success_rate": 1.5})
	assert.Equal(t, ErrCodeInvalidRate, res.ErrorCode)

	draws := []float64{0.9, 0.1}
	calls := 0
	d.Random = func() float64 {
		v := draws[calls%len(draws)]
		calls++
		return v
	}
	got = data(t, call(t, reg, "unreliable_operation", map[string]any{"success_rate": 0.5}))
	assert.Equal(t, "operation result", got["result"])
	assert.Equal(t, 2, calls)
}

func TestProcessJSONData(t *testing.T) {
	reg, _ := setup(t)
	people := `[{"name":"bob","age":31},{"name":"alice","age":25},{"id":3}]`

	t.Run("validate", func(t *testing.T) {
		got := data(t, call(t, reg, "process_json_data", map[string]any{"json_string": people}))
		v := got["validation"].(map[string]any)
		assert.Equal(t, true, v["valid"])
		assert.Equal(t, "array", v["type"])
	})

	t.Run("validate against schema", func(t *testing.T) {
		got := data(t, call(t, reg, "process_json_data", map[string]any{
			"json_string": `{"age":"old"}`,
			"schema":      `{"type":"object","properties":{"age":{"type":"integer"}}}`,
		}))
		v := got["validation"].(map[string]any)
		assert.Equal(t, false, v["valid"])
		assert.NotEmpty(t, v["errors"])
	})

	t.Run("filter", func(t *testing.T) {
		got := data(t, call(t, reg, "process_json_data", map[string]any{
			"json_string": people, "operation": "filter", "filter_key": "name",
		}))
		assert.Len(t, got["filtered_data"], 2)
	})

	t.Run("sort", func(t *testing.T) {
		got := data(t, call(t, reg, "process_json_data", map[string]any{
			"json_string": people, "operation": "sort", "sort_by": "age",
		}))
		sorted := got["sorted_data"].([]any)
		require.Len(t, sorted, 3)
		assert.Equal(t, 3.0, sorted[0].(map[string]any)["id"])
		assert.Equal(t, "alice", sorted[1].(map[string]any)["name"])
	})

	t.Run("sort mixed types", func(t *testing.T) {
		res := call(t, reg, "process_json_data", map[string]any{
			"json_string": `[{"k":1},{"k":"a"}]`, "operation": "sort", "sort_by": "k",
		})
		assert.Equal(t, ErrCodeSortError, res.ErrorCode)
	})

	t.Run("transform", func(t *testing.T) {
		got := data(t, call(t, reg, "process_json_data", map[string]any{
			"json_string": `{"a":"x","b":1}`, "operation": "transform",
		}))
		assert.Equal(t, map[string]any{"a": "X", "b": 1.0}, got["transformed_data"])
	})

	t.Run("query", func(t *testing.T) {
		got := data(t, call(t, reg, "process_json_data", map[string]any{
			"json_string": people, "operation": "query", "expression": ".[].name // empty",
		}))
		res := got["query_result"].(*query.Result)
		assert.Equal(t, []any{"bob", "alice"}, res.Values)
	})

	t.Run("query syntax error", func(t *testing.T) {
		res := call(t, reg, "process_json_data", map[string]any{
			"json_string": people, "operation": "query", "expression": ".[",
		})
		assert.Equal(t, ErrCodeQueryError, res.ErrorCode)
	})

	t.Run("infer", func(t *testing.T) {
		got := data(t, call(t, reg, "process_json_data", map[string]any{
			"json_string": people, "operation": "infer",
		}))
		s := got["schema"].(*invjsonschema.Schema)
		assert.Equal(t, "array", s.Type)
	})

	t.Run("invalid json", func(t *testing.T) {
		res := call(t, reg, "process_json_data", map[string]any{"json_string": "{"})
		assert.Equal(t, ErrCodeInvalidJSON, res.ErrorCode)
	})

	t.Run("missing operation argument", func(t *testing.T) {
		res := call(t, reg, "process_json_data", map[string]any{"json_string": people, "operation": "filter"})
		assert.Equal(t, registry.CodeInvalidParameter, res.ErrorCode)
		assert.Equal(t, "filter_key", res.Field)
	})
}

func TestGenerateReport(t *testing.T) {
	reg, _ := setup(t)

	got := data(t, call(t, reg, "generate_report", map[string]any{
		"title": "Sales", "data": map[string]any{"total": 3}, "format_type": "markdown",
	}))
	content := got["report_content"].(string)
	assert.Contains(t, content, "# Sales")
	assert.Contains(t, content, "*Generated: 2024-03-01T12:00:00Z*")
	assert.Contains(t, content, `"total": 3`)

	got = data(t, call(t, reg, "generate_report", map[string]any{
		"title": "Sales", "data": map[string]any{}, "include_timestamp": false,
	}))
	assert.Contains(t, got["report_content"], `"generated_at": null`)

	res := call(t, reg, "generate_report", map[string]any{"title": "  ", "data": map[string]any{}})
	assert.Equal(t, ErrCodeEmptyTitle, res.ErrorCode)
}

func TestTransformText(t *testing.T) {
	reg, _ := setup(t)

	tests := []struct {
		op, in, want string
	}{
		{"upper", "hello", "HELLO"},
		{"lower", "HeLLo", "hello"},
		{"title", "hello world", "Hello World"},
		{"reverse", "héllo", "olléh"},
		{"snake", "helloWorld Foo-bar", "hello_world_foo_bar"},
		{"kebab", "Hello World", "hello-world"},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			got := data(t, call(t, reg, "transform_text", map[string]any{"text": tt.in, "operation": tt.op}))
			assert.Equal(t, tt.want, got["transformed"])
		})
	}

	res := call(t, reg, "transform_text", map[string]any{"text": "x", "operation": "shout"})
	assert.Equal(t, registry.CodeInvalidParameter, res.ErrorCode)
}

func TestCountWords(t *testing.T) {
	reg, _ := setup(t)
	got := data(t, call(t, reg, "count_words", map[string]any{"text": "One two. Three!\nFour"}))
	assert.Equal(t, 4, got["words"])
	assert.Equal(t, 2, got["lines"])
	assert.Equal(t, 3, got["sentences"])
	assert.Equal(t, 17, got["characters_no_spaces"])
}

func TestLoremIpsum(t *testing.T) {
	reg, _ := setup(t)
	got := data(t, call(t, reg, "lorem_ipsum", map[string]any{"paragraphs": 2, "sentences": 3}))
	assert.Equal(t, 2, got["paragraphs"])
	assert.Contains(t, got["text"], "\n\n")
	assert.True(t, len(got["text"].(string)) > 0)

	res := call(t, reg, "lorem_ipsum", map[string]any{"paragraphs": 0})
	assert.Equal(t, ErrCodeInvalidCount, res.ErrorCode)
}

func TestHealthCheck(t *testing.T) {
	reg, _ := setup(t)
	got := data(t, call(t, reg, "health_check", nil))
	assert.Equal(t, "healthy", got["status"])
	assert.Equal(t, "test-server", got["server"])
	assert.Equal(t, true, got["initialized"])
	assert.Equal(t, 60.0, got["uptime_seconds"])
}

func TestSystemHealthCheck(t *testing.T) {
	reg, _ := setup(t)
	got := data(t, call(t, reg, "system_health_check", nil))
	assert.Contains(t, got, "runtime")
	assert.Equal(t, "ok", got["kv_store"].(map[string]any)["status"])
	assert.Equal(t, "healthy", got["status"])
}

func TestKV(t *testing.T) {
	reg, _ := setup(t)

	data(t, call(t, reg, "kv_set", map[string]any{"key": "greeting", "value": "hi"}))
	got := data(t, call(t, reg, "kv_get", map[string]any{"key": "greeting"}))
	assert.Equal(t, "hi", got["value"])

	got = data(t, call(t, reg, "kv_delete", map[string]any{"key": "greeting"}))
	assert.Equal(t, true, got["deleted"])

	res := call(t, reg, "kv_get", map[string]any{"key": "greeting"})
	assert.Equal(t, registry.CodeNotFound, res.ErrorCode)

	res = call(t, reg, "kv_set", map[string]any{"key": "k", "value": "v", "ttl_seconds": -1})
	assert.Equal(t, "ttl_seconds", res.Field)

	res = call(t, reg, "kv_set", map[string]any{"key": "k", "value": "v", "ttl_seconds": 1e12})
	assert.Equal(t, registry.CodeInvalidParameter, res.ErrorCode)
	assert.Equal(t, "ttl_seconds", res.Field)

	res = call(t, reg, "kv_set", map[string]any{"key": "k", "value": "v", "ttl_seconds": maxTTLSeconds})
	assert.True(t, res.Success, res.Error)
}

func TestKV_LoadFailsWithoutRedis(t *testing.T) {
	reg := registry.New()
	cfg := testConfig()
	cfg.RedisURL = ""
	d, err := NewDeps(cfg, reg)
	require.NoError(t, err)

	report := reg.LoadProviders(context.Background(), KV(d), Math())
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "tools.kv", report.Failed[0].Ref)
	_, ok := reg.Lookup(registry.KindTool, "add")
	assert.True(t, ok)
	_, ok = reg.Lookup(registry.KindTool, "kv_get")
	assert.False(t, ok)
}

func TestExtractText(t *testing.T) {
	reg, _ := setup(t)

	got := data(t, call(t, reg, "extract_text", map[string]any{
		"document":     `<ul><li>one</li><li>two</li></ul>`,
		"content_type": "text/html",
		"expression":   "li",
	}))
	assert.Equal(t, "css", got["mode"])
	assert.Equal(t, []any{"one", "two"}, got["values"])

	got = data(t, call(t, reg, "extract_text", map[string]any{
		"document":    "id=7 id=9",
		"expression":  `id=(\d+)`,
		"max_results": 1,
	}))
	assert.Equal(t, "regex", got["mode"])
	assert.Equal(t, []any{"7"}, got["values"])

	got = data(t, call(t, reg, "extract_text", map[string]any{
		"document":   `<a><b>x</b></a>`,
		"mode":       "xpath",
		"expression": "//b",
	}))
	assert.Equal(t, []any{"x"}, got["values"])
}

func TestExtractText_Errors(t *testing.T) {
	reg, _ := setup(t)

	res := call(t, reg, "extract_text", map[string]any{"document": "x", "expression": "(", "mode": "regex"})
	assert.Equal(t, ErrCodeQueryError, res.ErrorCode)

	res = call(t, reg, "extract_text", map[string]any{"document": "x", "expression": "x", "mode": "sql"})
	assert.Equal(t, registry.CodeInvalidParameter, res.ErrorCode)
	assert.Equal(t, "mode", res.Field)

	res = call(t, reg, "extract_text", map[string]any{"document": "x", "expression": "x", "max_results": 0})
	assert.Equal(t, registry.CodeInvalidParameter, res.ErrorCode)
	assert.Equal(t, "max_results", res.Field)
}
