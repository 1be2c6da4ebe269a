package tools

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/usestring/mcp-server-template/internal/registry"
)

// Examples provides the example tools: echo, time, statistics, simulated
// async work, an unreliable operation, JSON processing, report generation and
// a runtime health check.
func Examples(d *Deps) registry.Provider {
	return registry.NewProvider("tools.examples", func(r *registry.Registrar) error {
		return r.Add(
			registry.Tool("echo", "Echo a message back to the caller", d.echo,
				registry.StringParam("message", "The message to echo back").Require(),
			).WithTitle("Echo"),

			registry.Tool("get_current_time", "Get the current time in the specified timezone", d.currentTime,
				registry.StringParam("timezone_name", "IANA timezone name, e.g. UTC, America/New_York").WithDefault("UTC"),
			),

			registry.Tool("calculate_statistics", "Calculate basic statistics for a list of numbers", d.statistics,
				registry.ArrayParam("numbers", registry.TypeNumber, "Numbers to analyze").Require(),
				registry.IntegerParam("precision", "Decimal precision for results (0-10)").WithDefault(2),
			),

			registry.Tool("simulate_async_work", "Simulate work with configurable duration and failure", d.simulateWork,
				registry.NumberParam("duration", "How long to work, in seconds (max 30)").WithDefault(1.0),
				registry.BoolParam("should_fail", "Fail after the work completes").WithDefault(false),
				registry.StringParam("return_data", "Data to return on success").WithDefault("work completed"),
			).WithTimeout(10*time.Second),

			registry.Tool("unreliable_operation", "Simulate an operation that fails at random and is retried", d.unreliable,
				registry.NumberParam("success_rate", "Probability of success, 0.0 to 1.0").WithDefault(0.7),
				registry.StringParam("data", "Data to return on success").WithDefault("operation result"),
			).WithRetry(registry.RetryPolicy{MaxAttempts: 3, Delay: 500 * time.Millisecond, Backoff: 2}),

			registry.Tool("process_json_data", "Validate, filter, sort, transform, query or infer a schema for JSON data", d.processJSON,
				registry.StringParam("json_string", "JSON document to process").Require(),
				registry.StringParam("operation", "Operation to perform").WithDefault("validate").
					OneOf("validate", "filter", "sort", "transform", "query", "infer"),
				registry.StringParam("filter_key", "Key that items must contain (filter)"),
				registry.StringParam("sort_by", "Key to sort objects by (sort)"),
				registry.StringParam("expression", "jq expression (query)"),
				registry.StringParam("schema", "JSON Schema to validate against (validate)"),
			),

			registry.Tool("generate_report", "Generate a formatted report from data", d.generateReport,
				registry.StringParam("title", "Report title").Require(),
				registry.ObjectParam("data", "Data to include in the report").Require(),
				registry.StringParam("format_type", "Report format").WithDefault("json").OneOf("json", "text", "markdown"),
				registry.BoolParam("include_timestamp", "Include the generation time").WithDefault(true),
			),

			registry.Tool("system_health_check", "Report Go runtime health and dependency status", d.systemHealth),
		)
	})
}

func (d *Deps) echo(_ context.Context, args registry.Args) (registry.Reply, error) {
	return registry.Reply{
		Data:     map[string]any{"echoed": args.String("message")},
		Message:  "Message echoed successfully",
		Metadata: map[string]any{"tool_name": "echo"},
	}, nil
}

func (d *Deps) currentTime(_ context.Context, args registry.Args) (registry.Reply, error) {
	name := args.String("timezone_name")
	loc, err := d.Locations.Get(name)
	if err != nil {
		return registry.Reply{}, registry.Errorf(ErrCodeInvalidTimezone, "invalid timezone: %s", name).
			WithDetails(map[string]any{"hint": "use IANA timezone names like UTC, America/New_York, Europe/London"})
	}

	now := d.Now().In(loc)
	return registry.OK(map[string]any{
		"current_time":   now.Format(time.RFC3339),
		"timezone":       name,
		"unix_timestamp": float64(now.UnixNano()) / 1e9,
		"formatted":      now.Format("2006-01-02 15:04:05 MST"),
	}, fmt.Sprintf("Current time retrieved for %s", name)), nil
}

func (d *Deps) statistics(_ context.Context, args registry.Args) (registry.Reply, error) {
	numbers := args.Floats("numbers")
	precision := args.Int("precision")
	if len(numbers) == 0 {
		return registry.Reply{}, registry.NewError(ErrCodeEmptyList, "numbers list cannot be empty")
	}
	if precision < 0 || precision > 10 {
		return registry.Reply{}, registry.NewError(ErrCodeInvalidPrecision, "precision must be between 0 and 10")
	}

	n := float64(len(numbers))
	var sum float64
	for _, x := range numbers {
		sum += x
	}
	mean := sum / n

	sorted := slices.Clone(numbers)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	median := sorted[mid]
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}

	var sq float64
	for _, x := range numbers {
		sq += (x - mean) * (x - mean)
	}
	variance := sq / n

	return registry.Reply{
		Data: map[string]any{
			"count":    len(numbers),
			"sum":      round(sum, precision),
			"mean":     round(mean, precision),
			"median":   round(median, precision),
			"min":      sorted[0],
			"max":      sorted[len(sorted)-1],
			"std_dev":  round(math.Sqrt(variance), precision),
			"variance": round(variance, precision),
		},
		Message:  "Statistics calculated successfully",
		Metadata: map[string]any{"precision": precision},
	}, nil
}

func round(x float64, precision int) float64 {
	p := math.Pow10(precision)
	return math.Round(x*p) / p
}

func (d *Deps) simulateWork(ctx context.Context, args registry.Args) (registry.Reply, error) {
	duration := args.Float("duration")
	if duration < 0 {
		return registry.Reply{}, registry.NewError(ErrCodeInvalidDuration, "duration cannot be negative")
	}
	if duration > 30 {
		return registry.Reply{}, registry.NewError(ErrCodeDurationTooLong, "duration too long (max 30 seconds)")
	}

	start := d.Now()
	if err := d.Sleep(ctx, time.Duration(duration*float64(time.Second))); err != nil {
		return registry.Reply{}, err
	}
	if args.Bool("should_fail") {
		return registry.Reply{}, registry.NewError(ErrCodeSimulatedFailure, "simulated failure occurred")
	}

	end := d.Now()
	return registry.OK(map[string]any{
		"result":             args.String("return_data"),
		"requested_duration": duration,
		"actual_duration":    round(end.Sub(start).Seconds(), 3),
		"timestamp":          end.UTC().Format(time.RFC3339Nano),
	}, "Async work completed successfully"), nil
}

func (d *Deps) unreliable(_ context.Context, args registry.Args) (registry.Reply, error) {
	rate := args.Float("success_rate")
	if rate < 0 || rate > 1 {
		return registry.Reply{}, registry.NewError(ErrCodeInvalidRate, "success rate must be between 0.0 and 1.0")
	}
	if d.Random() >= rate {
		return registry.Reply{}, registry.NewError(ErrCodeRandomFailure, "random failure occurred").WithRetry()
	}
	return registry.Reply{
		Data:    map[string]any{"result": args.String("data")},
		Message: "Unreliable operation succeeded",
		Metadata: map[string]any{
			"success_rate": rate,
			"attempt_time": d.Now().UTC().Format(time.RFC3339Nano),
		},
	}, nil
}
