package tools

import (
	"context"
	"fmt"
	"strconv"

	"github.com/usestring/mcp-server-template/internal/registry"
)

// Math provides the arithmetic tools.
func Math() registry.Provider {
	return registry.NewProvider("tools.math", func(r *registry.Registrar) error {
		return r.Add(
			binaryOp("add", "Add two numbers", "+", func(a, b float64) (float64, error) { return a + b, nil }),
			binaryOp("subtract", "Subtract b from a", "-", func(a, b float64) (float64, error) { return a - b, nil }),
			binaryOp("multiply", "Multiply two numbers", "*", func(a, b float64) (float64, error) { return a * b, nil }),
			binaryOp("divide", "Divide a by b", "/", func(a, b float64) (float64, error) {
				if b == 0 {
					return 0, registry.NewError(ErrCodeDivisionByZero, "cannot divide by zero")
				}
				return a / b, nil
			}),
		)
	})
}

func binaryOp(name, description, symbol string, op func(a, b float64) (float64, error)) registry.Capability {
	return registry.Tool(name, description, func(_ context.Context, args registry.Args) (registry.Reply, error) {
		a, b := args.Float("a"), args.Float("b")
		v, err := op(a, b)
		if err != nil {
			return registry.Reply{}, err
		}
		expr := fmt.Sprintf("%s %s %s = %s", formatNumber(a), symbol, formatNumber(b), formatNumber(v))
		return registry.OK(map[string]any{"result": v, "expression": expr}, expr), nil
	},
		registry.NumberParam("a", "First operand").Require(),
		registry.NumberParam("b", "Second operand").Require(),
	)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
