package scenario

import (
	"fmt"
	"github.com/saylorsolutions/superbus/eventbus"
	"strconv"
	"strings"
)

// parseValue parses a typed value like "int:5" or "string:hello".
func parseValue(text string) (any, error) {
	kind, raw, ok := strings.Cut(text, ":")
	if !ok {
		return nil, fmt.Errorf("value '%s' must be formatted as <kind>:<value>", text)
	}
	switch kind {
	case KindString:
		return raw, nil
	case KindInt:
		return strconv.Atoi(raw)
	case KindFloat:
		return strconv.ParseFloat(raw, 64)
	case KindBool:
		return strconv.ParseBool(raw)
	default:
		return nil, fmt.Errorf("value '%s' has unsupported kind '%s'", text, kind)
	}
}

// formatValue is the inverse of parseValue, used in traces.
func formatValue(val any) string {
	switch val := val.(type) {
	case string:
		return KindString + ":" + val
	case int:
		return KindInt + ":" + strconv.Itoa(val)
	case float64:
		return KindFloat + ":" + strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		return KindBool + ":" + strconv.FormatBool(val)
	case eventbus.DeadEvent:
		return KindDead + "(" + formatValue(val.Event()) + ")"
	default:
		return fmt.Sprintf("%T:%v", val, val)
	}
}

func unwrapDead(val any) any {
	if dead, ok := val.(eventbus.DeadEvent); ok {
		return dead.Event()
	}
	return val
}

func toFloat(val any) (float64, bool) {
	switch val := val.(type) {
	case int:
		return float64(val), true
	case float64:
		return val, true
	default:
		return 0, false
	}
}

// parseFilter parses gt:<number>, lt:<number>, or eq:<text>.
// Dead events are filtered by the value they wrap.
func parseFilter(expr string) (func(event any) bool, error) {
	op, operand, ok := strings.Cut(expr, ":")
	if !ok {
		return nil, fmt.Errorf("filter '%s' must be formatted as <op>:<operand>", expr)
	}
	switch op {
	case "gt", "lt":
		limit, err := strconv.ParseFloat(operand, 64)
		if err != nil {
			return nil, fmt.Errorf("filter '%s' needs a numeric operand: %w", expr, err)
		}
		return func(event any) bool {
			num, ok := toFloat(unwrapDead(event))
			if !ok {
				return false
			}
			if op == "gt" {
				return num > limit
			}
			return num < limit
		}, nil
	case "eq":
		return func(event any) bool {
			return fmt.Sprint(unwrapDead(event)) == operand
		}, nil
	default:
		return nil, fmt.Errorf("filter '%s' has unknown operation '%s'", expr, op)
	}
}
