package unit

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// isValueMessage reports whether class/cmd is a basic or own-class set or
// report, the two messages that carry a unit's current value.
func isValueMessage(class, cmd, own uint8) bool {
	if class != ClassBasic && class != own {
		return false
	}
	return cmd == CmdSet || cmd == CmdReport
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func boolValue(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		switch strings.ToLower(x) {
		case "on", "true", "locked":
			return true, nil
		case "off", "false", "unlocked":
			return false, nil
		}
	}
	return false, fmt.Errorf("%w: want bool, got %v", ErrBadValue, v)
}

func cardValue(v any) (uint32, error) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint8:
		return uint32(x), nil
	case uint32:
		return x, nil
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrBadValue, err)
		}
		f = float64(n)
	default:
		return 0, fmt.Errorf("%w: want number, got %v", ErrBadValue, v)
	}
	if f < 0 || f > math.MaxUint32 || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %v out of range", ErrBadValue, v)
	}
	return uint32(f), nil
}

func boolCommand(v any) (Command, error) {
	on, err := boolValue(v)
	if err != nil {
		return Command{}, err
	}
	var value1 uint32
	if on {
		value1 = 1
	}
	return Command{Op: OpOffOn, Value1: value1}, nil
}
