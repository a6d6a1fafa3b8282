package server

import (
	"fmt"
	"math"
	"strconv"

	"github.com/mj1618/android-cli/internal/bridge"
	"github.com/mj1618/android-cli/internal/core"
)

// Argument extraction helpers. JSON numbers arrive as float64.

func stringParam(params map[string]any, key, defaultVal string) string {
	if v, ok := params[key]; ok && v != nil {
		switch s := v.(type) {
		case string:
			return s
		case float64:
			return strconv.FormatFloat(s, 'f', -1, 64)
		}
		return fmt.Sprintf("%v", v)
	}
	return defaultVal
}

func int64Param(params map[string]any, key string, defaultVal int64) (int64, bool) {
	v, ok := params[key]
	if !ok || v == nil {
		return defaultVal, false
	}
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return defaultVal, false
		}
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	case string:
		if i, err := strconv.ParseInt(n, 10, 64); err == nil {
			return i, true
		}
	}
	return defaultVal, false
}

func intParam(params map[string]any, key string, defaultVal int) int {
	n, _ := int64Param(params, key, int64(defaultVal))
	return int(n)
}

func boolParam(params map[string]any, key string, defaultVal bool) bool {
	if v, ok := params[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}

// requireInts fetches required integer arguments, or reports the first
// one missing as a failed outcome.
func requireInts(params map[string]any, keys ...string) ([]int64, *bridge.Outcome) {
	vals := make([]int64, len(keys))
	for i, key := range keys {
		n, ok := int64Param(params, key, 0)
		if !ok {
			out := bridge.Outcome{
				Text: fmt.Sprintf("ERROR: %s is required and must be an integer.", key),
				Err:  core.Newf(core.KindValidation, "arguments", "%s is required", key),
			}
			return nil, &out
		}
		vals[i] = n
	}
	return vals, nil
}

// requireStrings fetches required string arguments, or reports the first
// one missing as a failed outcome. An explicit empty string is present;
// the operation decides whether it is acceptable.
func requireStrings(params map[string]any, keys ...string) ([]string, *bridge.Outcome) {
	vals := make([]string, len(keys))
	for i, key := range keys {
		if v, ok := params[key]; !ok || v == nil {
			out := bridge.Outcome{
				Text: fmt.Sprintf("ERROR: %s is required.", key),
				Err:  core.Newf(core.KindValidation, "arguments", "%s is required", key),
			}
			return nil, &out
		}
		vals[i] = stringParam(params, key, "")
	}
	return vals, nil
}
