package schema

import (
	"math"
	"strconv"
	"strings"

	"github.com/udisondev/lvlc/internal/model"
)

// spawnInput is the closed set of accepted spawn_when shapes.
// classifySpawn picks the variant; condition normalizes it.
type spawnInput interface {
	condition(field string) (model.SpawnCondition, error)
}

// spawnDefault covers a missing or empty spawn_when.
type spawnDefault struct{}

// spawnTicks is a bare number: start after N ticks.
type spawnTicks struct{ ticks any }

// spawnText is one of "on_start", "on_death:<id>", "on_timer", "on_timer:<n>".
type spawnText struct{ text string }

// spawnStructured is {"kind": ..., "arg": ..., "delay": ...}.
type spawnStructured struct{ obj map[string]any }

const (
	kindOnStart = "on_start"
	kindOnDeath = "on_death"
	kindOnTimer = "on_timer" // legacy, folded into on_start
)

func classifySpawn(field string, v any) (spawnInput, error) {
	if isEmptyValue(v) {
		return spawnDefault{}, nil
	}
	switch val := v.(type) {
	case map[string]any:
		return spawnStructured{obj: val}, nil
	case string:
		return spawnText{text: val}, nil
	case bool:
		// false is caught by isEmptyValue
		return nil, model.NewFieldError(model.ErrUnrecognizedEncoding, field, v, "unrecognized spawn_when")
	}
	if _, ok := asNumber(v); ok {
		return spawnTicks{ticks: v}, nil
	}
	return nil, model.NewFieldError(model.ErrUnrecognizedEncoding, field, v, "unrecognized spawn_when")
}

// isEmptyValue reports the "falsy" values that mean plain on_start.
func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case bool:
		return !val
	case string:
		return val == ""
	case map[string]any:
		return len(val) == 0
	case []any:
		return len(val) == 0
	}
	if n, ok := asNumber(v); ok {
		return n.i == 0 && n.f == 0
	}
	return false
}

func (spawnDefault) condition(string) (model.SpawnCondition, error) {
	return model.OnStart(0), nil
}

func (s spawnTicks) condition(field string) (model.SpawnCondition, error) {
	ticks, err := intValue(field, s.ticks)
	if err != nil {
		return model.SpawnCondition{}, err
	}
	return model.OnStart(clampU32(ticks)), nil
}

func (s spawnText) condition(field string) (model.SpawnCondition, error) {
	text := strings.TrimSpace(s.text)
	switch {
	case text == kindOnStart, text == kindOnTimer:
		return model.OnStart(0), nil
	case strings.HasPrefix(text, kindOnDeath+":"):
		return model.OnDeath(strings.TrimPrefix(text, kindOnDeath+":"), 0), nil
	case strings.HasPrefix(text, kindOnTimer+":"):
		ticks, err := intValue(field, strings.TrimPrefix(text, kindOnTimer+":"))
		if err != nil {
			return model.SpawnCondition{}, err
		}
		return model.OnStart(clampU32(ticks)), nil
	}
	return model.SpawnCondition{}, model.NewFieldError(model.ErrUnrecognizedEncoding, field, s.text, "unrecognized spawn_when")
}

func (s spawnStructured) condition(field string) (model.SpawnCondition, error) {
	kind := kindOnStart
	if raw, ok := s.obj["kind"]; ok {
		k, isString := raw.(string)
		if !isString {
			return model.SpawnCondition{}, model.NewFieldError(model.ErrUnrecognizedEncoding, field+".kind", raw, "spawn kind must be a string")
		}
		kind = k
	}

	delay, err := optionalInt(s.obj, "delay", field+".delay")
	if err != nil {
		return model.SpawnCondition{}, err
	}

	switch kind {
	case kindOnStart:
		return model.OnStart(clampU32(delay)), nil
	case kindOnDeath:
		return model.OnDeath(targetRef(s.obj), clampU32(delay)), nil
	case kindOnTimer:
		legacy, err := optionalInt(s.obj, "arg", field+".arg")
		if err != nil {
			return model.SpawnCondition{}, err
		}
		return model.OnStart(clampU32(saturatingAdd(legacy, delay))), nil
	}
	return model.SpawnCondition{}, model.NewFieldError(model.ErrUnrecognizedEncoding, field+".kind", kind, "unknown spawn kind")
}

func optionalInt(obj map[string]any, key, field string) (int64, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return 0, nil
	}
	return intValue(field, v)
}

// targetRef renders an on_death "arg" as the textual reference the resolver
// checks. A missing arg refers to identity 0; fractional numbers truncate.
func targetRef(obj map[string]any) string {
	raw, ok := obj["arg"]
	if !ok {
		return "0"
	}
	switch val := raw.(type) {
	case string:
		return val
	case nil:
		return ""
	}
	if n, ok := asNumber(raw); ok {
		if n.integral {
			return strconv.FormatInt(n.i, 10)
		}
		if math.IsNaN(n.f) {
			return ""
		}
		return strconv.FormatInt(truncate(n.f), 10) // 3.9 -> "3"
	}
	return ""
}

func saturatingAdd(a, b int64) int64 {
	switch {
	case b > 0 && a > math.MaxInt64-b:
		return math.MaxInt64
	case b < 0 && a < math.MinInt64-b:
		return math.MinInt64
	default:
		return a + b
	}
}
