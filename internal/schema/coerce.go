package schema

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/udisondev/lvlc/internal/model"
)

// number is a decoded numeric scalar.
// integral is true when the literal itself was an integer ("5", not "5.0").
// Integer literals beyond int64 saturate.
type number struct {
	integral bool
	i        int64
	f        float64
}

// asNumber reports whether v is a numeric scalar produced by Decode.
func asNumber(v any) (number, bool) {
	switch n := v.(type) {
	case json.Number:
		return parseNumberLiteral(string(n))
	case int:
		return number{integral: true, i: int64(n), f: float64(n)}, true
	case int64:
		return number{integral: true, i: n, f: float64(n)}, true
	case uint64:
		if n > math.MaxInt64 {
			return number{integral: true, i: math.MaxInt64, f: float64(n)}, true
		}
		return number{integral: true, i: int64(n), f: float64(n)}, true
	case float64:
		return number{f: n}, true
	}
	return number{}, false
}

func parseNumberLiteral(s string) (number, bool) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return number{integral: true, i: i, f: float64(i)}, true
	} else if errors.Is(err, strconv.ErrRange) {
		i := int64(math.MaxInt64)
		if strings.HasPrefix(s, "-") {
			i = math.MinInt64
		}
		f, _ := strconv.ParseFloat(s, 64)
		return number{integral: true, i: i, f: f}, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return number{}, false
	}
	return number{f: f}, true
}

// truncate converts a float to int64 toward zero, saturating at the int64 range.
func truncate(f float64) int64 {
	switch {
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	default:
		return int64(f)
	}
}

// intValue coerces v to an integer the permissive way used for counts,
// delays and health: integers, truncated floats, integer text and booleans.
func intValue(field string, v any) (int64, error) {
	if b, ok := v.(bool); ok {
		if b {
			return 1, nil
		}
		return 0, nil
	}
	if n, ok := asNumber(v); ok {
		if n.integral {
			return n.i, nil
		}
		if math.IsNaN(n.f) || math.IsInf(n.f, 0) {
			return 0, model.NewFieldError(model.ErrOutOfRangeValue, field, v, "must be a finite number")
		}
		return truncate(n.f), nil
	}
	if s, ok := v.(string); ok {
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err == nil {
			return i, nil
		}
		if errors.Is(err, strconv.ErrRange) {
			if strings.HasPrefix(strings.TrimSpace(s), "-") {
				return math.MinInt64, nil
			}
			return math.MaxInt64, nil
		}
		return 0, model.NewFieldError(model.ErrUnrecognizedEncoding, field, v, "must be an integer")
	}
	return 0, model.NewFieldError(model.ErrUnrecognizedEncoding, field, v, "must be an integer")
}

func clampU16(x int64) uint16 {
	switch {
	case x < 0:
		return 0
	case x > math.MaxUint16:
		return math.MaxUint16
	default:
		return uint16(x)
	}
}

func clampU32(x int64) uint32 {
	switch {
	case x < 0:
		return 0
	case x > math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(x)
	}
}

// u16Field reads an optional field and clamps it to uint16. Missing means def.
func u16Field(obj map[string]any, key, field string, def uint16) (uint16, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return def, nil
	}
	i, err := intValue(field, v)
	if err != nil {
		return 0, err
	}
	return clampU16(i), nil
}

// u32Field reads an optional field and clamps it to uint32. Missing means 0.
func u32Field(obj map[string]any, key, field string) (uint32, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return 0, nil
	}
	i, err := intValue(field, v)
	if err != nil {
		return 0, err
	}
	return clampU32(i), nil
}

// floatValue coerces v to a float32. Values that overflow float32 fail.
func floatValue(field string, v any) (float32, error) {
	var f float64
	if n, ok := asNumber(v); ok {
		f = n.f
	} else if s, ok := v.(string); ok {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, model.NewFieldError(model.ErrUnrecognizedEncoding, field, v, "must be a number")
		}
		f = parsed
	} else {
		return 0, model.NewFieldError(model.ErrUnrecognizedEncoding, field, v, "must be a number")
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, model.NewFieldError(model.ErrOutOfRangeValue, field, v, "must be a finite number")
	}
	f32 := float32(f)
	if math.IsInf(float64(f32), 0) {
		return 0, model.NewFieldError(model.ErrOutOfRangeValue, field, v, "does not fit a 32-bit float")
	}
	return f32, nil
}

// vec2Field reads a [x, y] pair. Missing means the origin.
func vec2Field(obj map[string]any, key, field string) (model.Vec2, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return model.Vec2{}, nil
	}
	arr, ok := v.([]any)
	if !ok || len(arr) != 2 {
		return model.Vec2{}, model.NewFieldError(model.ErrOutOfRangeValue, field, v, "must be an array of 2 numbers")
	}
	x, err := floatValue(field+"[0]", arr[0])
	if err != nil {
		return model.Vec2{}, err
	}
	y, err := floatValue(field+"[1]", arr[1])
	if err != nil {
		return model.Vec2{}, err
	}
	return model.Vec2{X: x, Y: y}, nil
}

// typeTag resolves a planet or enemy type. Raw integers clamp into [0, limit];
// names go through lookup; everything else, unknown names included, is
// model.TypeUnknown.
func typeTag(v any, lookup func(string) (uint8, bool), limit int64) uint8 {
	if n, ok := asNumber(v); ok && n.integral {
		switch {
		case n.i < 0:
			return 0
		case n.i > limit:
			return uint8(limit)
		default:
			return uint8(n.i)
		}
	}
	if s, ok := v.(string); ok {
		if t, ok := lookup(s); ok {
			return t
		}
	}
	return model.TypeUnknown
}

// difficulty validates an enemy difficulty. Unlike the clamped fields it is
// strict: booleans, fractions, empty or non-numeric text and anything outside
// 0..255 fail.
func difficulty(field string, v any) (uint8, error) {
	var i int64
	switch val := v.(type) {
	case nil:
		return 0, model.NewFieldError(model.ErrMissingRequiredField, field, nil, "enemy difficulty is required")
	case bool:
		return 0, model.NewFieldError(model.ErrUnrecognizedEncoding, field, v, "enemy difficulty must be an integer between 0 and 255")
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, model.NewFieldError(model.ErrUnrecognizedEncoding, field, v, "enemy difficulty must be an integer between 0 and 255")
		}
		parsed, err := strconv.ParseInt(s, 10, 64)
		if errors.Is(err, strconv.ErrRange) {
			return 0, model.NewFieldError(model.ErrOutOfRangeValue, field, v, "enemy difficulty must be within 0..255")
		}
		if err != nil {
			return 0, model.NewFieldError(model.ErrUnrecognizedEncoding, field, v, "enemy difficulty must be an integer")
		}
		i = parsed
	default:
		n, ok := asNumber(v)
		if !ok {
			return 0, model.NewFieldError(model.ErrUnrecognizedEncoding, field, v, "enemy difficulty has unsupported type")
		}
		if !n.integral {
			if n.f != math.Trunc(n.f) || math.IsInf(n.f, 0) {
				return 0, model.NewFieldError(model.ErrOutOfRangeValue, field, v, "enemy difficulty must be an integer")
			}
			i = truncate(n.f)
		} else {
			i = n.i
		}
	}

	if i < 0 || i > math.MaxUint8 {
		return 0, model.NewFieldError(model.ErrOutOfRangeValue, field, i, "enemy difficulty must be within 0..255")
	}
	return uint8(i), nil
}

// identity validates an explicit enemy id. nil means "assign later".
func identity(field string, v any) (*uint16, error) {
	if v == nil {
		return nil, nil
	}
	var i int64
	switch val := v.(type) {
	case bool:
		return nil, model.NewFieldError(model.ErrUnrecognizedEncoding, field, v, "enemy id must be an integer")
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if errors.Is(err, strconv.ErrRange) {
			return nil, model.NewFieldError(model.ErrOutOfRangeValue, field, v, "enemy id out of range 0..65535")
		}
		if err != nil {
			return nil, model.NewFieldError(model.ErrUnrecognizedEncoding, field, v, "enemy id must be an integer")
		}
		i = parsed
	default:
		n, ok := asNumber(v)
		if !ok {
			return nil, model.NewFieldError(model.ErrUnrecognizedEncoding, field, v, "enemy id must be an integer")
		}
		if !n.integral {
			if n.f != math.Trunc(n.f) || math.IsInf(n.f, 0) {
				return nil, model.NewFieldError(model.ErrOutOfRangeValue, field, v, "enemy id must be an integer")
			}
			i = truncate(n.f)
		} else {
			i = n.i
		}
	}

	if i < 0 || i > math.MaxUint16 {
		return nil, model.NewFieldError(model.ErrOutOfRangeValue, field, i, "enemy id out of range 0..65535")
	}
	id := uint16(i)
	return &id, nil
}
