package command

import (
	"math"
	"strconv"

	"avrctl/pkg/models"
)

// Validate checks caller-supplied parameter values against the declared
// CommandParameter rows and returns the coerced values as strings ready for
// template substitution. The supplied map holds raw values as they arrive
// from the caller's transport (JSON: string, float64 or bool).
//
// The parameter set is closed: supplied names with no declaration are
// rejected so unexpected values can never reach a template.
func Validate(declared []models.CommandParameter, supplied map[string]any) (map[string]string, error) {
	byName := make(map[string]models.CommandParameter, len(declared))
	for _, p := range declared {
		byName[p.ParamName] = p
	}

	for name := range supplied {
		if _, ok := byName[name]; !ok {
			return nil, newParamError(KindUnknownParameter, name, "not declared for this command")
		}
	}

	values := make(map[string]string, len(declared))
	for _, p := range declared {
		raw, ok := supplied[p.ParamName]
		if !ok {
			if p.Required && p.DefaultValue == "" {
				return nil, newParamError(KindMissingParameter, p.ParamName, "required parameter missing")
			}
			if p.DefaultValue == "" {
				continue
			}
			raw = p.DefaultValue
		}

		value, err := coerce(p, raw)
		if err != nil {
			return nil, err
		}
		values[p.ParamName] = value
	}

	return values, nil
}

// coerce converts one raw value to its declared type and applies the declared
// constraints, returning the canonical string form used for substitution.
func coerce(p models.CommandParameter, raw any) (string, error) {
	switch p.ParamType {
	case models.ParamString:
		s, ok := raw.(string)
		if !ok {
			return "", newParamError(KindTypeMismatch, p.ParamName, "expected string, got %T", raw)
		}
		return s, nil

	case models.ParamInteger:
		n, err := coerceInt(p, raw)
		if err != nil {
			return "", err
		}
		if err := checkRange(p, float64(n)); err != nil {
			return "", err
		}
		return strconv.FormatInt(n, 10), nil

	case models.ParamFloat:
		f, err := coerceFloat(p, raw)
		if err != nil {
			return "", err
		}
		if err := checkRange(p, f); err != nil {
			return "", err
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil

	case models.ParamBoolean:
		b, err := coerceBool(p, raw)
		if err != nil {
			return "", err
		}
		return strconv.FormatBool(b), nil

	case models.ParamEnum:
		s, ok := raw.(string)
		if !ok {
			return "", newParamError(KindTypeMismatch, p.ParamName, "expected string, got %T", raw)
		}
		for _, allowed := range p.ValidValuesList() {
			if s == allowed {
				return s, nil
			}
		}
		return "", newParamError(KindInvalidEnumValue, p.ParamName, "%q is not one of [%s]", s, p.ValidValues)

	default:
		return "", newParamError(KindTypeMismatch, p.ParamName, "unknown declared type %q", p.ParamType)
	}
}

func coerceInt(p models.CommandParameter, raw any) (int64, error) {
	switch v := raw.(type) {
	case string:
		// ParseInt consumes the whole input; trailing garbage fails.
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, newParamError(KindTypeMismatch, p.ParamName, "%q is not an integer", v)
		}
		return n, nil
	case float64:
		if math.Trunc(v) != v {
			return 0, newParamError(KindTypeMismatch, p.ParamName, "%v is not an integer", v)
		}
		return int64(v), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	default:
		return 0, newParamError(KindTypeMismatch, p.ParamName, "expected integer, got %T", raw)
	}
}

func coerceFloat(p models.CommandParameter, raw any) (float64, error) {
	switch v := raw.(type) {
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, newParamError(KindTypeMismatch, p.ParamName, "%q is not a number", v)
		}
		return f, nil
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, newParamError(KindTypeMismatch, p.ParamName, "expected number, got %T", raw)
	}
}

// Boolean spellings accepted from callers. The set is fixed and lowercase;
// anything else is a type mismatch rather than a guess.
var (
	truthy = map[string]bool{"true": true, "1": true, "on": true, "yes": true}
	falsy  = map[string]bool{"false": true, "0": true, "off": true, "no": true}
)

func coerceBool(p models.CommandParameter, raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		if truthy[v] {
			return true, nil
		}
		if falsy[v] {
			return false, nil
		}
		return false, newParamError(KindTypeMismatch, p.ParamName, "%q is not a boolean", v)
	default:
		return false, newParamError(KindTypeMismatch, p.ParamName, "expected boolean, got %T", raw)
	}
}

// checkRange enforces the declared [min, max] bounds, both inclusive.
func checkRange(p models.CommandParameter, v float64) error {
	if p.MinValue != nil && v < *p.MinValue {
		return newParamError(KindRange, p.ParamName, "%v is below minimum %v", v, *p.MinValue)
	}
	if p.MaxValue != nil && v > *p.MaxValue {
		return newParamError(KindRange, p.ParamName, "%v is above maximum %v", v, *p.MaxValue)
	}
	return nil
}
