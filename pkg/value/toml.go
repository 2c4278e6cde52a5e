package value

import (
	"bytes"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// DecodeTOML parses a TOML document into an Object. Date and time values are
// rendered as RFC 3339 strings.
func DecodeTOML(data string) (Value, error) {
	var doc map[string]any
	if _, err := toml.Decode(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid toml: %w", err)
	}
	return fromTOML(doc)
}

func fromTOML(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(val), nil
	case int64:
		return Int(val), nil
	case float64:
		return Float(val), nil
	case string:
		return Str(val), nil
	case time.Time:
		// Local date and time kinds are tagged with named fixed zones.
		switch val.Location().String() {
		case "date-local":
			return Str(val.Format(time.DateOnly)), nil
		case "time-local":
			return Str(val.Format("15:04:05.999999999")), nil
		case "datetime-local":
			return Str(val.Format("2006-01-02T15:04:05.999999999")), nil
		}
		return Str(val.Format(time.RFC3339Nano)), nil
	case []any:
		arr := make(Array, 0, len(val))
		for _, item := range val {
			c, err := fromTOML(item)
			if err != nil {
				return nil, err
			}
			arr = append(arr, c)
		}
		return arr, nil
	case []map[string]any:
		arr := make(Array, 0, len(val))
		for _, item := range val {
			c, err := fromTOML(item)
			if err != nil {
				return nil, err
			}
			arr = append(arr, c)
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, item := range val {
			c, err := fromTOML(item)
			if err != nil {
				return nil, err
			}
			obj[k] = c
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("%w: unsupported toml value %T", ErrConversion, v)
	}
}

// EncodeTOML renders an Object as a TOML document. TOML has no null, so
// object members holding Null are omitted and Null inside arrays is an
// error.
func EncodeTOML(v Value) ([]byte, error) {
	obj, ok := v.(Object)
	if !ok {
		return nil, fmt.Errorf("%w: toml document must be an object, got %s", ErrConversion, TypeName(v))
	}
	doc, err := toTOML(obj)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode toml: %w", err)
	}
	return buf.Bytes(), nil
}

func toTOML(v Value) (any, error) {
	switch val := v.(type) {
	case Null, nil:
		return nil, fmt.Errorf("%w: toml cannot represent null", ErrConversion)
	case Bool:
		return bool(val), nil
	case Int:
		return int64(val), nil
	case Float:
		return float64(val), nil
	case Str:
		return string(val), nil
	case Array:
		out := make([]any, 0, len(val))
		for _, item := range val {
			c, err := toTOML(item)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
		return out, nil
	case Object:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if _, isNull := item.(Null); isNull {
				continue
			}
			c, err := toTOML(item)
			if err != nil {
				return nil, err
			}
			out[k] = c
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown variant %T", ErrConversion, v)
	}
}
