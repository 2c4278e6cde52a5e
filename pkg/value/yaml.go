package value

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DecodeYAML parses a single YAML document. An empty document decodes to
// Null.
func DecodeYAML(data []byte) (Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	if doc.Kind == 0 {
		return Null{}, nil
	}
	return fromYAMLNode(&doc)
}

func fromYAMLNode(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null{}, nil
		}
		return fromYAMLNode(n.Content[0])
	case yaml.AliasNode:
		return fromYAMLNode(n.Alias)
	case yaml.SequenceNode:
		arr := make(Array, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := fromYAMLNode(item)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.MappingNode:
		obj := make(Object, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			if key.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%w: yaml mapping key at line %d is not a scalar", ErrConversion, key.Line)
			}
			if key.ShortTag() == "!!merge" {
				if err := mergeYAML(obj, val); err != nil {
					return nil, err
				}
				continue
			}
			v, err := fromYAMLNode(val)
			if err != nil {
				return nil, err
			}
			obj[key.Value] = v
		}
		return obj, nil
	case yaml.ScalarNode:
		return fromYAMLScalar(n)
	default:
		return nil, fmt.Errorf("%w: unsupported yaml node kind %d", ErrConversion, n.Kind)
	}
}

func mergeYAML(dst Object, n *yaml.Node) error {
	v, err := fromYAMLNode(n)
	if err != nil {
		return err
	}
	merge := func(src Value) error {
		obj, ok := src.(Object)
		if !ok {
			return fmt.Errorf("%w: yaml merge value must be a mapping", ErrConversion)
		}
		for k, item := range obj {
			if _, exists := dst[k]; !exists {
				dst[k] = item
			}
		}
		return nil
	}
	if arr, ok := v.(Array); ok {
		for _, item := range arr {
			if err := merge(item); err != nil {
				return err
			}
		}
		return nil
	}
	return merge(v)
}

func fromYAMLScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null{}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConversion, err)
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return Int(i), nil
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("%w: number %s is not representable as i64 or f64", ErrConversion, n.Value)
		}
		return Float(f), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("%w: number %s is not representable as f64", ErrConversion, n.Value)
		}
		return Float(f), nil
	default:
		return Str(n.Value), nil
	}
}

// EncodeYAML renders v as a YAML document with two-space indentation.
func EncodeYAML(v Value) ([]byte, error) {
	node, err := toYAMLNode(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("failed to encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func toYAMLNode(v Value) (*yaml.Node, error) {
	scalar := func(tag, val string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: val}
	}

	switch val := v.(type) {
	case Null, nil:
		return scalar("!!null", "null"), nil
	case Bool:
		return scalar("!!bool", strconv.FormatBool(bool(val))), nil
	case Int:
		return scalar("!!int", strconv.FormatInt(int64(val), 10)), nil
	case Float:
		return scalar("!!float", formatYAMLFloat(float64(val))), nil
	case Str:
		return scalar("!!str", string(val)), nil
	case Array:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range val {
			child, err := toYAMLNode(item)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, child)
		}
		return n, nil
	case Object:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range val.Keys() {
			child, err := toYAMLNode(val[k])
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, scalar("!!str", k), child)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("%w: unknown variant %T", ErrConversion, v)
	}
}

func formatYAMLFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	// keep the float tag round-trippable: "1" would read back as an int
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}
