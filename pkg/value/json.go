package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"unicode/utf8"
)

var errInvalidUTF8 = fmt.Errorf("%w: json text is not valid utf-8", ErrConversion)

// utf8Reader fails the read that delivers an invalid UTF-8 sequence. The
// json decoder would otherwise replace such bytes with U+FFFD.
type utf8Reader struct {
	r       io.Reader
	pending []byte
}

func (u *utf8Reader) Read(p []byte) (int, error) {
	n, err := u.r.Read(p)

	chunk := make([]byte, 0, len(u.pending)+n)
	chunk = append(append(chunk, u.pending...), p[:n]...)

	// Hold back a multi-byte sequence split across reads.
	cut := len(chunk)
	for i := len(chunk) - 1; i >= 0 && i >= len(chunk)-utf8.UTFMax; i-- {
		if utf8.RuneStart(chunk[i]) {
			if !utf8.FullRune(chunk[i:]) {
				cut = i
			}
			break
		}
	}
	if !utf8.Valid(chunk[:cut]) {
		return n, errInvalidUTF8
	}
	u.pending = append(u.pending[:0], chunk[cut:]...)
	if errors.Is(err, io.EOF) && len(u.pending) > 0 {
		return n, errInvalidUTF8
	}
	return n, err
}

// DecodeJSON reads exactly one JSON document from r. Input that is not
// valid UTF-8 is a conversion error.
func DecodeJSON(r io.Reader) (Value, error) {
	dec := json.NewDecoder(&utf8Reader{r: r})
	dec.UseNumber()

	v, err := decodeJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if errors.Is(err, errInvalidUTF8) {
			return nil, err
		}
		return nil, fmt.Errorf("invalid json: unexpected data after top-level value")
	}
	return v, nil
}

// DecodeJSONString is DecodeJSON over a string.
func DecodeJSONString(s string) (Value, error) {
	return DecodeJSON(bytes.NewReader([]byte(s)))
}

func decodeJSONValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("invalid json: %w", io.ErrUnexpectedEOF)
		}
		return nil, fmt.Errorf("invalid json: %w", err)
	}

	switch t := tok.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(t), nil
	case string:
		return Str(t), nil
	case json.Number:
		return decodeJSONNumber(t)
	case json.Delim:
		switch t {
		case '[':
			arr := Array{}
			for dec.More() {
				item, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("invalid json: %w", err)
			}
			return arr, nil
		case '{':
			obj := Object{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, fmt.Errorf("invalid json: %w", err)
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("invalid json: object key %v is not a string", keyTok)
				}
				item, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				obj[key] = item
			}
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("invalid json: %w", err)
			}
			return obj, nil
		}
	}
	return nil, fmt.Errorf("invalid json: unexpected token %v", tok)
}

// decodeJSONNumber prefers an exact integer, then a float.
func decodeJSONNumber(n json.Number) (Value, error) {
	if i, err := n.Int64(); err == nil {
		return Int(i), nil
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: number %s is not representable as i64 or f64", ErrConversion, n.String())
	}
	return Float(f), nil
}

// EncodeJSON renders v as JSON. Object keys are written in sorted order.
func EncodeJSON(v Value, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}
	if !pretty {
		return buf.Bytes(), nil
	}

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case Null, nil:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(bool(val)))
	case Int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case Float:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: %v cannot be encoded as json", ErrConversion, f)
		}
		b, err := json.Marshal(f)
		if err != nil {
			return err
		}
		buf.Write(b)
	case Str:
		if err := writeJSONString(buf, string(val)); err != nil {
			return err
		}
	case Array:
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, k := range val.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeJSON(buf, val[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("%w: unknown variant %T", ErrConversion, v)
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: string %q is not valid utf-8 and cannot be encoded as json", ErrConversion, s)
	}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	// Encode of a string cannot fail.
	_ = enc.Encode(s)
	// drop the newline Encode appends
	buf.Truncate(buf.Len() - 1)
	return nil
}
