package document

import (
	"bytes"
	"strconv"

	"github.com/buger/jsonparser"

	"github.com/kbukum/aggregator/errors"
)

// Parse parses a complete JSON text.
func Parse(text string) (Node, error) {
	return ParseBytes([]byte(text))
}

// ParseBytes parses a complete JSON document. Trailing non-space content is
// rejected.
func ParseBytes(data []byte) (Node, error) {
	raw, typ, end, err := jsonparser.Get(data)
	if err != nil {
		return Node{}, malformed(data, err)
	}
	if len(bytes.TrimSpace(data[end:])) > 0 {
		return Node{}, errors.New(errors.ErrCodeInvalidFormat, "malformed json: trailing content").
			WithDetail("text", string(data))
	}
	n, err := build(raw, typ)
	if err != nil {
		return Node{}, malformed(data, err)
	}
	return n, nil
}

func malformed(data []byte, err error) *errors.AppError {
	return errors.New(errors.ErrCodeInvalidFormat, "malformed json").
		WithDetail("text", string(data)).
		WithCause(err)
}

func build(raw []byte, typ jsonparser.ValueType) (Node, error) {
	switch typ {
	case jsonparser.Null:
		return Node{kind: Null, raw: "null"}, nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(raw)
		if err != nil {
			return Node{}, err
		}
		return Node{kind: Bool, flag: b, raw: string(raw)}, nil
	case jsonparser.Number:
		return buildNumber(raw)
	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return Node{}, err
		}
		return Node{kind: String, str: s, raw: strconv.Quote(s)}, nil
	case jsonparser.Array:
		n := Node{kind: Array, raw: string(raw)}
		var inner error
		_, err := jsonparser.ArrayEach(raw, func(v []byte, t jsonparser.ValueType, _ int, err error) {
			if inner != nil {
				return
			}
			if err != nil {
				inner = err
				return
			}
			item, err := build(v, t)
			if err != nil {
				inner = err
				return
			}
			n.items = append(n.items, item)
		})
		if err != nil {
			return Node{}, err
		}
		if inner != nil {
			return Node{}, inner
		}
		return n, nil
	case jsonparser.Object:
		n := Node{kind: Object, raw: string(raw)}
		err := jsonparser.ObjectEach(raw, func(k, v []byte, t jsonparser.ValueType, _ int) error {
			key, err := jsonparser.ParseString(k)
			if err != nil {
				return err
			}
			item, err := build(v, t)
			if err != nil {
				return err
			}
			n.keys = append(n.keys, key)
			n.items = append(n.items, item)
			return nil
		})
		if err != nil {
			return Node{}, err
		}
		return n, nil
	}
	return Node{}, jsonparser.UnknownValueTypeError
}

func buildNumber(raw []byte) (Node, error) {
	text := string(raw)
	if !bytes.ContainsAny(raw, ".eE") {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return Node{kind: Number, num: float64(i), integral: true, raw: text}, nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Node{}, err
	}
	return Node{kind: Number, num: f, raw: text}, nil
}
