package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"os"
	"strings"

	"github.com/kbukum/aggregator/document"
	"github.com/kbukum/aggregator/errors"
	"github.com/kbukum/aggregator/value"
)

// Stdin is the path Open reads standard input for.
const Stdin = "-"

// Line is one line of text input with surrounding whitespace trimmed.
type Line struct {
	Source string
	Number int
	Data   []byte
}

// NewJSONLines reads one JSON object per line. Blank lines are skipped.
// Object key order is kept, and strings starting with value.BytesPrefix
// decode to raw bytes. Closing the iterator closes r when it is an io.Closer.
func NewJSONLines(r io.Reader) Iterator[*value.Record] {
	c, _ := r.(io.Closer)
	return Records(NewLines("reader", r, c))
}

// Open opens a JSON-lines file, or standard input for Stdin.
func Open(path string) (Iterator[*value.Record], error) {
	if path == Stdin {
		return Records(NewLines("stdin", os.Stdin, nil)), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.SourceUnavailable(path, err)
	}
	return Records(NewLines(path, f, f)), nil
}

// NewLines splits r into lines. name identifies the input in errors;
// closer, which may be nil, is closed with the iterator.
func NewLines(name string, r io.Reader, closer io.Closer) Iterator[Line] {
	return &lineReader{name: name, r: bufio.NewReader(r), closer: closer}
}

// Records decodes non-blank lines into records. Decoding failures carry
// the source name and line number in their details.
func Records(lines Iterator[Line]) Iterator[*value.Record] {
	nonBlank := Filter(lines, func(l Line) bool { return len(l.Data) > 0 })
	return Map(nonBlank, func(_ context.Context, l Line) (*value.Record, error) {
		rec, err := decodeLine(l.Data)
		if err != nil {
			if appErr, ok := errors.AsAppError(err); ok {
				return nil, appErr.WithDetail("source", l.Source).WithDetail("line", l.Number)
			}
			return nil, err
		}
		return rec, nil
	})
}

type lineReader struct {
	name   string
	r      *bufio.Reader
	closer io.Closer
	line   int
	done   bool
}

func (it *lineReader) Next(ctx context.Context) (Line, bool, error) {
	if it.done {
		return Line{}, false, nil
	}
	if err := ctx.Err(); err != nil {
		return Line{}, false, errors.Timeout("read "+it.name, err)
	}
	data, err := it.r.ReadBytes('\n')
	if err == io.EOF {
		it.done = true
		if len(data) == 0 {
			return Line{}, false, nil
		}
	} else if err != nil {
		it.done = true
		return Line{}, false, errors.SourceUnavailable(it.name, err)
	}
	it.line++
	return Line{Source: it.name, Number: it.line, Data: bytes.TrimSpace(data)}, true, nil
}

func (it *lineReader) Close() error {
	if it.closer == nil {
		return nil
	}
	return it.closer.Close()
}

func decodeLine(data []byte) (*value.Record, error) {
	node, err := document.ParseBytes(data)
	if err != nil {
		return nil, err
	}
	if node.Kind() != document.Object {
		return nil, errors.InvalidFormat("record", "json object")
	}
	rec := node.Record()
	if err := decodeBytes(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// decodeBytes rewrites prefixed strings in rec, recursing into nested
// records and lists.
func decodeBytes(rec *value.Record) error {
	for _, k := range rec.Keys() {
		v, err := decodeValue(rec.Get(k))
		if err != nil {
			return err
		}
		rec.Set(k, v)
	}
	return nil
}

func decodeValue(v value.Value) (value.Value, error) {
	switch v.Kind() {
	case value.KindString:
		s, _ := v.AsString()
		if !strings.HasPrefix(s, value.BytesPrefix) {
			return v, nil
		}
		raw, err := base64.StdEncoding.DecodeString(s[len(value.BytesPrefix):])
		if err != nil {
			return v, errors.InvalidFormat("bytes", "base64").WithCause(err)
		}
		return value.Bytes(raw), nil
	case value.KindList:
		items, _ := v.AsList()
		for i, item := range items {
			d, err := decodeValue(item)
			if err != nil {
				return v, err
			}
			items[i] = d
		}
		return v, nil
	case value.KindRecord:
		r, _ := v.AsRecord()
		return v, decodeBytes(r)
	}
	return v, nil
}
