package value

import (
	"encoding/base64"

	jsoniter "github.com/json-iterator/go"
)

// BytesPrefix marks a JSON string that carries base64-encoded raw bytes.
const BytesPrefix = "base64:"

// MarshalJSON encodes v. Bytes are written as BytesPrefix + base64 so that
// they survive a round trip through a JSON record source.
func (v Value) MarshalJSON() ([]byte, error) {
	stream := jsoniter.ConfigDefault.BorrowStream(nil)
	defer jsoniter.ConfigDefault.ReturnStream(stream)
	writeValue(stream, v)
	if stream.Error != nil {
		return nil, stream.Error
	}
	return append([]byte(nil), stream.Buffer()...), nil
}

// MarshalJSON encodes the record as a JSON object in field order.
func (r *Record) MarshalJSON() ([]byte, error) {
	return RecordOf(r).MarshalJSON()
}

func writeValue(stream *jsoniter.Stream, v Value) {
	switch v.kind {
	case KindNull:
		stream.WriteNil()
	case KindBool:
		stream.WriteBool(v.flag)
	case KindNumber:
		if v.flag {
			stream.WriteInt64(int64(v.num))
		} else {
			stream.WriteFloat64(v.num)
		}
	case KindString:
		stream.WriteString(v.str)
	case KindBytes:
		stream.WriteString(BytesPrefix + base64.StdEncoding.EncodeToString(v.raw))
	case KindList:
		stream.WriteArrayStart()
		for i, item := range v.list {
			if i > 0 {
				stream.WriteMore()
			}
			writeValue(stream, item)
		}
		stream.WriteArrayEnd()
	case KindRecord:
		stream.WriteObjectStart()
		i := 0
		v.rec.Range(func(k string, fv Value) bool {
			if i > 0 {
				stream.WriteMore()
			}
			stream.WriteObjectField(k)
			writeValue(stream, fv)
			i++
			return true
		})
		stream.WriteObjectEnd()
	}
}
