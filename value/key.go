package value

import (
	"encoding/binary"
	"math"
	"strings"
)

// Key returns a canonical string encoding of a tuple, suitable as a Go map
// key. Two tuples encode identically when every element is Equal, except
// that records are compared field by field in order rather than by text.
func Key(tuple []Value) string {
	var b strings.Builder
	for _, v := range tuple {
		writeKey(&b, v)
	}
	return b.String()
}

func writeKey(b *strings.Builder, v Value) {
	b.WriteByte(byte(v.kind))
	switch v.kind {
	case KindBool:
		if v.flag {
			b.WriteByte(1)
		} else {
			b.WriteByte(0)
		}
	case KindNumber:
		n := v.num
		if n == 0 {
			n = 0 // fold -0 into +0
		}
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(n))
		b.Write(buf[:])
	case KindString:
		writeLen(b, len(v.str))
		b.WriteString(v.str)
	case KindBytes:
		writeLen(b, len(v.raw))
		b.Write(v.raw)
	case KindList:
		writeLen(b, len(v.list))
		for _, item := range v.list {
			writeKey(b, item)
		}
	case KindRecord:
		writeLen(b, v.rec.Len())
		v.rec.Range(func(k string, fv Value) bool {
			writeLen(b, len(k))
			b.WriteString(k)
			writeKey(b, fv)
			return true
		})
	}
}

func writeLen(b *strings.Builder, n int) {
	var buf [binary.MaxVarintLen64]byte
	b.Write(buf[:binary.PutUvarint(buf[:], uint64(n))])
}
