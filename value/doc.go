// Package value defines the dynamically typed values that flow through an
// aggregation pipeline and the cross-type ordering and truthiness rules
// shared by every other package.
//
// A Value is one of null, boolean, number, string, raw bytes, list or
// record. Records are ordered: fields iterate in insertion order.
//
// # Ordering
//
//	value.Compare(value.Null(), value.Int(3))        // -1, null sorts first
//	value.Compare(value.Int(2), value.Number(2.5))   // -1, numbers compare as doubles
//	value.Compare(value.String("a"), value.Int(1))   // kinds differ: "string" > "number"
//
// Comparing values of different kinds is deterministic but carries no
// meaning beyond that.
package value
