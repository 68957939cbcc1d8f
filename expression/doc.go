// Package expression builds and evaluates value-producing expression trees
// from a JSON description.
//
// A description is one of:
//
//	42, true              literal
//	"nil"                 null
//	"$a.b.c"              path lookup, null on any missing segment
//	"text"                string literal
//	["$a", 1]             list of sub-expressions
//	{"$add": ["$a", 1]}   operator call
//	{"x": "$a", "y": 1}   field mapping producing a new record
//
// Trees are immutable after Build and are evaluated against one record at a
// time. Malformed descriptions fail at build time with an
// errors.ErrCodeBuild error naming the operator; strict operators (divide,
// mod, the codec conversions, time and script operators) fail at evaluation
// time with errors.ErrCodeEvaluation, while the arithmetic, boolean and
// string operators coerce their operands instead.
package expression
