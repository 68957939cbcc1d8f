// Package accumulator builds and runs aggregation pipelines.
//
// A pipeline description is a JSON array of single-key stage objects:
//
//	[
//	  {"$match":   {"status": "ok", "$or": {"a": {"$gt": 1}, "b": 2}}},
//	  {"$project": {"user": "$u", "n": {"$add": ["$x", "$y"]}}},
//	  {"$group":   {"_id": "$user", "total": {"$sum": "$n"}}},
//	  {"$sort":    {"total": -1}},
//	  {"$skip":    10},
//	  {"$limit":   5}
//	]
//
// Stages are linked from last to first, so the last stage in the
// description is terminal and owns the result collection. Records are
// pushed through Put one at a time; a single Get drains the buffering
// stages ($group and $sort) into their downstream and returns the terminal
// collection.
//
// A Pipeline is not safe for concurrent use.
package accumulator
