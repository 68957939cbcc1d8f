// Package aggregator hosts pipeline runs: it builds a pipeline from its
// description, feeds it records pulled from a source, and drains the result
// while watching memory.
//
// Memory is probed every ProbeInterval records, counted across both the
// feed and the drain. A probe that reports pressure aborts the run with a
// RESOURCE_EXHAUSTED error rather than letting the process run out of
// memory.
//
//	res, err := aggregator.Run(ctx, `[{"$group":{"_id":"$k","n":{"$sum":1}}}]`, src,
//	    aggregator.WithProbe(aggregator.NewRuntimeProbe(0.2)),
//	    aggregator.WithSink(write))
package aggregator
