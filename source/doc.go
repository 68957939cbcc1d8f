// Package source provides pull-based record sources that feed an
// aggregation run.
//
// A source is an Iterator: values are pulled one at a time with Next and
// the iterator is released with Close. Sources compose lazily; no record
// is read until it is pulled.
//
//	it, err := source.Open("events.ndjson")
//	if err != nil {
//		return err
//	}
//	defer it.Close()
//	recs, err := source.Collect(ctx, it)
package source
