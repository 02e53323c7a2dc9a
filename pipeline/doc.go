// Package pipeline provides lazy, pull-based streams.
//
// No work happens until ForEach pulls values. Each stage pulls from the
// previous one on demand, so a slow consumer slows the producer.
//
// Operators: Filter, FlatMap, Tap and Pace. Source: FromSlice.
//
//	events := pipeline.FlatMap(pipeline.FromSlice(lines), utterance)
//	paced := pipeline.Pace(events, 300*time.Millisecond)
//	err := segmenter.Consume(ctx, paced, nil)
package pipeline
