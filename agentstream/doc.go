// Package agentstream consumes the event stream produced by the
// conversational agent backend and rebuilds one assistant message from it
// as chunks arrive.
//
// The pipeline runs in one direction:
//
//	chunk -> LineReader -> Classifier -> Extractor -> Accumulator -> RenderFunc
//
// LineReader carries unterminated bytes between chunks, Classifier applies
// the event:/data:/comment framing, Extractor maps each data line to a
// Fragment by probing known JSON shapes in a fixed order, and Accumulator
// merges fragments so that a terminal answer always replaces the step log.
//
// Responses that are not event streams go through DecodeFallback instead.
package agentstream
