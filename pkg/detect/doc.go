// Package detect provides the host-side contracts of the detection engine
// that keyword implementations bind against: the engine context available
// during signature compilation, the signature and its per-buffer match
// lists, and the per-worker thread context that collects enrichment
// fragments during packet evaluation.
//
// Setup-time APIs (EngineCtx, Signature) are used single-threaded during
// signature compilation, strictly before workers start. Each worker owns
// its own ThreadCtx; it is never shared across goroutines.
package detect
