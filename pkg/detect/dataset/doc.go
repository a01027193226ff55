// Package dataset implements the "dataset" rule keyword: matching a
// sticky buffer against named, dynamically loaded sets of keys (hashes,
// addresses, strings), optionally surfacing associated JSON metadata, and
// mutating those sets at match time for stateful watchlists.
//
// Rule syntax:
//
//	dataset:<cmd>,<name>[,<option>...]
//
// where cmd is one of set, unset, isset, isnotset, and options are
// remove_key or key-value pairs: type, load, save, state, format,
// value_key, array_key, context_key, memcap, hashsize. See Setup for the
// validation rules.
//
// Setup runs single-threaded during signature compilation and attaches an
// immutable MatchContext to the signature; Match runs per packet on worker
// goroutines against the previously selected sticky buffer.
package dataset
