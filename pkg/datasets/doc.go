// Package datasets implements named, typed sets of keys that detection
// rules match buffer bytes against.
//
// # Overview
//
// A dataset is a named collection of fixed-width (md5, sha256, ipv4, ipv6)
// or variable-width (string) keys, optionally carrying a JSON value per key
// for enrichment of matches. Datasets are held in a Registry that is created
// at configuration-load time and shared by all detection workers:
//
//   - Registry: process-lifetime store of named sets; lazy creation on
//     first reference, with type/format mismatch detection
//   - Dataset: a single set; concurrent-safe lookup, insert and remove
//     with memcap accounting
//   - Watcher: optional fsnotify-based hot reload of dataset load files
//   - Scheduler: optional cron-based periodic persistence of save files
//
// # File formats
//
// CSV sets hold one key per line: md5/sha256 as hex, addresses in their
// usual text form, strings base64 encoded. JSON-valued sets are loaded from
// NDJSON (one object per line) or a single JSON document; the key is
// extracted from each record at the configured value_key path.
//
// # Concurrency
//
// All Dataset operations are safe for concurrent use. A lookup on a
// JSON-valued set returns the element under a lease that the caller must
// release after rendering the value; Release is safe to call once per
// lease on every path.
package datasets
