package datasets

import "sync"

// Lease guards a JSON element returned by LookupJSON for the duration of
// value rendering. Release is safe to call exactly once per lease; extra
// calls are no-ops.
type Lease struct {
	mu   *sync.Mutex
	once sync.Once
}

// Release unlocks the element. Safe on a nil lease.
func (l *Lease) Release() {
	if l == nil || l.mu == nil {
		return
	}
	l.once.Do(l.mu.Unlock)
}

// JSONResult is the outcome of a lookup on a JSON-valued dataset. When
// Found is true the caller holds a lease on the element and must call
// Release after it is done reading Value, on every path.
type JSONResult struct {
	// Found reports whether the key is present.
	Found bool

	// Value is the JSON value associated with the key. May be empty.
	// Valid only until Release is called.
	Value []byte

	lease *Lease
}

// Release releases the element lease, if any. Safe to call on a zero
// result and safe to call more than once.
func (r *JSONResult) Release() {
	r.lease.Release()
}

// LookupJSON looks up the key formed from data in a JSON-valued dataset.
// A found element is returned locked; the caller must Release the result.
// Encoding failures and misses both report not-found.
func (d *Dataset) LookupJSON(data []byte) JSONResult {
	key, err := d.encodeKey(data)
	if err != nil {
		d.metrics.observeLookup(d.name, "error")
		return JSONResult{}
	}

	d.mu.RLock()
	el, ok := d.elems[key]
	d.mu.RUnlock()

	if !ok {
		d.metrics.observeLookup(d.name, "miss")
		return JSONResult{}
	}
	d.metrics.observeLookup(d.name, "hit")

	el.mu.Lock()
	return JSONResult{
		Found: true,
		Value: el.value,
		lease: &Lease{mu: &el.mu},
	}
}
