package detect

const (
	// DefaultJSONContentCapacity is the number of enrichment fragments a
	// worker can accumulate while evaluating signatures against one packet.
	DefaultJSONContentCapacity = 64

	// JSONContentItemLen is the byte budget for a single rendered
	// enrichment fragment, including key, quotes and colon.
	JSONContentItemLen = 1024
)

// JSONContent is one enrichment fragment produced during match evaluation,
// tagged with the signature that produced it.
type JSONContent struct {
	SignatureID uint32
	Fragment    string
}

// ThreadCtx is per-worker evaluation state. Each worker owns exactly one;
// it is never shared across goroutines.
type ThreadCtx struct {
	content  []JSONContent
	capacity int
}

// NewThreadCtx creates a thread context with the default enrichment
// capacity.
func NewThreadCtx() *ThreadCtx {
	return NewThreadCtxWithCapacity(DefaultJSONContentCapacity)
}

// NewThreadCtxWithCapacity creates a thread context holding at most n
// enrichment fragments per packet.
func NewThreadCtxWithCapacity(n int) *ThreadCtx {
	return &ThreadCtx{
		content:  make([]JSONContent, 0, n),
		capacity: n,
	}
}

// Reset clears accumulated enrichment. Called once per packet before
// signature evaluation.
func (t *ThreadCtx) Reset() {
	t.content = t.content[:0]
}

// TryAppendJSON appends an enrichment fragment if a slot remains. It
// returns false, leaving the buffer unchanged, when the capacity is
// exhausted; the caller's match result is unaffected either way.
func (t *ThreadCtx) TryAppendJSON(sigID uint32, fragment string) bool {
	if len(t.content) >= t.capacity {
		return false
	}
	t.content = append(t.content, JSONContent{SignatureID: sigID, Fragment: fragment})
	return true
}

// JSONContent returns the fragments accumulated since the last Reset, in
// append order. The slice is valid until the next Reset.
func (t *ThreadCtx) JSONContent() []JSONContent {
	return t.content
}
