package detect

// ListNotSet marks a signature with no sticky buffer selected.
const ListNotSet = -1

// SigMatch is a compiled keyword match attached to a signature's match
// list. Implementations are immutable after setup and read concurrently
// by all workers.
type SigMatch interface {
	// Keyword returns the rule keyword this match was compiled from.
	Keyword() string
}

// Signature is a detection rule under compilation or evaluation. Keyword
// setup functions append matches to the list of the currently selected
// sticky buffer.
type Signature struct {
	// ID is the numeric signature ID.
	ID uint32

	bufferList int
	matches    map[int][]SigMatch
}

// NewSignature creates a signature with no sticky buffer selected.
func NewSignature(id uint32) *Signature {
	return &Signature{
		ID:         id,
		bufferList: ListNotSet,
		matches:    make(map[int][]SigMatch),
	}
}

// SelectBuffer marks the given buffer list as the active sticky buffer.
func (s *Signature) SelectBuffer(list int) {
	s.bufferList = list
}

// ActiveBufferList returns the currently selected sticky buffer list, or
// ListNotSet when none is selected.
func (s *Signature) ActiveBufferList() int {
	return s.bufferList
}

// AppendMatch attaches a compiled keyword match to the given buffer list.
func (s *Signature) AppendMatch(list int, m SigMatch) {
	s.matches[list] = append(s.matches[list], m)
}

// Matches returns the match list for the given buffer list.
func (s *Signature) Matches(list int) []SigMatch {
	return s.matches[list]
}
