package spacemouse

import "sync/atomic"

// inputSnapshot is a wait-free single-writer/single-reader latest-value
// register for Input. Two slots plus an atomic active index give
// tear-free publication: the writer fills the inactive slot, then
// flips the index; the reader always reads a complete Input, never a
// mixture of an old and new one.
type inputSnapshot struct {
	slots  [2]Input
	active atomic.Uint32
}

func (s *inputSnapshot) write(v Input) {
	next := 1 - s.active.Load()
	s.slots[next] = v
	s.active.Store(next)
}

func (s *inputSnapshot) read() Input {
	return s.slots[s.active.Load()]
}
