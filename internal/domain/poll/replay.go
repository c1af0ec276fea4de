package poll

import "fmt"

// Replay applies journaled events in order without emitting them. Events must
// continue the registry's sequence exactly. On error the registry may hold a
// prefix of the journal and should be discarded.
func (r *Registry) Replay(events []Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range events {
		if e.Seq != r.seq {
			return fmt.Errorf("%w: got seq %d, want %d", ErrReplayMismatch, e.Seq, r.seq)
		}
		if err := r.apply(e); err != nil {
			return fmt.Errorf("%w: seq %d (%s): %v", ErrReplayMismatch, e.Seq, e.Type, err)
		}
		r.seq++
	}
	return nil
}

// Restore builds a registry from a journal. owner is used until the journal
// transfers ownership.
func Restore(owner Identity, events []Event, opts ...Option) (*Registry, error) {
	r, err := NewRegistry(owner, opts...)
	if err != nil {
		return nil, err
	}
	if err := r.Replay(events); err != nil {
		return nil, err
	}
	return r, nil
}
