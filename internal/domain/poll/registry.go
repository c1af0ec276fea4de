package poll

import (
	"strings"
	"sync"
	"time"
)

type record struct {
	question  string
	choices   []Choice
	creator   Identity
	createdAt time.Time
	endTime   time.Time
	active    bool
	voters    map[Identity]struct{}
}

func (rec *record) bounded() bool { return !rec.endTime.IsZero() }

// Registry owns every poll and serializes all mutations behind one lock.
// Each mutation is expressed as an Event and applied with apply, the same
// path Replay uses to rebuild state from a journal.
type Registry struct {
	mu      sync.RWMutex
	owner   Identity
	polls   []*record
	seq     uint64
	emitter Emitter
}

type Option func(*Registry)

// WithEmitter routes events to e instead of discarding them.
func WithEmitter(e Emitter) Option {
	return func(r *Registry) {
		if e != nil {
			r.emitter = e
		}
	}
}

// NewRegistry creates an empty registry owned by owner.
func NewRegistry(owner Identity, opts ...Option) (*Registry, error) {
	if owner.IsZero() {
		return nil, ErrInvalidAddress
	}
	r := &Registry{owner: owner, emitter: discard{}}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// CreatePoll stores a new poll and returns its id. A non-positive duration
// creates a poll that only an explicit close can end.
func (r *Registry) CreatePoll(question string, options []string, duration time.Duration, caller Identity, now time.Time) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := Event{
		Type:     EventPollCreated,
		PollID:   uint64(len(r.polls)),
		Actor:    caller,
		At:       now,
		Question: question,
		Options:  append([]string(nil), options...),
	}
	if duration > 0 {
		e.EndTime = now.Add(duration)
	}
	if err := r.commit(e); err != nil {
		return 0, err
	}
	return e.PollID, nil
}

// Vote records caller's ballot for choice.
func (r *Registry) Vote(pollID uint64, choice int, caller Identity, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.commit(Event{
		Type:   EventVoteCast,
		PollID: pollID,
		Actor:  caller,
		At:     now,
		Choice: choice,
	})
}

// ClosePoll permanently deactivates a poll. Closing twice is an error.
func (r *Registry) ClosePoll(pollID uint64, caller Identity, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.commit(Event{
		Type:   EventPollClosed,
		PollID: pollID,
		Actor:  caller,
		At:     now,
	})
}

// ExtendPoll pushes the end of the voting window to max(endTime, now)+additional.
// An unbounded poll becomes bounded. Closed polls stay closed.
func (r *Registry) ExtendPoll(pollID uint64, additional time.Duration, caller Identity, now time.Time) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, err := r.lookup(pollID)
	if err != nil {
		return time.Time{}, err
	}
	if !r.canManage(rec, caller) {
		return time.Time{}, ErrUnauthorized
	}
	if additional <= 0 {
		return time.Time{}, ErrInvalidDuration
	}

	base := rec.endTime
	if base.Before(now) {
		base = now
	}
	e := Event{
		Type:    EventPollExtended,
		PollID:  pollID,
		Actor:   caller,
		At:      now,
		EndTime: base.Add(additional),
	}
	if err := r.commit(e); err != nil {
		return time.Time{}, err
	}
	return e.EndTime, nil
}

// TransferOwnership hands the registry-wide moderation right to newOwner.
func (r *Registry) TransferOwnership(newOwner, caller Identity, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.commit(Event{
		Type:     EventOwnershipTransferred,
		Actor:    caller,
		At:       now,
		NewOwner: newOwner,
	})
}

// commit applies e and, on success, stamps and emits it. Callers hold r.mu.
func (r *Registry) commit(e Event) error {
	if err := r.apply(e); err != nil {
		return err
	}
	e.Seq = r.seq
	r.seq++
	r.emitter.Emit(e)
	return nil
}

// apply checks every precondition of e before writing anything, so a failed
// apply leaves the registry untouched. Callers hold r.mu.
func (r *Registry) apply(e Event) error {
	switch e.Type {
	case EventPollCreated:
		return r.applyCreated(e)
	case EventVoteCast:
		return r.applyVote(e)
	case EventPollClosed:
		return r.applyClosed(e)
	case EventPollExtended:
		return r.applyExtended(e)
	case EventOwnershipTransferred:
		return r.applyOwnership(e)
	default:
		return ErrReplayMismatch
	}
}

func (r *Registry) applyCreated(e Event) error {
	if strings.TrimSpace(e.Question) == "" {
		return ErrInvalidQuestion
	}
	if len(e.Options) < MinOptions || len(e.Options) > MaxOptions {
		return ErrInvalidOptionCount
	}
	for _, opt := range e.Options {
		if strings.TrimSpace(opt) == "" {
			return ErrInvalidOption
		}
	}
	if e.PollID != uint64(len(r.polls)) {
		return ErrReplayMismatch
	}

	choices := make([]Choice, len(e.Options))
	for i, opt := range e.Options {
		choices[i] = Choice{Option: opt}
	}
	r.polls = append(r.polls, &record{
		question:  e.Question,
		choices:   choices,
		creator:   e.Actor,
		createdAt: e.At,
		endTime:   e.EndTime,
		active:    true,
		voters:    make(map[Identity]struct{}),
	})
	return nil
}

// applyVote checks in a fixed order: not found, inactive, expired, invalid
// choice, already voted.
func (r *Registry) applyVote(e Event) error {
	rec, err := r.lookup(e.PollID)
	if err != nil {
		return err
	}
	if !rec.active {
		return ErrPollInactive
	}
	if rec.bounded() && !e.At.Before(rec.endTime) {
		return ErrPollExpired
	}
	if e.Choice < 0 || e.Choice >= len(rec.choices) {
		return ErrInvalidChoice
	}
	if _, ok := rec.voters[e.Actor]; ok {
		return ErrAlreadyVoted
	}

	rec.voters[e.Actor] = struct{}{}
	rec.choices[e.Choice].Votes++
	return nil
}

func (r *Registry) applyClosed(e Event) error {
	rec, err := r.lookup(e.PollID)
	if err != nil {
		return err
	}
	if !r.canManage(rec, e.Actor) {
		return ErrUnauthorized
	}
	if !rec.active {
		return ErrAlreadyClosed
	}
	rec.active = false
	return nil
}

func (r *Registry) applyExtended(e Event) error {
	rec, err := r.lookup(e.PollID)
	if err != nil {
		return err
	}
	if !r.canManage(rec, e.Actor) {
		return ErrUnauthorized
	}
	if e.EndTime.IsZero() || (rec.bounded() && !e.EndTime.After(rec.endTime)) {
		return ErrInvalidDuration
	}
	rec.endTime = e.EndTime
	return nil
}

func (r *Registry) applyOwnership(e Event) error {
	if e.Actor != r.owner {
		return ErrUnauthorized
	}
	if e.NewOwner.IsZero() {
		return ErrInvalidAddress
	}
	r.owner = e.NewOwner
	return nil
}

func (r *Registry) lookup(pollID uint64) (*record, error) {
	if pollID >= uint64(len(r.polls)) {
		return nil, ErrPollNotFound
	}
	return r.polls[pollID], nil
}

// canManage reports whether caller may close or extend rec: its creator or
// the registry owner.
func (r *Registry) canManage(rec *record, caller Identity) bool {
	return caller == rec.creator || caller == r.owner
}
