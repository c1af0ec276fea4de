package poll

// GetPoll returns a snapshot of the poll as stored. IsActive is the stored
// flag; use Poll.Expired to check the time window.
func (r *Registry) GetPoll(pollID uint64) (Poll, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, err := r.lookup(pollID)
	if err != nil {
		return Poll{}, err
	}
	return snapshot(pollID, rec), nil
}

// GetPollResults returns per-option tallies with their share of the total.
func (r *Registry) GetPollResults(pollID uint64) (Results, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, err := r.lookup(pollID)
	if err != nil {
		return Results{}, err
	}

	res := Results{PollID: pollID, Options: make([]Result, len(rec.choices))}
	for _, c := range rec.choices {
		res.TotalVotes += c.Votes
	}
	for i, c := range rec.choices {
		var pct float64
		if res.TotalVotes > 0 {
			pct = float64(c.Votes) * 100.0 / float64(res.TotalVotes)
		}
		res.Options[i] = Result{
			Choice:     i,
			Option:     c.Option,
			Votes:      c.Votes,
			Percentage: pct,
		}
	}
	return res, nil
}

// ActivePolls returns the ids of polls that have not been closed, in
// creation order. Expired but unclosed polls are included.
func (r *Registry) ActivePolls() []uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := []uint64{}
	for id, rec := range r.polls {
		if rec.active {
			ids = append(ids, uint64(id))
		}
	}
	return ids
}

// IsPollActive returns the stored flag, or false for an unknown poll.
func (r *Registry) IsPollActive(pollID uint64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, err := r.lookup(pollID)
	if err != nil {
		return false
	}
	return rec.active
}

// HasVoted reports whether id has voted on the poll; false for unknown polls.
func (r *Registry) HasVoted(pollID uint64, id Identity) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, err := r.lookup(pollID)
	if err != nil {
		return false
	}
	_, ok := rec.voters[id]
	return ok
}

// Polls returns up to limit polls starting at offset, in id order. An offset
// past the end yields an empty slice.
func (r *Registry) Polls(offset, limit uint64) []Poll {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.page(offset, limit)
}

// Page is Polls plus the total poll count, read under the same lock.
func (r *Registry) Page(offset, limit uint64) ([]Poll, uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.page(offset, limit), uint64(len(r.polls))
}

func (r *Registry) page(offset, limit uint64) []Poll {
	total := uint64(len(r.polls))
	if offset >= total {
		return []Poll{}
	}
	if remaining := total - offset; limit > remaining {
		limit = remaining
	}

	out := make([]Poll, 0, limit)
	for id := offset; id < offset+limit; id++ {
		out = append(out, snapshot(id, r.polls[id]))
	}
	return out
}

// TotalPolls returns the number of polls ever created.
func (r *Registry) TotalPolls() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return uint64(len(r.polls))
}

func (r *Registry) Owner() Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.owner
}

// NextSeq returns the sequence number the next event will carry.
func (r *Registry) NextSeq() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.seq
}

func snapshot(id uint64, rec *record) Poll {
	p := Poll{
		ID:        id,
		Question:  rec.question,
		Choices:   make([]Choice, len(rec.choices)),
		Creator:   rec.creator,
		CreatedAt: rec.createdAt,
		EndTime:   rec.endTime,
		IsActive:  rec.active,
	}
	copy(p.Choices, rec.choices)
	for _, c := range rec.choices {
		p.TotalVotes += c.Votes
	}
	return p
}
