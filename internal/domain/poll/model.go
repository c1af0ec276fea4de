package poll

import (
	"context"
	"time"
)

const (
	MinOptions = 2
	MaxOptions = 20
)

// Identity is an opaque, externally authenticated actor reference.
type Identity string

// IsZero reports whether id is the null identity.
func (id Identity) IsZero() bool { return id == "" }

// Choice pairs an option with its running tally. The index of a Choice within
// a poll is the choice identifier used when voting.
type Choice struct {
	Option string `json:"option"`
	Votes  uint64 `json:"votes"`
}

// Poll is an immutable snapshot of a stored poll.
type Poll struct {
	ID         uint64    `json:"id"`
	Question   string    `json:"question"`
	Choices    []Choice  `json:"choices"`
	Creator    Identity  `json:"creator"`
	CreatedAt  time.Time `json:"created_at"`
	EndTime    time.Time `json:"end_time"`
	IsActive   bool      `json:"is_active"`
	TotalVotes uint64    `json:"total_votes"`
}

// Options returns the option texts in choice order.
func (p Poll) Options() []string {
	out := make([]string, len(p.Choices))
	for i, c := range p.Choices {
		out[i] = c.Option
	}
	return out
}

// Counts returns the tallies in choice order.
func (p Poll) Counts() []uint64 {
	out := make([]uint64, len(p.Choices))
	for i, c := range p.Choices {
		out[i] = c.Votes
	}
	return out
}

// Bounded reports whether the poll has a time window.
func (p Poll) Bounded() bool { return !p.EndTime.IsZero() }

// Expired reports whether the time window has passed at now. Unbounded polls
// never expire.
func (p Poll) Expired(now time.Time) bool {
	return p.Bounded() && !now.Before(p.EndTime)
}

// Result is the tally of a single option.
type Result struct {
	Choice     int     `json:"choice"`
	Option     string  `json:"option"`
	Votes      uint64  `json:"votes"`
	Percentage float64 `json:"percentage"`
}

// Results is the aggregated outcome of a poll.
type Results struct {
	PollID     uint64   `json:"poll_id"`
	Options    []Result `json:"options"`
	TotalVotes uint64   `json:"total_votes"`
}

// Journal durably stores emitted events so a registry can be rebuilt.
type Journal interface {
	Append(ctx context.Context, e Event) error
	Events(ctx context.Context) ([]Event, error)
	Ping(ctx context.Context) error
}
