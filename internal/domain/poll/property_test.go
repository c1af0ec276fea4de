package poll

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestTallyMatchesVoters verifies sum(counts) == |voters| after any ballot sequence.
func TestTallyMatchesVoters(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("every accepted ballot is counted exactly once", prop.ForAll(
		func(voters []int, choices []int) bool {
			r, err := NewRegistry(owner)
			if err != nil {
				return false
			}
			id, err := r.CreatePoll("Q?", []string{"A", "B", "C"}, 0, alice, t0)
			if err != nil {
				return false
			}

			accepted := map[int]bool{}
			for i := 0; i < len(voters) && i < len(choices); i++ {
				err := r.Vote(id, choices[i], Identity(fmt.Sprint(voters[i])), t0)
				switch {
				case choices[i] < 0 || choices[i] >= 3:
					if !errors.Is(err, ErrInvalidChoice) {
						return false
					}
				case accepted[voters[i]]:
					if !errors.Is(err, ErrAlreadyVoted) {
						return false
					}
				default:
					if err != nil {
						return false
					}
					accepted[voters[i]] = true
				}
			}

			p, err := r.GetPoll(id)
			if err != nil {
				return false
			}
			var sum uint64
			for _, c := range p.Choices {
				sum += c.Votes
			}
			for v := range accepted {
				if !r.HasVoted(id, Identity(fmt.Sprint(v))) {
					return false
				}
			}
			return sum == uint64(len(accepted)) && p.TotalVotes == sum
		},
		gen.SliceOf(gen.IntRange(0, 9)),
		gen.SliceOf(gen.IntRange(-1, 3)),
	))

	properties.TestingRun(t)
}

// TestActivePollsMatchesStoredFlag verifies ActivePolls lists exactly the unclosed ids in order.
func TestActivePollsMatchesStoredFlag(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("active set is the ascending unclosed ids", prop.ForAll(
		func(closed []bool) bool {
			r, err := NewRegistry(owner)
			if err != nil {
				return false
			}
			var want []uint64
			for i, c := range closed {
				id, err := r.CreatePoll("Q?", []string{"A", "B"}, 0, alice, t0)
				if err != nil || id != uint64(i) {
					return false
				}
				if c {
					if err := r.ClosePoll(id, alice, t0); err != nil {
						return false
					}
					continue
				}
				want = append(want, id)
			}
			got := r.ActivePolls()
			if len(want) == 0 {
				return len(got) == 0
			}
			return reflect.DeepEqual(want, got) && r.TotalPolls() == uint64(len(closed))
		},
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}

// TestEndTimeOnlyGrows verifies extensions never move a bounded end time backwards.
func TestEndTimeOnlyGrows(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("end time is monotone", prop.ForAll(
		func(extensions []int64, offsets []int64) bool {
			r, err := NewRegistry(owner)
			if err != nil {
				return false
			}
			id, err := r.CreatePoll("Q?", []string{"A", "B"}, time.Minute, alice, t0)
			if err != nil {
				return false
			}
			prev := t0.Add(time.Minute)
			now := t0
			for i := 0; i < len(extensions) && i < len(offsets); i++ {
				now = now.Add(time.Duration(offsets[i]) * time.Second)
				end, err := r.ExtendPoll(id, time.Duration(extensions[i])*time.Second, owner, now)
				if err != nil || !end.After(prev) || end.Before(now) {
					return false
				}
				prev = end
			}
			p, err := r.GetPoll(id)
			return err == nil && p.EndTime.Equal(prev)
		},
		gen.SliceOf(gen.Int64Range(1, 3600)),
		gen.SliceOf(gen.Int64Range(0, 7200)),
	))

	properties.TestingRun(t)
}

// TestReplayReproducesState verifies that replaying emitted events rebuilds an identical registry.
func TestReplayReproducesState(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("replay is deterministic", prop.ForAll(
		func(ops []int) bool {
			q := NewEventQueue()
			live, err := NewRegistry(owner, WithEmitter(q))
			if err != nil {
				return false
			}
			now := t0
			for i, op := range ops {
				now = now.Add(time.Second)
				voter := Identity(fmt.Sprintf("v%d", i%7))
				switch op % 4 {
				case 0:
					_, _ = live.CreatePoll(fmt.Sprintf("Q%d", i), []string{"A", "B", "C"}, time.Duration(op)*time.Second, voter, now)
				case 1:
					_ = live.Vote(uint64(op)%(live.TotalPolls()+1), op%3, voter, now)
				case 2:
					_ = live.ClosePoll(uint64(op)%(live.TotalPolls()+1), owner, now)
				case 3:
					_, _ = live.ExtendPoll(uint64(op)%(live.TotalPolls()+1), time.Duration(op)*time.Second, owner, now)
				}
			}

			restored, err := Restore(owner, q.Drain())
			if err != nil {
				return false
			}
			if restored.NextSeq() != live.NextSeq() || restored.TotalPolls() != live.TotalPolls() {
				return false
			}
			a, _ := live.Page(0, live.TotalPolls())
			b, _ := restored.Page(0, restored.TotalPolls())
			return reflect.DeepEqual(a, b) && reflect.DeepEqual(live.ActivePolls(), restored.ActivePolls())
		},
		gen.SliceOf(gen.IntRange(0, 40)),
	))

	properties.TestingRun(t)
}
