package poll

import (
	"time"

	"poll-registry/internal/platform/clock"
)

// Service binds a Registry to a clock so callers only supply identities.
type Service struct {
	reg   *Registry
	clock clock.Clock
}

func NewService(reg *Registry, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.System()
	}
	return &Service{reg: reg, clock: clk}
}

func (s *Service) Now() time.Time {
	return s.clock.Now()
}

func (s *Service) Create(question string, options []string, duration time.Duration, caller Identity) (uint64, error) {
	return s.reg.CreatePoll(question, options, duration, caller, s.clock.Now())
}

func (s *Service) Vote(pollID uint64, choice int, caller Identity) error {
	return s.reg.Vote(pollID, choice, caller, s.clock.Now())
}

func (s *Service) Close(pollID uint64, caller Identity) error {
	return s.reg.ClosePoll(pollID, caller, s.clock.Now())
}

func (s *Service) Extend(pollID uint64, additional time.Duration, caller Identity) (time.Time, error) {
	return s.reg.ExtendPoll(pollID, additional, caller, s.clock.Now())
}

func (s *Service) TransferOwnership(newOwner, caller Identity) error {
	return s.reg.TransferOwnership(newOwner, caller, s.clock.Now())
}

func (s *Service) Get(pollID uint64) (Poll, error) {
	return s.reg.GetPoll(pollID)
}

func (s *Service) Results(pollID uint64) (Results, error) {
	return s.reg.GetPollResults(pollID)
}

func (s *Service) Active() []uint64 {
	return s.reg.ActivePolls()
}

func (s *Service) IsActive(pollID uint64) bool {
	return s.reg.IsPollActive(pollID)
}

func (s *Service) HasVoted(pollID uint64, id Identity) bool {
	return s.reg.HasVoted(pollID, id)
}

// List returns one page of polls together with the total poll count.
func (s *Service) List(offset, limit uint64) ([]Poll, uint64) {
	return s.reg.Page(offset, limit)
}

func (s *Service) Owner() Identity {
	return s.reg.Owner()
}
