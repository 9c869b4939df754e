package service

import (
	"sync"
	"time"
)

// VotingSession bounds the window during which enrollment and casting are
// accepted. Ending the session is one-way.
type VotingSession struct {
	startTime time.Time
	endTime   time.Time
	isActive  bool
	mu        sync.RWMutex
}

func NewVotingSession(duration time.Duration) *VotingSession {
	now := time.Now()
	return &VotingSession{
		startTime: now,
		endTime:   now.Add(duration),
		isActive:  true,
	}
}

func (vs *VotingSession) IsActive() bool {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return vs.isActive && time.Now().Before(vs.endTime)
}

func (vs *VotingSession) End() {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	vs.isActive = false
}

// StartedAt returns the session start time.
func (vs *VotingSession) StartedAt() time.Time {
	return vs.startTime
}

// Remaining returns the time left in the session, or zero when closed.
func (vs *VotingSession) Remaining() time.Duration {
	vs.mu.RLock()
	defer vs.mu.RUnlock()

	if !vs.isActive {
		return 0
	}
	if remaining := time.Until(vs.endTime); remaining > 0 {
		return remaining
	}
	return 0
}
