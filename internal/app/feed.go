package app

import (
	"sync"

	"adaptive-quiz-service/internal/domain"
)

// LeaderboardFeed fans leaderboard snapshots out to live subscribers.
type LeaderboardFeed struct {
	mu          sync.Mutex
	subscribers map[chan domain.Leaderboard]struct{}
}

func NewLeaderboardFeed() *LeaderboardFeed {
	return &LeaderboardFeed{subscribers: make(map[chan domain.Leaderboard]struct{})}
}

// Subscribe registers a subscriber and delivers initial first. The caller
// must invoke the returned cancel function to avoid leaks.
func (f *LeaderboardFeed) Subscribe(initial domain.Leaderboard) (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)
	ch <- initial

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Publish sends lb to every subscriber. A subscriber whose buffer is full
// loses its oldest pending snapshot.
func (f *LeaderboardFeed) Publish(lb domain.Leaderboard) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- lb:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}

// Subscribers reports the number of live subscribers.
func (f *LeaderboardFeed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}
