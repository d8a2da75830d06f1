package waveform

import (
	"sync"
)

type (
	// Store holds the mipmaps of all tracks. Mipmaps are published by
	// reference once complete; readers get the same immutable value. After a
	// change is visible to Get, every subscriber is notified. Notification
	// never blocks the publisher: a subscriber whose channel is full misses
	// the update and should re-read the store.
	Store struct {
		mu      sync.RWMutex
		mipmaps map[string]*Mipmap
		subs    map[int]chan Update
		nextSub int
	}

	// Update tells subscribers that the mipmap of a track changed. Mipmap is
	// nil when the track was removed; Cleared is set when all tracks were.
	Update struct {
		TrackID string
		Mipmap  *Mipmap
		Cleared bool
	}
)

func NewStore() *Store {
	return &Store{mipmaps: map[string]*Mipmap{}, subs: map[int]chan Update{}}
}

// Publish makes m the mipmap of the track.
func (s *Store) Publish(trackID string, m *Mipmap) {
	s.mu.Lock()
	s.mipmaps[trackID] = m
	s.mu.Unlock()
	s.notify(Update{TrackID: trackID, Mipmap: m})
}

func (s *Store) Get(trackID string) (*Mipmap, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.mipmaps[trackID]
	return m, ok
}

func (s *Store) Has(trackID string) bool {
	_, ok := s.Get(trackID)
	return ok
}

func (s *Store) Delete(trackID string) {
	s.mu.Lock()
	_, ok := s.mipmaps[trackID]
	delete(s.mipmaps, trackID)
	s.mu.Unlock()
	if ok {
		s.notify(Update{TrackID: trackID})
	}
}

func (s *Store) Clear() {
	s.mu.Lock()
	clear(s.mipmaps)
	s.mu.Unlock()
	s.notify(Update{Cleared: true})
}

// Tracks returns the IDs of the tracks that have a mipmap.
func (s *Store) Tracks() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ret := make([]string, 0, len(s.mipmaps))
	for id := range s.mipmaps {
		ret = append(ret, id)
	}
	return ret
}

// Subscribe returns a channel receiving the updates of the store and a
// function to unsubscribe, which also closes the channel.
func (s *Store) Subscribe(buffer int) (<-chan Update, func()) {
	c := make(chan Update, buffer)
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = c
	s.mu.Unlock()
	var once sync.Once
	return c, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(c)
		})
	}
}

func (s *Store) notify(u Update) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.subs {
		trySend(c, u)
	}
}

// trySend sends v to c if it would not block.
func trySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}
