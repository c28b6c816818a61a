package stream

import "sync"

// Snapshot is the stream state at one instant.
type Snapshot struct {
	Flashlight bool `json:"flashlight"`
	Streaming  bool `json:"streaming"`
}

// State is the mutex-protected stream state.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type State struct {
	mu      sync.Mutex
	current Snapshot
	subs    map[int]chan Snapshot
	nextID  int
}

// NewState returns a State with the flashlight off and streaming on,
// matching the device at power-up.
func NewState() *State {
	return &State{
		current: Snapshot{Streaming: true},
		subs:    make(map[int]chan Snapshot),
	}
}

// Snapshot returns the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// ToggleFlashlight flips the flashlight and returns the new value.
func (s *State) ToggleFlashlight() bool {
	return s.update(func(c *Snapshot) { c.Flashlight = !c.Flashlight }).Flashlight
}

// ToggleStreaming flips streaming and returns the new value.
func (s *State) ToggleStreaming() bool {
	return s.update(func(c *Snapshot) { c.Streaming = !c.Streaming }).Streaming
}

// SetFlashlight sets the flashlight.
func (s *State) SetFlashlight(on bool) Snapshot {
	return s.update(func(c *Snapshot) { c.Flashlight = on })
}

// SetStreaming sets streaming.
func (s *State) SetStreaming(on bool) Snapshot {
	return s.update(func(c *Snapshot) { c.Streaming = on })
}

// Subscribe returns a channel receiving every later state change and a
// function that ends the subscription. A slow subscriber misses
// intermediate states but always sees the newest one.
func (s *State) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *State) update(fn func(*Snapshot)) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.current
	fn(&s.current)
	after := s.current
	if after == before {
		return after
	}

	for _, ch := range s.subs {
		// Replace any unread value so the newest state wins.
		select {
		case <-ch:
		default:
		}
		ch <- after
	}
	return after
}
