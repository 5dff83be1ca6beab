package rng

// Scripted replays a fixed queue of values and then returns Fallback.
// It is the stream used by tests that need exact control over rolls.
type Scripted struct {
	queue    []float64
	Fallback float64
	Tags     []string
}

// NewScripted prepares a scripted stream. Once values run out every draw
// returns 0.99, which fails every chance roll in the engine.
func NewScripted(values ...float64) *Scripted {
	q := make([]float64, len(values))
	copy(q, values)
	return &Scripted{queue: q, Fallback: 0.99}
}

// Push appends values to the queue.
func (s *Scripted) Push(values ...float64) {
	s.queue = append(s.queue, values...)
}

// Remaining reports how many scripted values are left.
func (s *Scripted) Remaining() int { return len(s.queue) }

func (s *Scripted) Random(tag string) float64 {
	s.Tags = append(s.Tags, tag)
	if len(s.queue) == 0 {
		return s.Fallback
	}
	v := s.queue[0]
	s.queue = s.queue[1:]
	return v
}

func (s *Scripted) RandomInt(min, max int, tag string) int {
	return IntFromFloat(s.Random(tag), min, max)
}
