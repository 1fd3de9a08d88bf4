package journal

import "sync"

// Memory is the in-process outcome journal. It is the sink the decision
// loop consults for its own learning stats.
type Memory struct {
	mu       sync.Mutex
	outcomes []OutcomeRecord
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Record(rec OutcomeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, rec)
	return nil
}

// Outcomes returns a copy of every recorded outcome in append order.
func (m *Memory) Outcomes() []OutcomeRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]OutcomeRecord, len(m.outcomes))
	copy(out, m.outcomes)
	return out
}

// Summarize aggregates the recorded outcomes. An empty journal yields a
// zero-valued summary.
func (m *Memory) Summarize() (Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var s Summary
	var sum float64
	for _, rec := range m.outcomes {
		s.Total++
		sum += rec.Result
		switch {
		case rec.Result > 0:
			s.Wins++
		case rec.Result < 0:
			s.Losses++
		}
	}
	if s.Total > 0 {
		s.AvgResult = sum / float64(s.Total)
	}
	return s, nil
}

func (m *Memory) Close() error {
	return nil
}

// Nop discards every record. Pass it where outcome tracking is not wanted
// so callers never carry a nil journal.
type Nop struct{}

func (Nop) Record(OutcomeRecord) error { return nil }
func (Nop) Close() error               { return nil }

// Tee fans every record out to all member journals. Record returns the
// first error but still reaches the remaining members.
type Tee []Journal

func (t Tee) Record(rec OutcomeRecord) error {
	var first error
	for _, j := range t {
		if err := j.Record(rec); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (t Tee) Close() error {
	var first error
	for _, j := range t {
		if err := j.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
