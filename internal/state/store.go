package state

import "time"

// Status is a point-in-time copy of a Record.
type Status struct {
	Name                string    `json:"name"`
	Healthy             bool      `json:"healthy"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastChecked         time.Time `json:"last_checked"`
	LastError           string    `json:"last_error,omitempty"`
}

// Store owns one Record per registered service. The set of records is fixed
// at construction, so lookups need no locking.
type Store struct {
	names   []string
	records map[string]*Record
}

// NewStore creates a healthy record for each name. Repeated names share
// one record.
func NewStore(names ...string) *Store {
	s := &Store{
		names:   make([]string, 0, len(names)),
		records: make(map[string]*Record, len(names)),
	}

	for _, name := range names {
		if _, exists := s.records[name]; exists {
			continue
		}
		s.names = append(s.names, name)
		s.records[name] = newRecord(name)
	}

	return s
}

// Get returns the record for name.
func (s *Store) Get(name string) (*Record, bool) {
	r, ok := s.records[name]
	return r, ok
}

// Healthy returns the names of healthy services in registration order.
func (s *Store) Healthy() []string {
	var healthy []string
	for _, name := range s.names {
		if s.records[name].IsHealthy() {
			healthy = append(healthy, name)
		}
	}
	return healthy
}

// Snapshot copies every record in registration order.
func (s *Store) Snapshot() []Status {
	out := make([]Status, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, s.records[name].Status())
	}
	return out
}

func (s *Store) Len() int {
	return len(s.names)
}
