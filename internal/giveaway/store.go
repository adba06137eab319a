package giveaway

import "sync"

// Store owns every record of one engine. Reads return copies; mutation happens
// only inside Update, under the store lock, so a check-and-set there can never
// interleave with another caller.
type Store struct {
	mu      sync.RWMutex
	records map[string]*Record
}

func NewStore() *Store {
	return &Store{records: make(map[string]*Record)}
}

func (s *Store) Put(record *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = record
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
}

func (s *Store) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return Record{}, false
	}
	return record.clone(), true
}

// MostRecent returns the matching record with the latest EndTime.
func (s *Store) MostRecent(match func(*Record) bool) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *Record
	for _, record := range s.records {
		if !match(record) {
			continue
		}
		if best == nil || record.EndTime.After(best.EndTime) {
			best = record
		}
	}
	if best == nil {
		return Record{}, false
	}
	return best.clone(), true
}

func (s *Store) Filter(match func(*Record) bool) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for _, record := range s.records {
		if match(record) {
			out = append(out, record.clone())
		}
	}
	return out
}

func (s *Store) Any(match func(*Record) bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, record := range s.records {
		if match(record) {
			return true
		}
	}
	return false
}

// Update runs fn against the live record. fn must not block: it runs with the
// store locked. The returned copy reflects the record after fn.
func (s *Store) Update(id string, fn func(*Record) error) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return Record{}, newError(CodeNotFound, id)
	}
	if err := fn(record); err != nil {
		return record.clone(), err
	}
	return record.clone(), nil
}

func isOpen(r *Record) bool  { return !r.Ended }
func isEnded(r *Record) bool { return r.Ended }
