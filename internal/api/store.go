package api

import (
	"sync"
)

// DefaultStoreCapacity bounds how many finished generations are kept.
const DefaultStoreCapacity = 256

// GenerationStore keeps the most recent finished generations in memory so
// clients of streamed requests can fetch the final record by id. The oldest
// entry is evicted once capacity is reached.
type GenerationStore struct {
	mu       sync.Mutex
	capacity int
	order    []string
	byID     map[string]GenerateResponse
}

func NewGenerationStore(capacity int) *GenerationStore {
	if capacity <= 0 {
		capacity = DefaultStoreCapacity
	}
	return &GenerationStore{
		capacity: capacity,
		byID:     make(map[string]GenerateResponse, capacity),
	}
}

func (s *GenerationStore) Put(resp GenerateResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[resp.ID]; !ok {
		if len(s.order) == s.capacity {
			delete(s.byID, s.order[0])
			s.order = s.order[1:]
		}
		s.order = append(s.order, resp.ID)
	}
	s.byID[resp.ID] = resp
}

func (s *GenerationStore) Get(id string) (GenerateResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resp, ok := s.byID[id]
	return resp, ok
}

func (s *GenerationStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *GenerationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}
