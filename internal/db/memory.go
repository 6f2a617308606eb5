package db

import "context"

// MemoryStore keeps answered posts for the life of the process
type MemoryStore struct {
	ids map[string]struct{}
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ids: make(map[string]struct{})}
}

func (s *MemoryStore) Contains(_ context.Context, postID string) (bool, error) {
	_, ok := s.ids[postID]
	return ok, nil
}

func (s *MemoryStore) Add(_ context.Context, postID string) error {
	s.ids[postID] = struct{}{}
	return nil
}

func (s *MemoryStore) Len(_ context.Context) (int, error) {
	return len(s.ids), nil
}

func (s *MemoryStore) Close() error {
	return nil
}
