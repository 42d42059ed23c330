package store

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used by tests and local runs.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]map[string]string),
	}
}

func (s *MemoryStore) Get(_ context.Context, path string) (map[string]string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[path]
	if !ok {
		return nil, false, nil
	}

	fields := make(map[string]string, len(record))
	for k, v := range record {
		fields[k] = v
	}
	return fields, true, nil
}

func (s *MemoryStore) Set(_ context.Context, path string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := make(map[string]string, len(fields))
	for k, v := range fields {
		record[k] = v
	}
	s.records[path] = record
	return nil
}

func (s *MemoryStore) Update(_ context.Context, path string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.records[path]
	if record == nil {
		record = make(map[string]string, len(fields))
		s.records[path] = record
	}
	for k, v := range fields {
		record[k] = v
	}
	return nil
}

func (s *MemoryStore) Incr(_ context.Context, path string, deltas map[string]float64) (map[string]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.records[path]
	if record == nil {
		record = make(map[string]string, len(deltas))
		s.records[path] = record
	}

	updated := make(map[string]float64, len(deltas))
	for field, delta := range deltas {
		current, _ := strconv.ParseFloat(record[field], 64)
		current += delta
		record[field] = strconv.FormatFloat(current, 'f', -1, 64)
		updated[field] = current
	}
	return updated, nil
}

func (s *MemoryStore) SetFieldNX(_ context.Context, path, field, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.records[path]
	if record == nil {
		record = make(map[string]string, 1)
		s.records[path] = record
	}

	if _, exists := record[field]; exists {
		return false, nil
	}
	record[field] = value
	return true, nil
}

func (s *MemoryStore) Children(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var paths []string
	for path := range s.records {
		if strings.HasPrefix(path, prefix) {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

func (s *MemoryStore) Now(_ context.Context) (time.Time, error) {
	return time.Now(), nil
}
