// Package crudtest provides an in-memory crud.Store for handler tests.
package crudtest

import (
	"context"
	"sort"
	"sync"

	"ops-backend/internal/shared/crud"
)

// Store keeps rows in a map keyed by id.
type Store[T any] struct {
	mu     sync.RWMutex
	rows   map[int64]T
	nextID int64
	setKey func(*T, int64)

	// Err, when set, is returned by every operation.
	Err error
}

// NewStore returns an empty store. setKey assigns the generated key.
func NewStore[T any](setKey func(*T, int64)) *Store[T] {
	return &Store[T]{rows: make(map[int64]T), setKey: setKey}
}

// Seed inserts rows as if created in order.
func (s *Store[T]) Seed(rows ...T) {
	for _, row := range rows {
		_, _ = s.Create(context.Background(), row)
	}
}

// Len reports how many rows are stored.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

func (s *Store[T]) List(ctx context.Context) ([]T, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.rows[id])
	}
	return out, nil
}

func (s *Store[T]) Get(ctx context.Context, id int64) (T, error) {
	var zero T
	if s.Err != nil {
		return zero, s.Err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[id]
	if !ok {
		return zero, crud.ErrNotFound
	}
	return row, nil
}

func (s *Store[T]) Create(ctx context.Context, v T) (T, error) {
	if s.Err != nil {
		var zero T
		return zero, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.setKey(&v, s.nextID)
	s.rows[s.nextID] = v
	return v, nil
}

func (s *Store[T]) Update(ctx context.Context, id int64, v T) (T, error) {
	var zero T
	if s.Err != nil {
		return zero, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return zero, crud.ErrNotFound
	}
	s.setKey(&v, id)
	s.rows[id] = v
	return v, nil
}

func (s *Store[T]) Delete(ctx context.Context, id int64) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return crud.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}
