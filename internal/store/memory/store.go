// Package memory holds the process-local activity store.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"example.com/activities/internal/domain"
)

// Store keeps activities in memory. The set of activities is fixed at
// construction; only participant lists change afterwards, each guarded by
// its own mutex so signups to different activities never contend.
type Store struct {
	entries map[string]*entry
	order   []string
}

type entry struct {
	mu       sync.Mutex
	activity domain.Activity
}

// NewStore builds a Store from a seed dataset. Names must be non-empty and unique.
func NewStore(seed []domain.Activity) (*Store, error) {
	s := &Store{
		entries: make(map[string]*entry, len(seed)),
		order:   make([]string, 0, len(seed)),
	}
	for _, activity := range seed {
		if strings.TrimSpace(activity.Name) == "" {
			return nil, fmt.Errorf("seed activity with empty name")
		}
		if _, exists := s.entries[activity.Name]; exists {
			return nil, fmt.Errorf("duplicate seed activity %q", activity.Name)
		}
		clone := activity.Clone()
		clone.Participants = dedupe(clone.Participants)
		s.entries[activity.Name] = &entry{activity: clone}
		s.order = append(s.order, activity.Name)
	}
	return s, nil
}

// Names returns activity names in seed order.
func (s *Store) Names() []string {
	return slices.Clone(s.order)
}

// List implements domain.ActivityRepository.
func (s *Store) List(ctx context.Context) (map[string]domain.Activity, error) {
	out := make(map[string]domain.Activity, len(s.entries))
	for name, e := range s.entries {
		e.mu.Lock()
		out[name] = e.activity.Clone()
		e.mu.Unlock()
	}
	return out, nil
}

// Get returns a copy of a single activity.
func (s *Store) Get(ctx context.Context, name string) (domain.Activity, error) {
	e, ok := s.entries[name]
	if !ok {
		return domain.Activity{}, domain.ErrActivityNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activity.Clone(), nil
}

// AddParticipant implements domain.ActivityRepository.
func (s *Store) AddParticipant(ctx context.Context, name, email string, enforceCapacity bool) (domain.Activity, error) {
	e, ok := s.entries[name]
	if !ok {
		return domain.Activity{}, domain.ErrActivityNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.activity.HasParticipant(email) {
		return domain.Activity{}, domain.ErrAlreadyRegistered
	}
	if enforceCapacity && e.activity.IsFull() {
		return domain.Activity{}, domain.ErrActivityFull
	}
	e.activity.Participants = append(e.activity.Participants, email)
	return e.activity.Clone(), nil
}

// RemoveParticipant implements domain.ActivityRepository.
func (s *Store) RemoveParticipant(ctx context.Context, name, email string) (domain.Activity, error) {
	e, ok := s.entries[name]
	if !ok {
		return domain.Activity{}, domain.ErrActivityNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	idx := slices.Index(e.activity.Participants, email)
	if idx < 0 {
		return domain.Activity{}, domain.ErrParticipantNotFound
	}
	e.activity.Participants = slices.Delete(e.activity.Participants, idx, idx+1)
	return e.activity.Clone(), nil
}

func dedupe(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	out := emails[:0]
	for _, email := range emails {
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}
	return out
}
