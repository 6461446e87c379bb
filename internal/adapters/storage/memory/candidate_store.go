package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
)

// CandidateStore is an in-memory domain.CandidateDirectory.
// It is NOT persistent and is only suitable for development / local mode.
type CandidateStore struct {
	mu         sync.RWMutex
	candidates map[string]domain.Candidate
}

func NewCandidateStore(seed ...domain.Candidate) *CandidateStore {
	s := &CandidateStore{candidates: make(map[string]domain.Candidate, len(seed))}
	for _, c := range seed {
		s.candidates[c.ID] = c
	}
	return s
}

// Put inserts or replaces a candidate.
func (s *CandidateStore) Put(c domain.Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[c.ID] = c
}

func (s *CandidateStore) ListByManager(_ context.Context, managerEmail, status string, limit int) ([]domain.Candidate, error) {
	return s.filter(limit, func(c domain.Candidate) bool {
		return c.ManagerEmail == managerEmail && (status == "" || c.Status == status)
	}), nil
}

func (s *CandidateStore) ListByRecruiter(_ context.Context, hrEmail, status string, limit int) ([]domain.Candidate, error) {
	return s.filter(limit, func(c domain.Candidate) bool {
		return c.AssignedBy == hrEmail && (status == "" || c.Status == status)
	}), nil
}

func (s *CandidateStore) Stats(_ context.Context, since time.Time) (domain.CandidateStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st domain.CandidateStats
	for _, c := range s.candidates {
		st.Total++
		switch c.Status {
		case domain.CandidateStatusPending:
			st.Pending++
		case domain.CandidateStatusAssigned:
			st.Assigned++
		}
		if !c.CreatedAt.Before(since) {
			st.NewThisWeek++
		}
	}
	return st, nil
}

// filter returns matches ordered by interview time, then creation time.
// limit <= 0 returns all.
func (s *CandidateStore) filter(limit int, keep func(domain.Candidate) bool) []domain.Candidate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Candidate
	for _, c := range s.candidates {
		if keep(c) {
			out = append(out, c)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.InterviewAt != nil && b.InterviewAt != nil && !a.InterviewAt.Equal(*b.InterviewAt):
			return a.InterviewAt.Before(*b.InterviewAt)
		case a.InterviewAt != nil && b.InterviewAt == nil:
			return true
		case a.InterviewAt == nil && b.InterviewAt != nil:
			return false
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
