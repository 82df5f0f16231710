package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/Mr-Alvaro/Crediticio-System/domain"
)

type memoryRow struct {
	id  int64
	rec domain.AssessmentRecord
}

// HistoryRepositoryMemory is an in-memory implementation of HistoryRepository.
type HistoryRepositoryMemory struct {
	mu     sync.RWMutex
	nextID int64
	rows   []memoryRow
	saved  map[string]struct{}
}

// NewHistoryRepositoryMemory creates a new in-memory history repository.
func NewHistoryRepositoryMemory() *HistoryRepositoryMemory {
	return &HistoryRepositoryMemory{
		rows:  []memoryRow{},
		saved: make(map[string]struct{}),
	}
}

// Save stores the assessment in memory. A record already saved is ignored.
func (r *HistoryRepositoryMemory) Save(_ context.Context, rec domain.AssessmentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.saved[rec.ID]; ok {
		return nil
	}
	r.saved[rec.ID] = struct{}{}
	r.nextID++
	r.rows = append(r.rows, memoryRow{id: r.nextID, rec: rec})
	return nil
}

func (r *HistoryRepositoryMemory) Recent(_ context.Context, limit int) ([]domain.HistoryEntry, error) {
	r.mu.RLock()
	rows := append([]memoryRow(nil), r.rows...)
	r.mu.RUnlock()

	sort.SliceStable(rows, func(i, j int) bool {
		ti, tj := rows[i].rec.CreatedAt, rows[j].rec.CreatedAt
		if ti.Equal(tj) {
			return rows[i].id > rows[j].id
		}
		return ti.After(tj)
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	entries := make([]domain.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, historyEntry(row.id, row.rec))
	}
	return entries, nil
}

func (r *HistoryRepositoryMemory) Stats(_ context.Context) (domain.Statistics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var s domain.Statistics
	for _, row := range r.rows {
		res := row.rec.Result
		switch res.Decision {
		case domain.DecisionApproved:
			s.Approved++
		case domain.DecisionRejected:
			s.Rejected++
		case domain.DecisionManualReview:
			s.ManualReview++
		}
		s.AvgClientScore += res.ClientScore
		s.AvgFuzzyRisk += res.FuzzyRisk
		s.AvgProbability += res.Probability
		s.AvgDTI += res.DTI
		s.AvgLTV += res.LTV
	}

	s.Total = len(r.rows)
	if s.Total > 0 {
		n := float64(s.Total)
		s.AvgClientScore /= n
		s.AvgFuzzyRisk /= n
		s.AvgProbability /= n
		s.AvgDTI /= n
		s.AvgLTV /= n
	}
	return finishStats(s), nil
}
