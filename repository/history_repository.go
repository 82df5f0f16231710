package repository

import (
	"context"
	"math"

	"github.com/Mr-Alvaro/Crediticio-System/domain"
)

// RecentLimit is how many rows the history listing returns.
const RecentLimit = 50

// HistoryRepository stores one row per finished assessment.
type HistoryRepository interface {
	Save(ctx context.Context, rec domain.AssessmentRecord) error
	// Recent returns the newest rows first.
	Recent(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
	Stats(ctx context.Context) (domain.Statistics, error)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// finishStats rounds the averages and derives the approval rate.
func finishStats(s domain.Statistics) domain.Statistics {
	s.AvgClientScore = round2(s.AvgClientScore)
	s.AvgFuzzyRisk = round2(s.AvgFuzzyRisk)
	s.AvgProbability = round2(s.AvgProbability)
	s.AvgDTI = round2(s.AvgDTI)
	s.AvgLTV = round2(s.AvgLTV)
	if s.Total > 0 {
		s.ApprovalRate = round2(float64(s.Approved) / float64(s.Total) * 100)
	}
	return s
}

func historyEntry(id int64, rec domain.AssessmentRecord) domain.HistoryEntry {
	return domain.HistoryEntry{
		ID:               id,
		AssessmentID:     rec.ID,
		CreatedAt:        rec.CreatedAt.Format(domain.HistoryTimeLayout),
		Name:             rec.Application.DisplayName(),
		LoanAmount:       rec.Application.LoanAmount,
		CreditWorthiness: string(rec.Application.CreditWorthiness),
		DTI:              rec.Result.DTI,
		LTV:              rec.Result.LTV,
		ClientScore:      rec.Result.ClientScore,
		FuzzyRisk:        rec.Result.FuzzyRisk,
		Probability:      rec.Result.Probability,
		FinalScore:       rec.Result.FinalScore,
		Decision:         rec.Result.Decision,
	}
}
