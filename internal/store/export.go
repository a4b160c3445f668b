package store

import (
	"fmt"
	"time"

	"github.com/pranavlonari/interview-assistant/internal/model"
)

// ExportAllCandidates builds an export-ready document from every stored
// candidate, completed or not.
func (s *Store) ExportAllCandidates(cfg model.InterviewConfig) (model.InterviewExport, error) {
	candidates, err := s.ListCandidates()
	if err != nil {
		return model.InterviewExport{}, fmt.Errorf("list candidates: %w", err)
	}

	export := model.InterviewExport{
		ExportedAt: time.Now(),
		Config: model.ExportConfig{
			TotalQuestions: cfg.TotalQuestions,
			Quota:          cfg.Quota,
			PointCaps:      cfg.PointCaps,
		},
	}
	for _, c := range candidates {
		export.Candidates = append(export.Candidates, model.CandidateResult{
			ID:               c.ID,
			Name:             c.Name,
			Email:            c.Email,
			Phone:            c.Phone,
			Status:           c.Status,
			TotalScore:       c.TotalScore,
			TimeSpentSeconds: c.TimeSpentSeconds,
			Summary:          c.Summary,
			Strengths:        c.Strengths,
			Improvements:     c.Improvements,
			StartedAt:        c.StartedAt,
			CompletedAt:      c.CompletedAt,
			Answers:          c.Answers,
		})
	}
	return export, nil
}
