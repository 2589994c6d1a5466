package testkit

import (
	"context"
	"time"

	reportModel "footstep/internal/domain/report/model"
)

// ReportRepo 内存版 ReportRepository
type ReportRepo struct{ s *Store }

func (r *ReportRepo) Create(_ context.Context, report *reportModel.Report) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	report.ID = r.s.nextID()
	report.CreatedAt = r.s.Now()
	r.s.reports = append(r.s.reports, *report)
	return nil
}

func (r *ReportRepo) FindByReporter(_ context.Context, reporterID uint) ([]reportModel.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []reportModel.Report{}
	for _, rep := range r.s.reports {
		if rep.ReporterID == reporterID {
			out = append(out, rep)
		}
	}
	return out, nil
}

func (r *ReportRepo) CountAgainstAuthor(_ context.Context, authorID uint, since time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, rep := range r.s.reports {
		if rep.TargetOwnerID != authorID {
			continue
		}
		if !since.IsZero() && !rep.CreatedAt.After(since) {
			continue
		}
		n++
	}
	return n, nil
}
