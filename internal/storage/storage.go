package storage

import (
	"sort"
	"sync"

	"github.com/lehigh-university-libraries/htrbench/internal/models"
)

type ReportStore struct {
	reports map[string]*models.Report
	latest  string
	mu      sync.RWMutex
}

func New() *ReportStore {
	return &ReportStore{
		reports: make(map[string]*models.Report),
	}
}

func (s *ReportStore) Get(reportID string) (*models.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, exists := s.reports[reportID]
	return report, exists
}

// Set stores a report and makes it the latest one
func (s *ReportStore) Set(report *models.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.ID] = report
	s.latest = report.ID
}

// Latest returns the most recently stored report
func (s *ReportStore) Latest() (*models.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, exists := s.reports[s.latest]
	return report, exists
}

// List returns the stored reports, newest first
func (s *ReportStore) List() []*models.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Report, 0, len(s.reports))
	for _, r := range s.reports {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func (s *ReportStore) Delete(reportID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reports, reportID)
	if s.latest == reportID {
		s.latest = ""
	}
}

func (s *ReportStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reports)
}
