package storage

import (
	"testing"
	"time"

	"github.com/lehigh-university-libraries/htrbench/internal/models"
)

func TestReportStore(t *testing.T) {
	s := New()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	older := &models.Report{ID: "older", CreatedAt: base}
	newer := &models.Report{ID: "newer", CreatedAt: base.Add(time.Hour)}
	s.Set(newer)
	s.Set(older)

	if s.Len() != 2 {
		t.Fatalf("Expected 2 reports, got %d", s.Len())
	}

	if r, ok := s.Get("newer"); !ok || r != newer {
		t.Error("Expected to get the newer report")
	}

	latest, ok := s.Latest()
	if !ok || latest.ID != "older" {
		t.Errorf("Expected the last stored report as latest, got %v", latest)
	}

	list := s.List()
	if list[0].ID != "newer" || list[1].ID != "older" {
		t.Errorf("Expected newest first, got %s, %s", list[0].ID, list[1].ID)
	}

	s.Delete("older")
	if _, ok := s.Latest(); ok {
		t.Error("Expected no latest report after deleting it")
	}
	if _, ok := s.Get("older"); ok {
		t.Error("Expected deleted report to be gone")
	}
}
