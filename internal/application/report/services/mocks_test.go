package services

import (
	"context"
	"time"

	"github.com/civicwatch/civicwatch/internal/domain/issuetype"
	"github.com/civicwatch/civicwatch/internal/domain/place"
	"github.com/civicwatch/civicwatch/internal/domain/report"
	vo "github.com/civicwatch/civicwatch/internal/domain/report/valueobjects"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
)

type mockReportRepository struct {
	CreateFunc                  func(ctx context.Context, r *report.Report) error
	LastTrackingCodeFunc        func(ctx context.Context, dayPrefix string) (string, error)
	FindDuplicateCandidatesFunc func(ctx context.Context, q report.CandidateQuery) ([]*report.Report, error)
}

func (m *mockReportRepository) Create(ctx context.Context, r *report.Report) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, r)
	}
	return nil
}

func (m *mockReportRepository) Update(ctx context.Context, r *report.Report) error { return nil }

func (m *mockReportRepository) GetByID(ctx context.Context, id uint) (*report.Report, error) {
	return nil, report.ErrNotFound
}

func (m *mockReportRepository) GetByIDForUpdate(ctx context.Context, id uint) (*report.Report, error) {
	return nil, report.ErrNotFound
}

func (m *mockReportRepository) GetByIDWithTrashed(ctx context.Context, id uint) (*report.Report, error) {
	return nil, report.ErrNotFound
}

func (m *mockReportRepository) GetByTrackingCode(ctx context.Context, code string) (*report.Report, error) {
	return nil, report.ErrNotFound
}

func (m *mockReportRepository) List(ctx context.Context, filter report.ListFilter) ([]*report.Report, int64, error) {
	return nil, 0, nil
}

func (m *mockReportRepository) LastTrackingCode(ctx context.Context, dayPrefix string) (string, error) {
	if m.LastTrackingCodeFunc != nil {
		return m.LastTrackingCodeFunc(ctx, dayPrefix)
	}
	return "", nil
}

func (m *mockReportRepository) FindDuplicateCandidates(ctx context.Context, q report.CandidateQuery) ([]*report.Report, error) {
	if m.FindDuplicateCandidatesFunc != nil {
		return m.FindDuplicateCandidatesFunc(ctx, q)
	}
	return nil, nil
}

func (m *mockReportRepository) ListDuplicatesOf(ctx context.Context, primaryID uint) ([]*report.Report, error) {
	return nil, nil
}

func (m *mockReportRepository) CountDuplicatesOf(ctx context.Context, primaryID uint) (int64, error) {
	return 0, nil
}

func (m *mockReportRepository) RecordMerge(ctx context.Context, rec report.MergeRecord) error {
	return nil
}

func (m *mockReportRepository) SoftDelete(ctx context.Context, id uint) error  { return nil }
func (m *mockReportRepository) Restore(ctx context.Context, id uint) error     { return nil }
func (m *mockReportRepository) ForceDelete(ctx context.Context, id uint) error { return nil }

func (m *mockReportRepository) CountByStatus(ctx context.Context) (map[vo.Status]int64, error) {
	return nil, nil
}

func (m *mockReportRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	return 0, nil
}

type mockIssueTypeRepository struct {
	GetByNameFunc func(ctx context.Context, name string) (*issuetype.IssueType, error)
}

func (m *mockIssueTypeRepository) GetByName(ctx context.Context, name string) (*issuetype.IssueType, error) {
	if m.GetByNameFunc != nil {
		return m.GetByNameFunc(ctx, name)
	}
	return nil, issuetype.ErrNotFound
}

func (m *mockIssueTypeRepository) ListActive(ctx context.Context) ([]*issuetype.IssueType, error) {
	return nil, nil
}

func (m *mockIssueTypeRepository) Upsert(ctx context.Context, it *issuetype.IssueType) error {
	return nil
}

type mockPlaceRepository struct {
	barangays map[uint]*place.Barangay
	sitios    map[uint]*place.Sitio
	err       error
}

func (m *mockPlaceRepository) GetBarangay(ctx context.Context, id uint) (*place.Barangay, error) {
	if m.err != nil {
		return nil, m.err
	}
	if b, ok := m.barangays[id]; ok {
		return b, nil
	}
	return nil, place.ErrNotFound
}

func (m *mockPlaceRepository) GetSitio(ctx context.Context, id uint) (*place.Sitio, error) {
	if m.err != nil {
		return nil, m.err
	}
	if s, ok := m.sitios[id]; ok {
		return s, nil
	}
	return nil, place.ErrNotFound
}

func (m *mockPlaceRepository) ListBarangays(ctx context.Context) ([]*place.Barangay, error) {
	return nil, nil
}

func (m *mockPlaceRepository) UpsertBarangay(ctx context.Context, b *place.Barangay) error {
	return nil
}

func newTestLogger() logger.Interface {
	return logger.NewNop()
}
