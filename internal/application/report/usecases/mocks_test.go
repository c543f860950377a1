package usecases

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/civicwatch/civicwatch/internal/application/report/notification"
	"github.com/civicwatch/civicwatch/internal/application/report/triage"
	"github.com/civicwatch/civicwatch/internal/domain/place"
	"github.com/civicwatch/civicwatch/internal/domain/report"
	vo "github.com/civicwatch/civicwatch/internal/domain/report/valueobjects"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
)

// memReportRepository keeps snapshots so that use cases only see persisted
// state, the way a database would.
type memReportRepository struct {
	mu     sync.Mutex
	rows   map[uint]report.Snapshot
	merges []report.MergeRecord
	nextID uint

	CreateFunc      func(ctx context.Context, r *report.Report) error
	UpdateFunc      func(ctx context.Context, r *report.Report) error
	RecordMergeFunc func(ctx context.Context, m report.MergeRecord) error
	// LockFunc runs before a row lock is granted, standing in for a
	// transaction that committed while this one waited.
	LockFunc   func(id uint)
	locked     []uint
	lastFilter report.ListFilter
}

func newMemReportRepository() *memReportRepository {
	return &memReportRepository{rows: map[uint]report.Snapshot{}, nextID: 1}
}

func (m *memReportRepository) Create(ctx context.Context, r *report.Report) error {
	if m.CreateFunc != nil {
		if err := m.CreateFunc(ctx, r); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.TrackingCode == r.TrackingCode() {
			return report.ErrTrackingCodeTaken
		}
	}
	if err := r.SetID(m.nextID); err != nil {
		return err
	}
	m.nextID++
	m.rows[r.ID()] = r.Snapshot()
	return nil
}

func (m *memReportRepository) Update(ctx context.Context, r *report.Report) error {
	if m.UpdateFunc != nil {
		if err := m.UpdateFunc(ctx, r); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[r.ID()]; !ok {
		return report.ErrNotFound
	}
	m.rows[r.ID()] = r.Snapshot()
	return nil
}

func (m *memReportRepository) get(id uint, withTrashed bool) (*report.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok || (!withTrashed && row.DeletedAt != nil) {
		return nil, report.ErrNotFound
	}
	return report.ReconstructReport(row)
}

func (m *memReportRepository) GetByID(ctx context.Context, id uint) (*report.Report, error) {
	return m.get(id, false)
}

func (m *memReportRepository) GetByIDForUpdate(ctx context.Context, id uint) (*report.Report, error) {
	if m.LockFunc != nil {
		m.LockFunc(id)
	}
	m.mu.Lock()
	m.locked = append(m.locked, id)
	m.mu.Unlock()
	return m.get(id, false)
}

// markDuplicate links child to parent directly in storage.
func (m *memReportRepository) markDuplicate(child, parent uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := m.rows[child]
	row.Status = vo.StatusDuplicate
	row.DuplicateOfID = &parent
	m.rows[child] = row
}

func (m *memReportRepository) GetByIDWithTrashed(ctx context.Context, id uint) (*report.Report, error) {
	return m.get(id, true)
}

func (m *memReportRepository) GetByTrackingCode(ctx context.Context, code string) (*report.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.TrackingCode == code && row.DeletedAt == nil {
			return report.ReconstructReport(row)
		}
	}
	return nil, report.ErrNotFound
}

func (m *memReportRepository) List(ctx context.Context, filter report.ListFilter) ([]*report.Report, int64, error) {
	m.mu.Lock()
	m.lastFilter = filter
	m.mu.Unlock()
	var out []*report.Report
	for _, id := range m.ids() {
		r, err := m.get(id, filter.Trashed)
		if err != nil {
			continue
		}
		if filter.Trashed != r.IsTrashed() {
			continue
		}
		if filter.Status != nil && r.Status() != *filter.Status {
			continue
		}
		out = append(out, r)
	}
	return out, int64(len(out)), nil
}

func (m *memReportRepository) LastTrackingCode(ctx context.Context, dayPrefix string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	last := ""
	for _, row := range m.rows {
		code := row.TrackingCode
		if !strings.HasPrefix(code, dayPrefix) {
			continue
		}
		if len(code) > len(last) || (len(code) == len(last) && code > last) {
			last = code
		}
	}
	return last, nil
}

func (m *memReportRepository) FindDuplicateCandidates(ctx context.Context, q report.CandidateQuery) ([]*report.Report, error) {
	var out []*report.Report
	for _, id := range m.ids() {
		r, err := m.get(id, false)
		if err != nil || r.ID() == q.ExcludeID || r.Status().IsDuplicate() {
			continue
		}
		if r.IssueType() != q.IssueType || !r.Location().SameAs(q.Location) {
			continue
		}
		if r.CreatedAt().Before(q.From) || r.CreatedAt().After(q.To) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memReportRepository) ListDuplicatesOf(ctx context.Context, primaryID uint) ([]*report.Report, error) {
	var out []*report.Report
	for _, id := range m.ids() {
		r, err := m.get(id, false)
		if err != nil {
			continue
		}
		if p := r.DuplicateOfID(); p != nil && *p == primaryID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memReportRepository) CountDuplicatesOf(ctx context.Context, primaryID uint) (int64, error) {
	dups, err := m.ListDuplicatesOf(ctx, primaryID)
	return int64(len(dups)), err
}

func (m *memReportRepository) RecordMerge(ctx context.Context, rec report.MergeRecord) error {
	if m.RecordMergeFunc != nil {
		if err := m.RecordMergeFunc(ctx, rec); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.merges = append(m.merges, rec)
	return nil
}

func (m *memReportRepository) SoftDelete(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return report.ErrNotFound
	}
	now := time.Now().UTC()
	row.DeletedAt = &now
	m.rows[id] = row
	return nil
}

func (m *memReportRepository) Restore(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return report.ErrNotFound
	}
	row.DeletedAt = nil
	m.rows[id] = row
	return nil
}

func (m *memReportRepository) ForceDelete(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memReportRepository) CountByStatus(ctx context.Context) (map[vo.Status]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[vo.Status]int64{}
	for _, row := range m.rows {
		if row.DeletedAt == nil {
			out[row.Status]++
		}
	}
	return out, nil
}

func (m *memReportRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, row := range m.rows {
		if row.DeletedAt == nil && !row.CreatedAt.Before(from) && !row.CreatedAt.After(to) {
			n++
		}
	}
	return n, nil
}

func (m *memReportRepository) ids() []uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]uint, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m *memReportRepository) snapshot(t *testing.T, id uint) report.Snapshot {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	require.True(t, ok, "report %d not stored", id)
	return row
}

func (m *memReportRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// seed stores a pending report created at createdAt and returns its id.
func (m *memReportRepository) seed(t *testing.T, createdAt time.Time, mutate func(s *report.Snapshot)) uint {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	s := report.Snapshot{
		ID:            id,
		TrackingCode:  fmt.Sprintf("CW-%s-%03d", createdAt.Format("20060102"), id),
		Title:         "Broken streetlight",
		IssueType:     "Streetlight outage",
		Description:   "The light near the chapel is out",
		Location:      report.Location{BarangayID: 1, SitioID: 10, BarangayName: "Poblacion", SitioName: "Proper"},
		SenderName:    "Juan Dela Cruz",
		ContactNumber: "09171234567",
		Priority:      vo.PriorityMedium,
		Status:        vo.StatusPending,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	if mutate != nil {
		mutate(&s)
	}
	m.rows[id] = s
	return id
}

// memTransactor restores the repository when fn fails.
type memTransactor struct {
	repo *memReportRepository
}

func (tx *memTransactor) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.repo.mu.Lock()
	rows := make(map[uint]report.Snapshot, len(tx.repo.rows))
	for k, v := range tx.repo.rows {
		rows[k] = v
	}
	merges := append([]report.MergeRecord(nil), tx.repo.merges...)
	tx.repo.mu.Unlock()

	if err := fn(ctx); err != nil {
		tx.repo.mu.Lock()
		tx.repo.rows = rows
		tx.repo.merges = merges
		tx.repo.mu.Unlock()
		return err
	}
	return nil
}

type fakeBlobStore struct {
	mu       sync.Mutex
	stored   map[string][]byte
	deleted  []string
	StoreErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{stored: map[string][]byte{}}
}

func (f *fakeBlobStore) Store(ctx context.Context, data []byte, category, filename string) (string, error) {
	if f.StoreErr != nil {
		return "", f.StoreErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	path := fmt.Sprintf("%s/%d-%s", category, len(f.stored)+1, filename)
	f.stored[path] = data
	return path, nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.stored, path)
	f.deleted = append(f.deleted, path)
	return nil
}

type fakeVerifier struct {
	calls int
	err   error
}

func (f *fakeVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	f.calls++
	return f.err
}

type recordingNotifier struct {
	mu       sync.Mutex
	payloads []notification.Payload
}

func (n *recordingNotifier) Notify(p notification.Payload) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.payloads = append(n.payloads, p)
}

type stubAnalyzer struct {
	verdict triage.Verdict
}

func (s stubAnalyzer) Analyze(context.Context, triage.Image) triage.Verdict {
	return s.verdict
}

type memPlaceRepository struct {
	barangays map[uint]*place.Barangay
	sitios    map[uint]*place.Sitio
}

func newMemPlaceRepository() *memPlaceRepository {
	return &memPlaceRepository{
		barangays: map[uint]*place.Barangay{
			1: {ID: 1, Name: "Poblacion", IsAvailable: true},
			2: {ID: 2, Name: "San Isidro", IsAvailable: false},
		},
		sitios: map[uint]*place.Sitio{
			10: {ID: 10, BarangayID: 1, Name: "Proper", IsAvailable: true},
			20: {ID: 20, BarangayID: 2, Name: "Riverside", IsAvailable: true},
		},
	}
}

func (m *memPlaceRepository) GetBarangay(ctx context.Context, id uint) (*place.Barangay, error) {
	if b, ok := m.barangays[id]; ok {
		return b, nil
	}
	return nil, place.ErrNotFound
}

func (m *memPlaceRepository) GetSitio(ctx context.Context, id uint) (*place.Sitio, error) {
	if s, ok := m.sitios[id]; ok {
		return s, nil
	}
	return nil, place.ErrNotFound
}

func (m *memPlaceRepository) ListBarangays(ctx context.Context) ([]*place.Barangay, error) {
	return nil, nil
}

func (m *memPlaceRepository) UpsertBarangay(ctx context.Context, b *place.Barangay) error {
	return nil
}

var errDatabaseDown = errors.New("database is down")

func newTestLogger() logger.Interface {
	return logger.NewNop()
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
