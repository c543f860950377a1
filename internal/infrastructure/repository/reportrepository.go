package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/civicwatch/civicwatch/internal/domain/report"
	vo "github.com/civicwatch/civicwatch/internal/domain/report/valueobjects"
	"github.com/civicwatch/civicwatch/internal/infrastructure/persistence/mappers"
	"github.com/civicwatch/civicwatch/internal/infrastructure/persistence/models"
	db "github.com/civicwatch/civicwatch/internal/shared/db"
	apperrors "github.com/civicwatch/civicwatch/internal/shared/errors"
)

// allowedReportOrderByFields defines the whitelist of allowed ORDER BY fields
// to prevent SQL injection attacks.
var allowedReportOrderByFields = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"priority_level": true,
	"status":         true,
	"tracking_code":  true,
}

type ReportRepository struct {
	db     *gorm.DB
	mapper mappers.ReportMapper
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{
		db:     db,
		mapper: mappers.NewReportMapper(),
	}
}

func (r *ReportRepository) Create(ctx context.Context, rep *report.Report) error {
	model, err := r.mapper.ToModel(rep)
	if err != nil {
		return err
	}
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return fmt.Errorf("%w: %s", report.ErrTrackingCodeTaken, model.TrackingCode)
		}
		return fmt.Errorf("failed to create report: %w", err)
	}

	return rep.SetID(model.ID)
}

// Update writes every column so cleared fields (a reverted reason, a removed
// duplicate link) are persisted as NULL or empty.
func (r *ReportRepository) Update(ctx context.Context, rep *report.Report) error {
	model, err := r.mapper.ToModel(rep)
	if err != nil {
		return err
	}
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.Model(&models.ReportModel{}).
		Unscoped().
		Where("id = ?", model.ID).
		Select("*").
		Omit("id", "created_at", "deleted_at").
		Updates(model)
	if result.Error != nil {
		return fmt.Errorf("failed to update report: %w", result.Error)
	}
	return nil
}

func (r *ReportRepository) GetByID(ctx context.Context, id uint) (*report.Report, error) {
	return r.first(db.GetTxFromContext(ctx, r.db).Where("id = ?", id))
}

// GetByIDForUpdate issues SELECT ... FOR UPDATE. SQLite has no row locks and
// relies on its single writer instead.
func (r *ReportRepository) GetByIDForUpdate(ctx context.Context, id uint) (*report.Report, error) {
	return r.first(db.GetTxFromContext(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id))
}

func (r *ReportRepository) GetByIDWithTrashed(ctx context.Context, id uint) (*report.Report, error) {
	return r.first(db.GetTxFromContext(ctx, r.db).Unscoped().Where("id = ?", id))
}

func (r *ReportRepository) GetByTrackingCode(ctx context.Context, code string) (*report.Report, error) {
	return r.first(db.GetTxFromContext(ctx, r.db).Where("tracking_code = ?", code))
}

func (r *ReportRepository) first(q *gorm.DB) (*report.Report, error) {
	var model models.ReportModel
	if err := q.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, report.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return r.mapper.ToDomain(&model)
}

func (r *ReportRepository) List(ctx context.Context, filter report.ListFilter) ([]*report.Report, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.ReportModel{})

	if filter.Trashed {
		query = query.Scopes(db.OnlyTrashed())
	}
	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status.String())
	}
	if filter.Priority != nil {
		query = query.Where("priority_level = ?", filter.Priority.String())
	}
	if filter.IssueType != "" {
		query = query.Where("issue_type = ?", filter.IssueType)
	}
	if filter.BarangayID != 0 {
		query = query.Where("barangay_id = ?", filter.BarangayID)
	}
	if filter.Emergency != nil {
		query = query.Where("is_emergency = ?", *filter.Emergency)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + escapeLike(s) + "%"
		query = query.Where(
			"(title LIKE ? ESCAPE '!' OR tracking_code LIKE ? ESCAPE '!' OR description LIKE ? ESCAPE '!' OR sender_name LIKE ? ESCAPE '!')",
			like, like, like, like,
		)
	}
	query = query.Scopes(db.CreatedBetween(filter.From, filter.To))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}

	orderBy := strings.ToLower(filter.SortBy)
	if !allowedReportOrderByFields[orderBy] {
		orderBy = "created_at"
	}
	order := strings.ToLower(filter.SortOrder)
	if order != "asc" && order != "desc" {
		order = "desc"
	}
	query = query.Order(fmt.Sprintf("%s %s", orderBy, order)).Order("id " + order)

	if filter.PageSize > 0 {
		query = query.Scopes(db.Paginate(filter.Page, filter.PageSize))
	}

	var rows []models.ReportModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list reports: %w", err)
	}

	reports, err := r.mapper.ToDomainList(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to map reports: %w", err)
	}
	return reports, total, nil
}

// LastTrackingCode orders by length first so CW-20250611-1000 sorts after
// CW-20250611-999.
func (r *ReportRepository) LastTrackingCode(ctx context.Context, dayPrefix string) (string, error) {
	var codes []string
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.ReportModel{}).
		Unscoped().
		Where("tracking_code LIKE ? ESCAPE '!'", escapeLike(dayPrefix)+"%").
		Order("LENGTH(tracking_code) DESC").
		Order("tracking_code DESC").
		Limit(1).
		Pluck("tracking_code", &codes).Error
	if err != nil {
		return "", fmt.Errorf("failed to read last tracking code: %w", err)
	}
	if len(codes) == 0 {
		return "", nil
	}
	return codes[0], nil
}

func (r *ReportRepository) FindDuplicateCandidates(ctx context.Context, q report.CandidateQuery) ([]*report.Report, error) {
	query := db.GetTxFromContext(ctx, r.db).
		Where("issue_type = ?", q.IssueType).
		Where("barangay_id = ? AND sitio_id = ?", q.Location.BarangayID, q.Location.SitioID).
		Where("status <> ?", vo.StatusDuplicate.String()).
		Scopes(db.CreatedBetween(q.From, q.To))
	if q.ExcludeID != 0 {
		query = query.Where("id <> ?", q.ExcludeID)
	}

	var rows []models.ReportModel
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find duplicate candidates: %w", err)
	}
	return r.mapper.ToDomainList(rows)
}

func (r *ReportRepository) ListDuplicatesOf(ctx context.Context, primaryID uint) ([]*report.Report, error) {
	var rows []models.ReportModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("duplicate_of_report_id = ?", primaryID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list duplicates: %w", err)
	}
	return r.mapper.ToDomainList(rows)
}

// CountDuplicatesOf includes trashed duplicates: a trashed child still blocks
// the parent from being merged elsewhere or purged.
func (r *ReportRepository) CountDuplicatesOf(ctx context.Context, primaryID uint) (int64, error) {
	var n int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.ReportModel{}).
		Unscoped().
		Where("duplicate_of_report_id = ?", primaryID).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count duplicates: %w", err)
	}
	return n, nil
}

func (r *ReportRepository) RecordMerge(ctx context.Context, m report.MergeRecord) error {
	model := r.mapper.MergeToModel(m)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to record merge: %w", err)
	}
	return nil
}

func (r *ReportRepository) SoftDelete(ctx context.Context, id uint) error {
	result := db.GetTxFromContext(ctx, r.db).Delete(&models.ReportModel{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to trash report: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return report.ErrNotFound
	}
	return nil
}

func (r *ReportRepository) Restore(ctx context.Context, id uint) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.ReportModel{}).
		Scopes(db.OnlyTrashed()).
		Where("id = ?", id).
		Update("deleted_at", nil)
	if result.Error != nil {
		return fmt.Errorf("failed to restore report: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return report.ErrNotFound
	}
	return nil
}

func (r *ReportRepository) ForceDelete(ctx context.Context, id uint) error {
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Where("duplicate_report_id = ? OR primary_report_id = ?", id, id).
		Delete(&models.ReportMergeModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete merge history: %w", err)
	}
	result := tx.Unscoped().Delete(&models.ReportModel{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete report: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return report.ErrNotFound
	}
	return nil
}

func (r *ReportRepository) CountByStatus(ctx context.Context) (map[vo.Status]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.ReportModel{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count reports by status: %w", err)
	}

	counts := make(map[vo.Status]int64, len(rows))
	for _, row := range rows {
		s, err := vo.NewStatus(row.Status)
		if err != nil {
			continue
		}
		counts[s] = row.Total
	}
	return counts, nil
}

func (r *ReportRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.ReportModel{}).
		Scopes(db.CreatedBetween(from, to)).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return n, nil
}

// escapeLike escapes LIKE wildcards for use with ESCAPE '!'.
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
