package services

import (
	"context"
	stderrors "errors"

	"github.com/civicwatch/civicwatch/internal/domain/place"
	"github.com/civicwatch/civicwatch/internal/domain/report"
	"github.com/civicwatch/civicwatch/internal/shared/errors"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
)

// PlaceGuard enforces the referential rules on a submission's location.
type PlaceGuard struct {
	repo   place.Repository
	logger logger.Interface
}

func NewPlaceGuard(repo place.Repository, log logger.Interface) *PlaceGuard {
	return &PlaceGuard{repo: repo, logger: log}
}

// IsLocationAcceptingReports reports whether the barangay exists and is open for reports.
func (g *PlaceGuard) IsLocationAcceptingReports(ctx context.Context, barangayID uint) (bool, error) {
	b, err := g.repo.GetBarangay(ctx, barangayID)
	if err != nil {
		if stderrors.Is(err, place.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return b.IsAvailable, nil
}

// SitioBelongsToBarangay reports whether the sitio exists under the barangay.
func (g *PlaceGuard) SitioBelongsToBarangay(ctx context.Context, sitioID, barangayID uint) (bool, error) {
	s, err := g.repo.GetSitio(ctx, sitioID)
	if err != nil {
		if stderrors.Is(err, place.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return s.BarangayID == barangayID, nil
}

// Resolve checks both rules and returns the location with name snapshots.
// Violations are field validation errors on barangay_id or sitio_id.
func (g *PlaceGuard) Resolve(ctx context.Context, barangayID, sitioID uint) (report.Location, error) {
	b, err := g.repo.GetBarangay(ctx, barangayID)
	if err != nil {
		if stderrors.Is(err, place.ErrNotFound) {
			return report.Location{}, errors.NewFieldValidationError("barangay_id", "The selected barangay id is invalid.")
		}
		g.logger.Errorw("failed to load barangay", "barangay_id", barangayID, "error", err)
		return report.Location{}, errors.NewInternalError("failed to check location")
	}
	if !b.IsAvailable {
		return report.Location{}, errors.NewFieldValidationError("barangay_id", "Selected barangay is not yet available for reporting.")
	}

	s, err := g.repo.GetSitio(ctx, sitioID)
	if err != nil {
		if stderrors.Is(err, place.ErrNotFound) {
			return report.Location{}, errors.NewFieldValidationError("sitio_id", "The selected sitio id is invalid.")
		}
		g.logger.Errorw("failed to load sitio", "sitio_id", sitioID, "error", err)
		return report.Location{}, errors.NewInternalError("failed to check location")
	}
	if s.BarangayID != b.ID {
		return report.Location{}, errors.NewFieldValidationError("sitio_id", "Selected sitio does not belong to the selected barangay.")
	}
	if !s.IsAvailable {
		return report.Location{}, errors.NewFieldValidationError("sitio_id", "Selected sitio is not yet available for reporting.")
	}

	return report.Location{
		BarangayID:   b.ID,
		SitioID:      s.ID,
		BarangayName: b.Name,
		SitioName:    s.Name,
	}, nil
}
