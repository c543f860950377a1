package usecases

import (
	"context"

	"github.com/civicwatch/civicwatch/internal/application/place/dto"
	"github.com/civicwatch/civicwatch/internal/domain/issuetype"
	"github.com/civicwatch/civicwatch/internal/domain/place"
	"github.com/civicwatch/civicwatch/internal/shared/errors"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
)

type ListPlacesExecutor interface {
	Execute(ctx context.Context, query ListPlacesQuery) (*dto.PlacesDTO, error)
}

type ListPlacesQuery struct {
	// AvailableOnly hides barangays and sitios not yet open for reporting.
	AvailableOnly bool
}

// PlacesCache stores the rendered catalog. Get returns nil on a miss.
type PlacesCache interface {
	Get(ctx context.Context, availableOnly bool) (*dto.PlacesDTO, error)
	Set(ctx context.Context, availableOnly bool, places *dto.PlacesDTO) error
}

type ListPlacesUseCase struct {
	placeRepo     place.Repository
	issueTypeRepo issuetype.Repository
	cache         PlacesCache
	logger        logger.Interface
}

func NewListPlacesUseCase(placeRepo place.Repository, issueTypeRepo issuetype.Repository, logger logger.Interface) *ListPlacesUseCase {
	return &ListPlacesUseCase{placeRepo: placeRepo, issueTypeRepo: issueTypeRepo, logger: logger}
}

// SetCache enables read-through caching. Cache errors never fail a request.
func (uc *ListPlacesUseCase) SetCache(cache PlacesCache) {
	uc.cache = cache
}

func (uc *ListPlacesUseCase) Execute(ctx context.Context, query ListPlacesQuery) (*dto.PlacesDTO, error) {
	if uc.cache != nil {
		cached, err := uc.cache.Get(ctx, query.AvailableOnly)
		if err != nil {
			uc.logger.Warnw("places cache unavailable", "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	out, err := uc.load(ctx, query)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, query.AvailableOnly, out); err != nil {
			uc.logger.Warnw("failed to cache places", "error", err)
		}
	}
	return out, nil
}

func (uc *ListPlacesUseCase) load(ctx context.Context, query ListPlacesQuery) (*dto.PlacesDTO, error) {
	barangays, err := uc.placeRepo.ListBarangays(ctx)
	if err != nil {
		uc.logger.Errorw("failed to list barangays", "error", err)
		return nil, errors.NewInternalError("failed to list places")
	}
	issueTypes, err := uc.issueTypeRepo.ListActive(ctx)
	if err != nil {
		uc.logger.Errorw("failed to list issue types", "error", err)
		return nil, errors.NewInternalError("failed to list places")
	}

	out := &dto.PlacesDTO{
		Barangays:  make([]dto.BarangayDTO, 0, len(barangays)),
		IssueTypes: make([]dto.IssueTypeDTO, 0, len(issueTypes)),
	}
	for _, b := range barangays {
		if query.AvailableOnly && !b.IsAvailable {
			continue
		}
		d := dto.ToBarangayDTO(b)
		if query.AvailableOnly {
			open := d.Sitios[:0]
			for _, s := range d.Sitios {
				if s.IsAvailable {
					open = append(open, s)
				}
			}
			d.Sitios = open
		}
		out.Barangays = append(out.Barangays, d)
	}
	for _, it := range issueTypes {
		out.IssueTypes = append(out.IssueTypes, dto.ToIssueTypeDTO(it))
	}
	return out, nil
}
