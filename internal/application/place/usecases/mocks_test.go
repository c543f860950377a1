package usecases

import (
	"context"

	"github.com/civicwatch/civicwatch/internal/application/place/dto"
	"github.com/civicwatch/civicwatch/internal/domain/issuetype"
	"github.com/civicwatch/civicwatch/internal/domain/place"
)

type mockPlaceRepository struct {
	GetBarangayFunc    func(ctx context.Context, id uint) (*place.Barangay, error)
	GetSitioFunc       func(ctx context.Context, id uint) (*place.Sitio, error)
	ListBarangaysFunc  func(ctx context.Context) ([]*place.Barangay, error)
	UpsertBarangayFunc func(ctx context.Context, b *place.Barangay) error
}

func (m *mockPlaceRepository) GetBarangay(ctx context.Context, id uint) (*place.Barangay, error) {
	if m.GetBarangayFunc != nil {
		return m.GetBarangayFunc(ctx, id)
	}
	return nil, place.ErrNotFound
}

func (m *mockPlaceRepository) GetSitio(ctx context.Context, id uint) (*place.Sitio, error) {
	if m.GetSitioFunc != nil {
		return m.GetSitioFunc(ctx, id)
	}
	return nil, place.ErrNotFound
}

func (m *mockPlaceRepository) ListBarangays(ctx context.Context) ([]*place.Barangay, error) {
	if m.ListBarangaysFunc != nil {
		return m.ListBarangaysFunc(ctx)
	}
	return nil, nil
}

func (m *mockPlaceRepository) UpsertBarangay(ctx context.Context, b *place.Barangay) error {
	if m.UpsertBarangayFunc != nil {
		return m.UpsertBarangayFunc(ctx, b)
	}
	return nil
}

type mockIssueTypeRepository struct {
	GetByNameFunc  func(ctx context.Context, name string) (*issuetype.IssueType, error)
	ListActiveFunc func(ctx context.Context) ([]*issuetype.IssueType, error)
	UpsertFunc     func(ctx context.Context, it *issuetype.IssueType) error
}

func (m *mockIssueTypeRepository) GetByName(ctx context.Context, name string) (*issuetype.IssueType, error) {
	if m.GetByNameFunc != nil {
		return m.GetByNameFunc(ctx, name)
	}
	return nil, issuetype.ErrNotFound
}

func (m *mockIssueTypeRepository) ListActive(ctx context.Context) ([]*issuetype.IssueType, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	return nil, nil
}

func (m *mockIssueTypeRepository) Upsert(ctx context.Context, it *issuetype.IssueType) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, it)
	}
	return nil
}

// inlineTransactor runs fn directly and reports whether it was used.
type inlineTransactor struct {
	calls int
}

func (t *inlineTransactor) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type mapPlacesCache struct {
	entries map[bool]*dto.PlacesDTO
	getErr  error
	sets    int
}

func (c *mapPlacesCache) Get(_ context.Context, availableOnly bool) (*dto.PlacesDTO, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.entries[availableOnly], nil
}

func (c *mapPlacesCache) Set(_ context.Context, availableOnly bool, places *dto.PlacesDTO) error {
	if c.entries == nil {
		c.entries = map[bool]*dto.PlacesDTO{}
	}
	c.entries[availableOnly] = places
	c.sets++
	return nil
}
