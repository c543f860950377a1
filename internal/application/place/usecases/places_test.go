package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/civicwatch/civicwatch/internal/domain/issuetype"
	"github.com/civicwatch/civicwatch/internal/domain/place"
	vo "github.com/civicwatch/civicwatch/internal/domain/report/valueobjects"
	apperrors "github.com/civicwatch/civicwatch/internal/shared/errors"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
)

func testBarangays() []*place.Barangay {
	return []*place.Barangay{
		{ID: 1, Name: "Poblacion", IsAvailable: true, Sitios: []place.Sitio{
			{ID: 10, BarangayID: 1, Name: "Proper", IsAvailable: true},
			{ID: 11, BarangayID: 1, Name: "Riverside", IsAvailable: false},
		}},
		{ID: 2, Name: "San Isidro", IsAvailable: false},
	}
}

func TestListPlacesUseCase(t *testing.T) {
	places := &mockPlaceRepository{ListBarangaysFunc: func(context.Context) ([]*place.Barangay, error) {
		return testBarangays(), nil
	}}
	issueTypes := &mockIssueTypeRepository{ListActiveFunc: func(context.Context) ([]*issuetype.IssueType, error) {
		return []*issuetype.IssueType{{ID: 1, Name: "Fire", Active: true, Priority: vo.PriorityHigh}}, nil
	}}
	uc := NewListPlacesUseCase(places, issueTypes, logger.NewNop())

	all, err := uc.Execute(context.Background(), ListPlacesQuery{})
	require.NoError(t, err)
	require.Len(t, all.Barangays, 2)
	assert.Len(t, all.Barangays[0].Sitios, 2)
	assert.NotNil(t, all.Barangays[1].Sitios)
	require.Len(t, all.IssueTypes, 1)
	assert.Equal(t, "High", all.IssueTypes[0].Priority)

	open, err := uc.Execute(context.Background(), ListPlacesQuery{AvailableOnly: true})
	require.NoError(t, err)
	require.Len(t, open.Barangays, 1)
	require.Len(t, open.Barangays[0].Sitios, 1)
	assert.Equal(t, "Proper", open.Barangays[0].Sitios[0].Name)
}

func TestListPlacesUseCase_RepositoryError(t *testing.T) {
	places := &mockPlaceRepository{ListBarangaysFunc: func(context.Context) ([]*place.Barangay, error) {
		return nil, errors.New("db down")
	}}
	uc := NewListPlacesUseCase(places, &mockIssueTypeRepository{}, logger.NewNop())

	_, err := uc.Execute(context.Background(), ListPlacesQuery{})
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypeInternal, appErr.Type)
}

const seedYAML = `
issue_types:
  - name: Fire
    priority: high
  - name: Potholes
  - name: Retired Category
    active: false
barangays:
  - name: Poblacion
    available: true
    sitios:
      - name: Proper
      - name: Riverside
        available: false
  - name: San Isidro
`

func TestSeedPlacesUseCase(t *testing.T) {
	var cmd SeedPlacesCommand
	require.NoError(t, yaml.Unmarshal([]byte(seedYAML), &cmd))

	var seededTypes []*issuetype.IssueType
	var seededBarangays []*place.Barangay
	tx := &inlineTransactor{}
	uc := NewSeedPlacesUseCase(
		&mockPlaceRepository{UpsertBarangayFunc: func(_ context.Context, b *place.Barangay) error {
			seededBarangays = append(seededBarangays, b)
			return nil
		}},
		&mockIssueTypeRepository{UpsertFunc: func(_ context.Context, it *issuetype.IssueType) error {
			seededTypes = append(seededTypes, it)
			return nil
		}},
		tx,
		logger.NewNop(),
	)

	res, err := uc.Execute(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, &SeedPlacesResult{IssueTypes: 3, Barangays: 2, Sitios: 2}, res)
	assert.Equal(t, 1, tx.calls)

	require.Len(t, seededTypes, 3)
	assert.Equal(t, vo.PriorityHigh, seededTypes[0].Priority)
	assert.Equal(t, vo.PriorityMedium, seededTypes[1].Priority)
	assert.False(t, seededTypes[2].Active)

	require.Len(t, seededBarangays, 2)
	assert.True(t, seededBarangays[0].IsAvailable)
	assert.True(t, seededBarangays[0].Sitios[0].IsAvailable)
	assert.False(t, seededBarangays[0].Sitios[1].IsAvailable)
	assert.False(t, seededBarangays[1].IsAvailable)
}

func TestSeedPlacesUseCase_InvalidPriorityTouchesNothing(t *testing.T) {
	called := false
	uc := NewSeedPlacesUseCase(
		&mockPlaceRepository{},
		&mockIssueTypeRepository{UpsertFunc: func(context.Context, *issuetype.IssueType) error {
			called = true
			return nil
		}},
		&inlineTransactor{},
		logger.NewNop(),
	)

	_, err := uc.Execute(context.Background(), SeedPlacesCommand{
		IssueTypes: []SeedIssueType{{Name: "Fire", Priority: "urgent"}},
	})
	assert.Error(t, err)
	assert.False(t, called)
}

func TestListPlacesUseCase_ReadThroughCache(t *testing.T) {
	calls := 0
	places := &mockPlaceRepository{ListBarangaysFunc: func(context.Context) ([]*place.Barangay, error) {
		calls++
		return testBarangays(), nil
	}}
	uc := NewListPlacesUseCase(places, &mockIssueTypeRepository{}, logger.NewNop())
	cache := &mapPlacesCache{}
	uc.SetCache(cache)

	first, err := uc.Execute(context.Background(), ListPlacesQuery{AvailableOnly: true})
	require.NoError(t, err)
	second, err := uc.Execute(context.Background(), ListPlacesQuery{AvailableOnly: true})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, cache.sets)
	assert.Same(t, first, second)

	_, err = uc.Execute(context.Background(), ListPlacesQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestListPlacesUseCase_CacheErrorFallsBackToRepository(t *testing.T) {
	places := &mockPlaceRepository{ListBarangaysFunc: func(context.Context) ([]*place.Barangay, error) {
		return testBarangays(), nil
	}}
	uc := NewListPlacesUseCase(places, &mockIssueTypeRepository{}, logger.NewNop())
	uc.SetCache(&mapPlacesCache{getErr: errors.New("redis down")})

	out, err := uc.Execute(context.Background(), ListPlacesQuery{})
	require.NoError(t, err)
	assert.Len(t, out.Barangays, 2)
}
