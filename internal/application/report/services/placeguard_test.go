package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicwatch/civicwatch/internal/domain/place"
	apperrors "github.com/civicwatch/civicwatch/internal/shared/errors"
)

func newPlaceRepo() *mockPlaceRepository {
	return &mockPlaceRepository{
		barangays: map[uint]*place.Barangay{
			1: {ID: 1, Name: "Poblacion", IsAvailable: true},
			2: {ID: 2, Name: "San Isidro", IsAvailable: false},
		},
		sitios: map[uint]*place.Sitio{
			10: {ID: 10, BarangayID: 1, Name: "Proper", IsAvailable: true},
			11: {ID: 11, BarangayID: 2, Name: "Riverside", IsAvailable: true},
			12: {ID: 12, BarangayID: 1, Name: "Hilltop", IsAvailable: false},
		},
	}
}

func TestPlaceGuard_Predicates(t *testing.T) {
	g := NewPlaceGuard(newPlaceRepo(), newTestLogger())
	ctx := context.Background()

	ok, err := g.IsLocationAcceptingReports(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.IsLocationAcceptingReports(ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = g.IsLocationAcceptingReports(ctx, 99)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = g.SitioBelongsToBarangay(ctx, 10, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.SitioBelongsToBarangay(ctx, 11, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPlaceGuard_Resolve(t *testing.T) {
	g := NewPlaceGuard(newPlaceRepo(), newTestLogger())
	ctx := context.Background()

	loc, err := g.Resolve(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "Poblacion", loc.BarangayName)
	assert.Equal(t, "Proper", loc.SitioName)

	tests := []struct {
		name       string
		barangayID uint
		sitioID    uint
		field      string
		message    string
	}{
		{"unknown barangay", 99, 10, "barangay_id", "The selected barangay id is invalid."},
		{"unavailable barangay", 2, 11, "barangay_id", "Selected barangay is not yet available for reporting."},
		{"unknown sitio", 1, 99, "sitio_id", "The selected sitio id is invalid."},
		{"sitio of another barangay", 1, 11, "sitio_id", "Selected sitio does not belong to the selected barangay."},
		{"unavailable sitio", 1, 12, "sitio_id", "Selected sitio is not yet available for reporting."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Resolve(ctx, tt.barangayID, tt.sitioID)
			appErr := apperrors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.message, appErr.Fields[tt.field])
		})
	}
}

func TestPlaceGuard_ResolveRepositoryError(t *testing.T) {
	g := NewPlaceGuard(&mockPlaceRepository{err: errors.New("db down")}, newTestLogger())

	_, err := g.Resolve(context.Background(), 1, 10)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypeInternal, appErr.Type)
}
