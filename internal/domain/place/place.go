// Package place holds the barangays and sitios reports are filed against.
package place

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("place not found")

type Barangay struct {
	ID          uint
	Name        string
	IsAvailable bool
	Description string
	Sitios      []Sitio
}

type Sitio struct {
	ID          uint
	BarangayID  uint
	Name        string
	IsAvailable bool
}

type Repository interface {
	GetBarangay(ctx context.Context, id uint) (*Barangay, error)
	GetSitio(ctx context.Context, id uint) (*Sitio, error)
	// ListBarangays returns every barangay with its sitios.
	ListBarangays(ctx context.Context) ([]*Barangay, error)
	// UpsertBarangay inserts or updates by name, together with its sitios.
	UpsertBarangay(ctx context.Context, b *Barangay) error
}
