// Package blobstore is the port for storing uploaded report images.
package blobstore

import "context"

// Store persists opaque image bytes under a category and returns the path
// later used to fetch or delete them.
type Store interface {
	Store(ctx context.Context, data []byte, category, filename string) (string, error)
	Delete(ctx context.Context, path string) error
}

// CategoryReportImages is the category report photos are stored under.
const CategoryReportImages = "report-images"
