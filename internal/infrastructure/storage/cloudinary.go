package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// CloudinaryStore uploads blobs to Cloudinary and returns the secure URL.
type CloudinaryStore struct {
	client *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryStore(cloudinaryURL, folder string) (*CloudinaryStore, error) {
	if cloudinaryURL == "" {
		return nil, fmt.Errorf("cloudinary url is not configured")
	}
	client, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	if folder == "" {
		folder = "civicwatch"
	}
	return &CloudinaryStore{client: client, folder: strings.Trim(folder, "/")}, nil
}

func (s *CloudinaryStore) Store(ctx context.Context, data []byte, category, _ string) (string, error) {
	overwrite := false
	result, err := s.client.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       s.folder + "/" + category,
		PublicID:     uuid.NewString(),
		ResourceType: "image",
		Overwrite:    &overwrite,
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload failed: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload failed: %s", result.Error.Message)
	}
	return result.SecureURL, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, url string) error {
	publicID := extractPublicID(url)
	if publicID == "" {
		return fmt.Errorf("failed to extract public ID from URL: %s", url)
	}
	if _, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	}); err != nil {
		return fmt.Errorf("failed to delete image from cloudinary: %w", err)
	}
	return nil
}

// extractPublicID turns .../image/upload/v123/folder/name.jpg into folder/name.
func extractPublicID(url string) string {
	parts := strings.SplitN(url, "/upload/", 2)
	if len(parts) < 2 {
		return ""
	}

	segments := strings.Split(parts[1], "/")
	if len(segments) > 1 && isVersion(segments[0]) {
		segments = segments[1:]
	}
	publicID := strings.Join(segments, "/")
	if dot := strings.LastIndex(publicID, "."); dot > strings.LastIndex(publicID, "/") {
		publicID = publicID[:dot]
	}
	return publicID
}

func isVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
