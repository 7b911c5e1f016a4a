package storage

import (
	"context"
	"time"
)

// Default expiry duration for presigned URLs. Roadmap payloads carry video
// links presigned with this lifetime; a stale link is refetched with the
// roadmap, never refreshed in place.
const DefaultPresignedURLExpiry = 15 * time.Minute

// MediaStorage defines the interface for object storage operations the
// platform needs: serving exercise demonstration videos and removing media
// when a program is deleted. Upload flows are handled outside this service.
type MediaStorage interface {
	// GeneratePresignedDownloadURL creates a temporary URL that allows GET
	// requests for viewing an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}
