package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type MediaAsset struct {
	ID          uuid.UUID `json:"id"`
	Path        string    `json:"path"`
	ContentHash string    `json:"content_hash"`
	ContentType string    `json:"content_type"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Size        int64     `json:"size"`
	PublicURL   string    `json:"public_url"`
	VersionAt   time.Time `json:"version_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// VersionedURL appends a cache-busting token built from the content hash and
// the version timestamp.
func (m *MediaAsset) VersionedURL() string {
	hash := m.ContentHash
	if len(hash) > 12 {
		hash = hash[:12]
	}
	return fmt.Sprintf("%s?v=%s-%d", m.PublicURL, hash, m.VersionAt.Unix())
}
