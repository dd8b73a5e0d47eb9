package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrMediaNotFound = errors.New("media asset not found")

type MediaAsset struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Path        string    `gorm:"uniqueIndex;not null"`
	ContentHash string    `gorm:"not null"`
	ContentType string
	Width       int
	Height      int
	Size        int64
	PublicURL   string    `gorm:"not null"`
	VersionAt   time.Time `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (m *MediaAsset) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type MediaDAO struct {
	db *gorm.DB
}

func NewMediaDAO(db *gorm.DB) *MediaDAO {
	return &MediaDAO{
		db: db,
	}
}

// UpsertByPath keeps one row per object path and refreshes its version.
func (d *MediaDAO) UpsertByPath(ctx context.Context, asset MediaAsset) (MediaAsset, error) {
	result := d.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "path"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"content_hash", "content_type", "width", "height", "size",
				"public_url", "version_at", "updated_at",
			}),
		}).
		Create(&asset)
	if result.Error != nil {
		return MediaAsset{}, result.Error
	}

	return d.FindByPath(ctx, asset.Path)
}

func (d *MediaDAO) FindByPath(ctx context.Context, path string) (MediaAsset, error) {
	var asset MediaAsset

	result := d.db.WithContext(ctx).First(&asset, "path = ?", path)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return MediaAsset{}, ErrMediaNotFound
		}

		return MediaAsset{}, result.Error
	}

	return asset, nil
}

func (d *MediaDAO) FindByID(ctx context.Context, id uuid.UUID) (MediaAsset, error) {
	var asset MediaAsset

	result := d.db.WithContext(ctx).First(&asset, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return MediaAsset{}, ErrMediaNotFound
		}

		return MediaAsset{}, result.Error
	}

	return asset, nil
}
