package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/civeni/civeni-api/internal/clock"
	"github.com/civeni/civeni-api/internal/domain"
	"github.com/civeni/civeni-api/internal/repository"
)

const jpegQuality = 85

var (
	ErrUnsupportedImage = errors.New("file is not a supported image")
	ErrMediaNotFound    = repository.ErrMediaNotFound
)

type MediaRepository interface {
	Save(ctx context.Context, m domain.MediaAsset) (domain.MediaAsset, error)
	FindByID(ctx context.Context, id uuid.UUID) (domain.MediaAsset, error)
}

type Bucket interface {
	Put(p string, data []byte) (string, error)
	PublicURL(key string) string
}

type MediaService struct {
	repo      MediaRepository
	bucket    Bucket
	publisher ChangePublisher
	clock     clock.Clock
	maxWidth  int
}

func NewMediaService(repo MediaRepository, bucket Bucket, publisher ChangePublisher, clk clock.Clock, maxWidth int) *MediaService {
	return &MediaService{
		repo:      repo,
		bucket:    bucket,
		publisher: publisher,
		clock:     clk,
		maxWidth:  maxWidth,
	}
}

// Upload re-encodes the image, stores it under objectPath (or a path derived
// from filename) and bumps the asset version so cached URLs change.
func (s *MediaService) Upload(ctx context.Context, objectPath, filename string, data []byte) (domain.MediaAsset, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return domain.MediaAsset{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	if s.maxWidth > 0 && img.Bounds().Dx() > s.maxWidth {
		img = imaging.Resize(img, s.maxWidth, 0, imaging.Lanczos)
	}

	if objectPath == "" {
		objectPath = "uploads/" + filename
	}
	format, contentType, ext := outputFormat(objectPath)
	objectPath = strings.TrimSuffix(objectPath, path.Ext(objectPath)) + ext

	var buf bytes.Buffer
	if err = imaging.Encode(&buf, img, format, imaging.JPEGQuality(jpegQuality)); err != nil {
		return domain.MediaAsset{}, fmt.Errorf("imaging.Encode -> %w", err)
	}
	encoded := buf.Bytes()
	sum := sha256.Sum256(encoded)

	key, err := s.bucket.Put(objectPath, encoded)
	if err != nil {
		return domain.MediaAsset{}, fmt.Errorf("s.bucket.Put -> %w", err)
	}

	asset, err := s.repo.Save(ctx, domain.MediaAsset{
		Path:        key,
		ContentHash: hex.EncodeToString(sum[:]),
		ContentType: contentType,
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		Size:        int64(len(encoded)),
		PublicURL:   s.bucket.PublicURL(key),
		VersionAt:   s.clock.Now(),
	})
	if err != nil {
		return domain.MediaAsset{}, fmt.Errorf("s.repo.Save -> %w", err)
	}

	if s.publisher != nil {
		s.publisher.Publish(domain.ChangeEvent{Table: "media_assets", Type: "update", ID: asset.ID.String(), At: asset.VersionAt})
	}

	return asset, nil
}

func (s *MediaService) Get(ctx context.Context, id uuid.UUID) (domain.MediaAsset, error) {
	asset, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.MediaAsset{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return asset, nil
}

// outputFormat keeps PNG (transparency) and turns everything else into JPEG.
func outputFormat(p string) (imaging.Format, string, string) {
	if strings.EqualFold(path.Ext(p), ".png") {
		return imaging.PNG, "image/png", ".png"
	}
	return imaging.JPEG, "image/jpeg", ".jpg"
}
