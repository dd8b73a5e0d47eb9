package service

import (
	"bytes"
	"context"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/civeni/civeni-api/internal/clock"
	"github.com/civeni/civeni-api/internal/domain"
	"github.com/civeni/civeni-api/internal/storage"
)

func pngImage(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(w, h, c), imaging.PNG))
	return buf.Bytes()
}

func savedAsset() func(context.Context, domain.MediaAsset) domain.MediaAsset {
	return func(_ context.Context, a domain.MediaAsset) domain.MediaAsset {
		a.ID = uuid.New()
		return a
	}
}

func TestMediaUpload_ResizesAndReencodes(t *testing.T) {
	bucket := storage.NewBucket(afero.NewMemMapFs(), "https://cdn.civeni.test/media/")
	repo := new(MockMediaRepository)
	publisher := &recordingPublisher{}
	repo.On("Save", mock.Anything, mock.MatchedBy(func(a domain.MediaAsset) bool {
		return a.Path == "banners/hero.jpg" && a.ContentType == "image/jpeg" && len(a.ContentHash) == 64
	})).Return(savedAsset(), nil)

	svc := NewMediaService(repo, bucket, publisher, clock.NewFixed(testNow), 800)
	got, err := svc.Upload(context.Background(), "banners/hero.webp", "", pngImage(t, 1600, 400, color.NRGBA{R: 200, A: 255}))

	require.NoError(t, err)
	assert.Equal(t, 800, got.Width)
	assert.Equal(t, 200, got.Height)
	assert.Equal(t, "https://cdn.civeni.test/media/banners/hero.jpg", got.PublicURL)
	assert.Contains(t, got.VersionedURL(), "?v="+got.ContentHash[:12])

	stored, err := bucket.Get("banners/hero.jpg")
	require.NoError(t, err)
	img, err := imaging.Decode(bytes.NewReader(stored))
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())

	require.Len(t, publisher.changes, 1)
	assert.Equal(t, "media_assets", publisher.changes[0].Table)
	repo.AssertExpectations(t)
}

func TestMediaUpload_KeepsPNG(t *testing.T) {
	bucket := storage.NewBucket(afero.NewMemMapFs(), "/media")
	repo := new(MockMediaRepository)
	repo.On("Save", mock.Anything, mock.Anything).Return(savedAsset(), nil)

	svc := NewMediaService(repo, bucket, nil, clock.NewFixed(testNow), 800)
	got, err := svc.Upload(context.Background(), "", "logo.PNG", pngImage(t, 300, 100, color.Transparent))

	require.NoError(t, err)
	assert.Equal(t, "uploads/logo.png", got.Path)
	assert.Equal(t, "image/png", got.ContentType)
	assert.Equal(t, 300, got.Width)
}

func TestMediaUpload_NewContentChangesVersion(t *testing.T) {
	bucket := storage.NewBucket(afero.NewMemMapFs(), "/media")
	repo := new(MockMediaRepository)
	repo.On("Save", mock.Anything, mock.Anything).Return(savedAsset(), nil)
	svc := NewMediaService(repo, bucket, nil, clock.NewFixed(testNow), 0)

	first, err := svc.Upload(context.Background(), "speakers/ana.png", "", pngImage(t, 10, 10, color.White))
	require.NoError(t, err)
	second, err := svc.Upload(context.Background(), "speakers/ana.png", "", pngImage(t, 10, 10, color.Black))
	require.NoError(t, err)

	assert.Equal(t, first.PublicURL, second.PublicURL)
	assert.NotEqual(t, first.VersionedURL(), second.VersionedURL())
}

func TestMediaUpload_Rejects(t *testing.T) {
	repo := new(MockMediaRepository)
	svc := NewMediaService(repo, storage.NewBucket(afero.NewMemMapFs(), "/media"), nil, clock.NewFixed(testNow), 800)

	_, err := svc.Upload(context.Background(), "a.jpg", "", []byte("not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = svc.Upload(context.Background(), "../etc/passwd.png", "", pngImage(t, 4, 4, color.White))
	assert.ErrorIs(t, err, storage.ErrInvalidPath)

	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
