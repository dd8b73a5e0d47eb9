package storage

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucket_PutGet(t *testing.T) {
	b := NewBucket(afero.NewMemMapFs(), "https://cdn.example.com/media/")

	key, err := b.Put("/banners/home.png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "banners/home.png", key)
	assert.Equal(t, "https://cdn.example.com/media/banners/home.png", b.PublicURL(key))

	data, err := b.Get(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)

	_, err = b.Put(key, []byte("png2"))
	require.NoError(t, err)
	data, err = b.Get(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("png2"), data)
}

func TestBucket_InvalidPath(t *testing.T) {
	b := NewBucket(afero.NewMemMapFs(), "")

	for _, p := range []string{"", "/", "../etc/passwd", "a/../../b"} {
		_, err := b.Put(p, []byte("x"))
		assert.ErrorIs(t, err, ErrInvalidPath, p)
	}
}

func TestBucket_Missing(t *testing.T) {
	b := NewBucket(afero.NewMemMapFs(), "")

	_, err := b.Get("nope.png")
	assert.ErrorIs(t, err, ErrObjectAbsent)
}
