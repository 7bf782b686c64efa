package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMemoryStorePutGet tests basic round trips
func TestMemoryStorePutGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	err := s.Put(ctx, "uploads/a.png", []byte("png-bytes"), "image/png")
	require.NoError(t, err)

	data, err := s.Get(ctx, "uploads/a.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

// TestMemoryStoreGetMissing tests that missing keys error
func TestMemoryStoreGetMissing(t *testing.T) {
	s := NewMemory()

	_, err := s.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "object not found")
}

// TestMemoryStoreURLFor tests URL generation for present and missing keys
func TestMemoryStoreURLFor(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	require.NoError(t, s.Put(ctx, "outputs/x.mp4", []byte("video"), "video/mp4"))

	url, err := s.URLFor(ctx, "outputs/x.mp4", 24*time.Hour)
	require.NoError(t, err)
	assert.Contains(t, url, "outputs/x.mp4")
	assert.Contains(t, url, "expires=86400")

	_, err = s.URLFor(ctx, "missing", time.Hour)
	assert.Error(t, err)
}

// TestMemoryStoreRemove tests deletion
func TestMemoryStoreRemove(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	require.NoError(t, s.Put(ctx, "k", []byte("v"), "application/octet-stream"))
	require.NoError(t, s.Remove(ctx, "k"))
	assert.False(t, s.Has("k"))
}

// TestMemoryStoreCopiesData tests that stored bytes are isolated from the caller's slice
func TestMemoryStoreCopiesData(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	buf := []byte("original")
	require.NoError(t, s.Put(ctx, "k", buf, "text/plain"))
	buf[0] = 'X'

	data, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), data)
}
