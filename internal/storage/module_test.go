package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/andresuchdata/reactive-resume/backend-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setStorageEnv(t *testing.T) {
	t.Setenv("STORAGE_ENDPOINT", "project.supabase.co/storage/v1/s3")
	t.Setenv("STORAGE_PORT", "443")
	t.Setenv("STORAGE_USE_SSL", "true")
	t.Setenv("STORAGE_REGION", "")
	t.Setenv("STORAGE_ACCESS_KEY", "access")
	t.Setenv("STORAGE_SECRET_KEY", "secret")
	t.Setenv("STORAGE_BUCKET", "resumes")
	t.Setenv("STORAGE_URL", "")
	t.Setenv("STORAGE_DRIVER", "minio")
}

func TestNewModule(t *testing.T) {
	setStorageEnv(t)
	cfg, err := config.Load()
	require.NoError(t, err)

	m, err := NewModule(cfg, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "project.supabase.co", m.Config.Endpoint)
	assert.Empty(t, m.Config.Region)
	assert.IsType(t, &MinioBackend{}, m.Backend)
	assert.Equal(t, "resumes", m.Service.Bucket())
	assert.NotNil(t, m.Controller)
}

func TestNewModuleMissingKey(t *testing.T) {
	setStorageEnv(t)
	t.Setenv("STORAGE_SECRET_KEY", "")
	cfg, err := config.Load()
	require.NoError(t, err)

	m, err := NewModule(cfg, nil, nil)
	assert.Nil(t, m)
	assert.True(t, errors.Is(err, config.ErrMissingConfig))
}

func TestOpenCollaboratorsUsesRedisWhenCacheEnabled(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{Cache: config.CacheConfig{Enabled: true, RedisURL: "redis://" + mr.Addr()}}

	c, err := OpenCollaborators(cfg)
	require.NoError(t, err)
	assert.Nil(t, c.Assets)

	require.NoError(t, c.Presign.Set(context.Background(), "user-1/a.pdf", "https://signed", time.Hour))
	assert.True(t, mr.Exists("storage:presign:user-1/a.pdf"))

	require.NoError(t, c.Close())
}

func TestOpenCollaboratorsFallsBackWhenRedisUnreachable(t *testing.T) {
	cfg := &config.Config{Cache: config.CacheConfig{Enabled: true, RedisURL: "redis://127.0.0.1:1"}}

	c, err := OpenCollaborators(cfg)
	require.NoError(t, err)
	require.NotNil(t, c.Presign)

	require.NoError(t, c.Presign.Set(context.Background(), "k", "v", time.Hour))
	_, ok, err := c.Presign.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Close())
}

func TestCollaboratorsCloseNil(t *testing.T) {
	var c *Collaborators
	assert.NoError(t, c.Close())
}
