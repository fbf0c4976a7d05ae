package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/reactive-resume/backend-go/internal/cache"
	"github.com/andresuchdata/reactive-resume/backend-go/internal/config"
	"github.com/andresuchdata/reactive-resume/backend-go/internal/repository"
	"github.com/andresuchdata/reactive-resume/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/reactive-resume/backend-go/pkg/logger"
)

// Module holds the storage client configuration together with the service
// and controller built on top of it.
type Module struct {
	Config     ClientConfig
	Backend    Backend
	Service    *Service
	Controller *Controller
}

// NewModule resolves the connection keys from cfg and builds the storage
// stack. It performs no network I/O; a missing key is returned as a
// config.MissingConfigError before any client exists.
func NewModule(cfg *config.Config, assets repository.AssetRepository, presign cache.PresignCache) (*Module, error) {
	clientCfg, err := LoadClientConfig(cfg.Provider())
	if err != nil {
		return nil, err
	}

	backend, err := NewBackend(cfg.Storage.Driver, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("storage backend: %w", err)
	}

	publicURL := cfg.Storage.PublicURL
	if publicURL == "" {
		publicURL = DefaultPublicURL(clientCfg, cfg.Storage.Bucket)
	}

	service := NewService(backend, Options{
		Bucket:          cfg.Storage.Bucket,
		Region:          clientCfg.Region,
		PublicURL:       publicURL,
		SkipBucketCheck: cfg.Storage.SkipBucketCheck,
		PresignTTL:      time.Duration(cfg.Storage.PresignTTLSeconds) * time.Second,
	}, assets, presign)

	return &Module{
		Config:     clientCfg,
		Backend:    backend,
		Service:    service,
		Controller: NewController(service, cfg.Server.MaxUploadBytes),
	}, nil
}

// Collaborators are the optional stores behind the storage service: the
// asset ledger (DB_ENABLED) and the presign cache (CACHE_ENABLED).
type Collaborators struct {
	Assets  repository.AssetRepository
	Presign cache.PresignCache

	db *postgres.DB
}

// OpenCollaborators connects the ledger and presign cache selected by cfg.
// A database failure is fatal; an unreachable cache degrades to a no-op.
func OpenCollaborators(cfg *config.Config) (*Collaborators, error) {
	c := &Collaborators{}

	if cfg.Database.Enabled {
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		c.db = db
		c.Assets = postgres.NewAssetRepository(db)
	}

	presign, err := cache.NewPresignCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Presign cache unavailable, continuing without it")
		presign = cache.NewNoopPresignCache()
	}
	c.Presign = presign

	return c, nil
}

// Close releases the cache client and the database pool.
func (c *Collaborators) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Presign != nil {
		errs = append(errs, c.Presign.Close())
	}
	if c.db != nil {
		errs = append(errs, c.db.Close())
	}
	return errors.Join(errs...)
}
