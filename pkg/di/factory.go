package di

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/ssargent/saveslot/pkg/config"
	"github.com/ssargent/saveslot/pkg/metrics"
	"github.com/ssargent/saveslot/pkg/provider"
	"github.com/ssargent/saveslot/pkg/storage"
	"github.com/ssargent/saveslot/pkg/store"
)

// StoreFactory creates save stores from configuration
type StoreFactory interface {
	// CreateStore builds a store with the configured providers and archive
	CreateStore(cfg *config.Config, logger logrus.FieldLogger) (*store.SaveStore, error)
}

// DefaultStoreFactory is the default implementation of StoreFactory.
// Stores it creates share one set of collectors.
type DefaultStoreFactory struct {
	reg prometheus.Registerer

	once    sync.Once
	metrics *metrics.Metrics
}

// NewStoreFactory creates a store factory registering metrics with reg.
// A nil reg disables store metrics.
func NewStoreFactory(reg prometheus.Registerer) *DefaultStoreFactory {
	return &DefaultStoreFactory{reg: reg}
}

func (f *DefaultStoreFactory) storeMetrics() *metrics.Metrics {
	if f.reg == nil {
		return nil
	}
	f.once.Do(func() {
		f.metrics = metrics.NewMetrics(f.reg)
	})
	return f.metrics
}

// CreateStore builds a save store for cfg
func (f *DefaultStoreFactory) CreateStore(cfg *config.Config, logger logrus.FieldLogger) (*store.SaveStore, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	crypto, err := provider.CryptoByName(cfg.Providers.Crypto)
	if err != nil {
		return nil, err
	}
	compression, err := provider.CompressionByName(cfg.Providers.Compression)
	if err != nil {
		return nil, err
	}

	opts := store.Options{
		StorePath:   cfg.ResolveStorePath(),
		Extension:   cfg.Extension,
		Crypto:      crypto,
		Compression: compression,
		Logger:      logger,
		Metrics:     f.storeMetrics(),
	}

	if cfg.Archive.Enabled {
		archive, err := storage.OpenSnapshotArchive(cfg.ResolveArchivePath())
		if err != nil {
			return nil, err
		}
		opts.Archive = archive
	}

	s, err := store.NewSaveStore(opts)
	if err != nil {
		if opts.Archive != nil {
			_ = opts.Archive.Close()
		}
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"store_path":  opts.StorePath,
		"crypto":      cfg.Providers.Crypto,
		"compression": cfg.Providers.Compression,
		"archive":     cfg.Archive.Enabled,
	}).Debug("save store ready")

	return s, nil
}
