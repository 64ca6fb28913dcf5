package di

import (
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/saveslot/pkg/api"
	"github.com/ssargent/saveslot/pkg/config"
	"github.com/ssargent/saveslot/pkg/provider"
	"github.com/ssargent/saveslot/pkg/store"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.StorePath = filepath.Join(t.TempDir(), "saves")
	return cfg
}

func TestNewContainer(t *testing.T) {
	c := NewContainer()

	assert.NotNil(t, c.Registry())
	assert.IsType(t, &DefaultStoreFactory{}, c.GetStoreFactory())
	assert.IsType(t, &api.DefaultServerFactory{}, c.GetServerFactory())

	c.SetStoreFactory(nil)
	assert.Nil(t, c.GetStoreFactory())
	c.SetServerFactory(nil)
	assert.Nil(t, c.GetServerFactory())
}

func TestStoreFactory_CreateStore(t *testing.T) {
	logger, _ := test.NewNullLogger()
	reg := prometheus.NewRegistry()
	factory := NewStoreFactory(reg)

	t.Run("defaults", func(t *testing.T) {
		cfg := testConfig(t)
		s, err := factory.CreateStore(cfg, logger)
		require.NoError(t, err)
		defer s.Close()

		assert.Equal(t, cfg.StorePath, s.StorePath())
		assert.IsType(t, &provider.AESProvider{}, s.Codec().Crypto())
		assert.IsType(t, &provider.DeflateProvider{}, s.Codec().Compression())

		require.NoError(t, s.SaveString("slot", "hello", store.DefaultSaveOptions()))
		loaded, ok := s.LoadString("slot")
		require.True(t, ok)
		assert.Equal(t, "hello", loaded)
	})

	t.Run("alternate providers", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Providers.Crypto = provider.CryptoAESGCM
		cfg.Providers.Compression = provider.CompressSnappy

		s, err := factory.CreateStore(cfg, logger)
		require.NoError(t, err)
		defer s.Close()

		assert.IsType(t, &provider.GCMProvider{}, s.Codec().Crypto())
		assert.IsType(t, &provider.SnappyProvider{}, s.Codec().Compression())
	})

	t.Run("shared metrics across stores", func(t *testing.T) {
		first, err := factory.CreateStore(testConfig(t), logger)
		require.NoError(t, err)
		defer first.Close()

		second, err := factory.CreateStore(testConfig(t), logger)
		require.NoError(t, err)
		defer second.Close()
	})

	t.Run("archive enabled", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Archive.Enabled = true

		s, err := factory.CreateStore(cfg, logger)
		require.NoError(t, err)
		defer s.Close()

		require.NoError(t, s.SaveString("slot", "v1", store.SaveOptions{}))
		id, err := s.Snapshot("slot")
		require.NoError(t, err)

		snaps, err := s.Snapshots("slot")
		require.NoError(t, err)
		require.Len(t, snaps, 1)
		assert.Equal(t, id, snaps[0].ID)
		assert.DirExists(t, cfg.ResolveArchivePath())
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Providers.Crypto = "rot13"

		_, err := factory.CreateStore(cfg, logger)
		assert.ErrorIs(t, err, provider.ErrUnknownProvider)
	})

	t.Run("nil registerer and logger", func(t *testing.T) {
		s, err := NewStoreFactory(nil).CreateStore(testConfig(t), nil)
		require.NoError(t, err)
		assert.NoError(t, s.Close())
	})
}
