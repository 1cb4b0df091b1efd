package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Catalogue.SeedURL != DefaultSeedURL {
		t.Errorf("Expected default seed URL %s, got %s", DefaultSeedURL, config.Catalogue.SeedURL)
	}

	if config.Catalogue.StopURL != DefaultStopURL {
		t.Errorf("Expected default stop URL %s, got %s", DefaultStopURL, config.Catalogue.StopURL)
	}

	if config.IDPool.RangeSize != 15000 || config.IDPool.DrawSize != 10000 {
		t.Errorf("Expected id pool 15000/10000, got %d/%d", config.IDPool.RangeSize, config.IDPool.DrawSize)
	}

	if config.Catalogue.SourceID != 1 {
		t.Errorf("Expected source id 1, got %d", config.Catalogue.SourceID)
	}

	if config.Output.CollectionFile != "scraped_config.json" {
		t.Errorf("Expected collection file scraped_config.json, got %s", config.Output.CollectionFile)
	}

	require.NoError(t, config.Validate())
}

func TestImagesPath(t *testing.T) {
	config := DefaultConfig()
	config.Output.BaseDirectory = "/data/out"

	assert.Equal(t, filepath.Join("/data/out", "images"), config.ImagesPath())

	config.Output.ImagesDirectory = "/elsewhere"
	assert.Equal(t, "/elsewhere", config.ImagesPath())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("RAISONNE_SEED_URL", "http://example.com/first")
	t.Setenv("RAISONNE_STOP_URL", "http://example.com/last")
	t.Setenv("RAISONNE_MAX_PAGES", "12")
	t.Setenv("RAISONNE_POOL_SEED", "42")
	t.Setenv("RAISONNE_OUTPUT_DIR", "/tmp/test-scraped")
	t.Setenv("RAISONNE_DOWNLOAD_IMAGES", "true")
	t.Setenv("RAISONNE_DATABASE_PATH", "/tmp/test.db")
	t.Setenv("RAISONNE_LOG_LEVEL", "debug")

	config := DefaultConfig()
	require.NoError(t, config.LoadFromEnv())

	assert.Equal(t, "http://example.com/first", config.Catalogue.SeedURL)
	assert.Equal(t, "http://example.com/last", config.Catalogue.StopURL)
	assert.Equal(t, 12, config.Catalogue.MaxPages)
	assert.Equal(t, uint64(42), config.IDPool.Seed)
	assert.Equal(t, "/tmp/test-scraped", config.Output.BaseDirectory)
	assert.True(t, config.Download.Images)
	assert.Equal(t, "/tmp/test.db", config.Database.Path)
	assert.Equal(t, "debug", config.Logging.Level)
}

func TestLoadFromEnvInvalidNumber(t *testing.T) {
	t.Setenv("RAISONNE_MAX_PAGES", "many")

	config := DefaultConfig()
	assert.Error(t, config.LoadFromEnv())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(c *Config)
		wantError bool
	}{
		{
			name:      "valid config",
			modify:    func(c *Config) {},
			wantError: false,
		},
		{
			name:      "missing seed URL",
			modify:    func(c *Config) { c.Catalogue.SeedURL = "" },
			wantError: true,
		},
		{
			name:      "stop URL without scheme",
			modify:    func(c *Config) { c.Catalogue.StopURL = "pietmondrian.rkdmonographs.nl/copies" },
			wantError: true,
		},
		{
			name: "draw larger than range",
			modify: func(c *Config) {
				c.IDPool.RangeSize = 10
				c.IDPool.DrawSize = 11
			},
			wantError: true,
		},
		{
			name:      "negative max pages",
			modify:    func(c *Config) { c.Catalogue.MaxPages = -1 },
			wantError: true,
		},
		{
			name:      "missing output directory",
			modify:    func(c *Config) { c.Output.BaseDirectory = "" },
			wantError: true,
		},
		{
			name:      "negative timeout",
			modify:    func(c *Config) { c.Download.Timeout = -time.Second },
			wantError: true,
		},
		{
			name:      "invalid log level",
			modify:    func(c *Config) { c.Logging.Level = "invalid" },
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)
			err := config.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()

	flags := map[string]interface{}{
		"output":    "/flag/output",
		"max-pages": 3,
		"pool-seed": uint64(7),
		"images":    true,
		"db":        "/flag/catalogue.db",
		"log-level": "error",
	}

	config.MergeCommandLineFlags(flags)

	assert.Equal(t, "/flag/output", config.Output.BaseDirectory)
	assert.Equal(t, 3, config.Catalogue.MaxPages)
	assert.Equal(t, uint64(7), config.IDPool.Seed)
	assert.True(t, config.Download.Images)
	assert.Equal(t, "/flag/catalogue.db", config.Database.Path)
	assert.Equal(t, "error", config.Logging.Level)
}

func TestSaveAndLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "test-config.yaml")

	config := DefaultConfig()
	config.Catalogue.MaxPages = 5
	config.IDPool.Seed = 99
	config.Download.Timeout = 10 * time.Second

	require.NoError(t, config.Save(configPath))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(configPath))

	assert.Equal(t, 5, loaded.Catalogue.MaxPages)
	assert.Equal(t, uint64(99), loaded.IDPool.Seed)
	assert.Equal(t, 10*time.Second, loaded.Download.Timeout)
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "raisonne.yaml")
	content := []byte("catalogue:\n  max_pages: 4\noutput:\n  base_directory: /from/file\n")
	require.NoError(t, os.WriteFile(configPath, content, 0644))

	t.Setenv("HOME", tmpDir)
	t.Setenv("RAISONNE_OUTPUT_DIR", "/from/env")

	config, err := Load(configPath, map[string]interface{}{"max-pages": 9})
	require.NoError(t, err)

	// env beats file, flags beat both
	assert.Equal(t, "/from/env", config.Output.BaseDirectory)
	assert.Equal(t, 9, config.Catalogue.MaxPages)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}

func TestFindConfigFile(t *testing.T) {
	t.Run("finds config in current directory", func(t *testing.T) {
		tempDir := t.TempDir()
		t.Chdir(tempDir)
		t.Setenv("HOME", tempDir)

		require.NoError(t, os.WriteFile(filepath.Join(tempDir, ".raisonne.yaml"), []byte("catalogue: {}"), 0644))

		cfg := DefaultConfig()
		assert.Equal(t, ".raisonne.yaml", cfg.findConfigFile())
	})

	t.Run("no config file found", func(t *testing.T) {
		tempDir := t.TempDir()
		t.Chdir(tempDir)
		t.Setenv("HOME", tempDir)

		cfg := DefaultConfig()
		assert.Empty(t, cfg.findConfigFile())
	})
}

func TestDurationParsing(t *testing.T) {
	yamlContent := `
download:
  timeout: 1m30s
  images: true
`
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(yamlContent), &cfg))

	assert.Equal(t, 90*time.Second, cfg.Download.Timeout)
	assert.True(t, cfg.Download.Images)
}
