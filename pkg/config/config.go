package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultSeedURL is the first page of the Mondrian catalogue raisonné
	DefaultSeedURL = "http://pietmondrian.rkdmonographs.nl/copy_of_winterswijk-i-before-circa-1897-a1-a22"
	// DefaultStopURL is the page the crawl must never go past
	DefaultStopURL = "http://pietmondrian.rkdmonographs.nl/copies-c154-c155"

	DefaultCollectionFile = "scraped_config.json"
)

// Config holds all configuration options for the catalogue crawler
type Config struct {
	// Catalogue being crawled
	Catalogue CatalogueConfig `yaml:"catalogue" json:"catalogue"`

	// Artwork identifier pool
	IDPool IDPoolConfig `yaml:"id_pool" json:"id_pool"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Optional SQLite mirror of the collection
	Database DatabaseConfig `yaml:"database" json:"database"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// CatalogueConfig describes where the crawl starts and where it must stop
type CatalogueConfig struct {
	SeedURL   string `yaml:"seed_url" json:"seed_url"`
	StopURL   string `yaml:"stop_url" json:"stop_url"`
	SourceID  int    `yaml:"source_id" json:"source_id"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
	MaxPages  int    `yaml:"max_pages" json:"max_pages"`
}

// IDPoolConfig sizes the artwork identifier pool
type IDPoolConfig struct {
	RangeSize int    `yaml:"range_size" json:"range_size"`
	DrawSize  int    `yaml:"draw_size" json:"draw_size"`
	Seed      uint64 `yaml:"seed" json:"seed"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory   string `yaml:"base_directory" json:"base_directory"`
	ImagesDirectory string `yaml:"images_directory" json:"images_directory"`
	CollectionFile  string `yaml:"collection_file" json:"collection_file"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
	Images  bool          `yaml:"images" json:"images"`
}

// DatabaseConfig enables the SQLite mirror when Path is set
type DatabaseConfig struct {
	Path string `yaml:"path" json:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Catalogue: CatalogueConfig{
			SeedURL:   DefaultSeedURL,
			StopURL:   DefaultStopURL,
			SourceID:  1,
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			MaxPages:  0,
		},
		IDPool: IDPoolConfig{
			RangeSize: 15000,
			DrawSize:  10000,
			Seed:      0, // 0 means seed from the clock
		},
		Output: OutputConfig{
			BaseDirectory:   "./scraped",
			ImagesDirectory: "images",
			CollectionFile:  DefaultCollectionFile,
		},
		Download: DownloadConfig{
			Timeout: 30 * time.Second,
			Images:  false,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// ImagesPath returns the directory images are written to
func (c *Config) ImagesPath() string {
	if filepath.IsAbs(c.Output.ImagesDirectory) {
		return c.Output.ImagesDirectory
	}
	return filepath.Join(c.Output.BaseDirectory, c.Output.ImagesDirectory)
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if seed := os.Getenv("RAISONNE_SEED_URL"); seed != "" {
		c.Catalogue.SeedURL = seed
	}
	if stop := os.Getenv("RAISONNE_STOP_URL"); stop != "" {
		c.Catalogue.StopURL = stop
	}
	if userAgent := os.Getenv("RAISONNE_USER_AGENT"); userAgent != "" {
		c.Catalogue.UserAgent = userAgent
	}
	if maxPages := os.Getenv("RAISONNE_MAX_PAGES"); maxPages != "" {
		val, err := strconv.Atoi(maxPages)
		if err != nil {
			return fmt.Errorf("invalid RAISONNE_MAX_PAGES %q: %w", maxPages, err)
		}
		c.Catalogue.MaxPages = val
	}

	if poolSeed := os.Getenv("RAISONNE_POOL_SEED"); poolSeed != "" {
		val, err := strconv.ParseUint(poolSeed, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid RAISONNE_POOL_SEED %q: %w", poolSeed, err)
		}
		c.IDPool.Seed = val
	}

	if outputDir := os.Getenv("RAISONNE_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}

	if images := os.Getenv("RAISONNE_DOWNLOAD_IMAGES"); images != "" {
		c.Download.Images = strings.ToLower(images) == "true"
	}

	if dbPath := os.Getenv("RAISONNE_DATABASE_PATH"); dbPath != "" {
		c.Database.Path = dbPath
	}

	if logLevel := os.Getenv("RAISONNE_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".raisonne.yaml",
		".raisonne.yml",
		filepath.Join(home, ".config", "raisonne", "config.yaml"),
		filepath.Join(home, ".config", "raisonne", "config.yml"),
		filepath.Join(home, ".raisonne.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if err := validateURL("seed URL", c.Catalogue.SeedURL); err != nil {
		errs = append(errs, err)
	}
	if err := validateURL("stop URL", c.Catalogue.StopURL); err != nil {
		errs = append(errs, err)
	}
	if c.Catalogue.MaxPages < 0 {
		errs = append(errs, errors.New("max pages cannot be negative"))
	}

	if c.IDPool.RangeSize <= 0 {
		errs = append(errs, errors.New("id pool range size must be positive"))
	}
	if c.IDPool.DrawSize <= 0 {
		errs = append(errs, errors.New("id pool draw size must be positive"))
	}
	if c.IDPool.DrawSize > c.IDPool.RangeSize {
		errs = append(errs, errors.New("id pool draw size cannot exceed range size"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.Output.CollectionFile == "" {
		errs = append(errs, errors.New("collection file name is required"))
	}

	if c.Download.Timeout < 0 {
		errs = append(errs, errors.New("download timeout cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

func validateURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is invalid: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL", name)
	}
	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if seedURL, ok := flags["seed-url"].(string); ok && seedURL != "" {
		c.Catalogue.SeedURL = seedURL
	}
	if stopURL, ok := flags["stop-url"].(string); ok && stopURL != "" {
		c.Catalogue.StopURL = stopURL
	}
	if maxPages, ok := flags["max-pages"].(int); ok && maxPages > 0 {
		c.Catalogue.MaxPages = maxPages
	}
	if seed, ok := flags["pool-seed"].(uint64); ok && seed > 0 {
		c.IDPool.Seed = seed
	}
	if images, ok := flags["images"].(bool); ok {
		c.Download.Images = images
	}
	if dbPath, ok := flags["db"].(string); ok && dbPath != "" {
		c.Database.Path = dbPath
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Missing .env files are fine
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".env"))
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".raisonne.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
