package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"raisonne/pkg/config"
	"raisonne/pkg/database"
	"raisonne/pkg/logger"
	"raisonne/pkg/models"
	"raisonne/pkg/scraper"
	"raisonne/pkg/storage"
	"raisonne/pkg/ui"

	"github.com/spf13/cobra"
)

var (
	// Crawl command flags
	outputDir      string
	seedURL        string
	stopURL        string
	maxPages       int
	poolSeed       uint64
	downloadImages bool
	dbPath         string
)

// crawlCmd represents the crawl command
var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl the catalogue and save the collection",
	Long: `Crawl the catalogue from the seed page to the stop page and save every
record, grouped by year, to the collection file in the output directory.

Pages are fetched one at a time. Any failure stops the crawl and nothing
is written.`,
	Example: `  # Crawl with the default seed and stop pages
  raisonne crawl

  # Crawl into a specific directory and download images afterwards
  raisonne crawl --output ./mondrian --images

  # Reproducible artwork ids and a SQLite mirror of the collection
  raisonne crawl --pool-seed 42 --db ./mondrian/catalog.db`,
	Args: cobra.NoArgs,
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	crawlCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (default ./scraped)")
	crawlCmd.Flags().StringVar(&seedURL, "seed-url", "", "first catalogue page to crawl")
	crawlCmd.Flags().StringVar(&stopURL, "stop-url", "", "last catalogue page to crawl")
	crawlCmd.Flags().IntVar(&maxPages, "max-pages", 0, "stop after this many pages (0 = no limit)")
	crawlCmd.Flags().Uint64Var(&poolSeed, "pool-seed", 0, "seed for artwork id generation (0 = random)")
	crawlCmd.Flags().BoolVar(&downloadImages, "images", false, "download every image after the crawl")
	crawlCmd.Flags().StringVar(&dbPath, "db", "", "also mirror the collection into this SQLite file")
}

func crawlFlags(cmd *cobra.Command) map[string]interface{} {
	flags := baseFlags()
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if seedURL != "" {
		flags["seed-url"] = seedURL
	}
	if stopURL != "" {
		flags["stop-url"] = stopURL
	}
	if cmd.Flags().Changed("max-pages") {
		flags["max-pages"] = maxPages
	}
	if cmd.Flags().Changed("pool-seed") {
		flags["pool-seed"] = poolSeed
	}
	if cmd.Flags().Changed("images") {
		flags["images"] = downloadImages
	}
	if dbPath != "" {
		flags["db"] = dbPath
	}
	return flags
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, crawlFlags(cmd))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.WithField("version", version).Info("raisonne starting")

	ui.PrintInfo("Seed page", cfg.Catalogue.SeedURL)
	ui.PrintInfo("Stop page", cfg.Catalogue.StopURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, err := scraper.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	ui.PrintHighlight("[CRAWLING CATALOGUE]")
	collection, stats, err := s.Crawl(ctx)
	if err != nil {
		logger.WithError(err).Error("Crawl failed")
		return fmt.Errorf("crawl failed: %w", err)
	}

	if err := persistCollection(ctx, cfg, collection); err != nil {
		return err
	}

	ui.PrintInfo("Pages", strconv.Itoa(stats.Pages))
	ui.PrintInfo("Rows", strconv.Itoa(stats.Rows))
	ui.PrintInfo("Records", strconv.Itoa(stats.Records))
	ui.PrintInfo("Skipped", strconv.Itoa(stats.Skipped))
	ui.PrintInfo("Years", strconv.Itoa(len(collection.Years())))

	if cfg.Download.Images {
		if err := downloadCollection(ctx, cfg, collection); err != nil {
			return err
		}
	}

	ui.PrintSuccess("[CRAWL COMPLETED SUCCESSFULLY]")
	return nil
}

// persistCollection writes the collection file and, when configured, the
// SQLite mirror.
func persistCollection(ctx context.Context, cfg *config.Config, collection models.Collection) error {
	store, err := storage.NewManager(cfg.Output.BaseDirectory)
	if err != nil {
		return err
	}

	path, err := store.SaveCollection(collection, cfg.Output.CollectionFile)
	if err != nil {
		logger.WithError(err).Error("Failed to save collection")
		return fmt.Errorf("failed to save collection: %w", err)
	}
	logger.WithField("path", path).Info("Collection saved")
	ui.PrintInfo("Collection", path)

	if cfg.Database.Path == "" {
		return nil
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SaveCollection(ctx, collection); err != nil {
		return fmt.Errorf("failed to mirror collection: %w", err)
	}
	logger.WithField("path", db.Path()).Info("Collection mirrored to database")
	ui.PrintInfo("Database", db.Path())
	return nil
}
