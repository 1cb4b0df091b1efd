package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"raisonne/internal/downloader"
	"raisonne/pkg/catalogue"
	"raisonne/pkg/config"
	"raisonne/pkg/database"
	"raisonne/pkg/logger"
	"raisonne/pkg/models"
	"raisonne/pkg/storage"
	"raisonne/pkg/ui"

	"github.com/spf13/cobra"
)

var (
	// Download command flags
	downloadOutputDir string
	fromDB            string
)

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download every image of a saved collection",
	Long: `Load a collection written by 'raisonne crawl' and download the image of
every record into the images directory as img<id><ext>.

Images are downloaded one at a time and existing files are overwritten.
The first failed download stops the run.`,
	Example: `  # Download images for the collection in ./scraped
  raisonne download

  # Use the SQLite mirror instead of the JSON file
  raisonne download --from-db ./scraped/catalog.db`,
	Args: cobra.NoArgs,
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().StringVarP(&downloadOutputDir, "output", "o", "", "output directory holding the collection (default ./scraped)")
	downloadCmd.Flags().StringVar(&fromDB, "from-db", "", "read the collection from this SQLite file")
}

func runDownload(cmd *cobra.Command, args []string) error {
	flags := baseFlags()
	if downloadOutputDir != "" {
		flags["output"] = downloadOutputDir
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	collection, err := loadCollection(ctx, cfg)
	if err != nil {
		return err
	}
	ui.PrintInfo("Records", strconv.Itoa(collection.Len()))

	if err := downloadCollection(ctx, cfg, collection); err != nil {
		return err
	}

	ui.PrintSuccess("[DOWNLOAD COMPLETED SUCCESSFULLY]")
	return nil
}

func loadCollection(ctx context.Context, cfg *config.Config) (models.Collection, error) {
	if fromDB != "" {
		db, err := database.Open(fromDB)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return db.LoadCollection(ctx)
	}

	store, err := storage.NewManager(cfg.Output.BaseDirectory)
	if err != nil {
		return nil, err
	}
	return store.LoadCollection(cfg.Output.CollectionFile)
}

// downloadCollection fetches every image of collection into the images directory
func downloadCollection(ctx context.Context, cfg *config.Config, collection models.Collection) error {
	log := logger.GetLogger()

	client := catalogue.NewClient(cfg.Download.Timeout, log)
	if cfg.Catalogue.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.Catalogue.UserAgent)
	}

	store, err := storage.NewManager(cfg.ImagesPath())
	if err != nil {
		return err
	}

	fetcher := downloader.NewFetcher(client, store, log)

	ui.PrintHighlight("[DOWNLOADING IMAGES]")
	progress := ui.NewProgress("images", collection.Len())

	summary, err := fetcher.DownloadCollection(ctx, collection, func(done, total int) {
		progress.Update(done)
	})
	if err != nil {
		return fmt.Errorf("image download failed after %d images: %w", summary.Downloaded, err)
	}

	ui.PrintInfo("Images", fmt.Sprintf("%d (%s)", summary.Downloaded, store.OutputDir()))
	return nil
}
