// Command artslides builds Google Slides presentations from articles on
// art-content websites.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"artslides/batch"
	"artslides/config"
	"artslides/enhance"
	"artslides/ledger"
	"artslides/sites"
	"artslides/slides"
)

func main() {
	// A missing .env is fine; real config may live elsewhere.
	_ = godotenv.Load()

	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var (
		siteName  string
		configDir string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "artslides [count]",
		Short: "Build one Google Slides presentation per article image set",
		Long: `artslides scrapes articles from an art-content website, builds one
Google Slides presentation per article (one slide per qualifying image,
with artist, title, medium, and year captions), files the presentations
into a Drive folder, and catalogs them in a Google Sheet. Processed
articles are remembered, so repeated runs only handle new material.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			count := 10
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("count must be a positive integer, got %q", args[0])
				}
				count = n
			}
			return run(siteName, configDir, count, dryRun)
		},
	}

	cmd.Flags().StringVar(&siteName, "site", "socks-studio",
		fmt.Sprintf("site to process (one of: %s)", strings.Join(sites.Names(), ", ")))
	cmd.Flags().StringVar(&configDir, "config-dir", "",
		"configuration directory (default ~/.artslides)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"list unprocessed article URLs without building anything")

	return cmd
}

func run(siteName, configDir string, count int, dryRun bool) error {
	if configDir == "" {
		dir, err := config.DefaultDir()
		if err != nil {
			return err
		}
		configDir = dir
	}

	settings, err := config.Load(configDir)
	if err != nil {
		return err
	}

	site, err := sites.New(siteName, sites.Options{
		RequestTimeout: settings.Crawl.RequestTimeout.Std(),
		PageDelay:      settings.Crawl.PageDelay.Std(),
		MaxPages:       settings.Crawl.MaxPages,
		MinDimension:   settings.Images.MinDimension,
		MinBytes:       settings.Images.MinBytes,
		Probe:          settings.Images.Probe,
	})
	if err != nil {
		return fmt.Errorf("%v (valid sites: %s)", err, strings.Join(sites.Names(), ", "))
	}

	store, err := openStore(settings, siteName)
	if err != nil {
		return err
	}
	defer store.Close()

	if dryRun {
		return dryRunListing(site, store, count)
	}

	client, err := slides.NewHTTPClient(settings.CredentialsPath(), settings.TokenPath())
	if err != nil {
		return fmt.Errorf("google credentials: %w (expected %s and %s)",
			err, settings.CredentialsPath(), settings.TokenPath())
	}

	builder, err := slides.NewBuilder(client)
	if err != nil {
		return err
	}

	drive, err := slides.NewDrive(client)
	if err != nil {
		return err
	}
	folderID, err := drive.EnsureFolder(settings.FolderName)
	if err != nil {
		return fmt.Errorf("ensuring Drive folder %q: %w", settings.FolderName, err)
	}
	log.Printf("Using Drive folder %q (%s)", settings.FolderName, folderID)

	catalog, err := slides.NewCatalog(client, drive)
	if err != nil {
		return err
	}
	catalogID, created, err := catalog.Ensure(settings.CatalogName)
	if err != nil {
		return fmt.Errorf("ensuring catalog sheet %q: %w", settings.CatalogName, err)
	}
	if created {
		log.Printf("Created catalog sheet %q (%s)", settings.CatalogName, catalogID)
	}

	var enhancer batch.Enhancer
	if settings.Enhancer.Enabled {
		if key := settings.APIKey(); key != "" {
			enhancer = enhance.New(key, settings.Enhancer.Model, settings.Enhancer.MaxTokens)
		} else {
			log.Printf("No Anthropic API key found; metadata enhancement disabled")
		}
	}

	controller, err := batch.New(batch.Config{
		Site:        site,
		Store:       store,
		Builder:     builder,
		Organizer:   drive,
		Catalog:     catalog,
		Enhancer:    enhancer,
		SourceLabel: sourceLabel(siteName),
		ItemDelay:   settings.Crawl.ItemDelay.Std(),
	})
	if err != nil {
		return err
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Printf("Interrupt received; finishing the current item")
		controller.Stop()
	}()
	defer signal.Stop(sigs)

	summary, err := controller.Run(count)
	if err != nil {
		return err
	}

	fmt.Printf("\nCreated %d presentation(s), skipped %d item(s)\n", summary.Created, summary.Skipped)
	fmt.Printf("Folder:  %s\n", drive.FolderURL())
	fmt.Printf("Catalog: %s\n", catalog.SpreadsheetURL())
	return nil
}

func openStore(settings *config.Settings, siteName string) (ledger.Store, error) {
	switch settings.Storage.Type {
	case "sqlite":
		if err := os.MkdirAll(settings.DataDir(), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		dbPath := filepath.Join(settings.DataDir(), "processed_"+siteName+".db")
		return ledger.NewSQLiteStore(dbPath)
	default:
		return ledger.NewFileStore(settings.DataDir(), siteName)
	}
}

func dryRunListing(site batch.Source, store ledger.Store, count int) error {
	controller, err := batch.New(batch.Config{
		Site:    site,
		Store:   store,
		Builder: nopBuilder{},
	})
	if err != nil {
		return err
	}
	urls, err := controller.Discover(count)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		fmt.Println("No unprocessed articles found")
		return nil
	}
	fmt.Printf("%d unprocessed article(s):\n", len(urls))
	for _, u := range urls {
		fmt.Println("  " + u)
	}
	return nil
}

// nopBuilder satisfies the controller for dry runs, which never build.
type nopBuilder struct{}

func (nopBuilder) Create(string, []slides.SlideImage, string, string) (string, string, error) {
	return "", "", fmt.Errorf("dry run")
}

// sourceLabel turns a site key into the link text shown on slides.
func sourceLabel(siteName string) string {
	parts := strings.Split(siteName, "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
