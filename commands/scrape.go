package commands

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"reputation-monitor/config"
	"reputation-monitor/metrics"
	"reputation-monitor/models"
	"reputation-monitor/scraper"
	"reputation-monitor/scraper/webscraping"
	"reputation-monitor/storage"
	"reputation-monitor/utils"
)

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrapes products, testimonials and reviews and writes the snapshot.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger := setup()
		return runScrape(cmd.Context(), cfg, logger)
	},
}

func runScrape(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	logger.Info("=== Reputation monitor scrape starting ===")
	logger.Info("Config: base %s | pages %d/%d/%d | review page size %d | delay %dms | fetch %s",
		cfg.BaseURL, cfg.ProductPages, cfg.TestimonialPages, cfg.ReviewPages,
		cfg.ReviewPageSize, cfg.RateLimitMs, cfg.FetchMode)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	var pages webscraping.PageFetcher
	if cfg.FetchMode == config.FetchModeBrowser {
		browser, err := webscraping.NewBrowserFetcher(webscraping.BrowserOptions{
			ChromeBin: cfg.ChromeBin,
			UserAgent: cfg.UserAgent,
			Timeout:   cfg.RequestTimeout(),
		}, logger, m)
		if err != nil {
			return fmt.Errorf("scrape: %w", err)
		}
		defer browser.Close()
		pages = browser
	}

	site, err := webscraping.New(webscraping.Options{
		BaseURL:             cfg.BaseURL,
		UserAgent:           cfg.UserAgent,
		TestimonialsToken:   cfg.TestimonialsToken,
		TestimonialsReferer: cfg.TestimonialsReferer,
		Delay:               cfg.RateLimit(),
		Timeout:             cfg.RequestTimeout(),
		Pages:               pages,
	}, logger, m)
	if err != nil {
		return fmt.Errorf("scrape: %w", err)
	}

	agg := scraper.NewAggregator(site, scraper.Limits{
		ProductPages:     cfg.ProductPages,
		TestimonialPages: cfg.TestimonialPages,
		ReviewPages:      cfg.ReviewPages,
		ReviewPageSize:   cfg.ReviewPageSize,
	}, logger, m)

	snapshot, runErr := agg.Run(ctx)
	if runErr != nil {
		logger.Warn("Scrape interrupted (%v), saving what was collected", runErr)
	}

	store := storage.NewJSONStore(cfg.SnapshotPath)
	if err := store.Write(snapshot); err != nil {
		return fmt.Errorf("scrape: %w", err)
	}
	logger.Info("Snapshot saved to %s", store.Path())

	for _, w := range mirrors(cfg, logger) {
		if err := w.Write(snapshot); err != nil {
			logger.Error("Mirror write failed: %v", err)
		}
		if c, ok := w.(interface{ Close() error }); ok {
			_ = c.Close()
		}
	}

	if cfg.MetricsTextfile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsTextfile, reg); err != nil {
			logger.Warn("Could not write metrics to %s: %v", cfg.MetricsTextfile, err)
		}
	}

	printCounts(snapshot)
	return runErr
}

// mirrors opens the optional secondary outputs. A mirror that cannot be
// opened is skipped; the JSON snapshot is already on disk.
func mirrors(cfg *config.Config, logger *utils.Logger) []storage.SnapshotWriter {
	var out []storage.SnapshotWriter

	if cfg.CSVEnabled {
		csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputDir)
		if err != nil {
			logger.Error("Failed to create CSV writer: %v", err)
		} else {
			out = append(out, loggedWriter{csvWriter, logger, "CSV files written to " + cfg.CSVOutputDir})
		}
	}

	if cfg.PostgresEnabled {
		pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
			logger.Error("Make sure Docker is running: docker compose up -d")
		} else {
			out = append(out, postgresMirror{pgWriter, logger})
		}
	}
	return out
}

type loggedWriter struct {
	storage.SnapshotWriter
	logger *utils.Logger
	done   string
}

func (w loggedWriter) Write(s *models.Snapshot) error {
	if err := w.SnapshotWriter.Write(s); err != nil {
		return err
	}
	w.logger.Info("%s", w.done)
	return nil
}

type postgresMirror struct {
	*storage.PostgresWriter
	logger *utils.Logger
}

func (p postgresMirror) Write(s *models.Snapshot) error {
	if err := p.PostgresWriter.Write(s); err != nil {
		return err
	}
	counts, err := p.CountRows()
	if err != nil {
		return err
	}
	p.logger.Info("PostgreSQL mirror: %d products, %d testimonials, %d reviews",
		counts["products"], counts["testimonials"], counts["reviews"])
	return nil
}

func printCounts(s *models.Snapshot) {
	counts := s.Counts()
	fmt.Printf("\n  Scraped %s\n", s.Source)
	for _, name := range []string{"products", "testimonials", "reviews"} {
		fmt.Printf("  %-13s %d\n", name+":", counts[name])
	}
	fmt.Println()
}
