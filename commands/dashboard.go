package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"reputation-monitor/config"
	"reputation-monitor/dashboard"
	"reputation-monitor/metrics"
	"reputation-monitor/services"
	"reputation-monitor/storage"
	"reputation-monitor/utils"
)

var dashboardAddr *string

func init() {
	dashboardAddr = dashboardCmd.Flags().String("addr", "", "Listen address (default DASHBOARD_ADDR or :8501).")
	rootCmd.AddCommand(dashboardCmd)
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard [--addr <host:port>]",
	Short: "Serves the Products, Testimonials and Reviews dashboard.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger := setup()
		if *dashboardAddr != "" {
			cfg.DashboardAddr = *dashboardAddr
		}
		return runDashboard(cmd.Context(), cfg, logger)
	},
}

// newDashboardService wires the snapshot store and the sentiment classifier
// into the view model shared by the dashboard and report commands.
func newDashboardService(cfg *config.Config, logger *utils.Logger, m *metrics.Metrics) *services.Dashboard {
	return services.NewDashboard(services.DashboardOptions{
		Store: storage.NewJSONStore(cfg.SnapshotPath),
		Classifier: func() (services.Classifier, error) {
			logger.Info("[sentiment] Using model endpoint %s", cfg.SentimentAPIURL)
			return services.NewHFClassifier(services.HFClassifierOptions{
				URL:        cfg.SentimentAPIURL,
				Token:      cfg.SentimentAPIToken,
				BatchSize:  cfg.SentimentBatchSize,
				MaxRetries: cfg.SentimentMaxRetries,
				Timeout:    2 * time.Minute,
			}, logger), nil
		},
		Year:         cfg.DashboardYear,
		DefaultMonth: cfg.DashboardDefaultMonth,
		Metrics:      m,
		Logger:       logger,
	})
}

func runDashboard(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	if utils.ParseLevel(cfg.LogLevel) != utils.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	server, err := dashboard.New(dashboard.Options{
		Views:    newDashboardService(cfg, logger, m),
		Gatherer: reg,
		Metrics:  m,
		Logger:   logger,
		Source:   cfg.BaseURL,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.DashboardAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Dashboard listening on http://%s", displayAddr(cfg.DashboardAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("dashboard: serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down dashboard...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("dashboard: shutdown: %w", err)
	}
	logger.Info("Dashboard stopped.")
	return nil
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
