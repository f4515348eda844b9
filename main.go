package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"reviews-mapper/config"
	"reviews-mapper/geo"
	"reviews-mapper/gmaps"
	"reviews-mapper/mapview"
	"reviews-mapper/models"
	"reviews-mapper/services"
	"reviews-mapper/storage"
	"reviews-mapper/utils"
)

var rootCmd = &cobra.Command{
	Use:  "reviews-mapper",
	Long: "Survey establishments over a geographic grid via the Places API and summarize their ratings",
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download establishments over the search grid and store the deduplicated table",
	RunE: func(cmd *cobra.Command, argv []string) error {
		cfg, logger := setup()
		_, err := fetch(cmd.Context(), cfg, logger)
		return err
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compute summary statistics over stored establishments and write the text report",
	RunE: func(cmd *cobra.Command, argv []string) error {
		cfg, logger := setup()
		if !cfg.UsePostgres() {
			return fmt.Errorf("report needs POSTGRES_HOST set; use `run` for a database-free pass")
		}

		pg, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			return fmt.Errorf("connect to PostgreSQL: %w", err)
		}
		defer pg.Close()

		places, err := pg.FetchAll()
		if err != nil {
			return fmt.Errorf("fetch stored places: %w", err)
		}
		return report(cfg, logger, places)
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch and report in one pass",
	RunE: func(cmd *cobra.Command, argv []string) error {
		cfg, logger := setup()
		places, err := fetch(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		return report(cfg, logger, places)
	},
}

var gridmapPNG bool

var gridmapCmd = &cobra.Command{
	Use:   "gridmap",
	Short: "Write a map of the search grid without calling the API",
	RunE: func(cmd *cobra.Command, argv []string) error {
		cfg, logger := setup()

		points := buildGrid(cfg).Points()
		logger.Info("Generated %d grid points", len(points))

		center := geo.Point{Lat: cfg.CenterLat, Lon: cfg.CenterLon}
		if err := mapview.WriteHTML(cfg.MapHTMLPath, center, points); err != nil {
			return err
		}
		logger.Info("Grid map saved to %s", cfg.MapHTMLPath)

		if gridmapPNG {
			if err := mapview.Snapshot(cmd.Context(), cfg.MapHTMLPath, cfg.MapPNGPath); err != nil {
				return err
			}
			logger.Info("Static snapshot saved to %s", cfg.MapPNGPath)
		}
		return nil
	},
}

func main() {
	gridmapCmd.Flags().BoolVar(&gridmapPNG, "png", false, "also render a static PNG snapshot (needs Chrome)")
	rootCmd.AddCommand(fetchCmd, reportCmd, runCmd, gridmapCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() (*config.Config, *utils.Logger) {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.LogLevel)
	return cfg, logger
}

func buildGrid(cfg *config.Config) geo.Grid {
	return geo.Grid{
		Center:      geo.Point{Lat: cfg.CenterLat, Lon: cfg.CenterLon},
		HalfWidthM:  cfg.HalfWidthM,
		HalfHeightM: cfg.HalfHeightM,
		StepM:       cfg.GridStepM(),
	}
}

// fetch walks the grid sequentially, querying the API at each point. A
// failed point is logged and skipped; the traversal continues.
func fetch(ctx context.Context, cfg *config.Config, logger *utils.Logger) ([]*models.Place, error) {
	if cfg.GMapsAPIKey == "" {
		return nil, fmt.Errorf("GMAPS_API_KEY is not set")
	}

	placeTypes, err := cfg.LoadPlaceTypes()
	if err != nil {
		return nil, err
	}

	points := buildGrid(cfg).Points()
	logger.Info("Search grid: %d points, %.0f m spacing, %d m radius",
		len(points), cfg.GridStepM(), cfg.RadiusM)

	client := gmaps.NewClient(cfg, logger)

	var raw []*models.RawPlace
	var failed int
	for i, pt := range points {
		results, err := client.NearbySearch(ctx, pt, cfg.RadiusM)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failed++
			logger.Warn("Grid point %d/%d failed, skipping: %v", i+1, len(points), err)
			continue
		}
		raw = append(raw, results...)
		logger.Debug("Grid point %d/%d: %d records", i+1, len(points), len(results))
	}
	logger.Info("Fetched %d raw records from %d points (%d failed)",
		len(raw), len(points), failed)

	cleaner := services.NewCleaner(logger, placeTypes)
	places := cleaner.Clean(raw)
	if len(places) == 0 {
		logger.Warn("No establishments survived cleaning; the report will be empty")
	}

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		return nil, err
	}
	defer csvWriter.Close()

	if err := csvWriter.Write(places); err != nil {
		return nil, err
	}
	logger.Info("Flat table saved to %s", cfg.CSVOutputPath)

	if cfg.UsePostgres() {
		pg, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			logger.Error("PostgreSQL unavailable, keeping results in memory: %v", err)
			return places, nil
		}
		defer pg.Close()

		if err := pg.Write(places); err != nil {
			logger.Error("PostgreSQL write failed: %v", err)
		} else {
			logger.Info("Stored %d establishments in PostgreSQL", len(places))
		}
	}

	return places, nil
}

func report(cfg *config.Config, logger *utils.Logger, places []*models.Place) error {
	stats := services.NewStatsService(logger).Generate(places)

	reporter, err := services.NewReporter()
	if err != nil {
		return err
	}
	text, err := reporter.Render(stats)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.ReportOutputPath), 0755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(cfg.ReportOutputPath, []byte(text), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	logger.Info("Summary report saved to %s", cfg.ReportOutputPath)
	return nil
}
