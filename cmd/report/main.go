// backend-go/cmd/report/main.go
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/jpfamus/famus-report-analysis/backend-go/internal/analytics"
	"github.com/jpfamus/famus-report-analysis/backend-go/internal/config"
	"github.com/jpfamus/famus-report-analysis/backend-go/internal/drive"
	"github.com/jpfamus/famus-report-analysis/backend-go/internal/features"
	"github.com/jpfamus/famus-report-analysis/backend-go/internal/pipeline"
	"github.com/jpfamus/famus-report-analysis/backend-go/internal/repository/postgres"
	"github.com/jpfamus/famus-report-analysis/backend-go/internal/service"
	"github.com/jpfamus/famus-report-analysis/backend-go/internal/storage"
	"github.com/jpfamus/famus-report-analysis/backend-go/pkg/logger"
)

func main() {
	// .env is optional; config falls back to real env vars.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "report",
		Usage: "Famus lot report pipeline tooling",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Process a raw lot detail extract into season reports",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "extract",
						Usage:   "Path to the raw Famus CSV extract",
						EnvVars: []string{"APP_EXTRACT_PATH"},
					},
					&cli.StringFlag{
						Name:    "output",
						Usage:   "Directory for report artifacts",
						EnvVars: []string{"APP_OUTPUT_DIR"},
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Max seasons built concurrently (0 = unbounded)",
					},
					&cli.BoolFlag{
						Name:  "save",
						Usage: "Persist results to the database",
					},
					&cli.BoolFlag{
						Name:  "upload",
						Usage: "Upload artifacts to object storage after the run",
					},
				},
				Action: runPipeline,
			},
			{
				Name:  "seed",
				Usage: "Load previously generated report artifacts into the database",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Usage:   "Report artifact directory to load from",
						EnvVars: []string{"APP_OUTPUT_DIR"},
					},
				},
				Action: seedDatabase,
			},
			{
				Name:   "fetch",
				Usage:  "Pull raw extracts from the configured Drive folder",
				Action: fetchExtracts,
			},
			{
				Name:  "upload",
				Usage: "Push the report artifact directory to object storage",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Usage:   "Report artifact directory to upload",
						EnvVars: []string{"APP_OUTPUT_DIR"},
					},
					&cli.StringFlag{
						Name:  "prefix",
						Usage: "Object key prefix",
						Value: "reports",
					},
				},
				Action: uploadArtifacts,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("command failed")
	}
}

func runPipeline(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(cfg.App.LogLevel)

	extractPath := c.String("extract")
	if extractPath == "" {
		extractPath = cfg.App.ExtractPath
	}
	outputDir := c.String("output")
	if outputDir == "" {
		outputDir = cfg.App.OutputDir
	}
	workers := c.Int("workers")
	if workers == 0 {
		workers = cfg.App.Workers
	}

	featCfg := features.DefaultConfig()
	if cfg.App.MappingsPath != "" {
		loaded, err := features.LoadConfig(cfg.App.MappingsPath)
		if err != nil {
			return err
		}
		featCfg = loaded
	}

	eng, err := features.NewEngineer(featCfg)
	if err != nil {
		return fmt.Errorf("feature engineering setup: %w", err)
	}

	runner := pipeline.NewRunner(pipeline.Config{
		Seasons:   cfg.Seasons(),
		OutputDir: outputDir,
		Workers:   workers,
	}, eng)

	results, err := runner.Run(c.Context, extractPath)
	if err != nil {
		return err
	}
	if err := runner.WriteBlueprint(results); err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			continue
		}
		logger.Log.Info().
			Str("season", res.Season).
			Int("lots", len(res.Summaries)).
			Bool("qc_passed", res.QCPassed).
			Msg("season complete")
	}

	if c.Bool("save") {
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		svc := service.NewReportService(postgres.NewReportRepository(db), nil)
		if err := svc.PersistSeasonResults(c.Context, results); err != nil {
			return err
		}
	}

	if c.Bool("upload") {
		store, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			return err
		}
		n, err := storage.UploadDir(c.Context, store, outputDir, "reports")
		if err != nil {
			return err
		}
		logger.Log.Info().Int("files", n).Msg("artifacts uploaded")
	}

	if failed > 0 {
		return fmt.Errorf("%d season(s) failed", failed)
	}
	return nil
}

func seedDatabase(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(cfg.App.LogLevel)

	outputDir := c.String("output")
	if outputDir == "" {
		outputDir = cfg.App.OutputDir
	}

	loader, err := analytics.NewLoader(&cfg.Database)
	if err != nil {
		return err
	}
	defer loader.Close()

	return loader.LoadOutputDir(c.Context, outputDir)
}

func fetchExtracts(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(cfg.App.LogLevel)

	if !cfg.Drive.Enabled {
		return fmt.Errorf("drive integration is disabled (set DRIVE_ENABLED=true)")
	}

	svc, err := drive.NewService(cfg.Drive)
	if err != nil {
		return err
	}

	paths, err := drive.NewDownloader(svc).DownloadFolderCSV(c.Context, drive.DownloadOptions{
		FolderID:    cfg.Drive.FolderID,
		DownloadDir: cfg.Drive.DownloadDir,
	})
	if err != nil {
		return err
	}

	for _, p := range paths {
		logger.Log.Info().Str("path", p).Msg("extract downloaded")
	}
	return nil
}

func uploadArtifacts(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(cfg.App.LogLevel)

	outputDir := c.String("output")
	if outputDir == "" {
		outputDir = cfg.App.OutputDir
	}

	store, err := storage.NewMinioClient(cfg.Storage)
	if err != nil {
		return err
	}

	n, err := storage.UploadDir(c.Context, store, outputDir, c.String("prefix"))
	if err != nil {
		return err
	}
	logger.Log.Info().Int("files", n).Str("dir", outputDir).Msg("artifacts uploaded")
	return nil
}
