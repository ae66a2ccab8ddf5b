package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/clients/knack"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/db"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/logger"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/migration"
)

func main() {
	configPath := flag.String("config", "migrate.yaml", "path to the migration config file")
	phase := flag.String("phase", migration.PhaseAll, "phase to run: all, accounts, connections, cycle-dates, scores, activities, questions, responses, student-activities")
	flag.Parse()

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := migration.LoadConfig(*configPath)
	if err != nil {
		log.Error("Config load failed", "path", *configPath, "error", err)
		os.Exit(1)
	}

	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}

	knackClient, err := knack.NewClient(log)
	if err != nil {
		log.Error("Knack client init failed", "error", err)
		os.Exit(1)
	}

	runner := migration.NewRunner(cfg, postgresService.DB(), knackClient, log)

	report, err := runner.Run(context.Background(), *phase)
	report.Log(log)
	if err != nil {
		log.Error("Migration run aborted", "phase", *phase, "error", err)
		os.Exit(1)
	}
	if report.TotalErrors() > 0 {
		log.Warn("Migration finished with errors", "errors", report.TotalErrors())
		os.Exit(1)
	}
	log.Info("Migration complete")
}
