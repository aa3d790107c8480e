// Package main implements the minirel server binary: the HTTP/websocket
// façade over one file-backed database, plus backup and restore modes.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/minirel/minirel/internal/app"
	"github.com/minirel/minirel/internal/backup"
	"github.com/minirel/minirel/internal/config"
	"github.com/minirel/minirel/internal/objstore"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		configFile  string
		dataDir     string
		httpAddr    string
		doBackup    bool
		doRestore   bool
		showVersion bool
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&dataDir, "data-dir", "", "Database directory")
	flag.StringVar(&httpAddr, "http-addr", "", "HTTP listen address")
	flag.BoolVar(&doBackup, "backup", false, "Snapshot the database to backup storage and exit")
	flag.BoolVar(&doRestore, "restore", false, "Restore the database from backup storage and exit")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "minirel - a file-backed relational engine with a SQL front-end\n\n")
		fmt.Fprintf(os.Stderr, "Usage: minirel [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  minirel --data-dir ./data\n")
		fmt.Fprintf(os.Stderr, "  minirel --config /etc/minirel/config.yaml\n")
		fmt.Fprintf(os.Stderr, "  minirel --data-dir ./data --backup\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  MINIREL_DATA_DIR      Database directory\n")
		fmt.Fprintf(os.Stderr, "  MINIREL_HTTP_ADDR     HTTP listen address\n")
		fmt.Fprintf(os.Stderr, "  MINIREL_BACKUP_TYPE   Backup storage type (local, s3)\n")
		fmt.Fprintf(os.Stderr, "  MINIREL_S3_BUCKET     S3 bucket for backups\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("minirel version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	// A .env file, if present, feeds the environment overrides.
	_ = godotenv.Load()

	cfg, err := loadConfig(configFile, dataDir, httpAddr)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.Resolve()

	if doBackup || doRestore {
		if err := runBackup(cfg, doRestore); err != nil {
			log.Fatalf("Backup failed: %v", err)
		}
		return
	}

	printBanner(cfg)

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := application.Start(ctx); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigCh
	log.Printf("Received signal: %v", sig)

	if err := application.Stop(context.Background()); err != nil {
		log.Printf("Shutdown error: %v", err)
		os.Exit(1)
	}
}

// loadConfig layers configuration: file, then environment, then flags.
func loadConfig(configFile, dataDir, httpAddr string) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	config.LoadFromEnv(cfg)

	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if httpAddr != "" {
		cfg.HTTP.Addr = httpAddr
	}
	return cfg, nil
}

// runBackup snapshots or restores the database directory.
func runBackup(cfg *config.Config, restore bool) error {
	ctx := context.Background()

	var store objstore.ObjectStorage
	var err error
	switch cfg.Backup.Type {
	case "s3":
		store, err = objstore.NewS3Storage(ctx, cfg.Backup.S3.Bucket, objstore.S3Options{
			Region:   cfg.Backup.S3.Region,
			Endpoint: cfg.Backup.S3.Endpoint,
		})
	default:
		store, err = objstore.NewLocalStorage(cfg.Backup.Path)
	}
	if err != nil {
		return err
	}

	if restore {
		n, err := backup.Restore(ctx, cfg.DataDir, store, cfg.Backup.Prefix)
		if err != nil {
			return err
		}
		log.Printf("Restored %d files into %s", n, cfg.DataDir)
		return nil
	}

	n, err := backup.Snapshot(ctx, cfg.DataDir, store, cfg.Backup.Prefix)
	if err != nil {
		return err
	}
	log.Printf("Uploaded %d files from %s", n, cfg.DataDir)
	return nil
}

// printBanner prints the startup banner with configuration summary.
func printBanner(cfg *config.Config) {
	log.Printf("minirel %s starting", version)
	log.Printf("  Data Dir: %s", cfg.DataDir)
	log.Printf("  HTTP:     %s", cfg.HTTP.Addr)
	log.Printf("  Backup:   %s", cfg.Backup.Type)
}
