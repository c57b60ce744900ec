package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"educross/internal/config"
	"educross/internal/database"
	"educross/internal/logger"
	"educross/internal/service"
)

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	statsCmd := flag.NewFlagSet("stats", flag.ExitOnError)

	exportOutput := exportCmd.String("file", "", "Output file path (default: educross_backup_YYYYMMDD_HHMMSS.json)")
	importInput := importCmd.String("file", "", "Input file path (required)")
	importClear := importCmd.Bool("clear", false, "Clear existing data before import (WARNING: destructive)")
	importYes := importCmd.Bool("yes", false, "Skip the confirmation prompt for -clear")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	db, err := database.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Keep the schema current before touching data
	if err := db.RunMigrations(ctx, cfg.MigrationsPath); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	backupService := service.NewBackupService(db, log)

	switch os.Args[1] {
	case "export":
		_ = exportCmd.Parse(os.Args[2:])
		err = handleExport(ctx, log, backupService, *exportOutput)
	case "import":
		_ = importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Fprintln(os.Stderr, "Error: -file flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		err = handleImport(ctx, log, backupService, *importInput, *importClear, *importYes)
	case "stats":
		_ = statsCmd.Parse(os.Args[2:])
		err = handleStats(ctx, backupService)
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(os.Args[1]+" failed", zap.Error(err))
	}
}

func handleExport(ctx context.Context, log *zap.Logger, backupService *service.BackupService, outputPath string) error {
	if outputPath == "" {
		outputPath = fmt.Sprintf("educross_backup_%s.json", time.Now().Format("20060102_150405"))
	}

	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	log.Info("exporting database", zap.String("file", outputPath))
	if err := backupService.ExportFile(ctx, outputPath); err != nil {
		return err
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return err
	}
	log.Info("export complete", zap.String("file", outputPath), zap.Int64("bytes", info.Size()))
	return nil
}

func handleImport(ctx context.Context, log *zap.Logger, backupService *service.BackupService, inputPath string, clearData, skipConfirm bool) error {
	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("input file: %w", err)
	}

	if clearData {
		if !skipConfirm && !confirm("WARNING: This will delete all existing data. Type 'yes' to confirm: ") {
			log.Info("import cancelled")
			return nil
		}
		log.Warn("clearing existing data")
		if err := backupService.Clear(ctx); err != nil {
			return err
		}
	}

	log.Info("importing database", zap.String("file", inputPath))
	if err := backupService.ImportFile(ctx, inputPath); err != nil {
		return err
	}
	log.Info("import complete")
	return handleStats(ctx, backupService)
}

func handleStats(ctx context.Context, backupService *service.BackupService) error {
	stats, err := backupService.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("users: %d\nsections: %d\nprofiles: %d\nscores: %d\noverrides: %d\n",
		stats.Users, stats.Sections, stats.Profiles, stats.Scores, stats.Overrides)
	return nil
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line) == "yes"
}

func printUsage() {
	fmt.Println("EduCross Database Backup Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  backup export [-file <path>]              Export database to a JSON file")
	fmt.Println("  backup import -file <path> [-clear] [-yes]  Import database from a JSON file")
	fmt.Println("  backup stats                              Print row counts")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DB_TYPE          Database type: sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  DB_PATH          SQLite database path (default: ./educross.db)")
	fmt.Println("  DATABASE_URL     PostgreSQL or MySQL connection URL")
}
