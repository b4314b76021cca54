// Command dixisctl bundles operational tasks: environment validation,
// sitemap generation, migrations and admin bootstrap.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dixis/dixis/database"
	"github.com/dixis/dixis/pkg/logger"
)

var (
	dbPath   string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "dixisctl",
	Short: "Operational tooling for the Dixis backend",
	Long: `dixisctl runs one-off maintenance tasks against a Dixis deployment.

Database commands read DATABASE_PATH (or --db) after loading .env.`,
	SilenceUsage: true,
}

func init() {
	_ = godotenv.Load()

	defaultDB := os.Getenv("DATABASE_PATH")
	if defaultDB == "" {
		defaultDB = "./data/dixis.db"
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "SQLite database file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(validateEnvCmd, sitemapCmd, migrateCmd, createAdminCmd)
}

func newLogger() (*zap.Logger, error) {
	return logger.New(logLevel, "console")
}

// openDB opens the database without migrating it.
func openDB() (*database.DB, *zap.Logger, error) {
	log, err := newLogger()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(dbPath, log)
	if err != nil {
		return nil, nil, err
	}
	return db, log, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
