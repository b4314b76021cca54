package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dixis/dixis/database"
)

var migrationsDir string

var migrationName = regexp.MustCompile(`^[a-z0-9_]+$`)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, log, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		defer log.Sync() //nolint:errcheck

		applied, err := db.Migrate(migrationSource())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(applied) == 0 {
			fmt.Fprintln(out, "nothing to migrate")
			return nil
		}
		for _, name := range applied {
			fmt.Fprintf(out, "applied %s\n", name)
		}
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, log, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		defer log.Sync() //nolint:errcheck

		files, err := database.MigrationFiles(migrationSource())
		if err != nil {
			return err
		}
		applied, err := db.Applied(cmd.Context())
		if err != nil {
			return err
		}
		at := make(map[string]string, len(applied))
		for _, a := range applied {
			at[a.Filename] = a.AppliedAt.Format("2006-01-02 15:04:05")
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "MIGRATION\tSTATUS\tAPPLIED AT")
		for _, f := range files {
			if when, ok := at[f]; ok {
				fmt.Fprintf(tw, "%s\tapplied\t%s\n", f, when)
			} else {
				fmt.Fprintf(tw, "%s\tpending\t-\n", f)
			}
		}
		return tw.Flush()
	},
}

var migrateNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create an empty numbered migration file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.ToLower(strings.TrimSpace(args[0]))
		if !migrationName.MatchString(name) {
			return fmt.Errorf("migration name must match %s", migrationName)
		}

		files, err := database.MigrationFiles(os.DirFS(migrationsDir))
		if err != nil {
			return err
		}
		path := filepath.Join(migrationsDir, nextMigrationName(files, name))

		if err := os.WriteFile(path, []byte("-- "+name+"\n"), 0o644); err != nil {
			return fmt.Errorf("failed to write migration: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
		return nil
	},
}

func init() {
	migrateCmd.PersistentFlags().StringVar(&migrationsDir, "dir", "", "migrations directory (default: embedded set; required for new)")
	migrateCmd.AddCommand(migrateUpCmd, migrateStatusCmd, migrateNewCmd)

	migrateNewCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if migrationsDir == "" {
			migrationsDir = filepath.Join("database", "migrations")
		}
		return nil
	}
}

func migrationSource() fs.FS {
	if migrationsDir != "" {
		return os.DirFS(migrationsDir)
	}
	return database.Migrations()
}

// nextMigrationName numbers name one past the highest existing prefix.
func nextMigrationName(existing []string, name string) string {
	highest := 0
	for _, f := range existing {
		prefix, _, ok := strings.Cut(f, "_")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(prefix); err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%03d_%s.sql", highest+1, name)
}
