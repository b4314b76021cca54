package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dixis/dixis/pkg/envcheck"
)

var errValidationFailed = errors.New("environment validation failed")

var (
	envName    string
	schemaPath string
	envFiles   []string
)

var validateEnvCmd = &cobra.Command{
	Use:   "validate-env",
	Short: "Check required environment variables for a deployment",
	Long: `Load process env overlaid with the dotenv files, then check required
and recommended variables, value rules and obvious security mistakes.

Example:
  dixisctl validate-env --env production
  dixisctl validate-env --schema deploy/env-schema.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		schema := envcheck.DefaultSchema()
		if schemaPath != "" {
			data, err := os.ReadFile(schemaPath)
			if err != nil {
				return fmt.Errorf("failed to read schema: %w", err)
			}
			if schema, err = envcheck.ParseSchema(data); err != nil {
				return err
			}
		}

		if envName == "" {
			envName = os.Getenv("NODE_ENV")
		}
		if envName == "" {
			envName = envcheck.DefaultEnvironment
		}

		// godotenv files are applied in order; .env.local wins over .env.
		files := make([]string, 0, len(envFiles))
		for i := len(envFiles) - 1; i >= 0; i-- {
			files = append(files, envFiles[i])
		}
		vars, loaded, err := envcheck.LoadVars(os.Environ(), files...)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, f := range loaded {
			fmt.Fprintf(out, "loaded %s\n", f)
		}

		report := schema.Check(envName, vars)
		printReport(out, report)
		if !report.OK() {
			return errValidationFailed
		}
		return nil
	},
}

func init() {
	validateEnvCmd.Flags().StringVar(&envName, "env", "", "environment: development, staging or production (default $NODE_ENV)")
	validateEnvCmd.Flags().StringVar(&schemaPath, "schema", "", "YAML schema file (default: built-in)")
	validateEnvCmd.Flags().StringSliceVar(&envFiles, "file", []string{".env.local", ".env"}, "dotenv files, highest priority first")
}

func printReport(w io.Writer, r envcheck.Report) {
	fmt.Fprintf(w, "environment: %s\n", r.Environment)

	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(w, "\n%s (%d):\n", title, len(items))
		for _, it := range items {
			fmt.Fprintf(w, "  - %s\n", it)
		}
	}
	section("valid", r.Valid)
	section("missing required", r.Missing)
	section("invalid", r.Invalid)
	section("security issues", r.SecurityIssues)
	section("missing recommended", r.MissingRecommended)

	if r.OK() {
		fmt.Fprintln(w, "\nenvironment validation passed")
	} else {
		fmt.Fprintln(w, "\nenvironment validation failed")
	}
}
