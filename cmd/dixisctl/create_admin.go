package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/repository"
	"github.com/dixis/dixis/services"
)

var (
	adminEmail    string
	adminName     string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account or promote an existing user",
	Long: `Create an admin account. If a user with the email already exists it is
promoted to admin and its name and password are replaced.

The password may be passed with DIXIS_ADMIN_PASSWORD instead of --password.

Example:
  dixisctl create-admin --email admin@dixis.gr --name "Admin"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminPassword == "" {
			adminPassword = os.Getenv("DIXIS_ADMIN_PASSWORD")
		}

		db, log, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		defer log.Sync() //nolint:errcheck

		// Token settings are irrelevant here; CreateAdmin never signs tokens.
		auth := services.NewAuthService(
			repository.NewSQLiteUserRepo(db.Conn),
			repository.NewSQLiteSessionRepo(db.Conn),
			"", 0, 0,
		)

		user, created, err := auth.CreateAdmin(cmd.Context(), &models.CreateAdminRequest{
			Name:     adminName,
			Email:    adminEmail,
			Password: adminPassword,
		})
		if err != nil {
			return err
		}

		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (id %d)\n", user.Email, user.ID)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "promoted %s (id %d) to admin\n", user.Email, user.ID)
		}
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "admin email (required)")
	createAdminCmd.Flags().StringVar(&adminName, "name", "Administrator", "display name")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "password, at least 8 characters")
	_ = createAdminCmd.MarkFlagRequired("email")
}
